package service

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"quill/app/config"
	"quill/app/logger"
	"quill/app/routes"

	"github.com/rs/zerolog"
)

// RunAppServer starts the blog API and blocks until SIGINT or SIGTERM.
func RunAppServer(cfg *config.Config) int {
	logs, err := logger.New().FromPath(cfg.LogPath).WithLevel(cfg.LogLevel).Make()
	if err != nil {
		fmt.Printf("Failed to set up logging: %v\n", err)
		return 1
	}
	defer logs.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := runServer(ctx, cfg, logs.Logger, nil); err != nil {
		logs.Logger.Error().Err(err).Msg("server stopped with error")
		return 1
	}
	return 0
}

// runServer serves until ctx is done, then drains in-flight requests. When
// ready is non-nil it receives the bound address once the listener is up.
func runServer(ctx context.Context, cfg *config.Config, log zerolog.Logger, ready chan<- string) error {
	b, err := openBackend(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to open %s store: %w", cfg.Store, err)
	}
	defer func() {
		if err := b.close(); err != nil {
			log.Error().Err(err).Msg("failed to close store")
		}
	}()

	router := routes.SetupRoutes(b.repos, routes.Options{
		PerPage: cfg.DefaultPerPage,
		Logger:  log,
	})
	srv := &http.Server{
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	listener, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return err
	}
	log.Info().Str("addr", listener.Addr().String()).Str("store", cfg.Store).Msg("starting blog API")
	if ready != nil {
		ready <- listener.Addr().String()
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return <-errCh
}
