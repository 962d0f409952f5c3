package service

import (
	"fmt"
	"os"

	"quill/app/config"
	"quill/app/logger"
	"quill/app/repositories"
	"quill/app/repositories/sqlstore"
	"quill/app/services"

	"github.com/rs/zerolog"
)

// Version is reported by the version command.
const Version = "1.0.0"

// loadConfig is swapped in tests.
var loadConfig = config.Load

// backend is an opened store behind the repository interfaces.
type backend struct {
	repos services.Repositories
	close func() error
}

// openBackend opens the store selected by cfg.Store.
func openBackend(cfg *config.Config, log zerolog.Logger) (*backend, error) {
	switch cfg.Store {
	case config.StoreSQLite:
		store, err := sqlstore.Open(cfg.SQLiteDSN)
		if err != nil {
			return nil, err
		}
		return &backend{
			repos: services.Repositories{
				Posts:      store.Posts,
				Comments:   store.Comments,
				Tags:       store.Tags,
				Categories: store.Categories,
				Authors:    store.Authors,
			},
			close: store.Close,
		}, nil
	default:
		if err := os.MkdirAll(cfg.BadgerPath, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		store, err := repositories.NewStore(cfg.BadgerPath, logger.Badger{Logger: log})
		if err != nil {
			return nil, err
		}
		return &backend{
			repos: services.FromStore(store),
			close: store.Close,
		}, nil
	}
}

// storePath is the on-disk location of the configured store.
func storePath(cfg *config.Config) string {
	if cfg.Store == config.StoreSQLite {
		return cfg.SQLiteDSN
	}
	return cfg.BadgerPath
}

func confirm(prompt string) bool {
	fmt.Print(prompt + " [y/N] ")
	var response string
	fmt.Scanln(&response)
	return response == "y" || response == "Y"
}
