// Package config loads service settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	StoreBadger = "badger"
	StoreSQLite = "sqlite"
)

// Config holds all configuration for the application.
type Config struct {
	// Server configuration
	Addr            string        `validate:"required"`
	ReadTimeout     time.Duration `validate:"gt=0"`
	WriteTimeout    time.Duration `validate:"gt=0"`
	ShutdownTimeout time.Duration `validate:"gt=0"`

	// Storage configuration
	Store      string `validate:"oneof=badger sqlite"`
	BadgerPath string `validate:"required_if=Store badger"`
	SQLiteDSN  string `validate:"required_if=Store sqlite"`
	BackupDir  string `validate:"required"`

	// Pagination
	DefaultPerPage int `validate:"gte=1,lte=100"`

	// Logging configuration
	LogLevel string `validate:"omitempty,oneof=trace debug info warn error fatal panic disabled"`
	LogPath  string
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Addr:            getEnv("QUILL_ADDR", ":8080"),
		ReadTimeout:     getEnvDuration("QUILL_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:    getEnvDuration("QUILL_WRITE_TIMEOUT", 15*time.Second),
		ShutdownTimeout: getEnvDuration("QUILL_SHUTDOWN_TIMEOUT", 10*time.Second),
		Store:           getEnv("QUILL_STORE", StoreBadger),
		BadgerPath:      getEnv("QUILL_BADGER_PATH", "data/badger"),
		SQLiteDSN:       getEnv("QUILL_SQLITE_DSN", "data/quill.db"),
		BackupDir:       getEnv("QUILL_BACKUP_DIR", "data/backups"),
		DefaultPerPage:  getEnvInt("QUILL_PER_PAGE", 10),
		LogLevel:        getEnv("QUILL_LOG_LEVEL", "info"),
		LogPath:         getEnv("QUILL_LOG_PATH", ""),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// getEnv gets an environment variable with a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an environment variable as int with a default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvDuration gets an environment variable as duration with a default value.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
