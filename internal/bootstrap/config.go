package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/door43/catalog-job-handler/config"
	"github.com/door43/catalog-job-handler/internal/logging"
)

// InitLogger initializes the buffered primary logger and makes it the slog default.
func InitLogger(cfg config.LoggingConfig) *logging.Logger {
	logger := logging.New(logging.Config{
		Level:  cfg.Level,
		Format: cfg.Format,
	})
	slog.SetDefault(logger.Logger)
	return logger
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() (config.AppConfig, error) {
	// Load .env file if it exists (development)
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return config.AppConfig{}, fmt.Errorf("load .env file: %w", err)
		}
	}

	var cfg config.AppConfig
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	cfg.Sanitize()
	return cfg, nil
}

// LogStartup reports the effective environment and flags an unexpected queue prefix.
func LogStartup(ctx context.Context, cfg *config.AppConfig, logger *logging.Logger) {
	if err := cfg.ValidatePrefix(); err != nil {
		logger.Critical(ctx, err.Error())
	}
	logger.InfoContext(ctx, "starting "+cfg.PrefixedHandlerName(),
		"queue", cfg.QueueName(),
		"stats_prefix", cfg.StatsPrefix(),
		"debug", cfg.DebugMode,
		"workers", cfg.Worker.Concurrency,
	)
	if err := logger.Flush(); err != nil {
		slog.Default().WarnContext(ctx, "could not flush startup log", "error", err)
	}
}
