package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/door43/catalog-job-handler/config"
	"github.com/door43/catalog-job-handler/internal/bootstrap"
	"github.com/door43/catalog-job-handler/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1) //nolint:forbidigo // Main entrypoint should exit with non-zero status on fatal errors.
	}

	logger := bootstrap.InitLogger(cfg.Logging)
	runErr := run(ctx, &cfg, logger)
	if runErr != nil {
		logger.ErrorContext(ctx, "fatal error", "error", runErr)
	}
	if cerr := logger.Close(); cerr != nil {
		_, _ = fmt.Fprintf(os.Stderr, "flush log: %v\n", cerr)
	}
	if runErr != nil {
		os.Exit(1) //nolint:forbidigo // Main entrypoint should exit with non-zero status on fatal errors.
	}
}

func run(ctx context.Context, cfg *config.AppConfig, logger *logging.Logger) error {
	bootstrap.LogStartup(ctx, cfg, logger)

	redisClient, err := bootstrap.ConnectRedis(ctx, bootstrap.RedisOptions{
		Config: cfg.Redis,
		Logger: logger.Logger,
	})
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer func() {
		if cerr := redisClient.Close(); cerr != nil {
			logger.ErrorContext(ctx, "close redis failed", "error", cerr)
		}
	}()

	metricsClient := bootstrap.NewMetricsClient(cfg, logger.Logger)
	defer func() {
		if cerr := metricsClient.Close(); cerr != nil {
			logger.ErrorContext(ctx, "close statsd failed", "error", cerr)
		}
	}()

	err = bootstrap.RunWorker(ctx, bootstrap.WorkerDeps{
		Config:  cfg,
		Redis:   redisClient,
		Metrics: metricsClient,
		Logger:  logger,
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.InfoContext(ctx, "worker stopped")
	return nil
}
