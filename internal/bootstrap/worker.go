package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/door43/catalog-job-handler/config"
	"github.com/door43/catalog-job-handler/internal/adapters/archive"
	"github.com/door43/catalog-job-handler/internal/adapters/jobrunner"
	"github.com/door43/catalog-job-handler/internal/adapters/redisqueue"
	"github.com/door43/catalog-job-handler/internal/core"
	"github.com/door43/catalog-job-handler/internal/domain/webhook"
	"github.com/door43/catalog-job-handler/internal/logging"
	"github.com/door43/catalog-job-handler/internal/observability/metrics"
	"github.com/door43/catalog-job-handler/internal/observability/statsd"
	"github.com/door43/catalog-job-handler/internal/service/catalog"
	"github.com/door43/catalog-job-handler/internal/service/webhookjob"
)

// WorkerDeps groups the process-wide collaborators of the webhook worker.
type WorkerDeps struct {
	Config  *config.AppConfig
	Redis   redis.UniversalClient
	Metrics statsd.Sink
	Logger  *logging.Logger
	// Releaser overrides the default no-op catalog action.
	Releaser core.Releaser
}

// NewQueue opens the prefixed webhook queue.
func NewQueue(cfg *config.AppConfig, client redis.UniversalClient) (*redisqueue.Queue, error) {
	q, err := redisqueue.New(client, redisqueue.Config{
		Namespace: cfg.Queue.Namespace,
		Name:      cfg.QueueName(),
		ResultTTL: cfg.Queue.ResultTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("open queue %s: %w", cfg.QueueName(), err)
	}
	return q, nil
}

// NewHandler wires the job lifecycle wrapper from configuration.
func NewHandler(deps WorkerDeps, queue core.QueueInspector) (*webhookjob.Handler, error) {
	cfg := deps.Config
	logger := deps.Logger

	releaser := deps.Releaser
	if releaser == nil {
		releaser = catalog.NewNoopReleaser(logger.Logger)
	}

	fetcher := archive.NewFetcher(archive.Config{
		NetworkTries:   cfg.Archive.NetworkTries,
		NetworkBackoff: cfg.Archive.NetworkBackoff,
		ZipTries:       cfg.Archive.ZipTries,
		ZipBackoff:     cfg.Archive.ZipBackoff,
		KeepArchive:    cfg.KeepArchives(),
		Timeout:        cfg.Archive.HTTPTimeout,
		Logger:         logger.Logger,
	})

	return webhookjob.New(webhookjob.Options{
		Queue:       queue,
		Fetcher:     fetcher,
		Releaser:    releaser,
		Resolver:    webhook.NewResolver(logger.Logger),
		Detector:    webhook.NewDetector(cfg.Dedup.URLSegments, logger.Logger),
		Metrics:     metrics.NewJobMetrics(deps.Metrics, nil),
		Notifier:    BuildFailureNotifier(cfg, logger),
		Logger:      logger,
		Name:        cfg.PrefixedHandlerName(),
		DebugMode:   cfg.DebugMode,
		TempRoot:    cfg.Archive.TempRoot,
		TempPrefix:  cfg.Archive.TempPrefix,
		StaleAfter:  cfg.Archive.StaleAfter,
		KeepWorkDir: cfg.KeepArchives(),
	})
}

// RunWorker consumes the webhook queue until ctx is cancelled or the broker
// keeps failing.
func RunWorker(ctx context.Context, deps WorkerDeps) error {
	if deps.Config == nil || deps.Redis == nil || deps.Logger == nil {
		return errors.New("worker requires config, redis and a logger")
	}

	queue, err := NewQueue(deps.Config, deps.Redis)
	if err != nil {
		return err
	}

	handler, err := NewHandler(deps, queue)
	if err != nil {
		return fmt.Errorf("create webhook handler: %w", err)
	}

	runner, err := jobrunner.NewRunner(jobrunner.RunnerOptions{
		Broker:         queue,
		Handler:        handler,
		Logger:         deps.Logger.Logger,
		Concurrency:    deps.Config.Worker.Concurrency,
		PollTimeout:    deps.Config.Worker.PollTimeout,
		MaxBrokerFails: deps.Config.Worker.MaxBrokerFails,
		DrainTimeout:   deps.Config.Worker.DrainTimeout,
	})
	if err != nil {
		return fmt.Errorf("create job runner: %w", err)
	}

	// Info records between jobs would otherwise sit in the buffer until the next job ends.
	flushCtx, stopFlush := context.WithCancel(context.WithoutCancel(ctx))
	defer stopFlush()
	go deps.Logger.FlushEvery(flushCtx, deps.Config.Logging.FlushInterval)

	deps.Logger.InfoContext(ctx, "listening for webhook jobs", "queue", queue.Name())
	if err := deps.Logger.Flush(); err != nil {
		return fmt.Errorf("flush startup log: %w", err)
	}
	if err := runner.Run(ctx); err != nil {
		return fmt.Errorf("run webhook worker: %w", err)
	}
	return nil
}
