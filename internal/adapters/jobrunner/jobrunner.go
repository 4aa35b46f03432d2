// Package jobrunner pulls webhook jobs off the broker and runs them on a pool of workers.
package jobrunner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/door43/catalog-job-handler/internal/core"
	"github.com/door43/catalog-job-handler/internal/domain/model"
)

const (
	defaultPollTimeout    = 5 * time.Second
	defaultErrorBackoff   = time.Second
	defaultMaxBrokerFails = 5
	defaultDrainTimeout   = 2 * time.Minute
)

// RunnerOptions configures the job runner.
type RunnerOptions struct {
	Broker  core.JobBroker
	Handler core.JobHandler
	Logger  *slog.Logger

	// Concurrency is the number of worker goroutines; defaults to 1.
	Concurrency int
	// PollTimeout bounds each blocking dequeue so workers notice shutdown.
	PollTimeout time.Duration
	// MaxBrokerFails is how many consecutive dequeue errors a worker tolerates
	// before the runner stops.
	MaxBrokerFails int
	ErrorBackoff   time.Duration
	// DrainTimeout is how long a running job may continue after shutdown starts
	// before its context is cancelled and it is restored to the queue.
	DrainTimeout time.Duration
}

// Runner executes one job at a time per worker. Jobs whose handler returns
// an error are recorded as failed on the broker; the rest are completed with
// their descriptive name.
type Runner struct {
	broker         core.JobBroker
	handler        core.JobHandler
	logger         *slog.Logger
	workers        int
	pollTimeout    time.Duration
	maxBrokerFails int
	errorBackoff   time.Duration
	drainTimeout   time.Duration
}

// NewRunner validates opts and fills in defaults.
func NewRunner(opts RunnerOptions) (*Runner, error) {
	if opts.Broker == nil {
		return nil, errors.New("job runner requires a broker")
	}
	if opts.Handler == nil {
		return nil, errors.New("job runner requires a handler")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := &Runner{
		broker:         opts.Broker,
		handler:        opts.Handler,
		logger:         logger.With("component", "job_runner"),
		workers:        max(opts.Concurrency, 1),
		pollTimeout:    opts.PollTimeout,
		maxBrokerFails: opts.MaxBrokerFails,
		errorBackoff:   opts.ErrorBackoff,
		drainTimeout:   opts.DrainTimeout,
	}
	if r.pollTimeout <= 0 {
		r.pollTimeout = defaultPollTimeout
	}
	if r.maxBrokerFails <= 0 {
		r.maxBrokerFails = defaultMaxBrokerFails
	}
	if r.errorBackoff <= 0 {
		r.errorBackoff = defaultErrorBackoff
	}
	if r.drainTimeout <= 0 {
		r.drainTimeout = defaultDrainTimeout
	}
	return r, nil
}

// Run blocks until ctx is cancelled or a worker gives up on the broker.
// Cancellation lets in-flight jobs finish within DrainTimeout and returns nil.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.InfoContext(ctx, "starting job runner", "workers", r.workers, "poll_timeout", r.pollTimeout)

	g, gctx := errgroup.WithContext(ctx)
	for i := range r.workers {
		g.Go(func() error {
			return r.workerLoop(gctx, i)
		})
	}

	err := g.Wait()
	r.logger.InfoContext(ctx, "job runner stopped", "error", err)
	return err
}

func (r *Runner) workerLoop(ctx context.Context, worker int) error {
	logger := r.logger.With("worker", worker)
	fails := 0
	for ctx.Err() == nil {
		job, err := r.broker.Dequeue(ctx, r.pollTimeout)
		switch {
		case err == nil:
			fails = 0
			r.processJob(ctx, logger, job)
		case errors.Is(err, core.ErrNoJob):
			fails = 0
		case ctx.Err() != nil:
			return nil
		default:
			fails++
			logger.ErrorContext(ctx, "dequeue failed", "error", err, "consecutive_failures", fails)
			if fails >= r.maxBrokerFails {
				return fmt.Errorf("worker %d: dequeue: %w", worker, err)
			}
			if !sleep(ctx, r.errorBackoff) {
				return nil
			}
		}
	}
	return nil
}

func (r *Runner) processJob(ctx context.Context, logger *slog.Logger, job model.QueuedJob) {
	// The outcome is recorded even when shutdown starts mid-job.
	recordCtx := context.WithoutCancel(ctx)

	jobCtx, cancelJob := context.WithCancel(recordCtx)
	defer cancelJob()
	stopDrain := context.AfterFunc(ctx, func() {
		timer := time.NewTimer(r.drainTimeout)
		defer timer.Stop()
		select {
		case <-timer.C:
			logger.WarnContext(jobCtx, "drain timeout reached, cancelling job", "job_id", job.ID)
			cancelJob()
		case <-jobCtx.Done():
		}
	})
	defer stopDrain()

	outcome, err := r.handler.HandleJob(jobCtx, job)
	if err != nil && (outcome.Interrupted || (jobCtx.Err() != nil && errors.Is(err, context.Canceled))) {
		logger.WarnContext(recordCtx, "returning interrupted job to the queue", "job_id", job.ID, "error", err)
		if rerr := r.broker.Restore(recordCtx, job.ID); rerr != nil {
			logger.ErrorContext(recordCtx, "restore job error", "job_id", job.ID, "error", rerr, "original_error", err)
		}
		return
	}
	if err != nil {
		if ferr := r.broker.Fail(recordCtx, job.ID, err); ferr != nil {
			logger.ErrorContext(ctx, "fail job error", "job_id", job.ID, "error", ferr, "original_error", err)
		}
		return
	}
	if cerr := r.broker.Complete(recordCtx, job.ID, outcome.DescriptiveName); cerr != nil {
		logger.ErrorContext(ctx, "complete job error", "job_id", job.ID, "error", cerr)
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
