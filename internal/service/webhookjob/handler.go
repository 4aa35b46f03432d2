// Package webhookjob runs one queued DCS webhook job from start to finish:
// temp hygiene, duplicate detection, commit resolution, snapshot fetch, the
// downstream catalog action, failure escalation and completion metrics.
package webhookjob

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/door43/catalog-job-handler/internal/adapters/archive"
	"github.com/door43/catalog-job-handler/internal/core"
	"github.com/door43/catalog-job-handler/internal/domain/model"
	"github.com/door43/catalog-job-handler/internal/domain/webhook"
	"github.com/door43/catalog-job-handler/internal/logging"
	obserrors "github.com/door43/catalog-job-handler/internal/observability/errors"
	"github.com/door43/catalog-job-handler/internal/observability/metrics"
	"github.com/door43/catalog-job-handler/internal/observability/notify"
	"github.com/door43/catalog-job-handler/internal/observability/notify/logsink"
	"github.com/door43/catalog-job-handler/internal/service/failurenotifier"
	"github.com/door43/catalog-job-handler/internal/util"
)

const (
	// DefaultName is used in log lines when Options.Name is empty.
	DefaultName = "Door43_catalog_job_handler"

	// slowJobThreshold switches the completion log from milliseconds to seconds.
	slowJobThreshold = 2 * time.Second

	echoedField = "echoed_from_production"
)

var _ core.JobHandler = (*Handler)(nil)

// FailureNotifier receives the single escalation for a failed job.
type FailureNotifier interface {
	NotifyJobFailure(ctx context.Context, payload notify.JobFailurePayload) error
}

// Options groups dependencies for Handler.
type Options struct {
	Queue    core.QueueInspector // Required: pending-job snapshot for duplicate detection
	Fetcher  core.ArchiveFetcher // Required: snapshot download
	Releaser core.Releaser       // Required: downstream catalog action

	Resolver *webhook.Resolver   // Optional: defaults to a resolver on Logger
	Detector *webhook.Detector   // Optional: defaults to DefaultURLSegments
	Metrics  *metrics.JobMetrics // Optional: nil discards metrics
	Notifier FailureNotifier     // Optional: defaults to critical logging on Logger
	Logger   *logging.Logger     // Optional: defaults to a stdout JSON logger

	// Name is the prefixed handler name, e.g. "dev-Door43_catalog_job_handler".
	Name      string
	DebugMode bool

	TempRoot   string
	TempPrefix string
	StaleAfter time.Duration
	// KeepWorkDir leaves each job's download directory behind for inspection.
	KeepWorkDir bool

	Now func() time.Time
}

// Handler is the job lifecycle wrapper. It is safe for concurrent use by
// several workers; each job gets its own working directory.
type Handler struct {
	queue    core.QueueInspector
	fetcher  core.ArchiveFetcher
	releaser core.Releaser
	resolver *webhook.Resolver
	detector *webhook.Detector
	metrics  *metrics.JobMetrics
	notifier FailureNotifier
	logger   *logging.Logger

	name        string
	debug       bool
	tempRoot    string
	tempPrefix  string
	staleAfter  time.Duration
	keepWorkDir bool
	now         func() time.Time
}

// New constructs a Handler.
func New(opts Options) (*Handler, error) {
	if opts.Queue == nil {
		return nil, errors.New("webhook job handler requires a queue")
	}
	if opts.Fetcher == nil {
		return nil, errors.New("webhook job handler requires an archive fetcher")
	}
	if opts.Releaser == nil {
		return nil, errors.New("webhook job handler requires a releaser")
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.New(logging.Config{})
	}
	name := opts.Name
	if name == "" {
		name = DefaultName
	}

	h := &Handler{
		queue:       opts.Queue,
		fetcher:     opts.Fetcher,
		releaser:    opts.Releaser,
		resolver:    opts.Resolver,
		detector:    opts.Detector,
		metrics:     opts.Metrics,
		notifier:    opts.Notifier,
		logger:      logger,
		name:        name,
		debug:       opts.DebugMode,
		tempRoot:    opts.TempRoot,
		tempPrefix:  opts.TempPrefix,
		staleAfter:  opts.StaleAfter,
		keepWorkDir: opts.KeepWorkDir,
		now:         opts.Now,
	}
	if h.resolver == nil {
		h.resolver = webhook.NewResolver(logger.Logger)
	}
	if h.detector == nil {
		h.detector = webhook.NewDetector(webhook.DefaultURLSegments, logger.Logger)
	}
	if h.notifier == nil {
		sink, err := logsink.New(logger, name)
		if err != nil {
			return nil, err
		}
		h.notifier = failurenotifier.NewService(failurenotifier.Options{
			Logger: logger.Logger,
			Sinks:  []failurenotifier.SinkRegistration{{Name: "primary_log", Sink: sink}},
		})
	}
	if h.tempPrefix == "" {
		h.tempPrefix = "Door43_"
	}
	if h.staleAfter <= 0 {
		h.staleAfter = time.Hour
	}
	if h.now == nil {
		h.now = time.Now
	}
	return h, nil
}

// HandleJob processes a dequeued job.
func (h *Handler) HandleJob(ctx context.Context, job model.QueuedJob) (model.JobOutcome, error) {
	return h.run(ctx, job.ID, job.Payload).unwrap()
}

// Handle processes a payload that did not come through the broker.
func (h *Handler) Handle(ctx context.Context, payload model.Payload) (model.JobOutcome, error) {
	return h.run(ctx, "", payload).unwrap()
}

// result is how a job ended. A fatal result carries the job's own error,
// which unwrap hands back to the broker unchanged.
type result struct {
	outcome model.JobOutcome
	status  string
	err     error
}

func (r result) unwrap() (model.JobOutcome, error) {
	switch r.status {
	case metrics.ResultError:
		r.outcome.Failed = true
		return r.outcome, r.err
	case metrics.ResultInterrupted:
		r.outcome.Interrupted = true
		return r.outcome, r.err
	}
	return r.outcome, nil
}

func (h *Handler) run(ctx context.Context, jobID string, payload model.Payload) result {
	start := h.now()
	if h.debug {
		h.logger.DebugContext(ctx, h.name+" received a job (in debug mode)", "job_id", jobID)
	} else {
		h.logger.DebugContext(ctx, h.name+" received a job", "job_id", jobID)
	}
	h.metrics.Attempted()
	if payload.Bool(echoedField) {
		h.logger.InfoContext(ctx, "This job was ECHOED FROM PRODUCTION (for dev- chain testing)!")
	}

	h.cleanTemp(ctx)

	res := h.process(ctx, jobID, payload)
	h.finish(ctx, start, &res)
	return res
}

func (h *Handler) cleanTemp(ctx context.Context) {
	h.logger.DebugContext(ctx, "clearing stale temp entries", "root", h.tempRoot, "prefix", h.tempPrefix)
	removed, err := archive.CleanStale(h.tempRoot, h.tempPrefix, h.staleAfter, h.now())
	if err != nil {
		h.logger.WarnContext(ctx, "temp cleanup incomplete", "error", err)
	}
	if removed > 0 {
		h.logger.DebugContext(ctx, "removed stale temp entries", "count", removed)
	}
}

func (h *Handler) process(ctx context.Context, jobID string, payload model.Payload) result {
	pending, length := h.snapshotQueue(ctx)
	h.metrics.QueueLength(length)

	if abort, name := h.detector.ShouldAbort(ctx, payload, pending); abort {
		return result{
			outcome: model.JobOutcome{DescriptiveName: name, Aborted: true},
			status:  metrics.ResultAborted,
		}
	}

	outcome, status, err := h.processWebhook(ctx, payload)
	if err != nil && interrupted(ctx, err) {
		h.logger.WarnContext(ctx, "job interrupted by shutdown, leaving it to the broker",
			"job_id", jobID, "job", outcome.DescriptiveName, "error", err)
		return result{outcome: outcome, status: metrics.ResultInterrupted, err: err}
	}
	if err != nil {
		h.escalate(ctx, jobID, payload, outcome, err)
		return result{outcome: outcome, status: metrics.ResultError, err: err}
	}
	return result{outcome: outcome, status: status}
}

// interrupted reports whether err is only the job's own context being cancelled,
// which happens when the worker shuts down. Such jobs are not failures.
func interrupted(ctx context.Context, err error) bool {
	return ctx.Err() != nil && errors.Is(err, context.Canceled)
}

// snapshotQueue reads the pending jobs behind this one. The duplicate check is
// best effort, so a broker error only costs the check.
func (h *Handler) snapshotQueue(ctx context.Context) ([]model.QueuedJob, int64) {
	pending, err := h.queue.ListPending(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "could not list pending jobs", "error", err)
		pending = nil
	}
	length, err := h.queue.Length(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "could not read queue length", "error", err)
		length = int64(len(pending))
	}
	return pending, length
}

func (h *Handler) processWebhook(ctx context.Context, payload model.Payload) (outcome model.JobOutcome, status string, err error) {
	defer func() {
		if r := recover(); r != nil {
			status = metrics.ResultError
			err = fmt.Errorf("panic while processing webhook: %v", r)
		}
	}()

	h.metrics.UniqueIDs(payload)

	id := h.resolver.Resolve(ctx, payload)
	outcome = model.JobOutcome{DescriptiveName: id.Describe(), Identity: &id}
	h.logger.InfoContext(ctx, fmt.Sprintf("Processing job for %s for %q", id.Describe(), id.ActionLabel))
	h.metrics.UserInvoked(id.Owner)

	if !id.HasID() {
		h.logger.Critical(ctx, fmt.Sprintf("Nothing to process for '%s'!", id.EventKind))
		return outcome, metrics.ResultNoop, nil
	}

	if id.ArchiveURL != nil {
		workDir, err := archive.NewJobDir(h.tempRoot, h.tempPrefix)
		if err != nil {
			return outcome, metrics.ResultError, err
		}
		defer h.removeWorkDir(ctx, workDir)
		stop := archive.KeepAlive(workDir, h.staleAfter/4)
		defer stop()

		snapshot, err := h.fetcher.Fetch(ctx, id, workDir)
		if err != nil {
			return outcome, metrics.ResultError, err
		}
		outcome.SnapshotPath = snapshot
	}

	if err := h.releaser.HandleRelease(ctx, core.Release{
		Owner:        id.Owner,
		Repo:         id.RepoName,
		CommitID:     id.IDString(),
		ArchiveURL:   id.ArchiveURLString(),
		SnapshotPath: outcome.SnapshotPath,
	}); err != nil {
		return outcome, metrics.ResultError, err
	}

	h.logger.InfoContext(ctx, fmt.Sprintf("%s process_webhook_job() for %s has finished.", h.name, outcome.DescriptiveName))
	return outcome, metrics.ResultSuccess, nil
}

func (h *Handler) removeWorkDir(ctx context.Context, dir string) {
	if h.keepWorkDir {
		h.logger.DebugContext(ctx, "keeping job work dir", "path", dir)
		return
	}
	if err := os.RemoveAll(dir); err != nil {
		h.logger.WarnContext(ctx, "could not remove job work dir", "path", dir, "error", err)
	}
}

// escalate runs the failure observers in their configured order and marks the
// failure on the metrics sink. Observer errors never replace jobErr.
func (h *Handler) escalate(ctx context.Context, jobID string, payload model.Payload, outcome model.JobOutcome, jobErr error) {
	raw, encErr := payload.Encode()
	if encErr != nil {
		raw = []byte(fmt.Sprintf("%v", map[string]any(payload)))
	}

	p := notify.JobFailurePayload{
		JobID:      jobID,
		JobName:    outcome.DescriptiveName,
		Event:      payload.EventKind(),
		Payload:    raw,
		Error:      jobErr.Error(),
		ErrorClass: obserrors.Classify(jobErr),
		Severity:   notify.SeverityCritical,
		OccurredAt: h.now().UTC(),
		Metadata:   map[string]string{"handler": h.name},
	}
	if id := outcome.Identity; id != nil {
		p.Owner = id.Owner
		p.Repo = id.RepoName
		if id.HasID() {
			p.Metadata["commit_id"] = id.IDString()
		}
		if url := id.ArchiveURLString(); url != "" {
			p.Metadata["archive_url"] = url
		}
	}

	// Observers still run when the job was cancelled mid-flight.
	notifyCtx := context.WithoutCancel(ctx)
	if err := h.notifier.NotifyJobFailure(notifyCtx, p); err != nil {
		h.logger.WarnContext(ctx, "failure observers reported errors", "error", err)
	}
	h.metrics.FailedMarker()
}

func (h *Handler) finish(ctx context.Context, start time.Time, res *result) {
	elapsed := h.now().Sub(start)
	res.outcome.Elapsed = elapsed

	h.metrics.Completed(metrics.Completion{Result: res.status, Duration: elapsed, Err: res.err})

	h.logger.InfoContext(ctx, fmt.Sprintf("%s webhook job handling for %s completed in %s.",
		h.name, res.outcome.DescriptiveName, util.FormatElapsed(elapsed, slowJobThreshold)),
		"result", res.status,
		"aborted", res.outcome.Aborted,
	)

	if err := h.logger.Flush(); err != nil {
		slog.Default().WarnContext(ctx, "could not flush job log", "error", err)
	}
}
