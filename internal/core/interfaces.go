// Package core declares the ports between the webhook job handler and its
// adapters. The domain and service layers depend on these interfaces; the
// Redis, HTTP and filesystem implementations live under internal/adapters.
package core

import (
	"context"
	"errors"
	"time"

	"github.com/door43/catalog-job-handler/internal/domain/model"
)

// QueueInspector is the read side of the broker consulted while a job runs.
type QueueInspector interface {
	// ListPending returns the jobs still waiting in the queue, head first.
	ListPending(ctx context.Context) ([]model.QueuedJob, error)
	// Length returns the number of waiting jobs.
	Length(ctx context.Context) (int64, error)
}

// ErrNoJob is returned by JobBroker.Dequeue when the wait timed out.
var ErrNoJob = errors.New("no job available")

// JobBroker hands jobs to workers and records how they ended.
type JobBroker interface {
	// Dequeue waits up to timeout for the next job.
	Dequeue(ctx context.Context, timeout time.Duration) (model.QueuedJob, error)
	Complete(ctx context.Context, id, result string) error
	Fail(ctx context.Context, id string, jobErr error) error
	// Restore puts a started job back at the head of the queue. It is used for
	// jobs interrupted by shutdown, which did not fail on their own.
	Restore(ctx context.Context, id string) error
}

// ArchiveFetcher downloads and extracts the snapshot an identity points at,
// returning the local repository folder.
type ArchiveFetcher interface {
	Fetch(ctx context.Context, id model.CommitIdentity, workDir string) (string, error)
}

// Release is what the downstream catalog action receives for one commit.
type Release struct {
	Owner        string
	Repo         string
	CommitID     string
	ArchiveURL   string
	SnapshotPath string
}

// Releaser is the downstream catalog action. Implementations must be
// idempotent because the same event can be delivered more than once.
type Releaser interface {
	HandleRelease(ctx context.Context, rel Release) error
}

// JobHandler processes one dequeued job.
type JobHandler interface {
	HandleJob(ctx context.Context, job model.QueuedJob) (model.JobOutcome, error)
}
