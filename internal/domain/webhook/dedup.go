package webhook

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/door43/catalog-job-handler/internal/domain/model"
)

// DefaultURLSegments is how many "/"-separated commit URL segments must match for two
// pushes to count as the same repository. For https://host/owner/repo/commit/<hash>
// the first six segments are "https:", "", host, owner, repo and "commit".
const DefaultURLSegments = 6

// Detector decides whether a push is superseded by another push still waiting in the queue.
type Detector struct {
	segments int
	logger   *slog.Logger
}

// NewDetector constructs a Detector comparing the given number of URL segments.
// Non-positive values fall back to DefaultURLSegments.
func NewDetector(segments int, logger *slog.Logger) *Detector {
	if segments <= 0 {
		segments = DefaultURLSegments
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Detector{segments: segments, logger: logger.With("component", "duplicate_detector")}
}

// ShouldAbort returns true and the queued job's descriptive name when a later
// single-commit push for the same repository is already queued.
// Only single-commit pushes are considered; everything else returns (false, "").
func (d *Detector) ShouldAbort(ctx context.Context, payload model.Payload, pending []model.QueuedJob) (bool, string) {
	if !payload.IsSingleCommitPush() || len(pending) == 0 {
		return false, ""
	}
	myURL, ok := payload.FirstCommitURL()
	if !ok {
		return false, ""
	}

	d.logger.InfoContext(ctx, "checking for duplicate pushes", "queued_jobs", len(pending))
	mine := d.prefix(myURL)

	for _, job := range pending {
		if !job.IsQueued() || !job.Payload.IsSingleCommitPush() {
			continue
		}
		queuedURL, ok := job.Payload.FirstCommitURL()
		if !ok {
			continue
		}
		if !slices.Equal(mine, d.prefix(queuedURL)) {
			continue
		}
		name := strings.TrimPrefix(queuedURL, "https://")
		d.logger.InfoContext(ctx, "found duplicate job later in queue, aborting this one",
			"queued_job_id", job.ID,
			"superseded_by", name,
		)
		return true, name
	}
	return false, ""
}

func (d *Detector) prefix(u string) []string {
	parts := strings.Split(u, "/")
	if len(parts) > d.segments {
		parts = parts[:d.segments]
	}
	return parts
}
