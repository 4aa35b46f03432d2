// Package catalog holds the downstream catalog action run for each resolved commit.
package catalog

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/door43/catalog-job-handler/internal/core"
)

var _ core.Releaser = (*NoopReleaser)(nil)

// NoopReleaser records the release it was asked to publish and does nothing else.
// Calling it any number of times with the same Release has the same effect.
type NoopReleaser struct {
	logger *slog.Logger
}

// NewNoopReleaser returns a NoopReleaser logging to logger, or slog.Default when nil.
func NewNoopReleaser(logger *slog.Logger) *NoopReleaser {
	if logger == nil {
		logger = slog.Default()
	}
	return &NoopReleaser{logger: logger.With("component", "catalog_releaser")}
}

// HandleRelease validates rel and logs it.
func (r *NoopReleaser) HandleRelease(ctx context.Context, rel core.Release) error {
	if strings.TrimSpace(rel.Owner) == "" || strings.TrimSpace(rel.Repo) == "" {
		return errors.New("release requires an owner and a repository")
	}
	if strings.TrimSpace(rel.CommitID) == "" {
		return errors.New("release requires a commit id")
	}
	r.logger.InfoContext(ctx, "handling release",
		"owner", rel.Owner,
		"repo", rel.Repo,
		"commit_id", rel.CommitID,
		"archive_url", rel.ArchiveURL,
		"snapshot", rel.SnapshotPath,
	)
	return nil
}
