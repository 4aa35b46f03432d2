// Package failedlog writes job failures to the dedicated FAILED log stream. The
// stream is opened for each failure and closed right after, so it does not
// share any state with the primary logger.
package failedlog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/door43/catalog-job-handler/internal/logging"
	"github.com/door43/catalog-job-handler/internal/observability/notify"
)

// Config locates the FAILED log stream.
type Config struct {
	// Dir is the root directory holding one subdirectory per log group.
	Dir string
	// Group is the failed log group, e.g. "FAILED_dev-tX_DEBUG".
	Group string
	// Stream is the prefixed handler name, used as the stream name and in the message.
	Stream string
}

// Sink appends critical failure records to the FAILED log stream.
type Sink struct {
	cfg Config
}

// New validates cfg and returns a Sink. The stream file is created on first use.
func New(cfg Config) (*Sink, error) {
	if strings.TrimSpace(cfg.Group) == "" || strings.TrimSpace(cfg.Stream) == "" {
		return nil, errors.New("failed log requires a group and a stream")
	}
	return &Sink{cfg: cfg}, nil
}

// SendJobFailure opens the stream, writes the failure and closes it again.
func (s *Sink) SendJobFailure(ctx context.Context, p notify.JobFailurePayload) (err error) {
	logger, err := logging.OpenStream(s.cfg.Dir, s.cfg.Group, s.cfg.Stream)
	if err != nil {
		return fmt.Errorf("open failed log: %w", err)
	}
	defer func() {
		if cerr := logger.Close(); cerr != nil {
			err = errors.Join(err, cerr)
		}
	}()

	logger.InfoContext(ctx, fmt.Sprintf("Logging to group '%s'.", s.cfg.Group))
	logger.Critical(ctx, p.Message(s.cfg.Stream),
		"job_id", p.JobID,
		"job", p.JobName,
		"owner", p.Owner,
		"repo", p.Repo,
		"event", p.Event,
		"error_class", p.ErrorClass,
	)
	return nil
}
