// Package logsink reports job failures on the primary logger and flushes it.
package logsink

import (
	"context"
	"errors"

	"github.com/door43/catalog-job-handler/internal/logging"
	"github.com/door43/catalog-job-handler/internal/observability/notify"
)

// Sink writes a critical record to the primary logger, then flushes it so the
// record is out of the process before any later observer runs.
type Sink struct {
	logger  *logging.Logger
	handler string
}

// New returns a Sink for logger. handler names the job handler in the message
// (the prefixed handler name, e.g. "dev-Door43_catalog_job_handler").
func New(logger *logging.Logger, handler string) (*Sink, error) {
	if logger == nil {
		return nil, errors.New("logsink requires a logger")
	}
	return &Sink{logger: logger, handler: handler}, nil
}

// SendJobFailure logs p at critical level and flushes the primary logger.
func (s *Sink) SendJobFailure(ctx context.Context, p notify.JobFailurePayload) error {
	s.logger.Critical(ctx, p.Message(s.handler),
		"job_id", p.JobID,
		"job", p.JobName,
		"error_class", p.ErrorClass,
	)
	return s.logger.Flush()
}
