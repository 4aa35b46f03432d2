// Package failurenotifier runs the ordered list of failure observers for a failed job.
package failurenotifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/door43/catalog-job-handler/internal/observability/notify"
)

// SinkRegistration pairs a sink implementation with a name for logging.
type SinkRegistration struct {
	Name string
	Sink notify.Sink
}

// Options configures a Service.
type Options struct {
	Logger *slog.Logger
	// Sinks are invoked in this order.
	Sinks []SinkRegistration
}

// Service delivers failure events to every registered sink, one after another.
// A failing or panicking sink never prevents the later ones from running.
type Service struct {
	logger *slog.Logger
	sinks  []SinkRegistration
}

// NewService returns a Service over opts.Sinks, skipping nil sinks.
func NewService(opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var sinks []SinkRegistration
	for _, entry := range opts.Sinks {
		if entry.Sink == nil {
			continue
		}
		if entry.Name == "" {
			entry.Name = "sink"
		}
		sinks = append(sinks, entry)
	}

	return &Service{
		logger: logger.With("component", "failure_notifier"),
		sinks:  sinks,
	}
}

// NotifyJobFailure walks the sinks in registration order. Delivery errors are
// logged and returned joined; they never replace the job's own error.
func (s *Service) NotifyJobFailure(ctx context.Context, payload notify.JobFailurePayload) error {
	if s == nil || len(s.sinks) == 0 {
		return nil
	}
	if payload.Severity == "" {
		payload.Severity = notify.SeverityCritical
	}

	var errs []error
	for _, entry := range s.sinks {
		if err := s.deliver(ctx, entry, payload); err != nil {
			s.logger.ErrorContext(ctx, "failure notifier delivery error",
				"sink", entry.Name,
				"job_id", payload.JobID,
				"error", err,
			)
			errs = append(errs, fmt.Errorf("%s: %w", entry.Name, err))
		}
	}
	return errors.Join(errs...)
}

func (s *Service) deliver(ctx context.Context, entry SinkRegistration, payload notify.JobFailurePayload) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sink panicked: %v", r)
		}
	}()
	return entry.Sink.SendJobFailure(ctx, payload)
}

// Enabled reports whether the notifier has any active sinks.
func (s *Service) Enabled() bool {
	return s != nil && len(s.sinks) > 0
}

// Names lists the registered sinks in invocation order.
func (s *Service) Names() []string {
	if s == nil {
		return nil
	}
	names := make([]string, len(s.sinks))
	for i, entry := range s.sinks {
		names[i] = entry.Name
	}
	return names
}
