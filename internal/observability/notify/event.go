// Package notify defines the failure observers invoked when a webhook job fails.
package notify

import (
	"context"
	"fmt"
	"time"
)

const SeverityCritical = "critical"

// JobFailurePayload is what every observer receives about one failed job.
type JobFailurePayload struct {
	JobID string
	// JobName is the descriptive label, e.g. "'alice' pushing 'bob/proj'".
	JobName    string
	Owner      string
	Repo       string
	Event      string
	Payload    []byte
	Error      string
	ErrorClass string
	Severity   string
	OccurredAt time.Time
	Metadata   map[string]string
}

// Message renders the critical log line shared by the log-based observers.
func (p JobFailurePayload) Message(handler string) string {
	return fmt.Sprintf("%s webhook threw an exception while processing:\n%s\ngetting exception:\n%s",
		handler, p.Payload, p.Error)
}

// Sink consumes job failure notifications.
type Sink interface {
	SendJobFailure(ctx context.Context, payload JobFailurePayload) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ctx context.Context, payload JobFailurePayload) error

func (f SinkFunc) SendJobFailure(ctx context.Context, payload JobFailurePayload) error {
	if f == nil {
		return nil
	}
	return f(ctx, payload)
}
