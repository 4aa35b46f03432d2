package failurenotifier

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/door43/catalog-job-handler/internal/observability/notify"
)

func recordingSink(name string, calls *[]string, err error) SinkRegistration {
	return SinkRegistration{
		Name: name,
		Sink: notify.SinkFunc(func(ctx context.Context, payload notify.JobFailurePayload) error {
			*calls = append(*calls, name)
			return err
		}),
	}
}

func TestNotifyJobFailureRunsSinksInOrder(t *testing.T) {
	var calls []string
	svc := NewService(Options{Sinks: []SinkRegistration{
		recordingSink("primary", &calls, nil),
		recordingSink("failed_log", &calls, nil),
		{Name: "disabled"},
		recordingSink("slack", &calls, nil),
	}})

	require.NoError(t, svc.NotifyJobFailure(context.Background(), notify.JobFailurePayload{JobID: "1"}))
	assert.Equal(t, []string{"primary", "failed_log", "slack"}, calls)
	assert.Equal(t, []string{"primary", "failed_log", "slack"}, svc.Names())
}

func TestNotifyJobFailureDefaultsSeverity(t *testing.T) {
	var got notify.JobFailurePayload
	svc := NewService(Options{Sinks: []SinkRegistration{{
		Name: "capture",
		Sink: notify.SinkFunc(func(ctx context.Context, payload notify.JobFailurePayload) error {
			got = payload
			return nil
		}),
	}}})

	require.NoError(t, svc.NotifyJobFailure(context.Background(), notify.JobFailurePayload{JobID: "123"}))
	assert.Equal(t, notify.SeverityCritical, got.Severity)
}

func TestNotifyJobFailureContinuesAfterErrors(t *testing.T) {
	var calls []string
	boom := errors.New("boom")
	svc := NewService(Options{Sinks: []SinkRegistration{
		recordingSink("first", &calls, boom),
		{Name: "panics", Sink: notify.SinkFunc(func(context.Context, notify.JobFailurePayload) error {
			calls = append(calls, "panics")
			panic("sink exploded")
		})},
		recordingSink("last", &calls, nil),
	}})

	err := svc.NotifyJobFailure(context.Background(), notify.JobFailurePayload{JobID: "1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "sink exploded")
	assert.Equal(t, []string{"first", "panics", "last"}, calls)
}

func TestServiceDisabled(t *testing.T) {
	svc := NewService(Options{})
	assert.False(t, svc.Enabled())
	assert.NoError(t, svc.NotifyJobFailure(context.Background(), notify.JobFailurePayload{}))

	var nilSvc *Service
	assert.False(t, nilSvc.Enabled())
}
