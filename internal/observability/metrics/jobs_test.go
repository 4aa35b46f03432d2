package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/door43/catalog-job-handler/internal/domain/model"
	"github.com/door43/catalog-job-handler/internal/observability/statsd"
)

type boomError struct{}

func (boomError) Error() string { return "boom" }

func TestCompletedEmitsTimingAndOneCounter(t *testing.T) {
	var rec statsd.Recorder
	m := NewJobMetrics(&rec, map[string]string{"env": "dev"})

	m.Completed(Completion{Result: ResultError, Duration: 1500 * time.Millisecond, Err: fmt.Errorf("fetch: %w", boomError{})})

	timings := rec.Find(statsd.KindTiming, MetricDuration)
	require.Len(t, timings, 1)
	assert.Equal(t, 1500*time.Millisecond, timings[0].Duration)

	completed := rec.Find(statsd.KindCount, MetricCompleted)
	require.Len(t, completed, 1)
	assert.Equal(t, "error", completed[0].Tags["result"])
	assert.Equal(t, "dev", completed[0].Tags["env"])
	assert.Equal(t, "metrics_boomerror", completed[0].Tags["error_class"])
}

func TestCompletedSuccessHasNoErrorClass(t *testing.T) {
	var rec statsd.Recorder
	NewJobMetrics(&rec, nil).Completed(Completion{Result: ResultAborted, Duration: time.Millisecond})

	completed := rec.Find(statsd.KindCount, MetricCompleted)
	require.Len(t, completed, 1)
	assert.Equal(t, map[string]string{"result": "aborted"}, completed[0].Tags)
}

func TestUniqueIDsFallback(t *testing.T) {
	var rec statsd.Recorder
	p := model.Payload{
		"repository": map[string]any{
			"id":    float64(42),
			"owner": map[string]any{"username": "bob"},
		},
	}
	NewJobMetrics(&rec, nil).UniqueIDs(p)

	members := map[string]string{}
	for _, s := range rec.Samples() {
		require.Equal(t, statsd.KindSet, s.Kind)
		members[s.Name] = s.Member
	}
	assert.Equal(t, map[string]string{
		MetricRepoIDs:   "42",
		MetricOwnerIDs:  model.MissingStatsIDValue,
		MetricPusherIDs: model.MissingStatsIDValue,
	}, members)
}

func TestASCIIName(t *testing.T) {
	tests := map[string]string{
		"bob":         "bob",
		"José":        "Jos?",
		"a.b c":       "a_b_c",
		"":            model.DefaultOwner,
		"  unfolding": "unfolding",
	}
	for in, want := range tests {
		assert.Equal(t, want, ASCIIName(in), in)
	}
}

func TestUserInvokedAndMarkers(t *testing.T) {
	var rec statsd.Recorder
	m := NewJobMetrics(&rec, nil)
	m.Attempted()
	m.QueueLength(3)
	m.UserInvoked("Ωmega")
	m.FailedMarker()

	assert.Equal(t, []string{
		MetricAttempted,
		MetricQueueLength,
		MetricUsersPrefix + "?mega",
		MetricUnknownType,
	}, rec.Names())
	assert.InDelta(t, 3, rec.Find(statsd.KindGauge, MetricQueueLength)[0].Value, 0)
}

func TestNilSinkIsSafe(t *testing.T) {
	m := NewJobMetrics(nil, nil)
	m.Attempted()
	m.Completed(Completion{Result: ResultSuccess})

	var nilMetrics *JobMetrics
	nilMetrics.UserInvoked("bob")
}
