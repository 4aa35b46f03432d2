// Package metrics names and emits the webhook job metrics.
package metrics

import (
	"strings"
	"time"
	"unicode"

	"github.com/door43/catalog-job-handler/internal/domain/model"
	obserrors "github.com/door43/catalog-job-handler/internal/observability/errors"
	"github.com/door43/catalog-job-handler/internal/observability/statsd"
)

// Metric names, relative to the client prefix (door43-catalog.<env>).
const (
	JobHandlerPrefix = "job-handler"
	WebhookPrefix    = JobHandlerPrefix + ".webhook"

	MetricAttempted   = WebhookPrefix + ".jobs.attempted"
	MetricCompleted   = WebhookPrefix + ".jobs.completed"
	MetricDuration    = WebhookPrefix + ".job.duration"
	MetricUsersPrefix = WebhookPrefix + ".users.invoked."
	MetricRepoIDs     = WebhookPrefix + ".repo_ids"
	MetricOwnerIDs    = WebhookPrefix + ".owner_ids"
	MetricPusherIDs   = WebhookPrefix + ".pusher_ids"

	MetricUnknownType = JobHandlerPrefix + ".types.invoked.unknown"
	MetricQueueLength = "enqueue-job.webhook.queue.length.current"
)

// Result values for the terminal jobs.completed counter.
const (
	ResultSuccess = "success"
	ResultAborted = "aborted"
	ResultNoop    = "noop"
	ResultError   = "error"

	// ResultInterrupted marks a job cut short by shutdown and handed back to the queue.
	ResultInterrupted = "interrupted"
)

// Payload paths for the unique-id sets.
const (
	fieldRepoID   = "repository.id"
	fieldOwnerID  = "repository.owner.id"
	fieldPusherID = "pusher.id"
)

// Completion describes how one job invocation ended.
type Completion struct {
	Result   string
	Duration time.Duration
	Err      error
}

// JobMetrics records webhook job metrics on a sink. A nil sink discards
// everything so metrics outages never affect job results.
type JobMetrics struct {
	sink statsd.Sink
	tags map[string]string
}

// NewJobMetrics wraps sink. tags are attached to every metric.
func NewJobMetrics(sink statsd.Sink, tags map[string]string) *JobMetrics {
	return &JobMetrics{sink: sink, tags: CloneTags(tags)}
}

// Attempted counts a job as soon as a worker picks it up.
func (m *JobMetrics) Attempted() {
	if m == nil || m.sink == nil {
		return
	}
	m.sink.Count(MetricAttempted, 1, CloneTags(m.tags))
}

// QueueLength gauges the number of jobs waiting behind this one.
func (m *JobMetrics) QueueLength(n int64) {
	if m == nil || m.sink == nil {
		return
	}
	m.sink.Gauge(MetricQueueLength, float64(n), CloneTags(m.tags))
}

// UniqueIDs adds the repository, owner and pusher ids to their sets, using
// model.MissingStatsIDValue for ids the payload does not carry.
func (m *JobMetrics) UniqueIDs(p model.Payload) {
	if m == nil || m.sink == nil {
		return
	}
	for _, f := range []struct{ metric, path string }{
		{MetricRepoIDs, fieldRepoID},
		{MetricOwnerIDs, fieldOwnerID},
		{MetricPusherIDs, fieldPusherID},
	} {
		id, ok := p.Scalar(f.path)
		if !ok || id == "" {
			id = model.MissingStatsIDValue
		}
		m.sink.Set(f.metric, id, CloneTags(m.tags))
	}
}

// UserInvoked counts a job for the repository owner.
func (m *JobMetrics) UserInvoked(owner string) {
	if m == nil || m.sink == nil {
		return
	}
	m.sink.Count(MetricUsersPrefix+ASCIIName(owner), 1, CloneTags(m.tags))
}

// FailedMarker flags an unexpected failure on the unknown project type gauge.
func (m *JobMetrics) FailedMarker() {
	if m == nil || m.sink == nil {
		return
	}
	m.sink.Gauge(MetricUnknownType, 1, CloneTags(m.tags))
}

// Completed emits the timing and the single terminal counter for a job.
func (m *JobMetrics) Completed(in Completion) {
	if m == nil || m.sink == nil {
		return
	}
	tags := CloneTags(m.tags)
	if tags == nil {
		tags = make(map[string]string, 2)
	}
	tags["result"] = in.Result
	if in.Err != nil && in.Result == ResultError {
		if class := obserrors.Classify(in.Err); class != "" {
			tags["error_class"] = class
		}
	}

	m.sink.Timing(MetricDuration, in.Duration, CloneTags(tags))
	m.sink.Count(MetricCompleted, 1, tags)
}

// ASCIIName makes s safe as a single metric-name component: non-ASCII runes
// become '?', and separators the line protocol or Graphite interpret become '_'.
func ASCIIName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return model.DefaultOwner
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r > unicode.MaxASCII:
			return '?'
		case r == '.' || r == ':' || r == '|' || r == '/' || r == '@' || unicode.IsSpace(r) || unicode.IsControl(r):
			return '_'
		default:
			return r
		}
	}, s)
}

// CloneTags copies a tag map. It returns nil for an empty map.
func CloneTags(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
