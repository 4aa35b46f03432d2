package statsd

import (
	"maps"
	"sync"
	"time"
)

// Kind names a StatsD metric type.
type Kind string

const (
	KindCount  Kind = "c"
	KindGauge  Kind = "g"
	KindTiming Kind = "ms"
	KindSet    Kind = "s"
)

// Sample is one metric captured by a Recorder.
type Sample struct {
	Kind     Kind
	Name     string
	Value    float64
	Member   string
	Duration time.Duration
	Tags     map[string]string
}

// Recorder is an in-memory Sink for tests and dry runs.
type Recorder struct {
	mu      sync.Mutex
	samples []Sample
}

var _ Sink = (*Recorder)(nil)

func (r *Recorder) Count(name string, value int64, tags map[string]string) {
	r.add(Sample{Kind: KindCount, Name: name, Value: float64(value), Tags: maps.Clone(tags)})
}

func (r *Recorder) Gauge(name string, value float64, tags map[string]string) {
	r.add(Sample{Kind: KindGauge, Name: name, Value: value, Tags: maps.Clone(tags)})
}

func (r *Recorder) Timing(name string, d time.Duration, tags map[string]string) {
	r.add(Sample{Kind: KindTiming, Name: name, Duration: d, Tags: maps.Clone(tags)})
}

func (r *Recorder) Set(name, member string, tags map[string]string) {
	r.add(Sample{Kind: KindSet, Name: name, Member: member, Tags: maps.Clone(tags)})
}

func (r *Recorder) add(s Sample) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.samples = append(r.samples, s)
}

// Samples returns a copy of everything recorded so far, in order.
func (r *Recorder) Samples() []Sample {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Sample, len(r.samples))
	copy(out, r.samples)
	return out
}

// Find returns the recorded samples with the given kind and name.
func (r *Recorder) Find(kind Kind, name string) []Sample {
	var out []Sample
	for _, s := range r.Samples() {
		if s.Kind == kind && s.Name == name {
			out = append(out, s)
		}
	}
	return out
}

// Names returns the metric names in recording order.
func (r *Recorder) Names() []string {
	samples := r.Samples()
	out := make([]string, len(samples))
	for i, s := range samples {
		out[i] = s.Name
	}
	return out
}
