package config

import (
	"fmt"
	"strings"
)

// HandlerName is the unprefixed name of this job handler.
const HandlerName = "Door43_catalog_job_handler"

// AppConfig is the complete handler configuration, loaded once in main from
// environment variables with github.com/caarlos0/env and passed to each
// component. Domain configs live in separate files:
//   - database.go: Redis connection
//   - worker.go: queue, worker pool, archive fetching and duplicate detection
//   - observability.go: logging, metrics and failure notifications
type AppConfig struct {
	// Prefix is "" for production or "dev-" for the development chain.
	Prefix string `env:"QUEUE_PREFIX" envDefault:""`
	// DebugMode turns on verbose logging and marks the failed-log group.
	DebugMode bool `env:"DEBUG_MODE" envDefault:"false"`
	// TestMode and TravisBranch mark runs from the test suites and CI.
	TestMode     string `env:"TEST_MODE"`
	TravisBranch string `env:"TRAVIS_BRANCH"`

	Redis RedisConfig `envPrefix:"REDIS_"`

	Queue   QueueConfig
	Worker  WorkerConfig
	Archive ArchiveConfig
	Dedup   DedupConfig

	Logging       LoggingConfig
	Observability ObservabilityConfig
}

// Sanitize applies guardrails to configuration values loaded from env.
func (c *AppConfig) Sanitize() {
	c.Prefix = strings.TrimSpace(c.Prefix)
	c.TestMode = strings.TrimSpace(c.TestMode)
	c.TravisBranch = strings.TrimSpace(c.TravisBranch)

	c.Queue.Sanitize()
	c.Worker.Sanitize()
	c.Archive.Sanitize()
	c.Dedup.Sanitize()
	c.Logging.Sanitize(c.DebugMode)
	c.Observability.Sanitize()
}

// ValidatePrefix reports an unexpected QUEUE_PREFIX. The handler still runs;
// callers log the error at critical level.
func (c *AppConfig) ValidatePrefix() error {
	if c.Prefix == "" || c.Prefix == "dev-" {
		return nil
	}
	return fmt.Errorf("unexpected prefix: %q, expected \"\" or \"dev-\"", c.Prefix)
}

// IsDev reports whether this is the development chain.
func (c *AppConfig) IsDev() bool { return c.Prefix != "" }

// QueueName is the prefixed name of the webhook queue.
func (c *AppConfig) QueueName() string { return c.Prefix + c.Queue.Name }

// PrefixedHandlerName names this handler in logs and the failed-log stream.
func (c *AppConfig) PrefixedHandlerName() string { return c.Prefix + HandlerName }

// StatsPrefix is the metric namespace, door43-catalog.dev or door43-catalog.prod.
func (c *AppConfig) StatsPrefix() string {
	if c.IsDev() {
		return "door43-catalog.dev"
	}
	return "door43-catalog.prod"
}

// FailedLogGroup names the log group that receives unexpected job failures.
// The prefix is left out for test and CI runs, which are marked instead.
func (c *AppConfig) FailedLogGroup() string {
	var b strings.Builder
	b.WriteString("FAILED_")
	if c.TestMode == "" && c.TravisBranch == "" {
		b.WriteString(c.Prefix)
	}
	b.WriteString("tX")
	if c.DebugMode {
		b.WriteString("_DEBUG")
	}
	if c.TestMode != "" {
		b.WriteString("_TEST")
	}
	if c.TravisBranch != "" {
		b.WriteString("_TravisCI")
	}
	return b.String()
}

// KeepArchives reports whether downloaded zips are left on disk. It follows
// ARCHIVE_KEEP when set and otherwise keeps them on the dev chain only.
func (c *AppConfig) KeepArchives() bool {
	if c.Archive.Keep != nil {
		return *c.Archive.Keep
	}
	return c.IsDev()
}
