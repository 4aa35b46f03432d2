package config

import (
	"strings"
	"time"
)

// QueueConfig names the webhook queue in Redis.
type QueueConfig struct {
	// Name is the unprefixed queue name; see AppConfig.QueueName.
	Name      string        `env:"QUEUE_NAME"       envDefault:"Door43_catalog_webhook"`
	Namespace string        `env:"QUEUE_NAMESPACE"  envDefault:"catalog"`
	ResultTTL time.Duration `env:"QUEUE_RESULT_TTL" envDefault:"500s"`
}

// Sanitize fills empty queue settings with their defaults.
func (c *QueueConfig) Sanitize() {
	if c.Name = strings.TrimSpace(c.Name); c.Name == "" {
		c.Name = "Door43_catalog_webhook"
	}
	if c.Namespace = strings.TrimSpace(c.Namespace); c.Namespace == "" {
		c.Namespace = "catalog"
	}
	if c.ResultTTL <= 0 {
		c.ResultTTL = 500 * time.Second
	}
}

// WorkerConfig sizes the worker pool.
type WorkerConfig struct {
	Concurrency    int           `env:"WORKER_CONCURRENCY"      envDefault:"1"`
	PollTimeout    time.Duration `env:"WORKER_POLL_TIMEOUT"     envDefault:"5s"`
	MaxBrokerFails int           `env:"WORKER_MAX_BROKER_FAILS" envDefault:"5"`

	// DrainTimeout bounds how long running jobs may continue after SIGTERM.
	DrainTimeout time.Duration `env:"WORKER_DRAIN_TIMEOUT" envDefault:"2m"`
}

// Sanitize keeps the pool at one worker or more and fills empty timeouts.
func (c *WorkerConfig) Sanitize() {
	if c.Concurrency < 1 {
		c.Concurrency = 1
	}
	if c.PollTimeout <= 0 {
		c.PollTimeout = 5 * time.Second
	}
	if c.MaxBrokerFails < 1 {
		c.MaxBrokerFails = 5
	}
	if c.DrainTimeout <= 0 {
		c.DrainTimeout = 2 * time.Minute
	}
}

// ArchiveConfig controls repository snapshot downloads.
type ArchiveConfig struct {
	// TempRoot holds per-job working directories; empty means the OS temp dir.
	TempRoot       string        `env:"ARCHIVE_TEMP_ROOT"`
	TempPrefix     string        `env:"ARCHIVE_TEMP_PREFIX"     envDefault:"Door43_"`
	StaleAfter     time.Duration `env:"ARCHIVE_STALE_AFTER"     envDefault:"1h"`
	NetworkTries   int           `env:"ARCHIVE_NETWORK_TRIES"   envDefault:"4"`
	NetworkBackoff time.Duration `env:"ARCHIVE_NETWORK_BACKOFF" envDefault:"4s"`
	ZipTries       int           `env:"ARCHIVE_ZIP_TRIES"       envDefault:"4"`
	ZipBackoff     time.Duration `env:"ARCHIVE_ZIP_BACKOFF"     envDefault:"5s"`
	HTTPTimeout    time.Duration `env:"ARCHIVE_HTTP_TIMEOUT"    envDefault:"2m"`
	// Keep leaves downloaded zips on disk; unset follows the dev chain.
	Keep *bool `env:"ARCHIVE_KEEP"`
}

// Sanitize restores the default retry budgets for non-positive values.
func (c *ArchiveConfig) Sanitize() {
	c.TempRoot = strings.TrimSpace(c.TempRoot)
	// Stale cleanup matches on the prefix, so it must never be empty.
	if c.TempPrefix = strings.TrimSpace(c.TempPrefix); c.TempPrefix == "" {
		c.TempPrefix = "Door43_"
	}
	if c.StaleAfter <= 0 {
		c.StaleAfter = time.Hour
	}
	if c.NetworkTries < 1 {
		c.NetworkTries = 4
	}
	if c.NetworkBackoff <= 0 {
		c.NetworkBackoff = 4 * time.Second
	}
	if c.ZipTries < 1 {
		c.ZipTries = 4
	}
	if c.ZipBackoff <= 0 {
		c.ZipBackoff = 5 * time.Second
	}
	if c.HTTPTimeout <= 0 {
		c.HTTPTimeout = 2 * time.Minute
	}
}

// DedupConfig tunes duplicate push detection.
type DedupConfig struct {
	// URLSegments is how many leading "/" separated commit URL segments
	// must match for two pushes to count as the same repository.
	URLSegments int `env:"DEDUP_URL_SEGMENTS" envDefault:"6"`
}

// Sanitize falls back to six URL segments.
func (c *DedupConfig) Sanitize() {
	if c.URLSegments < 1 {
		c.URLSegments = 6
	}
}
