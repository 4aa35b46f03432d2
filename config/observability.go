package config

import (
	"net"
	"strings"
	"time"
)

const (
	defaultObservabilityName = "catalog-job-handler"
	defaultStatsdPort        = "8125"
)

// LoggingConfig controls the primary logger and the failed-job log stream.
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL"  envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
	// FailedDir is the root under which FAILED_* log groups are written.
	FailedDir string `env:"LOG_FAILED_DIR" envDefault:"logs"`

	// FlushInterval bounds how long info records wait in the buffer between jobs.
	FlushInterval time.Duration `env:"LOG_FLUSH_INTERVAL" envDefault:"5s"`
}

// Sanitize forces debug logging in debug mode and fills empty values.
func (c *LoggingConfig) Sanitize(debug bool) {
	c.Level = strings.ToLower(strings.TrimSpace(c.Level))
	switch {
	case debug:
		c.Level = "debug"
	case c.Level == "":
		c.Level = "info"
	}
	if c.Format = strings.ToLower(strings.TrimSpace(c.Format)); c.Format == "" {
		c.Format = "json"
	}
	if c.FailedDir = strings.TrimSpace(c.FailedDir); c.FailedDir == "" {
		c.FailedDir = "logs"
	}
	if c.FlushInterval <= 0 {
		c.FlushInterval = 5 * time.Second
	}
}

// ObservabilityConfig groups configuration that controls metrics and alert fan-out.
type ObservabilityConfig struct {
	Metrics       ObservabilityMetricsConfig
	Notifications ObservabilityNotificationsConfig
}

// Sanitize applies guardrails to observability sub-configs.
func (c *ObservabilityConfig) Sanitize() {
	c.Metrics.Sanitize()
	c.Notifications.Sanitize()
}

// ObservabilityMetricsConfig controls emission of metrics to StatsD.
type ObservabilityMetricsConfig struct {
	Enabled bool `env:"OBSERVABILITY_METRICS_ENABLED" envDefault:"true"`
	// StatsdAddress wins over GraphiteHostname when both are set.
	StatsdAddress    string `env:"OBSERVABILITY_METRICS_STATSD_ADDRESS"`
	GraphiteHostname string `env:"GRAPHITE_HOSTNAME" envDefault:"localhost"`
	// Tagged sends DogStatsD tags; plain Graphite StatsD drops them.
	Tagged bool `env:"OBSERVABILITY_METRICS_TAGGED" envDefault:"false"`
}

// Sanitize derives the StatsD address and disables metrics when none is known.
func (c *ObservabilityMetricsConfig) Sanitize() {
	c.StatsdAddress = strings.TrimSpace(c.StatsdAddress)
	c.GraphiteHostname = strings.TrimSpace(c.GraphiteHostname)
	if c.StatsdAddress == "" && c.GraphiteHostname != "" {
		c.StatsdAddress = net.JoinHostPort(c.GraphiteHostname, defaultStatsdPort)
	}
	if c.StatsdAddress == "" {
		c.Enabled = false
	}
}

// IsEnabled returns true when metrics emission is active after sanitisation.
func (c *ObservabilityMetricsConfig) IsEnabled() bool {
	return c.Enabled && c.StatsdAddress != ""
}

// ObservabilityNotificationsConfig controls outbound failure notifications.
// The primary-log and failed-stream observers are always on; these settings
// add Slack and PagerDuty.
type ObservabilityNotificationsConfig struct {
	Enabled    bool                        `env:"OBSERVABILITY_NOTIFICATIONS_ENABLED"     envDefault:"false"`
	Timeout    time.Duration               `env:"OBSERVABILITY_NOTIFICATIONS_TIMEOUT"     envDefault:"5s"`
	RetryLimit int                         `env:"OBSERVABILITY_NOTIFICATIONS_RETRY_LIMIT" envDefault:"3"`
	Slack      SlackNotificationConfig     `                                                                 envPrefix:"OBSERVABILITY_NOTIFICATIONS_SLACK_"`
	PagerDuty  PagerDutyNotificationConfig `                                                                 envPrefix:"OBSERVABILITY_NOTIFICATIONS_PAGERDUTY_"`
}

// Sanitize normalises notification configuration values.
func (c *ObservabilityNotificationsConfig) Sanitize() {
	if c.Timeout <= 0 {
		c.Timeout = 5 * time.Second
	}
	if c.RetryLimit < 0 {
		c.RetryLimit = 0
	}

	c.Slack.sanitize()
	c.PagerDuty.sanitize()

	if !c.Enabled {
		c.Slack.Enabled = false
		c.PagerDuty.Enabled = false
		return
	}

	if c.Slack.Enabled && c.Slack.WebhookURL == "" {
		c.Slack.Enabled = false
	}

	if c.PagerDuty.Enabled && c.PagerDuty.RoutingKey == "" {
		c.PagerDuty.Enabled = false
	}
}

// SlackNotificationConfig controls Slack webhook fan-out.
type SlackNotificationConfig struct {
	Enabled       bool   `env:"ENABLED"         envDefault:"false"`
	WebhookURL    string `env:"WEBHOOK_URL"`
	Channel       string `env:"CHANNEL"`
	Username      string `env:"USERNAME"        envDefault:"catalog-job-handler"`
	RepoURLPrefix string `env:"REPO_URL_PREFIX" envDefault:"https://git.door43.org"`
}

func (c *SlackNotificationConfig) sanitize() {
	c.WebhookURL = strings.TrimSpace(c.WebhookURL)
	c.Channel = strings.TrimSpace(c.Channel)
	c.RepoURLPrefix = strings.TrimRight(strings.TrimSpace(c.RepoURLPrefix), "/")
	if c.Username = strings.TrimSpace(c.Username); c.Username == "" {
		c.Username = defaultObservabilityName
	}
}

// PagerDutyNotificationConfig controls PagerDuty Events API v2 fan-out.
type PagerDutyNotificationConfig struct {
	Enabled    bool   `env:"ENABLED"     envDefault:"false"`
	RoutingKey string `env:"ROUTING_KEY"`
	Source     string `env:"SOURCE"      envDefault:"door43-catalog"`
	Component  string `env:"COMPONENT"   envDefault:"catalog-job-handler"`
}

func (c *PagerDutyNotificationConfig) sanitize() {
	c.RoutingKey = strings.TrimSpace(c.RoutingKey)
	if c.Source = strings.TrimSpace(c.Source); c.Source == "" {
		c.Source = "door43-catalog"
	}
	if c.Component = strings.TrimSpace(c.Component); c.Component == "" {
		c.Component = defaultObservabilityName
	}
}
