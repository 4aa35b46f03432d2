package config

import (
	"testing"
	"time"

	env "github.com/caarlos0/env/v11"
)

func parseEnv(t *testing.T) AppConfig {
	t.Helper()
	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("env.Parse failed: %v", err)
	}
	cfg.Sanitize()
	return cfg
}

func TestAppConfig_Defaults(t *testing.T) {
	cfg := parseEnv(t)

	if cfg.IsDev() {
		t.Fatal("expected production when QUEUE_PREFIX is unset")
	}
	if got := cfg.QueueName(); got != "Door43_catalog_webhook" {
		t.Fatalf("unexpected queue name %q", got)
	}
	if got := cfg.StatsPrefix(); got != "door43-catalog.prod" {
		t.Fatalf("unexpected stats prefix %q", got)
	}
	if cfg.Archive.NetworkTries != 4 || cfg.Archive.NetworkBackoff != 4*time.Second {
		t.Fatalf("unexpected network retry budget %d/%v", cfg.Archive.NetworkTries, cfg.Archive.NetworkBackoff)
	}
	if cfg.Archive.StaleAfter != time.Hour {
		t.Fatalf("unexpected stale age %v", cfg.Archive.StaleAfter)
	}
	if cfg.Worker.DrainTimeout != 2*time.Minute || cfg.Logging.FlushInterval != 5*time.Second {
		t.Fatalf("unexpected drain/flush defaults %v/%v", cfg.Worker.DrainTimeout, cfg.Logging.FlushInterval)
	}
	if cfg.Dedup.URLSegments != 6 {
		t.Fatalf("unexpected dedup segments %d", cfg.Dedup.URLSegments)
	}
	if cfg.Redis.URI != "localhost:6379" {
		t.Fatalf("unexpected redis uri %q", cfg.Redis.URI)
	}
	if cfg.Observability.Metrics.StatsdAddress != "localhost:8125" {
		t.Fatalf("expected statsd address from graphite host, got %q", cfg.Observability.Metrics.StatsdAddress)
	}
	if cfg.KeepArchives() {
		t.Fatal("expected production to remove archives")
	}
}

func TestAppConfig_DevChain(t *testing.T) {
	t.Setenv("QUEUE_PREFIX", "dev-")
	t.Setenv("GRAPHITE_HOSTNAME", "graphite.internal")
	t.Setenv("DEBUG_MODE", "true")
	t.Setenv("LOG_LEVEL", "warn")

	cfg := parseEnv(t)

	if err := cfg.ValidatePrefix(); err != nil {
		t.Fatalf("dev- is a valid prefix: %v", err)
	}
	if got := cfg.QueueName(); got != "dev-Door43_catalog_webhook" {
		t.Fatalf("unexpected queue name %q", got)
	}
	if got := cfg.PrefixedHandlerName(); got != "dev-Door43_catalog_job_handler" {
		t.Fatalf("unexpected handler name %q", got)
	}
	if got := cfg.StatsPrefix(); got != "door43-catalog.dev" {
		t.Fatalf("unexpected stats prefix %q", got)
	}
	if got := cfg.Observability.Metrics.StatsdAddress; got != "graphite.internal:8125" {
		t.Fatalf("unexpected statsd address %q", got)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("expected debug mode to force debug logging, got %q", cfg.Logging.Level)
	}
	if !cfg.KeepArchives() {
		t.Fatal("expected dev chain to keep archives")
	}

	t.Setenv("ARCHIVE_KEEP", "false")
	if cfg = parseEnv(t); cfg.KeepArchives() {
		t.Fatal("expected ARCHIVE_KEEP to override the dev default")
	}
}

func TestAppConfig_ValidatePrefix(t *testing.T) {
	for _, prefix := range []string{"", "dev-"} {
		cfg := AppConfig{Prefix: prefix}
		if err := cfg.ValidatePrefix(); err != nil {
			t.Fatalf("prefix %q: unexpected error %v", prefix, err)
		}
	}
	cfg := AppConfig{Prefix: "staging-"}
	if err := cfg.ValidatePrefix(); err == nil {
		t.Fatal("expected an error for an unexpected prefix")
	}
}

func TestAppConfig_FailedLogGroup(t *testing.T) {
	tests := []struct {
		name string
		cfg  AppConfig
		want string
	}{
		{name: "production", cfg: AppConfig{}, want: "FAILED_tX"},
		{name: "dev", cfg: AppConfig{Prefix: "dev-"}, want: "FAILED_dev-tX"},
		{name: "dev debug", cfg: AppConfig{Prefix: "dev-", DebugMode: true}, want: "FAILED_dev-tX_DEBUG"},
		{name: "test mode drops prefix", cfg: AppConfig{Prefix: "dev-", TestMode: "1"}, want: "FAILED_tX_TEST"},
		{name: "travis", cfg: AppConfig{Prefix: "dev-", TravisBranch: "develop"}, want: "FAILED_tX_TravisCI"},
		{
			name: "everything",
			cfg:  AppConfig{Prefix: "dev-", DebugMode: true, TestMode: "1", TravisBranch: "develop"},
			want: "FAILED_tX_DEBUG_TEST_TravisCI",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.FailedLogGroup(); got != tt.want {
				t.Fatalf("FailedLogGroup() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWorkerAndArchiveConfig_Sanitize(t *testing.T) {
	w := WorkerConfig{Concurrency: 0, PollTimeout: -time.Second}
	w.Sanitize()
	if w.Concurrency != 1 || w.PollTimeout != 5*time.Second || w.MaxBrokerFails != 5 || w.DrainTimeout != 2*time.Minute {
		t.Fatalf("unexpected worker defaults %+v", w)
	}

	a := ArchiveConfig{TempPrefix: "  "}
	a.Sanitize()
	if a.TempPrefix != "Door43_" {
		t.Fatalf("expected temp prefix default, got %q", a.TempPrefix)
	}
	if a.ZipTries != 4 || a.ZipBackoff != 5*time.Second || a.HTTPTimeout != 2*time.Minute {
		t.Fatalf("unexpected archive defaults %+v", a)
	}

	d := DedupConfig{URLSegments: -2}
	d.Sanitize()
	if d.URLSegments != 6 {
		t.Fatalf("expected dedup default, got %d", d.URLSegments)
	}
}

func TestObservabilityMetricsConfig_Sanitize(t *testing.T) {
	cfg := ObservabilityMetricsConfig{
		Enabled:       true,
		StatsdAddress: " ",
	}

	cfg.Sanitize()

	if cfg.Enabled {
		t.Fatalf("expected enabled to be false when no address or host is set")
	}

	cfg = ObservabilityMetricsConfig{
		Enabled:          true,
		StatsdAddress:    " statsd:1234 ",
		GraphiteHostname: "graphite",
	}

	cfg.Sanitize()

	if !cfg.IsEnabled() {
		t.Fatalf("expected metrics to remain enabled")
	}
	if cfg.StatsdAddress != "statsd:1234" {
		t.Fatalf("expected explicit address to win, got %q", cfg.StatsdAddress)
	}
}

func TestObservabilityNotificationsConfig_Sanitize(t *testing.T) {
	cfg := ObservabilityNotificationsConfig{
		Enabled:    true,
		Timeout:    0,
		RetryLimit: -1,
		Slack: SlackNotificationConfig{
			Enabled:       true,
			WebhookURL:    " ",
			Channel:       "  ",
			Username:      "",
			RepoURLPrefix: "https://git.door43.org/",
		},
		PagerDuty: PagerDutyNotificationConfig{
			Enabled:    true,
			RoutingKey: " ",
			Source:     "",
			Component:  "",
		},
	}

	cfg.Sanitize()

	if cfg.Timeout <= 0 {
		t.Fatalf("expected timeout to fall back to default, got %v", cfg.Timeout)
	}
	if cfg.RetryLimit < 0 {
		t.Fatalf("expected retry limit to be clamped to >= 0, got %d", cfg.RetryLimit)
	}
	if cfg.Slack.Enabled {
		t.Fatal("expected slack to be disabled without a webhook url")
	}
	if cfg.Slack.Username != "catalog-job-handler" {
		t.Fatalf("expected slack username default, got %q", cfg.Slack.Username)
	}
	if cfg.Slack.RepoURLPrefix != "https://git.door43.org" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.Slack.RepoURLPrefix)
	}
	if cfg.PagerDuty.Enabled {
		t.Fatal("expected pagerduty to be disabled without a routing key")
	}
	if cfg.PagerDuty.Source != "door43-catalog" {
		t.Fatalf("expected pagerduty source default, got %q", cfg.PagerDuty.Source)
	}
	if cfg.PagerDuty.Component != "catalog-job-handler" {
		t.Fatalf("expected pagerduty component default, got %q", cfg.PagerDuty.Component)
	}

	// Disabled top-level should disable child sinks.
	cfg = ObservabilityNotificationsConfig{
		Enabled: false,
		Slack: SlackNotificationConfig{
			Enabled:    true,
			WebhookURL: "https://hooks.slack.com/services/test",
		},
		PagerDuty: PagerDutyNotificationConfig{
			Enabled:    true,
			RoutingKey: "abc",
		},
	}
	cfg.Sanitize()
	if cfg.Slack.Enabled || cfg.PagerDuty.Enabled {
		t.Fatal("expected child sinks to be disabled when notifications are disabled")
	}
}
