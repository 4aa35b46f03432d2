package bootstrap

import (
	"log/slog"

	"github.com/door43/catalog-job-handler/config"
	"github.com/door43/catalog-job-handler/internal/logging"
	"github.com/door43/catalog-job-handler/internal/observability/notify/failedlog"
	"github.com/door43/catalog-job-handler/internal/observability/notify/logsink"
	"github.com/door43/catalog-job-handler/internal/observability/notify/pagerduty"
	"github.com/door43/catalog-job-handler/internal/observability/notify/slack"
	"github.com/door43/catalog-job-handler/internal/observability/statsd"
	"github.com/door43/catalog-job-handler/internal/service/failurenotifier"
)

// NewMetricsClient builds the StatsD client. A client that cannot be dialled is
// replaced by a disabled one so a metrics outage never stops the worker.
func NewMetricsClient(cfg *config.AppConfig, logger *slog.Logger) *statsd.Client {
	if logger == nil {
		logger = slog.Default()
	}
	m := cfg.Observability.Metrics

	client, err := statsd.NewClient(statsd.Config{
		Enabled: m.IsEnabled(),
		Address: m.StatsdAddress,
		Prefix:  cfg.StatsPrefix(),
		Tagged:  m.Tagged,
		Logger:  logger,
	})
	if err != nil {
		logger.Error("failed to initialise statsd client", "address", m.StatsdAddress, "error", err)
		client, _ = statsd.NewClient(statsd.Config{Enabled: false, Logger: logger})
	}
	return client
}

// BuildFailureNotifier assembles the failure observers in escalation order:
// the primary log, the independent FAILED stream, then Slack and PagerDuty
// when they are configured.
func BuildFailureNotifier(cfg *config.AppConfig, logger *logging.Logger) *failurenotifier.Service {
	if logger == nil {
		logger = logging.New(logging.Config{})
	}
	handler := cfg.PrefixedHandlerName()
	notifications := cfg.Observability.Notifications

	sinks := make([]failurenotifier.SinkRegistration, 0, 4)

	if primary, err := logsink.New(logger, handler); err != nil {
		logger.Error("failed to initialise primary log observer", "error", err)
	} else {
		sinks = append(sinks, failurenotifier.SinkRegistration{Name: "primary_log", Sink: primary})
	}

	failed, err := failedlog.New(failedlog.Config{
		Dir:    cfg.Logging.FailedDir,
		Group:  cfg.FailedLogGroup(),
		Stream: handler,
	})
	if err != nil {
		logger.Error("failed to initialise failed log observer", "error", err)
	} else {
		sinks = append(sinks, failurenotifier.SinkRegistration{Name: "failed_log", Sink: failed})
	}

	if notifications.Slack.Enabled {
		client, err := slack.NewClient(slack.Config{
			WebhookURL:    notifications.Slack.WebhookURL,
			Channel:       notifications.Slack.Channel,
			Username:      notifications.Slack.Username,
			Timeout:       notifications.Timeout,
			RetryLimit:    notifications.RetryLimit,
			RepoURLPrefix: notifications.Slack.RepoURLPrefix,
		})
		if err != nil {
			logger.Error("failed to initialise slack notifier", "error", err)
		} else {
			sinks = append(sinks, failurenotifier.SinkRegistration{Name: "slack", Sink: client})
		}
	}

	if notifications.PagerDuty.Enabled {
		client, err := pagerduty.NewClient(pagerduty.Config{
			RoutingKey: notifications.PagerDuty.RoutingKey,
			Source:     notifications.PagerDuty.Source,
			Component:  notifications.PagerDuty.Component,
			Timeout:    notifications.Timeout,
			RetryLimit: notifications.RetryLimit,
		})
		if err != nil {
			logger.Error("failed to initialise pagerduty notifier", "error", err)
		} else {
			sinks = append(sinks, failurenotifier.SinkRegistration{Name: "pagerduty", Sink: client})
		}
	}

	return failurenotifier.NewService(failurenotifier.Options{
		Logger: logger.Logger,
		Sinks:  sinks,
	})
}
