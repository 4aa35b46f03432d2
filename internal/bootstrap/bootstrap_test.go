package bootstrap

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/door43/catalog-job-handler/config"
	"github.com/door43/catalog-job-handler/internal/logging"
	"github.com/door43/catalog-job-handler/internal/observability/notify"
	"github.com/door43/catalog-job-handler/internal/testutil"
)

func testConfig(t *testing.T) *config.AppConfig {
	t.Helper()
	cfg := &config.AppConfig{Prefix: "dev-"}
	cfg.Logging.FailedDir = t.TempDir()
	cfg.Sanitize()
	return cfg
}

func TestBuildFailureNotifierOrder(t *testing.T) {
	cfg := testConfig(t)
	logger := logging.New(logging.Config{Output: &bytes.Buffer{}})

	n := BuildFailureNotifier(cfg, logger)
	assert.Equal(t, []string{"primary_log", "failed_log"}, n.Names())

	cfg.Observability.Notifications = config.ObservabilityNotificationsConfig{
		Enabled:   true,
		Slack:     config.SlackNotificationConfig{Enabled: true, WebhookURL: "https://hooks.slack.com/services/x"},
		PagerDuty: config.PagerDutyNotificationConfig{Enabled: true, RoutingKey: "abc"},
	}
	cfg.Observability.Notifications.Sanitize()

	n = BuildFailureNotifier(cfg, logger)
	assert.Equal(t, []string{"primary_log", "failed_log", "slack", "pagerduty"}, n.Names())
}

func TestBuildFailureNotifierWritesBothLogs(t *testing.T) {
	cfg := testConfig(t)
	var primary bytes.Buffer
	logger := logging.New(logging.Config{Output: &primary})

	n := BuildFailureNotifier(cfg, logger)
	err := n.NotifyJobFailure(context.Background(), notify.JobFailurePayload{
		JobName: "'alice' releasing 'bob/proj'",
		Payload: []byte(`{"DCS_event":"release"}`),
		Error:   "boom",
	})
	require.NoError(t, err)

	assert.Contains(t, primary.String(), "dev-Door43_catalog_job_handler webhook threw an exception")
	assert.FileExists(t, filepath.Join(cfg.Logging.FailedDir, "FAILED_dev-tX", "dev-Door43_catalog_job_handler.log"))
}

func TestNewMetricsClientDisabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.Observability.Metrics.Enabled = false

	client := NewMetricsClient(cfg, nil)
	require.NotNil(t, client)
	assert.False(t, client.Enabled())
	assert.NoError(t, client.Close())
}

func TestNewHandlerFromConfig(t *testing.T) {
	cfg := testConfig(t)
	logger := logging.New(logging.Config{Output: &bytes.Buffer{}})

	_, err := NewHandler(WorkerDeps{Config: cfg, Logger: logger}, nil)
	assert.Error(t, err, "a queue is required")
}

func TestRunWorkerValidation(t *testing.T) {
	assert.Error(t, RunWorker(context.Background(), WorkerDeps{}))
}

func TestConnectRedisAndQueue(t *testing.T) {
	addr, ok := testutil.GetTestRedisAddr(t)
	if !ok {
		t.Skip("redis not available")
	}

	client, err := ConnectRedis(context.Background(), RedisOptions{Config: config.RedisConfig{URI: addr}})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	cfg := testConfig(t)
	q, err := NewQueue(cfg, client)
	require.NoError(t, err)
	assert.Equal(t, "dev-Door43_catalog_webhook", q.Name())
}

func TestNormalizeAddrs(t *testing.T) {
	assert.Equal(t, []string{"a:1", "b:2"}, normalizeAddrs([]string{" a:1 ", "", "b:2"}))
}

func TestClusterFallbackFromURI(t *testing.T) {
	addr, user, pass, tlsCfg, err := clusterFallbackFromURI("rediss://u:p@redis.internal:6380", "default")
	require.NoError(t, err)
	assert.Equal(t, "redis.internal:6380", addr)
	assert.Equal(t, "u", user)
	assert.Equal(t, "p", pass)
	assert.NotNil(t, tlsCfg)

	addr, _, pass, _, err = clusterFallbackFromURI("redis.internal:6379", "default")
	require.NoError(t, err)
	assert.Equal(t, "redis.internal:6379", addr)
	assert.Equal(t, "default", pass)
}

func TestConnectRedisRejectsEmptyURI(t *testing.T) {
	_, err := ConnectRedis(context.Background(), RedisOptions{Config: config.RedisConfig{URI: " "}})
	assert.Error(t, err)
}

func TestLogStartupIsVisibleBeforeAnyJob(t *testing.T) {
	cfg := testConfig(t)
	var out bytes.Buffer
	logger := logging.New(logging.Config{Output: &out})

	LogStartup(context.Background(), cfg, logger)
	assert.Contains(t, out.String(), "starting dev-Door43_catalog_job_handler")
}
