package pagerduty

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/door43/catalog-job-handler/internal/observability/notify"
)

func TestNewClientValidation(t *testing.T) {
	_, err := NewClient(Config{})
	assert.Error(t, err)
}

func TestBuildEventDefaults(t *testing.T) {
	client, err := NewClient(Config{RoutingKey: "key"})
	require.NoError(t, err)

	event := client.buildEvent(notify.JobFailurePayload{
		JobID:      "123",
		Owner:      "bob",
		Repo:       "proj",
		Error:      "boom",
		ErrorClass: "archive_fetcherror",
		Metadata:   map[string]string{"job_id": "shadowed", "queue": "q"},
	})

	assert.Equal(t, "catalog:bob/proj", event["dedup_key"])

	section, ok := event["payload"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, notify.SeverityCritical, section["severity"])
	assert.Equal(t, "door43-catalog", section["source"])
	assert.Equal(t, "catalog-job-handler", section["component"])
	assert.Contains(t, section["summary"], "bob/proj")

	custom, ok := section["custom_details"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "123", custom["job_id"], "metadata must not override core fields")
	assert.Equal(t, "q", custom["queue"])
	assert.Equal(t, "archive_fetcherror", custom["error_class"])
}

func TestBuildEventWithoutRepository(t *testing.T) {
	client, err := NewClient(Config{RoutingKey: "key"})
	require.NoError(t, err)

	event := client.buildEvent(notify.JobFailurePayload{JobID: "abc"})
	assert.Equal(t, "catalog:job:abc", event["dedup_key"])
}

func TestSendJobFailurePostsToEndpoint(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	client, err := NewClient(Config{RoutingKey: "key", Endpoint: srv.URL})
	require.NoError(t, err)

	require.NoError(t, client.SendJobFailure(context.Background(), notify.JobFailurePayload{Owner: "bob", Repo: "proj"}))
	assert.Equal(t, "trigger", got["event_action"])
	assert.Equal(t, "key", got["routing_key"])
}
