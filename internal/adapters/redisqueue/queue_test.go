package redisqueue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/door43/catalog-job-handler/internal/core"
	"github.com/door43/catalog-job-handler/internal/domain/model"
	"github.com/door43/catalog-job-handler/internal/testutil"
)

func newTestQueue(t *testing.T) *Queue {
	t.Helper()
	client := testutil.SetupTestRedis(t)
	t.Cleanup(func() { _ = client.Close() })

	q, err := New(client, Config{
		Namespace: "catalog-test",
		Name:      "Door43_catalog_webhook",
		Now:       testutil.FixedTimeFunc(testutil.TestTime()),
	})
	require.NoError(t, err)
	return q
}

func TestNewValidation(t *testing.T) {
	_, err := New(nil, Config{Name: "q"})
	assert.Error(t, err)
}

func TestDecodeJob(t *testing.T) {
	job, err := decodeJob(map[string]string{
		fieldID:          "abc",
		fieldStatus:      "failed",
		fieldPayload:     `{"DCS_event":"push","commits":[{"url":"https://x/commit/1"}]}`,
		fieldDescription: "push",
		fieldError:       "boom",
		fieldEnqueuedAt:  "2024-01-01T12:00:00Z",
		fieldEndedAt:     "2024-01-01T12:00:05Z",
	})
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusFailed, job.Status)
	assert.Equal(t, "push", job.Payload.EventKind())
	assert.True(t, job.Payload.IsSingleCommitPush())
	assert.Nil(t, job.StartedAt)
	require.NotNil(t, job.EndedAt)
	assert.Equal(t, 5*time.Second, job.EndedAt.Sub(job.EnqueuedAt))

	_, err = decodeJob(map[string]string{fieldID: "x", fieldStatus: "lost"})
	assert.Error(t, err)
}

func TestQueueLifecycle(t *testing.T) {
	q := newTestQueue(t)
	ctx := context.Background()

	first, err := q.Enqueue(ctx, testutil.NewPushPayload("bob", "proj").WithCommits("https://git.door43.org/bob/proj/commit/a1").Build(), "first")
	require.NoError(t, err)
	second, err := q.Enqueue(ctx, testutil.NewReleasePayload("bob", "proj", "v1").Build(), "second")
	require.NoError(t, err)

	n, err := q.Length(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	pending, err := q.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, first.ID, pending[0].ID)
	assert.True(t, pending[0].IsQueued())
	assert.True(t, pending[0].Payload.IsSingleCommitPush())

	got, err := q.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)
	assert.Equal(t, model.JobStatusStarted, got.Status)
	require.NotNil(t, got.StartedAt)

	pending, err = q.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1, "a started job is no longer pending")
	assert.Equal(t, second.ID, pending[0].ID)

	require.NoError(t, q.Complete(ctx, got.ID, "'bob' pushing 'bob/proj'"))
	done, err := q.Get(ctx, got.ID)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusFinished, done.Status)
	assert.Equal(t, "'bob' pushing 'bob/proj'", done.Result)
}

func TestQueueFailAndRequeue(t *testing.T) {
	q := newTestQueue(t)
	ctx := context.Background()

	job, err := q.Enqueue(ctx, testutil.NewReleasePayload("bob", "proj", "v1").Build(), "release")
	require.NoError(t, err)
	_, err = q.Dequeue(ctx, time.Second)
	require.NoError(t, err)

	require.NoError(t, q.Fail(ctx, job.ID, errors.New("archive fetch failed")))

	failed, err := q.ListFailed(ctx)
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, "archive fetch failed", failed[0].Error)

	requeued, err := q.Requeue(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusQueued, requeued.Status)
	assert.Empty(t, requeued.Error)

	failed, err = q.ListFailed(ctx)
	require.NoError(t, err)
	assert.Empty(t, failed)

	n, err := q.Length(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = q.Requeue(ctx, job.ID)
	assert.Error(t, err, "only failed jobs can be requeued")
}

func TestQueueDequeueTimeoutAndMissing(t *testing.T) {
	q := newTestQueue(t)
	ctx := context.Background()

	_, err := q.Dequeue(ctx, 100*time.Millisecond)
	assert.ErrorIs(t, err, core.ErrNoJob)

	_, err = q.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestQueueRestorePutsJobAtHead(t *testing.T) {
	q := newTestQueue(t)
	ctx := context.Background()

	first, err := q.Enqueue(ctx, testutil.NewReleasePayload("bob", "proj", "v1").Build(), "first")
	require.NoError(t, err)
	second, err := q.Enqueue(ctx, testutil.NewReleasePayload("bob", "proj", "v2").Build(), "second")
	require.NoError(t, err)

	got, err := q.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	require.Equal(t, first.ID, got.ID)

	require.NoError(t, q.Restore(ctx, got.ID))

	pending, err := q.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, first.ID, pending[0].ID, "an interrupted job runs before later ones")
	assert.Equal(t, second.ID, pending[1].ID)
	assert.Equal(t, model.JobStatusQueued, pending[0].Status)
	assert.Nil(t, pending[0].StartedAt)

	failed, err := q.ListFailed(ctx)
	require.NoError(t, err)
	assert.Empty(t, failed)
}
