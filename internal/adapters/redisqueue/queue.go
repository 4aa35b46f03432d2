// Package redisqueue is the Redis-backed broker for webhook jobs.
//
// A queue is a Redis list of job IDs (FIFO) plus one hash per job:
//
//	<ns>:queue:<name>         pending job IDs
//	<ns>:queue:<name>:failed  failed job IDs, newest last
//	<ns>:job:<id>             job fields
//
// Workers pop the ID off the pending list before starting, so a running job
// never appears in ListPending.
package redisqueue

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/door43/catalog-job-handler/internal/core"
	"github.com/door43/catalog-job-handler/internal/domain/model"
)

var _ core.JobBroker = (*Queue)(nil)

const (
	DefaultNamespace = "catalog"
	// DefaultResultTTL is how long finished jobs stay inspectable.
	DefaultResultTTL = 500 * time.Second
)

var (
	// ErrJobNotFound is returned when a job hash does not exist.
	ErrJobNotFound = errors.New("job not found")
)

// Hash fields.
const (
	fieldID          = "id"
	fieldStatus      = "status"
	fieldPayload     = "payload"
	fieldDescription = "description"
	fieldResult      = "result"
	fieldError       = "error"
	fieldEnqueuedAt  = "enqueued_at"
	fieldStartedAt   = "started_at"
	fieldEndedAt     = "ended_at"
)

// Config names the queue and controls how long finished jobs are kept.
type Config struct {
	Namespace string
	Name      string
	ResultTTL time.Duration
	Now       func() time.Time
}

// Queue is safe for concurrent use; all coordination happens in Redis.
type Queue struct {
	client    redis.UniversalClient
	namespace string
	name      string
	resultTTL time.Duration
	now       func() time.Time
}

// New returns a Queue on client. Name is required; the rest default.
func New(client redis.UniversalClient, cfg Config) (*Queue, error) {
	if client == nil {
		return nil, errors.New("redisqueue requires a redis client")
	}
	name := strings.TrimSpace(cfg.Name)
	if name == "" {
		return nil, errors.New("redisqueue requires a queue name")
	}
	ns := strings.TrimSpace(cfg.Namespace)
	if ns == "" {
		ns = DefaultNamespace
	}
	ttl := cfg.ResultTTL
	if ttl <= 0 {
		ttl = DefaultResultTTL
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Queue{client: client, namespace: ns, name: name, resultTTL: ttl, now: now}, nil
}

// Name returns the queue name.
func (q *Queue) Name() string { return q.name }

func (q *Queue) queueKey() string  { return q.namespace + ":queue:" + q.name }
func (q *Queue) failedKey() string { return q.queueKey() + ":failed" }
func (q *Queue) jobKey(id string) string {
	return q.namespace + ":job:" + id
}

// Enqueue stores payload as a new queued job at the tail of the queue.
func (q *Queue) Enqueue(ctx context.Context, payload model.Payload, description string) (model.QueuedJob, error) {
	raw, err := payload.Encode()
	if err != nil {
		return model.QueuedJob{}, fmt.Errorf("encode payload: %w", err)
	}

	job := model.QueuedJob{
		ID:          uuid.NewString(),
		Status:      model.JobStatusQueued,
		Payload:     payload,
		Description: description,
		EnqueuedAt:  q.now().UTC(),
	}

	_, err = q.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, q.jobKey(job.ID),
			fieldID, job.ID,
			fieldStatus, string(job.Status),
			fieldPayload, raw,
			fieldDescription, description,
			fieldEnqueuedAt, formatTime(job.EnqueuedAt),
		)
		pipe.RPush(ctx, q.queueKey(), job.ID)
		return nil
	})
	if err != nil {
		return model.QueuedJob{}, fmt.Errorf("enqueue job: %w", err)
	}
	return job, nil
}

// Dequeue blocks up to timeout for the next job, marks it started and returns it.
// It returns core.ErrNoJob when nothing arrived in time.
func (q *Queue) Dequeue(ctx context.Context, timeout time.Duration) (model.QueuedJob, error) {
	res, err := q.client.BLPop(ctx, timeout, q.queueKey()).Result()
	if errors.Is(err, redis.Nil) {
		return model.QueuedJob{}, core.ErrNoJob
	}
	if err != nil {
		return model.QueuedJob{}, fmt.Errorf("dequeue: %w", err)
	}
	if len(res) != 2 {
		return model.QueuedJob{}, fmt.Errorf("dequeue: unexpected reply %v", res)
	}
	id := res[1]

	if err := q.client.HSet(ctx, q.jobKey(id),
		fieldStatus, string(model.JobStatusStarted),
		fieldStartedAt, formatTime(q.now().UTC()),
	).Err(); err != nil {
		return model.QueuedJob{}, fmt.Errorf("mark job %s started: %w", id, err)
	}
	return q.Get(ctx, id)
}

// ListPending returns the jobs waiting in the queue, head first. IDs whose
// hash has vanished are skipped.
func (q *Queue) ListPending(ctx context.Context) ([]model.QueuedJob, error) {
	return q.list(ctx, q.queueKey())
}

// ListFailed returns failed jobs, oldest first.
func (q *Queue) ListFailed(ctx context.Context) ([]model.QueuedJob, error) {
	return q.list(ctx, q.failedKey())
}

// Length returns the number of pending jobs.
func (q *Queue) Length(ctx context.Context) (int64, error) {
	n, err := q.client.LLen(ctx, q.queueKey()).Result()
	if err != nil {
		return 0, fmt.Errorf("queue length: %w", err)
	}
	return n, nil
}

// Get loads one job.
func (q *Queue) Get(ctx context.Context, id string) (model.QueuedJob, error) {
	fields, err := q.client.HGetAll(ctx, q.jobKey(id)).Result()
	if err != nil {
		return model.QueuedJob{}, fmt.Errorf("get job %s: %w", id, err)
	}
	if len(fields) == 0 {
		return model.QueuedJob{}, fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}
	return decodeJob(fields)
}

// Complete marks a job finished with its descriptive result and lets the hash expire.
func (q *Queue) Complete(ctx context.Context, id, result string) error {
	key := q.jobKey(id)
	_, err := q.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key,
			fieldStatus, string(model.JobStatusFinished),
			fieldResult, result,
			fieldEndedAt, formatTime(q.now().UTC()),
		)
		pipe.Expire(ctx, key, q.resultTTL)
		return nil
	})
	if err != nil {
		return fmt.Errorf("complete job %s: %w", id, err)
	}
	return nil
}

// Fail marks a job failed and appends it to the failed list.
func (q *Queue) Fail(ctx context.Context, id string, jobErr error) error {
	msg := ""
	if jobErr != nil {
		msg = jobErr.Error()
	}
	_, err := q.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, q.jobKey(id),
			fieldStatus, string(model.JobStatusFailed),
			fieldError, msg,
			fieldEndedAt, formatTime(q.now().UTC()),
		)
		pipe.RPush(ctx, q.failedKey(), id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("fail job %s: %w", id, err)
	}
	return nil
}

// Restore returns a started job to the head of the pending queue so the next
// worker picks it up first.
func (q *Queue) Restore(ctx context.Context, id string) error {
	key := q.jobKey(id)
	_, err := q.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HDel(ctx, key, fieldStartedAt)
		pipe.HSet(ctx, key, fieldStatus, string(model.JobStatusQueued))
		pipe.LPush(ctx, q.queueKey(), id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("restore job %s: %w", id, err)
	}
	return nil
}

// Requeue moves a failed job back to the tail of the pending queue.
func (q *Queue) Requeue(ctx context.Context, id string) (model.QueuedJob, error) {
	job, err := q.Get(ctx, id)
	if err != nil {
		return model.QueuedJob{}, err
	}
	if job.Status != model.JobStatusFailed {
		return model.QueuedJob{}, fmt.Errorf("requeue job %s: status is %s, not failed", id, job.Status)
	}

	key := q.jobKey(id)
	_, err = q.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LRem(ctx, q.failedKey(), 0, id)
		pipe.HDel(ctx, key, fieldError, fieldResult, fieldStartedAt, fieldEndedAt)
		pipe.HSet(ctx, key, fieldStatus, string(model.JobStatusQueued))
		pipe.Persist(ctx, key)
		pipe.RPush(ctx, q.queueKey(), id)
		return nil
	})
	if err != nil {
		return model.QueuedJob{}, fmt.Errorf("requeue job %s: %w", id, err)
	}
	return q.Get(ctx, id)
}

func (q *Queue) list(ctx context.Context, listKey string) ([]model.QueuedJob, error) {
	ids, err := q.client.LRange(ctx, listKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", listKey, err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	cmds := make([]*redis.MapStringStringCmd, len(ids))
	_, err = q.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, id := range ids {
			cmds[i] = pipe.HGetAll(ctx, q.jobKey(id))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load jobs: %w", err)
	}

	jobs := make([]model.QueuedJob, 0, len(ids))
	for _, cmd := range cmds {
		fields := cmd.Val()
		if len(fields) == 0 {
			continue
		}
		job, err := decodeJob(fields)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

func decodeJob(fields map[string]string) (model.QueuedJob, error) {
	id := fields[fieldID]
	status, err := model.ParseJobStatus(fields[fieldStatus])
	if err != nil {
		return model.QueuedJob{}, fmt.Errorf("job %s: %w", id, err)
	}

	job := model.QueuedJob{
		ID:          id,
		Status:      status,
		Description: fields[fieldDescription],
		Result:      fields[fieldResult],
		Error:       fields[fieldError],
		EnqueuedAt:  parseTime(fields[fieldEnqueuedAt]),
		StartedAt:   parseTimePtr(fields[fieldStartedAt]),
		EndedAt:     parseTimePtr(fields[fieldEndedAt]),
	}
	if raw := fields[fieldPayload]; raw != "" {
		p, err := model.DecodePayload([]byte(raw))
		if err != nil {
			return model.QueuedJob{}, fmt.Errorf("job %s: %w", id, err)
		}
		job.Payload = p
	}
	return job, nil
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func parseTimePtr(s string) *time.Time {
	if s == "" {
		return nil
	}
	t := parseTime(s)
	if t.IsZero() {
		return nil
	}
	return &t
}
