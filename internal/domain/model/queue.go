package model

import (
	"fmt"
	"strings"
	"time"
)

// JobStatus mirrors the lifecycle states a job passes through in the queue.
type JobStatus string

const (
	// JobStatusQueued indicates a job is waiting for a worker.
	JobStatusQueued JobStatus = "queued"
	// JobStatusStarted indicates a worker has dequeued the job.
	JobStatusStarted JobStatus = "started"
	// JobStatusFinished indicates the handler returned normally.
	JobStatusFinished JobStatus = "finished"
	// JobStatusFailed indicates the handler returned an error.
	JobStatusFailed JobStatus = "failed"
)

// Valid returns true if the JobStatus is known.
func (s JobStatus) Valid() bool {
	return s == JobStatusQueued || s == JobStatusStarted || s == JobStatusFinished || s == JobStatusFailed
}

// ParseJobStatus normalises a stored status string.
func ParseJobStatus(v string) (JobStatus, error) {
	s := JobStatus(strings.ToLower(strings.TrimSpace(v)))
	if !s.Valid() {
		return "", fmt.Errorf("invalid JobStatus: %q", v)
	}
	return s, nil
}

// QueuedJob is a read-only view of one entry in the webhook job queue.
type QueuedJob struct {
	ID          string
	Status      JobStatus
	Payload     Payload
	Description string
	Result      string
	Error       string
	EnqueuedAt  time.Time
	StartedAt   *time.Time
	EndedAt     *time.Time
}

// IsQueued reports whether the job has not yet been picked up by a worker.
func (j QueuedJob) IsQueued() bool {
	return j.Status == JobStatusQueued
}
