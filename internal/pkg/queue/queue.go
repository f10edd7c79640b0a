// Package queue provides a persistent, at-least-once job queue with
// per-job identity, exponential backoff and bounded retries. Jobs are
// deduplicated by key: enqueueing a key that is already pending or
// processing is a no-op.
package queue

import (
	"context"
	"errors"
	"time"
)

// ErrJobNotFound is returned by Status when no job carries the key.
var ErrJobNotFound = errors.New("job not found")

// Status enum
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusCompleted  Status = "COMPLETED"
	StatusFailed     Status = "FAILED"
	StatusDead       Status = "DEAD"
)

// Job is one unit of queued, retryable work.
type Job struct {
	ID        string
	Type      string
	DedupeKey string
	RunID     string
	Payload   []byte
	Status    Status
	Attempts  int
	LastError *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Queue is the enqueue-side contract consumed by the orchestrator.
type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Status(ctx context.Context, dedupeKey string) (Status, error)
	CancelPending(ctx context.Context, runID string) error
}

// Handler processes one job. Delivery is at-least-once, so handlers must be
// idempotent under re-execution.
type Handler func(ctx context.Context, job Job) error

// Store is the persistence contract the worker drives.
type Store interface {
	// Claim atomically locks up to limit runnable jobs: PENDING or FAILED
	// rows whose next attempt is due, plus PROCESSING rows whose lock went
	// stale. Claiming increments the attempt counter.
	Claim(ctx context.Context, workerID string, limit int, staleBefore time.Time) ([]Job, error)

	MarkCompleted(ctx context.Context, jobID string) error

	// MarkFailed schedules a retry at retryAt.
	MarkFailed(ctx context.Context, jobID string, lastError string, retryAt time.Time) error

	// MarkDead parks the job terminally after retries are exhausted.
	MarkDead(ctx context.Context, jobID string, lastError string) error
}
