package queue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Worker polls the store, dispatches claimed jobs to registered handlers
// and applies the retry policy.
type Worker struct {
	store    Store
	handlers map[string]Handler
	onDead   func(ctx context.Context, job Job, lastError string)

	ID             string
	BatchSize      int
	PollInterval   time.Duration
	LockTimeout    time.Duration
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

func NewWorker(store Store) *Worker {
	return &Worker{
		store:          store,
		handlers:       make(map[string]Handler),
		ID:             uuid.NewString(),
		BatchSize:      10,
		PollInterval:   time.Second,
		LockTimeout:    5 * time.Minute,
		MaxAttempts:    5,
		InitialBackoff: 10 * time.Second,
		MaxBackoff:     10 * time.Minute,
	}
}

// Register binds a job type to its handler.
func (w *Worker) Register(jobType string, h Handler) {
	w.handlers[jobType] = h
}

// OnDead installs a hook invoked after a job is parked terminally.
func (w *Worker) OnDead(fn func(ctx context.Context, job Job, lastError string)) {
	w.onDead = fn
}

// Run polls until the context is cancelled.
func (w *Worker) Run(ctx context.Context) {
	slog.Info("queue worker started", "worker_id", w.ID, "poll_interval", w.PollInterval)
	for {
		select {
		case <-ctx.Done():
			slog.Info("queue worker stopped", "worker_id", w.ID)
			return
		default:
		}
		w.RunOnce(ctx)
		select {
		case <-ctx.Done():
			slog.Info("queue worker stopped", "worker_id", w.ID)
			return
		case <-time.After(w.PollInterval):
		}
	}
}

// RunOnce claims and processes a single batch.
func (w *Worker) RunOnce(ctx context.Context) {
	staleBefore := time.Now().UTC().Add(-w.LockTimeout)
	jobs, err := w.store.Claim(ctx, w.ID, w.BatchSize, staleBefore)
	if err != nil {
		slog.Error("queue claim failed", "worker_id", w.ID, "error", err)
		return
	}

	for _, job := range jobs {
		w.process(ctx, job)
	}
}

func (w *Worker) process(ctx context.Context, job Job) {
	handler, ok := w.handlers[job.Type]
	if !ok {
		w.park(ctx, job, fmt.Sprintf("no handler registered for job type %q", job.Type))
		return
	}

	start := time.Now()
	if err := handler(ctx, job); err != nil {
		if job.Attempts >= w.MaxAttempts {
			w.park(ctx, job, err.Error())
			return
		}
		retryAt := time.Now().UTC().Add(w.backoffFor(job.Attempts))
		if mErr := w.store.MarkFailed(ctx, job.ID, err.Error(), retryAt); mErr != nil {
			slog.Error("queue mark failed errored", "job_id", job.ID, "error", mErr)
		}
		slog.Warn("job failed, retry scheduled",
			"job_id", job.ID, "type", job.Type, "attempt", job.Attempts, "retry_at", retryAt, "error", err)
		return
	}

	if err := w.store.MarkCompleted(ctx, job.ID); err != nil {
		slog.Error("queue mark completed errored", "job_id", job.ID, "error", err)
		return
	}
	slog.Info("job completed", "job_id", job.ID, "type", job.Type, "duration", time.Since(start))
}

func (w *Worker) park(ctx context.Context, job Job, lastError string) {
	if err := w.store.MarkDead(ctx, job.ID, lastError); err != nil {
		slog.Error("queue mark dead errored", "job_id", job.ID, "error", err)
		return
	}
	slog.Error("job dead after max attempts",
		"job_id", job.ID, "type", job.Type, "attempts", job.Attempts, "error", lastError)
	if w.onDead != nil {
		w.onDead(ctx, job, lastError)
	}
}

// backoffFor returns initial × 2^(attempt-1), capped at MaxBackoff.
func (w *Worker) backoffFor(attempt int) time.Duration {
	backoff := w.InitialBackoff
	for i := 1; i < attempt; i++ {
		backoff *= 2
		if backoff >= w.MaxBackoff {
			return w.MaxBackoff
		}
	}
	if backoff > w.MaxBackoff {
		backoff = w.MaxBackoff
	}
	return backoff
}
