package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/opspay/payroll-backend-go/internal/pkg/database"
	"github.com/opspay/payroll-backend-go/internal/pkg/queue"
)

// jobQueueRepository backs both sides of the queue contract with one
// table: the orchestrator enqueues through it and the worker claims
// through it.
type jobQueueRepository struct {
	db *database.DB
}

func NewJobQueueRepository(db *database.DB) *jobQueueRepository {
	return &jobQueueRepository{db: db}
}

var (
	_ queue.Queue = (*jobQueueRepository)(nil)
	_ queue.Store = (*jobQueueRepository)(nil)
)

const jobColumns = `
	id, type, dedupe_key, run_id, payload, status, attempts, last_error, created_at, updated_at
`

func (r *jobQueueRepository) Enqueue(ctx context.Context, job queue.Job) error {
	q := database.GetQuerier(ctx, r.db)

	// The partial unique index on dedupe_key covers PENDING and PROCESSING
	// rows only, so finished jobs never block a new enqueue of the same key.
	query := `
		INSERT INTO queue_jobs (type, dedupe_key, run_id, payload, status, run_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (dedupe_key) WHERE status IN ('PENDING', 'PROCESSING')
		DO NOTHING
	`
	if _, err := q.Exec(ctx, query, job.Type, job.DedupeKey, job.RunID, job.Payload, queue.StatusPending); err != nil {
		return fmt.Errorf("failed to enqueue job: %w", err)
	}
	return nil
}

func (r *jobQueueRepository) Status(ctx context.Context, dedupeKey string) (queue.Status, error) {
	q := database.GetQuerier(ctx, r.db)

	query := `
		SELECT status FROM queue_jobs
		WHERE dedupe_key = $1
		ORDER BY created_at DESC
		LIMIT 1
	`
	var status queue.Status
	if err := q.QueryRow(ctx, query, dedupeKey).Scan(&status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", queue.ErrJobNotFound
		}
		return "", fmt.Errorf("failed to get job status: %w", err)
	}
	return status, nil
}

func (r *jobQueueRepository) CancelPending(ctx context.Context, runID string) error {
	q := database.GetQuerier(ctx, r.db)

	query := `DELETE FROM queue_jobs WHERE run_id = $1 AND status = $2`
	if _, err := q.Exec(ctx, query, runID, queue.StatusPending); err != nil {
		return fmt.Errorf("failed to cancel pending jobs: %w", err)
	}
	return nil
}

func (r *jobQueueRepository) Claim(ctx context.Context, workerID string, limit int, staleBefore time.Time) ([]queue.Job, error) {
	q := database.GetQuerier(ctx, r.db)

	// SKIP LOCKED keeps concurrent workers off each other's rows. A
	// PROCESSING row older than staleBefore belonged to a worker that died
	// mid-job and is claimable again.
	query := `
		UPDATE queue_jobs
		SET status = 'PROCESSING', locked_by = $1, locked_at = NOW(),
			attempts = attempts + 1, updated_at = NOW()
		WHERE id IN (
			SELECT id FROM queue_jobs
			WHERE (status IN ('PENDING', 'FAILED') AND run_at <= NOW())
			OR (status = 'PROCESSING' AND locked_at < $2)
			ORDER BY created_at
			LIMIT $3
			FOR UPDATE SKIP LOCKED
		)
		RETURNING ` + jobColumns

	rows, err := q.Query(ctx, query, workerID, staleBefore, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to claim jobs: %w", err)
	}
	defer rows.Close()

	var jobs []queue.Job
	for rows.Next() {
		var j queue.Job
		err := rows.Scan(
			&j.ID, &j.Type, &j.DedupeKey, &j.RunID, &j.Payload,
			&j.Status, &j.Attempts, &j.LastError, &j.CreatedAt, &j.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate jobs: %w", err)
	}
	return jobs, nil
}

func (r *jobQueueRepository) MarkCompleted(ctx context.Context, jobID string) error {
	q := database.GetQuerier(ctx, r.db)

	query := `
		UPDATE queue_jobs
		SET status = $1, locked_by = NULL, locked_at = NULL, updated_at = NOW()
		WHERE id = $2
	`
	if _, err := q.Exec(ctx, query, queue.StatusCompleted, jobID); err != nil {
		return fmt.Errorf("failed to mark job completed: %w", err)
	}
	return nil
}

func (r *jobQueueRepository) MarkFailed(ctx context.Context, jobID string, lastError string, retryAt time.Time) error {
	q := database.GetQuerier(ctx, r.db)

	query := `
		UPDATE queue_jobs
		SET status = $1, last_error = $2, run_at = $3,
			locked_by = NULL, locked_at = NULL, updated_at = NOW()
		WHERE id = $4
	`
	if _, err := q.Exec(ctx, query, queue.StatusFailed, lastError, retryAt, jobID); err != nil {
		return fmt.Errorf("failed to mark job failed: %w", err)
	}
	return nil
}

func (r *jobQueueRepository) MarkDead(ctx context.Context, jobID string, lastError string) error {
	q := database.GetQuerier(ctx, r.db)

	query := `
		UPDATE queue_jobs
		SET status = $1, last_error = $2,
			locked_by = NULL, locked_at = NULL, updated_at = NOW()
		WHERE id = $3
	`
	if _, err := q.Exec(ctx, query, queue.StatusDead, lastError, jobID); err != nil {
		return fmt.Errorf("failed to mark job dead: %w", err)
	}
	return nil
}
