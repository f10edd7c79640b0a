package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/opspay/payroll-backend-go/internal/domain/payroll"
	"github.com/opspay/payroll-backend-go/internal/pkg/database"
)

type payrollRunRepository struct {
	db *database.DB
}

func NewPayrollRunRepository(db *database.DB) payroll.RunRepository {
	return &payrollRunRepository{db: db}
}

const runColumns = `
	id, month, year, status, current_stage,
	total_employees, processed, succeeded, errored, errors,
	started_at, completed_at, created_at, updated_at
`

func scanRun(row pgx.Row) (payroll.PayrollRun, error) {
	var r payroll.PayrollRun
	var errsJSON []byte
	err := row.Scan(
		&r.ID, &r.Month, &r.Year, &r.Status, &r.CurrentStage,
		&r.TotalEmployees, &r.Processed, &r.Succeeded, &r.Errored, &errsJSON,
		&r.StartedAt, &r.CompletedAt, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return payroll.PayrollRun{}, err
	}
	if len(errsJSON) > 0 {
		if err := json.Unmarshal(errsJSON, &r.Errors); err != nil {
			return payroll.PayrollRun{}, fmt.Errorf("failed to decode run errors: %w", err)
		}
	}
	return r, nil
}

func (r *payrollRunRepository) Create(ctx context.Context, month, year int) (payroll.PayrollRun, error) {
	q := database.GetQuerier(ctx, r.db)

	query := `
		INSERT INTO payroll_runs (month, year, status, current_stage, errors)
		VALUES ($1, $2, $3, $4, '[]'::jsonb)
		RETURNING ` + runColumns

	run, err := scanRun(q.QueryRow(ctx, query, month, year, payroll.RunStatusPending, payroll.StageValidation))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return payroll.PayrollRun{}, payroll.ErrRunAlreadyExists
		}
		return payroll.PayrollRun{}, fmt.Errorf("failed to create payroll run: %w", err)
	}
	return run, nil
}

func (r *payrollRunRepository) GetByID(ctx context.Context, id string) (payroll.PayrollRun, error) {
	q := database.GetQuerier(ctx, r.db)

	query := `SELECT ` + runColumns + ` FROM payroll_runs WHERE id = $1`
	run, err := scanRun(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.PayrollRun{}, payroll.ErrRunNotFound
		}
		return payroll.PayrollRun{}, fmt.Errorf("failed to get payroll run: %w", err)
	}
	return run, nil
}

func (r *payrollRunRepository) GetByPeriod(ctx context.Context, month, year int) (payroll.PayrollRun, error) {
	q := database.GetQuerier(ctx, r.db)

	query := `SELECT ` + runColumns + ` FROM payroll_runs WHERE month = $1 AND year = $2`
	run, err := scanRun(q.QueryRow(ctx, query, month, year))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.PayrollRun{}, payroll.ErrRunNotFound
		}
		return payroll.PayrollRun{}, fmt.Errorf("failed to get payroll run by period: %w", err)
	}
	return run, nil
}

func (r *payrollRunRepository) EnterStage(ctx context.Context, id string, stage payroll.RunStage) error {
	q := database.GetQuerier(ctx, r.db)

	query := `
		UPDATE payroll_runs
		SET status = $1, current_stage = $2, errors = '[]'::jsonb,
			started_at = COALESCE(started_at, NOW()), updated_at = NOW()
		WHERE id = $3
	`
	tag, err := q.Exec(ctx, query, payroll.RunStatusProcessing, stage, id)
	if err != nil {
		return fmt.Errorf("failed to enter stage: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrRunNotFound
	}
	return nil
}

func (r *payrollRunRepository) UpdateCounts(ctx context.Context, id string, total, processed, succeeded, errored int) error {
	q := database.GetQuerier(ctx, r.db)

	query := `
		UPDATE payroll_runs
		SET total_employees = $1, processed = $2, succeeded = $3, errored = $4, updated_at = NOW()
		WHERE id = $5
	`
	if _, err := q.Exec(ctx, query, total, processed, succeeded, errored, id); err != nil {
		return fmt.Errorf("failed to update run counts: %w", err)
	}
	return nil
}

func (r *payrollRunRepository) MarkFailed(ctx context.Context, id string, errs []payroll.RunError) error {
	q := database.GetQuerier(ctx, r.db)

	errsJSON, err := json.Marshal(errs)
	if err != nil {
		return fmt.Errorf("failed to encode run errors: %w", err)
	}

	query := `
		UPDATE payroll_runs
		SET status = $1, errors = $2, updated_at = NOW()
		WHERE id = $3
	`
	if _, err := q.Exec(ctx, query, payroll.RunStatusFailed, errsJSON, id); err != nil {
		return fmt.Errorf("failed to mark run failed: %w", err)
	}
	return nil
}

func (r *payrollRunRepository) MarkCompleted(ctx context.Context, id string) error {
	q := database.GetQuerier(ctx, r.db)

	query := `
		UPDATE payroll_runs
		SET status = $1, completed_at = NOW(), updated_at = NOW()
		WHERE id = $2
	`
	if _, err := q.Exec(ctx, query, payroll.RunStatusCompleted, id); err != nil {
		return fmt.Errorf("failed to mark run completed: %w", err)
	}
	return nil
}
