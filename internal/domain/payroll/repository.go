package payroll

import "context"

// RunRepository defines data access for payroll runs. Runs are never
// deleted; re-triggers mutate the existing row for the period.
type RunRepository interface {
	Create(ctx context.Context, month, year int) (PayrollRun, error)
	GetByID(ctx context.Context, id string) (PayrollRun, error)
	GetByPeriod(ctx context.Context, month, year int) (PayrollRun, error)

	// EnterStage moves the run to PROCESSING in the given stage and replaces
	// the error list with an empty one. The error list is authoritative for
	// exactly one stage at a time.
	EnterStage(ctx context.Context, id string, stage RunStage) error

	UpdateCounts(ctx context.Context, id string, total, processed, succeeded, errored int) error
	MarkFailed(ctx context.Context, id string, errs []RunError) error
	MarkCompleted(ctx context.Context, id string) error
}

// RecordRepository defines data access for payroll records.
type RecordRepository interface {
	// Upsert writes the record keyed by (run_id, employee_id), overwriting
	// any previous attempt. This is what makes stage re-execution safe.
	Upsert(ctx context.Context, record PayrollRecord) (PayrollRecord, error)

	GetByRunAndEmployee(ctx context.Context, runID, employeeID string) (PayrollRecord, error)
	ListByRun(ctx context.Context, runID string) ([]PayrollRecord, error)
	MarkVerifiedByRun(ctx context.Context, runID string) (int, error)
}
