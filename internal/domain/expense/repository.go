package expense

import "context"

type ClaimRepository interface {
	// ForCycle returns claims this run's record should carry: approved
	// claims awaiting reimbursement, plus claims already reimbursed by
	// this run's record (so re-running the stage sees identical totals).
	ForCycle(ctx context.Context, employeeID, runID string) ([]Claim, error)

	// MarkReimbursed flips APPROVED claims to REIMBURSED and links them to
	// the payroll record. Must run inside the caller's transaction.
	MarkReimbursed(ctx context.Context, ids []string, payrollRecordID string) error
}
