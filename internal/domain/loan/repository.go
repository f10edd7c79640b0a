package loan

import "context"

type LoanRepository interface {
	GetByID(ctx context.Context, id string) (EmployeeLoan, error)

	// DeductionsForCycle returns the employee's deduction rows for the
	// cycle regardless of status, so a re-run of the calculation stage
	// sees the same totals it saw the first time.
	DeductionsForCycle(ctx context.Context, employeeID string, month, year int) ([]LoanDeduction, error)

	// ApplyDeduction marks a SCHEDULED deduction DEDUCTED, links it to the
	// payroll record, decrements the loan balance by the principal
	// component and closes the loan when the balance reaches zero. Must
	// run inside the caller's transaction.
	ApplyDeduction(ctx context.Context, deductionID, payrollRecordID string) error
}
