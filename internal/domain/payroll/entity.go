package payroll

import (
	"time"

	"github.com/opspay/payroll-backend-go/internal/pkg/money"
)

// RunStatus enum
type RunStatus string

const (
	RunStatusPending    RunStatus = "PENDING"
	RunStatusProcessing RunStatus = "PROCESSING"
	RunStatusCompleted  RunStatus = "COMPLETED"
	RunStatusFailed     RunStatus = "FAILED"
)

// RunStage enum
type RunStage string

const (
	StageValidation   RunStage = "VALIDATION"
	StageCalculation  RunStage = "CALCULATION"
	StageStatutory    RunStage = "STATUTORY"
	StageFinalization RunStage = "FINALIZATION"
)

// Next returns the stage that follows s, and false for the last stage.
func (s RunStage) Next() (RunStage, bool) {
	switch s {
	case StageValidation:
		return StageCalculation, true
	case StageCalculation:
		return StageStatutory, true
	case StageStatutory:
		return StageFinalization, true
	default:
		return "", false
	}
}

// RunError is one per-employee failure recorded on a run.
type RunError struct {
	EmployeeID string `json:"employee_id"`
	Message    string `json:"message"`
}

// PayrollRun - one run per (month, year)
type PayrollRun struct {
	ID             string
	Month          int
	Year           int
	Status         RunStatus
	CurrentStage   RunStage
	TotalEmployees int
	Processed      int
	Succeeded      int
	Errored        int
	Errors         []RunError
	StartedAt      *time.Time
	CompletedAt    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// RecordStatus enum
type RecordStatus string

const (
	RecordStatusCalculated RecordStatus = "CALCULATED"
	RecordStatusVerified   RecordStatus = "VERIFIED"
	RecordStatusPaid       RecordStatus = "PAID"
)

// PayrollRecord - per (run, employee) payroll result. Salary components are
// a snapshot of the structure at calculation time, not a live reference.
type PayrollRecord struct {
	ID         string
	RunID      string
	EmployeeID string
	Month      int
	Year       int

	// Salary structure snapshot
	BasicPay   money.Amount
	HRA        money.Amount
	Allowances money.Amount

	// Attendance
	WorkingDays int
	PaidDays    int
	LOPDays     int

	GrossBeforeLOP money.Amount
	LOPDeduction   money.Amount
	GrossSalary    money.Amount

	// Statutory deductions
	PFEmployee      money.Amount
	PFEmployer      money.Amount
	ESIApplicable   bool
	ESIEmployee     money.Amount
	ESIEmployer     money.Amount
	PTConfigured    bool
	ProfessionalTax money.Amount
	WithholdingTax  money.Amount

	TotalDeductions money.Amount
	NetSalary       money.Amount
	EmployerCost    money.Amount

	// Downstream adjustments applied against the record, outside the pure
	// calculator.
	LoanDeductionTotal money.Amount
	ReimbursementTotal money.Amount
	NetPayable         money.Amount

	Status    RecordStatus
	CreatedAt time.Time
	UpdatedAt time.Time

	// Joined fields
	EmployeeName *string
}

// AttendanceSummary - month aggregate consumed by the calculator.
type AttendanceSummary struct {
	EmployeeID  string
	WorkingDays int
	PaidDays    int
	LOPDays     int
}
