package loan

import (
	"time"

	"github.com/opspay/payroll-backend-go/internal/pkg/money"
	"github.com/shopspring/decimal"
)

// LoanStatus enum
type LoanStatus string

const (
	LoanStatusActive LoanStatus = "ACTIVE"
	LoanStatusClosed LoanStatus = "CLOSED"
)

// EmployeeLoan carries a mutable remaining balance. Invariant: the sum of
// DEDUCTED principal components plus remaining_balance equals the original
// principal; the final installment is adjusted to zero the balance exactly.
type EmployeeLoan struct {
	ID               string
	EmployeeID       string
	Principal        money.Amount
	AnnualRatePct    decimal.Decimal
	TenureMonths     int
	EMI              money.Amount
	RemainingBalance money.Amount
	Status           LoanStatus
	StartMonth       int
	StartYear        int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// DeductionStatus enum
type DeductionStatus string

const (
	DeductionStatusScheduled DeductionStatus = "SCHEDULED"
	DeductionStatusDeducted  DeductionStatus = "DEDUCTED"
)

// LoanDeduction is one scheduled monthly installment.
type LoanDeduction struct {
	ID                 string
	LoanID             string
	EmployeeID         string
	Month              int
	Year               int
	EMI                money.Amount
	InterestComponent  money.Amount
	PrincipalComponent money.Amount
	Status             DeductionStatus
	PayrollRecordID    *string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
