package expense

import (
	"time"

	"github.com/opspay/payroll-backend-go/internal/pkg/money"
)

// ClaimStatus enum
type ClaimStatus string

const (
	ClaimStatusPending    ClaimStatus = "PENDING"
	ClaimStatusApproved   ClaimStatus = "APPROVED"
	ClaimStatusReimbursed ClaimStatus = "REIMBURSED"
	ClaimStatusRejected   ClaimStatus = "REJECTED"
)

// Claim is an employee expense claim. Approved claims are reimbursed
// through payroll and linked to the payroll record that paid them.
type Claim struct {
	ID              string
	EmployeeID      string
	Description     string
	Amount          money.Amount
	Status          ClaimStatus
	PayrollRecordID *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
