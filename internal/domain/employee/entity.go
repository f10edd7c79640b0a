package employee

import (
	"time"

	"github.com/opspay/payroll-backend-go/internal/pkg/money"
	"github.com/shopspring/decimal"
)

// TaxRegime selects the withholding slab set for an employee.
type TaxRegime string

const (
	TaxRegimeOld TaxRegime = "OLD"
	TaxRegimeNew TaxRegime = "NEW"
)

type Employee struct {
	ID        string
	Name      string
	Email     string
	Region    string // state for professional tax
	TaxRegime TaxRegime
	IsActive  bool
	HireDate  time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SalaryStructure is versioned by effective_from/effective_to; at most one
// is active per employee at a given date.
type SalaryStructure struct {
	ID            string
	EmployeeID    string
	BasicPay      money.Amount
	HRA           money.Amount
	Allowances    money.Amount
	EffectiveFrom time.Time
	EffectiveTo   *time.Time
	IsCompliant   bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Total is the monthly gross before loss of pay.
func (s SalaryStructure) Total() money.Amount {
	return s.BasicPay + s.HRA + s.Allowances
}

var fifty = decimal.NewFromInt(50)

// ComputeCompliance reports whether basic pay is at least 50% of the total.
// The flag is computed once at creation and stored, not re-derived later.
func (s SalaryStructure) ComputeCompliance() bool {
	total := s.Total()
	if total <= 0 {
		return false
	}
	return s.BasicPay >= money.Percent(total, fifty)
}
