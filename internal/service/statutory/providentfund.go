// Package statutory implements the statutory deduction calculators:
// provident fund, employee state insurance, professional tax and monthly
// withholding tax. Every function here is pure and stateless; all
// percentage computations round to the nearest paisa independently before
// any summation so component amounts foot exactly in reconciliation.
package statutory

import (
	"github.com/opspay/payroll-backend-go/internal/pkg/money"
	"github.com/shopspring/decimal"
)

// Statutory wage ceiling for provident fund contributions. Percentages
// apply to the capped base, never to actual basic pay above the ceiling.
var pfWageCeiling = money.FromRupees(15000)

var (
	pfEmployeeRate = decimal.NewFromInt(12)
	pfPensionRate  = decimal.RequireFromString("8.33")
	pfEDLIRate     = decimal.RequireFromString("0.5")
	pfAdminRate    = decimal.RequireFromString("0.5")
	pfCoreRate     = decimal.RequireFromString("3.67")
)

// PFContribution is the provident fund breakdown for one employee-month.
type PFContribution struct {
	Base              money.Amount // basic pay capped at the wage ceiling
	Employee          money.Amount
	EmployerPension   money.Amount
	EmployerInsurance money.Amount // EDLI
	EmployerAdmin     money.Amount
	EmployerCore      money.Amount
	EmployerTotal     money.Amount
}

// CalculateProvidentFund computes contributions on basic pay. The employer
// side splits into pension, EDLI, admin and core components, each rounded
// independently on the capped base and then summed.
func CalculateProvidentFund(basicPay money.Amount) PFContribution {
	base := money.Min(basicPay, pfWageCeiling)
	if base < 0 {
		base = 0
	}

	c := PFContribution{
		Base:              base,
		Employee:          money.Percent(base, pfEmployeeRate),
		EmployerPension:   money.Percent(base, pfPensionRate),
		EmployerInsurance: money.Percent(base, pfEDLIRate),
		EmployerAdmin:     money.Percent(base, pfAdminRate),
		EmployerCore:      money.Percent(base, pfCoreRate),
	}
	c.EmployerTotal = c.EmployerPension + c.EmployerInsurance + c.EmployerAdmin + c.EmployerCore
	return c
}
