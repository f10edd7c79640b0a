package payroll

import (
	"fmt"

	"github.com/opspay/payroll-backend-go/internal/domain/employee"
	"github.com/opspay/payroll-backend-go/internal/domain/payroll"
	"github.com/opspay/payroll-backend-go/internal/pkg/money"
	"github.com/opspay/payroll-backend-go/internal/service/statutory"
)

// CalculationInput is everything the per-employee computation needs.
// Callers validate preconditions (active compliant structure) before
// invoking; the calculator itself never enforces business rules.
type CalculationInput struct {
	Structure       employee.SalaryStructure
	Attendance      payroll.AttendanceSummary
	Region          string
	TaxRegime       statutory.Regime
	MonthsRemaining int // months left in the fiscal year, including this one
}

// Calculator composes the statutory calculators and the LOP rule into a
// single pure per-employee computation. It holds only immutable tax
// tables, so it is safe to call concurrently across employees.
type Calculator struct {
	taxTables statutory.TaxTables
}

func NewCalculator(taxTables statutory.TaxTables) *Calculator {
	return &Calculator{taxTables: taxTables}
}

// Compute runs the full per-employee monthly computation. It fails only on
// malformed attendance input, which signals a data-integrity error to the
// orchestrator; everything else is arithmetic.
func (c *Calculator) Compute(in CalculationInput) (payroll.PayrollRecord, error) {
	att := in.Attendance
	if att.WorkingDays <= 0 {
		return payroll.PayrollRecord{}, fmt.Errorf("%w: working days %d", payroll.ErrMalformedAttendance, att.WorkingDays)
	}
	if att.LOPDays < 0 || att.LOPDays > att.WorkingDays {
		return payroll.PayrollRecord{}, fmt.Errorf("%w: lop days %d of %d working days", payroll.ErrMalformedAttendance, att.LOPDays, att.WorkingDays)
	}

	grossBeforeLOP := in.Structure.Total()

	// Per-day rate rounds once, then multiplies by LOP days; dividing the
	// product instead would drift across day counts.
	perDay := money.DivRound(grossBeforeLOP, int64(att.WorkingDays))
	lopDeduction := perDay * money.Amount(att.LOPDays)
	// A rounded-up per-day rate can overshoot on full LOP; earned gross
	// never goes below zero.
	if lopDeduction > grossBeforeLOP {
		lopDeduction = grossBeforeLOP
	}
	gross := grossBeforeLOP - lopDeduction

	// PF on basic pay; ESI, PT and withholding on post-LOP gross.
	pf := statutory.CalculateProvidentFund(in.Structure.BasicPay)
	esi := statutory.CalculateInsurance(gross)
	pt := c.taxTables.LookupProfessionalTax(in.Region, gross)
	wh, err := statutory.MonthlyWithholding(gross, in.TaxRegime, in.MonthsRemaining)
	if err != nil {
		return payroll.PayrollRecord{}, err
	}

	totalDeductions := pf.Employee + esi.Employee + pt.Amount + wh.Monthly
	net := gross - totalDeductions
	employerCost := gross + pf.EmployerTotal + esi.Employer

	return payroll.PayrollRecord{
		EmployeeID: att.EmployeeID,

		BasicPay:   in.Structure.BasicPay,
		HRA:        in.Structure.HRA,
		Allowances: in.Structure.Allowances,

		WorkingDays: att.WorkingDays,
		PaidDays:    att.PaidDays,
		LOPDays:     att.LOPDays,

		GrossBeforeLOP: grossBeforeLOP,
		LOPDeduction:   lopDeduction,
		GrossSalary:    gross,

		PFEmployee:      pf.Employee,
		PFEmployer:      pf.EmployerTotal,
		ESIApplicable:   esi.Applicable,
		ESIEmployee:     esi.Employee,
		ESIEmployer:     esi.Employer,
		PTConfigured:    pt.Configured,
		ProfessionalTax: pt.Amount,
		WithholdingTax:  wh.Monthly,

		TotalDeductions: totalDeductions,
		NetSalary:       net,
		EmployerCost:    employerCost,

		Status: payroll.RecordStatusCalculated,
	}, nil
}
