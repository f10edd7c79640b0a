package payroll

import (
	"time"

	"github.com/opspay/payroll-backend-go/internal/pkg/validator"
)

type CreateRunRequest struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

func (r CreateRunRequest) Validate() error {
	var errs validator.ValidationErrors
	if r.Month < 1 || r.Month > 12 {
		errs = append(errs, validator.ValidationError{Field: "month", Message: "must be between 1 and 12"})
	}
	if r.Year < 2000 || r.Year > 2100 {
		errs = append(errs, validator.ValidationError{Field: "year", Message: "must be a valid year"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type RunResponse struct {
	ID             string     `json:"id"`
	Month          int        `json:"month"`
	Year           int        `json:"year"`
	Status         string     `json:"status"`
	CurrentStage   string     `json:"current_stage"`
	TotalEmployees int        `json:"total_employees"`
	Processed      int        `json:"processed"`
	Succeeded      int        `json:"succeeded"`
	Errored        int        `json:"errored"`
	Errors         []RunError `json:"errors"`
	StartedAt      *time.Time `json:"started_at,omitempty"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
}

func ToRunResponse(r PayrollRun) RunResponse {
	errs := r.Errors
	if errs == nil {
		errs = []RunError{}
	}
	return RunResponse{
		ID:             r.ID,
		Month:          r.Month,
		Year:           r.Year,
		Status:         string(r.Status),
		CurrentStage:   string(r.CurrentStage),
		TotalEmployees: r.TotalEmployees,
		Processed:      r.Processed,
		Succeeded:      r.Succeeded,
		Errored:        r.Errored,
		Errors:         errs,
		StartedAt:      r.StartedAt,
		CompletedAt:    r.CompletedAt,
	}
}

type RecordResponse struct {
	ID              string `json:"id"`
	RunID           string `json:"run_id"`
	EmployeeID      string `json:"employee_id"`
	EmployeeName    string `json:"employee_name,omitempty"`
	Month           int    `json:"month"`
	Year            int    `json:"year"`
	BasicPay        int64  `json:"basic_pay"`
	HRA             int64  `json:"hra"`
	Allowances      int64  `json:"allowances"`
	WorkingDays     int    `json:"working_days"`
	PaidDays        int    `json:"paid_days"`
	LOPDays         int    `json:"lop_days"`
	LOPDeduction    int64  `json:"lop_deduction"`
	GrossSalary     int64  `json:"gross_salary"`
	PFEmployee      int64  `json:"pf_employee"`
	PFEmployer      int64  `json:"pf_employer"`
	ESIApplicable   bool   `json:"esi_applicable"`
	ESIEmployee     int64  `json:"esi_employee"`
	ESIEmployer     int64  `json:"esi_employer"`
	PTConfigured    bool   `json:"pt_configured"`
	ProfessionalTax int64  `json:"professional_tax"`
	WithholdingTax  int64  `json:"withholding_tax"`
	TotalDeductions int64  `json:"total_deductions"`
	NetSalary       int64  `json:"net_salary"`
	EmployerCost    int64  `json:"employer_cost"`
	LoanDeduction   int64  `json:"loan_deduction"`
	Reimbursement   int64  `json:"reimbursement"`
	NetPayable      int64  `json:"net_payable"`
	Status          string `json:"status"`
}

func ToRecordResponse(r PayrollRecord) RecordResponse {
	name := ""
	if r.EmployeeName != nil {
		name = *r.EmployeeName
	}
	return RecordResponse{
		ID:              r.ID,
		RunID:           r.RunID,
		EmployeeID:      r.EmployeeID,
		EmployeeName:    name,
		Month:           r.Month,
		Year:            r.Year,
		BasicPay:        int64(r.BasicPay),
		HRA:             int64(r.HRA),
		Allowances:      int64(r.Allowances),
		WorkingDays:     r.WorkingDays,
		PaidDays:        r.PaidDays,
		LOPDays:         r.LOPDays,
		LOPDeduction:    int64(r.LOPDeduction),
		GrossSalary:     int64(r.GrossSalary),
		PFEmployee:      int64(r.PFEmployee),
		PFEmployer:      int64(r.PFEmployer),
		ESIApplicable:   r.ESIApplicable,
		ESIEmployee:     int64(r.ESIEmployee),
		ESIEmployer:     int64(r.ESIEmployer),
		PTConfigured:    r.PTConfigured,
		ProfessionalTax: int64(r.ProfessionalTax),
		WithholdingTax:  int64(r.WithholdingTax),
		TotalDeductions: int64(r.TotalDeductions),
		NetSalary:       int64(r.NetSalary),
		EmployerCost:    int64(r.EmployerCost),
		LoanDeduction:   int64(r.LoanDeductionTotal),
		Reimbursement:   int64(r.ReimbursementTotal),
		NetPayable:      int64(r.NetPayable),
		Status:          string(r.Status),
	}
}

func ToRecordResponses(records []PayrollRecord) []RecordResponse {
	result := make([]RecordResponse, 0, len(records))
	for _, r := range records {
		result = append(result, ToRecordResponse(r))
	}
	return result
}
