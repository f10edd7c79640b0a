package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/opspay/payroll-backend-go/internal/domain/payroll"
	"github.com/opspay/payroll-backend-go/internal/pkg/database"
)

type payrollRecordRepository struct {
	db *database.DB
}

func NewPayrollRecordRepository(db *database.DB) payroll.RecordRepository {
	return &payrollRecordRepository{db: db}
}

const recordColumns = `
	pr.id, pr.run_id, pr.employee_id, pr.month, pr.year,
	pr.basic_pay, pr.hra, pr.allowances,
	pr.working_days, pr.paid_days, pr.lop_days,
	pr.gross_before_lop, pr.lop_deduction, pr.gross_salary,
	pr.pf_employee, pr.pf_employer,
	pr.esi_applicable, pr.esi_employee, pr.esi_employer,
	pr.pt_configured, pr.professional_tax, pr.withholding_tax,
	pr.total_deductions, pr.net_salary, pr.employer_cost,
	pr.loan_deduction_total, pr.reimbursement_total, pr.net_payable,
	pr.status, pr.created_at, pr.updated_at
`

func scanRecord(row pgx.Row, withName bool) (payroll.PayrollRecord, error) {
	var rec payroll.PayrollRecord
	dest := []any{
		&rec.ID, &rec.RunID, &rec.EmployeeID, &rec.Month, &rec.Year,
		&rec.BasicPay, &rec.HRA, &rec.Allowances,
		&rec.WorkingDays, &rec.PaidDays, &rec.LOPDays,
		&rec.GrossBeforeLOP, &rec.LOPDeduction, &rec.GrossSalary,
		&rec.PFEmployee, &rec.PFEmployer,
		&rec.ESIApplicable, &rec.ESIEmployee, &rec.ESIEmployer,
		&rec.PTConfigured, &rec.ProfessionalTax, &rec.WithholdingTax,
		&rec.TotalDeductions, &rec.NetSalary, &rec.EmployerCost,
		&rec.LoanDeductionTotal, &rec.ReimbursementTotal, &rec.NetPayable,
		&rec.Status, &rec.CreatedAt, &rec.UpdatedAt,
	}
	if withName {
		dest = append(dest, &rec.EmployeeName)
	}
	if err := row.Scan(dest...); err != nil {
		return payroll.PayrollRecord{}, err
	}
	return rec, nil
}

func (r *payrollRecordRepository) Upsert(ctx context.Context, record payroll.PayrollRecord) (payroll.PayrollRecord, error) {
	q := database.GetQuerier(ctx, r.db)

	query := `
		INSERT INTO payroll_records AS pr (
			run_id, employee_id, month, year,
			basic_pay, hra, allowances,
			working_days, paid_days, lop_days,
			gross_before_lop, lop_deduction, gross_salary,
			pf_employee, pf_employer,
			esi_applicable, esi_employee, esi_employer,
			pt_configured, professional_tax, withholding_tax,
			total_deductions, net_salary, employer_cost,
			loan_deduction_total, reimbursement_total, net_payable,
			status
		) VALUES (
			$1, $2, $3, $4,
			$5, $6, $7,
			$8, $9, $10,
			$11, $12, $13,
			$14, $15,
			$16, $17, $18,
			$19, $20, $21,
			$22, $23, $24,
			$25, $26, $27,
			$28
		)
		ON CONFLICT (run_id, employee_id) DO UPDATE SET
			month = EXCLUDED.month,
			year = EXCLUDED.year,
			basic_pay = EXCLUDED.basic_pay,
			hra = EXCLUDED.hra,
			allowances = EXCLUDED.allowances,
			working_days = EXCLUDED.working_days,
			paid_days = EXCLUDED.paid_days,
			lop_days = EXCLUDED.lop_days,
			gross_before_lop = EXCLUDED.gross_before_lop,
			lop_deduction = EXCLUDED.lop_deduction,
			gross_salary = EXCLUDED.gross_salary,
			pf_employee = EXCLUDED.pf_employee,
			pf_employer = EXCLUDED.pf_employer,
			esi_applicable = EXCLUDED.esi_applicable,
			esi_employee = EXCLUDED.esi_employee,
			esi_employer = EXCLUDED.esi_employer,
			pt_configured = EXCLUDED.pt_configured,
			professional_tax = EXCLUDED.professional_tax,
			withholding_tax = EXCLUDED.withholding_tax,
			total_deductions = EXCLUDED.total_deductions,
			net_salary = EXCLUDED.net_salary,
			employer_cost = EXCLUDED.employer_cost,
			loan_deduction_total = EXCLUDED.loan_deduction_total,
			reimbursement_total = EXCLUDED.reimbursement_total,
			net_payable = EXCLUDED.net_payable,
			status = EXCLUDED.status,
			updated_at = NOW()
		RETURNING ` + recordColumns

	rec, err := scanRecord(q.QueryRow(ctx, query,
		record.RunID, record.EmployeeID, record.Month, record.Year,
		record.BasicPay, record.HRA, record.Allowances,
		record.WorkingDays, record.PaidDays, record.LOPDays,
		record.GrossBeforeLOP, record.LOPDeduction, record.GrossSalary,
		record.PFEmployee, record.PFEmployer,
		record.ESIApplicable, record.ESIEmployee, record.ESIEmployer,
		record.PTConfigured, record.ProfessionalTax, record.WithholdingTax,
		record.TotalDeductions, record.NetSalary, record.EmployerCost,
		record.LoanDeductionTotal, record.ReimbursementTotal, record.NetPayable,
		record.Status,
	), false)
	if err != nil {
		return payroll.PayrollRecord{}, fmt.Errorf("failed to upsert payroll record: %w", err)
	}
	return rec, nil
}

func (r *payrollRecordRepository) GetByRunAndEmployee(ctx context.Context, runID, employeeID string) (payroll.PayrollRecord, error) {
	q := database.GetQuerier(ctx, r.db)

	query := `
		SELECT ` + recordColumns + `, e.name
		FROM payroll_records pr
		JOIN employees e ON e.id = pr.employee_id
		WHERE pr.run_id = $1 AND pr.employee_id = $2
	`
	rec, err := scanRecord(q.QueryRow(ctx, query, runID, employeeID), true)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.PayrollRecord{}, payroll.ErrRecordNotFound
		}
		return payroll.PayrollRecord{}, fmt.Errorf("failed to get payroll record: %w", err)
	}
	return rec, nil
}

func (r *payrollRecordRepository) ListByRun(ctx context.Context, runID string) ([]payroll.PayrollRecord, error) {
	q := database.GetQuerier(ctx, r.db)

	query := `
		SELECT ` + recordColumns + `, e.name
		FROM payroll_records pr
		JOIN employees e ON e.id = pr.employee_id
		WHERE pr.run_id = $1
		ORDER BY e.name, pr.employee_id
	`
	rows, err := q.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll records: %w", err)
	}
	defer rows.Close()

	var records []payroll.PayrollRecord
	for rows.Next() {
		rec, err := scanRecord(rows, true)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payroll record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payroll records: %w", err)
	}
	return records, nil
}

func (r *payrollRecordRepository) MarkVerifiedByRun(ctx context.Context, runID string) (int, error) {
	q := database.GetQuerier(ctx, r.db)

	query := `
		UPDATE payroll_records
		SET status = $1, updated_at = NOW()
		WHERE run_id = $2 AND status = $3
	`
	tag, err := q.Exec(ctx, query, payroll.RecordStatusVerified, runID, payroll.RecordStatusCalculated)
	if err != nil {
		return 0, fmt.Errorf("failed to mark records verified: %w", err)
	}
	return int(tag.RowsAffected()), nil
}
