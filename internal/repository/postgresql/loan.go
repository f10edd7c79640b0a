package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/opspay/payroll-backend-go/internal/domain/loan"
	"github.com/opspay/payroll-backend-go/internal/pkg/database"
	"github.com/shopspring/decimal"
)

type loanRepository struct {
	db *database.DB
}

func NewLoanRepository(db *database.DB) loan.LoanRepository {
	return &loanRepository{db: db}
}

func (r *loanRepository) GetByID(ctx context.Context, id string) (loan.EmployeeLoan, error) {
	q := database.GetQuerier(ctx, r.db)

	query := `
		SELECT id, employee_id, principal, annual_rate_pct::text, tenure_months,
			emi, remaining_balance, status, start_month, start_year,
			created_at, updated_at
		FROM employee_loans
		WHERE id = $1
	`
	var l loan.EmployeeLoan
	var rate string
	err := q.QueryRow(ctx, query, id).Scan(
		&l.ID, &l.EmployeeID, &l.Principal, &rate, &l.TenureMonths,
		&l.EMI, &l.RemainingBalance, &l.Status, &l.StartMonth, &l.StartYear,
		&l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return loan.EmployeeLoan{}, loan.ErrLoanNotFound
		}
		return loan.EmployeeLoan{}, fmt.Errorf("failed to get loan: %w", err)
	}
	if l.AnnualRatePct, err = decimal.NewFromString(rate); err != nil {
		return loan.EmployeeLoan{}, fmt.Errorf("failed to parse loan rate: %w", err)
	}
	return l, nil
}

func (r *loanRepository) DeductionsForCycle(ctx context.Context, employeeID string, month, year int) ([]loan.LoanDeduction, error) {
	q := database.GetQuerier(ctx, r.db)

	query := `
		SELECT d.id, d.loan_id, d.employee_id, d.month, d.year,
			d.emi, d.interest_component, d.principal_component,
			d.status, d.payroll_record_id, d.created_at, d.updated_at
		FROM loan_deductions d
		JOIN employee_loans l ON l.id = d.loan_id
		WHERE d.employee_id = $1 AND d.month = $2 AND d.year = $3
		ORDER BY d.id
	`
	rows, err := q.Query(ctx, query, employeeID, month, year)
	if err != nil {
		return nil, fmt.Errorf("failed to list loan deductions: %w", err)
	}
	defer rows.Close()

	var deductions []loan.LoanDeduction
	for rows.Next() {
		var d loan.LoanDeduction
		err := rows.Scan(
			&d.ID, &d.LoanID, &d.EmployeeID, &d.Month, &d.Year,
			&d.EMI, &d.InterestComponent, &d.PrincipalComponent,
			&d.Status, &d.PayrollRecordID, &d.CreatedAt, &d.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan loan deduction: %w", err)
		}
		deductions = append(deductions, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate loan deductions: %w", err)
	}
	return deductions, nil
}

func (r *loanRepository) ApplyDeduction(ctx context.Context, deductionID, payrollRecordID string) error {
	q := database.GetQuerier(ctx, r.db)

	// Status guard makes the whole statement a no-op on re-application.
	query := `
		UPDATE loan_deductions
		SET status = $1, payroll_record_id = $2, updated_at = NOW()
		WHERE id = $3 AND status = $4
		RETURNING loan_id, principal_component
	`
	var loanID string
	var principalComponent int64
	err := q.QueryRow(ctx, query,
		loan.DeductionStatusDeducted, payrollRecordID, deductionID, loan.DeductionStatusScheduled,
	).Scan(&loanID, &principalComponent)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return loan.ErrDeductionNotFound
		}
		return fmt.Errorf("failed to apply loan deduction: %w", err)
	}

	balanceQuery := `
		UPDATE employee_loans
		SET remaining_balance = remaining_balance - $1,
			status = CASE WHEN remaining_balance - $1 <= 0 THEN $2::text ELSE status END,
			updated_at = NOW()
		WHERE id = $3
	`
	if _, err := q.Exec(ctx, balanceQuery, principalComponent, loan.LoanStatusClosed, loanID); err != nil {
		return fmt.Errorf("failed to update loan balance: %w", err)
	}
	return nil
}
