package postgresql

import (
	"context"
	"fmt"

	"github.com/opspay/payroll-backend-go/internal/domain/expense"
	"github.com/opspay/payroll-backend-go/internal/pkg/database"
)

type expenseClaimRepository struct {
	db *database.DB
}

func NewExpenseClaimRepository(db *database.DB) expense.ClaimRepository {
	return &expenseClaimRepository{db: db}
}

func (r *expenseClaimRepository) ForCycle(ctx context.Context, employeeID, runID string) ([]expense.Claim, error) {
	q := database.GetQuerier(ctx, r.db)

	// Approved claims awaiting reimbursement, plus claims this run already
	// reimbursed. The union keeps a re-executed stage's totals stable.
	query := `
		SELECT c.id, c.employee_id, c.description, c.amount, c.status,
			c.payroll_record_id, c.created_at, c.updated_at
		FROM expense_claims c
		WHERE c.employee_id = $1
		AND (
			(c.status = $2 AND c.payroll_record_id IS NULL)
			OR c.payroll_record_id IN (
				SELECT id FROM payroll_records
				WHERE run_id = $3 AND employee_id = $1
			)
		)
		ORDER BY c.created_at, c.id
	`
	rows, err := q.Query(ctx, query, employeeID, expense.ClaimStatusApproved, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list expense claims: %w", err)
	}
	defer rows.Close()

	var claims []expense.Claim
	for rows.Next() {
		var c expense.Claim
		err := rows.Scan(
			&c.ID, &c.EmployeeID, &c.Description, &c.Amount, &c.Status,
			&c.PayrollRecordID, &c.CreatedAt, &c.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense claim: %w", err)
		}
		claims = append(claims, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expense claims: %w", err)
	}
	return claims, nil
}

func (r *expenseClaimRepository) MarkReimbursed(ctx context.Context, ids []string, payrollRecordID string) error {
	if len(ids) == 0 {
		return nil
	}
	q := database.GetQuerier(ctx, r.db)

	query := `
		UPDATE expense_claims
		SET status = $1, payroll_record_id = $2, updated_at = NOW()
		WHERE id = ANY($3) AND status = $4
	`
	if _, err := q.Exec(ctx, query, expense.ClaimStatusReimbursed, payrollRecordID, ids, expense.ClaimStatusApproved); err != nil {
		return fmt.Errorf("failed to mark claims reimbursed: %w", err)
	}
	return nil
}
