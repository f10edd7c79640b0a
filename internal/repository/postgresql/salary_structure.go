package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/opspay/payroll-backend-go/internal/domain/employee"
	"github.com/opspay/payroll-backend-go/internal/pkg/database"
)

type salaryStructureRepository struct {
	db *database.DB
}

func NewSalaryStructureRepository(db *database.DB) employee.SalaryStructureRepository {
	return &salaryStructureRepository{db: db}
}

const structureColumns = `
	id, employee_id, basic_pay, hra, allowances,
	effective_from, effective_to, is_compliant, created_at, updated_at
`

func scanStructure(row pgx.Row) (employee.SalaryStructure, error) {
	var s employee.SalaryStructure
	err := row.Scan(
		&s.ID, &s.EmployeeID, &s.BasicPay, &s.HRA, &s.Allowances,
		&s.EffectiveFrom, &s.EffectiveTo, &s.IsCompliant, &s.CreatedAt, &s.UpdatedAt,
	)
	return s, err
}

func (r *salaryStructureRepository) Create(ctx context.Context, structure employee.SalaryStructure) (employee.SalaryStructure, error) {
	q := database.GetQuerier(ctx, r.db)

	// Overlap check and insert race against concurrent creates; callers
	// run this inside a transaction when that matters.
	overlapQuery := `
		SELECT EXISTS (
			SELECT 1 FROM salary_structures
			WHERE employee_id = $1
			AND effective_from < COALESCE($3, 'infinity'::timestamptz)
			AND COALESCE(effective_to, 'infinity'::timestamptz) > $2
		)
	`
	var overlaps bool
	if err := q.QueryRow(ctx, overlapQuery, structure.EmployeeID, structure.EffectiveFrom, structure.EffectiveTo).Scan(&overlaps); err != nil {
		return employee.SalaryStructure{}, fmt.Errorf("failed to check structure overlap: %w", err)
	}
	if overlaps {
		return employee.SalaryStructure{}, employee.ErrStructureOverlap
	}

	query := `
		INSERT INTO salary_structures (
			employee_id, basic_pay, hra, allowances,
			effective_from, effective_to, is_compliant
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + structureColumns

	s, err := scanStructure(q.QueryRow(ctx, query,
		structure.EmployeeID, structure.BasicPay, structure.HRA, structure.Allowances,
		structure.EffectiveFrom, structure.EffectiveTo, structure.ComputeCompliance(),
	))
	if err != nil {
		return employee.SalaryStructure{}, fmt.Errorf("failed to create salary structure: %w", err)
	}
	return s, nil
}

func (r *salaryStructureRepository) GetActiveForEmployee(ctx context.Context, employeeID string, at time.Time) (employee.SalaryStructure, error) {
	q := database.GetQuerier(ctx, r.db)

	query := `
		SELECT ` + structureColumns + `
		FROM salary_structures
		WHERE employee_id = $1
		AND effective_from <= $2
		AND (effective_to IS NULL OR effective_to > $2)
		ORDER BY effective_from DESC
		LIMIT 1
	`
	s, err := scanStructure(q.QueryRow(ctx, query, employeeID, at))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.SalaryStructure{}, employee.ErrSalaryStructureNotFound
		}
		return employee.SalaryStructure{}, fmt.Errorf("failed to get active salary structure: %w", err)
	}
	return s, nil
}
