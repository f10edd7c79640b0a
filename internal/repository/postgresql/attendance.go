package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/opspay/payroll-backend-go/internal/domain/attendance"
	"github.com/opspay/payroll-backend-go/internal/pkg/database"
)

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}

func (r *attendanceRepository) ListForPeriod(ctx context.Context, employeeID string, month, year int) ([]attendance.Day, error) {
	q := database.GetQuerier(ctx, r.db)

	query := `
		SELECT id, employee_id, date, status
		FROM attendance_days
		WHERE employee_id = $1
		AND EXTRACT(MONTH FROM date) = $2
		AND EXTRACT(YEAR FROM date) = $3
		ORDER BY date
	`
	rows, err := q.Query(ctx, query, employeeID, month, year)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance: %w", err)
	}
	defer rows.Close()

	var days []attendance.Day
	for rows.Next() {
		var d attendance.Day
		if err := rows.Scan(&d.ID, &d.EmployeeID, &d.Date, &d.Status); err != nil {
			return nil, fmt.Errorf("failed to scan attendance day: %w", err)
		}
		days = append(days, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate attendance days: %w", err)
	}
	return days, nil
}

func (r *attendanceRepository) IsLocked(ctx context.Context, month, year int) (bool, error) {
	q := database.GetQuerier(ctx, r.db)

	query := `SELECT EXISTS (SELECT 1 FROM attendance_locks WHERE month = $1 AND year = $2)`
	var locked bool
	if err := q.QueryRow(ctx, query, month, year).Scan(&locked); err != nil {
		return false, fmt.Errorf("failed to check attendance lock: %w", err)
	}
	return locked, nil
}

func (r *attendanceRepository) Lock(ctx context.Context, month, year int, lockedBy string) error {
	q := database.GetQuerier(ctx, r.db)

	query := `INSERT INTO attendance_locks (month, year, locked_by) VALUES ($1, $2, $3)`
	if _, err := q.Exec(ctx, query, month, year, lockedBy); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			// Already locked, which is what the caller wanted.
			return nil
		}
		return fmt.Errorf("failed to lock attendance period: %w", err)
	}
	return nil
}
