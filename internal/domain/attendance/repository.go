package attendance

import "context"

type AttendanceRepository interface {
	ListForPeriod(ctx context.Context, employeeID string, month, year int) ([]Day, error)

	// IsLocked reports whether the period has been closed for edits.
	IsLocked(ctx context.Context, month, year int) (bool, error)
	Lock(ctx context.Context, month, year int, lockedBy string) error
}
