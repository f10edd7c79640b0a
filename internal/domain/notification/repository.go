package notification

import "context"

type NotificationRepository interface {
	Create(ctx context.Context, n Notification) (Notification, error)
	ListByEmployee(ctx context.Context, employeeID string, unreadOnly bool) ([]Notification, error)
	MarkRead(ctx context.Context, id string) error
}

// Notifier is the fire-and-forget payslip channel the finalization stage
// uses. Failures are logged by the caller, never propagated to the run.
type Notifier interface {
	PayslipReady(ctx context.Context, employeeID, employeeEmail string, month, year int) error
}
