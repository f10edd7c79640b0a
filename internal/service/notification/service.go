package notification

import (
	"context"
	"fmt"

	"github.com/opspay/payroll-backend-go/internal/domain/notification"
	"github.com/opspay/payroll-backend-go/internal/pkg/validator"
)

type NotificationService struct {
	notificationRepo notification.NotificationRepository
}

func NewNotificationService(notificationRepo notification.NotificationRepository) *NotificationService {
	return &NotificationService{notificationRepo: notificationRepo}
}

// PayslipReady records a payslip-ready notification for the employee.
// Employees without a valid contact address are rejected here; the caller
// logs and moves on.
func (s *NotificationService) PayslipReady(ctx context.Context, employeeID, employeeEmail string, month, year int) error {
	if !validator.IsValidEmail(employeeEmail) {
		return fmt.Errorf("employee %s has no valid contact address", employeeID)
	}

	_, err := s.notificationRepo.Create(ctx, notification.Notification{
		EmployeeID: employeeID,
		Type:       notification.TypePayslipReady,
		Title:      "Payslip ready",
		Message:    fmt.Sprintf("Your payslip for %02d/%d is ready.", month, year),
	})
	return err
}

func (s *NotificationService) ListForEmployee(ctx context.Context, employeeID string, unreadOnly bool) ([]notification.Notification, error) {
	return s.notificationRepo.ListByEmployee(ctx, employeeID, unreadOnly)
}

func (s *NotificationService) MarkRead(ctx context.Context, id string) error {
	return s.notificationRepo.MarkRead(ctx, id)
}
