package postgresql

import (
	"context"
	"fmt"

	"github.com/opspay/payroll-backend-go/internal/domain/notification"
	"github.com/opspay/payroll-backend-go/internal/pkg/database"
)

type notificationRepository struct {
	db *database.DB
}

func NewNotificationRepository(db *database.DB) notification.NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n notification.Notification) (notification.Notification, error) {
	q := database.GetQuerier(ctx, r.db)

	query := `
		INSERT INTO notifications (employee_id, type, title, message)
		VALUES ($1, $2, $3, $4)
		RETURNING id, employee_id, type, title, message, is_read, created_at
	`
	var created notification.Notification
	err := q.QueryRow(ctx, query, n.EmployeeID, n.Type, n.Title, n.Message).Scan(
		&created.ID, &created.EmployeeID, &created.Type, &created.Title,
		&created.Message, &created.IsRead, &created.CreatedAt,
	)
	if err != nil {
		return notification.Notification{}, fmt.Errorf("failed to create notification: %w", err)
	}
	return created, nil
}

func (r *notificationRepository) ListByEmployee(ctx context.Context, employeeID string, unreadOnly bool) ([]notification.Notification, error) {
	q := database.GetQuerier(ctx, r.db)

	query := `
		SELECT id, employee_id, type, title, message, is_read, created_at
		FROM notifications
		WHERE employee_id = $1 AND ($2 = FALSE OR is_read = FALSE)
		ORDER BY created_at DESC
	`
	rows, err := q.Query(ctx, query, employeeID, unreadOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []notification.Notification
	for rows.Next() {
		var n notification.Notification
		err := rows.Scan(&n.ID, &n.EmployeeID, &n.Type, &n.Title, &n.Message, &n.IsRead, &n.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate notifications: %w", err)
	}
	return notifications, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, id string) error {
	q := database.GetQuerier(ctx, r.db)

	query := `UPDATE notifications SET is_read = TRUE WHERE id = $1`
	if _, err := q.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return nil
}
