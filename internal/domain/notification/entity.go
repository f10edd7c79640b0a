package notification

import "time"

type Notification struct {
	ID         string
	EmployeeID string
	Type       string
	Title      string
	Message    string
	IsRead     bool
	CreatedAt  time.Time
}

const TypePayslipReady = "payslip_ready"
