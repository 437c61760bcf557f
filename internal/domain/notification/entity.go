package notification

import (
	"context"
	"time"
)

// Category classifies a notification for the client.
type Category string

const (
	CategoryClockIn       Category = "attendance_clock_in"
	CategoryMarkedAbsent  Category = "attendance_marked_absent"
	CategoryPenaltyIssued Category = "penalty_issued"
	CategoryLeaveApproved Category = "leave_approved"
	CategoryLeaveRejected Category = "leave_rejected"
)

type Notification struct {
	ID         string
	EmployeeID string
	Category   Category
	Title      string
	Message    string
	IsRead     bool
	ReadAt     *time.Time
	CreatedAt  time.Time
}

type QueueNotificationRequest struct {
	EmployeeID string
	Category   Category
	Title      string
	Message    string
}

// Queuer accepts notifications for asynchronous delivery. Callers treat it
// as fire-and-forget; a full queue drops rather than blocks.
type Queuer interface {
	QueueNotification(ctx context.Context, req QueueNotificationRequest) error
}

// Repository is the persistence behind the queue workers.
type Repository interface {
	CreateBatch(ctx context.Context, notifications []*Notification) error
	ListByEmployee(ctx context.Context, employeeID string, limit int) ([]Notification, error)
}
