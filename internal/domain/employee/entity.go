package employee

import (
	"context"
	"errors"
	"time"
)

var (
	ErrEmployeeNotFound         = errors.New("employee not found")
	ErrInsufficientLeaveBalance = errors.New("insufficient leave balance")
)

type Employee struct {
	ID               string
	FullName         string
	Email            string
	IsActive         bool
	LeaveBalanceDays int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Directory is the employee lookup surface the engine consumes.
type Directory interface {
	// ListActive returns every active employee, the scope of the daily
	// finalization sweep.
	ListActive(ctx context.Context) ([]Employee, error)

	GetByID(ctx context.Context, id string) (Employee, error)

	// DecrementLeaveBalance atomically subtracts days from the employee's
	// leave balance, failing with ErrInsufficientLeaveBalance when the
	// balance would go negative.
	DecrementLeaveBalance(ctx context.Context, id string, days int) error
}
