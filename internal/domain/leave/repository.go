package leave

import "context"

type Repository interface {
	Create(ctx context.Context, req LeaveRequest) (LeaveRequest, error)

	GetByID(ctx context.Context, id string) (LeaveRequest, error)

	// GetByIDForUpdate locks the request row for the caller's transaction,
	// serializing concurrent review decisions.
	GetByIDForUpdate(ctx context.Context, id string) (LeaveRequest, error)

	// UpdateReview persists the status, reviewer and optional rejection
	// reason of a processed request.
	UpdateReview(ctx context.Context, req LeaveRequest) error

	ListByEmployee(ctx context.Context, employeeID string) ([]LeaveRequest, error)
}
