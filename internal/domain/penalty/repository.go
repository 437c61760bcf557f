package penalty

import "context"

// Repository defines data access for penalties.
type Repository interface {
	// Create inserts a new penalty. The store enforces uniqueness of
	// (employee, violation type, month); a duplicate insert fails.
	Create(ctx context.Context, p Penalty) (Penalty, error)

	// ExistsForMonth reports whether a penalty already exists for the
	// (employee, violation type, month) combination. Guards re-runs of the
	// monthly aggregation.
	ExistsForMonth(ctx context.Context, employeeID string, vt ViolationType, month string) (bool, error)

	GetByID(ctx context.Context, id string) (Penalty, error)

	// UpdateStatus persists a status transition.
	UpdateStatus(ctx context.Context, id string, status Status) error

	// ListByEmployee returns an employee's penalties, newest first,
	// optionally filtered to one month.
	ListByEmployee(ctx context.Context, employeeID string, month *string) ([]Penalty, error)

	// List returns penalties across employees for the admin view.
	List(ctx context.Context, month *string, status *Status) ([]Penalty, error)
}

// HistoryRepository persists monthly violation summaries.
type HistoryRepository interface {
	// Upsert writes the summary for (employee, month), replacing any
	// previous run's summary.
	Upsert(ctx context.Context, rec ViolationHistoryRecord) error

	GetByEmployeeAndMonth(ctx context.Context, employeeID, month string) (ViolationHistoryRecord, error)

	ListByMonth(ctx context.Context, month string) ([]ViolationHistoryRecord, error)
}
