package attendance

import (
	"context"
	"time"
)

// Repository defines data access for attendance records. Write paths are
// always invoked inside a transaction opened by the caller; the
// ...ForUpdate variant locks the row for the remainder of that transaction.
type Repository interface {
	// Create inserts a new record. The record key must be unique per
	// (employee, date).
	Create(ctx context.Context, rec Record) (Record, error)

	// Update rewrites all mutable fields of an existing record.
	Update(ctx context.Context, rec Record) error

	// Save creates or overwrites a record by its key. Used by leave
	// backfill, which deliberately supersedes any prior state.
	Save(ctx context.Context, rec Record) error

	// GetByEmployeeAndDate returns nil, nil when no record exists.
	GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*Record, error)

	// GetByEmployeeAndDateForUpdate is GetByEmployeeAndDate with a row lock.
	GetByEmployeeAndDateForUpdate(ctx context.Context, employeeID string, date time.Time) (*Record, error)

	// GetByKey retrieves a record by its "{employeeId}_{YYYY-MM-DD}" key.
	GetByKey(ctx context.Context, recordKey string) (Record, error)

	// ListByMonth returns every record whose date falls in month
	// ("YYYY-MM"), optionally filtered to one employee, ordered by
	// employee then date.
	ListByMonth(ctx context.Context, month string, employeeID *string) ([]Record, error)

	// ListByEmployee returns an employee's records in [from, to] inclusive.
	ListByEmployee(ctx context.Context, employeeID string, from, to time.Time) ([]Record, error)

	// List retrieves records with filters and pagination for the admin view.
	List(ctx context.Context, filter ListFilter) ([]Record, int64, error)
}
