package audit

import (
	"context"
	"time"
)

type Entry struct {
	ID          string
	Action      string // "clock_in", "manual_override", "leave_backfill", "penalty_issued", ...
	Resource    string // "attendance_record", "penalty", "leave_request"
	ResourceID  string
	PerformedBy string
	OldValues   map[string]any
	NewValues   map[string]any
	CreatedAt   time.Time
}

// Recorder persists audit entries. Recording happens outside the business
// transaction; a failed write is logged by the caller, never propagated.
type Recorder interface {
	RecordAuditLog(ctx context.Context, entry Entry) error
}
