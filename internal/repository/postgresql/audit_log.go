package postgresql

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cmlabs-hris/presensi-backend-go/internal/domain/audit"
	"github.com/cmlabs-hris/presensi-backend-go/internal/pkg/database"
	"github.com/google/uuid"
)

type auditLogRepository struct {
	db *database.DB
}

func NewAuditLogRepository(db *database.DB) audit.Recorder {
	return &auditLogRepository{db: db}
}

// RecordAuditLog implements audit.Recorder.
func (a *auditLogRepository) RecordAuditLog(ctx context.Context, entry audit.Entry) error {
	q := GetQuerier(ctx, a.db)

	oldJSON, err := json.Marshal(entry.OldValues)
	if err != nil {
		return fmt.Errorf("failed to marshal audit old values: %w", err)
	}
	newJSON, err := json.Marshal(entry.NewValues)
	if err != nil {
		return fmt.Errorf("failed to marshal audit new values: %w", err)
	}

	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO audit_logs (id, action, resource, resource_id, performed_by, old_values, new_values, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	if _, err := q.Exec(ctx, query,
		entry.ID, entry.Action, entry.Resource, entry.ResourceID,
		entry.PerformedBy, oldJSON, newJSON, entry.CreatedAt,
	); err != nil {
		return fmt.Errorf("failed to record audit log: %w", err)
	}

	return nil
}
