package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/presensi-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/presensi-backend-go/internal/pkg/database"
)

type notificationRepository struct {
	db *database.DB
}

func NewNotificationRepository(db *database.DB) notification.Repository {
	return &notificationRepository{db: db}
}

// CreateBatch implements notification.Repository.
func (n *notificationRepository) CreateBatch(ctx context.Context, notifications []*notification.Notification) error {
	if len(notifications) == 0 {
		return nil
	}

	q := GetQuerier(ctx, n.db)

	query := `
		INSERT INTO notifications (id, employee_id, category, title, message, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	for _, nt := range notifications {
		if _, err := q.Exec(ctx, query,
			nt.ID, nt.EmployeeID, string(nt.Category), nt.Title, nt.Message,
			nt.IsRead, nt.CreatedAt,
		); err != nil {
			return fmt.Errorf("failed to insert notification batch: %w", err)
		}
	}

	return nil
}

// ListByEmployee implements notification.Repository.
func (n *notificationRepository) ListByEmployee(ctx context.Context, employeeID string, limit int) ([]notification.Notification, error) {
	q := GetQuerier(ctx, n.db)

	query := `
		SELECT id, employee_id, category, title, message, is_read, read_at, created_at
		FROM notifications
		WHERE employee_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := q.Query(ctx, query, employeeID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []notification.Notification
	for rows.Next() {
		var nt notification.Notification
		if err := rows.Scan(&nt.ID, &nt.EmployeeID, &nt.Category, &nt.Title,
			&nt.Message, &nt.IsRead, &nt.ReadAt, &nt.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, nt)
	}

	return notifications, rows.Err()
}
