package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/presensi-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/presensi-backend-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type leaveRequestRepository struct {
	db *database.DB
}

func NewLeaveRequestRepository(db *database.DB) leave.Repository {
	return &leaveRequestRepository{db: db}
}

const leaveColumns = `
	id, employee_id, start_date, end_date, total_days, reason, status,
	reviewed_by, reviewed_at, rejection_reason, created_at, updated_at`

func scanLeaveRequest(row pgx.Row) (leave.LeaveRequest, error) {
	var req leave.LeaveRequest
	err := row.Scan(
		&req.ID, &req.EmployeeID, &req.StartDate, &req.EndDate, &req.TotalDays,
		&req.Reason, &req.Status, &req.ReviewedBy, &req.ReviewedAt,
		&req.RejectionReason, &req.CreatedAt, &req.UpdatedAt,
	)
	return req, err
}

// Create implements leave.Repository.
func (l *leaveRequestRepository) Create(ctx context.Context, req leave.LeaveRequest) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, l.db)

	if req.ID == "" {
		req.ID = uuid.New().String()
	}

	query := `
		INSERT INTO leave_requests (
			id, employee_id, start_date, end_date, total_days, reason, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		req.ID, req.EmployeeID, req.StartDate, req.EndDate,
		req.TotalDays, req.Reason, string(req.Status),
	).Scan(&req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("failed to create leave request: %w", err)
	}

	return req, nil
}

func (l *leaveRequestRepository) getByID(ctx context.Context, id string, forUpdate bool) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, l.db)

	query := `SELECT ` + leaveColumns + ` FROM leave_requests WHERE id = $1`
	if forUpdate {
		query += " FOR UPDATE"
	}

	req, err := scanLeaveRequest(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
		}
		return leave.LeaveRequest{}, fmt.Errorf("failed to get leave request by ID: %w", err)
	}

	return req, nil
}

// GetByID implements leave.Repository.
func (l *leaveRequestRepository) GetByID(ctx context.Context, id string) (leave.LeaveRequest, error) {
	return l.getByID(ctx, id, false)
}

// GetByIDForUpdate implements leave.Repository.
func (l *leaveRequestRepository) GetByIDForUpdate(ctx context.Context, id string) (leave.LeaveRequest, error) {
	return l.getByID(ctx, id, true)
}

// UpdateReview implements leave.Repository.
func (l *leaveRequestRepository) UpdateReview(ctx context.Context, req leave.LeaveRequest) error {
	q := GetQuerier(ctx, l.db)

	tag, err := q.Exec(ctx, `
		UPDATE leave_requests
		SET status = $2, reviewed_by = $3, reviewed_at = $4,
		    rejection_reason = $5, updated_at = NOW()
		WHERE id = $1
	`, req.ID, string(req.Status), req.ReviewedBy, req.ReviewedAt, req.RejectionReason)
	if err != nil {
		return fmt.Errorf("failed to update leave request review: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return leave.ErrLeaveRequestNotFound
	}

	return nil
}

// ListByEmployee implements leave.Repository.
func (l *leaveRequestRepository) ListByEmployee(ctx context.Context, employeeID string) ([]leave.LeaveRequest, error) {
	q := GetQuerier(ctx, l.db)

	query := `
		SELECT ` + leaveColumns + `
		FROM leave_requests
		WHERE employee_id = $1
		ORDER BY start_date DESC
	`

	rows, err := q.Query(ctx, query, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave requests: %w", err)
	}
	defer rows.Close()

	var requests []leave.LeaveRequest
	for rows.Next() {
		req, err := scanLeaveRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leave request: %w", err)
		}
		requests = append(requests, req)
	}

	return requests, rows.Err()
}
