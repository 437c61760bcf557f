package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/presensi-backend-go/internal/domain/penalty"
	"github.com/cmlabs-hris/presensi-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type penaltyRepository struct {
	db *database.DB
}

func NewPenaltyRepository(db *database.DB) penalty.Repository {
	return &penaltyRepository{db: db}
}

// Create implements penalty.Repository.
func (p *penaltyRepository) Create(ctx context.Context, pen penalty.Penalty) (penalty.Penalty, error) {
	q := GetQuerier(ctx, p.db)

	query := `
		INSERT INTO penalties (
			id, employee_id, violation_type, month, amount, status,
			violation_count, date_incurred
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		pen.ID,
		pen.EmployeeID,
		string(pen.ViolationType),
		pen.Month,
		pen.Amount,
		string(pen.Status),
		pen.ViolationCount,
		pen.DateIncurred,
	).Scan(&pen.CreatedAt, &pen.UpdatedAt)

	if err != nil {
		return penalty.Penalty{}, fmt.Errorf("failed to create penalty: %w", err)
	}

	return pen, nil
}

// ExistsForMonth implements penalty.Repository.
func (p *penaltyRepository) ExistsForMonth(ctx context.Context, employeeID string, vt penalty.ViolationType, month string) (bool, error) {
	q := GetQuerier(ctx, p.db)

	query := `
		SELECT EXISTS (
			SELECT 1 FROM penalties
			WHERE employee_id = $1 AND violation_type = $2 AND month = $3
		)
	`

	var exists bool
	if err := q.QueryRow(ctx, query, employeeID, string(vt), month).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check penalty existence: %w", err)
	}

	return exists, nil
}

const penaltyColumns = `
	p.id, p.employee_id, p.violation_type, p.month, p.amount, p.status,
	p.violation_count, p.date_incurred, p.created_at, p.updated_at`

// GetByID implements penalty.Repository.
func (p *penaltyRepository) GetByID(ctx context.Context, id string) (penalty.Penalty, error) {
	q := GetQuerier(ctx, p.db)

	query := `
		SELECT ` + penaltyColumns + `, e.full_name AS employee_name
		FROM penalties p
		LEFT JOIN employees e ON e.id = p.employee_id
		WHERE p.id = $1
	`

	var pen penalty.Penalty
	err := q.QueryRow(ctx, query, id).Scan(
		&pen.ID, &pen.EmployeeID, &pen.ViolationType, &pen.Month, &pen.Amount, &pen.Status,
		&pen.ViolationCount, &pen.DateIncurred, &pen.CreatedAt, &pen.UpdatedAt,
		&pen.EmployeeName,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return penalty.Penalty{}, penalty.ErrPenaltyNotFound
		}
		return penalty.Penalty{}, fmt.Errorf("failed to get penalty by ID: %w", err)
	}

	return pen, nil
}

// UpdateStatus implements penalty.Repository.
func (p *penaltyRepository) UpdateStatus(ctx context.Context, id string, status penalty.Status) error {
	q := GetQuerier(ctx, p.db)

	tag, err := q.Exec(ctx, `
		UPDATE penalties SET status = $2, updated_at = NOW() WHERE id = $1
	`, id, string(status))
	if err != nil {
		return fmt.Errorf("failed to update penalty status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return penalty.ErrPenaltyNotFound
	}

	return nil
}

// ListByEmployee implements penalty.Repository.
func (p *penaltyRepository) ListByEmployee(ctx context.Context, employeeID string, month *string) ([]penalty.Penalty, error) {
	q := GetQuerier(ctx, p.db)

	query := `
		SELECT ` + penaltyColumns + `, e.full_name AS employee_name
		FROM penalties p
		LEFT JOIN employees e ON e.id = p.employee_id
		WHERE p.employee_id = $1
	`
	args := []interface{}{employeeID}

	if month != nil && *month != "" {
		query += " AND p.month = $2"
		args = append(args, *month)
	}
	query += " ORDER BY p.date_incurred DESC"

	return p.queryPenalties(ctx, q, query, args...)
}

// List implements penalty.Repository.
func (p *penaltyRepository) List(ctx context.Context, month *string, status *penalty.Status) ([]penalty.Penalty, error) {
	q := GetQuerier(ctx, p.db)

	query := `
		SELECT ` + penaltyColumns + `, e.full_name AS employee_name
		FROM penalties p
		LEFT JOIN employees e ON e.id = p.employee_id
		WHERE 1=1
	`
	args := []interface{}{}
	argIdx := 1

	if month != nil && *month != "" {
		query += fmt.Sprintf(" AND p.month = $%d", argIdx)
		args = append(args, *month)
		argIdx++
	}
	if status != nil && *status != "" {
		query += fmt.Sprintf(" AND p.status = $%d", argIdx)
		args = append(args, string(*status))
		argIdx++
	}
	query += " ORDER BY p.date_incurred DESC, p.employee_id"

	return p.queryPenalties(ctx, q, query, args...)
}

func (p *penaltyRepository) queryPenalties(ctx context.Context, q database.Querier, query string, args ...interface{}) ([]penalty.Penalty, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list penalties: %w", err)
	}
	defer rows.Close()

	var penalties []penalty.Penalty
	for rows.Next() {
		var pen penalty.Penalty
		err := rows.Scan(
			&pen.ID, &pen.EmployeeID, &pen.ViolationType, &pen.Month, &pen.Amount, &pen.Status,
			&pen.ViolationCount, &pen.DateIncurred, &pen.CreatedAt, &pen.UpdatedAt,
			&pen.EmployeeName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan penalty: %w", err)
		}
		penalties = append(penalties, pen)
	}

	return penalties, rows.Err()
}
