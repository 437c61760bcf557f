package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/presensi-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/presensi-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type employeeRepository struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.Directory {
	return &employeeRepository{db: db}
}

// ListActive implements employee.Directory.
func (e *employeeRepository) ListActive(ctx context.Context) ([]employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	query := `
		SELECT id, full_name, email, is_active, leave_balance_days, created_at, updated_at
		FROM employees
		WHERE is_active = TRUE AND deleted_at IS NULL
		ORDER BY id
	`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list active employees: %w", err)
	}
	defer rows.Close()

	var employees []employee.Employee
	for rows.Next() {
		var emp employee.Employee
		if err := rows.Scan(&emp.ID, &emp.FullName, &emp.Email, &emp.IsActive,
			&emp.LeaveBalanceDays, &emp.CreatedAt, &emp.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, emp)
	}

	return employees, rows.Err()
}

// GetByID implements employee.Directory.
func (e *employeeRepository) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	query := `
		SELECT id, full_name, email, is_active, leave_balance_days, created_at, updated_at
		FROM employees
		WHERE id = $1 AND deleted_at IS NULL
	`

	var emp employee.Employee
	err := q.QueryRow(ctx, query, id).Scan(&emp.ID, &emp.FullName, &emp.Email,
		&emp.IsActive, &emp.LeaveBalanceDays, &emp.CreatedAt, &emp.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee by ID: %w", err)
	}

	return emp, nil
}

// DecrementLeaveBalance implements employee.Directory. The guard in the
// WHERE clause keeps the balance from going negative under concurrency.
func (e *employeeRepository) DecrementLeaveBalance(ctx context.Context, id string, days int) error {
	q := GetQuerier(ctx, e.db)

	tag, err := q.Exec(ctx, `
		UPDATE employees
		SET leave_balance_days = leave_balance_days - $2, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL AND leave_balance_days >= $2
	`, id, days)
	if err != nil {
		return fmt.Errorf("failed to decrement leave balance: %w", err)
	}

	if tag.RowsAffected() == 0 {
		if _, err := e.GetByID(ctx, id); err != nil {
			return err
		}
		return employee.ErrInsufficientLeaveBalance
	}

	return nil
}
