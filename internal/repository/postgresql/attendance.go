package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/presensi-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/presensi-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.Repository {
	return &attendanceRepository{db: db}
}

const attendanceColumns = `
	record_key, employee_id, date,
	morning_status, morning_occurred_at, morning_latitude, morning_longitude, morning_late_by,
	midday_status, midday_occurred_at, midday_latitude, midday_longitude, midday_late_by,
	evening_status, evening_occurred_at, evening_latitude, evening_longitude, evening_late_by,
	daily_status, is_manual_entry, manual_reason, notes, leave_request_id,
	created_at, updated_at`

// slot statuses are stored as NULLable text; NULL means the slot has no
// outcome yet.
func scanRecord(row pgx.Row) (attendance.Record, error) {
	var rec attendance.Record
	var morningStatus, middayStatus, eveningStatus *string

	err := row.Scan(
		&rec.RecordKey, &rec.EmployeeID, &rec.Date,
		&morningStatus, &rec.Morning.OccurredAt, &rec.Morning.Latitude, &rec.Morning.Longitude, &rec.Morning.LateByMinutes,
		&middayStatus, &rec.Midday.OccurredAt, &rec.Midday.Latitude, &rec.Midday.Longitude, &rec.Midday.LateByMinutes,
		&eveningStatus, &rec.Evening.OccurredAt, &rec.Evening.Latitude, &rec.Evening.Longitude, &rec.Evening.LateByMinutes,
		&rec.DailyStatus, &rec.IsManualEntry, &rec.ManualReason, &rec.Notes, &rec.LeaveRequestID,
		&rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return attendance.Record{}, err
	}

	if morningStatus != nil {
		rec.Morning.Status = attendance.SlotStatus(*morningStatus)
	}
	if middayStatus != nil {
		rec.Midday.Status = attendance.SlotStatus(*middayStatus)
	}
	if eveningStatus != nil {
		rec.Evening.Status = attendance.SlotStatus(*eveningStatus)
	}

	return rec, nil
}

func slotStatusParam(s attendance.SlotStatus) *string {
	if s == "" {
		return nil
	}
	v := string(s)
	return &v
}

func recordParams(rec attendance.Record) []interface{} {
	return []interface{}{
		rec.RecordKey, rec.EmployeeID, rec.Date,
		slotStatusParam(rec.Morning.Status), rec.Morning.OccurredAt, rec.Morning.Latitude, rec.Morning.Longitude, rec.Morning.LateByMinutes,
		slotStatusParam(rec.Midday.Status), rec.Midday.OccurredAt, rec.Midday.Latitude, rec.Midday.Longitude, rec.Midday.LateByMinutes,
		slotStatusParam(rec.Evening.Status), rec.Evening.OccurredAt, rec.Evening.Latitude, rec.Evening.Longitude, rec.Evening.LateByMinutes,
		string(rec.DailyStatus), rec.IsManualEntry, rec.ManualReason, rec.Notes, rec.LeaveRequestID,
	}
}

// Create implements attendance.Repository.
func (a *attendanceRepository) Create(ctx context.Context, rec attendance.Record) (attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		INSERT INTO attendance_records (
			record_key, employee_id, date,
			morning_status, morning_occurred_at, morning_latitude, morning_longitude, morning_late_by,
			midday_status, midday_occurred_at, midday_latitude, midday_longitude, midday_late_by,
			evening_status, evening_occurred_at, evening_latitude, evening_longitude, evening_late_by,
			daily_status, is_manual_entry, manual_reason, notes, leave_request_id
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
			$14, $15, $16, $17, $18, $19, $20, $21, $22, $23
		) RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query, recordParams(rec)...).Scan(&rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return attendance.Record{}, fmt.Errorf("failed to create attendance record: %w", err)
	}

	return rec, nil
}

// Update implements attendance.Repository.
func (a *attendanceRepository) Update(ctx context.Context, rec attendance.Record) error {
	q := GetQuerier(ctx, a.db)

	query := `
		UPDATE attendance_records SET
			morning_status = $4, morning_occurred_at = $5, morning_latitude = $6, morning_longitude = $7, morning_late_by = $8,
			midday_status = $9, midday_occurred_at = $10, midday_latitude = $11, midday_longitude = $12, midday_late_by = $13,
			evening_status = $14, evening_occurred_at = $15, evening_latitude = $16, evening_longitude = $17, evening_late_by = $18,
			daily_status = $19, is_manual_entry = $20, manual_reason = $21, notes = $22, leave_request_id = $23,
			updated_at = NOW()
		WHERE record_key = $1
	`

	tag, err := q.Exec(ctx, query, recordParams(rec)...)
	if err != nil {
		return fmt.Errorf("failed to update attendance record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrRecordNotFound
	}

	return nil
}

// Save implements attendance.Repository. Leave backfill uses this to
// supersede whatever is stored for the day.
func (a *attendanceRepository) Save(ctx context.Context, rec attendance.Record) error {
	q := GetQuerier(ctx, a.db)

	query := `
		INSERT INTO attendance_records (
			record_key, employee_id, date,
			morning_status, morning_occurred_at, morning_latitude, morning_longitude, morning_late_by,
			midday_status, midday_occurred_at, midday_latitude, midday_longitude, midday_late_by,
			evening_status, evening_occurred_at, evening_latitude, evening_longitude, evening_late_by,
			daily_status, is_manual_entry, manual_reason, notes, leave_request_id
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
			$14, $15, $16, $17, $18, $19, $20, $21, $22, $23
		)
		ON CONFLICT (record_key) DO UPDATE SET
			morning_status = EXCLUDED.morning_status,
			morning_occurred_at = EXCLUDED.morning_occurred_at,
			morning_latitude = EXCLUDED.morning_latitude,
			morning_longitude = EXCLUDED.morning_longitude,
			morning_late_by = EXCLUDED.morning_late_by,
			midday_status = EXCLUDED.midday_status,
			midday_occurred_at = EXCLUDED.midday_occurred_at,
			midday_latitude = EXCLUDED.midday_latitude,
			midday_longitude = EXCLUDED.midday_longitude,
			midday_late_by = EXCLUDED.midday_late_by,
			evening_status = EXCLUDED.evening_status,
			evening_occurred_at = EXCLUDED.evening_occurred_at,
			evening_latitude = EXCLUDED.evening_latitude,
			evening_longitude = EXCLUDED.evening_longitude,
			evening_late_by = EXCLUDED.evening_late_by,
			daily_status = EXCLUDED.daily_status,
			is_manual_entry = EXCLUDED.is_manual_entry,
			manual_reason = EXCLUDED.manual_reason,
			notes = EXCLUDED.notes,
			leave_request_id = EXCLUDED.leave_request_id,
			updated_at = NOW()
	`

	if _, err := q.Exec(ctx, query, recordParams(rec)...); err != nil {
		return fmt.Errorf("failed to save attendance record: %w", err)
	}

	return nil
}

func (a *attendanceRepository) getByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time, forUpdate bool) (*attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT ` + attendanceColumns + `
		FROM attendance_records
		WHERE employee_id = $1 AND date = $2
	`
	if forUpdate {
		query += " FOR UPDATE"
	}

	rec, err := scanRecord(q.QueryRow(ctx, query, employeeID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // No record for this day yet
		}
		return nil, fmt.Errorf("failed to get attendance record by employee and date: %w", err)
	}

	return &rec, nil
}

// GetByEmployeeAndDate implements attendance.Repository.
func (a *attendanceRepository) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*attendance.Record, error) {
	return a.getByEmployeeAndDate(ctx, employeeID, date, false)
}

// GetByEmployeeAndDateForUpdate implements attendance.Repository.
func (a *attendanceRepository) GetByEmployeeAndDateForUpdate(ctx context.Context, employeeID string, date time.Time) (*attendance.Record, error) {
	return a.getByEmployeeAndDate(ctx, employeeID, date, true)
}

// GetByKey implements attendance.Repository.
func (a *attendanceRepository) GetByKey(ctx context.Context, recordKey string) (attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT ` + attendanceColumns + `
		FROM attendance_records
		WHERE record_key = $1
	`

	rec, err := scanRecord(q.QueryRow(ctx, query, recordKey))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Record{}, attendance.ErrRecordNotFound
		}
		return attendance.Record{}, fmt.Errorf("failed to get attendance record by key: %w", err)
	}

	return rec, nil
}

// ListByMonth implements attendance.Repository.
func (a *attendanceRepository) ListByMonth(ctx context.Context, month string, employeeID *string) ([]attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT ` + attendanceColumns + `
		FROM attendance_records
		WHERE to_char(date, 'YYYY-MM') = $1
	`
	args := []interface{}{month}

	if employeeID != nil && *employeeID != "" {
		query += " AND employee_id = $2"
		args = append(args, *employeeID)
	}
	query += " ORDER BY employee_id, date"

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance records by month: %w", err)
	}
	defer rows.Close()

	var records []attendance.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance record: %w", err)
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// ListByEmployee implements attendance.Repository.
func (a *attendanceRepository) ListByEmployee(ctx context.Context, employeeID string, from, to time.Time) ([]attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT ` + attendanceColumns + `
		FROM attendance_records
		WHERE employee_id = $1 AND date >= $2 AND date <= $3
		ORDER BY date
	`

	rows, err := q.Query(ctx, query, employeeID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance records by employee: %w", err)
	}
	defer rows.Close()

	var records []attendance.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance record: %w", err)
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// List implements attendance.Repository.
func (a *attendanceRepository) List(ctx context.Context, filter attendance.ListFilter) ([]attendance.Record, int64, error) {
	q := GetQuerier(ctx, a.db)

	baseWhere := "1=1"
	args := []interface{}{}
	argIdx := 1

	if filter.EmployeeID != nil && *filter.EmployeeID != "" {
		baseWhere += fmt.Sprintf(" AND a.employee_id = $%d", argIdx)
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.StartDate != nil && *filter.StartDate != "" {
		baseWhere += fmt.Sprintf(" AND a.date >= $%d", argIdx)
		args = append(args, *filter.StartDate)
		argIdx++
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		baseWhere += fmt.Sprintf(" AND a.date <= $%d", argIdx)
		args = append(args, *filter.EndDate)
		argIdx++
	}
	if filter.Status != nil && *filter.Status != "" {
		baseWhere += fmt.Sprintf(" AND a.daily_status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}

	var total int64
	countQuery := "SELECT COUNT(*) FROM attendance_records a WHERE " + baseWhere
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count attendance records: %w", err)
	}

	query := `
		SELECT
			a.record_key, a.employee_id, a.date,
			a.morning_status, a.morning_occurred_at, a.morning_latitude, a.morning_longitude, a.morning_late_by,
			a.midday_status, a.midday_occurred_at, a.midday_latitude, a.midday_longitude, a.midday_late_by,
			a.evening_status, a.evening_occurred_at, a.evening_latitude, a.evening_longitude, a.evening_late_by,
			a.daily_status, a.is_manual_entry, a.manual_reason, a.notes, a.leave_request_id,
			a.created_at, a.updated_at,
			e.full_name AS employee_name
		FROM attendance_records a
		LEFT JOIN employees e ON e.id = a.employee_id
		WHERE ` + baseWhere + fmt.Sprintf(`
		ORDER BY a.date DESC, a.employee_id
		LIMIT $%d OFFSET $%d
	`, argIdx, argIdx+1)
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list attendance records: %w", err)
	}
	defer rows.Close()

	var records []attendance.Record
	for rows.Next() {
		var rec attendance.Record
		var morningStatus, middayStatus, eveningStatus *string

		err := rows.Scan(
			&rec.RecordKey, &rec.EmployeeID, &rec.Date,
			&morningStatus, &rec.Morning.OccurredAt, &rec.Morning.Latitude, &rec.Morning.Longitude, &rec.Morning.LateByMinutes,
			&middayStatus, &rec.Midday.OccurredAt, &rec.Midday.Latitude, &rec.Midday.Longitude, &rec.Midday.LateByMinutes,
			&eveningStatus, &rec.Evening.OccurredAt, &rec.Evening.Latitude, &rec.Evening.Longitude, &rec.Evening.LateByMinutes,
			&rec.DailyStatus, &rec.IsManualEntry, &rec.ManualReason, &rec.Notes, &rec.LeaveRequestID,
			&rec.CreatedAt, &rec.UpdatedAt,
			&rec.EmployeeName,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan attendance record: %w", err)
		}

		if morningStatus != nil {
			rec.Morning.Status = attendance.SlotStatus(*morningStatus)
		}
		if middayStatus != nil {
			rec.Midday.Status = attendance.SlotStatus(*middayStatus)
		}
		if eveningStatus != nil {
			rec.Evening.Status = attendance.SlotStatus(*eveningStatus)
		}

		records = append(records, rec)
	}

	return records, total, rows.Err()
}
