package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/presensi-backend-go/internal/domain/penalty"
	"github.com/cmlabs-hris/presensi-backend-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type violationHistoryRepository struct {
	db *database.DB
}

func NewViolationHistoryRepository(db *database.DB) penalty.HistoryRepository {
	return &violationHistoryRepository{db: db}
}

// Upsert implements penalty.HistoryRepository. Re-running the monthly
// aggregation replaces the previous summary for the same (employee, month).
func (v *violationHistoryRepository) Upsert(ctx context.Context, rec penalty.ViolationHistoryRecord) error {
	q := GetQuerier(ctx, v.db)

	countsJSON, err := json.Marshal(rec.Counts)
	if err != nil {
		return fmt.Errorf("failed to marshal violation counts: %w", err)
	}
	occurrencesJSON, err := json.Marshal(rec.Occurrences)
	if err != nil {
		return fmt.Errorf("failed to marshal violation occurrences: %w", err)
	}
	penaltyIDsJSON, err := json.Marshal(rec.PenaltyIDs)
	if err != nil {
		return fmt.Errorf("failed to marshal penalty IDs: %w", err)
	}

	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}

	query := `
		INSERT INTO violation_history (
			id, employee_id, month, counts, occurrences, penalty_triggered, penalty_ids
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (employee_id, month) DO UPDATE SET
			counts = EXCLUDED.counts,
			occurrences = EXCLUDED.occurrences,
			penalty_triggered = EXCLUDED.penalty_triggered,
			penalty_ids = EXCLUDED.penalty_ids,
			updated_at = NOW()
	`

	if _, err := q.Exec(ctx, query,
		rec.ID, rec.EmployeeID, rec.Month,
		countsJSON, occurrencesJSON, rec.PenaltyTriggered, penaltyIDsJSON,
	); err != nil {
		return fmt.Errorf("failed to upsert violation history: %w", err)
	}

	return nil
}

const historyColumns = `
	id, employee_id, month, counts, occurrences, penalty_triggered, penalty_ids,
	created_at, updated_at`

func scanHistory(row pgx.Row) (penalty.ViolationHistoryRecord, error) {
	var rec penalty.ViolationHistoryRecord
	var countsJSON, occurrencesJSON, penaltyIDsJSON []byte

	err := row.Scan(
		&rec.ID, &rec.EmployeeID, &rec.Month,
		&countsJSON, &occurrencesJSON, &rec.PenaltyTriggered, &penaltyIDsJSON,
		&rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return penalty.ViolationHistoryRecord{}, err
	}

	if err := json.Unmarshal(countsJSON, &rec.Counts); err != nil {
		return penalty.ViolationHistoryRecord{}, fmt.Errorf("failed to unmarshal violation counts: %w", err)
	}
	if err := json.Unmarshal(occurrencesJSON, &rec.Occurrences); err != nil {
		return penalty.ViolationHistoryRecord{}, fmt.Errorf("failed to unmarshal violation occurrences: %w", err)
	}
	if err := json.Unmarshal(penaltyIDsJSON, &rec.PenaltyIDs); err != nil {
		return penalty.ViolationHistoryRecord{}, fmt.Errorf("failed to unmarshal penalty IDs: %w", err)
	}

	return rec, nil
}

// GetByEmployeeAndMonth implements penalty.HistoryRepository.
func (v *violationHistoryRepository) GetByEmployeeAndMonth(ctx context.Context, employeeID, month string) (penalty.ViolationHistoryRecord, error) {
	q := GetQuerier(ctx, v.db)

	query := `
		SELECT ` + historyColumns + `
		FROM violation_history
		WHERE employee_id = $1 AND month = $2
	`

	rec, err := scanHistory(q.QueryRow(ctx, query, employeeID, month))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return penalty.ViolationHistoryRecord{}, penalty.ErrHistoryNotFound
		}
		return penalty.ViolationHistoryRecord{}, fmt.Errorf("failed to get violation history: %w", err)
	}

	return rec, nil
}

// ListByMonth implements penalty.HistoryRepository.
func (v *violationHistoryRepository) ListByMonth(ctx context.Context, month string) ([]penalty.ViolationHistoryRecord, error) {
	q := GetQuerier(ctx, v.db)

	query := `
		SELECT ` + historyColumns + `
		FROM violation_history
		WHERE month = $1
		ORDER BY employee_id
	`

	rows, err := q.Query(ctx, query, month)
	if err != nil {
		return nil, fmt.Errorf("failed to list violation history: %w", err)
	}
	defer rows.Close()

	var records []penalty.ViolationHistoryRecord
	for rows.Next() {
		rec, err := scanHistory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan violation history: %w", err)
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}
