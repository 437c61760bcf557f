package violation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/presensi-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/presensi-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/presensi-backend-go/internal/domain/penalty"
	"github.com/cmlabs-hris/presensi-backend-go/internal/domain/settings"
	"github.com/cmlabs-hris/presensi-backend-go/internal/pkg/database"
)

// MonthResult summarizes one aggregation run.
type MonthResult struct {
	Month             string `json:"month"`
	RecordsScanned    int    `json:"records_scanned"`
	EmployeesAffected int    `json:"employees_affected"`
	PenaltiesIssued   int    `json:"penalties_issued"`
}

type Service struct {
	tx        database.TxManager
	settings  settings.Provider
	records   attendance.Repository
	penalties penalty.Repository
	history   penalty.HistoryRepository
	notifier  notification.Queuer

	now func() time.Time
}

func NewViolationService(
	tx database.TxManager,
	settingsProvider settings.Provider,
	recordRepo attendance.Repository,
	penaltyRepo penalty.Repository,
	historyRepo penalty.HistoryRepository,
	notifier notification.Queuer,
) *Service {
	return &Service{
		tx:        tx,
		settings:  settingsProvider,
		records:   recordRepo,
		penalties: penaltyRepo,
		history:   historyRepo,
		notifier:  notifier,
		now:       time.Now,
	}
}

// CalculateMonth scans a month's attendance records, tallies violations per
// employee and violation type, issues penalties for types at or over their
// threshold, and writes the monthly history summary. A non-nil employeeID
// restricts the run to that single employee. Re-running the same month
// issues no duplicate penalties: issuance is guarded by an existence check
// inside the same transaction, backed by a unique index.
func (s *Service) CalculateMonth(ctx context.Context, month string, employeeID *string) (MonthResult, error) {
	cfg, err := s.settings.GetCompanySettings(ctx)
	if err != nil {
		return MonthResult{}, fmt.Errorf("failed to get company settings: %w", err)
	}

	records, err := s.records.ListByMonth(ctx, month, employeeID)
	if err != nil {
		return MonthResult{}, fmt.Errorf("failed to list attendance records for %s: %w", month, err)
	}

	result := MonthResult{Month: month, RecordsScanned: len(records)}

	byEmployee := make(map[string][]attendance.Record)
	var order []string
	for _, rec := range records {
		if _, seen := byEmployee[rec.EmployeeID]; !seen {
			order = append(order, rec.EmployeeID)
		}
		byEmployee[rec.EmployeeID] = append(byEmployee[rec.EmployeeID], rec)
	}

	for _, employeeID := range order {
		issued, err := s.processEmployee(ctx, cfg, employeeID, month, byEmployee[employeeID])
		if err != nil {
			// One employee's failure must not abort the whole run; the job
			// is idempotent and retries on the next invocation.
			slog.Error("Failed to process monthly violations for employee",
				"employee_id", employeeID, "month", month, "error", err)
			continue
		}

		result.EmployeesAffected++
		result.PenaltiesIssued += len(issued)

		for _, p := range issued {
			s.notifyPenalty(ctx, p)
		}
	}

	return result, nil
}

func (s *Service) processEmployee(
	ctx context.Context,
	cfg settings.CompanySettings,
	employeeID, month string,
	records []attendance.Record,
) ([]penalty.Penalty, error) {
	tally := TallyRecords(records)

	var issued []penalty.Penalty
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		issued = issued[:0]

		for _, vt := range penalty.Precedence() {
			count := tally.Counts[vt]
			threshold, enforced := cfg.ViolationThresholds[vt]
			if !enforced || count < threshold {
				continue
			}

			exists, err := s.penalties.ExistsForMonth(ctx, employeeID, vt, month)
			if err != nil {
				return err
			}
			if exists {
				continue
			}

			p, err := s.penalties.Create(ctx, penalty.Penalty{
				EmployeeID:     employeeID,
				ViolationType:  vt,
				Month:          month,
				Amount:         cfg.PenaltyAmounts[vt],
				Status:         penalty.StatusActive,
				ViolationCount: count,
				DateIncurred:   s.now().UTC(),
			})
			if err != nil {
				return err
			}
			issued = append(issued, p)
		}

		existing, err := s.history.GetByEmployeeAndMonth(ctx, employeeID, month)
		if err != nil && !errors.Is(err, penalty.ErrHistoryNotFound) {
			return err
		}

		penaltyIDs := existing.PenaltyIDs
		for _, p := range issued {
			penaltyIDs = append(penaltyIDs, p.ID)
		}

		return s.history.Upsert(ctx, penalty.ViolationHistoryRecord{
			EmployeeID:       employeeID,
			Month:            month,
			Counts:           tally.Counts,
			Occurrences:      tally.Occurrences,
			PenaltyTriggered: len(penaltyIDs) > 0,
			PenaltyIDs:       penaltyIDs,
		})
	})
	if err != nil {
		return nil, err
	}
	return issued, nil
}

func (s *Service) notifyPenalty(ctx context.Context, p penalty.Penalty) {
	if s.notifier == nil {
		return
	}
	err := s.notifier.QueueNotification(ctx, notification.QueueNotificationRequest{
		EmployeeID: p.EmployeeID,
		Category:   notification.CategoryPenaltyIssued,
		Title:      "Penalty issued",
		Message: fmt.Sprintf("A penalty of %s was issued for %d %s violations in %s",
			p.Amount.StringFixed(2), p.ViolationCount, p.ViolationType, p.Month),
	})
	if err != nil {
		slog.Error("Failed to queue penalty notification",
			"employee_id", p.EmployeeID, "error", err)
	}
}

// GetHistory returns one employee's monthly summary.
func (s *Service) GetHistory(ctx context.Context, employeeID, month string) (penalty.ViolationHistoryRecord, error) {
	return s.history.GetByEmployeeAndMonth(ctx, employeeID, month)
}

// ListHistory returns every employee's summary for a month.
func (s *Service) ListHistory(ctx context.Context, month string) ([]penalty.ViolationHistoryRecord, error) {
	return s.history.ListByMonth(ctx, month)
}
