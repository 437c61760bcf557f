package attendance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/presensi-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/presensi-backend-go/internal/domain/audit"
	"github.com/cmlabs-hris/presensi-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/presensi-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/presensi-backend-go/internal/domain/settings"
	"github.com/cmlabs-hris/presensi-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/presensi-backend-go/internal/pkg/utils"
)

// ClockSkewTolerance is how far a submitted timestamp may deviate from
// server time before the clock-in is rejected as stale or backdated.
const ClockSkewTolerance = 5 * time.Minute

type Service struct {
	tx        database.TxManager
	settings  settings.Provider
	records   attendance.Repository
	employees employee.Directory
	notifier  notification.Queuer
	auditor   audit.Recorder

	now func() time.Time
}

func NewAttendanceService(
	tx database.TxManager,
	settingsProvider settings.Provider,
	recordRepo attendance.Repository,
	employeeDir employee.Directory,
	notifier notification.Queuer,
	auditor audit.Recorder,
) *Service {
	return &Service{
		tx:        tx,
		settings:  settingsProvider,
		records:   recordRepo,
		employees: employeeDir,
		notifier:  notifier,
		auditor:   auditor,
		now:       time.Now,
	}
}

// ClockIn classifies one check-in event into a slot outcome and records it.
// The record read-modify-write runs in a single transaction; geofence,
// calendar and staleness checks happen before the transaction opens since
// they read no mutable state.
func (s *Service) ClockIn(ctx context.Context, employeeID string, req attendance.ClockInRequest) (attendance.ClockInResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.ClockInResponse{}, err
	}

	if req.IsMockLocation {
		return attendance.ClockInResponse{}, attendance.ErrMockLocation
	}

	nowUTC := s.now().UTC()
	skew := nowUTC.Sub(req.Timestamp.UTC())
	if skew < 0 {
		skew = -skew
	}
	if skew > ClockSkewTolerance {
		return attendance.ClockInResponse{}, attendance.ErrStaleTimestamp
	}

	cfg, err := s.settings.GetCompanySettings(ctx)
	if err != nil {
		return attendance.ClockInResponse{}, fmt.Errorf("failed to get company settings: %w", err)
	}

	loc := cfg.Location()
	instantLocal := req.Timestamp.In(loc)
	date := attendance.DateOf(req.Timestamp, loc)

	if !attendance.IsWorkingDay(date, cfg.WorkingDays, cfg.Holidays) {
		return attendance.ClockInResponse{}, attendance.ErrNotWorkingDay
	}

	if err := utils.ValidateGeofence(
		req.Latitude, req.Longitude,
		cfg.WorkplaceLatitude, cfg.WorkplaceLongitude,
		cfg.WorkplaceRadiusMeters, cfg.GeofencingEnabled,
	); err != nil {
		return attendance.ClockInResponse{}, err
	}

	slot, classification := classify(cfg, instantLocal)
	if classification == nil {
		return attendance.ClockInResponse{}, attendance.ErrNoActiveWindow
	}

	var resp attendance.ClockInResponse
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		rec, err := s.records.GetByEmployeeAndDateForUpdate(ctx, employeeID, date)
		if err != nil {
			return err
		}

		created := false
		if rec == nil {
			created = true
			rec = &attendance.Record{
				RecordKey:  attendance.NewRecordKey(employeeID, date),
				EmployeeID: employeeID,
				Date:       date,
			}
		}

		outcome := rec.Slot(slot)
		if outcome.Resolved() {
			return attendance.ErrSlotAlreadyRecorded
		}

		occurredAt := req.Timestamp.UTC()
		lat, lng := req.Latitude, req.Longitude
		lateBy := classification.LateByMinutes
		*outcome = attendance.SlotOutcome{
			Status:        classification.Status,
			OccurredAt:    &occurredAt,
			Latitude:      &lat,
			Longitude:     &lng,
			LateByMinutes: &lateBy,
		}

		rec.DailyStatus = attendance.ResolveDailyStatus(rec.SlotStatuses(), false)

		if created {
			_, err = s.records.Create(ctx, *rec)
		} else {
			err = s.records.Update(ctx, *rec)
		}
		if err != nil {
			return err
		}

		resp = attendance.ClockInResponse{
			Slot:          slot,
			SlotStatus:    classification.Status,
			LateByMinutes: classification.LateByMinutes,
			DailyStatus:   rec.DailyStatus,
			Date:          date.Format("2006-01-02"),
		}
		return nil
	})
	if err != nil {
		return attendance.ClockInResponse{}, err
	}

	// Side effects stay outside the transaction: a failed notification or
	// audit write must not roll back a recorded clock-in.
	s.recordAudit(ctx, audit.Entry{
		Action:      "clock_in",
		Resource:    "attendance_record",
		ResourceID:  attendance.NewRecordKey(employeeID, date),
		PerformedBy: employeeID,
		NewValues: map[string]any{
			"slot":        string(resp.Slot),
			"slot_status": string(resp.SlotStatus),
		},
	})
	s.queueNotification(ctx, notification.QueueNotificationRequest{
		EmployeeID: employeeID,
		Category:   notification.CategoryClockIn,
		Title:      "Clock-in recorded",
		Message: fmt.Sprintf("Your %s check-in on %s was recorded as %s",
			resp.Slot, resp.Date, resp.SlotStatus),
	})

	return resp, nil
}

// classify tries the day's slots in fixed order and returns the first
// window the instant falls into.
func classify(cfg settings.CompanySettings, instantLocal time.Time) (attendance.SlotName, *attendance.Classification) {
	minute := attendance.MinuteOfDay(instantLocal)
	for _, slot := range attendance.SlotOrder() {
		c := attendance.ClassifySlot(slot, minute, cfg.SlotWindows[slot], cfg.GracePeriods[slot])
		if c != nil {
			return slot, c
		}
	}
	return "", nil
}

// FinalizeDay is the end-of-day sweep: it creates absent records for
// employees who never checked in and flips incomplete days to a terminal
// status. Non-working days are skipped outright, mirroring the clock-in
// calendar check: a day nobody could check in on must not become absent.
// Safe to re-run; a second pass over an already-finalized date produces
// zero writes.
func (s *Service) FinalizeDay(ctx context.Context, date time.Time) (attendance.FinalizeResult, error) {
	cfg, err := s.settings.GetCompanySettings(ctx)
	if err != nil {
		return attendance.FinalizeResult{}, fmt.Errorf("failed to get company settings: %w", err)
	}

	loc := cfg.Location()
	date = attendance.DateOf(date, loc)

	if !attendance.IsWorkingDay(date, cfg.WorkingDays, cfg.Holidays) {
		slog.Info("Skipping finalization for non-working day", "date", date.Format("2006-01-02"))
		return attendance.FinalizeResult{Date: date.Format("2006-01-02")}, nil
	}

	employees, err := s.employees.ListActive(ctx)
	if err != nil {
		return attendance.FinalizeResult{}, fmt.Errorf("failed to list active employees: %w", err)
	}

	result := attendance.FinalizeResult{Date: date.Format("2006-01-02")}

	for _, emp := range employees {
		created, updated, err := s.finalizeEmployeeDay(ctx, emp.ID, date)
		if err != nil {
			// A single employee's failure must not sink the sweep; the
			// job is idempotent and the next run picks the employee up.
			slog.Error("Failed to finalize attendance for employee",
				"employee_id", emp.ID, "date", result.Date, "error", err)
			continue
		}

		result.Processed++
		if created {
			result.AbsentRecordsCreated++
			s.queueNotification(ctx, notification.QueueNotificationRequest{
				EmployeeID: emp.ID,
				Category:   notification.CategoryMarkedAbsent,
				Title:      "Marked absent",
				Message:    fmt.Sprintf("You were marked absent for %s", result.Date),
			})
		}
		if updated {
			result.RecordsUpdated++
		}
	}

	return result, nil
}

func (s *Service) finalizeEmployeeDay(ctx context.Context, employeeID string, date time.Time) (created, updated bool, err error) {
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		rec, err := s.records.GetByEmployeeAndDateForUpdate(ctx, employeeID, date)
		if err != nil {
			return err
		}

		if rec == nil {
			missed := attendance.SlotOutcome{Status: attendance.SlotMissed}
			_, err := s.records.Create(ctx, attendance.Record{
				RecordKey:   attendance.NewRecordKey(employeeID, date),
				EmployeeID:  employeeID,
				Date:        date,
				Morning:     missed,
				Midday:      missed,
				Evening:     missed,
				DailyStatus: attendance.StatusAbsent,
			})
			if err != nil {
				return err
			}
			created = true
			return nil
		}

		// Leave takes precedence and is never overwritten by finalization.
		if rec.DailyStatus == attendance.StatusOnLeave {
			return nil
		}

		slotMarked := false
		for _, slot := range attendance.SlotOrder() {
			outcome := rec.Slot(slot)
			if outcome.Status == "" {
				outcome.Status = attendance.SlotMissed
				slotMarked = true
			}
		}

		newStatus := attendance.ResolveDailyStatus(rec.SlotStatuses(), true)
		statusChanged := newStatus != rec.DailyStatus
		rec.DailyStatus = newStatus

		// Skip the write when nothing moved so re-runs stay no-ops.
		if !slotMarked && !statusChanged {
			return nil
		}

		if err := s.records.Update(ctx, *rec); err != nil {
			return err
		}
		updated = true
		return nil
	})
	return created, updated, err
}

// UpdateRecord is the admin override path. Changes mark the record as a
// manual entry and leave a full before/after audit trail.
func (s *Service) UpdateRecord(ctx context.Context, performedBy string, req attendance.ManualUpdateRequest) (attendance.RecordResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.RecordResponse{}, err
	}

	var before, after attendance.Record
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		rec, err := s.records.GetByKey(ctx, req.RecordKey)
		if err != nil {
			return err
		}
		before = rec

		for slot, status := range map[attendance.SlotName]*attendance.SlotStatus{
			attendance.SlotMorning: req.MorningStatus,
			attendance.SlotMidday:  req.MiddayStatus,
			attendance.SlotEvening: req.EveningStatus,
		} {
			if status != nil {
				rec.Slot(slot).Status = *status
			}
		}
		if req.DailyStatus != nil {
			rec.DailyStatus = *req.DailyStatus
		}
		if req.Notes != nil {
			rec.Notes = req.Notes
		}

		rec.IsManualEntry = true
		rec.ManualReason = req.ManualReason

		if err := s.records.Update(ctx, rec); err != nil {
			return err
		}
		after = rec
		return nil
	})
	if err != nil {
		return attendance.RecordResponse{}, err
	}

	s.recordAudit(ctx, audit.Entry{
		Action:      "manual_override",
		Resource:    "attendance_record",
		ResourceID:  req.RecordKey,
		PerformedBy: performedBy,
		OldValues:   recordAuditValues(before),
		NewValues:   recordAuditValues(after),
	})

	return MapRecordToResponse(after), nil
}

// GetMyRecords returns one employee's records for a month.
func (s *Service) GetMyRecords(ctx context.Context, employeeID, month string) ([]attendance.RecordResponse, error) {
	records, err := s.records.ListByMonth(ctx, month, &employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance records: %w", err)
	}

	responses := make([]attendance.RecordResponse, 0, len(records))
	for _, rec := range records {
		responses = append(responses, MapRecordToResponse(rec))
	}
	return responses, nil
}

// ListRecords is the paginated admin view.
func (s *Service) ListRecords(ctx context.Context, filter attendance.ListFilter) (attendance.ListRecordsResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 20
	}

	records, total, err := s.records.List(ctx, filter)
	if err != nil {
		return attendance.ListRecordsResponse{}, fmt.Errorf("failed to list attendance records: %w", err)
	}

	responses := make([]attendance.RecordResponse, 0, len(records))
	for _, rec := range records {
		responses = append(responses, MapRecordToResponse(rec))
	}

	totalPages := int((total + int64(filter.Limit) - 1) / int64(filter.Limit))

	return attendance.ListRecordsResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages,
		Records:    responses,
	}, nil
}

func (s *Service) recordAudit(ctx context.Context, entry audit.Entry) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.RecordAuditLog(ctx, entry); err != nil {
		slog.Error("Failed to record audit log", "action", entry.Action, "error", err)
	}
}

func (s *Service) queueNotification(ctx context.Context, req notification.QueueNotificationRequest) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.QueueNotification(ctx, req); err != nil {
		slog.Error("Failed to queue notification", "category", req.Category, "error", err)
	}
}

func recordAuditValues(rec attendance.Record) map[string]any {
	return map[string]any{
		"daily_status":   string(rec.DailyStatus),
		"morning_status": string(rec.Morning.Status),
		"midday_status":  string(rec.Midday.Status),
		"evening_status": string(rec.Evening.Status),
		"is_manual":      rec.IsManualEntry,
	}
}

func timePtrToString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	format := t.Format("2006-01-02 15:04:05")
	return &format
}

func mapSlotOutcome(o attendance.SlotOutcome) attendance.SlotOutcomeResponse {
	return attendance.SlotOutcomeResponse{
		Status:        o.Status,
		OccurredAt:    timePtrToString(o.OccurredAt),
		Latitude:      o.Latitude,
		Longitude:     o.Longitude,
		LateByMinutes: o.LateByMinutes,
	}
}

// MapRecordToResponse converts a Record entity to its response shape.
func MapRecordToResponse(rec attendance.Record) attendance.RecordResponse {
	return attendance.RecordResponse{
		RecordKey:      rec.RecordKey,
		EmployeeID:     rec.EmployeeID,
		EmployeeName:   rec.EmployeeName,
		Date:           rec.Date.Format("2006-01-02"),
		Morning:        mapSlotOutcome(rec.Morning),
		Midday:         mapSlotOutcome(rec.Midday),
		Evening:        mapSlotOutcome(rec.Evening),
		DailyStatus:    rec.DailyStatus,
		IsManualEntry:  rec.IsManualEntry,
		ManualReason:   rec.ManualReason,
		Notes:          rec.Notes,
		LeaveRequestID: rec.LeaveRequestID,
	}
}
