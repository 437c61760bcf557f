package attendance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/presensi-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/presensi-backend-go/internal/domain/audit"
	"github.com/cmlabs-hris/presensi-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/presensi-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/presensi-backend-go/internal/domain/penalty"
	"github.com/cmlabs-hris/presensi-backend-go/internal/domain/settings"
	"github.com/cmlabs-hris/presensi-backend-go/internal/pkg/utils"
)

// ---------- fakes ----------

type fakeTxManager struct{}

func (fakeTxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type memoryRecordRepo struct {
	records map[string]attendance.Record
}

func newMemoryRecordRepo() *memoryRecordRepo {
	return &memoryRecordRepo{records: make(map[string]attendance.Record)}
}

func (r *memoryRecordRepo) Create(_ context.Context, rec attendance.Record) (attendance.Record, error) {
	if _, ok := r.records[rec.RecordKey]; ok {
		return attendance.Record{}, errors.New("duplicate record key")
	}
	r.records[rec.RecordKey] = rec
	return rec, nil
}

func (r *memoryRecordRepo) Update(_ context.Context, rec attendance.Record) error {
	if _, ok := r.records[rec.RecordKey]; !ok {
		return attendance.ErrRecordNotFound
	}
	r.records[rec.RecordKey] = rec
	return nil
}

func (r *memoryRecordRepo) Save(_ context.Context, rec attendance.Record) error {
	r.records[rec.RecordKey] = rec
	return nil
}

func (r *memoryRecordRepo) GetByEmployeeAndDate(_ context.Context, employeeID string, date time.Time) (*attendance.Record, error) {
	rec, ok := r.records[attendance.NewRecordKey(employeeID, date)]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (r *memoryRecordRepo) GetByEmployeeAndDateForUpdate(ctx context.Context, employeeID string, date time.Time) (*attendance.Record, error) {
	return r.GetByEmployeeAndDate(ctx, employeeID, date)
}

func (r *memoryRecordRepo) GetByKey(_ context.Context, recordKey string) (attendance.Record, error) {
	rec, ok := r.records[recordKey]
	if !ok {
		return attendance.Record{}, attendance.ErrRecordNotFound
	}
	return rec, nil
}

func (r *memoryRecordRepo) ListByMonth(_ context.Context, month string, employeeID *string) ([]attendance.Record, error) {
	var out []attendance.Record
	for _, rec := range r.records {
		if rec.Date.Format("2006-01") != month {
			continue
		}
		if employeeID != nil && rec.EmployeeID != *employeeID {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func (r *memoryRecordRepo) ListByEmployee(_ context.Context, employeeID string, from, to time.Time) ([]attendance.Record, error) {
	var out []attendance.Record
	for _, rec := range r.records {
		if rec.EmployeeID == employeeID && !rec.Date.Before(from) && !rec.Date.After(to) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *memoryRecordRepo) List(_ context.Context, _ attendance.ListFilter) ([]attendance.Record, int64, error) {
	var out []attendance.Record
	for _, rec := range r.records {
		out = append(out, rec)
	}
	return out, int64(len(out)), nil
}

type fakeSettings struct {
	cfg settings.CompanySettings
}

func (f fakeSettings) GetCompanySettings(context.Context) (settings.CompanySettings, error) {
	return f.cfg, nil
}

type fakeDirectory struct {
	employees []employee.Employee
}

func (f fakeDirectory) ListActive(context.Context) ([]employee.Employee, error) {
	return f.employees, nil
}

func (f fakeDirectory) GetByID(_ context.Context, id string) (employee.Employee, error) {
	for _, e := range f.employees {
		if e.ID == id {
			return e, nil
		}
	}
	return employee.Employee{}, employee.ErrEmployeeNotFound
}

func (f fakeDirectory) DecrementLeaveBalance(context.Context, string, int) error {
	return nil
}

type captureNotifier struct {
	queued []notification.QueueNotificationRequest
}

func (c *captureNotifier) QueueNotification(_ context.Context, req notification.QueueNotificationRequest) error {
	c.queued = append(c.queued, req)
	return nil
}

type captureAuditor struct {
	entries []audit.Entry
}

func (c *captureAuditor) RecordAuditLog(_ context.Context, entry audit.Entry) error {
	c.entries = append(c.entries, entry)
	return nil
}

// ---------- fixtures ----------

const (
	testEmployeeID = "c2a5a1fc-92b3-4cf2-9f1d-0a4b6c1de111"
	officeLat      = -6.2146
	officeLng      = 106.8451
)

func testSettings() settings.CompanySettings {
	return settings.CompanySettings{
		Timezone:              "Asia/Jakarta",
		WorkplaceLatitude:     officeLat,
		WorkplaceLongitude:    officeLng,
		WorkplaceRadiusMeters: 100,
		GeofencingEnabled:     true,
		SlotWindows: map[attendance.SlotName]attendance.Window{
			attendance.SlotMorning: {StartMinute: 9 * 60, EndMinute: 9*60 + 30},
			attendance.SlotMidday:  {StartMinute: 13 * 60, EndMinute: 13*60 + 30},
			attendance.SlotEvening: {StartMinute: 17 * 60, EndMinute: 17*60 + 30},
		},
		GracePeriods: map[attendance.SlotName]int{
			attendance.SlotMorning: 15,
			attendance.SlotMidday:  15,
			attendance.SlotEvening: 15,
		},
		ViolationThresholds: map[penalty.ViolationType]int{
			penalty.ViolationAbsent: 4,
		},
		PenaltyAmounts: map[penalty.ViolationType]decimal.Decimal{
			penalty.ViolationAbsent: decimal.NewFromInt(100000),
		},
		WorkingDays: []time.Weekday{
			time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday,
		},
	}
}

func newTestService(repo *memoryRecordRepo, cfg settings.CompanySettings, now time.Time) (*Service, *captureNotifier, *captureAuditor) {
	notifier := &captureNotifier{}
	auditor := &captureAuditor{}
	svc := NewAttendanceService(
		fakeTxManager{},
		fakeSettings{cfg: cfg},
		repo,
		fakeDirectory{employees: []employee.Employee{{ID: testEmployeeID, IsActive: true}}},
		notifier,
		auditor,
	)
	svc.now = func() time.Time { return now }
	return svc, notifier, auditor
}

// jakartaTime builds a timestamp on Monday 2025-06-02 at the given local time.
func jakartaTime(t *testing.T, hour, minute int) time.Time {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Jakarta")
	require.NoError(t, err)
	return time.Date(2025, 6, 2, hour, minute, 0, 0, loc)
}

func clockInAt(t *testing.T, svc *Service, hour, minute int) (attendance.ClockInResponse, error) {
	t.Helper()
	return svc.ClockIn(context.Background(), testEmployeeID, attendance.ClockInRequest{
		Timestamp: jakartaTime(t, hour, minute),
		Latitude:  officeLat,
		Longitude: officeLng,
	})
}

// ---------- ClockIn ----------

func TestClockIn_OnTimeMorning(t *testing.T) {
	repo := newMemoryRecordRepo()
	svc, notifier, auditor := newTestService(repo, testSettings(), jakartaTime(t, 9, 10))

	resp, err := clockInAt(t, svc, 9, 10)
	require.NoError(t, err)

	assert.Equal(t, attendance.SlotMorning, resp.Slot)
	assert.Equal(t, attendance.SlotOnTime, resp.SlotStatus)
	assert.Equal(t, 0, resp.LateByMinutes)
	assert.Equal(t, attendance.StatusInProgress, resp.DailyStatus)
	assert.Equal(t, "2025-06-02", resp.Date)

	rec, err := repo.GetByKey(context.Background(), attendance.NewRecordKey(testEmployeeID, jakartaTime(t, 0, 0)))
	require.NoError(t, err)
	assert.Equal(t, attendance.SlotOnTime, rec.Morning.Status)
	require.NotNil(t, rec.Morning.OccurredAt)

	assert.Len(t, notifier.queued, 1)
	assert.Equal(t, notification.CategoryClockIn, notifier.queued[0].Category)
	assert.Len(t, auditor.entries, 1)
	assert.Equal(t, "clock_in", auditor.entries[0].Action)
}

func TestClockIn_LateWithinGrace(t *testing.T) {
	svc, _, _ := newTestService(newMemoryRecordRepo(), testSettings(), jakartaTime(t, 9, 40))

	resp, err := clockInAt(t, svc, 9, 40)
	require.NoError(t, err)

	assert.Equal(t, attendance.SlotMorning, resp.Slot)
	assert.Equal(t, attendance.SlotLate, resp.SlotStatus)
	assert.Equal(t, 10, resp.LateByMinutes)
}

func TestClockIn_OutsideAllWindows(t *testing.T) {
	svc, _, _ := newTestService(newMemoryRecordRepo(), testSettings(), jakartaTime(t, 11, 0))

	_, err := clockInAt(t, svc, 11, 0)
	assert.ErrorIs(t, err, attendance.ErrNoActiveWindow)
}

func TestClockIn_DuplicateSlotRejected(t *testing.T) {
	repo := newMemoryRecordRepo()
	svc, _, _ := newTestService(repo, testSettings(), jakartaTime(t, 9, 10))

	_, err := clockInAt(t, svc, 9, 10)
	require.NoError(t, err)

	svc.now = func() time.Time { return jakartaTime(t, 9, 20) }
	_, err = clockInAt(t, svc, 9, 20)
	assert.ErrorIs(t, err, attendance.ErrSlotAlreadyRecorded)
}

func TestClockIn_EarlierSlotStaysImmutable(t *testing.T) {
	repo := newMemoryRecordRepo()
	svc, _, _ := newTestService(repo, testSettings(), jakartaTime(t, 9, 10))

	_, err := clockInAt(t, svc, 9, 10)
	require.NoError(t, err)

	svc.now = func() time.Time { return jakartaTime(t, 13, 5) }
	resp, err := clockInAt(t, svc, 13, 5)
	require.NoError(t, err)
	assert.Equal(t, attendance.SlotMidday, resp.Slot)

	rec, err := repo.GetByKey(context.Background(), attendance.NewRecordKey(testEmployeeID, jakartaTime(t, 0, 0)))
	require.NoError(t, err)
	assert.Equal(t, attendance.SlotOnTime, rec.Morning.Status)
	assert.Equal(t, attendance.SlotOnTime, rec.Midday.Status)
}

func TestClockIn_MockLocationRejected(t *testing.T) {
	svc, _, _ := newTestService(newMemoryRecordRepo(), testSettings(), jakartaTime(t, 9, 10))

	_, err := svc.ClockIn(context.Background(), testEmployeeID, attendance.ClockInRequest{
		Timestamp:      jakartaTime(t, 9, 10),
		Latitude:       officeLat,
		Longitude:      officeLng,
		IsMockLocation: true,
	})
	assert.ErrorIs(t, err, attendance.ErrMockLocation)
}

func TestClockIn_StaleTimestampRejected(t *testing.T) {
	svc, _, _ := newTestService(newMemoryRecordRepo(), testSettings(), jakartaTime(t, 9, 20))

	// Timestamp six minutes behind server time.
	_, err := clockInAt(t, svc, 9, 14)
	assert.ErrorIs(t, err, attendance.ErrStaleTimestamp)
}

func TestClockIn_WeekendRejected(t *testing.T) {
	svc, _, _ := newTestService(newMemoryRecordRepo(), testSettings(), jakartaTime(t, 9, 10))

	loc, err := time.LoadLocation("Asia/Jakarta")
	require.NoError(t, err)
	sunday := time.Date(2025, 6, 1, 9, 10, 0, 0, loc)
	svc.now = func() time.Time { return sunday }

	_, err = svc.ClockIn(context.Background(), testEmployeeID, attendance.ClockInRequest{
		Timestamp: sunday,
		Latitude:  officeLat,
		Longitude: officeLng,
	})
	assert.ErrorIs(t, err, attendance.ErrNotWorkingDay)
}

func TestClockIn_HolidayRejected(t *testing.T) {
	cfg := testSettings()
	cfg.Holidays = []string{"2025-06-02"}
	svc, _, _ := newTestService(newMemoryRecordRepo(), cfg, jakartaTime(t, 9, 10))

	_, err := clockInAt(t, svc, 9, 10)
	assert.ErrorIs(t, err, attendance.ErrNotWorkingDay)
}

func TestClockIn_OutsideGeofenceRejected(t *testing.T) {
	svc, _, _ := newTestService(newMemoryRecordRepo(), testSettings(), jakartaTime(t, 9, 10))

	_, err := svc.ClockIn(context.Background(), testEmployeeID, attendance.ClockInRequest{
		Timestamp: jakartaTime(t, 9, 10),
		Latitude:  officeLat + 0.05, // several kilometers north
		Longitude: officeLng,
	})

	var geoErr *utils.GeofenceError
	require.ErrorAs(t, err, &geoErr)
	assert.Greater(t, geoErr.DistanceMeters, geoErr.RadiusMeters)
}

func TestClockIn_GeofencingDisabledSkipsCheck(t *testing.T) {
	cfg := testSettings()
	cfg.GeofencingEnabled = false
	svc, _, _ := newTestService(newMemoryRecordRepo(), cfg, jakartaTime(t, 9, 10))

	_, err := svc.ClockIn(context.Background(), testEmployeeID, attendance.ClockInRequest{
		Timestamp: jakartaTime(t, 9, 10),
		Latitude:  officeLat + 0.05,
		Longitude: officeLng,
	})
	assert.NoError(t, err)
}

func TestClockIn_AllThreeSlotsCompleteDay(t *testing.T) {
	repo := newMemoryRecordRepo()
	svc, _, _ := newTestService(repo, testSettings(), jakartaTime(t, 9, 10))

	for _, at := range []struct{ hour, minute int }{
		{9, 10}, {13, 10}, {17, 10},
	} {
		svc.now = func() time.Time { return jakartaTime(t, at.hour, at.minute) }
		resp, err := clockInAt(t, svc, at.hour, at.minute)
		require.NoError(t, err)
		// The daily status stays in_progress until the finalization sweep.
		assert.Equal(t, attendance.StatusInProgress, resp.DailyStatus)
	}
}

// ---------- FinalizeDay ----------

func TestFinalizeDay_NoRecordBecomesAbsent(t *testing.T) {
	repo := newMemoryRecordRepo()
	svc, notifier, _ := newTestService(repo, testSettings(), jakartaTime(t, 23, 59))

	result, err := svc.FinalizeDay(context.Background(), jakartaTime(t, 0, 0))
	require.NoError(t, err)

	assert.Equal(t, 1, result.Processed)
	assert.Equal(t, 1, result.AbsentRecordsCreated)

	rec, err := repo.GetByKey(context.Background(), attendance.NewRecordKey(testEmployeeID, jakartaTime(t, 0, 0)))
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusAbsent, rec.DailyStatus)
	assert.Equal(t, attendance.SlotMissed, rec.Morning.Status)
	assert.Equal(t, attendance.SlotMissed, rec.Midday.Status)
	assert.Equal(t, attendance.SlotMissed, rec.Evening.Status)

	require.Len(t, notifier.queued, 1)
	assert.Equal(t, notification.CategoryMarkedAbsent, notifier.queued[0].Category)
}

func TestFinalizeDay_TwoSlotsBecomesHalfDay(t *testing.T) {
	repo := newMemoryRecordRepo()
	svc, _, _ := newTestService(repo, testSettings(), jakartaTime(t, 9, 10))

	_, err := clockInAt(t, svc, 9, 10)
	require.NoError(t, err)
	svc.now = func() time.Time { return jakartaTime(t, 13, 10) }
	_, err = clockInAt(t, svc, 13, 10)
	require.NoError(t, err)

	result, err := svc.FinalizeDay(context.Background(), jakartaTime(t, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, 1, result.RecordsUpdated)
	assert.Equal(t, 0, result.AbsentRecordsCreated)

	rec, err := repo.GetByKey(context.Background(), attendance.NewRecordKey(testEmployeeID, jakartaTime(t, 0, 0)))
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusHalfDayAbsent, rec.DailyStatus)
	assert.Equal(t, attendance.SlotMissed, rec.Evening.Status)
}

func TestFinalizeDay_FullDayBecomesPresent(t *testing.T) {
	repo := newMemoryRecordRepo()
	svc, _, _ := newTestService(repo, testSettings(), jakartaTime(t, 9, 10))

	for _, at := range []struct{ hour, minute int }{
		{9, 10}, {13, 10}, {17, 10},
	} {
		svc.now = func() time.Time { return jakartaTime(t, at.hour, at.minute) }
		_, err := clockInAt(t, svc, at.hour, at.minute)
		require.NoError(t, err)
	}

	_, err := svc.FinalizeDay(context.Background(), jakartaTime(t, 0, 0))
	require.NoError(t, err)

	rec, err := repo.GetByKey(context.Background(), attendance.NewRecordKey(testEmployeeID, jakartaTime(t, 0, 0)))
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusPresent, rec.DailyStatus)
}

func TestFinalizeDay_Idempotent(t *testing.T) {
	repo := newMemoryRecordRepo()
	svc, notifier, _ := newTestService(repo, testSettings(), jakartaTime(t, 23, 59))

	first, err := svc.FinalizeDay(context.Background(), jakartaTime(t, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, 1, first.AbsentRecordsCreated)

	second, err := svc.FinalizeDay(context.Background(), jakartaTime(t, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, 0, second.AbsentRecordsCreated)
	assert.Equal(t, 0, second.RecordsUpdated)

	// Only the first run notified.
	assert.Len(t, notifier.queued, 1)
}

func TestFinalizeDay_SkipsWeekend(t *testing.T) {
	repo := newMemoryRecordRepo()
	svc, notifier, _ := newTestService(repo, testSettings(), jakartaTime(t, 23, 59))

	loc, err := time.LoadLocation("Asia/Jakarta")
	require.NoError(t, err)
	saturday := time.Date(2025, 6, 7, 0, 0, 0, 0, loc)

	result, err := svc.FinalizeDay(context.Background(), saturday)
	require.NoError(t, err)

	// Days nobody could clock in on produce no absences.
	assert.Equal(t, 0, result.Processed)
	assert.Equal(t, 0, result.AbsentRecordsCreated)
	assert.Empty(t, repo.records)
	assert.Empty(t, notifier.queued)
}

func TestFinalizeDay_SkipsHoliday(t *testing.T) {
	repo := newMemoryRecordRepo()
	cfg := testSettings()
	cfg.Holidays = []string{"2025-06-02"}
	svc, _, _ := newTestService(repo, cfg, jakartaTime(t, 23, 59))

	result, err := svc.FinalizeDay(context.Background(), jakartaTime(t, 0, 0))
	require.NoError(t, err)

	assert.Equal(t, 0, result.Processed)
	assert.Equal(t, 0, result.AbsentRecordsCreated)
	assert.Empty(t, repo.records)
}

func TestFinalizeDay_LeaveDayUntouched(t *testing.T) {
	repo := newMemoryRecordRepo()
	svc, _, _ := newTestService(repo, testSettings(), jakartaTime(t, 23, 59))

	date := jakartaTime(t, 0, 0)
	leaveID := "3d1c9b7e-5f7a-4f02-8b63-1a2b3c4d5e6f"
	_, err := repo.Create(context.Background(), attendance.Record{
		RecordKey:      attendance.NewRecordKey(testEmployeeID, date),
		EmployeeID:     testEmployeeID,
		Date:           date,
		DailyStatus:    attendance.StatusOnLeave,
		LeaveRequestID: &leaveID,
	})
	require.NoError(t, err)

	result, err := svc.FinalizeDay(context.Background(), date)
	require.NoError(t, err)
	assert.Equal(t, 0, result.RecordsUpdated)

	rec, err := repo.GetByKey(context.Background(), attendance.NewRecordKey(testEmployeeID, date))
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusOnLeave, rec.DailyStatus)
	assert.Empty(t, rec.Morning.Status)
}

// ---------- UpdateRecord ----------

func TestUpdateRecord_ManualOverride(t *testing.T) {
	repo := newMemoryRecordRepo()
	svc, _, auditor := newTestService(repo, testSettings(), jakartaTime(t, 9, 10))

	_, err := clockInAt(t, svc, 9, 10)
	require.NoError(t, err)

	key := attendance.NewRecordKey(testEmployeeID, jakartaTime(t, 0, 0))
	reason := "forgot badge, verified by supervisor"
	newStatus := attendance.SlotOnTime
	daily := attendance.StatusPresent

	resp, err := svc.UpdateRecord(context.Background(), "admin-1", attendance.ManualUpdateRequest{
		RecordKey:     key,
		MiddayStatus:  &newStatus,
		EveningStatus: &newStatus,
		DailyStatus:   &daily,
		ManualReason:  &reason,
	})
	require.NoError(t, err)

	assert.True(t, resp.IsManualEntry)
	assert.Equal(t, attendance.StatusPresent, resp.DailyStatus)
	assert.Equal(t, attendance.SlotOnTime, resp.Midday.Status)

	require.Len(t, auditor.entries, 2) // clock_in + manual_override
	override := auditor.entries[1]
	assert.Equal(t, "manual_override", override.Action)
	assert.Equal(t, "admin-1", override.PerformedBy)
	assert.Equal(t, string(attendance.StatusInProgress), override.OldValues["daily_status"])
	assert.Equal(t, string(attendance.StatusPresent), override.NewValues["daily_status"])
}

func TestUpdateRecord_RequiresReason(t *testing.T) {
	svc, _, _ := newTestService(newMemoryRecordRepo(), testSettings(), jakartaTime(t, 9, 10))

	_, err := svc.UpdateRecord(context.Background(), "admin-1", attendance.ManualUpdateRequest{
		RecordKey: "whatever_2025-06-02",
	})
	require.Error(t, err)
}

func TestUpdateRecord_NotFound(t *testing.T) {
	svc, _, _ := newTestService(newMemoryRecordRepo(), testSettings(), jakartaTime(t, 9, 10))

	reason := "correction"
	_, err := svc.UpdateRecord(context.Background(), "admin-1", attendance.ManualUpdateRequest{
		RecordKey:    "missing_2025-06-02",
		ManualReason: &reason,
	})
	assert.ErrorIs(t, err, attendance.ErrRecordNotFound)
}
