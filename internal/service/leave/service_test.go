package leave

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/presensi-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/presensi-backend-go/internal/domain/audit"
	"github.com/cmlabs-hris/presensi-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/presensi-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/presensi-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/presensi-backend-go/internal/domain/settings"
)

// ---------- fakes ----------

type fakeTxManager struct{}

func (fakeTxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeSettings struct{}

func (fakeSettings) GetCompanySettings(context.Context) (settings.CompanySettings, error) {
	return settings.CompanySettings{Timezone: "Asia/Jakarta"}, nil
}

type memoryLeaveRepo struct {
	requests map[string]leave.LeaveRequest
	nextID   int
}

func newMemoryLeaveRepo() *memoryLeaveRepo {
	return &memoryLeaveRepo{requests: make(map[string]leave.LeaveRequest)}
}

func (m *memoryLeaveRepo) Create(_ context.Context, req leave.LeaveRequest) (leave.LeaveRequest, error) {
	m.nextID++
	req.ID = time.Now().Format("20060102") + "-" + string(rune('a'+m.nextID))
	m.requests[req.ID] = req
	return req, nil
}

func (m *memoryLeaveRepo) GetByID(_ context.Context, id string) (leave.LeaveRequest, error) {
	req, ok := m.requests[id]
	if !ok {
		return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
	}
	return req, nil
}

func (m *memoryLeaveRepo) GetByIDForUpdate(ctx context.Context, id string) (leave.LeaveRequest, error) {
	return m.GetByID(ctx, id)
}

func (m *memoryLeaveRepo) UpdateReview(_ context.Context, req leave.LeaveRequest) error {
	if _, ok := m.requests[req.ID]; !ok {
		return leave.ErrLeaveRequestNotFound
	}
	m.requests[req.ID] = req
	return nil
}

func (m *memoryLeaveRepo) ListByEmployee(_ context.Context, employeeID string) ([]leave.LeaveRequest, error) {
	var out []leave.LeaveRequest
	for _, req := range m.requests {
		if req.EmployeeID == employeeID {
			out = append(out, req)
		}
	}
	return out, nil
}

type memoryRecordRepo struct {
	records map[string]attendance.Record
}

func newMemoryRecordRepo() *memoryRecordRepo {
	return &memoryRecordRepo{records: make(map[string]attendance.Record)}
}

func (r *memoryRecordRepo) Create(_ context.Context, rec attendance.Record) (attendance.Record, error) {
	r.records[rec.RecordKey] = rec
	return rec, nil
}

func (r *memoryRecordRepo) Update(_ context.Context, rec attendance.Record) error {
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

func (r *memoryRecordRepo) GetByKey(_ context.Context, key string) (attendance.Record, error) {
	rec, ok := r.records[key]
	if !ok {
		return attendance.Record{}, attendance.ErrRecordNotFound
	}
	return rec, nil
}

func (r *memoryRecordRepo) ListByMonth(context.Context, string, *string) ([]attendance.Record, error) {
	return nil, nil
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

func (r *memoryRecordRepo) List(context.Context, attendance.ListFilter) ([]attendance.Record, int64, error) {
	return nil, 0, nil
}

type memoryDirectory struct {
	employees map[string]*employee.Employee
}

func (m *memoryDirectory) ListActive(context.Context) ([]employee.Employee, error) {
	return nil, nil
}

func (m *memoryDirectory) GetByID(_ context.Context, id string) (employee.Employee, error) {
	emp, ok := m.employees[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return *emp, nil
}

func (m *memoryDirectory) DecrementLeaveBalance(_ context.Context, id string, days int) error {
	emp, ok := m.employees[id]
	if !ok {
		return employee.ErrEmployeeNotFound
	}
	if emp.LeaveBalanceDays < days {
		return employee.ErrInsufficientLeaveBalance
	}
	emp.LeaveBalanceDays -= days
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
	testEmployeeID = "9b8f2e4d-1c3a-4e5f-8a7b-6d5e4f3a2b10"
	testReviewerID = "admin-4e5f-8a7b"
)

type env struct {
	svc      *Service
	leaves   *memoryLeaveRepo
	records  *memoryRecordRepo
	dir      *memoryDirectory
	notifier *captureNotifier
	auditor  *captureAuditor
}

func newTestEnv(balance int) *env {
	leaves := newMemoryLeaveRepo()
	records := newMemoryRecordRepo()
	dir := &memoryDirectory{employees: map[string]*employee.Employee{
		testEmployeeID: {ID: testEmployeeID, IsActive: true, LeaveBalanceDays: balance},
	}}
	notifier := &captureNotifier{}
	auditor := &captureAuditor{}
	svc := NewLeaveService(fakeTxManager{}, fakeSettings{}, leaves, records, dir, notifier, auditor)
	return &env{svc: svc, leaves: leaves, records: records, dir: dir, notifier: notifier, auditor: auditor}
}

func (e *env) createRequest(t *testing.T, start, end string) leave.LeaveRequest {
	t.Helper()
	req, err := e.svc.CreateRequest(context.Background(), testEmployeeID, leave.CreateLeaveRequestRequest{
		StartDate: start,
		EndDate:   end,
		Reason:    "family matter",
	})
	require.NoError(t, err)
	return req
}

// ---------- CreateRequest ----------

func TestCreateRequest_ComputesTotalDays(t *testing.T) {
	e := newTestEnv(12)

	req := e.createRequest(t, "2025-06-02", "2025-06-04")

	assert.Equal(t, 3, req.TotalDays)
	assert.Equal(t, leave.StatusWaitingApproval, req.Status)
}

func TestCreateRequest_InsufficientBalance(t *testing.T) {
	e := newTestEnv(1)

	_, err := e.svc.CreateRequest(context.Background(), testEmployeeID, leave.CreateLeaveRequestRequest{
		StartDate: "2025-06-02",
		EndDate:   "2025-06-04",
		Reason:    "family matter",
	})
	assert.ErrorIs(t, err, employee.ErrInsufficientLeaveBalance)
}

func TestCreateRequest_InvalidRange(t *testing.T) {
	e := newTestEnv(12)

	_, err := e.svc.CreateRequest(context.Background(), testEmployeeID, leave.CreateLeaveRequestRequest{
		StartDate: "2025-06-04",
		EndDate:   "2025-06-02",
		Reason:    "family matter",
	})
	require.Error(t, err)
}

// ---------- Approve ----------

func TestApprove_BackfillsEveryDay(t *testing.T) {
	e := newTestEnv(12)
	req := e.createRequest(t, "2025-06-02", "2025-06-04")

	approved, err := e.svc.Approve(context.Background(), testReviewerID, req.ID)
	require.NoError(t, err)
	assert.Equal(t, leave.StatusApproved, approved.Status)
	require.NotNil(t, approved.ReviewedBy)
	assert.Equal(t, testReviewerID, *approved.ReviewedBy)

	for _, day := range []string{"2025-06-02", "2025-06-03", "2025-06-04"} {
		date, _ := time.Parse("2006-01-02", day)
		rec, err := e.records.GetByKey(context.Background(), attendance.NewRecordKey(testEmployeeID, date))
		require.NoError(t, err, day)
		assert.Equal(t, attendance.StatusOnLeave, rec.DailyStatus)
		require.NotNil(t, rec.LeaveRequestID)
		assert.Equal(t, req.ID, *rec.LeaveRequestID)
	}

	// Balance decremented once by the full span.
	emp, err := e.dir.GetByID(context.Background(), testEmployeeID)
	require.NoError(t, err)
	assert.Equal(t, 9, emp.LeaveBalanceDays)

	// One audit entry per backfilled day.
	assert.Len(t, e.auditor.entries, 3)

	require.Len(t, e.notifier.queued, 1)
	assert.Equal(t, notification.CategoryLeaveApproved, e.notifier.queued[0].Category)
}

func TestApprove_SupersedesExistingRecord(t *testing.T) {
	e := newTestEnv(12)
	req := e.createRequest(t, "2025-06-02", "2025-06-02")

	date, _ := time.Parse("2006-01-02", "2025-06-02")
	occurred := date.Add(9 * time.Hour)
	reason := "forgot badge, corrected by HR"
	_, err := e.records.Create(context.Background(), attendance.Record{
		RecordKey:     attendance.NewRecordKey(testEmployeeID, date),
		EmployeeID:    testEmployeeID,
		Date:          date,
		Morning:       attendance.SlotOutcome{Status: attendance.SlotLate, OccurredAt: &occurred},
		DailyStatus:   attendance.StatusInProgress,
		IsManualEntry: true,
		ManualReason:  &reason,
	})
	require.NoError(t, err)

	_, err = e.svc.Approve(context.Background(), testReviewerID, req.ID)
	require.NoError(t, err)

	rec, err := e.records.GetByKey(context.Background(), attendance.NewRecordKey(testEmployeeID, date))
	require.NoError(t, err)
	// Daily status superseded; slot outcome and manual provenance preserved.
	assert.Equal(t, attendance.StatusOnLeave, rec.DailyStatus)
	assert.Equal(t, attendance.SlotLate, rec.Morning.Status)
	assert.True(t, rec.IsManualEntry)
	require.NotNil(t, rec.ManualReason)
	assert.Equal(t, reason, *rec.ManualReason)

	require.Len(t, e.auditor.entries, 1)
	entry := e.auditor.entries[0]
	assert.Equal(t, "leave_backfill", entry.Action)
	assert.Equal(t, string(attendance.StatusInProgress), entry.OldValues["daily_status"])
	assert.Equal(t, string(attendance.SlotLate), entry.OldValues["morning_status"])
	assert.Equal(t, true, entry.OldValues["is_manual"])
	assert.Equal(t, reason, entry.OldValues["manual_reason"])
	assert.Equal(t, string(attendance.StatusOnLeave), entry.NewValues["daily_status"])
}

func TestApprove_AlreadyProcessed(t *testing.T) {
	e := newTestEnv(12)
	req := e.createRequest(t, "2025-06-02", "2025-06-02")

	_, err := e.svc.Approve(context.Background(), testReviewerID, req.ID)
	require.NoError(t, err)

	_, err = e.svc.Approve(context.Background(), testReviewerID, req.ID)
	assert.ErrorIs(t, err, leave.ErrLeaveAlreadyProcessed)

	// The second call changed nothing.
	emp, err := e.dir.GetByID(context.Background(), testEmployeeID)
	require.NoError(t, err)
	assert.Equal(t, 11, emp.LeaveBalanceDays)
}

func TestApprove_NotFound(t *testing.T) {
	e := newTestEnv(12)

	_, err := e.svc.Approve(context.Background(), testReviewerID, "missing-id")
	assert.ErrorIs(t, err, leave.ErrLeaveRequestNotFound)
}

// ---------- Reject ----------

func TestReject_SetsReasonAndNotifies(t *testing.T) {
	e := newTestEnv(12)
	req := e.createRequest(t, "2025-06-02", "2025-06-04")

	rejected, err := e.svc.Reject(context.Background(), testReviewerID, req.ID, leave.RejectLeaveRequestRequest{
		Reason: "blackout period",
	})
	require.NoError(t, err)

	assert.Equal(t, leave.StatusRejected, rejected.Status)
	require.NotNil(t, rejected.RejectionReason)
	assert.Equal(t, "blackout period", *rejected.RejectionReason)

	// No attendance records were written.
	assert.Empty(t, e.records.records)

	// Balance untouched.
	emp, err := e.dir.GetByID(context.Background(), testEmployeeID)
	require.NoError(t, err)
	assert.Equal(t, 12, emp.LeaveBalanceDays)

	require.Len(t, e.notifier.queued, 1)
	assert.Equal(t, notification.CategoryLeaveRejected, e.notifier.queued[0].Category)
}

func TestReject_RequiresReason(t *testing.T) {
	e := newTestEnv(12)
	req := e.createRequest(t, "2025-06-02", "2025-06-04")

	_, err := e.svc.Reject(context.Background(), testReviewerID, req.ID, leave.RejectLeaveRequestRequest{})
	require.Error(t, err)
}
