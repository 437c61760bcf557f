package leave

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/presensi-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/presensi-backend-go/internal/domain/audit"
	"github.com/cmlabs-hris/presensi-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/presensi-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/presensi-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/presensi-backend-go/internal/domain/settings"
	"github.com/cmlabs-hris/presensi-backend-go/internal/pkg/database"
)

type Service struct {
	tx        database.TxManager
	settings  settings.Provider
	leaves    leave.Repository
	records   attendance.Repository
	employees employee.Directory
	notifier  notification.Queuer
	auditor   audit.Recorder

	now func() time.Time
}

func NewLeaveService(
	tx database.TxManager,
	settingsProvider settings.Provider,
	leaveRepo leave.Repository,
	recordRepo attendance.Repository,
	employeeDir employee.Directory,
	notifier notification.Queuer,
	auditor audit.Recorder,
) *Service {
	return &Service{
		tx:        tx,
		settings:  settingsProvider,
		leaves:    leaveRepo,
		records:   recordRepo,
		employees: employeeDir,
		notifier:  notifier,
		auditor:   auditor,
		now:       time.Now,
	}
}

// CreateRequest files a new leave request. The balance is only checked
// here, not reserved; the decrement happens at approval time.
func (s *Service) CreateRequest(ctx context.Context, employeeID string, req leave.CreateLeaveRequestRequest) (leave.LeaveRequest, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveRequest{}, err
	}

	start, _ := time.Parse("2006-01-02", req.StartDate)
	end, _ := time.Parse("2006-01-02", req.EndDate)
	totalDays := int(end.Sub(start).Hours()/24) + 1

	emp, err := s.employees.GetByID(ctx, employeeID)
	if err != nil {
		return leave.LeaveRequest{}, err
	}
	if emp.LeaveBalanceDays < totalDays {
		return leave.LeaveRequest{}, employee.ErrInsufficientLeaveBalance
	}

	return s.leaves.Create(ctx, leave.LeaveRequest{
		EmployeeID: employeeID,
		StartDate:  start,
		EndDate:    end,
		TotalDays:  totalDays,
		Reason:     req.Reason,
		Status:     leave.StatusWaitingApproval,
	})
}

// overwrittenDay captures the record a backfilled day replaced, for the
// audit trail. prev is nil when no record existed for the day.
type overwrittenDay struct {
	date string
	prev *attendance.Record
}

// Approve grants a leave request and backfills every day in its range with
// an on_leave attendance record. The review, the balance decrement and the
// backfill commit atomically; existing records for those days are
// superseded whatever their state, with one audit entry per overwritten day.
func (s *Service) Approve(ctx context.Context, reviewerID, requestID string) (leave.LeaveRequest, error) {
	var (
		req         leave.LeaveRequest
		overwritten []overwrittenDay
	)

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		overwritten = overwritten[:0]

		var err error
		req, err = s.leaves.GetByIDForUpdate(ctx, requestID)
		if err != nil {
			return err
		}
		if req.Status != leave.StatusWaitingApproval {
			return leave.ErrLeaveAlreadyProcessed
		}

		now := s.now().UTC()
		req.Status = leave.StatusApproved
		req.ReviewedBy = &reviewerID
		req.ReviewedAt = &now
		if err := s.leaves.UpdateReview(ctx, req); err != nil {
			return err
		}

		if err := s.employees.DecrementLeaveBalance(ctx, req.EmployeeID, req.TotalDays); err != nil {
			return err
		}

		existing, err := s.records.ListByEmployee(ctx, req.EmployeeID, req.StartDate, req.EndDate)
		if err != nil {
			return err
		}
		byDate := make(map[string]attendance.Record, len(existing))
		for _, rec := range existing {
			byDate[rec.Date.Format("2006-01-02")] = rec
		}

		for _, day := range req.Days() {
			rec := attendance.Record{
				RecordKey:      attendance.NewRecordKey(req.EmployeeID, day),
				EmployeeID:     req.EmployeeID,
				Date:           day,
				DailyStatus:    attendance.StatusOnLeave,
				LeaveRequestID: &req.ID,
			}

			var prev *attendance.Record
			if p, ok := byDate[day.Format("2006-01-02")]; ok {
				prev = &p
				// Slot outcomes and manual-override provenance survive the
				// backfill; only the daily classification is superseded.
				rec.Morning = prev.Morning
				rec.Midday = prev.Midday
				rec.Evening = prev.Evening
				rec.Notes = prev.Notes
				rec.IsManualEntry = prev.IsManualEntry
				rec.ManualReason = prev.ManualReason
			}

			if err := s.records.Save(ctx, rec); err != nil {
				return err
			}

			overwritten = append(overwritten, overwrittenDay{
				date: day.Format("2006-01-02"),
				prev: prev,
			})
		}

		return nil
	})
	if err != nil {
		return leave.LeaveRequest{}, err
	}

	for _, day := range overwritten {
		if day.prev != nil && day.prev.DailyStatus == attendance.StatusOnLeave {
			continue
		}
		s.recordAudit(ctx, audit.Entry{
			Action:      "leave_backfill",
			Resource:    "attendance_record",
			ResourceID:  attendance.NewRecordKey(req.EmployeeID, mustParseDate(day.date)),
			PerformedBy: reviewerID,
			OldValues:   priorRecordValues(day.prev),
			NewValues: map[string]any{
				"daily_status":     string(attendance.StatusOnLeave),
				"leave_request_id": req.ID,
			},
		})
	}

	s.queueNotification(ctx, notification.QueueNotificationRequest{
		EmployeeID: req.EmployeeID,
		Category:   notification.CategoryLeaveApproved,
		Title:      "Leave approved",
		Message: fmt.Sprintf("Your leave from %s to %s was approved",
			req.StartDate.Format("2006-01-02"), req.EndDate.Format("2006-01-02")),
	})

	return req, nil
}

// Reject declines a leave request with a reason. No attendance records are
// touched.
func (s *Service) Reject(ctx context.Context, reviewerID, requestID string, body leave.RejectLeaveRequestRequest) (leave.LeaveRequest, error) {
	if err := body.Validate(); err != nil {
		return leave.LeaveRequest{}, err
	}

	var req leave.LeaveRequest
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		req, err = s.leaves.GetByIDForUpdate(ctx, requestID)
		if err != nil {
			return err
		}
		if req.Status != leave.StatusWaitingApproval {
			return leave.ErrLeaveAlreadyProcessed
		}

		now := s.now().UTC()
		req.Status = leave.StatusRejected
		req.ReviewedBy = &reviewerID
		req.ReviewedAt = &now
		req.RejectionReason = &body.Reason
		return s.leaves.UpdateReview(ctx, req)
	})
	if err != nil {
		return leave.LeaveRequest{}, err
	}

	s.queueNotification(ctx, notification.QueueNotificationRequest{
		EmployeeID: req.EmployeeID,
		Category:   notification.CategoryLeaveRejected,
		Title:      "Leave rejected",
		Message:    fmt.Sprintf("Your leave request was rejected: %s", body.Reason),
	})

	return req, nil
}

// GetMyRequests lists an employee's own leave requests, newest first.
func (s *Service) GetMyRequests(ctx context.Context, employeeID string) ([]leave.LeaveRequest, error) {
	return s.leaves.ListByEmployee(ctx, employeeID)
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

func mustParseDate(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

// priorRecordValues flattens the replaced record into the audit old-values
// map. A nil record means the day had no attendance at all.
func priorRecordValues(rec *attendance.Record) map[string]any {
	if rec == nil {
		return map[string]any{"daily_status": nil}
	}
	values := map[string]any{
		"daily_status":   string(rec.DailyStatus),
		"morning_status": string(rec.Morning.Status),
		"midday_status":  string(rec.Midday.Status),
		"evening_status": string(rec.Evening.Status),
		"is_manual":      rec.IsManualEntry,
	}
	if rec.ManualReason != nil {
		values["manual_reason"] = *rec.ManualReason
	}
	return values
}

// MapToResponse converts a LeaveRequest to its response shape.
func MapToResponse(req leave.LeaveRequest) leave.LeaveRequestResponse {
	return leave.LeaveRequestResponse{
		ID:              req.ID,
		EmployeeID:      req.EmployeeID,
		StartDate:       req.StartDate.Format("2006-01-02"),
		EndDate:         req.EndDate.Format("2006-01-02"),
		TotalDays:       req.TotalDays,
		Reason:          req.Reason,
		Status:          string(req.Status),
		ReviewedBy:      req.ReviewedBy,
		RejectionReason: req.RejectionReason,
	}
}
