package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/cmlabs-hris/presensi-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/presensi-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/presensi-backend-go/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

type AttendanceHandler interface {
	ClockIn(w http.ResponseWriter, r *http.Request)
	GetMyAttendance(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Finalize(w http.ResponseWriter, r *http.Request)
}

// AttendanceService is the service surface the handler consumes.
type AttendanceService interface {
	ClockIn(ctx context.Context, employeeID string, req attendance.ClockInRequest) (attendance.ClockInResponse, error)
	FinalizeDay(ctx context.Context, date time.Time) (attendance.FinalizeResult, error)
	UpdateRecord(ctx context.Context, performedBy string, req attendance.ManualUpdateRequest) (attendance.RecordResponse, error)
	GetMyRecords(ctx context.Context, employeeID, month string) ([]attendance.RecordResponse, error)
	ListRecords(ctx context.Context, filter attendance.ListFilter) (attendance.ListRecordsResponse, error)
}

type attendanceHandlerImpl struct {
	attendanceService AttendanceService
}

func NewAttendanceHandler(attendanceService AttendanceService) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
	}
}

// ClockIn implements AttendanceHandler.
func (h *attendanceHandlerImpl) ClockIn(w http.ResponseWriter, r *http.Request) {
	employeeID, err := employeeIDFromRequest(r)
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	var req attendance.ClockInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.attendanceService.ClockIn(r.Context(), employeeID, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Clock-in recorded", result)
}

// GetMyAttendance implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetMyAttendance(w http.ResponseWriter, r *http.Request) {
	employeeID, err := employeeIDFromRequest(r)
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	month := r.URL.Query().Get("month")
	if month == "" {
		month = time.Now().Format("2006-01")
	}
	if !validator.IsValidMonth(month) {
		response.BadRequest(w, "month must be YYYY-MM", nil)
		return
	}

	records, err := h.attendanceService.GetMyRecords(r.Context(), employeeID, month)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, records)
}

// List implements AttendanceHandler.
func (h *attendanceHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := attendance.ListFilter{}
	if v := q.Get("employee_id"); v != "" {
		filter.EmployeeID = &v
	}
	if v := q.Get("start_date"); v != "" {
		filter.StartDate = &v
	}
	if v := q.Get("end_date"); v != "" {
		filter.EndDate = &v
	}
	if v := q.Get("status"); v != "" {
		filter.Status = &v
	}
	filter.Page, _ = strconv.Atoi(q.Get("page"))
	filter.Limit, _ = strconv.Atoi(q.Get("limit"))

	result, err := h.attendanceService.ListRecords(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result.Records, &response.Meta{
		Page:       result.Page,
		Limit:      result.Limit,
		TotalItems: result.TotalCount,
		TotalPages: result.TotalPages,
	})
}

// Update implements AttendanceHandler.
func (h *attendanceHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	adminID, err := employeeIDFromRequest(r)
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	var req attendance.ManualUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.RecordKey = chi.URLParam(r, "id")

	result, err := h.attendanceService.UpdateRecord(r.Context(), adminID, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Attendance record updated", result)
}

// Finalize implements AttendanceHandler. It is the on-demand twin of the
// nightly finalization job.
func (h *attendanceHandlerImpl) Finalize(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Date string `json:"date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	date, ok := validator.IsValidDate(body.Date)
	if !ok {
		response.BadRequest(w, "date must be YYYY-MM-DD", nil)
		return
	}

	result, err := h.attendanceService.FinalizeDay(r.Context(), date)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Attendance finalized", result)
}
