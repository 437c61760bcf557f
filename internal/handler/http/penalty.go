package http

import (
	"context"
	"net/http"

	"github.com/cmlabs-hris/presensi-backend-go/internal/domain/penalty"
	"github.com/cmlabs-hris/presensi-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/presensi-backend-go/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

type PenaltyHandler interface {
	GetMyPenalties(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Acknowledge(w http.ResponseWriter, r *http.Request)
	Waive(w http.ResponseWriter, r *http.Request)
	MarkPaid(w http.ResponseWriter, r *http.Request)
}

type PenaltyService interface {
	Acknowledge(ctx context.Context, employeeID, penaltyID string) (penalty.Penalty, error)
	Waive(ctx context.Context, performedBy, penaltyID string) (penalty.Penalty, error)
	MarkPaid(ctx context.Context, performedBy, penaltyID string) (penalty.Penalty, error)
	GetMyPenalties(ctx context.Context, employeeID string, month *string) ([]penalty.Penalty, error)
	ListPenalties(ctx context.Context, month *string, status *penalty.Status) ([]penalty.Penalty, error)
}

type penaltyHandlerImpl struct {
	penaltyService PenaltyService
}

func NewPenaltyHandler(penaltyService PenaltyService) PenaltyHandler {
	return &penaltyHandlerImpl{
		penaltyService: penaltyService,
	}
}

type penaltyResponse struct {
	ID             string  `json:"id"`
	EmployeeID     string  `json:"employee_id"`
	EmployeeName   *string `json:"employee_name,omitempty"`
	ViolationType  string  `json:"violation_type"`
	Month          string  `json:"month"`
	Amount         string  `json:"amount"`
	Status         string  `json:"status"`
	ViolationCount int     `json:"violation_count"`
	DateIncurred   string  `json:"date_incurred"`
}

func mapPenalty(p penalty.Penalty) penaltyResponse {
	return penaltyResponse{
		ID:             p.ID,
		EmployeeID:     p.EmployeeID,
		EmployeeName:   p.EmployeeName,
		ViolationType:  string(p.ViolationType),
		Month:          p.Month,
		Amount:         p.Amount.StringFixed(2),
		Status:         string(p.Status),
		ViolationCount: p.ViolationCount,
		DateIncurred:   p.DateIncurred.Format("2006-01-02"),
	}
}

func mapPenalties(penalties []penalty.Penalty) []penaltyResponse {
	out := make([]penaltyResponse, 0, len(penalties))
	for _, p := range penalties {
		out = append(out, mapPenalty(p))
	}
	return out
}

// monthFilter validates an optional ?month=YYYY-MM query parameter.
func monthFilter(r *http.Request) (*string, bool) {
	month := r.URL.Query().Get("month")
	if month == "" {
		return nil, true
	}
	if !validator.IsValidMonth(month) {
		return nil, false
	}
	return &month, true
}

// GetMyPenalties implements PenaltyHandler.
func (h *penaltyHandlerImpl) GetMyPenalties(w http.ResponseWriter, r *http.Request) {
	employeeID, err := employeeIDFromRequest(r)
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	month, ok := monthFilter(r)
	if !ok {
		response.BadRequest(w, "month must be YYYY-MM", nil)
		return
	}

	penalties, err := h.penaltyService.GetMyPenalties(r.Context(), employeeID, month)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, mapPenalties(penalties))
}

// List implements PenaltyHandler.
func (h *penaltyHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	month, ok := monthFilter(r)
	if !ok {
		response.BadRequest(w, "month must be YYYY-MM", nil)
		return
	}

	var status *penalty.Status
	if v := r.URL.Query().Get("status"); v != "" {
		s := penalty.Status(v)
		status = &s
	}

	penalties, err := h.penaltyService.ListPenalties(r.Context(), month, status)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, mapPenalties(penalties))
}

// Acknowledge implements PenaltyHandler.
func (h *penaltyHandlerImpl) Acknowledge(w http.ResponseWriter, r *http.Request) {
	employeeID, err := employeeIDFromRequest(r)
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	p, err := h.penaltyService.Acknowledge(r.Context(), employeeID, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Penalty acknowledged", mapPenalty(p))
}

// Waive implements PenaltyHandler.
func (h *penaltyHandlerImpl) Waive(w http.ResponseWriter, r *http.Request) {
	adminID, err := employeeIDFromRequest(r)
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	p, err := h.penaltyService.Waive(r.Context(), adminID, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Penalty waived", mapPenalty(p))
}

// MarkPaid implements PenaltyHandler.
func (h *penaltyHandlerImpl) MarkPaid(w http.ResponseWriter, r *http.Request) {
	adminID, err := employeeIDFromRequest(r)
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	p, err := h.penaltyService.MarkPaid(r.Context(), adminID, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Penalty marked as paid", mapPenalty(p))
}
