package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/cmlabs-hris/presensi-backend-go/internal/domain/penalty"
	"github.com/cmlabs-hris/presensi-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/presensi-backend-go/internal/pkg/validator"
	"github.com/cmlabs-hris/presensi-backend-go/internal/service/violation"
)

type ViolationHandler interface {
	Calculate(w http.ResponseWriter, r *http.Request)
	History(w http.ResponseWriter, r *http.Request)
}

type ViolationService interface {
	CalculateMonth(ctx context.Context, month string, employeeID *string) (violation.MonthResult, error)
	GetHistory(ctx context.Context, employeeID, month string) (penalty.ViolationHistoryRecord, error)
	ListHistory(ctx context.Context, month string) ([]penalty.ViolationHistoryRecord, error)
}

type violationHandlerImpl struct {
	violationService ViolationService
}

func NewViolationHandler(svc ViolationService) ViolationHandler {
	return &violationHandlerImpl{
		violationService: svc,
	}
}

// Calculate implements ViolationHandler. It is the on-demand twin of the
// monthly aggregation job.
func (h *violationHandlerImpl) Calculate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Month      string  `json:"month"`
		EmployeeID *string `json:"employee_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if !validator.IsValidMonth(body.Month) {
		response.BadRequest(w, "month must be YYYY-MM", nil)
		return
	}
	if body.EmployeeID != nil && !validator.IsValidUUID(*body.EmployeeID) {
		response.BadRequest(w, "employee_id must be a valid UUID", nil)
		return
	}

	result, err := h.violationService.CalculateMonth(r.Context(), body.Month, body.EmployeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Monthly violations calculated", result)
}

type historyResponse struct {
	EmployeeID       string               `json:"employee_id"`
	Month            string               `json:"month"`
	Counts           map[string]int       `json:"counts"`
	DominantType     string               `json:"dominant_type,omitempty"`
	Occurrences      []penalty.Occurrence `json:"occurrences"`
	PenaltyTriggered bool                 `json:"penalty_triggered"`
	PenaltyIDs       []string             `json:"penalty_ids,omitempty"`
}

func mapHistory(rec penalty.ViolationHistoryRecord) historyResponse {
	counts := make(map[string]int, len(rec.Counts))
	observed := make([]penalty.ViolationType, 0, len(rec.Counts))
	for vt, n := range rec.Counts {
		counts[string(vt)] = n
		if n > 0 {
			observed = append(observed, vt)
		}
	}
	return historyResponse{
		EmployeeID:       rec.EmployeeID,
		Month:            rec.Month,
		Counts:           counts,
		DominantType:     string(penalty.DominantType(observed)),
		Occurrences:      rec.Occurrences,
		PenaltyTriggered: rec.PenaltyTriggered,
		PenaltyIDs:       rec.PenaltyIDs,
	}
}

// History implements ViolationHandler. With ?employee_id it returns one
// employee's summary, otherwise every summary for the month.
func (h *violationHandlerImpl) History(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	month := q.Get("month")
	if !validator.IsValidMonth(month) {
		response.BadRequest(w, "month must be YYYY-MM", nil)
		return
	}

	if employeeID := q.Get("employee_id"); employeeID != "" {
		if !validator.IsValidUUID(employeeID) {
			response.BadRequest(w, "employee_id must be a UUID", nil)
			return
		}
		rec, err := h.violationService.GetHistory(r.Context(), employeeID, month)
		if err != nil {
			response.HandleError(w, err)
			return
		}
		response.Success(w, mapHistory(rec))
		return
	}

	records, err := h.violationService.ListHistory(r.Context(), month)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	out := make([]historyResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, mapHistory(rec))
	}
	response.Success(w, out)
}
