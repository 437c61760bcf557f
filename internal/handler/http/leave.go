package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/cmlabs-hris/presensi-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/presensi-backend-go/internal/handler/http/response"
	leaveService "github.com/cmlabs-hris/presensi-backend-go/internal/service/leave"
	"github.com/go-chi/chi/v5"
)

type LeaveHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	GetMyRequests(w http.ResponseWriter, r *http.Request)
	Approve(w http.ResponseWriter, r *http.Request)
	Reject(w http.ResponseWriter, r *http.Request)
}

type LeaveService interface {
	CreateRequest(ctx context.Context, employeeID string, req leave.CreateLeaveRequestRequest) (leave.LeaveRequest, error)
	Approve(ctx context.Context, reviewerID, requestID string) (leave.LeaveRequest, error)
	Reject(ctx context.Context, reviewerID, requestID string, body leave.RejectLeaveRequestRequest) (leave.LeaveRequest, error)
	GetMyRequests(ctx context.Context, employeeID string) ([]leave.LeaveRequest, error)
}

type leaveHandlerImpl struct {
	leaveService LeaveService
}

func NewLeaveHandler(svc LeaveService) LeaveHandler {
	return &leaveHandlerImpl{
		leaveService: svc,
	}
}

// Create implements LeaveHandler.
func (h *leaveHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	employeeID, err := employeeIDFromRequest(r)
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	var req leave.CreateLeaveRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.leaveService.CreateRequest(r.Context(), employeeID, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Leave request submitted", leaveService.MapToResponse(result))
}

// GetMyRequests implements LeaveHandler.
func (h *leaveHandlerImpl) GetMyRequests(w http.ResponseWriter, r *http.Request) {
	employeeID, err := employeeIDFromRequest(r)
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	requests, err := h.leaveService.GetMyRequests(r.Context(), employeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	out := make([]leave.LeaveRequestResponse, 0, len(requests))
	for _, req := range requests {
		out = append(out, leaveService.MapToResponse(req))
	}
	response.Success(w, out)
}

// Approve implements LeaveHandler.
func (h *leaveHandlerImpl) Approve(w http.ResponseWriter, r *http.Request) {
	reviewerID, err := employeeIDFromRequest(r)
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	result, err := h.leaveService.Approve(r.Context(), reviewerID, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave request approved", leaveService.MapToResponse(result))
}

// Reject implements LeaveHandler.
func (h *leaveHandlerImpl) Reject(w http.ResponseWriter, r *http.Request) {
	reviewerID, err := employeeIDFromRequest(r)
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	var body leave.RejectLeaveRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.leaveService.Reject(r.Context(), reviewerID, chi.URLParam(r, "id"), body)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave request rejected", leaveService.MapToResponse(result))
}
