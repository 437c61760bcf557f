package response

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/cmlabs-hris/presensi-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/presensi-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/presensi-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/presensi-backend-go/internal/domain/penalty"
	"github.com/cmlabs-hris/presensi-backend-go/internal/domain/settings"
	"github.com/cmlabs-hris/presensi-backend-go/internal/pkg/utils"
	"github.com/cmlabs-hris/presensi-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	var geofenceErr *utils.GeofenceError
	if errors.As(err, &geofenceErr) {
		BadRequest(w, "Location is outside the allowed workplace radius", map[string]string{
			"distance_meters": fmt.Sprintf("%.0f", geofenceErr.DistanceMeters),
			"radius_meters":   fmt.Sprintf("%.0f", geofenceErr.RadiusMeters),
		})
		return
	}

	switch {
	// Attendance domain errors
	case errors.Is(err, attendance.ErrMockLocation):
		BadRequest(w, "Mock location detected", nil)
	case errors.Is(err, attendance.ErrStaleTimestamp):
		BadRequest(w, "Timestamp deviates too far from server time", nil)
	case errors.Is(err, attendance.ErrNotWorkingDay):
		BadRequest(w, "Today is not a working day", nil)
	case errors.Is(err, attendance.ErrNoActiveWindow):
		BadRequest(w, "No attendance window is open at this time", nil)
	case errors.Is(err, attendance.ErrSlotAlreadyRecorded):
		Conflict(w, "This slot has already been recorded")
	case errors.Is(err, attendance.ErrRecordNotFound):
		NotFound(w, "Attendance record not found")

	// Penalty domain errors
	case errors.Is(err, penalty.ErrPenaltyNotFound):
		NotFound(w, "Penalty not found")
	case errors.Is(err, penalty.ErrHistoryNotFound):
		NotFound(w, "Violation history not found")
	case errors.Is(err, penalty.ErrInvalidStatusTransition):
		Conflict(w, "Penalty status transition not allowed")
	case errors.Is(err, penalty.ErrNotPenaltyOwner):
		Forbidden(w, "Penalty belongs to another employee")

	// Leave domain errors
	case errors.Is(err, leave.ErrLeaveRequestNotFound):
		NotFound(w, "Leave request not found")
	case errors.Is(err, leave.ErrLeaveAlreadyProcessed):
		Conflict(w, "Leave request already processed")
	case errors.Is(err, leave.ErrInvalidDateRange):
		BadRequest(w, "Leave end date is before start date", nil)

	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, employee.ErrInsufficientLeaveBalance):
		BadRequest(w, "Insufficient leave balance", nil)

	// Settings
	case errors.Is(err, settings.ErrNotConfigured):
		InternalServerError(w, "Company settings are not configured")

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
