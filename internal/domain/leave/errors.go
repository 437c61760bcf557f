package leave

import "errors"

// Leave domain errors
var (
	ErrLeaveRequestNotFound  = errors.New("leave request not found")
	ErrLeaveAlreadyProcessed = errors.New("leave request has already been approved or rejected")
	ErrInvalidDateRange      = errors.New("leave end date is before start date")
)
