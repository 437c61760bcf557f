package leave

import "time"

type RequestStatus string

const (
	StatusWaitingApproval RequestStatus = "waiting_approval"
	StatusApproved        RequestStatus = "approved"
	StatusRejected        RequestStatus = "rejected"
)

type LeaveRequest struct {
	ID              string
	EmployeeID      string
	StartDate       time.Time
	EndDate         time.Time
	TotalDays       int
	Reason          string
	Status          RequestStatus
	ReviewedBy      *string
	ReviewedAt      *time.Time
	RejectionReason *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Days returns every calendar day in [StartDate, EndDate] inclusive.
func (r LeaveRequest) Days() []time.Time {
	var days []time.Time
	for d := r.StartDate; !d.After(r.EndDate); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}
