package attendance

import (
	"time"

	"github.com/cmlabs-hris/presensi-backend-go/internal/pkg/validator"
)

// ========================================
// ATTENDANCE DTOs
// ========================================

type ClockInRequest struct {
	Timestamp      time.Time `json:"timestamp"`
	Latitude       float64   `json:"latitude"`
	Longitude      float64   `json:"longitude"`
	IsMockLocation bool      `json:"is_mock_location"`
}

func (r *ClockInRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Timestamp.IsZero() {
		errs = append(errs, validator.ValidationError{
			Field:   "timestamp",
			Message: "timestamp is required",
		})
	}

	if !validator.IsValidLatitude(r.Latitude) {
		errs = append(errs, validator.ValidationError{
			Field:   "latitude",
			Message: "latitude must be between -90 and 90",
		})
	}

	if !validator.IsValidLongitude(r.Longitude) {
		errs = append(errs, validator.ValidationError{
			Field:   "longitude",
			Message: "longitude must be between -180 and 180",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type ClockInResponse struct {
	Slot          SlotName    `json:"slot"`
	SlotStatus    SlotStatus  `json:"slot_status"`
	LateByMinutes int         `json:"late_by_minutes"`
	DailyStatus   DailyStatus `json:"daily_status"`
	Date          string      `json:"date"`
}

type FinalizeResult struct {
	Date                 string `json:"date"`
	Processed            int    `json:"processed"`
	AbsentRecordsCreated int    `json:"absent_records_created"`
	RecordsUpdated       int    `json:"records_updated"`
}

// ManualUpdateRequest is the admin override of a single record. Nil fields
// are left untouched; any applied change marks the record as a manual entry.
type ManualUpdateRequest struct {
	RecordKey     string       `json:"-"`
	MorningStatus *SlotStatus  `json:"morning_status,omitempty"`
	MiddayStatus  *SlotStatus  `json:"midday_status,omitempty"`
	EveningStatus *SlotStatus  `json:"evening_status,omitempty"`
	DailyStatus   *DailyStatus `json:"daily_status,omitempty"`
	ManualReason  *string      `json:"manual_reason,omitempty"`
	Notes         *string      `json:"notes,omitempty"`
}

var knownSlotStatuses = map[SlotStatus]bool{
	SlotOnTime:     true,
	SlotLate:       true,
	SlotEarlyLeave: true,
	SlotMissed:     true,
	SlotAbsent:     true,
}

var knownDailyStatuses = map[DailyStatus]bool{
	StatusInProgress:    true,
	StatusPresent:       true,
	StatusHalfDayAbsent: true,
	StatusAbsent:        true,
	StatusOnLeave:       true,
}

func (r *ManualUpdateRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.RecordKey) {
		errs = append(errs, validator.ValidationError{
			Field:   "record_key",
			Message: "record key is required",
		})
	}

	for field, status := range map[string]*SlotStatus{
		"morning_status": r.MorningStatus,
		"midday_status":  r.MiddayStatus,
		"evening_status": r.EveningStatus,
	} {
		if status != nil && !knownSlotStatuses[*status] {
			errs = append(errs, validator.ValidationError{
				Field:   field,
				Message: "unknown slot status",
			})
		}
	}

	if r.DailyStatus != nil && !knownDailyStatuses[*r.DailyStatus] {
		errs = append(errs, validator.ValidationError{
			Field:   "daily_status",
			Message: "unknown daily status",
		})
	}

	if r.ManualReason == nil || validator.IsEmpty(*r.ManualReason) {
		errs = append(errs, validator.ValidationError{
			Field:   "manual_reason",
			Message: "manual_reason is required for overrides",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type ListFilter struct {
	EmployeeID *string
	StartDate  *string
	EndDate    *string
	Status     *string
	Page       int
	Limit      int
}

type SlotOutcomeResponse struct {
	Status        SlotStatus `json:"status,omitempty"`
	OccurredAt    *string    `json:"occurred_at,omitempty"`
	Latitude      *float64   `json:"latitude,omitempty"`
	Longitude     *float64   `json:"longitude,omitempty"`
	LateByMinutes *int       `json:"late_by_minutes,omitempty"`
}

type RecordResponse struct {
	RecordKey      string              `json:"record_key"`
	EmployeeID     string              `json:"employee_id"`
	EmployeeName   *string             `json:"employee_name,omitempty"`
	Date           string              `json:"date"`
	Morning        SlotOutcomeResponse `json:"morning"`
	Midday         SlotOutcomeResponse `json:"midday"`
	Evening        SlotOutcomeResponse `json:"evening"`
	DailyStatus    DailyStatus         `json:"daily_status"`
	IsManualEntry  bool                `json:"is_manual_entry"`
	ManualReason   *string             `json:"manual_reason,omitempty"`
	Notes          *string             `json:"notes,omitempty"`
	LeaveRequestID *string             `json:"leave_request_id,omitempty"`
}

type ListRecordsResponse struct {
	TotalCount int64            `json:"total_count"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
	TotalPages int              `json:"total_pages"`
	Records    []RecordResponse `json:"records"`
}
