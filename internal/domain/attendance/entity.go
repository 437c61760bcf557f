package attendance

import (
	"fmt"
	"time"
)

// SlotName identifies one of the three fixed daily check points.
type SlotName string

const (
	SlotMorning SlotName = "morning"
	SlotMidday  SlotName = "midday"
	SlotEvening SlotName = "evening"
)

// SlotOrder returns the slots in the fixed order a clock-in attempt tries them.
func SlotOrder() []SlotName {
	return []SlotName{SlotMorning, SlotMidday, SlotEvening}
}

// IsArrivalSlot reports whether the slot uses arrival-window rules.
// The evening slot is the departure slot and uses departure rules.
func IsArrivalSlot(slot SlotName) bool {
	return slot == SlotMorning || slot == SlotMidday
}

// SlotStatus is the outcome recorded for a single slot.
// The empty string means the slot has no outcome yet.
type SlotStatus string

const (
	SlotOnTime     SlotStatus = "on_time"
	SlotLate       SlotStatus = "late"
	SlotEarlyLeave SlotStatus = "early_leave"
	SlotMissed     SlotStatus = "missed"
	SlotAbsent     SlotStatus = "absent"
)

// DailyStatus is the aggregate classification of one employee's calendar day.
type DailyStatus string

const (
	StatusInProgress    DailyStatus = "in_progress"
	StatusPresent       DailyStatus = "present"
	StatusHalfDayAbsent DailyStatus = "half_day_absent"
	StatusAbsent        DailyStatus = "absent"
	StatusOnLeave       DailyStatus = "on_leave"
)

// SlotOutcome holds the recorded result for one slot on one day.
type SlotOutcome struct {
	Status        SlotStatus
	OccurredAt    *time.Time
	Latitude      *float64
	Longitude     *float64
	LateByMinutes *int
}

// Resolved reports whether the slot holds an outcome a clock-in may not
// overwrite. A missed slot is not resolved: the finalization sweep writes
// missed, and nothing clocks in after finalization anyway.
func (o SlotOutcome) Resolved() bool {
	return o.Status != "" && o.Status != SlotMissed
}

// Record is the single source of truth for one (employee, date) pair.
type Record struct {
	RecordKey  string
	EmployeeID string
	Date       time.Time

	Morning SlotOutcome
	Midday  SlotOutcome
	Evening SlotOutcome

	DailyStatus    DailyStatus
	IsManualEntry  bool
	ManualReason   *string
	Notes          *string
	LeaveRequestID *string

	CreatedAt time.Time
	UpdatedAt time.Time

	// DTO
	EmployeeName *string
}

// NewRecordKey builds the persisted key "{employeeId}_{YYYY-MM-DD}".
func NewRecordKey(employeeID string, date time.Time) string {
	return fmt.Sprintf("%s_%s", employeeID, date.Format("2006-01-02"))
}

// Slot returns a pointer to the named slot's outcome.
func (r *Record) Slot(name SlotName) *SlotOutcome {
	switch name {
	case SlotMorning:
		return &r.Morning
	case SlotMidday:
		return &r.Midday
	case SlotEvening:
		return &r.Evening
	}
	return nil
}

// SlotStatuses returns the three slot statuses in fixed order,
// the shape ResolveDailyStatus consumes.
func (r *Record) SlotStatuses() [3]SlotStatus {
	return [3]SlotStatus{r.Morning.Status, r.Midday.Status, r.Evening.Status}
}
