package penalty

import (
	"time"

	"github.com/shopspring/decimal"
)

// ViolationType classifies one tracked attendance violation.
type ViolationType string

const (
	ViolationLate          ViolationType = "late"
	ViolationEarlyLeave    ViolationType = "early_leave"
	ViolationAbsent        ViolationType = "absent"
	ViolationHalfDayAbsent ViolationType = "half_day_absent"
	ViolationMissed        ViolationType = "missed"
)

// Precedence orders violation types from most to least severe. It is used
// only to pick a headline type when several types co-occur in the same
// qualifying bucket; counting always treats each type independently.
func Precedence() []ViolationType {
	return []ViolationType{
		ViolationAbsent,
		ViolationHalfDayAbsent,
		ViolationLate,
		ViolationEarlyLeave,
		ViolationMissed,
	}
}

// DominantType returns the most severe type present in types, or "" when
// types is empty.
func DominantType(types []ViolationType) ViolationType {
	present := make(map[ViolationType]bool, len(types))
	for _, t := range types {
		present[t] = true
	}
	for _, t := range Precedence() {
		if present[t] {
			return t
		}
	}
	return ""
}

// Status is the lifecycle state of a penalty.
type Status string

const (
	StatusActive       Status = "active"
	StatusAcknowledged Status = "acknowledged"
	StatusWaived       Status = "waived"
	StatusPaid         Status = "paid"
)

// Penalty is a monetary sanction issued once a violation type's monthly
// count reaches the configured threshold.
type Penalty struct {
	ID             string
	EmployeeID     string
	ViolationType  ViolationType
	Month          string // "YYYY-MM"
	Amount         decimal.Decimal
	Status         Status
	ViolationCount int
	DateIncurred   time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time

	// DTO
	EmployeeName *string
}

// allowed transitions: active may move anywhere, acknowledged may still be
// waived or paid, waived and paid are terminal.
var transitions = map[Status][]Status{
	StatusActive:       {StatusAcknowledged, StatusWaived, StatusPaid},
	StatusAcknowledged: {StatusWaived, StatusPaid},
}

// Transition moves the penalty to a new status, rejecting moves out of a
// terminal state.
func (p *Penalty) Transition(to Status) error {
	for _, allowed := range transitions[p.Status] {
		if allowed == to {
			p.Status = to
			return nil
		}
	}
	return ErrInvalidStatusTransition
}

// Occurrence is one counted violation instance inside a month.
type Occurrence struct {
	Date  string        `json:"date"`
	Field string        `json:"field"` // "daily_status", "morning", "midday", "evening"
	Type  ViolationType `json:"type"`
}

// ViolationHistoryRecord is the persisted monthly summary per employee,
// written whether or not a penalty fired.
type ViolationHistoryRecord struct {
	ID               string
	EmployeeID       string
	Month            string
	Counts           map[ViolationType]int
	Occurrences      []Occurrence
	PenaltyTriggered bool
	PenaltyIDs       []string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
