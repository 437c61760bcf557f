package attendance

import "time"

// Window is a slot's configured time window in minutes of the day,
// both bounds inclusive, in the company time zone.
type Window struct {
	StartMinute int `json:"start_minute"`
	EndMinute   int `json:"end_minute"`
}

// Classification is the outcome of matching an instant against one slot window.
type Classification struct {
	Status        SlotStatus
	LateByMinutes int
}

// MinuteOfDay returns the minute-of-day of t in its own location.
// The caller is responsible for converting t to the company time zone first.
func MinuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// ClassifySlot matches a minute-of-day against one slot's window and grace
// period. It returns nil when the instant falls outside the slot entirely;
// the caller then tries the next configured slot.
//
// Arrival slots (morning, midday) accept from the window start; anything
// within (end, end+grace] is late by actual-end minutes. The departure slot
// (evening) additionally accepts [start-grace, start) as an early leave,
// late-by start-actual minutes. Exact start and end are on time; exact
// end+grace is late.
func ClassifySlot(slot SlotName, minuteOfDay int, w Window, graceMinutes int) *Classification {
	if IsArrivalSlot(slot) {
		switch {
		case minuteOfDay < w.StartMinute:
			return nil
		case minuteOfDay <= w.EndMinute:
			return &Classification{Status: SlotOnTime}
		case minuteOfDay <= w.EndMinute+graceMinutes:
			return &Classification{Status: SlotLate, LateByMinutes: minuteOfDay - w.EndMinute}
		default:
			return nil
		}
	}

	switch {
	case minuteOfDay < w.StartMinute-graceMinutes:
		return nil
	case minuteOfDay < w.StartMinute:
		return &Classification{Status: SlotEarlyLeave, LateByMinutes: w.StartMinute - minuteOfDay}
	case minuteOfDay <= w.EndMinute:
		return &Classification{Status: SlotOnTime}
	case minuteOfDay <= w.EndMinute+graceMinutes:
		return &Classification{Status: SlotLate, LateByMinutes: minuteOfDay - w.EndMinute}
	default:
		return nil
	}
}
