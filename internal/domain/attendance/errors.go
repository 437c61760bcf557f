package attendance

import "errors"

// Attendance domain errors
var (
	// Clock-in errors
	ErrMockLocation        = errors.New("mock location detected, clock-in rejected")
	ErrStaleTimestamp      = errors.New("submitted time deviates too far from server time")
	ErrNotWorkingDay       = errors.New("clock-in is not allowed on weekends or holidays")
	ErrNoActiveWindow      = errors.New("no active check-in window at this time")
	ErrSlotAlreadyRecorded = errors.New("attendance already recorded for this slot")

	// General errors
	ErrRecordNotFound = errors.New("attendance record not found")
)
