package attendance

// ResolveDailyStatus aggregates the three slot statuses into a daily status.
//
// While the day is still open (finalizing=false) the result is always
// in_progress; a day must not read as final while clock-ins are possible.
// At finalization, slots count as completed unless they are unset or missed;
// late and early_leave still count. Zero or one completed slot is absent,
// two is half_day_absent, all three is present. A single check-in is not
// enough to count as attendance.
func ResolveDailyStatus(slots [3]SlotStatus, finalizing bool) DailyStatus {
	if !finalizing {
		return StatusInProgress
	}

	completed := 0
	for _, s := range slots {
		if s != "" && s != SlotMissed {
			completed++
		}
	}

	switch completed {
	case 3:
		return StatusPresent
	case 2:
		return StatusHalfDayAbsent
	default:
		return StatusAbsent
	}
}
