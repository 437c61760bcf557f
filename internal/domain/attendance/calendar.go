package attendance

import (
	"slices"
	"time"
)

// DateOf resolves the calendar day of an instant in the company time zone,
// normalized to local midnight. This is the immutable key date of a record.
func DateOf(instant time.Time, loc *time.Location) time.Time {
	local := instant.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

// DateKey formats the calendar day of an instant in the company time zone.
func DateKey(instant time.Time, loc *time.Location) string {
	return instant.In(loc).Format("2006-01-02")
}

// MonthKey formats the calendar month of an instant in the company time zone.
func MonthKey(instant time.Time, loc *time.Location) string {
	return instant.In(loc).Format("2006-01")
}

// IsWorkingDay reports whether date is a configured working day and not a
// holiday. Holidays are "YYYY-MM-DD" strings in the company time zone.
func IsWorkingDay(date time.Time, workingDays []time.Weekday, holidays []string) bool {
	if !slices.Contains(workingDays, date.Weekday()) {
		return false
	}
	return !slices.Contains(holidays, date.Format("2006-01-02"))
}
