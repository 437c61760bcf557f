package violation

import (
	"github.com/cmlabs-hris/presensi-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/presensi-backend-go/internal/domain/penalty"
)

// slotViolations maps a finalized slot status to the violation it counts
// as, if any.
var slotViolations = map[attendance.SlotStatus]penalty.ViolationType{
	attendance.SlotLate:       penalty.ViolationLate,
	attendance.SlotEarlyLeave: penalty.ViolationEarlyLeave,
	attendance.SlotMissed:     penalty.ViolationMissed,
}

// dailyViolations maps a finalized daily status to the violation it counts
// as, if any.
var dailyViolations = map[attendance.DailyStatus]penalty.ViolationType{
	attendance.StatusAbsent:        penalty.ViolationAbsent,
	attendance.StatusHalfDayAbsent: penalty.ViolationHalfDayAbsent,
}

// Tally is the per-employee monthly violation summary produced by scanning
// attendance records. Counts are independent per violation type: a day can
// contribute to several types at once.
type Tally struct {
	Counts      map[penalty.ViolationType]int
	Occurrences []penalty.Occurrence
}

// TallyRecords counts violations across one employee's finalized records
// for a month. Records still in progress or on leave contribute nothing
// from the daily status; unresolved slots on an in-progress day contribute
// nothing either since only missed, late and early_leave slot statuses
// count.
func TallyRecords(records []attendance.Record) Tally {
	tally := Tally{Counts: make(map[penalty.ViolationType]int)}

	for _, rec := range records {
		date := rec.Date.Format("2006-01-02")

		if vt, ok := dailyViolations[rec.DailyStatus]; ok {
			tally.add(vt, date, "daily_status")
		}

		for _, slot := range attendance.SlotOrder() {
			if vt, ok := slotViolations[rec.Slot(slot).Status]; ok {
				tally.add(vt, date, string(slot))
			}
		}
	}

	return tally
}

func (t *Tally) add(vt penalty.ViolationType, date, field string) {
	t.Counts[vt]++
	t.Occurrences = append(t.Occurrences, penalty.Occurrence{
		Date:  date,
		Field: field,
		Type:  vt,
	})
}
