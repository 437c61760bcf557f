package attendance

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveDailyStatus(t *testing.T) {
	tests := []struct {
		name       string
		slots      [3]SlotStatus
		finalizing bool
		want       DailyStatus
	}{
		{
			name:       "open day is always in progress",
			slots:      [3]SlotStatus{SlotOnTime, SlotOnTime, SlotOnTime},
			finalizing: false,
			want:       StatusInProgress,
		},
		{
			name:       "open day with no slots is in progress",
			slots:      [3]SlotStatus{},
			finalizing: false,
			want:       StatusInProgress,
		},
		{
			name:       "three completed slots",
			slots:      [3]SlotStatus{SlotOnTime, SlotLate, SlotEarlyLeave},
			finalizing: true,
			want:       StatusPresent,
		},
		{
			name:       "two completed slots",
			slots:      [3]SlotStatus{SlotOnTime, SlotOnTime, SlotMissed},
			finalizing: true,
			want:       StatusHalfDayAbsent,
		},
		{
			name:       "single completed slot",
			slots:      [3]SlotStatus{SlotLate, SlotMissed, SlotMissed},
			finalizing: true,
			want:       StatusAbsent,
		},
		{
			name:       "nothing recorded",
			slots:      [3]SlotStatus{SlotMissed, SlotMissed, SlotMissed},
			finalizing: true,
			want:       StatusAbsent,
		},
		{
			name:       "unset slots count as missed",
			slots:      [3]SlotStatus{SlotOnTime, "", ""},
			finalizing: true,
			want:       StatusAbsent,
		},
		{
			name:       "late and early leave still count as completed",
			slots:      [3]SlotStatus{SlotLate, SlotEarlyLeave, SlotMissed},
			finalizing: true,
			want:       StatusHalfDayAbsent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveDailyStatus(tt.slots, tt.finalizing))
		})
	}
}
