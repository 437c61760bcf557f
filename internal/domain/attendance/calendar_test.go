package attendance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateOf_CrossesUTCMidnight(t *testing.T) {
	jakarta, err := time.LoadLocation("Asia/Jakarta")
	require.NoError(t, err)

	// 23:30 UTC on June 1st is already June 2nd in Jakarta (UTC+7).
	instant := time.Date(2025, 6, 1, 23, 30, 0, 0, time.UTC)

	date := DateOf(instant, jakarta)
	assert.Equal(t, "2025-06-02", date.Format("2006-01-02"))
	assert.Equal(t, 0, date.Hour())
	assert.Equal(t, jakarta, date.Location())

	assert.Equal(t, "2025-06-02", DateKey(instant, jakarta))
	assert.Equal(t, "2025-06-01", DateKey(instant, time.UTC))
	assert.Equal(t, "2025-06", MonthKey(instant, jakarta))
}

func TestNewRecordKey(t *testing.T) {
	date := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	key := NewRecordKey("emp-123", date)
	assert.Equal(t, "emp-123_2025-06-02", key)
}

func TestIsWorkingDay(t *testing.T) {
	weekdays := []time.Weekday{
		time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday,
	}

	monday := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	sunday := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	assert.True(t, IsWorkingDay(monday, weekdays, nil))
	assert.False(t, IsWorkingDay(sunday, weekdays, nil))
	assert.False(t, IsWorkingDay(monday, weekdays, []string{"2025-06-02"}))
	assert.True(t, IsWorkingDay(monday, weekdays, []string{"2025-06-03"}))
	assert.False(t, IsWorkingDay(monday, nil, nil))
}
