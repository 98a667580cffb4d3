package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2026-10-19 is a Monday.
func at(day time.Weekday, hhmm string) time.Time {
	minutes, err := ParseClock(hhmm)
	if err != nil {
		panic(err)
	}
	offset := (int(day) - int(time.Monday) + 7) % 7
	return time.Date(2026, time.October, 19+offset, minutes/60, minutes%60, 0, 0, time.Local)
}

func TestEvaluate_ClosedDaysIgnoreTime(t *testing.T) {
	w := LabHours()
	for _, day := range []time.Weekday{time.Monday, time.Thursday, time.Saturday, time.Sunday} {
		for _, hhmm := range []string{"00:00", "09:00", "10:00", "13:30", "23:59"} {
			st := w.Evaluate(at(day, hhmm))
			assert.Equal(t, ClosedAllDay, st.State, "%s %s", day, hhmm)
			assert.False(t, st.Open())
		}
	}
}

func TestEvaluate_Scenario(t *testing.T) {
	w := LabHours()

	st := w.Evaluate(at(time.Tuesday, "10:00"))
	assert.Equal(t, OpenNow, st.State)
	assert.Equal(t, "12:30", st.Until)

	st = w.Evaluate(at(time.Tuesday, "12:45"))
	assert.Equal(t, ClosedUntilNext, st.State)
	require.NotNil(t, st.Next)
	assert.Equal(t, Session{"13:00", "16:00"}, *st.Next)

	st = w.Evaluate(at(time.Tuesday, "17:00"))
	assert.Equal(t, ClosedRestOfDay, st.State)
	assert.Nil(t, st.Next)
}

func TestEvaluate_HalfOpenSessions(t *testing.T) {
	w := Weekly{time.Wednesday: {{"09:00", "12:30"}, {"13:00", "16:00"}}}

	tests := []struct {
		now   string
		state State
		until string
	}{
		{"09:00", OpenNow, "12:30"},
		{"12:29", OpenNow, "12:30"},
		{"12:30", ClosedUntilNext, ""},
		{"13:00", OpenNow, "16:00"},
		{"15:59", OpenNow, "16:00"},
		{"16:00", ClosedRestOfDay, ""},
	}

	for _, tt := range tests {
		t.Run(tt.now, func(t *testing.T) {
			st := w.Evaluate(at(time.Wednesday, tt.now))
			assert.Equal(t, tt.state, st.State)
			assert.Equal(t, tt.until, st.Until)
		})
	}
}

func TestEvaluate_BeforeFirstSessionReturnsEarliest(t *testing.T) {
	w := LabHours()

	st := w.Evaluate(at(time.Friday, "07:15"))

	assert.Equal(t, ClosedUntilNext, st.State)
	require.NotNil(t, st.Next)
	assert.Equal(t, "09:00", st.Next.Start)
	assert.Equal(t, "12:30", st.Next.End)
}

func TestEvaluate_SkipsMalformedSessions(t *testing.T) {
	w := Weekly{time.Tuesday: {{"9am", "noon"}, {"13:00", "16:00"}}}

	st := w.Evaluate(at(time.Tuesday, "10:00"))

	assert.Equal(t, ClosedUntilNext, st.State)
	assert.Equal(t, "13:00", st.Next.Start)
}

func TestEvaluate_UsesLocationOfTimestamp(t *testing.T) {
	w := LabHours()
	loc := time.FixedZone("lab", -5*60*60)
	// 15:00 UTC on Tuesday is 10:00 at the lab
	now := time.Date(2026, time.October, 20, 15, 0, 0, 0, time.UTC).In(loc)

	assert.Equal(t, OpenNow, w.Evaluate(now).State)
}

func TestParseClock(t *testing.T) {
	m, err := ParseClock("13:05")
	require.NoError(t, err)
	assert.Equal(t, 785, m)

	for _, bad := range []string{"", "1305", "24:00", "12:60", "ab:cd"} {
		_, err := ParseClock(bad)
		assert.Error(t, err, bad)
	}
}
