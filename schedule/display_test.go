package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusLine_Auto(t *testing.T) {
	w := LabHours()

	tests := []struct {
		name string
		now  time.Time
		want Line
	}{
		{"open", at(time.Tuesday, "10:00"), Line{true, "Open now · until 12:30 PM"}},
		{"between sessions", at(time.Tuesday, "12:45"), Line{false, "Closed · next 1:00 PM–4:00 PM"}},
		{"after hours", at(time.Tuesday, "17:00"), Line{false, "Closed now — please visit during posted hours"}},
		{"closed day", at(time.Monday, "10:00"), Line{false, "Closed now — please visit during posted hours"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// manual fields must not influence the automatic line
			assert.Equal(t, tt.want, StatusLine(w, tt.now, true, false, "08:00"))
		})
	}
}

func TestStatusLine_ManualIgnoresSchedule(t *testing.T) {
	w := LabHours()

	open := StatusLine(w, at(time.Monday, "10:00"), false, true, "17:00")
	assert.Equal(t, Line{true, "Open until 05:00 PM"}, open)

	closed := StatusLine(w, at(time.Tuesday, "10:00"), false, false, "17:00")
	assert.Equal(t, Line{false, "Closed now — please visit during posted hours"}, closed)

	odd := StatusLine(w, at(time.Tuesday, "10:00"), false, true, "late")
	assert.Equal(t, "Open until late", odd.Text)
}

func TestSummary(t *testing.T) {
	w := LabHours()

	assert.Equal(t, "Closed", Summary(w, at(time.Thursday, "10:00")))
	assert.Equal(t, "Open now · until 2:30 PM", Summary(w, at(time.Friday, "14:00")))
	assert.Equal(t, "Closed · next 9:00 AM–12:30 PM", Summary(w, at(time.Friday, "08:00")))
	assert.Equal(t, "Closed for the rest of the day", Summary(w, at(time.Friday, "14:30")))
}

func TestRows(t *testing.T) {
	rows := Rows(LabHours(), at(time.Tuesday, "13:30"))

	require.Len(t, rows, 5)
	assert.Equal(t, "Monday", rows[0].Day)
	assert.True(t, rows[0].Closed)
	assert.Empty(t, rows[0].Slots)

	tuesday := rows[1]
	assert.True(t, tuesday.Today)
	require.Len(t, tuesday.Slots, 2)
	assert.Equal(t, Slot{Label: "Morning", Time: "9:00 AM – 12:30 PM"}, tuesday.Slots[0])
	assert.Equal(t, Slot{Label: "Afternoon", Time: "1:00 PM – 4:00 PM", Now: true}, tuesday.Slots[1])

	// the same hours on another day are never "now"
	wednesday := rows[2]
	assert.False(t, wednesday.Today)
	assert.False(t, wednesday.Slots[1].Now)
}

func TestRows_ExtraSessionsAreLabelledGenerically(t *testing.T) {
	w := Weekly{time.Monday: {{"08:00", "09:00"}, {"10:00", "11:00"}, {"18:00", "20:00"}}}

	rows := Rows(w, at(time.Monday, "18:30"))

	require.Len(t, rows[0].Slots, 3)
	assert.Equal(t, "Session", rows[0].Slots[2].Label)
	assert.True(t, rows[0].Slots[2].Now)
}

func TestHeroFor(t *testing.T) {
	assert.Equal(t, "OPEN", HeroFor(true).Status)
	assert.Equal(t, "CLOSED", HeroFor(false).Status)
	assert.Equal(t, "Closed now — please visit during posted hours", HeroFor(false).Kiosk)
}
