package schedule

import (
	"time"
)

const (
	closedNowLine     = "Closed now — please visit during posted hours"
	closedRestOfDay   = "Closed for the rest of the day"
	closedAllDayShort = "Closed"
)

// Format12h renders "HH:MM" as a short 12 hour time ("1:00 PM"). Unparsable input is
// returned unchanged.
func Format12h(value string) string {
	minutes, err := ParseClock(value)
	if err != nil {
		return value
	}
	return clockTime(minutes).Format("3:04 PM")
}

// FormatCloseTime renders the manual close time with a two digit hour ("05:00 PM").
func FormatCloseTime(value string) string {
	minutes, err := ParseClock(value)
	if err != nil {
		return value
	}
	return clockTime(minutes).Format("03:04 PM")
}

func clockTime(minutes int) time.Time {
	return time.Date(2000, time.January, 1, minutes/60, minutes%60, 0, 0, time.UTC)
}

// Line is the hero status line of the board.
type Line struct {
	Open bool
	Text string
}

// StatusLine chooses between the schedule and the manual status. With auto disabled the
// weekly table is not consulted at all.
func StatusLine(w Weekly, now time.Time, auto, manualOpen bool, closeTime string) Line {
	if !auto {
		if manualOpen {
			return Line{Open: true, Text: "Open until " + FormatCloseTime(closeTime)}
		}
		return Line{Open: false, Text: closedNowLine}
	}

	st := w.Evaluate(now)
	switch st.State {
	case OpenNow:
		return Line{Open: true, Text: "Open now · until " + Format12h(st.Until)}
	case ClosedUntilNext:
		return Line{Open: false, Text: "Closed · next " + Format12h(st.Next.Start) + "–" + Format12h(st.Next.End)}
	default:
		return Line{Open: false, Text: closedNowLine}
	}
}

// Summary is today's one-line hours summary. It always follows the schedule.
func Summary(w Weekly, now time.Time) string {
	st := w.Evaluate(now)
	switch st.State {
	case ClosedAllDay:
		return closedAllDayShort
	case OpenNow:
		return "Open now · until " + Format12h(st.Until)
	case ClosedUntilNext:
		return "Closed · next " + Format12h(st.Next.Start) + "–" + Format12h(st.Next.End)
	default:
		return closedRestOfDay
	}
}

// Hero holds the hero panel texts for an open or closed board.
type Hero struct {
	Status  string `json:"status"`
	Welcome string `json:"welcome"`
	Kiosk   string `json:"kiosk"`
}

func HeroFor(open bool) Hero {
	if open {
		return Hero{
			Status:  "OPEN",
			Welcome: "Open to all students — come on in, y'all!",
			Kiosk:   "Please check in at the kiosk inside",
		}
	}
	return Hero{
		Status:  "CLOSED",
		Welcome: "We’re closed right now",
		Kiosk:   closedNowLine,
	}
}

// Slot is one session in the hours list.
type Slot struct {
	Label string `json:"label"`
	Time  string `json:"time"`
	Now   bool   `json:"now"`
}

// Row is one day in the hours list.
type Row struct {
	Day    string `json:"day"`
	Today  bool   `json:"today"`
	Closed bool   `json:"closed"`
	Slots  []Slot `json:"slots"`
}

var slotLabels = []string{"Morning", "Afternoon"}

// Rows builds the hours list for the display days. Only today's sessions can be marked
// as happening now.
func Rows(w Weekly, now time.Time) []Row {
	nowMin := MinutesSinceMidnight(now)
	rows := make([]Row, 0, len(DisplayOrder))
	for _, day := range DisplayOrder {
		sessions := w[day]
		row := Row{
			Day:    day.String(),
			Today:  day == now.Weekday(),
			Closed: sessions == nil,
		}
		for i, session := range sessions {
			label := "Session"
			if i < len(slotLabels) {
				label = slotLabels[i]
			}
			row.Slots = append(row.Slots, Slot{
				Label: label,
				Time:  Format12h(session.Start) + " – " + Format12h(session.End),
				Now:   row.Today && session.Contains(nowMin),
			})
		}
		rows = append(rows, row)
	}
	return rows
}
