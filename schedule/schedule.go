// Package schedule evaluates the lab's weekly opening hours
package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Session is one opening window, half open: [Start, End).
type Session struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Weekly maps a weekday to its sessions. A nil or missing entry means closed all day.
type Weekly map[time.Weekday][]Session

// DisplayOrder is the order of days in the hours list.
var DisplayOrder = []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday}

// LabHours returns the lab's compiled-in hours.
func LabHours() Weekly {
	return Weekly{
		time.Monday:    nil,
		time.Tuesday:   {{"09:00", "12:30"}, {"13:00", "16:00"}},
		time.Wednesday: {{"09:00", "12:30"}, {"13:00", "16:00"}},
		time.Thursday:  nil,
		time.Friday:    {{"09:00", "12:30"}, {"13:00", "14:30"}},
	}
}

type State int

const (
	// ClosedAllDay is returned for days without sessions.
	ClosedAllDay State = iota
	OpenNow
	ClosedUntilNext
	ClosedRestOfDay
)

func (s State) String() string {
	switch s {
	case ClosedAllDay:
		return "closed_all_day"
	case OpenNow:
		return "open_now"
	case ClosedUntilNext:
		return "closed_until_next"
	case ClosedRestOfDay:
		return "closed_rest_of_day"
	default:
		return "unknown"
	}
}

// Status is the outcome of evaluating the schedule at one instant.
type Status struct {
	State State
	// Until is the end of the current session when State is OpenNow.
	Until string
	// Next is the upcoming session when State is ClosedUntilNext.
	Next *Session
}

func (s Status) Open() bool {
	return s.State == OpenNow
}

// Evaluate determines whether the lab is open at now, using now's location for the
// weekday and minute of day. Sessions with unparsable times are skipped.
func (w Weekly) Evaluate(now time.Time) Status {
	sessions := w[now.Weekday()]
	if sessions == nil {
		return Status{State: ClosedAllDay}
	}

	nowMin := MinutesSinceMidnight(now)
	var next *Session
	for _, session := range sessions {
		start, end, err := session.Minutes()
		if err != nil {
			continue
		}
		if nowMin >= start && nowMin < end {
			return Status{State: OpenNow, Until: session.End}
		}
		if nowMin < start && next == nil {
			s := session
			next = &s
		}
	}

	if next != nil {
		return Status{State: ClosedUntilNext, Next: next}
	}
	return Status{State: ClosedRestOfDay}
}

// Minutes converts the session bounds to minutes since midnight.
func (s Session) Minutes() (start, end int, err error) {
	start, err = ParseClock(s.Start)
	if err != nil {
		return 0, 0, err
	}
	end, err = ParseClock(s.End)
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

// Contains reports whether minute falls inside the session.
func (s Session) Contains(minute int) bool {
	start, end, err := s.Minutes()
	return err == nil && minute >= start && minute < end
}

// MinutesSinceMidnight returns the wall-clock minute of day of t.
func MinutesSinceMidnight(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// ParseClock parses an "HH:MM" time of day into minutes since midnight.
func ParseClock(value string) (int, error) {
	h, m, ok := strings.Cut(strings.TrimSpace(value), ":")
	if !ok {
		return 0, fmt.Errorf("invalid time of day %q", value)
	}
	hour, err := strconv.Atoi(h)
	if err != nil {
		return 0, fmt.Errorf("invalid hour in %q: %w", value, err)
	}
	minute, err := strconv.Atoi(m)
	if err != nil {
		return 0, fmt.Errorf("invalid minute in %q: %w", value, err)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("time of day out of range %q", value)
	}
	return hour*60 + minute, nil
}
