// Package gesture recognises the hidden admin gestures: a triple tap or a long press on
// the admin trigger area.
package gesture

import (
	"time"

	"github.com/jonboulle/clockwork"
)

const (
	TripleTapWindow = 1200 * time.Millisecond
	LongPress       = 1200 * time.Millisecond
	tapsToOpen      = 3
)

type State int

const (
	Idle State = iota
	TapArmed
	HoldArmed
)

func (s State) String() string {
	switch s {
	case TapArmed:
		return "tap-armed"
	case HoldArmed:
		return "hold-armed"
	default:
		return "idle"
	}
}

// AdminTrigger tracks taps and the long-press timer. Taps and holds are independent:
// either may open the admin modal. Like the slide rotator it is driven from a single
// goroutine; the hold timer only reports through onHold.
type AdminTrigger struct {
	clock  clockwork.Clock
	onHold func(generation uint64)

	taps       []time.Time
	hold       clockwork.Timer
	generation uint64
}

func NewAdminTrigger(clock clockwork.Clock, onHold func(generation uint64)) *AdminTrigger {
	return &AdminTrigger{
		clock:  clock,
		onHold: onHold,
	}
}

// Tap records a tap and reports whether it completed a triple tap. Taps older than the
// window are forgotten; a completed triple tap clears the history.
func (a *AdminTrigger) Tap() bool {
	now := a.clock.Now()
	a.taps = append(a.taps, now)
	a.pruneTaps(now)

	if len(a.taps) >= tapsToOpen {
		a.taps = nil
		return true
	}
	return false
}

func (a *AdminTrigger) pruneTaps(now time.Time) {
	kept := a.taps[:0]
	for _, t := range a.taps {
		if now.Sub(t) <= TripleTapWindow {
			kept = append(kept, t)
		}
	}
	a.taps = kept
}

// Press arms the long-press timer, replacing any timer already armed.
func (a *AdminTrigger) Press() {
	a.cancelHold()
	a.generation++
	generation := a.generation
	a.hold = a.clock.AfterFunc(LongPress, func() {
		a.onHold(generation)
	})
}

// Release disarms the long-press timer (pointer up, cancel or leave).
func (a *AdminTrigger) Release() {
	a.cancelHold()
}

// HoldFired reports whether a timer callback with generation should open the modal.
// Callbacks from cancelled or replaced timers are ignored.
func (a *AdminTrigger) HoldFired(generation uint64) bool {
	if a.hold == nil || generation != a.generation {
		return false
	}
	a.hold = nil
	return true
}

func (a *AdminTrigger) cancelHold() {
	if a.hold == nil {
		return
	}
	a.hold.Stop()
	a.hold = nil
	a.generation++
}

// State reports the recogniser state. A pending hold takes precedence over recent taps.
func (a *AdminTrigger) State() State {
	if a.hold != nil {
		return HoldArmed
	}
	a.pruneTaps(a.clock.Now())
	if len(a.taps) > 0 {
		return TapArmed
	}
	return Idle
}
