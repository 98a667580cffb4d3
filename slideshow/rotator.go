// Package slideshow composes the board page and rotates through its slides
package slideshow

import (
	"slices"
	"time"

	"github.com/jonboulle/clockwork"
)

const (
	// MinInterval is the shortest allowed rotation interval.
	MinInterval = 5 * time.Second

	fallbackSlide = "status"
)

// Rotator tracks the enabled slides and the current one. It is not safe for concurrent
// use: the owner calls it from a single goroutine, and the rotation ticker only reports
// ticks through onTick so the owner can apply them on that same goroutine.
type Rotator struct {
	clock  clockwork.Clock
	onTick func(generation uint64)

	order   []string
	enabled []string
	index   int

	ticker     clockwork.Ticker
	stop       chan struct{}
	interval   time.Duration
	generation uint64
}

// NewRotator creates a stopped rotator. onTick is invoked from the ticker goroutine with
// the generation that armed it; pass it back to Tick.
func NewRotator(clock clockwork.Clock, onTick func(generation uint64)) *Rotator {
	return &Rotator{
		clock:  clock,
		onTick: onTick,
	}
}

// Configure replaces the slide list and resets to the first enabled slide. A slide is
// enabled unless visible reports false; if none are, only the status slide is shown.
func (r *Rotator) Configure(order []string, visible func(key string) bool) {
	r.order = slices.Clone(order)
	r.enabled = r.enabled[:0]
	for _, key := range r.order {
		if visible(key) {
			r.enabled = append(r.enabled, key)
		}
	}
	if len(r.enabled) == 0 {
		r.enabled = []string{fallbackSlide}
	}
	r.index = 0
}

// Show moves to slide i, wrapping in both directions.
func (r *Rotator) Show(i int) string {
	n := len(r.enabled)
	if n == 0 {
		return ""
	}
	r.index = ((i % n) + n) % n
	return r.enabled[r.index]
}

func (r *Rotator) Next() string { return r.Show(r.index + 1) }
func (r *Rotator) Prev() string { return r.Show(r.index - 1) }

// Current returns the key of the visible slide, or "" before Configure.
func (r *Rotator) Current() string {
	if len(r.enabled) == 0 {
		return ""
	}
	return r.enabled[r.index]
}

func (r *Rotator) Index() int { return r.index }

func (r *Rotator) Order() []string { return slices.Clone(r.order) }

func (r *Rotator) Enabled() []string { return slices.Clone(r.enabled) }

// Start (re)arms rotation every max(5, seconds) seconds. Nothing is armed when at most
// one slide is enabled.
func (r *Rotator) Start(seconds float64) {
	r.Stop()

	interval := max(MinInterval, time.Duration(seconds*float64(time.Second)))
	if len(r.enabled) <= 1 {
		return
	}

	r.generation++
	generation := r.generation
	ticker := r.clock.NewTicker(interval)
	stop := make(chan struct{})

	r.ticker = ticker
	r.stop = stop
	r.interval = interval

	go func() {
		for {
			select {
			case <-ticker.Chan():
				r.onTick(generation)
			case <-stop:
				return
			}
		}
	}()
}

// Stop disarms rotation. Ticks already in flight are rejected by Tick.
func (r *Rotator) Stop() {
	if r.ticker == nil {
		return
	}
	r.ticker.Stop()
	close(r.stop)
	r.ticker = nil
	r.stop = nil
	r.interval = 0
	r.generation++
}

// Tick advances to the next slide if generation belongs to the armed ticker.
func (r *Rotator) Tick(generation uint64) bool {
	if r.ticker == nil || generation != r.generation {
		return false
	}
	r.Next()
	return true
}

// Running reports whether rotation is armed.
func (r *Rotator) Running() bool { return r.ticker != nil }

// Interval is the armed rotation interval, zero when stopped.
func (r *Rotator) Interval() time.Duration { return r.interval }

// Dot is one navigation dot under the slides.
type Dot struct {
	Key    string `json:"key"`
	Active bool   `json:"active"`
}

func (r *Rotator) Dots() []Dot {
	dots := make([]Dot, len(r.enabled))
	for i, key := range r.enabled {
		dots[i] = Dot{Key: key, Active: i == r.index}
	}
	return dots
}
