// Package board owns the kiosk's UI state: the current settings, slide rotation, clock and
// timers. All state changes run on one goroutine (Run); everything else, including timer
// callbacks and HTTP handlers, sends events to it.
package board

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"time"

	"github.com/aouyang1/labboard/gesture"
	"github.com/aouyang1/labboard/metrics"
	"github.com/aouyang1/labboard/schedule"
	"github.com/aouyang1/labboard/slideshow"
	"github.com/aouyang1/labboard/store"
	"github.com/jonboulle/clockwork"
)

const tickInterval = time.Second

// ErrStopped is returned when events are sent to a board that is not running.
var ErrStopped = errors.New("board stopped")

// SettingsStore persists the board settings.
type SettingsStore interface {
	Load() store.Settings
	Save(store.Settings) error
	Reset() (store.Settings, error)
}

type Options struct {
	Clock clockwork.Clock
	// Hours defaults to schedule.LabHours.
	Hours schedule.Weekly
	// Location is used for the clock and the schedule. Defaults to time.Local.
	Location *time.Location
	// Slides is the slide order of the composed page.
	Slides []string
	// Publish receives every message meant for displays. It must not block.
	Publish func(Message)
}

type Board struct {
	clock    clockwork.Clock
	store    SettingsStore
	hours    schedule.Weekly
	location *time.Location
	publish  func(Message)

	settings  store.Settings
	slides    []string
	rotator   *slideshow.Rotator
	admin     *gesture.AdminTrigger
	adminOpen bool
	display   Display

	reload           clockwork.Timer
	reloadGeneration uint64

	handlers map[EventKind]handlerFunc
	events   chan Event
	done     chan struct{}
}

func New(settings SettingsStore, opts Options) *Board {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Hours == nil {
		opts.Hours = schedule.LabHours()
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Publish == nil {
		opts.Publish = func(Message) {}
	}

	b := &Board{
		clock:    opts.Clock,
		store:    settings,
		hours:    opts.Hours,
		location: opts.Location,
		publish:  opts.Publish,
		slides:   slices.Clone(opts.Slides),
		events:   make(chan Event),
		done:     make(chan struct{}),
	}
	b.rotator = slideshow.NewRotator(b.clock, func(generation uint64) {
		b.post(Event{Kind: EventRotate, generation: generation})
	})
	b.admin = gesture.NewAdminTrigger(b.clock, func(generation uint64) {
		b.post(Event{Kind: EventHoldFired, generation: generation})
	})
	b.handlers = dispatchTable()

	return b
}

// Run loads and applies the stored settings, then processes events until ctx is done.
func (b *Board) Run(ctx context.Context) {
	defer close(b.done)

	b.apply(b.store.Load())
	b.tick()

	ticker := b.clock.NewTicker(tickInterval)
	defer ticker.Stop()
	defer b.stopTimers()

	slog.Info("board running", "slides", b.slides)
	for {
		select {
		case <-ticker.Chan():
			b.tick()
		case ev := <-b.events:
			b.handle(ev)
		case <-ctx.Done():
			slog.Info("board stopped")
			return
		}
	}
}

// Dispatch sends ev to the board loop and waits for the outcome.
func (b *Board) Dispatch(ctx context.Context, ev Event) (Result, error) {
	ev.reply = make(chan Result, 1)

	select {
	case b.events <- ev:
	case <-b.done:
		return Result{}, ErrStopped
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}

	select {
	case res := <-ev.reply:
		return res, res.Err
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// post delivers a timer event without waiting for a reply.
func (b *Board) post(ev Event) {
	select {
	case b.events <- ev:
	case <-b.done:
	}
}

func (b *Board) handle(ev Event) {
	var res Result
	handler, ok := b.handlers[ev.Kind]
	if !ok {
		res.Err = errUnknownEvent
	} else {
		res = handler(b, ev)
	}

	res.Display = b.display
	if ev.reply != nil {
		ev.reply <- res
	}
}

func (b *Board) now() time.Time {
	return b.clock.Now().In(b.location)
}

// tick refreshes the clock and the schedule driven texts, once a second.
func (b *Board) tick() {
	now := b.now()
	b.renderClock(now)
	wasOpen := b.display.Open
	b.renderStatus(now)
	if wasOpen != b.display.Open {
		slog.Info("board status changed", "open", b.display.Open, "line", b.display.HoursLine)
	}
	b.updateOpenGauge()
	b.publishState()
}

// apply makes s the current settings and pushes them to every part of the display.
func (b *Board) apply(s store.Settings) {
	b.settings = s.Clone()

	b.display.Title = s.Title
	b.display.Subtitle = s.Subtitle
	if s.HeroImageURL != "" {
		b.display.HeroPhoto = s.HeroImageURL
	}
	b.renderStatus(b.now())
	b.updateOpenGauge()
	b.display.Location = s.Location

	b.display.BannerVisible = s.BannerVisible && s.BannerText != ""
	b.display.BannerText = ""
	if b.display.BannerVisible {
		b.display.BannerText = s.BannerText
	}

	b.display.MetaRefresh = refreshSeconds(s.RefreshMinutes)
	b.armReload(s.RefreshMinutes)
	b.applyCarousel(s)

	b.publishState()
}

func (b *Board) applyCarousel(s store.Settings) {
	b.rotator.Configure(b.slides, s.SlideVisible)
	b.rotator.Stop()
	if s.RotateEnabled {
		b.rotator.Start(s.RotateSeconds)
	}
	b.renderSlides()
}

// restartRotation gives manual navigation a full interval before auto advance resumes.
func (b *Board) restartRotation() {
	if b.settings.RotateEnabled {
		b.rotator.Start(b.settings.RotateSeconds)
	}
	b.renderSlides()
}

// armReload replaces the auto reload timer. Zero or negative minutes disable it.
func (b *Board) armReload(minutes float64) {
	if b.reload != nil {
		b.reload.Stop()
		b.reload = nil
	}
	b.reloadGeneration++

	seconds := refreshSeconds(minutes)
	if seconds <= 0 {
		return
	}
	generation := b.reloadGeneration
	d := time.Duration(store.ClampRefreshMinutes(minutes) * float64(time.Minute))
	b.reload = b.clock.AfterFunc(d, func() {
		b.post(Event{Kind: EventReloadFired, generation: generation})
	})
}

func (b *Board) stopTimers() {
	b.rotator.Stop()
	b.admin.Release()
	if b.reload != nil {
		b.reload.Stop()
		b.reload = nil
	}
}

func (b *Board) publishState() {
	snapshot := b.display
	b.publish(Message{Type: MessageState, Display: &snapshot})
}

func (b *Board) updateOpenGauge() {
	if b.display.Open {
		metrics.BoardOpen.Set(1)
	} else {
		metrics.BoardOpen.Set(0)
	}
}
