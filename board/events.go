package board

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/aouyang1/labboard/metrics"
	"github.com/aouyang1/labboard/slideshow"
	"github.com/aouyang1/labboard/store"
)

var errUnknownEvent = errors.New("unknown event")

type EventKind int

const (
	EventSnapshot EventKind = iota
	EventRotate
	EventHoldFired
	EventReloadFired
	EventNext
	EventPrev
	EventGoto
	EventSwipe
	EventKey
	EventAdminTap
	EventAdminPress
	EventAdminRelease
	EventAdminClose
	EventAdminForm
	EventSaveForm
	EventReset
	EventQuickStatus
	EventSetSlides
)

var eventNames = map[EventKind]string{
	EventSnapshot:     "snapshot",
	EventRotate:       "rotate",
	EventHoldFired:    "hold-fired",
	EventReloadFired:  "reload-fired",
	EventNext:         "next",
	EventPrev:         "prev",
	EventGoto:         "goto",
	EventSwipe:        "swipe",
	EventKey:          "key",
	EventAdminTap:     "admin-tap",
	EventAdminPress:   "admin-press",
	EventAdminRelease: "admin-release",
	EventAdminClose:   "admin-close",
	EventAdminForm:    "admin-form",
	EventSaveForm:     "save-form",
	EventReset:        "reset",
	EventQuickStatus:  "quick-status",
	EventSetSlides:    "set-slides",
}

func (k EventKind) String() string {
	if name, ok := eventNames[k]; ok {
		return name
	}
	return fmt.Sprintf("event(%d)", int(k))
}

// Event is a request for the board loop. Only the fields relevant to Kind are read.
type Event struct {
	Kind EventKind

	Index   int
	DX, DY  float64
	Key     string
	Editing bool
	Status  store.Status
	Form    store.SettingsForm
	Slides  []string

	generation uint64
	reply      chan Result
}

// Result is the board state after an event was handled.
type Result struct {
	Display Display
	// AdminOpened is set when the event opened the admin modal.
	AdminOpened bool
	// Form holds the admin form for EventAdminForm and gestures that open the modal.
	Form *store.SettingsForm
	// Moved is set when the event changed the current slide.
	Moved bool
	Err   error
}

type handlerFunc func(b *Board, ev Event) Result

func dispatchTable() map[EventKind]handlerFunc {
	return map[EventKind]handlerFunc{
		EventSnapshot:     func(*Board, Event) Result { return Result{} },
		EventRotate:       (*Board).onRotate,
		EventHoldFired:    (*Board).onHoldFired,
		EventReloadFired:  (*Board).onReloadFired,
		EventNext:         (*Board).onNext,
		EventPrev:         (*Board).onPrev,
		EventGoto:         (*Board).onGoto,
		EventSwipe:        (*Board).onSwipe,
		EventKey:          (*Board).onKey,
		EventAdminTap:     (*Board).onAdminTap,
		EventAdminPress:   (*Board).onAdminPress,
		EventAdminRelease: (*Board).onAdminRelease,
		EventAdminClose:   (*Board).onAdminClose,
		EventAdminForm:    (*Board).onAdminForm,
		EventSaveForm:     (*Board).onSaveForm,
		EventReset:        (*Board).onReset,
		EventQuickStatus:  (*Board).onQuickStatus,
		EventSetSlides:    (*Board).onSetSlides,
	}
}

func (b *Board) onRotate(ev Event) Result {
	if !b.rotator.Tick(ev.generation) {
		slog.Debug("stale rotation tick dropped", "generation", ev.generation)
		return Result{}
	}
	metrics.SlideAdvances.WithLabelValues("auto").Inc()
	b.renderSlides()
	b.publishState()
	return Result{Moved: true}
}

// step moves the carousel by hand and restarts auto rotation.
func (b *Board) step(cause string, move func() string) Result {
	before := b.rotator.Index()
	move()
	b.restartRotation()
	metrics.SlideAdvances.WithLabelValues(cause).Inc()
	b.publishState()
	return Result{Moved: b.rotator.Index() != before}
}

func (b *Board) onNext(Event) Result {
	return b.step("manual", b.rotator.Next)
}

func (b *Board) onPrev(Event) Result {
	return b.step("manual", b.rotator.Prev)
}

func (b *Board) onGoto(ev Event) Result {
	return b.step("dot", func() string { return b.rotator.Show(ev.Index) })
}

func (b *Board) onSwipe(ev Event) Result {
	switch slideshow.ClassifySwipe(ev.DX, ev.DY) {
	case slideshow.Forward:
		return b.step("swipe", b.rotator.Next)
	case slideshow.Backward:
		return b.step("swipe", b.rotator.Prev)
	}
	return Result{}
}

func (b *Board) onKey(ev Event) Result {
	if ev.Editing || b.adminOpen {
		return Result{}
	}
	switch slideshow.ClassifyKey(ev.Key) {
	case slideshow.Forward:
		return b.step("key", b.rotator.Next)
	case slideshow.Backward:
		return b.step("key", b.rotator.Prev)
	}
	return Result{}
}

func (b *Board) onAdminTap(Event) Result {
	if !b.admin.Tap() {
		return Result{}
	}
	return b.openAdmin("triple-tap")
}

func (b *Board) onAdminPress(Event) Result {
	b.admin.Press()
	return Result{}
}

func (b *Board) onAdminRelease(Event) Result {
	b.admin.Release()
	return Result{}
}

func (b *Board) onHoldFired(ev Event) Result {
	if !b.admin.HoldFired(ev.generation) {
		return Result{}
	}
	return b.openAdmin("long-press")
}

// openAdmin fills the form from persisted settings and shows the modal.
func (b *Board) openAdmin(trigger string) Result {
	form := store.FormFromSettings(b.store.Load())
	b.adminOpen = true
	b.display.AdminOpen = true
	metrics.AdminOpens.WithLabelValues(trigger).Inc()
	slog.Info("admin opened", "trigger", trigger)

	b.publish(Message{Type: MessageAdmin, Form: &form})
	b.publishState()
	return Result{AdminOpened: true, Form: &form}
}

func (b *Board) closeAdmin() {
	b.adminOpen = false
	b.display.AdminOpen = false
}

func (b *Board) onAdminClose(Event) Result {
	b.closeAdmin()
	b.publishState()
	return Result{}
}

func (b *Board) onAdminForm(Event) Result {
	form := store.FormFromSettings(b.store.Load())
	return Result{Form: &form}
}

func (b *Board) onSaveForm(ev Event) Result {
	next := store.ApplyForm(b.store.Load(), ev.Form)
	if err := b.store.Save(next); err != nil {
		metrics.SettingsSaves.WithLabelValues("form", "error").Inc()
		return Result{Err: fmt.Errorf("saving settings: %w", err)}
	}
	metrics.SettingsSaves.WithLabelValues("form", "ok").Inc()

	b.apply(next)
	b.closeAdmin()
	b.publishState()
	return Result{}
}

func (b *Board) onReset(Event) Result {
	defaults, err := b.store.Reset()
	if err != nil {
		metrics.SettingsSaves.WithLabelValues("reset", "error").Inc()
		return Result{Err: fmt.Errorf("resetting settings: %w", err)}
	}
	metrics.SettingsSaves.WithLabelValues("reset", "ok").Inc()

	b.apply(defaults)
	if b.adminOpen {
		form := store.FormFromSettings(defaults)
		b.publish(Message{Type: MessageAdmin, Form: &form})
		return Result{Form: &form}
	}
	return Result{}
}

// onQuickStatus persists a manual OPEN or CLOSED. It does not touch autoStatus.
func (b *Board) onQuickStatus(ev Event) Result {
	if ev.Status != store.StatusOpen && ev.Status != store.StatusClosed {
		return Result{Err: fmt.Errorf("invalid status %q", ev.Status)}
	}
	next := b.store.Load()
	next.Status = ev.Status
	if err := b.store.Save(next); err != nil {
		metrics.SettingsSaves.WithLabelValues("quick", "error").Inc()
		return Result{Err: fmt.Errorf("saving status: %w", err)}
	}
	metrics.SettingsSaves.WithLabelValues("quick", "ok").Inc()

	b.apply(next)
	return Result{}
}

// onReloadFired re-runs boot. The board re-applies stored settings, which re-arms the
// timer, then tells displays to reload the page.
func (b *Board) onReloadFired(ev Event) Result {
	if ev.generation != b.reloadGeneration {
		return Result{}
	}
	b.reload = nil
	slog.Info("auto reload")
	b.apply(b.store.Load())
	b.publish(Message{Type: MessageReload})
	return Result{}
}

func (b *Board) onSetSlides(ev Event) Result {
	if slices.Equal(b.slides, ev.Slides) {
		return Result{}
	}
	slog.Info("slide order changed", "from", b.slides, "to", ev.Slides)
	b.slides = slices.Clone(ev.Slides)
	b.applyCarousel(b.settings)
	b.publishState()
	return Result{}
}

func (b *Board) Snapshot(ctx context.Context) (Display, error) {
	res, err := b.Dispatch(ctx, Event{Kind: EventSnapshot})
	return res.Display, err
}

func (b *Board) Next(ctx context.Context) (Result, error) {
	return b.Dispatch(ctx, Event{Kind: EventNext})
}

func (b *Board) Prev(ctx context.Context) (Result, error) {
	return b.Dispatch(ctx, Event{Kind: EventPrev})
}

func (b *Board) Goto(ctx context.Context, index int) (Result, error) {
	return b.Dispatch(ctx, Event{Kind: EventGoto, Index: index})
}

func (b *Board) Swipe(ctx context.Context, dx, dy float64) (Result, error) {
	return b.Dispatch(ctx, Event{Kind: EventSwipe, DX: dx, DY: dy})
}

// Key handles a key press. editing reports whether focus is in a text field.
func (b *Board) Key(ctx context.Context, key string, editing bool) (Result, error) {
	return b.Dispatch(ctx, Event{Kind: EventKey, Key: key, Editing: editing})
}

func (b *Board) AdminTap(ctx context.Context) (Result, error) {
	return b.Dispatch(ctx, Event{Kind: EventAdminTap})
}

func (b *Board) AdminPress(ctx context.Context) (Result, error) {
	return b.Dispatch(ctx, Event{Kind: EventAdminPress})
}

func (b *Board) AdminRelease(ctx context.Context) (Result, error) {
	return b.Dispatch(ctx, Event{Kind: EventAdminRelease})
}

func (b *Board) CloseAdmin(ctx context.Context) (Result, error) {
	return b.Dispatch(ctx, Event{Kind: EventAdminClose})
}

func (b *Board) AdminForm(ctx context.Context) (store.SettingsForm, error) {
	res, err := b.Dispatch(ctx, Event{Kind: EventAdminForm})
	if err != nil {
		return store.SettingsForm{}, err
	}
	return *res.Form, nil
}

func (b *Board) SaveForm(ctx context.Context, form store.SettingsForm) (Result, error) {
	return b.Dispatch(ctx, Event{Kind: EventSaveForm, Form: form})
}

func (b *Board) Reset(ctx context.Context) (Result, error) {
	return b.Dispatch(ctx, Event{Kind: EventReset})
}

func (b *Board) QuickStatus(ctx context.Context, status store.Status) (Result, error) {
	return b.Dispatch(ctx, Event{Kind: EventQuickStatus, Status: status})
}

// SetSlides replaces the slide order after the page was recomposed.
func (b *Board) SetSlides(ctx context.Context, order []string) error {
	_, err := b.Dispatch(ctx, Event{Kind: EventSetSlides, Slides: order})
	return err
}
