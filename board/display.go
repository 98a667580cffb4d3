package board

import (
	"math"
	"time"

	"github.com/aouyang1/labboard/schedule"
	"github.com/aouyang1/labboard/slideshow"
	"github.com/aouyang1/labboard/store"
)

const (
	clockLayout    = "03:04 PM"
	heroDateLayout = "Mon, Jan 2"
)

// Display is what the kiosk shows, keyed by the page's element ids. A published Display
// is never modified afterwards.
type Display struct {
	Clock    string `json:"clock"`
	HeroTime string `json:"heroTime"`
	HeroDate string `json:"heroDate"`

	Title     string `json:"boardTitle"`
	Subtitle  string `json:"boardSubtitle"`
	HeroPhoto string `json:"heroPhoto"`
	Location  string `json:"locationLine"`

	Open         bool           `json:"open"`
	Hero         schedule.Hero  `json:"hero"`
	HoursLine    string         `json:"hoursLine"`
	HoursSummary string         `json:"hoursSummary"`
	Hours        []schedule.Row `json:"hoursList"`

	BannerVisible bool   `json:"bannerVisible"`
	BannerText    string `json:"bannerText"`

	// MetaRefresh is the page refresh in seconds, 0 when disabled.
	MetaRefresh int `json:"metaRefresh"`

	Slide         string          `json:"slide"`
	SlideIndex    int             `json:"slideIndex"`
	Dots          []slideshow.Dot `json:"dots"`
	RotateSeconds float64         `json:"rotateSeconds"`

	AdminOpen bool `json:"adminOpen"`
}

// MessageType tells a display what to do with a message.
type MessageType string

const (
	MessageState  MessageType = "state"
	MessageReload MessageType = "reload"
	MessageAdmin  MessageType = "admin"
)

// Message is pushed to connected displays.
type Message struct {
	Type    MessageType         `json:"type"`
	Display *Display            `json:"display,omitempty"`
	Form    *store.SettingsForm `json:"form,omitempty"`
}

// refreshSeconds converts the refresh setting to whole seconds.
func refreshSeconds(minutes float64) int {
	if math.IsNaN(minutes) || minutes <= 0 {
		return 0
	}
	return int(math.Floor(minutes * 60))
}

func (b *Board) renderClock(now time.Time) {
	b.display.Clock = now.Format(clockLayout)
	b.display.HeroTime = now.Format(clockLayout)
	b.display.HeroDate = now.Format(heroDateLayout)
}

// renderStatus re-evaluates status, the hours summary and the hours list.
func (b *Board) renderStatus(now time.Time) {
	s := b.settings
	line := schedule.StatusLine(b.hours, now, s.AutoStatus, s.IsOpen(), s.CloseTime)

	b.display.Open = line.Open
	b.display.Hero = schedule.HeroFor(line.Open)
	b.display.HoursLine = line.Text
	b.display.HoursSummary = schedule.Summary(b.hours, now)
	b.display.Hours = schedule.Rows(b.hours, now)
}

func (b *Board) renderSlides() {
	b.display.Slide = b.rotator.Current()
	b.display.SlideIndex = b.rotator.Index()
	b.display.Dots = b.rotator.Dots()
	b.display.RotateSeconds = b.rotator.Interval().Seconds()
}
