package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/aouyang1/labboard/util"
)

// SettingsForm mirrors the admin modal fields. Numeric fields are kept as the raw text the
// admin typed so coercion rules apply uniformly.
type SettingsForm struct {
	Title          string          `json:"title"`
	Subtitle       string          `json:"subtitle"`
	Location       string          `json:"location"`
	CloseTime      string          `json:"closeTime"`
	RefreshMinutes string          `json:"refreshMinutes"`
	BannerText     string          `json:"bannerText"`
	BannerVisible  bool            `json:"bannerVisible"`
	AutoStatus     bool            `json:"autoStatus"`
	HeroImageURL   *string         `json:"heroImageUrl,omitempty"`
	RotateEnabled  bool            `json:"rotateEnabled"`
	RotateSeconds  string          `json:"rotateSeconds"`
	Slides         map[string]bool `json:"slides"`
}

// UnmarshalJSON accepts refreshMinutes and rotateSeconds as either JSON numbers or text.
func (f *SettingsForm) UnmarshalJSON(data []byte) error {
	type plain SettingsForm
	aux := struct {
		*plain
		RefreshMinutes json.RawMessage `json:"refreshMinutes"`
		RotateSeconds  json.RawMessage `json:"rotateSeconds"`
	}{plain: (*plain)(f)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	var err error
	if f.RefreshMinutes, err = numericText(aux.RefreshMinutes); err != nil {
		return fmt.Errorf("refreshMinutes: %w", err)
	}
	if f.RotateSeconds, err = numericText(aux.RotateSeconds); err != nil {
		return fmt.Errorf("rotateSeconds: %w", err)
	}
	return nil
}

// numericText returns a JSON string as is and a JSON number as its literal text.
func numericText(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}
	if raw[0] == '"' {
		var text string
		err := json.Unmarshal(raw, &text)
		return text, err
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", errors.New("must be a number or numeric text")
	}
	return n.String(), nil
}

// FormFromSettings fills the admin form from stored settings. Every slide checkbox uses
// the same default: checked unless explicitly disabled.
func FormFromSettings(s Settings) SettingsForm {
	hero := s.HeroImageURL
	form := SettingsForm{
		Title:          s.Title,
		Subtitle:       s.Subtitle,
		Location:       s.Location,
		CloseTime:      s.CloseTime,
		RefreshMinutes: formatNumber(s.RefreshMinutes),
		BannerText:     s.BannerText,
		BannerVisible:  s.BannerVisible,
		AutoStatus:     s.AutoStatus,
		HeroImageURL:   &hero,
		RotateEnabled:  s.RotateEnabled,
		RotateSeconds:  formatNumber(s.RotateSeconds),
		Slides:         make(map[string]bool, len(util.KnownSlides)),
	}
	for _, key := range util.KnownSlides {
		form.Slides[key] = s.SlideVisible(key)
	}
	return form
}

// ApplyForm returns base updated with the submitted form. A nil HeroImageURL leaves the
// stored URL untouched. Slide keys missing from the form default to visible.
func ApplyForm(base Settings, form SettingsForm) Settings {
	defaults := DefaultSettings()
	s := base.Clone()

	s.Title = orDefault(strings.TrimSpace(form.Title), defaults.Title)
	s.Subtitle = orDefault(strings.TrimSpace(form.Subtitle), defaults.Subtitle)
	s.Location = orDefault(strings.TrimSpace(form.Location), defaults.Location)
	s.CloseTime = orDefault(form.CloseTime, defaults.CloseTime)
	s.RefreshMinutes = float64(CoerceInt(form.RefreshMinutes, int(defaults.RefreshMinutes), MinRefreshMinutes))
	s.BannerText = form.BannerText
	s.BannerVisible = form.BannerVisible
	s.AutoStatus = form.AutoStatus
	if form.HeroImageURL != nil {
		s.HeroImageURL = strings.TrimSpace(*form.HeroImageURL)
	}

	s.RotateEnabled = form.RotateEnabled
	s.RotateSeconds = float64(CoerceInt(form.RotateSeconds, int(defaults.RotateSeconds), MinRotateSeconds))

	s.Slides = make(map[string]bool, len(util.KnownSlides))
	anyVisible := false
	for _, key := range util.KnownSlides {
		visible, ok := form.Slides[key]
		if !ok {
			visible = true
		}
		s.Slides[key] = visible
		anyVisible = anyVisible || visible
	}
	if !anyVisible {
		s.Slides["status"] = true
	}

	return s
}

// CoerceInt parses the leading integer of raw. Empty or unparsable input falls back to
// def; the result is never below floor.
func CoerceInt(raw string, def, floor int) int {
	n, ok := parseLeadingInt(raw)
	if !ok {
		n = def
	}
	return max(floor, n)
}

// ClampRotateSeconds applies the rotation minimum to a stored value.
func ClampRotateSeconds(seconds float64) float64 {
	if math.IsNaN(seconds) || seconds < MinRotateSeconds {
		return MinRotateSeconds
	}
	return seconds
}

// ClampRefreshMinutes applies the refresh minimum to a stored value.
func ClampRefreshMinutes(minutes float64) float64 {
	if math.IsNaN(minutes) || minutes < MinRefreshMinutes {
		return MinRefreshMinutes
	}
	return minutes
}

func parseLeadingInt(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	end := 0
	if end < len(raw) && (raw[end] == '-' || raw[end] == '+') {
		end++
	}
	digits := end
	for end < len(raw) && raw[end] >= '0' && raw[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	n, err := strconv.Atoi(raw[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

func orDefault(value, def string) string {
	if value == "" {
		return def
	}
	return value
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
