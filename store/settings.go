package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
)

// SettingsKey is the key holding the JSON settings blob.
const SettingsKey = "vibeBoardSettings"

// KeyValue is the persistence the settings store needs.
type KeyValue interface {
	GetValue(key string) (string, bool, error)
	SetValue(key, value string) error
}

// SettingsStore loads and saves the settings blob, merged over DefaultSettings.
type SettingsStore struct {
	kv KeyValue
}

func NewSettingsStore(kv KeyValue) *SettingsStore {
	return &SettingsStore{kv: kv}
}

// Load never fails: a missing, unreadable or malformed blob yields the defaults.
func (s *SettingsStore) Load() Settings {
	raw, ok, err := s.kv.GetValue(SettingsKey)
	if err != nil {
		slog.Warn("unable to read settings, using defaults", "error", err)
		return DefaultSettings()
	}
	if !ok || raw == "" {
		return DefaultSettings()
	}

	settings, err := MergeSettings([]byte(raw))
	if err != nil {
		slog.Debug("stored settings unparsable, using defaults", "error", err)
		return DefaultSettings()
	}
	return settings
}

func (s *SettingsStore) Save(settings Settings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	if err := s.kv.SetValue(SettingsKey, string(data)); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

// Reset persists and returns the defaults.
func (s *SettingsStore) Reset() (Settings, error) {
	defaults := DefaultSettings()
	if err := s.Save(defaults); err != nil {
		return defaults, err
	}
	return defaults, nil
}

// MergeSettings overlays a stored blob on the defaults one field at a time. The merge is
// shallow: a stored slides map replaces the default map rather than being merged key by key.
// A field that does not decode keeps its default; numeric fields also accept numeric text.
// Only a blob that is not a JSON object is an error.
func MergeSettings(raw []byte) (Settings, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Settings{}, fmt.Errorf("invalid settings blob: %w", err)
	}
	if fields == nil {
		return Settings{}, errors.New("invalid settings blob: not an object")
	}

	merged := DefaultSettings()
	mergeField(fields, "status", &merged.Status)
	mergeField(fields, "closeTime", &merged.CloseTime)
	mergeField(fields, "title", &merged.Title)
	mergeField(fields, "subtitle", &merged.Subtitle)
	mergeField(fields, "location", &merged.Location)
	mergeNumber(fields, "refreshMinutes", &merged.RefreshMinutes)
	mergeField(fields, "bannerText", &merged.BannerText)
	mergeField(fields, "bannerVisible", &merged.BannerVisible)
	mergeField(fields, "rotateEnabled", &merged.RotateEnabled)
	mergeNumber(fields, "rotateSeconds", &merged.RotateSeconds)
	mergeField(fields, "autoStatus", &merged.AutoStatus)
	mergeField(fields, "heroImageUrl", &merged.HeroImageURL)

	if value, ok := fields["slides"]; ok {
		if isNull(value) {
			// a null map leaves every slide visible
			merged.Slides = nil
		} else {
			mergeField(fields, "slides", &merged.Slides)
		}
	}
	return merged, nil
}

func isNull(value json.RawMessage) bool {
	return string(bytes.TrimSpace(value)) == "null"
}

// mergeField decodes fields[name] into dst. Missing, null and mistyped values leave dst as is.
func mergeField[T any](fields map[string]json.RawMessage, name string, dst *T) {
	value, ok := fields[name]
	if !ok || isNull(value) {
		return
	}
	var v T
	if err := json.Unmarshal(value, &v); err != nil {
		slog.Debug("stored setting has the wrong type, using default", "field", name, "error", err)
		return
	}
	*dst = v
}

// mergeNumber is mergeField for numbers stored either as JSON numbers or as numeric text.
func mergeNumber(fields map[string]json.RawMessage, name string, dst *float64) {
	value, ok := fields[name]
	if !ok || isNull(value) {
		return
	}
	var n float64
	if err := json.Unmarshal(value, &n); err == nil {
		*dst = n
		return
	}
	var text string
	if err := json.Unmarshal(value, &text); err == nil {
		if n, err := strconv.ParseFloat(strings.TrimSpace(text), 64); err == nil && !math.IsNaN(n) && !math.IsInf(n, 0) {
			*dst = n
			return
		}
	}
	slog.Debug("stored setting is not a number, using default", "field", name, "value", string(value))
}
