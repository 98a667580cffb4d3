package store

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyForm_AllSlidesDisabledForcesStatus(t *testing.T) {
	form := FormFromSettings(DefaultSettings())
	for key := range form.Slides {
		form.Slides[key] = false
	}

	got := ApplyForm(DefaultSettings(), form)

	var enabled []string
	for key, visible := range got.Slides {
		if visible {
			enabled = append(enabled, key)
		}
	}
	assert.Equal(t, []string{"status"}, enabled)
}

func TestApplyForm_RotateSecondsClamped(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{"1", 5},
		{"5", 5},
		{"-20", 5},
		{"12", 12},
		{"45s", 45},
		{"", 30},
		{"abc", 30},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			form := FormFromSettings(DefaultSettings())
			form.RotateSeconds = tt.raw

			assert.Equal(t, tt.want, ApplyForm(DefaultSettings(), form).RotateSeconds)
		})
	}
}

func TestApplyForm_RefreshMinutes(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{"0", 0},
		{"-3", 0},
		{"2.9", 2},
		{"", 10},
		{"never", 10},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			form := FormFromSettings(DefaultSettings())
			form.RefreshMinutes = tt.raw

			assert.Equal(t, tt.want, ApplyForm(DefaultSettings(), form).RefreshMinutes)
		})
	}
}

func TestApplyForm_TextFieldsTrimmedWithDefaults(t *testing.T) {
	form := FormFromSettings(DefaultSettings())
	form.Title = "   "
	form.Subtitle = "  Maker Space  "
	form.Location = ""
	form.CloseTime = ""
	form.BannerText = "  keep spacing  "
	hero := "  assets/hero/alt.jpg "
	form.HeroImageURL = &hero

	got := ApplyForm(DefaultSettings(), form)

	assert.Equal(t, "XR Lab", got.Title)
	assert.Equal(t, "Maker Space", got.Subtitle)
	assert.Equal(t, "E251, East Building", got.Location)
	assert.Equal(t, "17:00", got.CloseTime)
	assert.Equal(t, "  keep spacing  ", got.BannerText)
	assert.Equal(t, "assets/hero/alt.jpg", got.HeroImageURL)
}

func TestApplyForm_MissingHeroFieldKeepsStoredURL(t *testing.T) {
	base := DefaultSettings()
	base.HeroImageURL = "assets/hero/custom.png"
	form := FormFromSettings(base)
	form.HeroImageURL = nil

	assert.Equal(t, "assets/hero/custom.png", ApplyForm(base, form).HeroImageURL)
}

func TestApplyForm_MissingSlideKeysDefaultVisible(t *testing.T) {
	form := FormFromSettings(DefaultSettings())
	form.Slides = map[string]bool{"status": false}

	got := ApplyForm(DefaultSettings(), form)

	assert.False(t, got.Slides["status"])
	assert.True(t, got.Slides["events"])
	assert.True(t, got.Slides["leaderboard"])
}

func TestApplyForm_DoesNotMutateBase(t *testing.T) {
	base := DefaultSettings()
	form := FormFromSettings(base)
	form.Slides["hours"] = false

	ApplyForm(base, form)

	assert.True(t, base.Slides["hours"])
}

func TestFormFromSettings_UnifiedSlideDefault(t *testing.T) {
	s := DefaultSettings()
	s.Slides = map[string]bool{"events": false}

	form := FormFromSettings(s)

	assert.False(t, form.Slides["events"])
	assert.True(t, form.Slides["leaderboard"])
	assert.True(t, form.Slides["memes"])
	assert.Equal(t, "30", form.RotateSeconds)
	assert.Equal(t, "10", form.RefreshMinutes)
}

func TestClamps(t *testing.T) {
	assert.Equal(t, 5.0, ClampRotateSeconds(2))
	assert.Equal(t, 7.5, ClampRotateSeconds(7.5))
	assert.Equal(t, 0.0, ClampRefreshMinutes(-1))
	assert.Equal(t, 3.0, ClampRefreshMinutes(3))
}

func TestSettingsForm_NumericFieldsAcceptNumbersAndText(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantRefresh string
		wantRotate  string
	}{
		{"numbers", `{"refreshMinutes":3,"rotateSeconds":12.5}`, "3", "12.5"},
		{"text", `{"refreshMinutes":"3","rotateSeconds":"12"}`, "3", "12"},
		{"missing and null", `{"rotateSeconds":null}`, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var form SettingsForm
			require.NoError(t, json.Unmarshal([]byte(tt.body), &form))
			assert.Equal(t, tt.wantRefresh, form.RefreshMinutes)
			assert.Equal(t, tt.wantRotate, form.RotateSeconds)
		})
	}
}

func TestSettingsForm_UnmarshalKeepsOtherFields(t *testing.T) {
	var form SettingsForm
	require.NoError(t, json.Unmarshal([]byte(`{"title":"Lab","rotateSeconds":2,"heroImageUrl":"a.jpg","slides":{"memes":true}}`), &form))

	assert.Equal(t, "Lab", form.Title)
	require.NotNil(t, form.HeroImageURL)
	assert.Equal(t, "a.jpg", *form.HeroImageURL)
	assert.Equal(t, map[string]bool{"memes": true}, form.Slides)

	got := ApplyForm(DefaultSettings(), form)
	assert.Equal(t, float64(MinRotateSeconds), got.RotateSeconds)
}

func TestSettingsForm_RejectsNonNumericTypes(t *testing.T) {
	var form SettingsForm
	assert.Error(t, json.Unmarshal([]byte(`{"rotateSeconds":true}`), &form))
	assert.Error(t, json.Unmarshal([]byte(`{"refreshMinutes":{}}`), &form))
}
