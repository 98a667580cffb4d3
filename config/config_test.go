package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("LAB_TIMEZONE", "UTC")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Addr)
	assert.Equal(t, ".", cfg.RootPath)
	assert.Equal(t, "board.db", cfg.DBPath)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "assets/", cfg.S3Prefix)
	assert.Equal(t, "HDMI-A-1", cfg.DisplayOutput)
	assert.False(t, cfg.DisplayControl)
	assert.Equal(t, 5.0, cfg.AdminRate)
	assert.Equal(t, 10, cfg.AdminBurst)
	assert.Equal(t, "UTC", cfg.Location.String())
}

func TestLoad_Overrides(t *testing.T) {
	root := t.TempDir()
	t.Setenv("LAB_ROOT_PATH", root)
	t.Setenv("LAB_TIMEZONE", "America/Chicago")
	t.Setenv("LAB_EVENTS_FEED_URL", "https://example.edu/events.rss")
	t.Setenv("LAB_DISPLAY_CONTROL", "true")
	t.Setenv("LAB_DISPLAY_FOLLOWS_SCHEDULE", "true")
	t.Setenv("LAB_ADMIN_RATE", "0.5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(root, "board.db"), cfg.DBPath)
	assert.Equal(t, "America/Chicago", cfg.Location.String())
	assert.Equal(t, "https://example.edu/events.rss", cfg.EventsFeedURL)
	assert.True(t, cfg.DisplayFollowsSchedule)
	assert.Equal(t, 0.5, cfg.AdminRate)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr string
	}{
		{"unknown timezone", "LAB_TIMEZONE", "Mars/Olympus", "LAB_TIMEZONE is not a known timezone"},
		{"zero admin rate", "LAB_ADMIN_RATE", "0", "LAB_ADMIN_RATE must be positive"},
		{"negative admin rate", "LAB_ADMIN_RATE", "-1", "LAB_ADMIN_RATE must be positive"},
		{"zero admin burst", "LAB_ADMIN_BURST", "0", "LAB_ADMIN_BURST must be at least 1"},
		{"schedule without control", "LAB_DISPLAY_FOLLOWS_SCHEDULE", "true", "requires LAB_DISPLAY_CONTROL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("LAB_TIMEZONE", "UTC")
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
