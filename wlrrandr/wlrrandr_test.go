package wlrrandr

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const listing = `[
  {"name": "eDP-1", "enabled": true},
  {"name": "HDMI-A-1", "enabled": false, "modes": [{"width": 1920, "height": 1080, "refresh": 60, "current": true}]}
]`

func TestEnabled(t *testing.T) {
	var gotArgs []string
	d := NewDisplay("", func(_ context.Context, args ...string) ([]byte, error) {
		gotArgs = args
		return []byte(listing), nil
	})

	enabled, err := d.Enabled(context.Background())
	require.NoError(t, err)
	assert.False(t, enabled)
	assert.Equal(t, []string{"--output", "HDMI-A-1", "--json"}, gotArgs)

	enabled, err = NewDisplay("eDP-1", func(context.Context, ...string) ([]byte, error) {
		return []byte(listing), nil
	}).Enabled(context.Background())
	require.NoError(t, err)
	assert.True(t, enabled)
}

func TestEnabled_Errors(t *testing.T) {
	missing := NewDisplay("DP-2", func(context.Context, ...string) ([]byte, error) {
		return []byte(listing), nil
	})
	_, err := missing.Enabled(context.Background())
	assert.ErrorContains(t, err, "output DP-2 not found")

	garbage := NewDisplay("", func(context.Context, ...string) ([]byte, error) {
		return []byte("HDMI-A-1 enabled"), nil
	})
	_, err = garbage.Enabled(context.Background())
	assert.Error(t, err)
}

func TestSetEnabled(t *testing.T) {
	var calls [][]string
	d := NewDisplay("HDMI-A-2", func(_ context.Context, args ...string) ([]byte, error) {
		calls = append(calls, args)
		return nil, nil
	})

	require.NoError(t, d.SetEnabled(context.Background(), true))
	require.NoError(t, d.SetEnabled(context.Background(), false))
	assert.Equal(t, [][]string{
		{"--output", "HDMI-A-2", "--on"},
		{"--output", "HDMI-A-2", "--off"},
	}, calls)

	failing := NewDisplay("", func(context.Context, ...string) ([]byte, error) {
		return nil, errors.New("exit status 1")
	})
	assert.Error(t, failing.SetEnabled(context.Background(), true))
}
