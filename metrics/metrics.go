// Package metrics holds the board's prometheus collectors
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Board metrics
var (
	// SlideAdvances counts slide changes by cause: auto, manual, dot, swipe or key
	SlideAdvances = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "board_slide_advances_total",
			Help: "Slide changes by cause",
		},
		[]string{"cause"},
	)

	// SettingsSaves counts persisted settings changes by action
	SettingsSaves = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "board_settings_saves_total",
			Help: "Settings saves by action (form, reset, quick) and status",
		},
		[]string{"action", "status"},
	)

	// AdminOpens counts admin modal openings by trigger (triple-tap, long-press)
	AdminOpens = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "board_admin_opens_total",
			Help: "Admin modal openings by gesture",
		},
		[]string{"trigger"},
	)

	// BoardOpen is 1 while the board shows OPEN
	BoardOpen = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "board_open",
			Help: "1 when the board currently shows OPEN, 0 otherwise",
		},
	)
)

// Slide content metrics
var (
	FragmentLoads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "board_fragment_loads_total",
			Help: "Slide fragment loads by status (ok, error)",
		},
		[]string{"status"},
	)

	// EventsFeedErrors counts failed events feed fetches
	EventsFeedErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "board_events_feed_errors_total",
			Help: "Failed events feed fetches",
		},
	)
)

// Display connection metrics
var (
	DisplaysConnected = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "board_displays_connected",
			Help: "Kiosk displays currently connected over websocket",
		},
	)

	DisplayMessagesDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "board_display_messages_dropped_total",
			Help: "Messages dropped for slow displays",
		},
	)
)
