// Package models tracks all api models for request and responses
package models

import (
	"github.com/aouyang1/labboard/events"
	"github.com/aouyang1/labboard/schedule"
	"github.com/aouyang1/labboard/store"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type SwipeRequest struct {
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}

type KeyRequest struct {
	Key string `json:"key"`
	// Editing is true when focus is in a text field of the page.
	Editing bool `json:"editing"`
}

type NavigationResponse struct {
	Slide string `json:"slide"`
	Index int    `json:"index"`
	Moved bool   `json:"moved"`
}

type AdminResponse struct {
	AdminOpen bool                `json:"admin_open"`
	Form      *store.SettingsForm `json:"form,omitempty"`
}

type HoursResponse struct {
	Summary string         `json:"summary"`
	Line    string         `json:"line"`
	Open    bool           `json:"open"`
	Rows    []schedule.Row `json:"rows"`
}

type EventsResponse struct {
	Events []events.Event `json:"events"`
	Total  int            `json:"total"`
}

type DisplayStateResponse struct {
	Enabled bool `json:"enabled"`
}

// InputType names an input message sent by a display over the websocket.
type InputType string

const (
	InputSwipe   InputType = "swipe"
	InputKey     InputType = "key"
	InputNext    InputType = "next"
	InputPrev    InputType = "prev"
	InputGoto    InputType = "goto"
	InputTap     InputType = "tap"
	InputPress   InputType = "press"
	InputRelease InputType = "release"
	InputClose   InputType = "close"
)

type InputMessage struct {
	Type    InputType `json:"type"`
	DX      float64   `json:"dx,omitempty"`
	DY      float64   `json:"dy,omitempty"`
	Key     string    `json:"key,omitempty"`
	Editing bool      `json:"editing,omitempty"`
	Index   int       `json:"index,omitempty"`
}
