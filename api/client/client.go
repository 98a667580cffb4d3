// Package client talks to a running board server over its http api.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aouyang1/labboard/api/models"
	"github.com/aouyang1/labboard/board"
	"github.com/aouyang1/labboard/store"
)

const defaultTimeout = 10 * time.Second

type BoardClient struct {
	baseURL string
	client  *http.Client
}

func NewBoardClient(baseURL string) *BoardClient {
	return &BoardClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: defaultTimeout},
	}
}

// do sends a request with an optional JSON body and decodes a JSON response into out
// when out is non-nil.
func (bc *BoardClient) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		jsonData, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, bc.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := bc.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp models.ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error != "" {
			return fmt.Errorf("server error: %s", errResp.Error)
		}
		return fmt.Errorf("server returned status %d: %s", resp.StatusCode, string(respBody))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// GetState returns the display snapshot the board is currently showing.
func (bc *BoardClient) GetState(ctx context.Context) (board.Display, error) {
	var d board.Display
	err := bc.do(ctx, http.MethodGet, "/api/state", nil, &d)
	return d, err
}

func (bc *BoardClient) GetHours(ctx context.Context) (models.HoursResponse, error) {
	var hours models.HoursResponse
	err := bc.do(ctx, http.MethodGet, "/api/hours", nil, &hours)
	return hours, err
}

func (bc *BoardClient) GetEvents(ctx context.Context) (models.EventsResponse, error) {
	var evs models.EventsResponse
	err := bc.do(ctx, http.MethodGet, "/api/events", nil, &evs)
	return evs, err
}

func (bc *BoardClient) GetSettings(ctx context.Context) (store.Settings, error) {
	var s store.Settings
	err := bc.do(ctx, http.MethodGet, "/api/settings", nil, &s)
	return s, err
}

// GetForm returns the admin form filled from the stored settings.
func (bc *BoardClient) GetForm(ctx context.Context) (store.SettingsForm, error) {
	var form store.SettingsForm
	err := bc.do(ctx, http.MethodGet, "/api/admin/form", nil, &form)
	return form, err
}

// SaveSettings submits form the way the admin modal does and returns the stored result.
func (bc *BoardClient) SaveSettings(ctx context.Context, form store.SettingsForm) (store.Settings, error) {
	var s store.Settings
	if err := bc.do(ctx, http.MethodPut, "/api/settings", form, &s); err != nil {
		return s, err
	}
	slog.Info("settings saved", "title", s.Title, "status", s.Status)
	return s, nil
}

func (bc *BoardClient) ResetSettings(ctx context.Context) (store.Settings, error) {
	var s store.Settings
	if err := bc.do(ctx, http.MethodPost, "/api/settings/reset", nil, &s); err != nil {
		return s, err
	}
	slog.Info("settings reset to defaults")
	return s, nil
}

// QuickStatus sets the manual status to OPEN or CLOSED.
func (bc *BoardClient) QuickStatus(ctx context.Context, status store.Status) (board.Display, error) {
	var d board.Display
	path := "/api/status/" + strings.ToLower(string(status))
	err := bc.do(ctx, http.MethodPost, path, nil, &d)
	return d, err
}

func (bc *BoardClient) Next(ctx context.Context) (models.NavigationResponse, error) {
	var nav models.NavigationResponse
	err := bc.do(ctx, http.MethodPost, "/api/slides/next", nil, &nav)
	return nav, err
}

func (bc *BoardClient) Prev(ctx context.Context) (models.NavigationResponse, error) {
	var nav models.NavigationResponse
	err := bc.do(ctx, http.MethodPost, "/api/slides/prev", nil, &nav)
	return nav, err
}

func (bc *BoardClient) Goto(ctx context.Context, index int) (models.NavigationResponse, error) {
	var nav models.NavigationResponse
	err := bc.do(ctx, http.MethodPost, fmt.Sprintf("/api/slides/goto/%d", index), nil, &nav)
	return nav, err
}

func (bc *BoardClient) GetDisplay(ctx context.Context) (bool, error) {
	var resp models.DisplayStateResponse
	err := bc.do(ctx, http.MethodGet, "/api/display", nil, &resp)
	return resp.Enabled, err
}

// SetDisplay switches the kiosk output on or off and returns the state read back.
func (bc *BoardClient) SetDisplay(ctx context.Context, enabled bool) (bool, error) {
	state := "0"
	if enabled {
		state = "1"
	}
	var resp models.DisplayStateResponse
	err := bc.do(ctx, http.MethodPut, "/api/display/"+state, nil, &resp)
	return resp.Enabled, err
}
