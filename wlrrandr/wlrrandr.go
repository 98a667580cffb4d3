// Package wlrrandr switches the kiosk's display output on and off through wlr-randr.
package wlrrandr

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
)

const DefaultOutputName = "HDMI-A-1"

type Output struct {
	Name         string       `json:"name"`
	Description  string       `json:"description"`
	Make         string       `json:"make"`
	Model        string       `json:"model"`
	PhysicalSize PhysicalSize `json:"physical_size"`
	Enabled      bool         `json:"enabled"`
	Modes        []Mode       `json:"modes"`
	Transform    string       `json:"transform"`
	Scale        float64      `json:"scale"`
}

type PhysicalSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type Mode struct {
	Width     int     `json:"width"`
	Height    int     `json:"height"`
	Refresh   float64 `json:"refresh"`
	Preferred bool    `json:"preferred"`
	Current   bool    `json:"current"`
}

// Runner executes wlr-randr with args and returns its stdout.
type Runner func(ctx context.Context, args ...string) ([]byte, error)

func execRunner(ctx context.Context, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, "wlr-randr", args...).Output()
}

// Display controls one named output.
type Display struct {
	output string
	run    Runner
}

// NewDisplay controls output, falling back to DefaultOutputName. A nil runner executes
// the wlr-randr binary.
func NewDisplay(output string, run Runner) *Display {
	if output == "" {
		output = DefaultOutputName
	}
	if run == nil {
		run = execRunner
	}
	return &Display{output: output, run: run}
}

func (d *Display) Output() string { return d.output }

// Enabled inspects the current state of the output.
func (d *Display) Enabled(ctx context.Context) (bool, error) {
	out, err := d.run(ctx, "--output", d.output, "--json")
	if err != nil {
		return false, fmt.Errorf("failed to run wlr-randr: %w", err)
	}

	var results []Output
	if err := json.Unmarshal(out, &results); err != nil {
		return false, fmt.Errorf("failed to unmarshal wlr-randr output: %w", err)
	}

	for _, result := range results {
		if result.Name == d.output {
			return result.Enabled, nil
		}
	}

	return false, fmt.Errorf("output %s not found", d.output)
}

func (d *Display) SetEnabled(ctx context.Context, enabled bool) error {
	arg := "--off"
	if enabled {
		arg = "--on"
	}
	if _, err := d.run(ctx, "--output", d.output, arg); err != nil {
		return fmt.Errorf("failed to run wlr-randr: %w", err)
	}
	return nil
}
