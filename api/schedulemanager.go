package api

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aouyang1/labboard/board"
	"github.com/jonboulle/clockwork"
)

const scheduleInterval = time.Minute

type boardSnapshotter interface {
	Snapshot(ctx context.Context) (board.Display, error)
}

type displayPower interface {
	SetEnabled(ctx context.Context, enabled bool) error
}

// ScheduleManager will periodically check the board status to decide if we need to turn
// off or on the display
type ScheduleManager struct {
	board   boardSnapshotter
	display displayPower
	clock   clockwork.Clock

	// nil until the first successful switch
	lastOpen *bool
}

func NewScheduleManager(b boardSnapshotter, display displayPower, clock clockwork.Clock) (*ScheduleManager, error) {
	if b == nil {
		return nil, errors.New("no board provided for scheduler")
	}
	if display == nil {
		return nil, errors.New("no display provided for scheduler")
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &ScheduleManager{
		board:   b,
		display: display,
		clock:   clock,
	}, nil
}

func (s *ScheduleManager) checkSchedule(ctx context.Context) {
	snapshot, err := s.board.Snapshot(ctx)
	if err != nil {
		slog.Error("unable to get board state", "error", err)
		return
	}

	open := snapshot.Open
	if s.lastOpen != nil && *s.lastOpen == open {
		return
	}

	if err := s.display.SetEnabled(ctx, open); err != nil {
		slog.Warn("issue while switching display for schedule", "on", open, "error", err)
		return
	}
	slog.Info("switched display for schedule", "on", open, "line", snapshot.HoursLine)
	s.lastOpen = &open
}

func (s *ScheduleManager) Run(ctx context.Context) {
	ticker := s.clock.NewTicker(scheduleInterval)
	defer ticker.Stop()

	s.checkSchedule(ctx)
	for {
		select {
		case <-ticker.Chan():
			s.checkSchedule(ctx)
		case <-ctx.Done():
			return
		}
	}
}
