// Package events reads upcoming lab events from an RSS or Atom feed for the events slide.
package events

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/aouyang1/labboard/metrics"
	"github.com/jonboulle/clockwork"
	"github.com/mmcdole/gofeed"
)

const (
	DefaultTTL   = 15 * time.Minute
	DefaultLimit = 6

	maxFeedSize  = 2 << 20
	fetchTimeout = 20 * time.Second
)

// ErrNoFeed is returned when no feed URL is configured.
var ErrNoFeed = errors.New("no events feed configured")

type Event struct {
	Title   string     `json:"title"`
	Link    string     `json:"link,omitempty"`
	Summary string     `json:"summary,omitempty"`
	Start   *time.Time `json:"start,omitempty"`
}

// Service fetches the feed and caches the parsed events for a TTL. A failed refresh keeps
// serving the previous events.
type Service struct {
	url    string
	client *http.Client
	parser *gofeed.Parser
	clock  clockwork.Clock
	ttl    time.Duration

	mu        sync.Mutex
	cached    []Event
	fetchedAt time.Time
}

func NewService(feedURL string, client *http.Client, clock clockwork.Clock) *Service {
	if client == nil {
		client = &http.Client{Timeout: fetchTimeout}
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Service{
		url:    feedURL,
		client: client,
		parser: gofeed.NewParser(),
		clock:  clock,
		ttl:    DefaultTTL,
	}
}

// Upcoming returns at most limit events that start at or after the current day, soonest
// first. Items without a date are kept after dated ones in feed order.
func (s *Service) Upcoming(ctx context.Context, limit int) ([]Event, error) {
	if s.url == "" {
		return nil, ErrNoFeed
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	if s.fetchedAt.IsZero() || now.Sub(s.fetchedAt) >= s.ttl {
		fetched, err := s.fetch(ctx)
		if err != nil {
			metrics.EventsFeedErrors.Inc()
			if s.fetchedAt.IsZero() {
				return nil, err
			}
			slog.Warn("events feed refresh failed, serving cached events", "url", s.url, "error", err)
		} else {
			s.cached = fetched
			s.fetchedAt = now
		}
	}

	return upcoming(s.cached, now, limit), nil
}

func (s *Service) fetch(ctx context.Context) ([]Event, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create feed request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("feed returned status %d", resp.StatusCode)
	}

	feed, err := s.parser.Parse(io.LimitReader(resp.Body, maxFeedSize))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	parsed := make([]Event, 0, len(feed.Items))
	for _, item := range feed.Items {
		title := strings.TrimSpace(item.Title)
		if title == "" {
			continue
		}
		ev := Event{
			Title:   title,
			Link:    item.Link,
			Summary: strings.TrimSpace(item.Description),
		}
		switch {
		case item.PublishedParsed != nil:
			ev.Start = item.PublishedParsed
		case item.UpdatedParsed != nil:
			ev.Start = item.UpdatedParsed
		}
		parsed = append(parsed, ev)
	}
	slog.Debug("events feed refreshed", "url", s.url, "items", len(parsed))
	return parsed, nil
}

func upcoming(all []Event, now time.Time, limit int) []Event {
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var dated, undated []Event
	for _, ev := range all {
		switch {
		case ev.Start == nil:
			undated = append(undated, ev)
		case !ev.Start.Before(startOfDay):
			dated = append(dated, ev)
		}
	}
	slices.SortStableFunc(dated, func(a, b Event) int {
		return a.Start.Compare(*b.Start)
	})

	out := append(dated, undated...)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
