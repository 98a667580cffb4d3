package api

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIPRateLimiter(t *testing.T) {
	now := time.Date(2026, 10, 20, 10, 0, 0, 0, time.UTC)
	l := newIPRateLimiter(1, 2)
	l.now = func() time.Time { return now }

	assert.True(t, l.allow("10.0.0.1"))
	assert.True(t, l.allow("10.0.0.1"))
	assert.False(t, l.allow("10.0.0.1"))
	// buckets are per client
	assert.True(t, l.allow("10.0.0.2"))

	now = now.Add(time.Second)
	assert.True(t, l.allow("10.0.0.1"))
	assert.False(t, l.allow("10.0.0.1"))
}

func TestIPRateLimiter_ForgetsIdleClients(t *testing.T) {
	now := time.Date(2026, 10, 20, 10, 0, 0, 0, time.UTC)
	l := newIPRateLimiter(1, 1)
	l.now = func() time.Time { return now }

	l.allow("10.0.0.1")
	l.allow("10.0.0.2")
	assert.Len(t, l.visitors, 2)

	now = now.Add(rateLimiterExpiry + time.Second)
	l.allow("10.0.0.2")
	assert.Len(t, l.visitors, 1)
	assert.Contains(t, l.visitors, "10.0.0.2")
}
