package testutil

import (
	"sync"
	"time"
)

// ManualClock is a wall-clock stand-in that only moves when told to.
//
// Pass Now wherever a func() time.Time is accepted so token expiry and
// order timestamps are deterministic.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type ManualClock struct {
	mu  sync.Mutex
	now time.Time
}

// Epoch is the default start time of a ManualClock.
var Epoch = time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC)

// NewManualClock creates a clock reading start, or Epoch when start is zero.
func NewManualClock(start time.Time) *ManualClock {
	if start.IsZero() {
		start = Epoch
	}
	return &ManualClock{now: start}
}

// Now returns the current reading.
func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d and returns the new reading.
func (c *ManualClock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return c.now
}
