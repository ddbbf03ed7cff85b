package query

import (
	"sync"
	"sync/atomic"
)

// Clock is a monotonic logical clock numbering the requests of one lane.
//
// Thread-safety: Clock is safe for concurrent use (atomic operations).
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// Next returns the next sequence number and increments the clock.
// Calls are linearizable - each call returns a unique, increasing value.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the sequence number of the latest issued request.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}

// lane groups requests that compete for the same piece of state. Only the
// response to the latest issued request of a lane may be applied.
type lane struct {
	name  string
	clock *Clock
	mu    sync.Mutex // held across the authority check and the apply
}

func newLane(name string) *lane {
	return &lane{name: name, clock: NewClock()}
}

// issue stamps a new request.
func (l *lane) issue() int64 {
	return l.clock.Next()
}

// commit runs apply if seq is still the lane's latest request and reports
// whether it did. A request issued while apply runs makes seq stale only
// after apply returns, so its own response is applied after this one.
func (l *lane) commit(seq int64, apply func()) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if seq != l.clock.Current() {
		return false
	}
	apply()
	return true
}

// authoritative reports whether seq is still the latest request.
func (l *lane) authoritative(seq int64) bool {
	return seq == l.clock.Current()
}
