package ledger

import "sync/atomic"

// Clock is a monotonic logical clock for record timestamps.
//
// All cells are stamped with a strictly increasing logical time from this
// clock. This ensures deterministic ordering, replayable chains, and
// explicit causal relationships - wall-clock time never enters identity.
//
// Thread-safety: Clock is safe for concurrent use (atomic operations),
// though the chain's single-writer append discipline means one goroutine
// typically calls Next().
type Clock struct {
	ts atomic.Int64
}

// NewClock creates a clock starting at 0; the first Next() returns 1.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock resuming from a specific logical time.
// Used when rebuilding a chain from a persistence backend.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.ts.Store(start)
	return c
}

// Next returns the next logical time and advances the clock.
func (c *Clock) Next() int64 {
	return c.ts.Add(1)
}

// Current returns the clock's position without advancing it.
func (c *Clock) Current() int64 {
	return c.ts.Load()
}
