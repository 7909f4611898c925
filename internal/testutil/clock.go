package testutil

import (
	"sync"
	"time"
)

// Clock is a deterministic wall clock for tests. Each call to Now
// returns the base time advanced by one more step, so a test scenario
// produces identical timestamps on every run.
//
// Thread-safety: all methods are safe for concurrent use.
type Clock struct {
	mu   sync.Mutex
	base time.Time
	step time.Duration
	n    int64
}

// NewClock creates a clock starting at base, advancing by step per
// Now call. The first call returns base + step.
func NewClock(base time.Time, step time.Duration) *Clock {
	return &Clock{base: base, step: step}
}

// Now returns the next tick. Pass the method value (clock.Now) where a
// now func() time.Time is expected.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n++
	return c.base.Add(time.Duration(c.n) * c.step)
}

// Current returns the last tick without advancing.
func (c *Clock) Current() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.base.Add(time.Duration(c.n) * c.step)
}

// Reset rewinds the clock to base, so the same scenario can run again
// with identical timestamps.
func (c *Clock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n = 0
}
