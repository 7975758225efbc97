package testutil

import (
	"sync"
	"time"
)

// FakeClock is a manually advanced clock. Wall and monotonic readings move
// together with Advance and can be skewed independently to simulate clock
// tampering.
type FakeClock struct {
	mu        sync.Mutex
	wall      time.Time
	monotonic time.Duration
}

// NewFakeClock starts at the given wall time with a monotonic reading of zero.
func NewFakeClock(start time.Time) *FakeClock {
	return &FakeClock{wall: start}
}

// Now returns the current wall time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.wall
}

// Wall returns the wall clock as a duration since the Unix epoch.
func (c *FakeClock) Wall() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return time.Duration(c.wall.UnixNano())
}

// Monotonic returns the monotonic reading.
func (c *FakeClock) Monotonic() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.monotonic
}

// Advance moves both clocks forward by d.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.wall = c.wall.Add(d)
	c.monotonic += d
}

// AdvanceWall moves only the wall clock, e.g. a user changing system time.
func (c *FakeClock) AdvanceWall(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.wall = c.wall.Add(d)
}

// AdvanceMonotonic moves only the monotonic clock, e.g. a hooked tick counter.
func (c *FakeClock) AdvanceMonotonic(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.monotonic += d
}
