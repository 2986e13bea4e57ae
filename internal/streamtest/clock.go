// SPDX-License-Identifier: EPL-2.0

package streamtest

import (
	"sync"
	"time"
)

// Clock is a fake scheduler. Sleep advances it by the given duration and
// Yield by Step, so wait loops finish instantly.
type Clock struct {
	// Step is how far a Yield moves the clock. Defaults to one millisecond.
	Step time.Duration
	// OnYield, when set, runs after every Yield; use it to feed data in the
	// middle of a wait.
	OnYield func()

	mu     sync.Mutex
	now    time.Time
	yields int
	sleeps int
}

func NewClock() *Clock {
	return &Clock{
		Step: time.Millisecond,
		now:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *Clock) Sleep(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.sleeps++
	c.mu.Unlock()
}

func (c *Clock) Yield() {
	c.mu.Lock()
	c.now = c.now.Add(c.Step)
	c.yields++
	c.mu.Unlock()

	if c.OnYield != nil {
		c.OnYield()
	}
}

func (c *Clock) Yields() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.yields
}

func (c *Clock) Sleeps() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.sleeps
}
