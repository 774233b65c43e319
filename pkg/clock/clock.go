// Package clock provides the logical clock of the control cycle.
// The clock only advances when the cycle explicitly steps it, one
// interval per tick, so tests can drive time without sleeping. Time is
// derived from an integer tick counter to avoid floating point drift.
package clock

import "time"

type Clock struct {
	interval time.Duration
	ticks    uint64
}

func New(interval time.Duration) *Clock {
	return &Clock{interval: interval}
}

// Step advances the clock by exactly one interval.
func (c *Clock) Step() {
	c.ticks++
}

// Now returns the logical time since start.
func (c *Clock) Now() time.Duration {
	return time.Duration(c.ticks) * c.interval
}

// Seconds returns the logical time as floating point seconds.
func (c *Clock) Seconds() float64 {
	return c.Now().Seconds()
}

func (c *Clock) Ticks() uint64           { return c.ticks }
func (c *Clock) Interval() time.Duration { return c.interval }

// DT returns the interval as floating point seconds, the dt fed to the
// kinematic filter.
func (c *Clock) DT() float64 {
	return c.interval.Seconds()
}
