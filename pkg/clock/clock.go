package clock

import "time"

// Clock provides an abstraction for time operations to enable deterministic testing.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// Sleep pauses the caller for at least d.
	Sleep(d time.Duration)
}

// RealClock implements Clock using the system time.
type RealClock struct{}

// Now returns the current system time.
func (RealClock) Now() time.Time {
	return time.Now()
}

// Sleep calls time.Sleep.
func (RealClock) Sleep(d time.Duration) {
	time.Sleep(d)
}

// FakeClock implements Clock with a manually advanced time for testing.
// Sleep advances the fake time instead of blocking.
type FakeClock struct {
	current time.Time
	slept   []time.Duration
}

// NewFakeClock creates a new FakeClock with the given time.
func NewFakeClock(t time.Time) *FakeClock {
	return &FakeClock{current: t}
}

// Now returns the fake time.
func (c *FakeClock) Now() time.Time {
	return c.current
}

// Sleep records d and advances the fake time by it.
func (c *FakeClock) Sleep(d time.Duration) {
	c.slept = append(c.slept, d)
	if d > 0 {
		c.current = c.current.Add(d)
	}
}

// Slept returns the durations passed to Sleep, in call order.
func (c *FakeClock) Slept() []time.Duration {
	return c.slept
}

// Set updates the fake time.
func (c *FakeClock) Set(t time.Time) {
	c.current = t
}

// Advance moves the fake time forward by the given duration.
func (c *FakeClock) Advance(d time.Duration) {
	c.current = c.current.Add(d)
}
