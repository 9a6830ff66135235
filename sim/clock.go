package sim

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidAdvance is returned when the clock is asked to move backwards.
var ErrInvalidAdvance = errors.New("invalid clock advance")

// Clock holds the simulation's virtual time in seconds.
// It never reads wall time; only the simulator moves it forward.
type Clock struct {
	now float64
}

// NewClock returns a clock set to time zero.
func NewClock() *Clock {
	return &Clock{}
}

// Now returns the current virtual time.
func (c *Clock) Now() float64 {
	return c.now
}

// Advance moves the clock forward by delta seconds.
func (c *Clock) Advance(delta float64) error {
	if delta < 0 || math.IsNaN(delta) {
		return fmt.Errorf("%w: delta %v", ErrInvalidAdvance, delta)
	}
	c.now += delta
	return nil
}

// AdvanceTo moves the clock to exactly t. Used by the event loop so the clock
// lands on an event's fire time without accumulating float error.
func (c *Clock) AdvanceTo(t float64) error {
	if t < c.now || math.IsNaN(t) {
		return fmt.Errorf("%w: from %v to %v", ErrInvalidAdvance, c.now, t)
	}
	c.now = t
	return nil
}

// Reset sets the clock back to zero.
func (c *Clock) Reset() {
	c.now = 0
}
