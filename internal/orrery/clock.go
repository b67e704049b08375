package orrery

import "fmt"

// Clock maps a wall-clock frame delta to simulated time. timeScale is the
// number of simulated seconds represented by one external tick of one
// wall-clock second; subSteps is how many integration iterations each tick
// is divided into. stepScale is recomputed on every mutation so it can
// never go stale.
type Clock struct {
	timeScale float64
	subSteps  int
	stepScale float64
}

// NewClock creates a clock. subSteps below 1 is a configuration error: the
// integrator loop would silently be skipped, so it is rejected here instead.
func NewClock(timeScale float64, subSteps int) (*Clock, error) {
	if subSteps < 1 {
		return nil, fmt.Errorf("sub-steps must be at least 1, got %d", subSteps)
	}
	c := &Clock{timeScale: timeScale, subSteps: subSteps}
	c.recompute()
	return c, nil
}

func (c *Clock) recompute() {
	c.stepScale = c.timeScale / float64(c.subSteps)
}

// TimeScale returns the simulated seconds per external tick second.
func (c *Clock) TimeScale() float64 {
	return c.timeScale
}

// SubSteps returns the number of integration iterations per tick.
func (c *Clock) SubSteps() int {
	return c.subSteps
}

// StepScale returns timeScale/subSteps, the simulated seconds advanced per
// sub-step per wall-clock second of frame delta.
func (c *Clock) StepScale() float64 {
	return c.stepScale
}

// SetTimeScale updates the time scale. Callers mutate the clock only
// between ticks (the simulation queues updates and applies them at tick
// boundaries).
func (c *Clock) SetTimeScale(timeScale float64) {
	c.timeScale = timeScale
	c.recompute()
}

// SetSubSteps updates the sub-step count, rejecting values below 1.
func (c *Clock) SetSubSteps(subSteps int) error {
	if subSteps < 1 {
		return fmt.Errorf("sub-steps must be at least 1, got %d", subSteps)
	}
	c.subSteps = subSteps
	c.recompute()
	return nil
}
