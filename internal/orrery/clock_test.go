package orrery

import "testing"

func TestNewClock(t *testing.T) {
	tests := []struct {
		name      string
		timeScale float64
		subSteps  int
		wantErr   bool
		stepScale float64
	}{
		{name: "single step", timeScale: 86400, subSteps: 1, stepScale: 86400},
		{name: "many steps", timeScale: 86400, subSteps: 60, stepScale: 1440},
		{name: "zero sub-steps rejected", timeScale: 86400, subSteps: 0, wantErr: true},
		{name: "negative sub-steps rejected", timeScale: 86400, subSteps: -3, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewClock(tt.timeScale, tt.subSteps)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewClock() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if c.StepScale() != tt.stepScale {
				t.Errorf("StepScale() = %v, want %v", c.StepScale(), tt.stepScale)
			}
		})
	}
}

func TestClockRecomputesStepScale(t *testing.T) {
	c, err := NewClock(86400, 10)
	if err != nil {
		t.Fatalf("NewClock failed: %v", err)
	}

	c.SetTimeScale(3600)
	if c.StepScale() != 360 {
		t.Errorf("StepScale after SetTimeScale = %v, want 360", c.StepScale())
	}

	if err := c.SetSubSteps(100); err != nil {
		t.Fatalf("SetSubSteps failed: %v", err)
	}
	if c.StepScale() != 36 {
		t.Errorf("StepScale after SetSubSteps = %v, want 36", c.StepScale())
	}

	if err := c.SetSubSteps(0); err == nil {
		t.Error("Expected error for zero sub-steps")
	}
	if c.SubSteps() != 100 {
		t.Errorf("Failed SetSubSteps must not change the clock, got %d", c.SubSteps())
	}
}

// The total simulated time advanced per external tick must not depend on
// the sub-step count: summing stepScale*dt over all sub-steps equals
// timeScale*dt exactly.
func TestSubStepTimeInvariance(t *testing.T) {
	const timeScale = 86400.0
	const dt = 1.0

	for _, subSteps := range []int{1, 10, 16, 60} {
		c, err := NewClock(timeScale, subSteps)
		if err != nil {
			t.Fatalf("NewClock(%d) failed: %v", subSteps, err)
		}

		total := 0.0
		for i := 0; i < c.SubSteps(); i++ {
			total += c.StepScale() * dt
		}
		if total != timeScale*dt {
			t.Errorf("subSteps=%d: total simulated time %v, want %v", subSteps, total, timeScale*dt)
		}
	}
}
