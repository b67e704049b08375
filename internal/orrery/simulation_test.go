package orrery

import (
	"testing"
	"time"
)

func TestSimulationTickAdvancesCounters(t *testing.T) {
	sim := testSimulation(t)

	sim.Tick(0.25)
	sim.Tick(0.25)

	if sim.TickCount() != 2 {
		t.Errorf("TickCount = %d, want 2", sim.TickCount())
	}
	// 2 ticks of 0.25 s wall clock at time scale 86400.
	if got, want := sim.Elapsed(), 2*0.25*86400.0; got != want {
		t.Errorf("Elapsed = %v, want %v", got, want)
	}
}

// Queued parameter changes must not take effect mid-stream; they land at the
// start of the next tick.
func TestQueuedChangesApplyAtTickBoundary(t *testing.T) {
	sim := testSimulation(t)

	sim.QueueTimeScale(3600)
	sim.QueueGravitationalConstant(2 * BigG)
	if err := sim.QueueSubSteps(16); err != nil {
		t.Fatalf("QueueSubSteps failed: %v", err)
	}

	if sim.TimeScale() != 86400 {
		t.Errorf("TimeScale changed before tick: %v", sim.TimeScale())
	}
	if sim.GravitationalConstant() != BigG {
		t.Errorf("G changed before tick: %v", sim.GravitationalConstant())
	}
	if sim.SubSteps() != 60 {
		t.Errorf("SubSteps changed before tick: %d", sim.SubSteps())
	}

	sim.Tick(1)

	if sim.TimeScale() != 3600 {
		t.Errorf("TimeScale = %v, want 3600", sim.TimeScale())
	}
	if sim.GravitationalConstant() != 2*BigG {
		t.Errorf("G = %v, want %v", sim.GravitationalConstant(), 2*BigG)
	}
	if sim.SubSteps() != 16 {
		t.Errorf("SubSteps = %d, want 16", sim.SubSteps())
	}
	// The tick that applied the new time scale also advanced at it.
	if got, want := sim.Elapsed(), 3600.0; got != want {
		t.Errorf("Elapsed = %v, want %v", got, want)
	}
}

func TestQueueSubStepsRejectsInvalid(t *testing.T) {
	sim := testSimulation(t)
	if err := sim.QueueSubSteps(0); err == nil {
		t.Error("Expected error for zero sub-steps")
	}
	if err := sim.QueueSubSteps(-3); err == nil {
		t.Error("Expected error for negative sub-steps")
	}
	// The invalid request must not be sitting in the queue.
	sim.Tick(1)
	if sim.SubSteps() != 60 {
		t.Errorf("SubSteps = %d, want 60", sim.SubSteps())
	}
}

func TestSimulationSetMass(t *testing.T) {
	sim := testSimulation(t)

	if err := sim.SetMass("earth", 1e25); err != nil {
		t.Fatalf("SetMass failed: %v", err)
	}
	for _, b := range sim.Snapshot() {
		if b.ID == "earth" && b.Mass != 1e25 {
			t.Errorf("Mass = %v, want 1e25", b.Mass)
		}
	}

	if err := sim.SetMass("vulcan", 1); err == nil {
		t.Error("Expected error for unknown body id")
	}
	if err := sim.SetMass("earth", -1); err == nil {
		t.Error("Expected error for negative mass")
	}
}

// Snapshot returns a copy; mutating it must not touch the live registry.
func TestSnapshotIsACopy(t *testing.T) {
	sim := testSimulation(t)

	snap := sim.Snapshot()
	snap[1].Mass = 12345

	for _, b := range sim.Snapshot() {
		if b.Mass == 12345 {
			t.Fatal("Mutating a snapshot leaked into the registry")
		}
	}
}

type countingRecorder struct {
	ticks  []uint64
	bodies int
}

func (c *countingRecorder) RecordTick(tick uint64, elapsed float64, bodies []Body) error {
	c.ticks = append(c.ticks, tick)
	c.bodies = len(bodies)
	return nil
}

func TestRecorderReceivesEveryTick(t *testing.T) {
	sim := testSimulation(t)
	rec := &countingRecorder{}
	sim.SetRecorder(rec)

	sim.Tick(1)
	sim.Tick(1)
	sim.Tick(1)

	if len(rec.ticks) != 3 {
		t.Fatalf("Recorder saw %d ticks, want 3", len(rec.ticks))
	}
	for i, tick := range rec.ticks {
		if tick != uint64(i+1) {
			t.Errorf("Recorded tick %d = %d, want %d", i, tick, i+1)
		}
	}
	if rec.bodies != 9 {
		t.Errorf("Recorder saw %d bodies, want 9", rec.bodies)
	}
}

func TestRunAndStop(t *testing.T) {
	sim := testSimulation(t)

	sim.Run(time.Millisecond)
	waitForTicks(t, sim, 1)
	sim.Stop()

	// Stop is asynchronous; give the goroutine a moment to exit, then make
	// sure ticking actually halted.
	time.Sleep(20 * time.Millisecond)
	count := sim.TickCount()
	time.Sleep(20 * time.Millisecond)
	if sim.TickCount() != count {
		t.Error("Simulation kept ticking after Stop")
	}
}

func TestRunRestartsAfterStop(t *testing.T) {
	sim := testSimulation(t)

	sim.Run(time.Millisecond)
	waitForTicks(t, sim, 1)
	sim.Stop()
	time.Sleep(20 * time.Millisecond)

	count := sim.TickCount()
	sim.Run(time.Millisecond)
	waitForTicks(t, sim, count+1)
	sim.Stop()
}

func waitForTicks(t *testing.T, sim *Simulation, want uint64) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for sim.TickCount() < want {
		if time.Now().After(deadline) {
			t.Fatalf("Timed out waiting for tick %d (at %d)", want, sim.TickCount())
		}
		time.Sleep(time.Millisecond)
	}
}
