package orrery

import (
	"fmt"
	"sync"
	"time"
)

// TickRecorder receives the committed body state after every tick.
// Implementations run on the ticking goroutine, between ticks.
type TickRecorder interface {
	RecordTick(tick uint64, elapsed float64, bodies []Body) error
}

// Simulation owns the live registry, clock, context and integrator and
// enforces the tick discipline: a tick is atomic with respect to external
// observers, queued parameter changes land only at tick boundaries, and
// body state is sampled only between ticks.
type Simulation struct {
	mu         sync.Mutex
	reg        *Registry
	clock      *Clock
	ctx        *Context
	integrator *Integrator
	logger     Logger
	recorder   TickRecorder

	tick    uint64
	elapsed float64 // simulated seconds advanced so far

	pendMu  sync.Mutex
	pending []func(*Simulation)

	stopCh    chan struct{}
	isRunning bool
}

// NewSimulation wires a simulation around the given registry, clock and
// context, integrating across all CPU cores.
func NewSimulation(reg *Registry, clock *Clock, ctx *Context) *Simulation {
	return &Simulation{
		reg:        reg,
		clock:      clock,
		ctx:        ctx,
		integrator: NewIntegrator(0),
		logger:     NewNoOpLogger(),
		stopCh:     make(chan struct{}),
	}
}

// SetLogger injects a logger. Call before Run.
func (s *Simulation) SetLogger(l Logger) {
	if l != nil {
		s.logger = l
	}
}

// SetRecorder attaches a per-tick recorder. Call before Run.
func (s *Simulation) SetRecorder(r TickRecorder) {
	s.recorder = r
}

// Tick advances the simulation by one external tick of dtSeconds wall-clock
// delta. Pending parameter changes are applied first, then the integrator
// runs all sub-steps synchronously. The call blocks concurrent snapshots
// until the tick has fully committed.
func (s *Simulation) Tick(dtSeconds float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.applyPending()
	s.ctx.ApplyPending()

	s.integrator.Step(s.reg, s.ctx, s.clock, dtSeconds)
	s.tick++
	s.elapsed += s.clock.TimeScale() * dtSeconds

	if s.recorder != nil {
		if err := s.recorder.RecordTick(s.tick, s.elapsed, s.reg.Bodies()); err != nil {
			s.logger.Errorf("Tick recording failed: tick=%d error=%v", s.tick, err)
		}
	}
}

func (s *Simulation) applyPending() {
	s.pendMu.Lock()
	pending := s.pending
	s.pending = nil
	s.pendMu.Unlock()

	for _, fn := range pending {
		fn(s)
	}
}

// QueueTimeScale schedules a time-scale change for the next tick boundary.
func (s *Simulation) QueueTimeScale(timeScale float64) {
	s.queue(func(sim *Simulation) {
		sim.clock.SetTimeScale(timeScale)
		sim.logger.Infof("Time scale updated: time_scale=%v", timeScale)
	})
}

// QueueSubSteps schedules a sub-step count change for the next tick
// boundary. The value is validated immediately.
func (s *Simulation) QueueSubSteps(subSteps int) error {
	if subSteps < 1 {
		return fmt.Errorf("sub-steps must be at least 1, got %d", subSteps)
	}
	s.queue(func(sim *Simulation) {
		_ = sim.clock.SetSubSteps(subSteps)
		sim.logger.Infof("Sub-steps updated: sub_steps=%d", subSteps)
	})
	return nil
}

// QueueGravitationalConstant schedules a change of G for the next tick
// boundary.
func (s *Simulation) QueueGravitationalConstant(g float64) {
	s.ctx.QueueSetG(g)
}

func (s *Simulation) queue(fn func(*Simulation)) {
	s.pendMu.Lock()
	s.pending = append(s.pending, fn)
	s.pendMu.Unlock()
}

// Snapshot copies the full body state. It blocks while a tick is in flight,
// so callers always observe a committed tick boundary.
func (s *Simulation) Snapshot() []Body {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reg.Bodies()
}

// SetMass edits a body's mass between ticks (the external edit path).
func (s *Simulation) SetMass(id string, mass float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reg.SetMass(id, mass)
}

// AnchorID returns the id of the anchor body.
func (s *Simulation) AnchorID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reg.AnchorID()
}

// TickCount returns the number of completed ticks.
func (s *Simulation) TickCount() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tick
}

// Elapsed returns the simulated seconds advanced so far.
func (s *Simulation) Elapsed() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.elapsed
}

// TimeScale returns the clock's current time scale.
func (s *Simulation) TimeScale() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clock.TimeScale()
}

// SubSteps returns the clock's current sub-step count.
func (s *Simulation) SubSteps() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clock.SubSteps()
}

// GravitationalConstant returns the context's current G.
func (s *Simulation) GravitationalConstant() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctx.G
}

// replaceState swaps in a fully validated scenario at a tick boundary. The
// registry replacement is staged, so a failure leaves everything untouched.
func (s *Simulation) replaceState(g, timeScale float64, orbiters []Body) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.reg.ReplaceOrbiters(orbiters); err != nil {
		return err
	}
	s.ctx.G = g
	s.clock.SetTimeScale(timeScale)
	return nil
}

// Run starts ticking in a background goroutine at the given wall-clock
// interval, using measured frame deltas. It can be called again after Stop.
func (s *Simulation) Run(interval time.Duration) {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return
	}
	// Fresh stop channel for this run, so Run after Stop works.
	s.stopCh = make(chan struct{})
	s.isRunning = true
	stop := s.stopCh
	s.mu.Unlock()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		last := time.Now()
		for {
			select {
			case <-ticker.C:
				now := time.Now()
				s.Tick(now.Sub(last).Seconds())
				last = now
			case <-stop:
				s.mu.Lock()
				s.isRunning = false
				s.mu.Unlock()
				return
			}
		}
	}()
}

// Stop halts the background ticking. Run can be called again afterwards.
func (s *Simulation) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isRunning {
		return
	}
	close(s.stopCh)
}
