package orrery

import (
	"runtime"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
)

// Integrator advances the body set with semi-implicit (symplectic) Euler
// iterations: each sub-step updates every velocity from the start-of-substep
// positions, then every position from the committed velocities. The two
// phases are data-parallel across bodies; the barrier between them is what
// makes the scheme symplectic, so phases are never interleaved.
//
// The integrator is infallible in steady state. Exactly coincident bodies
// produce a zero separation and therefore non-finite accelerations; that
// degeneracy is documented rather than clamped, since catalog and scenario
// data never place two bodies at the same point.
type Integrator struct {
	workers int
}

// NewIntegrator creates an integrator running its phases across the given
// number of worker goroutines. workers < 1 selects runtime.NumCPU.
func NewIntegrator(workers int) *Integrator {
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	return &Integrator{workers: workers}
}

// Step advances the registry by dtSeconds of wall-clock frame delta,
// running clock.SubSteps() iterations scaled by clock.StepScale() each, so
// the total simulated time advanced is exactly clock.TimeScale()*dtSeconds
// regardless of the sub-step count.
//
// The registry is exclusively owned by the integrator for the duration of
// the call; callers sample body state only between calls.
func (in *Integrator) Step(reg *Registry, ctx *Context, clock *Clock, dtSeconds float64) {
	n := reg.Len()
	dt := clock.StepScale() * dtSeconds
	g := ctx.G

	for step := 0; step < clock.SubSteps(); step++ {
		// Velocity phase: each worker reads all positions but writes only
		// its own bodies' velocities.
		in.parallelFor(n, func(i int) {
			var sum mgl64.Vec3
			interacted := false
			for j := 0; j < n; j++ {
				if !reg.ShouldInteract(i, j) {
					continue
				}
				r := reg.positions[j].Sub(reg.positions[i])
				a := g * reg.masses[j] / r.LenSqr()
				sum = sum.Add(r.Normalize().Mul(a))
				interacted = true
			}
			// A body with no interacting partner keeps its velocity; it is
			// not zeroed.
			if interacted {
				reg.velocities[i] = reg.velocities[i].Add(sum.Mul(dt))
			}
		})

		// Position phase: runs only after every velocity is committed.
		in.parallelFor(n, func(i int) {
			reg.positions[i] = reg.positions[i].Add(reg.velocities[i].Mul(dt))
		})
	}
}

// parallelFor shares the index range [0,n) across the workers in contiguous
// chunks and waits for all of them.
func (in *Integrator) parallelFor(n int, fn func(i int)) {
	workers := in.workers
	if workers > n {
		workers = n
	}
	if workers <= 1 {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}

	chunk := (n + workers - 1) / workers
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		start := w * chunk
		end := start + chunk
		if end > n {
			end = n
		}
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				fn(i)
			}
		}(start, end)
	}
	wg.Wait()
}
