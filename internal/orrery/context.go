package orrery

import "sync"

// BigG is the CODATA value of the universal gravitational constant,
// in m³ kg⁻¹ s⁻².
const BigG = 6.6743015e-11

// Context carries the shared simulation parameters read by the integrator:
// currently the gravitational constant. It replaces ambient globals with a
// value passed explicitly into every integrator call.
//
// The integrator reads the context without locking, so mutations go through
// a pending queue: Queue* may be called from any goroutine at any time, and
// the simulation drains the queue at tick boundaries only. Within a tick the
// context is read-only.
type Context struct {
	G float64

	mu      sync.Mutex
	pending []func(*Context)
}

// NewContext returns a context with the stock gravitational constant.
func NewContext() *Context {
	return &Context{G: BigG}
}

// QueueSetG schedules a change of the gravitational constant for the next
// tick boundary.
func (c *Context) QueueSetG(g float64) {
	c.Queue(func(ctx *Context) { ctx.G = g })
}

// Queue schedules an arbitrary mutation of the context for the next tick
// boundary.
func (c *Context) Queue(fn func(*Context)) {
	c.mu.Lock()
	c.pending = append(c.pending, fn)
	c.mu.Unlock()
}

// ApplyPending runs and clears all queued mutations. The simulation calls
// this once per tick, before dispatching the integrator; no integration is
// in flight while it runs.
func (c *Context) ApplyPending() {
	c.mu.Lock()
	pending := c.pending
	c.pending = nil
	c.mu.Unlock()

	for _, fn := range pending {
		fn(c)
	}
}
