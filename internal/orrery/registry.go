package orrery

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Registry holds the live body set as parallel slices keyed by a stable
// integer index, so the integrator can iterate cache-friendly and in
// parallel. Index 0 is always the anchor (primary) body; it is created with
// the registry and never removed. An id's index stays valid until the body
// is retired by ReplaceOrbiters, which rebuilds every non-anchor slot, so a
// retired index is never reused while its old id is still live.
type Registry struct {
	ids        []string
	names      []string
	categories []Category
	flags      []InteractionFlags
	positions  []mgl64.Vec3
	velocities []mgl64.Vec3
	masses     []float64
	colours    []Colour

	index map[string]int
}

// NewRegistry creates a registry containing only the anchor body.
func NewRegistry(anchor Body) (*Registry, error) {
	r := &Registry{index: make(map[string]int)}
	if _, err := r.Add(anchor); err != nil {
		return nil, fmt.Errorf("invalid anchor body: %w", err)
	}
	return r, nil
}

// Add appends a body and returns its index. The id must be unique across the
// live set and the mass strictly positive; every body is a gravity source,
// so a zero or negative mass would poison other bodies' accelerations.
func (r *Registry) Add(b Body) (int, error) {
	if b.ID == "" {
		return 0, fmt.Errorf("body has empty id")
	}
	if _, exists := r.index[b.ID]; exists {
		return 0, fmt.Errorf("duplicate body id: %s", b.ID)
	}
	if b.Mass <= 0 || math.IsInf(b.Mass, 0) || math.IsNaN(b.Mass) {
		return 0, fmt.Errorf("body %s has invalid mass %v", b.ID, b.Mass)
	}

	i := len(r.ids)
	r.ids = append(r.ids, b.ID)
	r.names = append(r.names, b.Name)
	r.categories = append(r.categories, b.Category)
	r.flags = append(r.flags, b.Flags)
	r.positions = append(r.positions, b.Position)
	r.velocities = append(r.velocities, b.Velocity)
	r.masses = append(r.masses, b.Mass)
	r.colours = append(r.colours, b.Colour)
	r.index[b.ID] = i
	return i, nil
}

// Len returns the number of live bodies, anchor included.
func (r *Registry) Len() int {
	return len(r.ids)
}

// Lookup returns the index of the body with the given id.
func (r *Registry) Lookup(id string) (int, bool) {
	i, ok := r.index[id]
	return i, ok
}

// At materializes the body at index i.
func (r *Registry) At(i int) Body {
	return Body{
		ID:       r.ids[i],
		Name:     r.names[i],
		Position: r.positions[i],
		Velocity: r.velocities[i],
		Mass:     r.masses[i],
		Colour:   r.colours[i],
		Category: r.categories[i],
		Flags:    r.flags[i],
	}
}

// Anchor returns the anchor body.
func (r *Registry) Anchor() Body {
	return r.At(0)
}

// AnchorID returns the id of the anchor body.
func (r *Registry) AnchorID() string {
	return r.ids[0]
}

// Bodies materializes the whole live set in index order.
func (r *Registry) Bodies() []Body {
	out := make([]Body, r.Len())
	for i := range out {
		out[i] = r.At(i)
	}
	return out
}

// SetMass updates a body's mass through the external edit path (UI or API).
// The integrator itself never mutates mass.
func (r *Registry) SetMass(id string, mass float64) error {
	i, ok := r.index[id]
	if !ok {
		return fmt.Errorf("unknown body id: %s", id)
	}
	if mass <= 0 || math.IsInf(mass, 0) || math.IsNaN(mass) {
		return fmt.Errorf("body %s: invalid mass %v", id, mass)
	}
	r.masses[i] = mass
	return nil
}

// ShouldInteract reports whether body b exerts gravity on body a, by index.
// A body never self-interacts, and whether it responds to another depends on
// its own flags against the other's category. The relation is deliberately
// allowed to be asymmetric: the stock catalog gives the sun star-only flags,
// so every planet responds to the sun while the sun responds to no planet.
func (r *Registry) ShouldInteract(a, b int) bool {
	if a == b {
		return false
	}
	return r.flags[a].Has(r.categories[b])
}

// ReplaceOrbiters retires every non-anchor body and installs the given set
// in their place. The anchor keeps its slot and state. Validation errors
// (duplicate or empty ids, bad masses, a body reusing the anchor id) abort
// the replacement with the registry unchanged.
func (r *Registry) ReplaceOrbiters(bodies []Body) error {
	staged := &Registry{index: make(map[string]int)}
	if _, err := staged.Add(r.Anchor()); err != nil {
		return err
	}
	for _, b := range bodies {
		if b.ID == r.AnchorID() {
			return fmt.Errorf("body id %s is reserved for the anchor", b.ID)
		}
		if _, err := staged.Add(b); err != nil {
			return err
		}
	}

	*r = *staged
	return nil
}
