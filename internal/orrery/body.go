package orrery

import "github.com/go-gl/mathgl/mgl64"

// Category classifies a body for interaction gating only. It carries no
// physical behaviour: a star and a planet of equal mass gravitate identically.
type Category uint8

const (
	CategoryStar Category = iota
	CategoryPlanet

	categoryCount
)

// String returns the lowercase name of the category.
func (c Category) String() string {
	switch c {
	case CategoryStar:
		return "star"
	case CategoryPlanet:
		return "planet"
	default:
		return "unknown"
	}
}

// InteractionFlags is a bitset over categories. A body's flags declare which
// categories of other bodies it responds to gravitationally. The relation is
// receiver-sided: whether B pulls on A depends on A's flags and B's category,
// never on B's own flags.
type InteractionFlags uint32

const (
	FlagStar   InteractionFlags = 1 << CategoryStar
	FlagPlanet InteractionFlags = 1 << CategoryPlanet

	FlagNone InteractionFlags = 0
	FlagAll  InteractionFlags = FlagStar | FlagPlanet
)

// FlagFor returns the flag bit corresponding to a category.
func FlagFor(c Category) InteractionFlags {
	return 1 << c
}

// Has reports whether the flag set contains the bit for the given category.
func (f InteractionFlags) Has(c Category) bool {
	return f&FlagFor(c) != 0
}

// Colour is an RGBA colour carried for the rendering/persistence surface.
// The physics core never reads it.
type Colour [4]float32

// Body is one simulated point mass. ID and Name are immutable identity;
// Position and Velocity are advanced by the integrator; Mass changes only
// through an explicit external edit, never during integration.
type Body struct {
	ID       string
	Name     string
	Position mgl64.Vec3 // meters
	Velocity mgl64.Vec3 // meters/second
	Mass     float64    // kilograms, always > 0
	Colour   Colour
	Category Category
	Flags    InteractionFlags
}
