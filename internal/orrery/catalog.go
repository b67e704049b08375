package orrery

import "github.com/go-gl/mathgl/mgl64"

// The stock solar-system catalog. Positions place every planet on the +X
// axis at its mean orbital distance with its mean orbital speed along +Y;
// configuration data, not logic. The sun is the anchor and carries
// star-only interaction flags, so it is a gravity source for the planets
// without responding to their numerically negligible pull. Planets respond
// to everything.
var (
	Sun = Body{
		ID:       "sun",
		Name:     "Sun",
		Mass:     1.989e30,
		Colour:   Colour{252.0 / 255.0, 229.0 / 255.0, 112.0 / 255.0, 1},
		Category: CategoryStar,
		Flags:    FlagStar,
	}

	Mercury = planet("mercury", "Mercury", 57.909e9, 47.36e3, 0.33011e24, Colour{0.7, 0.7, 0.7, 1})
	Venus   = planet("venus", "Venus", 108.209e9, 35.02e3, 4.8675e24, Colour{0.9, 0.9, 0.9, 1})
	Earth   = planet("earth", "Earth", 149.596e9, 29.78e3, 5.9724e24, Colour{0, 1, 0, 1})
	Mars    = planet("mars", "Mars", 227.923e9, 24.07e3, 0.64171e24, Colour{1, 0, 0, 1})
	Jupiter = planet("jupiter", "Jupiter", 778.570e9, 13e3, 1898.19e24, Colour{0.605, 0.428, 0.299, 1})
	Saturn  = planet("saturn", "Saturn", 1433.529e9, 9.68e3, 568.34e24, Colour{0.605, 0.428, 0.399, 1})
	Uranus  = planet("uranus", "Uranus", 2872.463e9, 6.80e3, 86.813e24, Colour{0, 0.5, 1, 1})
	Neptune = planet("neptune", "Neptune", 4495.060e9, 5.43e3, 102.413e24, Colour{0, 0, 1, 1})
)

func planet(id, name string, distance, speed, mass float64, colour Colour) Body {
	return Body{
		ID:       id,
		Name:     name,
		Position: mgl64.Vec3{distance, 0, 0},
		Velocity: mgl64.Vec3{0, speed, 0},
		Mass:     mass,
		Colour:   colour,
		Category: CategoryPlanet,
		Flags:    FlagAll,
	}
}

// Planets returns the catalog planets in orbital order.
func Planets() []Body {
	return []Body{Mercury, Venus, Earth, Mars, Jupiter, Saturn, Uranus, Neptune}
}

// SeedRegistry builds a registry holding the full stock catalog.
func SeedRegistry() *Registry {
	reg, err := NewRegistry(Sun)
	if err != nil {
		panic(err) // catalog data is static and known-valid
	}
	for _, b := range Planets() {
		if _, err := reg.Add(b); err != nil {
			panic(err)
		}
	}
	return reg
}

// Real ephemeris-style element sets, usable to seed bodies from orbital
// elements instead of the flat catalog vectors.
var (
	// EarthElements is Earth's heliocentric orbit at the J2000 epoch.
	EarthElements = OrbitalElements{
		SemiMajorAxis:      149.60e9,
		Eccentricity:       0.0167086,
		ArgPeriapsis:       mgl64.DegToRad(288.1),
		AscendingNode:      mgl64.DegToRad(174.9),
		Inclination:        mgl64.DegToRad(7.155),
		Epoch:              2000.0,
		MeanAnomalyAtEpoch: mgl64.DegToRad(171.1),
		Mu:                 BigG * 1.9885e30,
	}

	// MoonElements is the Moon's geocentric orbit at the J2000 epoch.
	MoonElements = OrbitalElements{
		SemiMajorAxis:      384.748e6,
		Eccentricity:       0.0549006,
		ArgPeriapsis:       mgl64.DegToRad(318.15),
		AscendingNode:      mgl64.DegToRad(125.08),
		Inclination:        mgl64.DegToRad(6.4),
		Epoch:              2000.0,
		MeanAnomalyAtEpoch: mgl64.DegToRad(135.27),
		Mu:                 BigG * 5.972e24,
	}
)

// BodyFromElements seeds a body from orbital elements evaluated at Julian
// date t, positioned relative to a primary body. Setup-path only.
func BodyFromElements(id, name string, mass float64, colour Colour, el OrbitalElements, t float64, primary Body) Body {
	pos, vel := el.StateVectors(t)
	return Body{
		ID:       id,
		Name:     name,
		Position: primary.Position.Add(pos),
		Velocity: primary.Velocity.Add(vel),
		Mass:     mass,
		Colour:   colour,
		Category: CategoryPlanet,
		Flags:    FlagAll,
	}
}
