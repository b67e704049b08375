package orrery

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

// Earth's heliocentric elements at J2000 (values from Wikipedia's Earth's
// orbit article) must reproduce the known distance and speed at epoch.
func TestStateVectorsEarth(t *testing.T) {
	pos, vel := EarthElements.StateVectors(2000.0)

	const wantDist = 152.098455e9
	if got := pos.Len(); math.Abs(got-wantDist) > 30e6 {
		t.Errorf("Earth distance = %v m, want %v m within 30,000 km", got, wantDist)
	}

	const wantSpeed = 29.29e3
	if got := vel.Len(); math.Abs(got-wantSpeed) > 10 {
		t.Errorf("Earth speed = %v m/s, want %v m/s within 10 m/s", got, wantSpeed)
	}
}

// The Moon's geocentric elements at J2000 (values from the JPL satellite
// ephemerides).
func TestStateVectorsMoon(t *testing.T) {
	pos, vel := MoonElements.StateVectors(2000.0)

	const wantDist = 404.132e6
	if got := pos.Len(); math.Abs(got-wantDist) > 4e6 {
		t.Errorf("Moon distance = %v m, want %v m within 4,000 km", got, wantDist)
	}

	const wantSpeed = 0.970e3
	if got := vel.Len(); math.Abs(got-wantSpeed) > 10 {
		t.Errorf("Moon speed = %v m/s, want %v m/s within 10 m/s", got, wantSpeed)
	}
}

// A circular equatorial orbit stays at the semi-major axis distance with
// the circular orbit speed, whatever the epoch offset.
func TestStateVectorsCircular(t *testing.T) {
	el := OrbitalElements{
		SemiMajorAxis:      7e6,
		Eccentricity:       0,
		Epoch:              2451545.0,
		MeanAnomalyAtEpoch: 1.0,
		Mu:                 BigG * 5.972e24,
	}

	for _, dt := range []float64{0, 0.25, 3, 100} {
		pos, vel := el.StateVectors(el.Epoch + dt)
		if got := pos.Len(); math.Abs(got-7e6) > 1 {
			t.Errorf("t0+%v: radius = %v, want 7e6", dt, got)
		}
		wantSpeed := math.Sqrt(el.Mu / el.SemiMajorAxis)
		if got := vel.Len(); math.Abs(got-wantSpeed) > 1e-3 {
			t.Errorf("t0+%v: speed = %v, want %v", dt, got, wantSpeed)
		}
		// Position and velocity are perpendicular on a circle.
		if dot := pos.Dot(vel); math.Abs(dot) > 1 {
			t.Errorf("t0+%v: pos·vel = %v, want 0", dt, dot)
		}
	}
}

// Mean anomaly propagation advances the body along its orbit: half a
// period flips the position through the focus.
func TestStateVectorsPropagation(t *testing.T) {
	el := OrbitalElements{
		SemiMajorAxis:      7e6,
		Eccentricity:       0,
		Epoch:              2451545.0,
		MeanAnomalyAtEpoch: 0,
		Mu:                 BigG * 5.972e24,
	}

	period := 2 * math.Pi * math.Sqrt(math.Pow(el.SemiMajorAxis, 3)/el.Mu) // seconds
	halfPeriodDays := period / 2 / 86400

	p0, _ := el.StateVectors(el.Epoch)
	p1, _ := el.StateVectors(el.Epoch + halfPeriodDays)

	if got := p0.Add(p1).Len(); got > 1e3 {
		t.Errorf("Positions half a period apart should be antipodal, |p0+p1| = %v m", got)
	}
}

func TestBodyFromElements(t *testing.T) {
	primary := Body{
		ID: "earth", Name: "Earth",
		Position: mgl64.Vec3{1e11, 0, 0},
		Velocity: mgl64.Vec3{0, 3e4, 0},
		Mass:     5.972e24,
	}
	moon := BodyFromElements("moon", "Moon", 7.342e22, Colour{1, 1, 1, 1}, MoonElements, 2000.0, primary)

	if moon.Category != CategoryPlanet || !moon.Flags.Has(CategoryStar) {
		t.Error("Seeded body should be a planet responding to everything")
	}
	// Offset from the primary matches the raw conversion (up to the
	// rounding introduced by adding the primary's state).
	rawPos, rawVel := MoonElements.StateVectors(2000.0)
	if diff := moon.Position.Sub(primary.Position).Sub(rawPos).Len(); diff > 1 {
		t.Errorf("Position offset differs from raw conversion by %v m", diff)
	}
	if diff := moon.Velocity.Sub(primary.Velocity).Sub(rawVel).Len(); diff > 1e-6 {
		t.Errorf("Velocity offset differs from raw conversion by %v m/s", diff)
	}
}
