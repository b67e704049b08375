package orrery

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// OrbitalElements are the six classical Keplerian parameters plus epoch
// information describing an orbit around a central mass. Angles are in
// radians, distances in meters, epochs in Julian dates.
type OrbitalElements struct {
	SemiMajorAxis      float64 // a, meters
	Eccentricity       float64 // e, 0 <= e < 1
	ArgPeriapsis       float64 // ω, radians
	AscendingNode      float64 // Ω, radians
	Inclination        float64 // i, radians
	Epoch              float64 // t0, Julian date of MeanAnomalyAtEpoch
	MeanAnomalyAtEpoch float64 // m0, radians
	Mu                 float64 // G * central mass, m³/s²
}

// Fixed iteration count for the Newton-Raphson solve of Kepler's equation.
// Thirty iterations converge far past double precision for the small
// eccentricities this simulator deals in; an early exit on convergence
// would be an equivalent optimization.
const keplerIterations = 30

// StateVectors converts the elements into Cartesian position and velocity
// vectors at epoch t (Julian date), following the classical transform laid
// out by René Schwarz (M001: Keplerian Orbit Elements to Cartesian State
// Vectors). Used only on the setup path, never per frame.
func (el OrbitalElements) StateVectors(t float64) (pos, vel mgl64.Vec3) {
	a, e := el.SemiMajorAxis, el.Eccentricity
	w, omega, i := el.ArgPeriapsis, el.AscendingNode, el.Inclination

	// Mean anomaly at t, propagated from the reference epoch. The 86400
	// converts the Julian date difference from days to seconds.
	mt := el.MeanAnomalyAtEpoch
	if t != el.Epoch {
		dt := 86400 * (t - el.Epoch)
		mt += dt * math.Sqrt(el.Mu/(a*a*a))
	}

	// Solve M = E - e*sin(E) for the eccentric anomaly E.
	bigE := mt
	f := bigE - e*math.Sin(bigE) - mt
	for j := 0; j < keplerIterations; j++ {
		bigE -= f / (1 - e*math.Cos(bigE))
		f = bigE - e*math.Sin(bigE) - mt
	}

	// True anomaly.
	nu := 2 * math.Atan2(
		math.Sqrt(1+e)*math.Sin(bigE/2),
		math.Sqrt(1-e)*math.Cos(bigE/2),
	)

	// Distance to the central body.
	rc := a * (1 - e*math.Cos(bigE))

	// Position and velocity in the orbital frame: x-axis toward periapsis,
	// z-axis perpendicular to the orbital plane.
	o := mgl64.Vec3{math.Cos(nu), math.Sin(nu), 0}.Mul(rc)
	oDot := mgl64.Vec3{
		-math.Sin(bigE),
		math.Sqrt(1-e*e) * math.Cos(bigE),
		0,
	}.Mul(math.Sqrt(el.Mu*a) / rc)

	// Rotate into the inertial frame (3-1-3 Euler composition of ω, i, Ω).
	rot := func(v mgl64.Vec3) mgl64.Vec3 {
		cw, sw := math.Cos(w), math.Sin(w)
		co, so := math.Cos(omega), math.Sin(omega)
		ci, si := math.Cos(i), math.Sin(i)
		return mgl64.Vec3{
			v.X()*(cw*co-sw*ci*so) - v.Y()*(sw*co+cw*ci*so),
			v.X()*(cw*so+sw*ci*co) + v.Y()*(cw*ci*co-sw*so),
			v.X()*(sw*si) + v.Y()*(cw*si),
		}
	}

	return rot(o), rot(oDot)
}
