package orbit

import (
	"fmt"
	"math"
	"time"
)

const (
	eccentricityε = 5e-5                         // 0.00005
	angleε        = (5e-3 / 360) * (2 * math.Pi) // 0.005 degrees
	distanceε     = 2e1                          // 20 km
	velocityε     = 1e-6                         // in km/s

	// Degeneracy thresholds below which no elements are produced.
	minRadius   = 1e-3 // km
	minMomentum = 1e-6 // km^2/s

	keplerTolerance = 1e-9
	keplerMaxIters  = 100
)

// Elements defines a classical orbital element set at an epoch.
// Angles are stored in radians; the gravitational parameter of the central
// body is carried along so that derived quantities need no extra lookup.
type Elements struct {
	A     float64 // semi major axis, km
	E     float64 // eccentricity
	I     float64 // inclination, rad
	Ω     float64 // longitude of the ascending node, rad
	ω     float64 // argument of periapsis, rad
	M0    float64 // mean anomaly at epoch, rad
	Epoch time.Time
	μ     float64 // km^3/s^2
}

// NewElements builds an element set from angles in degrees, the way catalog
// and configuration data is written.
func NewElements(a, e, iDeg, ΩDeg, ωDeg, M0Deg float64, epoch time.Time, μ float64) Elements {
	return Elements{a, e, Deg2rad(iDeg), Deg2rad(ΩDeg), Deg2rad(ωDeg), Deg2rad(M0Deg), epoch, μ}
}

// GM returns the gravitational parameter this element set was derived with.
func (el Elements) GM() float64 { return el.μ }

// LAN returns the longitude of the ascending node in radians.
func (el Elements) LAN() float64 { return el.Ω }

// ArgPeriapsis returns the argument of periapsis in radians.
func (el Elements) ArgPeriapsis() float64 { return el.ω }

// MeanAnomaly returns the mean anomaly at epoch in radians.
func (el Elements) MeanAnomaly() float64 { return el.M0 }

// IDeg, LANDeg, ArgPeriapsisDeg and MeanAnomalyDeg are the convenience
// duplicates in degrees.
func (el Elements) IDeg() float64            { return Rad2deg(el.I) }
func (el Elements) LANDeg() float64          { return Rad2deg(el.Ω) }
func (el Elements) ArgPeriapsisDeg() float64 { return Rad2deg(el.ω) }
func (el Elements) MeanAnomalyDeg() float64  { return Rad2deg(el.M0) }

// MeanMotion returns the mean motion n in rad/s.
func (el Elements) MeanMotion() float64 {
	if el.A == 0 || el.μ <= 0 {
		return 0
	}
	return math.Sqrt(el.μ / math.Abs(math.Pow(el.A, 3)))
}

// Period returns the orbital period in seconds, +Inf for unbound orbits.
func (el Elements) Period() float64 {
	if el.E >= 1 || el.A <= 0 {
		return math.Inf(1)
	}
	return 2 * math.Pi / el.MeanMotion()
}

// SemiParameter returns the semi parameter p = a(1-e^2).
func (el Elements) SemiParameter() float64 {
	return el.A * (1 - el.E*el.E)
}

// Periapsis returns the periapsis radius in km.
func (el Elements) Periapsis() float64 {
	return el.A * (1 - el.E)
}

// Apoapsis returns the apoapsis radius in km, +Inf for unbound orbits.
func (el Elements) Apoapsis() float64 {
	if el.E >= 1 {
		return math.Inf(1)
	}
	return el.A * (1 + el.E)
}

// PeriapsisAltitude returns the periapsis altitude above a surface of the
// given radius in km.
func (el Elements) PeriapsisAltitude(bodyRadius float64) float64 {
	return el.Periapsis() - bodyRadius
}

// ApoapsisAltitude returns the apoapsis altitude above a surface of the given
// radius in km.
func (el Elements) ApoapsisAltitude(bodyRadius float64) float64 {
	return el.Apoapsis() - bodyRadius
}

// Energyξ returns the specific mechanical energy ξ in km^2/s^2.
func (el Elements) Energyξ() float64 {
	return -el.μ / (2 * el.A)
}

// HNorm returns the norm of the specific angular momentum in km^2/s.
func (el Elements) HNorm() float64 {
	p := el.SemiParameter()
	if p <= 0 {
		return 0
	}
	return math.Sqrt(el.μ * p)
}

// String implements the Stringer interface.
func (el Elements) String() string {
	return fmt.Sprintf("a=%.1f e=%.4f i=%.3f Ω=%.3f ω=%.3f M0=%.3f", el.A, el.E, el.IDeg(), el.LANDeg(), el.ArgPeriapsisDeg(), el.MeanAnomalyDeg())
}

// StateToElements converts a Cartesian state into classical elements at the
// given epoch. From Vallado's RV2COE (page 113), with the circular and
// equatorial special cases substituting the undefined angles. The second
// return is false for degenerate inputs (near-zero radius or angular
// momentum), in which case no elements are produced.
func StateToElements(R, V []float64, μ float64, epoch time.Time) (Elements, bool) {
	r := norm(R)
	hVec := cross(R, V)
	h := norm(hVec)
	if μ <= 0 || r < minRadius || h < minMomentum {
		return Elements{}, false
	}
	v := norm(V)
	ξ := (v*v)/2 - μ/r
	a := -μ / (2 * ξ)
	eVec := make([]float64, 3)
	for i := 0; i < 3; i++ {
		eVec[i] = ((v*v-μ/r)*R[i] - dot(R, V)*V[i]) / μ
	}
	e := norm(eVec)

	i := clampedAcos(hVec[2] / h)
	equatorial := i < angleε || i > math.Pi-angleε
	circular := e < eccentricityε

	nVec := cross([]float64{0, 0, 1}, hVec)
	n := norm(nVec)

	var Ω float64
	if !equatorial && n > 0 {
		Ω = clampedAcos(nVec[0] / n)
		if nVec[1] < 0 {
			Ω = 2*math.Pi - Ω
		}
	}

	var ω float64
	switch {
	case circular:
		ω = 0
	case equatorial:
		// The node is undefined, substitute the longitude of periapsis.
		ω = clampedAcos(eVec[0] / e)
		if eVec[1] < 0 {
			ω = 2*math.Pi - ω
		}
	default:
		ω = clampedAcos(dot(nVec, eVec) / (n * e))
		if eVec[2] < 0 {
			ω = 2*math.Pi - ω
		}
	}

	// True anomaly, with the circular special cases where the periapsis
	// direction is undefined.
	var ν float64
	switch {
	case circular && equatorial:
		// True longitude.
		ν = clampedAcos(R[0] / r)
		if R[1] < 0 {
			ν = 2*math.Pi - ν
		}
	case circular:
		// Argument of latitude.
		ν = clampedAcos(dot(nVec, R) / (n * r))
		if R[2] < 0 {
			ν = 2*math.Pi - ν
		}
	default:
		ν = clampedAcos(dot(eVec, R) / (e * r))
		if dot(R, V) < 0 {
			ν = 2*math.Pi - ν
		}
	}

	M0 := meanFromTrue(ν, e)

	Ω = math.Mod(Ω, 2*math.Pi)
	ω = math.Mod(ω, 2*math.Pi)
	return Elements{a, e, i, Ω, ω, M0, epoch, μ}, true
}

// meanFromTrue converts a true anomaly to a mean anomaly via the eccentric
// anomaly. For unbound orbits (e >= 1) the eccentric anomaly is approximated
// by the true anomaly; a proper hyperbolic Kepler solution is deliberately
// not attempted.
func meanFromTrue(ν, e float64) float64 {
	var E float64
	if e < 1 {
		sinν, cosν := math.Sincos(ν)
		denom := 1 + e*cosν
		E = math.Atan2(math.Sqrt(1-e*e)*sinν/denom, (e+cosν)/denom)
	} else {
		E = ν
	}
	M := E - e*math.Sin(E)
	if M < 0 {
		M += 2 * math.Pi
	}
	return math.Mod(M, 2*math.Pi)
}

// trueFromEccentric converts an eccentric anomaly to a true anomaly.
func trueFromEccentric(E, e float64) float64 {
	if e >= 1 {
		return E
	}
	sinE2, cosE2 := math.Sincos(E / 2)
	ν := 2 * math.Atan2(math.Sqrt(1+e)*sinE2, math.Sqrt(1-e)*cosE2)
	if ν < 0 {
		ν += 2 * math.Pi
	}
	return ν
}

// SolveKepler solves Kepler's equation M = E - e sin E for the eccentric
// anomaly by Newton-Raphson. The initial guess is M, or π when e > 0.8 to
// aid convergence near the apsides. When the iteration cap is exhausted the
// last estimate is returned with converged set to false so callers can
// surface the condition; propagation continues with the estimate.
func SolveKepler(M, e float64) (E float64, converged bool) {
	E = M
	if e > 0.8 {
		E = math.Pi
	}
	for iter := 0; iter < keplerMaxIters; iter++ {
		δ := (E - e*math.Sin(E) - M) / (1 - e*math.Cos(E))
		E -= δ
		if math.Abs(δ) < keplerTolerance {
			return E, true
		}
	}
	return E, false
}

// ElementsToState reconstructs the Cartesian state at the target epoch by
// propagating the mean anomaly linearly in time and solving Kepler's
// equation. Parabolic geometry or a non-positive μ returns a zero state
// since the reconstruction is indeterminate.
func ElementsToState(el Elements, μ float64, at time.Time) (R, V []float64) {
	R = []float64{0, 0, 0}
	V = []float64{0, 0, 0}
	if μ <= 0 || el.A == 0 || math.IsInf(el.A, 0) {
		return
	}
	n := math.Sqrt(μ / math.Abs(math.Pow(el.A, 3)))
	M := el.M0 + n*at.Sub(el.Epoch).Seconds()
	M = math.Mod(M, 2*math.Pi)
	if M < 0 {
		M += 2 * math.Pi
	}
	E, _ := SolveKepler(M, el.E)
	ν := trueFromEccentric(E, el.E)

	p := el.SemiParameter()
	if p <= 0 {
		return
	}
	sinν, cosν := math.Sincos(ν)
	rNorm := p / (1 + el.E*cosν)
	R = PQW2ECI(el.I, el.ω, el.Ω, []float64{rNorm * cosν, rNorm * sinν, 0})
	vFact := math.Sqrt(μ / p)
	V = PQW2ECI(el.I, el.ω, el.Ω, []float64{-vFact * sinν, vFact * (el.E + cosν), 0})
	return
}

// PositionAtTrueAnomaly returns the inertial position on the conic section at
// the given true anomaly. This is a pure geometric query with no time
// dependence.
func PositionAtTrueAnomaly(el Elements, ν float64) []float64 {
	p := el.SemiParameter()
	sinν, cosν := math.Sincos(ν)
	denom := 1 + el.E*cosν
	if denom <= 0 || p == 0 {
		return []float64{0, 0, 0}
	}
	r := p / denom
	return PQW2ECI(el.I, el.ω, el.Ω, []float64{r * cosν, r * sinν, 0})
}

// SampleOrbitPath samples n evenly spaced positions around a closed orbit
// for path display. Unbound orbits return nil: there is no closed path to
// sample.
func SampleOrbitPath(el Elements, n int) [][]float64 {
	if el.E >= 1 || n < 2 {
		return nil
	}
	path := make([][]float64, n)
	for k := 0; k < n; k++ {
		ν := 2 * math.Pi * float64(k) / float64(n)
		path[k] = PositionAtTrueAnomaly(el, ν)
	}
	return path
}
