package orbit

import "math"

// Flags selects which perturbation sources participate in a propagation.
// The zero value is the conservative default: pure two-body gravity.
type Flags struct {
	J2        bool
	Drag      bool
	ThirdBody bool
}

// AccelModel computes the net perturbed acceleration on a satellite from the
// body records in a registry. All distances in km, velocities in km/s,
// accelerations in km/s^2.
type AccelModel struct {
	reg *Registry
}

// NewAccelModel returns an acceleration model over the given registry.
func NewAccelModel(reg *Registry) *AccelModel {
	return &AccelModel{reg}
}

// Acceleration returns the net acceleration on the satellite in the
// non-inertial frame centered on its central body, and, when withBreakdown is
// set, the per-source contributions keyed by body id. Perturbers must already
// be filtered for significance; barycenters among them contribute nothing.
// Any zero-distance singularity contributes a zero vector, never NaN.
func (m *AccelModel) Acceleration(sat SatelliteState, perturbers []*CelestialBody, flags Flags, withBreakdown bool) ([]float64, map[int][]float64) {
	accel := []float64{0, 0, 0}
	var breakdown map[int][]float64
	if withBreakdown {
		breakdown = make(map[int][]float64, len(perturbers)+1)
	}
	central, found := m.reg.Body(sat.CentralBodyID)
	if !found {
		return accel, breakdown
	}

	centralAccel := []float64{0, 0, 0}
	r := norm(sat.Position)
	μ := m.reg.GM(central)
	if r > minRadius && μ > 0 {
		fact := -μ / math.Pow(r, 3)
		for i := 0; i < 3; i++ {
			centralAccel[i] = fact * sat.Position[i]
		}

		if flags.J2 && central.J2 != 0 {
			x, y, z := sat.Position[0], sat.Position[1], sat.Position[2]
			z2 := z * z
			r2 := x*x + y*y + z2
			r252 := math.Pow(r2, 5/2.)
			r272 := math.Pow(r2, 7/2.)
			accJ2 := (3 / 2.) * central.J2 * math.Pow(central.Radius, 2) * μ
			centralAccel[0] += accJ2 * (5*x*z2/r272 - x/r252)
			centralAccel[1] += accJ2 * (5*y*z2/r272 - y/r252)
			centralAccel[2] += accJ2 * (5*z*z2/r272 - 3*z/r252)
		}

		if flags.Drag && sat.Mass > 0 {
			ρ := m.reg.AtmosphericDensity(central, r-central.Radius)
			if ρ > 0 {
				// The atmosphere co-rotates with the body, so its local
				// velocity is ω x r: zero at the poles, maximal at the
				// equator. Drag acts on the velocity relative to it.
				vAtm := cross(central.AngularVelocity(), sat.Position)
				vRel := make([]float64, 3)
				for i := 0; i < 3; i++ {
					vRel[i] = sat.Velocity[i] - vAtm[i]
				}
				vRelNorm := norm(vRel)
				// ρ is in kg/m^3 and velocities in km/s; the factor 1e3
				// brings the result back to km/s^2.
				fact := -0.5 * ρ * sat.DragCoeff * (sat.Area / sat.Mass) * vRelNorm * 1e3
				for i := 0; i < 3; i++ {
					centralAccel[i] += fact * vRel[i]
				}
			}
		}
	}
	for i := 0; i < 3; i++ {
		accel[i] += centralAccel[i]
	}
	if withBreakdown {
		breakdown[central.ID] = centralAccel
	}

	if flags.ThirdBody {
		satAbs := make([]float64, 3)
		for i := 0; i < 3; i++ {
			satAbs[i] = central.Position[i] + sat.Position[i]
		}
		for _, body := range perturbers {
			if body.ID == central.ID || body.Type == Barycenter {
				continue
			}
			μb := m.reg.GM(body)
			if μb <= 0 {
				continue
			}
			toBody := make([]float64, 3)    // satellite to perturber
			toCentral := make([]float64, 3) // central body to perturber
			for i := 0; i < 3; i++ {
				toBody[i] = body.Position[i] - satAbs[i]
				toCentral[i] = body.Position[i] - central.Position[i]
			}
			dSat := norm(toBody)
			dCentral := norm(toCentral)
			if dSat < minRadius || dCentral < minRadius {
				continue
			}
			dSat3 := math.Pow(dSat, 3)
			dCentral3 := math.Pow(dCentral, 3)
			contrib := make([]float64, 3)
			// The subtraction expresses the perturbation in the frame of
			// the central body: only the differential (tidal) pull remains.
			for i := 0; i < 3; i++ {
				contrib[i] = μb * (toBody[i]/dSat3 - toCentral[i]/dCentral3)
				accel[i] += contrib[i]
			}
			if withBreakdown {
				breakdown[body.ID] = contrib
			}
		}
	}

	return accel, breakdown
}
