package orbit

import "sort"

// SelectorConfig tunes which bodies count as significant perturbers.
type SelectorConfig struct {
	// AbsFloor is the raw acceleration floor in km/s^2 above which a body is
	// always significant.
	AbsFloor float64
	// RelFloor is the fraction of the central body's own gravitational
	// acceleration above which a body is significant.
	RelFloor float64
	// StarExclusionRadii force-excludes the system's star below this many
	// central body radii: its tidal contribution on a low orbit is
	// numerically negligible even when the raw pull clears the floor.
	StarExclusionRadii float64
}

// DefaultSelectorConfig returns the documented default thresholds.
func DefaultSelectorConfig() SelectorConfig {
	return SelectorConfig{
		AbsFloor:           1e-7,
		RelFloor:           1e-5,
		StarExclusionRadii: 3,
	}
}

// Selector decides which non-central bodies materially perturb a satellite
// and answers sphere of influence membership questions.
type Selector struct {
	reg *Registry
	cfg SelectorConfig
}

// NewSelector returns a selector with the default thresholds.
func NewSelector(reg *Registry) *Selector {
	return &Selector{reg, DefaultSelectorConfig()}
}

// NewSelectorWithConfig returns a selector with custom thresholds.
func NewSelectorWithConfig(reg *Registry, cfg SelectorConfig) *Selector {
	return &Selector{reg, cfg}
}

// Significant returns the bodies whose gravity at the satellite's position
// exceeds either the absolute floor or the relative floor with respect to the
// central body. Barycenters are never gravity sources. The result is sorted
// by body id so repeated calls are deterministic.
func (s *Selector) Significant(sat SatelliteState) []*CelestialBody {
	central, found := s.reg.Body(sat.CentralBodyID)
	if !found {
		return nil
	}
	r := norm(sat.Position)
	var centralAccel float64
	if r > minRadius {
		centralAccel = s.reg.GM(central) / (r * r)
	}
	satAbs := sat.AbsolutePosition(s.reg)

	lowOrbit := central.Radius > 0 && r < s.cfg.StarExclusionRadii*central.Radius

	var significant []*CelestialBody
	for _, body := range s.reg.Bodies() {
		if body.ID == central.ID || body.Type == Barycenter {
			continue
		}
		μ := s.reg.GM(body)
		if μ <= 0 {
			continue
		}
		if body.Type == Star && lowOrbit {
			continue
		}
		d := make([]float64, 3)
		for i := 0; i < 3; i++ {
			d[i] = body.Position[i] - satAbs[i]
		}
		dist := norm(d)
		if dist < minRadius {
			continue
		}
		raw := μ / (dist * dist)
		if raw > s.cfg.AbsFloor || (centralAccel > 0 && raw > s.cfg.RelFloor*centralAccel) {
			significant = append(significant, body)
		}
	}
	sort.Slice(significant, func(i, j int) bool { return significant[i].ID < significant[j].ID })
	return significant
}

// SOIBody returns the body whose sphere of influence contains the given
// absolute position. When several nested spheres contain it, the deepest
// (smallest) one wins. Returns nil when no configured sphere contains the
// position.
func (s *Selector) SOIBody(absPosition []float64) *CelestialBody {
	var best *CelestialBody
	for _, body := range s.reg.Bodies() {
		if body.SOI <= 0 || body.Type == Barycenter {
			continue
		}
		if !s.reg.WithinSOI(body, absPosition) {
			continue
		}
		if best == nil || body.SOI < best.SOI {
			best = body
		}
	}
	return best
}

// Transition detects whether the satellite has left its current central
// body's sphere of influence. The second return is true when the central
// body should change; the transition is detected, never forced.
func (s *Selector) Transition(sat SatelliteState) (*CelestialBody, bool) {
	owner := s.SOIBody(sat.AbsolutePosition(s.reg))
	if owner == nil || owner.ID == sat.CentralBodyID {
		return nil, false
	}
	return owner, true
}

// Rebase re-expresses the satellite state relative to the target body,
// preserving the absolute position and velocity across the frame switch.
func Rebase(reg *Registry, sat SatelliteState, target *CelestialBody) SatelliteState {
	out := sat.Clone()
	central, found := reg.Body(sat.CentralBodyID)
	if !found || target == nil {
		return out
	}
	for i := 0; i < 3; i++ {
		out.Position[i] = central.Position[i] + sat.Position[i] - target.Position[i]
		out.Velocity[i] = central.Velocity[i] + sat.Velocity[i] - target.Velocity[i]
	}
	out.CentralBodyID = target.ID
	return out
}
