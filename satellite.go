package orbit

import (
	"fmt"
	"time"
)

// SatelliteState is the full dynamical state of one satellite. Position and
// velocity are always relative to the instantaneous position and velocity of
// the central body, never absolute; the central body changes across sphere of
// influence transitions.
type SatelliteState struct {
	ID            int
	Position      []float64 // km, relative to the central body
	Velocity      []float64 // km/s, relative to the central body
	Mass          float64   // kg
	Area          float64   // cross sectional area, m^2
	DragCoeff     float64
	CentralBodyID int
	Epoch         time.Time

	// Breakdown optionally holds the latest per-body acceleration
	// contributions for diagnostics, keyed by body id.
	Breakdown map[int][]float64
}

// Validate checks the satellite configuration against the registry.
func (s SatelliteState) Validate(reg *Registry) error {
	if len(s.Position) != 3 || len(s.Velocity) != 3 {
		return ConfigurationError{fmt.Sprintf("satellite %d", s.ID), "state", "position and velocity must be 3-vectors"}
	}
	if s.Mass <= 0 {
		return ConfigurationError{fmt.Sprintf("satellite %d", s.ID), "mass", "must be positive"}
	}
	if _, found := reg.Body(s.CentralBodyID); !found {
		return ConfigurationError{fmt.Sprintf("satellite %d", s.ID), "central body", fmt.Sprintf("%d is not registered", s.CentralBodyID)}
	}
	return nil
}

// Clone returns a deep copy so a propagation task can own its state.
func (s SatelliteState) Clone() SatelliteState {
	c := s
	c.Position = append([]float64{}, s.Position...)
	c.Velocity = append([]float64{}, s.Velocity...)
	c.Breakdown = nil
	return c
}

// AbsolutePosition returns the satellite position in the shared system frame.
func (s SatelliteState) AbsolutePosition(reg *Registry) []float64 {
	abs := append([]float64{}, s.Position...)
	if central, found := reg.Body(s.CentralBodyID); found {
		for i := 0; i < 3; i++ {
			abs[i] += central.Position[i]
		}
	}
	return abs
}
