package orbit

import (
	"fmt"
	"math"
)

const (
	// G is the universal gravitational constant in km^3/(kg.s^2).
	G = 6.6743e-20
	// AU is one astronomical unit in kilometers.
	AU = 1.49597870700e8
)

// BodyType enumerates the kinds of bodies the registry accepts.
type BodyType uint8

const (
	// Star is a stellar primary.
	Star BodyType = iota + 1
	// Planet orbits a star or a barycenter.
	Planet
	// Moon orbits a planet.
	Moon
	// Barycenter is a massless reference point for a body system.
	Barycenter
)

func (t BodyType) String() string {
	switch t {
	case Star:
		return "star"
	case Planet:
		return "planet"
	case Moon:
		return "moon"
	case Barycenter:
		return "barycenter"
	}
	return "unknown"
}

// BodyTypeFromString parses a body type name.
func BodyTypeFromString(name string) (BodyType, error) {
	switch name {
	case "star":
		return Star, nil
	case "planet":
		return Planet, nil
	case "moon":
		return Moon, nil
	case "barycenter":
		return Barycenter, nil
	}
	return 0, fmt.Errorf("undefined body type '%s'", name)
}

// ConfigurationError reports an invalid body or satellite configuration.
type ConfigurationError struct {
	Name   string
	Field  string
	Reason string
}

func (e ConfigurationError) Error() string {
	return fmt.Sprintf("config %s: %s %s", e.Name, e.Field, e.Reason)
}

// AtmosphereLayer is one sample of an altitude to density table.
type AtmosphereLayer struct {
	Altitude float64 // km above the surface
	Density  float64 // kg/m^3
}

// AtmosphereModel interpolates a density table. Outside of the table the
// density is zero. Layers must be sorted by increasing altitude.
type AtmosphereModel struct {
	Layers []AtmosphereLayer
}

// MinAltitude returns the lowest altitude covered by the model, in km.
func (m *AtmosphereModel) MinAltitude() float64 {
	if len(m.Layers) == 0 {
		return 0
	}
	return m.Layers[0].Altitude
}

// MaxAltitude returns the highest altitude covered by the model, in km.
func (m *AtmosphereModel) MaxAltitude() float64 {
	if len(m.Layers) == 0 {
		return 0
	}
	return m.Layers[len(m.Layers)-1].Altitude
}

// Density returns the density in kg/m^3 at the given altitude in km.
// The interpolation is exponential between layers since density decays
// roughly exponentially with altitude.
func (m *AtmosphereModel) Density(altitude float64) float64 {
	n := len(m.Layers)
	if n == 0 || altitude < m.MinAltitude() || altitude > m.MaxAltitude() {
		return 0
	}
	if n == 1 {
		return m.Layers[0].Density
	}
	hi := 1
	for hi < n-1 && m.Layers[hi].Altitude < altitude {
		hi++
	}
	lo := hi - 1
	l0, l1 := m.Layers[lo], m.Layers[hi]
	if l0.Density <= 0 || l1.Density <= 0 {
		// Cannot interpolate in log space, fall back to linear.
		f := (altitude - l0.Altitude) / (l1.Altitude - l0.Altitude)
		return l0.Density + f*(l1.Density-l0.Density)
	}
	H := (l1.Altitude - l0.Altitude) / math.Log(l0.Density/l1.Density)
	return l0.Density * math.Exp(-(altitude-l0.Altitude)/H)
}

// BodyConfig is the external configuration record for one body.
type BodyConfig struct {
	Name           string           `mapstructure:"name"`
	ID             int              `mapstructure:"id"`
	Type           string           `mapstructure:"type"`
	Mass           float64          `mapstructure:"mass"`    // kg
	GM             float64          `mapstructure:"gm"`      // km^3/s^2, explicit gravitational parameter
	Radius         float64          `mapstructure:"radius"`  // km
	J2             float64          `mapstructure:"j2"`      // oblateness coefficient
	RotationPeriod float64          `mapstructure:"rotation_period"` // s
	SOI            float64          `mapstructure:"soi"`     // km
	Parent         string           `mapstructure:"parent"`
	Atmosphere     *AtmosphereModel `mapstructure:"-"`
	CanonicalOrbit *Elements        `mapstructure:"-"`
}

// CelestialBody defines a celestial object held by the registry.
// Position and Velocity are in the shared system frame and are mutated every
// simulation tick by the caller's ephemeris; everything else only changes
// through registry reconfiguration.
type CelestialBody struct {
	Name           string
	ID             int
	Type           BodyType
	Mass           float64 // kg
	Radius         float64 // km
	J2             float64
	RotationPeriod float64 // s
	SOI            float64 // km, 0 when not configured
	Atmosphere     *AtmosphereModel
	CanonicalOrbit *Elements
	Position       []float64 // km, system frame
	Velocity       []float64 // km/s, system frame

	μ        float64 // explicit GM when configured
	parent   *CelestialBody
	children map[int]*CelestialBody
}

// String implements the Stringer interface.
func (b *CelestialBody) String() string {
	return fmt.Sprintf("%s [%d] (%s)", b.Name, b.ID, b.Type)
}

// Parent returns the parent body, or nil at the root of the hierarchy.
func (b *CelestialBody) Parent() *CelestialBody {
	return b.parent
}

// Children returns the child bodies in no particular order.
func (b *CelestialBody) Children() []*CelestialBody {
	kids := make([]*CelestialBody, 0, len(b.children))
	for _, c := range b.children {
		kids = append(kids, c)
	}
	return kids
}

// AddChild links the provided body as a child and updates its back reference.
// Adding an existing child is a no-op.
func (b *CelestialBody) AddChild(c *CelestialBody) {
	if c == nil || c == b {
		return
	}
	if _, found := b.children[c.ID]; found {
		return
	}
	if b.children == nil {
		b.children = make(map[int]*CelestialBody)
	}
	b.children[c.ID] = c
	c.parent = b
}

// RemoveChild unlinks the provided body. Removing an absent child is a no-op.
func (b *CelestialBody) RemoveChild(c *CelestialBody) {
	if c == nil {
		return
	}
	if _, found := b.children[c.ID]; !found {
		return
	}
	delete(b.children, c.ID)
	c.parent = nil
}

// AngularVelocity returns the body's rotation vector ω about its polar axis
// in rad/s, or the zero vector for a non-rotating body.
func (b *CelestialBody) AngularVelocity() []float64 {
	if b.RotationPeriod == 0 {
		return []float64{0, 0, 0}
	}
	return []float64{0, 0, 2 * math.Pi / b.RotationPeriod}
}

// newBody validates the configuration and builds the body. Barycenters are
// exempt from the mass and radius requirements.
func newBody(cfg BodyConfig) (*CelestialBody, error) {
	if cfg.Name == "" {
		return nil, ConfigurationError{cfg.Name, "name", "is required"}
	}
	bType, err := BodyTypeFromString(cfg.Type)
	if err != nil {
		return nil, ConfigurationError{cfg.Name, "type", err.Error()}
	}
	if bType != Barycenter {
		if cfg.Mass <= 0 && cfg.GM <= 0 {
			return nil, ConfigurationError{cfg.Name, "mass", "or gm is required for a " + cfg.Type}
		}
		if cfg.Radius <= 0 {
			return nil, ConfigurationError{cfg.Name, "radius", "is required for a " + cfg.Type}
		}
	}
	return &CelestialBody{
		Name:           cfg.Name,
		ID:             cfg.ID,
		Type:           bType,
		Mass:           cfg.Mass,
		Radius:         cfg.Radius,
		J2:             cfg.J2,
		RotationPeriod: cfg.RotationPeriod,
		SOI:            cfg.SOI,
		Atmosphere:     cfg.Atmosphere,
		CanonicalOrbit: cfg.CanonicalOrbit,
		Position:       []float64{0, 0, 0},
		Velocity:       []float64{0, 0, 0},
		μ:              cfg.GM,
		children:       make(map[int]*CelestialBody),
	}, nil
}
