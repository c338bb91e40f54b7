package orbit

import (
	"container/list"
	"math"
)

// densityCacheSize bounds the memoized atmospheric density entries.
const densityCacheSize = 4096

// densityKey memoizes density lookups per body and rounded altitude.
// The altitude is rounded to 100 m so that neighbouring integration steps
// share an entry without losing the density gradient.
type densityKey struct {
	bodyID int
	altHm  int64
}

// Registry holds the celestial bodies of a simulation and derives cached
// scalar properties. It is not safe for concurrent mutation; propagations
// only read from it.
type Registry struct {
	bodies map[int]*CelestialBody
	byName map[string]int

	gmCache      map[int]float64
	densityLRU   *list.List // of densityKey, front is most recent
	densityElems map[densityKey]*list.Element
	densityVals  map[densityKey]float64
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		bodies:       make(map[int]*CelestialBody),
		byName:       make(map[string]int),
		gmCache:      make(map[int]float64),
		densityLRU:   list.New(),
		densityElems: make(map[densityKey]*list.Element),
		densityVals:  make(map[densityKey]float64),
	}
}

// Register validates the configuration, creates the body and links it to its
// parent when one is named. A duplicate id or an unknown parent is a
// ConfigurationError.
func (reg *Registry) Register(cfg BodyConfig) (*CelestialBody, error) {
	if _, found := reg.bodies[cfg.ID]; found {
		return nil, ConfigurationError{cfg.Name, "id", "is already registered"}
	}
	body, err := newBody(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.Parent != "" {
		parent, found := reg.BodyByName(cfg.Parent)
		if !found {
			return nil, ConfigurationError{cfg.Name, "parent", "'" + cfg.Parent + "' is not registered"}
		}
		parent.AddChild(body)
	}
	reg.bodies[body.ID] = body
	reg.byName[body.Name] = body.ID
	return body, nil
}

// Reconfigure replaces the mutable scalar configuration of a registered body
// and drops every cached derivation for it. Position and velocity updates do
// not go through here and do not invalidate caches.
func (reg *Registry) Reconfigure(id int, cfg BodyConfig) (*CelestialBody, error) {
	body, found := reg.bodies[id]
	if !found {
		return nil, ConfigurationError{cfg.Name, "id", "is not registered"}
	}
	fresh, err := newBody(cfg)
	if err != nil {
		return nil, err
	}
	body.Mass = fresh.Mass
	body.Radius = fresh.Radius
	body.J2 = fresh.J2
	body.RotationPeriod = fresh.RotationPeriod
	body.SOI = fresh.SOI
	body.Atmosphere = fresh.Atmosphere
	body.μ = fresh.μ
	delete(reg.gmCache, id)
	reg.dropDensity(id)
	return body, nil
}

// Body returns the body with the given id.
func (reg *Registry) Body(id int) (*CelestialBody, bool) {
	b, found := reg.bodies[id]
	return b, found
}

// BodyByName returns the body with the given name.
func (reg *Registry) BodyByName(name string) (*CelestialBody, bool) {
	id, found := reg.byName[name]
	if !found {
		return nil, false
	}
	return reg.bodies[id], true
}

// Bodies returns all registered bodies in no particular order.
func (reg *Registry) Bodies() []*CelestialBody {
	all := make([]*CelestialBody, 0, len(reg.bodies))
	for _, b := range reg.bodies {
		all = append(all, b)
	}
	return all
}

// GM returns the gravitational parameter in km^3/s^2: the explicit value if
// configured, otherwise G times the mass, otherwise zero. The result is
// memoized until the body is reconfigured.
func (reg *Registry) GM(b *CelestialBody) float64 {
	if μ, found := reg.gmCache[b.ID]; found {
		return μ
	}
	var μ float64
	switch {
	case b.μ > 0:
		μ = b.μ
	case b.Mass > 0:
		μ = G * b.Mass
	default:
		μ = 0
	}
	reg.gmCache[b.ID] = μ
	return μ
}

// AtmosphericDensity returns the density in kg/m^3 at the given altitude in
// km above the body's surface, memoized per body and rounded altitude.
func (reg *Registry) AtmosphericDensity(b *CelestialBody, altitude float64) float64 {
	if b.Atmosphere == nil {
		return 0
	}
	key := densityKey{b.ID, int64(math.Round(altitude * 10))}
	if elem, found := reg.densityElems[key]; found {
		reg.densityLRU.MoveToFront(elem)
		return reg.densityVals[key]
	}
	ρ := b.Atmosphere.Density(altitude)
	reg.densityElems[key] = reg.densityLRU.PushFront(key)
	reg.densityVals[key] = ρ
	for reg.densityLRU.Len() > densityCacheSize {
		oldest := reg.densityLRU.Back()
		old := oldest.Value.(densityKey)
		reg.densityLRU.Remove(oldest)
		delete(reg.densityElems, old)
		delete(reg.densityVals, old)
	}
	return ρ
}

func (reg *Registry) dropDensity(id int) {
	for elem := reg.densityLRU.Front(); elem != nil; {
		next := elem.Next()
		key := elem.Value.(densityKey)
		if key.bodyID == id {
			reg.densityLRU.Remove(elem)
			delete(reg.densityElems, key)
			delete(reg.densityVals, key)
		}
		elem = next
	}
}

// EscapeVelocity returns the escape velocity in km/s at the given altitude in
// km above the surface, or zero when the resulting radius is not positive.
func (reg *Registry) EscapeVelocity(b *CelestialBody, altitude float64) float64 {
	r := b.Radius + altitude
	if r <= 0 {
		return 0
	}
	return math.Sqrt(2 * reg.GM(b) / r)
}

// CircularVelocity returns the circular orbital velocity in km/s at the given
// radius in km from the body center, or zero for a non-positive radius.
func (reg *Registry) CircularVelocity(b *CelestialBody, radius float64) float64 {
	if radius <= 0 {
		return 0
	}
	return math.Sqrt(reg.GM(b) / radius)
}

// VisVivaVelocity returns the orbital velocity in km/s at the given radius on
// an orbit of the given semi major axis (vis-viva), or zero for non-positive
// inputs.
func (reg *Registry) VisVivaVelocity(b *CelestialBody, semiMajorAxis, radius float64) float64 {
	if radius <= 0 || semiMajorAxis == 0 {
		return 0
	}
	v2 := reg.GM(b) * (2/radius - 1/semiMajorAxis)
	if v2 <= 0 {
		return 0
	}
	return math.Sqrt(v2)
}

// WithinSOI returns whether the provided absolute position is inside the
// body's sphere of influence. Always false without a configured SOI radius.
func (reg *Registry) WithinSOI(b *CelestialBody, absPosition []float64) bool {
	if b.SOI <= 0 {
		return false
	}
	rel := make([]float64, 3)
	for i := 0; i < 3; i++ {
		rel[i] = absPosition[i] - b.Position[i]
	}
	return norm(rel) < b.SOI
}

// DeriveSOI returns the classical sphere of influence radius
// a*(m/M)^(2/5) with respect to the body's parent, or zero when the body has
// no parent or masses are unknown.
func (reg *Registry) DeriveSOI(b *CelestialBody, semiMajorAxis float64) float64 {
	parent := b.Parent()
	if parent == nil || semiMajorAxis <= 0 {
		return 0
	}
	μ, μp := reg.GM(b), reg.GM(parent)
	if μ <= 0 || μp <= 0 {
		return 0
	}
	return semiMajorAxis * math.Pow(μ/μp, 2/5.)
}
