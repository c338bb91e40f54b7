package orbit

import (
	"container/list"
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"math"
	"sort"
	"sync"

	"github.com/go-kit/kit/log"
)

const (
	// DefaultStep is the default integration step in seconds.
	DefaultStep = 10.0
	// trajectoryCacheSize bounds the cached trajectories.
	trajectoryCacheSize = 64
	// minTrajectoryPoints is the floor kept when truncating a cached
	// trajectory to fewer periods.
	minTrajectoryPoints = 2
)

// TrajectoryPoint is one propagated sample, relative to the central body the
// satellite was bound to at that time offset.
type TrajectoryPoint struct {
	Position      []float64 // km
	Velocity      []float64 // km/s
	TimeOffset    float64   // s since the start of the propagation
	CentralBodyID int
}

// trajKey identifies a cached trajectory: which satellite, against which body
// configuration, at which sample density and perturbation set.
type trajKey struct {
	satelliteID int
	fingerprint uint64
	density     int
}

type trajEntry struct {
	periods float64
	points  []TrajectoryPoint
	final   SatelliteState
}

// Propagator orchestrates integration steps into trajectories, with result
// caching and period truncation. A single Propagate call is synchronous and
// single threaded; concurrent calls for different satellites are safe as long
// as the registry is not mutated while they run.
type Propagator struct {
	reg    *Registry
	sel    *Selector
	model  *AccelModel
	logger log.Logger

	cacheMu    sync.Mutex
	cacheLRU   *list.List // of trajKey
	cacheElems map[trajKey]*list.Element
	cacheVals  map[trajKey]*trajEntry
}

// NewPropagator returns a propagator over the given registry. A nil logger
// disables logging.
func NewPropagator(reg *Registry, logger log.Logger) *Propagator {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Propagator{
		reg:        reg,
		sel:        NewSelector(reg),
		model:      NewAccelModel(reg),
		logger:     logger,
		cacheLRU:   list.New(),
		cacheElems: make(map[trajKey]*list.Element),
		cacheVals:  make(map[trajKey]*trajEntry),
	}
}

// Selector exposes the propagator's significance selector.
func (p *Propagator) Selector() *Selector { return p.sel }

// Breakdown returns the instantaneous per-body acceleration contributions for
// diagnostics.
func (p *Propagator) Breakdown(sat SatelliteState, flags Flags) map[int][]float64 {
	_, breakdown := p.model.Acceleration(sat, p.sel.Significant(sat), flags, true)
	return breakdown
}

// Propagate integrates the satellite state for the given duration and time
// step, both in seconds, and returns the sampled trajectory. Bodies are
// treated as static for the duration of the call. A non-positive step falls
// back to the default step rather than aborting. Sphere of influence
// transitions re-express the state around the new central body mid flight.
func (p *Propagator) Propagate(sat SatelliteState, duration, step float64, flags Flags) ([]TrajectoryPoint, error) {
	if err := sat.Validate(p.reg); err != nil {
		return nil, err
	}
	if duration <= 0 {
		return nil, fmt.Errorf("propagation duration must be positive, got %f", duration)
	}
	if step <= 0 || step > duration {
		step = DefaultStep
	}

	current := sat.Clone()
	significant := p.sel.Significant(current)
	rk4 := NewRK4()
	scratch := current.Clone()
	accelFn := func(pos, vel []float64) []float64 {
		scratch.Position = pos
		scratch.Velocity = vel
		scratch.CentralBodyID = current.CentralBodyID
		a, _ := p.model.Acceleration(scratch, significant, flags, false)
		return a
	}

	n := int(duration/step) + 1
	points := make([]TrajectoryPoint, 0, n)
	elapsed := 0.0
	for {
		points = append(points, TrajectoryPoint{
			Position:      append([]float64{}, current.Position...),
			Velocity:      append([]float64{}, current.Velocity...),
			TimeOffset:    elapsed,
			CentralBodyID: current.CentralBodyID,
		})
		if elapsed >= duration {
			break
		}
		dt := step
		if elapsed+dt > duration {
			dt = duration - elapsed
		}
		current.Position, current.Velocity = rk4.Step(current.Position, current.Velocity, accelFn, dt)
		elapsed += dt

		if owner, changed := p.sel.Transition(current); changed {
			p.logger.Log("subsys", "prop", "satellite", current.ID, "soi", owner.Name, "t", elapsed)
			current = Rebase(p.reg, current, owner)
			significant = p.sel.Significant(current)
		}
	}
	return points, nil
}

// PropagatePeriods propagates the satellite for the requested number of
// orbital periods at the given sample density (points per period), reusing
// and extending cached trajectories where possible:
//   - a cached trajectory for more periods than requested is truncated to a
//     prefix slice of at least two points;
//   - a cached trajectory for fewer periods is extended from its final state
//     rather than recomputed;
//   - a different sample density is a different cache key and forces a full
//     recomputation.
//
// Unbound orbits have no period and are rejected.
func (p *Propagator) PropagatePeriods(sat SatelliteState, periods float64, pointsPerPeriod int, flags Flags) ([]TrajectoryPoint, error) {
	if err := sat.Validate(p.reg); err != nil {
		return nil, err
	}
	if periods <= 0 {
		return nil, fmt.Errorf("period count must be positive, got %f", periods)
	}
	if pointsPerPeriod < minTrajectoryPoints {
		pointsPerPeriod = minTrajectoryPoints
	}
	central, _ := p.reg.Body(sat.CentralBodyID)
	el, ok := StateToElements(sat.Position, sat.Velocity, p.reg.GM(central), sat.Epoch)
	if !ok {
		return nil, fmt.Errorf("satellite %d state is degenerate", sat.ID)
	}
	period := el.Period()
	if math.IsInf(period, 1) {
		return nil, fmt.Errorf("satellite %d orbit is unbound, no period to propagate", sat.ID)
	}
	step := period / float64(pointsPerPeriod)

	key := trajKey{sat.ID, p.fingerprint(flags), pointsPerPeriod}

	p.cacheMu.Lock()
	defer p.cacheMu.Unlock()
	if entry := p.cacheGet(key); entry != nil {
		if entry.periods >= periods {
			n := int(math.Round(float64(len(entry.points)) * periods / entry.periods))
			if n < minTrajectoryPoints {
				n = minTrajectoryPoints
			}
			if n > len(entry.points) {
				n = len(entry.points)
			}
			return clonePoints(entry.points[:n]), nil
		}
		// Extend from the cached final state instead of recomputing.
		extra, err := p.Propagate(entry.final, period*(periods-entry.periods), step, flags)
		if err != nil {
			return nil, err
		}
		base := entry.points[len(entry.points)-1].TimeOffset
		for _, pt := range extra[1:] { // the first extra point duplicates the cached tail
			pt.TimeOffset += base
			entry.points = append(entry.points, pt)
		}
		entry.periods = periods
		entry.final = p.stateAt(entry.final, extra[len(extra)-1])
		return clonePoints(entry.points), nil
	}

	points, err := p.Propagate(sat, period*periods, step, flags)
	if err != nil {
		return nil, err
	}
	final := p.stateAt(sat, points[len(points)-1])
	p.cachePut(key, &trajEntry{periods, points, final})
	p.logger.Log("subsys", "prop", "satellite", sat.ID, "cached", len(points), "periods", periods)
	return clonePoints(points), nil
}

// clonePoints deep-copies a trajectory so callers can never mutate cached
// entries through a returned slice.
func clonePoints(points []TrajectoryPoint) []TrajectoryPoint {
	out := make([]TrajectoryPoint, len(points))
	for i, pt := range points {
		pt.Position = append([]float64{}, pt.Position...)
		pt.Velocity = append([]float64{}, pt.Velocity...)
		out[i] = pt
	}
	return out
}

// stateAt rebuilds a satellite state from a trajectory point, keeping the
// ballistic properties of the template.
func (p *Propagator) stateAt(template SatelliteState, pt TrajectoryPoint) SatelliteState {
	s := template.Clone()
	s.Position = append([]float64{}, pt.Position...)
	s.Velocity = append([]float64{}, pt.Velocity...)
	s.CentralBodyID = pt.CentralBodyID
	return s
}

// fingerprint hashes the scalar configuration of every registered body plus
// the perturbation flags. Body position updates do not change it: a cached
// trajectory is a snapshot-level result, invalidated by reconfiguration.
// Bodies are hashed in ascending id order so the same configuration always
// produces the same fingerprint.
func (p *Propagator) fingerprint(flags Flags) uint64 {
	h := fnv.New64a()
	buf := make([]byte, 8)
	word := func(v float64) {
		binary.LittleEndian.PutUint64(buf, math.Float64bits(v))
		h.Write(buf)
	}
	bodies := p.reg.Bodies()
	sort.Slice(bodies, func(i, j int) bool { return bodies[i].ID < bodies[j].ID })
	for _, b := range bodies {
		word(float64(b.ID))
		word(p.reg.GM(b))
		word(b.Radius)
		word(b.J2)
		word(b.RotationPeriod)
		word(b.SOI)
		if b.Atmosphere == nil {
			word(0)
			continue
		}
		word(float64(len(b.Atmosphere.Layers)))
		for _, layer := range b.Atmosphere.Layers {
			word(layer.Altitude)
			word(layer.Density)
		}
	}
	var f uint64
	if flags.J2 {
		f |= 1
	}
	if flags.Drag {
		f |= 2
	}
	if flags.ThirdBody {
		f |= 4
	}
	binary.LittleEndian.PutUint64(buf, f)
	h.Write(buf)
	return h.Sum64()
}

// cacheGet must be called with cacheMu held.
func (p *Propagator) cacheGet(key trajKey) *trajEntry {
	elem, found := p.cacheElems[key]
	if !found {
		return nil
	}
	p.cacheLRU.MoveToFront(elem)
	return p.cacheVals[key]
}

// cachePut must be called with cacheMu held.
func (p *Propagator) cachePut(key trajKey, entry *trajEntry) {
	if elem, found := p.cacheElems[key]; found {
		p.cacheLRU.MoveToFront(elem)
		p.cacheVals[key] = entry
		return
	}
	p.cacheElems[key] = p.cacheLRU.PushFront(key)
	p.cacheVals[key] = entry
	for p.cacheLRU.Len() > trajectoryCacheSize {
		oldest := p.cacheLRU.Back()
		old := oldest.Value.(trajKey)
		p.cacheLRU.Remove(oldest)
		delete(p.cacheElems, old)
		delete(p.cacheVals, old)
	}
}
