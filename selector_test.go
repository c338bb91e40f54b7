package orbit

import (
	"testing"

	"github.com/gonum/floats"
)

func solarSat(t *testing.T, reg *Registry, radius float64) SatelliteState {
	t.Helper()
	earth, found := reg.BodyByName("Earth")
	if !found {
		t.Fatal("no Earth in the catalog")
	}
	v := reg.CircularVelocity(earth, radius)
	return SatelliteState{
		ID: 1, Position: []float64{radius, 0, 0}, Velocity: []float64{0, v, 0},
		Mass: 1000, Area: 10, DragCoeff: 2.2, CentralBodyID: earth.ID, Epoch: CatalogEpoch,
	}
}

func TestSignificantLEO(t *testing.T) {
	reg, err := NewSolarSystem()
	if err != nil {
		t.Fatalf("solar system: %s", err)
	}
	sel := NewSelector(reg)
	// In low orbit the central body dwarfs everything: the Moon sits below
	// both floors and the Sun is excluded by the low orbit rule.
	sat := solarSat(t, reg, 6778)
	if sig := sel.Significant(sat); len(sig) != 0 {
		t.Fatalf("LEO perturbers: %+v", sig)
	}
}

func TestSignificantGEO(t *testing.T) {
	reg, err := NewSolarSystem()
	if err != nil {
		t.Fatalf("solar system: %s", err)
	}
	sel := NewSelector(reg)
	sat := solarSat(t, reg, 42164)
	sig := sel.Significant(sat)
	if len(sig) != 2 {
		t.Fatalf("GEO perturber count = %d, want Sun and Moon", len(sig))
	}
	// Sorted by id: Sun (10) before Moon (301).
	if sig[0].ID != 10 || sig[1].ID != 301 {
		t.Fatalf("GEO perturbers = %s, %s", sig[0], sig[1])
	}
}

func TestSignificantThresholds(t *testing.T) {
	reg, _, moon := testEarthMoonRegistry(t)
	// Lowering the relative floor pulls the Moon in even at LEO.
	sel := NewSelectorWithConfig(reg, SelectorConfig{AbsFloor: 1e-12, RelFloor: 1e-12, StarExclusionRadii: 3})
	sat := leoSat(399)
	sig := sel.Significant(sat)
	if len(sig) != 1 || sig[0].ID != moon.ID {
		t.Fatalf("expected only the Moon, got %+v", sig)
	}
	// Raising both floors empties the set again.
	sel = NewSelectorWithConfig(reg, SelectorConfig{AbsFloor: 1, RelFloor: 1, StarExclusionRadii: 3})
	if sig := sel.Significant(sat); len(sig) != 0 {
		t.Fatalf("expected no perturbers, got %+v", sig)
	}
}

func TestSOIBodyDeepestWins(t *testing.T) {
	reg, err := NewSolarSystem()
	if err != nil {
		t.Fatalf("solar system: %s", err)
	}
	sel := NewSelector(reg)
	earth, _ := reg.BodyByName("Earth")
	moon, _ := reg.BodyByName("Moon")

	// A point next to the Moon is inside both the lunar and the terrestrial
	// spheres; the deepest one owns it.
	nearMoon := []float64{moon.Position[0] + 1000, moon.Position[1], moon.Position[2]}
	if owner := sel.SOIBody(nearMoon); owner == nil || owner.ID != moon.ID {
		t.Fatalf("near-Moon owner = %v", owner)
	}

	// A point opposite the Moon inside the terrestrial sphere belongs to
	// the Earth.
	away := unit([]float64{earth.Position[0] - moon.Position[0], earth.Position[1] - moon.Position[1], earth.Position[2] - moon.Position[2]})
	fromEarth := make([]float64, 3)
	for i := 0; i < 3; i++ {
		fromEarth[i] = earth.Position[i] + 200000*away[i]
	}
	if owner := sel.SOIBody(fromEarth); owner == nil || owner.ID != earth.ID {
		t.Fatalf("cislunar owner = %v", owner)
	}

	// Interplanetary space belongs to the Sun.
	interplanetary := make([]float64, 3)
	for i := 0; i < 3; i++ {
		interplanetary[i] = earth.Position[i] + 2e6*away[i]
	}
	if owner := sel.SOIBody(interplanetary); owner == nil || owner.Type != Star {
		t.Fatalf("interplanetary owner = %v", owner)
	}
}

func TestTransitionAndRebase(t *testing.T) {
	reg, err := NewSolarSystem()
	if err != nil {
		t.Fatalf("solar system: %s", err)
	}
	sel := NewSelector(reg)
	earth, _ := reg.BodyByName("Earth")
	moon, _ := reg.BodyByName("Moon")

	// A satellite still bound to the Earth but sitting deep inside the
	// lunar sphere must be handed over.
	sat := solarSat(t, reg, 6778)
	for i := 0; i < 3; i++ {
		sat.Position[i] = moon.Position[i] - earth.Position[i]
	}
	sat.Position[0] += 10000
	sat.Velocity = []float64{0, 1, 0}

	target, changed := sel.Transition(sat)
	if !changed || target.ID != moon.ID {
		t.Fatalf("transition = %v, %v", target, changed)
	}

	absBefore := sat.AbsolutePosition(reg)
	rebased := Rebase(reg, sat, target)
	if rebased.CentralBodyID != moon.ID {
		t.Fatal("rebase did not change the central body")
	}
	absAfter := rebased.AbsolutePosition(reg)
	if !vectorsEqual(absBefore, absAfter) {
		t.Fatalf("absolute position not preserved:\n%+v\n%+v", absBefore, absAfter)
	}
	// Absolute velocity as well.
	for i := 0; i < 3; i++ {
		vBefore := earth.Velocity[i] + sat.Velocity[i]
		vAfter := moon.Velocity[i] + rebased.Velocity[i]
		if !floats.EqualWithinAbs(vBefore, vAfter, 1e-9) {
			t.Fatalf("absolute velocity component %d not preserved", i)
		}
	}
	// A rebased satellite is no longer in transition.
	if _, changed := sel.Transition(rebased); changed {
		t.Fatal("transition reported after rebase")
	}
}

func TestTransitionStable(t *testing.T) {
	reg, err := NewSolarSystem()
	if err != nil {
		t.Fatalf("solar system: %s", err)
	}
	sel := NewSelector(reg)
	// A LEO satellite stays with its central body.
	sat := solarSat(t, reg, 6778)
	if _, changed := sel.Transition(sat); changed {
		t.Fatal("spurious transition in LEO")
	}
}

func TestSelectorDeterministicOrder(t *testing.T) {
	reg, err := NewSolarSystem()
	if err != nil {
		t.Fatalf("solar system: %s", err)
	}
	sel := NewSelector(reg)
	sat := solarSat(t, reg, 42164)
	first := sel.Significant(sat)
	for run := 0; run < 5; run++ {
		again := sel.Significant(sat)
		if len(again) != len(first) {
			t.Fatal("selection size changed between runs")
		}
		for i := range again {
			if again[i].ID != first[i].ID {
				t.Fatal("selection order changed between runs")
			}
		}
	}
	// And the order is ascending.
	ids := make([]int, len(first))
	for i, b := range first {
		ids[i] = b.ID
	}
	for i := 1; i < len(ids); i++ {
		if ids[i-1] >= ids[i] {
			t.Fatalf("ids not ascending: %v", ids)
		}
	}
}
