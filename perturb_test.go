package orbit

import (
	"math"
	"testing"

	"github.com/gonum/floats"
)

// testEarthMoonRegistry positions the Earth at the frame origin and the Moon
// down the x axis at its mean distance.
func testEarthMoonRegistry(t *testing.T) (*Registry, *CelestialBody, *CelestialBody) {
	t.Helper()
	reg, earth := testEarthRegistry(t)
	moon, err := reg.Register(BodyConfig{
		Name: "Moon", ID: 301, Type: "moon",
		GM: 4902.800066, Radius: 1737.4, SOI: 66100, Parent: "Earth",
	})
	if err != nil {
		t.Fatalf("register Moon: %s", err)
	}
	moon.Position = []float64{384400, 0, 0}
	return reg, earth, moon
}

func leoSat(central int) SatelliteState {
	r := 6378.1366 + 400
	v := math.Sqrt(earthμ / r)
	return SatelliteState{
		ID: 1, Position: []float64{r, 0, 0}, Velocity: []float64{0, v, 0},
		Mass: 1000, Area: 10, DragCoeff: 2.2, CentralBodyID: central, Epoch: CatalogEpoch,
	}
}

func TestCentralGravity(t *testing.T) {
	reg, _, _ := testEarthMoonRegistry(t)
	model := NewAccelModel(reg)
	sat := leoSat(399)
	accel, _ := model.Acceleration(sat, nil, Flags{}, false)
	r := norm(sat.Position)
	if !floats.EqualWithinRel(norm(accel), earthμ/(r*r), 1e-12) {
		t.Fatalf("central gravity magnitude = %e", norm(accel))
	}
	// Pointing at the body.
	if dot(unit(accel), unit(sat.Position)) > -0.999999 {
		t.Fatal("central gravity does not point inward")
	}
}

func TestCentralGravitySingularity(t *testing.T) {
	reg, _, _ := testEarthMoonRegistry(t)
	model := NewAccelModel(reg)
	sat := leoSat(399)
	sat.Position = []float64{0, 0, 0}
	accel, _ := model.Acceleration(sat, nil, Flags{J2: true, Drag: true}, false)
	if !vectorsEqual(accel, []float64{0, 0, 0}) {
		t.Fatalf("singularity must yield zero, got %+v", accel)
	}
	for _, a := range accel {
		if math.IsNaN(a) || math.IsInf(a, 0) {
			t.Fatal("singularity produced NaN or Inf")
		}
	}
}

func TestJ2Perturbation(t *testing.T) {
	reg, earth, _ := testEarthMoonRegistry(t)
	model := NewAccelModel(reg)
	r := earth.Radius + 400

	// On the equator the oblate bulge strengthens the inward pull.
	equ := leoSat(399)
	plain, _ := model.Acceleration(equ, nil, Flags{}, false)
	withJ2, _ := model.Acceleration(equ, nil, Flags{J2: true}, false)
	if norm(withJ2) <= norm(plain) {
		t.Fatal("equatorial J2 must strengthen gravity")
	}
	// Over the pole it weakens it.
	pole := leoSat(399)
	pole.Position = []float64{0, 0, r}
	pole.Velocity = []float64{math.Sqrt(earthμ / r), 0, 0}
	plainP, _ := model.Acceleration(pole, nil, Flags{}, false)
	withJ2P, _ := model.Acceleration(pole, nil, Flags{J2: true}, false)
	if norm(withJ2P) >= norm(plainP) {
		t.Fatal("polar J2 must weaken gravity")
	}
	// The relative size is (3/2) J2 (R/r)^2 at the equator.
	δ := (norm(withJ2) - norm(plain)) / norm(plain)
	want := (3 / 2.) * earth.J2 * math.Pow(earth.Radius/r, 2)
	if !floats.EqualWithinRel(δ, want, 1e-3) {
		t.Fatalf("equatorial J2 fraction = %e, want %e", δ, want)
	}
}

func TestDragCoRotation(t *testing.T) {
	reg, earth, _ := testEarthMoonRegistry(t)
	model := NewAccelModel(reg)
	r := earth.Radius + 400

	// A satellite moving exactly with the co-rotating atmosphere feels no
	// drag at all.
	still := leoSat(399)
	still.Velocity = cross(earth.AngularVelocity(), still.Position)
	plain, _ := model.Acceleration(still, nil, Flags{}, false)
	withDrag, _ := model.Acceleration(still, nil, Flags{Drag: true}, false)
	if !vectorsEqual(plain, withDrag) {
		t.Fatal("co-rotating satellite must feel no drag")
	}

	// Over the pole the atmosphere is locally at rest, so drag opposes the
	// full velocity.
	pole := leoSat(399)
	pole.Position = []float64{0, 0, r}
	pole.Velocity = []float64{math.Sqrt(earthμ / r), 0, 0}
	plainP, _ := model.Acceleration(pole, nil, Flags{}, false)
	withDragP, _ := model.Acceleration(pole, nil, Flags{Drag: true}, false)
	drag := make([]float64, 3)
	for i := 0; i < 3; i++ {
		drag[i] = withDragP[i] - plainP[i]
	}
	if dot(unit(drag), unit(pole.Velocity)) > -0.999999 {
		t.Fatal("polar drag does not oppose the velocity")
	}
	// Magnitude check: 0.5 ρ Cd (A/m) v^2, with the m to km conversion.
	ρ := reg.AtmosphericDensity(earth, 400)
	v := norm(pole.Velocity)
	want := 0.5 * ρ * 2.2 * (10.0 / 1000.0) * v * v * 1e3
	if !floats.EqualWithinRel(norm(drag), want, 1e-9) {
		t.Fatalf("drag magnitude = %e, want %e", norm(drag), want)
	}

	// No atmosphere above the table, no drag.
	high := leoSat(399)
	high.Position = []float64{earth.Radius + 2000, 0, 0}
	plainH, _ := model.Acceleration(high, nil, Flags{}, false)
	withDragH, _ := model.Acceleration(high, nil, Flags{Drag: true}, false)
	if !vectorsEqual(plainH, withDragH) {
		t.Fatal("drag above the atmosphere table")
	}
}

func TestThirdBodyDifferential(t *testing.T) {
	reg, _, moon := testEarthMoonRegistry(t)
	model := NewAccelModel(reg)

	near := leoSat(399)
	near.Position = []float64{42164, 0, 0} // toward the Moon
	accel, _ := model.Acceleration(near, []*CelestialBody{moon}, Flags{ThirdBody: true}, false)
	plain, _ := model.Acceleration(near, []*CelestialBody{moon}, Flags{}, false)
	tidal := make([]float64, 3)
	for i := 0; i < 3; i++ {
		tidal[i] = accel[i] - plain[i]
	}
	// Between the bodies the differential pull is toward the Moon.
	if tidal[0] <= 0 {
		t.Fatalf("near-side tidal x = %e, want positive", tidal[0])
	}
	// And much smaller than the raw attraction.
	d := 384400.0 - 42164
	raw := reg.GM(moon) / (d * d)
	if norm(tidal) >= raw {
		t.Fatalf("tidal %e not below raw %e", norm(tidal), raw)
	}

	// On the far side it points away from the Moon.
	far := near.Clone()
	far.Position = []float64{-42164, 0, 0}
	accelF, _ := model.Acceleration(far, []*CelestialBody{moon}, Flags{ThirdBody: true}, false)
	plainF, _ := model.Acceleration(far, []*CelestialBody{moon}, Flags{}, false)
	if accelF[0]-plainF[0] >= 0 {
		t.Fatal("far-side tidal pull must point away from the Moon")
	}

	// Without the flag the perturber list is ignored: the two symmetric
	// positions see the same central magnitude.
	if !floats.EqualWithinRel(norm(plain), norm(plainF), 1e-12) {
		t.Fatal("central gravity asymmetric across symmetric positions")
	}
}

func TestThirdBodySingularity(t *testing.T) {
	reg, _, moon := testEarthMoonRegistry(t)
	model := NewAccelModel(reg)
	sat := leoSat(399)
	sat.Position = append([]float64{}, moon.Position...) // exactly at the Moon
	accel, _ := model.Acceleration(sat, []*CelestialBody{moon}, Flags{ThirdBody: true}, false)
	for _, a := range accel {
		if math.IsNaN(a) || math.IsInf(a, 0) {
			t.Fatal("perturber singularity produced NaN or Inf")
		}
	}
}

func TestBarycenterNeverPerturbs(t *testing.T) {
	reg, _, _ := testEarthMoonRegistry(t)
	bary, _ := reg.Register(BodyConfig{Name: "EMB", ID: 3, Type: "barycenter"})
	bary.Position = []float64{4671, 0, 0}
	model := NewAccelModel(reg)
	sat := leoSat(399)
	with, _ := model.Acceleration(sat, []*CelestialBody{bary}, Flags{ThirdBody: true}, false)
	without, _ := model.Acceleration(sat, nil, Flags{ThirdBody: true}, false)
	if !vectorsEqual(with, without) {
		t.Fatal("barycenter contributed acceleration")
	}
}

func TestAccelerationBreakdown(t *testing.T) {
	reg, _, moon := testEarthMoonRegistry(t)
	model := NewAccelModel(reg)
	sat := leoSat(399)
	flags := Flags{J2: true, Drag: true, ThirdBody: true}
	accel, breakdown := model.Acceleration(sat, []*CelestialBody{moon}, flags, true)
	if breakdown == nil {
		t.Fatal("no breakdown returned")
	}
	if _, found := breakdown[399]; !found {
		t.Fatal("central contribution missing from the breakdown")
	}
	if _, found := breakdown[301]; !found {
		t.Fatal("Moon contribution missing from the breakdown")
	}
	// The contributions sum to the returned acceleration.
	sum := []float64{0, 0, 0}
	for _, contrib := range breakdown {
		for i := 0; i < 3; i++ {
			sum[i] += contrib[i]
		}
	}
	if !vectorsEqual(sum, accel) {
		t.Fatalf("breakdown sum %+v != accel %+v", sum, accel)
	}
	// Without the request no map is allocated.
	if _, breakdown := model.Acceleration(sat, []*CelestialBody{moon}, flags, false); breakdown != nil {
		t.Fatal("breakdown allocated without being requested")
	}
}
