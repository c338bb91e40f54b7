package orbit

import (
	"math"
	"testing"

	"github.com/gonum/floats"
)

func TestRotationSingleAxis(t *testing.T) {
	x := []float64{1, 0, 0}
	// R3 by 90 degrees maps x onto -y in the rotated frame.
	if !vectorsEqual(MxV33(R3(math.Pi/2), x), []float64{0, -1, 0}) {
		t.Fatal("R3 rotation fail")
	}
	// R1 leaves the first axis alone.
	if !vectorsEqual(MxV33(R1(math.Pi/3), x), x) {
		t.Fatal("R1 must not move the first axis")
	}
	z := []float64{0, 0, 1}
	if !vectorsEqual(MxV33(R2(math.Pi/2), z), []float64{-1, 0, 0}) {
		t.Fatal("R2 rotation fail")
	}
}

func TestRotationNormPreserving(t *testing.T) {
	v := []float64{3, -4, 12}
	for _, θ := range []float64{0.1, 1, 2.5, 5} {
		for _, rot := range [][]float64{
			MxV33(R1(θ), v), MxV33(R2(θ), v), MxV33(R3(θ), v),
			Rot313Vec(θ, θ/2, θ/3, v),
		} {
			if !floats.EqualWithinRel(norm(rot), norm(v), 1e-12) {
				t.Fatalf("rotation by %f changed the norm to %f", θ, norm(rot))
			}
		}
	}
}

func TestRot313Composition(t *testing.T) {
	v := []float64{1, 2, 3}
	// A 3-1-3 sequence equals the three single axis rotations applied in
	// order.
	θ1, θ2, θ3 := 0.3, 0.7, 1.1
	step := MxV33(R3(θ3), MxV33(R1(θ2), MxV33(R3(θ1), v)))
	if !vectorsEqual(Rot313Vec(θ1, θ2, θ3, v), step) {
		t.Fatal("3-1-3 composition fail")
	}
	// Zero angles are the identity.
	if !vectorsEqual(Rot313Vec(0, 0, 0, v), v) {
		t.Fatal("zero rotation moved the vector")
	}
}

func TestPQW2ECI(t *testing.T) {
	// With no inclination and no node the perifocal frame is the inertial
	// frame.
	p := []float64{7000, 100, 0}
	if !vectorsEqual(PQW2ECI(0, 0, 0, p), p) {
		t.Fatal("trivial perifocal rotation fail")
	}
	// A 90 degree inclination maps the in-plane q axis onto z.
	q := []float64{0, 1, 0}
	if !vectorsEqual(PQW2ECI(math.Pi/2, 0, 0, q), []float64{0, 0, 1}) {
		t.Fatal("polar perifocal rotation fail")
	}
	// The periapsis direction lands at the angle ω past the node.
	ω := math.Pi / 3
	out := PQW2ECI(0, ω, 0, []float64{1, 0, 0})
	if ok, err := anglesEqual(math.Atan2(out[1], out[0]), ω); !ok {
		t.Fatalf("periapsis direction: %s", err)
	}
}
