package orbit

import (
	"math"
	"testing"
)

func TestCross(t *testing.T) {
	i := []float64{1, 0, 0}
	j := []float64{0, 1, 0}
	k := []float64{0, 0, 1}
	if !vectorsEqual(cross(i, j), k) {
		t.Fatal("i x j != k")
	}
	if !vectorsEqual(cross(j, k), i) {
		t.Fatal("j x k != i")
	}
	if !vectorsEqual(cross([]float64{2, 3, 4}, []float64{5, 6, 7}), []float64{-3, 6, -3}) {
		t.Fatal("cross fail")
	}
	if !vectorsEqual(cross([]float64{6524.834, 6862.875, 6448.296}, []float64{4.901327, 5.533756, -1.976341}), []float64{-4.924667792015100e4, 4.450050424118601e4, 0.246964476137900e4}) {
		t.Fatal("cross of orbital state fail")
	}
}

func TestUnitAndNorm(t *testing.T) {
	v := []float64{3, 4, 0}
	if norm(v) != 5 {
		t.Fatalf("norm = %f", norm(v))
	}
	if !vectorsEqual(unit(v), []float64{0.6, 0.8, 0}) {
		t.Fatal("unit fail")
	}
	if !vectorsEqual(unit([]float64{0, 0, 0}), []float64{0, 0, 0}) {
		t.Fatal("unit of zero vector must be the zero vector")
	}
}

func TestClampedAcos(t *testing.T) {
	if math.IsNaN(clampedAcos(1 + 1e-15)) {
		t.Fatal("clamp failed above 1")
	}
	if math.IsNaN(clampedAcos(-1 - 1e-15)) {
		t.Fatal("clamp failed below -1")
	}
	if clampedAcos(0) != math.Pi/2 {
		t.Fatal("acos(0) wrong")
	}
}

func TestDegRad(t *testing.T) {
	for _, d := range []float64{0, 30, 90, 180, 270, 359} {
		if ok, err := anglesEqual(Deg2rad(d), d*math.Pi/180); !ok {
			t.Fatalf("Deg2rad(%f): %s", d, err)
		}
	}
	if ok, _ := anglesEqual(Deg2rad(-90), Deg2rad(270)); !ok {
		t.Fatal("negative degrees should wrap")
	}
	if ok, _ := anglesEqual(Deg2rad(Rad2deg(1.234)), 1.234); !ok {
		t.Fatal("deg/rad roundtrip fail")
	}
}

func TestSign(t *testing.T) {
	if sign(-3) != -1 || sign(42) != 1 || sign(0) != 1 {
		t.Fatal("sign fail")
	}
}
