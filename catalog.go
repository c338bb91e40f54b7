package orbit

import (
	"fmt"
	"time"

	"github.com/soniakeys/meeus/julian"
)

// SunGM is the heliocentric gravitational parameter in km^3/s^2.
const SunGM = 1.32712440018e11

// CatalogEpoch is the reference epoch of the canonical catalog orbits.
var CatalogEpoch = time.Date(2025, 5, 11, 0, 0, 0, 0, time.UTC)

// earthAtmosphere is an exponential density table, kg/m^3 per km of altitude.
var earthAtmosphere = &AtmosphereModel{Layers: []AtmosphereLayer{
	{0, 1.225}, {25, 3.899e-2}, {50, 1.027e-3}, {75, 3.170e-5},
	{100, 5.297e-7}, {125, 1.687e-8}, {150, 2.070e-9}, {200, 2.789e-10},
	{250, 7.248e-11}, {300, 2.418e-11}, {350, 9.518e-12}, {400, 3.725e-12},
	{450, 1.585e-12}, {500, 6.967e-13}, {600, 1.454e-13}, {700, 3.614e-14},
	{800, 1.170e-14}, {900, 5.245e-15}, {1000, 3.019e-15},
}}

// marsAtmosphere is a coarse exponential density table for Mars.
var marsAtmosphere = &AtmosphereModel{Layers: []AtmosphereLayer{
	{0, 1.55e-2}, {25, 1.6e-3}, {50, 6.0e-5}, {75, 2.5e-6},
	{100, 5.0e-8}, {125, 1.0e-9},
}}

func canon(a, e, i, Ω, ω, M0, μ float64) *Elements {
	el := NewElements(a, e, i, Ω, ω, M0, CatalogEpoch, μ)
	return &el
}

// DefaultCatalog returns the body configuration of the solar system model:
// NAIF numbered barycenters, the Sun, the planets with their JPL
// gravitational parameters and oblateness coefficients, and the major moons.
// Canonical orbits are relative to the parent body at CatalogEpoch.
func DefaultCatalog() []BodyConfig {
	return []BodyConfig{
		{Name: "Solar System Barycenter", ID: 0, Type: "barycenter"},
		// The solar sphere of influence is effectively the whole system, so
		// heliocentric space always has an owner.
		{Name: "Sun", ID: 10, Type: "star", GM: SunGM, Radius: 695700, RotationPeriod: 2192832, SOI: 1e12, Parent: "Solar System Barycenter"},

		// Planetary barycenters carry the heliocentric canonical orbits.
		{Name: "Mercury Barycenter", ID: 1, Type: "barycenter", Parent: "Solar System Barycenter",
			CanonicalOrbit: canon(57909050, 0.2056, 7.005, 48.331, 29.124, 174.796, SunGM)},
		{Name: "Venus Barycenter", ID: 2, Type: "barycenter", Parent: "Solar System Barycenter",
			CanonicalOrbit: canon(108208000, 0.0067, 3.3947, 76.680, 54.884, 50.416, SunGM)},
		{Name: "Earth Barycenter", ID: 3, Type: "barycenter", Parent: "Solar System Barycenter",
			CanonicalOrbit: canon(149598023, 0.0167, 0.000, -11.26064, 114.20783, 358.617, SunGM)},
		{Name: "Mars Barycenter", ID: 4, Type: "barycenter", Parent: "Solar System Barycenter",
			CanonicalOrbit: canon(227939200, 0.0935, 1.850, 49.558, 286.502, 19.373, SunGM)},
		{Name: "Jupiter Barycenter", ID: 5, Type: "barycenter", Parent: "Solar System Barycenter",
			CanonicalOrbit: canon(778570000, 0.0489, 1.303, 100.464, 273.867, 20.020, SunGM)},
		{Name: "Saturn Barycenter", ID: 6, Type: "barycenter", Parent: "Solar System Barycenter",
			CanonicalOrbit: canon(1433530000, 0.0565, 2.485, 113.665, 339.392, 317.020, SunGM)},
		{Name: "Uranus Barycenter", ID: 7, Type: "barycenter", Parent: "Solar System Barycenter",
			CanonicalOrbit: canon(2875040000, 0.0463, 0.773, 74.006, 96.998, 142.2386, SunGM)},
		{Name: "Neptune Barycenter", ID: 8, Type: "barycenter", Parent: "Solar System Barycenter",
			CanonicalOrbit: canon(4504450000, 0.0097, 1.770, 131.784, 273.187, 256.228, SunGM)},
		{Name: "Pluto System Barycenter", ID: 9, Type: "barycenter", Parent: "Solar System Barycenter",
			CanonicalOrbit: canon(5906440628, 0.2488, 17.16, 110.299, 113.834, 14.53, SunGM)},

		// Planets sit at their system barycenter.
		{Name: "Mercury", ID: 199, Type: "planet", GM: 22031.86855, Radius: 2439.7, J2: 6.0e-5,
			RotationPeriod: 5067031.68, SOI: 112400, Parent: "Mercury Barycenter"},
		{Name: "Venus", ID: 299, Type: "planet", GM: 324858.592, Radius: 6051.8, J2: 4.458e-6,
			RotationPeriod: 20996798, SOI: 616000, Parent: "Venus Barycenter"},
		{Name: "Earth", ID: 399, Type: "planet", GM: 398600.435507, Radius: 6378.1366, J2: 1.08262668e-3,
			RotationPeriod: 86164.1, SOI: 924645, Parent: "Earth Barycenter", Atmosphere: earthAtmosphere},
		{Name: "Mars", ID: 499, Type: "planet", GM: 42828.375214, Radius: 3396.19, J2: 1.96045e-3,
			RotationPeriod: 88642.66, SOI: 576000, Parent: "Mars Barycenter", Atmosphere: marsAtmosphere},
		{Name: "Jupiter", ID: 599, Type: "planet", GM: 126686531.9, Radius: 71492, J2: 0.014696,
			RotationPeriod: 35730, SOI: 48.2e6, Parent: "Jupiter Barycenter"},
		{Name: "Saturn", ID: 699, Type: "planet", GM: 37931207.8, Radius: 60268, J2: 0.016298,
			RotationPeriod: 38361.6, SOI: 54.5e6, Parent: "Saturn Barycenter"},
		{Name: "Uranus", ID: 799, Type: "planet", GM: 5793951.3, Radius: 25559, RotationPeriod: 62063.7,
			SOI: 51.9e6, Parent: "Uranus Barycenter"},
		{Name: "Neptune", ID: 899, Type: "planet", GM: 6835103.1, Radius: 24764, RotationPeriod: 57996,
			SOI: 86.8e6, Parent: "Neptune Barycenter"},
		{Name: "Pluto", ID: 999, Type: "planet", GM: 869.613817, Radius: 1188.3, RotationPeriod: 551856.7,
			SOI: 3.08e6, Parent: "Pluto System Barycenter"},

		// Major moons, parented to the physical planet so sphere of
		// influence nesting works on massive bodies.
		{Name: "Moon", ID: 301, Type: "moon", GM: 4902.800066, Radius: 1737.4, J2: 2.032e-4,
			RotationPeriod: 2360591.5, SOI: 66100, Parent: "Earth",
			CanonicalOrbit: canon(384400, 0.0549, 5.145, 125.08, 318.15, 115.3654, 398600.435507)},
		{Name: "Phobos", ID: 401, Type: "moon", GM: 0.0007112, Radius: 11.2667, Parent: "Mars",
			CanonicalOrbit: canon(9376, 0.0151, 1.075, 49.2, 150.057, 177.4, 42828.375214)},
		{Name: "Deimos", ID: 402, Type: "moon", GM: 0.0000985, Radius: 6.2, Parent: "Mars",
			CanonicalOrbit: canon(23463.2, 0.00033, 1.788, 316.65, 260.729, 53.2, 42828.375214)},
		{Name: "Io", ID: 501, Type: "moon", GM: 595.6, Radius: 1821.6, Parent: "Jupiter",
			CanonicalOrbit: canon(421700, 0.0041, 0.036, 43.977, 84.129, 171.016, 126686531.9)},
		{Name: "Europa", ID: 502, Type: "moon", GM: 320.0, Radius: 1560.8, Parent: "Jupiter",
			CanonicalOrbit: canon(671034, 0.009, 0.465, 219.106, 88.970, 29.298, 126686531.9)},
		{Name: "Ganymede", ID: 503, Type: "moon", GM: 988.7, Radius: 2634.1, Parent: "Jupiter",
			CanonicalOrbit: canon(1070412, 0.0013, 0.177, 63.552, 192.417, 192.417, 126686531.9)},
		{Name: "Callisto", ID: 504, Type: "moon", GM: 717.0, Radius: 2410.3, Parent: "Jupiter",
			CanonicalOrbit: canon(1882709, 0.007, 0.192, 298.848, 52.643, 52.643, 126686531.9)},
		{Name: "Mimas", ID: 601, Type: "moon", GM: 2.502, Radius: 198.2, Parent: "Saturn",
			CanonicalOrbit: canon(185539, 0.0196, 1.574, 66.2, 160.4, 275.3, 37931207.8)},
		{Name: "Enceladus", ID: 602, Type: "moon", GM: 7.210, Radius: 252.1, Parent: "Saturn",
			CanonicalOrbit: canon(238042, 0.0047, 0.009, 0.0, 119.5, 57.0, 37931207.8)},
		{Name: "Tethys", ID: 603, Type: "moon", GM: 41.21, Radius: 531.1, Parent: "Saturn",
			CanonicalOrbit: canon(294672, 0.0001, 1.091, 273.0, 335.3, 0.0, 37931207.8)},
		{Name: "Dione", ID: 604, Type: "moon", GM: 73.116, Radius: 561.4, Parent: "Saturn",
			CanonicalOrbit: canon(377415, 0.0022, 0.028, 0.0, 116.0, 212.0, 37931207.8)},
		{Name: "Rhea", ID: 605, Type: "moon", GM: 153.94, Radius: 763.8, Parent: "Saturn",
			CanonicalOrbit: canon(527108, 0.001, 0.345, 133.7, 44.3, 31.5, 37931207.8)},
		{Name: "Titan", ID: 606, Type: "moon", GM: 8978.0, Radius: 2574.7, Parent: "Saturn",
			CanonicalOrbit: canon(1221870, 0.0288, 0.34854, 78.6, 78.3, 11.7, 37931207.8)},
		{Name: "Iapetus", ID: 608, Type: "moon", GM: 120.5, Radius: 734.5, Parent: "Saturn",
			CanonicalOrbit: canon(3560820, 0.0283, 15.47, 86.5, 254.5, 74.8, 37931207.8)},
		{Name: "Ariel", ID: 701, Type: "moon", GM: 86.0, Radius: 578.9, Parent: "Uranus",
			CanonicalOrbit: canon(190900, 0.001, 0.0, 0.0, 83.3, 119.8, 5793951.3)},
		{Name: "Umbriel", ID: 702, Type: "moon", GM: 81.5, Radius: 584.7, Parent: "Uranus",
			CanonicalOrbit: canon(266000, 0.004, 0.1, 195.5, 157.5, 258.3, 5793951.3)},
		{Name: "Titania", ID: 703, Type: "moon", GM: 228.2, Radius: 788.9, Parent: "Uranus",
			CanonicalOrbit: canon(436300, 0.001, 0.1, 26.4, 202.0, 53.2, 5793951.3)},
		{Name: "Oberon", ID: 704, Type: "moon", GM: 192.4, Radius: 761.4, Parent: "Uranus",
			CanonicalOrbit: canon(583400, 0.001, 0.1, 30.5, 182.4, 139.7, 5793951.3)},
		{Name: "Miranda", ID: 705, Type: "moon", GM: 4.4, Radius: 235.8, Parent: "Uranus",
			CanonicalOrbit: canon(129900, 0.001, 4.4, 100.7, 155.6, 72.4, 5793951.3)},
		{Name: "Triton", ID: 801, Type: "moon", GM: 1427.6, Radius: 1353.4, Parent: "Neptune",
			CanonicalOrbit: canon(354800, 0.000, 157.3, 178.1, 0.0, 63.0, 6835103.1)},
		{Name: "Proteus", ID: 802, Type: "moon", GM: 0.105, Radius: 210.0, Parent: "Neptune",
			CanonicalOrbit: canon(117600, 0.000, 0.0, 0.0, 0.0, 276.8, 6835103.1)},
		{Name: "Nereid", ID: 803, Type: "moon", GM: 0.021, Radius: 170.0, Parent: "Neptune",
			CanonicalOrbit: canon(5513900, 0.751, 5.1, 319.5, 296.8, 318.5, 6835103.1)},
		{Name: "Charon", ID: 901, Type: "moon", GM: 101.4, Radius: 606.0, Parent: "Pluto",
			CanonicalOrbit: canon(19591.4, 0.000, 96.145, 223.046, 0.0, 0.0, 869.613817)},
		{Name: "Nix", ID: 902, Type: "moon", GM: 0.003, Radius: 25.0, Parent: "Pluto",
			CanonicalOrbit: canon(48694, 0.002, 96.2, 223.1, 0.0, 0.0, 869.613817)},
		{Name: "Hydra", ID: 903, Type: "moon", GM: 0.005, Radius: 32.5, Parent: "Pluto",
			CanonicalOrbit: canon(64738, 0.005, 96.4, 223.2, 0.0, 0.0, 869.613817)},
		{Name: "Kerberos", ID: 904, Type: "moon", GM: 0.001, Radius: 12.0, Parent: "Pluto",
			CanonicalOrbit: canon(57783, 0.003, 96.3, 223.15, 0.0, 0.0, 869.613817)},
		{Name: "Styx", ID: 905, Type: "moon", GM: 0.0005, Radius: 8.0, Parent: "Pluto",
			CanonicalOrbit: canon(42656, 0.005, 96.1, 223.0, 0.0, 0.0, 869.613817)},
	}
}

// NewSolarSystem registers the default catalog into a fresh registry and
// places every body at the catalog epoch.
func NewSolarSystem() (*Registry, error) {
	reg := NewRegistry()
	for _, cfg := range DefaultCatalog() {
		if _, err := reg.Register(cfg); err != nil {
			return nil, fmt.Errorf("catalog: %w", err)
		}
	}
	PlaceBodiesAt(reg, CatalogEpoch)
	return reg, nil
}

// PlaceBodiesAt evaluates every canonical orbit at the given time and updates
// the body positions and velocities in the shared system frame, parents
// before children. Bodies without a canonical orbit sit at their parent.
func PlaceBodiesAt(reg *Registry, dt time.Time) {
	var place func(b *CelestialBody)
	place = func(b *CelestialBody) {
		if parent := b.Parent(); parent != nil {
			copy(b.Position, parent.Position)
			copy(b.Velocity, parent.Velocity)
			if b.CanonicalOrbit != nil {
				R, V := ElementsToState(*b.CanonicalOrbit, b.CanonicalOrbit.GM(), dt)
				for i := 0; i < 3; i++ {
					b.Position[i] += R[i]
					b.Velocity[i] += V[i]
				}
			}
		}
		for _, child := range b.Children() {
			place(child)
		}
	}
	for _, b := range reg.Bodies() {
		if b.Parent() == nil {
			place(b)
		}
	}
}

// PlaceBodiesAtJD is PlaceBodiesAt for a julian date, the time scale
// ephemeris tooling speaks.
func PlaceBodiesAtJD(reg *Registry, jd float64) {
	PlaceBodiesAt(reg, julian.JDToTime(jd))
}
