package coords

import (
	"errors"
	"math"
	"testing"

	"github.com/signalsfoundry/space-query/units"
)

func TestPolarCartesianRoundTrip(t *testing.T) {
	cases := []Cartesian{
		CartesianKm(7000, 0, 0),
		CartesianKm(1234.5, -6789.0, 42.42),
		CartesianKm(-1, -1, -1),
		CartesianKm(0, 0, 400),
	}

	for _, v := range cases {
		p, err := CartesianToLatLonAlt(v)
		if err != nil {
			t.Fatalf("CartesianToLatLonAlt(%v): %v", v, err)
		}
		back, err := PolarToCartesian(p.Lat, p.Lon, p.Alt)
		if err != nil {
			t.Fatalf("PolarToCartesian: %v", err)
		}
		if !vecClose(t, v, back, 1e-9) {
			t.Fatalf("round-trip mismatch: in %v out %v", v, back)
		}
	}
}

func TestCartesianToPolarDegenerate(t *testing.T) {
	_, err := CartesianToRaDec(CartesianKm(0, 0, 0))
	var dge *DegenerateGeometryError
	if !errors.As(err, &dge) {
		t.Fatalf("zero vector err = %v, want DegenerateGeometryError", err)
	}
}

func TestCartesianToPolarAnglesInDegrees(t *testing.T) {
	p, err := CartesianToRaDec(CartesianKm(0, 5000, 0))
	if err != nil {
		t.Fatalf("CartesianToRaDec: %v", err)
	}
	if p.RA.Unit != units.Degree || p.Dec.Unit != units.Degree {
		t.Fatalf("angles units = %v/%v, want degrees", p.RA.Unit.Name(), p.Dec.Unit.Name())
	}
	if math.Abs(p.RA.Mag-90) > 1e-9 {
		t.Fatalf("RA = %v, want 90", p.RA.Mag)
	}
	if math.Abs(p.Dec.Mag) > 1e-9 {
		t.Fatalf("Dec = %v, want 0", p.Dec.Mag)
	}
	if math.Abs(p.Dist.Mag-5000) > 1e-9 {
		t.Fatalf("Dist = %v, want 5000", p.Dist.Mag)
	}
}

func TestDistanceUnitPropagates(t *testing.T) {
	// Distance in metres must come back out in metres on every axis.
	v, err := PolarToCartesian(units.Degrees(0), units.Degrees(0), units.New(1000, units.Meter))
	if err != nil {
		t.Fatalf("PolarToCartesian: %v", err)
	}
	if v.X.Unit != units.Meter || v.Y.Unit != units.Meter || v.Z.Unit != units.Meter {
		t.Fatalf("axis units = %v/%v/%v, want metres",
			v.X.Unit.Name(), v.Y.Unit.Name(), v.Z.Unit.Name())
	}
	if math.Abs(v.X.Mag-1000) > 1e-9 {
		t.Fatalf("X = %v, want 1000", v.X.Mag)
	}
}

func TestFromCenterAddsEarthRadius(t *testing.T) {
	surface := LatLonAlt{
		Lat: units.Degrees(10),
		Lon: units.Degrees(20),
		Alt: units.Kilometers(400),
	}
	central, err := FromCenter(surface)
	if err != nil {
		t.Fatalf("FromCenter: %v", err)
	}
	if math.Abs(central.Alt.Mag-(400+EarthMeanRadiusKm)) > 1e-9 {
		t.Fatalf("Alt = %v, want %v", central.Alt.Mag, 400+EarthMeanRadiusKm)
	}

	back, err := ToSurface(central)
	if err != nil {
		t.Fatalf("ToSurface: %v", err)
	}
	if math.Abs(back.Alt.Mag-400) > 1e-9 {
		t.Fatalf("round-trip Alt = %v, want 400", back.Alt.Mag)
	}
}

func TestMatrixRotations(t *testing.T) {
	// RotZ by 90 degrees maps +x onto -y in the frame-rotation convention.
	m := RotZ(math.Pi / 2)
	got := m.Apply([3]float64{1, 0, 0})
	want := [3]float64{0, -1, 0}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Fatalf("RotZ apply = %v, want %v", got, want)
		}
	}

	// A rotation followed by its transpose is the identity.
	id := m.Mul(m.Transpose())
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			want := 0.0
			if i == j {
				want = 1.0
			}
			if math.Abs(id[i][j]-want) > 1e-12 {
				t.Fatalf("m * m^T != I: %v", id)
			}
		}
	}
}

func vecClose(t *testing.T, a, b Cartesian, tol float64) bool {
	t.Helper()
	av, err := KmVector(a)
	if err != nil {
		t.Fatalf("KmVector: %v", err)
	}
	bv, err := KmVector(b)
	if err != nil {
		t.Fatalf("KmVector: %v", err)
	}
	for i := range av {
		if math.Abs(av[i]-bv[i]) > tol {
			return false
		}
	}
	return true
}
