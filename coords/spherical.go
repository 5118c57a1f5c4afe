package coords

import (
	"math"

	"github.com/signalsfoundry/space-query/units"
)

// The spherical<->cartesian math lives here and nowhere else; both transform
// backends reuse these functions.

// polar is the common shape of the two polar representations: a latitude-like
// angle, a longitude-like angle, and a centre-relative distance.
type polar struct {
	lat, lon units.Quantity
	dist     units.Quantity
}

// PolarToCartesian converts a latitude/longitude/distance triple into a
// cartesian vector. The distance component's unit propagates to all three
// output axes.
func PolarToCartesian(lat, lon, dist units.Quantity) (Cartesian, error) {
	phi, err := lat.In(units.Radian)
	if err != nil {
		return Cartesian{}, err
	}
	rho, err := lon.In(units.Radian)
	if err != nil {
		return Cartesian{}, err
	}
	if dist.Unit.Dim() != units.Length {
		return Cartesian{}, units.ErrIncompatibleUnits
	}

	r := dist.Mag
	u := dist.Unit
	return Cartesian{
		X: units.New(r*math.Cos(phi)*math.Cos(rho), u),
		Y: units.New(r*math.Cos(phi)*math.Sin(rho), u),
		Z: units.New(r*math.Sin(phi), u),
	}, nil
}

// cartesianToPolar is the shared inverse. Angles come back in degrees; the
// distance keeps the unit of the input z axis. A zero-length vector has no
// defined latitude and fails with DegenerateGeometryError.
func cartesianToPolar(v Cartesian) (polar, error) {
	u := v.Z.Unit
	x, err := v.X.In(u)
	if err != nil {
		return polar{}, err
	}
	y, err := v.Y.In(u)
	if err != nil {
		return polar{}, err
	}
	z := v.Z.Mag

	dist := math.Sqrt(x*x + y*y + z*z)
	if dist == 0 {
		return polar{}, &DegenerateGeometryError{Reason: "latitude of zero-length vector is undefined"}
	}

	rho := math.Atan2(y, x)
	// Keep longitude inside (-2pi, 2pi].
	if rho > 2*math.Pi {
		rho -= 2 * math.Pi
	} else if rho < -2*math.Pi {
		rho += 2 * math.Pi
	}
	phi := math.Asin(z / dist)

	return polar{
		lat:  units.Degrees(phi * 180 / math.Pi),
		lon:  units.Degrees(rho * 180 / math.Pi),
		dist: units.New(dist, u),
	}, nil
}

// CartesianToLatLonAlt converts a cartesian vector to the terrestrial polar
// representation. The result's altitude is centre-relative; callers that want
// a surface-relative altitude apply ToSurface afterwards.
func CartesianToLatLonAlt(v Cartesian) (LatLonAlt, error) {
	p, err := cartesianToPolar(v)
	if err != nil {
		return LatLonAlt{}, err
	}
	return LatLonAlt{Lat: p.lat, Lon: p.lon, Alt: p.dist}, nil
}

// CartesianToRaDec converts a cartesian vector to the celestial polar
// representation.
func CartesianToRaDec(v Cartesian) (RaDec, error) {
	p, err := cartesianToPolar(v)
	if err != nil {
		return RaDec{}, err
	}
	return RaDec{Dec: p.lat, RA: p.lon, Dist: p.dist}, nil
}

// ToCartesian dispatches on the union tag and converts any position into a
// cartesian vector. Polar inputs are treated as centre-relative; callers with
// surface-relative terrestrial positions apply FromCenter first.
func ToCartesian(p Position) (Cartesian, error) {
	switch pos := p.(type) {
	case Cartesian:
		return pos, nil
	case RaDec:
		return PolarToCartesian(pos.Dec, pos.RA, pos.Dist)
	case LatLonAlt:
		return PolarToCartesian(pos.Lat, pos.Lon, pos.Alt)
	default:
		// Position is a closed union; this is unreachable for real inputs.
		return Cartesian{}, &DegenerateGeometryError{Reason: "unknown position variant"}
	}
}

// KmVector flattens a cartesian position into a raw [3]float64 in km.
func KmVector(v Cartesian) ([3]float64, error) {
	x, err := v.X.In(units.Kilometer)
	if err != nil {
		return [3]float64{}, err
	}
	y, err := v.Y.In(units.Kilometer)
	if err != nil {
		return [3]float64{}, err
	}
	z, err := v.Z.In(units.Kilometer)
	if err != nil {
		return [3]float64{}, err
	}
	return [3]float64{x, y, z}, nil
}
