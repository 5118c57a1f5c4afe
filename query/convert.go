package query

import (
	"github.com/signalsfoundry/space-query/coords"
	"github.com/signalsfoundry/space-query/units"
)

// ApplyFrameRotation runs the representation pipeline both backends share:
// lift the input position to a centre-relative cartesian kilometre vector,
// apply the from->to rotation, and lower the result back into the
// representation the destination frame calls for. The input's length unit is
// carried through to the output so callers get answers in the unit they
// asked in.
//
// Variant rules: cartesian input stays cartesian; polar input follows the
// destination convention (terrestrial => LatLonAlt with surface-relative
// altitude, celestial => RaDec with centre-relative distance).
func ApplyFrameRotation(pos coords.Position, rot coords.Matrix3, to coords.Frame) (coords.Position, error) {
	lengthUnit, err := positionLengthUnit(pos)
	if err != nil {
		return nil, err
	}

	centered := pos
	if lla, ok := pos.(coords.LatLonAlt); ok {
		centered, err = coords.FromCenter(lla)
		if err != nil {
			return nil, err
		}
	}
	vec, err := coords.ToCartesian(centered)
	if err != nil {
		return nil, err
	}
	km, err := coords.KmVector(vec)
	if err != nil {
		return nil, err
	}

	out := rot.Apply(km)
	outVec := coords.CartesianKm(out[0], out[1], out[2])

	if _, ok := pos.(coords.Cartesian); ok {
		return retagCartesian(outVec, lengthUnit)
	}
	if to.Terrestrial() {
		lla, err := coords.CartesianToLatLonAlt(outVec)
		if err != nil {
			return nil, err
		}
		surface, err := coords.ToSurface(lla)
		if err != nil {
			return nil, err
		}
		surface.Alt, err = surface.Alt.Convert(lengthUnit)
		if err != nil {
			return nil, err
		}
		return surface, nil
	}
	radec, err := coords.CartesianToRaDec(outVec)
	if err != nil {
		return nil, err
	}
	radec.Dist, err = radec.Dist.Convert(lengthUnit)
	if err != nil {
		return nil, err
	}
	return radec, nil
}

func positionLengthUnit(pos coords.Position) (units.Unit, error) {
	switch p := pos.(type) {
	case coords.Cartesian:
		return p.Z.Unit, nil
	case coords.RaDec:
		return p.Dist.Unit, nil
	case coords.LatLonAlt:
		return p.Alt.Unit, nil
	default:
		return units.Unit{}, &coords.DegenerateGeometryError{Reason: "unknown position variant"}
	}
}

func retagCartesian(v coords.Cartesian, u units.Unit) (coords.Position, error) {
	x, err := v.X.Convert(u)
	if err != nil {
		return nil, err
	}
	y, err := v.Y.Convert(u)
	if err != nil {
		return nil, err
	}
	z, err := v.Z.Convert(u)
	if err != nil {
		return nil, err
	}
	return coords.Cartesian{X: x, Y: y, Z: z}, nil
}
