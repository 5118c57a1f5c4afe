// Package coords defines the position model shared by every transform
// backend: a closed union of three representations (cartesian vector,
// celestial polar, terrestrial polar), the spherical<->cartesian math, and
// the reference-frame registry.
package coords

import (
	"github.com/signalsfoundry/space-query/units"
)

// EarthMeanRadiusKm is the mean Earth radius used to relate surface-relative
// altitudes to centre-relative distances (kilometres).
const EarthMeanRadiusKm = 6371.0

// Position is a closed union over the three supported representations.
// Only Cartesian, RaDec, and LatLonAlt implement it.
type Position interface {
	isPosition()
}

// Cartesian is a three-dimensional vector with length units on every axis.
// Axis orientation is undefined until the vector is paired with a frame.
type Cartesian struct {
	X, Y, Z units.Quantity
}

// RaDec is a celestial polar position: declination and right ascension in
// angle units plus a centre-relative distance. Strictly used in
// celestial/equatorial contexts.
type RaDec struct {
	Dec  units.Quantity
	RA   units.Quantity
	Dist units.Quantity
}

// LatLonAlt is a terrestrial (or body-fixed) polar position. Altitude is
// measured above the reference surface, not the body centre.
type LatLonAlt struct {
	Lat units.Quantity
	Lon units.Quantity
	Alt units.Quantity
}

func (Cartesian) isPosition() {}
func (RaDec) isPosition()     {}
func (LatLonAlt) isPosition() {}

// FromCenter converts a surface-relative LatLonAlt into a centre-relative
// one by adding the Earth mean radius to the altitude.
func FromCenter(p LatLonAlt) (LatLonAlt, error) {
	dist, err := p.Alt.Add(units.Kilometers(EarthMeanRadiusKm))
	if err != nil {
		return LatLonAlt{}, err
	}
	return LatLonAlt{Lat: p.Lat, Lon: p.Lon, Alt: dist}, nil
}

// ToSurface is the inverse of FromCenter: it converts a centre-relative
// distance back to an altitude above the reference surface.
func ToSurface(p LatLonAlt) (LatLonAlt, error) {
	alt, err := p.Alt.Sub(units.Kilometers(EarthMeanRadiusKm))
	if err != nil {
		return LatLonAlt{}, err
	}
	return LatLonAlt{Lat: p.Lat, Lon: p.Lon, Alt: alt}, nil
}

// NewCartesian builds a cartesian position with all axes in the same unit.
func NewCartesian(x, y, z float64, u units.Unit) Cartesian {
	return Cartesian{
		X: units.New(x, u),
		Y: units.New(y, u),
		Z: units.New(z, u),
	}
}

// CartesianKm builds a cartesian position in kilometres.
func CartesianKm(x, y, z float64) Cartesian {
	return NewCartesian(x, y, z, units.Kilometer)
}
