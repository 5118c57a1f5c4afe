// Package units wraps scalar magnitudes with explicit physical units so that
// coordinate math can never silently mix kilometres with degrees. Every value
// flowing through the transform core is a Quantity; conversion within a
// dimension is always available, arithmetic across dimensions is rejected.
package units

import (
	"errors"
	"fmt"
	"strings"
)

// Dimension classifies a unit.
type Dimension int

const (
	// Length covers distances, altitudes, and cartesian axes.
	Length Dimension = iota
	// Angle covers latitudes, longitudes, right ascension, and declination.
	Angle
)

func (d Dimension) String() string {
	switch d {
	case Length:
		return "length"
	case Angle:
		return "angle"
	default:
		return "unknown"
	}
}

// ErrIncompatibleUnits is returned when two quantities of different
// dimensions meet in arithmetic or conversion.
var ErrIncompatibleUnits = errors.New("incompatible units")

// ErrUnknownUnit is returned by Parse for unit strings outside the table.
var ErrUnknownUnit = errors.New("unknown unit")

// Unit is a named measurement unit with a fixed scale to its dimension's
// base unit (kilometres for lengths, radians for angles).
type Unit struct {
	name   string
	dim    Dimension
	toBase float64
}

// Supported units. Kilometre and Radian are the base units their dimensions
// are normalised to internally.
var (
	Kilometer        = Unit{name: "km", dim: Length, toBase: 1}
	Meter            = Unit{name: "m", dim: Length, toBase: 1e-3}
	Mile             = Unit{name: "mi", dim: Length, toBase: 1.609344}
	AstronomicalUnit = Unit{name: "au", dim: Length, toBase: 1.495978707e8}
	Degree           = Unit{name: "deg", dim: Angle, toBase: 0.017453292519943295}
	Radian           = Unit{name: "rad", dim: Angle, toBase: 1}
)

// Name returns the canonical spelling of the unit.
func (u Unit) Name() string { return u.name }

// Dim returns the unit's dimension.
func (u Unit) Dim() Dimension { return u.dim }

var unitAliases = map[string]Unit{
	"km":                Kilometer,
	"kilometer":         Kilometer,
	"kilometers":        Kilometer,
	"kilometre":         Kilometer,
	"kilometres":        Kilometer,
	"m":                 Meter,
	"meter":             Meter,
	"meters":            Meter,
	"metre":             Meter,
	"metres":            Meter,
	"mi":                Mile,
	"mile":              Mile,
	"miles":             Mile,
	"au":                AstronomicalUnit,
	"astronomical_unit": AstronomicalUnit,
	"deg":               Degree,
	"degree":            Degree,
	"degrees":           Degree,
	"rad":               Radian,
	"radian":            Radian,
	"radians":           Radian,
}

// Parse resolves a user-supplied unit string to a Unit. Matching is
// case-insensitive; unknown strings fail with ErrUnknownUnit.
func Parse(name string) (Unit, error) {
	u, ok := unitAliases[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Unit{}, fmt.Errorf("%w: %q", ErrUnknownUnit, name)
	}
	return u, nil
}

// Quantity is a magnitude tagged with its unit.
type Quantity struct {
	Mag  float64
	Unit Unit
}

// New constructs a Quantity.
func New(mag float64, u Unit) Quantity {
	return Quantity{Mag: mag, Unit: u}
}

// Kilometers is shorthand for a length quantity in km.
func Kilometers(mag float64) Quantity { return New(mag, Kilometer) }

// Degrees is shorthand for an angle quantity in degrees.
func Degrees(mag float64) Quantity { return New(mag, Degree) }

// Radians is shorthand for an angle quantity in radians.
func Radians(mag float64) Quantity { return New(mag, Radian) }

// Convert re-expresses the quantity in another unit of the same dimension.
func (q Quantity) Convert(to Unit) (Quantity, error) {
	if q.Unit.dim != to.dim {
		return Quantity{}, fmt.Errorf("%w: cannot convert %s to %s",
			ErrIncompatibleUnits, q.Unit.dim, to.dim)
	}
	return Quantity{Mag: q.Mag * q.Unit.toBase / to.toBase, Unit: to}, nil
}

// In returns the magnitude expressed in the given unit.
func (q Quantity) In(to Unit) (float64, error) {
	conv, err := q.Convert(to)
	if err != nil {
		return 0, err
	}
	return conv.Mag, nil
}

// Base returns the magnitude in the dimension's base unit (km or rad).
func (q Quantity) Base() float64 { return q.Mag * q.Unit.toBase }

// Add returns q + other expressed in q's unit.
func (q Quantity) Add(other Quantity) (Quantity, error) {
	conv, err := other.Convert(q.Unit)
	if err != nil {
		return Quantity{}, err
	}
	return Quantity{Mag: q.Mag + conv.Mag, Unit: q.Unit}, nil
}

// Sub returns q - other expressed in q's unit.
func (q Quantity) Sub(other Quantity) (Quantity, error) {
	conv, err := other.Convert(q.Unit)
	if err != nil {
		return Quantity{}, err
	}
	return Quantity{Mag: q.Mag - conv.Mag, Unit: q.Unit}, nil
}

// Scale multiplies the magnitude by a dimensionless factor.
func (q Quantity) Scale(f float64) Quantity {
	return Quantity{Mag: q.Mag * f, Unit: q.Unit}
}

func (q Quantity) String() string {
	return fmt.Sprintf("%g %s", q.Mag, q.Unit.name)
}
