package kernel

import (
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"

	"github.com/signalsfoundry/space-query/coords"
)

// PoleModel is an IAU body-orientation model from a text PCK: polynomials in
// time for the pole right ascension and declination (degrees, degrees per
// Julian century) and the prime-meridian angle (degrees, degrees per day).
type PoleModel struct {
	RA  [3]float64
	Dec [3]float64
	W   [3]float64
}

const (
	secondsPerDay     = 86400.0
	secondsPerCentury = 86400.0 * 36525.0
	degToRad          = math.Pi / 180.0
)

// Matrix returns the ICRF->body-fixed rotation at an ephemeris time, built
// from the pole model as R3(W) R1(pi/2 - dec) R3(pi/2 + ra).
func (p PoleModel) Matrix(et float64) coords.Matrix3 {
	T := et / secondsPerCentury
	d := et / secondsPerDay

	ra := (p.RA[0] + p.RA[1]*T + p.RA[2]*T*T) * degToRad
	dec := (p.Dec[0] + p.Dec[1]*T + p.Dec[2]*T*T) * degToRad
	w := (p.W[0] + p.W[1]*d + p.W[2]*d*d) * degToRad

	return coords.RotZ(w).Mul(coords.RotX(math.Pi/2 - dec)).Mul(coords.RotZ(math.Pi/2 + ra))
}

// OrientationConstants is the body-orientation and body-radii table read
// from a text PCK (pole models keyed by NAIF body id).
type OrientationConstants struct {
	poles map[int]PoleModel
	radii map[int][3]float64
}

var bodyKeyRe = regexp.MustCompile(`^BODY(\d+)_(POLE_RA|POLE_DEC|PM|RADII)$`)

// ParseOrientationConstants reads a text PCK.
func ParseOrientationConstants(r io.Reader) (*OrientationConstants, error) {
	tk, err := ParseTextKernel(r)
	if err != nil {
		return nil, err
	}

	oc := &OrientationConstants{
		poles: make(map[int]PoleModel),
		radii: make(map[int][3]float64),
	}
	for _, name := range tk.Names() {
		m := bodyKeyRe.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		body, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		vals, err := tk.Floats(name)
		if err != nil {
			return nil, fmt.Errorf("orientation kernel: %s: %w", name, err)
		}
		var triple [3]float64
		copy(triple[:], vals)

		switch m[2] {
		case "RADII":
			oc.radii[body] = triple
		case "POLE_RA":
			p := oc.poles[body]
			p.RA = triple
			oc.poles[body] = p
		case "POLE_DEC":
			p := oc.poles[body]
			p.Dec = triple
			oc.poles[body] = p
		case "PM":
			p := oc.poles[body]
			p.W = triple
			oc.poles[body] = p
		}
	}
	return oc, nil
}

// Pole returns the orientation model for a body.
func (o *OrientationConstants) Pole(body int) (PoleModel, bool) {
	p, ok := o.poles[body]
	return p, ok
}

// Radii returns the triaxial radii for a body in km.
func (o *OrientationConstants) Radii(body int) ([3]float64, bool) {
	r, ok := o.radii[body]
	return r, ok
}
