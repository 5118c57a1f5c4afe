package httpapi

import (
	"bytes"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/signalsfoundry/space-query/coords"
	"github.com/signalsfoundry/space-query/units"
)

// CartesianCoords is the wire form of a cartesian position. The unit string
// applies to all three axes.
type CartesianCoords struct {
	CoordType string  `json:"coord_type"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Z         float64 `json:"z"`
	Units     string  `json:"units"`
}

// SphericalCoords is the wire form of a polar position. Lat/lon are always
// degrees; the unit string applies to the altitude (or distance) only.
// Whether it reads as terrestrial lat/lon/alt or celestial dec/ra/dist
// depends on the frame it is paired with.
type SphericalCoords struct {
	CoordType string  `json:"coord_type"`
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
	Alt       float64 `json:"alt"`
	Units     string  `json:"units"`
}

// CoordsPayload is the discriminated union over the two wire forms. Exactly
// one variant is set after a successful decode.
type CoordsPayload struct {
	Cartesian *CartesianCoords
	Spherical *SphericalCoords
}

func (c *CoordsPayload) UnmarshalJSON(data []byte) error {
	var probe struct {
		CoordType string `json:"coord_type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}
	switch probe.CoordType {
	case "cartesian":
		var v CartesianCoords
		if err := decodeStrict(data, &v); err != nil {
			return err
		}
		c.Cartesian, c.Spherical = &v, nil
		return nil
	case "spherical":
		var v SphericalCoords
		if err := decodeStrict(data, &v); err != nil {
			return err
		}
		c.Cartesian, c.Spherical = nil, &v
		return nil
	default:
		return fmt.Errorf("unknown coord_type %q", probe.CoordType)
	}
}

func (c CoordsPayload) MarshalJSON() ([]byte, error) {
	switch {
	case c.Cartesian != nil:
		return json.Marshal(c.Cartesian)
	case c.Spherical != nil:
		return json.Marshal(c.Spherical)
	default:
		return nil, fmt.Errorf("empty coordinates payload")
	}
}

func decodeStrict(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// Position lifts the payload into the internal model. Spherical payloads are
// read per the supplied frame's convention.
func (c CoordsPayload) Position(frame coords.Frame) (coords.Position, error) {
	if c.Cartesian != nil {
		return c.Cartesian.Position()
	}
	if c.Spherical == nil {
		return nil, fmt.Errorf("empty coordinates payload")
	}
	if frame.Terrestrial() {
		return c.Spherical.LatLonAlt()
	}
	return c.Spherical.RaDec()
}

// Position lifts a cartesian payload into the internal model.
func (c CartesianCoords) Position() (coords.Cartesian, error) {
	u, err := lengthUnit(c.Units)
	if err != nil {
		return coords.Cartesian{}, err
	}
	return coords.NewCartesian(c.X, c.Y, c.Z, u), nil
}

// LatLonAlt reads the payload as a terrestrial position.
func (s SphericalCoords) LatLonAlt() (coords.LatLonAlt, error) {
	u, err := lengthUnit(s.Units)
	if err != nil {
		return coords.LatLonAlt{}, err
	}
	return coords.LatLonAlt{
		Lat: units.Degrees(s.Lat),
		Lon: units.Degrees(s.Lon),
		Alt: units.New(s.Alt, u),
	}, nil
}

// RaDec reads the payload as a celestial position: lat is declination, lon
// is right ascension, alt is the centre-relative distance.
func (s SphericalCoords) RaDec() (coords.RaDec, error) {
	u, err := lengthUnit(s.Units)
	if err != nil {
		return coords.RaDec{}, err
	}
	return coords.RaDec{
		Dec:  units.Degrees(s.Lat),
		RA:   units.Degrees(s.Lon),
		Dist: units.New(s.Alt, u),
	}, nil
}

func lengthUnit(name string) (units.Unit, error) {
	u, err := units.Parse(name)
	if err != nil {
		return units.Unit{}, err
	}
	if u.Dim() != units.Length {
		return units.Unit{}, fmt.Errorf("unit %q is not a length", name)
	}
	return u, nil
}

// payloadFromPosition lowers any internal position back to its wire form.
func payloadFromPosition(pos coords.Position) (CoordsPayload, error) {
	switch p := pos.(type) {
	case coords.Cartesian:
		c, err := cartesianPayload(p)
		if err != nil {
			return CoordsPayload{}, err
		}
		return CoordsPayload{Cartesian: &c}, nil
	case coords.LatLonAlt:
		lat, err := p.Lat.In(units.Degree)
		if err != nil {
			return CoordsPayload{}, err
		}
		lon, err := p.Lon.In(units.Degree)
		if err != nil {
			return CoordsPayload{}, err
		}
		return CoordsPayload{Spherical: &SphericalCoords{
			CoordType: "spherical",
			Lat:       lat,
			Lon:       lon,
			Alt:       p.Alt.Mag,
			Units:     p.Alt.Unit.Name(),
		}}, nil
	case coords.RaDec:
		dec, err := p.Dec.In(units.Degree)
		if err != nil {
			return CoordsPayload{}, err
		}
		ra, err := p.RA.In(units.Degree)
		if err != nil {
			return CoordsPayload{}, err
		}
		return CoordsPayload{Spherical: &SphericalCoords{
			CoordType: "spherical",
			Lat:       dec,
			Lon:       ra,
			Alt:       p.Dist.Mag,
			Units:     p.Dist.Unit.Name(),
		}}, nil
	default:
		return CoordsPayload{}, fmt.Errorf("unknown position variant %T", pos)
	}
}

func cartesianPayload(v coords.Cartesian) (CartesianCoords, error) {
	// All axes share one unit on the wire; normalize Y and Z onto X's.
	y, err := v.Y.Convert(v.X.Unit)
	if err != nil {
		return CartesianCoords{}, err
	}
	z, err := v.Z.Convert(v.X.Unit)
	if err != nil {
		return CartesianCoords{}, err
	}
	return CartesianCoords{
		CoordType: "cartesian",
		X:         v.X.Mag,
		Y:         y.Mag,
		Z:         z.Mag,
		Units:     v.X.Unit.Name(),
	}, nil
}

// ConversionRequest asks for a frame-to-frame transform of one position.
type ConversionRequest struct {
	Ident    string        `json:"ident" validate:"required"`
	Coords   CoordsPayload `json:"coords"`
	Original string        `json:"original" validate:"required"`
	New      string        `json:"new" validate:"required"`
	DT       time.Time     `json:"dt" validate:"required"`
}

// TerrestrialRequest asks for the celestial cartesian equivalent of an
// Earth-fixed surface position.
type TerrestrialRequest struct {
	Ident  string          `json:"ident" validate:"required"`
	Coords SphericalCoords `json:"coords"`
	DT     time.Time       `json:"dt" validate:"required"`
}

// CelestialRequest asks for the Earth-fixed surface equivalent of a
// celestial cartesian position.
type CelestialRequest struct {
	Ident  string          `json:"ident" validate:"required"`
	Coords CartesianCoords `json:"coords"`
	DT     time.Time       `json:"dt" validate:"required"`
}

// PositionRequest asks where a named body is, relative to Earth.
type PositionRequest struct {
	Ident string    `json:"ident" validate:"required"`
	Body  string    `json:"body" validate:"required"`
	DT    time.Time `json:"dt" validate:"required"`
}

// ConversionResponse carries a transformed position.
type ConversionResponse struct {
	RespType    string        `json:"resp_type"`
	Ident       string        `json:"ident"`
	Coordinates CoordsPayload `json:"coordinates"`
}

// PositionResponse carries a body position, always cartesian.
type PositionResponse struct {
	RespType string          `json:"resp_type"`
	Ident    string          `json:"ident"`
	Position CartesianCoords `json:"position"`
}

// ErrorResponse is the body-level error envelope. It preserves the request's
// correlation ident so clients can match errors to requests.
type ErrorResponse struct {
	RespType string `json:"resp_type"`
	Ident    string `json:"ident"`
	Error    string `json:"error"`
}

// TokenResponse carries a freshly issued bearer token.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}
