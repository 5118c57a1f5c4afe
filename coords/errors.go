package coords

import "fmt"

// UnsupportedFrameError reports a frame token that matches no alias of any
// canonical frame. Resolution never silently defaults.
type UnsupportedFrameError struct {
	Token string
}

func (e *UnsupportedFrameError) Error() string {
	return fmt.Sprintf("unsupported coordinate reference frame: %q", e.Token)
}

// DegenerateGeometryError reports a polar conversion that is undefined, such
// as the latitude of the zero vector. It is returned instead of propagating
// NaN into results.
type DegenerateGeometryError struct {
	Reason string
}

func (e *DegenerateGeometryError) Error() string {
	return fmt.Sprintf("degenerate geometry: %s", e.Reason)
}
