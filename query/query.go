// Package query defines the transform-provider contract shared by the
// kernel-driven and library-delegating backends, the name-keyed provider
// registry used to select a backend at startup, and the error taxonomy that
// crosses the core boundary.
package query

import (
	"context"
	"net/http"
	"time"

	"github.com/signalsfoundry/space-query/coords"
	"github.com/signalsfoundry/space-query/internal/logging"
)

// Provider is the abstract transform contract. Every backend implements
// exactly these two operations; the convenience compositions are derived
// from them in this package.
type Provider interface {
	// CelestialPosition returns the position of a named solar-system body
	// relative to Earth, expressed in ecliptic-celestial (ECLIPJ2000)
	// cartesian coordinates. Names outside the backend's body catalog fail
	// with UnknownBodyError.
	CelestialPosition(ctx context.Context, body string, at time.Time) (coords.Cartesian, error)

	// Transform rotates a position from one canonical frame to another at a
	// specific instant. The output representation follows the destination
	// frame's convention: cartesian input stays cartesian, polar input
	// becomes LatLonAlt for terrestrial destinations and RaDec for celestial
	// ones.
	Transform(ctx context.Context, pos coords.Position, from, to coords.Frame, at time.Time) (coords.Position, error)
}

// MetricsRecorder receives operational events from backends. The
// observability collector implements it; a nil recorder is valid and drops
// everything.
type MetricsRecorder interface {
	KernelFetched(category string, err error)
	KernelsLoaded(n int)
	TransformFailed(backend string)
}

// NopMetrics returns a MetricsRecorder that drops every event.
func NopMetrics() MetricsRecorder { return nopMetrics{} }

type nopMetrics struct{}

func (nopMetrics) KernelFetched(string, error) {}
func (nopMetrics) KernelsLoaded(int)           {}
func (nopMetrics) TransformFailed(string)      {}

// Options carries backend construction parameters. Individual backends use
// the subset they need.
type Options struct {
	Logger  logging.Logger
	Metrics MetricsRecorder

	// Kernel-driven backend settings.
	KernelDir    string
	JustInTime   bool
	ArchiveURL   string
	HTTPClient   *http.Client
	FetchTimeout time.Duration
}

// TerrestrialToCelestial converts an Earth-fixed surface position into
// ecliptic-celestial cartesian coordinates: one frame transform plus the
// shared representation conversion.
func TerrestrialToCelestial(ctx context.Context, p Provider, pos coords.LatLonAlt, at time.Time) (coords.Cartesian, error) {
	out, err := p.Transform(ctx, pos, coords.ITRF93, coords.EclipJ2000, at)
	if err != nil {
		return coords.Cartesian{}, err
	}
	return coords.ToCartesian(out)
}

// CelestialToTerrestrial converts an ecliptic-celestial cartesian position
// into an Earth-fixed surface position.
func CelestialToTerrestrial(ctx context.Context, p Provider, pos coords.Cartesian, at time.Time) (coords.LatLonAlt, error) {
	out, err := p.Transform(ctx, pos, coords.EclipJ2000, coords.ITRF93, at)
	if err != nil {
		return coords.LatLonAlt{}, err
	}
	vec, err := coords.ToCartesian(out)
	if err != nil {
		return coords.LatLonAlt{}, err
	}
	lla, err := coords.CartesianToLatLonAlt(vec)
	if err != nil {
		return coords.LatLonAlt{}, err
	}
	return coords.ToSurface(lla)
}
