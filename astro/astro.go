// Package astro implements the library-delegating transform backend. Earth
// rotation comes from the SGP4 library's sidereal-time routines and body
// positions from built-in analytic ephemerides, so the backend needs no
// kernel files and no network access.
package astro

import (
	"context"
	"time"

	"github.com/signalsfoundry/space-query/coords"
	"github.com/signalsfoundry/space-query/internal/logging"
	"github.com/signalsfoundry/space-query/query"
)

// BackendName is the registry key of this backend.
const BackendName = "astro"

func init() {
	query.Register(BackendName, New)
}

// Provider is stateless; all methods are safe for concurrent use.
type Provider struct {
	log     logging.Logger
	metrics query.MetricsRecorder
}

// New constructs the backend from registry options. The kernel-related
// options are ignored.
func New(opts query.Options) (query.Provider, error) {
	log := opts.Logger
	if log == nil {
		log = logging.Noop()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = query.NopMetrics()
	}
	return &Provider{log: log, metrics: metrics}, nil
}

// Transform implements query.Provider.
func (p *Provider) Transform(ctx context.Context, pos coords.Position, from, to coords.Frame, at time.Time) (coords.Position, error) {
	mf, err := frameMatrix(from, at)
	if err != nil {
		p.metrics.TransformFailed(BackendName)
		return nil, err
	}
	mt, err := frameMatrix(to, at)
	if err != nil {
		p.metrics.TransformFailed(BackendName)
		return nil, err
	}
	out, err := query.ApplyFrameRotation(pos, mt.Mul(mf.Transpose()), to)
	if err != nil {
		p.metrics.TransformFailed(BackendName)
		return nil, err
	}
	return out, nil
}

// CelestialPosition implements query.Provider. The analytic ephemerides
// cover the Sun, the Moon, and the planets; planetary satellites need real
// ephemeris files and resolve only on the kernel-driven backend.
func (p *Provider) CelestialPosition(ctx context.Context, body string, at time.Time) (coords.Cartesian, error) {
	b, ok := query.LookupBody(body)
	if !ok || b.Satellite() {
		return coords.Cartesian{}, &query.UnknownBodyError{Body: body}
	}

	vec, err := geocentricEcliptic(b.Name, at)
	if err != nil {
		p.metrics.TransformFailed(BackendName)
		return coords.Cartesian{}, err
	}
	return coords.CartesianKm(vec[0], vec[1], vec[2]), nil
}
