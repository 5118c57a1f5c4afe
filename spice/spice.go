// Package spice implements the kernel-driven transform backend. Frame
// rotations and body positions are computed directly from NAIF generic
// kernels (leap seconds, orientation constants, frame associations, binary
// orientation and ephemeris files) fetched from the public archive.
package spice

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/signalsfoundry/space-query/coords"
	"github.com/signalsfoundry/space-query/internal/logging"
	"github.com/signalsfoundry/space-query/kernel"
	"github.com/signalsfoundry/space-query/query"
)

// BackendName is the registry key of this backend.
const BackendName = "spice"

func init() {
	query.Register(BackendName, New)
}

// earthNAIF is the observer body every celestial position is relative to.
const earthNAIF = 399

// Provider computes transforms from kernel files. In just-in-time mode each
// operation fetches its kernels into a temporary directory, computes, and
// deletes them again, with operations serialized; in preloaded mode the full
// kernel set is loaded once and stays resident.
type Provider struct {
	log          logging.Logger
	metrics      query.MetricsRecorder
	catalog      *kernel.Catalog
	archive      *kernel.Archive
	jit          bool
	fetchTimeout time.Duration

	mu       sync.Mutex
	resident *kernelSet
}

// New constructs the backend from registry options.
func New(opts query.Options) (query.Provider, error) {
	log := opts.Logger
	if log == nil {
		log = logging.Noop()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = query.NopMetrics()
	}
	dir := opts.KernelDir
	if dir == "" {
		dir = "kernels"
	}
	return &Provider{
		log:          log,
		metrics:      metrics,
		catalog:      kernel.DefaultCatalog(),
		archive:      kernel.NewArchive(opts.ArchiveURL, dir, opts.HTTPClient),
		jit:          opts.JustInTime,
		fetchTimeout: opts.FetchTimeout,
	}, nil
}

// Transform implements query.Provider.
func (p *Provider) Transform(ctx context.Context, pos coords.Position, from, to coords.Frame, at time.Time) (coords.Position, error) {
	keys := transformKeys(from, to)
	var out coords.Position
	err := p.withKernels(ctx, keys, func(s *kernelSet) error {
		et := s.leap.ETFromUTC(at)
		mf, err := s.frameMatrix(from, et)
		if err != nil {
			return err
		}
		mt, err := s.frameMatrix(to, et)
		if err != nil {
			return err
		}
		rot := mt.Mul(mf.Transpose())
		out, err = query.ApplyFrameRotation(pos, rot, to)
		return err
	})
	if err != nil {
		p.metrics.TransformFailed(BackendName)
		return nil, p.wrapComputeError(keys, err)
	}
	return out, nil
}

// CelestialPosition implements query.Provider. The body's ephemeris position
// relative to Earth is chained through the solar-system barycentre and
// rotated from the equatorial kernel frame into the ecliptic.
func (p *Provider) CelestialPosition(ctx context.Context, body string, at time.Time) (coords.Cartesian, error) {
	b, ok := query.LookupBody(body)
	if !ok {
		return coords.Cartesian{}, &query.UnknownBodyError{Body: body}
	}

	keys := []string{"lsk", "tpc", "spk/planets"}
	if b.Satellite() {
		keys = append(keys, kernel.SatelliteKey(b.Parent))
	}

	var out coords.Cartesian
	err := p.withKernels(ctx, keys, func(s *kernelSet) error {
		et := s.leap.ETFromUTC(at)
		vec, err := s.eph.Position(et, b.NAIF, earthNAIF)
		if err != nil {
			return err
		}
		ecl := coords.RotX(coords.ObliquityJ2000).Apply(vec)
		out = coords.CartesianKm(ecl[0], ecl[1], ecl[2])
		return nil
	})
	if err != nil {
		p.metrics.TransformFailed(BackendName)
		return coords.Cartesian{}, p.wrapComputeError(keys, err)
	}
	return out, nil
}

// Bootstrap fetches and loads the complete kernel set. Preloaded deployments
// call this at startup so the first request does not pay the download cost.
func (p *Provider) Bootstrap(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	set, err := p.load(ctx, p.archive, p.catalog.Keys())
	if err != nil {
		return err
	}
	p.resident = set
	p.log.Info(ctx, "kernel set loaded", logging.Int("kernels", len(set.keys)))
	return nil
}

// Refresh re-syncs the kernel catalog from the archive, re-pointing entries
// at newer editions, and reloads the resident set if one exists.
func (p *Provider) Refresh(ctx context.Context, force bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	results, err := kernel.Sync(ctx, p.catalog, p.archive, force)
	if err != nil {
		return err
	}
	for _, res := range results {
		if res.Updated {
			p.log.Info(ctx, "kernel updated",
				logging.String("kernel", res.Key), logging.String("file", res.File))
		}
	}

	if p.resident != nil {
		set, err := p.load(ctx, p.archive, p.catalog.Keys())
		if err != nil {
			return err
		}
		p.resident = set
	}
	return nil
}

// transformKeys is the kernel set a frame pair needs: time conversion, the
// Earth frame association and orientation always, plus text orientation
// constants for body-fixed frames and the lunar orientation file for the
// Moon.
func transformKeys(from, to coords.Frame) []string {
	keys := []string{"lsk", "tf", "pck/earth"}
	for _, f := range [2]coords.Frame{from, to} {
		switch f {
		case coords.IAUSun, coords.IAUMars:
			keys = appendKey(keys, "tpc")
		case coords.IAUMoon:
			keys = appendKey(keys, "tpc")
			keys = appendKey(keys, "pck/moon")
		}
	}
	return keys
}

func appendKey(keys []string, key string) []string {
	for _, k := range keys {
		if k == key {
			return keys
		}
	}
	return append(keys, key)
}

// wrapComputeError leaves kernel-availability and unknown-input errors typed
// as they are and folds everything else into a TransformFailure carrying the
// loaded kernel set.
func (p *Provider) wrapComputeError(keys []string, err error) error {
	var unavailable *query.KernelUnavailableError
	if errors.As(err, &unavailable) {
		return err
	}
	var unsupported *coords.UnsupportedFrameError
	if errors.As(err, &unsupported) {
		return err
	}
	return &query.TransformFailure{Kernels: keys, Err: err}
}

// withKernels runs fn against a loaded kernel set. Just-in-time mode holds
// the provider lock for the whole fetch/compute/unload cycle and leaves no
// files behind; preloaded mode lazily bootstraps once and then shares the
// immutable resident set.
func (p *Provider) withKernels(ctx context.Context, keys []string, fn func(*kernelSet) error) error {
	if p.jit {
		p.mu.Lock()
		defer p.mu.Unlock()
		return p.withEphemeralKernels(ctx, keys, fn)
	}

	p.mu.Lock()
	if p.resident == nil {
		set, err := p.load(ctx, p.archive, p.catalog.Keys())
		if err != nil {
			p.mu.Unlock()
			return err
		}
		p.resident = set
	}
	set := p.resident
	p.mu.Unlock()
	return fn(set)
}

func (p *Provider) withEphemeralKernels(ctx context.Context, keys []string, fn func(*kernelSet) error) error {
	dir, err := newScratchDir()
	if err != nil {
		return fmt.Errorf("kernel scratch dir: %w", err)
	}
	defer dir.cleanup(p.log)

	scratch := kernel.NewArchive(p.archive.BaseURL, dir.path, p.archive.Client)
	set, err := p.load(ctx, scratch, keys)
	if err != nil {
		return err
	}
	err = fn(set)
	p.metrics.KernelsLoaded(0)
	return err
}

func (p *Provider) load(ctx context.Context, arc *kernel.Archive, keys []string) (*kernelSet, error) {
	if p.fetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.fetchTimeout)
		defer cancel()
	}

	set := newKernelSet()
	for _, key := range keys {
		entry, err := p.catalog.Resolve(key)
		if err != nil {
			return nil, err
		}
		path, err := arc.Fetch(ctx, entry, false)
		p.metrics.KernelFetched(key, err)
		if err != nil {
			return nil, &query.KernelUnavailableError{Kernel: entry.File, Err: err}
		}
		p.log.Debug(ctx, "kernel ready",
			logging.String("kernel", key), logging.String("path", path))
		if err := set.load(key, path); err != nil {
			return nil, &query.KernelUnavailableError{Kernel: entry.File, Err: err}
		}
	}
	set.keys = keys
	p.metrics.KernelsLoaded(len(keys))
	return set, nil
}
