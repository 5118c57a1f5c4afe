package spice

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/signalsfoundry/space-query/coords"
	"github.com/signalsfoundry/space-query/internal/logging"
	"github.com/signalsfoundry/space-query/kernel"
)

// moonPAClassID is the frame-class id lunar principal-axis orientation is
// filed under in the DE440 lunar orientation files.
const moonPAClassID = 31006

// kernelSet is the parsed state of one load cycle. Fields for kernels absent
// from the cycle's key set stay nil.
type kernelSet struct {
	keys   []string
	leap   *kernel.LeapSeconds
	orient *kernel.OrientationConstants
	frames *kernel.FrameAssociations
	earth  *kernel.BPC
	moon   *kernel.BPC
	eph    *kernel.EphemerisSet
}

func newKernelSet() *kernelSet {
	return &kernelSet{eph: kernel.NewEphemerisSet()}
}

func (s *kernelSet) load(key, path string) error {
	switch {
	case key == "lsk":
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		s.leap, err = kernel.ParseLeapSeconds(f)
		return err
	case key == "tpc":
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		s.orient, err = kernel.ParseOrientationConstants(f)
		return err
	case key == "tf":
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		s.frames, err = kernel.ParseFrameAssociations(f)
		return err
	case key == "pck/earth":
		b, err := kernel.LoadBPC(path)
		if err != nil {
			return err
		}
		s.earth = b
		return nil
	case key == "pck/moon":
		b, err := kernel.LoadBPC(path)
		if err != nil {
			return err
		}
		s.moon = b
		return nil
	case strings.HasPrefix(key, "spk/"):
		spk, err := kernel.LoadSPK(path)
		if err != nil {
			return err
		}
		s.eph.Add(spk)
		return nil
	default:
		return fmt.Errorf("no loader for kernel %q", key)
	}
}

// frameMatrix returns the rotation from the equatorial J2000 frame into the
// requested frame at an ephemeris time.
func (s *kernelSet) frameMatrix(f coords.Frame, et float64) (coords.Matrix3, error) {
	switch f {
	case coords.ICRF:
		return coords.Identity(), nil
	case coords.EclipJ2000:
		return coords.RotX(coords.ObliquityJ2000), nil
	case coords.ITRF93:
		return s.earthMatrix(et)
	case coords.IAUSun:
		return s.poleMatrix(10, et)
	case coords.IAUMars:
		return s.poleMatrix(499, et)
	case coords.IAUMoon:
		// The principal-axis file is the accurate source; the text pole
		// model covers epochs outside its segments.
		if s.moon != nil {
			if seg, ok := s.moon.Segment(moonPAClassID, et); ok {
				return seg.Matrix(et)
			}
		}
		return s.poleMatrix(301, et)
	default:
		return coords.Matrix3{}, &coords.UnsupportedFrameError{Token: f.String()}
	}
}

func (s *kernelSet) earthMatrix(et float64) (coords.Matrix3, error) {
	if s.earth == nil {
		return coords.Matrix3{}, fmt.Errorf("earth orientation kernel not loaded")
	}
	classID := 3000
	if s.frames != nil {
		if id, ok := s.frames.FrameID("ITRF93"); ok {
			if cid, ok := s.frames.ClassID(id); ok {
				classID = cid
			}
		}
	}
	seg, ok := s.earth.Segment(classID, et)
	if !ok {
		return coords.Matrix3{}, fmt.Errorf("no earth orientation segment covers et %g", et)
	}
	return seg.Matrix(et)
}

func (s *kernelSet) poleMatrix(body int, et float64) (coords.Matrix3, error) {
	if s.orient == nil {
		return coords.Matrix3{}, fmt.Errorf("orientation-constants kernel not loaded")
	}
	pole, ok := s.orient.Pole(body)
	if !ok {
		return coords.Matrix3{}, fmt.Errorf("no orientation model for body %d", body)
	}
	return pole.Matrix(et), nil
}

// scratchDir is a just-in-time kernel directory, removed after each
// operation so ephemeral deployments hold no kernel files between calls.
type scratchDir struct {
	path string
}

func newScratchDir() (*scratchDir, error) {
	path, err := os.MkdirTemp("", "spacequery-kernels-*")
	if err != nil {
		return nil, err
	}
	return &scratchDir{path: path}, nil
}

func (d *scratchDir) cleanup(log logging.Logger) {
	if err := os.RemoveAll(d.path); err != nil {
		log.Warn(context.Background(), "kernel scratch dir not removed",
			logging.String("path", d.path), logging.Err(err))
	}
}
