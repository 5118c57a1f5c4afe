package kernel

import (
	"fmt"
	"math"
)

// SPKSegment is one ephemeris segment: Chebyshev position records for a
// target body relative to a centre body, valid over [Start, End] ephemeris
// seconds.
type SPKSegment struct {
	Target int
	Center int
	Frame  int
	Type   int
	Start  float64
	End    float64

	daf   *DAF
	first int
	last  int
}

// SPK is a parsed ephemeris kernel.
type SPK struct {
	segments []SPKSegment
}

// ParseSPK reads the segment table of an ephemeris DAF. Only Chebyshev
// position (type 2) and position+velocity (type 3) segments are kept; the
// generic kernel sets this service consumes use nothing else.
func ParseSPK(d *DAF) (*SPK, error) {
	if d.ID != "DAF/SPK" {
		return nil, fmt.Errorf("spk: not an ephemeris kernel (%s)", d.ID)
	}
	summaries, err := d.Summaries()
	if err != nil {
		return nil, err
	}

	s := &SPK{}
	for _, sum := range summaries {
		if len(sum.Doubles) < 2 || len(sum.Ints) < 6 {
			return nil, fmt.Errorf("spk: malformed segment summary")
		}
		seg := SPKSegment{
			Start:  sum.Doubles[0],
			End:    sum.Doubles[1],
			Target: sum.Ints[0],
			Center: sum.Ints[1],
			Frame:  sum.Ints[2],
			Type:   sum.Ints[3],
			daf:    d,
			first:  sum.Ints[4],
			last:   sum.Ints[5],
		}
		if seg.Type != 2 && seg.Type != 3 {
			continue
		}
		s.segments = append(s.segments, seg)
	}
	return s, nil
}

// LoadSPK reads an ephemeris kernel from disk.
func LoadSPK(path string) (*SPK, error) {
	d, err := LoadDAF(path)
	if err != nil {
		return nil, err
	}
	return ParseSPK(d)
}

// Segment finds the segment covering a target body at an ephemeris time. The
// last matching segment wins, matching the convention that later segments
// supersede earlier ones.
func (s *SPK) Segment(target int, et float64) (SPKSegment, bool) {
	var out SPKSegment
	found := false
	for _, seg := range s.segments {
		if seg.Target == target && et >= seg.Start && et <= seg.End {
			out = seg
			found = true
		}
	}
	return out, found
}

// Targets lists the bodies this kernel carries segments for.
func (s *SPK) Targets() []int {
	seen := make(map[int]bool)
	var out []int
	for _, seg := range s.segments {
		if !seen[seg.Target] {
			seen[seg.Target] = true
			out = append(out, seg.Target)
		}
	}
	return out
}

// Position evaluates the segment at an ephemeris time, returning the target's
// position relative to the segment centre in km.
func (seg SPKSegment) Position(et float64) ([3]float64, error) {
	if et < seg.Start || et > seg.End {
		return [3]float64{}, fmt.Errorf("spk: %g outside segment coverage [%g, %g]", et, seg.Start, seg.End)
	}

	// Segment directory: the last four doubles are INIT, INTLEN, RSIZE, N.
	dir, err := seg.daf.Elements(seg.last-3, seg.last)
	if err != nil {
		return [3]float64{}, err
	}
	init, intlen, rsize, n := dir[0], dir[1], int(dir[2]), int(dir[3])
	if rsize < 2 || n < 1 || intlen <= 0 {
		return [3]float64{}, fmt.Errorf("spk: malformed segment directory")
	}

	idx := int(math.Floor((et - init) / intlen))
	if idx < 0 {
		idx = 0
	}
	if idx >= n {
		idx = n - 1
	}

	recStart := seg.first + idx*rsize
	record, err := seg.daf.Elements(recStart, recStart+rsize-1)
	if err != nil {
		return [3]float64{}, err
	}

	// Type 3 records carry velocity coefficient runs after the position
	// runs; both types put the three position components first.
	nComp := 3
	if seg.Type == 3 {
		nComp = 6
	}
	comps, err := chebyshevRecord(record, nComp, et)
	if err != nil {
		return [3]float64{}, err
	}
	return [3]float64{comps[0], comps[1], comps[2]}, nil
}

// solarSystemBarycenter is the NAIF id ephemeris chains terminate at.
const solarSystemBarycenter = 0

// EphemerisSet aggregates the segments of several ephemeris kernels so that
// positions can be chained across them (a satellite kernel gives the moon
// relative to its planet barycentre, the planetary kernel gives that
// barycentre relative to the solar-system barycentre).
type EphemerisSet struct {
	kernels []*SPK
}

// NewEphemerisSet builds a set over the given kernels.
func NewEphemerisSet(kernels ...*SPK) *EphemerisSet {
	return &EphemerisSet{kernels: kernels}
}

// Add appends a kernel to the set.
func (e *EphemerisSet) Add(s *SPK) {
	e.kernels = append(e.kernels, s)
}

func (e *EphemerisSet) segment(target int, et float64) (SPKSegment, bool) {
	for i := len(e.kernels) - 1; i >= 0; i-- {
		if seg, ok := e.kernels[i].Segment(target, et); ok {
			return seg, true
		}
	}
	return SPKSegment{}, false
}

// barycentric chains segments from a body down to the solar-system
// barycentre and returns the accumulated position in km.
func (e *EphemerisSet) barycentric(body int, et float64) ([3]float64, error) {
	var pos [3]float64
	current := body
	for hops := 0; current != solarSystemBarycenter; hops++ {
		if hops > 16 {
			return [3]float64{}, fmt.Errorf("spk: centre chain for body %d does not terminate", body)
		}
		seg, ok := e.segment(current, et)
		if !ok {
			return [3]float64{}, fmt.Errorf("spk: no segment for body %d at et %g", current, et)
		}
		p, err := seg.Position(et)
		if err != nil {
			return [3]float64{}, err
		}
		pos[0] += p[0]
		pos[1] += p[1]
		pos[2] += p[2]
		current = seg.Center
	}
	return pos, nil
}

// Position returns the target's position relative to the centre body in km,
// in the inertial frame the kernels are filed in.
func (e *EphemerisSet) Position(et float64, target, center int) ([3]float64, error) {
	tp, err := e.barycentric(target, et)
	if err != nil {
		return [3]float64{}, err
	}
	cp, err := e.barycentric(center, et)
	if err != nil {
		return [3]float64{}, err
	}
	return [3]float64{tp[0] - cp[0], tp[1] - cp[1], tp[2] - cp[2]}, nil
}
