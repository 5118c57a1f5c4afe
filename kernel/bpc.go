package kernel

import (
	"fmt"
	"math"

	"github.com/signalsfoundry/space-query/coords"
)

// BPCSegment is one binary-PCK orientation segment: Chebyshev records for the
// three Euler angles of a body-fixed frame, filed under the frame's class id.
type BPCSegment struct {
	ClassID int
	Frame   int
	Type    int
	Start   float64
	End     float64

	daf   *DAF
	first int
	last  int
}

// BPC is a parsed binary orientation kernel (high-accuracy Earth and Moon
// orientation ship this way).
type BPC struct {
	segments []BPCSegment
}

// ParseBPC reads the segment table of an orientation DAF. Only Chebyshev
// angle (type 2) segments are kept.
func ParseBPC(d *DAF) (*BPC, error) {
	if d.ID != "DAF/PCK" {
		return nil, fmt.Errorf("bpc: not a binary orientation kernel (%s)", d.ID)
	}
	summaries, err := d.Summaries()
	if err != nil {
		return nil, err
	}

	b := &BPC{}
	for _, sum := range summaries {
		if len(sum.Doubles) < 2 || len(sum.Ints) < 5 {
			return nil, fmt.Errorf("bpc: malformed segment summary")
		}
		seg := BPCSegment{
			Start:   sum.Doubles[0],
			End:     sum.Doubles[1],
			ClassID: sum.Ints[0],
			Frame:   sum.Ints[1],
			Type:    sum.Ints[2],
			daf:     d,
			first:   sum.Ints[3],
			last:    sum.Ints[4],
		}
		if seg.Type != 2 {
			continue
		}
		b.segments = append(b.segments, seg)
	}
	return b, nil
}

// LoadBPC reads a binary orientation kernel from disk.
func LoadBPC(path string) (*BPC, error) {
	d, err := LoadDAF(path)
	if err != nil {
		return nil, err
	}
	return ParseBPC(d)
}

// Segment finds the segment for a frame class id covering an ephemeris time.
func (b *BPC) Segment(classID int, et float64) (BPCSegment, bool) {
	var out BPCSegment
	found := false
	for _, seg := range b.segments {
		if seg.ClassID == classID && et >= seg.Start && et <= seg.End {
			out = seg
			found = true
		}
	}
	return out, found
}

// Matrix evaluates the segment at an ephemeris time and returns the rotation
// from the segment's base inertial frame into the body-fixed frame. The
// record's three angle components are 3-1-3 Euler angles phi, delta, w in
// radians.
func (seg BPCSegment) Matrix(et float64) (coords.Matrix3, error) {
	if et < seg.Start || et > seg.End {
		return coords.Matrix3{}, fmt.Errorf("bpc: %g outside segment coverage [%g, %g]", et, seg.Start, seg.End)
	}

	dir, err := seg.daf.Elements(seg.last-3, seg.last)
	if err != nil {
		return coords.Matrix3{}, err
	}
	init, intlen, rsize, n := dir[0], dir[1], int(dir[2]), int(dir[3])
	if rsize < 2 || n < 1 || intlen <= 0 {
		return coords.Matrix3{}, fmt.Errorf("bpc: malformed segment directory")
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
		return coords.Matrix3{}, err
	}

	angles, err := chebyshevRecord(record, 3, et)
	if err != nil {
		return coords.Matrix3{}, err
	}
	phi, delta, w := angles[0], angles[1], angles[2]
	return coords.RotZ(w).Mul(coords.RotX(delta)).Mul(coords.RotZ(phi)), nil
}
