package kernel

import (
	"math"
	"testing"
)

// buildTestSPK assembles an ephemeris kernel with two type-2 segments over
// [0, 1000] et: body 301 relative to barycentre 3, and barycentre 3 relative
// to the solar-system barycentre.
func buildTestSPK(t *testing.T) *SPK {
	t.Helper()

	// Each segment: one 8-word record (MID RADIUS, then three 2-coefficient
	// runs) plus the 4-word directory INIT INTLEN RSIZE N.
	payload := []float64{
		// Segment 1: position (2, 3, 2) at et=750 (tau=0.5).
		500, 500, 1, 2, 3, 0, 0, 4,
		0, 1000, 8, 1,
		// Segment 2: constant position (10, 20, 30).
		500, 500, 10, 0, 20, 0, 30, 0,
		0, 1000, 8, 1,
	}
	summaries := []Summary{
		{Doubles: []float64{0, 1000}, Ints: []int{301, 3, 1, 2, payloadWordBase, payloadWordBase + 11}},
		{Doubles: []float64{0, 1000}, Ints: []int{3, 0, 1, 2, payloadWordBase + 12, payloadWordBase + 23}},
	}
	d, err := ParseDAF(buildDAF(t, "DAF/SPK", 2, 6, summaries, payload))
	if err != nil {
		t.Fatalf("ParseDAF: %v", err)
	}
	s, err := ParseSPK(d)
	if err != nil {
		t.Fatalf("ParseSPK: %v", err)
	}
	return s
}

func TestSPKSegmentPosition(t *testing.T) {
	s := buildTestSPK(t)

	seg, ok := s.Segment(301, 750)
	if !ok {
		t.Fatalf("no segment for body 301")
	}
	if seg.Center != 3 || seg.Type != 2 {
		t.Fatalf("segment center=%d type=%d, want 3/2", seg.Center, seg.Type)
	}

	pos, err := seg.Position(750)
	if err != nil {
		t.Fatalf("Position: %v", err)
	}
	want := [3]float64{2, 3, 2}
	for i := range want {
		if math.Abs(pos[i]-want[i]) > 1e-12 {
			t.Fatalf("pos[%d] = %g, want %g", i, pos[i], want[i])
		}
	}

	if _, err := seg.Position(5000); err == nil {
		t.Fatalf("expected error outside segment coverage")
	}
	if _, ok := s.Segment(999, 750); ok {
		t.Fatalf("found segment for unknown body")
	}
}

func TestSPKRejectsWrongArchitecture(t *testing.T) {
	d, err := ParseDAF(buildDAF(t, "DAF/PCK", 2, 5, nil, nil))
	if err != nil {
		t.Fatalf("ParseDAF: %v", err)
	}
	if _, err := ParseSPK(d); err == nil {
		t.Fatalf("expected error for non-SPK architecture")
	}
}

func TestEphemerisSetChainsCenters(t *testing.T) {
	set := NewEphemerisSet(buildTestSPK(t))

	// Relative to the shared barycentre the chain stops early.
	pos, err := set.Position(750, 301, 3)
	if err != nil {
		t.Fatalf("Position(301, 3): %v", err)
	}
	if math.Abs(pos[0]-2) > 1e-12 || math.Abs(pos[1]-3) > 1e-12 || math.Abs(pos[2]-2) > 1e-12 {
		t.Fatalf("Position(301, 3) = %v", pos)
	}

	// Relative to the solar-system barycentre both hops accumulate.
	pos, err = set.Position(750, 301, 0)
	if err != nil {
		t.Fatalf("Position(301, 0): %v", err)
	}
	want := [3]float64{12, 23, 32}
	for i := range want {
		if math.Abs(pos[i]-want[i]) > 1e-12 {
			t.Fatalf("Position(301, 0)[%d] = %g, want %g", i, pos[i], want[i])
		}
	}

	if _, err := set.Position(750, 777, 0); err == nil {
		t.Fatalf("expected error for body with no segment")
	}
}
