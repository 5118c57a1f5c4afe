package kernel

import (
	"encoding/binary"
	"math"
	"testing"
)

// payloadWordBase is the word address of the first payload double in DAFs
// built by buildDAF (file record + one summary record come first).
const payloadWordBase = 2*dafRecordLen/8 + 1

// buildDAF assembles a little-endian DAF image with one summary record and a
// payload array starting at record 3. Summary int slices must reference
// payload positions via payloadWordBase.
func buildDAF(t *testing.T, id string, nd, ni int, summaries []Summary, payload []float64) []byte {
	t.Helper()

	putWord := func(buf []byte, off int, v float64) {
		binary.LittleEndian.PutUint64(buf[off:off+8], math.Float64bits(v))
	}

	payloadRecords := (len(payload)*8 + dafRecordLen - 1) / dafRecordLen
	data := make([]byte, (2+payloadRecords)*dafRecordLen)

	// File record.
	copy(data[0:8], []byte(id+"        ")[:8])
	binary.LittleEndian.PutUint32(data[8:12], uint32(nd))
	binary.LittleEndian.PutUint32(data[12:16], uint32(ni))
	binary.LittleEndian.PutUint32(data[76:80], 2) // FWARD
	binary.LittleEndian.PutUint32(data[80:84], 2) // BWARD
	copy(data[88:96], "LTL-IEEE")

	// Summary record.
	base := dafRecordLen
	putWord(data, base, 0)    // NEXT
	putWord(data, base+8, 0)  // PREV
	putWord(data, base+16, float64(len(summaries)))
	ss := nd + (ni+1)/2
	for i, s := range summaries {
		start := base + 24 + i*ss*8
		for j, d := range s.Doubles {
			putWord(data, start+j*8, d)
		}
		intBase := start + nd*8
		for j, v := range s.Ints {
			binary.LittleEndian.PutUint32(data[intBase+j*4:intBase+j*4+4], uint32(int32(v)))
		}
	}

	// Payload.
	for i, v := range payload {
		putWord(data, 2*dafRecordLen+i*8, v)
	}
	return data
}

func TestParseDAFRejectsBadImages(t *testing.T) {
	if _, err := ParseDAF(make([]byte, 100)); err == nil {
		t.Fatalf("expected error for truncated image")
	}

	data := buildDAF(t, "DAF/SPK", 2, 6, nil, nil)
	copy(data[0:8], "NOTADAF ")
	if _, err := ParseDAF(data); err == nil {
		t.Fatalf("expected error for bad architecture word")
	}

	data = buildDAF(t, "DAF/SPK", 2, 6, nil, nil)
	copy(data[88:96], "VAX-GFLT")
	if _, err := ParseDAF(data); err == nil {
		t.Fatalf("expected error for unsupported binary format")
	}
}

func TestDAFSummariesAndElements(t *testing.T) {
	summaries := []Summary{
		{Doubles: []float64{100, 200}, Ints: []int{301, 3, 1, 2, payloadWordBase, payloadWordBase + 3}},
		{Doubles: []float64{200, 300}, Ints: []int{3, 0, 1, 2, payloadWordBase + 4, payloadWordBase + 7}},
	}
	payload := []float64{1.5, 2.5, 3.5, 4.5, 5.5, 6.5, 7.5, 8.5}
	d, err := ParseDAF(buildDAF(t, "DAF/SPK", 2, 6, summaries, payload))
	if err != nil {
		t.Fatalf("ParseDAF: %v", err)
	}
	if d.ID != "DAF/SPK" {
		t.Fatalf("ID = %q, want DAF/SPK", d.ID)
	}

	got, err := d.Summaries()
	if err != nil {
		t.Fatalf("Summaries: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d summaries, want 2", len(got))
	}
	if got[0].Doubles[0] != 100 || got[0].Doubles[1] != 200 {
		t.Fatalf("summary 0 doubles = %v", got[0].Doubles)
	}
	if got[1].Ints[0] != 3 || got[1].Ints[5] != payloadWordBase+7 {
		t.Fatalf("summary 1 ints = %v", got[1].Ints)
	}

	elems, err := d.Elements(payloadWordBase+2, payloadWordBase+4)
	if err != nil {
		t.Fatalf("Elements: %v", err)
	}
	want := []float64{3.5, 4.5, 5.5}
	for i := range want {
		if elems[i] != want[i] {
			t.Fatalf("Elements[%d] = %g, want %g", i, elems[i], want[i])
		}
	}

	if _, err := d.Elements(payloadWordBase, payloadWordBase+10000); err == nil {
		t.Fatalf("expected error for out-of-range element address")
	}
}

func TestChebyshevEval(t *testing.T) {
	// T0=1, T1=tau, T2=2tau^2-1: coeffs {1, 2, 3} at tau=0.5 give
	// 1 + 2*0.5 + 3*(-0.5) = 0.5.
	got := chebyshevEval([]float64{1, 2, 3}, 0.5)
	if math.Abs(got-0.5) > 1e-12 {
		t.Fatalf("chebyshevEval = %g, want 0.5", got)
	}

	record := []float64{500, 500, 1, 2, 3, 0, 0, 4}
	comps, err := chebyshevRecord(record, 3, 750)
	if err != nil {
		t.Fatalf("chebyshevRecord: %v", err)
	}
	want := []float64{2, 3, 2} // tau = 0.5
	for i := range want {
		if math.Abs(comps[i]-want[i]) > 1e-12 {
			t.Fatalf("component %d = %g, want %g", i, comps[i], want[i])
		}
	}
}
