package kernel

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"strings"
)

// DAF is a parsed double-precision array file, the container format binary
// ephemeris (SPK) and orientation (binary PCK) kernels ship in. The file is
// a sequence of 1024-byte records: a file record, a doubly-linked chain of
// summary records, and data records addressed as one big array of float64
// words.
type DAF struct {
	// ID is the architecture word, e.g. "DAF/SPK" or "DAF/PCK".
	ID string

	data  []byte
	order binary.ByteOrder
	nd    int
	ni    int
	fward int
}

const dafRecordLen = 1024

// LoadDAF reads and parses a DAF from disk.
func LoadDAF(path string) (*DAF, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	d, err := ParseDAF(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// ParseDAF parses an in-memory DAF image.
func ParseDAF(data []byte) (*DAF, error) {
	if len(data) < dafRecordLen {
		return nil, fmt.Errorf("daf: file record truncated (%d bytes)", len(data))
	}
	id := strings.TrimSpace(string(data[0:8]))
	if !strings.HasPrefix(id, "DAF/") {
		return nil, fmt.Errorf("daf: bad architecture word %q", id)
	}

	var order binary.ByteOrder
	switch fmtWord := strings.TrimSpace(string(data[88:96])); fmtWord {
	case "LTL-IEEE":
		order = binary.LittleEndian
	case "BIG-IEEE":
		order = binary.BigEndian
	default:
		return nil, fmt.Errorf("daf: unsupported binary format %q", fmtWord)
	}

	d := &DAF{
		ID:    id,
		data:  data,
		order: order,
		nd:    int(int32(order.Uint32(data[8:12]))),
		ni:    int(int32(order.Uint32(data[12:16]))),
		fward: int(int32(order.Uint32(data[76:80]))),
	}
	if d.nd < 0 || d.ni < 1 || d.fward < 2 {
		return nil, fmt.Errorf("daf: implausible file record (nd=%d ni=%d fward=%d)", d.nd, d.ni, d.fward)
	}
	return d, nil
}

// Summary is one segment descriptor: ND doubles followed by NI integers.
type Summary struct {
	Doubles []float64
	Ints    []int
}

// Summaries walks the summary-record chain and returns every segment
// descriptor in file order.
func (d *DAF) Summaries() ([]Summary, error) {
	var out []Summary
	// Summary size in double words; integers are packed two per word.
	ss := d.nd + (d.ni+1)/2

	record := d.fward
	for record != 0 {
		base := (record - 1) * dafRecordLen
		if base+dafRecordLen > len(d.data) {
			return nil, fmt.Errorf("daf: summary record %d out of range", record)
		}
		next := int(d.wordAt(base))
		nsum := int(d.wordAt(base + 16))

		for i := 0; i < nsum; i++ {
			start := base + 24 + i*ss*8
			if start+ss*8 > base+dafRecordLen {
				return nil, fmt.Errorf("daf: summary %d overflows record %d", i, record)
			}
			s := Summary{
				Doubles: make([]float64, d.nd),
				Ints:    make([]int, d.ni),
			}
			for j := 0; j < d.nd; j++ {
				s.Doubles[j] = d.wordAt(start + j*8)
			}
			intBase := start + d.nd*8
			for j := 0; j < d.ni; j++ {
				s.Ints[j] = int(int32(d.order.Uint32(d.data[intBase+j*4 : intBase+j*4+4])))
			}
			out = append(out, s)
		}
		record = next
	}
	return out, nil
}

// Elements returns the double words in the inclusive 1-based word-address
// range [first, last].
func (d *DAF) Elements(first, last int) ([]float64, error) {
	if first < 1 || last < first {
		return nil, fmt.Errorf("daf: bad element range [%d, %d]", first, last)
	}
	if last*8 > len(d.data) {
		return nil, fmt.Errorf("daf: element range [%d, %d] beyond file end", first, last)
	}
	out := make([]float64, last-first+1)
	for i := range out {
		out[i] = d.wordAt((first - 1 + i) * 8)
	}
	return out, nil
}

func (d *DAF) wordAt(byteOffset int) float64 {
	return math.Float64frombits(d.order.Uint64(d.data[byteOffset : byteOffset+8]))
}

// chebyshevEval evaluates a Chebyshev series via the Clenshaw recurrence at
// a scaled argument tau in [-1, 1].
func chebyshevEval(coeffs []float64, tau float64) float64 {
	var b1, b2 float64
	for i := len(coeffs) - 1; i >= 1; i-- {
		b1, b2 = 2*tau*b1-b2+coeffs[i], b1
	}
	return tau*b1 - b2 + coeffs[0]
}

// chebyshevRecord evaluates the nComp components of a Chebyshev data record
// (MID, RADIUS, then nComp coefficient runs) at an ephemeris time.
func chebyshevRecord(record []float64, nComp int, et float64) ([]float64, error) {
	if len(record) < 2 {
		return nil, fmt.Errorf("daf: chebyshev record too short")
	}
	mid, radius := record[0], record[1]
	if radius <= 0 {
		return nil, fmt.Errorf("daf: chebyshev record has non-positive radius")
	}
	nCoef := (len(record) - 2) / nComp
	if nCoef < 1 {
		return nil, fmt.Errorf("daf: chebyshev record has no coefficients")
	}
	tau := (et - mid) / radius

	out := make([]float64, nComp)
	for c := 0; c < nComp; c++ {
		start := 2 + c*nCoef
		out[c] = chebyshevEval(record[start:start+nCoef], tau)
	}
	return out, nil
}
