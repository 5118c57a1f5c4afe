package kernel

import (
	"fmt"
	"io"
	"sort"
	"time"
)

// ttMinusTAI is the fixed offset between Terrestrial Time and atomic time.
const ttMinusTAI = 32.184

// j2000UnixTT is the Unix timestamp of the J2000 epoch (2000-01-01 12:00:00
// TT) on the TT scale: unix(2000-01-01T12:00:00Z) shifted so that adding
// deltaAT + ttMinusTAI to a UTC unix time lands on it exactly at the epoch.
const j2000UnixTT = 946728000.0

type leapEntry struct {
	effective time.Time
	deltaAT   float64
}

// LeapSeconds is the UTC->ephemeris-time conversion table read from a
// leap-second kernel (DELTET/DELTA_AT).
type LeapSeconds struct {
	entries []leapEntry
}

// ParseLeapSeconds reads a leap-second text kernel.
func ParseLeapSeconds(r io.Reader) (*LeapSeconds, error) {
	tk, err := ParseTextKernel(r)
	if err != nil {
		return nil, err
	}
	vals, ok := tk.Values("DELTET/DELTA_AT")
	if !ok {
		return nil, fmt.Errorf("leap-second kernel: missing DELTET/DELTA_AT")
	}
	if len(vals) == 0 || len(vals)%2 != 0 {
		return nil, fmt.Errorf("leap-second kernel: DELTA_AT has %d values, want pairs", len(vals))
	}

	entries := make([]leapEntry, 0, len(vals)/2)
	for i := 0; i < len(vals); i += 2 {
		if vals[i].Kind != NumberValue || vals[i+1].Kind != TimeValue {
			return nil, fmt.Errorf("leap-second kernel: DELTA_AT pair %d is not (count, date)", i/2)
		}
		entries = append(entries, leapEntry{
			effective: vals[i+1].Time,
			deltaAT:   vals[i].Num,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].effective.Before(entries[j].effective)
	})
	return &LeapSeconds{entries: entries}, nil
}

// DeltaAT returns TAI-UTC at the given instant. Times before the first table
// entry use the first entry's value.
func (l *LeapSeconds) DeltaAT(t time.Time) float64 {
	delta := l.entries[0].deltaAT
	for _, e := range l.entries {
		if t.Before(e.effective) {
			break
		}
		delta = e.deltaAT
	}
	return delta
}

// ETFromUTC converts a UTC instant into ephemeris time: TDB seconds past the
// J2000 epoch. The periodic TDB-TT term (< 2 ms) is below the precision this
// service reports and is not modelled.
func (l *LeapSeconds) ETFromUTC(t time.Time) float64 {
	utc := float64(t.UnixNano()) / 1e9
	return utc + l.DeltaAT(t) + ttMinusTAI - j2000UnixTT
}
