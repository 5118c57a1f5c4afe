package kernel

import (
	"math"
	"strings"
	"testing"
	"time"
)

const sampleLeapSeconds = `
\begindata

DELTET/DELTA_T_A = 32.184

DELTET/DELTA_AT  = ( 10, @1972-JAN-1
                     35, @2012-JUL-1
                     36, @2015-JUL-1
                     37, @2017-JAN-1 )
`

func TestParseLeapSeconds(t *testing.T) {
	ls, err := ParseLeapSeconds(strings.NewReader(sampleLeapSeconds))
	if err != nil {
		t.Fatalf("ParseLeapSeconds: %v", err)
	}

	cases := []struct {
		at   time.Time
		want float64
	}{
		{time.Date(1960, 1, 1, 0, 0, 0, 0, time.UTC), 10},
		{time.Date(2014, 6, 1, 0, 0, 0, 0, time.UTC), 35},
		{time.Date(2015, 7, 1, 0, 0, 0, 0, time.UTC), 36},
		{time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), 37},
	}
	for _, c := range cases {
		if got := ls.DeltaAT(c.at); got != c.want {
			t.Fatalf("DeltaAT(%v) = %g, want %g", c.at, got, c.want)
		}
	}
}

func TestETFromUTC(t *testing.T) {
	ls, err := ParseLeapSeconds(strings.NewReader(sampleLeapSeconds))
	if err != nil {
		t.Fatalf("ParseLeapSeconds: %v", err)
	}

	// 2020-01-01T00:00:00Z: unix 1577836800, deltaAT 37.
	at := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	want := 1577836800.0 + 37 + 32.184 - 946728000.0
	if got := ls.ETFromUTC(at); math.Abs(got-want) > 1e-6 {
		t.Fatalf("ETFromUTC = %f, want %f", got, want)
	}
}

func TestParseLeapSecondsErrors(t *testing.T) {
	if _, err := ParseLeapSeconds(strings.NewReader("\\begindata\nDELTET/DELTA_T_A = 32.184\n")); err == nil {
		t.Fatalf("expected error for missing DELTA_AT")
	}
	odd := "\\begindata\nDELTET/DELTA_AT = ( 10, @1972-JAN-1, 35 )\n"
	if _, err := ParseLeapSeconds(strings.NewReader(odd)); err == nil {
		t.Fatalf("expected error for odd-length DELTA_AT")
	}
}
