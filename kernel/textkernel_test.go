package kernel

import (
	"math"
	"strings"
	"testing"
	"time"
)

const sampleTextKernel = `
KPL/LSK

Commentary outside any data section is ignored, even when it contains
things = that look like ( assignments ).

\begindata

DELTET/DELTA_T_A = 32.184
DELTET/K         = 1.657D-3
NAMES            = ( 'FIRST', 'SECOND' )
EPOCH            = @2017-JAN-1

\begintext

IGNORED = 999

\begindata

TRIPLE = ( 1.0, 2.0,
           3.0 )
`

func TestParseTextKernel(t *testing.T) {
	tk, err := ParseTextKernel(strings.NewReader(sampleTextKernel))
	if err != nil {
		t.Fatalf("ParseTextKernel: %v", err)
	}

	if _, ok := tk.Values("IGNORED"); ok {
		t.Fatalf("assignment outside \\begindata was parsed")
	}

	v, err := tk.Float("DELTET/DELTA_T_A")
	if err != nil {
		t.Fatalf("Float: %v", err)
	}
	if v != 32.184 {
		t.Fatalf("DELTA_T_A = %g, want 32.184", v)
	}

	// FORTRAN D exponent.
	k, err := tk.Float("DELTET/K")
	if err != nil {
		t.Fatalf("Float: %v", err)
	}
	if math.Abs(k-1.657e-3) > 1e-15 {
		t.Fatalf("K = %g, want 1.657e-3", k)
	}

	names, ok := tk.Values("NAMES")
	if !ok || len(names) != 2 {
		t.Fatalf("NAMES = %v", names)
	}
	if names[0].Kind != StringValue || names[0].Str != "FIRST" || names[1].Str != "SECOND" {
		t.Fatalf("NAMES values = %v", names)
	}

	epoch, ok := tk.Values("EPOCH")
	if !ok || len(epoch) != 1 || epoch[0].Kind != TimeValue {
		t.Fatalf("EPOCH = %v", epoch)
	}
	want := time.Date(2017, time.January, 1, 0, 0, 0, 0, time.UTC)
	if !epoch[0].Time.Equal(want) {
		t.Fatalf("EPOCH = %v, want %v", epoch[0].Time, want)
	}

	triple, err := tk.Floats("TRIPLE")
	if err != nil {
		t.Fatalf("Floats: %v", err)
	}
	if len(triple) != 3 || triple[2] != 3.0 {
		t.Fatalf("TRIPLE = %v", triple)
	}
}

func TestParseTextKernelErrors(t *testing.T) {
	if _, err := ParseTextKernel(strings.NewReader("\\begindata\nNAME 3.0\n")); err == nil {
		t.Fatalf("expected error for missing =")
	}
	if _, err := ParseTextKernel(strings.NewReader("\\begindata\nNAME = ( 1.0, 2.0\n")); err == nil {
		t.Fatalf("expected error for unterminated list")
	}
	if _, err := ParseTextKernel(strings.NewReader("\\begindata\nNAME = @BAD-DATE\n")); err == nil {
		t.Fatalf("expected error for malformed date")
	}
}
