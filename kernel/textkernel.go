// Package kernel implements the kernel-file layer of the kernel-driven
// backend: the declared kernel catalog, the remote-archive client, and
// readers for the file formats the provider consumes (leap-second text
// kernels, text orientation-constant kernels, frame-association kernels, and
// DAF-packaged binary ephemeris/orientation segments).
package kernel

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// ValueKind tags a parsed text-kernel value.
type ValueKind int

const (
	// NumberValue is a numeric literal (FORTRAN D exponents accepted).
	NumberValue ValueKind = iota
	// StringValue is a single-quoted string.
	StringValue
	// TimeValue is an @-prefixed calendar date.
	TimeValue
)

// Value is one element of a text-kernel assignment.
type Value struct {
	Kind ValueKind
	Num  float64
	Str  string
	Time time.Time
}

// TextKernel holds the assignments of the \begindata sections of a text
// kernel. Keys are kept verbatim (e.g. "DELTET/DELTA_AT", "BODY399_RADII").
type TextKernel struct {
	values map[string][]Value
}

// ParseTextKernel reads a text kernel, honouring \begindata/\begintext
// section markers.
func ParseTextKernel(r io.Reader) (*TextKernel, error) {
	var data strings.Builder
	inData := false

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case `\begindata`:
			inData = true
			continue
		case `\begintext`:
			inData = false
			continue
		}
		if inData {
			data.WriteString(scanner.Text())
			data.WriteString("\n")
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read text kernel: %w", err)
	}

	tokens := lexTextKernel(data.String())
	values, err := parseAssignments(tokens)
	if err != nil {
		return nil, err
	}
	return &TextKernel{values: values}, nil
}

// Values returns the raw values of an assignment.
func (t *TextKernel) Values(name string) ([]Value, bool) {
	v, ok := t.values[name]
	return v, ok
}

// Floats returns an assignment's values as numbers; it fails if any value is
// not numeric.
func (t *TextKernel) Floats(name string) ([]float64, error) {
	vals, ok := t.values[name]
	if !ok {
		return nil, fmt.Errorf("text kernel: no assignment %q", name)
	}
	out := make([]float64, len(vals))
	for i, v := range vals {
		if v.Kind != NumberValue {
			return nil, fmt.Errorf("text kernel: %s[%d] is not numeric", name, i)
		}
		out[i] = v.Num
	}
	return out, nil
}

// Float returns a single-valued numeric assignment.
func (t *TextKernel) Float(name string) (float64, error) {
	vals, err := t.Floats(name)
	if err != nil {
		return 0, err
	}
	if len(vals) != 1 {
		return 0, fmt.Errorf("text kernel: %s has %d values, want 1", name, len(vals))
	}
	return vals[0], nil
}

// Names lists all assignment keys.
func (t *TextKernel) Names() []string {
	out := make([]string, 0, len(t.values))
	for name := range t.values {
		out = append(out, name)
	}
	return out
}

func lexTextKernel(data string) []string {
	var tokens []string
	i := 0
	for i < len(data) {
		c := data[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == ',':
			i++
		case c == '(' || c == ')' || c == '=':
			tokens = append(tokens, string(c))
			i++
		case c == '\'':
			j := i + 1
			for j < len(data) && data[j] != '\'' {
				j++
			}
			tokens = append(tokens, data[i:min(j+1, len(data))])
			i = j + 1
		default:
			j := i
			for j < len(data) && !strings.ContainsRune(" \t\n\r,()=", rune(data[j])) {
				j++
			}
			tokens = append(tokens, data[i:j])
			i = j
		}
	}
	return tokens
}

func parseAssignments(tokens []string) (map[string][]Value, error) {
	values := make(map[string][]Value)
	i := 0
	for i < len(tokens) {
		name := tokens[i]
		if i+1 >= len(tokens) || tokens[i+1] != "=" {
			return nil, fmt.Errorf("text kernel: expected assignment after %q", name)
		}
		i += 2
		var vals []Value
		if i < len(tokens) && tokens[i] == "(" {
			i++
			for i < len(tokens) && tokens[i] != ")" {
				v, err := parseValue(tokens[i])
				if err != nil {
					return nil, fmt.Errorf("text kernel: %s: %w", name, err)
				}
				vals = append(vals, v)
				i++
			}
			if i >= len(tokens) {
				return nil, fmt.Errorf("text kernel: %s: unterminated list", name)
			}
			i++ // consume ")"
		} else {
			if i >= len(tokens) {
				return nil, fmt.Errorf("text kernel: %s: missing value", name)
			}
			v, err := parseValue(tokens[i])
			if err != nil {
				return nil, fmt.Errorf("text kernel: %s: %w", name, err)
			}
			vals = append(vals, v)
			i++
		}
		values[name] = vals
	}
	return values, nil
}

func parseValue(token string) (Value, error) {
	switch {
	case strings.HasPrefix(token, "'"):
		return Value{Kind: StringValue, Str: strings.Trim(token, "'")}, nil
	case strings.HasPrefix(token, "@"):
		ts, err := parseKernelDate(token[1:])
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: TimeValue, Time: ts}, nil
	default:
		// FORTRAN-style exponents use D in place of E.
		normalized := strings.ReplaceAll(strings.ReplaceAll(token, "D", "E"), "d", "e")
		num, err := strconv.ParseFloat(normalized, 64)
		if err != nil {
			return Value{}, fmt.Errorf("bad value %q", token)
		}
		return Value{Kind: NumberValue, Num: num}, nil
	}
}

var kernelMonths = map[string]time.Month{
	"JAN": time.January, "FEB": time.February, "MAR": time.March,
	"APR": time.April, "MAY": time.May, "JUN": time.June,
	"JUL": time.July, "AUG": time.August, "SEP": time.September,
	"OCT": time.October, "NOV": time.November, "DEC": time.December,
}

// parseKernelDate handles the YYYY-MON-D calendar form leap-second kernels
// use (e.g. 2017-JAN-1).
func parseKernelDate(s string) (time.Time, error) {
	parts := strings.Split(strings.ToUpper(s), "-")
	if len(parts) != 3 {
		return time.Time{}, fmt.Errorf("bad kernel date %q", s)
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return time.Time{}, fmt.Errorf("bad kernel date %q", s)
	}
	month, ok := kernelMonths[parts[1]]
	if !ok {
		return time.Time{}, fmt.Errorf("bad kernel date month %q", s)
	}
	day, err := strconv.Atoi(parts[2])
	if err != nil {
		return time.Time{}, fmt.Errorf("bad kernel date %q", s)
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC), nil
}
