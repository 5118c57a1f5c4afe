package query

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/signalsfoundry/space-query/coords"
)

type fakeProvider struct{ name string }

func (f *fakeProvider) CelestialPosition(ctx context.Context, body string, at time.Time) (coords.Cartesian, error) {
	return coords.CartesianKm(1, 0, 0), nil
}

func (f *fakeProvider) Transform(ctx context.Context, pos coords.Position, from, to coords.Frame, at time.Time) (coords.Position, error) {
	return pos, nil
}

func TestRegistryCreateByName(t *testing.T) {
	Register("test-a", func(Options) (Provider, error) { return &fakeProvider{name: "a"}, nil })
	Register("test-b", func(Options) (Provider, error) { return &fakeProvider{name: "b"}, nil })

	p, err := New("test-b", Options{})
	if err != nil {
		t.Fatalf("New(test-b): %v", err)
	}
	if fp, ok := p.(*fakeProvider); !ok || fp.name != "b" {
		t.Fatalf("New(test-b) = %#v, want fakeProvider b", p)
	}
}

func TestRegistryUnregisteredName(t *testing.T) {
	_, err := New("no-such-backend", Options{})
	var bnr *BackendNotRegisteredError
	if !errors.As(err, &bnr) {
		t.Fatalf("err = %v, want BackendNotRegisteredError", err)
	}
	if bnr.Name != "no-such-backend" {
		t.Fatalf("error name = %q, want no-such-backend", bnr.Name)
	}
}

func TestLookupBody(t *testing.T) {
	b, ok := LookupBody("mars")
	if !ok {
		t.Fatal("LookupBody(mars) not found")
	}
	if b.NAIF != 4 || b.Satellite() {
		t.Fatalf("mars = %+v, want barycenter 4, not a satellite", b)
	}

	phobos, ok := LookupBody("Phobos")
	if !ok {
		t.Fatal("LookupBody(Phobos) not found")
	}
	if phobos.Parent != "mars" || !phobos.Satellite() {
		t.Fatalf("phobos = %+v, want satellite of mars", phobos)
	}

	if _, ok := LookupBody("PLUTO-MOON-XYZ"); ok {
		t.Fatal("LookupBody(PLUTO-MOON-XYZ) = found, want missing")
	}
}
