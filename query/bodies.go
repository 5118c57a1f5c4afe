package query

import "strings"

// Body identifies a solar-system body in the supported-body catalog.
type Body struct {
	// Name is the canonical (upper-case) body name.
	Name string
	// NAIF is the ephemeris target id the kernel-driven backend queries.
	NAIF int
	// Parent is the owning planet's catalog key for natural satellites
	// ("mars", "jupiter", ...), empty for the Sun, Moon, and planets.
	Parent string
}

// Satellite reports whether the body is a planetary satellite (other than
// Earth's Moon, which ships in the planetary ephemeris file).
func (b Body) Satellite() bool { return b.Parent != "" }

// The catalog mirrors the NAIF id assignments: 10 for the Sun, planet
// barycenters 1-9, 301 for the Moon, 399 for Earth, and NXX ids for
// satellites of planet N.
var bodyCatalog = map[string]Body{
	"SUN":     {Name: "SUN", NAIF: 10},
	"MERCURY": {Name: "MERCURY", NAIF: 1},
	"VENUS":   {Name: "VENUS", NAIF: 2},
	"EARTH":   {Name: "EARTH", NAIF: 399},
	"MOON":    {Name: "MOON", NAIF: 301},
	"MARS":    {Name: "MARS", NAIF: 4},
	"JUPITER": {Name: "JUPITER", NAIF: 5},
	"SATURN":  {Name: "SATURN", NAIF: 6},
	"URANUS":  {Name: "URANUS", NAIF: 7},
	"NEPTUNE": {Name: "NEPTUNE", NAIF: 8},
	"PLUTO":   {Name: "PLUTO", NAIF: 9},

	"PHOBOS":    {Name: "PHOBOS", NAIF: 401, Parent: "mars"},
	"DEIMOS":    {Name: "DEIMOS", NAIF: 402, Parent: "mars"},
	"IO":        {Name: "IO", NAIF: 501, Parent: "jupiter"},
	"EUROPA":    {Name: "EUROPA", NAIF: 502, Parent: "jupiter"},
	"GANYMEDE":  {Name: "GANYMEDE", NAIF: 503, Parent: "jupiter"},
	"CALLISTO":  {Name: "CALLISTO", NAIF: 504, Parent: "jupiter"},
	"ENCELADUS": {Name: "ENCELADUS", NAIF: 602, Parent: "saturn"},
	"RHEA":      {Name: "RHEA", NAIF: 605, Parent: "saturn"},
	"TITAN":     {Name: "TITAN", NAIF: 606, Parent: "saturn"},
	"MIRANDA":   {Name: "MIRANDA", NAIF: 705, Parent: "uranus"},
	"TITANIA":   {Name: "TITANIA", NAIF: 703, Parent: "uranus"},
	"OBERON":    {Name: "OBERON", NAIF: 704, Parent: "uranus"},
	"TRITON":    {Name: "TRITON", NAIF: 801, Parent: "neptune"},
	"CHARON":    {Name: "CHARON", NAIF: 901, Parent: "pluto"},
}

// LookupBody resolves a body name (case-insensitive) against the catalog.
func LookupBody(name string) (Body, bool) {
	b, ok := bodyCatalog[strings.ToUpper(strings.TrimSpace(name))]
	return b, ok
}
