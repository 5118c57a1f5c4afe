package kernel

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
)

// Entry is one catalog kernel: a file name plus the directory it lives under
// on the generic-kernels archive.
type Entry struct {
	File       string
	ArchiveDir string

	// LatestPattern, when set, matches archive file names that supersede
	// File; the archive client uses it to discover the newest edition.
	LatestPattern *regexp.Regexp
}

// Catalog is the declared set of kernels the kernel-driven backend consumes,
// keyed by slash-separated paths: "lsk", "tpc", "tf", "pck/earth",
// "pck/moon", "spk/planets", "spk/satellites/mars" and so on.
type Catalog struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewCatalog builds a catalog over an explicit entry table. Keys are
// normalized on insertion.
func NewCatalog(entries map[string]Entry) *Catalog {
	c := &Catalog{entries: make(map[string]Entry, len(entries))}
	for k, e := range entries {
		c.entries[normalizeKey(k)] = e
	}
	return c
}

// DefaultCatalog returns the stock kernel set: leap seconds, text and binary
// orientation constants, the ITRF93 frame associations, the planetary
// ephemeris and one satellite ephemeris per outer system.
func DefaultCatalog() *Catalog {
	c := &Catalog{entries: map[string]Entry{
		"lsk": {
			File:       "latest_leapseconds.tls",
			ArchiveDir: "lsk",
		},
		"tpc": {
			File:       "pck00010.tpc",
			ArchiveDir: "pck",
		},
		"tf": {
			File:       "earth_assoc_itrf93.tf",
			ArchiveDir: "fk/planets",
		},
		"pck/earth": {
			File:          "earth_1962_240827_2124_combined.bpc",
			ArchiveDir:    "pck",
			LatestPattern: regexp.MustCompile(`^earth_.*_combined\.bpc$`),
		},
		"pck/moon": {
			File:          "moon_pa_de440_200625.bpc",
			ArchiveDir:    "pck",
			LatestPattern: regexp.MustCompile(`^moon_pa_de440.*\.bpc$`),
		},
		"spk/planets": {
			File:       "de440.bsp",
			ArchiveDir: "spk/planets",
		},
		"spk/satellites/mars": {
			File:       "mar097.bsp",
			ArchiveDir: "spk/satellites",
		},
		"spk/satellites/jupiter": {
			File:       "jup346.bsp",
			ArchiveDir: "spk/satellites",
		},
		"spk/satellites/saturn": {
			File:       "sat454.bsp",
			ArchiveDir: "spk/satellites",
		},
		"spk/satellites/uranus": {
			File:       "ura117.bsp",
			ArchiveDir: "spk/satellites",
		},
		"spk/satellites/neptune": {
			File:       "nep104.bsp",
			ArchiveDir: "spk/satellites",
		},
		"spk/satellites/pluto": {
			File:       "plu060.bsp",
			ArchiveDir: "spk/satellites",
		},
	}}
	return c
}

// Resolve looks up a catalog key.
func (c *Catalog) Resolve(key string) (Entry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[normalizeKey(key)]
	if !ok {
		return Entry{}, fmt.Errorf("kernel catalog: no entry %q", key)
	}
	return e, nil
}

// SetFile replaces an entry's file name, keeping its archive directory. The
// sync job calls this after discovering a newer edition on the archive.
func (c *Catalog) SetFile(key, file string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	k := normalizeKey(key)
	e, ok := c.entries[k]
	if !ok {
		return fmt.Errorf("kernel catalog: no entry %q", key)
	}
	e.File = file
	c.entries[k] = e
	return nil
}

// Keys lists the catalog keys in sorted order.
func (c *Catalog) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.entries))
	for k := range c.entries {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// SatelliteKey maps a parent planet name ("mars") to its satellite-ephemeris
// catalog key.
func SatelliteKey(parent string) string {
	return "spk/satellites/" + strings.ToLower(parent)
}

func normalizeKey(key string) string {
	return strings.ToLower(strings.Trim(key, "/"))
}
