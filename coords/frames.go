package coords

import (
	"fmt"
	"strings"
)

// Frame is a canonical coordinate reference frame. The set is closed; user
// input is resolved onto it through a FrameRegistry.
type Frame int

const (
	// ICRF is the inertial celestial frame (equatorial, Earth-centred),
	// realised as J2000.
	ICRF Frame = iota
	// EclipJ2000 is the ecliptic celestial frame at the J2000 epoch.
	EclipJ2000
	// ITRF93 is the rotating Earth-fixed terrestrial frame.
	ITRF93
	// IAUSun is the Sun body-fixed rotating frame.
	IAUSun
	// IAUMoon is the Moon body-fixed rotating frame.
	IAUMoon
	// IAUMars is the Mars body-fixed rotating frame.
	IAUMars
)

// String returns the canonical frame name.
func (f Frame) String() string {
	switch f {
	case ICRF:
		return "J2000"
	case EclipJ2000:
		return "ECLIPJ2000"
	case ITRF93:
		return "ITRF93"
	case IAUSun:
		return "IAU_SUN"
	case IAUMoon:
		return "IAU_MOON"
	case IAUMars:
		return "IAU_MARS"
	default:
		return fmt.Sprintf("Frame(%d)", int(f))
	}
}

// Terrestrial reports whether polar positions in this frame follow the
// terrestrial convention (LatLonAlt). Celestial frames use RaDec.
func (f Frame) Terrestrial() bool {
	switch f {
	case ITRF93, IAUSun, IAUMoon, IAUMars:
		return true
	default:
		return false
	}
}

// defaultAliases is the canonical many-to-one alias table. "GCRS" binding to
// the ecliptic frame is inherited wire behaviour and kept deliberately.
var defaultAliases = map[Frame][]string{
	ICRF:       {"ICRS", "ICRF", "EME2000", "EME2K", "J2000", "J2K", "ECI"},
	EclipJ2000: {"ECLIPJ2000", "GCRS"},
	ITRF93:     {"ITRF", "ITRF93", "IAU_EARTH", "ECEF"},
	IAUSun:     {"IAU_SUN"},
	IAUMoon:    {"IAU_MOON"},
	IAUMars:    {"IAU_MARS"},
}

// FrameRegistry resolves user-supplied frame tokens to canonical frames.
type FrameRegistry struct {
	aliases map[string]Frame
}

// NewFrameRegistry builds a registry from an alias table. Construction fails
// if two canonical frames claim the same alias; that check is a correctness
// invariant of the registry, not just of the default table.
func NewFrameRegistry(table map[Frame][]string) (*FrameRegistry, error) {
	aliases := make(map[string]Frame)
	for frame, names := range table {
		for _, name := range names {
			key := normalizeFrameToken(name)
			if existing, ok := aliases[key]; ok && existing != frame {
				return nil, fmt.Errorf("frame alias collision: %q claimed by both %s and %s",
					name, existing, frame)
			}
			aliases[key] = frame
		}
	}
	return &FrameRegistry{aliases: aliases}, nil
}

// DefaultFrameRegistry returns a registry over the canonical alias table.
func DefaultFrameRegistry() *FrameRegistry {
	reg, err := NewFrameRegistry(defaultAliases)
	if err != nil {
		// The default table is static; a collision here is a programming error.
		panic(err)
	}
	return reg
}

// Resolve maps a frame token onto its canonical frame. Matching is
// case-insensitive. Unknown tokens fail with UnsupportedFrameError.
func (r *FrameRegistry) Resolve(token string) (Frame, error) {
	f, ok := r.aliases[normalizeFrameToken(token)]
	if !ok {
		return 0, &UnsupportedFrameError{Token: token}
	}
	return f, nil
}

func normalizeFrameToken(token string) string {
	return strings.ToUpper(strings.TrimSpace(token))
}
