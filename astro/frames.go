package astro

import (
	"math"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"

	"github.com/signalsfoundry/space-query/coords"
	"github.com/signalsfoundry/space-query/kernel"
)

// IAU 2009 pole models for the body-fixed frames this backend supports. The
// kernel-driven backend reads the same constants out of the text PCK.
var (
	sunPole = kernel.PoleModel{
		RA:  [3]float64{286.13, 0, 0},
		Dec: [3]float64{63.87, 0, 0},
		W:   [3]float64{84.176, 14.1844000, 0},
	}
	moonPole = kernel.PoleModel{
		RA:  [3]float64{269.9949, 0.0031, 0},
		Dec: [3]float64{66.5392, 0.0130, 0},
		W:   [3]float64{38.3213, 13.17635815, 0},
	}
	marsPole = kernel.PoleModel{
		RA:  [3]float64{317.68143, -0.1061, 0},
		Dec: [3]float64{52.88650, -0.0609, 0},
		W:   [3]float64{176.630, 350.89198226, 0},
	}
)

// frameMatrix returns the rotation from the equatorial J2000 frame into the
// requested frame at a UTC instant.
func frameMatrix(f coords.Frame, at time.Time) (coords.Matrix3, error) {
	switch f {
	case coords.ICRF:
		return coords.Identity(), nil
	case coords.EclipJ2000:
		return coords.RotX(coords.ObliquityJ2000), nil
	case coords.ITRF93:
		return coords.RotZ(gmst(at)), nil
	case coords.IAUSun:
		return sunPole.Matrix(secondsSinceJ2000(at)), nil
	case coords.IAUMoon:
		return moonPole.Matrix(secondsSinceJ2000(at)), nil
	case coords.IAUMars:
		return marsPole.Matrix(secondsSinceJ2000(at)), nil
	default:
		return coords.Matrix3{}, &coords.UnsupportedFrameError{Token: f.String()}
	}
}

// gmst is Greenwich mean sidereal time in radians, via the SGP4 library's
// Julian-date routines. Rotating an inertial equatorial vector by this angle
// about z yields its Earth-fixed components.
func gmst(at time.Time) float64 {
	utc := at.UTC()
	year, month, day := utc.Date()
	hour, min, sec := utc.Clock()
	jd := satellite.JDay(year, int(month), day, hour, min, sec)
	return satellite.ThetaG_JD(jd)
}

func secondsSinceJ2000(at time.Time) float64 {
	j2000 := time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC)
	return at.Sub(j2000).Seconds()
}

// centuriesSinceJ2000 is the polynomial time argument of the analytic
// ephemerides. The leap-second scale difference is far below their accuracy.
func centuriesSinceJ2000(at time.Time) float64 {
	return secondsSinceJ2000(at) / (86400.0 * 36525.0)
}

func sinDeg(d float64) float64 { return math.Sin(d * math.Pi / 180) }
func cosDeg(d float64) float64 { return math.Cos(d * math.Pi / 180) }
