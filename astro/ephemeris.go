package astro

import (
	"fmt"
	"math"
	"time"
)

const kmPerAU = 149597870.7

// keplerianElements is one row of the JPL approximate-elements table
// (Standish, "Approximate Positions of the Planets", valid 1800-2050):
// heliocentric ecliptic-of-J2000 elements plus their per-century rates.
type keplerianElements struct {
	a, aDot         float64 // semi-major axis, au
	e, eDot         float64 // eccentricity
	i, iDot         float64 // inclination, deg
	l, lDot         float64 // mean longitude, deg
	peri, periDot   float64 // longitude of perihelion, deg
	node, nodeDot   float64 // longitude of ascending node, deg
}

var planetElements = map[string]keplerianElements{
	"MERCURY": {0.38709927, 0.00000037, 0.20563593, 0.00001906, 7.00497902, -0.00594749,
		252.25032350, 149472.67411175, 77.45779628, 0.16047689, 48.33076593, -0.12534081},
	"VENUS": {0.72333566, 0.00000390, 0.00677672, -0.00004107, 3.39467605, -0.00078890,
		181.97909950, 58517.81538729, 131.60246718, 0.00268329, 76.67984255, -0.27769418},
	"EARTH": {1.00000261, 0.00000562, 0.01671123, -0.00004392, -0.00001531, -0.01294668,
		100.46457166, 35999.37244981, 102.93768193, 0.32327364, 0.0, 0.0},
	"MARS": {1.52371034, 0.00001847, 0.09339410, 0.00007882, 1.84969142, -0.00813131,
		-4.55343205, 19140.30268499, -23.94362959, 0.44441088, 49.55953891, -0.29257343},
	"JUPITER": {5.20288700, -0.00011607, 0.04838624, -0.00013253, 1.30439695, -0.00183714,
		34.39644051, 3034.74612775, 14.72847983, 0.21252668, 100.47390909, 0.20469106},
	"SATURN": {9.53667594, -0.00125060, 0.05386179, -0.00050991, 2.48599187, 0.00193609,
		49.95424423, 1222.49362201, 92.59887831, -0.41897216, 113.66242448, -0.28867794},
	"URANUS": {19.18916464, -0.00196176, 0.04725744, -0.00004397, 0.77263783, -0.00242939,
		313.23810451, 428.48202785, 170.95427630, 0.40805281, 74.01692503, 0.04240589},
	"NEPTUNE": {30.06992276, 0.00026291, 0.00859048, 0.00005105, 1.77004347, 0.00035372,
		-55.12002969, 218.45945325, 44.96476227, -0.32241464, 131.78422574, -0.00508664},
	"PLUTO": {39.48211675, -0.00031596, 0.24882730, 0.00005170, 17.14001206, 0.00004818,
		238.92903833, 145.20780515, 224.06891629, -0.04062942, 110.30393684, -0.01183482},
}

// geocentricEcliptic returns a body's position relative to Earth in ecliptic
// J2000 cartesian km.
func geocentricEcliptic(body string, at time.Time) ([3]float64, error) {
	switch body {
	case "EARTH":
		return [3]float64{}, nil
	case "SUN":
		return solarPosition(at), nil
	case "MOON":
		return lunarPosition(at), nil
	}

	el, ok := planetElements[body]
	if !ok {
		return [3]float64{}, fmt.Errorf("no analytic ephemeris for %s", body)
	}
	T := centuriesSinceJ2000(at)
	planet := heliocentric(el, T)
	earth := heliocentric(planetElements["EARTH"], T)
	return [3]float64{planet[0] - earth[0], planet[1] - earth[1], planet[2] - earth[2]}, nil
}

// heliocentric evaluates the elements at T centuries past J2000 and returns
// the heliocentric ecliptic position in km.
func heliocentric(el keplerianElements, T float64) [3]float64 {
	a := el.a + el.aDot*T
	e := el.e + el.eDot*T
	i := el.i + el.iDot*T
	l := el.l + el.lDot*T
	peri := el.peri + el.periDot*T
	node := el.node + el.nodeDot*T

	omega := peri - node
	m := normDeg(l - peri)
	ea := solveKepler(m, e)

	// Perifocal coordinates.
	xp := a * (math.Cos(ea) - e)
	yp := a * math.Sqrt(1-e*e) * math.Sin(ea)

	co, so := cosDeg(omega), sinDeg(omega)
	cn, sn := cosDeg(node), sinDeg(node)
	ci, si := cosDeg(i), sinDeg(i)

	x := (co*cn-so*sn*ci)*xp + (-so*cn-co*sn*ci)*yp
	y := (co*sn+so*cn*ci)*xp + (-so*sn+co*cn*ci)*yp
	z := so*si*xp + co*si*yp
	return [3]float64{x * kmPerAU, y * kmPerAU, z * kmPerAU}
}

// solveKepler solves E - e sin E = M by Newton iteration. M in degrees, E in
// radians.
func solveKepler(mDeg, e float64) float64 {
	m := mDeg * math.Pi / 180
	ea := m + e*math.Sin(m)
	for iter := 0; iter < 20; iter++ {
		delta := (ea - e*math.Sin(ea) - m) / (1 - e*math.Cos(ea))
		ea -= delta
		if math.Abs(delta) < 1e-12 {
			break
		}
	}
	return ea
}

// solarPosition is the low-precision analytic solar ephemeris (Montenbruck
// and Pfleger): geocentric ecliptic longitude and distance, latitude zero.
func solarPosition(at time.Time) [3]float64 {
	T := centuriesSinceJ2000(at)
	m := 357.5256 + 35999.049*T
	lon := 282.9400 + m + (6892.0*sinDeg(m)+72.0*sinDeg(2*m))/3600.0
	r := (149.619 - 2.499*cosDeg(m) - 0.021*cosDeg(2*m)) * 1e6
	return [3]float64{r * cosDeg(lon), r * sinDeg(lon), 0}
}

// lunarPosition is a truncated lunar theory (the dominant terms of the
// Brown series as given by Montenbruck and Pfleger), good to a few
// arcminutes.
func lunarPosition(at time.Time) [3]float64 {
	T := centuriesSinceJ2000(at)

	l0 := 218.31617 + 481267.88088*T // mean longitude
	l := 134.96292 + 477198.86753*T  // lunar mean anomaly
	ls := 357.52543 + 35999.04944*T  // solar mean anomaly
	f := 93.27283 + 483202.01873*T   // argument of latitude
	d := 297.85027 + 445267.11135*T  // mean elongation

	dl := 22640*sinDeg(l) + 769*sinDeg(2*l) -
		4586*sinDeg(l-2*d) + 2370*sinDeg(2*d) -
		668*sinDeg(ls) - 412*sinDeg(2*f) -
		212*sinDeg(2*l-2*d) - 206*sinDeg(l+ls-2*d) +
		192*sinDeg(l+2*d) - 165*sinDeg(ls-2*d) +
		148*sinDeg(l-ls) - 125*sinDeg(d) -
		110*sinDeg(l+ls) - 55*sinDeg(2*f-2*d)
	lon := l0 + dl/3600.0

	s := f + (dl+412*sinDeg(2*f)+541*sinDeg(ls))/3600.0
	h := f - 2*d
	n := -526*sinDeg(h) + 44*sinDeg(l+h) - 31*sinDeg(-l+h) -
		23*sinDeg(ls+h) + 11*sinDeg(-ls+h) - 25*sinDeg(-2*l+f) +
		21*sinDeg(-l+f)
	lat := (18520.0*sinDeg(s) + n) / 3600.0

	r := 385000.0 - 20905*cosDeg(l) - 3699*cosDeg(2*d-l) -
		2956*cosDeg(2*d) - 570*cosDeg(2*l) + 246*cosDeg(2*l-2*d) -
		205*cosDeg(ls-2*d) - 171*cosDeg(l+2*d) - 152*cosDeg(l+ls-2*d)

	return [3]float64{
		r * cosDeg(lat) * cosDeg(lon),
		r * cosDeg(lat) * sinDeg(lon),
		r * sinDeg(lat),
	}
}

func normDeg(d float64) float64 {
	d = math.Mod(d, 360)
	if d > 180 {
		d -= 360
	}
	if d < -180 {
		d += 360
	}
	return d
}
