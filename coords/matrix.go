package coords

import "math"

// ObliquityJ2000 is the mean obliquity of the ecliptic at the J2000 epoch in
// radians (IAU 1976 value, 84381.448 arcseconds). Rotating an equatorial
// J2000 vector by this angle about x yields its ecliptic-of-J2000 components.
const ObliquityJ2000 = 84381.448 / 3600.0 * math.Pi / 180.0

// Matrix3 is a 3x3 rotation matrix in row-major order. Frame transforms are
// expressed as rotation matrices applied to kilometre vectors.
type Matrix3 [3][3]float64

// Identity returns the identity rotation.
func Identity() Matrix3 {
	return Matrix3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
}

// RotX returns the rotation by angle (radians) about the x axis, in the
// frame-rotation (row-vector transforming) convention used throughout.
func RotX(angle float64) Matrix3 {
	s, c := math.Sin(angle), math.Cos(angle)
	return Matrix3{
		{1, 0, 0},
		{0, c, s},
		{0, -s, c},
	}
}

// RotZ returns the rotation by angle (radians) about the z axis.
func RotZ(angle float64) Matrix3 {
	s, c := math.Sin(angle), math.Cos(angle)
	return Matrix3{
		{c, s, 0},
		{-s, c, 0},
		{0, 0, 1},
	}
}

// Mul returns m * other.
func (m Matrix3) Mul(other Matrix3) Matrix3 {
	var out Matrix3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out[i][j] = m[i][0]*other[0][j] + m[i][1]*other[1][j] + m[i][2]*other[2][j]
		}
	}
	return out
}

// Transpose returns the transposed matrix. For rotations this is the inverse.
func (m Matrix3) Transpose() Matrix3 {
	var out Matrix3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out[i][j] = m[j][i]
		}
	}
	return out
}

// Apply rotates a vector.
func (m Matrix3) Apply(v [3]float64) [3]float64 {
	var out [3]float64
	for i := 0; i < 3; i++ {
		out[i] = m[i][0]*v[0] + m[i][1]*v[1] + m[i][2]*v[2]
	}
	return out
}
