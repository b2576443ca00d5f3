package utils

import "math"

// Matrix3 is a 3x3 homogeneous transform stored row-major:
//
//	| m[0] m[1] m[2] |
//	| m[3] m[4] m[5] |
//	| m[6] m[7] m[8] |
type Matrix3 [9]float64

// Identity returns the identity transform.
func Identity() Matrix3 {
	return Matrix3{1, 0, 0, 0, 1, 0, 0, 0, 1}
}

// ScaleMatrix returns an axis-aligned scaling transform.
func ScaleMatrix(sx, sy float64) Matrix3 {
	return Matrix3{sx, 0, 0, 0, sy, 0, 0, 0, 1}
}

// Apply maps a point through the projective transform. A vanishing
// homogeneous denominator yields a far off-image sentinel point so
// callers sampling with it fall outside any reasonable bounds.
func (m Matrix3) Apply(p Point) Point {
	denom := m[6]*p.X + m[7]*p.Y + m[8]
	if denom == 0 {
		return Point{X: -1e9, Y: -1e9}
	}
	return Point{
		X: (m[0]*p.X + m[1]*p.Y + m[2]) / denom,
		Y: (m[3]*p.X + m[4]*p.Y + m[5]) / denom,
	}
}

// ApplyAll maps a slice of points through the transform.
func (m Matrix3) ApplyAll(pts []Point) []Point {
	out := make([]Point, len(pts))
	for i, p := range pts {
		out[i] = m.Apply(p)
	}
	return out
}

// Inverse computes the matrix inverse via the adjugate. The second
// return value is false when the matrix is singular.
func (m Matrix3) Inverse() (Matrix3, bool) {
	a, b, c := m[0], m[1], m[2]
	d, e, f := m[3], m[4], m[5]
	g, h, i := m[6], m[7], m[8]

	det := a*(e*i-f*h) - b*(d*i-f*g) + c*(d*h-e*g)
	if det == 0 || math.IsNaN(det) || math.IsInf(det, 0) {
		return Matrix3{}, false
	}
	inv := Matrix3{
		e*i - f*h, c*h - b*i, b*f - c*e,
		f*g - d*i, a*i - c*g, c*d - a*f,
		d*h - e*g, b*g - a*h, a*e - b*d,
	}
	for k := range inv {
		inv[k] /= det
	}
	return inv, true
}

// IsFinite reports whether every entry is a finite number.
func (m Matrix3) IsFinite() bool {
	for _, v := range m {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// ReprojectionError returns the pixel distance between the transformed
// source point and its intended destination.
func ReprojectionError(m Matrix3, src, dst Point) float64 {
	return m.Apply(src).Distance(dst)
}
