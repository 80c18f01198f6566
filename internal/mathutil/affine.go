package mathutil

// Affine2 is a 2×3 affine matrix stored row-major:
//
//	x' = m[0]*x + m[1]*y + m[2]
//	y' = m[3]*x + m[4]*y + m[5]
type Affine2 [6]float64

func Affine2Identity() Affine2 {
	return Affine2{1, 0, 0, 0, 1, 0}
}

// Apply maps p through the transform.
func (m Affine2) Apply(p Vec2) Vec2 {
	return Vec2{
		m[0]*p[0] + m[1]*p[1] + m[2],
		m[3]*p[0] + m[4]*p[1] + m[5],
	}
}

// Det returns the determinant of the linear part.
func (m Affine2) Det() float64 {
	return m[0]*m[4] - m[1]*m[3]
}

// Inverse returns the inverse transform. ok is false when the linear part
// is singular.
func (m Affine2) Inverse() (inv Affine2, ok bool) {
	d := m.Det()
	if d > -1e-12 && d < 1e-12 {
		return Affine2Identity(), false
	}
	invD := 1.0 / d
	a := m[4] * invD
	b := -m[1] * invD
	c := -m[3] * invD
	e := m[0] * invD
	return Affine2{
		a, b, -(a*m[2] + b*m[5]),
		c, e, -(c*m[2] + e*m[5]),
	}, true
}

// TriangleDet returns the determinant of the vertex-difference matrix
// [p0-p2, p1-p2]. Its magnitude is twice the triangle area.
func TriangleDet(p0, p1, p2 Vec2) float64 {
	return (p0[0]-p2[0])*(p1[1]-p2[1]) - (p1[0]-p2[0])*(p0[1]-p2[1])
}

// SolveTriangle returns the unique affine transform T with T(src[i]) = dst[i]
// for all three vertices, solved in closed form against the determinant of
// the source vertex-difference matrix. ok is false when |det| < eps.
func SolveTriangle(src, dst [3]Vec2, eps float64) (t Affine2, det float64, ok bool) {
	s0, s1, s2 := src[0], src[1], src[2]
	d0, d1, d2 := dst[0], dst[1], dst[2]

	det = TriangleDet(s0, s1, s2)
	if det > -eps && det < eps {
		return Affine2Identity(), det, false
	}

	// Differences against the third vertex
	a, b := s0[0]-s2[0], s0[1]-s2[1]
	c, d := s1[0]-s2[0], s1[1]-s2[1]

	m11 := ((d0[0]-d2[0])*d - (d1[0]-d2[0])*b) / det
	m12 := ((d1[0]-d2[0])*a - (d0[0]-d2[0])*c) / det
	m21 := ((d0[1]-d2[1])*d - (d1[1]-d2[1])*b) / det
	m22 := ((d1[1]-d2[1])*a - (d0[1]-d2[1])*c) / det

	return Affine2{
		m11, m12, d0[0] - m11*s0[0] - m12*s0[1],
		m21, m22, d0[1] - m21*s0[0] - m22*s0[1],
	}, det, true
}
