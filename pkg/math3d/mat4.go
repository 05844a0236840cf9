package math3d

import "math"

// Mat4 is an affine 4x4 matrix stored in column-major order. The bottom row
// is always (0, 0, 0, 1), so the matrix is fully described by three basis
// columns and a translation column:
//
//	| Xx Yx Zx Tx |
//	| Xy Yy Zy Ty |
//	| Xz Yz Zz Tz |
//	| 0  0  0  1  |
type Mat4 [16]float64

// FromColumns builds an affine matrix from basis vectors x, y, z and a
// translation t.
func FromColumns(x, y, z, t Vec3) Mat4 {
	return Mat4{
		x.X, x.Y, x.Z, 0,
		y.X, y.Y, y.Z, 0,
		z.X, z.Y, z.Z, 0,
		t.X, t.Y, t.Z, 1,
	}
}

// Column returns column i (0..3) without its bottom-row element.
func (m Mat4) Column(i int) Vec3 {
	return Vec3{m[i*4], m[i*4+1], m[i*4+2]}
}

// Identity returns the identity matrix.
func Identity() Mat4 {
	return FromColumns(V3(1, 0, 0), V3(0, 1, 0), V3(0, 0, 1), Vec3{})
}

// Translate creates a translation matrix.
func Translate(v Vec3) Mat4 {
	return FromColumns(V3(1, 0, 0), V3(0, 1, 0), V3(0, 0, 1), v)
}

// ScaleUniform creates a uniform scaling matrix.
func ScaleUniform(s float64) Mat4 {
	return FromColumns(V3(s, 0, 0), V3(0, s, 0), V3(0, 0, s), Vec3{})
}

// RotateX rotates by angle radians about X, taking +Y toward +Z.
func RotateX(angle float64) Mat4 {
	c, s := math.Cos(angle), math.Sin(angle)
	return FromColumns(V3(1, 0, 0), V3(0, c, s), V3(0, -s, c), Vec3{})
}

// RotateY rotates by angle radians about Y, taking +Z toward +X.
func RotateY(angle float64) Mat4 {
	c, s := math.Cos(angle), math.Sin(angle)
	return FromColumns(V3(c, 0, -s), V3(0, 1, 0), V3(s, 0, c), Vec3{})
}

// RotateZ rotates by angle radians about Z, taking +X toward +Y.
func RotateZ(angle float64) Mat4 {
	c, s := math.Cos(angle), math.Sin(angle)
	return FromColumns(V3(c, s, 0), V3(-s, c, 0), V3(0, 0, 1), Vec3{})
}

// Mul returns a*b, the transform that applies b first and then a.
func (a Mat4) Mul(b Mat4) Mat4 {
	return FromColumns(
		a.MulDir(b.Column(0)),
		a.MulDir(b.Column(1)),
		a.MulDir(b.Column(2)),
		a.MulPoint(b.Column(3)),
	)
}

// MulPoint transforms p as a point.
func (m Mat4) MulPoint(p Vec3) Vec3 {
	return m.MulDir(p).Add(m.Column(3))
}

// MulDir transforms d as a direction, ignoring translation.
func (m Mat4) MulDir(d Vec3) Vec3 {
	return m.Column(0).Scale(d.X).
		Add(m.Column(1).Scale(d.Y)).
		Add(m.Column(2).Scale(d.Z))
}
