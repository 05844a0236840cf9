package math3d

import "math"

// Transform places a model in the world: uniform scale, Euler rotation, then
// translation. Rotation angles are in radians and are applied Y, then X, then Z.
type Transform struct {
	Scale       float64
	Rotation    Vec3
	Translation Vec3
}

// IdentityTransform returns a transform that leaves points unchanged.
func IdentityTransform() Transform {
	return Transform{Scale: 1}
}

// rotate applies the Y, X, Z rotation sequence.
func (t Transform) rotate(v Vec3) Vec3 {
	if t.Rotation.Y != 0 {
		c, s := math.Cos(t.Rotation.Y), math.Sin(t.Rotation.Y)
		v = Vec3{c*v.X + s*v.Z, v.Y, -s*v.X + c*v.Z}
	}
	if t.Rotation.X != 0 {
		c, s := math.Cos(t.Rotation.X), math.Sin(t.Rotation.X)
		v = Vec3{v.X, c*v.Y - s*v.Z, s*v.Y + c*v.Z}
	}
	if t.Rotation.Z != 0 {
		c, s := math.Cos(t.Rotation.Z), math.Sin(t.Rotation.Z)
		v = Vec3{c*v.X - s*v.Y, s*v.X + c*v.Y, v.Z}
	}
	return v
}

// ApplyPoint scales, rotates and translates p.
func (t Transform) ApplyPoint(p Vec3) Vec3 {
	return t.rotate(p.Scale(t.Scale)).Add(t.Translation)
}

// ApplyDir scales and rotates d, then renormalizes. Directions are never
// translated.
func (t Transform) ApplyDir(d Vec3) Vec3 {
	return t.rotate(d.Scale(t.Scale)).Normalize()
}

// Matrix returns the equivalent affine matrix.
func (t Transform) Matrix() Mat4 {
	return Translate(t.Translation).
		Mul(RotateZ(t.Rotation.Z)).
		Mul(RotateX(t.Rotation.X)).
		Mul(RotateY(t.Rotation.Y)).
		Mul(ScaleUniform(t.Scale))
}

// Chain is an ordered list of transforms. The first element is applied first.
type Chain []Transform

// ApplyPoint runs p through every transform in order.
func (c Chain) ApplyPoint(p Vec3) Vec3 {
	for _, t := range c {
		p = t.ApplyPoint(p)
	}
	return p
}

// ApplyDir runs d through every transform in order. The result is unit
// length unless d is zero.
func (c Chain) ApplyDir(d Vec3) Vec3 {
	for _, t := range c {
		d = t.ApplyDir(d)
	}
	return d
}

// Matrix composes the chain into a single matrix.
func (c Chain) Matrix() Mat4 {
	m := Identity()
	for _, t := range c {
		m = t.Matrix().Mul(m)
	}
	return m
}
