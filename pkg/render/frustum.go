package render

import (
	"math"

	"github.com/taigrr/prism/pkg/math3d"
)

// Plane represents a plane in 3D space using the equation: Ax + By + Cz + D = 0
// where (A, B, C) is the normal and D is the distance from origin.
type Plane struct {
	Normal math3d.Vec3
	D      float64
}

// Normalize normalizes the plane equation so the normal has unit length.
func (p *Plane) Normalize() {
	l := p.Normal.Len()
	if l == 0 {
		return
	}
	p.Normal = p.Normal.Scale(1.0 / l)
	p.D /= l
}

// DistanceToPoint returns the signed distance from the plane to a point.
// Positive = in front (same side as normal), negative = behind.
func (p Plane) DistanceToPoint(point math3d.Vec3) float64 {
	return p.Normal.Dot(point) + p.D
}

// Frustum holds the planes of a camera view volume with no far plane.
// Each plane's normal points inward.
type Frustum struct {
	Planes [5]Plane
}

// FrustumPlane indices for clarity.
const (
	FrustumLeft = iota
	FrustumRight
	FrustumBottom
	FrustumTop
	FrustumNear
)

// AABB represents an axis-aligned bounding box.
type AABB struct {
	Min math3d.Vec3
	Max math3d.Vec3
}

// NewAABB creates an AABB from min and max points.
func NewAABB(min, max math3d.Vec3) AABB {
	return AABB{Min: min, Max: max}
}

// EmptyAABB returns a box that contains nothing; growing it by any point
// yields a box around that point.
func EmptyAABB() AABB {
	inf := math.Inf(1)
	return AABB{
		Min: math3d.V3(inf, inf, inf),
		Max: math3d.V3(-inf, -inf, -inf),
	}
}

// IsEmpty reports whether the box contains no points.
func (b AABB) IsEmpty() bool {
	return b.Min.X > b.Max.X || b.Min.Y > b.Max.Y || b.Min.Z > b.Max.Z
}

// Grow returns the smallest box containing b and p.
func (b AABB) Grow(p math3d.Vec3) AABB {
	return AABB{Min: b.Min.Min(p), Max: b.Max.Max(p)}
}

// Union returns the smallest box containing both boxes.
func (b AABB) Union(o AABB) AABB {
	return AABB{Min: b.Min.Min(o.Min), Max: b.Max.Max(o.Max)}
}

// Center returns the center of the AABB.
func (b AABB) Center() math3d.Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Size returns the dimensions of the AABB.
func (b AABB) Size() math3d.Vec3 {
	return b.Max.Sub(b.Min)
}

// LongestAxis returns 0, 1 or 2 for the axis of largest extent. Ties go to
// the lower axis.
func (b AABB) LongestAxis() int {
	s := b.Size()
	axis := 0
	if s.Y > s.Axis(axis) {
		axis = 1
	}
	if s.Z > s.Axis(axis) {
		axis = 2
	}
	return axis
}

// Transform returns the smallest AABB containing b after the affine
// transform m. Each output extent is the sum of the input extents projected
// through the absolute values of m's basis columns.
func (b AABB) Transform(m math3d.Mat4) AABB {
	if b.IsEmpty() {
		return b
	}
	center := m.MulPoint(b.Center())
	half := b.Size().Scale(0.5)

	var extent math3d.Vec3
	for i, h := range [3]float64{half.X, half.Y, half.Z} {
		col := m.Column(i)
		extent = extent.Add(math3d.V3(math.Abs(col.X), math.Abs(col.Y), math.Abs(col.Z)).Scale(h))
	}
	return AABB{Min: center.Sub(extent), Max: center.Add(extent)}
}

// ContainsPoint returns true if the point is inside the AABB.
func (b AABB) ContainsPoint(p math3d.Vec3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// IntersectAABB tests if the AABB intersects or is inside the frustum.
// Returns true if any part of the AABB may be visible.
// Uses the "positive vertex" optimization for faster rejection.
func (f Frustum) IntersectAABB(box AABB) bool {
	for i := range f.Planes {
		plane := f.Planes[i]

		// The corner furthest along the plane normal; if it is outside, the
		// whole box is.
		pVertex := math3d.V3(
			selectComponent(plane.Normal.X >= 0, box.Max.X, box.Min.X),
			selectComponent(plane.Normal.Y >= 0, box.Max.Y, box.Min.Y),
			selectComponent(plane.Normal.Z >= 0, box.Max.Z, box.Min.Z),
		)

		if plane.DistanceToPoint(pVertex) < 0 {
			return false
		}
	}
	return true
}

// ContainsPoint tests if a point is inside the frustum.
func (f Frustum) ContainsPoint(p math3d.Vec3) bool {
	for i := range f.Planes {
		if f.Planes[i].DistanceToPoint(p) < 0 {
			return false
		}
	}
	return true
}

func selectComponent(cond bool, a, b float64) float64 {
	if cond {
		return a
	}
	return b
}
