package raytrace

import (
	"math"

	"github.com/taigrr/prism/pkg/math3d"
	"github.com/taigrr/prism/pkg/render"
)

const (
	// detEpsilon rejects rays nearly parallel to a triangle's plane.
	detEpsilon = 1e-9
	// minHitDistance keeps a ray from hitting the surface it starts on.
	minHitDistance = 1e-4
)

// Ray is a half-line from Origin along Dir.
type Ray struct {
	Origin math3d.Vec3
	Dir    math3d.Vec3

	invDir math3d.Vec3
}

// NewRay creates a ray and caches its inverse direction. Zero direction
// components give infinite inverses.
func NewRay(origin, dir math3d.Vec3) Ray {
	return Ray{
		Origin: origin,
		Dir:    dir,
		invDir: math3d.V3(1/dir.X, 1/dir.Y, 1/dir.Z),
	}
}

// At returns the point at distance t along the ray.
func (r *Ray) At(t float64) math3d.Vec3 {
	return r.Origin.Add(r.Dir.Scale(t))
}

// Hit is the nearest intersection found along a ray. Index refers to
// BVH.Tris; U and V are the barycentric weights of vertices 1 and 2.
type Hit struct {
	T     float64
	U, V  float64
	Index int
}

// hitAABB reports whether the ray enters box before tMax using the slab
// test. A NaN slab bound comes from an axis-parallel ray starting on a slab
// plane; that axis then does not constrain the interval.
func hitAABB(box render.AABB, r *Ray, tMax float64) bool {
	tmin, tmax := 0.0, tMax
	for a := range 3 {
		o := r.Origin.Axis(a)
		inv := r.invDir.Axis(a)
		t0 := (box.Min.Axis(a) - o) * inv
		t1 := (box.Max.Axis(a) - o) * inv
		if math.IsNaN(t0) || math.IsNaN(t1) {
			continue
		}
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		if t0 > tmin {
			tmin = t0
		}
		if t1 < tmax {
			tmax = t1
		}
		if tmax < tmin {
			return false
		}
	}
	return true
}

// intersectTriangle is the Möller–Trumbore test. It only accepts hits
// nearer than tNear.
func intersectTriangle(r *Ray, tri *render.Triangle, tNear float64) (t, u, v float64, ok bool) {
	p0 := tri.V[0].Position
	e1 := tri.V[1].Position.Sub(p0)
	e2 := tri.V[2].Position.Sub(p0)

	pv := r.Dir.Cross(e2)
	det := e1.Dot(pv)
	if math.Abs(det) < detEpsilon {
		return 0, 0, 0, false
	}
	inv := 1 / det

	tv := r.Origin.Sub(p0)
	u = tv.Dot(pv) * inv
	if u < 0 || u > 1 {
		return 0, 0, 0, false
	}

	qv := tv.Cross(e1)
	v = r.Dir.Dot(qv) * inv
	if v < 0 || u+v > 1 {
		return 0, 0, 0, false
	}

	t = e2.Dot(qv) * inv
	if t <= minHitDistance || t >= tNear {
		return 0, 0, 0, false
	}
	return t, u, v, true
}

// Intersect returns the nearest triangle hit along r.
func (b *BVH) Intersect(r Ray) (Hit, bool) {
	if len(b.Nodes) == 0 {
		return Hit{}, false
	}
	h := Hit{T: math.Inf(1), Index: -1}
	b.hitNode(0, &r, &h)
	return h, h.Index >= 0
}

func (b *BVH) hitNode(i int, r *Ray, h *Hit) {
	n := &b.Nodes[i]
	if !hitAABB(n.Bounds, r, h.T) {
		return
	}

	if n.IsLeaf() {
		for k := n.Offset; k < n.Offset+n.Count; k++ {
			if t, u, v, ok := intersectTriangle(r, &b.Tris[k], h.T); ok {
				*h = Hit{T: t, U: u, V: v, Index: k}
			}
		}
		return
	}

	b.hitNode(n.Left, r, h)
	b.hitNode(n.Right, r, h)
}

// Normal returns the unit normal at h, interpolated from the vertex normals.
func (b *BVH) Normal(h Hit) math3d.Vec3 {
	tri := &b.Tris[h.Index]
	w0 := 1 - h.U - h.V
	return tri.V[0].Normal.Scale(w0).
		Add(tri.V[1].Normal.Scale(h.U)).
		Add(tri.V[2].Normal.Scale(h.V)).
		Normalize()
}
