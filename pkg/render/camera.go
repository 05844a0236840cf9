package render

import (
	"math"

	"github.com/taigrr/prism/pkg/math3d"
)

const (
	// NearPlane is the minimum view-space depth a projected point may have.
	NearPlane = 0.1
	// ProjectionLimit bounds the projected offset from the viewport centre.
	// Points beyond it are treated as unprojectable.
	ProjectionLimit = 10000.0
)

// Camera is a pinhole look-at camera. Focal is the focal length in pixels.
// World up is +Y; the camera must not look straight along it.
type Camera struct {
	Eye    math3d.Point3
	Target math3d.Point3
	Focal  float64
	Width  int
	Height int
}

// NewCamera creates a camera at (0, 0, 6) looking at the origin with a focal
// length of twice the viewport width.
func NewCamera(width, height int) *Camera {
	return &Camera{
		Eye:    math3d.P3(0, 0, 6),
		Target: math3d.P3(0, 0, 0),
		Focal:  2 * float64(width),
		Width:  width,
		Height: height,
	}
}

// Basis returns the camera's orthonormal forward, right and up vectors.
func (c *Camera) Basis() (forward, right, up math3d.Vec3) {
	forward = c.Target.Sub(c.Eye).Normalize()
	right = forward.Cross(math3d.Up()).Normalize()
	up = right.Cross(forward)
	return forward, right, up
}

// Aspect returns width / height.
func (c *Camera) Aspect() float64 {
	if c.Height == 0 {
		return 1
	}
	return float64(c.Width) / float64(c.Height)
}

// ViewSpace returns p in camera coordinates: x right, y up, z forward.
func (c *Camera) ViewSpace(p math3d.Point3) math3d.Vec3 {
	forward, right, up := c.Basis()
	d := p.Sub(c.Eye)
	return math3d.V3(d.Dot(right), d.Dot(up), d.Dot(forward))
}

// Project maps a world point to screen coordinates with a top-left origin.
// invDepth is 1/z in view space. ok is false for points at or behind the near
// plane and for points that project absurdly far off screen.
func (c *Camera) Project(p math3d.Point3) (x, y, invDepth float64, ok bool) {
	v := c.ViewSpace(p)
	if v.Z <= NearPlane {
		return 0, 0, 0, false
	}

	px := v.X * c.Focal / v.Z
	py := v.Y * c.Focal / v.Z
	if math.Abs(px) > ProjectionLimit || math.Abs(py) > ProjectionLimit {
		return 0, 0, 0, false
	}

	x = px + float64(c.Width)/2
	y = float64(c.Height)/2 - py
	return x, y, 1 / v.Z, true
}

// Frustum returns the inward-facing left, right, bottom, top and near planes
// of the camera's view volume in world space.
func (c *Camera) Frustum() Frustum {
	forward, right, up := c.Basis()
	eye := c.Eye.Vec()
	halfW := float64(c.Width) / 2
	halfH := float64(c.Height) / 2

	// A point is inside the left/right planes when |x·f| <= z·W/2, and
	// likewise for y with H/2.
	normals := [5]math3d.Vec3{
		FrustumLeft:   forward.Scale(halfW).Add(right.Scale(c.Focal)),
		FrustumRight:  forward.Scale(halfW).Sub(right.Scale(c.Focal)),
		FrustumBottom: forward.Scale(halfH).Add(up.Scale(c.Focal)),
		FrustumTop:    forward.Scale(halfH).Sub(up.Scale(c.Focal)),
		FrustumNear:   forward,
	}

	var f Frustum
	for i, n := range normals {
		f.Planes[i] = Plane{Normal: n, D: -n.Dot(eye)}
		f.Planes[i].Normalize()
	}
	f.Planes[FrustumNear].D -= NearPlane
	return f
}
