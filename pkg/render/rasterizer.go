package render

import (
	"errors"
	"fmt"
	"math"

	"github.com/taigrr/prism/pkg/math3d"
)

const (
	// degenerateArea is the smallest |signed area| a projected triangle may
	// have before it is skipped.
	degenerateArea = 1e-6
	// edgeTolerance lets pixel centres sitting exactly on a shared edge pass
	// the inside test despite rounding.
	edgeTolerance = -1e-4
)

// ShadeMode selects where the reflectance model is evaluated.
type ShadeMode int

const (
	// ShadeFlat evaluates once per face at its centroid using the face normal.
	ShadeFlat ShadeMode = iota
	// ShadeGouraud evaluates at each vertex and interpolates the colours.
	ShadeGouraud
	// ShadePhong interpolates position and normal and evaluates per pixel.
	ShadePhong
)

// ErrUnknownShading is returned by ParseShadeMode for unrecognised names.
var ErrUnknownShading = errors.New("unknown shading mode")

var shadeModeNames = [...]string{
	ShadeFlat:    "flat",
	ShadeGouraud: "gouraud",
	ShadePhong:   "phong",
}

func (m ShadeMode) String() string {
	if m < 0 || int(m) >= len(shadeModeNames) {
		return fmt.Sprintf("ShadeMode(%d)", int(m))
	}
	return shadeModeNames[m]
}

// ParseShadeMode parses "flat", "gouraud" or "phong".
func ParseShadeMode(s string) (ShadeMode, error) {
	for i, name := range shadeModeNames {
		if name == s {
			return ShadeMode(i), nil
		}
	}
	return 0, fmt.Errorf("%q: %w", s, ErrUnknownShading)
}

// ShadeOptions configures DrawMesh.
type ShadeOptions struct {
	Mode     ShadeMode
	Material Material
	Light    math3d.Vec3 // Direction toward the light; need not be unit length
}

// ScreenVertex is a projected vertex. Color is used by DrawTriangle;
// Position and Normal (world space) are used by DrawTriangleDeferred.
type ScreenVertex struct {
	X, Y     float64 // Screen coordinates, top-left origin
	InvDepth float64 // 1/z in view space
	Color    Color
	Position math3d.Vec3
	Normal   math3d.Vec3
}

// Stats counts what happened during a frame.
type Stats struct {
	MeshesTested        int // Meshes tested against the frustum
	MeshesCulled        int // Meshes entirely outside the frustum
	FacesBackfacing     int // Faces rejected by back-face culling
	FacesClipped        int // Faces dropped because a vertex failed projection
	TrianglesDrawn      int // Triangles handed to scan conversion
	TrianglesDegenerate int // Triangles skipped for near-zero screen area
	PixelsWritten       int // Pixels that passed the depth test
}

// Rasterizer scan-converts triangles into a framebuffer with an inverse-depth
// buffer. It is not safe for concurrent use.
type Rasterizer struct {
	camera *Camera
	fb     *Framebuffer
	depth  *DepthBuffer
	Stats  Stats

	face []Vertex
	sv   []ScreenVertex
}

// NewRasterizer creates a rasterizer drawing into fb with a matching depth
// buffer.
func NewRasterizer(camera *Camera, fb *Framebuffer) *Rasterizer {
	return &Rasterizer{
		camera: camera,
		fb:     fb,
		depth:  NewDepthBuffer(fb.Width, fb.Height),
	}
}

// Camera returns the rasterizer's camera.
func (r *Rasterizer) Camera() *Camera {
	return r.camera
}

// Depth returns the depth buffer.
func (r *Rasterizer) Depth() *DepthBuffer {
	return r.depth
}

// ClearDepth clears the depth buffer (call before each frame).
func (r *Rasterizer) ClearDepth() {
	r.depth.Reset()
}

// ResetStats resets the frame statistics.
func (r *Rasterizer) ResetStats() {
	r.Stats = Stats{}
}

// IsVisible tests if a world-space AABB may be visible to the camera.
func (r *Rasterizer) IsVisible(worldBounds AABB) bool {
	return r.camera.Frustum().IntersectAABB(worldBounds)
}

// DrawTriangle rasterizes a triangle, interpolating vertex colours.
func (r *Rasterizer) DrawTriangle(sv [3]ScreenVertex) {
	r.scan(sv, func(w0, w1, w2 float64) Color {
		return interpolateColor3(sv[0].Color, sv[1].Color, sv[2].Color, w0, w1, w2)
	})
}

// DrawTriangleDeferred rasterizes a triangle, interpolating world position
// and normal and evaluating the reflectance model at every covered pixel.
// light must be unit length.
func (r *Rasterizer) DrawTriangleDeferred(sv [3]ScreenVertex, m Material, light math3d.Vec3) {
	eye := r.camera.Eye.Vec()
	r.scan(sv, func(w0, w1, w2 float64) Color {
		pos := sv[0].Position.Scale(w0).Add(sv[1].Position.Scale(w1)).Add(sv[2].Position.Scale(w2))
		n := sv[0].Normal.Scale(w0).Add(sv[1].Normal.Scale(w1)).Add(sv[2].Normal.Scale(w2)).Normalize()
		v := eye.Sub(pos).Normalize()
		return IntensityToColor(Shade(n, light, v, m))
	})
}

// scan walks the pixel centres in the triangle's clamped bounding box and
// calls shade for each one that is inside and passes the depth test.
func (r *Rasterizer) scan(sv [3]ScreenVertex, shade func(w0, w1, w2 float64) Color) {
	x0, y0 := sv[0].X, sv[0].Y
	x1, y1 := sv[1].X, sv[1].Y
	x2, y2 := sv[2].X, sv[2].Y

	den := (y1-y2)*(x0-x2) + (x2-x1)*(y0-y2)
	if math.Abs(den) < degenerateArea {
		r.Stats.TrianglesDegenerate++
		return
	}
	r.Stats.TrianglesDrawn++

	minX := int(math.Max(0, math.Floor(min3(x0, x1, x2))))
	maxX := int(math.Min(float64(r.fb.Width-1), math.Ceil(max3(x0, x1, x2))))
	minY := int(math.Max(0, math.Floor(min3(y0, y1, y2))))
	maxY := int(math.Min(float64(r.fb.Height-1), math.Ceil(max3(y0, y1, y2))))

	for y := minY; y <= maxY; y++ {
		fy := float64(y) + 0.5
		for x := minX; x <= maxX; x++ {
			fx := float64(x) + 0.5

			w0 := ((y1-y2)*(fx-x2) + (x2-x1)*(fy-y2)) / den
			w1 := ((y2-y0)*(fx-x2) + (x0-x2)*(fy-y2)) / den
			w2 := 1 - w0 - w1
			if w0 < edgeTolerance || w1 < edgeTolerance || w2 < edgeTolerance {
				continue
			}

			z := w0*sv[0].InvDepth + w1*sv[1].InvDepth + w2*sv[2].InvDepth
			if !r.depth.TestAndSet(x, y, z) {
				continue
			}
			r.fb.SetPixel(x, y, shade(w0, w1, w2))
			r.Stats.PixelsWritten++
		}
	}
}

// DrawMesh transforms, culls, shades and rasterizes every face of mesh.
// Meshes whose transformed bounds lie outside the camera frustum are skipped.
func (r *Rasterizer) DrawMesh(mesh MeshSource, chain math3d.Chain, opts ShadeOptions) {
	r.Stats.MeshesTested++
	min, max := mesh.Bounds()
	if !r.IsVisible(NewAABB(min, max).Transform(chain.Matrix())) {
		r.Stats.MeshesCulled++
		return
	}

	light := opts.Light.Normalize()
	eye := r.camera.Eye.Vec()

	for i := range mesh.FaceCount() {
		r.face = worldFace(mesh, i, chain, r.face)
		face := r.face
		if len(face) < 3 {
			continue
		}

		p0 := face[0].Position
		faceNormal := face[1].Position.Sub(p0).Cross(face[2].Position.Sub(p0)).Normalize()
		if faceNormal.Dot(eye.Sub(p0)) <= 0 {
			r.Stats.FacesBackfacing++
			continue
		}

		var flat Color
		if opts.Mode == ShadeFlat {
			var c math3d.Vec3
			for _, v := range face {
				c = c.Add(v.Position)
			}
			c = c.Scale(1 / float64(len(face)))
			flat = IntensityToColor(Shade(faceNormal, light, eye.Sub(c).Normalize(), opts.Material))
		}

		r.sv = r.sv[:0]
		clipped := false
		for _, v := range face {
			x, y, iz, ok := r.camera.Project(v.Position.Point())
			if !ok {
				clipped = true
				break
			}
			s := ScreenVertex{X: x, Y: y, InvDepth: iz}
			switch opts.Mode {
			case ShadeFlat:
				s.Color = flat
			case ShadeGouraud:
				s.Color = IntensityToColor(Shade(v.Normal, light, eye.Sub(v.Position).Normalize(), opts.Material))
			default:
				s.Position = v.Position
				s.Normal = v.Normal
			}
			r.sv = append(r.sv, s)
		}
		if clipped {
			r.Stats.FacesClipped++
			continue
		}

		for k := 1; k+1 < len(r.sv); k++ {
			tri := [3]ScreenVertex{r.sv[0], r.sv[k], r.sv[k+1]}
			if opts.Mode == ShadePhong {
				r.DrawTriangleDeferred(tri, opts.Material, light)
			} else {
				r.DrawTriangle(tri)
			}
		}
	}
}

// interpolateColor3 blends three colours with barycentric weights.
func interpolateColor3(c0, c1, c2 Color, w0, w1, w2 float64) Color {
	blend := func(a, b, c uint8) uint8 {
		v := float64(a)*w0 + float64(b)*w1 + float64(c)*w2
		return uint8(math3d.Clamp(math.Round(v), 0, 255))
	}
	return RGB(blend(c0.R, c1.R, c2.R), blend(c0.G, c1.G, c2.G), blend(c0.B, c1.B, c2.B))
}

func min3(a, b, c float64) float64 {
	return math.Min(a, math.Min(b, c))
}

func max3(a, b, c float64) float64 {
	return math.Max(a, math.Max(b, c))
}
