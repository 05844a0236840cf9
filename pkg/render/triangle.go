package render

import (
	"github.com/taigrr/prism/pkg/math3d"
)

// DefaultNormal is substituted for vertices that carry no normal.
var DefaultNormal = math3d.V3(0, 1, 0)

// Vertex is a world-space vertex with a unit normal.
type Vertex struct {
	Position math3d.Vec3
	Normal   math3d.Vec3
}

// Triangle is a world-space triangle, wound counter-clockwise when seen from
// its front.
type Triangle struct {
	V [3]Vertex
}

// Centroid returns the mean of the three positions.
func (t Triangle) Centroid() math3d.Vec3 {
	return t.V[0].Position.Add(t.V[1].Position).Add(t.V[2].Position).Scale(1.0 / 3)
}

// Bounds returns the triangle's axis-aligned bounding box.
func (t Triangle) Bounds() AABB {
	return EmptyAABB().Grow(t.V[0].Position).Grow(t.V[1].Position).Grow(t.V[2].Position)
}

// MeshSource is the read-only mesh view the renderers consume.
// This interface allows drawing meshes without importing the models package.
type MeshSource interface {
	FaceCount() int
	Face(i int) []int
	Vertex(i int) (pos, normal math3d.Vec3, hasNormal bool)
	Bounds() (min, max math3d.Vec3)
}

// worldFace transforms face i of mesh into world space, appending to buf.
// Missing normals become DefaultNormal.
func worldFace(mesh MeshSource, i int, chain math3d.Chain, buf []Vertex) []Vertex {
	buf = buf[:0]
	for _, vi := range mesh.Face(i) {
		pos, normal, ok := mesh.Vertex(vi)
		if !ok {
			normal = DefaultNormal
		}
		buf = append(buf, Vertex{
			Position: chain.ApplyPoint(pos),
			Normal:   chain.ApplyDir(normal).Normalize(),
		})
	}
	return buf
}

// WorldTriangles fan-triangulates every face of mesh into a new slice of
// world-space triangles. Faces with fewer than three vertices are skipped.
func WorldTriangles(mesh MeshSource, chain math3d.Chain) []Triangle {
	var tris []Triangle
	var face []Vertex
	for i := range mesh.FaceCount() {
		face = worldFace(mesh, i, chain, face)
		for k := 1; k+1 < len(face); k++ {
			tris = append(tris, Triangle{V: [3]Vertex{face[0], face[k], face[k+1]}})
		}
	}
	return tris
}
