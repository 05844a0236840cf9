// Package models provides 3D model loading and representation for prism.
package models

import (
	"github.com/taigrr/prism/pkg/math3d"
)

// Mesh represents a 3D mesh of polygon faces sharing a vertex list.
type Mesh struct {
	Name     string
	Vertices []MeshVertex
	Faces    []Face

	// Bounding box (calculated on load)
	BoundsMin math3d.Vec3
	BoundsMax math3d.Vec3
}

// MeshVertex holds all vertex attributes.
type MeshVertex struct {
	Position  math3d.Vec3
	Normal    math3d.Vec3
	HasNormal bool
}

// Face is a polygon given as indices into Mesh.Vertices, wound
// counter-clockwise when seen from the front. Faces have at least three
// vertices and are assumed convex.
type Face struct {
	V []int
}

// NewMesh creates an empty mesh.
func NewMesh(name string) *Mesh {
	return &Mesh{
		Name:     name,
		Vertices: make([]MeshVertex, 0),
		Faces:    make([]Face, 0),
	}
}

// CalculateBounds computes the axis-aligned bounding box.
func (m *Mesh) CalculateBounds() {
	if len(m.Vertices) == 0 {
		return
	}

	m.BoundsMin = m.Vertices[0].Position
	m.BoundsMax = m.Vertices[0].Position

	for _, v := range m.Vertices[1:] {
		m.BoundsMin = m.BoundsMin.Min(v.Position)
		m.BoundsMax = m.BoundsMax.Max(v.Position)
	}
}

// Center returns the center of the bounding box.
func (m *Mesh) Center() math3d.Vec3 {
	return m.BoundsMin.Add(m.BoundsMax).Scale(0.5)
}

// Size returns the dimensions of the bounding box.
func (m *Mesh) Size() math3d.Vec3 {
	return m.BoundsMax.Sub(m.BoundsMin)
}

// TriangleCount returns the number of triangles after fan triangulation.
func (m *Mesh) TriangleCount() int {
	n := 0
	for _, f := range m.Faces {
		if len(f.V) >= 3 {
			n += len(f.V) - 2
		}
	}
	return n
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// faceNormal returns the unnormalized normal of the face's first three
// vertices.
func (m *Mesh) faceNormal(f Face) math3d.Vec3 {
	v0 := m.Vertices[f.V[0]].Position
	v1 := m.Vertices[f.V[1]].Position
	v2 := m.Vertices[f.V[2]].Position
	return v1.Sub(v0).Cross(v2.Sub(v0))
}

// CalculateNormals assigns each face's normal to its vertices. Vertices
// shared between faces keep the normal of the last face that touches them,
// so meshes meant for flat shading should not share vertices.
func (m *Mesh) CalculateNormals() {
	for _, f := range m.Faces {
		if len(f.V) < 3 {
			continue
		}
		normal := m.faceNormal(f).Normalize()
		for _, vi := range f.V {
			m.Vertices[vi].Normal = normal
			m.Vertices[vi].HasNormal = true
		}
	}
}

// CalculateSmoothNormals computes area-weighted averaged normals.
func (m *Mesh) CalculateSmoothNormals() {
	for i := range m.Vertices {
		m.Vertices[i].Normal = math3d.Zero3()
	}

	// Accumulate face normals per vertex
	for _, f := range m.Faces {
		if len(f.V) < 3 {
			continue
		}
		normal := m.faceNormal(f) // Don't normalize yet
		for _, vi := range f.V {
			m.Vertices[vi].Normal = m.Vertices[vi].Normal.Add(normal)
		}
	}

	for i := range m.Vertices {
		m.Vertices[i].Normal = m.Vertices[i].Normal.Normalize()
		m.Vertices[i].HasNormal = true
	}
}

// HasNormals reports whether any vertex carries a normal.
func (m *Mesh) HasNormals() bool {
	for _, v := range m.Vertices {
		if v.HasNormal {
			return true
		}
	}
	return false
}

// Clone creates a deep copy of the mesh.
func (m *Mesh) Clone() *Mesh {
	clone := &Mesh{
		Name:      m.Name,
		Vertices:  make([]MeshVertex, len(m.Vertices)),
		Faces:     make([]Face, len(m.Faces)),
		BoundsMin: m.BoundsMin,
		BoundsMax: m.BoundsMax,
	}
	copy(clone.Vertices, m.Vertices)
	for i, f := range m.Faces {
		clone.Faces[i] = Face{V: append([]int(nil), f.V...)}
	}
	return clone
}

// FaceCount returns the number of polygon faces.
// Implements render.MeshSource.
func (m *Mesh) FaceCount() int {
	return len(m.Faces)
}

// Face returns the vertex indices for face i.
// Implements render.MeshSource.
func (m *Mesh) Face(i int) []int {
	return m.Faces[i].V
}

// Vertex returns the position and normal for vertex i. hasNormal is false
// when the source file carried no normal for it.
// Implements render.MeshSource.
func (m *Mesh) Vertex(i int) (pos, normal math3d.Vec3, hasNormal bool) {
	v := m.Vertices[i]
	return v.Position, v.Normal, v.HasNormal
}

// Bounds returns the axis-aligned bounding box.
// Implements render.MeshSource.
func (m *Mesh) Bounds() (min, max math3d.Vec3) {
	return m.BoundsMin, m.BoundsMax
}
