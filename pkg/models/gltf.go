package models

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/taigrr/prism/pkg/math3d"
)

var (
	errNoBufferData = errors.New("buffer has no data")
	errBadReference = errors.New("reference out of range")
	errSparse       = errors.New("sparse accessors are not supported")
)

// LoadGLTF loads a .gltf or .glb file. Every triangle primitive of every mesh
// in the document is merged into one Mesh. Winding is kept as authored
// (counter-clockwise front faces).
func LoadGLTF(path string) (*Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}

	mesh := NewMesh(filepath.Base(path))
	for _, m := range doc.Meshes {
		if err := appendGLTFMesh(doc, m, mesh); err != nil {
			return nil, fmt.Errorf("process mesh %q: %w", m.Name, err)
		}
	}

	mesh.CalculateBounds()
	return mesh, nil
}

func appendGLTFMesh(doc *gltf.Document, m *gltf.Mesh, mesh *Mesh) error {
	for _, prim := range m.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles && prim.Mode != 0 {
			continue
		}

		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}
		positions, err := readVec3Accessor(doc, posIdx)
		if err != nil {
			return fmt.Errorf("read positions: %w", err)
		}

		var normals []math3d.Vec3
		if normIdx, ok := prim.Attributes[gltf.NORMAL]; ok {
			normals, err = readVec3Accessor(doc, normIdx)
			if err != nil {
				return fmt.Errorf("read normals: %w", err)
			}
		}

		base := len(mesh.Vertices)
		for i, p := range positions {
			v := MeshVertex{Position: p}
			if i < len(normals) {
				v.Normal = normals[i]
				v.HasNormal = true
			}
			mesh.Vertices = append(mesh.Vertices, v)
		}

		var indices []int
		if prim.Indices != nil {
			indices, err = readIndices(doc, *prim.Indices)
			if err != nil {
				return fmt.Errorf("read indices: %w", err)
			}
		} else {
			indices = make([]int, len(positions))
			for i := range indices {
				indices[i] = i
			}
		}

		for i := 0; i+2 < len(indices); i += 3 {
			a, b, c := indices[i], indices[i+1], indices[i+2]
			if a >= len(positions) || b >= len(positions) || c >= len(positions) {
				return fmt.Errorf("index out of range in triangle %d", i/3)
			}
			mesh.Faces = append(mesh.Faces, Face{V: []int{base + a, base + b, base + c}})
		}
	}
	return nil
}

// readVec3Accessor reads float VEC3 data from a glTF accessor.
func readVec3Accessor(doc *gltf.Document, accessorIdx int) ([]math3d.Vec3, error) {
	accessor, err := checkedAccessor(doc, accessorIdx)
	if err != nil {
		return nil, err
	}
	data, err := modeler.ReadPosition(doc, accessor, nil)
	if err != nil {
		return nil, err
	}

	result := make([]math3d.Vec3, len(data))
	for i, v := range data {
		result[i] = math3d.V3(float64(v[0]), float64(v[1]), float64(v[2]))
	}
	return result, nil
}

// readIndices reads unsigned SCALAR index data from a glTF accessor.
func readIndices(doc *gltf.Document, accessorIdx int) ([]int, error) {
	accessor, err := checkedAccessor(doc, accessorIdx)
	if err != nil {
		return nil, err
	}
	data, err := modeler.ReadIndices(doc, accessor, nil)
	if err != nil {
		return nil, err
	}

	result := make([]int, len(data))
	for i, idx := range data {
		result[i] = int(idx)
	}
	return result, nil
}

// checkedAccessor resolves an accessor index and rejects references the
// modeler readers would slice past.
func checkedAccessor(doc *gltf.Document, accessorIdx int) (*gltf.Accessor, error) {
	accessor, err := lookup(doc.Accessors, accessorIdx, "accessor")
	if err != nil {
		return nil, err
	}
	if accessor.Count < 0 {
		return nil, fmt.Errorf("accessor count %d: %w", accessor.Count, errBadReference)
	}
	if accessor.Sparse != nil {
		return nil, errSparse
	}
	if accessor.BufferView == nil {
		return accessor, nil
	}

	view, err := lookup(doc.BufferViews, *accessor.BufferView, "buffer view")
	if err != nil {
		return nil, err
	}
	buffer, err := lookup(doc.Buffers, view.Buffer, "buffer")
	if err != nil {
		return nil, err
	}
	if buffer.Data == nil {
		return nil, errNoBufferData
	}
	if view.ByteOffset < 0 || view.ByteLength < 0 {
		return nil, fmt.Errorf("buffer view range [%d+%d]: %w", view.ByteOffset, view.ByteLength, errBadReference)
	}
	if accessor.ByteOffset < 0 || accessor.ByteOffset > view.ByteLength {
		return nil, fmt.Errorf("accessor offset %d in view of %d bytes: %w", accessor.ByteOffset, view.ByteLength, errBadReference)
	}
	return accessor, nil
}

// lookup returns items[i], or an errBadReference error naming kind when i is
// out of range or the entry is nil.
func lookup[T any](items []*T, i int, kind string) (*T, error) {
	if i < 0 || i >= len(items) || items[i] == nil {
		return nil, fmt.Errorf("%s %d of %d: %w", kind, i, len(items), errBadReference)
	}
	return items[i], nil
}
