package models

import (
	"encoding/binary"
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/qmuntal/gltf"
)

func TestLoadGLTFInvalidPath(t *testing.T) {
	_, err := LoadGLTF("/nonexistent/path.glb")
	if err == nil {
		t.Error("Expected error for nonexistent file")
	}
}

// triangleDoc builds a document holding a single indexed triangle. Normal
// data is always stored but only referenced by the primitive when
// withNormals is set.
func triangleDoc(withNormals bool) *gltf.Document {
	positions := [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}
	var data []byte
	for _, p := range positions {
		for _, c := range p {
			data = binary.LittleEndian.AppendUint32(data, math.Float32bits(c))
		}
	}
	normalOffset := len(data)
	for range positions {
		for _, c := range [3]float32{0, 0, 1} {
			data = binary.LittleEndian.AppendUint32(data, math.Float32bits(c))
		}
	}
	indexOffset := len(data)
	for _, i := range []uint16{0, 1, 2} {
		data = binary.LittleEndian.AppendUint16(data, i)
	}
	// Pad to a 4-byte boundary.
	for len(data)%4 != 0 {
		data = append(data, 0)
	}

	posView, normView, idxView := 0, 1, 2
	posAcc, normAcc, idxAcc := 0, 1, 2
	doc := &gltf.Document{
		Buffers: []*gltf.Buffer{{ByteLength: len(data), Data: data}},
		BufferViews: []*gltf.BufferView{
			{Buffer: 0, ByteOffset: 0, ByteLength: 36},
			{Buffer: 0, ByteOffset: normalOffset, ByteLength: indexOffset - normalOffset},
			{Buffer: 0, ByteOffset: indexOffset, ByteLength: 6},
		},
		Accessors: []*gltf.Accessor{
			{BufferView: &posView, ComponentType: gltf.ComponentFloat, Count: 3, Type: gltf.AccessorVec3},
			{BufferView: &normView, ComponentType: gltf.ComponentFloat, Count: 3, Type: gltf.AccessorVec3},
			{BufferView: &idxView, ComponentType: gltf.ComponentUshort, Count: 3, Type: gltf.AccessorScalar},
		},
	}
	attrs := map[string]int{gltf.POSITION: posAcc}
	if withNormals {
		attrs[gltf.NORMAL] = normAcc
	}
	doc.Meshes = []*gltf.Mesh{{
		Name: "tri",
		Primitives: []*gltf.Primitive{{
			Attributes: attrs,
			Indices:    &idxAcc,
			Mode:       gltf.PrimitiveTriangles,
		}},
	}}
	return doc
}

// writeTriangleGLB saves triangleDoc as a binary glTF file.
func writeTriangleGLB(t *testing.T, withNormals bool) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "tri.glb")
	if err := gltf.SaveBinary(triangleDoc(withNormals), path); err != nil {
		t.Fatalf("SaveBinary: %v", err)
	}
	return path
}

func TestLoadGLTFTriangle(t *testing.T) {
	tests := []struct {
		name        string
		withNormals bool
	}{
		{"positions only", false},
		{"with normals", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mesh, err := LoadGLTF(writeTriangleGLB(t, tt.withNormals))
			if err != nil {
				t.Fatalf("LoadGLTF: %v", err)
			}
			if mesh.VertexCount() != 3 || mesh.FaceCount() != 1 {
				t.Fatalf("got %d vertices, %d faces; want 3, 1", mesh.VertexCount(), mesh.FaceCount())
			}
			// Winding is kept as authored.
			f := mesh.Face(0)
			if f[0] != 0 || f[1] != 1 || f[2] != 2 {
				t.Errorf("face = %v, want [0 1 2]", f)
			}
			if mesh.HasNormals() != tt.withNormals {
				t.Errorf("HasNormals() = %v, want %v", mesh.HasNormals(), tt.withNormals)
			}
			_, max := mesh.Bounds()
			if max.X != 1 || max.Y != 1 {
				t.Errorf("bounds max = %v, want (1, 1, 0)", max)
			}
		})
	}
}

func TestAppendGLTFMeshMalformed(t *testing.T) {
	tests := []struct {
		name    string
		corrupt func(doc *gltf.Document)
		want    error
	}{
		{"position accessor missing", func(doc *gltf.Document) {
			doc.Meshes[0].Primitives[0].Attributes[gltf.POSITION] = 7
		}, errBadReference},
		{"index accessor missing", func(doc *gltf.Document) {
			idx := -1
			doc.Meshes[0].Primitives[0].Indices = &idx
		}, errBadReference},
		{"buffer view missing", func(doc *gltf.Document) {
			view := 9
			doc.Accessors[0].BufferView = &view
		}, errBadReference},
		{"buffer missing", func(doc *gltf.Document) {
			doc.BufferViews[0].Buffer = 3
		}, errBadReference},
		{"buffer without data", func(doc *gltf.Document) {
			doc.Buffers[0].Data = nil
		}, errNoBufferData},
		{"negative count", func(doc *gltf.Document) {
			doc.Accessors[0].Count = -1
		}, errBadReference},
		{"offset past view", func(doc *gltf.Document) {
			doc.Accessors[0].ByteOffset = 100
		}, errBadReference},
		{"sparse", func(doc *gltf.Document) {
			doc.Accessors[0].Sparse = &gltf.Sparse{Count: 1}
		}, errSparse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := triangleDoc(true)
			tt.corrupt(doc)
			err := appendGLTFMesh(doc, doc.Meshes[0], NewMesh("tri"))
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestAppendGLTFMeshShortBuffer(t *testing.T) {
	doc := triangleDoc(false)
	doc.Accessors[0].Count = 50
	if err := appendGLTFMesh(doc, doc.Meshes[0], NewMesh("tri")); err == nil {
		t.Error("expected error for accessor running past its buffer view")
	}
}

func TestAppendGLTFMeshIndexOutOfRange(t *testing.T) {
	doc := triangleDoc(false)
	doc.Buffers[0].Data[doc.BufferViews[2].ByteOffset] = 9
	if err := appendGLTFMesh(doc, doc.Meshes[0], NewMesh("tri")); err == nil {
		t.Error("expected error for index past the position count")
	}
}
