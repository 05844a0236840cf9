package models

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/taigrr/prism/pkg/math3d"
)

// LoadOBJ loads a Wavefront .obj file.
func LoadOBJ(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open obj: %w", err)
	}
	defer f.Close()

	mesh, err := ParseOBJ(f, filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return mesh, nil
}

type objVertexKey struct {
	v, vn int
}

type objParser struct {
	positions []math3d.Vec3
	normals   []math3d.Vec3
	remap     map[objVertexKey]int
	mesh      *Mesh
}

// ParseOBJ reads Wavefront geometry from r. It understands v, vn and f
// records; f accepts any number of vertices in the v, v/vt, v//vn and
// v/vt/vn forms, with negative indices counting back from the last
// definition. Texture coordinates are parsed past and discarded. Other
// records are ignored.
func ParseOBJ(r io.Reader, name string) (*Mesh, error) {
	p := &objParser{
		remap: make(map[objVertexKey]int),
		mesh:  NewMesh(name),
	}

	lineNum := 0
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lineNum++
		lineTokens := strings.Fields(scanner.Text())
		if len(lineTokens) == 0 || strings.HasPrefix(lineTokens[0], "#") {
			continue
		}

		switch lineTokens[0] {
		case "v":
			v, err := parseVec3(lineTokens)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNum, err)
			}
			p.positions = append(p.positions, v)
		case "vn":
			v, err := parseVec3(lineTokens)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNum, err)
			}
			p.normals = append(p.normals, v)
		case "f":
			face, err := p.parseFace(lineTokens)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNum, err)
			}
			p.mesh.Faces = append(p.mesh.Faces, face)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read obj: %w", err)
	}

	p.mesh.CalculateBounds()
	return p.mesh, nil
}

func (p *objParser) parseFace(lineTokens []string) (Face, error) {
	if len(lineTokens) < 4 {
		return Face{}, fmt.Errorf("unsupported syntax for 'f'; expected at least 3 arguments; got %d", len(lineTokens)-1)
	}

	face := Face{V: make([]int, 0, len(lineTokens)-1)}
	for arg, tok := range lineTokens[1:] {
		vTokens := strings.Split(tok, "/")
		if vTokens[0] == "" {
			return Face{}, fmt.Errorf("face argument %d does not include a vertex index", arg)
		}

		key := objVertexKey{vn: -1}
		var err error
		key.v, err = selectFaceCoordIndex(vTokens[0], len(p.positions))
		if err != nil {
			return Face{}, fmt.Errorf("could not parse vertex coord for face argument %d: %w", arg, err)
		}
		if len(vTokens) >= 3 && vTokens[2] != "" {
			key.vn, err = selectFaceCoordIndex(vTokens[2], len(p.normals))
			if err != nil {
				return Face{}, fmt.Errorf("could not parse normal coord for face argument %d: %w", arg, err)
			}
		}

		face.V = append(face.V, p.vertexIndex(key))
	}
	return face, nil
}

// vertexIndex returns the mesh vertex for a position/normal pair, creating it
// on first use.
func (p *objParser) vertexIndex(key objVertexKey) int {
	if idx, ok := p.remap[key]; ok {
		return idx
	}
	v := MeshVertex{Position: p.positions[key.v]}
	if key.vn >= 0 {
		v.Normal = p.normals[key.vn]
		v.HasNormal = true
	}
	idx := len(p.mesh.Vertices)
	p.mesh.Vertices = append(p.mesh.Vertices, v)
	p.remap[key] = idx
	return idx
}

// selectFaceCoordIndex converts a 1-based (or negative, relative) OBJ index
// into a 0-based offset into a list of the given length.
func selectFaceCoordIndex(tok string, listLen int) (int, error) {
	index, err := strconv.Atoi(tok)
	if err != nil {
		return -1, err
	}

	var offset int
	switch {
	case index < 0:
		offset = listLen + index
	case index > 0:
		offset = index - 1
	default:
		return -1, fmt.Errorf("index 0 is not valid")
	}
	if offset < 0 || offset >= listLen {
		return -1, fmt.Errorf("index %d out of bounds for %d entries", index, listLen)
	}
	return offset, nil
}

func parseVec3(lineTokens []string) (math3d.Vec3, error) {
	if len(lineTokens) < 4 {
		return math3d.Vec3{}, fmt.Errorf("unsupported syntax for '%s'; expected 3 arguments; got %d", lineTokens[0], len(lineTokens)-1)
	}
	var c [3]float64
	for i := range c {
		f, err := strconv.ParseFloat(lineTokens[i+1], 64)
		if err != nil {
			return math3d.Vec3{}, fmt.Errorf("could not parse '%s' argument %d: %w", lineTokens[0], i, err)
		}
		c[i] = f
	}
	return math3d.V3(c[0], c[1], c[2]), nil
}
