package models

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat is returned by Load for unknown file extensions.
var ErrUnsupportedFormat = errors.New("unsupported model format")

// Load picks a loader by file extension: .obj, .gltf or .glb.
func Load(path string) (*Mesh, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".obj":
		return LoadOBJ(path)
	case ".gltf", ".glb":
		return LoadGLTF(path)
	default:
		return nil, fmt.Errorf("%q: %w", ext, ErrUnsupportedFormat)
	}
}
