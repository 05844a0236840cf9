package render

import (
	"slices"

	"github.com/taigrr/prism/pkg/math3d"
)

// Material holds Blinn-Phong reflectance coefficients. Ka, Kd and Ks are
// per-channel RGB factors in [0, 1]; Ns is the specular exponent.
type Material struct {
	Ka math3d.Vec3 // Ambient
	Kd math3d.Vec3 // Diffuse
	Ks math3d.Vec3 // Specular
	Ns float64     // Shininess
}

func mat(ka, kd, ks [3]float64, ns float64) Material {
	return Material{
		Ka: math3d.V3(ka[0], ka[1], ka[2]),
		Kd: math3d.V3(kd[0], kd[1], kd[2]),
		Ks: math3d.V3(ks[0], ks[1], ks[2]),
		Ns: ns,
	}
}

// Preset materials (classic OpenGL teapot table).
var materials = map[string]Material{
	// Gems
	"emerald":   mat([3]float64{0.0215, 0.1745, 0.0215}, [3]float64{0.07568, 0.61424, 0.07568}, [3]float64{0.633, 0.72781, 0.633}, 76.8),
	"jade":      mat([3]float64{0.135, 0.2225, 0.1575}, [3]float64{0.54, 0.89, 0.63}, [3]float64{0.31622, 0.31622, 0.31622}, 12.8),
	"obsidian":  mat([3]float64{0.05375, 0.05, 0.06625}, [3]float64{0.18275, 0.17, 0.22525}, [3]float64{0.33274, 0.32863, 0.34643}, 38.4),
	"pearl":     mat([3]float64{0.25, 0.20725, 0.20725}, [3]float64{1.0, 0.829, 0.829}, [3]float64{0.29665, 0.29665, 0.29665}, 11.2),
	"ruby":      mat([3]float64{0.1745, 0.01175, 0.01175}, [3]float64{0.61424, 0.04136, 0.04136}, [3]float64{0.72781, 0.62696, 0.62696}, 76.8),
	"turquoise": mat([3]float64{0.1, 0.18725, 0.1745}, [3]float64{0.396, 0.74151, 0.69102}, [3]float64{0.29774, 0.30829, 0.30668}, 12.8),

	// Metals
	"brass":  mat([3]float64{0.32941, 0.22353, 0.02745}, [3]float64{0.78039, 0.56863, 0.11373}, [3]float64{0.99216, 0.94118, 0.80784}, 27.9),
	"bronze": mat([3]float64{0.2125, 0.1275, 0.054}, [3]float64{0.714, 0.4284, 0.18144}, [3]float64{0.39355, 0.27191, 0.16672}, 25.6),
	"chrome": mat([3]float64{0.25, 0.25, 0.25}, [3]float64{0.4, 0.4, 0.4}, [3]float64{0.77459, 0.77459, 0.77459}, 76.8),
	"copper": mat([3]float64{0.19125, 0.0735, 0.0225}, [3]float64{0.7038, 0.27048, 0.0828}, [3]float64{0.25678, 0.13762, 0.08601}, 12.8),
	"gold":   mat([3]float64{0.24725, 0.1995, 0.0745}, [3]float64{0.75164, 0.60648, 0.22648}, [3]float64{0.62828, 0.5558, 0.36606}, 51.2),
	"silver": mat([3]float64{0.19225, 0.19225, 0.19225}, [3]float64{0.50754, 0.50754, 0.50754}, [3]float64{0.50827, 0.50827, 0.50827}, 51.2),

	// Plastics
	"black_plastic":  mat([3]float64{0, 0, 0}, [3]float64{0.01, 0.01, 0.01}, [3]float64{0.5, 0.5, 0.5}, 32),
	"cyan_plastic":   mat([3]float64{0, 0.1, 0.06}, [3]float64{0, 0.5098, 0.5098}, [3]float64{0.502, 0.502, 0.502}, 32),
	"green_plastic":  mat([3]float64{0, 0, 0}, [3]float64{0.1, 0.35, 0.1}, [3]float64{0.45, 0.55, 0.45}, 32),
	"red_plastic":    mat([3]float64{0, 0, 0}, [3]float64{0.5, 0, 0}, [3]float64{0.7, 0.6, 0.6}, 32),
	"white_plastic":  mat([3]float64{0, 0, 0}, [3]float64{0.55, 0.55, 0.55}, [3]float64{0.7, 0.7, 0.7}, 32),
	"yellow_plastic": mat([3]float64{0, 0, 0}, [3]float64{0.5, 0.5, 0}, [3]float64{0.6, 0.6, 0.5}, 32),

	// Rubbers
	"black_rubber":  mat([3]float64{0.02, 0.02, 0.02}, [3]float64{0.01, 0.01, 0.01}, [3]float64{0.4, 0.4, 0.4}, 10),
	"cyan_rubber":   mat([3]float64{0, 0.05, 0.05}, [3]float64{0.4, 0.5, 0.5}, [3]float64{0.04, 0.7, 0.7}, 10),
	"green_rubber":  mat([3]float64{0, 0.05, 0}, [3]float64{0.4, 0.5, 0.4}, [3]float64{0.04, 0.7, 0.04}, 10),
	"red_rubber":    mat([3]float64{0.05, 0, 0}, [3]float64{0.5, 0.4, 0.4}, [3]float64{0.7, 0.04, 0.04}, 10),
	"white_rubber":  mat([3]float64{0.05, 0.05, 0.05}, [3]float64{0.5, 0.5, 0.5}, [3]float64{0.7, 0.7, 0.7}, 10),
	"yellow_rubber": mat([3]float64{0.05, 0.05, 0}, [3]float64{0.5, 0.5, 0.4}, [3]float64{0.7, 0.7, 0.04}, 10),
}

// DefaultMaterialName is the preset used when none is configured.
const DefaultMaterialName = "white_plastic"

// MaterialByName returns the named preset.
func MaterialByName(name string) (Material, bool) {
	m, ok := materials[name]
	return m, ok
}

// MaterialNames returns all preset names in sorted order.
func MaterialNames() []string {
	names := make([]string, 0, len(materials))
	for name := range materials {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// WhitePlastic returns the default material.
func WhitePlastic() Material {
	return materials[DefaultMaterialName]
}
