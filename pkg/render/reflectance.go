package render

import (
	"math"

	"github.com/taigrr/prism/pkg/math3d"
)

// Shade evaluates the Blinn-Phong model for unit surface normal n, unit
// light direction l and unit view direction v (both pointing away from the
// surface). The result is a per-channel intensity and may exceed 1.
func Shade(n, l, v math3d.Vec3, m Material) math3d.Vec3 {
	diff := math.Max(n.Dot(l), 0)

	h := l.Add(v).Normalize()
	specular := math.Pow(math.Max(n.Dot(h), 0), m.Ns)

	return m.Ka.Add(m.Kd.Scale(diff)).Add(m.Ks.Scale(specular))
}

// IntensityToColor maps an intensity triple to an opaque colour, scaling by
// 255 and clamping each channel.
func IntensityToColor(i math3d.Vec3) Color {
	return RGB(toByte(i.X), toByte(i.Y), toByte(i.Z))
}

func toByte(v float64) uint8 {
	if math.IsNaN(v) {
		return 0
	}
	return uint8(math3d.Clamp(v*255, 0, 255))
}
