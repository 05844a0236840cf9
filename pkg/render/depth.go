package render

import "math"

// DepthBuffer stores one inverse depth (1/z) per pixel. Larger values are
// nearer the camera; -Inf means nothing has been drawn.
type DepthBuffer struct {
	Width  int
	Height int
	Values []float64
}

// NewDepthBuffer allocates a cleared depth buffer.
func NewDepthBuffer(width, height int) *DepthBuffer {
	d := &DepthBuffer{
		Width:  width,
		Height: height,
		Values: make([]float64, width*height),
	}
	d.Reset()
	return d
}

// Reset sets every entry to -Inf (call before each frame). The buffer is
// filled by doubling copies.
func (d *DepthBuffer) Reset() {
	n := len(d.Values)
	if n == 0 {
		return
	}
	d.Values[0] = math.Inf(-1)
	for i := 1; i < n; i *= 2 {
		copy(d.Values[i:], d.Values[:i])
	}
}

// At returns the stored inverse depth at (x, y), or -Inf out of bounds.
func (d *DepthBuffer) At(x, y int) float64 {
	if x < 0 || x >= d.Width || y < 0 || y >= d.Height {
		return math.Inf(-1)
	}
	return d.Values[y*d.Width+x]
}

// TestAndSet stores z at (x, y) if it is at least as near as the current
// value and reports whether it did.
func (d *DepthBuffer) TestAndSet(x, y int, z float64) bool {
	if x < 0 || x >= d.Width || y < 0 || y >= d.Height {
		return false
	}
	i := y*d.Width + x
	if z < d.Values[i] {
		return false
	}
	d.Values[i] = z
	return true
}
