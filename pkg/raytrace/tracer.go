package raytrace

import (
	"errors"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/taigrr/prism/pkg/math3d"
	"github.com/taigrr/prism/pkg/render"
)

// ErrViewportMismatch is returned when the framebuffer and camera sizes
// differ.
var ErrViewportMismatch = errors.New("framebuffer does not match camera viewport")

// Tracer casts one primary ray per pixel and shades the nearest hit with the
// Blinn-Phong model. There are no shadow or secondary rays.
type Tracer struct {
	Camera     *render.Camera
	Light      math3d.Vec3 // Direction toward the light; need not be unit length
	Material   render.Material
	Background render.Color

	// Zoom scales the image plane. Zero selects Height/(2*Focal), which
	// matches the rasterizer's projection.
	Zoom float64

	// Workers bounds the number of goroutines tracing rows. Zero selects
	// runtime.GOMAXPROCS(0).
	Workers int
}

// Stats describes one call to Render.
type Stats struct {
	Triangles int
	Tree      TreeStats
	Workers   int
	Rays      int
	Hits      int
	Build     time.Duration
	Trace     time.Duration
}

// NewTracer creates a tracer with a white plastic material, a light above
// and in front of the scene, and a blue background.
func NewTracer(camera *render.Camera) *Tracer {
	return &Tracer{
		Camera:     camera,
		Light:      math3d.V3(-0.5, 1, 1),
		Material:   render.WhitePlastic(),
		Background: render.RGB(0, 128, 255),
	}
}

// zoom returns the effective image plane scale.
func (t *Tracer) zoom() float64 {
	if t.Zoom != 0 {
		return t.Zoom
	}
	return float64(t.Camera.Height) / (2 * t.Camera.Focal)
}

func (t *Tracer) workers(rows int) int {
	n := t.Workers
	if n <= 0 {
		n = runtime.GOMAXPROCS(0)
	}
	return max(1, min(n, rows))
}

// Render builds a BVH over tris and traces every pixel of fb.
func (t *Tracer) Render(tris []render.Triangle, fb *render.Framebuffer) (Stats, error) {
	start := time.Now()
	bvh := Build(tris)
	build := time.Since(start)

	st, err := t.RenderBVH(bvh, fb)
	st.Build = build
	return st, err
}

// RenderBVH traces every pixel of fb against an existing BVH. Rows are split
// into contiguous ranges, one per worker; each worker writes only its own
// rows.
func (t *Tracer) RenderBVH(bvh *BVH, fb *render.Framebuffer) (Stats, error) {
	if t.Camera == nil {
		return Stats{}, errors.New("tracer has no camera")
	}
	if fb.Width != t.Camera.Width || fb.Height != t.Camera.Height {
		return Stats{}, fmt.Errorf("%dx%d framebuffer, %dx%d camera: %w",
			fb.Width, fb.Height, t.Camera.Width, t.Camera.Height, ErrViewportMismatch)
	}

	st := Stats{
		Triangles: len(bvh.Tris),
		Tree:      bvh.Stats(),
		Rays:      fb.Width * fb.Height,
	}
	if fb.Height == 0 || fb.Width == 0 {
		return st, nil
	}

	workers := t.workers(fb.Height)
	rowsPer := (fb.Height + workers - 1) / workers
	hits := make([]int, workers)

	start := time.Now()
	var g errgroup.Group
	g.SetLimit(workers)
	for w := range workers {
		y0 := w * rowsPer
		y1 := min(y0+rowsPer, fb.Height)
		if y0 >= y1 {
			break
		}
		g.Go(func() error {
			hits[w] = t.traceRows(bvh, fb, y0, y1)
			return nil
		})
		st.Workers++
	}
	if err := g.Wait(); err != nil {
		return st, fmt.Errorf("trace rows: %w", err)
	}
	st.Trace = time.Since(start)

	for _, h := range hits {
		st.Hits += h
	}
	logger.Debugf("traced %d rays with %d workers in %s, hits: %d",
		st.Rays, st.Workers, st.Trace, st.Hits)
	return st, nil
}

// traceRows shades rows [y0, y1) and returns the number of rays that hit.
func (t *Tracer) traceRows(bvh *BVH, fb *render.Framebuffer, y0, y1 int) int {
	cam := t.Camera
	forward, right, up := cam.Basis()
	eye := cam.Eye.Vec()
	light := t.Light.Normalize()
	aspect := cam.Aspect()
	zoom := t.zoom()
	w, h := float64(fb.Width), float64(fb.Height)

	hits := 0
	for y := y0; y < y1; y++ {
		ndcY := 1 - 2*(float64(y)+0.5)/h
		for x := range fb.Width {
			ndcX := (2*(float64(x)+0.5)/w - 1) * aspect
			dir := forward.
				Add(right.Scale(ndcX * zoom)).
				Add(up.Scale(ndcY * zoom)).
				Normalize()

			hit, ok := bvh.Intersect(NewRay(eye, dir))
			if !ok {
				fb.SetPixel(x, y, t.Background)
				continue
			}
			hits++
			n := bvh.Normal(hit)
			fb.SetPixel(x, y, render.IntensityToColor(render.Shade(n, light, dir.Negate(), t.Material)))
		}
	}
	return hits
}
