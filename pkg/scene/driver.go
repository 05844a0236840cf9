package scene

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/taigrr/prism/pkg/logging"
	"github.com/taigrr/prism/pkg/math3d"
	"github.com/taigrr/prism/pkg/models"
	"github.com/taigrr/prism/pkg/raytrace"
	"github.com/taigrr/prism/pkg/render"
)

// Frame is one rendered image of a sequence.
type Frame struct {
	Index   int
	Yaw     float64 // Turntable rotation in radians
	Image   *render.Framebuffer
	Raster  render.Stats   // Set in raster mode
	Trace   raytrace.Stats // Set in raytrace mode
	Elapsed time.Duration
}

// Summary totals a whole render.
type Summary struct {
	Frames    int
	Triangles int
	Pixels    int // Pixels covered by the model, summed over frames
	Elapsed   time.Duration
}

// Driver renders a scene frame by frame.
type Driver struct {
	Scene *Scene
	Log   *log.Logger
}

// NewDriver creates a driver logging under the "scene" prefix.
func NewDriver(s *Scene) *Driver {
	return &Driver{Scene: s, Log: logging.New("scene")}
}

// PrepareMesh returns mesh with normals generated as the scene asks. The
// input is never modified.
func (s *Scene) PrepareMesh(mesh *models.Mesh) *models.Mesh {
	switch s.Normals {
	case NormalsFlat:
		mesh = mesh.Clone()
		mesh.CalculateNormals()
	case NormalsSmooth:
		mesh = mesh.Clone()
		mesh.CalculateSmoothNormals()
	}
	return mesh
}

// chain returns the scene transforms followed by a yaw about world Y.
func (s *Scene) chain(yaw float64) math3d.Chain {
	if yaw == 0 {
		return s.Chain
	}
	c := make(math3d.Chain, len(s.Chain), len(s.Chain)+1)
	copy(c, s.Chain)
	return append(c, math3d.Transform{Scale: 1, Rotation: math3d.V3(0, yaw, 0)})
}

// Render draws every turntable frame of mesh and passes each one to emit in
// order. It stops early when ctx is cancelled or emit fails; a frame in
// progress always completes.
func (d *Driver) Render(ctx context.Context, mesh render.MeshSource, emit func(Frame) error) (Summary, error) {
	var sum Summary
	start := time.Now()

	for i, yaw := range d.Scene.Turntable.Angles() {
		if err := ctx.Err(); err != nil {
			return sum, fmt.Errorf("frame %d: %w", i, err)
		}

		f, err := d.RenderFrame(mesh, yaw)
		if err != nil {
			return sum, fmt.Errorf("frame %d: %w", i, err)
		}
		f.Index = i

		sum.Frames++
		if d.Scene.Mode == ModeRaytrace {
			sum.Triangles = f.Trace.Triangles
			sum.Pixels += f.Trace.Hits
		} else {
			sum.Triangles = f.Raster.TrianglesDrawn
			sum.Pixels += f.Raster.PixelsWritten
		}

		if err := emit(f); err != nil {
			return sum, fmt.Errorf("emit frame %d: %w", i, err)
		}
	}

	sum.Elapsed = time.Since(start)
	return sum, nil
}

// RenderFrame draws mesh once with the turntable at yaw radians.
func (d *Driver) RenderFrame(mesh render.MeshSource, yaw float64) (Frame, error) {
	s := d.Scene
	chain := s.chain(yaw)
	fb := render.NewFramebuffer(s.Camera.Width, s.Camera.Height)
	f := Frame{Yaw: yaw, Image: fb}

	start := time.Now()
	switch s.Mode {
	case ModeRaytrace:
		tracer := &raytrace.Tracer{
			Camera:     s.Camera,
			Light:      s.Light,
			Material:   s.Material,
			Background: s.Background,
			Workers:    s.Workers,
		}
		st, err := tracer.Render(render.WorldTriangles(mesh, chain), fb)
		if err != nil {
			return f, fmt.Errorf("trace: %w", err)
		}
		f.Trace = st
		f.Elapsed = time.Since(start)
		d.Log.Debugf("traced frame in %s (build %s, trace %s), triangles: %d, nodes: %d, hits: %d",
			f.Elapsed, st.Build, st.Trace, st.Triangles, st.Tree.Nodes, st.Hits)

	case ModeRaster:
		fb.Clear(s.Background)
		rast := render.NewRasterizer(s.Camera, fb)
		rast.DrawMesh(mesh, chain, render.ShadeOptions{
			Mode:     s.Shading,
			Material: s.Material,
			Light:    s.Light,
		})
		f.Raster = rast.Stats
		f.Elapsed = time.Since(start)
		st := rast.Stats
		d.Log.Debugf("rasterized frame in %s, drawn: %d, backfacing: %d, clipped: %d, degenerate: %d, pixels: %d",
			f.Elapsed, st.TrianglesDrawn, st.FacesBackfacing, st.FacesClipped, st.TrianglesDegenerate, st.PixelsWritten)

	default:
		return f, fmt.Errorf("%q: %w", s.Mode, ErrUnknownMode)
	}
	return f, nil
}
