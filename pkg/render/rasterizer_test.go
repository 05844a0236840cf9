package render

import (
	"math"
	"testing"

	"github.com/taigrr/prism/pkg/math3d"
)

// testMesh implements MeshSource for testing.
type testMesh struct {
	positions []math3d.Vec3
	normals   []math3d.Vec3 // nil means no normals
	faces     [][]int
}

func (m *testMesh) FaceCount() int   { return len(m.faces) }
func (m *testMesh) Face(i int) []int { return m.faces[i] }
func (m *testMesh) Vertex(i int) (pos, normal math3d.Vec3, hasNormal bool) {
	if m.normals == nil {
		return m.positions[i], math3d.Vec3{}, false
	}
	return m.positions[i], m.normals[i], true
}

func (m *testMesh) Bounds() (min, max math3d.Vec3) {
	b := EmptyAABB()
	for _, p := range m.positions {
		b = b.Grow(p)
	}
	return b.Min, b.Max
}

// facingTriangle is the unit triangle in the z=0 plane, wound to face +Z.
func facingTriangle() *testMesh {
	n := math3d.V3(0, 0, 1)
	return &testMesh{
		positions: []math3d.Vec3{math3d.V3(-1, -1, 0), math3d.V3(1, -1, 0), math3d.V3(0, 1, 0)},
		normals:   []math3d.Vec3{n, n, n},
		faces:     [][]int{{0, 1, 2}},
	}
}

// createTestRasterizer creates a rasterizer with the camera at (0, 0, 5)
// looking at the origin and a focal length equal to the width.
func createTestRasterizer(width, height int) (*Rasterizer, *Framebuffer) {
	fb := NewFramebuffer(width, height)
	camera := NewCamera(width, height)
	camera.Eye = math3d.P3(0, 0, 5)
	camera.Focal = float64(width)
	return NewRasterizer(camera, fb), fb
}

func headOn() ShadeOptions {
	return ShadeOptions{Mode: ShadeFlat, Material: WhitePlastic(), Light: math3d.V3(0, 0, 1)}
}

func TestProjectTargetLandsAtCentre(t *testing.T) {
	c := NewCamera(640, 640)
	x, y, iz, ok := c.Project(c.Target)
	if !ok {
		t.Fatal("target failed to project")
	}
	if x != 320 || y != 320 {
		t.Errorf("Project(target) = (%v, %v), want (320, 320)", x, y)
	}
	if math.Abs(iz-1.0/6) > 1e-12 {
		t.Errorf("invDepth = %v, want %v", iz, 1.0/6)
	}
}

func TestProjectRejects(t *testing.T) {
	c := NewCamera(100, 100)
	tests := []struct {
		name string
		p    math3d.Point3
	}{
		{"behind eye", math3d.P3(0, 0, 10)},
		{"at eye", c.Eye},
		{"inside near plane", math3d.P3(0, 0, 5.95)},
		{"far off axis", math3d.P3(1e6, 0, 0)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, _, _, ok := c.Project(tc.p); ok {
				t.Errorf("Project(%v) should fail", tc.p)
			}
		})
	}
}

func TestProjectOrientation(t *testing.T) {
	c := NewCamera(100, 100)
	// +X world is screen right, +Y world is screen up (smaller y).
	x, _, _, _ := c.Project(math3d.P3(1, 0, 0))
	if x <= 50 {
		t.Errorf("+X projected to x=%v, want > 50", x)
	}
	_, y, _, _ := c.Project(math3d.P3(0, 1, 0))
	if y >= 50 {
		t.Errorf("+Y projected to y=%v, want < 50", y)
	}
}

func TestCameraBasisOrthonormal(t *testing.T) {
	c := NewCamera(100, 100)
	c.Eye = math3d.P3(3, 2, -4)
	c.Target = math3d.P3(0, 1, 1)
	f, r, u := c.Basis()
	for name, v := range map[string]math3d.Vec3{"forward": f, "right": r, "up": u} {
		if math.Abs(v.Len()-1) > 1e-9 {
			t.Errorf("%s length = %v, want 1", name, v.Len())
		}
	}
	if math.Abs(f.Dot(r)) > 1e-9 || math.Abs(f.Dot(u)) > 1e-9 || math.Abs(r.Dot(u)) > 1e-9 {
		t.Error("basis is not orthogonal")
	}
	if u.Y <= 0 {
		t.Errorf("up = %v should point toward world up", u)
	}
}

func TestShadeHeadOn(t *testing.T) {
	n := math3d.V3(0, 0, 1)
	m := WhitePlastic()
	got := Shade(n, n, n, m)
	want := m.Ka.Add(m.Kd).Add(m.Ks)
	if got.Sub(want).Len() > 1e-12 {
		t.Errorf("Shade head-on = %v, want %v", got, want)
	}
}

func TestShadeBackLit(t *testing.T) {
	m := WhitePlastic()
	got := Shade(math3d.V3(0, 0, 1), math3d.V3(0, 0, -1), math3d.V3(0, 0, 1), m)
	if got != m.Ka {
		t.Errorf("Shade with light behind = %v, want ambient %v", got, m.Ka)
	}
}

func TestIntensityToColorClamps(t *testing.T) {
	tests := []struct {
		in   math3d.Vec3
		want Color
	}{
		{math3d.V3(0, 0.5, 1), RGB(0, 127, 255)},
		{math3d.V3(-1, 2, 1.01), RGB(0, 255, 255)},
		{math3d.V3(math.NaN(), 0, 0), RGB(0, 0, 0)},
	}
	for _, tc := range tests {
		if got := IntensityToColor(tc.in); got != tc.want {
			t.Errorf("IntensityToColor(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestMaterialCatalog(t *testing.T) {
	names := MaterialNames()
	if len(names) != 24 {
		t.Errorf("len(MaterialNames()) = %d, want 24", len(names))
	}
	for _, name := range names {
		if _, ok := MaterialByName(name); !ok {
			t.Errorf("MaterialByName(%q) not found", name)
		}
	}
	if _, ok := MaterialByName("unobtainium"); ok {
		t.Error("unknown material should not be found")
	}
	gold, _ := MaterialByName("gold")
	if gold.Ns != 51.2 {
		t.Errorf("gold.Ns = %v, want 51.2", gold.Ns)
	}
}

func TestParseShadeMode(t *testing.T) {
	for _, m := range []ShadeMode{ShadeFlat, ShadeGouraud, ShadePhong} {
		got, err := ParseShadeMode(m.String())
		if err != nil || got != m {
			t.Errorf("ParseShadeMode(%q) = %v, %v", m.String(), got, err)
		}
	}
	if _, err := ParseShadeMode("toon"); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestInterpolateColor3(t *testing.T) {
	c0 := RGB(255, 0, 0) // Red
	c1 := RGB(0, 255, 0) // Green
	c2 := RGB(0, 0, 255) // Blue

	tests := []struct {
		name       string
		w0, w1, w2 float64
		want       Color
	}{
		{"vertex 0", 1, 0, 0, c0},
		{"vertex 1", 0, 1, 0, c1},
		{"vertex 2", 0, 0, 1, c2},
		{"edge tolerance", -0.0001, 0.5, 0.5001, RGB(0, 128, 128)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := interpolateColor3(c0, c1, c2, tc.w0, tc.w1, tc.w2); got != tc.want {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}

// hullWeights returns the barycentric weights of a pixel centre in a screen
// triangle.
func hullWeights(p [3][2]float64, fx, fy float64) (w0, w1, w2 float64) {
	den := (p[1][1]-p[2][1])*(p[0][0]-p[2][0]) + (p[2][0]-p[1][0])*(p[0][1]-p[2][1])
	w0 = ((p[1][1]-p[2][1])*(fx-p[2][0]) + (p[2][0]-p[1][0])*(fy-p[2][1])) / den
	w1 = ((p[2][1]-p[0][1])*(fx-p[2][0]) + (p[0][0]-p[2][0])*(fy-p[2][1])) / den
	return w0, w1, 1 - w0 - w1
}

func TestDrawMeshFootprint(t *testing.T) {
	r, _ := createTestRasterizer(100, 100)
	r.DrawMesh(facingTriangle(), nil, headOn())

	// Screen vertices: (-1,-1,0)->(30,70), (1,-1,0)->(70,70), (0,1,0)->(50,30).
	hull := [3][2]float64{{30, 70}, {70, 70}, {50, 30}}
	depth := r.Depth()
	inside, outside := 0, 0
	for y := range 100 {
		for x := range 100 {
			w0, w1, w2 := hullWeights(hull, float64(x)+0.5, float64(y)+0.5)
			d := depth.At(x, y)
			switch {
			case w0 > 0.01 && w1 > 0.01 && w2 > 0.01:
				inside++
				if math.IsInf(d, -1) {
					t.Fatalf("pixel (%d,%d) inside footprint has no depth", x, y)
				}
				if math.Abs(d-0.2) > 1e-9 {
					t.Fatalf("pixel (%d,%d) depth = %v, want 0.2", x, y, d)
				}
			case w0 < -0.01 || w1 < -0.01 || w2 < -0.01:
				outside++
				if !math.IsInf(d, -1) {
					t.Fatalf("pixel (%d,%d) outside hull was written", x, y)
				}
			}
		}
	}
	if inside == 0 || outside == 0 {
		t.Fatalf("degenerate test: %d inside, %d outside", inside, outside)
	}
	if r.Stats.TrianglesDrawn != 1 || r.Stats.PixelsWritten == 0 {
		t.Errorf("stats = %+v", r.Stats)
	}
}

func TestDrawMeshShadingModesAgreeHeadOn(t *testing.T) {
	var colors []Color
	for _, mode := range []ShadeMode{ShadeFlat, ShadeGouraud, ShadePhong} {
		r, fb := createTestRasterizer(100, 100)
		opts := headOn()
		opts.Mode = mode
		r.DrawMesh(facingTriangle(), nil, opts)
		colors = append(colors, fb.GetPixel(50, 57))
	}
	for i := 1; i < len(colors); i++ {
		for _, d := range []int{
			absInt(int(colors[i].R) - int(colors[0].R)),
			absInt(int(colors[i].G) - int(colors[0].G)),
			absInt(int(colors[i].B) - int(colors[0].B)),
		} {
			if d > 8 {
				t.Errorf("mode %v colour %v differs from flat %v", ShadeMode(i), colors[i], colors[0])
			}
		}
	}
	if colors[0] == (Color{}) || colors[0] == RGB(0, 0, 0) {
		t.Error("flat shading produced black")
	}
}

func TestDepthTestKeepsNearer(t *testing.T) {
	near := RGB(255, 0, 0)
	far := RGB(0, 0, 255)
	tri := func(c Color, iz float64) [3]ScreenVertex {
		return [3]ScreenVertex{
			{X: 10, Y: 90, InvDepth: iz, Color: c},
			{X: 90, Y: 90, InvDepth: iz, Color: c},
			{X: 50, Y: 10, InvDepth: iz, Color: c},
		}
	}

	tests := []struct {
		name  string
		order [][3]ScreenVertex
	}{
		{"near first", [][3]ScreenVertex{tri(near, 0.5), tri(far, 0.25)}},
		{"far first", [][3]ScreenVertex{tri(far, 0.25), tri(near, 0.5)}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r, fb := createTestRasterizer(100, 100)
			for _, sv := range tc.order {
				r.DrawTriangle(sv)
			}
			if got := fb.GetPixel(50, 60); got != near {
				t.Errorf("pixel = %v, want nearer colour %v", got, near)
			}
			if got := r.Depth().At(50, 60); math.Abs(got-0.5) > 1e-12 {
				t.Errorf("depth = %v, want 0.5", got)
			}
		})
	}
}

func TestBackfacesContributeNothing(t *testing.T) {
	m := facingTriangle()
	m.faces = [][]int{{0, 2, 1}} // clockwise from the camera

	for _, mode := range []ShadeMode{ShadeFlat, ShadeGouraud, ShadePhong} {
		t.Run(mode.String(), func(t *testing.T) {
			r, _ := createTestRasterizer(100, 100)
			opts := headOn()
			opts.Mode = mode
			r.DrawMesh(m, nil, opts)
			if r.Stats.PixelsWritten != 0 {
				t.Errorf("back face wrote %d pixels", r.Stats.PixelsWritten)
			}
			if r.Stats.FacesBackfacing != 1 {
				t.Errorf("FacesBackfacing = %d, want 1", r.Stats.FacesBackfacing)
			}
		})
	}
}

func TestDrawMeshQuadFan(t *testing.T) {
	quad := &testMesh{
		positions: []math3d.Vec3{
			math3d.V3(-1, -1, 0), math3d.V3(1, -1, 0), math3d.V3(1, 1, 0), math3d.V3(-1, 1, 0),
		},
		faces: [][]int{{0, 1, 2, 3}},
	}
	r, _ := createTestRasterizer(100, 100)
	r.DrawMesh(quad, nil, headOn())
	if r.Stats.TrianglesDrawn != 2 {
		t.Errorf("TrianglesDrawn = %d, want 2", r.Stats.TrianglesDrawn)
	}
	// Quad spans (30..70, 30..70) on screen.
	for _, p := range [][2]int{{35, 35}, {65, 35}, {35, 65}, {65, 65}} {
		if math.IsInf(r.Depth().At(p[0], p[1]), -1) {
			t.Errorf("pixel %v not covered", p)
		}
	}
}

func TestDrawMeshDropsFaceBehindCamera(t *testing.T) {
	m := facingTriangle()
	// The apex sits behind the eye; the whole face is dropped.
	m.positions[2] = math3d.V3(0, 2, 10)
	r, _ := createTestRasterizer(100, 100)
	r.DrawMesh(m, nil, ShadeOptions{Mode: ShadePhong, Material: WhitePlastic(), Light: math3d.V3(0, 0, 1)})
	if r.Stats.FacesClipped != 1 {
		t.Errorf("FacesClipped = %d, want 1", r.Stats.FacesClipped)
	}
	if r.Stats.PixelsWritten != 0 {
		t.Errorf("clipped face wrote %d pixels", r.Stats.PixelsWritten)
	}
}

func TestDrawMeshFrustumCull(t *testing.T) {
	r, _ := createTestRasterizer(100, 100)
	chain := math3d.Chain{{Scale: 1, Translation: math3d.V3(0, 0, 20)}} // behind the camera
	r.DrawMesh(facingTriangle(), chain, headOn())
	if r.Stats.MeshesCulled != 1 {
		t.Errorf("MeshesCulled = %d, want 1", r.Stats.MeshesCulled)
	}

	r.ResetStats()
	r.DrawMesh(facingTriangle(), nil, headOn())
	if r.Stats.MeshesCulled != 0 || r.Stats.MeshesTested != 1 {
		t.Errorf("stats after reset = %+v", r.Stats)
	}
}

func TestDegenerateTriangleSkipped(t *testing.T) {
	r, _ := createTestRasterizer(100, 100)
	r.DrawTriangle([3]ScreenVertex{
		{X: 10, Y: 10, InvDepth: 1},
		{X: 20, Y: 20, InvDepth: 1},
		{X: 30, Y: 30, InvDepth: 1},
	})
	if r.Stats.TrianglesDegenerate != 1 || r.Stats.PixelsWritten != 0 {
		t.Errorf("stats = %+v", r.Stats)
	}
}

func TestMissingNormalsUseDefault(t *testing.T) {
	m := facingTriangle()
	m.normals = nil

	r, fb := createTestRasterizer(100, 100)
	gold, _ := MaterialByName("gold")
	opts := ShadeOptions{Mode: ShadeGouraud, Material: gold, Light: math3d.V3(0, 0, 1)}
	r.DrawMesh(m, nil, opts)

	// DefaultNormal is perpendicular to the head-on light, so only the
	// ambient term survives.
	v := math3d.V3(0, 0, 1)
	want := IntensityToColor(Shade(DefaultNormal, v, v, opts.Material))
	if got := fb.GetPixel(50, 57); got != want {
		t.Errorf("pixel = %v, want %v", got, want)
	}
}

func TestWorldTrianglesFan(t *testing.T) {
	quad := &testMesh{
		positions: []math3d.Vec3{
			math3d.V3(0, 0, 0), math3d.V3(1, 0, 0), math3d.V3(1, 1, 0), math3d.V3(0, 1, 0), math3d.V3(-1, 1, 0),
		},
		faces: [][]int{{0, 1, 2, 3, 4}, {0, 1}},
	}
	chain := math3d.Chain{{Scale: 2, Translation: math3d.V3(0, 0, 1)}}
	tris := WorldTriangles(quad, chain)
	if len(tris) != 3 {
		t.Fatalf("len = %d, want 3", len(tris))
	}
	if tris[2].V[2].Position != math3d.V3(-2, 2, 1) {
		t.Errorf("last vertex = %v, want (-2,2,1)", tris[2].V[2].Position)
	}
	for _, tri := range tris {
		for _, v := range tri.V {
			if v.Normal != DefaultNormal {
				t.Errorf("normal = %v, want DefaultNormal", v.Normal)
			}
		}
	}
}

func TestRasterizerClearDepth(t *testing.T) {
	r, _ := createTestRasterizer(10, 10)
	r.DrawMesh(facingTriangle(), nil, headOn())
	r.ClearDepth()
	for _, d := range r.Depth().Values {
		if !math.IsInf(d, -1) {
			t.Fatalf("depth after clear = %v, want -Inf", d)
		}
	}
}

func TestDepthBufferBoundsCheck(t *testing.T) {
	d := NewDepthBuffer(4, 4)
	if d.TestAndSet(-1, 0, 1) || d.TestAndSet(0, 4, 1) {
		t.Error("out-of-bounds TestAndSet should fail")
	}
	if !math.IsInf(d.At(10, 10), -1) {
		t.Error("out-of-bounds At should be -Inf")
	}
	if !d.TestAndSet(1, 1, 0.3) || d.TestAndSet(1, 1, 0.2) || !d.TestAndSet(1, 1, 0.3) {
		t.Error("depth test should accept equal or nearer values only")
	}
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func BenchmarkDrawTriangle(b *testing.B) {
	r, _ := createTestRasterizer(320, 240)
	sv := [3]ScreenVertex{
		{X: 20, Y: 220, InvDepth: 0.2, Color: RGB(255, 0, 0)},
		{X: 300, Y: 220, InvDepth: 0.2, Color: RGB(0, 255, 0)},
		{X: 160, Y: 20, InvDepth: 0.2, Color: RGB(0, 0, 255)},
	}

	for b.Loop() {
		r.ClearDepth()
		r.DrawTriangle(sv)
	}
}

func BenchmarkDrawMeshPhong(b *testing.B) {
	r, _ := createTestRasterizer(320, 240)
	opts := ShadeOptions{Mode: ShadePhong, Material: WhitePlastic(), Light: math3d.V3(-0.5, 1, 1)}
	m := facingTriangle()

	for b.Loop() {
		r.ClearDepth()
		r.DrawMesh(m, nil, opts)
	}
}
