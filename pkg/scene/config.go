// Package scene turns a TOML scene description and command-line overrides
// into a renderable scene, and drives either pipeline over a sequence of
// turntable frames.
package scene

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/pelletier/go-toml/v2"

	"github.com/taigrr/prism/pkg/math3d"
	"github.com/taigrr/prism/pkg/render"
)

var (
	// ErrUnknownMaterial is returned for a material preset that is not in
	// the catalog.
	ErrUnknownMaterial = errors.New("unknown material")
	// ErrUnknownMode is returned for a pipeline other than raster or
	// raytrace.
	ErrUnknownMode = errors.New("unknown render mode")
	// ErrInvalidConfig is returned for values outside their valid range.
	ErrInvalidConfig = errors.New("invalid config")
)

// Mode selects the rendering pipeline.
type Mode string

const (
	ModeRaster   Mode = "raster"
	ModeRaytrace Mode = "raytrace"
)

// ParseMode parses "raster" or "raytrace".
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeRaster, ModeRaytrace:
		return Mode(s), nil
	}
	return "", fmt.Errorf("%q: %w", s, ErrUnknownMode)
}

// Normals selects how vertex normals are produced before rendering.
type Normals string

const (
	NormalsAsLoaded Normals = ""
	NormalsFlat     Normals = "flat"
	NormalsSmooth   Normals = "smooth"
)

// Config is the TOML scene file. Angles are in degrees.
type Config struct {
	Mode       string            `toml:"mode"`
	Shading    string            `toml:"shading"`
	Normals    string            `toml:"normals"`
	Background string            `toml:"background"`
	Light      [3]float64        `toml:"light"`
	Workers    int               `toml:"workers"`
	Camera     CameraConfig      `toml:"camera"`
	Material   MaterialConfig    `toml:"material"`
	Transforms []TransformConfig `toml:"transforms"`
	Turntable  TurntableConfig   `toml:"turntable"`
}

type CameraConfig struct {
	Width  int        `toml:"width"`
	Height int        `toml:"height"`
	Focal  float64    `toml:"focal"` // 0 means twice the width
	Eye    [3]float64 `toml:"eye"`
	Target [3]float64 `toml:"target"`
}

// MaterialConfig names a preset; any explicit coefficient overrides the
// preset's value.
type MaterialConfig struct {
	Preset string      `toml:"preset"`
	Ka     *[3]float64 `toml:"ka"`
	Kd     *[3]float64 `toml:"kd"`
	Ks     *[3]float64 `toml:"ks"`
	Ns     *float64    `toml:"ns"`
}

type TransformConfig struct {
	Scale       float64    `toml:"scale"`
	Rotation    [3]float64 `toml:"rotation"`
	Translation [3]float64 `toml:"translation"`
}

type TurntableConfig struct {
	Frames    int     `toml:"frames"`
	Degrees   float64 `toml:"degrees"`
	Frequency float64 `toml:"frequency"`
	Damping   float64 `toml:"damping"`
}

// Default returns the configuration used when no scene file is given.
func Default() Config {
	return Config{
		Mode:       string(ModeRaster),
		Shading:    render.ShadePhong.String(),
		Background: "#0080ff",
		Light:      [3]float64{-0.5, 1, 1},
		Camera: CameraConfig{
			Width:  640,
			Height: 640,
			Eye:    [3]float64{0, 0, 6},
		},
		Material: MaterialConfig{Preset: render.DefaultMaterialName},
		Turntable: TurntableConfig{
			Frames:    1,
			Degrees:   360,
			Frequency: 6,
			Damping:   1,
		},
	}
}

// Load reads a scene file on top of the defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read scene: %w", err)
	}
	cfg, err := Decode(bytes.NewReader(data))
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Decode parses TOML from r on top of the defaults. Unknown keys are an
// error.
func Decode(r io.Reader) (Config, error) {
	cfg := Default()
	if err := toml.NewDecoder(r).DisallowUnknownFields().Decode(&cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return Config{}, fmt.Errorf("decode scene: %s: %w", strict.String(), ErrInvalidConfig)
		}
		return Config{}, fmt.Errorf("decode scene: %w", err)
	}
	return cfg, nil
}

// Scene is a validated configuration ready to render.
type Scene struct {
	Mode       Mode
	Shading    render.ShadeMode
	Normals    Normals
	Camera     *render.Camera
	Light      math3d.Vec3
	Material   render.Material
	Background render.Color
	Chain      math3d.Chain
	Turntable  Turntable
	Workers    int
}

// Scene validates c and resolves names, colours and angles.
func (c Config) Scene() (*Scene, error) {
	mode, err := ParseMode(c.Mode)
	if err != nil {
		return nil, err
	}
	shading, err := render.ParseShadeMode(c.Shading)
	if err != nil {
		return nil, fmt.Errorf("shading: %w", err)
	}

	normals := Normals(c.Normals)
	switch normals {
	case NormalsAsLoaded, NormalsFlat, NormalsSmooth:
	default:
		return nil, fmt.Errorf("normals %q: %w", c.Normals, ErrInvalidConfig)
	}

	cam, err := c.Camera.camera()
	if err != nil {
		return nil, err
	}
	mat, err := c.Material.material()
	if err != nil {
		return nil, err
	}
	bg, err := ParseColor(c.Background)
	if err != nil {
		return nil, err
	}

	light := vec(c.Light)
	if light.LenSq() == 0 {
		return nil, fmt.Errorf("light direction is zero: %w", ErrInvalidConfig)
	}
	if c.Workers < 0 {
		return nil, fmt.Errorf("workers %d: %w", c.Workers, ErrInvalidConfig)
	}

	chain := make(math3d.Chain, 0, len(c.Transforms))
	for i, t := range c.Transforms {
		if t.Scale == 0 {
			return nil, fmt.Errorf("transform %d has zero scale: %w", i, ErrInvalidConfig)
		}
		chain = append(chain, math3d.Transform{
			Scale:       t.Scale,
			Rotation:    radians(t.Rotation),
			Translation: vec(t.Translation),
		})
	}

	tt, err := c.Turntable.turntable()
	if err != nil {
		return nil, err
	}

	return &Scene{
		Mode:       mode,
		Shading:    shading,
		Normals:    normals,
		Camera:     cam,
		Light:      light,
		Material:   mat,
		Background: bg,
		Chain:      chain,
		Turntable:  tt,
		Workers:    c.Workers,
	}, nil
}

func (c CameraConfig) camera() (*render.Camera, error) {
	if c.Width <= 0 || c.Height <= 0 {
		return nil, fmt.Errorf("viewport %dx%d: %w", c.Width, c.Height, ErrInvalidConfig)
	}
	if c.Focal < 0 {
		return nil, fmt.Errorf("focal %v: %w", c.Focal, ErrInvalidConfig)
	}
	cam := render.NewCamera(c.Width, c.Height)
	cam.Eye = vec(c.Eye).Point()
	cam.Target = vec(c.Target).Point()
	if c.Focal > 0 {
		cam.Focal = c.Focal
	}

	dir := cam.Target.Sub(cam.Eye)
	if dir.LenSq() == 0 {
		return nil, fmt.Errorf("camera eye equals target: %w", ErrInvalidConfig)
	}
	if dir.Cross(math3d.Up()).LenSq() == 0 {
		return nil, fmt.Errorf("camera looks straight along the up axis: %w", ErrInvalidConfig)
	}
	return cam, nil
}

func (c MaterialConfig) material() (render.Material, error) {
	name := c.Preset
	if name == "" {
		name = render.DefaultMaterialName
	}
	m, ok := render.MaterialByName(name)
	if !ok {
		return render.Material{}, fmt.Errorf("%q: %w", name, ErrUnknownMaterial)
	}
	if c.Ka != nil {
		m.Ka = vec(*c.Ka)
	}
	if c.Kd != nil {
		m.Kd = vec(*c.Kd)
	}
	if c.Ks != nil {
		m.Ks = vec(*c.Ks)
	}
	if c.Ns != nil {
		if *c.Ns < 0 {
			return render.Material{}, fmt.Errorf("ns %v: %w", *c.Ns, ErrInvalidConfig)
		}
		m.Ns = *c.Ns
	}
	return m, nil
}

// ParseColor parses a "#rrggbb" hex colour.
func ParseColor(s string) (render.Color, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return render.Color{}, fmt.Errorf("colour %q: %w", s, ErrInvalidConfig)
	}
	r, g, b := c.Clamped().RGB255()
	return render.RGB(r, g, b), nil
}

func vec(a [3]float64) math3d.Vec3 {
	return math3d.V3(a[0], a[1], a[2])
}

func radians(deg [3]float64) math3d.Vec3 {
	return vec(deg).Scale(math.Pi / 180)
}
