// prism - Software 3D Renderer
// Render OBJ and glTF models to PNG, raw RGB or the terminal with a
// depth-buffered rasterizer or a BVH ray tracer.
//
// Examples:
//
//	prism model.obj                          # rasterize to the terminal
//	prism --mode raytrace -o out.png model.glb
//	prism -c scene.toml --frames 36 -o spin.png model.obj
package main

import (
	"context"
	"fmt"
	"os"
	"syscall"
	"time"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/taigrr/prism/pkg/logging"
	"github.com/taigrr/prism/pkg/models"
	"github.com/taigrr/prism/pkg/render"
	"github.com/taigrr/prism/pkg/scene"
)

var version = "dev"

type options struct {
	config     string
	mode       string
	shading    string
	material   string
	normals    string
	background string
	out        string
	width      int
	height     int
	focal      float64
	cols       int
	frames     int
	degrees    float64
	workers    int
	verbose    bool
	debug      bool
	materials  bool
}

func main() {
	err := fang.Execute(
		context.Background(),
		newRootCmd(),
		fang.WithVersion(version),
		fang.WithoutManpage(),
		fang.WithNotifySignal(os.Interrupt, syscall.SIGTERM),
	)
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:   "prism [flags] <model.obj|model.gltf|model.glb>",
		Short: "Render a 3D model with a rasterizer or a ray tracer",
		Long: "prism renders a triangle mesh with flat, Gouraud or Phong shading through a\n" +
			"depth-buffered rasterizer, or with per-pixel Blinn-Phong through a BVH ray tracer.",
		Args: func(cmd *cobra.Command, args []string) error {
			if opts.materials {
				return nil
			}
			return cobra.ExactArgs(1)(cmd, args)
		},
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.materials {
				for _, name := range render.MaterialNames() {
					fmt.Fprintln(cmd.OutOrStdout(), name)
				}
				return nil
			}
			return run(cmd, args[0], opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.config, "config", "c", "", "TOML scene file")
	f.StringVarP(&opts.mode, "mode", "m", "", "Pipeline: raster or raytrace")
	f.StringVarP(&opts.shading, "shading", "s", "", "Raster shading: flat, gouraud or phong")
	f.StringVar(&opts.material, "material", "", "Material preset (see --list-materials)")
	f.StringVar(&opts.normals, "normals", "", "Replace normals before rendering: flat or smooth")
	f.StringVar(&opts.background, "bg", "", "Background colour as #rrggbb")
	f.StringVarP(&opts.out, "out", "o", "-", "Output: file.png, file.rgb, or - for the terminal")
	f.IntVarP(&opts.width, "width", "W", 0, "Image width in pixels")
	f.IntVarP(&opts.height, "height", "H", 0, "Image height in pixels")
	f.Float64Var(&opts.focal, "focal", 0, "Focal length in pixels (default twice the width)")
	f.IntVar(&opts.cols, "cols", 0, "Terminal columns (default terminal width)")
	f.IntVarP(&opts.frames, "frames", "n", 0, "Turntable frames")
	f.Float64Var(&opts.degrees, "degrees", 0, "Turntable sweep in degrees")
	f.IntVarP(&opts.workers, "workers", "j", 0, "Ray tracer workers (default GOMAXPROCS)")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "Log progress")
	f.BoolVar(&opts.debug, "debug", false, "Log pipeline statistics")
	f.BoolVar(&opts.materials, "list-materials", false, "List material presets and exit")

	return cmd
}

// loadConfig reads the scene file, if any, and applies flags the user set.
func loadConfig(cmd *cobra.Command, opts options) (scene.Config, error) {
	cfg := scene.Default()
	if opts.config != "" {
		var err error
		if cfg, err = scene.Load(opts.config); err != nil {
			return cfg, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("mode") {
		cfg.Mode = opts.mode
	}
	if flags.Changed("shading") {
		cfg.Shading = opts.shading
	}
	if flags.Changed("material") {
		cfg.Material = scene.MaterialConfig{Preset: opts.material}
	}
	if flags.Changed("normals") {
		cfg.Normals = opts.normals
	}
	if flags.Changed("bg") {
		cfg.Background = opts.background
	}
	if flags.Changed("width") {
		cfg.Camera.Width = opts.width
	}
	if flags.Changed("height") {
		cfg.Camera.Height = opts.height
	}
	if flags.Changed("focal") {
		cfg.Camera.Focal = opts.focal
	}
	if flags.Changed("frames") {
		cfg.Turntable.Frames = opts.frames
	}
	if flags.Changed("degrees") {
		cfg.Turntable.Degrees = opts.degrees
	}
	if flags.Changed("workers") {
		cfg.Workers = opts.workers
	}
	return cfg, nil
}

func run(cmd *cobra.Command, modelPath string, opts options) error {
	switch {
	case opts.debug:
		logging.SetLevel(log.DebugLevel)
	case opts.verbose:
		logging.SetLevel(log.InfoLevel)
	}
	logger := logging.New("prism")

	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}
	sc, err := cfg.Scene()
	if err != nil {
		return err
	}

	logger.Info("loading model", "path", modelPath)
	mesh, err := models.Load(modelPath)
	if err != nil {
		return fmt.Errorf("load model: %w", err)
	}
	mesh = sc.PrepareMesh(mesh)
	logger.Info("model loaded", "faces", mesh.FaceCount(), "triangles", mesh.TriangleCount(), "normals", mesh.HasNormals())

	out, err := newOutput(opts.out, opts.cols, sc.Turntable.Frames, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	driver := scene.NewDriver(sc)
	sum, err := driver.Render(cmd.Context(), mesh, func(f scene.Frame) error {
		logger.Info("frame rendered", "frame", f.Index, "elapsed", f.Elapsed)
		return out.write(f)
	})
	if err != nil {
		return err
	}

	printSummary(modelPath, sc, sum, out)
	return nil
}

func printSummary(modelPath string, sc *scene.Scene, sum scene.Summary, out *output) {
	title := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF5FAF"))
	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("#8A8A8A"))

	pipeline := string(sc.Mode)
	if sc.Mode == scene.ModeRaster {
		pipeline += "/" + sc.Shading.String()
	}
	lipgloss.Fprintln(os.Stderr,
		title.Render("prism"),
		modelPath,
		dim.Render(fmt.Sprintf("%s, %dx%d, %d frame(s), %d triangles, %s -> %s",
			pipeline, sc.Camera.Width, sc.Camera.Height, sum.Frames, sum.Triangles,
			sum.Elapsed.Round(time.Millisecond), out.describe())),
	)
}
