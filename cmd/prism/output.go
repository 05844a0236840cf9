package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/x/term"

	"github.com/taigrr/prism/pkg/render"
	"github.com/taigrr/prism/pkg/scene"
)

// errUnsupportedOutput is returned for output paths that are neither the
// terminal nor a known image extension.
var errUnsupportedOutput = errors.New("unsupported output format")

type outputKind int

const (
	outputTerminal outputKind = iota
	outputPNG
	outputRaw
)

// output writes frames to a file or the terminal.
type output struct {
	kind   outputKind
	path   string
	frames int
	cols   int
	w      io.Writer
}

func newOutput(path string, cols, frames int, stdout io.Writer) (*output, error) {
	o := &output{path: path, frames: frames, w: stdout}
	switch strings.ToLower(filepath.Ext(path)) {
	case "":
		if path != "-" {
			return nil, fmt.Errorf("%q: %w", path, errUnsupportedOutput)
		}
		o.kind = outputTerminal
		o.cols = terminalColumns(cols)
	case ".png":
		o.kind = outputPNG
	case ".rgb", ".raw":
		o.kind = outputRaw
	default:
		return nil, fmt.Errorf("%q: %w", path, errUnsupportedOutput)
	}
	return o, nil
}

// terminalColumns returns cols if set, else the width of stdout, else 80.
func terminalColumns(cols int) int {
	if cols > 0 {
		return cols
	}
	if term.IsTerminal(os.Stdout.Fd()) {
		if w, _, err := term.GetSize(os.Stdout.Fd()); err == nil && w > 0 {
			return w
		}
	}
	return 80
}

// framePath returns the file for frame i. Sequences get a zero-padded
// index before the extension.
func (o *output) framePath(i int) string {
	if o.frames <= 1 {
		return o.path
	}
	ext := filepath.Ext(o.path)
	return fmt.Sprintf("%s_%03d%s", strings.TrimSuffix(o.path, ext), i, ext)
}

func (o *output) write(f scene.Frame) error {
	switch o.kind {
	case outputTerminal:
		return render.EncodeTerminal(o.w, f.Image, o.cols)
	case outputPNG:
		return f.Image.SavePNG(o.framePath(f.Index))
	default:
		return writeRaw(o.framePath(f.Index), f.Image)
	}
}

// writeRaw writes the framebuffer as headerless RGB888.
func writeRaw(path string, fb *render.Framebuffer) error {
	if err := os.WriteFile(path, fb.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write raw image: %w", err)
	}
	return nil
}

func (o *output) describe() string {
	switch {
	case o.kind == outputTerminal:
		return "terminal"
	case o.frames > 1:
		return o.framePath(0) + "..."
	default:
		return o.path
	}
}
