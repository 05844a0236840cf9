// Package render provides the shared pixel surface, camera, shading model and
// the scan-conversion rasterizer for prism.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
)

// Color is an alias for color.RGBA for convenience. Alpha is ignored by the
// framebuffer.
type Color = color.RGBA

// RGB creates an opaque color from RGB values.
func RGB(r, g, b uint8) Color {
	return color.RGBA{r, g, b, 255}
}

// Framebuffer is a row-major RGB888 pixel surface with a top-left origin.
// Pixel (x, y) occupies Pixels[3*(y*Width+x) : 3*(y*Width+x)+3].
type Framebuffer struct {
	Width  int
	Height int
	Pixels []uint8
}

// NewFramebuffer creates a black framebuffer with the given dimensions.
func NewFramebuffer(width, height int) *Framebuffer {
	return &Framebuffer{
		Width:  width,
		Height: height,
		Pixels: make([]uint8, width*height*3),
	}
}

// Clear fills the framebuffer with a solid color.
func (fb *Framebuffer) Clear(c Color) {
	if len(fb.Pixels) < 3 {
		return
	}
	fb.Pixels[0], fb.Pixels[1], fb.Pixels[2] = c.R, c.G, c.B
	for i := 3; i < len(fb.Pixels); i *= 2 {
		copy(fb.Pixels[i:], fb.Pixels[:i])
	}
}

// SetPixel sets a pixel at (x, y) to the given color.
// Bounds checking is performed.
func (fb *Framebuffer) SetPixel(x, y int, c Color) {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return
	}
	i := 3 * (y*fb.Width + x)
	fb.Pixels[i], fb.Pixels[i+1], fb.Pixels[i+2] = c.R, c.G, c.B
}

// GetPixel returns the color at (x, y).
// Returns transparent black if out of bounds.
func (fb *Framebuffer) GetPixel(x, y int) Color {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return color.RGBA{}
	}
	i := 3 * (y*fb.Width + x)
	return RGB(fb.Pixels[i], fb.Pixels[i+1], fb.Pixels[i+2])
}

// Bytes returns the raw RGB888 pixel data.
func (fb *Framebuffer) Bytes() []uint8 {
	return fb.Pixels
}

// ToImage converts the framebuffer to a standard Go image.RGBA.
func (fb *Framebuffer) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	for y := 0; y < fb.Height; y++ {
		for x := 0; x < fb.Width; x++ {
			img.SetRGBA(x, y, fb.GetPixel(x, y))
		}
	}
	return img
}

// SavePNG saves the framebuffer as a PNG file.
func (fb *Framebuffer) SavePNG(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create png: %w", err)
	}
	if err := png.Encode(f, fb.ToImage()); err != nil {
		f.Close()
		return fmt.Errorf("encode png: %w", err)
	}
	return f.Close()
}
