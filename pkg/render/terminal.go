package render

import (
	"fmt"
	"image"
	"image/color"
	"io"

	uv "github.com/charmbracelet/ultraviolet"
	"golang.org/x/image/draw"
)

// TerminalSize returns the number of columns and rows EncodeTerminal uses to
// fit fb into cols columns, keeping the aspect ratio. Each row shows two
// pixel rows.
func TerminalSize(fb *Framebuffer, cols int) (width, rows int) {
	if fb.Width == 0 || fb.Height == 0 || cols <= 0 {
		return 0, 0
	}
	if cols > fb.Width {
		cols = fb.Width
	}
	h := (fb.Height*cols + fb.Width/2) / fb.Width
	return cols, max(1, (h+1)/2)
}

// EncodeTerminal writes fb to w as rows of upper half blocks (▀) with 24-bit
// colours, scaled down to at most cols columns.
func EncodeTerminal(w io.Writer, fb *Framebuffer, cols int) error {
	width, rows := TerminalSize(fb, cols)
	if width == 0 {
		return nil
	}

	src := fb.ToImage()
	dst := image.NewRGBA(image.Rect(0, 0, width, rows*2))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	scr := uv.NewScreenBuffer(width, rows)
	Draw(scr, dst)

	if _, err := fmt.Fprintln(w, scr.Render()); err != nil {
		return fmt.Errorf("write terminal frame: %w", err)
	}
	return nil
}

// Draw converts img to terminal cells on scr. Each terminal row represents 2
// image rows: the upper half block takes the top pixel as foreground and the
// bottom pixel as background.
func Draw(scr uv.Screen, img *image.RGBA) {
	area := scr.Bounds()
	b := img.Bounds()
	for row := area.Min.Y; row < area.Max.Y; row++ {
		topY := b.Min.Y + row*2
		botY := topY + 1

		for col := area.Min.X; col < area.Max.X && col < b.Dx(); col++ {
			x := b.Min.X + col
			cell := &uv.Cell{
				Content: "▀",
				Width:   1,
				Style: uv.Style{
					Fg: pixelColor(img, x, topY),
					Bg: pixelColor(img, x, botY),
				},
			}
			scr.SetCell(col, row, cell)
		}
	}
}

// pixelColor returns nil (no colour) outside the image.
func pixelColor(img *image.RGBA, x, y int) color.Color {
	if !(image.Point{x, y}.In(img.Bounds())) {
		return nil
	}
	return img.RGBAAt(x, y)
}
