package render

import (
	"image/color"

	uv "github.com/charmbracelet/ultraviolet"
)

// Draw converts the framebuffer to half-block cells on scr. Each terminal
// row shows two framebuffer rows: ▀ with fg = top pixel and bg = bottom pixel.
func (fb *Framebuffer) Draw(scr uv.Screen, area uv.Rectangle) {
	for row := area.Min.Y; row < area.Max.Y; row++ {
		topY := (row - area.Min.Y) * 2
		botY := topY + 1

		for col := area.Min.X; col < area.Max.X && col-area.Min.X < fb.Width; col++ {
			x := col - area.Min.X
			cell := &uv.Cell{
				Content: "▀",
				Width:   1,
				Style: uv.Style{
					Fg: rgbaToColor(fb.GetPixel(x, topY)),
					Bg: rgbaToColor(fb.GetPixel(x, botY)),
				},
			}
			scr.SetCell(col, row, cell)
		}
	}
}

// FramebufferSize returns the framebuffer dimensions that fill a terminal
// of cols x rows cells.
func FramebufferSize(cols, rows int) (width, height int) {
	return cols, rows * 2
}

// ScreenPresenter draws frames onto an ultraviolet screen. The caller owns
// the screen and flushes it after Present.
type ScreenPresenter struct {
	Screen uv.Screen
	Area   uv.Rectangle
}

// NewScreenPresenter presents into the cols x rows area at the origin.
func NewScreenPresenter(scr uv.Screen, cols, rows int) *ScreenPresenter {
	return &ScreenPresenter{Screen: scr, Area: uv.Rect(0, 0, cols, rows)}
}

// Present draws fb.
func (p *ScreenPresenter) Present(fb *Framebuffer) error {
	fb.Draw(p.Screen, p.Area)
	return nil
}

// rgbaToColor converts color.RGBA to Go's color.Color interface.
func rgbaToColor(c color.RGBA) color.Color {
	if c.A == 0 {
		return nil // Transparent = no color
	}
	return c
}

// Color is an alias for color.RGBA for convenience.
type Color = color.RGBA

// Colors for convenience
var (
	ColorBlack  = color.RGBA{0, 0, 0, 255}
	ColorWhite  = color.RGBA{255, 255, 255, 255}
	ColorRed    = color.RGBA{255, 0, 0, 255}
	ColorGreen  = color.RGBA{0, 255, 0, 255}
	ColorBlue   = color.RGBA{0, 0, 255, 255}
	ColorYellow = color.RGBA{255, 255, 0, 255}
	ColorCyan   = color.RGBA{0, 255, 255, 255}
	ColorGray   = color.RGBA{128, 128, 128, 255}
	ColorSlate  = color.RGBA{30, 30, 40, 255}
)

// RGB creates a color from RGB values.
func RGB(r, g, b uint8) color.RGBA {
	return color.RGBA{r, g, b, 255}
}

// RGBA creates a color from RGBA values.
func RGBA(r, g, b, a uint8) color.RGBA {
	return color.RGBA{r, g, b, a}
}
