package render

import (
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"math"
	"os"
)

// WrapMode decides what Sample does with coordinates outside [0,1].
type WrapMode int

const (
	WrapRepeat WrapMode = iota
	WrapClamp
)

// FilterMode decides how Sample blends neighbouring texels.
type FilterMode int

const (
	FilterNearest FilterMode = iota
	FilterBilinear
)

var wrapNames = [...]string{WrapRepeat: "repeat", WrapClamp: "clamp"}

var filterNames = [...]string{FilterNearest: "nearest", FilterBilinear: "bilinear"}

func (m WrapMode) String() string {
	if m < 0 || int(m) >= len(wrapNames) {
		return "unknown"
	}
	return wrapNames[m]
}

func (m FilterMode) String() string {
	if m < 0 || int(m) >= len(filterNames) {
		return "unknown"
	}
	return filterNames[m]
}

// ParseWrapMode returns the wrap mode with the given name.
func ParseWrapMode(name string) (WrapMode, bool) {
	for i, n := range wrapNames {
		if n == name {
			return WrapMode(i), true
		}
	}
	return WrapRepeat, false
}

// ParseFilterMode returns the filter mode with the given name.
func ParseFilterMode(name string) (FilterMode, bool) {
	for i, n := range filterNames {
		if n == name {
			return FilterMode(i), true
		}
	}
	return FilterNearest, false
}

// Texture is an RGBA image sampled by UV. V runs bottom to top.
type Texture struct {
	Width  int
	Height int
	Pixels []Color // row-major, row 0 at the top

	WrapU, WrapV WrapMode
	Filter       FilterMode
}

// NewTexture creates a transparent texture that repeats and samples the
// nearest texel.
func NewTexture(width, height int) *Texture {
	return &Texture{
		Width:  width,
		Height: height,
		Pixels: make([]Color, width*height),
	}
}

// SetWrap sets both wrap axes.
func (t *Texture) SetWrap(m WrapMode) {
	t.WrapU, t.WrapV = m, m
}

// LoadTexture decodes a PNG or JPEG file into a texture.
func LoadTexture(path string) (*Texture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open texture: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode texture %s: %w", path, err)
	}
	return TextureFromImage(img), nil
}

// TextureFromImage copies an image into a texture.
func TextureFromImage(img image.Image) *Texture {
	bounds := img.Bounds()
	tex := NewTexture(bounds.Dx(), bounds.Dy())

	for y := range tex.Height {
		for x := range tex.Width {
			// color.RGBAModel scales the 16-bit channels down to 8 bits
			c := color.RGBAModel.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.RGBA)
			tex.SetPixel(x, y, c)
		}
	}
	return tex
}

// NewCheckerTexture creates a procedural checkerboard texture.
func NewCheckerTexture(width, height, checkSize int, c1, c2 Color) *Texture {
	tex := NewTexture(width, height)
	for y := range height {
		for x := range width {
			cx := x / checkSize
			cy := y / checkSize
			if (cx+cy)%2 == 0 {
				tex.SetPixel(x, y, c1)
			} else {
				tex.SetPixel(x, y, c2)
			}
		}
	}
	return tex
}

// NewGradientTexture creates a horizontal gradient texture.
func NewGradientTexture(width, height int, left, right Color) *Texture {
	tex := NewTexture(width, height)
	for y := range height {
		for x := range width {
			t := float64(x) / float64(width-1)
			tex.SetPixel(x, y, lerpColor(left, right, t))
		}
	}
	return tex
}

// SetPixel sets a pixel in the texture.
func (t *Texture) SetPixel(x, y int, c Color) {
	if x < 0 || x >= t.Width || y < 0 || y >= t.Height {
		return
	}
	t.Pixels[y*t.Width+x] = c
}

// GetPixel returns the texel at (x, y), or transparent black outside the
// image.
func (t *Texture) GetPixel(x, y int) Color {
	if x < 0 || x >= t.Width || y < 0 || y >= t.Height {
		return Color{}
	}
	return t.Pixels[y*t.Width+x]
}

// Sample returns the color at (u, v).
func (t *Texture) Sample(u, v float64) Color {
	if t.Width == 0 || t.Height == 0 {
		return Color{}
	}
	// texel space, with y flipped because rows run top down
	x := wrapUnit(u, t.WrapU) * float64(t.Width)
	y := (1 - wrapUnit(v, t.WrapV)) * float64(t.Height)

	if t.Filter == FilterBilinear {
		return t.bilinear(x, y)
	}
	return t.GetPixel(
		wrapIndex(int(math.Floor(x)), t.Width, t.WrapU),
		wrapIndex(int(math.Floor(y)), t.Height, t.WrapV),
	)
}

// bilinear blends the four texels around (x, y), taking texel centers at
// half-integer positions.
func (t *Texture) bilinear(x, y float64) Color {
	x, y = x-0.5, y-0.5
	x0, y0 := math.Floor(x), math.Floor(y)
	fx, fy := x-x0, y-y0

	ix0 := wrapIndex(int(x0), t.Width, t.WrapU)
	ix1 := wrapIndex(int(x0)+1, t.Width, t.WrapU)
	iy0 := wrapIndex(int(y0), t.Height, t.WrapV)
	iy1 := wrapIndex(int(y0)+1, t.Height, t.WrapV)

	top := lerpColor(t.GetPixel(ix0, iy0), t.GetPixel(ix1, iy0), fx)
	bottom := lerpColor(t.GetPixel(ix0, iy1), t.GetPixel(ix1, iy1), fx)
	return lerpColor(top, bottom, fy)
}

// wrapUnit maps a coordinate into [0,1].
func wrapUnit(c float64, m WrapMode) float64 {
	if m == WrapClamp {
		return math.Max(0, math.Min(1, c))
	}
	return c - math.Floor(c)
}

// wrapIndex maps a texel index into [0, size).
func wrapIndex(i, size int, m WrapMode) int {
	if m == WrapClamp {
		return max(0, min(size-1, i))
	}
	i %= size
	if i < 0 {
		i += size
	}
	return i
}

func lerpColor(a, b Color, t float64) Color {
	mix := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x) + (float64(y)-float64(x))*t))
	}
	return Color{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: mix(a.A, b.A)}
}

// ModulateColor modulates one color by another (texture * vertex color).
func ModulateColor(a, b Color) Color {
	return Color{
		R: uint8((int(a.R) * int(b.R)) / 255),
		G: uint8((int(a.G) * int(b.G)) / 255),
		B: uint8((int(a.B) * int(b.B)) / 255),
		A: uint8((int(a.A) * int(b.A)) / 255),
	}
}
