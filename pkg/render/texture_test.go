package render

import "testing"

// stripe returns a 2x1 texture: red on the left, blue on the right.
func stripe() *Texture {
	tex := NewTexture(2, 1)
	tex.SetPixel(0, 0, ColorRed)
	tex.SetPixel(1, 0, ColorBlue)
	return tex
}

func TestSampleWrap(t *testing.T) {
	tests := []struct {
		name string
		wrap WrapMode
		u    float64
		want Color
	}{
		{"repeat inside", WrapRepeat, 0.25, ColorRed},
		{"repeat past one", WrapRepeat, 1.25, ColorRed},
		{"repeat negative", WrapRepeat, -0.25, ColorBlue},
		{"clamp past one", WrapClamp, 1.25, ColorBlue},
		{"clamp at one", WrapClamp, 1, ColorBlue},
		{"clamp negative", WrapClamp, -3, ColorRed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tex := stripe()
			tex.SetWrap(tt.wrap)
			if got := tex.Sample(tt.u, 0.5); got != tt.want {
				t.Errorf("Sample(%v) = %v, want %v", tt.u, got, tt.want)
			}
		})
	}
}

func TestSampleBilinear(t *testing.T) {
	tex := stripe()
	tex.SetWrap(WrapClamp)
	tex.Filter = FilterBilinear

	// halfway between the two texel centers
	got := tex.Sample(0.5, 0.5)
	want := Color{R: 128, G: 0, B: 128, A: 255}
	if got != want {
		t.Errorf("Sample(0.5) = %v, want %v", got, want)
	}

	// at a texel center the blend is that texel alone
	if got := tex.Sample(0.25, 0.5); got != ColorRed {
		t.Errorf("Sample(0.25) = %v, want red", got)
	}

	// repeating blends across the seam
	tex.SetWrap(WrapRepeat)
	if got := tex.Sample(0, 0.5); got != want {
		t.Errorf("Sample(0) with repeat = %v, want %v", got, want)
	}
	tex.Filter = FilterNearest
	if got := tex.Sample(0, 0.5); got != ColorRed {
		t.Errorf("nearest Sample(0) = %v, want red", got)
	}
}

func TestSampleFlipsV(t *testing.T) {
	tex := NewTexture(1, 2)
	tex.SetPixel(0, 0, ColorWhite) // top row
	tex.SetPixel(0, 1, ColorBlack)

	if got := tex.Sample(0.5, 0.75); got != ColorWhite {
		t.Errorf("upper half = %v, want white", got)
	}
	if got := tex.Sample(0.5, 0.25); got != ColorBlack {
		t.Errorf("lower half = %v, want black", got)
	}
}

func TestParseTextureModes(t *testing.T) {
	for _, m := range []WrapMode{WrapRepeat, WrapClamp} {
		if got, ok := ParseWrapMode(m.String()); !ok || got != m {
			t.Errorf("ParseWrapMode(%q) = %v, %v", m.String(), got, ok)
		}
	}
	for _, m := range []FilterMode{FilterNearest, FilterBilinear} {
		if got, ok := ParseFilterMode(m.String()); !ok || got != m {
			t.Errorf("ParseFilterMode(%q) = %v, %v", m.String(), got, ok)
		}
	}
	if _, ok := ParseWrapMode("mirror"); ok {
		t.Error("mirror is not a wrap mode")
	}
	if _, ok := ParseFilterMode("trilinear"); ok {
		t.Error("trilinear is not a filter mode")
	}
}

func TestGradientTexture(t *testing.T) {
	tex := NewGradientTexture(3, 1, ColorBlack, ColorWhite)
	want := []Color{ColorBlack, {R: 128, G: 128, B: 128, A: 255}, ColorWhite}
	for x, w := range want {
		if got := tex.GetPixel(x, 0); got != w {
			t.Errorf("texel %d = %v, want %v", x, got, w)
		}
	}
	if got := tex.GetPixel(5, 0); got != (Color{}) {
		t.Errorf("out of range texel = %v, want transparent", got)
	}
}
