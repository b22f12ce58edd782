package render

import (
	"math"

	"github.com/taigrr/scenery/pkg/math3d"
)

// Material holds Phong lighting coefficients. Colors are RGBA in 0-1 range.
type Material struct {
	Ambient       math3d.Vec4
	Diffuse       math3d.Vec4
	Specular      math3d.Vec4
	Emissive      math3d.Vec4
	SpecularPower float64 // 0 disables the specular term
	Texture       *Texture
}

// DefaultMaterial returns a white material with a moderate highlight.
func DefaultMaterial() *Material {
	return &Material{
		Ambient:       math3d.V4(0.2, 0.2, 0.2, 1),
		Diffuse:       math3d.V4(1, 1, 1, 1),
		Specular:      math3d.V4(1, 1, 1, 1),
		Emissive:      math3d.V4(0, 0, 0, 1),
		SpecularPower: 50,
	}
}

// ColorVec converts an 8-bit color to a 0-1 vector.
func ColorVec(c Color) math3d.Vec4 {
	return math3d.V4(float64(c.R)/255, float64(c.G)/255, float64(c.B)/255, float64(c.A)/255)
}

// VecColor converts a 0-1 vector to an 8-bit color, clamping each channel.
func VecColor(v math3d.Vec4) Color {
	v = v.Clamp01()
	return Color{
		R: uint8(v.X*255 + 0.5),
		G: uint8(v.Y*255 + 0.5),
		B: uint8(v.Z*255 + 0.5),
		A: uint8(v.W*255 + 0.5),
	}
}

// lightColors evaluates the Phong model at one vertex. lit includes the
// diffuse and specular terms, shadowed only the ambient and emissive ones.
func (m *Material) lightColors(pos, normal, lightPos, eye math3d.Vec3) (lit, shadowed math3d.Vec4) {
	base := m.Emissive.Add(m.Ambient)
	base.W = m.Diffuse.W

	n := normal.Normalize()
	l := lightPos.Sub(pos).Normalize()
	diff := n.Dot(l)
	if diff <= 0 {
		return base, base
	}

	lit = base.Add(m.Diffuse.Scale(diff))
	if m.SpecularPower > 0 {
		v := eye.Sub(pos).Normalize()
		r := l.Negate().Reflect(n)
		if s := r.Dot(v); s > 0 {
			lit = lit.Add(m.Specular.Scale(math.Pow(s, m.SpecularPower)))
		}
	}
	lit.W = m.Diffuse.W
	return lit, base
}
