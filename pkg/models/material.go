package models

import "image"

// Material is the metallic-roughness description glTF files carry.
// Scene loading converts it to the renderer's Phong material.
type Material struct {
	Name       string
	BaseColor  [4]float64  // RGBA in 0-1 range
	Metallic   float64     // 0 = dielectric, 1 = metal
	Roughness  float64     // 0 = smooth, 1 = rough
	BaseMap    image.Image // Optional base color texture
	HasTexture bool
}

// DefaultMaterial returns the glTF defaults.
func DefaultMaterial(name string) Material {
	return Material{
		Name:      name,
		BaseColor: [4]float64{1, 1, 1, 1},
		Metallic:  1,
		Roughness: 1,
	}
}

// SpecularPower maps roughness onto a Phong exponent. Rough surfaces get a
// wide, dim highlight and smooth ones a tight highlight.
func (m Material) SpecularPower() float64 {
	r := m.Roughness
	if r < 0.02 {
		r = 0.02
	}
	return 2/(r*r) - 1
}
