package models

import (
	"math"

	"github.com/taigrr/scenery/pkg/math3d"
)

// GenSphere builds a UV sphere. radius scales each axis, so unequal
// components give an ellipsoid. rings counts latitude bands from pole to
// pole and segments counts longitude slices.
func GenSphere(radius, offset math3d.Vec3, rings, segments int) *Mesh {
	rings = max(rings, 2)
	segments = max(segments, 3)

	m := NewMesh("sphere")
	ringStep := math.Pi / float64(rings)
	segStep := 2 * math.Pi / float64(segments)

	for ring := 0; ring <= rings; ring++ {
		sinR, cosR := math.Sincos(float64(ring) * ringStep)
		for seg := 0; seg <= segments; seg++ {
			sinS, cosS := math.Sincos(float64(seg) * segStep)
			dir := math3d.V3(sinR*sinS, cosR, sinR*cosS)

			// Ellipsoid normal: gradient of the implicit surface.
			normal := math3d.V3(dir.X/radius.X, dir.Y/radius.Y, dir.Z/radius.Z).Normalize()
			uv := math3d.V2(float64(seg)/float64(segments), 1-float64(ring)/float64(rings))
			m.AddVertex(dir.Mul(radius).Add(offset), normal, uv)
		}
	}

	stride := segments + 1
	for ring := range rings {
		for seg := range segments {
			tl := ring*stride + seg
			tr := tl + 1
			bl := tl + stride
			br := bl + 1

			if ring != 0 {
				m.AddFace(tl, tr, br)
			}
			if ring != rings-1 {
				m.AddFace(tl, br, bl)
			}
		}
	}

	m.CalculateBounds()
	return m
}

// cubeFaces lists, per face, the corner indices (clockwise from outside)
// and the outward normal.
var cubeFaces = [6]struct {
	corners [4]int
	normal  math3d.Vec3
}{
	{[4]int{0, 1, 2, 3}, math3d.V3(0, 0, 1)},  // front
	{[4]int{1, 6, 5, 2}, math3d.V3(1, 0, 0)},  // right
	{[4]int{6, 7, 4, 5}, math3d.V3(0, 0, -1)}, // back
	{[4]int{7, 0, 3, 4}, math3d.V3(-1, 0, 0)}, // left
	{[4]int{7, 6, 1, 0}, math3d.V3(0, 1, 0)},  // top
	{[4]int{3, 2, 5, 4}, math3d.V3(0, -1, 0)}, // bottom
}

// GenCube builds a box with full extents size centered on offset: four
// vertices per face so every face keeps a hard normal, 12 triangles.
func GenCube(size, offset math3d.Vec3) *Mesh {
	w, h, d := size.X*0.5, size.Y*0.5, size.Z*0.5
	p := [8]math3d.Vec3{
		{X: -w, Y: h, Z: d},
		{X: w, Y: h, Z: d},
		{X: w, Y: -h, Z: d},
		{X: -w, Y: -h, Z: d},
		{X: -w, Y: -h, Z: -d},
		{X: w, Y: -h, Z: -d},
		{X: w, Y: h, Z: -d},
		{X: -w, Y: h, Z: -d},
	}
	uvs := [4]math3d.Vec2{{X: 0, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 0}, {X: 0, Y: 0}}

	m := NewMesh("cube")
	for _, f := range cubeFaces {
		base := len(m.Vertices)
		for i, c := range f.corners {
			m.AddVertex(p[c].Add(offset), f.normal, uvs[i])
		}
		m.AddFace(base, base+1, base+2)
		m.AddFace(base, base+2, base+3)
	}

	m.CalculateBounds()
	return m
}

// GenQuad builds a quad in the XY plane facing +Z.
func GenQuad(size math3d.Vec2, offset math3d.Vec3) *Mesh {
	w, h := size.X*0.5, size.Y*0.5
	normal := math3d.V3(0, 0, 1)

	m := NewMesh("quad")
	m.AddVertex(math3d.V3(w, -h, 0).Add(offset), normal, math3d.V2(1, 0))
	m.AddVertex(math3d.V3(-w, -h, 0).Add(offset), normal, math3d.V2(0, 0))
	m.AddVertex(math3d.V3(-w, h, 0).Add(offset), normal, math3d.V2(0, 1))
	m.AddVertex(math3d.V3(w, h, 0).Add(offset), normal, math3d.V2(1, 1))
	m.AddFace(0, 1, 2)
	m.AddFace(2, 3, 0)

	m.CalculateBounds()
	return m
}
