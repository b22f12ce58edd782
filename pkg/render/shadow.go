package render

import (
	"math"

	"github.com/taigrr/scenery/pkg/math3d"
)

// DefaultShadowBias is the depth offset, in shadow map units, a receiver must
// lie behind the stored depth before it counts as occluded.
const DefaultShadowBias = 0.005

// shadowBiasMatrix maps NDC [-1, 1] to texture space [0, 1].
var shadowBiasMatrix = math3d.Mat4{
	0.5, 0, 0, 0,
	0, 0.5, 0, 0,
	0, 0, 0.5, 0,
	0.5, 0.5, 0.5, 1,
}

// ShadowMap is a square depth map rendered from a directional light that
// looks at the origin from the light position's direction.
type ShadowMap struct {
	depth      *Rasterizer
	size       int
	view       math3d.Mat4
	projection math3d.Mat4
	Bias       float64
}

// NewShadowMap creates a size x size shadow map covering a 20x20 unit area
// around the origin.
func NewShadowMap(size int) *ShadowMap {
	s := &ShadowMap{
		depth:      NewDepthRasterizer(size, size),
		size:       size,
		projection: math3d.Orthographic(-10, 10, -10, 10, -10, 20),
		Bias:       DefaultShadowBias,
	}
	s.depth.DisableBackfaceCulling = true
	s.SetLight(math3d.V3(0, 1, 1))
	return s
}

// Size returns the edge length in texels.
func (s *ShadowMap) Size() int {
	return s.size
}

// SetLight points the light camera from the direction of pos toward the
// origin.
func (s *ShadowMap) SetLight(pos math3d.Vec3) {
	eye := pos.Normalize()
	if eye.LenSq() == 0 {
		eye = math3d.Up()
	}
	up := math3d.Up()
	if math.Abs(eye.Dot(up)) > 0.999 {
		up = math3d.V3(0, 0, -1)
	}
	s.view = math3d.LookAt(eye, math3d.Zero3(), up)
}

// Clear resets every texel to the far plane.
func (s *ShadowMap) Clear() {
	s.depth.ClearDepth()
}

// ViewProjection returns the light's clip transform.
func (s *ShadowMap) ViewProjection() math3d.Mat4 {
	return s.projection.Mul(s.view)
}

// TextureMatrix maps world space to shadow map coordinates in [0, 1].
func (s *ShadowMap) TextureMatrix() math3d.Mat4 {
	return shadowBiasMatrix.Mul(s.ViewProjection())
}

// DrawCaster writes the depth of g transformed by model.
func (s *ShadowMap) DrawCaster(g Geometry, model math3d.Mat4) {
	mvp := s.ViewProjection().Mul(model)
	for i := range g.TriangleCount() {
		face := g.GetFace(i)
		var clip [3]math3d.Vec4
		for k, idx := range face {
			p, _, _ := g.GetVertex(idx)
			clip[k] = mvp.MulVec4(math3d.V4FromV3(p, 1))
		}
		s.depth.DrawDepth(clip[0], clip[1], clip[2])
	}
}

// Depth returns the stored depth at texture coordinates (u, v) in [0, 1],
// 1 where nothing was drawn.
func (s *ShadowMap) Depth(u, v float64) float64 {
	x := int(u * float64(s.size))
	y := int((1 - v) * float64(s.size))
	d := s.depth.getDepth(x, y)
	if d == math.MaxFloat64 {
		return 1
	}
	return d*0.5 + 0.5
}

// Occluded reports whether a point at shadow map coordinates c lies behind
// the stored depth. Points outside the map are never occluded.
func (s *ShadowMap) Occluded(c math3d.Vec3) bool {
	if c.X < 0 || c.X >= 1 || c.Y <= 0 || c.Y > 1 || c.Z > 1 {
		return false
	}
	return c.Z-s.Bias > s.Depth(c.X, c.Y)
}

// Coverage returns the number of depth writes since the last Clear.
func (s *ShadowMap) Coverage() int {
	return s.depth.Fragments
}
