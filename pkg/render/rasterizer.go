// Package render draws scene geometry with a software rasterizer: Phong
// shading, textures, a directional shadow map and wireframes, presented as
// half-block cells in the terminal or written out as PNG.
package render

import (
	"math"

	"github.com/taigrr/scenery/pkg/math3d"
)

// Vertex is a vertex after the vertex stage.
type Vertex struct {
	Clip   math3d.Vec4 // Clip-space position
	Color  Color       // Lit color
	Shadow Color       // Color where the shadow map occludes the fragment
	UV     math3d.Vec2 // Texture coordinates
	Light  math3d.Vec3 // Shadow map coordinates (u, v, depth), all in [0, 1]
}

// Triangle represents a triangle to be rasterized.
type Triangle struct {
	V [3]Vertex
}

// Rasterizer fills triangles into a framebuffer with a Z-buffer. A rasterizer
// without a framebuffer only writes depth.
type Rasterizer struct {
	fb      *Framebuffer
	width   int
	height  int
	zbuffer []float64 // Depth buffer (1D array, row-major)

	DisableBackfaceCulling bool // If true, render both sides of triangles
	Fragments              int  // Fragments written since the last ClearDepth
}

// NewRasterizer creates a rasterizer drawing into fb.
func NewRasterizer(fb *Framebuffer) *Rasterizer {
	r := &Rasterizer{fb: fb}
	r.Resize()
	return r
}

// NewDepthRasterizer creates a depth-only rasterizer.
func NewDepthRasterizer(width, height int) *Rasterizer {
	r := &Rasterizer{width: width, height: height}
	r.zbuffer = make([]float64, width*height)
	r.ClearDepth()
	return r
}

// SetFramebuffer swaps the color target and resizes the depth buffer to it.
func (r *Rasterizer) SetFramebuffer(fb *Framebuffer) {
	r.fb = fb
	r.Resize()
}

// Resize resizes the depth buffer to match the framebuffer.
func (r *Rasterizer) Resize() {
	if r.fb == nil {
		return
	}
	r.width, r.height = r.fb.Width, r.fb.Height
	r.zbuffer = make([]float64, r.width*r.height)
	r.ClearDepth()
}

// Width returns the target width.
func (r *Rasterizer) Width() int {
	return r.width
}

// Height returns the target height.
func (r *Rasterizer) Height() int {
	return r.height
}

// ClearDepth clears the Z-buffer (call before each frame).
func (r *Rasterizer) ClearDepth() {
	r.Fragments = 0
	// Use copy-doubling for faster clearing
	n := len(r.zbuffer)
	if n == 0 {
		return
	}
	r.zbuffer[0] = math.MaxFloat64
	for i := 1; i < n; i *= 2 {
		copy(r.zbuffer[i:], r.zbuffer[:i])
	}
}

// getDepth returns the depth at (x, y).
func (r *Rasterizer) getDepth(x, y int) float64 {
	if x < 0 || x >= r.width || y < 0 || y >= r.height {
		return math.MaxFloat64
	}
	return r.zbuffer[y*r.width+x]
}

// setDepth sets the depth at (x, y).
func (r *Rasterizer) setDepth(x, y int, z float64) {
	if x < 0 || x >= r.width || y < 0 || y >= r.height {
		return
	}
	r.zbuffer[y*r.width+x] = z
}

// screenVertex holds a vertex transformed to screen space.
type screenVertex struct {
	X, Y float64 // Screen coordinates
	Z    float64 // NDC depth (for Z-buffer)
	W    float64 // Clip W (for perspective-correct interpolation)
}

// toScreen performs the perspective divide and viewport mapping.
func (r *Rasterizer) toScreen(clip math3d.Vec4) screenVertex {
	sv := screenVertex{W: clip.W}
	if clip.W != 0 {
		sv.X = clip.X / clip.W
		sv.Y = clip.Y / clip.W
		sv.Z = clip.Z / clip.W
	}

	// NDC to screen coordinates
	sv.X = (sv.X + 1) * 0.5 * float64(r.width)
	sv.Y = (1 - sv.Y) * 0.5 * float64(r.height) // Y flipped
	return sv
}

// setup projects a triangle and reports whether it should be rasterized.
// There is no near-plane clipping: a triangle with any vertex behind the eye
// is dropped whole.
func (r *Rasterizer) setup(a, b, c math3d.Vec4) ([3]screenVertex, bool) {
	var sv [3]screenVertex
	for i, clip := range [3]math3d.Vec4{a, b, c} {
		if clip.W <= 0 {
			return sv, false
		}
		sv[i] = r.toScreen(clip)
	}

	// Backface culling (using screen-space winding)
	edge1 := math3d.V2(sv[1].X-sv[0].X, sv[1].Y-sv[0].Y)
	edge2 := math3d.V2(sv[2].X-sv[0].X, sv[2].Y-sv[0].Y)
	cross := edge1.Cross(edge2)
	if cross == 0 {
		return sv, false
	}
	if cross < 0 && !r.DisableBackfaceCulling {
		return sv, false // Back-facing
	}
	return sv, true
}

// bounds returns the clamped pixel bounding box of a projected triangle.
func (r *Rasterizer) bounds(sv [3]screenVertex) (minX, minY, maxX, maxY int) {
	minX = int(math.Max(0, math.Floor(min3(sv[0].X, sv[1].X, sv[2].X))))
	maxX = int(math.Min(float64(r.width-1), math.Ceil(max3(sv[0].X, sv[1].X, sv[2].X))))
	minY = int(math.Max(0, math.Floor(min3(sv[0].Y, sv[1].Y, sv[2].Y))))
	maxY = int(math.Min(float64(r.height-1), math.Ceil(max3(sv[0].Y, sv[1].Y, sv[2].Y))))
	return minX, minY, maxX, maxY
}

// DrawTriangle rasterizes a Gouraud-shaded triangle. tex, when set, modulates
// the interpolated color with perspective-correct UVs. shadow, when set,
// switches occluded fragments to the vertices' Shadow colors.
func (r *Rasterizer) DrawTriangle(tri Triangle, tex *Texture, shadow *ShadowMap) {
	if r.fb == nil {
		return
	}
	sv, ok := r.setup(tri.V[0].Clip, tri.V[1].Clip, tri.V[2].Clip)
	if !ok {
		return
	}

	// Precompute perspective-correct interpolation factors (1/w for each vertex)
	var invW [3]float64
	for i := range 3 {
		invW[i] = 1.0 / sv[i].W
	}

	minX, minY, maxX, maxY := r.bounds(sv)

	// Rasterize using barycentric coordinates with perspective correction
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			px, py := float64(x)+0.5, float64(y)+0.5

			bc := barycentric(
				sv[0].X, sv[0].Y,
				sv[1].X, sv[1].Y,
				sv[2].X, sv[2].Y,
				px, py,
			)

			// Check if inside triangle
			if bc.X < 0 || bc.Y < 0 || bc.Z < 0 {
				continue
			}

			// Interpolate depth
			z := bc.X*sv[0].Z + bc.Y*sv[1].Z + bc.Z*sv[2].Z

			// Z-buffer test
			if z >= r.getDepth(x, y) {
				continue
			}

			// Interpolate attribute/W and 1/W, then divide
			w0, w1, w2 := bc.X*invW[0], bc.Y*invW[1], bc.Z*invW[2]
			oneOverW := w0 + w1 + w2
			pc := math3d.V3(w0/oneOverW, w1/oneOverW, w2/oneOverW)

			color := interpolateColor3(tri.V[0].Color, tri.V[1].Color, tri.V[2].Color, bc)
			if shadow != nil {
				lc := tri.V[0].Light.Scale(pc.X).
					Add(tri.V[1].Light.Scale(pc.Y)).
					Add(tri.V[2].Light.Scale(pc.Z))
				if shadow.Occluded(lc) {
					color = interpolateColor3(tri.V[0].Shadow, tri.V[1].Shadow, tri.V[2].Shadow, bc)
				}
			}
			if tex != nil {
				u := pc.X*tri.V[0].UV.X + pc.Y*tri.V[1].UV.X + pc.Z*tri.V[2].UV.X
				v := pc.X*tri.V[0].UV.Y + pc.Y*tri.V[1].UV.Y + pc.Z*tri.V[2].UV.Y
				color = ModulateColor(tex.Sample(u, v), color)
			}

			r.setDepth(x, y, z)
			r.fb.SetPixel(x, y, color)
			r.Fragments++
		}
	}
}

// DrawDepth rasterizes a triangle into the depth buffer only.
func (r *Rasterizer) DrawDepth(a, b, c math3d.Vec4) {
	sv, ok := r.setup(a, b, c)
	if !ok {
		return
	}

	minX, minY, maxX, maxY := r.bounds(sv)
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			bc := barycentric(
				sv[0].X, sv[0].Y,
				sv[1].X, sv[1].Y,
				sv[2].X, sv[2].Y,
				float64(x)+0.5, float64(y)+0.5,
			)
			if bc.X < 0 || bc.Y < 0 || bc.Z < 0 {
				continue
			}

			z := bc.X*sv[0].Z + bc.Y*sv[1].Z + bc.Z*sv[2].Z
			if z >= r.getDepth(x, y) {
				continue
			}
			r.setDepth(x, y, z)
			r.Fragments++
		}
	}
}

// DrawLine draws a clip-space line without depth testing.
func (r *Rasterizer) DrawLine(a, b math3d.Vec4, color Color) {
	if r.fb == nil {
		return
	}
	// Skip unless both ends are in front of the eye
	if a.W <= 0 || b.W <= 0 {
		return
	}

	sa, sb := r.toScreen(a), r.toScreen(b)
	r.fb.DrawLine(int(sa.X), int(sa.Y), int(sb.X), int(sb.Y), color)
}

// barycentric calculates barycentric coordinates for point (px, py) in triangle.
func barycentric(x0, y0, x1, y1, x2, y2, px, py float64) math3d.Vec3 {
	v0x, v0y := x2-x0, y2-y0
	v1x, v1y := x1-x0, y1-y0
	v2x, v2y := px-x0, py-y0

	dot00 := v0x*v0x + v0y*v0y
	dot01 := v0x*v1x + v0y*v1y
	dot02 := v0x*v2x + v0y*v2y
	dot11 := v1x*v1x + v1y*v1y
	dot12 := v1x*v2x + v1y*v2y

	invDenom := 1.0 / (dot00*dot11 - dot01*dot01)
	u := (dot11*dot02 - dot01*dot12) * invDenom
	v := (dot00*dot12 - dot01*dot02) * invDenom

	return math3d.V3(1-u-v, v, u)
}

// interpolateColor3 interpolates between 3 colors using barycentric coords.
func interpolateColor3(c0, c1, c2 Color, bc math3d.Vec3) Color {
	return RGB(
		uint8(float64(c0.R)*bc.X+float64(c1.R)*bc.Y+float64(c2.R)*bc.Z),
		uint8(float64(c0.G)*bc.X+float64(c1.G)*bc.Y+float64(c2.G)*bc.Z),
		uint8(float64(c0.B)*bc.X+float64(c1.B)*bc.Y+float64(c2.B)*bc.Z),
	)
}

func min3(a, b, c float64) float64 {
	return math.Min(a, math.Min(b, c))
}

func max3(a, b, c float64) float64 {
	return math.Max(a, math.Max(b, c))
}
