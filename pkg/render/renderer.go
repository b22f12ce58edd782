package render

import (
	"github.com/taigrr/scenery/pkg/math3d"
)

// Presenter shows a finished frame.
type Presenter interface {
	Present(fb *Framebuffer) error
}

// Stats counts the work of one frame.
type Stats struct {
	DrawCalls     int
	Triangles     int
	ShadowCasters int
	Fragments     int
}

// Renderer is an immediate-mode renderer: every Submit rasterizes right away
// into the current target. A frame is
//
//	BeginShadowPass, Submit(PipelineShadowDepth, ...) for each node,
//	Clear, Submit(...) for each node, Present.
//
// The shadow pass is optional.
type Renderer struct {
	fb     *Framebuffer
	raster *Rasterizer
	shadow *ShadowMap

	view       math3d.Mat4
	projection math3d.Mat4
	lightPos   math3d.Vec3

	shadowPass  bool
	shadowReady bool

	presenter Presenter
	stats     Stats
	last      Stats

	vcache []Vertex
}

// NewRenderer creates a renderer with a width x height framebuffer. A
// shadowSize of zero or less disables shadows.
func NewRenderer(width, height, shadowSize int) *Renderer {
	fb := NewFramebuffer(width, height)
	r := &Renderer{
		fb:         fb,
		raster:     NewRasterizer(fb),
		view:       math3d.Identity(),
		projection: math3d.Identity(),
	}
	if shadowSize > 0 {
		r.shadow = NewShadowMap(shadowSize)
	}
	return r
}

// Resize replaces the framebuffer.
func (r *Renderer) Resize(width, height int) {
	r.fb = NewFramebuffer(width, height)
	r.raster.SetFramebuffer(r.fb)
}

// Framebuffer returns the color target.
func (r *Renderer) Framebuffer() *Framebuffer {
	return r.fb
}

// ShadowMap returns the shadow map, or nil when shadows are disabled.
func (r *Renderer) ShadowMap() *ShadowMap {
	return r.shadow
}

// SetPresenter sets where Present sends frames.
func (r *Renderer) SetPresenter(p Presenter) {
	r.presenter = p
}

func (r *Renderer) ViewMatrix() math3d.Mat4           { return r.view }
func (r *Renderer) SetViewMatrix(m math3d.Mat4)       { r.view = m }
func (r *Renderer) ProjectionMatrix() math3d.Mat4     { return r.projection }
func (r *Renderer) SetProjectionMatrix(m math3d.Mat4) { r.projection = m }
func (r *Renderer) LightPos() math3d.Vec3             { return r.lightPos }
func (r *Renderer) SetLightPos(p math3d.Vec3)         { r.lightPos = p }

// ShadowBias returns the shadow depth bias, 0 when shadows are disabled.
func (r *Renderer) ShadowBias() float64 {
	if r.shadow == nil {
		return 0
	}
	return r.shadow.Bias
}

// SetShadowBias sets the shadow depth bias.
func (r *Renderer) SetShadowBias(bias float64) {
	if r.shadow != nil {
		r.shadow.Bias = bias
	}
}

// BeginShadowPass clears the shadow map and routes Submit into it until the
// next Clear. It is a no-op when shadows are disabled.
func (r *Renderer) BeginShadowPass() {
	if r.shadow == nil {
		return
	}
	r.shadow.SetLight(r.lightPos)
	r.shadow.Clear()
	r.shadowPass = true
	r.shadowReady = true
}

// Clear ends any shadow pass and clears color and depth.
func (r *Renderer) Clear(c Color) {
	r.shadowPass = false
	r.fb.Clear(c)
	r.raster.ClearDepth()
}

// Submit draws g with the given pipeline. During a shadow pass only
// PipelineShadowDepth submissions from shadow casters are drawn; outside it
// PipelineShadowDepth submissions are ignored.
func (r *Renderer) Submit(p Pipeline, g Geometry, u Uniforms) {
	if g == nil {
		return
	}
	if r.shadowPass {
		if p == PipelineShadowDepth && u.ShadowCaster {
			r.shadow.DrawCaster(g, u.Model)
			r.stats.ShadowCasters++
			r.stats.Triangles += g.TriangleCount()
		}
		return
	}
	if p == PipelineShadowDepth {
		return
	}

	mat := u.Material
	if mat == nil {
		mat = DefaultMaterial()
	}
	r.stats.DrawCalls++
	r.stats.Triangles += g.TriangleCount()

	if p == PipelineWireframe {
		r.drawWireframe(g, u, VecColor(mat.Diffuse.Add(mat.Emissive)))
		return
	}
	r.drawShaded(p, g, u, mat)
}

// drawShaded runs the vertex stage once per vertex and rasterizes every face.
func (r *Renderer) drawShaded(p Pipeline, g Geometry, u Uniforms, mat *Material) {
	eye := r.view.Inverse().Translation()

	var receive *ShadowMap
	var texMat math3d.Mat4
	if u.ShadowReceiver && r.shadowReady && p != PipelineFlat {
		receive = r.shadow
		texMat = r.shadow.TextureMatrix().Mul(u.Model)
	}

	n := g.VertexCount()
	if cap(r.vcache) < n {
		r.vcache = make([]Vertex, n)
	}
	verts := r.vcache[:n]
	flat := VecColor(mat.Diffuse.Add(mat.Emissive))

	for i := range verts {
		pos, normal, uv := g.GetVertex(i)
		v := Vertex{
			Clip: u.ModelViewProjection.MulVec4(math3d.V4FromV3(pos, 1)),
			UV:   uv,
		}
		if p == PipelineFlat {
			v.Color, v.Shadow = flat, flat
		} else {
			lit, dark := mat.lightColors(u.Model.MulVec3(pos), u.Normal.MulVec3(normal), r.lightPos, eye)
			v.Color, v.Shadow = VecColor(lit), VecColor(dark)
		}
		if receive != nil {
			v.Light = texMat.MulVec3(pos)
		}
		verts[i] = v
	}

	var tex *Texture
	if p == PipelineTextured {
		tex = mat.Texture
	}

	for i := range g.TriangleCount() {
		face := g.GetFace(i)
		tri := Triangle{V: [3]Vertex{verts[face[0]], verts[face[1]], verts[face[2]]}}
		r.raster.DrawTriangle(tri, tex, receive)
	}
}

func (r *Renderer) drawWireframe(g Geometry, u Uniforms, color Color) {
	for i := range g.TriangleCount() {
		face := g.GetFace(i)
		var clip [3]math3d.Vec4
		for k, idx := range face {
			pos, _, _ := g.GetVertex(idx)
			clip[k] = u.ModelViewProjection.MulVec4(math3d.V4FromV3(pos, 1))
		}
		r.raster.DrawLine(clip[0], clip[1], color)
		r.raster.DrawLine(clip[1], clip[2], color)
		r.raster.DrawLine(clip[2], clip[0], color)
	}
}

// Present hands the frame to the presenter and closes the frame's stats.
func (r *Renderer) Present() error {
	r.stats.Fragments = r.raster.Fragments
	r.last = r.stats
	r.stats = Stats{}
	r.shadowReady = false
	r.shadowPass = false

	if r.presenter == nil {
		return nil
	}
	return r.presenter.Present(r.fb)
}

// Stats returns the counters of the last presented frame.
func (r *Renderer) Stats() Stats {
	return r.last
}
