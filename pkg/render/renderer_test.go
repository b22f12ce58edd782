package render

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taigrr/scenery/pkg/math3d"
	"github.com/taigrr/scenery/pkg/models"
)

const testSize = 64

func newTestRenderer(shadowSize int) *Renderer {
	r := NewRenderer(testSize, testSize, shadowSize)
	r.SetViewMatrix(math3d.LookAt(math3d.V3(0, 0, 10), math3d.Zero3(), math3d.Up()))
	r.SetProjectionMatrix(math3d.Perspective(math.Pi/3, 1, 0.1, 100))
	r.SetLightPos(math3d.V3(0, 0, 10))
	return r
}

func uniformsFor(r *Renderer, model math3d.Mat4, mat *Material) Uniforms {
	return Uniforms{
		Model:               model,
		ModelViewProjection: r.ProjectionMatrix().Mul(r.ViewMatrix()).Mul(model),
		Normal:              math3d.NormalMatrix(model),
		Material:            mat,
	}
}

func centerPixel(r *Renderer) Color {
	return r.Framebuffer().GetPixel(testSize/2, testSize/2)
}

func redMaterial() *Material {
	m := DefaultMaterial()
	m.Diffuse = math3d.V4(1, 0, 0, 1)
	m.Ambient = math3d.V4(0.2, 0, 0, 1)
	m.SpecularPower = 0
	return m
}

func TestRendererStats(t *testing.T) {
	r := newTestRenderer(0)
	cube := models.GenCube(math3d.V3(2, 2, 2), math3d.Zero3())

	r.Clear(ColorBlack)
	r.Submit(PipelinePhong, cube, uniformsFor(r, math3d.Identity(), nil))
	r.Submit(PipelineFlat, cube, uniformsFor(r, math3d.Translate(math3d.V3(3, 0, 0)), nil))
	require.NoError(t, r.Present())

	st := r.Stats()
	assert.Equal(t, 2, st.DrawCalls)
	assert.Equal(t, 24, st.Triangles)
	assert.Positive(t, st.Fragments)

	// The next frame starts from zero
	r.Clear(ColorBlack)
	require.NoError(t, r.Present())
	assert.Zero(t, r.Stats().DrawCalls)
}

func TestRendererFlatUsesDiffuse(t *testing.T) {
	r := newTestRenderer(0)
	quad := models.GenQuad(math3d.V2(4, 4), math3d.Zero3())

	r.Clear(ColorBlack)
	r.Submit(PipelineFlat, quad, uniformsFor(r, math3d.Identity(), redMaterial()))

	c := centerPixel(r)
	assert.InDelta(t, 255, int(c.R), 1)
	assert.Zero(t, c.G)
	assert.Zero(t, c.B)
}

func TestRendererPhongFollowsLight(t *testing.T) {
	tests := []struct {
		name     string
		light    math3d.Vec3
		min, max uint8
	}{
		{"light in front", math3d.V3(0, 0, 10), 200, 255},
		{"light behind", math3d.V3(0, 0, -10), 40, 60}, // ambient only
	}

	quad := models.GenQuad(math3d.V2(4, 4), math3d.Zero3())
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := newTestRenderer(0)
			r.SetLightPos(tc.light)
			r.Clear(ColorBlack)
			r.Submit(PipelinePhong, quad, uniformsFor(r, math3d.Identity(), redMaterial()))

			c := centerPixel(r)
			assert.GreaterOrEqual(t, c.R, tc.min)
			assert.LessOrEqual(t, c.R, tc.max)
		})
	}
}

func TestRendererTexturedFallsBackWithoutTexture(t *testing.T) {
	quad := models.GenQuad(math3d.V2(4, 4), math3d.Zero3())

	phong := newTestRenderer(0)
	phong.Clear(ColorBlack)
	phong.Submit(PipelinePhong, quad, uniformsFor(phong, math3d.Identity(), redMaterial()))

	textured := newTestRenderer(0)
	textured.Clear(ColorBlack)
	textured.Submit(PipelineTextured, quad, uniformsFor(textured, math3d.Identity(), redMaterial()))

	assert.Equal(t, centerPixel(phong), centerPixel(textured))

	mat := redMaterial()
	mat.Texture = NewTexture(1, 1) // transparent black
	textured.Clear(ColorWhite)
	textured.Submit(PipelineTextured, quad, uniformsFor(textured, math3d.Identity(), mat))
	assert.Zero(t, centerPixel(textured).R)
}

func TestRendererWireframeLeavesInterior(t *testing.T) {
	r := newTestRenderer(0)
	quad := models.GenQuad(math3d.V2(4, 4), math3d.Zero3())

	r.Clear(ColorBlack)
	r.Submit(PipelineWireframe, quad, uniformsFor(r, math3d.Identity(), redMaterial()))

	fb := r.Framebuffer()
	var edges int
	for _, p := range fb.Pixels {
		if p.R > 0 {
			edges++
		}
	}
	assert.Positive(t, edges)
	assert.Less(t, edges, testSize*testSize/4)
	assert.Zero(t, fb.GetPixel(testSize/2-8, testSize/2+4).R, "interior pixel away from the diagonal")
}

func TestRendererShadowDarkensReceiver(t *testing.T) {
	floor := models.GenQuad(math3d.V2(8, 8), math3d.Zero3())
	caster := models.GenCube(math3d.V3(2, 2, 2), math3d.V3(0, 0, 2))

	draw := func(withCaster bool) Color {
		r := newTestRenderer(testSize)
		r.BeginShadowPass()
		if withCaster {
			u := uniformsFor(r, math3d.Identity(), nil)
			u.ShadowCaster = true
			r.Submit(PipelineShadowDepth, caster, u)
		}
		r.Clear(ColorBlack)

		u := uniformsFor(r, math3d.Identity(), DefaultMaterial())
		u.ShadowReceiver = true
		r.Submit(PipelinePhong, floor, u)
		require.NoError(t, r.Present())
		return centerPixel(r)
	}

	lit := draw(false)
	shadowed := draw(true)
	assert.Greater(t, lit.R, uint8(200))
	assert.Less(t, shadowed.R, uint8(80))
}

func TestRendererShadowPassFiltersSubmissions(t *testing.T) {
	r := newTestRenderer(testSize)
	cube := models.GenCube(math3d.V3(2, 2, 2), math3d.Zero3())
	u := uniformsFor(r, math3d.Identity(), nil)

	r.BeginShadowPass()
	r.Submit(PipelineShadowDepth, cube, u) // not a caster
	r.Submit(PipelinePhong, cube, u)       // wrong pass
	assert.Zero(t, r.ShadowMap().Coverage())

	u.ShadowCaster = true
	r.Submit(PipelineShadowDepth, cube, u)
	assert.Positive(t, r.ShadowMap().Coverage())

	r.Clear(ColorBlack)
	r.Submit(PipelineShadowDepth, cube, u) // ignored outside the pass
	require.NoError(t, r.Present())

	st := r.Stats()
	assert.Equal(t, 1, st.ShadowCasters)
	assert.Zero(t, st.DrawCalls)
	assert.Zero(t, st.Fragments)
}

func TestRendererWithoutShadows(t *testing.T) {
	r := newTestRenderer(0)
	assert.Nil(t, r.ShadowMap())
	assert.Zero(t, r.ShadowBias())
	r.SetShadowBias(1) // no-op
	r.BeginShadowPass()

	u := uniformsFor(r, math3d.Identity(), nil)
	u.ShadowCaster = true
	r.Submit(PipelineShadowDepth, models.GenCube(math3d.V3(1, 1, 1), math3d.Zero3()), u)
	require.NoError(t, r.Present())
	assert.Zero(t, r.Stats().ShadowCasters)
}

type countingPresenter struct{ frames int }

func (p *countingPresenter) Present(*Framebuffer) error {
	p.frames++
	return nil
}

func TestRendererPresenter(t *testing.T) {
	r := newTestRenderer(0)
	p := &countingPresenter{}
	r.SetPresenter(p)

	for range 3 {
		r.Clear(ColorBlack)
		require.NoError(t, r.Present())
	}
	assert.Equal(t, 3, p.frames)
}

func TestRendererResize(t *testing.T) {
	r := newTestRenderer(0)
	r.Resize(10, 6)
	assert.Equal(t, 10, r.Framebuffer().Width)
	assert.Equal(t, 6, r.Framebuffer().Height)

	r.Clear(ColorBlack)
	r.Submit(PipelineFlat, models.GenQuad(math3d.V2(4, 4), math3d.Zero3()), uniformsFor(r, math3d.Identity(), redMaterial()))
	assert.Positive(t, r.raster.Fragments)
}

func TestPipelineNames(t *testing.T) {
	for p := PipelineFlat; p <= PipelineShadowDepth; p++ {
		got, ok := ParsePipeline(p.String())
		require.True(t, ok, p.String())
		assert.Equal(t, p, got)
	}
	_, ok := ParsePipeline("raytraced")
	assert.False(t, ok)
	assert.Equal(t, "unknown", Pipeline(42).String())
}
