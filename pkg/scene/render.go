package scene

import (
	"github.com/taigrr/scenery/pkg/math3d"
	"github.com/taigrr/scenery/pkg/render"
)

// Renderer is what Render needs from a renderer. *render.Renderer
// implements it.
type Renderer interface {
	ViewMatrix() math3d.Mat4
	ProjectionMatrix() math3d.Mat4
	Submit(p render.Pipeline, g render.Geometry, u render.Uniforms)
}

// WorldMatrix returns the product of the local transforms from the root down
// to n. It is recomputed on every call.
func (n *Node) WorldMatrix() math3d.Mat4 {
	if n.parent == nil {
		return n.local
	}
	return n.parent.WorldMatrix().Mul(n.local)
}

// Render submits n and its subtree in pre-order. Nodes without geometry
// submit nothing but their children are still visited.
func (n *Node) Render(r Renderer, p render.Pipeline) {
	viewProj := r.ProjectionMatrix().Mul(r.ViewMatrix())
	parentWorld := math3d.Identity()
	if n.parent != nil {
		parentWorld = n.parent.WorldMatrix()
	}
	n.render(r, p, viewProj, parentWorld)
}

// render carries the parent's world matrix down the tree so each level
// multiplies once. The result equals WorldMatrix.
func (n *Node) render(r Renderer, p render.Pipeline, viewProj, parentWorld math3d.Mat4) {
	world := parentWorld.Mul(n.local)

	if n.Geometry != nil {
		r.Submit(n.pipeline(p), n.Geometry, render.Uniforms{
			Model:               world,
			ModelViewProjection: viewProj.Mul(world),
			Normal:              math3d.NormalMatrix(world),
			Material:            n.Material,
			ShadowCaster:        n.ShadowCaster,
			ShadowReceiver:      n.ShadowReceiver,
		})
	}

	for _, child := range n.children {
		child.render(r, p, viewProj, world)
	}
}

// pipeline applies the node kind's override to the requested pipeline.
func (n *Node) pipeline(p render.Pipeline) render.Pipeline {
	if p == render.PipelineShadowDepth {
		return p
	}
	switch n.Kind {
	case KindWireframe:
		return render.PipelineWireframe
	case KindMarker:
		return render.PipelineFlat
	}
	return p
}
