package render

import (
	"github.com/taigrr/scenery/pkg/math3d"
)

// Geometry is the vertex data a draw call consumes. models.Mesh implements it.
type Geometry interface {
	VertexCount() int
	TriangleCount() int
	GetVertex(i int) (pos, normal math3d.Vec3, uv math3d.Vec2)
	GetFace(i int) [3]int
}

// Pipeline selects how a draw call is shaded.
type Pipeline int

const (
	PipelineFlat        Pipeline = iota // Unlit diffuse color
	PipelinePhong                       // Per-vertex Phong, interpolated across the face
	PipelineTextured                    // Phong modulated by the material texture
	PipelineWireframe                   // Triangle edges only
	PipelineShadowDepth                 // Light-space depth of shadow casters
)

var pipelineNames = [...]string{
	PipelineFlat:        "flat",
	PipelinePhong:       "phong",
	PipelineTextured:    "textured",
	PipelineWireframe:   "wireframe",
	PipelineShadowDepth: "shadow-depth",
}

func (p Pipeline) String() string {
	if p < 0 || int(p) >= len(pipelineNames) {
		return "unknown"
	}
	return pipelineNames[p]
}

// ParsePipeline returns the pipeline with the given name.
func ParsePipeline(name string) (Pipeline, bool) {
	for i, n := range pipelineNames {
		if n == name {
			return Pipeline(i), true
		}
	}
	return PipelineFlat, false
}

// Uniforms are the per-draw inputs of a pipeline.
type Uniforms struct {
	Model               math3d.Mat4
	ModelViewProjection math3d.Mat4
	Normal              math3d.Mat3
	Material            *Material

	ShadowCaster   bool // Drawn into the shadow map
	ShadowReceiver bool // Darkened where the shadow map occludes it
}
