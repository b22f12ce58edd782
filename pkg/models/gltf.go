package models

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"
	"path/filepath"

	"github.com/qmuntal/gltf"
	"github.com/taigrr/scenery/pkg/math3d"
)

// GLTFLoader loads glTF and GLB files into a single Mesh. Every primitive of
// every mesh in the document is appended, so multi-part models come out as
// one piece of geometry for one scene node.
type GLTFLoader struct {
	CalculateNormals bool    // Generate normals when the file has none
	SmoothNormals    bool    // Average normals per vertex instead of per face
	Recenter         bool    // Move the bounds center to the origin
	FitRadius        float64 // Uniformly scale to this bounding radius, 0 keeps size
}

// NewGLTFLoader creates a loader with default options.
func NewGLTFLoader() *GLTFLoader {
	return &GLTFLoader{
		CalculateNormals: true,
		SmoothNormals:    true,
	}
}

// LoadGLB loads a model with the default loader.
func LoadGLB(path string) (*Mesh, error) {
	return NewGLTFLoader().Load(path)
}

// Load reads the document at path and converts it into a Mesh.
func (l *GLTFLoader) Load(path string) (*Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}
	return l.convert(doc, filepath.Base(path))
}

func (l *GLTFLoader) convert(doc *gltf.Document, name string) (*Mesh, error) {
	mesh := NewMesh(name)
	mesh.Materials = readMaterials(doc)

	for _, m := range doc.Meshes {
		if err := l.processMesh(doc, m, mesh); err != nil {
			return nil, fmt.Errorf("process mesh %q: %w", m.Name, err)
		}
	}

	if l.CalculateNormals && !hasNormals(mesh) {
		if l.SmoothNormals {
			mesh.CalculateSmoothNormals()
		} else {
			mesh.CalculateNormals()
		}
	}

	mesh.CalculateBounds()
	if l.Recenter {
		mesh.Transform(math3d.Translate(mesh.Center().Negate()))
	}
	if l.FitRadius > 0 {
		if r := mesh.BoundingRadius(); r > 0 {
			s := l.FitRadius / r
			mesh.Transform(math3d.Scale(math3d.V3(s, s, s)))
		}
	}

	return mesh, nil
}

func hasNormals(mesh *Mesh) bool {
	for _, v := range mesh.Vertices {
		if v.Normal.LenSq() > 1e-6 {
			return true
		}
	}
	return false
}

// readMaterials converts the document's metallic-roughness materials.
func readMaterials(doc *gltf.Document) []Material {
	mats := make([]Material, 0, len(doc.Materials))
	for i, gm := range doc.Materials {
		mat := DefaultMaterial(gm.Name)
		if mat.Name == "" {
			mat.Name = fmt.Sprintf("material%d", i)
		}
		if pbr := gm.PBRMetallicRoughness; pbr != nil {
			if pbr.BaseColorFactor != nil {
				mat.BaseColor = colorFactor(pbr.BaseColorFactor)
			}
			if pbr.MetallicFactor != nil {
				mat.Metallic = float64(*pbr.MetallicFactor)
			}
			if pbr.RoughnessFactor != nil {
				mat.Roughness = float64(*pbr.RoughnessFactor)
			}
			mat.HasTexture = pbr.BaseColorTexture != nil
		}
		mats = append(mats, mat)
	}
	return mats
}

func colorFactor[T float32 | float64](c *[4]T) [4]float64 {
	return [4]float64{float64(c[0]), float64(c[1]), float64(c[2]), float64(c[3])}
}

// processMesh appends the triangle primitives of m to mesh.
func (l *GLTFLoader) processMesh(doc *gltf.Document, m *gltf.Mesh, mesh *Mesh) error {
	for _, prim := range m.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles && prim.Mode != 0 {
			continue
		}

		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}
		positions, err := readVec3Accessor(doc, int(posIdx))
		if err != nil {
			return fmt.Errorf("read positions: %w", err)
		}

		var normals []math3d.Vec3
		if normIdx, ok := prim.Attributes[gltf.NORMAL]; ok {
			if normals, err = readVec3Accessor(doc, int(normIdx)); err != nil {
				return fmt.Errorf("read normals: %w", err)
			}
		}

		var uvs []math3d.Vec2
		if uvIdx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
			if uvs, err = readVec2Accessor(doc, int(uvIdx)); err != nil {
				return fmt.Errorf("read uvs: %w", err)
			}
		}

		material := -1
		if prim.Material != nil {
			material = int(*prim.Material)
		}

		base := len(mesh.Vertices)
		for i, p := range positions {
			v := MeshVertex{Position: p}
			if i < len(normals) {
				v.Normal = normals[i]
			}
			if i < len(uvs) {
				// glTF puts V=0 at the top of the image.
				v.UV = math3d.V2(uvs[i].X, 1-uvs[i].Y)
			}
			mesh.Vertices = append(mesh.Vertices, v)
		}

		var indices []int
		if prim.Indices != nil {
			if indices, err = readIndices(doc, int(*prim.Indices)); err != nil {
				return fmt.Errorf("read indices: %w", err)
			}
		} else {
			indices = make([]int, len(positions))
			for i := range indices {
				indices[i] = i
			}
		}

		// glTF winds front faces counter-clockwise; the rasterizer expects
		// clockwise, so the last two corners swap.
		for i := 0; i+2 < len(indices); i += 3 {
			mesh.Faces = append(mesh.Faces, Face{
				V:        [3]int{base + indices[i], base + indices[i+2], base + indices[i+1]},
				Material: material,
			})
		}
	}

	return nil
}

func readVec3Accessor(doc *gltf.Document, accessorIdx int) ([]math3d.Vec3, error) {
	accessor := doc.Accessors[accessorIdx]
	if accessor.Type != gltf.AccessorVec3 {
		return nil, fmt.Errorf("expected VEC3, got %v", accessor.Type)
	}

	floats, err := readFloats(doc, accessor, 3)
	if err != nil {
		return nil, err
	}

	result := make([]math3d.Vec3, len(floats)/3)
	for i := range result {
		result[i] = math3d.V3(floats[i*3], floats[i*3+1], floats[i*3+2])
	}
	return result, nil
}

func readVec2Accessor(doc *gltf.Document, accessorIdx int) ([]math3d.Vec2, error) {
	accessor := doc.Accessors[accessorIdx]
	if accessor.Type != gltf.AccessorVec2 {
		return nil, fmt.Errorf("expected VEC2, got %v", accessor.Type)
	}

	floats, err := readFloats(doc, accessor, 2)
	if err != nil {
		return nil, err
	}

	result := make([]math3d.Vec2, len(floats)/2)
	for i := range result {
		result[i] = math3d.V2(floats[i*2], floats[i*2+1])
	}
	return result, nil
}

// accessorBytes returns the buffer backing accessor, its start offset and
// its element stride (0 when tightly packed).
func accessorBytes(doc *gltf.Document, accessor *gltf.Accessor) ([]byte, int, int, error) {
	if accessor.BufferView == nil {
		return nil, 0, 0, fmt.Errorf("accessor has no buffer view")
	}

	view := doc.BufferViews[int(*accessor.BufferView)]
	buffer := doc.Buffers[int(view.Buffer)]
	if buffer.Data == nil {
		return nil, 0, 0, fmt.Errorf("buffer %q has no data", buffer.URI)
	}
	return buffer.Data, int(view.ByteOffset + accessor.ByteOffset), int(view.ByteStride), nil
}

// readFloats reads count float32 components per element.
func readFloats(doc *gltf.Document, accessor *gltf.Accessor, count int) ([]float64, error) {
	if accessor.ComponentType != gltf.ComponentFloat {
		return nil, fmt.Errorf("unsupported component type %v", accessor.ComponentType)
	}

	data, start, stride, err := accessorBytes(doc, accessor)
	if err != nil {
		return nil, err
	}
	if stride == 0 {
		stride = count * 4
	}

	n := int(accessor.Count)
	out := make([]float64, 0, n*count)
	for i := range n {
		offset := start + i*stride
		if offset+count*4 > len(data) {
			return nil, fmt.Errorf("accessor overruns buffer at element %d", i)
		}
		for j := range count {
			out = append(out, float64(readFloat32(data[offset+j*4:])))
		}
	}
	return out, nil
}

// readIndices reads a scalar index accessor of any unsigned width.
func readIndices(doc *gltf.Document, accessorIdx int) ([]int, error) {
	accessor := doc.Accessors[accessorIdx]
	if accessor.Type != gltf.AccessorScalar {
		return nil, fmt.Errorf("expected SCALAR indices, got %v", accessor.Type)
	}

	data, start, stride, err := accessorBytes(doc, accessor)
	if err != nil {
		return nil, err
	}

	var width int
	switch accessor.ComponentType {
	case gltf.ComponentUbyte:
		width = 1
	case gltf.ComponentUshort:
		width = 2
	case gltf.ComponentUint:
		width = 4
	default:
		return nil, fmt.Errorf("unexpected index type: %v", accessor.ComponentType)
	}
	if stride == 0 {
		stride = width
	}

	n := int(accessor.Count)
	result := make([]int, n)
	for i := range n {
		offset := start + i*stride
		if offset+width > len(data) {
			return nil, fmt.Errorf("index accessor overruns buffer at element %d", i)
		}
		var v uint32
		for b := range width {
			v |= uint32(data[offset+b]) << (8 * b)
		}
		result[i] = int(v)
	}
	return result, nil
}

// readFloat32 reads a little-endian float32.
func readFloat32(b []byte) float32 {
	return math.Float32frombits(uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24)
}

// LoadGLBWithTexture loads a model and decodes the first image the document
// carries, embedded or next to the file. The image is nil when there is none.
func LoadGLBWithTexture(path string, loader *GLTFLoader) (*Mesh, image.Image, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open gltf: %w", err)
	}
	if loader == nil {
		loader = NewGLTFLoader()
	}

	mesh, err := loader.convert(doc, filepath.Base(path))
	if err != nil {
		return nil, nil, err
	}

	for _, img := range doc.Images {
		var data []byte
		switch {
		case img.BufferView != nil:
			view := doc.BufferViews[int(*img.BufferView)]
			buf := doc.Buffers[int(view.Buffer)]
			if buf.Data != nil {
				start := int(view.ByteOffset)
				data = buf.Data[start : start+int(view.ByteLength)]
			}
		case img.URI != "":
			data, _ = os.ReadFile(filepath.Join(filepath.Dir(path), img.URI))
		}
		if len(data) == 0 {
			continue
		}
		decoded, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			continue
		}
		for i := range mesh.Materials {
			if mesh.Materials[i].HasTexture && mesh.Materials[i].BaseMap == nil {
				mesh.Materials[i].BaseMap = decoded
			}
		}
		return mesh, decoded, nil
	}

	return mesh, nil, nil
}
