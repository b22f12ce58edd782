package scenefile

import (
	"bytes"
	"embed"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/taigrr/scenery/pkg/render"
	"github.com/taigrr/scenery/pkg/scene"
)

//go:embed lessons/*.yaml
var lessons embed.FS

// Builtins returns the names of the embedded scenes, sorted.
func Builtins() []string {
	entries, err := fs.ReadDir(lessons, "lessons")
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	slices.Sort(names)
	return names
}

// BuiltinSource returns the YAML text of an embedded scene.
func BuiltinSource(name string) ([]byte, error) {
	data, err := lessons.ReadFile(path.Join("lessons", name+".yaml"))
	if err != nil {
		return nil, errors.Errorf("unknown scene %q (have %s)", name, strings.Join(Builtins(), ", "))
	}
	return data, nil
}

// Builtin parses an embedded scene.
func Builtin(name string) (*File, error) {
	data, err := BuiltinSource(name)
	if err != nil {
		return nil, err
	}
	f, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrapf(err, "builtin scene %s", name)
	}
	return f, nil
}

// Open loads a built-in scene by name, or a file when ref has a YAML
// extension or names an existing path.
func Open(ref string) (*File, error) {
	ext := filepath.Ext(ref)
	if ext == ".yaml" || ext == ".yml" {
		return Load(ref)
	}
	if _, err := os.Stat(ref); err == nil {
		return Load(ref)
	}
	return Builtin(ref)
}

// Load reads and validates the scene file at path. Asset paths inside it
// are resolved relative to the file.
func Load(path string) (*File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open scene")
	}
	defer fh.Close()

	f, err := Parse(fh)
	if err != nil {
		return nil, errors.Wrapf(err, "scene %s", path)
	}
	f.dir = filepath.Dir(path)
	return f, nil
}

// Parse decodes one scene document, fills in defaults and validates it.
// Unknown keys are errors.
func Parse(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty scene document")
		}
		return nil, errors.Wrap(err, "decode")
	}
	f.applyDefaults()
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Default camera and shadow settings.
const (
	DefaultFOV        = 0.61
	DefaultNear       = 1.0
	DefaultFar        = 500.0
	DefaultShadowSize = 256
)

func (f *File) applyDefaults() {
	if f.Name == "" {
		f.Name = "untitled"
	}
	if f.Pipeline == "" {
		f.Pipeline = render.PipelinePhong.String()
	}
	if f.Camera.FOV == 0 {
		f.Camera.FOV = DefaultFOV
	}
	if f.Camera.Near == 0 {
		f.Camera.Near = DefaultNear
	}
	if f.Camera.Far == 0 {
		f.Camera.Far = DefaultFar
	}
	if f.Camera.Eye == (Vec3{}) {
		f.Camera.Eye = Vec3{0, 0, 32}
	}
	if f.Shadows.Size == 0 {
		f.Shadows.Size = DefaultShadowSize
	}
	if f.Shadows.Bias == 0 {
		f.Shadows.Bias = render.DefaultShadowBias
	}
}

// ShadowsEnabled reports whether the scene asks for a shadow map. Shadows
// are on unless disabled explicitly.
func (f *File) ShadowsEnabled() bool {
	return f.Shadows.Enabled == nil || *f.Shadows.Enabled
}

// Validate checks references between sections and value ranges. It also
// fills in node kinds and tween easings left empty.
func (f *File) Validate() error {
	if _, ok := render.ParsePipeline(f.Pipeline); !ok || f.Pipeline == render.PipelineShadowDepth.String() {
		return errors.Errorf("pipeline %q is not a color pipeline", f.Pipeline)
	}

	c := f.Camera
	switch {
	case c.FOV <= 0 || c.FOV >= 3.1:
		return errors.Errorf("camera fov %v out of range (0, 3.1)", c.FOV)
	case c.Near <= 0:
		return errors.Errorf("camera near %v must be positive", c.Near)
	case c.Far <= c.Near:
		return errors.Errorf("camera far %v must exceed near %v", c.Far, c.Near)
	case c.Eye == c.Target:
		return errors.New("camera eye and target coincide")
	}

	if f.Shadows.Size < 0 {
		return errors.Errorf("shadow map size %d is negative", f.Shadows.Size)
	}
	if m := f.Light.Marker; m != nil {
		if err := f.checkMesh(m.Geometry, m.Material); err != nil {
			return errors.Wrap(err, "light marker")
		}
	}

	for name, g := range f.Geometry {
		if err := g.validate(); err != nil {
			return errors.Wrapf(err, "geometry %s", name)
		}
	}
	for name, m := range f.Materials {
		if err := f.validateMaterial(m); err != nil {
			return errors.Wrapf(err, "material %s", name)
		}
	}

	names := map[string]bool{}
	for i := range f.Nodes {
		if err := f.validateNode(&f.Nodes[i], names); err != nil {
			return err
		}
	}

	for i, s := range f.Spawn {
		if s.Count < 0 {
			return errors.Errorf("spawn %d: negative count", i)
		}
		if s.Parent != "" && !names[s.Parent] {
			return errors.Errorf("spawn %d: unknown parent %q", i, s.Parent)
		}
		if f.Spawn[i].Template.Name == "" {
			f.Spawn[i].Template.Name = "body"
		}
		if err := f.validateNode(&f.Spawn[i].Template, map[string]bool{}); err != nil {
			return errors.Wrapf(err, "spawn %d template", i)
		}
		for _, r := range []*Range{s.Angle, s.Spin} {
			if r != nil && r.Min > r.Max {
				return errors.Errorf("spawn %d: range min %v exceeds max %v", i, r.Min, r.Max)
			}
		}
	}

	if r := f.Physics.Spin; r != nil && r.Min > r.Max {
		return errors.Errorf("physics spin min %v exceeds max %v", r.Min, r.Max)
	}

	if t := f.Controls; t != nil && t.Tank != nil {
		for _, name := range []string{t.Tank.Base, t.Tank.Tower, t.Tank.Cannon} {
			if !names[name] {
				return errors.Errorf("tank controls: unknown node %q", name)
			}
		}
	}
	return nil
}

func (g Geometry) validate() error {
	set := 0
	for _, ok := range []bool{g.Sphere != nil, g.Cube != nil, g.Quad != nil, g.GLTF != nil} {
		if ok {
			set++
		}
	}
	if set != 1 {
		return errors.Errorf("needs exactly one of sphere, cube, quad or gltf, got %d", set)
	}

	switch {
	case g.Sphere != nil && g.Sphere.Radius <= 0:
		return errors.Errorf("sphere radius %v must be positive", g.Sphere.Radius)
	case g.Cube != nil && (g.Cube.Size[0] <= 0 || g.Cube.Size[1] <= 0 || g.Cube.Size[2] <= 0):
		return errors.Errorf("cube size %v must be positive", g.Cube.Size)
	case g.Quad != nil && (g.Quad.Width <= 0 || g.Quad.Height <= 0):
		return errors.New("quad width and height must be positive")
	case g.GLTF != nil && g.GLTF.Path == "":
		return errors.New("gltf path is empty")
	}
	return nil
}

func (f *File) validateMaterial(m Material) error {
	if m.Power != nil && *m.Power < 0 {
		return errors.Errorf("negative specular power %v", *m.Power)
	}
	t := m.Texture
	if t == nil {
		return nil
	}
	set := 0
	for _, ok := range []bool{t.Checker != nil, t.Gradient != nil, t.File != "", t.Model != ""} {
		if ok {
			set++
		}
	}
	if set != 1 {
		return errors.Errorf("texture needs exactly one of checker, gradient, file or model, got %d", set)
	}
	if t.Model != "" {
		g, ok := f.Geometry[t.Model]
		if !ok || g.GLTF == nil {
			return errors.Errorf("texture model %q is not a gltf geometry", t.Model)
		}
	}
	if _, ok := render.ParseWrapMode(t.Wrap); t.Wrap != "" && !ok {
		return errors.Errorf("unknown texture wrap %q", t.Wrap)
	}
	if _, ok := render.ParseFilterMode(t.Filter); t.Filter != "" && !ok {
		return errors.Errorf("unknown texture filter %q", t.Filter)
	}
	return nil
}

func (f *File) checkMesh(geometry, material string) error {
	if _, ok := f.Geometry[geometry]; geometry != "" && !ok {
		return errors.Errorf("unknown geometry %q", geometry)
	}
	if _, ok := f.Materials[material]; material != "" && !ok {
		return errors.Errorf("unknown material %q", material)
	}
	return nil
}

func (f *File) validateNode(n *Node, names map[string]bool) error {
	if n.Name == "" {
		return errors.New("node without a name")
	}
	if names[n.Name] {
		return errors.Errorf("duplicate node name %q", n.Name)
	}
	names[n.Name] = true

	if n.Kind == "" {
		n.Kind = scene.KindGroup.String()
		if n.Geometry != "" {
			n.Kind = scene.KindMesh.String()
		}
	}
	if _, ok := scene.ParseKind(n.Kind); !ok {
		return errors.Errorf("node %s: unknown kind %q", n.Name, n.Kind)
	}
	if err := f.checkMesh(n.Geometry, n.Material); err != nil {
		return errors.Wrapf(err, "node %s", n.Name)
	}
	if n.Radius < 0 || n.Mass < 0 {
		return errors.Errorf("node %s: radius and mass must not be negative", n.Name)
	}

	for i, b := range n.Behaviors {
		set := 0
		for _, ok := range []bool{b.Gravity != nil, b.Bounds != nil, b.Orbit != nil} {
			if ok {
				set++
			}
		}
		if set != 1 {
			return errors.Errorf("node %s behavior %d: needs exactly one of gravity, bounds or orbit", n.Name, i)
		}
		if b.Bounds != nil && *b.Bounds <= 0 {
			return errors.Errorf("node %s behavior %d: bounds must be positive", n.Name, i)
		}
	}

	for i, t := range n.Tweens {
		if (t.Position == nil) == (t.Spin == nil) {
			return errors.Errorf("node %s tween %d: needs exactly one of position or spin", n.Name, i)
		}
		if t.Duration <= 0 {
			return errors.Errorf("node %s tween %d: duration must be positive", n.Name, i)
		}
		if t.Easing == "" {
			n.Tweens[i].Easing = "linear"
		} else if _, ok := scene.Easing(t.Easing); !ok {
			return errors.Errorf("node %s tween %d: unknown easing %q", n.Name, i, t.Easing)
		}
	}

	for i := range n.Children {
		if err := f.validateNode(&n.Children[i], names); err != nil {
			return err
		}
	}
	return nil
}
