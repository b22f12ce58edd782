package scenefile

import (
	"fmt"
	"image"
	"log/slog"
	"math/rand"
	"path/filepath"

	"github.com/Pallinder/go-randomdata"
	"github.com/pkg/errors"

	"github.com/taigrr/scenery/pkg/math3d"
	"github.com/taigrr/scenery/pkg/models"
	"github.com/taigrr/scenery/pkg/physics"
	"github.com/taigrr/scenery/pkg/render"
	"github.com/taigrr/scenery/pkg/scene"
)

// LightNodeName names the node that carries the light position.
const LightNodeName = "light"

// Options configures Build.
type Options struct {
	// Rand drives spawning and the collision spin. Nil seeds from 1.
	Rand   *rand.Rand
	Logger *slog.Logger
}

// Scene is a built scene ready for the frame loop.
type Scene struct {
	Name       string
	Root       *scene.Node
	Light      *scene.Node
	Camera     Camera
	Pipeline   render.Pipeline
	Background render.Color

	// ShadowSize is 0 when the scene has shadows disabled.
	ShadowSize int
	ShadowBias float64

	Collisions bool
	Physics    physics.Options
	Bodies     []*scene.Node

	// Groups splits Bodies into sibling sets. Positions are local to the
	// parent, so only bodies sharing a parent can be compared.
	Groups [][]physics.Body

	// Tank is set when the scene has tank controls.
	Tank *TankRig
}

// TankRig holds the three nodes tank controls drive.
type TankRig struct {
	Base, Tower, Cannon *scene.Node
}

// LightPosition returns the world position of the light node.
func (s *Scene) LightPosition() math3d.Vec3 {
	return s.Light.WorldMatrix().Translation()
}

// NewResolver returns a collision resolver configured for the scene.
func (s *Scene) NewResolver() *physics.Resolver {
	return physics.New(s.Physics)
}

// Resolve runs r over every sibling group and sums the stats.
func (s *Scene) Resolve(r *physics.Resolver) physics.Stats {
	var total physics.Stats
	for _, g := range s.Groups {
		st := r.Resolve(g)
		total.PairsTested += st.PairsTested
		total.Contacts += st.Contacts
	}
	return total
}

// groupByParent splits bodies by parent, keeping first-seen order both
// between and within groups.
func groupByParent(bodies []*scene.Node) [][]physics.Body {
	var groups [][]physics.Body
	index := map[*scene.Node]int{}
	for _, b := range bodies {
		i, ok := index[b.Parent()]
		if !ok {
			i = len(groups)
			index[b.Parent()] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], b)
	}
	return groups
}

// builder holds the shared resources of one Build call.
type builder struct {
	file   *File
	rng    *rand.Rand
	log    *slog.Logger
	meshes map[string]*models.Mesh
	images map[string]image.Image
	mats   map[string]*render.Material
	bodies []*scene.Node
}

// Build creates the node tree for f. Geometry and materials are created
// once per name and shared by every node that uses them.
func Build(f *File, opts Options) (*Scene, error) {
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	randomdata.CustomRand(rng)

	b := &builder{
		file:   f,
		rng:    rng,
		log:    logger.With("scene", f.Name),
		meshes: map[string]*models.Mesh{},
		images: map[string]image.Image{},
		mats:   map[string]*render.Material{},
	}

	pipeline, _ := render.ParsePipeline(f.Pipeline)
	s := &Scene{
		Name:       f.Name,
		Root:       scene.New(f.Name),
		Camera:     f.Camera,
		Pipeline:   pipeline,
		Background: render.ColorSlate,
		ShadowBias: f.Shadows.Bias,
		Collisions: f.Physics.Collisions,
		Physics:    physics.DefaultOptions(),
	}
	if f.Background != nil {
		s.Background = f.Background.RGBA8()
	}
	if f.ShadowsEnabled() {
		s.ShadowSize = f.Shadows.Size
	}
	s.Physics.Rand = rng
	s.Physics.OrderedPairs = f.Physics.LegacyPairs
	if r := f.Physics.Spin; r != nil {
		s.Physics.SpinMin, s.Physics.SpinMax = r.Min, r.Max
	}

	for i := range f.Nodes {
		n, err := b.node(&f.Nodes[i])
		if err != nil {
			return nil, err
		}
		s.Root.AddChild(n)
	}

	for i := range f.Spawn {
		if err := b.spawn(s.Root, &f.Spawn[i]); err != nil {
			return nil, errors.Wrapf(err, "spawn %d", i)
		}
	}

	light, err := b.light()
	if err != nil {
		return nil, err
	}
	s.Light = light
	s.Root.AddChild(light)
	s.Bodies = b.bodies
	s.Groups = groupByParent(b.bodies)

	if c := f.Controls; c != nil && c.Tank != nil {
		s.Tank = &TankRig{
			Base:   s.Root.Find(c.Tank.Base),
			Tower:  s.Root.Find(c.Tank.Tower),
			Cannon: s.Root.Find(c.Tank.Cannon),
		}
	}

	b.log.Info("scene built",
		"nodes", s.Root.Count(),
		"bodies", len(s.Bodies),
		"body_groups", len(s.Groups),
		"meshes", len(b.meshes),
		"pipeline", s.Pipeline,
		"shadow_size", s.ShadowSize)
	return s, nil
}

func (b *builder) node(def *Node) (*scene.Node, error) {
	n := scene.New(def.Name)
	n.Kind, _ = scene.ParseKind(def.Kind)

	if def.Geometry != "" {
		mesh, err := b.mesh(def.Geometry)
		if err != nil {
			return nil, err
		}
		n.Geometry = mesh
		n.SetRadius(mesh.BoundingRadius())
	}
	mat, err := b.material(def.Material, def.Geometry)
	if err != nil {
		return nil, errors.Wrapf(err, "node %s", def.Name)
	}
	n.Material = mat

	if def.Radius > 0 {
		n.SetRadius(def.Radius)
	}
	n.SetMass(def.Mass)
	n.SetPosition(def.Position.Vec())
	n.SetVelocity(def.Velocity.Vec())
	if r := def.Rotation; r != nil {
		n.SetRotationAxis(r.Axis.Vec())
		n.SetRotationAngle(r.Angle)
		n.SetRotationSpeed(r.Speed)
		if r.Speed == 0 && r.Angle != 0 {
			// a fixed orientation; Update leaves non-spinning nodes alone
			n.SetMatrix(math3d.Rotate(n.RotationAxis(), r.Angle))
			n.SetPosition(def.Position.Vec())
		}
	}
	n.ShadowCaster = def.Shadow.Caster
	n.ShadowReceiver = def.Shadow.Receiver

	for _, bh := range def.Behaviors {
		switch {
		case bh.Gravity != nil:
			n.AddBehavior(scene.Gravity(*bh.Gravity))
		case bh.Bounds != nil:
			n.AddBehavior(scene.BoxBounds(*bh.Bounds))
		case bh.Orbit != nil:
			o := bh.Orbit
			n.AddBehavior(scene.Orbit(o.RadiusX, o.Height, o.RadiusZ, o.Speed))
		}
	}
	for _, t := range def.Tweens {
		fn, _ := scene.Easing(t.Easing)
		var tw *scene.Tween
		if t.Position != nil {
			tw = scene.TweenPosition(t.Position.Vec(), t.Duration, fn)
		} else {
			tw = scene.TweenRotationSpeed(t.Spin.Min, t.Spin.Max, t.Duration, fn)
		}
		if t.Yoyo {
			tw.Yoyo()
		}
		n.AddTween(tw)
	}

	if def.Collide {
		b.bodies = append(b.bodies, n)
	}

	for i := range def.Children {
		child, err := b.node(&def.Children[i])
		if err != nil {
			return nil, err
		}
		n.AddChild(child)
	}
	return n, nil
}

// spawn adds s.Count randomized copies of the template. Spawned nodes are
// always collision bodies.
func (b *builder) spawn(root *scene.Node, s *Spawn) error {
	parent := root
	if s.Parent != "" {
		parent = root.Find(s.Parent)
	}

	for i := range s.Count {
		n, err := b.node(&s.Template)
		if err != nil {
			return err
		}
		n.Name = fmt.Sprintf("%s-%s-%02d", s.Template.Name, randomdata.SillyName(), i)

		if s.Position != nil {
			n.SetPosition(math3d.RandVec3(b.rng, s.Position.Min.Vec(), s.Position.Max.Vec()))
		}
		if s.RandomAxis {
			n.SetRotationAxis(math3d.RandUnitVec3(b.rng))
		}
		if s.Angle != nil {
			n.SetRotationAngle(math3d.RandRange(b.rng, s.Angle.Min, s.Angle.Max))
		}
		if s.Spin != nil {
			n.SetRotationSpeed(math3d.RandRange(b.rng, s.Spin.Min, s.Spin.Max))
		}
		if s.Velocity != nil {
			n.SetVelocity(math3d.RandVec3(b.rng, s.Velocity.Min.Vec(), s.Velocity.Max.Vec()))
		}

		if !s.Template.Collide {
			b.bodies = append(b.bodies, n)
		}
		parent.AddChild(n)
	}
	b.log.Debug("spawned", "template", s.Template.Name, "count", s.Count, "parent", parent.Name)
	return nil
}

// light creates the node that carries the light, drawn as a marker when the
// file gives it geometry.
func (b *builder) light() (*scene.Node, error) {
	l := b.file.Light
	n := scene.New(LightNodeName)
	n.SetPosition(l.Position.Vec())
	if l.Orbit != nil {
		n.AddBehavior(scene.Orbit(l.Orbit.RadiusX, l.Orbit.Height, l.Orbit.RadiusZ, l.Orbit.Speed))
	}
	if m := l.Marker; m != nil {
		mesh, err := b.mesh(m.Geometry)
		if err != nil {
			return nil, errors.Wrap(err, "light marker")
		}
		mat, err := b.material(m.Material, m.Geometry)
		if err != nil {
			return nil, errors.Wrap(err, "light marker")
		}
		n.Kind = scene.KindMarker
		n.Geometry = mesh
		n.Material = mat
	}
	return n, nil
}

// mesh returns the shared mesh for a geometry name, creating it on first use.
func (b *builder) mesh(name string) (*models.Mesh, error) {
	if m, ok := b.meshes[name]; ok {
		return m, nil
	}
	g, ok := b.file.Geometry[name]
	if !ok {
		return nil, errors.Errorf("unknown geometry %q", name)
	}

	var m *models.Mesh
	switch {
	case g.Sphere != nil:
		s := g.Sphere
		rings, segs := s.Rings, s.Segments
		if rings == 0 {
			rings = 24
		}
		if segs == 0 {
			segs = 24
		}
		r := math3d.V3(s.Radius, s.Radius, s.Radius)
		m = models.GenSphere(r, s.Offset.Vec(), rings, segs)
	case g.Cube != nil:
		m = models.GenCube(g.Cube.Size.Vec(), g.Cube.Offset.Vec())
	case g.Quad != nil:
		m = models.GenQuad(math3d.V2(g.Quad.Width, g.Quad.Height), g.Quad.Offset.Vec())
	case g.GLTF != nil:
		loader := models.NewGLTFLoader()
		loader.Recenter = g.GLTF.Recenter
		loader.FitRadius = g.GLTF.FitRadius
		loader.SmoothNormals = !g.GLTF.Flat
		mesh, img, err := models.LoadGLBWithTexture(b.resolve(g.GLTF.Path), loader)
		if err != nil {
			return nil, errors.Wrapf(err, "geometry %s", name)
		}
		m = mesh
		if img != nil {
			b.images[name] = img
		}
	}
	m.Name = name

	b.meshes[name] = m
	b.log.Debug("geometry built", "name", name, "vertices", m.VertexCount(), "triangles", m.TriangleCount())
	return m, nil
}

// material returns the shared material for a name. An unnamed material on
// a glTF geometry takes the model's base color; otherwise it is nil and the
// renderer default applies.
func (b *builder) material(name, geometry string) (*render.Material, error) {
	if name == "" {
		return b.modelMaterial(geometry), nil
	}
	if m, ok := b.mats[name]; ok {
		return m, nil
	}
	def, ok := b.file.Materials[name]
	if !ok {
		return nil, errors.Errorf("unknown material %q", name)
	}

	m := render.DefaultMaterial()
	for _, f := range []struct {
		src *Color
		dst *math3d.Vec4
	}{
		{def.Ambient, &m.Ambient},
		{def.Diffuse, &m.Diffuse},
		{def.Specular, &m.Specular},
		{def.Emissive, &m.Emissive},
	} {
		if f.src != nil {
			*f.dst = f.src.Vec()
		}
	}
	if def.Power != nil {
		m.SpecularPower = *def.Power
	}
	if def.Texture != nil {
		tex, err := b.texture(def.Texture)
		if err != nil {
			return nil, errors.Wrapf(err, "material %s", name)
		}
		m.Texture = tex
	}

	b.mats[name] = m
	return m, nil
}

// modelMaterial converts the first glTF material of a loaded geometry.
func (b *builder) modelMaterial(geometry string) *render.Material {
	mesh, ok := b.meshes[geometry]
	if !ok || len(mesh.Materials) == 0 {
		return nil
	}
	src := mesh.Materials[0]
	m := render.DefaultMaterial()
	m.Diffuse = math3d.V4(src.BaseColor[0], src.BaseColor[1], src.BaseColor[2], src.BaseColor[3])
	m.SpecularPower = src.SpecularPower()
	// metals tint their highlight with the base color
	m.Specular = math3d.V4(1, 1, 1, 1).Scale(1 - src.Metallic).Add(m.Diffuse.Scale(src.Metallic))
	if img, ok := b.images[geometry]; ok {
		m.Texture = render.TextureFromImage(img)
	}
	return m
}

func (b *builder) texture(t *Texture) (*render.Texture, error) {
	tex, err := b.textureImage(t)
	if err != nil {
		return nil, err
	}
	if m, ok := render.ParseWrapMode(t.Wrap); ok {
		tex.SetWrap(m)
	}
	if m, ok := render.ParseFilterMode(t.Filter); ok {
		tex.Filter = m
	}
	return tex, nil
}

func (b *builder) textureImage(t *Texture) (*render.Texture, error) {
	switch {
	case t.Checker != nil:
		c := t.Checker
		size, check := c.Size, c.Check
		if size <= 0 {
			size = 64
		}
		if check <= 0 {
			check = 8
		}
		return render.NewCheckerTexture(size, size, check, c.A.RGBA8(), c.B.RGBA8()), nil
	case t.Gradient != nil:
		g := t.Gradient
		w, h := g.Width, g.Height
		if w <= 0 {
			w = 64
		}
		if h <= 0 {
			h = 1
		}
		return render.NewGradientTexture(w, h, g.Left.RGBA8(), g.Right.RGBA8()), nil
	case t.File != "":
		tex, err := render.LoadTexture(b.resolve(t.File))
		if err != nil {
			return nil, errors.Wrap(err, "texture")
		}
		return tex, nil
	case t.Model != "":
		if _, err := b.mesh(t.Model); err != nil {
			return nil, err
		}
		img, ok := b.images[t.Model]
		if !ok {
			return nil, errors.Errorf("geometry %s has no embedded image", t.Model)
		}
		return render.TextureFromImage(img), nil
	}
	return nil, errors.New("empty texture")
}

func (b *builder) resolve(path string) string {
	if filepath.IsAbs(path) || b.file.dir == "" {
		return path
	}
	return filepath.Join(b.file.dir, path)
}
