// Package scenefile reads YAML scene descriptions and builds scene trees
// from them. The built-in lesson scenes are embedded.
package scenefile

import (
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/taigrr/scenery/pkg/math3d"
	"github.com/taigrr/scenery/pkg/render"
)

// File is one scene document.
type File struct {
	Name        string              `yaml:"name"`
	Description string              `yaml:"description,omitempty"`
	Pipeline    string              `yaml:"pipeline,omitempty"`
	Background  *Color              `yaml:"background,omitempty"`
	Camera      Camera              `yaml:"camera"`
	Light       Light               `yaml:"light"`
	Shadows     Shadows             `yaml:"shadows"`
	Materials   map[string]Material `yaml:"materials,omitempty"`
	Geometry    map[string]Geometry `yaml:"geometry,omitempty"`
	Nodes       []Node              `yaml:"nodes"`
	Spawn       []Spawn             `yaml:"spawn,omitempty"`
	Physics     Physics             `yaml:"physics"`
	Controls    *Controls           `yaml:"controls,omitempty"`

	// dir resolves relative asset paths. Empty for embedded scenes.
	dir string
}

type Camera struct {
	Eye    Vec3    `yaml:"eye"`
	Target Vec3    `yaml:"target"`
	FOV    float64 `yaml:"fov"`
	Near   float64 `yaml:"near"`
	Far    float64 `yaml:"far"`
}

// Light is a point light. With Orbit set the light circles the Y axis and
// Marker, if named, draws at its position.
type Light struct {
	Position Vec3   `yaml:"position"`
	Orbit    *Orbit `yaml:"orbit,omitempty"`
	Marker   *Mesh  `yaml:"marker,omitempty"`
}

type Orbit struct {
	RadiusX float64 `yaml:"radius_x"`
	Height  float64 `yaml:"height"`
	RadiusZ float64 `yaml:"radius_z"`
	Speed   float64 `yaml:"speed"`
}

// Mesh pairs a geometry name with a material name.
type Mesh struct {
	Geometry string `yaml:"geometry"`
	Material string `yaml:"material,omitempty"`
}

type Shadows struct {
	Enabled *bool   `yaml:"enabled,omitempty"`
	Size    int     `yaml:"size,omitempty"`
	Bias    float64 `yaml:"bias,omitempty"`
}

// Material fields left out keep the renderer defaults.
type Material struct {
	Ambient  *Color   `yaml:"ambient,omitempty"`
	Diffuse  *Color   `yaml:"diffuse,omitempty"`
	Specular *Color   `yaml:"specular,omitempty"`
	Emissive *Color   `yaml:"emissive,omitempty"`
	Power    *float64 `yaml:"power,omitempty"`
	Texture  *Texture `yaml:"texture,omitempty"`
}

// Texture selects exactly one source.
type Texture struct {
	Checker  *Checker  `yaml:"checker,omitempty"`
	Gradient *Gradient `yaml:"gradient,omitempty"`
	File     string    `yaml:"file,omitempty"`
	Model    string    `yaml:"model,omitempty"` // image embedded in a gltf geometry

	Wrap   string `yaml:"wrap,omitempty"`   // repeat (default) or clamp
	Filter string `yaml:"filter,omitempty"` // nearest (default) or bilinear
}

type Checker struct {
	Size  int   `yaml:"size"`
	Check int   `yaml:"check"`
	A     Color `yaml:"a"`
	B     Color `yaml:"b"`
}

type Gradient struct {
	Width  int   `yaml:"width"`
	Height int   `yaml:"height"`
	Left   Color `yaml:"left"`
	Right  Color `yaml:"right"`
}

// Geometry selects exactly one shape.
type Geometry struct {
	Sphere *Sphere `yaml:"sphere,omitempty"`
	Cube   *Cube   `yaml:"cube,omitempty"`
	Quad   *Quad   `yaml:"quad,omitempty"`
	GLTF   *GLTF   `yaml:"gltf,omitempty"`
}

type Sphere struct {
	Radius   float64 `yaml:"radius"`
	Offset   Vec3    `yaml:"offset,omitempty"`
	Rings    int     `yaml:"rings,omitempty"`
	Segments int     `yaml:"segments,omitempty"`
}

type Cube struct {
	Size   Vec3 `yaml:"size"`
	Offset Vec3 `yaml:"offset,omitempty"`
}

type Quad struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
	Offset Vec3    `yaml:"offset,omitempty"`
}

type GLTF struct {
	Path      string  `yaml:"path"`
	Recenter  bool    `yaml:"recenter,omitempty"`
	FitRadius float64 `yaml:"fit_radius,omitempty"`
	Flat      bool    `yaml:"flat,omitempty"` // per-face normals when the file has none
}

// Node describes one scene node and its subtree.
type Node struct {
	Name      string     `yaml:"name"`
	Kind      string     `yaml:"kind,omitempty"`
	Geometry  string     `yaml:"geometry,omitempty"`
	Material  string     `yaml:"material,omitempty"`
	Position  Vec3       `yaml:"position,omitempty"`
	Velocity  Vec3       `yaml:"velocity,omitempty"`
	Rotation  *Rotation  `yaml:"rotation,omitempty"`
	Radius    float64    `yaml:"radius,omitempty"`
	Mass      float64    `yaml:"mass,omitempty"`
	Shadow    ShadowFlag `yaml:"shadow,omitempty"`
	Collide   bool       `yaml:"collide,omitempty"`
	Behaviors []Behavior `yaml:"behaviors,omitempty"`
	Tweens    []Tween    `yaml:"tweens,omitempty"`
	Children  []Node     `yaml:"children,omitempty"`
}

type Rotation struct {
	Axis  Vec3    `yaml:"axis,omitempty"`
	Angle float64 `yaml:"angle,omitempty"`
	Speed float64 `yaml:"speed,omitempty"`
}

type ShadowFlag struct {
	Caster   bool `yaml:"caster,omitempty"`
	Receiver bool `yaml:"receiver,omitempty"`
}

// Behavior sets exactly one hook.
type Behavior struct {
	Gravity *float64 `yaml:"gravity,omitempty"`
	Bounds  *float64 `yaml:"bounds,omitempty"`
	Orbit   *Orbit   `yaml:"orbit,omitempty"`
}

// Tween animates either the position or the spin speed.
type Tween struct {
	Position *Vec3   `yaml:"position,omitempty"`
	Spin     *Range  `yaml:"spin,omitempty"`
	Duration float32 `yaml:"duration"`
	Easing   string  `yaml:"easing,omitempty"`
	Yoyo     bool    `yaml:"yoyo,omitempty"`
}

type Range struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// Box is an axis-aligned region to draw random vectors from.
type Box struct {
	Min Vec3 `yaml:"min"`
	Max Vec3 `yaml:"max"`
}

// Spawn adds Count copies of Template with randomized placement and motion.
type Spawn struct {
	Count      int    `yaml:"count"`
	Parent     string `yaml:"parent,omitempty"`
	Template   Node   `yaml:"template"`
	Position   *Box   `yaml:"position,omitempty"`
	Velocity   *Box   `yaml:"velocity,omitempty"`
	Angle      *Range `yaml:"angle,omitempty"`
	Spin       *Range `yaml:"spin,omitempty"`
	RandomAxis bool   `yaml:"random_axis,omitempty"`
}

type Physics struct {
	Collisions  bool   `yaml:"collisions,omitempty"`
	Spin        *Range `yaml:"spin,omitempty"`
	LegacyPairs bool   `yaml:"legacy_pairs,omitempty"`
}

// Controls names the nodes keyboard input drives.
type Controls struct {
	Tank *Tank `yaml:"tank,omitempty"`
}

type Tank struct {
	Base   string `yaml:"base"`
	Tower  string `yaml:"tower"`
	Cannon string `yaml:"cannon"`
}

// Vec3 is written as a three element sequence.
type Vec3 [3]float64

func (v *Vec3) UnmarshalYAML(node *yaml.Node) error {
	var xs []float64
	if err := node.Decode(&xs); err != nil {
		return err
	}
	if len(xs) != 3 {
		return errors.Errorf("line %d: vector needs 3 components, got %d", node.Line, len(xs))
	}
	copy(v[:], xs)
	return nil
}

func (v Vec3) Vec() math3d.Vec3 {
	return math3d.V3(v[0], v[1], v[2])
}

// Color is RGBA in 0-1 range. It is written as one grey value, three
// components (alpha 1) or four.
type Color [4]float64

func (c *Color) UnmarshalYAML(node *yaml.Node) error {
	var xs []float64
	if node.Kind == yaml.ScalarNode {
		var g float64
		if err := node.Decode(&g); err != nil {
			return err
		}
		xs = []float64{g, g, g}
	} else if err := node.Decode(&xs); err != nil {
		return err
	}

	switch len(xs) {
	case 3:
		*c = Color{xs[0], xs[1], xs[2], 1}
	case 4:
		*c = Color{xs[0], xs[1], xs[2], xs[3]}
	default:
		return errors.Errorf("line %d: color needs 1, 3 or 4 components, got %d", node.Line, len(xs))
	}
	return nil
}

func (c Color) Vec() math3d.Vec4 {
	return math3d.V4(c[0], c[1], c[2], c[3])
}

func (c Color) RGBA8() render.Color {
	return render.VecColor(c.Vec())
}
