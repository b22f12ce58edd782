// Package scene implements the node hierarchy: local transforms composed
// through parents, per-frame motion and spin, behavior hooks and pre-order
// submission to a renderer.
package scene

import (
	"github.com/taigrr/scenery/pkg/math3d"
	"github.com/taigrr/scenery/pkg/render"
)

// Kind selects how a node is drawn.
type Kind int

const (
	KindGroup     Kind = iota // Usually geometry-less, only carries a transform
	KindMesh                  // Drawn with the pipeline passed to Render
	KindWireframe             // Always drawn as wireframe
	KindMarker                // Always drawn unlit
)

var kindNames = [...]string{
	KindGroup:     "group",
	KindMesh:      "mesh",
	KindWireframe: "wireframe",
	KindMarker:    "marker",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// ParseKind returns the kind with the given name.
func ParseKind(name string) (Kind, bool) {
	for i, n := range kindNames {
		if n == name {
			return Kind(i), true
		}
	}
	return KindGroup, false
}

// DefaultRotationAxis is the spin axis of a new node.
var DefaultRotationAxis = math3d.V3(0, 0, -1)

// Node is one element of the scene tree. A node owns its children;
// releasing a node releases its subtree. Geometry and Material are borrowed
// and may be shared between nodes.
//
// Nodes are not safe for concurrent use. One goroutine owns the tree.
type Node struct {
	Name     string
	Kind     Kind
	Geometry render.Geometry
	Material *render.Material

	ShadowCaster   bool
	ShadowReceiver bool

	// OnRelease runs once when the node is released.
	OnRelease func(n *Node)

	local    math3d.Mat4
	parent   *Node
	children []*Node

	velocity      math3d.Vec3
	rotationAxis  math3d.Vec3
	rotationAngle float64
	rotationSpeed float64
	radius        float64
	mass          float64

	behaviors []Behavior
	tweens    []*Tween
	released  bool
}

// New creates a group node at the origin.
func New(name string) *Node {
	return &Node{
		Name:         name,
		Kind:         KindGroup,
		local:        math3d.Identity(),
		rotationAxis: DefaultRotationAxis,
		radius:       1,
		mass:         1,
	}
}

// NewMesh creates a node that draws geom with mat. A nil mat uses the
// renderer's default material.
func NewMesh(name string, geom render.Geometry, mat *render.Material) *Node {
	n := New(name)
	n.Kind = KindMesh
	n.Geometry = geom
	n.Material = mat
	return n
}

// Parent returns the parent node, or nil for a root.
func (n *Node) Parent() *Node {
	return n.parent
}

// Children returns the child list. The slice must not be modified.
func (n *Node) Children() []*Node {
	return n.children
}

// ChildCount returns the number of direct children.
func (n *Node) ChildCount() int {
	return len(n.children)
}

// ChildAt returns the child at index i.
func (n *Node) ChildAt(i int) *Node {
	return n.children[i]
}

// AddChild appends child to n. A child that already has a parent is moved.
// Panics if child is nil or if the add would create a cycle.
func (n *Node) AddChild(child *Node) {
	if child == nil {
		panic("scene: cannot add nil child")
	}
	if isAncestor(child, n) {
		panic("scene: adding child would create a cycle")
	}
	if child.parent != nil {
		child.parent.removeChildByPtr(child)
	}
	child.parent = n
	n.children = append(n.children, child)
}

// RemoveChild detaches a direct child without releasing it. It reports
// whether child was a child of n.
func (n *Node) RemoveChild(child *Node) bool {
	if child == nil || child.parent != n {
		return false
	}
	n.removeChildByPtr(child)
	child.parent = nil
	return true
}

// RemoveFromParent detaches n from its parent, if any.
func (n *Node) RemoveFromParent() {
	if n.parent != nil {
		n.parent.RemoveChild(n)
	}
}

// isAncestor reports whether candidate is node or one of its ancestors.
func isAncestor(candidate, node *Node) bool {
	for p := node; p != nil; p = p.parent {
		if p == candidate {
			return true
		}
	}
	return false
}

// removeChildByPtr removes child from n.children without clearing child.parent.
func (n *Node) removeChildByPtr(child *Node) {
	for i, c := range n.children {
		if c == child {
			copy(n.children[i:], n.children[i+1:])
			n.children[len(n.children)-1] = nil
			n.children = n.children[:len(n.children)-1]
			return
		}
	}
}

// Release detaches n from its parent and releases its subtree depth-first,
// children before parents. It returns the number of nodes released; a node
// that was already released counts zero.
func (n *Node) Release() int {
	if n.released {
		return 0
	}
	n.RemoveFromParent()
	return n.release()
}

func (n *Node) release() int {
	count := 0
	for _, child := range n.children {
		child.parent = nil
		count += child.release()
	}
	n.children = nil
	n.behaviors = nil
	n.tweens = nil
	n.released = true
	if n.OnRelease != nil {
		n.OnRelease(n)
	}
	return count + 1
}

// Released reports whether Release has run on n or an ancestor.
func (n *Node) Released() bool {
	return n.released
}

// Matrix returns the local transform.
func (n *Node) Matrix() math3d.Mat4 {
	return n.local
}

// SetMatrix replaces the local transform. Position is read back from its
// translation column on the next Update.
func (n *Node) SetMatrix(m math3d.Mat4) {
	n.local = m
}

// Position returns the translation column of the local transform.
func (n *Node) Position() math3d.Vec3 {
	return n.local.Translation()
}

// SetPosition writes the translation column, leaving rotation as is.
func (n *Node) SetPosition(p math3d.Vec3) {
	n.local.SetTranslation(p)
}

// Velocity returns the linear velocity in parent space, units per second.
func (n *Node) Velocity() math3d.Vec3 { return n.velocity }

// SetVelocity sets the velocity Update integrates into the position.
func (n *Node) SetVelocity(v math3d.Vec3) { n.velocity = v }

// RotationAxis returns the spin axis as set, not normalized.
func (n *Node) RotationAxis() math3d.Vec3 {
	return n.rotationAxis
}

// SetRotationAxis sets the spin axis. A zero axis selects
// DefaultRotationAxis.
func (n *Node) SetRotationAxis(axis math3d.Vec3) {
	if axis.LenSq() == 0 {
		axis = DefaultRotationAxis
	}
	n.rotationAxis = axis
}

// RotationAngle returns the spin phase in [0, 2π).
func (n *Node) RotationAngle() float64 {
	return n.rotationAngle
}

// SetRotationAngle sets the spin phase, wrapped into [0, 2π).
func (n *Node) SetRotationAngle(angle float64) {
	n.rotationAngle = wrapAngle(angle)
}

// RotationSpeed returns the spin speed in radians per second.
func (n *Node) RotationSpeed() float64 {
	return n.rotationSpeed
}

// SetRotationSpeed sets the spin speed in radians per second.
func (n *Node) SetRotationSpeed(speed float64) {
	n.rotationSpeed = speed
}

// Radius returns the bounding sphere radius used by collision.
func (n *Node) Radius() float64 {
	return n.radius
}

// SetRadius sets the bounding sphere radius used by collision.
func (n *Node) SetRadius(r float64) {
	n.radius = r
}

// Mass returns the collision mass, 1 unless set.
func (n *Node) Mass() float64 {
	return n.mass
}

// SetMass sets the collision mass. Non-positive values reset it to 1.
func (n *Node) SetMass(m float64) {
	if m <= 0 {
		m = 1
	}
	n.mass = m
}

// Walk visits n and its descendants in pre-order. Returning false from fn
// skips the node's children.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, child := range n.children {
		child.Walk(fn)
	}
}

// Find returns the first node named name in pre-order, or nil.
func (n *Node) Find(name string) *Node {
	var found *Node
	n.Walk(func(c *Node) bool {
		if found != nil {
			return false
		}
		if c.Name == name {
			found = c
			return false
		}
		return true
	})
	return found
}

// Count returns the number of nodes in the subtree rooted at n.
func (n *Node) Count() int {
	count := 0
	n.Walk(func(*Node) bool {
		count++
		return true
	})
	return count
}
