package scene

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taigrr/scenery/pkg/math3d"
)

// chain builds root -> a -> b with each child one unit further along +X.
func chain() (root, a, b *Node) {
	root = New("root")
	a = New("a")
	b = New("b")
	root.SetPosition(math3d.V3(1, 0, 0))
	a.SetPosition(math3d.V3(1, 0, 0))
	b.SetPosition(math3d.V3(1, 0, 0))
	root.AddChild(a)
	a.AddChild(b)
	return root, a, b
}

func TestNewNodeDefaults(t *testing.T) {
	n := New("n")

	assert.Equal(t, math3d.Identity(), n.Matrix())
	assert.Equal(t, math3d.V3(0, 0, -1), n.RotationAxis())
	assert.Equal(t, 1.0, n.Radius())
	assert.Equal(t, 1.0, n.Mass())
	assert.Zero(t, n.RotationAngle())
	assert.Zero(t, n.RotationSpeed())
	assert.Nil(t, n.Parent())
	assert.Empty(t, n.Children())
	assert.Equal(t, KindGroup, n.Kind)
}

func TestWorldMatrixChain(t *testing.T) {
	root, a, b := chain()

	assert.Equal(t, math3d.V3(1, 0, 0), root.WorldMatrix().Translation())
	assert.Equal(t, math3d.V3(2, 0, 0), a.WorldMatrix().Translation())
	assert.Equal(t, math3d.V3(3, 0, 0), b.WorldMatrix().Translation())
}

func TestWorldMatrixComposesRotation(t *testing.T) {
	root := New("root")
	child := New("child")
	root.AddChild(child)

	root.SetMatrix(math3d.RotateY(math.Pi / 2))
	child.SetPosition(math3d.V3(0, 0, 1))

	want := root.Matrix().Mul(child.Matrix())
	assert.True(t, child.WorldMatrix().NearlyEqual(want, 1e-12))
	// +Z rotated a quarter turn about Y lands on +X
	assert.True(t, child.WorldMatrix().Translation().NearlyEqual(math3d.V3(1, 0, 0), 1e-12))

	// No caching: moving the parent moves the child
	root.SetPosition(math3d.V3(0, 5, 0))
	assert.InDelta(t, 5, child.WorldMatrix().Translation().Y, 1e-12)
}

func TestAddChildPanics(t *testing.T) {
	root, a, b := chain()

	assert.PanicsWithValue(t, "scene: cannot add nil child", func() { root.AddChild(nil) })
	assert.PanicsWithValue(t, "scene: adding child would create a cycle", func() { b.AddChild(root) })
	assert.PanicsWithValue(t, "scene: adding child would create a cycle", func() { a.AddChild(a) })
}

func TestAddChildReparents(t *testing.T) {
	root, a, b := chain()

	root.AddChild(b)
	assert.Same(t, root, b.Parent())
	assert.Equal(t, 0, a.ChildCount())
	require.Equal(t, 2, root.ChildCount())
	assert.Same(t, a, root.ChildAt(0))
	assert.Same(t, b, root.ChildAt(1))
}

func TestRemoveChild(t *testing.T) {
	root, a, b := chain()

	assert.False(t, root.RemoveChild(b), "b is a grandchild")
	assert.False(t, root.RemoveChild(nil))
	assert.True(t, a.RemoveChild(b))
	assert.Nil(t, b.Parent())
	assert.False(t, b.Released())
	assert.Equal(t, 2, root.Count())
}

func TestRelease(t *testing.T) {
	root, a, b := chain()
	extra := New("extra")
	a.AddChild(extra)

	var order []string
	for _, n := range []*Node{root, a, b, extra} {
		n.OnRelease = func(n *Node) { order = append(order, n.Name) }
	}

	assert.Equal(t, 4, root.Release())
	assert.Equal(t, []string{"b", "extra", "a", "root"}, order)
	assert.True(t, b.Released())
	assert.Nil(t, b.Parent())

	assert.Zero(t, root.Release())
	assert.Zero(t, b.Release())
	assert.Len(t, order, 4)
}

func TestReleaseSubtreeDetaches(t *testing.T) {
	root, a, _ := chain()

	assert.Equal(t, 2, a.Release())
	assert.Equal(t, 0, root.ChildCount())
	assert.False(t, root.Released())
}

func TestFindWalkCount(t *testing.T) {
	root, a, b := chain()
	c := New("c")
	root.AddChild(c)

	assert.Same(t, b, root.Find("b"))
	assert.Nil(t, root.Find("missing"))
	assert.Nil(t, a.Find("c"))
	assert.Equal(t, 4, root.Count())

	var visited []string
	root.Walk(func(n *Node) bool {
		visited = append(visited, n.Name)
		return n != a
	})
	assert.Equal(t, []string{"root", "a", "c"}, visited)
}

func TestSetRotationAxisZeroFallsBack(t *testing.T) {
	n := New("n")
	n.SetRotationAxis(math3d.V3(0, 2, 0))
	assert.Equal(t, math3d.V3(0, 2, 0), n.RotationAxis())

	n.SetRotationAxis(math3d.Zero3())
	assert.Equal(t, DefaultRotationAxis, n.RotationAxis())
}

func TestSetMass(t *testing.T) {
	n := New("n")
	n.SetMass(3)
	assert.Equal(t, 3.0, n.Mass())
	n.SetMass(0)
	assert.Equal(t, 1.0, n.Mass())
}

func TestKindNames(t *testing.T) {
	for k := KindGroup; k <= KindMarker; k++ {
		got, ok := ParseKind(k.String())
		require.True(t, ok)
		assert.Equal(t, k, got)
	}
	_, ok := ParseKind("sprite")
	assert.False(t, ok)
}
