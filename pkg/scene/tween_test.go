package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tanema/gween/ease"

	"github.com/taigrr/scenery/pkg/math3d"
)

func TestTweenPosition(t *testing.T) {
	n := New("n")
	n.SetPosition(math3d.V3(0, 0, 0))
	n.AddTween(TweenPosition(math3d.V3(4, 2, -2), 1, ease.Linear))
	// the start is captured on the first update, not at construction
	n.SetPosition(math3d.V3(2, 0, 0))

	n.Update(0.5)
	assert.True(t, n.Position().NearlyEqual(math3d.V3(3, 1, -1), 1e-6))
	assert.Equal(t, 1, n.TweenCount())

	n.Update(0.5)
	assert.True(t, n.Position().NearlyEqual(math3d.V3(4, 2, -2), 1e-6))
	assert.Zero(t, n.TweenCount(), "finished tweens are dropped")
}

func TestTweenRotationSpeed(t *testing.T) {
	n := New("n")
	tw := TweenRotationSpeed(0, 4, 2, ease.Linear)
	n.AddTween(tw)

	n.Update(1)
	assert.InDelta(t, 2, n.RotationSpeed(), 1e-6)
	assert.False(t, tw.Done)

	n.Update(5)
	assert.InDelta(t, 4, n.RotationSpeed(), 1e-6)
	assert.True(t, tw.Done)
}

func TestTweenYoyo(t *testing.T) {
	var got []float64
	n := New("n")
	n.AddTween(TweenScalar(0, 10, 1, ease.Linear, func(_ *Node, v float64) {
		got = append(got, v)
	}).Yoyo())

	for range 4 {
		n.Update(0.5)
	}
	require.Len(t, got, 4)
	assert.InDeltaSlice(t, []float64{5, 10, 5, 0}, got, 1e-6)
	assert.Equal(t, 1, n.TweenCount(), "a yoyo never finishes")
}

func TestTweensKeepOrder(t *testing.T) {
	n := New("n")
	short := TweenScalar(0, 1, 0.1, ease.Linear, func(*Node, float64) {})
	long := TweenScalar(0, 1, 10, ease.Linear, func(*Node, float64) {})
	n.AddTween(short)
	n.AddTween(long)

	n.Update(0.2)
	require.Equal(t, 1, n.TweenCount())
	assert.Same(t, long, n.tweens[0])
}

func TestEasing(t *testing.T) {
	for name := range easings {
		fn, ok := Easing(name)
		assert.True(t, ok, name)
		assert.NotNil(t, fn, name)
	}
	_, ok := Easing("in-out-wobble")
	assert.False(t, ok)
}
