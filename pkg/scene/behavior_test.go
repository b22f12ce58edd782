package scene

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taigrr/scenery/pkg/math3d"
)

func TestGravity(t *testing.T) {
	n := New("n")
	n.AddBehavior(Gravity(10))

	n.Update(0.5)
	assert.InDelta(t, -5, n.Velocity().Y, 1e-12)
	// position moves with the velocity from before the behavior ran
	assert.Zero(t, n.Position().Y)

	n.Update(0.5)
	assert.InDelta(t, -2.5, n.Position().Y, 1e-12)
}

func TestBoxBounds(t *testing.T) {
	tests := []struct {
		name    string
		pos     math3d.Vec3
		vel     math3d.Vec3
		wantPos math3d.Vec3
		wantVel math3d.Vec3
	}{
		{"inside", math3d.V3(1, 2, 3), math3d.V3(1, 1, 1), math3d.V3(1, 2, 3), math3d.V3(1, 1, 1)},
		{"past max x", math3d.V3(12, 0, 0), math3d.V3(3, 1, 0), math3d.V3(10, 0, 0), math3d.V3(-3, 1, 0)},
		{"past min y", math3d.V3(0, -11, 0), math3d.V3(0, -2, 0), math3d.V3(0, -10, 0), math3d.V3(0, 2, 0)},
		{"already heading back", math3d.V3(0, 0, 10.5), math3d.V3(0, 0, -1), math3d.V3(0, 0, 10), math3d.V3(0, 0, -1)},
		{"corner", math3d.V3(-20, 20, 0), math3d.V3(-1, 1, 0), math3d.V3(-10, 10, 0), math3d.V3(1, -1, 0)},
	}

	bounds := BoxBounds(10)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := New("n")
			n.SetPosition(tt.pos)
			n.SetVelocity(tt.vel)
			bounds(n, 0)
			assert.Equal(t, tt.wantPos, n.Position())
			assert.Equal(t, tt.wantVel, n.Velocity())
		})
	}
}

func TestFollow(t *testing.T) {
	target := New("target")
	target.SetPosition(math3d.V3(3, 4, 5))
	n := New("n")
	n.AddBehavior(Follow(target.Position))

	n.Update(0.1)
	assert.Equal(t, math3d.V3(3, 4, 5), n.Position())
}

func TestOrbit(t *testing.T) {
	n := New("light")
	n.AddBehavior(Orbit(1, 0.9, 6, 1))

	n.Update(math.Pi / 2)
	assert.True(t, n.Position().NearlyEqual(math3d.V3(0, 0.9, 6), 1e-12))

	n.Update(math.Pi / 2)
	assert.True(t, n.Position().NearlyEqual(math3d.V3(-1, 0.9, 0), 1e-12))
}

func TestClearBehaviors(t *testing.T) {
	n := New("n")
	n.AddBehavior(Gravity(1))
	n.AddTween(TweenRotationSpeed(0, 1, 1, nil))
	n.ClearBehaviors()

	n.Update(1)
	assert.Equal(t, math3d.Zero3(), n.Velocity())
	assert.Zero(t, n.TweenCount())
}
