package render

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taigrr/scenery/pkg/math3d"
)

func TestOrbitCameraStartsAtEye(t *testing.T) {
	eye := math3d.V3(4, 5, 14)
	c := NewOrbitCamera(eye, math3d.Zero3(), 60)

	assert.True(t, c.Position().NearlyEqual(eye, 1e-9), "position %v", c.Position())
	assert.True(t, c.Settled())

	// The view matrix takes the eye to the origin
	p := c.ViewMatrix().MulVec3(eye)
	assert.InDelta(t, 0, p.Len(), 1e-9)
}

func TestOrbitCameraEasesToGoal(t *testing.T) {
	c := NewOrbitCamera(math3d.V3(0, 0, 10), math3d.Zero3(), 60)
	c.Orbit(1, 0)
	c.Zoom(5)

	c.Update()
	assert.False(t, c.Settled())

	for range 600 {
		c.Update()
	}
	assert.True(t, c.Settled())
	assert.InDelta(t, 15, c.Position().Len(), 1e-3)
}

func TestOrbitCameraLimits(t *testing.T) {
	c := NewOrbitCamera(math3d.V3(0, 0, 10), math3d.Zero3(), 60)

	c.Orbit(0, 10)
	c.Zoom(-100)
	c.SetEye(math3d.V3(0, 0, 10))
	c.Orbit(0, 10)
	c.Zoom(1000)
	for range 600 {
		c.Update()
	}

	pos := c.Position()
	assert.InDelta(t, MaxDistance, pos.Len(), 1e-3)
	assert.Less(t, pos.Y, MaxDistance, "pitch stays below the pole")
	assert.Greater(t, pos.Y, 0.0)
}
