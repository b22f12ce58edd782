package render

import (
	"math"

	"github.com/charmbracelet/harmonica"

	"github.com/taigrr/scenery/pkg/math3d"
)

// Orbit limits.
const (
	MaxPitch    = 1.5
	MinDistance = 2.0
	MaxDistance = 80.0
)

// orbitAxis is one camera parameter chasing its goal on a critically damped
// spring.
type orbitAxis struct {
	Value    float64
	Goal     float64
	velocity float64
	spring   harmonica.Spring
}

func newOrbitAxis(fps int, value float64) orbitAxis {
	return orbitAxis{
		Value: value,
		Goal:  value,
		// Frequency 6 settles in about a third of a second without overshoot
		spring: harmonica.NewSpring(harmonica.FPS(fps), 6.0, 1.0),
	}
}

func (a *orbitAxis) update() {
	a.Value, a.velocity = a.spring.Update(a.Value, a.velocity, a.Goal)
}

func (a *orbitAxis) snap(v float64) {
	a.Value, a.Goal, a.velocity = v, v, 0
}

// OrbitCamera circles a target point. Yaw and pitch are in radians, yaw 0
// looks down -Z. Orbit and Zoom move the goals; Update eases toward them
// once per frame.
type OrbitCamera struct {
	Target math3d.Vec3

	// Projection parameters
	FOV    float64 // Vertical field of view in radians
	Aspect float64 // Width / Height
	Near   float64
	Far    float64

	yaw, pitch, distance orbitAxis
}

// NewOrbitCamera creates a camera at eye looking at target, with springs
// stepped at fps.
func NewOrbitCamera(eye, target math3d.Vec3, fps int) *OrbitCamera {
	c := &OrbitCamera{
		Target: target,
		FOV:    0.61,
		Aspect: 4.0 / 3.0,
		Near:   1,
		Far:    500,
	}
	yaw, pitch, dist := orbitFromEye(eye, target)
	c.yaw = newOrbitAxis(fps, yaw)
	c.pitch = newOrbitAxis(fps, pitch)
	c.distance = newOrbitAxis(fps, dist)
	return c
}

// orbitFromEye converts an eye position into yaw, pitch and distance.
func orbitFromEye(eye, target math3d.Vec3) (yaw, pitch, dist float64) {
	d := eye.Sub(target)
	dist = d.Len()
	if dist == 0 {
		return 0, 0, MinDistance
	}
	yaw = math.Atan2(d.X, d.Z)
	pitch = math.Asin(d.Y / dist)
	return yaw, pitch, dist
}

// SetEye places the camera at eye immediately.
func (c *OrbitCamera) SetEye(eye math3d.Vec3) {
	yaw, pitch, dist := orbitFromEye(eye, c.Target)
	c.yaw.snap(yaw)
	c.pitch.snap(pitch)
	c.distance.snap(dist)
}

// Orbit moves the yaw and pitch goals.
func (c *OrbitCamera) Orbit(dYaw, dPitch float64) {
	c.yaw.Goal += dYaw
	c.pitch.Goal = math.Max(-MaxPitch, math.Min(MaxPitch, c.pitch.Goal+dPitch))
}

// Zoom moves the distance goal by delta.
func (c *OrbitCamera) Zoom(delta float64) {
	c.distance.Goal = math.Max(MinDistance, math.Min(MaxDistance, c.distance.Goal+delta))
}

// Update advances the springs one frame.
func (c *OrbitCamera) Update() {
	c.yaw.update()
	c.pitch.update()
	c.distance.update()
}

// Settled reports whether every spring has reached its goal.
func (c *OrbitCamera) Settled() bool {
	const eps = 1e-4
	for _, a := range []*orbitAxis{&c.yaw, &c.pitch, &c.distance} {
		if math.Abs(a.Value-a.Goal) > eps || math.Abs(a.velocity) > eps {
			return false
		}
	}
	return true
}

// Position returns the eye position.
func (c *OrbitCamera) Position() math3d.Vec3 {
	sy, cy := math.Sincos(c.yaw.Value)
	sp, cp := math.Sincos(c.pitch.Value)
	return c.Target.Add(math3d.V3(cp*sy, sp, cp*cy).Scale(c.distance.Value))
}

// ViewMatrix returns the world-to-eye transform.
func (c *OrbitCamera) ViewMatrix() math3d.Mat4 {
	return math3d.LookAt(c.Position(), c.Target, math3d.Up())
}

// ProjectionMatrix returns the perspective projection.
func (c *OrbitCamera) ProjectionMatrix() math3d.Mat4 {
	return math3d.Perspective(c.FOV, c.Aspect, c.Near, c.Far)
}
