package scene

import (
	"math"

	"github.com/taigrr/scenery/pkg/math3d"
)

// Behavior is a per-frame hook. Behaviors run in the order they were added,
// after the node's own motion and before its children update.
type Behavior func(n *Node, dt float64)

// AddBehavior appends b to the node's hooks.
func (n *Node) AddBehavior(b Behavior) {
	n.behaviors = append(n.behaviors, b)
}

// ClearBehaviors removes every hook and tween.
func (n *Node) ClearBehaviors() {
	n.behaviors = nil
	n.tweens = nil
}

// Gravity accelerates the node downward by g units per second squared.
func Gravity(g float64) Behavior {
	return func(n *Node, dt float64) {
		n.velocity.Y -= g * dt
	}
}

// BoxBounds keeps the node inside the cube [-limit, limit]³. On each axis
// that leaves it, the position is clamped to the wall and the velocity
// component is reflected.
func BoxBounds(limit float64) Behavior {
	return func(n *Node, _ float64) {
		pos := n.Position()
		for i := range 3 {
			p := pos.Axis(i)
			switch {
			case p > limit:
				pos = pos.WithAxis(i, limit)
				n.velocity = n.velocity.WithAxis(i, -math.Abs(n.velocity.Axis(i)))
			case p < -limit:
				pos = pos.WithAxis(i, -limit)
				n.velocity = n.velocity.WithAxis(i, math.Abs(n.velocity.Axis(i)))
			}
		}
		n.SetPosition(pos)
	}
}

// Follow copies target's result into the node position every frame.
func Follow(target func() math3d.Vec3) Behavior {
	return func(n *Node, _ float64) {
		n.SetPosition(target())
	}
}

// Orbit moves the node around the Y axis on an ellipse:
// (cos(a)*radiusX, height, sin(a)*radiusZ), with a advancing by speed
// radians per second.
func Orbit(radiusX, height, radiusZ, speed float64) Behavior {
	var angle float64
	return func(n *Node, dt float64) {
		angle = wrapAngle(angle + speed*dt)
		s, c := math.Sincos(angle)
		n.SetPosition(math3d.V3(c*radiusX, height, s*radiusZ))
	}
}
