package scene

import (
	"math"

	"github.com/taigrr/scenery/pkg/math3d"
)

// minRotationSpeed is the spin speed below which Update leaves the local
// rotation alone.
const minRotationSpeed = 1e-5

// Update advances n and its subtree by dt seconds: position integrates
// velocity, spinning nodes rebuild their rotation from the current phase and
// advance it, then behaviors and tweens run. Children update after their
// parent, in order.
func (n *Node) Update(dt float64) {
	pos := n.Position().Add(n.velocity.Scale(dt))

	if math.Abs(n.rotationSpeed) > minRotationSpeed {
		n.local = math3d.Rotate(n.rotationAxis.Normalize(), n.rotationAngle)
		n.rotationAngle = wrapAngle(n.rotationAngle + n.rotationSpeed*dt)
	}

	n.local.SetTranslation(pos)

	for _, b := range n.behaviors {
		b(n, dt)
	}
	n.updateTweens(dt)

	for _, child := range n.children {
		child.Update(dt)
	}
}

// wrapAngle maps a into [0, 2π).
func wrapAngle(a float64) float64 {
	const twoPi = 2 * math.Pi
	a = math.Mod(a, twoPi)
	if a < 0 {
		a += twoPi
	}
	// a tiny negative input rounds up to exactly 2π
	if a >= twoPi {
		a = 0
	}
	return a
}
