package scene

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"github.com/taigrr/scenery/pkg/math3d"
)

// Tween animates up to three float64 values of a node. Add it with
// Node.AddTween; it runs after the node's behaviors and is dropped once it
// finishes, unless it was made to yoyo.
type Tween struct {
	tweens   [3]*gween.Tween
	count    int
	from, to [3]float32
	duration float32
	fn       ease.TweenFunc
	apply    func(n *Node, v [3]float64)
	capture  func(n *Node) [3]float32

	yoyo    bool
	started bool
	Done    bool
}

// TweenPosition moves the node from wherever it is when the tween starts
// to the given position.
func TweenPosition(to math3d.Vec3, duration float32, fn ease.TweenFunc) *Tween {
	return &Tween{
		count:    3,
		to:       [3]float32{float32(to.X), float32(to.Y), float32(to.Z)},
		duration: duration,
		fn:       fn,
		capture: func(n *Node) [3]float32 {
			p := n.Position()
			return [3]float32{float32(p.X), float32(p.Y), float32(p.Z)}
		},
		apply: func(n *Node, v [3]float64) {
			n.SetPosition(math3d.V3(v[0], v[1], v[2]))
		},
	}
}

// TweenScalar drives set from one value to another.
func TweenScalar(from, to float64, duration float32, fn ease.TweenFunc, set func(n *Node, v float64)) *Tween {
	return &Tween{
		count:    1,
		from:     [3]float32{float32(from)},
		to:       [3]float32{float32(to)},
		duration: duration,
		fn:       fn,
		apply: func(n *Node, v [3]float64) {
			set(n, v[0])
		},
	}
}

// TweenRotationSpeed ramps the node's spin speed.
func TweenRotationSpeed(from, to float64, duration float32, fn ease.TweenFunc) *Tween {
	return TweenScalar(from, to, duration, fn, (*Node).SetRotationSpeed)
}

// Yoyo makes the tween run back and forth forever.
func (t *Tween) Yoyo() *Tween {
	t.yoyo = true
	return t
}

func (t *Tween) start(n *Node) {
	if t.capture != nil {
		t.from = t.capture(n)
	}
	t.reset()
	t.started = true
}

func (t *Tween) reset() {
	for i := range t.count {
		t.tweens[i] = gween.New(t.from[i], t.to[i], t.duration, t.fn)
	}
}

// Update advances the tween by dt seconds and writes the values to n.
func (t *Tween) Update(n *Node, dt float64) {
	if t.Done {
		return
	}
	if !t.started {
		t.start(n)
	}

	var v [3]float64
	finished := true
	for i := range t.count {
		val, done := t.tweens[i].Update(float32(dt))
		v[i] = float64(val)
		if !done {
			finished = false
		}
	}
	t.apply(n, v)

	if !finished {
		return
	}
	if t.yoyo {
		t.from, t.to = t.to, t.from
		t.reset()
		return
	}
	t.Done = true
}

// AddTween attaches t to the node.
func (n *Node) AddTween(t *Tween) {
	n.tweens = append(n.tweens, t)
}

// TweenCount returns the number of running tweens.
func (n *Node) TweenCount() int {
	return len(n.tweens)
}

func (n *Node) updateTweens(dt float64) {
	if len(n.tweens) == 0 {
		return
	}
	live := n.tweens[:0]
	for _, t := range n.tweens {
		t.Update(n, dt)
		if !t.Done {
			live = append(live, t)
		}
	}
	clear(n.tweens[len(live):])
	n.tweens = live
}

var easings = map[string]ease.TweenFunc{
	"linear":       ease.Linear,
	"in-quad":      ease.InQuad,
	"out-quad":     ease.OutQuad,
	"in-out-quad":  ease.InOutQuad,
	"in-out-cubic": ease.InOutCubic,
	"out-cubic":    ease.OutCubic,
	"in-out-sine":  ease.InOutSine,
	"out-bounce":   ease.OutBounce,
	"out-elastic":  ease.OutElastic,
}

// Easing looks up an easing function by name, for example "in-out-sine".
func Easing(name string) (ease.TweenFunc, bool) {
	fn, ok := easings[name]
	return fn, ok
}
