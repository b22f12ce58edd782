// Package physics resolves sphere-sphere contacts between bodies with
// impulse-based elastic collision.
package physics

import (
	"math"
	"math/rand"

	"github.com/taigrr/scenery/pkg/math3d"
)

// Body is anything with a bounding sphere and a velocity. *scene.Node
// satisfies it.
type Body interface {
	Position() math3d.Vec3
	SetPosition(math3d.Vec3)
	Velocity() math3d.Vec3
	SetVelocity(math3d.Vec3)
	Radius() float64
}

// Massive bodies report their own mass. Bodies without it weigh 1.
type Massive interface {
	Mass() float64
}

// Spinner bodies get a random spin after every contact.
type Spinner interface {
	SetRotationSpeed(float64)
}

const (
	// DefaultOvershoot scales the penetration depth so separated bodies end
	// just past touching.
	DefaultOvershoot = 1.001
	DefaultSpinMin   = -10.0
	DefaultSpinMax   = 10.0

	coincident = 1e-9
)

// Options configures a Resolver.
type Options struct {
	Overshoot float64
	SpinMin   float64
	SpinMax   float64

	// OrderedPairs tests every (i, j) with i != j, so each contact is
	// resolved twice per call. The default tests each unordered pair once.
	OrderedPairs bool

	// Rand drives the post-contact spin. Nil seeds a source from 1.
	Rand *rand.Rand
}

// DefaultOptions returns the options New uses when given none.
func DefaultOptions() Options {
	return Options{
		Overshoot: DefaultOvershoot,
		SpinMin:   DefaultSpinMin,
		SpinMax:   DefaultSpinMax,
	}
}

// Stats counts the work of one Resolve call.
type Stats struct {
	PairsTested int
	Contacts    int
}

// Resolver separates overlapping bodies and exchanges momentum along the
// contact normal. It is not safe for concurrent use.
type Resolver struct {
	opts Options
	rng  *rand.Rand
}

// New creates a resolver. Zero Overshoot selects DefaultOvershoot.
func New(opts Options) *Resolver {
	if opts.Overshoot == 0 {
		opts.Overshoot = DefaultOvershoot
	}
	if opts.SpinMin > opts.SpinMax {
		opts.SpinMin, opts.SpinMax = opts.SpinMax, opts.SpinMin
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &Resolver{opts: opts, rng: rng}
}

// Options returns the resolver's settings.
func (r *Resolver) Options() Options {
	return r.opts
}

// Resolve tests the bodies pairwise in order and resolves every overlap it
// finds. Positions and velocities are updated in place, so a later pair sees
// the result of an earlier one.
func (r *Resolver) Resolve(bodies []Body) Stats {
	var stats Stats
	for i := range bodies {
		start := i + 1
		if r.opts.OrderedPairs {
			start = 0
		}
		for j := start; j < len(bodies); j++ {
			if i == j {
				continue
			}
			stats.PairsTested++
			if r.collide(bodies[i], bodies[j]) {
				stats.Contacts++
			}
		}
	}
	return stats
}

// collide resolves a single pair and reports whether it was in contact.
func (r *Resolver) collide(a, b Body) bool {
	pa, pb := a.Position(), b.Position()
	d := pb.Sub(pa)
	dist := d.Len()
	reach := a.Radius() + b.Radius()
	if dist >= reach {
		return false
	}

	n := math3d.V3(1, 0, 0)
	if dist >= coincident {
		n = d.Scale(1 / dist)
	}

	half := (reach - dist) * r.opts.Overshoot * 0.5
	a.SetPosition(pa.Sub(n.Scale(half)))
	b.SetPosition(pb.Add(n.Scale(half)))

	ma, mb := mass(a), mass(b)
	va, vb := a.Velocity(), b.Velocity()
	p := 2 * (va.Dot(n) - vb.Dot(n)) / (ma + mb)
	a.SetVelocity(va.Sub(n.Scale(p * mb)))
	b.SetVelocity(vb.Add(n.Scale(p * ma)))

	r.spin(a)
	r.spin(b)
	return true
}

func (r *Resolver) spin(b Body) {
	s, ok := b.(Spinner)
	if !ok {
		return
	}
	s.SetRotationSpeed(math3d.RandRange(r.rng, r.opts.SpinMin, r.opts.SpinMax))
}

func mass(b Body) float64 {
	if m, ok := b.(Massive); ok {
		if v := m.Mass(); v > 0 && !math.IsInf(v, 0) {
			return v
		}
	}
	return 1
}

// Bodies converts a slice of concrete bodies for Resolve.
func Bodies[T Body](items []T) []Body {
	out := make([]Body, len(items))
	for i, it := range items {
		out[i] = it
	}
	return out
}
