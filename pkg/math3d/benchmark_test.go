package math3d

import (
	"testing"
)

func BenchmarkMat4Mul(b *testing.B) {
	m1 := Translate(V3(1, 2, 3))
	m2 := RotateY(0.5)

	for b.Loop() {
		_ = m1.Mul(m2)
	}
}

func BenchmarkMat4MulVec4(b *testing.B) {
	m := Translate(V3(1, 2, 3)).Mul(RotateY(0.5))
	v := V4(1, 2, 3, 1)

	for b.Loop() {
		_ = m.MulVec4(v)
	}
}

func BenchmarkMat4Inverse(b *testing.B) {
	m := Translate(V3(1, 2, 3)).Mul(RotateY(0.5)).Mul(Scale(V3(2, 2, 2)))

	for b.Loop() {
		_ = m.Inverse()
	}
}

func BenchmarkNormalMatrix(b *testing.B) {
	m := Translate(V3(1, 2, 3)).Mul(Rotate(V3(1, 1, 0), 0.7)).Mul(Scale(V3(1, 3, 0.5)))

	for b.Loop() {
		_ = NormalMatrix(m)
	}
}

// BenchmarkWorldChain composes a five level parent chain the way the scene
// graph does every frame.
func BenchmarkWorldChain(b *testing.B) {
	var chain [5]Mat4
	for i := range chain {
		chain[i] = Translate(V3(1, 0, 0)).Mul(RotateY(0.1 * float64(i)))
	}

	for b.Loop() {
		w := Identity()
		for _, m := range chain {
			w = w.Mul(m)
		}
		_ = w
	}
}

func BenchmarkViewProjection(b *testing.B) {
	view := LookAt(V3(0, 0, 32), Zero3(), Up())
	proj := Perspective(0.61, 1.333, 1, 500)

	for b.Loop() {
		_ = proj.Mul(view)
	}
}
