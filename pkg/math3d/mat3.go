package math3d

import "github.com/go-gl/mathgl/mgl64"

// Mat3 is a 3x3 column-major matrix. The renderer uses it to carry normals
// from model space into world space.
type Mat3 [9]float64

// Identity3 returns the 3x3 identity.
func Identity3() Mat3 {
	return Mat3{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	}
}

// Upper3 returns the rotation and scale block of m.
func (m Mat4) Upper3() Mat3 {
	return Mat3(mgl64.Mat4(m).Mat3())
}

// NormalMatrix returns the inverse transpose of the upper 3x3 block of m.
// Normals transformed by it stay perpendicular to surfaces under non-uniform
// scale. A singular block falls back to the block itself.
func NormalMatrix(m Mat4) Mat3 {
	upper := mgl64.Mat4(m).Mat3()
	if upper.Det() == 0 {
		return Mat3(upper)
	}
	return Mat3(upper.Inv().Transpose())
}

// MulVec3 returns m * v.
func (m Mat3) MulVec3(v Vec3) Vec3 {
	return Vec3{
		m[0]*v.X + m[3]*v.Y + m[6]*v.Z,
		m[1]*v.X + m[4]*v.Y + m[7]*v.Z,
		m[2]*v.X + m[5]*v.Y + m[8]*v.Z,
	}
}

// Transpose returns the transposed matrix.
func (m Mat3) Transpose() Mat3 {
	return Mat3(mgl64.Mat3(m).Transpose())
}
