package utils

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// TRSToMat4 builds a local transform matrix: translate, then rotate, then
// scale.
func TRSToMat4(t mgl32.Vec3, r mgl32.Quat, s mgl32.Vec3) mgl32.Mat4 {
	return mgl32.Translate3D(t.X(), t.Y(), t.Z()).
		Mul4(r.Mat4()).
		Mul4(mgl32.Scale3D(s.X(), s.Y(), s.Z()))
}

// Mat4ToTRS decomposes an affine matrix into translation, rotation and
// non-uniform scale. A negative determinant is folded into the x axis.
func Mat4ToTRS(m mgl32.Mat4) (t mgl32.Vec3, r mgl32.Quat, s mgl32.Vec3) {
	t = m.Col(3).Vec3()

	c0 := m.Col(0).Vec3()
	c1 := m.Col(1).Vec3()
	c2 := m.Col(2).Vec3()

	s = mgl32.Vec3{c0.Len(), c1.Len(), c2.Len()}
	if m.Det() < 0 {
		s[0] = -s[0]
	}

	for i, v := range s {
		if v == 0 {
			s[i] = 1
		}
	}

	rot := mgl32.Mat3FromCols(
		c0.Mul(1/s[0]),
		c1.Mul(1/s[1]),
		c2.Mul(1/s[2]))
	r = mgl32.Mat4ToQuat(rot.Mat4()).Normalize()

	return t, r, s
}

// QuatAngularDistance returns the rotation angle in radians between two
// unit quaternions, double-cover aware. The dot product is accumulated in
// float64: acos is so steep near 1 that float32 rounding alone would
// inflate sub-quantization differences past any useful bound.
func QuatAngularDistance(a, b mgl32.Quat) float32 {
	d := float64(a.W)*float64(b.W) +
		float64(a.V.X())*float64(b.V.X()) +
		float64(a.V.Y())*float64(b.V.Y()) +
		float64(a.V.Z())*float64(b.V.Z())
	if d < 0 {
		d = -d
	}
	if d > 1 {
		d = 1
	}
	return float32(2 * math.Acos(d))
}
