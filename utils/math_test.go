package utils

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func vec3Near(a, b mgl32.Vec3, eps float32) bool {
	return a.Sub(b).Len() < eps
}

func TestMat4ToTRSRoundTrip(t *testing.T) {
	tests := []struct {
		name        string
		translation mgl32.Vec3
		rotation    mgl32.Quat
		scale       mgl32.Vec3
	}{
		{"identity", mgl32.Vec3{}, mgl32.QuatIdent(), mgl32.Vec3{1, 1, 1}},
		{"translated", mgl32.Vec3{1, -2, 3}, mgl32.QuatIdent(), mgl32.Vec3{1, 1, 1}},
		{"rotated", mgl32.Vec3{}, mgl32.QuatRotate(math.Pi / 3, mgl32.Vec3{0, 1, 0}), mgl32.Vec3{1, 1, 1}},
		{"scaled", mgl32.Vec3{}, mgl32.QuatIdent(), mgl32.Vec3{2, 0.5, 3}},
		{"combined", mgl32.Vec3{5, 0, -1}, mgl32.QuatRotate(0.7, mgl32.Vec3{1, 0, 0}.Normalize()), mgl32.Vec3{1.5, 1.5, 1.5}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			m := TRSToMat4(test.translation, test.rotation, test.scale)
			translation, rotation, scale := Mat4ToTRS(m)

			if !vec3Near(translation, test.translation, 1e-5) {
				t.Errorf("translation = %v, want %v", translation, test.translation)
			}
			if d := QuatAngularDistance(rotation, test.rotation); d > 1e-3 {
				t.Errorf("rotation = %v, want %v (angular distance %v)", rotation, test.rotation, d)
			}
			if !vec3Near(scale, test.scale, 1e-4) {
				t.Errorf("scale = %v, want %v", scale, test.scale)
			}
		})
	}
}

func TestQuatAngularDistanceResolvesTinyAngles(t *testing.T) {
	// Half a 15-bit quantization step on two components. A float32 dot
	// product rounds to 0.99999994 here and reports ~6.9e-4 rad; the
	// real angle is around 6e-5.
	q := mgl32.QuatRotate(math.Pi/2, mgl32.Vec3{1, 0, 0})
	p := mgl32.Quat{
		W: q.W,
		V: mgl32.Vec3{q.V.X(), 2.1576881e-5, 2.1576881e-5},
	}.Normalize()

	if d := QuatAngularDistance(q, p); d > 1e-4 {
		t.Errorf("distance = %v, want < 1e-4", d)
	}
}

func TestQuatAngularDistanceDoubleCover(t *testing.T) {
	q := mgl32.QuatRotate(1.2, mgl32.Vec3{0, 0, 1})
	negated := mgl32.Quat{W: -q.W, V: q.V.Mul(-1)}

	if d := QuatAngularDistance(q, negated); d > 1e-6 {
		t.Errorf("distance to negated quaternion = %v, want 0", d)
	}
	if d := QuatAngularDistance(q, mgl32.QuatIdent()); math.Abs(float64(d)-1.2) > 1e-5 {
		t.Errorf("distance to identity = %v, want 1.2", d)
	}
}
