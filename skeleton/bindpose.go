package skeleton

import (
	"github.com/go-gl/mathgl/mgl32"
)

// coordinateFix reconciles the authoring coordinate convention with the
// consuming one: X' = -x, Y' = -z, Z' = y.
var coordinateFix = mgl32.Mat4FromRows(
	mgl32.Vec4{-1, 0, 0, 0},
	mgl32.Vec4{0, 0, -1, 0},
	mgl32.Vec4{0, 1, 0, 0},
	mgl32.Vec4{0, 0, 0, 1},
)

var coordinateFixInv = coordinateFix.Inv()

// CoordinateFix conjugates a native-space matrix into the consumer
// convention: P * m * P^-1.
func CoordinateFix(m mgl32.Mat4) mgl32.Mat4 {
	return coordinateFix.Mul4(m).Mul4(coordinateFixInv)
}

func (s *Skeleton) nativeLocal(i int) mgl32.Mat4 {
	b := &s.Bones[i]
	if b.NativeBind != nil {
		return CoordinateFix(b.NativeBind.Mat4())
	}
	if b.FallbackBind != nil {
		// already consumer-space, no fix
		return b.FallbackBind.Mat4()
	}
	return mgl32.Ident4()
}

func (s *Skeleton) globalRest(local func(int) mgl32.Mat4) ([]mgl32.Mat4, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	// Parents precede children in the arena, so one forward pass settles
	// every global.
	globals := make([]mgl32.Mat4, len(s.Bones))
	for i := range s.Bones {
		if parent := s.Bones[i].Parent; parent != NO_PARENT {
			globals[i] = globals[parent].Mul4(local(i))
		} else {
			globals[i] = local(i)
		}
	}
	return globals, nil
}

// NativeGlobalRest reconstructs the global rest pose the animation data
// was authored against, independent of the skeleton's actual rest pose.
func (s *Skeleton) NativeGlobalRest() ([]mgl32.Mat4, error) {
	return s.globalRest(s.nativeLocal)
}

// CurrentGlobalRest composes the skeleton's actual rest pose from its
// current bind locals.
func (s *Skeleton) CurrentGlobalRest() ([]mgl32.Mat4, error) {
	return s.globalRest(func(i int) mgl32.Mat4 {
		return s.Bones[i].CurrentBindLocal.Mat4()
	})
}
