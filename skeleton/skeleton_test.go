package skeleton

import (
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/riftline/league_anm_browser/utils"
)

func simpleChain() *Skeleton {
	root := IdentityTransform()
	root.Translation = mgl32.Vec3{0, 1, 0}
	child := IdentityTransform()
	child.Translation = mgl32.Vec3{0, 2, 0}

	return &Skeleton{Bones: []BoneDescriptor{
		{Name: "Root", Parent: NO_PARENT, CurrentBindLocal: root},
		{Name: "Pelvis", Parent: 0, CurrentBindLocal: child},
	}}
}

func TestValidateAcceptsWellFormedChain(t *testing.T) {
	if err := simpleChain().Validate(); err != nil {
		t.Errorf("Validate() err = %v", err)
	}
}

func TestValidateRejectsBrokenArenas(t *testing.T) {
	tests := []struct {
		name  string
		bones []BoneDescriptor
	}{
		{"parentOutOfRange", []BoneDescriptor{
			{Name: "Root", Parent: 5, CurrentBindLocal: IdentityTransform()},
		}},
		{"selfParent", []BoneDescriptor{
			{Name: "Root", Parent: 0, CurrentBindLocal: IdentityTransform()},
		}},
		{"childBeforeParent", []BoneDescriptor{
			{Name: "Hand", Parent: 1, CurrentBindLocal: IdentityTransform()},
			{Name: "Arm", Parent: NO_PARENT, CurrentBindLocal: IdentityTransform()},
		}},
		{"hashCollision", []BoneDescriptor{
			{Name: "Root", Parent: NO_PARENT, CurrentBindLocal: IdentityTransform()},
			{Name: "ROOT", Parent: 0, CurrentBindLocal: IdentityTransform()},
		}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			s := &Skeleton{Bones: test.bones}
			if err := s.Validate(); errors.Cause(err) != ErrSkeletonIntegrity {
				t.Errorf("Validate() err = %v, want ErrSkeletonIntegrity", err)
			}
		})
	}
}

func TestJointIndexByHash(t *testing.T) {
	s := simpleChain()
	m := s.JointIndexByHash()

	for i, b := range s.Bones {
		h := utils.JointNameHash(b.Name)
		if m[h] != i {
			t.Errorf("index of %q = %d, want %d", b.Name, m[h], i)
		}
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := simpleChain()
	native := IdentityTransform()
	native.Rotation = mgl32.QuatRotate(0.5, mgl32.Vec3{0, 0, 1})
	s.Bones[1].NativeBind = &native

	path := filepath.Join(t.TempDir(), "skeleton.json")
	if err := s.SaveFile(path); err != nil {
		t.Fatalf("SaveFile() err = %v", err)
	}

	got, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() err = %v", err)
	}

	if len(got.Bones) != 2 {
		t.Fatalf("len(Bones) = %d, want 2", len(got.Bones))
	}
	if got.Bones[1].Name != "Pelvis" || got.Bones[1].Parent != 0 {
		t.Errorf("bone 1 = %+v", got.Bones[1])
	}
	if got.Bones[1].NativeBind == nil || got.Bones[1].NativeBind.Rotation != native.Rotation {
		t.Errorf("NativeBind = %+v, want %+v", got.Bones[1].NativeBind, native)
	}
	if got.Bones[0].NativeBind != nil {
		t.Errorf("bone 0 NativeBind = %+v, want nil", got.Bones[0].NativeBind)
	}
}

func TestLoadFileRejectsInvalidSkeleton(t *testing.T) {
	s := &Skeleton{Bones: []BoneDescriptor{
		{Name: "Root", Parent: 0, CurrentBindLocal: IdentityTransform()},
	}}

	path := filepath.Join(t.TempDir(), "skeleton.json")
	if err := s.SaveFile(path); err != nil {
		t.Fatalf("SaveFile() err = %v", err)
	}
	if _, err := LoadFile(path); errors.Cause(err) != ErrSkeletonIntegrity {
		t.Errorf("LoadFile() err = %v, want ErrSkeletonIntegrity", err)
	}
}
