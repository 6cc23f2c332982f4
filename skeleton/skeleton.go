package skeleton

import (
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/riftline/league_anm_browser/utils"
)

// ErrSkeletonIntegrity is the cause of every fatal skeleton defect:
// cyclic parent graphs, out-of-range parents, duplicate joint hashes.
// Raised before any matrix work begins.
var ErrSkeletonIntegrity = errors.New("skeleton integrity violation")

const NO_PARENT = -1

// Transform is a decomposed local transform, applied as translate, then
// rotate, then scale.
type Transform struct {
	Translation mgl32.Vec3 `json:"translation"`
	Rotation    mgl32.Quat `json:"rotation"`
	Scale       mgl32.Vec3 `json:"scale"`
}

func IdentityTransform() Transform {
	return Transform{
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	}
}

func (t Transform) Mat4() mgl32.Mat4 {
	return utils.TRSToMat4(t.Translation, t.Rotation, t.Scale)
}

// BoneDescriptor is one bone of the consuming skeleton's arena. Parents
// are stored before their children.
//
// NativeBind is the authoring-time rest transform, expressed in the
// authoring coordinate convention. FallbackBind is a generic bind
// transform already in the consumer convention, used when NativeBind is
// missing. CurrentBindLocal is the rest-local transform the consuming
// skeleton actually uses right now.
type BoneDescriptor struct {
	Name             string     `json:"name"`
	Parent           int        `json:"parent"`
	NativeBind       *Transform `json:"native_bind,omitempty"`
	FallbackBind     *Transform `json:"fallback_bind,omitempty"`
	CurrentBindLocal Transform  `json:"current_bind_local"`
}

type Skeleton struct {
	Bones []BoneDescriptor `json:"bones"`
}

// Validate checks the arena invariants: parent indices in range and
// stored before their children, no cycles, no joint-hash collisions.
func (s *Skeleton) Validate() error {
	hashes := make(map[uint32]string, len(s.Bones))

	for i := range s.Bones {
		b := &s.Bones[i]

		if b.Parent != NO_PARENT && (b.Parent < 0 || b.Parent >= len(s.Bones)) {
			return errors.Wrapf(ErrSkeletonIntegrity, "bone %q: parent index %d out of range", b.Name, b.Parent)
		}
		if b.Parent == i {
			return errors.Wrapf(ErrSkeletonIntegrity, "bone %q is its own parent", b.Name)
		}
		if b.Parent != NO_PARENT && b.Parent > i {
			return errors.Wrapf(ErrSkeletonIntegrity, "bone %q stored before its parent %d", b.Name, b.Parent)
		}

		h := utils.JointNameHash(b.Name)
		if other, exists := hashes[h]; exists {
			return errors.Wrapf(ErrSkeletonIntegrity, "joint hash collision 0x%.8x between %q and %q", h, other, b.Name)
		}
		hashes[h] = b.Name
	}

	// A parent chain longer than the arena can only loop.
	for i := range s.Bones {
		steps := 0
		for j := i; j != NO_PARENT; j = s.Bones[j].Parent {
			if steps++; steps > len(s.Bones) {
				return errors.Wrapf(ErrSkeletonIntegrity, "cyclic parent graph through bone %q", s.Bones[i].Name)
			}
		}
	}

	return nil
}

// JointIndexByHash maps joint-name hashes to bone indices. Valid only for
// a validated skeleton (hash collisions already rejected).
func (s *Skeleton) JointIndexByHash() map[uint32]int {
	m := make(map[uint32]int, len(s.Bones))
	for i := range s.Bones {
		m[utils.JointNameHash(s.Bones[i].Name)] = i
	}
	return m
}

func LoadFile(path string) (*Skeleton, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to read skeleton %q", path)
	}

	s := &Skeleton{}
	if err := json.Unmarshal(data, s); err != nil {
		return nil, errors.Wrapf(err, "Failed to unmarshal skeleton %q", path)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// SaveFile publishes the skeleton atomically: full write to a temp file
// in the target directory, then rename.
func (s *Skeleton) SaveFile(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return errors.Wrapf(err, "Failed to marshal skeleton")
	}

	tmp, err := ioutil.TempFile(filepath.Dir(path), ".skeleton-*")
	if err != nil {
		return errors.Wrapf(err, "Failed to create temp file")
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return errors.Wrapf(err, "Failed to write %q", tmp.Name())
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrapf(err, "Failed to close %q", tmp.Name())
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrapf(err, "Failed to publish %q", path)
	}
	return nil
}
