package retarget

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/riftline/league_anm_browser/anm"
	"github.com/riftline/league_anm_browser/skeleton"
	"github.com/riftline/league_anm_browser/utils"
)

// BoneTimeline is the sparse per-frame output for one bone: a component
// map has an entry only for frames where the source track keyed that
// component, plus the synthesized bind sample at frame 0.
type BoneTimeline struct {
	Translation map[int]mgl32.Vec3
	Rotation    map[int]mgl32.Quat
	Scale       map[int]mgl32.Vec3
}

func newBoneTimeline() *BoneTimeline {
	return &BoneTimeline{
		Translation: make(map[int]mgl32.Vec3),
		Rotation:    make(map[int]mgl32.Quat),
		Scale:       make(map[int]mgl32.Vec3),
	}
}

func (tl *BoneTimeline) empty() bool {
	return len(tl.Translation) == 0 && len(tl.Rotation) == 0 && len(tl.Scale) == 0
}

// Output holds retargeted local-space transforms relative to the current
// skeleton's rest pose, keyed by bone name. The consuming animation
// system turns these into its own keyframe representation.
type Output struct {
	Fps        float32
	FrameCount int
	Bones      map[string]*BoneTimeline
}

// Solve remaps native-space animation samples onto the current skeleton's
// local basis. Tracks without a matching bone are ignored: animations are
// authored against a superset of possible skeletons. A frameOffset of
// zero starts a fresh sequence and synthesizes an explicit bind-pose
// sample at frame 0 for every keyed bone; animation frames land at
// offset+frame+1.
func Solve(a *anm.Animation, skl *skeleton.Skeleton, frameOffset int) (*Output, error) {
	nativeGlobal, err := skl.NativeGlobalRest()
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to resolve native rest pose")
	}
	currentGlobal, err := skl.CurrentGlobalRest()
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to resolve current rest pose")
	}

	corrections := make([]mgl32.Mat4, len(skl.Bones))
	for i := range skl.Bones {
		corrections[i] = nativeGlobal[i].Inv().Mul4(currentGlobal[i])
	}

	// Last track wins on duplicate hashes within one file, matching the
	// upstream importer.
	tracks := make(map[uint32]*anm.Track, len(a.Tracks))
	for _, t := range a.Tracks {
		tracks[t.JointHash] = t
	}

	out := &Output{
		Fps:        a.Fps,
		FrameCount: a.FrameCount,
		Bones:      make(map[string]*BoneTimeline),
	}

	for i := range skl.Bones {
		bone := &skl.Bones[i]
		track := tracks[utils.JointNameHash(bone.Name)]
		if track == nil || len(track.Samples) == 0 {
			continue
		}

		correction := corrections[i]
		parentCorrectionInv := mgl32.Ident4()
		if bone.Parent != skeleton.NO_PARENT {
			parentCorrectionInv = corrections[bone.Parent].Inv()
		}
		restLocalInv := bone.CurrentBindLocal.Mat4().Inv()

		bind := skeleton.IdentityTransform()
		if bone.NativeBind != nil {
			bind = *bone.NativeBind
		}

		computeBasis := func(nativeLocalFixed mgl32.Mat4) (mgl32.Vec3, mgl32.Quat, mgl32.Vec3) {
			currentLocal := parentCorrectionInv.Mul4(nativeLocalFixed).Mul4(correction)
			return utils.Mat4ToTRS(restLocalInv.Mul4(currentLocal))
		}

		tl := newBoneTimeline()

		if frameOffset == 0 {
			t, r, sc := computeBasis(skeleton.CoordinateFix(bind.Mat4()))
			tl.Translation[0] = t
			tl.Rotation[0] = r
			tl.Scale[0] = sc
		}

		for f, sample := range track.Samples {
			pose := bind
			if sample.Translation != nil {
				pose.Translation = *sample.Translation
			}
			if sample.Rotation != nil {
				pose.Rotation = *sample.Rotation
			}
			if sample.Scale != nil {
				pose.Scale = *sample.Scale
			}

			t, r, sc := computeBasis(skeleton.CoordinateFix(pose.Mat4()))
			frame := frameOffset + f + 1

			if sample.Translation != nil {
				tl.Translation[frame] = t
			}
			if sample.Rotation != nil {
				tl.Rotation[frame] = r
			}
			if sample.Scale != nil {
				tl.Scale[frame] = sc
			}
		}

		if !tl.empty() {
			out.Bones[bone.Name] = tl
		}
	}

	return out, nil
}
