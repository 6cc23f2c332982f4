package anm

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/riftline/league_anm_browser/config"
	"github.com/riftline/league_anm_browser/utils"
)

// Legacy layout: a flat list of named tracks, each followed by a dense
// run of full-precision (quaternion, translation) samples. Joint ids are
// derived by hashing the stored names; scale is never keyed and fixed to
// one.
func decodeLegacy(s *utils.Stream) (*Animation, error) {
	if err := s.Skip(4); err != nil { // skeleton id
		return nil, errors.Wrapf(err, "Failed to skip skeleton id")
	}

	counts, err := s.ReadU32s(2)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to read track/frame counts")
	}
	trackCount, frameCount := int(counts[0]), int(counts[1])

	fpsRaw, err := s.ReadU32()
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to read fps")
	}
	fps := float32(fpsRaw)
	if fps == 0 {
		fps = 30
	}

	a := &Animation{
		Fps:        fps,
		Duration:   float32(frameCount) / fps,
		FrameCount: frameCount,
		Tracks:     make([]*Track, 0, trackCount),
	}

	scale := config.GetImportScale()
	one := mgl32.Vec3{1, 1, 1}

	for i := 0; i < trackCount; i++ {
		name, err := s.ReadFixedASCII(32)
		if err != nil {
			return nil, errors.Wrapf(err, "Failed to read name of track %d", i)
		}
		if err := s.Skip(4); err != nil { // flags
			return nil, errors.Wrapf(err, "Failed to skip flags of track %d", i)
		}

		track := newTrack(utils.JointNameHash(name))
		a.Tracks = append(a.Tracks, track)

		for f := 0; f < frameCount; f++ {
			values, err := s.ReadF32s(7)
			if err != nil {
				return nil, errors.Wrapf(err, "Failed to read track %d frame %d", i, f)
			}

			rotation := mgl32.Quat{W: values[3], V: mgl32.Vec3{values[0], values[1], values[2]}}
			translation := mgl32.Vec3{values[4], values[5], values[6]}.Mul(scale)
			scaleVec := one

			track.Samples[f] = &Sample{
				Translation: &translation,
				Rotation:    &rotation,
				Scale:       &scaleVec,
			}
		}
	}

	return a, nil
}
