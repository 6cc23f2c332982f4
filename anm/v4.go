package anm

import (
	"log"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/riftline/league_anm_browser/config"
	"github.com/riftline/league_anm_browser/utils"
)

const v4HeaderSize = 52

// Uncompressed v4: shared vector palette (translations and scales) plus a
// full-precision quaternion palette. Frame records carry an inline joint
// hash; tracks are discovered the first time a hash shows up.
func decodeV4(s *utils.Stream) (*Animation, error) {
	if err := s.Skip(16); err != nil { // resource size, token, version, flags
		return nil, errors.Wrapf(err, "Failed to skip resource header")
	}

	counts, err := s.ReadU32s(2)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to read track/frame counts")
	}
	trackCount, frameCount := int(counts[0]), int(counts[1])

	frameDuration, err := s.ReadF32()
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to read frame duration")
	}
	fps := float32(30)
	if frameDuration != 0 {
		fps = 1 / frameDuration
	}

	if err := s.Skip(12); err != nil {
		return nil, errors.Wrapf(err, "Failed to skip header tail")
	}

	vecsOffset, err := s.ReadI32()
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to read vector palette offset")
	}
	quatsOffset, err := s.ReadI32()
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to read quaternion palette offset")
	}
	framesOffset, err := s.ReadI32()
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to read frames offset")
	}

	if vecsOffset > quatsOffset || quatsOffset > framesOffset {
		return nil, errors.Errorf("Inconsistent section offsets %d %d %d", vecsOffset, quatsOffset, framesOffset)
	}

	vecPalette, err := readVectorPalette(s, int(vecsOffset), int(quatsOffset-vecsOffset)/12)
	if err != nil {
		return nil, err
	}

	quatCount := int(framesOffset-quatsOffset) / 16
	if err := s.Seek(int(quatsOffset) + HEADER_RESERVED_SIZE); err != nil {
		return nil, errors.Wrapf(err, "Failed to seek quaternion palette")
	}
	quatPalette := make([]mgl32.Quat, quatCount)
	for i := range quatPalette {
		q, err := s.ReadF32s(4) // x y z w
		if err != nil {
			return nil, errors.Wrapf(err, "Failed to read quaternion %d", i)
		}
		quatPalette[i] = mgl32.Quat{W: q[3], V: mgl32.Vec3{q[0], q[1], q[2]}}
	}

	a := &Animation{
		Fps:        fps,
		Duration:   float32(frameCount) * frameDuration,
		FrameCount: frameCount,
	}

	if err := s.Seek(int(framesOffset) + HEADER_RESERVED_SIZE); err != nil {
		return nil, errors.Wrapf(err, "Failed to seek frame records")
	}

	scale := config.GetImportScale()
	hashToTrack := make(map[uint32]*Track)

	for f := 0; f < frameCount; f++ {
		for t := 0; t < trackCount; t++ {
			jointHash, err := s.ReadU32()
			if err != nil {
				return nil, errors.Wrapf(err, "Failed to read joint hash at frame %d", f)
			}
			indices, err := s.ReadU16s(3)
			if err != nil {
				return nil, errors.Wrapf(err, "Failed to read palette indices at frame %d", f)
			}
			if err := s.Skip(2); err != nil { // padding
				return nil, errors.Wrapf(err, "Failed to skip record padding at frame %d", f)
			}

			sample, ok := buildPaletteSample(vecPalette, quatPalette, indices, scale)
			if !ok {
				log.Printf("[anm] v4 frame %d joint 0x%.8x: palette index out of range, record skipped", f, jointHash)
				continue
			}

			track, ok := hashToTrack[jointHash]
			if !ok {
				track = newTrack(jointHash)
				hashToTrack[jointHash] = track
				a.Tracks = append(a.Tracks, track)
			}
			track.Samples[f] = sample
		}
	}

	return a, nil
}

func readVectorPalette(s *utils.Stream, offset, count int) ([]mgl32.Vec3, error) {
	if count < 0 {
		return nil, errors.Errorf("Negative vector palette size %d", count)
	}
	if err := s.Seek(offset + HEADER_RESERVED_SIZE); err != nil {
		return nil, errors.Wrapf(err, "Failed to seek vector palette")
	}
	palette := make([]mgl32.Vec3, count)
	for i := range palette {
		v, err := s.ReadF32s(3)
		if err != nil {
			return nil, errors.Wrapf(err, "Failed to read vector %d", i)
		}
		palette[i] = mgl32.Vec3{v[0], v[1], v[2]}
	}
	return palette, nil
}

// buildPaletteSample resolves (translation, scale, rotation) palette
// indices into a dense sample. Translation is the only component the
// import scale applies to.
func buildPaletteSample(vecs []mgl32.Vec3, quats []mgl32.Quat, indices []uint16, scale float32) (*Sample, bool) {
	ti, si, ri := int(indices[0]), int(indices[1]), int(indices[2])
	if ti >= len(vecs) || si >= len(vecs) || ri >= len(quats) {
		return nil, false
	}

	translation := vecs[ti].Mul(scale)
	scaleVec := vecs[si]
	rotation := quats[ri]

	return &Sample{
		Translation: &translation,
		Rotation:    &rotation,
		Scale:       &scaleVec,
	}, true
}
