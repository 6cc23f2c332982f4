package anm

import (
	"log"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/riftline/league_anm_browser/config"
	"github.com/riftline/league_anm_browser/utils"
)

const v5HeaderSize = 52

// Uncompressed v5: same palette structure as v4 but the quaternion palette
// is stored in the 48-bit packed form, and the track list is declared up
// front by an explicit joint-hash array. Frame records are in fixed track
// order and carry only the three palette indices.
func decodeV5(s *utils.Stream) (*Animation, error) {
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

	jointHashesOffset, err := s.ReadI32()
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to read joint hashes offset")
	}
	if err := s.Skip(8); err != nil { // asset name, time
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

	if vecsOffset > quatsOffset || quatsOffset > jointHashesOffset {
		return nil, errors.Errorf("Inconsistent section offsets %d %d %d", vecsOffset, quatsOffset, jointHashesOffset)
	}

	if err := s.Seek(int(jointHashesOffset) + HEADER_RESERVED_SIZE); err != nil {
		return nil, errors.Wrapf(err, "Failed to seek joint hashes")
	}
	jointHashes, err := s.ReadU32s(trackCount)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to read joint hashes")
	}

	vecPalette, err := readVectorPalette(s, int(vecsOffset), int(quatsOffset-vecsOffset)/12)
	if err != nil {
		return nil, err
	}

	quatCount := int(jointHashesOffset-quatsOffset) / 6
	if err := s.Seek(int(quatsOffset) + HEADER_RESERVED_SIZE); err != nil {
		return nil, errors.Wrapf(err, "Failed to seek quaternion palette")
	}
	quatPalette := make([]mgl32.Quat, quatCount)
	for i := range quatPalette {
		raw, err := s.ReadBytes(6)
		if err != nil {
			return nil, errors.Wrapf(err, "Failed to read quaternion %d", i)
		}
		quatPalette[i] = DecompressQuat(raw)
	}

	a := &Animation{
		Fps:        fps,
		Duration:   float32(frameCount) * frameDuration,
		FrameCount: frameCount,
		Tracks:     make([]*Track, trackCount),
	}
	for i, h := range jointHashes {
		a.Tracks[i] = newTrack(h)
	}

	if err := s.Seek(int(framesOffset) + HEADER_RESERVED_SIZE); err != nil {
		return nil, errors.Wrapf(err, "Failed to seek frame records")
	}

	scale := config.GetImportScale()

	for f := 0; f < frameCount; f++ {
		for t := 0; t < trackCount; t++ {
			indices, err := s.ReadU16s(3)
			if err != nil {
				return nil, errors.Wrapf(err, "Failed to read palette indices at frame %d track %d", f, t)
			}

			sample, ok := buildPaletteSample(vecPalette, quatPalette, indices, scale)
			if !ok {
				log.Printf("[anm] v5 frame %d track %d: palette index out of range, record skipped", f, t)
				continue
			}
			a.Tracks[t].Samples[f] = sample
		}
	}

	return a, nil
}
