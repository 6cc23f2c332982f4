package anm

import (
	"log"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/riftline/league_anm_browser/config"
	"github.com/riftline/league_anm_browser/utils"
)

const (
	canmTransformRotation    = 0
	canmTransformTranslation = 1
	canmTransformScale       = 2
)

// Compressed container: global quantization bounds in the header, then a
// flat run of 10-byte records. Each record targets one (track, frame,
// transform-type) cell; records for the same track and frame merge into
// one sample.
func decodeCompressed(s *utils.Stream) (*Animation, error) {
	if err := s.Skip(12); err != nil { // resource size, token, flags
		return nil, errors.Wrapf(err, "Failed to skip resource header")
	}

	counts, err := s.ReadU32s(2)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to read joint/record counts")
	}
	jointCount, recordCount := int(counts[0]), int(counts[1])

	if err := s.Skip(4); err != nil { // jump cache count
		return nil, errors.Wrapf(err, "Failed to skip jump cache count")
	}

	times, err := s.ReadF32s(2)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to read duration/fps")
	}
	maxTime, fps := times[0], times[1]
	if fps == 0 {
		fps = 30
	}

	if err := s.Skip(24); err != nil { // rotation quantization properties
		return nil, errors.Wrapf(err, "Failed to skip quantization properties")
	}

	bounds, err := s.ReadF32s(12)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to read quantization bounds")
	}
	translationMin := mgl32.Vec3{bounds[0], bounds[1], bounds[2]}
	translationMax := mgl32.Vec3{bounds[3], bounds[4], bounds[5]}
	scaleMin := mgl32.Vec3{bounds[6], bounds[7], bounds[8]}
	scaleMax := mgl32.Vec3{bounds[9], bounds[10], bounds[11]}

	framesOffset, err := s.ReadI32()
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to read frames offset")
	}
	if err := s.Skip(4); err != nil { // jump caches offset
		return nil, errors.Wrapf(err, "Failed to skip jump caches offset")
	}
	jointHashesOffset, err := s.ReadI32()
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to read joint hashes offset")
	}

	if err := s.Seek(int(jointHashesOffset) + HEADER_RESERVED_SIZE); err != nil {
		return nil, errors.Wrapf(err, "Failed to seek joint hashes")
	}
	jointHashes, err := s.ReadU32s(jointCount)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to read joint hashes")
	}

	a := &Animation{
		Fps:        fps,
		Duration:   maxTime + 1/fps,
		FrameCount: int(math.Round(float64(maxTime * fps))),
		Tracks:     make([]*Track, jointCount),
	}
	for i, h := range jointHashes {
		a.Tracks[i] = newTrack(h)
	}

	if err := s.Seek(int(framesOffset) + HEADER_RESERVED_SIZE); err != nil {
		return nil, errors.Wrapf(err, "Failed to seek frame records")
	}

	importScale := config.GetImportScale()

	for i := 0; i < recordCount; i++ {
		compressedTime, err := s.ReadU16()
		if err != nil {
			return nil, errors.Wrapf(err, "Failed to read record %d time", i)
		}
		bits, err := s.ReadU16()
		if err != nil {
			return nil, errors.Wrapf(err, "Failed to read record %d selector", i)
		}
		payload, err := s.ReadBytes(6)
		if err != nil {
			return nil, errors.Wrapf(err, "Failed to read record %d payload", i)
		}

		trackIndex := int(bits & 0x3FFF)
		if trackIndex >= jointCount {
			log.Printf("[anm] canm record %d: track index %d out of %d, record skipped", i, trackIndex, jointCount)
			continue
		}

		time := float32(compressedTime) / 65535 * maxTime
		frame := int(math.Round(float64(time * fps)))
		track := a.Tracks[trackIndex]

		switch bits >> 14 {
		case canmTransformRotation:
			rotation := DecompressQuat(payload)
			track.sampleAt(frame).Rotation = &rotation
		case canmTransformTranslation:
			translation := lerpBounds(payload, translationMin, translationMax).Mul(importScale)
			track.sampleAt(frame).Translation = &translation
		case canmTransformScale:
			scale := lerpBounds(payload, scaleMin, scaleMax)
			track.sampleAt(frame).Scale = &scale
		default:
			log.Printf("[anm] canm record %d: unknown transform type %d, record skipped", i, bits>>14)
		}
	}

	return a, nil
}

// lerpBounds expands three 16-bit values into a vector lerped per axis
// between the header's quantization bounds.
func lerpBounds(raw []byte, min, max mgl32.Vec3) mgl32.Vec3 {
	var v mgl32.Vec3
	for i := 0; i < 3; i++ {
		stored := float32(uint16(raw[i*2]) | uint16(raw[i*2+1])<<8)
		v[i] = (max[i]-min[i])/65535*stored + min[i]
	}
	return v
}
