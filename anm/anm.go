package anm

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/riftline/league_anm_browser/utils"
)

const (
	MAGIC_COMPRESSED   = "r3d2canm"
	MAGIC_UNCOMPRESSED = "r3d2anmd"
)

// Section offsets inside the containers are relative to the end of the
// 8-byte magic plus the 4-byte version, reserved for resource metadata.
const HEADER_RESERVED_SIZE = 12

// ErrUnsupportedFormat is the cause returned for an unrecognized magic tag
// or container version. No partial model is ever produced.
var ErrUnsupportedFormat = errors.New("unsupported animation container")

// Sample holds one frame's keyed components for one track. A nil component
// is not keyed at this frame; consumers fall back to the bone's native
// bind value, never to interpolation across the gap.
type Sample struct {
	Translation *mgl32.Vec3
	Rotation    *mgl32.Quat
	Scale       *mgl32.Vec3
}

// Track is a per-joint sparse sequence of samples keyed by frame index.
type Track struct {
	JointHash uint32
	Samples   map[int]*Sample
}

func newTrack(jointHash uint32) *Track {
	return &Track{
		JointHash: jointHash,
		Samples:   make(map[int]*Sample),
	}
}

func (t *Track) sampleAt(frame int) *Sample {
	if s, ok := t.Samples[frame]; ok {
		return s
	}
	s := &Sample{}
	t.Samples[frame] = s
	return s
}

// Animation is the uniform in-memory model every container variant decodes
// into. It is owned by the decoder that produced it and not mutated after.
type Animation struct {
	Fps        float32
	Duration   float32
	FrameCount int
	Tracks     []*Track
}

// Decode parses any of the supported container variants, dispatching on
// the magic tag and version integer.
func Decode(data []byte) (*Animation, error) {
	s := utils.NewStream(data)

	magic, err := s.ReadFixedASCII(8)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to read magic")
	}
	version, err := s.ReadU32()
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to read version")
	}

	switch magic {
	case MAGIC_COMPRESSED:
		return decodeCompressed(s)
	case MAGIC_UNCOMPRESSED:
		switch version {
		case 4:
			return decodeV4(s)
		case 5:
			return decodeV5(s)
		default:
			return decodeLegacy(s)
		}
	default:
		return nil, errors.Wrapf(ErrUnsupportedFormat, "magic %q version %d", magic, version)
	}
}

// DecodeLegacy parses the earliest container layout for streams that carry
// no recognizable magic tag at all. Decode stays strict; callers use this
// only when they know the provenance of the bytes.
func DecodeLegacy(data []byte) (*Animation, error) {
	s := utils.NewStream(data)
	if err := s.Seek(8); err != nil {
		return nil, errors.Wrapf(err, "Failed to skip tag field")
	}
	if _, err := s.ReadU32(); err != nil {
		return nil, errors.Wrapf(err, "Failed to read version")
	}
	return decodeLegacy(s)
}
