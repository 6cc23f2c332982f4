package anm

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/riftline/league_anm_browser/config"
	"github.com/riftline/league_anm_browser/utils"
)

// The uncompressed layouts have no encoding for an absent component, so a
// sparse model is densified with identity defaults on write. Translations
// are divided by the import scale, mirroring the multiply on decode.
type paletteBuilder struct {
	vecIndex  map[mgl32.Vec3]uint16
	vecs      []mgl32.Vec3
	quatIndex map[[6]byte]uint16
	quats     [][6]byte
	rawIndex  map[mgl32.Quat]uint16
	raws      []mgl32.Quat
}

func newPaletteBuilder() *paletteBuilder {
	return &paletteBuilder{
		vecIndex:  make(map[mgl32.Vec3]uint16),
		quatIndex: make(map[[6]byte]uint16),
		rawIndex:  make(map[mgl32.Quat]uint16),
	}
}

func (p *paletteBuilder) vec(v mgl32.Vec3) (uint16, error) {
	if idx, ok := p.vecIndex[v]; ok {
		return idx, nil
	}
	if len(p.vecs) > math.MaxUint16 {
		return 0, errors.Errorf("Vector palette overflow at %d entries", len(p.vecs))
	}
	idx := uint16(len(p.vecs))
	p.vecIndex[v] = idx
	p.vecs = append(p.vecs, v)
	return idx, nil
}

func (p *paletteBuilder) quatPacked(q mgl32.Quat) (uint16, error) {
	packed := CompressQuat(q)
	if idx, ok := p.quatIndex[packed]; ok {
		return idx, nil
	}
	if len(p.quats) > math.MaxUint16 {
		return 0, errors.Errorf("Quaternion palette overflow at %d entries", len(p.quats))
	}
	idx := uint16(len(p.quats))
	p.quatIndex[packed] = idx
	p.quats = append(p.quats, packed)
	return idx, nil
}

func (p *paletteBuilder) quatRaw(q mgl32.Quat) (uint16, error) {
	if idx, ok := p.rawIndex[q]; ok {
		return idx, nil
	}
	if len(p.raws) > math.MaxUint16 {
		return 0, errors.Errorf("Quaternion palette overflow at %d entries", len(p.raws))
	}
	idx := uint16(len(p.raws))
	p.rawIndex[q] = idx
	p.raws = append(p.raws, q)
	return idx, nil
}

func sampleComponents(t *Track, frame int, invScale float32) (mgl32.Vec3, mgl32.Quat, mgl32.Vec3) {
	translation := mgl32.Vec3{}
	rotation := mgl32.QuatIdent()
	scale := mgl32.Vec3{1, 1, 1}

	if s, ok := t.Samples[frame]; ok {
		if s.Translation != nil {
			translation = s.Translation.Mul(invScale)
		}
		if s.Rotation != nil {
			rotation = *s.Rotation
		}
		if s.Scale != nil {
			scale = *s.Scale
		}
	}
	return translation, rotation, scale
}

type frameRecord struct {
	jointHash   uint32
	translation uint16
	scale       uint16
	rotation    uint16
}

func buildRecords(a *Animation, p *paletteBuilder, packed bool) ([]frameRecord, error) {
	invScale := 1 / config.GetImportScale()

	records := make([]frameRecord, 0, a.FrameCount*len(a.Tracks))
	for f := 0; f < a.FrameCount; f++ {
		for _, track := range a.Tracks {
			translation, rotation, scale := sampleComponents(track, f, invScale)

			ti, err := p.vec(translation)
			if err != nil {
				return nil, err
			}
			si, err := p.vec(scale)
			if err != nil {
				return nil, err
			}
			var ri uint16
			if packed {
				ri, err = p.quatPacked(rotation)
			} else {
				ri, err = p.quatRaw(rotation)
			}
			if err != nil {
				return nil, err
			}

			records = append(records, frameRecord{
				jointHash:   track.JointHash,
				translation: ti,
				scale:       si,
				rotation:    ri,
			})
		}
	}
	return records, nil
}

func frameDurationOf(a *Animation) float32 {
	if a.Fps != 0 {
		return 1 / a.Fps
	}
	return 1.0 / 30
}

// WriteV5 serializes the model to the quantized-palette v5 container.
// A write-then-read trip reconstructs an equivalent model within the
// 48-bit codec's quantization error.
func WriteV5(a *Animation) ([]byte, error) {
	p := newPaletteBuilder()
	records, err := buildRecords(a, p, true)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to build v5 palettes")
	}

	trackCount := len(a.Tracks)
	vecsOffset := v5HeaderSize
	quatsOffset := vecsOffset + len(p.vecs)*12
	jointHashesOffset := quatsOffset + len(p.quats)*6
	framesOffset := jointHashesOffset + trackCount*4

	s := utils.NewWriteStream()
	s.WriteFixedASCII(MAGIC_UNCOMPRESSED, 8)
	s.WriteU32(5)
	s.WriteZeroes(16) // resource size, token, version, flags
	s.WriteU32(uint32(trackCount))
	s.WriteU32(uint32(a.FrameCount))
	s.WriteF32(frameDurationOf(a))
	s.WriteI32(int32(jointHashesOffset))
	s.WriteZeroes(8) // asset name, time
	s.WriteI32(int32(vecsOffset))
	s.WriteI32(int32(quatsOffset))
	s.WriteI32(int32(framesOffset))

	for _, v := range p.vecs {
		s.WriteF32(v.X())
		s.WriteF32(v.Y())
		s.WriteF32(v.Z())
	}
	for _, q := range p.quats {
		s.WriteBytes(q[:])
	}
	for _, track := range a.Tracks {
		s.WriteU32(track.JointHash)
	}
	for _, r := range records {
		s.WriteU16(r.translation)
		s.WriteU16(r.scale)
		s.WriteU16(r.rotation)
	}

	return s.Bytes(), nil
}

// WriteV4 serializes the model to the full-precision-palette v4 container
// with inline joint hashes. The write-then-read trip is exact.
func WriteV4(a *Animation) ([]byte, error) {
	p := newPaletteBuilder()
	records, err := buildRecords(a, p, false)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to build v4 palettes")
	}

	vecsOffset := v4HeaderSize
	quatsOffset := vecsOffset + len(p.vecs)*12
	framesOffset := quatsOffset + len(p.raws)*16

	s := utils.NewWriteStream()
	s.WriteFixedASCII(MAGIC_UNCOMPRESSED, 8)
	s.WriteU32(4)
	s.WriteZeroes(16) // resource size, token, version, flags
	s.WriteU32(uint32(len(a.Tracks)))
	s.WriteU32(uint32(a.FrameCount))
	s.WriteF32(frameDurationOf(a))
	s.WriteZeroes(12)
	s.WriteI32(int32(vecsOffset))
	s.WriteI32(int32(quatsOffset))
	s.WriteI32(int32(framesOffset))

	for _, v := range p.vecs {
		s.WriteF32(v.X())
		s.WriteF32(v.Y())
		s.WriteF32(v.Z())
	}
	for _, q := range p.raws {
		s.WriteF32(q.X())
		s.WriteF32(q.Y())
		s.WriteF32(q.Z())
		s.WriteF32(q.W)
	}
	for _, r := range records {
		s.WriteU32(r.jointHash)
		s.WriteU16(r.translation)
		s.WriteU16(r.scale)
		s.WriteU16(r.rotation)
		s.WriteZeroes(2)
	}

	return s.Bytes(), nil
}
