package anm

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/riftline/league_anm_browser/utils"
)

func buildWritableAnimation() *Animation {
	a := &Animation{
		Fps:        30,
		Duration:   0.1,
		FrameCount: 3,
		Tracks: []*Track{
			newTrack(utils.JointNameHash("root")),
			newTrack(utils.JointNameHash("pelvis")),
		},
	}

	translations := []mgl32.Vec3{{0, 0, 0}, {1, 2, 3}, {1, 2, 3.5}}
	for f := 0; f < 3; f++ {
		rotation := mgl32.QuatRotate(float32(f)*0.5, mgl32.Vec3{0, 1, 0})
		scale := mgl32.Vec3{1, 1, 1}

		sample := a.Tracks[0].sampleAt(f)
		translation := translations[f]
		sample.Translation = &translation
		sample.Rotation = &rotation
		sample.Scale = &scale
	}

	// The second track only keys frame 1; the writer densifies the gaps
	// with identity defaults.
	rotation := mgl32.QuatRotate(1.2, mgl32.Vec3{1, 0, 0})
	a.Tracks[1].sampleAt(1).Rotation = &rotation

	return a
}

func TestWriteV4RoundTripIsExact(t *testing.T) {
	a := buildWritableAnimation()

	data, err := WriteV4(a)
	if err != nil {
		t.Fatalf("WriteV4() err = %v", err)
	}

	got, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode() err = %v", err)
	}

	// Fps survives a trip through the stored 1/fps frame duration only up
	// to float32 rounding.
	if math.Abs(float64(got.Fps-a.Fps)) > 1e-3 || got.FrameCount != a.FrameCount {
		t.Errorf("Fps/FrameCount = %v/%d, want %v/%d", got.Fps, got.FrameCount, a.Fps, a.FrameCount)
	}
	if len(got.Tracks) != len(a.Tracks) {
		t.Fatalf("len(Tracks) = %d, want %d", len(got.Tracks), len(a.Tracks))
	}

	for ti, want := range a.Tracks {
		gotTrack := got.Tracks[ti]
		if gotTrack.JointHash != want.JointHash {
			t.Errorf("track %d hash = 0x%.8x, want 0x%.8x", ti, gotTrack.JointHash, want.JointHash)
		}
		for f := 0; f < a.FrameCount; f++ {
			sample := gotTrack.Samples[f]
			if sample == nil {
				t.Fatalf("track %d frame %d missing after round trip", ti, f)
			}

			wantTranslation := mgl32.Vec3{}
			wantRotation := mgl32.QuatIdent()
			wantScale := mgl32.Vec3{1, 1, 1}
			if ws, ok := want.Samples[f]; ok {
				if ws.Translation != nil {
					wantTranslation = *ws.Translation
				}
				if ws.Rotation != nil {
					wantRotation = *ws.Rotation
				}
				if ws.Scale != nil {
					wantScale = *ws.Scale
				}
			}

			if *sample.Translation != wantTranslation {
				t.Errorf("track %d frame %d translation = %v, want %v", ti, f, *sample.Translation, wantTranslation)
			}
			if *sample.Rotation != wantRotation {
				t.Errorf("track %d frame %d rotation = %v, want %v", ti, f, *sample.Rotation, wantRotation)
			}
			if *sample.Scale != wantScale {
				t.Errorf("track %d frame %d scale = %v, want %v", ti, f, *sample.Scale, wantScale)
			}
		}
	}
}

func TestWriteV5RoundTripWithinQuantizationError(t *testing.T) {
	a := buildWritableAnimation()

	data, err := WriteV5(a)
	if err != nil {
		t.Fatalf("WriteV5() err = %v", err)
	}

	got, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode() err = %v", err)
	}

	if len(got.Tracks) != len(a.Tracks) {
		t.Fatalf("len(Tracks) = %d, want %d", len(got.Tracks), len(a.Tracks))
	}

	for ti, want := range a.Tracks {
		gotTrack := got.Tracks[ti]
		if gotTrack.JointHash != want.JointHash {
			t.Errorf("track %d hash = 0x%.8x, want 0x%.8x", ti, gotTrack.JointHash, want.JointHash)
		}
		for f := 0; f < a.FrameCount; f++ {
			sample := gotTrack.Samples[f]
			if sample == nil {
				t.Fatalf("track %d frame %d missing after round trip", ti, f)
			}

			wantRotation := mgl32.QuatIdent()
			if ws, ok := want.Samples[f]; ok && ws.Rotation != nil {
				wantRotation = *ws.Rotation
			}
			if d := utils.QuatAngularDistance(*sample.Rotation, wantRotation); d > 5e-4 {
				t.Errorf("track %d frame %d rotation angular error %v", ti, f, d)
			}
		}
	}

	// Vectors stay full precision in v5, only rotations are quantized.
	if got := *got.Tracks[0].Samples[2].Translation; got != (mgl32.Vec3{1, 2, 3.5}) {
		t.Errorf("translation = %v, want (1,2,3.5)", got)
	}
}

func TestWriterSharesPaletteEntries(t *testing.T) {
	a := buildWritableAnimation()

	data, err := WriteV5(a)
	if err != nil {
		t.Fatalf("WriteV5() err = %v", err)
	}

	// Two tracks over three frames produce six records but only four
	// distinct vectors: three translations plus the shared unit scale,
	// with the zero vector reused between them.
	s := utils.NewStream(data)
	if err := s.Seek(12 + 40); err != nil {
		t.Fatal(err)
	}
	vecsOffset, err := s.ReadI32()
	if err != nil {
		t.Fatal(err)
	}
	quatsOffset, err := s.ReadI32()
	if err != nil {
		t.Fatal(err)
	}
	if vecCount := (quatsOffset - vecsOffset) / 12; vecCount != 4 {
		t.Errorf("vector palette has %d entries, want 4", vecCount)
	}
}
