package anm

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Smallest-three quaternion compression: the largest-magnitude component
// is dropped (sign-normalized to positive first) and the remaining three
// are quantized to 15 bits each over [-1/sqrt2, 1/sqrt2], packed together
// with the 2-bit dropped-component index into 48 bits.
const (
	oneDivSqrt2   = 0.70710678118
	sqrt2Div32767 = 0.00004315969
)

// DecompressQuat reconstructs a unit quaternion from its 6-byte packed
// form. The reconstructed component is non-negative by construction.
func DecompressQuat(raw []byte) mgl32.Quat {
	first := uint64(raw[0]) | uint64(raw[1])<<8
	second := uint64(raw[2]) | uint64(raw[3])<<8
	third := uint64(raw[4]) | uint64(raw[5])<<8
	bits := first | second<<16 | third<<32

	droppedIndex := (bits >> 45) & 3

	a := float32((bits>>30)&0x7FFF)*sqrt2Div32767 - oneDivSqrt2
	b := float32((bits>>15)&0x7FFF)*sqrt2Div32767 - oneDivSqrt2
	c := float32(bits&0x7FFF)*sqrt2Div32767 - oneDivSqrt2
	d := float32(math.Sqrt(math.Max(0, float64(1-(a*a+b*b+c*c)))))

	switch droppedIndex {
	case 0:
		return mgl32.Quat{W: c, V: mgl32.Vec3{d, a, b}}
	case 1:
		return mgl32.Quat{W: c, V: mgl32.Vec3{a, d, b}}
	case 2:
		return mgl32.Quat{W: c, V: mgl32.Vec3{a, b, d}}
	default:
		return mgl32.Quat{W: d, V: mgl32.Vec3{a, b, c}}
	}
}

func quantizeQuatComponent(v float32) uint64 {
	q := int64(math.Round(float64(v+oneDivSqrt2) / sqrt2Div32767))
	if q < 0 {
		q = 0
	}
	if q > 32767 {
		q = 32767
	}
	return uint64(q)
}

// CompressQuat packs a unit quaternion into the 6-byte smallest-three
// form. The sign flip exploits quaternion double cover, so the dropped
// component is always stored as positive.
func CompressQuat(q mgl32.Quat) [6]byte {
	components := [4]float32{q.X(), q.Y(), q.Z(), q.W}

	droppedIndex := 0
	for i := 1; i < 4; i++ {
		if abs32(components[i]) > abs32(components[droppedIndex]) {
			droppedIndex = i
		}
	}
	if components[droppedIndex] < 0 {
		for i := range components {
			components[i] = -components[i]
		}
	}

	var stored [3]float32
	n := 0
	for i, v := range components {
		if i == droppedIndex {
			continue
		}
		stored[n] = v
		n++
	}

	bits := quantizeQuatComponent(stored[2]) |
		quantizeQuatComponent(stored[1])<<15 |
		quantizeQuatComponent(stored[0])<<30 |
		uint64(droppedIndex)<<45

	return [6]byte{
		byte(bits), byte(bits >> 8),
		byte(bits >> 16), byte(bits >> 24),
		byte(bits >> 32), byte(bits >> 40),
	}
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
