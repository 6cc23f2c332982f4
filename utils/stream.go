package utils

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"
)

// ErrTruncatedInput is the cause of every short-read failure. Parsers must
// not recover from it: the container is damaged past this point.
var ErrTruncatedInput = errors.New("truncated input")

// Stream is a sequential little-endian reader/writer over a byte buffer.
// Reading and writing share the position; Seek/Skip move it.
type Stream struct {
	buf []byte
	pos int
}

func NewStream(b []byte) *Stream {
	return &Stream{buf: b}
}

func NewWriteStream() *Stream {
	return &Stream{buf: make([]byte, 0, 256)}
}

func (s *Stream) Pos() int { return s.pos }

func (s *Stream) Bytes() []byte { return s.buf }

func (s *Stream) Remaining() int { return len(s.buf) - s.pos }

func (s *Stream) Seek(offset int) error {
	if offset < 0 || offset > len(s.buf) {
		return errors.Wrapf(ErrTruncatedInput, "seek to 0x%x outside buffer of 0x%x bytes", offset, len(s.buf))
	}
	s.pos = offset
	return nil
}

func (s *Stream) Skip(amount int) error {
	if s.pos+amount > len(s.buf) {
		return errors.Wrapf(ErrTruncatedInput, "at 0x%x: skip %d bytes, %d remain", s.pos, amount, s.Remaining())
	}
	s.pos += amount
	return nil
}

func (s *Stream) ReadBytes(amount int) ([]byte, error) {
	if s.pos+amount > len(s.buf) {
		return nil, errors.Wrapf(ErrTruncatedInput, "at 0x%x: need %d bytes, %d remain", s.pos, amount, s.Remaining())
	}
	oldPos := s.pos
	s.pos += amount
	return s.buf[oldPos:s.pos], nil
}

func (s *Stream) ReadU8() (uint8, error) {
	b, err := s.ReadBytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (s *Stream) ReadU16() (uint16, error) {
	b, err := s.ReadBytes(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (s *Stream) ReadU32() (uint32, error) {
	b, err := s.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (s *Stream) ReadI32() (int32, error) {
	v, err := s.ReadU32()
	return int32(v), err
}

func (s *Stream) ReadF32() (float32, error) {
	v, err := s.ReadU32()
	return math.Float32frombits(v), err
}

func (s *Stream) ReadU16s(count int) ([]uint16, error) {
	out := make([]uint16, count)
	for i := range out {
		v, err := s.ReadU16()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (s *Stream) ReadU32s(count int) ([]uint32, error) {
	out := make([]uint32, count)
	for i := range out {
		v, err := s.ReadU32()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (s *Stream) ReadF32s(count int) ([]float32, error) {
	out := make([]float32, count)
	for i := range out {
		v, err := s.ReadF32()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// ReadFixedASCII reads a null-padded fixed-width string and trims the
// padding. Bytes outside ASCII go through the configured charmap.
func (s *Stream) ReadFixedASCII(size int) (string, error) {
	b, err := s.ReadBytes(size)
	if err != nil {
		return "", err
	}
	return BytesToString(b), nil
}

func (s *Stream) WriteBytes(b []byte) {
	s.buf = append(s.buf, b...)
	s.pos = len(s.buf)
}

func (s *Stream) WriteU8(v uint8) {
	s.WriteBytes([]byte{v})
}

func (s *Stream) WriteU16(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	s.WriteBytes(b[:])
}

func (s *Stream) WriteU32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	s.WriteBytes(b[:])
}

func (s *Stream) WriteI32(v int32) {
	s.WriteU32(uint32(v))
}

func (s *Stream) WriteF32(v float32) {
	s.WriteU32(math.Float32bits(v))
}

func (s *Stream) WriteZeroes(amount int) {
	s.WriteBytes(make([]byte, amount))
}

// WriteFixedASCII writes str into a null-padded field of the given width.
func (s *Stream) WriteFixedASCII(str string, size int) {
	s.WriteBytes(StringToBytesBuffer(str, size))
}
