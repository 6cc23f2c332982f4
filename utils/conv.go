package utils

import (
	"bytes"

	"golang.org/x/text/transform"

	"github.com/riftline/league_anm_browser/config"
)

// BytesToString trims a null-padded buffer and decodes it with the
// configured charmap. Joint names in legacy containers are fixed-width
// fields padded with zeroes.
func BytesToString(bs []byte) string {
	n := bytes.IndexByte(bs, 0)
	if n < 0 {
		n = len(bs)
	}

	s, _, err := transform.Bytes(config.GetEncoding().NewDecoder(), bs[0:n])
	if err != nil {
		panic(err)
	}

	return string(s)
}

// StringToBytesBuffer encodes s into a zero-padded buffer of bufSize bytes.
func StringToBytesBuffer(s string, bufSize int) []byte {
	bs, _, err := transform.Bytes(config.GetEncoding().NewEncoder(), []byte(s))
	if err != nil {
		panic(err)
	}
	if len(bs) > bufSize {
		panic(s)
	}
	r := make([]byte, bufSize)
	copy(r, bs)
	return r
}
