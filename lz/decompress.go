package lz

import (
	"github.com/meigma/jsystem/internal/endian"
	"github.com/meigma/jsystem/internal/jtype"
)

// Back-reference limits of the format.
const (
	// WindowSize is the maximum back-reference distance.
	WindowSize = 0x1000
	// MinMatch is the smallest length a back-reference can encode.
	MinMatch = 2
	// MaxMatch is the largest length a back-reference can encode.
	MaxMatch = 0x111

	groupSize  = 8
	shortLimit = 0x10
)

// Decompress expands src into exactly size bytes.
//
// Decoding stops as soon as size bytes have been produced, even in the middle
// of a group or a back-reference; trailing input is ignored. Input that ends
// before size bytes are produced, or a back-reference pointing before the
// start of the output, fails with a *jtype.FormatError and no output.
func Decompress(src []byte, size int) ([]byte, error) {
	if size < 0 {
		return nil, jtype.NewFormatError("lz", -1, "negative output size %d", size)
	}
	// No input byte can expand to more than one maximal back-reference, so
	// larger sizes are certain to be truncated. Failing early avoids the
	// allocation.
	if size > len(src)*MaxMatch {
		return nil, truncated(len(src))
	}
	dst := make([]byte, size)
	in, out := 0, 0

	for out < size {
		if in >= len(src) {
			return nil, truncated(in)
		}
		flags := src[in]
		in++

		for bit := 0; bit < groupSize && out < size; bit++ {
			if flags&(0x80>>bit) != 0 {
				if in >= len(src) {
					return nil, truncated(in)
				}
				dst[out] = src[in]
				in++
				out++
				continue
			}

			if in+2 > len(src) {
				return nil, truncated(in)
			}
			op := in
			half := endian.Uint16(src[in:])
			in += 2

			length := int(half >> 12)
			distance := int(half&0x0FFF) + 1
			if length == 0 {
				if in >= len(src) {
					return nil, truncated(in)
				}
				length = int(src[in]) + shortLimit
				in++
			}
			length += MinMatch

			from := out - distance
			if from < 0 {
				return nil, jtype.NewFormatError("lz", int64(op),
					"back-reference distance %d exceeds output position %d", distance, out)
			}
			// Source and destination may overlap; copy one byte at a time.
			for ; length > 0 && out < size; length-- {
				dst[out] = dst[from]
				out++
				from++
			}
		}
	}
	return dst, nil
}

func truncated(off int) error {
	return jtype.NewFormatError("lz", int64(off), "compressed stream truncated")
}
