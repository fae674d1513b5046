// Package yaz0 implements the Yaz0 container: a 16-byte header recording the
// decompressed size, followed by an lz stream.
package yaz0

import (
	"github.com/meigma/jsystem/internal/endian"
	"github.com/meigma/jsystem/internal/jtype"
	"github.com/meigma/jsystem/lz"
	"github.com/meigma/jsystem/tag"
)

// HeaderSize is the size of the on-disk header.
const HeaderSize = 0x10

// Magic identifies a Yaz0 container.
var Magic = tag.Yaz0

// Header is the decoded container header. The two reserved words that
// follow Size on disk are always written as zero and ignored on read.
type Header struct {
	Magic tag.Tag
	Size  uint32
}

// ReadHeader decodes and validates the header at the start of data.
func ReadHeader(data []byte) (Header, error) {
	v := endian.NewView("yaz0", data)
	raw, err := v.Slice(0, HeaderSize)
	if err != nil {
		return Header{}, err
	}
	h := Header{
		Magic: tag.Parse(raw[0:]),
		Size:  endian.Uint32(raw[4:]),
	}
	if h.Magic != Magic {
		return Header{}, jtype.MagicError("yaz0", 0, Magic.String(), h.Magic.String())
	}
	return h, nil
}

// IsCompressed reports whether data starts with the Yaz0 magic.
func IsCompressed(data []byte) bool {
	return len(data) >= 4 && tag.Parse(data) == Magic
}

// Compress wraps data in a Yaz0 container.
func Compress(data []byte) []byte {
	return wrap(len(data), lz.Compress(data))
}

// Decompress validates the container header and returns the decompressed
// payload. The declared size drives decoding; trailing bytes are ignored.
func Decompress(data []byte) ([]byte, error) {
	h, err := ReadHeader(data)
	if err != nil {
		return nil, err
	}
	out, err := lz.Decompress(data[HeaderSize:], int(h.Size))
	if err != nil {
		return nil, err
	}
	return out, nil
}

func wrap(size int, payload []byte) []byte {
	out := make([]byte, HeaderSize+len(payload))
	Magic.Put(out[0:])
	endian.PutUint32(out[4:], uint32(size)) //nolint:gosec // container sizes are 32-bit by definition
	copy(out[HeaderSize:], payload)
	return out
}
