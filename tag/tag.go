// Package tag implements the 4-character identifiers used as magic numbers
// and section markers in jsystem containers.
package tag

import "github.com/meigma/jsystem/internal/endian"

// Tag is a 4-byte ASCII identifier stored as a big-endian 32-bit word.
type Tag uint32

// Well-known tags.
var (
	Yaz0 = FromString("Yaz0")
	RARC = FromString("RARC")
	ROOT = FromString("ROOT")
)

// FromString converts s to a Tag. Input longer than four characters is
// truncated; shorter input is right-padded with spaces.
func FromString(s string) Tag {
	var b [4]byte
	for i := range b {
		if i < len(s) {
			b[i] = s[i]
		} else {
			b[i] = ' '
		}
	}
	return Tag(endian.Uint32(b[:]))
}

// Parse reads a Tag from the first four bytes of b.
func Parse(b []byte) Tag {
	return Tag(endian.Uint32(b))
}

// Put writes t into the first four bytes of b.
func (t Tag) Put(b []byte) {
	endian.PutUint32(b, uint32(t))
}

// Bytes returns the four stored bytes of t.
func (t Tag) Bytes() [4]byte {
	var b [4]byte
	t.Put(b[:])
	return b
}

// String returns the four characters of t.
func (t Tag) String() string {
	b := t.Bytes()
	return string(b[:])
}
