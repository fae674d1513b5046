// Package textenc converts between Go strings and the byte encoding used for
// names and strings stored in jsystem containers.
package textenc

import (
	"errors"
	"fmt"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/japanese"
)

// ErrUnencodable is returned when a string contains characters that the
// target encoding cannot represent.
var ErrUnencodable = errors.New("textenc: string not representable")

// Default is the encoding used when none is configured.
var Default encoding.Encoding = japanese.ShiftJIS

// Codec encodes and decodes strings with a fixed encoding. The zero value
// uses Default.
type Codec struct {
	enc encoding.Encoding
}

// New returns a Codec for enc. A nil enc selects Default.
func New(enc encoding.Encoding) Codec {
	return Codec{enc: enc}
}

func (c Codec) encoding() encoding.Encoding {
	if c.enc == nil {
		return Default
	}
	return c.enc
}

// Decode converts stored bytes to a string.
func (c Codec) Decode(b []byte) (string, error) {
	if isASCII(b) {
		return string(b), nil
	}
	out, err := c.encoding().NewDecoder().Bytes(b)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Encode converts s to its stored bytes without a terminator.
func (c Codec) Encode(s string) ([]byte, error) {
	if isASCII([]byte(s)) {
		return []byte(s), nil
	}
	out, err := encoding.ReplaceUnsupported(c.encoding().NewEncoder()).Bytes([]byte(s))
	if err != nil {
		return nil, err
	}
	if err := c.verify(s, out); err != nil {
		return nil, err
	}
	return out, nil
}

// verify rejects encodings that lost characters to substitution.
func (c Codec) verify(s string, out []byte) error {
	back, err := c.encoding().NewDecoder().Bytes(out)
	if err != nil || string(back) != s {
		return fmt.Errorf("%w: %q", ErrUnencodable, s)
	}
	return nil
}

// AppendCString appends the encoded form of s followed by a NUL.
func (c Codec) AppendCString(dst []byte, s string) ([]byte, error) {
	b, err := c.Encode(s)
	if err != nil {
		return dst, err
	}
	dst = append(dst, b...)
	return append(dst, 0), nil
}

func isASCII(b []byte) bool {
	for _, c := range b {
		if c >= 0x80 {
			return false
		}
	}
	return true
}
