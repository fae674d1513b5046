package endian

import (
	"bytes"

	"github.com/meigma/jsystem/internal/jtype"
)

// View is a bounds-checked window over an owned byte buffer.
//
// Every accessor takes an offset relative to the start of the view and fails
// with a *jtype.FormatError, reporting the absolute offset, instead of
// panicking on out-of-range reads.
type View struct {
	data   []byte
	base   int64
	format string
}

// NewView returns a view over data. format names the container in errors.
func NewView(format string, data []byte) View {
	return View{data: data, format: format}
}

// Len returns the number of bytes in the view.
func (v View) Len() int { return len(v.data) }

// Bytes returns the underlying bytes of the view.
func (v View) Bytes() []byte { return v.data }

// Sub returns the view starting at off and extending to the end of v.
func (v View) Sub(off int) (View, error) {
	if off < 0 || off > len(v.data) {
		return View{}, v.outOfRange(off, 0)
	}
	return View{data: v.data[off:], base: v.base + int64(off), format: v.format}, nil
}

// Window returns the view of the n bytes at off.
func (v View) Window(off, n int) (View, error) {
	b, err := v.Slice(off, n)
	if err != nil {
		return View{}, err
	}
	return View{data: b, base: v.base + int64(off), format: v.format}, nil
}

// Slice returns the n bytes at off. The returned slice aliases the view.
func (v View) Slice(off, n int) ([]byte, error) {
	if off < 0 || n < 0 || off > len(v.data) || n > len(v.data)-off {
		return nil, v.outOfRange(off, n)
	}
	return v.data[off : off+n : off+n], nil
}

// Uint8At reads the byte at off.
func (v View) Uint8At(off int) (uint8, error) {
	b, err := v.Slice(off, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// Uint16At reads a big-endian uint16 at off.
func (v View) Uint16At(off int) (uint16, error) {
	b, err := v.Slice(off, 2)
	if err != nil {
		return 0, err
	}
	return Uint16(b), nil
}

// Int16At reads a big-endian int16 at off.
func (v View) Int16At(off int) (int16, error) {
	b, err := v.Slice(off, 2)
	if err != nil {
		return 0, err
	}
	return Int16(b), nil
}

// Uint32At reads a big-endian uint32 at off.
func (v View) Uint32At(off int) (uint32, error) {
	b, err := v.Slice(off, 4)
	if err != nil {
		return 0, err
	}
	return Uint32(b), nil
}

// Int32At reads a big-endian int32 at off.
func (v View) Int32At(off int) (int32, error) {
	b, err := v.Slice(off, 4)
	if err != nil {
		return 0, err
	}
	return Int32(b), nil
}

// Float32At reads a big-endian float32 at off.
func (v View) Float32At(off int) (float32, error) {
	b, err := v.Slice(off, 4)
	if err != nil {
		return 0, err
	}
	return Float32(b), nil
}

// CString returns the bytes at off up to, but not including, the next NUL.
// A string running off the end of the view is an error.
func (v View) CString(off int) ([]byte, error) {
	if off < 0 || off >= len(v.data) {
		return nil, v.outOfRange(off, 1)
	}
	end := bytes.IndexByte(v.data[off:], 0)
	if end < 0 {
		return nil, jtype.NewFormatError(v.format, v.base+int64(off), "unterminated string")
	}
	return v.data[off : off+end], nil
}

// Errorf returns a FormatError positioned at off within the view.
func (v View) Errorf(off int, reason string, args ...any) error {
	return jtype.NewFormatError(v.format, v.base+int64(off), reason, args...)
}

func (v View) outOfRange(off, n int) error {
	return jtype.NewFormatError(v.format, v.base+int64(off),
		"read of %d bytes exceeds buffer of %d bytes", n, v.base+int64(len(v.data)))
}
