// Package jtype defines shared types used across the jsystem codec packages.
// This avoids circular imports between the public codecs and their internals.
package jtype

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for codec operations.
var (
	// ErrFormat is returned when a buffer is not a structurally valid instance
	// of the format being decoded.
	ErrFormat = errors.New("jsystem: invalid format")

	// ErrTypeMismatch is returned when a value's runtime type does not match
	// the declared type of the field it is assigned to.
	ErrTypeMismatch = errors.New("jsystem: value type mismatch")

	// ErrUnknownField is returned when a record has no field with the given name.
	ErrUnknownField = errors.New("jsystem: unknown field")

	// ErrInvalidName is returned when an archive entry name cannot be stored.
	ErrInvalidName = errors.New("jsystem: invalid entry name")

	// ErrTooLarge is returned when a structure exceeds the limits of the
	// on-disk format (16-bit indices, 32-bit offsets).
	ErrTooLarge = errors.New("jsystem: structure too large")
)

// FormatError describes a structural decode failure.
//
// FormatError unwraps to ErrFormat so callers can test with errors.Is and
// extract the details with errors.As.
type FormatError struct {
	// Format names the container being decoded ("rarc", "bcsv", "yaz0", "lz").
	Format string
	// Offset is the byte offset at which the problem was detected, or -1.
	Offset int64
	// Expected and Found describe a magic or type mismatch. Both are empty
	// for purely structural failures.
	Expected string
	Found    string
	// Reason is a short human description.
	Reason string
}

// NewFormatError returns a FormatError for a structural failure at offset.
func NewFormatError(format string, offset int64, reason string, args ...any) *FormatError {
	if len(args) > 0 {
		reason = fmt.Sprintf(reason, args...)
	}
	return &FormatError{Format: format, Offset: offset, Reason: reason}
}

// MagicError returns a FormatError for a tag mismatch at offset.
func MagicError(format string, offset int64, expected, found string) *FormatError {
	return &FormatError{
		Format:   format,
		Offset:   offset,
		Expected: expected,
		Found:    found,
		Reason:   "bad magic",
	}
}

func (e *FormatError) Error() string {
	var b strings.Builder
	b.WriteString(e.Format)
	b.WriteString(": ")
	if e.Reason != "" {
		b.WriteString(e.Reason)
	} else {
		b.WriteString("invalid format")
	}
	if e.Expected != "" || e.Found != "" {
		fmt.Fprintf(&b, " (expected %q, found %q)", e.Expected, e.Found)
	}
	if e.Offset >= 0 {
		fmt.Fprintf(&b, " at offset 0x%X", e.Offset)
	}
	return b.String()
}

// Unwrap returns ErrFormat.
func (e *FormatError) Unwrap() error {
	return ErrFormat
}

// TypeMismatchError reports an assignment of a value whose Go type differs
// from the declared field type.
type TypeMismatchError struct {
	Field    string
	Expected string
	Found    string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("field %q: value type mismatch: expected %s, got %s", e.Field, e.Expected, e.Found)
}

// Unwrap returns ErrTypeMismatch.
func (e *TypeMismatchError) Unwrap() error {
	return ErrTypeMismatch
}
