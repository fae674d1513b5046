package bcsv

import "github.com/meigma/jsystem/internal/jtype"

// Re-exported errors for callers that only import bcsv.
var (
	ErrFormat       = jtype.ErrFormat
	ErrTypeMismatch = jtype.ErrTypeMismatch
	ErrUnknownField = jtype.ErrUnknownField
	ErrTooLarge     = jtype.ErrTooLarge
)

// FormatError describes a structural decode failure.
type FormatError = jtype.FormatError

// TypeMismatchError reports a value whose Go type does not match its field.
type TypeMismatchError = jtype.TypeMismatchError

const formatName = "bcsv"
