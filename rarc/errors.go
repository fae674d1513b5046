package rarc

import "github.com/meigma/jsystem/internal/jtype"

// Re-exported errors for callers that only import rarc.
var (
	ErrFormat      = jtype.ErrFormat
	ErrInvalidName = jtype.ErrInvalidName
	ErrTooLarge    = jtype.ErrTooLarge
)

// FormatError describes a structural decode failure.
type FormatError = jtype.FormatError

const formatName = "rarc"
