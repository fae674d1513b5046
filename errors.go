package jsystem

import (
	"errors"

	"github.com/meigma/jsystem/internal/jtype"
	"github.com/meigma/jsystem/registry"
)

// Codec errors.
var (
	// ErrFormat is returned when a buffer is not a valid instance of its format.
	ErrFormat = jtype.ErrFormat

	// ErrTypeMismatch is returned when a BCSV value does not match its field type.
	ErrTypeMismatch = jtype.ErrTypeMismatch

	// ErrUnknownField is returned when a BCSV record has no field with the given name.
	ErrUnknownField = jtype.ErrUnknownField

	// ErrInvalidName is returned when an archive entry name cannot be stored.
	ErrInvalidName = jtype.ErrInvalidName

	// ErrTooLarge is returned when a structure exceeds the limits of its format.
	ErrTooLarge = jtype.ErrTooLarge
)

// Errors re-exported from registry.
var (
	// ErrNotFound is returned when no archive exists at the reference.
	ErrNotFound = registry.ErrNotFound

	// ErrUnauthorized is returned when the registry rejects the credentials.
	ErrUnauthorized = registry.ErrUnauthorized

	// ErrInvalidReference is returned when a reference string is malformed.
	ErrInvalidReference = registry.ErrInvalidReference

	// ErrInvalidManifest is returned when a manifest does not describe an archive.
	ErrInvalidManifest = registry.ErrInvalidManifest

	// ErrDigestMismatch is returned when fetched content does not match its digest.
	ErrDigestMismatch = registry.ErrDigestMismatch
)

// ErrIrregularFile is returned by ReadTree for entries that are neither
// regular files nor directories, such as symbolic links.
var ErrIrregularFile = errors.New("jsystem: irregular file")

// FormatError describes a structural decode failure.
type FormatError = jtype.FormatError

// TypeMismatchError describes a BCSV value of the wrong type.
type TypeMismatchError = jtype.TypeMismatchError
