package jtype

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatError(t *testing.T) {
	t.Parallel()

	t.Run("magic mismatch", func(t *testing.T) {
		t.Parallel()
		err := error(MagicError("rarc", 0, "RARC", "ABCD"))
		assert.True(t, errors.Is(err, ErrFormat))
		assert.Equal(t, `rarc: bad magic (expected "RARC", found "ABCD") at offset 0x0`, err.Error())

		var fe *FormatError
		require.True(t, errors.As(err, &fe))
		assert.Equal(t, "ABCD", fe.Found)
	})

	t.Run("structural", func(t *testing.T) {
		t.Parallel()
		err := NewFormatError("bcsv", 0x10, "negative row count %d", -1)
		assert.Equal(t, "bcsv: negative row count -1 at offset 0x10", err.Error())
	})

	t.Run("no offset", func(t *testing.T) {
		t.Parallel()
		err := NewFormatError("lz", -1, "")
		assert.Equal(t, "lz: invalid format", err.Error())
	})
}

func TestTypeMismatchError(t *testing.T) {
	t.Parallel()
	err := error(&TypeMismatchError{Field: "ScaleX", Expected: "float32", Found: "int"})
	assert.True(t, errors.Is(err, ErrTypeMismatch))
	assert.Contains(t, err.Error(), "ScaleX")
}
