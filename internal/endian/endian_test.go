package endian

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/jsystem/internal/jtype"
)

func TestPrimitives(t *testing.T) {
	t.Parallel()

	b := make([]byte, 4)

	PutUint16(b, 0x1234)
	assert.Equal(t, []byte{0x12, 0x34, 0, 0}, b)
	assert.Equal(t, uint16(0x1234), Uint16(b))

	PutUint32(b, 0xDEADBEEF)
	assert.Equal(t, []byte{0xDE, 0xAD, 0xBE, 0xEF}, b)
	assert.Equal(t, uint32(0xDEADBEEF), Uint32(b))

	PutInt32(b, -1)
	assert.Equal(t, int32(-1), Int32(b))

	PutInt16(b, -2)
	assert.Equal(t, int16(-2), Int16(b))

	PutFloat32(b, 1.5)
	assert.Equal(t, []byte{0x3F, 0xC0, 0, 0}, b)
	assert.Equal(t, float32(1.5), Float32(b))

	PutFloat32(b, float32(math.Inf(-1)))
	assert.True(t, math.IsInf(float64(Float32(b)), -1))
}

func TestAlign(t *testing.T) {
	t.Parallel()

	tests := []struct {
		n, a, want int
	}{
		{0, 32, 0},
		{1, 32, 32},
		{31, 32, 32},
		{32, 32, 32},
		{33, 32, 64},
		{5, 4, 8},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Align(tt.n, tt.a), "Align(%d, %d)", tt.n, tt.a)
	}
}

func TestView(t *testing.T) {
	t.Parallel()

	data := []byte{0x00, 0x01, 0x02, 0x03, 'h', 'i', 0x00, 'x'}
	v := NewView("test", data)

	t.Run("reads", func(t *testing.T) {
		t.Parallel()
		u16, err := v.Uint16At(0)
		require.NoError(t, err)
		assert.Equal(t, uint16(0x0001), u16)

		u32, err := v.Uint32At(0)
		require.NoError(t, err)
		assert.Equal(t, uint32(0x00010203), u32)

		s, err := v.CString(4)
		require.NoError(t, err)
		assert.Equal(t, "hi", string(s))

		u8, err := v.Uint8At(7)
		require.NoError(t, err)
		assert.Equal(t, uint8('x'), u8)
	})

	t.Run("out of range", func(t *testing.T) {
		t.Parallel()
		_, err := v.Uint32At(6)
		require.Error(t, err)
		assert.True(t, errors.Is(err, jtype.ErrFormat))

		var fe *jtype.FormatError
		require.True(t, errors.As(err, &fe))
		assert.Equal(t, int64(6), fe.Offset)

		_, err = v.Slice(-1, 2)
		assert.Error(t, err)
	})

	t.Run("unterminated string", func(t *testing.T) {
		t.Parallel()
		_, err := v.CString(7)
		assert.ErrorIs(t, err, jtype.ErrFormat)
	})

	t.Run("sub view reports absolute offsets", func(t *testing.T) {
		t.Parallel()
		sub, err := v.Sub(4)
		require.NoError(t, err)
		assert.Equal(t, 4, sub.Len())

		_, err = sub.Uint32At(2)
		var fe *jtype.FormatError
		require.True(t, errors.As(err, &fe))
		assert.Equal(t, int64(6), fe.Offset)
	})
	t.Run("window bounds reads", func(t *testing.T) {
		t.Parallel()
		w, err := v.Window(4, 2)
		require.NoError(t, err)
		assert.Equal(t, []byte("hi"), w.Bytes())

		_, err = w.CString(0)
		var fe *jtype.FormatError
		require.True(t, errors.As(err, &fe))
		assert.Equal(t, int64(4), fe.Offset)

		_, err = v.Window(6, 4)
		assert.ErrorIs(t, err, jtype.ErrFormat)
	})
}
