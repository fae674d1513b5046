package textenc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

func TestShiftJISRoundTrip(t *testing.T) {
	t.Parallel()

	var c Codec
	for _, s := range []string{"", "ascii_name", "オブジェ", "星ピース"} {
		b, err := c.Encode(s)
		require.NoError(t, err)
		got, err := c.Decode(b)
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
}

func TestShiftJISBytes(t *testing.T) {
	t.Parallel()

	b, err := Codec{}.Encode("あ")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x82, 0xA0}, b)
}

func TestUnencodable(t *testing.T) {
	t.Parallel()

	_, err := New(charmap.ISO8859_1).Encode("日本")
	require.ErrorIs(t, err, ErrUnencodable)
}

func TestAppendCString(t *testing.T) {
	t.Parallel()

	out, err := New(unicode.UTF8).AppendCString([]byte{1}, "ab")
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 'a', 'b', 0}, out)
}
