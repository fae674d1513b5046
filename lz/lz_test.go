package lz

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/jsystem/internal/jtype"
)

// naiveCompress scans the whole window for every position, nearest first.
// It is the reference the chained matcher must agree with byte for byte.
func naiveCompress(src []byte) []byte {
	var out []byte
	pos := 0
	for pos < len(src) {
		flagAt := len(out)
		out = append(out, 0)
		for bit := 0; bit < 8 && pos < len(src); bit++ {
			best, dist := MinMatch, 0
			for d := 1; d <= WindowSize && d <= pos; d++ {
				c := pos - d
				n := 0
				for pos+n < len(src) && n < MaxMatch && src[c+n] == src[pos+n] {
					n++
				}
				if n > best {
					best, dist = n, d
				}
			}
			if dist == 0 {
				out[flagAt] |= 0x80 >> bit
				out = append(out, src[pos])
				pos++
				continue
			}
			out = appendBackref(out, dist, best)
			pos += best
		}
	}
	return out
}

func randomBytes(seed int64, n int) []byte {
	r := rand.New(rand.NewSource(seed)) //nolint:gosec // deterministic test data
	b := make([]byte, n)
	r.Read(b)
	return b
}

// lowEntropy draws from a tiny alphabet so matches of every length occur.
func lowEntropy(seed int64, n int) []byte {
	r := rand.New(rand.NewSource(seed)) //nolint:gosec // deterministic test data
	b := make([]byte, n)
	for i := range b {
		b[i] = "abcab"[r.Intn(5)]
	}
	return b
}

func TestCompressSixteenIdenticalBytes(t *testing.T) {
	t.Parallel()

	src := bytes.Repeat([]byte{0xAA}, 16)
	got := Compress(src)

	// One literal, then a 15-byte back-reference at distance 1
	// (length nibble 15-2 = 13, distance field 1-1 = 0).
	assert.Equal(t, []byte{0x80, 0xAA, 0xD0, 0x00}, got)

	out, err := Decompress(got, len(src))
	require.NoError(t, err)
	assert.Equal(t, src, out)
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data []byte
	}{
		{name: "empty", data: nil},
		{name: "single byte", data: []byte{0x42}},
		{name: "two bytes", data: []byte{1, 1}},
		{name: "three repeated", data: []byte{7, 7, 7, 7}},
		{name: "text", data: []byte("the quick brown fox jumps over the lazy dog, the quick brown fox")},
		{name: "zeros 100k", data: make([]byte, 100_000)},
		{name: "random 100k", data: randomBytes(1, 100_000)},
		{name: "low entropy 50k", data: lowEntropy(2, 50_000)},
		{name: "period 4096", data: bytes.Repeat(randomBytes(3, 4096), 4)},
		{name: "period 4097", data: bytes.Repeat(randomBytes(4, 4097), 3)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			compressed := Compress(tt.data)
			assert.LessOrEqual(t, len(compressed), MaxCompressedLen(len(tt.data)))

			out, err := Decompress(compressed, len(tt.data))
			require.NoError(t, err)
			assert.True(t, bytes.Equal(tt.data, out), "round trip mismatch")
		})
	}
}

func TestRoundTripAllLengths(t *testing.T) {
	t.Parallel()

	src := lowEntropy(5, 600)
	for n := 0; n <= len(src); n++ {
		compressed := Compress(src[:n])
		out, err := Decompress(compressed, n)
		require.NoError(t, err, "length %d", n)
		require.Equal(t, src[:n], out, "length %d", n)
	}
}

func TestCompressMatchesFullWindowScan(t *testing.T) {
	t.Parallel()

	inputs := [][]byte{
		lowEntropy(10, 3000),
		randomBytes(11, 2000),
		bytes.Repeat([]byte("abcabd"), 200),
		append(bytes.Repeat([]byte{0}, 300), randomBytes(12, 300)...),
		append(randomBytes(13, 5000), randomBytes(13, 5000)...),
	}
	for i, in := range inputs {
		assert.Equal(t, naiveCompress(in), Compress(in), "input %d", i)
	}
}

func TestCompressLimits(t *testing.T) {
	t.Parallel()

	t.Run("long form", func(t *testing.T) {
		t.Parallel()
		// One literal followed by a maximal run.
		src := bytes.Repeat([]byte{'z'}, 1+MaxMatch)
		got := Compress(src)
		// count = 273-2 = 271 -> long form, extra byte 271-16 = 255.
		assert.Equal(t, []byte{0x80, 'z', 0x00, 0x00, 0xFF}, got)
	})

	t.Run("distance at window edge", func(t *testing.T) {
		t.Parallel()
		block := randomBytes(20, WindowSize)
		src := append(append([]byte{}, block...), block[:64]...)
		out, err := Decompress(Compress(src), len(src))
		require.NoError(t, err)
		assert.Equal(t, src, out)
	})
}

func TestDecompress(t *testing.T) {
	t.Parallel()

	t.Run("stops mid group", func(t *testing.T) {
		t.Parallel()
		// Flags say eight literals but only three bytes are requested.
		out, err := Decompress([]byte{0xFF, 'a', 'b', 'c'}, 3)
		require.NoError(t, err)
		assert.Equal(t, []byte("abc"), out)
	})

	t.Run("stops mid back-reference", func(t *testing.T) {
		t.Parallel()
		out, err := Decompress([]byte{0x80, 'x', 0xF0, 0x00}, 5)
		require.NoError(t, err)
		assert.Equal(t, []byte("xxxxx"), out)
	})

	t.Run("long form", func(t *testing.T) {
		t.Parallel()
		out, err := Decompress([]byte{0x80, 'q', 0x00, 0x00, 0x00}, 19)
		require.NoError(t, err)
		assert.Equal(t, bytes.Repeat([]byte{'q'}, 19), out)
	})

	t.Run("overlapping pattern", func(t *testing.T) {
		t.Parallel()
		// "ab" then copy 6 bytes from distance 2.
		out, err := Decompress([]byte{0xC0, 'a', 'b', 0x40, 0x01}, 8)
		require.NoError(t, err)
		assert.Equal(t, []byte("abababab"), out)
	})

	t.Run("zero size", func(t *testing.T) {
		t.Parallel()
		out, err := Decompress(nil, 0)
		require.NoError(t, err)
		assert.Empty(t, out)
	})

	t.Run("truncated", func(t *testing.T) {
		t.Parallel()
		_, err := Decompress([]byte{0xFF, 'a'}, 4)
		assert.ErrorIs(t, err, jtype.ErrFormat)

		_, err = Decompress([]byte{0x00, 0x10}, 4)
		assert.ErrorIs(t, err, jtype.ErrFormat)

		_, err = Decompress([]byte{0x80, 'a', 0x00, 0x00}, 40)
		assert.ErrorIs(t, err, jtype.ErrFormat)
	})

	t.Run("reference before start", func(t *testing.T) {
		t.Parallel()
		out, err := Decompress([]byte{0x00, 0x10, 0x05}, 4)
		assert.Nil(t, out)
		assert.ErrorIs(t, err, jtype.ErrFormat)
	})

	t.Run("negative size", func(t *testing.T) {
		t.Parallel()
		_, err := Decompress(nil, -1)
		assert.ErrorIs(t, err, jtype.ErrFormat)
	})
}

func BenchmarkCompress(b *testing.B) {
	data := lowEntropy(99, 256<<10)
	b.SetBytes(int64(len(data)))
	b.ReportAllocs()
	for b.Loop() {
		_ = Compress(data)
	}
}

func BenchmarkDecompress(b *testing.B) {
	data := lowEntropy(99, 256<<10)
	compressed := Compress(data)
	b.SetBytes(int64(len(data)))
	b.ReportAllocs()
	for b.Loop() {
		_, _ = Decompress(compressed, len(data))
	}
}
