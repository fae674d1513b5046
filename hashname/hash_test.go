package hashname

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHash32(t *testing.T) {
	t.Parallel()

	assert.Equal(t, uint32(0), Hash32(""))
	assert.Equal(t, uint32(65), Hash32("A"))
	assert.Equal(t, uint32(65*31+66), Hash32("AB"))
	assert.NotEqual(t, Hash32("AB"), Hash32("BA"))
	assert.NotEqual(t, Hash32("name"), Hash32("Name"))
	assert.Equal(t, Hash32("ScaleX"), Hash32("ScaleX"))

	// Wraps around without modulus.
	long := strings.Repeat("z", 64)
	var want uint32
	for range 64 {
		want = want*31 + 'z'
	}
	assert.Equal(t, want, Hash32(long))
}

func TestHash16(t *testing.T) {
	t.Parallel()

	assert.Equal(t, uint16(0), Hash16(""))
	assert.Equal(t, uint16('.'), Hash16("."))
	assert.Equal(t, uint16('.'*3+'.'), Hash16(".."))
	assert.NotEqual(t, Hash16("ab"), Hash16("ba"))

	long := strings.Repeat("Q", 40)
	var want uint16
	for range 40 {
		want = want*3 + 'Q'
	}
	assert.Equal(t, want, Hash16(long))
}

func TestHashNonASCII(t *testing.T) {
	t.Parallel()

	// One step per character, not per UTF-8 byte.
	assert.Equal(t, uint32(0x00BD2E75), Hash32("テスト"))
	assert.Equal(t, uint16(0x79E9), Hash16("テスト"))
	assert.Equal(t, uint32(0x30C6), Hash32("テ"))
	assert.Equal(t, uint16(0x30C6), Hash16("テ"))

	// Supplementary characters hash as a surrogate pair.
	assert.Equal(t, uint32(0xD83D)*31+0xDE00, Hash32("😀"))
	assert.Equal(t, HashOf("テスト"), Hash32("テスト"))
}

func TestPlaceholder(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "[0000ABCD]", Placeholder(0xABCD))

	h, ok := ParsePlaceholder("[DEADBEEF]")
	require.True(t, ok)
	assert.Equal(t, uint32(0xDEADBEEF), h)

	for _, bad := range []string{"", "DEADBEEF", "[DEADBEE]", "[DEADBEEFF]", "[XYZXYZXY]", "(DEADBEEF)"} {
		_, ok := ParsePlaceholder(bad)
		assert.False(t, ok, bad)
	}

	assert.Equal(t, uint32(0x12345678), HashOf("[12345678]"))
	assert.Equal(t, Hash32("name"), HashOf("name"))
}

func TestTableLoad(t *testing.T) {
	t.Parallel()

	tbl := NewTable()
	require.NoError(t, tbl.Load(strings.NewReader("ScaleX\r\nScaleY\n\nname\n")))
	assert.Equal(t, 3, tbl.Len())
	assert.Equal(t, "ScaleX", tbl.Resolve(Hash32("ScaleX")))
	assert.Equal(t, "name", tbl.Resolve(Hash32("name")))
	assert.Equal(t, Placeholder(Hash32("missing")), tbl.Resolve(Hash32("missing")))

	// Load replaces the previous contents.
	require.NoError(t, tbl.Load(strings.NewReader("other\n")))
	assert.Equal(t, 1, tbl.Len())
	_, ok := tbl.Lookup(Hash32("ScaleX"))
	assert.False(t, ok)
}

func TestTableCollisionFirstWins(t *testing.T) {
	t.Parallel()

	// "Aa" and "BB" collide: 65*31+97 == 66*31+66.
	require.Equal(t, Hash32("Aa"), Hash32("BB"))

	tbl := NewTable()
	require.NoError(t, tbl.Load(strings.NewReader("Aa\nBB\n")))
	assert.Equal(t, 1, tbl.Len())
	assert.Equal(t, "Aa", tbl.Resolve(Hash32("BB")))

	assert.False(t, tbl.Add("BB"))
	assert.True(t, tbl.Add("fresh"))
}

func TestTableLoadErrorKeepsContents(t *testing.T) {
	t.Parallel()

	tbl := NewTable()
	require.True(t, tbl.Add("kept"))

	err := tbl.Load(iotest.ErrReader(errors.New("boom")))
	require.Error(t, err)
	assert.Equal(t, "kept", tbl.Resolve(Hash32("kept")))
}

func TestTableLoadFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "names.txt")
	require.NoError(t, os.WriteFile(path, []byte("Obj_arg0\nObj_arg1\n"), 0o600))

	tbl := NewTable()
	require.NoError(t, tbl.LoadFile(path))
	assert.Equal(t, "Obj_arg1", tbl.Resolve(Hash32("Obj_arg1")))

	assert.Error(t, tbl.LoadFile(filepath.Join(t.TempDir(), "missing")))
}

func TestTableResetAndNil(t *testing.T) {
	t.Parallel()

	tbl := NewTable()
	tbl.Add("x")
	tbl.Reset()
	assert.Equal(t, 0, tbl.Len())

	var none *Table
	assert.Equal(t, "[00000041]", none.Resolve(65))
	assert.Equal(t, 0, none.Len())

	var zero Table
	assert.True(t, zero.Add("lazy"))
}

func TestTableIndependentUniverses(t *testing.T) {
	t.Parallel()

	a, b := NewTable(), NewTable()
	a.Add("alpha")
	assert.Equal(t, "alpha", a.Resolve(Hash32("alpha")))
	assert.Equal(t, Placeholder(Hash32("alpha")), b.Resolve(Hash32("alpha")))
}

func TestTableConcurrentReaders(t *testing.T) {
	t.Parallel()

	tbl := NewTable()
	require.NoError(t, tbl.Load(strings.NewReader("one\ntwo\nthree\n")))

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				assert.Equal(t, "two", tbl.Resolve(Hash32("two")))
			}
		}()
	}
	wg.Wait()
}
