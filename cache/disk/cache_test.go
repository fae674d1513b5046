package disk

import (
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/jsystem/cache"
)

func TestCachePutGet(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	c, err := New(dir)
	require.NoError(t, err)

	content := []byte("hello")
	key := cache.Key("test", content)

	require.NoError(t, c.Put(key, content))

	got, ok := c.Get(key)
	require.True(t, ok)
	assert.Equal(t, content, got)

	hexKey := hex.EncodeToString(key)
	_, err = os.Stat(filepath.Join(dir, hexKey[:defaultShardPrefixLen], hexKey))
	assert.NoError(t, err, "expected sharded cache file")

	// Second Put is a no-op.
	require.NoError(t, c.Put(key, []byte("other")))
	got, _ = c.Get(key)
	assert.Equal(t, content, got)
}

func TestCacheDelete(t *testing.T) {
	t.Parallel()

	c, err := New(t.TempDir())
	require.NoError(t, err)

	key := cache.Key("test", []byte("x"))
	require.NoError(t, c.Put(key, []byte("y")))
	require.NoError(t, c.Delete(key))

	_, ok := c.Get(key)
	assert.False(t, ok)
	assert.NoError(t, c.Delete(key), "deleting a missing key")
}

func TestCacheNoSharding(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	c, err := New(dir, WithShardPrefixLen(0))
	require.NoError(t, err)

	key := cache.Key("test", []byte("flat"))
	require.NoError(t, c.Put(key, []byte("v")))

	_, err = os.Stat(filepath.Join(dir, hex.EncodeToString(key)))
	assert.NoError(t, err)
}

func TestCacheErrors(t *testing.T) {
	t.Parallel()

	_, err := New("")
	assert.Error(t, err)

	_, err = New(t.TempDir(), WithShardPrefixLen(-1))
	assert.Error(t, err)

	c, err := New(t.TempDir())
	require.NoError(t, err)
	assert.Error(t, c.Put(nil, []byte("x")))
	_, ok := c.Get(nil)
	assert.False(t, ok)
}
