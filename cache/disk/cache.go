// Package disk provides a disk-backed cache implementation.
package disk

import (
	"encoding/hex"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/meigma/jsystem/cache"
)

const (
	defaultShardPrefixLen = 2
	defaultDirPerm        = 0o700
)

var _ cache.Cache = (*Cache)(nil)

// Cache implements cache.Cache using the local filesystem.
//
// Entries are written to a temporary file and renamed into place, so a
// reader never observes a partially written entry.
type Cache struct {
	dir            string
	shardPrefixLen int
	dirPerm        os.FileMode
}

// Option configures a disk cache.
type Option func(*Cache)

// WithShardPrefixLen sets the number of hex characters used for sharding.
// Use 0 to disable sharding. Defaults to 2.
func WithShardPrefixLen(n int) Option {
	return func(c *Cache) {
		c.shardPrefixLen = n
	}
}

// WithDirPerm sets the directory permissions used for cache directories.
func WithDirPerm(mode os.FileMode) Option {
	return func(c *Cache) {
		c.dirPerm = mode
	}
}

// New creates a disk-backed cache rooted at dir.
func New(dir string, opts ...Option) (*Cache, error) {
	if dir == "" {
		return nil, errors.New("cache dir is empty")
	}
	c := &Cache{
		dir:            dir,
		shardPrefixLen: defaultShardPrefixLen,
		dirPerm:        defaultDirPerm,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.shardPrefixLen < 0 {
		return nil, errors.New("shard prefix length must be >= 0")
	}
	if err := os.MkdirAll(dir, c.dirPerm); err != nil {
		return nil, err
	}
	return c, nil
}

// Dir returns the cache root directory.
func (c *Cache) Dir() string {
	return c.dir
}

// Get retrieves content by key.
func (c *Cache) Get(key []byte) ([]byte, bool) {
	path, err := c.path(key)
	if err != nil {
		return nil, false
	}
	data, err := os.ReadFile(path) //nolint:gosec // path is derived from a hash, not user input
	if err != nil {
		return nil, false
	}
	return data, true
}

// Put stores content under key.
func (c *Cache) Put(key, content []byte) error {
	path, err := c.path(key)
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, c.dirPerm); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "cache-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}

	if err := os.Rename(tmpPath, path); err != nil {
		if _, statErr := os.Stat(path); statErr == nil {
			_ = os.Remove(tmpPath)
			return nil
		}
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}

// Delete removes the entry for key.
func (c *Cache) Delete(key []byte) error {
	path, err := c.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (c *Cache) path(key []byte) (string, error) {
	if len(key) == 0 {
		return "", errors.New("cache key is empty")
	}
	hexKey := hex.EncodeToString(key)
	if c.shardPrefixLen <= 0 {
		return filepath.Join(c.dir, hexKey), nil
	}
	prefixLen := min(c.shardPrefixLen, len(hexKey))
	return filepath.Join(c.dir, hexKey[:prefixLen], hexKey), nil
}
