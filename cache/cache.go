// Package cache provides content-addressed storage for expensive codec
// results.
//
// The Yaz0 encoder performs an exhaustive window search and is by far the
// slowest transform in this module. Tools that repeatedly rebuild archives
// from mostly unchanged inputs can hand a Cache to yaz0.NewEncoder so each
// distinct input is only compressed once.
//
// Keys are SHA-256 hashes of the transform input. Values are the transform
// output. The codecs themselves never cache; a Cache is always opt-in.
package cache

import (
	"bytes"
	"crypto/sha256"
	"sync"
)

// Cache provides content-addressed storage.
//
// Implementations must be safe for concurrent use and should handle their
// own size limits and eviction policies.
type Cache interface {
	// Get retrieves content by key.
	// Returns nil, false if the content is not cached.
	Get(key []byte) ([]byte, bool)

	// Put stores content under key.
	Put(key, content []byte) error

	// Delete removes the entry for key. Deleting a missing key is not an error.
	Delete(key []byte) error
}

// Key returns the cache key for input under namespace.
//
// The namespace separates results of different transforms over the same
// input bytes.
func Key(namespace string, input []byte) []byte {
	h := sha256.New()
	h.Write([]byte(namespace))
	h.Write([]byte{0})
	h.Write(input)
	return h.Sum(nil)
}

// Memory is an in-memory Cache.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemory constructs an empty in-memory cache.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

// Get returns a copy of the content stored under key.
func (m *Memory) Get(key []byte) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.data[string(key)]
	if !ok {
		return nil, false
	}
	return bytes.Clone(data), true
}

// Put stores a private copy of content under key.
func (m *Memory) Put(key, content []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[string(key)] = append([]byte(nil), content...)
	return nil
}

// Delete removes the entry for key.
func (m *Memory) Delete(key []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, string(key))
	return nil
}

// Len returns the number of cached entries.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}
