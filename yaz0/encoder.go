package yaz0

import (
	"log/slog"

	"github.com/meigma/jsystem/cache"
	"github.com/meigma/jsystem/lz"
)

const cacheNamespace = "yaz0/v1"

// Encoder compresses buffers into Yaz0 containers, optionally consulting a
// content-addressed cache before running the window search.
//
// The zero value is usable and behaves like Compress. An Encoder is safe for
// concurrent use if its cache is.
type Encoder struct {
	cache  cache.Cache
	logger *slog.Logger
}

// Option configures an Encoder.
type Option func(*Encoder)

// WithCache sets the cache consulted for previously compressed inputs.
func WithCache(c cache.Cache) Option {
	return func(e *Encoder) {
		e.cache = c
	}
}

// WithLogger sets the logger used for cache diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Encoder) {
		e.logger = logger
	}
}

// NewEncoder returns an Encoder configured by opts.
func NewEncoder(opts ...Option) *Encoder {
	e := &Encoder{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// log returns the logger, falling back to a discard logger if nil.
func (e *Encoder) log() *slog.Logger {
	if e == nil || e.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return e.logger
}

// Compress wraps data in a Yaz0 container.
//
// Cached results are validated before use: an entry whose header does not
// match the input length is deleted and recomputed.
func (e *Encoder) Compress(data []byte) []byte {
	if e == nil || e.cache == nil {
		return Compress(data)
	}

	key := cache.Key(cacheNamespace, data)
	if cached, ok := e.cache.Get(key); ok {
		if h, err := ReadHeader(cached); err == nil && int(h.Size) == len(data) {
			e.log().Debug("yaz0 cache hit", "size", len(data), "compressed", len(cached))
			return cached
		}
		e.log().Warn("corrupted yaz0 cache entry deleted")
		_ = e.cache.Delete(key) //nolint:errcheck // best-effort cleanup
	}

	out := wrap(len(data), lz.Compress(data))
	if err := e.cache.Put(key, out); err != nil {
		e.log().Warn("yaz0 cache store failed", "error", err)
	}
	e.log().Debug("yaz0 compressed", "size", len(data), "compressed", len(out))
	return out
}
