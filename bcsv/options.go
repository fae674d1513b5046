package bcsv

import (
	"log/slog"

	"golang.org/x/text/encoding"

	"github.com/meigma/jsystem/hashname"
	"github.com/meigma/jsystem/internal/textenc"
)

// Option configures Decode and Encode.
type Option func(*config)

type config struct {
	names    *hashname.Table
	logger   *slog.Logger
	encoding encoding.Encoding
}

// WithNames sets the table used to resolve field hashes to names. Without
// it every field decodes with a placeholder name.
func WithNames(names *hashname.Table) Option {
	return func(c *config) {
		c.names = names
	}
}

// WithLogger sets the logger used for decode and encode diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithEncoding sets the text encoding of the string pool. The default is
// Shift-JIS.
func WithEncoding(enc encoding.Encoding) Option {
	return func(c *config) {
		c.encoding = enc
	}
}

func newConfig(opts []Option) *config {
	c := &config{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// log returns the logger, falling back to a discard logger if nil.
func (c *config) log() *slog.Logger {
	if c.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.logger
}

func (c *config) text() textenc.Codec {
	return textenc.New(c.encoding)
}
