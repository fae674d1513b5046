package rarc

import (
	"log/slog"

	"golang.org/x/text/encoding"

	"github.com/meigma/jsystem/internal/textenc"
	"github.com/meigma/jsystem/yaz0"
)

// Option configures Decode and Encode.
type Option func(*config)

type config struct {
	logger   *slog.Logger
	encoding encoding.Encoding
	compress bool
	encoder  *yaz0.Encoder
}

// WithLogger sets the logger used for decode and encode diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithEncoding sets the text encoding of entry names. The default is
// Shift-JIS.
func WithEncoding(enc encoding.Encoding) Option {
	return func(c *config) {
		c.encoding = enc
	}
}

// WithCompression wraps the encoded archive in a Yaz0 container.
func WithCompression(enabled bool) Option {
	return func(c *config) {
		c.compress = enabled
	}
}

// WithYaz0Encoder sets the encoder used by WithCompression, allowing a
// cached encoder to be shared across archives. It implies compression.
func WithYaz0Encoder(e *yaz0.Encoder) Option {
	return func(c *config) {
		c.encoder = e
		c.compress = true
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
