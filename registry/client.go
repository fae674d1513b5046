package registry

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"golang.org/x/text/encoding"
	"oras.land/oras-go/v2"
	"oras.land/oras-go/v2/registry"
	"oras.land/oras-go/v2/registry/remote"
	"oras.land/oras-go/v2/registry/remote/auth"
	"oras.land/oras-go/v2/registry/remote/credentials"
	"oras.land/oras-go/v2/registry/remote/retry"

	"github.com/meigma/jsystem/yaz0"
)

// defaultMaxLayerSize bounds each fetched layer. RARC offsets are 32-bit so
// no valid archive is larger.
const defaultMaxLayerSize = 1 << 32

// Client pushes and pulls archives.
//
// A Client is safe for concurrent use.
type Client struct {
	plainHTTP    bool
	userAgent    string
	credStore    credentials.Store
	target       oras.Target
	encoder      *yaz0.Encoder
	encoding     encoding.Encoding
	maxLayerSize int64
	logger       *slog.Logger

	authClient *auth.Client
}

// Option configures a Client.
type Option func(*Client)

// WithPlainHTTP enables plain HTTP (no TLS) for registries.
// This is useful for local development registries.
func WithPlainHTTP(enabled bool) Option {
	return func(c *Client) {
		c.plainHTTP = enabled
	}
}

// WithLogger sets the logger for client operations.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithCredentialStore sets the credential store consulted for each registry host.
func WithCredentialStore(store credentials.Store) Option {
	return func(c *Client) {
		c.credStore = store
	}
}

// WithStaticCredentials authenticates to host with a fixed username and password.
func WithStaticCredentials(host, username, password string) Option {
	return func(c *Client) {
		c.credStore = StaticCredentials(host, username, password)
	}
}

// WithUserAgent sets the User-Agent header for registry requests.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithTarget routes every reference to target instead of a remote
// repository. Only the tag or digest part of a reference is used.
//
// Any oras.Target works, such as an in-memory store or an OCI image layout
// directory.
func WithTarget(target oras.Target) Option {
	return func(c *Client) {
		c.target = target
	}
}

// WithYaz0Encoder sets the encoder used for Yaz0 compressed pushes.
func WithYaz0Encoder(e *yaz0.Encoder) Option {
	return func(c *Client) {
		c.encoder = e
	}
}

// WithEncoding sets the text encoding of entry names. The default is Shift-JIS.
func WithEncoding(enc encoding.Encoding) Option {
	return func(c *Client) {
		c.encoding = enc
	}
}

// WithMaxLayerSize bounds the size of each fetched layer.
// Zero or negative disables the limit.
func WithMaxLayerSize(n int64) Option {
	return func(c *Client) {
		c.maxLayerSize = n
	}
}

// NewClient creates a client with the given options.
func NewClient(opts ...Option) *Client {
	c := &Client{
		userAgent:    "jsys/1.0",
		maxLayerSize: defaultMaxLayerSize,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.authClient = &auth.Client{
		Client: retry.DefaultClient,
		Cache:  auth.NewCache(),
		Credential: func(ctx context.Context, hostport string) (auth.Credential, error) {
			if c.credStore == nil {
				return auth.EmptyCredential, nil
			}
			return c.credStore.Get(ctx, hostport)
		},
		Header: http.Header{
			"User-Agent": []string{c.userAgent},
		},
	}
	return c
}

// log returns the logger, falling back to a discard logger if nil.
func (c *Client) log() *slog.Logger {
	if c.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.logger
}

// repository resolves ref to the target that stores it and the tag or
// digest within that target.
func (c *Client) repository(ref string) (oras.Target, registry.Reference, error) {
	parsed, err := registry.ParseReference(ref)
	if err != nil {
		return nil, registry.Reference{}, fmt.Errorf("%w: %v", ErrInvalidReference, err)
	}
	if c.target != nil {
		return c.target, parsed, nil
	}

	repo, err := remote.NewRepository(parsed.Registry + "/" + parsed.Repository)
	if err != nil {
		return nil, registry.Reference{}, fmt.Errorf("%w: %v", ErrInvalidReference, err)
	}
	repo.PlainHTTP = c.plainHTTP
	repo.Client = c.authClient
	return repo, parsed, nil
}

// isDigest reports whether the reference part of ref is a digest.
func isDigest(ref registry.Reference) bool {
	return ref.ValidateReferenceAsDigest() == nil
}
