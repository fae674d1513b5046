package jsystem

import (
	"context"
	"log/slog"
	"path/filepath"

	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
	"golang.org/x/text/encoding"

	"github.com/meigma/jsystem/cache"
	"github.com/meigma/jsystem/cache/disk"
	"github.com/meigma/jsystem/rarc"
	"github.com/meigma/jsystem/registry"
	"github.com/meigma/jsystem/yaz0"
)

// Client publishes archives to OCI registries.
//
// Client wraps a registry client and adds filesystem helpers and a shared
// Yaz0 compression cache.
type Client struct {
	regOpts []registry.Option
	cache   cache.Cache
	logger  *slog.Logger

	encoder *yaz0.Encoder
	reg     *registry.Client
}

// Option configures a Client.
type Option func(*Client) error

// WithDockerConfig reads credentials from ~/.docker/config.json and its
// credential helpers. If the Docker config cannot be loaded, the client
// falls back to anonymous access.
func WithDockerConfig() Option {
	return func(c *Client) error {
		store, err := registry.DockerCredentials()
		if err != nil {
			return nil //nolint:nilerr // anonymous access is the documented fallback
		}
		c.regOpts = append(c.regOpts, registry.WithCredentialStore(store))
		return nil
	}
}

// WithStaticCredentials sets a username and password for one registry host.
func WithStaticCredentials(host, username, password string) Option {
	return func(c *Client) error {
		c.regOpts = append(c.regOpts, registry.WithStaticCredentials(host, username, password))
		return nil
	}
}

// WithPlainHTTP enables plain HTTP (no TLS) for registries.
func WithPlainHTTP(enabled bool) Option {
	return func(c *Client) error {
		c.regOpts = append(c.regOpts, registry.WithPlainHTTP(enabled))
		return nil
	}
}

// WithEncoding sets the text encoding of archive entry names.
func WithEncoding(enc encoding.Encoding) Option {
	return func(c *Client) error {
		c.regOpts = append(c.regOpts, registry.WithEncoding(enc))
		return nil
	}
}

// WithRegistryOptions passes options through to the registry client.
func WithRegistryOptions(opts ...registry.Option) Option {
	return func(c *Client) error {
		c.regOpts = append(c.regOpts, opts...)
		return nil
	}
}

// WithLogger sets the logger for client operations.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) error {
		c.logger = logger
		return nil
	}
}

// WithCache sets the cache consulted for Yaz0 compression results.
func WithCache(cc cache.Cache) Option {
	return func(c *Client) error {
		c.cache = cc
		return nil
	}
}

// WithCacheDir caches Yaz0 compression results on disk under dir/yaz0.
func WithCacheDir(dir string) Option {
	return func(c *Client) error {
		dc, err := disk.New(filepath.Join(dir, "yaz0"))
		if err != nil {
			return err
		}
		c.cache = dc
		return nil
	}
}

// NewClient creates a client with the given options.
//
// If no authentication is configured, anonymous access is used.
func NewClient(opts ...Option) (*Client, error) {
	c := &Client{}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	c.encoder = yaz0.NewEncoder(yaz0.WithCache(c.cache), yaz0.WithLogger(c.logger))
	regOpts := append([]registry.Option{registry.WithYaz0Encoder(c.encoder)}, c.regOpts...)
	if c.logger != nil {
		regOpts = append(regOpts, registry.WithLogger(c.logger))
	}
	c.reg = registry.NewClient(regOpts...)
	return c, nil
}

// Encoder returns the client's Yaz0 encoder, which shares its cache.
func (c *Client) Encoder() *yaz0.Encoder {
	return c.encoder
}

// Registry returns the underlying registry client.
func (c *Client) Registry() *registry.Client {
	return c.reg
}

// Push encodes root and pushes it to ref.
func (c *Client) Push(ctx context.Context, ref string, root *rarc.Dir, opts ...registry.PushOption) (ocispec.Descriptor, error) {
	return c.reg.Push(ctx, ref, root, opts...)
}

// PushDir reads dir with ReadTree and pushes it to ref.
func (c *Client) PushDir(ctx context.Context, ref, dir string, opts ...registry.PushOption) (ocispec.Descriptor, error) {
	root, err := ReadTree(dir)
	if err != nil {
		return ocispec.Descriptor{}, err
	}
	return c.reg.Push(ctx, ref, root, opts...)
}

// Pull fetches and decodes the archive at ref.
func (c *Client) Pull(ctx context.Context, ref string) (*registry.Archive, error) {
	return c.reg.Pull(ctx, ref)
}

// PullDir pulls the archive at ref and extracts it into dest with WriteTree.
func (c *Client) PullDir(ctx context.Context, ref, dest string, opts ...WriteOption) (*registry.Archive, error) {
	a, err := c.reg.Pull(ctx, ref)
	if err != nil {
		return nil, err
	}
	if err := WriteTree(a.Root, dest, opts...); err != nil {
		return nil, err
	}
	return a, nil
}

// Inspect fetches the manifest and index of the archive at ref.
func (c *Client) Inspect(ctx context.Context, ref string) (*registry.InspectResult, error) {
	return c.reg.Inspect(ctx, ref)
}
