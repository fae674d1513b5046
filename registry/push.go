package registry

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
	"oras.land/oras-go/v2"
	"oras.land/oras-go/v2/content"
	"oras.land/oras-go/v2/errdef"

	"github.com/meigma/jsystem/index"
	"github.com/meigma/jsystem/rarc"
)

// PushOption configures a Push operation.
type PushOption func(*pushConfig)

type pushConfig struct {
	compression Compression
	tags        []string
	annotations map[string]string
}

// PushWithCompression selects how the archive layer is stored.
// The default is CompressionNone.
func PushWithCompression(c Compression) PushOption {
	return func(cfg *pushConfig) {
		cfg.compression = c
	}
}

// PushWithTags applies additional tags to the pushed manifest.
//
// The primary tag from the ref is always applied. These tags are applied
// after the initial push succeeds.
func PushWithTags(tags ...string) PushOption {
	return func(cfg *pushConfig) {
		cfg.tags = append(cfg.tags, tags...)
	}
}

// PushWithAnnotations sets custom annotations on the manifest.
//
// org.opencontainers.image.created is set automatically unless given here.
func PushWithAnnotations(annotations map[string]string) PushOption {
	return func(cfg *pushConfig) {
		if cfg.annotations == nil {
			cfg.annotations = make(map[string]string)
		}
		for k, v := range annotations {
			cfg.annotations[k] = v
		}
	}
}

// Push encodes root and pushes it to ref, which must include a tag
// (e.g. "registry.example.com/stages/title:v1"). It returns the descriptor
// of the pushed manifest.
func (c *Client) Push(ctx context.Context, ref string, root *rarc.Dir, opts ...PushOption) (ocispec.Descriptor, error) {
	cfg := pushConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	target, parsed, err := c.repository(ref)
	if err != nil {
		return ocispec.Descriptor{}, err
	}
	if parsed.Reference == "" || isDigest(parsed) {
		return ocispec.Descriptor{}, fmt.Errorf("%w: reference must include a tag", ErrInvalidReference)
	}

	archive, err := rarc.Encode(root, rarc.WithLogger(c.log()), rarc.WithEncoding(c.encoding))
	if err != nil {
		return ocispec.Descriptor{}, fmt.Errorf("encode archive: %w", err)
	}
	layer, err := c.compress(archive, cfg.compression)
	if err != nil {
		return ocispec.Descriptor{}, err
	}
	indexData := index.Build(root, layer, cfg.compression != CompressionNone)

	indexDesc := content.NewDescriptorFromBytes(MediaTypeIndex, indexData)
	if err := pushBlob(ctx, target, indexDesc, indexData); err != nil {
		return ocispec.Descriptor{}, fmt.Errorf("push index layer: %w", err)
	}
	dataDesc := content.NewDescriptorFromBytes(cfg.compression.MediaType(), layer)
	if err := pushBlob(ctx, target, dataDesc, layer); err != nil {
		return ocispec.Descriptor{}, fmt.Errorf("push archive layer: %w", err)
	}

	manifestDesc, err := oras.PackManifest(ctx, target, oras.PackManifestVersion1_1, ArtifactType, oras.PackManifestOptions{
		Layers:              []ocispec.Descriptor{indexDesc, dataDesc},
		ManifestAnnotations: cfg.annotations,
	})
	if err != nil {
		return ocispec.Descriptor{}, fmt.Errorf("push manifest: %w", mapError(err))
	}

	for _, tag := range append([]string{parsed.Reference}, cfg.tags...) {
		if err := target.Tag(ctx, manifestDesc, tag); err != nil {
			return ocispec.Descriptor{}, fmt.Errorf("tag %q: %w", tag, mapError(err))
		}
	}

	c.log().Info("pushed archive",
		"ref", ref,
		"digest", manifestDesc.Digest.String(),
		"compression", cfg.compression.String(),
		"size", len(layer),
	)
	return manifestDesc, nil
}

// pushBlob pushes data unless the target already holds it.
func pushBlob(ctx context.Context, target oras.Target, desc ocispec.Descriptor, data []byte) error {
	err := target.Push(ctx, desc, bytes.NewReader(data))
	if err != nil && !errors.Is(err, errdef.ErrAlreadyExists) {
		return mapError(err)
	}
	return nil
}
