package registry

import (
	"context"
	"fmt"

	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
	"oras.land/oras-go/v2"
	"oras.land/oras-go/v2/content"

	"github.com/meigma/jsystem/index"
	"github.com/meigma/jsystem/rarc"
)

// Archive is a pulled archive.
type Archive struct {
	// Root is the decoded directory tree.
	Root *rarc.Dir

	// Index describes Root without its content.
	Index *index.Index

	// Manifest is the artifact manifest the archive was read from.
	Manifest *Manifest
}

// InspectResult holds archive metadata fetched without the archive layer.
type InspectResult struct {
	Manifest *Manifest
	Index    *index.Index
}

// Pull fetches and decodes the archive at ref, a tag or digest reference.
//
// Every layer is verified against its descriptor digest, and the archive
// layer additionally against the digest recorded in the index.
func (c *Client) Pull(ctx context.Context, ref string) (*Archive, error) {
	c.log().Info("pulling archive", "ref", ref)

	target, m, idx, err := c.fetchIndex(ctx, ref)
	if err != nil {
		return nil, err
	}

	dataDesc := m.DataDescriptor()
	if dataDesc.Digest != idx.ArchiveDigest() {
		return nil, fmt.Errorf("%w: archive layer %s, index records %s", ErrDigestMismatch, dataDesc.Digest, idx.ArchiveDigest())
	}
	layer, err := c.fetch(ctx, target, dataDesc)
	if err != nil {
		return nil, fmt.Errorf("fetch archive layer: %w", err)
	}
	archive, err := decompress(layer, m.Compression())
	if err != nil {
		return nil, err
	}
	root, err := rarc.Decode(archive, rarc.WithLogger(c.log()), rarc.WithEncoding(c.encoding))
	if err != nil {
		return nil, fmt.Errorf("decode archive: %w", err)
	}

	c.log().Debug("pulled archive", "ref", ref, "entries", idx.Len(), "compression", m.Compression().String())
	return &Archive{Root: root, Index: idx, Manifest: m}, nil
}

// Inspect fetches the manifest and index of the archive at ref without
// downloading the archive layer.
func (c *Client) Inspect(ctx context.Context, ref string) (*InspectResult, error) {
	_, m, idx, err := c.fetchIndex(ctx, ref)
	if err != nil {
		return nil, err
	}
	return &InspectResult{Manifest: m, Index: idx}, nil
}

// fetchIndex resolves ref and loads its manifest and index.
func (c *Client) fetchIndex(ctx context.Context, ref string) (oras.Target, *Manifest, *index.Index, error) {
	target, parsed, err := c.repository(ref)
	if err != nil {
		return nil, nil, nil, err
	}
	if parsed.Reference == "" {
		return nil, nil, nil, fmt.Errorf("%w: reference must include a tag or digest", ErrInvalidReference)
	}

	desc, err := target.Resolve(ctx, parsed.Reference)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("resolve %q: %w", ref, mapError(err))
	}
	raw, err := c.fetch(ctx, target, desc)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("fetch manifest: %w", err)
	}
	m, err := parseManifest(desc, raw)
	if err != nil {
		return nil, nil, nil, err
	}

	indexData, err := c.fetch(ctx, target, m.IndexDescriptor())
	if err != nil {
		return nil, nil, nil, fmt.Errorf("fetch index layer: %w", err)
	}
	idx, err := index.Load(indexData)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%w: %v", ErrInvalidManifest, err)
	}
	return target, m, idx, nil
}

// fetch reads a whole blob, verifying its size and digest.
func (c *Client) fetch(ctx context.Context, target oras.Target, desc ocispec.Descriptor) ([]byte, error) {
	if c.maxLayerSize > 0 && desc.Size > c.maxLayerSize {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooLarge, desc.Size, c.maxLayerSize)
	}
	data, err := content.FetchAll(ctx, target, desc)
	if err != nil {
		return nil, mapError(err)
	}
	return data, nil
}
