package registry

import (
	"encoding/json"
	"fmt"
	"time"

	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
)

// Manifest wraps an OCI manifest for an archive.
type Manifest struct {
	raw         ocispec.Manifest
	desc        ocispec.Descriptor
	indexDesc   ocispec.Descriptor
	dataDesc    ocispec.Descriptor
	compression Compression
	created     time.Time
}

// Descriptor returns the descriptor of the manifest itself.
func (m *Manifest) Descriptor() ocispec.Descriptor {
	return m.desc
}

// IndexDescriptor returns the descriptor for the index layer.
func (m *Manifest) IndexDescriptor() ocispec.Descriptor {
	return m.indexDesc
}

// DataDescriptor returns the descriptor for the archive layer.
func (m *Manifest) DataDescriptor() ocispec.Descriptor {
	return m.dataDesc
}

// Compression returns how the archive layer is stored.
func (m *Manifest) Compression() Compression {
	return m.compression
}

// Annotations returns the manifest annotations.
func (m *Manifest) Annotations() map[string]string {
	return m.raw.Annotations
}

// Created returns the creation timestamp from annotations.
//
// Returns zero time if the annotation is not present or cannot be parsed.
func (m *Manifest) Created() time.Time {
	return m.created
}

// Raw returns the underlying OCI manifest.
func (m *Manifest) Raw() ocispec.Manifest {
	return m.raw
}

// parseManifest decodes and validates an archive manifest.
func parseManifest(desc ocispec.Descriptor, data []byte) (*Manifest, error) {
	if desc.MediaType != "" && desc.MediaType != ocispec.MediaTypeImageManifest {
		return nil, fmt.Errorf("%w: unexpected media type %q", ErrInvalidManifest, desc.MediaType)
	}
	var raw ocispec.Manifest
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidManifest, err)
	}
	if raw.MediaType != ocispec.MediaTypeImageManifest {
		return nil, fmt.Errorf("%w: unexpected manifest media type %q", ErrInvalidManifest, raw.MediaType)
	}
	if raw.ArtifactType != ArtifactType {
		return nil, fmt.Errorf("%w: unexpected artifact type %q", ErrInvalidManifest, raw.ArtifactType)
	}

	m := &Manifest{raw: raw, desc: desc}
	var foundIndex, foundData bool
	for _, layer := range raw.Layers {
		if layer.MediaType == MediaTypeIndex {
			if foundIndex {
				return nil, fmt.Errorf("%w: multiple index layers", ErrInvalidManifest)
			}
			m.indexDesc = layer
			foundIndex = true
			continue
		}
		if c, ok := compressionOf(layer.MediaType); ok {
			if foundData {
				return nil, fmt.Errorf("%w: multiple archive layers", ErrInvalidManifest)
			}
			m.dataDesc = layer
			m.compression = c
			foundData = true
		}
	}
	if !foundIndex {
		return nil, ErrMissingIndex
	}
	if !foundData {
		return nil, ErrMissingData
	}
	if len(raw.Layers) != 2 {
		return nil, fmt.Errorf("%w: expected 2 layers, got %d", ErrInvalidManifest, len(raw.Layers))
	}

	if ts, ok := raw.Annotations[ocispec.AnnotationCreated]; ok {
		if t, err := time.Parse(time.RFC3339, ts); err == nil {
			m.created = t
		}
	}
	return m, nil
}
