package registry

import "fmt"

// Media types for archives in OCI registries.
const (
	// ArtifactType identifies archives as an OCI 1.1 artifact type.
	ArtifactType = "application/vnd.meigma.jsystem.rarc.v1"

	// MediaTypeIndex is the media type for the FlatBuffers index layer.
	MediaTypeIndex = "application/vnd.meigma.jsystem.index.v1+flatbuffers"

	// MediaTypeRARC is the media type for an uncompressed archive layer.
	MediaTypeRARC = "application/vnd.meigma.jsystem.rarc.v1"

	// MediaTypeRARCYaz0 is the media type for a Yaz0 wrapped archive layer.
	MediaTypeRARCYaz0 = "application/vnd.meigma.jsystem.rarc.v1+yaz0"

	// MediaTypeRARCZstd is the media type for a zstd compressed archive layer.
	MediaTypeRARCZstd = "application/vnd.meigma.jsystem.rarc.v1+zstd"
)

// Compression selects how the archive layer is stored.
type Compression uint8

// Supported layer compressions.
const (
	CompressionNone Compression = iota
	CompressionYaz0
	CompressionZstd
)

// MediaType returns the archive layer media type for c.
func (c Compression) MediaType() string {
	switch c {
	case CompressionYaz0:
		return MediaTypeRARCYaz0
	case CompressionZstd:
		return MediaTypeRARCZstd
	default:
		return MediaTypeRARC
	}
}

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionYaz0:
		return "yaz0"
	case CompressionZstd:
		return "zstd"
	default:
		return fmt.Sprintf("compression(%d)", uint8(c))
	}
}

// ParseCompression parses the names returned by Compression.String.
func ParseCompression(s string) (Compression, error) {
	switch s {
	case "", "none":
		return CompressionNone, nil
	case "yaz0":
		return CompressionYaz0, nil
	case "zstd":
		return CompressionZstd, nil
	default:
		return 0, fmt.Errorf("registry: unknown compression %q", s)
	}
}

// compressionOf maps an archive layer media type back to its compression.
func compressionOf(mediaType string) (Compression, bool) {
	switch mediaType {
	case MediaTypeRARC:
		return CompressionNone, true
	case MediaTypeRARCYaz0:
		return CompressionYaz0, true
	case MediaTypeRARCZstd:
		return CompressionZstd, true
	default:
		return 0, false
	}
}
