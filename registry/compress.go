package registry

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// Shared zstd coders. Both are safe for concurrent EncodeAll/DecodeAll.
var (
	zstdEncoder = sync.OnceValues(func() (*zstd.Encoder, error) {
		return zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	})
	zstdDecoder = sync.OnceValues(func() (*zstd.Decoder, error) {
		return zstd.NewReader(nil, zstd.WithDecoderConcurrency(0), zstd.WithDecoderMaxMemory(defaultMaxLayerSize))
	})
)

// compress stores an encoded archive as c.
func (c *Client) compress(archive []byte, comp Compression) ([]byte, error) {
	switch comp {
	case CompressionNone:
		return archive, nil
	case CompressionYaz0:
		return c.encoder.Compress(archive), nil
	case CompressionZstd:
		enc, err := zstdEncoder()
		if err != nil {
			return nil, fmt.Errorf("zstd encoder: %w", err)
		}
		return enc.EncodeAll(archive, make([]byte, 0, len(archive)/2)), nil
	default:
		return nil, fmt.Errorf("registry: unknown compression %d", comp)
	}
}

// decompress undoes compress. Yaz0 layers are left wrapped because
// rarc.Decode unwraps them itself.
func decompress(layer []byte, comp Compression) ([]byte, error) {
	switch comp {
	case CompressionNone, CompressionYaz0:
		return layer, nil
	case CompressionZstd:
		dec, err := zstdDecoder()
		if err != nil {
			return nil, fmt.Errorf("zstd decoder: %w", err)
		}
		out, err := dec.DecodeAll(layer, nil)
		if err != nil {
			return nil, fmt.Errorf("zstd decode: %w", err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("registry: unknown compression %d", comp)
	}
}
