package compression

import (
	"encoding/binary"
	"fmt"

	"github.com/pierrec/lz4"
)

// Frame tags. Every stored value starts with one.
const (
	tagRaw byte = 0
	tagLZ4 byte = 1
)

// MinCompressibleSize is the smallest value worth running through lz4.
const MinCompressibleSize = 64

// NoCompressor stores values as tagged raw bytes.
type NoCompressor struct{}

func (c *NoCompressor) Name() string {
	return "none"
}

func (c *NoCompressor) Compress(data []byte) ([]byte, error) {
	return frameRaw(data), nil
}

func (c *NoCompressor) Decompress(data []byte) ([]byte, error) {
	return decode(data)
}

// LZ4Compressor block-compresses values and prefixes the uncompressed
// length so decompression allocates exactly once.
type LZ4Compressor struct{}

func (c *LZ4Compressor) Name() string {
	return "lz4"
}

func (c *LZ4Compressor) Compress(data []byte) ([]byte, error) {
	if len(data) < MinCompressibleSize {
		return frameRaw(data), nil
	}

	header := make([]byte, 1+binary.MaxVarintLen64)
	header[0] = tagLZ4
	hn := 1 + binary.PutUvarint(header[1:], uint64(len(data)))

	compressed := make([]byte, hn+lz4.CompressBlockBound(len(data)))
	copy(compressed, header[:hn])

	n, err := lz4.CompressBlock(data, compressed[hn:], nil)
	if err != nil {
		return nil, fmt.Errorf("lz4 compression failed: %w", err)
	}

	// Incompressible, or no gain
	if n == 0 || hn+n >= 1+len(data) {
		return frameRaw(data), nil
	}
	return compressed[:hn+n], nil
}

func (c *LZ4Compressor) Decompress(data []byte) ([]byte, error) {
	return decode(data)
}

func frameRaw(data []byte) []byte {
	out := make([]byte, 1+len(data))
	out[0] = tagRaw
	copy(out[1:], data)
	return out
}

func decode(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, ErrCorrupt
	}

	switch data[0] {
	case tagRaw:
		out := make([]byte, len(data)-1)
		copy(out, data[1:])
		return out, nil

	case tagLZ4:
		size, n := binary.Uvarint(data[1:])
		if n <= 0 {
			return nil, ErrCorrupt
		}
		out := make([]byte, size)
		written, err := lz4.UncompressBlock(data[1+n:], out)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		if uint64(written) != size {
			return nil, ErrCorrupt
		}
		return out, nil

	default:
		return nil, fmt.Errorf("%w: unknown tag %d", ErrCorrupt, data[0])
	}
}
