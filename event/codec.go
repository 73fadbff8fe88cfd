package event

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Codec compresses and decompresses whole files.
type Codec interface {
	Compress(data []byte) ([]byte, error)
	Decompress(data []byte) ([]byte, error)
}

// CodecFor returns the codec matching the extension of path: .zst, .lz4 and
// .s2 are compressed, anything else is passed through.
func CodecFor(path string) Codec {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zst", ".zstd":
		return ZstdCodec{}
	case ".lz4":
		return LZ4Codec{}
	case ".s2":
		return S2Codec{}
	}
	return NoopCodec{}
}

// NoopCodec returns its input unchanged.
type NoopCodec struct{}

func (NoopCodec) Compress(data []byte) ([]byte, error)   { return data, nil }
func (NoopCodec) Decompress(data []byte) ([]byte, error) { return data, nil }

// ZstdCodec is the zstandard frame format.
type ZstdCodec struct{}

// Compress compresses data with the default zstd level.
func (ZstdCodec) Compress(data []byte) ([]byte, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, err
	}
	defer encoder.Close()
	return encoder.EncodeAll(data, make([]byte, 0, len(data))), nil
}

// Decompress decompresses a zstd stream.
func (ZstdCodec) Decompress(data []byte) ([]byte, error) {
	decoder, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, err
	}
	defer decoder.Close()
	return decoder.DecodeAll(data, nil)
}

// LZ4Codec is a single raw lz4 block.
type LZ4Codec struct{}

// Compress compresses data into one lz4 block.
func (LZ4Codec) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	dst := make([]byte, lz4.CompressBlockBound(len(data)))
	var compressor lz4.Compressor
	n, err := compressor.CompressBlock(data, dst)
	if err != nil {
		return nil, err
	}
	return dst[:n], nil
}

// Decompress decompresses an lz4 block. The decompressed size is not stored,
// so the buffer starts at four times the input and doubles until it fits.
func (LZ4Codec) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	const maxSize = 1 << 30
	for size := len(data) * 4; size <= maxSize; size *= 2 {
		buf := make([]byte, size)
		n, err := lz4.UncompressBlock(data, buf)
		if err == nil {
			return buf[:n], nil
		}
		if !errors.Is(err, lz4.ErrInvalidSourceShortBuffer) {
			return nil, err
		}
	}
	return nil, lz4.ErrInvalidSourceShortBuffer
}

// S2Codec is the s2 block format.
type S2Codec struct{}

func (S2Codec) Compress(data []byte) ([]byte, error) {
	return s2.Encode(nil, data), nil
}

func (S2Codec) Decompress(data []byte) ([]byte, error) {
	return s2.Decode(nil, data)
}
