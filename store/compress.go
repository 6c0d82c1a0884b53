package store

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Codec identifies the compression algorithm applied to stored chunks.
// The codec is chosen when an archive is created and persisted in its
// metadata; every chunk in one archive uses the same codec. Tag values
// are storage constants, do not renumber.
type Codec uint8

const (
	// CodecZstd is zstd at the default level. Good ratios for text and
	// mixed content; the default.
	CodecZstd Codec = 0

	// CodecLZ4 is LZ4 frame compression. Lower ratio, much cheaper CPU.
	CodecLZ4 Codec = 1
)

// String returns the codec's name.
func (c Codec) String() string {
	switch c {
	case CodecZstd:
		return "zstd"
	case CodecLZ4:
		return "lz4"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(c))
	}
}

// ParseCodec parses a codec from its name.
func ParseCodec(name string) (Codec, error) {
	switch name {
	case "zstd":
		return CodecZstd, nil
	case "lz4":
		return CodecLZ4, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownCodec, name)
	}
}

// zstdEncoder and zstdDecoder are reused across calls; both are safe
// for concurrent use.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("store: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("store: zstd decoder initialization failed: " + err.Error())
	}
}

// Compress compresses data with the given codec. Compression is
// lossless and symmetric with Decompress, including for zero-length
// payloads.
func Compress(data []byte, codec Codec) ([]byte, error) {
	switch codec {
	case CodecZstd:
		return zstdEncoder.EncodeAll(data, nil), nil
	case CodecLZ4:
		return compressLZ4(data)
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownCodec, uint8(codec))
	}
}

// Decompress reverses Compress for the given codec.
func Decompress(data []byte, codec Codec) ([]byte, error) {
	switch codec {
	case CodecZstd:
		out, err := zstdDecoder.DecodeAll(data, nil)
		if err != nil {
			return nil, fmt.Errorf("store: zstd decompress: %w", err)
		}
		return out, nil
	case CodecLZ4:
		return decompressLZ4(data)
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownCodec, uint8(codec))
	}
}

// LZ4 uses the frame format rather than block compression: frames are
// self-describing, so decompression does not need the uncompressed
// size stored out of band.

func compressLZ4(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := lz4.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("store: lz4 compress: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("store: lz4 compress: %w", err)
	}
	return buf.Bytes(), nil
}

func decompressLZ4(data []byte) ([]byte, error) {
	out, err := io.ReadAll(lz4.NewReader(bytes.NewReader(data)))
	if err != nil {
		return nil, fmt.Errorf("store: lz4 decompress: %w", err)
	}
	return out, nil
}
