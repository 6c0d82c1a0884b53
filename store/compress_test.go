package store

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompressRoundTrip(t *testing.T) {
	payloads := map[string][]byte{
		"empty":        {},
		"small":        []byte("hello, archive"),
		"repetitive":   bytes.Repeat([]byte("0123456789"), 100_000),
		"binary zeros": make([]byte, 1<<20),
	}

	for _, codec := range []Codec{CodecZstd, CodecLZ4} {
		for name, payload := range payloads {
			t.Run(codec.String()+"/"+name, func(t *testing.T) {
				compressed, err := Compress(payload, codec)
				require.NoError(t, err)

				out, err := Decompress(compressed, codec)
				require.NoError(t, err)
				assert.True(t, bytes.Equal(payload, out))
			})
		}
	}
}

func TestCompressShrinksRepetitiveData(t *testing.T) {
	payload := bytes.Repeat([]byte("abcdefgh"), 10_000)
	for _, codec := range []Codec{CodecZstd, CodecLZ4} {
		compressed, err := Compress(payload, codec)
		require.NoError(t, err)
		assert.Less(t, len(compressed), len(payload), "%s did not shrink", codec)
	}
}

func TestCompressUnknownCodec(t *testing.T) {
	_, err := Compress([]byte("x"), Codec(42))
	assert.ErrorIs(t, err, ErrUnknownCodec)

	_, err = Decompress([]byte("x"), Codec(42))
	assert.ErrorIs(t, err, ErrUnknownCodec)
}

func TestParseCodec(t *testing.T) {
	tests := []struct {
		name    string
		want    Codec
		wantErr bool
	}{
		{"zstd", CodecZstd, false},
		{"lz4", CodecLZ4, false},
		{"gzip", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		t.Run("name="+tt.name, func(t *testing.T) {
			got, err := ParseCodec(tt.name)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownCodec)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.name, got.String())
		})
	}
}
