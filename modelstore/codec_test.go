package modelstore

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/scitree/pkg/errors"
)

func TestCodecRoundTrip(t *testing.T) {
	payloads := map[string][]byte{
		"empty":        {},
		"short":        []byte("abc"),
		"compressible": bytes.Repeat([]byte("scitree "), 512),
	}

	for _, codec := range []Codec{CodecNone, CodecLZ4, CodecZstd} {
		for name, data := range payloads {
			t.Run(codec.String()+"/"+name, func(t *testing.T) {
				blob, err := compress(data, codec)
				require.NoError(t, err)

				got, err := decompress(blob)
				require.NoError(t, err)
				assert.Equal(t, len(data), len(got))
				assert.True(t, bytes.Equal(data, got))
			})
		}
	}
}

func TestCodecShrinksRepetitiveData(t *testing.T) {
	data := bytes.Repeat([]byte("0123456789"), 1000)
	for _, codec := range []Codec{CodecLZ4, CodecZstd} {
		blob, err := compress(data, codec)
		require.NoError(t, err)
		assert.Equal(t, byte(codec), blob[0])
		assert.Less(t, len(blob), len(data)/4, codec.String())
	}
}

func TestLZ4FallsBackOnIncompressibleData(t *testing.T) {
	blob, err := compress([]byte("xy"), CodecLZ4)
	require.NoError(t, err)
	assert.Equal(t, byte(CodecNone), blob[0])
}

func TestDecompressRejectsBadBlobs(t *testing.T) {
	tests := []struct {
		name string
		blob []byte
	}{
		{"empty", nil},
		{"unknown codec", []byte{9, 1, 2}},
		{"truncated lz4 header", []byte{byte(CodecLZ4), 1, 2}},
		{"oversized lz4 header", []byte{byte(CodecLZ4), 0xff, 0xff, 0xff, 0xff, 0x10, 'a'}},
		{"corrupt zstd", []byte{byte(CodecZstd), 1, 2, 3, 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decompress(tt.blob)
			assert.Error(t, err)
		})
	}
}

func TestParseCodec(t *testing.T) {
	for in, want := range map[string]Codec{"": CodecNone, "none": CodecNone, "LZ4": CodecLZ4, " zstd ": CodecZstd} {
		got, err := ParseCodec(in)
		require.NoError(t, err)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseCodec("gzip")
	assert.Error(t, err)
}

func TestDecompressRejectsImplausibleLZ4Size(t *testing.T) {
	blob, err := compress(bytes.Repeat([]byte("ab"), 256), CodecLZ4)
	require.NoError(t, err)
	require.Equal(t, byte(CodecLZ4), blob[0])

	// Claim 4 GiB for the same block.
	forged := bytes.Clone(blob)
	binary.LittleEndian.PutUint32(forged[1:5], math.MaxUint32)

	_, err = decompress(forged)
	var verr *errors.ValueError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Message, "exceeds the bound")
}
