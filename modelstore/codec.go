package modelstore

import (
	"encoding/binary"
	"fmt"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/YuminosukeSato/scitree/pkg/errors"
)

// lz4MaxRatio bounds how far an LZ4 block can expand.
const lz4MaxRatio = 255

// Codec is the compression applied to a stored model. It is written as the
// first byte of every blob.
type Codec uint8

const (
	// CodecNone stores the encoded model as is.
	CodecNone Codec = 0
	// CodecLZ4 uses LZ4 block compression.
	CodecLZ4 Codec = 1
	// CodecZstd uses a zstd frame.
	CodecZstd Codec = 2
)

func (c Codec) String() string {
	switch c {
	case CodecNone:
		return "none"
	case CodecLZ4:
		return "lz4"
	case CodecZstd:
		return "zstd"
	default:
		return "unknown"
	}
}

// ParseCodec maps "none", "lz4" and "zstd" to a Codec.
func ParseCodec(name string) (Codec, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "none":
		return CodecNone, nil
	case "lz4":
		return CodecLZ4, nil
	case "zstd":
		return CodecZstd, nil
	}
	return CodecNone, errors.NewValidationError("codec", "must be one of none, lz4, zstd", name)
}

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() (*zstd.Encoder, error) {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder), nil
	}
	return zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
}

func getZstdDecoder() (*zstd.Decoder, error) {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder), nil
	}
	return zstd.NewReader(nil)
}

// compress prefixes data with its codec byte. LZ4 falls back to CodecNone
// when the block does not shrink.
func compress(data []byte, codec Codec) ([]byte, error) {
	switch codec {
	case CodecNone:
		return append([]byte{byte(CodecNone)}, data...), nil

	case CodecLZ4:
		// [codec][uncompressed size uint32][block]
		out := make([]byte, 5+lz4.CompressBlockBound(len(data)))
		n, err := lz4.CompressBlock(data, out[5:], nil)
		if err != nil {
			return nil, errors.Wrap(err, "modelstore: lz4 compress")
		}
		if n == 0 || n >= len(data) {
			return compress(data, CodecNone)
		}
		out[0] = byte(CodecLZ4)
		binary.LittleEndian.PutUint32(out[1:5], uint32(len(data)))
		return out[:5+n], nil

	case CodecZstd:
		enc, err := getZstdEncoder()
		if err != nil {
			return nil, errors.Wrap(err, "modelstore: zstd encoder")
		}
		defer zstdEncoderPool.Put(enc)
		return enc.EncodeAll(data, []byte{byte(CodecZstd)}), nil
	}
	return nil, errors.NewValidationError("codec", "unknown codec", codec)
}

// decompress strips the codec byte and restores the payload.
func decompress(blob []byte) ([]byte, error) {
	if len(blob) == 0 {
		return nil, errors.NewValueError("modelstore.decompress", "empty blob")
	}
	body := blob[1:]

	switch Codec(blob[0]) {
	case CodecNone:
		return body, nil

	case CodecLZ4:
		if len(body) < 4 {
			return nil, errors.NewValueError("modelstore.decompress", "truncated lz4 header")
		}
		size := binary.LittleEndian.Uint32(body[:4])
		if uint64(size) > lz4MaxRatio*uint64(len(body)-4) {
			return nil, errors.NewValueError("modelstore.decompress",
				fmt.Sprintf("lz4 size %d exceeds the bound for a %d byte block", size, len(body)-4))
		}
		out := make([]byte, size)
		n, err := lz4.UncompressBlock(body[4:], out)
		if err != nil {
			return nil, errors.Wrap(err, "modelstore: lz4 decompress")
		}
		if n != int(size) {
			return nil, errors.NewValueError("modelstore.decompress", "lz4 size mismatch")
		}
		return out, nil

	case CodecZstd:
		dec, err := getZstdDecoder()
		if err != nil {
			return nil, errors.Wrap(err, "modelstore: zstd decoder")
		}
		defer zstdDecoderPool.Put(dec)
		out, err := dec.DecodeAll(body, nil)
		if err != nil {
			return nil, errors.Wrap(err, "modelstore: zstd decompress")
		}
		return out, nil
	}
	return nil, errors.NewValueError("modelstore.decompress", "unknown codec byte")
}
