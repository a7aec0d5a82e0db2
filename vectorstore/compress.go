package vectorstore

import (
	"encoding/binary"
	"errors"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/rotalabs/steergo/model"
)

// Compression selects the frame compression for raw float arrays.
type Compression uint8

const (
	// CompressionNone stores arrays as-is.
	CompressionNone Compression = 0
	// CompressionLZ4 uses LZ4 block compression (fast, good for hot data).
	CompressionLZ4 Compression = 1
	// CompressionZSTD uses ZSTD block compression (better ratio, good for cold data).
	CompressionZSTD Compression = 2
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZSTD:
		return "zstd"
	default:
		return "unknown"
	}
}

// ParseCompression maps a manifest compression name back to its value.
func ParseCompression(name string) (Compression, error) {
	switch name {
	case "", "none":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "zstd":
		return CompressionZSTD, nil
	default:
		return 0, model.Configf("unknown compression: %q", name)
	}
}

// ZSTD encoder/decoder pools for efficiency
var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func putZstdEncoder(enc *zstd.Encoder) {
	zstdEncoderPool.Put(enc)
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

func putZstdDecoder(dec *zstd.Decoder) {
	zstdDecoderPool.Put(dec)
}

// Frame format: [UncompressedSize uint32][CompressedSize uint32][Data...]
// CompressedSize == 0 means the payload is stored uncompressed.
const frameHeaderSize = 8

// compressFrame wraps one array in a self-describing compressed frame.
// Incompressible data (ratio > 0.9) falls back to uncompressed storage.
func compressFrame(data []byte, comp Compression) ([]byte, error) {
	if comp == CompressionNone || len(data) == 0 {
		return storeFrame(data, nil), nil
	}

	var compressed []byte
	var err error

	switch comp {
	case CompressionLZ4:
		compressed, err = compressLZ4(data)
	case CompressionZSTD:
		compressed, err = compressZSTD(data)
	default:
		return nil, model.Configf("unknown compression: %d", comp)
	}
	if err != nil {
		return nil, err
	}

	if len(compressed) == 0 || float64(len(compressed)) > float64(len(data))*0.9 {
		return storeFrame(data, nil), nil
	}
	return storeFrame(data, compressed), nil
}

// storeFrame writes the frame header and payload. A nil compressed payload
// stores data uncompressed.
func storeFrame(data, compressed []byte) []byte {
	payload := compressed
	compressedSize := uint32(len(compressed))
	if compressed == nil {
		payload = data
		compressedSize = 0
	}
	result := make([]byte, frameHeaderSize+len(payload))
	binary.LittleEndian.PutUint32(result[0:], uint32(len(data)))
	binary.LittleEndian.PutUint32(result[4:], compressedSize)
	copy(result[frameHeaderSize:], payload)
	return result
}

func compressLZ4(data []byte) ([]byte, error) {
	compressed := make([]byte, lz4.CompressBlockBound(len(data)))
	n, err := lz4.CompressBlock(data, compressed, nil)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil // incompressible
	}
	return compressed[:n], nil
}

func compressZSTD(data []byte) ([]byte, error) {
	enc := getZstdEncoder()
	defer putZstdEncoder(enc)

	return enc.EncodeAll(data, nil), nil
}

// decompressFrame unwraps a frame written by compressFrame.
func decompressFrame(frame []byte, comp Compression) ([]byte, error) {
	if len(frame) < frameHeaderSize {
		return nil, errors.New("frame too small for header")
	}

	uncompressedSize := binary.LittleEndian.Uint32(frame[0:])
	compressedSize := binary.LittleEndian.Uint32(frame[4:])

	if compressedSize == 0 {
		if uint32(len(frame)) < frameHeaderSize+uncompressedSize {
			return nil, errors.New("frame data too small")
		}
		out := make([]byte, uncompressedSize)
		copy(out, frame[frameHeaderSize:frameHeaderSize+uncompressedSize])
		return out, nil
	}

	if uint32(len(frame)) < frameHeaderSize+compressedSize {
		return nil, errors.New("compressed frame data too small")
	}
	compressed := frame[frameHeaderSize : frameHeaderSize+compressedSize]
	result := make([]byte, uncompressedSize)

	switch comp {
	case CompressionZSTD:
		dec := getZstdDecoder()
		defer putZstdDecoder(dec)

		decoded, err := dec.DecodeAll(compressed, result[:0])
		if err != nil {
			return nil, err
		}
		if uint32(len(decoded)) != uncompressedSize {
			return nil, errors.New("decompressed size mismatch")
		}
		return decoded, nil

	default: // LZ4 or fallback
		n, err := lz4.UncompressBlock(compressed, result)
		if err != nil {
			return nil, err
		}
		if uint32(n) != uncompressedSize {
			return nil, errors.New("decompressed size mismatch")
		}
		return result, nil
	}
}
