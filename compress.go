// Compression codecs applied to the serialized document.

package docstore

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// Compression converts the serialized document to and from a smaller byte
// buffer. Implementations must be safe for concurrent use and lossless.
type Compression interface {
	Compress(data []byte) ([]byte, error)
	Decompress(data []byte) ([]byte, error)
}

// Zstd compresses with zstandard at the default level. It is the default
// compression and shares one encoder and decoder across all stores.
type Zstd struct{}

var (
	zstdOnce sync.Once
	zstdEnc  *zstd.Encoder
	zstdDec  *zstd.Decoder
)

func zstdInit() {
	// Stateless EncodeAll/DecodeAll usage; options are fixed so neither
	// constructor can fail.
	zstdEnc, _ = zstd.NewWriter(nil)
	zstdDec, _ = zstd.NewReader(nil)
}

func (Zstd) Compress(data []byte) ([]byte, error) {
	zstdOnce.Do(zstdInit)
	return zstdEnc.EncodeAll(data, nil), nil
}

func (Zstd) Decompress(data []byte) ([]byte, error) {
	zstdOnce.Do(zstdInit)
	out, err := zstdDec.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("zstd: %w", err)
	}
	return out, nil
}

// NoCompression stores the serialized document as-is. Combine with
// [JSON].Indent to keep the file human-readable.
type NoCompression struct{}

func (NoCompression) Compress(data []byte) ([]byte, error)   { return data, nil }
func (NoCompression) Decompress(data []byte) ([]byte, error) { return data, nil }
