package region

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
)

// Compression identifies the scheme used to compress a chunk or entity
// payload's body, per the byte following the 4-byte length prefix.
type Compression byte

const (
	CompressionGZip        Compression = 1
	CompressionZLib        Compression = 2
	CompressionUncompressed Compression = 3
)

// Known reports whether c is one of the compression schemes this codec
// understands. Any other byte value must be rejected rather than guessed at.
func (c Compression) Known() bool {
	switch c {
	case CompressionGZip, CompressionZLib, CompressionUncompressed:
		return true
	default:
		return false
	}
}

// Decompress expands body according to scheme. Uncompressed bodies are
// returned unchanged (not copied). GZIP and ZLIB delegate to
// klauspost/compress, a drop-in faster replacement for the standard
// library's compress/gzip and compress/zlib used for the same purpose in
// the region-file tools this package is modeled on.
func Decompress(body []byte, scheme Compression) ([]byte, error) {
	switch scheme {
	case CompressionUncompressed:
		return body, nil
	case CompressionGZip:
		r, err := gzip.NewReader(bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		defer r.Close()
		out, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		return out, nil
	case CompressionZLib:
		r, err := zlib.NewReader(bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("zlib: %w", err)
		}
		defer r.Close()
		out, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("zlib: %w", err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unknown compression scheme: %d", scheme)
	}
}
