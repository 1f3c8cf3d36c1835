package source

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/pkg/errors"
)

// Encoding is a whole-file compression format.
type Encoding int

const (
	EncNone Encoding = iota
	EncGZIP
	EncSnappy
	EncLZ4
	EncFlate
	EncZstd
)

const (
	ExtNone   = ""
	ExtGZIP   = ".gz"
	ExtSnappy = ".sz"
	ExtLZ4    = ".lz4"
	ExtFlate  = ".zz"
	ExtZstd   = ".zst"
)

func (e Encoding) String() string {
	switch e {
	case EncNone:
		return "none"
	case EncGZIP:
		return "gzip"
	case EncSnappy:
		return "snappy"
	case EncLZ4:
		return "lz4"
	case EncFlate:
		return "flate"
	case EncZstd:
		return "zstd"
	default:
		return fmt.Sprintf("Encoding(%d)", int(e))
	}
}

// FromFileExtension maps a file extension, including the dot, to its
// encoding. Extensions that are not compression formats map to EncNone.
func FromFileExtension(ext string) Encoding {
	switch strings.ToLower(ext) {
	case ExtGZIP:
		return EncGZIP
	case ExtSnappy:
		return EncSnappy
	case ExtLZ4:
		return EncLZ4
	case ExtFlate:
		return EncFlate
	case ExtZstd:
		return EncZstd
	default:
		return EncNone
	}
}

// EncodingOf returns the encoding implied by path's extension.
func EncodingOf(path string) Encoding {
	return FromFileExtension(filepath.Ext(path))
}

// NewDecompressor wraps r so that reads return decompressed bytes. Closing
// the result releases the decoder but does not close r.
func NewDecompressor(enc Encoding, r io.Reader) (io.ReadCloser, error) {
	switch enc {
	case EncNone:
		return io.NopCloser(r), nil
	case EncGZIP:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, errors.Wrap(err, "gzip")
		}
		return zr, nil
	case EncSnappy:
		return io.NopCloser(snappy.NewReader(r)), nil
	case EncLZ4:
		return io.NopCloser(lz4.NewReader(r)), nil
	case EncFlate:
		return flate.NewReader(r), nil
	case EncZstd:
		zr, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, errors.Wrap(err, "zstd")
		}
		return zr.IOReadCloser(), nil
	default:
		return nil, errors.Errorf("unsupported encoding %s", enc)
	}
}
