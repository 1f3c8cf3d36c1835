// Package source provides fill functions for stream.Driver: in-memory
// bytes, arbitrary io.Readers, files on an afero.Fs with transparent
// decompression, and memory-mapped files.
package source

import (
	"io"

	"github.com/shapestone/shape-csvstream/internal/stream"
)

// FromReader returns a fill function reading from r. A read that returns no
// bytes and no error is retried, so that an empty fill always means the end
// of r.
func FromReader(r io.Reader) stream.FillFunc {
	return func(p []byte) (int, error) {
		return io.ReadAtLeast(r, p, 1)
	}
}

// FromBytes returns a fill function serving data. data is copied out, never
// modified.
func FromBytes(data []byte) stream.FillFunc {
	return Chunks(data)
}

// Chunks returns a fill function serving each chunk in turn. A fill never
// spans two chunks, so the chunk boundaries are exactly where the driver sees
// its input split. Empty chunks are skipped.
func Chunks(chunks ...[]byte) stream.FillFunc {
	chunks = append([][]byte(nil), chunks...)
	return func(p []byte) (int, error) {
		for len(chunks) > 0 && len(chunks[0]) == 0 {
			chunks = chunks[1:]
		}
		if len(chunks) == 0 {
			return 0, io.EOF
		}
		n := copy(p, chunks[0])
		chunks[0] = chunks[0][n:]
		return n, nil
	}
}

// Split cuts data into chunks of at most size bytes.
func Split(data []byte, size int) [][]byte {
	if size <= 0 {
		size = len(data)
	}
	var chunks [][]byte
	for len(data) > size {
		chunks = append(chunks, data[:size])
		data = data[size:]
	}
	return append(chunks, data)
}
