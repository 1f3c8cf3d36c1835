//go:build !unix

package source

import (
	"os"

	"github.com/pkg/errors"
)

// Mapping holds a whole file in memory. Platforms without mmap read the file
// instead.
type Mapping struct {
	data []byte
}

// Mmap reads the file at path into memory.
func Mmap(path string) (*Mapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read file")
	}
	return &Mapping{data: data}, nil
}

// Close releases the data.
func (m *Mapping) Close() error {
	m.data = nil
	return nil
}
