//go:build unix

package source

import (
	"os"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// Mapping is a file mapped read-only into memory.
type Mapping struct {
	data []byte
	f    *os.File
}

// Mmap maps the file at path. The mapping must be closed, and its bytes must
// not be used after Close.
func Mmap(path string) (*Mapping, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open file")
	}

	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, errors.Wrap(err, "failed to stat file")
	}

	size := stat.Size()
	if size == 0 {
		return &Mapping{data: []byte{}, f: f}, nil
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, errors.Wrap(err, "failed to mmap file")
	}
	// the driver reads the mapping front to back exactly once
	_ = unix.Madvise(data, unix.MADV_SEQUENTIAL)

	return &Mapping{data: data, f: f}, nil
}

// Close unmaps the file and closes it.
func (m *Mapping) Close() error {
	var err error
	if len(m.data) > 0 {
		err = unix.Munmap(m.data)
	}
	m.data = nil
	if cerr := m.f.Close(); err == nil {
		err = cerr
	}
	return err
}
