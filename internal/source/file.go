package source

import (
	"io"

	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"github.com/shapestone/shape-csvstream/internal/stream"
)

// File is an open, possibly compressed, CSV file.
type File struct {
	Path     string
	Encoding Encoding
	// Size is the on-disk size, before decompression.
	Size int64

	f  afero.File
	rc io.ReadCloser
}

// Open opens path on fs and picks a decompressor from its extension.
func Open(fs afero.Fs, path string) (*File, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "stat %s", path)
	}
	if info.IsDir() {
		f.Close()
		return nil, errors.Errorf("%s is a directory", path)
	}

	enc := EncodingOf(path)
	rc, err := NewDecompressor(enc, f)
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "open %s", path)
	}
	return &File{
		Path:     path,
		Encoding: enc,
		Size:     info.Size(),
		f:        f,
		rc:       rc,
	}, nil
}

// Read reads decompressed bytes.
func (f *File) Read(p []byte) (int, error) {
	return f.rc.Read(p)
}

// Fill returns a fill function over the decompressed contents.
func (f *File) Fill() stream.FillFunc {
	return FromReader(f.rc)
}

// Close releases the decompressor and the file.
func (f *File) Close() error {
	rerr := f.rc.Close()
	if err := f.f.Close(); err != nil {
		return errors.Wrapf(err, "close %s", f.Path)
	}
	return rerr
}
