package main

import (
	"io"
	"time"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/shapestone/shape-csvstream/internal/source"
	"github.com/shapestone/shape-csvstream/pkg/csv"
)

// fileResult is the outcome of tokenizing one file.
type fileResult struct {
	path     string
	encoding source.Encoding
	// size is the on-disk size; bytes is the decompressed size consumed.
	size   int64
	bytes  int64
	rows   int64
	fields int64
	took   time.Duration
	err    error
}

// openFill opens path for reading, mapping it into memory when enabled and
// possible.
func (a *app) openFill(path string) (func(p []byte) (int, error), io.Closer, source.Encoding, int64, error) {
	enc := source.EncodingOf(path)
	if _, local := a.fs.(*afero.OsFs); local && a.cfg.Mmap && enc == source.EncNone {
		m, err := source.Mmap(path)
		if err != nil {
			return nil, nil, enc, 0, err
		}
		return m.Fill(), m, enc, int64(m.Len()), nil
	}
	f, err := source.Open(a.fs, path)
	if err != nil {
		return nil, nil, enc, 0, err
	}
	return f.Fill(), f, f.Encoding, f.Size, nil
}

// scanFile runs onRow over every row of path. Each file gets its own parser.
func (a *app) scanFile(path string, metrics *csv.Metrics, onRow csv.RowFunc) fileResult {
	res := fileResult{path: path}
	start := time.Now()

	opts, err := a.readerOptions(metrics)
	if err != nil {
		res.err = err
		return res
	}
	fill, closer, enc, size, err := a.openFill(path)
	if err != nil {
		res.err = err
		return res
	}
	defer closer.Close()
	res.encoding, res.size = enc, size

	counted := func(p []byte) (int, error) {
		n, err := fill(p)
		if n > 0 {
			res.bytes += int64(n)
		}
		return n, err
	}
	res.err = csv.ScanFill(counted, opts, func(rownum int64, row csv.Row) error {
		res.rows++
		res.fields += int64(row.Len())
		if onRow != nil {
			return onRow(rownum, row)
		}
		return nil
	}, nil)
	res.took = time.Since(start)
	return res
}

// scanFiles scans paths with at most cfg.Concurrency files in flight and
// returns the results in input order. rowFunc, if set, supplies the row
// callback for each path; files are then scanned one at a time.
func (a *app) scanFiles(paths []string, rowFunc func(path string) csv.RowFunc) []fileResult {
	metrics := csv.NewMetrics(a.registry)
	results := make([]fileResult, len(paths))

	var g errgroup.Group
	limit := a.cfg.Concurrency
	if rowFunc != nil {
		// rows must come out in order
		limit = 1
	}
	g.SetLimit(limit)
	for i, path := range paths {
		var onRow csv.RowFunc
		if rowFunc != nil {
			onRow = rowFunc(path)
		}
		g.Go(func() error {
			results[i] = a.scanFile(path, metrics, onRow)
			return nil
		})
	}
	_ = g.Wait()
	return results
}
