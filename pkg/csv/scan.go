package csv

import (
	"io"

	"github.com/shapestone/shape-csvstream/internal/source"
	"github.com/shapestone/shape-csvstream/internal/stream"
	"github.com/shapestone/shape-csvstream/internal/tokenizer"
)

// Row is a zero-copy view of one record. Its fields alias the parser's
// buffer and are only valid until the callback returns.
type Row = tokenizer.Row

// ErrStop can be returned from a RowFunc to stop scanning without an error.
var ErrStop = stream.ErrStop

// RowFunc receives each record with its 1-indexed row number.
type RowFunc func(rownum int64, row Row) error

// ErrorFunc is called with a parse failure before the scan returns it.
type ErrorFunc func(err *ParseError)

// ScanReader calls onRow for every record read from reader. It is the
// fastest way through a file: no strings are allocated unless onRow asks
// for them. onError may be nil. FieldsPerRecord and ReuseRecord are not
// applied; every row is passed through as tokenized.
//
// Example:
//
//	var total int
//	err := csv.ScanReader(file, csv.DefaultReaderOptions(), func(_ int64, row csv.Row) error {
//	    total += row.Len()
//	    return nil
//	}, nil)
func ScanReader(reader io.Reader, opts ReaderOptions, onRow RowFunc, onError ErrorFunc) error {
	return scanFill(source.FromReader(reader), opts, onRow, onError)
}

// ScanBytes is ScanReader over an in-memory document. data is not modified.
func ScanBytes(data []byte, opts ReaderOptions, onRow RowFunc, onError ErrorFunc) error {
	return scanFill(source.FromBytes(data), opts, onRow, onError)
}

// ScanFill is ScanReader over a custom fill function, which writes up to
// len(p) bytes into p and returns io.EOF, or 0 bytes, at the end of input.
func ScanFill(fill func(p []byte) (int, error), opts ReaderOptions, onRow RowFunc, onError ErrorFunc) error {
	return scanFill(fill, opts, onRow, onError)
}

func scanFill(fill stream.FillFunc, opts ReaderOptions, onRow RowFunc, onError ErrorFunc) error {
	d, err := opts.newDriver(fill)
	if err != nil {
		return err
	}

	var reported *ParseError
	err = d.Scan(stream.RowFunc(onRow), func(e *tokenizer.Error) {
		reported = toParseError(e).(*ParseError)
		if onError != nil {
			onError(reported)
		}
	})
	if reported != nil {
		return reported
	}
	return err
}
