package stream

import (
	"io"

	"github.com/pkg/errors"

	"github.com/shapestone/shape-csvstream/internal/tokenizer"
)

// ErrStop may be returned by a RowFunc to end Scan early without an error.
var ErrStop = errors.New("stop scanning")

// RowFunc receives each row with its 1-based row number. The row is only
// valid for the duration of the call.
type RowFunc func(rownum int64, row tokenizer.Row) error

// ErrorFunc is told about a parse failure before Scan returns it.
type ErrorFunc func(err *tokenizer.Error)

// Scan calls onRow for every row until the stream ends, onRow returns an
// error, or parsing fails. onRow and onError may be nil. Returning ErrStop from onRow
// makes Scan return nil.
func (d *Driver) Scan(onRow RowFunc, onError ErrorFunc) error {
	for {
		row, err := d.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			var perr *tokenizer.Error
			if onError != nil && errors.As(err, &perr) {
				onError(perr)
			}
			return err
		}
		if onRow == nil {
			continue
		}
		if err := onRow(d.tok.Row(), row); err != nil {
			if errors.Is(err, ErrStop) {
				return nil
			}
			return err
		}
	}
}
