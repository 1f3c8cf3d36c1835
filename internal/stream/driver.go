// Package stream drives a tokenizer over input that arrives in arbitrary
// chunks. A Driver owns one growable buffer: unconsumed bytes are moved to
// its front before every fill, and it is enlarged only when it is full and
// still holds no complete row.
package stream

import (
	"fmt"
	"io"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"

	"github.com/shapestone/shape-csvstream/internal/tokenizer"
)

const (
	// DefaultInitialBufferSize is the size of the first buffer allocation.
	DefaultInitialBufferSize = 1 << 20
	// DefaultGrowBy is the number of bytes added on each growth.
	DefaultGrowBy = 10 << 20
)

// FillFunc writes up to len(p) bytes of input into p and returns how many it
// wrote. Returning io.EOF, or 0 with a nil error, ends the stream. Any other
// error aborts the stream and is returned to the caller unchanged in kind.
type FillFunc func(p []byte) (int, error)

// Options configures a Driver.
type Options struct {
	// InitialBufferSize is the first buffer size. Default: 1 MiB
	InitialBufferSize int
	// GrowBy is added to the buffer whenever a row does not fit. Default: 10 MiB
	GrowBy int
	// MaxBufferSize caps the buffer. 0 means no limit.
	MaxBufferSize int
	// Logger receives debug and warning events. Default: no-op
	Logger log.Logger
	// Metrics is optional.
	Metrics *Metrics
}

// DefaultOptions returns the default driver options.
func DefaultOptions() Options {
	return Options{
		InitialBufferSize: DefaultInitialBufferSize,
		GrowBy:            DefaultGrowBy,
	}
}

func (o Options) withDefaults() Options {
	if o.InitialBufferSize == 0 {
		o.InitialBufferSize = DefaultInitialBufferSize
	}
	if o.GrowBy == 0 {
		o.GrowBy = DefaultGrowBy
	}
	if o.Logger == nil {
		o.Logger = log.NewNopLogger()
	}
	return o
}

// Validate checks the options after defaults are applied.
func (o Options) Validate() error {
	o = o.withDefaults()
	switch {
	case o.InitialBufferSize < 0:
		return tokenizer.NewError(tokenizer.KindBadParameter, "negative initial buffer size")
	case o.GrowBy < 0:
		return tokenizer.NewError(tokenizer.KindBadParameter, "negative buffer growth")
	case o.MaxBufferSize < 0:
		return tokenizer.NewError(tokenizer.KindBadParameter, "negative maximum buffer size")
	case o.MaxBufferSize > 0 && o.MaxBufferSize < o.InitialBufferSize:
		return tokenizer.NewError(tokenizer.KindBadParameter, "maximum buffer size is below the initial size")
	}
	return nil
}

// Driver pulls rows out of a stream of chunks.
type Driver struct {
	tok    *tokenizer.Tokenizer
	fill   FillFunc
	opts   Options
	logger log.Logger

	// buf[p:q] holds bytes read but not yet consumed.
	buf []byte
	p   int
	q   int

	eof  bool
	done bool
	err  error
}

// New returns a Driver that feeds tok from fill.
func New(tok *tokenizer.Tokenizer, fill FillFunc, opts Options) (*Driver, error) {
	if tok == nil || fill == nil {
		return nil, tokenizer.NewError(tokenizer.KindBadParameter, "tokenizer and fill function are required")
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	opts = opts.withDefaults()
	return &Driver{
		tok:    tok,
		fill:   fill,
		opts:   opts,
		logger: opts.Logger,
	}, nil
}

// Tokenizer returns the tokenizer the driver feeds.
func (d *Driver) Tokenizer() *tokenizer.Tokenizer {
	return d.tok
}

// BufferSize returns the current buffer capacity in bytes.
func (d *Driver) BufferSize() int {
	return len(d.buf)
}

// Next returns the next row. It returns io.EOF once the stream is exhausted
// and every byte has been consumed. Parse failures are *tokenizer.Error
// values; once Next has failed it keeps returning the same error.
//
// The returned Row aliases the driver's buffer and is valid until the next
// call to Next.
func (d *Driver) Next() (tokenizer.Row, error) {
	if d.err != nil {
		return tokenizer.Row{}, d.err
	}
	if d.done {
		return tokenizer.Row{}, io.EOF
	}

	for {
		if d.p < d.q {
			n, row, err := d.tok.Feed(d.buf[d.p:d.q])
			if err != nil {
				return tokenizer.Row{}, d.fail(err)
			}
			if n > 0 {
				d.p += n
				d.opts.Metrics.observeRow(n)
				return row, nil
			}
		}

		if d.eof {
			return d.last()
		}

		if err := d.refill(); err != nil {
			return tokenizer.Row{}, d.fail(err)
		}
	}
}

// last handles the bytes left once the source is exhausted.
func (d *Driver) last() (tokenizer.Row, error) {
	n, row, err := d.tok.FeedLast(d.buf[d.p:d.q])
	if err != nil {
		return tokenizer.Row{}, d.fail(err)
	}
	if n > 0 {
		d.p += n
		d.opts.Metrics.observeRow(n)
		return row, nil
	}
	if d.p < d.q {
		return tokenizer.Row{}, d.fail(d.tok.Fail(tokenizer.KindExtraTrailingInput, "extra data after last row"))
	}

	d.done = true
	level.Debug(d.logger).Log("msg", "end of stream", "rows", d.tok.Row(), "bytes", d.tok.Char(), "lines", d.tok.Line())
	return tokenizer.Row{}, io.EOF
}

// refill moves the unconsumed bytes to the front of the buffer, grows it if
// they fill it completely, and reads more input behind them.
func (d *Driver) refill() error {
	if d.buf == nil {
		d.buf = make([]byte, d.opts.InitialBufferSize)
		d.opts.Metrics.observeBuffer(len(d.buf), false)
	}

	if d.p > 0 {
		d.q = copy(d.buf, d.buf[d.p:d.q])
		d.p = 0
	}
	if d.q == len(d.buf) {
		if err := d.grow(); err != nil {
			return err
		}
	}

	p := d.buf[d.q:]
	n, err := d.fill(p)
	if n < 0 || n > len(p) {
		return d.tok.Fail(tokenizer.KindBadParameter, fmt.Sprintf("fill returned %d for a %d byte buffer", n, len(p)))
	}
	d.q += n

	switch {
	case errors.Is(err, io.EOF), err == nil && n == 0:
		d.eof = true
	case err != nil:
		return errors.Wrap(err, "fill")
	}
	return nil
}

func (d *Driver) grow() error {
	size := len(d.buf) + d.opts.GrowBy
	if limit := d.opts.MaxBufferSize; limit > 0 && size > limit {
		if len(d.buf) >= limit {
			return d.tok.Fail(tokenizer.KindOutOfMemory, fmt.Sprintf("cannot expand buffer beyond %d bytes", limit))
		}
		size = limit
	}

	level.Debug(d.logger).Log("msg", "growing buffer", "from", len(d.buf), "to", size, "row", d.tok.Row()+1)
	grown := make([]byte, size)
	copy(grown, d.buf[:d.q])
	d.buf = grown
	d.opts.Metrics.observeBuffer(size, true)
	return nil
}

// fail makes err sticky, and counts and logs parse failures.
func (d *Driver) fail(err error) error {
	d.err = err
	var perr *tokenizer.Error
	if errors.As(err, &perr) {
		d.opts.Metrics.observeError(perr.Kind)
		level.Warn(d.logger).Log("msg", "parse failed", "kind", perr.Kind, "line", perr.Line, "char", perr.Char, "row", perr.Row, "field", perr.Field, "err", perr.Msg)
	}
	return err
}
