// Package tokenizer splits raw CSV bytes into rows of fields.
//
// Parsing a row is two passes over the same buffer. ParseRow walks the bytes
// with a scan.Scanner and records field descriptors (offsets into the buffer)
// without writing anything; it is therefore restartable from scratch on a
// larger buffer whenever a row is incomplete. Finalize then rewrites the row
// in place: it terminates each field, squeezes out escape bytes and resolves
// null markers. Field data is never copied except by the in-place squeeze.
//
// A Tokenizer is not safe for concurrent use. Independent Tokenizers share
// no state.
package tokenizer

import (
	"fmt"

	"github.com/shapestone/shape-csvstream/internal/scan"
)

// MaxNullLen is the longest null marker accepted by Config.
const MaxNullLen = 19

// fieldGrowth is the number of descriptors added each time a row outgrows
// the descriptor array.
const fieldGrowth = 64

// Config holds the bytes that drive tokenization. It is fixed at creation.
type Config struct {
	// Quote encloses fields containing delimiters or newlines. Default: '"'
	Quote byte
	// Escape marks the next byte inside a quoted field as literal.
	// Default: Quote (the doubled-quote convention)
	Escape byte
	// Delimiter separates fields. Default: ','
	Delimiter byte
	// Null is the text of an unquoted field that denotes a null value.
	// Empty disables null detection.
	Null string
	// MaxFields caps the number of fields in a row. 0 means no limit.
	MaxFields int
	// Scalar forces the byte-at-a-time matcher instead of SWAR.
	Scalar bool
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Quote:     '"',
		Escape:    '"',
		Delimiter: ',',
	}
}

// withDefaults fills zero bytes with their defaults.
func (c Config) withDefaults() Config {
	if c.Quote == 0 {
		c.Quote = '"'
	}
	if c.Escape == 0 {
		c.Escape = c.Quote
	}
	if c.Delimiter == 0 {
		c.Delimiter = ','
	}
	return c
}

// Validate checks the configuration after defaults are applied.
func (c Config) Validate() error {
	c = c.withDefaults()
	for _, b := range []byte{c.Quote, c.Escape, c.Delimiter} {
		if b == '\r' || b == '\n' {
			return NewError(KindBadParameter, fmt.Sprintf("special byte %q may not be CR or LF", b))
		}
	}
	if c.Delimiter == c.Quote || c.Delimiter == c.Escape {
		return NewError(KindBadParameter, "delimiter must differ from quote and escape")
	}
	if len(c.Null) > MaxNullLen {
		return NewError(KindBadParameter, fmt.Sprintf("null marker longer than %d bytes", MaxNullLen))
	}
	if c.MaxFields < 0 {
		return NewError(KindBadParameter, "negative field limit")
	}
	return nil
}

// Tokenizer is the per-stream parse state: configuration, field descriptors
// for the current row, running position counters and the last error.
type Tokenizer struct {
	cfg  Config
	null []byte

	// fields holds the current row's descriptors; cap is the allocated capacity.
	fields []Field

	scan     *scan.Scanner
	unescape scan.Matcher

	// Counters advance only when a row completes.
	line int64
	char int64
	row  int64

	finalized int64

	err *Error

	// spill holds the final row when it lacks a trailing LF.
	spill []byte
}

// New creates a Tokenizer for cfg. Zero bytes in cfg take their defaults.
func New(cfg Config) (*Tokenizer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	wide := !cfg.Scalar && scan.Wide()
	special := []byte{cfg.Quote, cfg.Escape, cfg.Delimiter, '\r', '\n'}

	return &Tokenizer{
		cfg:      cfg,
		null:     []byte(cfg.Null),
		fields:   make([]Field, 0, fieldGrowth),
		scan:     scan.NewScanner(scan.NewMatcher(special, wide)),
		unescape: scan.NewMatcher([]byte{cfg.Escape}, wide),
	}, nil
}

// Config returns the effective configuration.
func (t *Tokenizer) Config() Config {
	return t.cfg
}

// Line returns the number of physical lines consumed so far.
func (t *Tokenizer) Line() int64 { return t.line }

// Char returns the number of bytes consumed so far.
func (t *Tokenizer) Char() int64 { return t.char }

// Row returns the number of rows completed so far.
func (t *Tokenizer) Row() int64 { return t.row }

// FieldsFinalized returns the total number of fields passed through Finalize.
func (t *Tokenizer) FieldsFinalized() int64 { return t.finalized }

// Err returns the most recent error, or nil.
func (t *Tokenizer) Err() *Error {
	return t.err
}

// Capacity returns the number of allocated field descriptors.
func (t *Tokenizer) Capacity() int {
	return cap(t.fields)
}

// fail records an error positioned relative to the last completed row.
// nline and off are the line count and byte offset within the current call.
func (t *Tokenizer) fail(kind Kind, msg string, field int, nline int64, off int) error {
	t.err = &Error{
		Kind:  kind,
		Msg:   msg,
		Line:  t.line + nline + 1,
		Char:  t.char + int64(off),
		Row:   t.row + 1,
		Field: field,
	}
	return t.err
}

// Fail records an error raised outside the tokenizer, such as leftover input
// detected by a stream driver, positioned at the current counters.
func (t *Tokenizer) Fail(kind Kind, msg string) *Error {
	_ = t.fail(kind, msg, 0, 0, 0)
	return t.err
}

// reserve makes room for one more descriptor, growing capacity in fixed
// increments. It reports false when the row would exceed MaxFields.
func (t *Tokenizer) reserve() bool {
	n := len(t.fields)
	if t.cfg.MaxFields > 0 && n >= t.cfg.MaxFields {
		return false
	}
	if n == cap(t.fields) {
		grown := make([]Field, n, n+fieldGrowth)
		copy(grown, t.fields)
		t.fields = grown
	}
	return true
}
