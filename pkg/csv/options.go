// Package csv provides configurable options for CSV parsing.
package csv

import (
	"io"
	"unicode/utf8"

	"github.com/go-kit/log"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shapestone/shape-core/pkg/ast"

	"github.com/shapestone/shape-csvstream/internal/source"
	"github.com/shapestone/shape-csvstream/internal/stream"
	"github.com/shapestone/shape-csvstream/internal/tokenizer"
)

// ReaderOptions configures CSV parsing behavior.
// Special characters are single ASCII bytes; the tokenizer works on bytes.
type ReaderOptions struct {
	// Comma is the field delimiter.
	// It must be ASCII and not \r, \n, Quote or Escape.
	// Default: ','
	Comma rune

	// Quote encloses fields that contain delimiters, quotes or newlines.
	// Default: '"'
	Quote rune

	// Escape, inside a quoted field, makes the next character literal.
	// When equal to Quote, a doubled quote stands for one quote.
	// Default: Quote
	Escape rune

	// Null is the unquoted field text that denotes a missing value, for
	// example "NULL" or "\N". Empty disables null detection.
	// Default: ""
	Null string

	// FieldsPerRecord is the expected number of fields per record.
	// If positive, each record must have exactly this many fields.
	// If 0, the first record determines the expected field count.
	// If negative, no field count validation is performed.
	// Default: -1
	FieldsPerRecord int

	// MaxFields caps the number of fields in one record. 0 means no limit.
	MaxFields int

	// ReuseRecord controls whether Scanner.Record may return a Record
	// sharing its backing array with the previous one.
	// Default: false
	ReuseRecord bool

	// BufferSize is the initial read buffer size in bytes. Default: 1 MiB
	BufferSize int

	// GrowBy is how much the buffer grows when a record does not fit.
	// Default: 10 MiB
	GrowBy int

	// MaxBufferSize bounds the buffer, and with it the largest record.
	// 0 means no limit.
	MaxBufferSize int

	// Logger receives debug and warning events. Default: no-op
	Logger log.Logger

	// Metrics, if set, records rows, bytes, buffer growth and failures.
	// Create it once per registry with NewMetrics.
	Metrics *Metrics
}

// Metrics holds the stream collectors shared by every parse given them.
type Metrics = stream.Metrics

// NewMetrics registers the stream metrics with r.
func NewMetrics(r prometheus.Registerer) *Metrics {
	return stream.NewMetrics(r)
}

// DefaultReaderOptions returns the default reader configuration.
func DefaultReaderOptions() ReaderOptions {
	return ReaderOptions{
		Comma:           ',',
		Quote:           '"',
		Escape:          '"',
		FieldsPerRecord: -1,
		BufferSize:      stream.DefaultInitialBufferSize,
		GrowBy:          stream.DefaultGrowBy,
	}
}

// withDefaults fills zero-valued special characters.
func (o ReaderOptions) withDefaults() ReaderOptions {
	if o.Comma == 0 {
		o.Comma = ','
	}
	if o.Quote == 0 {
		o.Quote = '"'
	}
	if o.Escape == 0 {
		o.Escape = o.Quote
	}
	return o
}

// validSpecial reports whether r can serve as a delimiter, quote or escape.
func validSpecial(r rune) bool {
	return r > 0 && r < utf8.RuneSelf && r != '\r' && r != '\n'
}

// Validate checks if the options are valid.
// Returns an *OptionsError if the options are invalid.
func (o ReaderOptions) Validate() error {
	o = o.withDefaults()
	if !validSpecial(o.Comma) {
		return &OptionsError{Field: "Comma", Message: "invalid delimiter"}
	}
	if !validSpecial(o.Quote) {
		return &OptionsError{Field: "Quote", Message: "invalid quote character"}
	}
	if !validSpecial(o.Escape) {
		return &OptionsError{Field: "Escape", Message: "invalid escape character"}
	}
	if o.Comma == o.Quote || o.Comma == o.Escape {
		return &OptionsError{Field: "Comma", Message: "delimiter same as quote or escape"}
	}
	if len(o.Null) > tokenizer.MaxNullLen {
		return &OptionsError{Field: "Null", Message: "null marker too long"}
	}
	if o.MaxFields < 0 {
		return &OptionsError{Field: "MaxFields", Message: "must not be negative"}
	}
	if err := o.streamOptions().Validate(); err != nil {
		msg := err.Error()
		var perr *tokenizer.Error
		if errors.As(err, &perr) {
			msg = perr.Msg
		}
		return &OptionsError{Field: "BufferSize", Message: msg}
	}
	return nil
}

func (o ReaderOptions) tokenizerConfig() tokenizer.Config {
	o = o.withDefaults()
	return tokenizer.Config{
		Quote:     byte(o.Quote),
		Escape:    byte(o.Escape),
		Delimiter: byte(o.Comma),
		Null:      o.Null,
		MaxFields: o.MaxFields,
	}
}

func (o ReaderOptions) streamOptions() stream.Options {
	return stream.Options{
		InitialBufferSize: o.BufferSize,
		GrowBy:            o.GrowBy,
		MaxBufferSize:     o.MaxBufferSize,
		Logger:            o.Logger,
		Metrics:           o.Metrics,
	}
}

// newDriver builds a tokenizer and stream driver reading from fill.
func (o ReaderOptions) newDriver(fill stream.FillFunc) (*stream.Driver, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}
	tok, err := tokenizer.New(o.tokenizerConfig())
	if err != nil {
		return nil, err
	}
	return stream.New(tok, fill, o.streamOptions())
}

// ParseWithOptions parses CSV format into an AST from a string with custom options.
//
// Example:
//
//	opts := csv.DefaultReaderOptions()
//	opts.Comma = '\t'  // Tab-separated
//	opts.Null = `\N`
//	node, err := csv.ParseWithOptions("name\tage\nAlice\t\\N", opts)
func ParseWithOptions(input string, opts ReaderOptions) (ast.SchemaNode, error) {
	return parseAST(source.FromBytes([]byte(input)), opts)
}

// ParseReaderWithOptions parses CSV format into an AST from an io.Reader with custom options.
//
// Example:
//
//	opts := csv.DefaultReaderOptions()
//	opts.Comma = ';'
//	node, err := csv.ParseReaderWithOptions(file, opts)
func ParseReaderWithOptions(reader io.Reader, opts ReaderOptions) (ast.SchemaNode, error) {
	return parseAST(source.FromReader(reader), opts)
}

// ValidateWithOptions checks if the input string is valid CSV with custom options.
//
// Example:
//
//	opts := csv.DefaultReaderOptions()
//	opts.Comma = ';'  // Semicolon-separated
//	err := csv.ValidateWithOptions("a;b;c", opts)
func ValidateWithOptions(input string, opts ReaderOptions) error {
	return validate(source.FromBytes([]byte(input)), opts)
}

// OptionsError represents an invalid option configuration.
type OptionsError struct {
	Field   string
	Message string
}

func (e *OptionsError) Error() string {
	return "csv: invalid " + e.Field + ": " + e.Message
}
