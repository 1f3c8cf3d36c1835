// Package csv provides error types for CSV parsing.
package csv

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/shapestone/shape-csvstream/internal/tokenizer"
)

// Kind classifies a parse failure.
type Kind = tokenizer.Kind

const (
	KindNone               = tokenizer.KindNone
	KindBadParameter       = tokenizer.KindBadParameter
	KindOutOfMemory        = tokenizer.KindOutOfMemory
	KindBadQuote           = tokenizer.KindBadQuote
	KindBadLineEnding      = tokenizer.KindBadLineEnding
	KindExtraTrailingInput = tokenizer.KindExtraTrailingInput
)

// Common parsing errors. A *ParseError unwraps to one of these.
var (
	// ErrBadParameter indicates an invalid call, such as a broken fill source.
	ErrBadParameter = tokenizer.ErrBadParameter

	// ErrOutOfMemory indicates a record needed more fields or buffer than allowed.
	ErrOutOfMemory = tokenizer.ErrOutOfMemory

	// ErrQuote indicates a closing quote followed by something other than a
	// delimiter or line ending.
	ErrQuote = tokenizer.ErrBadQuote

	// ErrLineEnding indicates a lone CR, or a stray quote in an unquoted field.
	ErrLineEnding = tokenizer.ErrBadLineEnding

	// ErrTrailingInput indicates input left after the last record, usually an
	// unterminated quoted field.
	ErrTrailingInput = tokenizer.ErrExtraTrailingInput

	// ErrFieldCount indicates a record has the wrong number of fields.
	ErrFieldCount = errors.New("wrong number of fields")
)

// ParseError represents a parsing error with position information.
// It provides detailed context about where the error occurred in the CSV data.
type ParseError struct {
	// Kind is the tokenizer failure, or KindNone for record-level checks.
	Kind Kind
	// Line is the line where the error occurred (1-indexed).
	Line int64
	// Char is the byte offset of the error from the start of input (0-indexed).
	Char int64
	// Row is the record being read (1-indexed, counting the header).
	Row int64
	// Field is the field being read (1-indexed).
	Field int
	// Msg describes the failure.
	Msg string
	// Err is the underlying error.
	Err error
}

// Error returns a formatted error message with position information.
func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error on line %d, row %d, field %d (byte %d): %s", e.Line, e.Row, e.Field, e.Char, e.Msg)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// toParseError converts tokenizer failures to *ParseError and leaves other
// errors, such as read failures, untouched.
func toParseError(err error) error {
	var perr *tokenizer.Error
	if !errors.As(err, &perr) {
		return err
	}
	return &ParseError{
		Kind:  perr.Kind,
		Line:  perr.Line,
		Char:  perr.Char,
		Row:   perr.Row,
		Field: perr.Field,
		Msg:   perr.Msg,
		Err:   perr.Unwrap(),
	}
}
