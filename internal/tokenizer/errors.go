package tokenizer

import (
	"errors"
	"fmt"
)

// Kind classifies a tokenizer error.
type Kind int

const (
	// KindNone means no error has been recorded.
	KindNone Kind = iota
	// KindBadParameter indicates an invalid call or configuration.
	KindBadParameter
	// KindOutOfMemory indicates field or buffer growth was refused.
	KindOutOfMemory
	// KindBadQuote indicates a closing quote followed by an ordinary byte.
	KindBadQuote
	// KindBadLineEnding indicates a lone CR or another malformed terminator.
	KindBadLineEnding
	// KindExtraTrailingInput indicates bytes left over after the final row.
	KindExtraTrailingInput
)

// String returns the string representation of Kind.
func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindBadParameter:
		return "bad_parameter"
	case KindOutOfMemory:
		return "out_of_memory"
	case KindBadQuote:
		return "bad_quote"
	case KindBadLineEnding:
		return "bad_line_ending"
	case KindExtraTrailingInput:
		return "extra_trailing_input"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Sentinel errors, one per Kind. An *Error unwraps to the sentinel of its kind.
var (
	ErrBadParameter       = errors.New("bad parameter")
	ErrOutOfMemory        = errors.New("out of memory")
	ErrBadQuote           = errors.New("bad value after quote")
	ErrBadLineEnding      = errors.New("CRLF expected")
	ErrExtraTrailingInput = errors.New("extra data after last row")
)

func (k Kind) sentinel() error {
	switch k {
	case KindBadParameter:
		return ErrBadParameter
	case KindOutOfMemory:
		return ErrOutOfMemory
	case KindBadQuote:
		return ErrBadQuote
	case KindBadLineEnding:
		return ErrBadLineEnding
	case KindExtraTrailingInput:
		return ErrExtraTrailingInput
	default:
		return nil
	}
}

// Error is a tokenizer failure together with the position it occurred at.
type Error struct {
	Kind Kind
	Msg  string
	// Line is the 1-indexed physical line, counting newlines inside quotes.
	Line int64
	// Char is the 0-indexed byte offset from the start of the stream.
	Char int64
	// Row is the 1-indexed row being parsed.
	Row int64
	// Field is the 1-indexed field within the row.
	Field int
}

// Error returns a formatted message with position information.
func (e *Error) Error() string {
	return fmt.Sprintf("csv: %s at line %d, char %d, row %d, field %d", e.Msg, e.Line, e.Char, e.Row, e.Field)
}

// Unwrap returns the sentinel error for e.Kind.
func (e *Error) Unwrap() error {
	return e.Kind.sentinel()
}

// NewError returns an *Error without position information.
func NewError(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}
