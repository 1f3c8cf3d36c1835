package csv

import (
	"io"

	"github.com/shapestone/shape-csvstream/internal/source"
	"github.com/shapestone/shape-csvstream/internal/stream"
	"github.com/shapestone/shape-csvstream/internal/tokenizer"
)

// Scanner provides a streaming interface for reading CSV records one at a time.
// Records are tokenized incrementally as input arrives: memory use is bounded
// by the largest record, not by the size of the input.
//
// Example usage:
//
//	file, _ := os.Open("data.csv")
//	defer file.Close()
//
//	scanner := csv.NewScanner(file).SetHasHeaders(true)
//	for scanner.Scan() {
//	    record := scanner.Record()
//	    name, _ := record.GetByName("name")
//	    fmt.Println(name)
//	}
//	if err := scanner.Err(); err != nil {
//	    // handle error
//	}
type Scanner struct {
	fill       stream.FillFunc
	opts       ReaderOptions
	hasHeaders bool
	convert    HeaderConverter
	raw        bool // leave Record unset; callers read row directly

	driver  *stream.Driver
	headers []string
	index   map[string]int
	record  Record
	fields  int // expected fields per record, 0 until known

	// row is the tokenizer view of the current record, which starts at
	// rowLine and byte offset rowChar.
	row     tokenizer.Row
	rowLine int64
	rowChar int64

	ok  bool
	err error
}

// NewScanner creates a new Scanner that reads CSV from the given io.Reader
// with DefaultReaderOptions.
// By default, the scanner assumes no headers. Use SetHasHeaders(true) to treat
// the first row as headers.
//
// Example:
//
//	scanner := csv.NewScanner(reader)
func NewScanner(reader io.Reader) *Scanner {
	return NewScannerWithOptions(reader, DefaultReaderOptions())
}

// NewScannerWithOptions creates a new Scanner with custom options.
// Invalid options are reported by Err after the first call to Scan.
func NewScannerWithOptions(reader io.Reader, opts ReaderOptions) *Scanner {
	return &Scanner{
		fill: source.FromReader(reader),
		opts: opts,
	}
}

// SetHasHeaders sets whether the first row should be treated as headers.
// If true, the first row will be used as column names for GetByName() access.
// Returns the Scanner for method chaining.
//
// Example:
//
//	scanner := csv.NewScanner(reader).SetHasHeaders(true)
func (s *Scanner) SetHasHeaders(hasHeaders bool) *Scanner {
	s.hasHeaders = hasHeaders
	return s
}

// SetHeaderConverter sets a function applied to every header name before
// it is used for GetByName lookups and returned by Headers.
// Returns the Scanner for method chaining.
//
// Example:
//
//	scanner := csv.NewScanner(reader).SetHasHeaders(true).SetHeaderConverter(csv.SnakeCaseHeader)
func (s *Scanner) SetHeaderConverter(convert HeaderConverter) *Scanner {
	s.convert = convert
	return s
}

// SetReuseRecord sets whether the scanner should reuse the Record's storage.
// When true, the fields of a Record are overwritten by the next Scan.
// Returns the Scanner for method chaining.
//
// Example:
//
//	scanner := csv.NewScanner(reader).SetReuseRecord(true)
func (s *Scanner) SetReuseRecord(reuse bool) *Scanner {
	s.opts.ReuseRecord = reuse
	return s
}

// Scan advances the scanner to the next record.
// It returns false when there are no more records or an error occurs.
// After Scan returns false, the Err method will return any error that occurred.
//
// Example:
//
//	for scanner.Scan() {
//	    record := scanner.Record()
//	    // process record
//	}
//	if err := scanner.Err(); err != nil {
//	    // handle error
//	}
func (s *Scanner) Scan() bool {
	s.ok = false
	if s.err != nil {
		return false
	}
	if s.driver == nil {
		d, err := s.opts.newDriver(s.fill)
		if err != nil {
			s.err = err
			return false
		}
		s.driver = d
		if s.hasHeaders && !s.readHeaders() {
			return false
		}
	}

	row, ok := s.next()
	if !ok {
		return false
	}
	s.ok = true
	if s.raw {
		return true
	}
	if !s.opts.ReuseRecord {
		s.record = Record{}
	}
	s.record.fill(row)
	s.record.headers = s.headers
	s.record.index = s.index
	return true
}

// readHeaders consumes the header row.
func (s *Scanner) readHeaders() bool {
	row, ok := s.next()
	if !ok {
		s.headers = []string{}
		return s.err == nil
	}
	s.headers = row.Strings()
	if s.convert != nil {
		for i, h := range s.headers {
			s.headers[i] = s.convert(h)
		}
	}
	s.index = headerIndex(s.headers)
	return true
}

// next pulls one row and applies the field count check.
func (s *Scanner) next() (tokenizer.Row, bool) {
	tok := s.driver.Tokenizer()
	line, char := tok.Line()+1, tok.Char()

	row, err := s.driver.Next()
	if err == io.EOF {
		return row, false
	}
	if err != nil {
		s.err = toParseError(err)
		return row, false
	}
	s.row, s.rowLine, s.rowChar = row, line, char

	if s.opts.FieldsPerRecord >= 0 {
		if s.fields == 0 {
			s.fields = s.opts.FieldsPerRecord
			if s.fields == 0 {
				s.fields = row.Len()
			}
		}
		if row.Len() != s.fields {
			s.err = &ParseError{
				Line:  line,
				Char:  char,
				Row:   tok.Row(),
				Field: row.Len(),
				Msg:   ErrFieldCount.Error(),
				Err:   ErrFieldCount,
			}
			return row, false
		}
	}
	return row, true
}

// Record returns the current record.
// This should only be called after Scan() returns true.
//
// When ReuseRecord is enabled, the returned Record shares memory with
// previous calls. Copy the fields if you need to retain them.
func (s *Scanner) Record() Record {
	if !s.ok {
		return Record{fields: []string{}, headers: s.headers, index: s.index}
	}
	return s.record
}

// Err returns the error, if any, that was encountered during scanning.
// It returns nil if no error occurred or at EOF.
// Parse failures are *ParseError values.
func (s *Scanner) Err() error {
	return s.err
}

// Headers returns the column headers if SetHasHeaders(true) was called.
// Returns an empty slice if no headers were set.
// This is available after the first call to Scan().
func (s *Scanner) Headers() []string {
	if s.headers == nil {
		return []string{}
	}
	return s.headers
}

// Line returns the number of input lines consumed so far.
func (s *Scanner) Line() int64 {
	if s.driver == nil {
		return 0
	}
	return s.driver.Tokenizer().Line()
}

// InputOffset returns the input byte offset of the end of the most recently
// read record.
func (s *Scanner) InputOffset() int64 {
	if s.driver == nil {
		return 0
	}
	return s.driver.Tokenizer().Char()
}
