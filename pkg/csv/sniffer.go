// Package csv provides CSV dialect detection and header sniffing.
package csv

import (
	"bytes"
	"regexp"
	"strings"
	"unicode"
)

// sniffDelimiters are the candidate delimiters, in order of preference on a tie.
var sniffDelimiters = []rune{',', '\t', ';', '|'}

// sniffRecords is how many records of the sample are compared.
const sniffRecords = 20

var (
	headerPatterns = []*regexp.Regexp{
		regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`),       // snake_case or identifier
		regexp.MustCompile(`^[a-zA-Z]+[A-Z][a-zA-Z]*$`),      // camelCase
		regexp.MustCompile(`^[A-Z][a-z]+([ ][A-Z][a-z]+)*$`), // Title Case
	}
	datePatterns = []*regexp.Regexp{
		regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`),
		regexp.MustCompile(`^\d{2}/\d{2}/\d{4}$`),
	}
)

// Sniffer detects CSV dialect (delimiter, headers) from a sample of the
// input. The sample is tokenized with each candidate delimiter; the one that
// splits records into the most fields, consistently, wins.
type Sniffer struct {
	sample    []byte
	quote     rune
	delimiter rune
	hasHeader bool
	analyzed  bool
}

// NewSniffer creates a new Sniffer with a sample of CSV data, typically the
// first few kilobytes of a file. A record cut off at the end of the sample
// is ignored. For best results, provide at least 2-3 lines of data.
func NewSniffer(sample []byte) *Sniffer {
	if i := bytes.LastIndexByte(sample, '\n'); i >= 0 {
		sample = sample[:i+1]
	}
	return &Sniffer{sample: sample, quote: '"'}
}

// analyze performs dialect detection on the sample.
func (s *Sniffer) analyze() {
	if s.analyzed {
		return
	}
	s.delimiter = s.detectDelimiter()
	s.hasHeader = s.detectHeader()
	s.analyzed = true
}

// DetectDelimiter returns the detected field delimiter.
// Common delimiters checked: comma, tab, semicolon, pipe.
func (s *Sniffer) DetectDelimiter() rune {
	s.analyze()
	return s.delimiter
}

// HasHeader returns true if the first row appears to be a header.
func (s *Sniffer) HasHeader() bool {
	s.analyze()
	return s.hasHeader
}

// ReaderOptions returns DefaultReaderOptions with the detected delimiter.
func (s *Sniffer) ReaderOptions() ReaderOptions {
	opts := DefaultReaderOptions()
	opts.Comma = s.DetectDelimiter()
	return opts
}

// records tokenizes up to sniffRecords records of the sample. Tokenizing
// stops at the first error; the records before it are returned.
func (s *Sniffer) records(delim rune) [][]string {
	opts := DefaultReaderOptions()
	opts.Comma = delim
	opts.Quote = s.quote
	opts.Escape = s.quote
	opts.BufferSize = len(s.sample) + 1
	opts.GrowBy = 4096

	var records [][]string
	_ = ScanBytes(s.sample, opts, func(rownum int64, row Row) error {
		records = append(records, row.Strings())
		if rownum >= sniffRecords {
			return ErrStop
		}
		return nil
	}, nil)
	return records
}

// detectDelimiter performs the actual delimiter detection.
func (s *Sniffer) detectDelimiter() rune {
	best := ','
	bestScore := 0
	for _, delim := range sniffDelimiters {
		records := s.records(delim)
		if len(records) == 0 {
			continue
		}

		// Score based on consistency across records
		fields := len(records[0])
		score := fields - 1
		consistent := true
		for _, rec := range records[1:] {
			if len(rec) != fields {
				consistent = false
				break
			}
		}
		if consistent {
			score *= 10
		}
		if score > bestScore {
			best = delim
			bestScore = score
		}
	}
	return best
}

// detectHeader uses heuristics to determine if first row is a header.
//
// Heuristics:
//  1. Headers are typically non-numeric
//  2. Headers often contain underscores or are camelCase
//  3. Headers don't usually contain data such as emails or dates
func (s *Sniffer) detectHeader() bool {
	records := s.records(s.delimiter)
	if len(records) < 2 {
		return false // Need at least 2 records to compare
	}

	headerScore := 0
	dataScore := 0
	for _, field := range records[0] {
		field = strings.TrimSpace(field)
		if isLikelyHeader(field) {
			headerScore++
		}
		if isLikelyData(field) {
			dataScore++
		}
	}
	return headerScore > dataScore
}

// isLikelyHeader checks if a field looks like a header name.
func isLikelyHeader(s string) bool {
	if s == "" || isNumeric(s) {
		return false
	}
	for _, pattern := range headerPatterns {
		if pattern.MatchString(s) {
			return true
		}
	}
	return false
}

// isLikelyData checks if a field looks like data rather than a header.
func isLikelyData(s string) bool {
	if s == "" {
		return false
	}
	if isNumeric(s) || strings.Contains(s, "@") {
		return true
	}
	for _, pattern := range datePatterns {
		if pattern.MatchString(s) {
			return true
		}
	}
	return false
}

// isNumeric checks if a string represents a number.
func isNumeric(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}

	// Allow leading minus for negative numbers
	if s[0] == '-' {
		s = s[1:]
	}

	hasDot := false
	for _, ch := range s {
		if ch == '.' {
			if hasDot {
				return false
			}
			hasDot = true
		} else if !unicode.IsDigit(ch) {
			return false
		}
	}
	return len(s) > 0
}

// HeaderConverter is a function that transforms header names.
type HeaderConverter func(string) string

// LowercaseHeader converts headers to lowercase.
func LowercaseHeader(s string) string {
	return strings.ToLower(s)
}

// UppercaseHeader converts headers to uppercase.
func UppercaseHeader(s string) string {
	return strings.ToUpper(s)
}

// SnakeCaseHeader converts headers to snake_case.
func SnakeCaseHeader(s string) string {
	var result strings.Builder
	prevWasSpace := false
	for i, ch := range s {
		if ch == ' ' {
			if result.Len() > 0 && !prevWasSpace {
				result.WriteRune('_')
			}
			prevWasSpace = true
			continue
		}
		if unicode.IsUpper(ch) && i > 0 && !prevWasSpace {
			result.WriteRune('_')
		}
		result.WriteRune(unicode.ToLower(ch))
		prevWasSpace = false
	}
	return result.String()
}
