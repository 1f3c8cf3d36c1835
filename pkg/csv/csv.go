// Package csv provides incremental CSV parsing and AST generation.
//
// Input is tokenized in place, a record at a time, by a scanner that finds
// the special bytes (delimiter, quote, escape, CR, LF) sixteen at a time.
// Records may arrive in arbitrarily split chunks; the result never depends on
// where the input was split.
//
// # Thread Safety
//
// All functions in this package are safe for concurrent use by multiple goroutines.
// Each function call creates its own parser instance with no shared mutable state.
// A Scanner must not be shared between goroutines.
//
// # Parsing APIs
//
//   - Parse(string) and ParseReader(io.Reader) build a Shape AST
//   - Scanner reads Records one at a time, with optional headers
//   - ScanReader, ScanBytes and ScanFile call a function for every record
//     without copying field data
//
// # Example usage with Scanner:
//
//	scanner := csv.NewScanner(file).SetHasHeaders(true)
//	for scanner.Scan() {
//	    name, _ := scanner.Record().GetByName("name")
//	    fmt.Println(name)
//	}
//	if err := scanner.Err(); err != nil {
//	    // handle error
//	}
//
// # Example usage with Parse:
//
//	node, err := csv.Parse("name,age\nAlice,30\nBob,25")
//	if err != nil {
//	    // handle error
//	}
//	// node is now a *ast.ArrayDataNode representing the CSV data
package csv

import (
	"io"

	"github.com/shapestone/shape-core/pkg/ast"
	"github.com/spf13/afero"

	"github.com/shapestone/shape-csvstream/internal/source"
)

// Parse parses CSV format into an AST from a string.
//
// Returns an ast.ArrayDataNode representing the parsed CSV:
//   - *ast.ArrayDataNode for the file (array of records)
//   - Each record is an *ast.ArrayDataNode of fields
//   - Each field is an *ast.LiteralNode containing a string value, or nil
//     for a field matching the null marker
//
// Example:
//
//	node, err := csv.Parse("name,age\nAlice,30\nBob,25")
//	arrayNode := node.(*ast.ArrayDataNode)
//	records := arrayNode.Elements()
//	// records[0] is the header row
//	// records[1] is the first data row
func Parse(input string) (ast.SchemaNode, error) {
	return ParseWithOptions(input, DefaultReaderOptions())
}

// ParseReader parses CSV format into an AST from an io.Reader.
//
// The input is tokenized incrementally, but the resulting AST holds every
// record. Use a Scanner or ScanReader to process large inputs in constant
// memory.
//
// Example:
//
//	file, err := os.Open("data.csv")
//	if err != nil {
//	    // handle error
//	}
//	defer file.Close()
//
//	node, err := csv.ParseReader(file)
func ParseReader(reader io.Reader) (ast.SchemaNode, error) {
	return ParseReaderWithOptions(reader, DefaultReaderOptions())
}

// Format returns the format identifier for this parser.
// Returns "CSV" to identify this as the CSV data format parser.
func Format() string {
	return "CSV"
}

// Validate checks if the input string is valid CSV.
//
// Returns nil if the input is valid CSV.
// Returns a *ParseError with the position of the first problem otherwise.
//
//	if err := csv.Validate(input); err != nil {
//	    fmt.Println("Invalid CSV:", err)
//	}
//
// Valid CSV includes:
//   - Simple fields: name,age
//   - Quoted fields: "name","age"
//   - Empty fields: a,,c
//   - Escaped quotes: "field with ""quotes"""
//   - Newlines in quoted fields: "field\nwith\nnewlines"
//   - A final record without a line ending
func Validate(input string) error {
	return ValidateWithOptions(input, DefaultReaderOptions())
}

// ValidateReader checks if the input from an io.Reader is valid CSV.
// The input is read incrementally and not retained.
func ValidateReader(reader io.Reader) error {
	return validate(source.FromReader(reader), DefaultReaderOptions())
}

// ScanFile calls onRow for every record of the file at path on fs.
// Files ending in .gz, .sz, .lz4, .zz or .zst are decompressed on the fly.
//
// Example:
//
//	err := csv.ScanFile(afero.NewOsFs(), "events.csv.zst", opts, onRow, nil)
func ScanFile(fs afero.Fs, path string, opts ReaderOptions, onRow RowFunc, onError ErrorFunc) error {
	f, err := source.Open(fs, path)
	if err != nil {
		return err
	}
	defer f.Close()
	return scanFill(f.Fill(), opts, onRow, onError)
}
