package csv

import (
	"github.com/shapestone/shape-csvstream/internal/tokenizer"
)

// Record represents a single row in a CSV file.
// It provides access to field values by index or by header name.
type Record struct {
	fields  []string
	nulls   []bool
	headers []string // Reference to scanner headers for name-based access
	index   map[string]int
}

// Get gets the field value at the specified index.
// Returns ("", false) if the index is out of bounds. A null field returns
// ("", true); use IsNull to tell it apart from an empty field.
func (r Record) Get(index int) (string, bool) {
	if index < 0 || index >= len(r.fields) {
		return "", false
	}
	return r.fields[index], true
}

// GetByName gets the field value by header name.
// Returns ("", false) if the header name is not found or if no headers are set.
//
// Example:
//
//	name, ok := record.GetByName("name")
//	if !ok {
//	    // Header "name" not found or no headers set
//	}
func (r Record) GetByName(name string) (string, bool) {
	i, ok := r.index[name]
	if !ok {
		return "", false
	}
	return r.Get(i)
}

// IsNull reports whether the field at index matched the null marker.
func (r Record) IsNull(index int) bool {
	return index >= 0 && index < len(r.nulls) && r.nulls[index]
}

// Fields returns all field values in the record.
// This returns a copy of the fields slice.
func (r Record) Fields() []string {
	out := make([]string, len(r.fields))
	copy(out, r.fields)
	return out
}

// Headers returns the header names the record was read with, if any.
func (r Record) Headers() []string {
	return r.headers
}

// Len returns the number of fields in the record.
func (r Record) Len() int {
	return len(r.fields)
}

// fill copies row into r, reusing r's slices when they are large enough.
func (r *Record) fill(row tokenizer.Row) {
	n := row.Len()
	if cap(r.fields) < n {
		r.fields = make([]string, n)
		r.nulls = make([]bool, n)
	}
	r.fields = r.fields[:n]
	r.nulls = r.nulls[:n]
	for i := range n {
		r.fields[i] = row.String(i)
		r.nulls[i] = row.IsNull(i)
	}
}

// headerIndex maps each header to its first column.
func headerIndex(headers []string) map[string]int {
	index := make(map[string]int, len(headers))
	for i, h := range headers {
		if _, dup := index[h]; !dup {
			index[h] = i
		}
	}
	return index
}
