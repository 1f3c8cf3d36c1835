package tokenizer

import (
	"unsafe"
)

// noEscape marks a field without escape sequences.
const noEscape = -1

// Field describes one field of a row as offsets into the row's buffer.
type Field struct {
	// Start is the offset of the first content byte, past any opening quote.
	Start int
	// Len is the content length, excluding quotes. Finalize may shrink it.
	Len int
	// Esc is the offset of the first escape byte in a quoted field, or -1.
	Esc int
	// Quoted reports whether the field was enclosed in quotes.
	Quoted bool
	// Null reports whether the field matched the null marker.
	Null bool
}

// Row is a finalized row: field descriptors plus the buffer they index.
// A Row is only valid until the next call on the Tokenizer or driver that
// produced it; both the descriptors and the buffer are reused.
type Row struct {
	buf    []byte
	fields []Field
}

// NewRow returns a Row over buf. It is mostly useful in tests.
func NewRow(buf []byte, fields []Field) Row {
	return Row{buf: buf, fields: fields}
}

// Len returns the number of fields.
func (r Row) Len() int {
	return len(r.fields)
}

// Fields returns the field descriptors.
func (r Row) Fields() []Field {
	return r.fields
}

// Buffer returns the buffer the descriptors index into.
func (r Row) Buffer() []byte {
	return r.buf
}

// Field returns the i-th descriptor.
func (r Row) Field(i int) Field {
	return r.fields[i]
}

// IsNull reports whether the i-th field is null.
func (r Row) IsNull(i int) bool {
	return r.fields[i].Null
}

// Bytes returns the i-th field's content, or nil if the field is null.
// The slice aliases the row buffer.
func (r Row) Bytes(i int) []byte {
	f := r.fields[i]
	if f.Null {
		return nil
	}
	end := f.Start + f.Len
	return r.buf[f.Start:end:end]
}

// String returns a copy of the i-th field's content. Null fields yield "".
func (r Row) String(i int) string {
	return string(r.Bytes(i))
}

// UnsafeString returns the i-th field without copying. The string shares the
// row buffer and must not be retained past the row's lifetime.
func (r Row) UnsafeString(i int) string {
	b := r.Bytes(i)
	if len(b) == 0 {
		return ""
	}
	return unsafe.String(unsafe.SliceData(b), len(b))
}

// Strings returns copies of all fields. Null fields yield "".
func (r Row) Strings() []string {
	out := make([]string, len(r.fields))
	for i := range r.fields {
		out[i] = r.String(i)
	}
	return out
}
