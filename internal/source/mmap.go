package source

import (
	"github.com/shapestone/shape-csvstream/internal/stream"
)

// Bytes returns the mapped contents. The tokenizer rewrites its input, so
// the mapping is never parsed in place; use Fill.
func (m *Mapping) Bytes() []byte {
	return m.data
}

// Len returns the mapped size.
func (m *Mapping) Len() int {
	return len(m.data)
}

// Fill returns a fill function copying out of the mapping.
func (m *Mapping) Fill() stream.FillFunc {
	return FromBytes(m.data)
}
