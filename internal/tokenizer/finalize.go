package tokenizer

import (
	"bytes"
	"math/bits"

	"github.com/shapestone/shape-csvstream/internal/scan"
)

// Finalize rewrites the row delimited by the last successful ParseRow in
// place. Each field gets a NUL terminator after its content, escape bytes in
// quoted fields are squeezed out, and unquoted fields equal to the null
// marker are flagged as null. buf must be the buffer given to ParseRow and
// must not have been modified since. Finalize must run at most once per row.
func (t *Tokenizer) Finalize(buf []byte) {
	for i := range t.fields {
		f := &t.fields[i]
		end := f.Start + f.Len

		if f.Esc == noEscape {
			if len(t.null) > 0 && !f.Quoted && bytes.Equal(buf[f.Start:end], t.null) {
				f.Null = true
			}
			buf[end] = 0
			continue
		}

		f.Len = squeeze(buf[f.Start:end], f.Esc-f.Start, t.unescape)
		buf[f.Start+f.Len] = 0
	}
	t.finalized += int64(len(t.fields))
}

// squeeze removes escape bytes, as classified by m, from field starting at
// from, which must hold an escape byte. Each escape byte is dropped and the byte after it kept.
// Runs without escapes are moved a window at a time. It returns the new
// length; nothing past the old length is written.
func squeeze(field []byte, from int, m scan.Matcher) int {
	n := len(field)
	w, r := from, from
	for r < n {
		// field[r] is an escape byte
		r++
		if r < n {
			field[w] = field[r]
			w++
			r++
		}

		for r < n {
			mask := m.Match(field[r:])
			if mask == 0 {
				k := min(scan.Width, n-r)
				copy(field[w:], field[r:r+k])
				w += k
				r += k
				continue
			}
			k := bits.TrailingZeros16(mask)
			copy(field[w:], field[r:r+k])
			w += k
			r += k
			break
		}
	}
	return w
}
