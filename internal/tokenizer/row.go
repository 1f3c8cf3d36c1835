package tokenizer

import (
	"github.com/shapestone/shape-csvstream/internal/scan"
)

// state is a position in the per-field state machine of parseRow.
type state int

const (
	stateFieldStart state = iota
	stateUnquoted
	stateQuoted
	stateFieldClose
	stateRowDone
)

// ParseRow delimits the first row of buf. It returns the number of bytes the
// row occupies, including its terminator, or 0 if buf holds no complete row.
// ParseRow never writes to buf; the recorded descriptors are only valid for
// this exact buf until Finalize has run.
func (t *Tokenizer) ParseRow(buf []byte) (int, error) {
	return t.parseRow(buf, false)
}

// parseRow implements ParseRow. When final is set, buf is the last input of
// the stream and a CR at its very end cannot be completed by a later LF.
func (t *Tokenizer) parseRow(buf []byte, final bool) (int, error) {
	t.fields = t.fields[:0]
	if len(buf) == 0 {
		return 0, nil
	}

	var (
		quote = t.cfg.Quote
		esc   = t.cfg.Escape
		delim = t.cfg.Delimiter
		sc    = t.scan
		end   = len(buf)

		st     = stateFieldStart
		pos    int   // current scan position
		start  int   // first byte of the current field
		escPos int   // first escape byte of the current field, or -1
		quoted bool  // current field started with a quote
		nline  int64 // newlines seen inside quoted fields
	)
	sc.Reset(buf, 0, end)

	for st != stateRowDone {
		switch st {
		case stateFieldStart:
			if !t.reserve() {
				return 0, t.fail(KindOutOfMemory, "too many fields", len(t.fields)+1, nline, pos)
			}
			start = pos
			escPos = noEscape
			if start >= end {
				return 0, nil
			}
			quoted = buf[start] == quote
			if quoted {
				// the opening quote is the next match; consume it
				sc.Next()
				st = stateQuoted
			} else {
				st = stateUnquoted
			}

		case stateUnquoted:
			next := sc.Next()
			if next == scan.None {
				return 0, nil
			}
			pos = next
			st = stateFieldClose

		case stateQuoted:
			next := sc.Next()
			if next == scan.None {
				return 0, nil
			}
			pos = next
			c := buf[pos]

			if c == quote {
				follow := sc.Next()
				if follow == scan.None {
					return 0, nil
				}
				if follow != pos+1 {
					return 0, t.fail(KindBadQuote, "bad value after quote", len(t.fields)+1, nline, pos+1)
				}
				if esc == quote && buf[follow] == quote {
					if escPos == noEscape {
						escPos = pos
					}
					continue
				}
				pos = follow
				st = stateFieldClose
				continue
			}

			if c == esc {
				if escPos == noEscape {
					escPos = pos
				}
				pos += 2
				if pos >= end {
					return 0, nil
				}
				sc.Reset(buf, pos, end)
				continue
			}

			// delimiter, CR and LF are content inside quotes
			if c == '\n' {
				nline++
			}

		case stateFieldClose:
			f := Field{Start: start, Len: pos - start, Esc: escPos, Quoted: quoted}
			if quoted {
				f.Start++
				f.Len -= 2
			}
			t.fields = append(t.fields, f)

			c := buf[pos]
			switch {
			case c == delim:
				pos++
				st = stateFieldStart
			case c == '\n':
				pos++
				st = stateRowDone
			case c == '\r':
				if pos+1 < end && buf[pos+1] == '\n' {
					pos += 2
					st = stateRowDone
					break
				}
				if pos+1 == end && !final {
					// the LF may arrive with the next chunk
					return 0, nil
				}
				return 0, t.fail(KindBadLineEnding, "CRLF expected", len(t.fields), nline, pos)
			default:
				return 0, t.fail(KindBadLineEnding, "CRLF expected", len(t.fields), nline, pos)
			}
		}
	}

	t.line += nline + 1
	t.row++
	t.char += int64(pos)
	return pos, nil
}
