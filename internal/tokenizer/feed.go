package tokenizer

// Feed parses and finalizes the first row of buf. It returns the bytes
// consumed and the row, or 0 and an empty Row if buf holds no complete row.
// The returned Row aliases buf, which Feed has modified in place.
func (t *Tokenizer) Feed(buf []byte) (int, Row, error) {
	return t.feed(buf, false)
}

func (t *Tokenizer) feed(buf []byte, final bool) (int, Row, error) {
	n, err := t.parseRow(buf, final)
	if err != nil || n == 0 {
		return 0, Row{}, err
	}
	t.Finalize(buf)
	return n, Row{buf: buf[:n], fields: t.fields}, nil
}

// FeedLast parses the final row of a stream, which may lack its trailing LF.
// In that case buf is copied into a tokenizer-owned spill buffer with an LF
// appended, and the returned count does not include the added LF. buf is
// left untouched when it is copied. An empty buf yields 0 and no row.
func (t *Tokenizer) FeedLast(buf []byte) (int, Row, error) {
	size := len(buf)
	if size == 0 {
		return 0, Row{}, nil
	}

	// A trailing CR is parsed as is so that it is reported as a lone CR
	// instead of being paired with the added LF.
	if last := buf[size-1]; last == '\n' || last == '\r' {
		return t.feed(buf, true)
	}

	t.spill = make([]byte, size+1)
	copy(t.spill, buf)
	t.spill[size] = '\n'

	n, row, err := t.feed(t.spill, true)
	if err != nil || n == 0 {
		return n, row, err
	}
	if n == size+1 {
		n--
		t.char--
		row.buf = row.buf[:n]
	}
	return n, row, nil
}
