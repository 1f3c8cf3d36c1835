package scan

import (
	"math/bits"
)

// Scanner yields the positions of special bytes in buf[p:q] in ascending
// order. The zero value is not usable; call Reset first.
type Scanner struct {
	m    Matcher
	buf  []byte
	base int    // start of the current window
	end  int    // exclusive end of the scan range
	bmap uint16 // unconsumed matches in the current window
}

// NewScanner returns a Scanner that uses m to classify bytes.
func NewScanner(m Matcher) *Scanner {
	return &Scanner{m: m}
}

// Reset anchors the scanner at p and limits it to buf[p:q].
func (s *Scanner) Reset(buf []byte, p, q int) {
	s.buf = buf
	s.base = p
	s.end = q
	s.bmap = s.fill(p)
}

// Next returns the absolute position of the next special byte, or None when
// the range is exhausted.
func (s *Scanner) Next() int {
	for s.bmap == 0 {
		s.base += Width
		if s.base >= s.end {
			return None
		}
		s.bmap = s.fill(s.base)
	}
	off := bits.TrailingZeros16(s.bmap)
	s.bmap &= s.bmap - 1
	return s.base + off
}

// fill computes the bitmap for the window starting at p, bounded by end.
func (s *Scanner) fill(p int) uint16 {
	if p >= s.end {
		return 0
	}
	q := p + Width
	if q > s.end {
		q = s.end
	}
	return s.m.Match(s.buf[p:q])
}
