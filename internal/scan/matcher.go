package scan

import (
	"encoding/binary"
)

const (
	lo7  = 0x7f7f7f7f7f7f7f7f
	ones = 0x0101010101010101
	// gather moves bit 8*i of a word to bit 56+i of the product.
	gather = 0x0102040810204080
)

// wideMatcher compares eight bytes at a time using SWAR arithmetic.
type wideMatcher struct {
	bcast [MaxSet]uint64 // each special byte broadcast to all 8 lanes
	n     int
}

func newWideMatcher(set []byte) *wideMatcher {
	m := &wideMatcher{n: len(set)}
	for i, b := range set {
		m.bcast[i] = uint64(b) * ones
	}
	return m
}

// Match implements Matcher.
func (m *wideMatcher) Match(window []byte) uint16 {
	n := len(window)
	if n == 0 {
		return 0
	}
	var pad [Width]byte
	w := window
	if n < Width {
		copy(pad[:], window)
		w = pad[:]
	}
	lo := m.lane(binary.LittleEndian.Uint64(w[0:8]))
	hi := m.lane(binary.LittleEndian.Uint64(w[8:16]))
	return (uint16(lo) | uint16(hi)<<8) & windowMask(n)
}

// lane returns an 8-bit mask of the bytes in x that are in the set.
func (m *wideMatcher) lane(x uint64) uint8 {
	var hits uint64
	for i := 0; i < m.n; i++ {
		hits |= zeroBytes(x ^ m.bcast[i])
	}
	return uint8(((hits >> 7) * gather) >> 56)
}

// zeroBytes sets the high bit of every byte of x that is zero. Unlike the
// (x-0x01..)&^x&0x80.. shortcut this has no false positives from borrows.
func zeroBytes(x uint64) uint64 {
	t := (x & lo7) + lo7
	return ^(t | x | lo7)
}

// scalarMatcher is the portable byte-at-a-time fallback.
type scalarMatcher struct {
	table [256]bool
}

func newScalarMatcher(set []byte) *scalarMatcher {
	m := &scalarMatcher{}
	for _, b := range set {
		m.table[b] = true
	}
	return m
}

// Match implements Matcher.
func (m *scalarMatcher) Match(window []byte) uint16 {
	n := len(window)
	if n > Width {
		n = Width
	}
	var mask uint16
	for i := 0; i < n; i++ {
		if m.table[window[i]] {
			mask |= 1 << uint(i)
		}
	}
	return mask
}
