// Package scan locates special bytes in a byte window.
//
// The scanner works on 16-byte windows. For each window a Matcher produces a
// bitmap with one bit per lane that holds a special byte; the Scanner then
// hands out match positions lowest-first and only loads the next window once
// the current bitmap is exhausted.
//
// Two matchers are provided: a SWAR (SIMD Within A Register) matcher that
// compares eight bytes at a time in a uint64, and a table-driven scalar
// fallback. Both produce identical bitmaps.
package scan

import (
	"math/bits"
)

// Width is the number of bytes examined per window.
const Width = 16

// None is returned by Scanner.Next when the window holds no further match.
const None = -1

// MaxSet is the largest special-byte set a Matcher accepts.
const MaxSet = 5

// Matcher reports which bytes of a window belong to a fixed byte set.
type Matcher interface {
	// Match returns a bitmap where bit i is set if window[i] is in the set.
	// Only the first min(len(window), Width) bytes are examined.
	Match(window []byte) uint16
}

// NewMatcher returns a Matcher for set. Duplicate bytes are ignored and at
// most MaxSet distinct bytes are kept. When wide is false the scalar
// implementation is returned.
func NewMatcher(set []byte, wide bool) Matcher {
	uniq := dedupe(set)
	if wide {
		return newWideMatcher(uniq)
	}
	return newScalarMatcher(uniq)
}

// Wide reports whether the SWAR matcher should be preferred on this platform.
// SWAR relies on native 64-bit arithmetic.
func Wide() bool {
	return bits.UintSize == 64
}

func dedupe(set []byte) []byte {
	uniq := make([]byte, 0, MaxSet)
	for _, b := range set {
		dup := false
		for _, u := range uniq {
			if u == b {
				dup = true
				break
			}
		}
		if !dup && len(uniq) < MaxSet {
			uniq = append(uniq, b)
		}
	}
	return uniq
}

// windowMask returns a bitmap with the low n bits set, n <= Width.
func windowMask(n int) uint16 {
	if n >= Width {
		return 0xffff
	}
	return uint16(1)<<uint(n) - 1
}
