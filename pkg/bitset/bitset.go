// Package bitset packs small-domain numeric predicates (weekdays, months,
// month-days, years) into a dense bit array, and enumerates the values
// matched by a NumericConstraint list at construction time.
package bitset

import "github.com/patrickspencer/scheduleexpr/pkg/interval"

// Set is a dense bitmap over the integer domain [Min, Max].
type Set struct {
	Min, Max int64
	bits     []byte
}

// New builds a Set covering [min, max] with every bit initially clear.
func New(min, max int64) *Set {
	n := max - min + 1
	return &Set{Min: min, Max: max, bits: make([]byte, (n+7)/8)}
}

// Compile builds a Set from a list of constraints, per spec §4.2 step 1.
func Compile(min, max int64, constraints []interval.NumericConstraint) *Set {
	s := New(min, max)
	for _, c := range constraints {
		c.Enumerate(min, max, func(v int64) { s.Set(v) })
	}
	return s
}

// Set turns on the bit for v. v outside [Min, Max] is a no-op.
func (s *Set) Set(v int64) {
	if v < s.Min || v > s.Max {
		return
	}
	idx := v - s.Min
	s.bits[idx/8] |= 1 << uint(idx%8)
}

// Test reports whether v's bit is set. v outside [Min, Max] is always false.
func (s *Set) Test(v int64) bool {
	if v < s.Min || v > s.Max {
		return false
	}
	idx := v - s.Min
	return s.bits[idx/8]&(1<<uint(idx%8)) != 0
}

// FullySet reports whether every value in [Min, Max] is set — the fast
// path described in spec §4.2 step 2 and the corrected mask from §9's
// open question (the source's `cache[0] === 0xFFF` check for a 12-value
// domain is impossible for a byte-sized cache slot and never fires; here
// we compute the correct all-set mask for however many bytes the bitmap
// occupies, including a partial mask for the trailing byte).
func (s *Set) FullySet() bool {
	n := s.Max - s.Min + 1
	fullBytes := n / 8
	for i := int64(0); i < fullBytes; i++ {
		if s.bits[i] != 0xFF {
			return false
		}
	}
	rem := n % 8
	if rem == 0 {
		return true
	}
	trailingMask := byte(1<<uint(rem)) - 1
	return s.bits[fullBytes]&trailingMask == trailingMask
}
