// Package interval holds the shared value model — inclusive UTC-millisecond
// intervals and numeric constraints — plus sweep-line set operations over
// sorted interval lists.
package interval

import "sort"

// Interval is an inclusive [Start, End] pair of UTC milliseconds since the
// Unix epoch. Start must be <= End.
type Interval struct {
	Start int64
	End   int64
}

// Clip returns i clipped to [lo, hi], and false if the clipped result would
// be empty (i.e. i does not intersect [lo, hi]).
func (i Interval) Clip(lo, hi int64) (Interval, bool) {
	s, e := i.Start, i.End
	if s < lo {
		s = lo
	}
	if e > hi {
		e = hi
	}
	if s > e {
		return Interval{}, false
	}
	return Interval{Start: s, End: e}, true
}

// ConstraintKind discriminates the three NumericConstraint variants.
type ConstraintKind int

const (
	// Single matches exactly one value.
	Single ConstraintKind = iota
	// Range matches a closed range of values.
	Range
	// Algebraic matches values of the form a*n+b or a*n-b for integer n >= 1.
	Algebraic
)

// AlgebraicOp discriminates the sign in an Algebraic constraint.
type AlgebraicOp int

const (
	// Plus computes a*n + b.
	Plus AlgebraicOp = iota
	// Minus computes a*n - b.
	Minus
)

// NumericConstraint is the sum type described in spec §3: Single(v),
// Range(s,e), or Algebraic(a,op,b).
type NumericConstraint struct {
	Kind ConstraintKind

	// Single
	Value int64

	// Range
	Start int64
	End   int64

	// Algebraic: matches a*n+b (Plus) or a*n-b (Minus) for n = 1, 2, ...
	A  int64
	Op AlgebraicOp
	B  int64
}

// NewSingle builds a Single constraint.
func NewSingle(v int64) NumericConstraint {
	return NumericConstraint{Kind: Single, Value: v}
}

// NewRange builds a Range constraint.
func NewRange(s, e int64) NumericConstraint {
	return NumericConstraint{Kind: Range, Start: s, End: e}
}

// NewAlgebraic builds an Algebraic constraint.
func NewAlgebraic(a int64, op AlgebraicOp, b int64) NumericConstraint {
	return NumericConstraint{Kind: Algebraic, A: a, Op: op, B: b}
}

// Enumerate yields every value matched by the constraint within [min, max],
// calling emit for each. For Algebraic constraints this enumerates
// n = 1, 2, ... only while the resulting value stays within [min, max].
func (c NumericConstraint) Enumerate(min, max int64, emit func(int64)) {
	switch c.Kind {
	case Single:
		if c.Value >= min && c.Value <= max {
			emit(c.Value)
		}
	case Range:
		lo, hi := c.Start, c.End
		if lo < min {
			lo = min
		}
		if hi > max {
			hi = max
		}
		for v := lo; v <= hi; v++ {
			emit(v)
		}
	case Algebraic:
		for n := int64(1); ; n++ {
			var v int64
			if c.Op == Plus {
				v = c.A*n + c.B
			} else {
				v = c.A*n - c.B
			}
			if v > max {
				return
			}
			if v >= min {
				emit(v)
			}
		}
	}
}

// SortIntervals sorts a slice of intervals in place by Start ascending.
func SortIntervals(ivs []Interval) {
	sort.Slice(ivs, func(i, j int) bool { return ivs[i].Start < ivs[j].Start })
}

// Coalesce sorts and merges touching/overlapping intervals: adjacent
// entries where next.Start <= prev.End+1 are combined into one.
func Coalesce(ivs []Interval) []Interval {
	if len(ivs) == 0 {
		return nil
	}
	cp := make([]Interval, len(ivs))
	copy(cp, ivs)
	SortIntervals(cp)

	out := make([]Interval, 0, len(cp))
	cur := cp[0]
	for _, next := range cp[1:] {
		if next.Start <= cur.End+1 {
			if next.End > cur.End {
				cur.End = next.End
			}
			continue
		}
		out = append(out, cur)
		cur = next
	}
	out = append(out, cur)
	return out
}

// Clone returns a defensive copy of ivs.
func Clone(ivs []Interval) []Interval {
	if ivs == nil {
		return nil
	}
	out := make([]Interval, len(ivs))
	copy(out, ivs)
	return out
}

// ClipAll clips every interval in ivs to [lo, hi], dropping any that fall
// entirely outside.
func ClipAll(ivs []Interval, lo, hi int64) []Interval {
	out := make([]Interval, 0, len(ivs))
	for _, iv := range ivs {
		if c, ok := iv.Clip(lo, hi); ok {
			out = append(out, c)
		}
	}
	return out
}
