package block

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/patrickspencer/scheduleexpr/pkg/bitset"
	"github.com/patrickspencer/scheduleexpr/pkg/interval"
	"github.com/patrickspencer/scheduleexpr/pkg/scherr"
)

// FieldKind discriminates the four bitmap-backed numeric fields. They
// share every mechanic in spec §4.2 (bitmap compilation, fast path,
// calendar-unit walk) and differ only in bounds and the unit walked, so
// this module follows the tagged-sum-type recommendation in spec §9
// rather than four near-duplicate types.
type FieldKind int

const (
	// WeekDayKind matches ISO weekdays, 1 (Monday) through 7 (Sunday).
	WeekDayKind FieldKind = iota
	// MonthKind matches calendar months, 1 through 12.
	MonthKind
	// MonthDayKind matches days-of-month, 1 through 31.
	MonthDayKind
	// YearKind matches calendar years, -9999 through 9999.
	YearKind
)

func (k FieldKind) bounds() (min, max int64) {
	switch k {
	case WeekDayKind:
		return 1, 7
	case MonthKind:
		return 1, 12
	case MonthDayKind:
		return 1, 31
	case YearKind:
		return -9999, 9999
	}
	panic("unreachable field kind")
}

func (k FieldKind) prefix() string {
	switch k {
	case WeekDayKind:
		return "WD"
	case MonthKind:
		return "M"
	case MonthDayKind:
		return "MD"
	case YearKind:
		return "Y"
	}
	panic("unreachable field kind")
}

// NumericField is a WeekDayField, MonthField, MonthDayField, or YearField
// per spec §3, distinguished by Kind.
type NumericField struct {
	Kind        FieldKind
	constraints []interval.NumericConstraint
	merge       MergeState

	bitmap *bitset.Set // lazily compiled, invalidated by mutation
	hash   *uint64
}

// NewWeekDayField builds a WeekDayField over [1,7].
func NewWeekDayField(constraints []interval.NumericConstraint) (*NumericField, error) {
	return newNumericField(WeekDayKind, constraints)
}

// NewMonthField builds a MonthField over [1,12].
func NewMonthField(constraints []interval.NumericConstraint) (*NumericField, error) {
	return newNumericField(MonthKind, constraints)
}

// NewMonthDayField builds a MonthDayField over [1,31].
func NewMonthDayField(constraints []interval.NumericConstraint) (*NumericField, error) {
	return newNumericField(MonthDayKind, constraints)
}

// NewYearField builds a YearField over [-9999,9999].
func NewYearField(constraints []interval.NumericConstraint) (*NumericField, error) {
	return newNumericField(YearKind, constraints)
}

func newNumericField(kind FieldKind, constraints []interval.NumericConstraint) (*NumericField, error) {
	min, max := kind.bounds()
	for _, c := range constraints {
		if err := validateConstraint(c, min, max); err != nil {
			return nil, err
		}
	}
	f := &NumericField{Kind: kind, constraints: append([]interval.NumericConstraint(nil), constraints...)}
	return f, nil
}

func validateConstraint(c interval.NumericConstraint, min, max int64) error {
	switch c.Kind {
	case interval.Single:
		if c.Value < min || c.Value > max {
			return scherr.Validation(c.Value, min, max, "value out of bounds")
		}
	case interval.Range:
		if c.Start > c.End {
			return scherr.Validation(c.Start, min, max, "range start after end")
		}
		if c.Start < min || c.End > max {
			return scherr.Validation(c.Start, min, max, "range out of bounds")
		}
	case interval.Algebraic:
		if c.A < 1 || c.A > 9998 {
			return scherr.Validation(c.A, 1, 9998, "algebraic coefficient a out of bounds")
		}
		if c.B < 0 || c.B > 9998 {
			return scherr.Validation(c.B, 0, 9998, "algebraic offset b out of bounds")
		}
	}
	return nil
}

// AddValue appends a constraint, or inserts it at index if index >= 0 and
// within [0, len]. It invalidates the bitmap and hash caches.
func (f *NumericField) AddValue(c interval.NumericConstraint, index int) error {
	min, max := f.Kind.bounds()
	if err := validateConstraint(c, min, max); err != nil {
		return err
	}
	if index < 0 || index >= len(f.constraints) {
		f.constraints = append(f.constraints, c)
	} else {
		f.constraints = append(f.constraints, interval.NumericConstraint{})
		copy(f.constraints[index+1:], f.constraints[index:])
		f.constraints[index] = c
	}
	f.invalidate()
	return nil
}

// RemoveValue removes the constraint at index.
func (f *NumericField) RemoveValue(index int) error {
	if index < 0 || index >= len(f.constraints) {
		return scherr.IndexOutOfBounds(index, "index out of range")
	}
	f.constraints = append(f.constraints[:index], f.constraints[index+1:]...)
	f.invalidate()
	return nil
}

// GetValue returns the constraint at index.
func (f *NumericField) GetValue(index int) (interval.NumericConstraint, error) {
	if index < 0 || index >= len(f.constraints) {
		return interval.NumericConstraint{}, scherr.IndexOutOfBounds(index, "index out of range")
	}
	return f.constraints[index], nil
}

// Values returns a copy of the field's constraint list.
func (f *NumericField) Values() []interval.NumericConstraint {
	return append([]interval.NumericConstraint(nil), f.constraints...)
}

func (f *NumericField) invalidate() {
	f.bitmap = nil
	f.hash = nil
}

func (f *NumericField) ensureBitmap() *bitset.Set {
	if f.bitmap == nil {
		min, max := f.Kind.bounds()
		f.bitmap = bitset.Compile(min, max, f.constraints)
	}
	return f.bitmap
}

// MergeState returns the field's merge annotation.
func (f *NumericField) MergeState() MergeState { return f.merge }

// SetMergeState sets the field's merge annotation.
func (f *NumericField) SetMergeState(m MergeState) {
	f.merge = m
	f.hash = nil
}

func (f *NumericField) group() group { return groupField }

// Clone returns an independent copy of the field.
func (f *NumericField) Clone() Block {
	return &NumericField{
		Kind:        f.Kind,
		constraints: append([]interval.NumericConstraint(nil), f.constraints...),
		merge:       f.merge,
	}
}

// Hash returns the memoized structural hash.
func (f *NumericField) Hash() uint64 {
	if f.hash != nil {
		return *f.hash
	}
	h := newHash(f.Kind.prefix()).mixMerge(f.merge)
	for _, c := range f.constraints {
		h.mixConstraint(c)
	}
	v := h.sum()
	f.hash = &v
	return v
}

func (f *NumericField) String() string {
	parts := make([]string, len(f.constraints))
	for i, c := range f.constraints {
		parts[i] = formatConstraint(c)
	}
	s := fmt.Sprintf("%s[%s]", f.Kind.prefix(), strings.Join(parts, ","))
	return applyMergeAnnotation(s, f.merge)
}

func formatConstraint(c interval.NumericConstraint) string {
	switch c.Kind {
	case interval.Single:
		return strconv.FormatInt(c.Value, 10)
	case interval.Range:
		return fmt.Sprintf("%d..%d", c.Start, c.End)
	case interval.Algebraic:
		op := "+"
		if c.Op == interval.Minus {
			op = "-"
		}
		return fmt.Sprintf("%dn%s%d", c.A, op, c.B)
	}
	return ""
}

func applyMergeAnnotation(s string, m MergeState) string {
	switch m {
	case ExplicitOn:
		return "~" + s
	case ExplicitOff:
		return "#" + s
	default:
		return s
	}
}

// Evaluate implements Block.
func (f *NumericField) Evaluate(domain Domain, reg Registry, merge bool) ([]interval.Interval, error) {
	return f.evaluate(domain, reg, merge, map[string]bool{})
}

func (f *NumericField) evaluate(domain Domain, reg Registry, merge bool, _ map[string]bool) ([]interval.Interval, error) {
	if len(f.constraints) == 0 {
		return nil, nil
	}
	resolved := f.merge.Resolve(merge)
	bm := f.ensureBitmap()

	if bm.FullySet() {
		return []interval.Interval{{Start: domain.Start, End: domain.End}}, nil
	}

	switch f.Kind {
	case YearKind:
		return f.walkYears(domain, bm, resolved), nil
	case MonthKind:
		return f.walkMonths(domain, bm, resolved), nil
	default: // MonthDayKind, WeekDayKind: per-day walk
		return f.walkDays(domain, bm, resolved), nil
	}
}

// unitResult is one calendar unit's clipped bounds and whether the
// field's bitmap matched it.
type unitResult struct {
	start, end int64
	hit        bool
}

// collectRuns implements spec §4.2 step 3/4: consecutive hit units are
// coalesced into one interval when merge is on; otherwise each hit unit
// is emitted independently.
func collectRuns(units []unitResult, merge bool) []interval.Interval {
	var out []interval.Interval
	var curStart, curEnd int64
	inRun := false

	for _, u := range units {
		if !u.hit {
			if inRun {
				out = append(out, interval.Interval{Start: curStart, End: curEnd})
				inRun = false
			}
			continue
		}
		if !merge {
			out = append(out, interval.Interval{Start: u.start, End: u.end})
			continue
		}
		if inRun {
			curEnd = u.end
		} else {
			curStart, curEnd = u.start, u.end
			inRun = true
		}
	}
	if inRun {
		out = append(out, interval.Interval{Start: curStart, End: curEnd})
	}
	return out
}

func (f *NumericField) walkYears(domain Domain, bm *bitset.Set, merge bool) []interval.Interval {
	startYear, _, _ := civilDate(domain.Start)
	endYear, _, _ := civilDate(domain.End)

	var units []unitResult
	for y := startYear; y <= endYear; y++ {
		unitStart, unitEnd := yearBounds(y)
		s, e := clipUnit(unitStart, unitEnd, domain)
		if s > e {
			continue
		}
		units = append(units, unitResult{start: s, end: e, hit: bm.Test(int64(y))})
	}
	return collectRuns(units, merge)
}

func (f *NumericField) walkMonths(domain Domain, bm *bitset.Set, merge bool) []interval.Interval {
	startIdx := monthIndexOf(domain.Start)
	endIdx := monthIndexOf(domain.End)

	var units []unitResult
	for idx := startIdx; idx <= endIdx; idx++ {
		year, month := civilFromMonthIndex(idx)
		unitStart, unitEnd := monthBounds(year, month)
		s, e := clipUnit(unitStart, unitEnd, domain)
		if s > e {
			continue
		}
		units = append(units, unitResult{start: s, end: e, hit: bm.Test(int64(month))})
	}
	return collectRuns(units, merge)
}

func (f *NumericField) walkDays(domain Domain, bm *bitset.Set, merge bool) []interval.Interval {
	startIdx := dayIndex(domain.Start)
	endIdx := dayIndex(domain.End)

	var units []unitResult
	for idx := startIdx; idx <= endIdx; idx++ {
		unitStart, unitEnd := dayBounds(idx)
		s, e := clipUnit(unitStart, unitEnd, domain)
		if s > e {
			continue
		}

		var value int64
		if f.Kind == WeekDayKind {
			value = isoWeekday(idx)
		} else {
			_, _, day := civilDate(unitStart)
			value = int64(day)
		}
		units = append(units, unitResult{start: s, end: e, hit: bm.Test(value)})
	}
	return collectRuns(units, merge)
}

// clipUnit clips [unitStart, unitEnd] to the domain; if the result is
// empty it returns start > end so the caller can skip the unit.
func clipUnit(unitStart, unitEnd int64, domain Domain) (int64, int64) {
	s, e := unitStart, unitEnd
	if s < domain.Start {
		s = domain.Start
	}
	if e > domain.End {
		e = domain.End
	}
	return s, e
}

// EvaluateTimestamp implements Block.
func (f *NumericField) EvaluateTimestamp(t int64, reg Registry) (bool, error) {
	return f.evaluateTimestamp(t, reg, map[string]bool{})
}

func (f *NumericField) evaluateTimestamp(t int64, _ Registry, _ map[string]bool) (bool, error) {
	if len(f.constraints) == 0 {
		return false, nil
	}
	bm := f.ensureBitmap()
	idx := dayIndex(t)
	switch f.Kind {
	case YearKind:
		year, _, _ := civilDate(t)
		return bm.Test(int64(year)), nil
	case MonthKind:
		_, month, _ := civilDate(t)
		return bm.Test(int64(month)), nil
	case MonthDayKind:
		_, _, day := civilDate(t)
		return bm.Test(int64(day)), nil
	default: // WeekDayKind
		return bm.Test(isoWeekday(idx)), nil
	}
}
