package block

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/patrickspencer/scheduleexpr/pkg/interval"
	"github.com/patrickspencer/scheduleexpr/pkg/scherr"
)

// DateField holds a list of whole-day intervals: each element's start is
// UTC midnight of a day, and end is 23:59:59.999 UTC of a day on or after
// the start day (spec §3).
type DateField struct {
	ranges []interval.Interval
	merge  MergeState
	hash   *uint64
}

// NewDateField validates and builds a DateField.
func NewDateField(ranges []interval.Interval) (*DateField, error) {
	for _, r := range ranges {
		if err := validateDateRange(r); err != nil {
			return nil, err
		}
	}
	return &DateField{ranges: interval.Clone(ranges)}, nil
}

func validateDateRange(r interval.Interval) error {
	if r.Start%msPerDay != 0 {
		return scherr.Validation(r.Start, 0, 0, "date range start must fall at UTC midnight")
	}
	if floorMod(r.End+1, msPerDay) != 0 {
		return scherr.Validation(r.End, 0, 0, "date range end must fall at UTC 23:59:59.999")
	}
	if r.Start > r.End {
		return scherr.Validation(r.Start, 0, 0, "date range start after end")
	}
	return nil
}

// AddValue appends a date range, or inserts it at index.
func (f *DateField) AddValue(r interval.Interval, index int) error {
	if err := validateDateRange(r); err != nil {
		return err
	}
	if index < 0 || index >= len(f.ranges) {
		f.ranges = append(f.ranges, r)
	} else {
		f.ranges = append(f.ranges, interval.Interval{})
		copy(f.ranges[index+1:], f.ranges[index:])
		f.ranges[index] = r
	}
	f.hash = nil
	return nil
}

// RemoveValue removes the range at index.
func (f *DateField) RemoveValue(index int) error {
	if index < 0 || index >= len(f.ranges) {
		return scherr.IndexOutOfBounds(index, "index out of range")
	}
	f.ranges = append(f.ranges[:index], f.ranges[index+1:]...)
	f.hash = nil
	return nil
}

// GetValue returns the range at index.
func (f *DateField) GetValue(index int) (interval.Interval, error) {
	if index < 0 || index >= len(f.ranges) {
		return interval.Interval{}, scherr.IndexOutOfBounds(index, "index out of range")
	}
	return f.ranges[index], nil
}

// Values returns a copy of the field's ranges.
func (f *DateField) Values() []interval.Interval { return interval.Clone(f.ranges) }

// MergeState returns the field's merge annotation.
func (f *DateField) MergeState() MergeState { return f.merge }

// SetMergeState sets the field's merge annotation.
func (f *DateField) SetMergeState(m MergeState) {
	f.merge = m
	f.hash = nil
}

func (f *DateField) group() group { return groupField }

// Clone returns an independent copy.
func (f *DateField) Clone() Block {
	return &DateField{ranges: interval.Clone(f.ranges), merge: f.merge}
}

// Hash returns the memoized structural hash.
func (f *DateField) Hash() uint64 {
	if f.hash != nil {
		return *f.hash
	}
	h := newHash("D").mixMerge(f.merge)
	for _, r := range f.ranges {
		h.mixInterval(r)
	}
	v := h.sum()
	f.hash = &v
	return v
}

func (f *DateField) String() string {
	parts := make([]string, len(f.ranges))
	for i, r := range f.ranges {
		start := formatDate(r.Start)
		endDayMidnight := r.End - msPerDayExclusive
		if r.Start == endDayMidnight {
			parts[i] = start
		} else {
			parts[i] = fmt.Sprintf("%s..%s", start, formatDate(endDayMidnight))
		}
	}
	return applyMergeAnnotation(fmt.Sprintf("D[%s]", strings.Join(parts, ",")), f.merge)
}

func formatDate(midnightMs int64) string {
	t := time.UnixMilli(midnightMs).UTC()
	return t.Format("2006-01-02")
}

// Evaluate implements Block.
func (f *DateField) Evaluate(domain Domain, reg Registry, merge bool) ([]interval.Interval, error) {
	return f.evaluate(domain, reg, merge, map[string]bool{})
}

func (f *DateField) evaluate(domain Domain, _ Registry, merge bool, _ map[string]bool) ([]interval.Interval, error) {
	return evaluateIntervalList(f.ranges, f.merge, domain, merge)
}

// EvaluateTimestamp implements Block.
func (f *DateField) EvaluateTimestamp(t int64, reg Registry) (bool, error) {
	return f.evaluateTimestamp(t, reg, map[string]bool{})
}

func (f *DateField) evaluateTimestamp(t int64, _ Registry, _ map[string]bool) (bool, error) {
	return membershipTest(f.ranges, t), nil
}

// DateTimeField holds a list of arbitrary UTC-ms intervals with
// start <= end (spec §3).
type DateTimeField struct {
	ranges []interval.Interval
	merge  MergeState
	hash   *uint64
}

// NewDateTimeField validates and builds a DateTimeField.
func NewDateTimeField(ranges []interval.Interval) (*DateTimeField, error) {
	for _, r := range ranges {
		if r.Start > r.End {
			return nil, scherr.Validation(r.Start, 0, 0, "datetime range start after end")
		}
	}
	return &DateTimeField{ranges: interval.Clone(ranges)}, nil
}

// AddValue appends a datetime range, or inserts it at index.
func (f *DateTimeField) AddValue(r interval.Interval, index int) error {
	if r.Start > r.End {
		return scherr.Validation(r.Start, 0, 0, "datetime range start after end")
	}
	if index < 0 || index >= len(f.ranges) {
		f.ranges = append(f.ranges, r)
	} else {
		f.ranges = append(f.ranges, interval.Interval{})
		copy(f.ranges[index+1:], f.ranges[index:])
		f.ranges[index] = r
	}
	f.hash = nil
	return nil
}

// RemoveValue removes the range at index.
func (f *DateTimeField) RemoveValue(index int) error {
	if index < 0 || index >= len(f.ranges) {
		return scherr.IndexOutOfBounds(index, "index out of range")
	}
	f.ranges = append(f.ranges[:index], f.ranges[index+1:]...)
	f.hash = nil
	return nil
}

// GetValue returns the range at index.
func (f *DateTimeField) GetValue(index int) (interval.Interval, error) {
	if index < 0 || index >= len(f.ranges) {
		return interval.Interval{}, scherr.IndexOutOfBounds(index, "index out of range")
	}
	return f.ranges[index], nil
}

// Values returns a copy of the field's ranges.
func (f *DateTimeField) Values() []interval.Interval { return interval.Clone(f.ranges) }

// MergeState returns the field's merge annotation.
func (f *DateTimeField) MergeState() MergeState { return f.merge }

// SetMergeState sets the field's merge annotation.
func (f *DateTimeField) SetMergeState(m MergeState) {
	f.merge = m
	f.hash = nil
}

func (f *DateTimeField) group() group { return groupField }

// Clone returns an independent copy.
func (f *DateTimeField) Clone() Block {
	return &DateTimeField{ranges: interval.Clone(f.ranges), merge: f.merge}
}

// Hash returns the memoized structural hash.
func (f *DateTimeField) Hash() uint64 {
	if f.hash != nil {
		return *f.hash
	}
	h := newHash("DT").mixMerge(f.merge)
	for _, r := range f.ranges {
		h.mixInterval(r)
	}
	v := h.sum()
	f.hash = &v
	return v
}

func (f *DateTimeField) String() string {
	parts := make([]string, len(f.ranges))
	for i, r := range f.ranges {
		parts[i] = fmt.Sprintf("%s..%s", formatDateTime(r.Start), formatDateTime(r.End))
	}
	return applyMergeAnnotation(fmt.Sprintf("DT[%s]", strings.Join(parts, ",")), f.merge)
}

func formatDateTime(ms int64) string {
	t := time.UnixMilli(ms).UTC()
	if t.Nanosecond() != 0 {
		return t.Format("2006-01-02T15:04:05.000")
	}
	return t.Format("2006-01-02T15:04:05")
}

// Evaluate implements Block.
func (f *DateTimeField) Evaluate(domain Domain, reg Registry, merge bool) ([]interval.Interval, error) {
	return f.evaluate(domain, reg, merge, map[string]bool{})
}

func (f *DateTimeField) evaluate(domain Domain, _ Registry, merge bool, _ map[string]bool) ([]interval.Interval, error) {
	return evaluateIntervalList(f.ranges, f.merge, domain, merge)
}

// EvaluateTimestamp implements Block.
func (f *DateTimeField) EvaluateTimestamp(t int64, reg Registry) (bool, error) {
	return f.evaluateTimestamp(t, reg, map[string]bool{})
}

func (f *DateTimeField) evaluateTimestamp(t int64, _ Registry, _ map[string]bool) (bool, error) {
	return membershipTest(f.ranges, t), nil
}

// evaluateIntervalList implements spec §4.4's shared Date/DateTime
// evaluation: pre-coalesce if merge is on, sort, binary-search the
// intersecting slice, then clip each to the domain.
func evaluateIntervalList(ranges []interval.Interval, ownMerge MergeState, domain Domain, callerMerge bool) ([]interval.Interval, error) {
	if len(ranges) == 0 {
		return nil, nil
	}
	resolved := ownMerge.Resolve(callerMerge)

	sorted := ranges
	if resolved {
		sorted = interval.Coalesce(ranges)
	} else {
		sorted = interval.Clone(ranges)
		interval.SortIntervals(sorted)
	}

	lo := sort.Search(len(sorted), func(i int) bool { return sorted[i].End >= domain.Start })
	hi := sort.Search(len(sorted), func(i int) bool { return sorted[i].Start > domain.End })
	if lo >= hi {
		return nil, nil
	}

	return interval.ClipAll(sorted[lo:hi], domain.Start, domain.End), nil
}

func membershipTest(ranges []interval.Interval, t int64) bool {
	for _, r := range ranges {
		if t >= r.Start && t <= r.End {
			return true
		}
	}
	return false
}
