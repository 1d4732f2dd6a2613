package block

import (
	"fmt"
	"strings"

	"github.com/patrickspencer/scheduleexpr/pkg/interval"
	"github.com/patrickspencer/scheduleexpr/pkg/scherr"
)

// msPerDayExclusive is the last valid ms-from-midnight value (23:59:59.999).
const msPerDayExclusive = msPerDay - 1

// TimeField holds a list of time-of-day ranges in [0, 86_399_999]
// ms-from-midnight, each with start < end (spec §3).
type TimeField struct {
	ranges []interval.Interval
	merge  MergeState
	hash   *uint64
}

// NewTimeField validates and builds a TimeField.
func NewTimeField(ranges []interval.Interval) (*TimeField, error) {
	for _, r := range ranges {
		if err := validateTimeRange(r); err != nil {
			return nil, err
		}
	}
	return &TimeField{ranges: interval.Clone(ranges)}, nil
}

func validateTimeRange(r interval.Interval) error {
	if r.Start < 0 || r.Start > msPerDayExclusive {
		return scherr.Validation(r.Start, 0, msPerDayExclusive, "time-of-day start out of bounds")
	}
	if r.End < 0 || r.End > msPerDayExclusive {
		return scherr.Validation(r.End, 0, msPerDayExclusive, "time-of-day end out of bounds")
	}
	if r.Start >= r.End {
		return scherr.Validation(r.Start, 0, msPerDayExclusive, "time-of-day range start must be before end")
	}
	return nil
}

// AddValue appends a time range, or inserts it at index.
func (f *TimeField) AddValue(r interval.Interval, index int) error {
	if err := validateTimeRange(r); err != nil {
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
func (f *TimeField) RemoveValue(index int) error {
	if index < 0 || index >= len(f.ranges) {
		return scherr.IndexOutOfBounds(index, "index out of range")
	}
	f.ranges = append(f.ranges[:index], f.ranges[index+1:]...)
	f.hash = nil
	return nil
}

// GetValue returns the range at index.
func (f *TimeField) GetValue(index int) (interval.Interval, error) {
	if index < 0 || index >= len(f.ranges) {
		return interval.Interval{}, scherr.IndexOutOfBounds(index, "index out of range")
	}
	return f.ranges[index], nil
}

// Values returns a copy of the field's ranges.
func (f *TimeField) Values() []interval.Interval { return interval.Clone(f.ranges) }

// MergeState returns the field's merge annotation.
func (f *TimeField) MergeState() MergeState { return f.merge }

// SetMergeState sets the field's merge annotation.
func (f *TimeField) SetMergeState(m MergeState) {
	f.merge = m
	f.hash = nil
}

func (f *TimeField) group() group { return groupField }

// Clone returns an independent copy.
func (f *TimeField) Clone() Block {
	return &TimeField{ranges: interval.Clone(f.ranges), merge: f.merge}
}

// Hash returns the memoized structural hash.
func (f *TimeField) Hash() uint64 {
	if f.hash != nil {
		return *f.hash
	}
	h := newHash("T").mixMerge(f.merge)
	for _, r := range f.ranges {
		h.mixInterval(r)
	}
	v := h.sum()
	f.hash = &v
	return v
}

func (f *TimeField) String() string {
	parts := make([]string, len(f.ranges))
	for i, r := range f.ranges {
		parts[i] = fmt.Sprintf("%s..%s", formatTimeOfDay(r.Start), formatTimeOfDay(r.End))
	}
	return applyMergeAnnotation(fmt.Sprintf("T[%s]", strings.Join(parts, ",")), f.merge)
}

func formatTimeOfDay(ms int64) string {
	h := ms / 3_600_000
	ms %= 3_600_000
	m := ms / 60_000
	ms %= 60_000
	s := ms / 1000
	millis := ms % 1000
	if millis != 0 {
		return fmt.Sprintf("%d:%02d:%02d.%03d", h, m, s, millis)
	}
	if s != 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	if m != 0 {
		return fmt.Sprintf("%d:%02d", h, m)
	}
	return fmt.Sprintf("%d", h)
}

// Evaluate implements Block.
func (f *TimeField) Evaluate(domain Domain, reg Registry, merge bool) ([]interval.Interval, error) {
	return f.evaluate(domain, reg, merge, map[string]bool{})
}

func (f *TimeField) evaluate(domain Domain, _ Registry, merge bool, _ map[string]bool) ([]interval.Interval, error) {
	if len(f.ranges) == 0 {
		return nil, nil
	}
	resolved := f.merge.Resolve(merge)

	ranges := f.ranges
	if resolved {
		ranges = interval.Coalesce(ranges)
	} else {
		ranges = interval.Clone(ranges)
		interval.SortIntervals(ranges)
	}

	if len(ranges) == 1 && ranges[0].Start == 0 && ranges[0].End == msPerDayExclusive {
		return []interval.Interval{{Start: domain.Start, End: domain.End}}, nil
	}

	startDay := dayIndex(domain.Start)
	endDay := dayIndex(domain.End)

	var out []interval.Interval
	for day := startDay; day <= endDay; day++ {
		dayStart, _ := dayBounds(day)
		for _, r := range ranges {
			cand := interval.Interval{Start: dayStart + r.Start, End: dayStart + r.End}
			clipped, ok := cand.Clip(domain.Start, domain.End)
			if !ok {
				continue
			}
			if resolved && len(out) > 0 && clipped.Start <= out[len(out)-1].End+1 {
				if clipped.End > out[len(out)-1].End {
					out[len(out)-1].End = clipped.End
				}
				continue
			}
			out = append(out, clipped)
		}
	}
	return out, nil
}

// EvaluateTimestamp implements Block.
func (f *TimeField) EvaluateTimestamp(t int64, reg Registry) (bool, error) {
	return f.evaluateTimestamp(t, reg, map[string]bool{})
}

func (f *TimeField) evaluateTimestamp(t int64, _ Registry, _ map[string]bool) (bool, error) {
	msOfDay := floorMod(t, msPerDay)
	for _, r := range f.ranges {
		if msOfDay >= r.Start && msOfDay <= r.End {
			return true, nil
		}
	}
	return false, nil
}
