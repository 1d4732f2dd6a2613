// Package cronbridge interoperates between standard 5-field cron
// expressions (github.com/robfig/cron/v3) and block.Block trees, so
// existing crontabs can be migrated into schedule expressions and vice
// versa. Grounded on the teacher's internal/scheduler/cron.go, which
// wraps the same cron.Parser for its own job schedules.
package cronbridge

import (
	"time"

	"github.com/robfig/cron/v3"

	"github.com/patrickspencer/scheduleexpr/pkg/block"
	"github.com/patrickspencer/scheduleexpr/pkg/interval"
	"github.com/patrickspencer/scheduleexpr/pkg/scherr"
)

// cronParser matches the teacher's field set: minute, hour, day-of-month,
// month, day-of-week, plus descriptors like @daily.
var cronParser = cron.NewParser(
	cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// starBit mirrors robfig/cron's internal marker for a field that was
// written as "*" in the source expression, letting us reproduce its
// day-of-month/day-of-week OR-vs-AND rule from outside the package.
const starBit = 1 << 63

// ParseStandardCron parses a standard 5-field cron expression (or
// descriptor such as "@daily") into an equivalent block.Block tree.
// "@every <duration>" descriptors are not representable as a block
// tree, since the block tree has no notion of a rolling delay anchored
// to process start time, and are rejected.
func ParseStandardCron(expr string) (block.Block, error) {
	sched, err := cronParser.Parse(expr)
	if err != nil {
		return nil, scherr.Parse(expr, "invalid cron expression: "+err.Error())
	}
	spec, ok := sched.(*cron.SpecSchedule)
	if !ok {
		return nil, scherr.Parse(expr, "cron expression has no fixed-field representation")
	}
	return FromSpecSchedule(spec)
}

// FromSpecSchedule converts a parsed cron.SpecSchedule into a block
// tree. Each matching minute is represented as the full 60-second
// window starting at that minute, since the block tree models
// continuous on/off state rather than discrete fire events and
// TimeField requires a nonzero-width range.
func FromSpecSchedule(spec *cron.SpecSchedule) (block.Block, error) {
	timeField, err := buildTimeField(spec.Hour, spec.Minute)
	if err != nil {
		return nil, err
	}
	monthField, err := buildMonthField(spec.Month)
	if err != nil {
		return nil, err
	}

	children := []block.Block{timeField, monthField}

	domWild := isWildcard(spec.Dom)
	dowWild := isWildcard(spec.Dow)
	switch {
	case domWild && dowWild:
		// Unrestricted: no day constraint at all.
	case domWild && !dowWild:
		wd, err := buildWeekDayField(spec.Dow)
		if err != nil {
			return nil, err
		}
		children = append(children, wd)
	case !domWild && dowWild:
		md, err := buildMonthDayField(spec.Dom)
		if err != nil {
			return nil, err
		}
		children = append(children, md)
	default:
		// cron fires if either restriction matches when both are given.
		md, err := buildMonthDayField(spec.Dom)
		if err != nil {
			return nil, err
		}
		wd, err := buildWeekDayField(spec.Dow)
		if err != nil {
			return nil, err
		}
		children = append(children, block.NewOrBlock([]block.Block{md, wd}))
	}

	return block.NewAndBlock(children), nil
}

func buildTimeField(hourMask, minuteMask uint64) (*block.TimeField, error) {
	hours := decodeBits(hourMask, 0, 23)
	minutes := decodeBits(minuteMask, 0, 59)
	var ranges []interval.Interval
	for _, h := range hours {
		for _, m := range minutes {
			ms := h*3_600_000 + m*60_000
			ranges = append(ranges, interval.Interval{Start: ms, End: ms + 59_999})
		}
	}
	return block.NewTimeField(ranges)
}

func buildMonthField(mask uint64) (*block.NumericField, error) {
	return block.NewMonthField(singleConstraints(decodeBits(mask, 1, 12)))
}

func buildMonthDayField(mask uint64) (*block.NumericField, error) {
	return block.NewMonthDayField(singleConstraints(decodeBits(mask, 1, 31)))
}

// buildWeekDayField remaps cron's Sunday=0..Saturday=6 convention onto
// the block tree's ISO Monday=1..Sunday=7 convention.
func buildWeekDayField(mask uint64) (*block.NumericField, error) {
	cronDays := decodeBits(mask, 0, 6)
	iso := make([]int64, len(cronDays))
	for i, d := range cronDays {
		if d == 0 {
			iso[i] = 7
		} else {
			iso[i] = d
		}
	}
	return block.NewWeekDayField(singleConstraints(iso))
}

func decodeBits(mask uint64, min, max int) []int64 {
	var vals []int64
	for v := min; v <= max; v++ {
		if mask&(uint64(1)<<uint(v)) != 0 {
			vals = append(vals, int64(v))
		}
	}
	return vals
}

func isWildcard(mask uint64) bool { return mask&starBit != 0 }

func singleConstraints(vals []int64) []interval.NumericConstraint {
	out := make([]interval.NumericConstraint, len(vals))
	for i, v := range vals {
		out[i] = interval.NewSingle(v)
	}
	return out
}

// NextTransition reports the earliest instant strictly after after at
// which b's on/off state changes, searching a window of horizon
// milliseconds. If the earliest result interval starts exactly at the
// search domain's start, b is already on going into the window and the
// reported transition is that interval's off edge; otherwise it is the
// next on edge. It underlies internal/watch's heap scheduling.
func NextTransition(b block.Block, reg block.Registry, after int64, horizon int64) (int64, bool, error) {
	domain := block.Domain{Start: after + 1, End: after + horizon}
	ivs, err := b.Evaluate(domain, reg, false)
	if err != nil {
		return 0, false, err
	}
	if len(ivs) == 0 {
		return 0, false, nil
	}
	first := ivs[0]
	if first.Start == domain.Start {
		return first.End + 1, true, nil
	}
	return first.Start, true, nil
}

// NextOnTransition reports the earliest on-start strictly after after,
// skipping over any interval b is already inside going into the
// window. Used by ScheduleAdapter, which (like robfig/cron.Schedule)
// always wants the next fire instant rather than the next toggle.
func NextOnTransition(b block.Block, reg block.Registry, after int64, horizon int64) (int64, bool, error) {
	domain := block.Domain{Start: after + 1, End: after + horizon}
	ivs, err := b.Evaluate(domain, reg, false)
	if err != nil {
		return 0, false, err
	}
	if len(ivs) == 0 {
		return 0, false, nil
	}
	first := ivs[0]
	if first.Start != domain.Start {
		return first.Start, true, nil
	}
	if len(ivs) > 1 {
		return ivs[1].Start, true, nil
	}
	return NextOnTransition(b, reg, first.End, horizon)
}

// DefaultHorizon bounds how far ahead ScheduleAdapter.Next searches for
// the next on-transition before giving up.
const DefaultHorizon = 366 * 24 * time.Hour

// ScheduleAdapter adapts a block.Block to robfig/cron's Schedule
// interface, letting a block tree drive code written against
// cron.Schedule (for example cron/v3's own job runner).
type ScheduleAdapter struct {
	Block   block.Block
	Reg     block.Registry
	Horizon time.Duration
}

// Next implements cron.Schedule. It returns the zero time.Time if no
// on-transition is found within the horizon.
func (a ScheduleAdapter) Next(t time.Time) time.Time {
	horizon := a.Horizon
	if horizon <= 0 {
		horizon = DefaultHorizon
	}
	next, ok, err := NextOnTransition(a.Block, a.Reg, t.UnixMilli(), horizon.Milliseconds())
	if err != nil || !ok {
		return time.Time{}
	}
	return time.UnixMilli(next).UTC()
}

var _ cron.Schedule = ScheduleAdapter{}
