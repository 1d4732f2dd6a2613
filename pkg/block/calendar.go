package block

import "time"

const msPerDay = 86_400_000

// floorDiv is integer division rounding toward negative infinity, needed
// because domain timestamps may be negative (years before 1970).
func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorMod(a, b int64) int64 {
	return a - floorDiv(a, b)*b
}

// dayIndex returns the number of whole UTC days between the epoch and t,
// floored (so any ms within a day maps to that day's index).
func dayIndex(t int64) int64 {
	return floorDiv(t, msPerDay)
}

// dayBounds returns [start, end] in ms for the UTC day at the given index.
func dayBounds(idx int64) (int64, int64) {
	start := idx * msPerDay
	return start, start + msPerDay - 1
}

// isoWeekday returns the ISO weekday (1=Monday..7=Sunday) of the UTC day
// at the given index. Day index 0 (1970-01-01) was a Thursday (ISO 4).
func isoWeekday(idx int64) int64 {
	return floorMod(idx+3, 7) + 1
}

// civilDate returns the (year, month, day) of the given ms-from-epoch
// timestamp interpreted as UTC.
func civilDate(t int64) (year, month, day int) {
	tm := time.UnixMilli(t).UTC()
	return tm.Year(), int(tm.Month()), tm.Day()
}

// msFromCivil returns the UTC-midnight ms timestamp for the given civil
// date. Go's time.Date normalizes out-of-range month/day components, so
// callers may pass month 0 or 13 to walk across year boundaries.
func msFromCivil(year, month, day int) int64 {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC).UnixMilli()
}

// monthBounds returns [start, end] in ms for the given (year, month)
// where month may be any integer; out-of-range months normalize via
// msFromCivil's use of time.Date.
func monthBounds(year, month int) (int64, int64) {
	start := msFromCivil(year, month, 1)
	end := msFromCivil(year, month+1, 1) - 1
	return start, end
}

// yearBounds returns [start, end] in ms for the given calendar year.
func yearBounds(year int) (int64, int64) {
	start := msFromCivil(year, 1, 1)
	end := msFromCivil(year+1, 1, 1) - 1
	return start, end
}

// monthIndex encodes (year, month) as a single monotonically increasing
// integer so a month-spanning walk is a simple increment (spec §4.2:
// "month indices are walked via yearIdx*12 + monthIdx").
func monthIndexOf(t int64) int64 {
	year, month, _ := civilDate(t)
	return int64(year)*12 + int64(month-1)
}

func civilFromMonthIndex(idx int64) (year, month int) {
	y := floorDiv(idx, 12)
	m := floorMod(idx, 12)
	return int(y), int(m) + 1
}
