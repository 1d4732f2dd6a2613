package block

import (
	"testing"

	"github.com/patrickspencer/scheduleexpr/pkg/interval"
)

func TestNewTimeFieldValidation(t *testing.T) {
	t.Parallel()

	if _, err := NewTimeField([]interval.Interval{{Start: -1, End: 100}}); err == nil {
		t.Fatal("expected error for negative start")
	}
	if _, err := NewTimeField([]interval.Interval{{Start: 100, End: msPerDay}}); err == nil {
		t.Fatal("expected error for end beyond 23:59:59.999")
	}
	if _, err := NewTimeField([]interval.Interval{{Start: 100, End: 50}}); err == nil {
		t.Fatal("expected error when start >= end")
	}
	if _, err := NewTimeField([]interval.Interval{{Start: 0, End: msPerDayExclusive}}); err != nil {
		t.Fatalf("full-day range should be valid: %v", err)
	}
}

func TestTimeFieldEvaluateWalksEveryDayInDomain(t *testing.T) {
	t.Parallel()

	// 9:00-17:00 every day.
	nineToFive := interval.Interval{Start: 9 * 3_600_000, End: 17 * 3_600_000}
	f, err := NewTimeField([]interval.Interval{nineToFive})
	if err != nil {
		t.Fatalf("NewTimeField: %v", err)
	}

	domain := Domain{Start: 0, End: 4*msPerDay - 1} // 4 days inclusive
	got, err := f.Evaluate(domain, nil, false)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("expected one 9-5 interval per day over a 4-day domain, got %d: %v", len(got), got)
	}
	for i, iv := range got {
		dayStart, _ := dayBounds(int64(i))
		want := interval.Interval{Start: dayStart + nineToFive.Start, End: dayStart + nineToFive.End}
		if iv != want {
			t.Fatalf("day %d: got %+v, want %+v", i, iv, want)
		}
	}
}

func TestTimeFieldEvaluateSortsUnsortedRangesWhenMergeIsOff(t *testing.T) {
	t.Parallel()

	lateAfternoon := interval.Interval{Start: 17 * 3_600_000, End: 18 * 3_600_000}
	morning := interval.Interval{Start: 9 * 3_600_000, End: 10 * 3_600_000}
	// Declared out of order: later range first, earlier range second.
	f, err := NewTimeField([]interval.Interval{lateAfternoon, morning})
	if err != nil {
		t.Fatalf("NewTimeField: %v", err)
	}

	domain := Domain{Start: 0, End: msPerDayExclusive - 1}
	got, err := f.Evaluate(domain, nil, false)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	want := []interval.Interval{morning, lateAfternoon}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i, iv := range got {
		if iv != want[i] {
			t.Fatalf("interval %d = %+v, want %+v (result must be sorted ascending by start)", i, iv, want[i])
		}
	}
}

func TestTimeFieldFullDayFastPath(t *testing.T) {
	t.Parallel()

	f, err := NewTimeField([]interval.Interval{{Start: 0, End: msPerDayExclusive}})
	if err != nil {
		t.Fatalf("NewTimeField: %v", err)
	}

	domain := Domain{Start: 1000, End: 5 * msPerDay}
	got, err := f.Evaluate(domain, nil, false)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if len(got) != 1 || got[0] != (interval.Interval{Start: domain.Start, End: domain.End}) {
		t.Fatalf("a full 0..23:59:59.999 range should collapse to the whole domain, got %v", got)
	}
}

func TestTimeFieldEvaluateTimestamp(t *testing.T) {
	t.Parallel()

	f, err := NewTimeField([]interval.Interval{{Start: 9 * 3_600_000, End: 17 * 3_600_000}})
	if err != nil {
		t.Fatalf("NewTimeField: %v", err)
	}

	noon := int64(12 * 3_600_000)
	midnight := int64(0)

	ok, err := f.EvaluateTimestamp(noon, nil)
	if err != nil || !ok {
		t.Fatalf("noon should be within 9-5: ok=%v err=%v", ok, err)
	}
	ok, err = f.EvaluateTimestamp(midnight, nil)
	if err != nil || ok {
		t.Fatalf("midnight should not be within 9-5: ok=%v err=%v", ok, err)
	}
}

func TestTimeFieldStringFormatting(t *testing.T) {
	t.Parallel()

	f, err := NewTimeField([]interval.Interval{{Start: 9 * 3_600_000, End: 17*3_600_000 + 30*60_000}})
	if err != nil {
		t.Fatalf("NewTimeField: %v", err)
	}
	if got, want := f.String(), "T[9..17:30]"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}

func TestTimeFieldAddValueOutOfRangeIndexAppends(t *testing.T) {
	t.Parallel()

	f, err := NewTimeField(nil)
	if err != nil {
		t.Fatalf("NewTimeField: %v", err)
	}
	r := interval.Interval{Start: 0, End: 1000}
	if err := f.AddValue(r, 99); err != nil {
		t.Fatalf("AddValue: %v", err)
	}
	if got := f.Values(); len(got) != 1 || got[0] != r {
		t.Fatalf("expected AddValue with an out-of-range index to append, got %v", got)
	}
}
