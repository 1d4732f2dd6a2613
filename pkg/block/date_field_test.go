package block

import (
	"testing"

	"github.com/patrickspencer/scheduleexpr/pkg/interval"
)

func TestNewDateFieldValidation(t *testing.T) {
	t.Parallel()

	midnight := msFromCivil(2024, 3, 1)
	nextMidnight := msFromCivil(2024, 3, 2)

	if _, err := NewDateField([]interval.Interval{{Start: midnight + 1, End: nextMidnight - 1}}); err == nil {
		t.Fatal("expected error when start does not fall at UTC midnight")
	}
	if _, err := NewDateField([]interval.Interval{{Start: midnight, End: nextMidnight - 2}}); err == nil {
		t.Fatal("expected error when end does not fall at 23:59:59.999")
	}
	if _, err := NewDateField([]interval.Interval{{Start: midnight, End: nextMidnight - 1}}); err != nil {
		t.Fatalf("a single whole day should be valid: %v", err)
	}
}

func TestDateFieldEvaluateClipsToDomain(t *testing.T) {
	t.Parallel()

	day1, day3End := msFromCivil(2024, 3, 1), msFromCivil(2024, 3, 4)-1
	f, err := NewDateField([]interval.Interval{{Start: day1, End: day3End}})
	if err != nil {
		t.Fatalf("NewDateField: %v", err)
	}

	// Domain covers only day 2 of the 3-day range.
	day2Start, day2End := msFromCivil(2024, 3, 2), msFromCivil(2024, 3, 3)-1
	got, err := f.Evaluate(Domain{Start: day2Start, End: day2End}, nil, false)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if len(got) != 1 || got[0] != (interval.Interval{Start: day2Start, End: day2End}) {
		t.Fatalf("expected the range clipped to the domain, got %v", got)
	}
}

func TestDateFieldEvaluateTimestamp(t *testing.T) {
	t.Parallel()

	day1 := msFromCivil(2024, 3, 1)
	day1End := msFromCivil(2024, 3, 2) - 1
	f, err := NewDateField([]interval.Interval{{Start: day1, End: day1End}})
	if err != nil {
		t.Fatalf("NewDateField: %v", err)
	}

	ok, err := f.EvaluateTimestamp(day1+12*3_600_000, nil)
	if err != nil || !ok {
		t.Fatalf("noon on day1 should match: ok=%v err=%v", ok, err)
	}
	ok, err = f.EvaluateTimestamp(day1End+1, nil)
	if err != nil || ok {
		t.Fatalf("the first ms of the next day should not match: ok=%v err=%v", ok, err)
	}
}

func TestDateFieldStringSingleDayVsRange(t *testing.T) {
	t.Parallel()

	day1 := msFromCivil(2024, 3, 1)
	day1End := msFromCivil(2024, 3, 2) - 1
	day3End := msFromCivil(2024, 3, 4) - 1

	single, err := NewDateField([]interval.Interval{{Start: day1, End: day1End}})
	if err != nil {
		t.Fatalf("NewDateField: %v", err)
	}
	if got, want := single.String(), "D[2024-03-01]"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}

	span, err := NewDateField([]interval.Interval{{Start: day1, End: day3End}})
	if err != nil {
		t.Fatalf("NewDateField: %v", err)
	}
	if got, want := span.String(), "D[2024-03-01..2024-03-03]"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}

func TestDateTimeFieldEvaluateAndTimestamp(t *testing.T) {
	t.Parallel()

	f, err := NewDateTimeField([]interval.Interval{{Start: 1000, End: 5000}})
	if err != nil {
		t.Fatalf("NewDateTimeField: %v", err)
	}

	got, err := f.Evaluate(Domain{Start: 0, End: 10000}, nil, false)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if len(got) != 1 || got[0] != (interval.Interval{Start: 1000, End: 5000}) {
		t.Fatalf("got %v", got)
	}

	ok, err := f.EvaluateTimestamp(3000, nil)
	if err != nil || !ok {
		t.Fatalf("3000 should be inside [1000,5000]: ok=%v err=%v", ok, err)
	}
	ok, err = f.EvaluateTimestamp(6000, nil)
	if err != nil || ok {
		t.Fatalf("6000 should be outside [1000,5000]: ok=%v err=%v", ok, err)
	}
}

func TestDateTimeFieldRejectsInvertedRange(t *testing.T) {
	t.Parallel()

	if _, err := NewDateTimeField([]interval.Interval{{Start: 100, End: 50}}); err == nil {
		t.Fatal("expected error for start after end")
	}
}

func TestDateTimeFieldString(t *testing.T) {
	t.Parallel()

	f, err := NewDateTimeField([]interval.Interval{{Start: msFromCivil(2024, 3, 1), End: msFromCivil(2024, 3, 1) + 3_661_000}})
	if err != nil {
		t.Fatalf("NewDateTimeField: %v", err)
	}
	if got, want := f.String(), "DT[2024-03-01T00:00:00..2024-03-01T01:01:01]"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}

func TestDateFieldMergeResolvesWithCoalescing(t *testing.T) {
	t.Parallel()

	day1 := msFromCivil(2024, 3, 1)
	day1End := msFromCivil(2024, 3, 2) - 1
	day2 := msFromCivil(2024, 3, 2)
	day2End := msFromCivil(2024, 3, 3) - 1

	f, err := NewDateField([]interval.Interval{{Start: day1, End: day1End}, {Start: day2, End: day2End}})
	if err != nil {
		t.Fatalf("NewDateField: %v", err)
	}
	f.SetMergeState(ExplicitOn)

	got, err := f.Evaluate(Domain{Start: day1, End: day2End}, nil, false)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if len(got) != 1 || got[0] != (interval.Interval{Start: day1, End: day2End}) {
		t.Fatalf("expected touching day ranges to coalesce under merge, got %v", got)
	}
}
