package watch

import (
	"testing"
	"time"

	"github.com/patrickspencer/scheduleexpr/pkg/block"
	"github.com/patrickspencer/scheduleexpr/pkg/interval"
)

func mustDateTime(t *testing.T, r interval.Interval) block.Block {
	t.Helper()
	f, err := block.NewDateTimeField([]interval.Interval{r})
	if err != nil {
		t.Fatalf("NewDateTimeField: %v", err)
	}
	return f
}

func TestToggled(t *testing.T) {
	t.Parallel()

	if toggled(Off) != On {
		t.Fatal("toggled(Off) should be On")
	}
	if toggled(On) != Off {
		t.Fatal("toggled(On) should be Off")
	}
}

func TestStateString(t *testing.T) {
	t.Parallel()

	if got, want := On.String(), "on"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	if got, want := Off.String(), "off"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestCurrentStateReflectsBlockEvaluation(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)
	b := mustDateTime(t, interval.Interval{Start: now.UnixMilli() - 1000, End: now.UnixMilli() + 1000})

	state, err := currentState(b, nil, now)
	if err != nil || state != On {
		t.Fatalf("expected On, got %v (err=%v)", state, err)
	}

	outside := now.Add(10 * time.Hour)
	state, err = currentState(b, nil, outside)
	if err != nil || state != Off {
		t.Fatalf("expected Off, got %v (err=%v)", state, err)
	}
}

func TestWatchSeedsInitialStateAndNextTransition(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)
	onStart := now.Add(time.Hour).UnixMilli()
	onEnd := now.Add(2 * time.Hour).UnixMilli()
	b := mustDateTime(t, interval.Interval{Start: onStart, End: onEnd})

	w := NewWatcher(func(string, State, time.Time) {})
	w.nowFunc = func() time.Time { return now }

	if err := w.Watch("x", b, nil, 24*time.Hour); err != nil {
		t.Fatalf("Watch: %v", err)
	}

	state, ok := w.State("x")
	if !ok || state != Off {
		t.Fatalf("expected initial state Off, got %v, ok=%v", state, ok)
	}

	e := w.byName["x"]
	wantNext := time.UnixMilli(onStart).UTC()
	if !e.nextAt.Equal(wantNext) {
		t.Fatalf("nextAt = %v, want %v", e.nextAt, wantNext)
	}
}

func TestWatchAlreadyOnSeedsOffEdgeAsNextTransition(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)
	onStart := now.Add(-time.Hour).UnixMilli()
	onEnd := now.Add(time.Hour).UnixMilli()
	b := mustDateTime(t, interval.Interval{Start: onStart, End: onEnd})

	w := NewWatcher(func(string, State, time.Time) {})
	w.nowFunc = func() time.Time { return now }

	if err := w.Watch("x", b, nil, 24*time.Hour); err != nil {
		t.Fatalf("Watch: %v", err)
	}

	state, ok := w.State("x")
	if !ok || state != On {
		t.Fatalf("expected initial state On, got %v, ok=%v", state, ok)
	}

	e := w.byName["x"]
	wantNext := time.UnixMilli(onEnd + 1).UTC()
	if !e.nextAt.Equal(wantNext) {
		t.Fatalf("nextAt = %v, want %v", e.nextAt, wantNext)
	}
}

func TestUnwatchRemovesEntryFromHeapAndMap(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)
	b := mustDateTime(t, interval.Interval{Start: now.UnixMilli(), End: now.UnixMilli() + 1000})

	w := NewWatcher(func(string, State, time.Time) {})
	w.nowFunc = func() time.Time { return now }

	if err := w.Watch("x", b, nil, time.Hour); err != nil {
		t.Fatalf("Watch: %v", err)
	}
	w.Unwatch("x")

	if _, ok := w.State("x"); ok {
		t.Fatal("expected the schedule to be gone after Unwatch")
	}
	if len(w.heap) != 0 {
		t.Fatalf("expected the heap to be empty, got %d entries", len(w.heap))
	}
}

func TestWatchReplacesExistingEntry(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)
	b1 := mustDateTime(t, interval.Interval{Start: now.UnixMilli() + 1000, End: now.UnixMilli() + 2000})
	b2 := mustDateTime(t, interval.Interval{Start: now.UnixMilli() + 5000, End: now.UnixMilli() + 6000})

	w := NewWatcher(func(string, State, time.Time) {})
	w.nowFunc = func() time.Time { return now }

	if err := w.Watch("x", b1, nil, time.Hour); err != nil {
		t.Fatalf("Watch: %v", err)
	}
	if err := w.Watch("x", b2, nil, time.Hour); err != nil {
		t.Fatalf("Watch: %v", err)
	}

	if len(w.heap) != 1 {
		t.Fatalf("expected exactly 1 heap entry after replacing, got %d", len(w.heap))
	}
	e := w.byName["x"]
	wantNext := time.UnixMilli(now.UnixMilli() + 5000).UTC()
	if !e.nextAt.Equal(wantNext) {
		t.Fatalf("nextAt = %v, want %v", e.nextAt, wantNext)
	}
}

func TestEntryHeapOrdersByNextAtWithZeroLast(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)
	soon := mustDateTime(t, interval.Interval{Start: now.UnixMilli() + 1000, End: now.UnixMilli() + 2000})
	later := mustDateTime(t, interval.Interval{Start: now.UnixMilli() + 5000, End: now.UnixMilli() + 6000})
	never := mustDateTime(t, interval.Interval{Start: now.UnixMilli() - 5000, End: now.UnixMilli() - 4000}) // already elapsed within the horizon

	w := NewWatcher(func(string, State, time.Time) {})
	w.nowFunc = func() time.Time { return now }

	if err := w.Watch("later", later, nil, time.Hour); err != nil {
		t.Fatalf("Watch: %v", err)
	}
	if err := w.Watch("never", never, nil, time.Hour); err != nil {
		t.Fatalf("Watch: %v", err)
	}
	if err := w.Watch("soon", soon, nil, time.Hour); err != nil {
		t.Fatalf("Watch: %v", err)
	}

	if got := w.heap[0].name; got != "soon" {
		t.Fatalf("expected the heap root to be the earliest transition, got %q", got)
	}
}

func TestStartFiresTransitionsAtRealTime(t *testing.T) {
	t.Parallel()

	nowMs := time.Now().UnixMilli()
	onStart := nowMs + 200
	onEnd := nowMs + 500
	b := mustDateTime(t, interval.Interval{Start: onStart, End: onEnd})

	type firing struct {
		name  string
		state State
	}
	ch := make(chan firing, 4)
	w := NewWatcher(func(name string, state State, at time.Time) {
		ch <- firing{name, state}
	})

	if err := w.Watch("x", b, nil, 10*time.Second); err != nil {
		t.Fatalf("Watch: %v", err)
	}
	w.Start()
	defer w.Stop()

	select {
	case f := <-ch:
		if f.name != "x" || f.state != On {
			t.Fatalf("first firing = %+v, want x/On", f)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for the on-transition")
	}

	select {
	case f := <-ch:
		if f.name != "x" || f.state != Off {
			t.Fatalf("second firing = %+v, want x/Off", f)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for the off-transition")
	}
}
