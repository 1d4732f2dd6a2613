package cache

import (
	"testing"

	"github.com/patrickspencer/scheduleexpr/pkg/interval"
)

func TestGetSetExactHit(t *testing.T) {
	t.Parallel()

	c := New(Options{})
	want := []interval.Interval{{Start: 10, End: 20}}
	c.Set(1, 0, 100, want)

	got, ok := c.Get(1, 0, 100)
	if !ok {
		t.Fatal("expected an exact hit")
	}
	if len(got) != 1 || got[0] != want[0] {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestGetMissOnDifferentHash(t *testing.T) {
	t.Parallel()

	c := New(Options{})
	c.Set(1, 0, 100, []interval.Interval{{Start: 0, End: 10}})

	if _, ok := c.Get(2, 0, 100); ok {
		t.Fatal("expected a miss for a different block hash")
	}
}

func TestGetExtractsSubsetFromWiderEntry(t *testing.T) {
	t.Parallel()

	c := New(Options{})
	c.Set(1, 0, 1000, []interval.Interval{{Start: 100, End: 900}})

	got, ok := c.Get(1, 200, 500)
	if !ok {
		t.Fatal("expected a subset hit against the wider cached entry")
	}
	if len(got) != 1 || got[0] != (interval.Interval{Start: 200, End: 500}) {
		t.Fatalf("got %v", got)
	}
}

func TestGetDoesNotMatchNonSupersetRange(t *testing.T) {
	t.Parallel()

	c := New(Options{})
	c.Set(1, 0, 100, []interval.Interval{{Start: 0, End: 100}})

	if _, ok := c.Get(1, 50, 200); ok {
		t.Fatal("a [50,200] query should not match a [0,100] cached entry (not a superset)")
	}
}

func TestSetDropsStrictSubsetsOfNewerRange(t *testing.T) {
	t.Parallel()

	c := New(Options{})
	c.Set(1, 100, 200, []interval.Interval{{Start: 100, End: 200}})
	if c.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", c.Len())
	}

	c.Set(1, 0, 1000, []interval.Interval{{Start: 0, End: 1000}})
	if c.Len() != 1 {
		t.Fatalf("expected the subset entry to be evicted when a wider one is set, got %d entries", c.Len())
	}

	if _, ok := c.Get(1, 100, 200); !ok {
		t.Fatal("the subset range should still resolve via the wider entry")
	}
}

func TestSetSkipsResultsOverMaxRangesPerEntry(t *testing.T) {
	t.Parallel()

	c := New(Options{MaxRangesPerEntry: 2})
	c.Set(1, 0, 100, []interval.Interval{{Start: 0, End: 10}, {Start: 20, End: 30}, {Start: 40, End: 50}})

	if c.Len() != 0 {
		t.Fatalf("expected the oversized result not to be stored, got %d entries", c.Len())
	}
	if _, ok := c.Get(1, 0, 100); ok {
		t.Fatal("expected a miss since the result was never stored")
	}
}

func TestLRUEvictsLeastRecentlyUsed(t *testing.T) {
	t.Parallel()

	c := New(Options{MaxSize: 2})
	c.Set(1, 0, 10, []interval.Interval{{Start: 0, End: 10}})
	c.Set(2, 0, 10, []interval.Interval{{Start: 0, End: 10}})

	// Touch hash 1 so hash 2 becomes the least-recently-used entry.
	if _, ok := c.Get(1, 0, 10); !ok {
		t.Fatal("expected hash 1 to still be cached")
	}

	c.Set(3, 0, 10, []interval.Interval{{Start: 0, End: 10}})
	if c.Len() != 2 {
		t.Fatalf("expected the cache to stay at its max size, got %d entries", c.Len())
	}
	if _, ok := c.Get(2, 0, 10); ok {
		t.Fatal("expected hash 2 to have been evicted as least-recently-used")
	}
	if _, ok := c.Get(1, 0, 10); !ok {
		t.Fatal("expected hash 1 to survive eviction since it was recently touched")
	}
}

func TestPurgeClearsEverything(t *testing.T) {
	t.Parallel()

	c := New(Options{})
	c.Set(1, 0, 10, []interval.Interval{{Start: 0, End: 10}})
	c.Set(2, 0, 10, []interval.Interval{{Start: 0, End: 10}})
	c.Purge()

	if c.Len() != 0 {
		t.Fatalf("expected 0 entries after Purge, got %d", c.Len())
	}
	if _, ok := c.Get(1, 0, 10); ok {
		t.Fatal("expected a miss after Purge")
	}
}

func TestGetReturnsDefensiveCopy(t *testing.T) {
	t.Parallel()

	c := New(Options{})
	c.Set(1, 0, 10, []interval.Interval{{Start: 0, End: 10}})

	got, _ := c.Get(1, 0, 10)
	got[0].Start = 999

	again, _ := c.Get(1, 0, 10)
	if again[0].Start == 999 {
		t.Fatal("mutating a Get result should not affect the cache's stored copy")
	}
}
