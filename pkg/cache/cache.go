// Package cache implements the interval cache described in spec §4.8:
// results keyed by (block-hash, start, end), evicted least-recently-used,
// with best-effort subset extraction from a wider cached entry.
package cache

import (
	"sort"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/patrickspencer/scheduleexpr/pkg/interval"
)

const (
	// DefaultMaxSize is the default number of cached entries (spec §4.8).
	DefaultMaxSize = 10
	// DefaultMaxRangesPerEntry is the default cap on a result's interval
	// count before it is returned but not stored (spec §4.8).
	DefaultMaxRangesPerEntry = 10_000
)

type cacheKey struct {
	hash  uint64
	start int64
	end   int64
}

type cacheEntry struct {
	intervals []interval.Interval
}

// IntervalCache is an LRU cache of evaluation results keyed by
// (block hash, start, end). Eviction ordering is delegated to
// hashicorp/golang-lru, promoted from an indirect dependency of the
// teacher repo's sqlite driver chain to a direct one here (see
// DESIGN.md); a side index keyed by block hash supports the
// subset-extraction scan golang-lru's plain LRU API doesn't offer.
type IntervalCache struct {
	lru               *lru.Cache[cacheKey, *cacheEntry]
	maxRangesPerEntry int
	byHash            map[uint64]map[cacheKey]struct{}
}

// Options configures a new IntervalCache.
type Options struct {
	MaxSize           int
	MaxRangesPerEntry int
}

// New builds an IntervalCache with the given options, falling back to
// the spec's defaults for zero values.
func New(opts Options) *IntervalCache {
	maxSize := opts.MaxSize
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	maxRanges := opts.MaxRangesPerEntry
	if maxRanges <= 0 {
		maxRanges = DefaultMaxRangesPerEntry
	}

	c := &IntervalCache{
		maxRangesPerEntry: maxRanges,
		byHash:            make(map[uint64]map[cacheKey]struct{}),
	}
	l, err := lru.NewWithEvict[cacheKey, *cacheEntry](maxSize, c.onEvict)
	if err != nil {
		// Only returns an error for size <= 0, already guarded above.
		panic(err)
	}
	c.lru = l
	return c
}

func (c *IntervalCache) onEvict(key cacheKey, _ *cacheEntry) {
	c.removeIndex(key)
}

func (c *IntervalCache) addIndex(key cacheKey) {
	m := c.byHash[key.hash]
	if m == nil {
		m = make(map[cacheKey]struct{})
		c.byHash[key.hash] = m
	}
	m[key] = struct{}{}
}

func (c *IntervalCache) removeIndex(key cacheKey) {
	m := c.byHash[key.hash]
	if m == nil {
		return
	}
	delete(m, key)
	if len(m) == 0 {
		delete(c.byHash, key.hash)
	}
}

// Get implements spec §4.8's Get: an exact (hash, start, end) hit
// returns directly; otherwise any cached entry for the same hash whose
// range is a superset of [start, end] is sliced and clipped to it.
func (c *IntervalCache) Get(blockHash uint64, start, end int64) ([]interval.Interval, bool) {
	exact := cacheKey{hash: blockHash, start: start, end: end}
	if e, ok := c.lru.Get(exact); ok {
		return interval.Clone(e.intervals), true
	}

	for k := range c.byHash[blockHash] {
		if k.start <= start && k.end >= end {
			if e, ok := c.lru.Peek(k); ok {
				c.lru.Get(k) // bump recency on the superset entry we're reading from
				return extractSubset(e.intervals, start, end), true
			}
		}
	}
	return nil, false
}

// Set implements spec §4.8's Set: strict subsets of the new range are
// dropped, the LRU evicts if at capacity, and a defensive copy is stored.
// Results wider than MaxRangesPerEntry are silently not stored.
func (c *IntervalCache) Set(blockHash uint64, start, end int64, intervals []interval.Interval) {
	if len(intervals) > c.maxRangesPerEntry {
		return
	}

	for k := range c.byHash[blockHash] {
		if k.start >= start && k.end <= end {
			c.lru.Remove(k)
		}
	}

	key := cacheKey{hash: blockHash, start: start, end: end}
	c.lru.Add(key, &cacheEntry{intervals: interval.Clone(intervals)})
	c.addIndex(key)
}

// Len returns the number of cached entries.
func (c *IntervalCache) Len() int { return c.lru.Len() }

// Purge removes all cached entries.
func (c *IntervalCache) Purge() {
	c.lru.Purge()
}

// extractSubset implements the binary-search-plus-clip subset extraction
// from spec §4.8 step 2, assuming ivs is sorted ascending by start.
func extractSubset(ivs []interval.Interval, start, end int64) []interval.Interval {
	lo := sort.Search(len(ivs), func(i int) bool { return ivs[i].End >= start })
	hi := sort.Search(len(ivs), func(i int) bool { return ivs[i].Start > end })
	if lo >= hi {
		return nil
	}
	return interval.ClipAll(ivs[lo:hi], start, end)
}
