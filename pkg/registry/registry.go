// Package registry implements the schedule registry described in spec
// §4.9: a named collection of block.Block trees that can reference one
// another by ID, with cycle-safe evaluation delegated to pkg/block and
// an owned IntervalCache fronting repeated evaluations.
package registry

import (
	"sync"

	"github.com/patrickspencer/scheduleexpr/pkg/block"
	"github.com/patrickspencer/scheduleexpr/pkg/cache"
	"github.com/patrickspencer/scheduleexpr/pkg/interval"
	"github.com/patrickspencer/scheduleexpr/pkg/scherr"
)

// entry is the {block, name} pair spec §4.9 stores per ID.
type entry struct {
	block block.Block
	name  string
}

// Schedule is a registry of named blocks. It satisfies block.Registry so
// a Reference block inside one of its entries can resolve a sibling
// entry by ID. The zero value is not usable; use New or NewWithCache.
type Schedule struct {
	mu      sync.Mutex
	entries map[string]entry
	cache   *cache.IntervalCache
}

// New returns an empty Schedule registry with a default-sized cache.
func New() *Schedule {
	return NewWithCache(cache.Options{})
}

// NewWithCache returns an empty Schedule registry whose owned
// IntervalCache is configured with opts.
func NewWithCache(opts cache.Options) *Schedule {
	return &Schedule{
		entries: make(map[string]entry),
		cache:   cache.New(opts),
	}
}

// Set registers b under id with the given display name. A non-alphanumeric
// id is rejected with an InvalidIDError. When overwrite is false, Set
// rejects an id that already names an entry with a ValidationError rather
// than replacing it.
func (s *Schedule) Set(id, name string, b block.Block, overwrite bool) error {
	if !block.ValidID(id) {
		return scherr.InvalidID(id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !overwrite {
		if _, exists := s.entries[id]; exists {
			return &scherr.Error{
				Kind: scherr.KindValidation,
				Msg:  "id already registered and overwrite is false",
				ID:   id,
			}
		}
	}
	s.entries[id] = entry{block: b, name: name}
	return nil
}

// Get returns the block registered under id.
func (s *Schedule) Get(id string) (block.Block, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		return nil, false
	}
	return e.block, true
}

// GetEntry returns the {block, name} pair registered under id.
func (s *Schedule) GetEntry(id string) (block.Block, string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		return nil, "", false
	}
	return e.block, e.name, true
}

// Remove deletes the entry registered under id, reporting whether an
// entry was actually present.
func (s *Schedule) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[id]; !ok {
		return false
	}
	delete(s.entries, id)
	return true
}

// IDs returns the registered IDs in no particular order.
func (s *Schedule) IDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.entries))
	for id := range s.entries {
		ids = append(ids, id)
	}
	return ids
}

// Resolve implements block.Registry.
func (s *Schedule) Resolve(id string) (block.Block, bool) {
	return s.Get(id)
}

// Evaluate looks up id, serves the result from the owned cache on a hit,
// and otherwise evaluates over domain with merge, resolving any
// References it contains against this same registry. When cacheAfter is
// true the result is offered to the cache afterward (the cache itself
// may still decline to store it, e.g. when it exceeds MaxRangesPerEntry).
func (s *Schedule) Evaluate(id string, domain block.Domain, merge bool, cacheAfter bool) ([]interval.Interval, error) {
	b, ok := s.Get(id)
	if !ok {
		return nil, scherr.Reference(id, "not found")
	}

	h := b.Hash()

	s.mu.Lock()
	cached, hit := s.cache.Get(h, domain.Start, domain.End)
	s.mu.Unlock()
	if hit {
		return cached, nil
	}

	// b.Evaluate runs outside the lock: a Reference inside b may resolve
	// back through s.Resolve, which would deadlock against a held lock.
	result, err := b.Evaluate(domain, s, merge)
	if err != nil {
		return nil, err
	}

	if cacheAfter {
		s.mu.Lock()
		s.cache.Set(h, domain.Start, domain.End, result)
		s.mu.Unlock()
	}
	return result, nil
}

// CacheLen returns the number of entries currently held in the owned
// IntervalCache, mainly useful for tests asserting cacheAfter behavior.
func (s *Schedule) CacheLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Len()
}

// EvaluateTimestamp looks up id and reports whether t is within its "on"
// set, resolving any References it contains against this same registry.
// This is a direct delegation per spec §4.9; the cache only fronts
// interval-range evaluation.
func (s *Schedule) EvaluateTimestamp(id string, t int64) (bool, error) {
	b, ok := s.Get(id)
	if !ok {
		return false, scherr.Reference(id, "not found")
	}
	return b.EvaluateTimestamp(t, s)
}
