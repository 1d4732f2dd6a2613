package block

import (
	"regexp"

	"github.com/patrickspencer/scheduleexpr/pkg/interval"
	"github.com/patrickspencer/scheduleexpr/pkg/scherr"
)

var alphaNumID = regexp.MustCompile(`^[A-Za-z0-9]+$`)

// ValidID reports whether id matches the alphanumeric convention required
// of every reference ID (spec §6). Shared with pkg/registry so the
// registry's own id validation can't drift from Reference's.
func ValidID(id string) bool {
	return alphaNumID.MatchString(id)
}

// Reference delegates evaluation to a named entry in a schedule registry
// (spec §4.5).
type Reference struct {
	ID    string
	merge MergeState
	hash  *uint64
}

// NewReference validates the ID and builds a Reference.
func NewReference(id string) (*Reference, error) {
	if !ValidID(id) {
		return nil, scherr.InvalidID(id)
	}
	return &Reference{ID: id}, nil
}

// MergeState returns the reference's merge annotation.
func (r *Reference) MergeState() MergeState { return r.merge }

// SetMergeState sets the reference's merge annotation.
func (r *Reference) SetMergeState(m MergeState) {
	r.merge = m
	r.hash = nil
}

func (r *Reference) group() group { return groupReference }

// Clone returns an independent copy.
func (r *Reference) Clone() Block {
	return &Reference{ID: r.ID, merge: r.merge}
}

// Hash returns the memoized structural hash.
func (r *Reference) Hash() uint64 {
	if r.hash != nil {
		return *r.hash
	}
	v := newHash("REF").mixMerge(r.merge).mix(r.ID).sum()
	r.hash = &v
	return v
}

func (r *Reference) String() string {
	return applyMergeAnnotation("REF["+r.ID+"]", r.merge)
}

// Evaluate implements Block.
func (r *Reference) Evaluate(domain Domain, reg Registry, merge bool) ([]interval.Interval, error) {
	return r.evaluate(domain, reg, merge, map[string]bool{})
}

func (r *Reference) evaluate(domain Domain, reg Registry, merge bool, visited map[string]bool) ([]interval.Interval, error) {
	if reg == nil {
		return nil, scherr.Reference(r.ID, "no schedule provided")
	}
	target, ok := reg.Resolve(r.ID)
	if !ok {
		return nil, scherr.Reference(r.ID, "not found")
	}
	if visited[r.ID] {
		return nil, scherr.Reference(r.ID, "cycle detected")
	}
	visited = markVisited(visited, r.ID)

	resolved := r.merge.Resolve(merge)
	return target.evaluate(domain, reg, resolved, visited)
}

// EvaluateTimestamp implements Block.
func (r *Reference) EvaluateTimestamp(t int64, reg Registry) (bool, error) {
	return r.evaluateTimestamp(t, reg, map[string]bool{})
}

func (r *Reference) evaluateTimestamp(t int64, reg Registry, visited map[string]bool) (bool, error) {
	if reg == nil {
		return false, scherr.Reference(r.ID, "no schedule provided")
	}
	target, ok := reg.Resolve(r.ID)
	if !ok {
		return false, scherr.Reference(r.ID, "not found")
	}
	if visited[r.ID] {
		return false, scherr.Reference(r.ID, "cycle detected")
	}
	visited = markVisited(visited, r.ID)
	return target.evaluateTimestamp(t, reg, visited)
}

// markVisited returns a copy of visited with id added, so sibling
// branches of the tree (e.g. both sides of an AND) don't share false
// positives from each other's reference chains.
func markVisited(visited map[string]bool, id string) map[string]bool {
	out := make(map[string]bool, len(visited)+1)
	for k, v := range visited {
		out[k] = v
	}
	out[id] = true
	return out
}
