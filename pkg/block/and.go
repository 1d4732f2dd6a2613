package block

import (
	"sort"
	"strings"

	"github.com/patrickspencer/scheduleexpr/pkg/interval"
)

// AndBlock combines an ordered list of children with logical AND (spec §4.6).
type AndBlock struct {
	Children []Block
	merge    MergeState
	hash     *uint64
}

// NewAndBlock builds an AndBlock over the given children.
func NewAndBlock(children []Block) *AndBlock {
	return &AndBlock{Children: append([]Block(nil), children...)}
}

// MergeState returns the block's merge annotation.
func (a *AndBlock) MergeState() MergeState { return a.merge }

// SetMergeState sets the block's merge annotation.
func (a *AndBlock) SetMergeState(m MergeState) {
	a.merge = m
	a.hash = nil
}

func (a *AndBlock) group() group { return groupCondition }

// Clone returns a deep copy: every child is cloned independently.
func (a *AndBlock) Clone() Block {
	children := make([]Block, len(a.Children))
	for i, c := range a.Children {
		children[i] = c.Clone()
	}
	return &AndBlock{Children: children, merge: a.merge}
}

// Hash returns the memoized structural hash.
func (a *AndBlock) Hash() uint64 {
	if a.hash != nil {
		return *a.hash
	}
	h := newHash("AND").mixMerge(a.merge)
	for _, c := range a.Children {
		h.mixInt(int64(c.Hash()))
	}
	v := h.sum()
	a.hash = &v
	return v
}

func (a *AndBlock) String() string {
	parts := make([]string, len(a.Children))
	for i, c := range a.Children {
		parts[i] = maybeParenthesize(c)
	}
	s := strings.Join(parts, " AND ")
	return applyMergeAnnotation(s, a.merge)
}

// evaluationOrder returns a stable-sorted copy of children (Field before
// Condition before Reference) so cheap predicates run first and the
// empty-result short-circuit fires as early as possible (spec §4.6).
func evaluationOrder(children []Block) []Block {
	ordered := append([]Block(nil), children...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].group() < ordered[j].group() })
	return ordered
}

// Evaluate implements Block.
func (a *AndBlock) Evaluate(domain Domain, reg Registry, merge bool) ([]interval.Interval, error) {
	return a.evaluate(domain, reg, merge, map[string]bool{})
}

func (a *AndBlock) evaluate(domain Domain, reg Registry, merge bool, visited map[string]bool) ([]interval.Interval, error) {
	if len(a.Children) == 0 {
		return nil, nil
	}
	resolved := a.merge.Resolve(merge)

	lists := make([][]interval.Interval, 0, len(a.Children))
	for _, c := range evaluationOrder(a.Children) {
		res, err := c.evaluate(domain, reg, resolved, visited)
		if err != nil {
			return nil, err
		}
		if len(res) == 0 {
			return nil, nil
		}
		lists = append(lists, res)
	}
	return interval.Intersect(lists, resolved), nil
}

// EvaluateTimestamp implements Block.
func (a *AndBlock) EvaluateTimestamp(t int64, reg Registry) (bool, error) {
	return a.evaluateTimestamp(t, reg, map[string]bool{})
}

func (a *AndBlock) evaluateTimestamp(t int64, reg Registry, visited map[string]bool) (bool, error) {
	for _, c := range evaluationOrder(a.Children) {
		ok, err := c.evaluateTimestamp(t, reg, visited)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return len(a.Children) > 0, nil
}
