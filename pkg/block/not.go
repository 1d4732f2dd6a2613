package block

import "github.com/patrickspencer/scheduleexpr/pkg/interval"

// NotBlock inverts an optional single child (spec §4.6). A nil Child
// means "not nothing", which evaluates to the whole domain.
type NotBlock struct {
	Child Block
	merge MergeState
	hash  *uint64
}

// NewNotBlock builds a NotBlock wrapping child (which may be nil).
func NewNotBlock(child Block) *NotBlock {
	return &NotBlock{Child: child}
}

// MergeState returns the block's merge annotation.
func (n *NotBlock) MergeState() MergeState { return n.merge }

// SetMergeState sets the block's merge annotation.
func (n *NotBlock) SetMergeState(m MergeState) {
	n.merge = m
	n.hash = nil
}

func (n *NotBlock) group() group { return groupCondition }

// Clone returns a deep copy.
func (n *NotBlock) Clone() Block {
	var child Block
	if n.Child != nil {
		child = n.Child.Clone()
	}
	return &NotBlock{Child: child, merge: n.merge}
}

// Hash returns the memoized structural hash.
func (n *NotBlock) Hash() uint64 {
	if n.hash != nil {
		return *n.hash
	}
	h := newHash("NOT").mixMerge(n.merge)
	if n.Child != nil {
		h.mixInt(int64(n.Child.Hash()))
	}
	v := h.sum()
	n.hash = &v
	return v
}

func (n *NotBlock) String() string {
	if n.Child == nil {
		return applyMergeAnnotation("NOT()", n.merge)
	}
	s := "NOT " + maybeParenthesize(n.Child)
	return applyMergeAnnotation(s, n.merge)
}

// Evaluate implements Block.
func (n *NotBlock) Evaluate(domain Domain, reg Registry, merge bool) ([]interval.Interval, error) {
	return n.evaluate(domain, reg, merge, map[string]bool{})
}

func (n *NotBlock) evaluate(domain Domain, reg Registry, merge bool, visited map[string]bool) ([]interval.Interval, error) {
	resolved := n.merge.Resolve(merge)
	if n.Child == nil {
		return []interval.Interval{{Start: domain.Start, End: domain.End}}, nil
	}
	childResult, err := n.Child.evaluate(domain, reg, resolved, visited)
	if err != nil {
		return nil, err
	}
	sorted := interval.Clone(childResult)
	interval.SortIntervals(sorted)
	return interval.Complement(sorted, domain.Start, domain.End, resolved), nil
}

// EvaluateTimestamp implements Block.
func (n *NotBlock) EvaluateTimestamp(t int64, reg Registry) (bool, error) {
	return n.evaluateTimestamp(t, reg, map[string]bool{})
}

func (n *NotBlock) evaluateTimestamp(t int64, reg Registry, visited map[string]bool) (bool, error) {
	if n.Child == nil {
		return true, nil
	}
	ok, err := n.Child.evaluateTimestamp(t, reg, visited)
	if err != nil {
		return false, err
	}
	return !ok, nil
}
