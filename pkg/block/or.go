package block

import (
	"strings"

	"github.com/patrickspencer/scheduleexpr/pkg/interval"
)

// OrBlock combines an ordered list of children with logical OR (spec §4.6).
type OrBlock struct {
	Children []Block
	merge    MergeState
	hash     *uint64
}

// NewOrBlock builds an OrBlock over the given children.
func NewOrBlock(children []Block) *OrBlock {
	return &OrBlock{Children: append([]Block(nil), children...)}
}

// MergeState returns the block's merge annotation.
func (o *OrBlock) MergeState() MergeState { return o.merge }

// SetMergeState sets the block's merge annotation.
func (o *OrBlock) SetMergeState(m MergeState) {
	o.merge = m
	o.hash = nil
}

func (o *OrBlock) group() group { return groupCondition }

// Clone returns a deep copy: every child is cloned independently.
func (o *OrBlock) Clone() Block {
	children := make([]Block, len(o.Children))
	for i, c := range o.Children {
		children[i] = c.Clone()
	}
	return &OrBlock{Children: children, merge: o.merge}
}

// Hash returns the memoized structural hash.
func (o *OrBlock) Hash() uint64 {
	if o.hash != nil {
		return *o.hash
	}
	h := newHash("OR").mixMerge(o.merge)
	for _, c := range o.Children {
		h.mixInt(int64(c.Hash()))
	}
	v := h.sum()
	o.hash = &v
	return v
}

func (o *OrBlock) String() string {
	parts := make([]string, len(o.Children))
	for i, c := range o.Children {
		parts[i] = maybeParenthesize(c)
	}
	s := strings.Join(parts, " OR ")
	return applyMergeAnnotation(s, o.merge)
}

// Evaluate implements Block.
func (o *OrBlock) Evaluate(domain Domain, reg Registry, merge bool) ([]interval.Interval, error) {
	return o.evaluate(domain, reg, merge, map[string]bool{})
}

func (o *OrBlock) evaluate(domain Domain, reg Registry, merge bool, visited map[string]bool) ([]interval.Interval, error) {
	if len(o.Children) == 0 {
		return nil, nil
	}
	resolved := o.merge.Resolve(merge)

	var lists [][]interval.Interval
	for _, c := range evaluationOrder(o.Children) {
		res, err := c.evaluate(domain, reg, resolved, visited)
		if err != nil {
			return nil, err
		}
		if len(res) > 0 {
			lists = append(lists, res)
		}
	}
	if len(lists) == 0 {
		return nil, nil
	}
	return interval.Union(lists, resolved), nil
}

// EvaluateTimestamp implements Block.
func (o *OrBlock) EvaluateTimestamp(t int64, reg Registry) (bool, error) {
	return o.evaluateTimestamp(t, reg, map[string]bool{})
}

func (o *OrBlock) evaluateTimestamp(t int64, reg Registry, visited map[string]bool) (bool, error) {
	for _, c := range evaluationOrder(o.Children) {
		ok, err := c.evaluateTimestamp(t, reg, visited)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}
