// Package block implements the abstract expression tree (the "block
// tree"): field blocks over calendrical predicates and condition blocks
// combining them with AND/OR/NOT.
package block

import (
	"github.com/patrickspencer/scheduleexpr/pkg/interval"
)

// Domain is the closed, inclusive UTC-millisecond range a block is
// evaluated over.
type Domain struct {
	Start int64
	End   int64
}

func (d Domain) asInterval() interval.Interval {
	return interval.Interval{Start: d.Start, End: d.End}
}

// Registry resolves a Reference block's ID to its underlying block. It is
// implemented by pkg/registry.Schedule; kept as a narrow interface here
// to avoid an import cycle between block and registry.
type Registry interface {
	Resolve(id string) (Block, bool)
}

// MergeState is the tri-valued merge-control annotation every block
// carries (spec §3). DEFAULT inherits the caller's merge argument;
// EXPLICIT_ON/EXPLICIT_OFF override it.
type MergeState int

const (
	// Default inherits the caller-supplied merge argument.
	Default MergeState = iota
	// ExplicitOn forces merge on regardless of the caller's argument.
	ExplicitOn
	// ExplicitOff forces merge off regardless of the caller's argument.
	ExplicitOff
)

// Resolve computes the effective merge flag for a node given the caller's
// argument, per spec §3: DEFAULT inherits, otherwise the explicit state wins.
func (m MergeState) Resolve(callerMerge bool) bool {
	switch m {
	case ExplicitOn:
		return true
	case ExplicitOff:
		return false
	default:
		return callerMerge
	}
}

// group orders children within And/Or for cheap-predicate-first
// evaluation (spec §4.6): fields before conditions before references.
type group int

const (
	groupField group = iota
	groupCondition
	groupReference
)

// Block is the interface every node in the tree satisfies.
type Block interface {
	// Evaluate walks the block over domain, resolving references through
	// reg (which may be nil if the tree contains no References), applying
	// merge as the root caller's merge argument.
	Evaluate(domain Domain, reg Registry, merge bool) ([]interval.Interval, error)
	// EvaluateTimestamp reports whether t falls within the block's "on" set.
	EvaluateTimestamp(t int64, reg Registry) (bool, error)
	// Hash returns a structural hash, memoized and invalidated on mutation.
	Hash() uint64
	// Clone returns a deep, independent copy of the block.
	Clone() Block
	// MergeState returns the block's own tri-valued merge annotation.
	MergeState() MergeState
	// SetMergeState sets the block's merge annotation, invalidating its hash.
	SetMergeState(MergeState)
	// String renders the block back to surface syntax (spec §6 round-trip).
	String() string

	// evaluate/evaluateTimestamp are the cycle-safe internal entry points;
	// Evaluate/EvaluateTimestamp seed a fresh visited set and delegate here.
	evaluate(domain Domain, reg Registry, merge bool, visited map[string]bool) ([]interval.Interval, error)
	evaluateTimestamp(t int64, reg Registry, visited map[string]bool) (bool, error)
	group() group
}

// maybeParenthesize wraps a child's String() in parentheses when it is a
// condition block whose own operator could otherwise be misread at a
// different precedence level once embedded in a parent (spec §4.1).
func maybeParenthesize(b Block) string {
	switch b.(type) {
	case *AndBlock, *OrBlock, *NotBlock:
		return "(" + b.String() + ")"
	default:
		return b.String()
	}
}
