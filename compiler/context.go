// Package compiler implements the JIT compiler + strategy chain of
// spec.md §4.6: it turns a tree of types.CodeStatement into a tree of
// *block.Block, each composed from the behavior package exactly as its
// matching Strategy specifies (spec.md §4.4 "order is data, not
// discovered at runtime").
package compiler

import "forge/types"

// CompilationContext is threaded parent -> child during compilation
// (spec.md §4.6 "CompilationContext (inheritance)"). Children read
// Reps from context when they carry no local Rep fragment of their
// own, which is what lets a rep scheme like
// "21-15-9" — three Rep fragments on the parent statement, none on its
// grouped children — resolve to the right count per child group.
//
// A container's children are compiled exactly once, since a compiled
// *block.Block is reused across every lap ChildRunner loops it through
// (block.Dispose/Mount are built to support that re-mount cycle); Round
// here is therefore compile-time metadata about which lap a statement's
// grouped children belong to at compile time (relevant for a rep
// scheme's group index), not a live value re-read every runtime lap —
// that live value is RoundState.Current, owned by RoundInit/RoundAdvance.
type CompilationContext struct {
	Round       int // 1-based group/lap index this context was derived for
	TotalRounds int // informational only; RoundState.Total is authoritative at runtime

	Reps    int
	HasReps bool

	// Set by IntervalStrategy and copied down to children; no strategy
	// reads them.
	IntervalDurationMs int64
	HasInterval        bool

	Parent *CompilationContext

	// InheritedMetrics are display fragments a parent wants every child
	// to carry even though the child's own statement never mentions them
	// (e.g. a Resistance fragment stated once on a superset header).
	InheritedMetrics []types.Fragment

	// ForcedPopEvent, when non-empty, is an event name every leaf
	// strategy must additionally subscribe to via PopOnEvent(ScopeActive)
	// so an enclosing IntervalStrategy container can force the active
	// child to complete early when its per-round clock elapses, without
	// the child needing to know it is running under a clock at all.
	ForcedPopEvent string
}

// RootContext is the context passed to the first, top-level Compile call.
func RootContext() *CompilationContext {
	return &CompilationContext{}
}

// childContext derives the context for one child, inheriting Reps
// unless repOverride applies (a parent's rep-scheme entry for this
// child's group).
func (c *CompilationContext) childContext(round, repOverride int, hasRepOverride bool) *CompilationContext {
	child := &CompilationContext{
		Round:              round,
		TotalRounds:        c.TotalRounds,
		Reps:               c.Reps,
		HasReps:            c.HasReps,
		IntervalDurationMs: c.IntervalDurationMs,
		HasInterval:        c.HasInterval,
		Parent:             c,
		InheritedMetrics:   c.InheritedMetrics,
		ForcedPopEvent:     c.ForcedPopEvent,
	}
	if hasRepOverride {
		child.Reps = repOverride
		child.HasReps = true
	}
	return child
}

// repForGroup resolves the rep count for a 1-based group index out of
// an ordered scheme, clamping to the last entry once the scheme is
// exhausted — a scheme is never longer than the groups it's paired
// with in practice, so clamping is the least surprising reading of an
// out-of-range index.
func repForGroup(scheme []int, group int) (int, bool) {
	if len(scheme) == 0 {
		return 0, false
	}
	idx := group - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(scheme) {
		idx = len(scheme) - 1
	}
	return scheme[idx], true
}
