package compiler

import (
	"forge/behavior"
	"forge/block"
	"forge/types"
)

// GroupStrategy matches any statement with children that no more
// specific strategy claimed — a generic sequential container with no
// round-looping (spec.md §4.6 precedence #5). Completion comes from
// ChildRunner marking the block complete once its children are
// exhausted; PopOnNext does nothing on a block that runs children
// (it sees the child-index memory ChildRunner allocates), so a Next
// after one child finishes advances to the following child instead of
// ending the group.
type GroupStrategy struct{}

func (GroupStrategy) Name() string { return "GroupStrategy" }

func (GroupStrategy) Match(stmt types.CodeStatement, _ *Compiler) bool {
	return len(flattenChildren(stmt)) > 0
}

func (GroupStrategy) Compile(stmt types.CodeStatement, c *Compiler, cc *CompilationContext) *block.Block {
	label := displayLabel(stmt)
	if label == "" {
		label = "Group"
	}

	children := c.compileChildren(stmt, cc, repScheme(stmt))
	restFn := c.restChecker(stmt)

	b := block.NewBuilder(c.Store(), "Group", []int{stmt.ID}, label)
	if restFn != nil {
		b.AddBehavior(behavior.NewRestBlockGuard(restFn))
	}
	b.AddBehavior(behavior.NewChildRunner(children))
	addForcedPop(b, cc)
	b.AddBehavior(behavior.NewSegmentOutput())
	b.AddBehavior(behavior.NewPopOnNext())

	return c.build(b, stmt, cc)
}
