package compiler

import (
	"forge/behavior"
	"forge/block"
	"forge/types"
)

// EffortStrategy is the fallback (spec.md §4.6 precedence #6): a
// terminal leaf block driven entirely by the user (or an enclosing
// container's forced pop) advancing past it.
type EffortStrategy struct{}

func (EffortStrategy) Name() string { return "EffortStrategy" }

func (EffortStrategy) Match(types.CodeStatement, *Compiler) bool { return true }

func (EffortStrategy) Compile(stmt types.CodeStatement, c *Compiler, cc *CompilationContext) *block.Block {
	label := displayLabel(stmt)
	if label == "" {
		label = "Effort"
	}

	b := block.NewBuilder(c.Store(), "Effort", []int{stmt.ID}, label)
	b.AddBehavior(behavior.NewDisplayInit("effort", label))
	b.AddBehavior(behavior.NewPopOnNext())
	addForcedPop(b, cc)
	if hasTrackedMetric(stmt) {
		b.AddBehavior(behavior.NewHistoryRecord())
	}
	b.AddBehavior(behavior.NewSegmentOutput())

	return c.build(b, stmt, cc)
}
