package compiler

import (
	"forge/behavior"
	"forge/block"
	"forge/types"
)

// RoundsStrategy matches a Rounds fragment without a Timer fragment —
// a plain "N rounds of ..." container (spec.md §4.6 precedence #2).
type RoundsStrategy struct{}

func (RoundsStrategy) Name() string { return "RoundsStrategy" }

func (RoundsStrategy) Match(stmt types.CodeStatement, _ *Compiler) bool {
	return stmt.HasFragment(types.FragmentRounds) && !stmt.HasFragment(types.FragmentTimer)
}

func (RoundsStrategy) Compile(stmt types.CodeStatement, c *Compiler, cc *CompilationContext) *block.Block {
	total, ok := roundsSpec(stmt)
	if !ok {
		total = types.UnboundedRounds
	}
	label := displayLabel(stmt)
	if label == "" {
		label = "Rounds"
	}

	children := c.compileChildren(stmt, cc, repScheme(stmt))
	restFn := c.restChecker(stmt)

	b := block.NewBuilder(c.Store(), "Rounds", []int{stmt.ID}, label)
	b.AddBehavior(behavior.NewRoundInit(1, total))
	b.AddBehavior(behavior.NewRoundAdvance())
	b.AddBehavior(behavior.NewRoundCompletion())
	b.AddBehavior(behavior.NewRoundDisplay())
	b.AddBehavior(behavior.NewChildLoop())
	if restFn != nil {
		b.AddBehavior(behavior.NewRestBlockGuard(restFn))
	}
	b.AddBehavior(behavior.NewChildRunner(children))
	b.AddBehavior(behavior.NewRoundOutput())
	addForcedPop(b, cc)
	b.AddBehavior(behavior.NewSegmentOutput())

	return c.build(b, stmt, cc)
}
