package compiler

import (
	"forge/behavior"
	"forge/block"
	"forge/types"
)

// IntervalStrategy matches a Timer fragment paired with an "EMOM"
// Action fragment — timer-bounded-per-round, combining a Timer and a
// Rounds container (spec.md §4.6 precedence #3). Unlike
// TimeBoundRoundsStrategy, the clock here never completes the
// container itself: it restarts every interval and force-pops whatever
// child is currently active via IntervalAdvance/PopOnEvent. Each
// elapsed interval ends one child; a round ends, as in a Rounds
// container, after the last child of the lap.
type IntervalStrategy struct{}

func (IntervalStrategy) Name() string { return "IntervalStrategy" }

func (IntervalStrategy) Match(stmt types.CodeStatement, _ *Compiler) bool {
	return stmt.HasFragment(types.FragmentTimer) && hasAction(stmt, "EMOM")
}

func (IntervalStrategy) Compile(stmt types.CodeStatement, c *Compiler, cc *CompilationContext) *block.Block {
	_, durationMs, _ := timerSpec(stmt)
	total, ok := roundsSpec(stmt)
	if !ok {
		total = types.UnboundedRounds
	}
	label := displayLabel(stmt)
	if label == "" {
		label = "EMOM"
	}

	childCC := cc.childContext(1, 0, false)
	childCC.ForcedPopEvent = types.EventIntervalElapsed
	if durationMs != nil {
		childCC.IntervalDurationMs = *durationMs
		childCC.HasInterval = true
	}
	children := c.compileChildren(stmt, childCC, repScheme(stmt))
	restFn := c.restChecker(stmt)

	b := block.NewBuilder(c.Store(), "Interval", []int{stmt.ID}, label)
	b.AddBehavior(behavior.NewTimerInit(types.DirectionDown, durationMs, label, types.RolePrimary))
	b.AddBehavior(behavior.NewIntervalAdvance())
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
	addForcedPop(b, cc) // this Interval may itself be nested in an outer interval
	b.AddBehavior(behavior.NewSegmentOutput())

	return c.build(b, stmt, cc)
}
