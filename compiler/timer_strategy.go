package compiler

import (
	"forge/behavior"
	"forge/block"
	"forge/types"
)

// TimerStrategy matches a bare timer statement: a Timer fragment with
// no Rounds fragment and no children (spec.md §4.6 precedence #1).
type TimerStrategy struct{}

func (TimerStrategy) Name() string { return "TimerStrategy" }

func (TimerStrategy) Match(stmt types.CodeStatement, _ *Compiler) bool {
	if !stmt.HasFragment(types.FragmentTimer) {
		return false
	}
	if stmt.HasFragment(types.FragmentRounds) {
		return false
	}
	return len(flattenChildren(stmt)) == 0
}

func (TimerStrategy) Compile(stmt types.CodeStatement, c *Compiler, cc *CompilationContext) *block.Block {
	direction, durationMs, _ := timerSpec(stmt)
	label := displayLabel(stmt)
	if label == "" {
		label = "Timer"
	}

	b := block.NewBuilder(c.Store(), "Timer", []int{stmt.ID}, label)
	b.AddBehavior(behavior.NewTimerInit(direction, durationMs, label, types.RolePrimary))
	b.AddBehavior(behavior.NewTimerTick(types.ScopeActive))
	b.AddBehavior(behavior.NewTimerPause(types.ScopeActive))
	if durationMs != nil {
		b.AddBehavior(behavior.NewTimerCompletion(types.ScopeActive))
	}
	addForcedPop(b, cc)
	b.AddBehavior(behavior.NewTimerOutput())
	b.AddBehavior(behavior.NewDisplayInit("timer", label))
	b.AddBehavior(behavior.NewControlsInit(pauseResumeButtons()))
	b.AddBehavior(behavior.NewSegmentOutput())

	return c.build(b, stmt, cc)
}
