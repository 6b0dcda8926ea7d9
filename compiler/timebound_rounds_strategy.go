package compiler

import (
	"forge/behavior"
	"forge/block"
	"forge/types"
)

// TimeBoundRoundsStrategy matches a Timer paired with a Rounds
// fragment or an "AMRAP" Action — rounds capped by an outer timer
// (spec.md §4.6 precedence #4). The round count is always unbounded
// (RoundCompletion never fires on count) since completion is driven
// entirely by the outer timer expiring; any Rounds fragment present is
// informational only (a target to display, not a cap) — this engine's
// resolution of the scoring-vs-stopping ambiguity AMRAP's definition
// leaves implicit. TimerTick/TimerCompletion run at ScopeGlobal since
// the container is no longer top of stack once a child is pushed, but
// its cap still has to keep ticking.
type TimeBoundRoundsStrategy struct{}

func (TimeBoundRoundsStrategy) Name() string { return "TimeBoundRoundsStrategy" }

func (TimeBoundRoundsStrategy) Match(stmt types.CodeStatement, _ *Compiler) bool {
	if !stmt.HasFragment(types.FragmentTimer) {
		return false
	}
	return stmt.HasFragment(types.FragmentRounds) || hasAction(stmt, "AMRAP")
}

func (TimeBoundRoundsStrategy) Compile(stmt types.CodeStatement, c *Compiler, cc *CompilationContext) *block.Block {
	_, durationMs, _ := timerSpec(stmt)
	label := displayLabel(stmt)
	if label == "" {
		label = "AMRAP"
	}

	children := c.compileChildren(stmt, cc, repScheme(stmt))
	restFn := c.restChecker(stmt)

	b := block.NewBuilder(c.Store(), "TimeBoundRounds", []int{stmt.ID}, label)
	b.AddBehavior(behavior.NewTimerInit(types.DirectionDown, durationMs, label, types.RolePrimary))
	b.AddBehavior(behavior.NewTimerTick(types.ScopeGlobal))
	b.AddBehavior(behavior.NewTimerPause(types.ScopeGlobal))
	if durationMs != nil {
		b.AddBehavior(behavior.NewTimerCompletion(types.ScopeGlobal))
	}
	b.AddBehavior(behavior.NewRoundInit(1, types.UnboundedRounds))
	b.AddBehavior(behavior.NewRoundAdvance())
	b.AddBehavior(behavior.NewRoundDisplay())
	b.AddBehavior(behavior.NewChildLoop())
	if restFn != nil {
		b.AddBehavior(behavior.NewRestBlockGuard(restFn))
	}
	b.AddBehavior(behavior.NewChildRunner(children))
	b.AddBehavior(behavior.NewTimerOutput())
	addForcedPop(b, cc)
	b.AddBehavior(behavior.NewControlsInit(pauseResumeButtons()))
	b.AddBehavior(behavior.NewSegmentOutput())

	return c.build(b, stmt, cc)
}
