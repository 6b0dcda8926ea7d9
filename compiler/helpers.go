package compiler

import (
	"strings"

	"forge/behavior"
	"forge/block"
	"forge/types"
)

// displayLabel resolves a statement's human label: an Effort fragment
// wins, then a Text fragment (parsed free text doubles as a label when
// there's no explicit Effort, e.g. a bare rest line), else "".
func displayLabel(stmt types.CodeStatement) string {
	if f, ok := stmt.FirstFragment(types.FragmentEffort); ok {
		return f.Label
	}
	if f, ok := stmt.FirstFragment(types.FragmentText); ok {
		return f.Label
	}
	return ""
}

// hasAction reports whether stmt carries an Action fragment whose label
// matches name case-insensitively (e.g. "EMOM", "AMRAP").
func hasAction(stmt types.CodeStatement, name string) bool {
	for _, f := range stmt.FragmentsOf(types.FragmentAction) {
		if strings.EqualFold(f.Label, name) {
			return true
		}
	}
	return false
}

// repScheme collects every Rep fragment's count, in order — a single
// entry is the common "reps per round are all the same" case, multiple
// entries form a scheme like "21-15-9".
func repScheme(stmt types.CodeStatement) []int {
	var out []int
	for _, f := range stmt.FragmentsOf(types.FragmentRep) {
		out = append(out, f.Count)
	}
	return out
}

// timerSpec reads a statement's Timer fragment (direction) combined
// with its Duration fragment (bound), if any. ok is false if the
// statement carries no Timer fragment at all.
func timerSpec(stmt types.CodeStatement) (direction types.TimerDirection, durationMs *int64, ok bool) {
	tf, ok := stmt.FirstFragment(types.FragmentTimer)
	if !ok {
		return "", nil, false
	}
	direction = tf.Direction
	if direction == "" {
		direction = types.DirectionUp
	}
	if df, hasDuration := stmt.FirstFragment(types.FragmentDuration); hasDuration {
		d := df.DurationMs
		durationMs = &d
	} else if tf.DurationMs != 0 {
		// Timer(direction, durationMs?) (spec.md §3) carries its own
		// duration inline when there is no separate Duration fragment —
		// §8 scenario 1's single-fragment Timer(up, 10000) input relies
		// on this.
		d := tf.DurationMs
		durationMs = &d
	}
	return direction, durationMs, true
}

// roundsSpec reads a statement's Rounds fragment: total is
// types.UnboundedRounds when the fragment is present but unbounded.
func roundsSpec(stmt types.CodeStatement) (total int, ok bool) {
	rf, ok := stmt.FirstFragment(types.FragmentRounds)
	if !ok {
		return 0, false
	}
	if !rf.Bounded {
		return types.UnboundedRounds, true
	}
	return rf.Count, true
}

// pauseResumeButtons is the standard control pair for any block with a
// pausable timer.
func pauseResumeButtons() []types.ControlButton {
	return []types.ControlButton{
		{ID: "pause", Label: "Pause", Event: types.EventTimerPause},
		{ID: "resume", Label: "Resume", Event: types.EventTimerResume},
	}
}

// isRestChild reports whether a child statement marks a rest position
// (an explicit "rest" Action or bare "rest" text line), consumed by
// RestBlockGuard to skip it during normal child advancement.
func isRestChild(stmt types.CodeStatement) bool {
	if hasAction(stmt, "rest") {
		return true
	}
	if f, ok := stmt.FirstFragment(types.FragmentText); ok && strings.EqualFold(f.Label, "rest") {
		return true
	}
	return false
}

// hasTrackedMetric reports whether a statement carries a fragment worth
// recording to history once its block completes (a bare structural or
// label-only line produces nothing worth persisting).
func hasTrackedMetric(stmt types.CodeStatement) bool {
	return stmt.HasFragment(types.FragmentEffort) ||
		stmt.HasFragment(types.FragmentResistance) ||
		stmt.HasFragment(types.FragmentDistance) ||
		stmt.HasFragment(types.FragmentRep)
}

// addForcedPop appends a PopOnEvent bound to cc.ForcedPopEvent, if an
// enclosing IntervalStrategy container set one, to whatever strategy is
// building a block under cc — letting that container force the current
// top of stack to complete early when its per-round clock elapses,
// regardless of which strategy actually produced the active block.
func addForcedPop(b *block.Builder, cc *CompilationContext) {
	if cc.ForcedPopEvent == "" {
		return
	}
	b.AddBehavior(behavior.NewPopOnEvent(types.ScopeActive, cc.ForcedPopEvent))
}
