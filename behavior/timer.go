// Package behavior implements the built-in behaviors of spec.md §4.4:
// the pluggable units a compiled block composes to own timing,
// iteration, completion, and output emission. Each behavior is a
// distinct Go type implementing block.Behavior — data, not a subclass
// — matching block.Behavior's own doc comment.
package behavior

import (
	"forge/block"
	"forge/types"
)

// TimerInit allocates the block's `timer` memory and opens its first
// span on mount; on unmount it closes any still-open span so a timer
// that is disposed mid-run does not leave an unbounded elapsed value.
type TimerInit struct {
	block.Base
	Direction  types.TimerDirection
	DurationMs *int64
	Label      string
	Role       types.TimerRole
}

func NewTimerInit(direction types.TimerDirection, durationMs *int64, label string, role types.TimerRole) TimerInit {
	return TimerInit{Base: block.Base{BehaviorName: "TimerInit"}, Direction: direction, DurationMs: durationMs, Label: label, Role: role}
}

func (t TimerInit) OnMount(ctx *block.Context) ([]types.Action, error) {
	ctx.Memory().Allocate(types.TagTimer, types.TimerState{
		Direction:  t.Direction,
		DurationMs: t.DurationMs,
		Spans:      []types.TimeSpan{types.OpenSpan(ctx.NowMs)},
		Label:      t.Label,
		Role:       t.Role,
	}, types.VisibilityPrivate)
	return nil, nil
}

func (t TimerInit) OnUnmount(ctx *block.Context) ([]types.Action, error) {
	closeOpenSpan(ctx)
	return nil, nil
}

func closeOpenSpan(ctx *block.Context) {
	closeOpenSpanAt(ctx, ctx.NowMs)
}

// closeOpenSpanAt closes the timer's open span at atMs rather than
// ctx.NowMs — event-handler closures registered at mount time must use
// the dispatching event's own timestamp, since ctx itself is only
// fresh for the phase call that created it, not for later turns.
func closeOpenSpanAt(ctx *block.Context, atMs int64) {
	h := ctx.Memory()
	ts, ok := h.GetTimer()
	if !ok || len(ts.Spans) == 0 {
		return
	}
	last := len(ts.Spans) - 1
	ts.Spans[last] = ts.Spans[last].Close(atMs)
	h.Set(types.TagTimer, ts)
}

// TimerTick subscribes to "tick" while mounted so the timer's memory is
// re-read on every tick; it emits nothing itself, it only keeps the
// subscription alive for memory-observing UI subscribers further up.
// Scope is ScopeActive for a timer that is itself the current top of
// stack (a plain Timer block), or ScopeGlobal for a container's own
// clock that must keep ticking while a child runs on top of it
// (spec.md §4.3 scope semantics). TimeBoundRounds (AMRAP) is the
// container that uses it that way; an Interval (EMOM) block keeps its
// clock with IntervalAdvance instead.
type TimerTick struct {
	block.Base
	Scope      types.HandlerScope
	unregister func()
}

func NewTimerTick(scope types.HandlerScope) *TimerTick {
	return &TimerTick{Base: block.Base{BehaviorName: "TimerTick"}, Scope: scope}
}

func (t *TimerTick) OnMount(ctx *block.Context) ([]types.Action, error) {
	_, unregister := ctx.Bus.Register(types.EventTick, func(types.Event) []types.Action {
		h := ctx.Memory()
		if ts, ok := h.GetTimer(); ok {
			h.Set(types.TagTimer, ts)
		}
		return nil
	}, ctx.Block.Key, t.Scope)
	t.unregister = unregister
	return nil, nil
}

func (t *TimerTick) OnUnmount(ctx *block.Context) ([]types.Action, error) {
	if t.unregister != nil {
		t.unregister()
	}
	return nil, nil
}

// TimerPause subscribes to timer:pause/timer:resume while mounted,
// closing or opening a span accordingly. On unmount it ensures the
// final span is closed, same as TimerInit, so a paused-then-disposed
// timer never accumulates more elapsed time.
type TimerPause struct {
	block.Base
	Scope            types.HandlerScope
	unregisterPause  func()
	unregisterResume func()
}

func NewTimerPause(scope types.HandlerScope) *TimerPause {
	return &TimerPause{Base: block.Base{BehaviorName: "TimerPause"}, Scope: scope}
}

func (t *TimerPause) OnMount(ctx *block.Context) ([]types.Action, error) {
	_, unregPause := ctx.Bus.Register(types.EventTimerPause, func(ev types.Event) []types.Action {
		closeOpenSpanAt(ctx, ev.Timestamp)
		return nil
	}, ctx.Block.Key, t.Scope)

	_, unregResume := ctx.Bus.Register(types.EventTimerResume, func(ev types.Event) []types.Action {
		h := ctx.Memory()
		ts, ok := h.GetTimer()
		if !ok {
			return nil
		}
		ts.Spans = append(ts.Spans, types.OpenSpan(ev.Timestamp))
		h.Set(types.TagTimer, ts)
		return nil
	}, ctx.Block.Key, t.Scope)

	t.unregisterPause = unregPause
	t.unregisterResume = unregResume
	return nil, nil
}

func (t *TimerPause) OnUnmount(ctx *block.Context) ([]types.Action, error) {
	if t.unregisterPause != nil {
		t.unregisterPause()
	}
	if t.unregisterResume != nil {
		t.unregisterResume()
	}
	closeOpenSpan(ctx)
	return nil, nil
}

// TimerCompletion subscribes to "tick" and marks the block complete
// with reason timer-expired once elapsed >= duration. A timer with no
// DurationMs (count-up) never auto-completes via this path.
type TimerCompletion struct {
	block.Base
	Scope      types.HandlerScope
	unregister func()
}

func NewTimerCompletion(scope types.HandlerScope) *TimerCompletion {
	return &TimerCompletion{Base: block.Base{BehaviorName: "TimerCompletion"}, Scope: scope}
}

func (t *TimerCompletion) OnMount(ctx *block.Context) ([]types.Action, error) {
	check := func(atMs int64) []types.Action {
		h := ctx.Memory()
		ts, ok := h.GetTimer()
		if !ok || ts.DurationMs == nil {
			return nil
		}
		if ts.Elapsed(atMs) >= *ts.DurationMs {
			ctx.Block.MarkComplete(types.ReasonTimerExpired)
			return []types.Action{types.NewDispatchAction(types.Event{Name: types.EventTimerComplete, Timestamp: atMs, Data: ctx.Block.Key})}
		}
		return nil
	}

	_, unregister := ctx.Bus.Register(types.EventTick, func(ev types.Event) []types.Action {
		return check(ev.Timestamp)
	}, ctx.Block.Key, t.Scope)
	t.unregister = unregister

	// A zero-duration timer completes the instant it mounts (spec.md §8
	// boundary: "mount then unmount in the same turn").
	return check(ctx.NowMs), nil
}

func (t *TimerCompletion) OnUnmount(ctx *block.Context) ([]types.Action, error) {
	if t.unregister != nil {
		t.unregister()
	}
	return nil, nil
}

// TimerOutput writes a `duration` fragment into fragment:tracked on
// unmount, recording the final elapsed time exactly once (spec.md
// §4.4 "Elapsed computation (canonical)" — this is the one behavior
// allowed to compute it).
type TimerOutput struct{ block.Base }

func NewTimerOutput() TimerOutput {
	return TimerOutput{Base: block.Base{BehaviorName: "TimerOutput"}}
}

func (t TimerOutput) OnUnmount(ctx *block.Context) ([]types.Action, error) {
	h := ctx.Memory()
	ts, ok := h.GetTimer()
	if !ok {
		return nil, nil
	}
	elapsed := ts.Elapsed(ctx.NowMs)
	existing, _ := h.GetTracked()
	h.Set(types.TagFragmentTracked, append(existing, types.Fragment{
		Kind:       types.FragmentDuration,
		DurationMs: elapsed,
	}))
	return nil, nil
}
