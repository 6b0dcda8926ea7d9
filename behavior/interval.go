package behavior

import (
	"forge/block"
	"forge/types"
)

// IntervalAdvance owns an Interval container's per-round clock
// (EMOM-style: "every minute on the minute"). It shares TagTimer with
// TimerInit — the container's own timer memory is the interval clock —
// but unlike TimerCompletion it never marks the container itself
// complete: it restarts the clock and dispatches interval:elapsed so
// PopOnEvent on whichever child is currently active force-completes it
// (reason external), letting ChildLoop/ChildRunner pick up the next
// child on the container's next onNext, exactly as if the child had
// completed on its own. This is why the subscription must be
// ScopeGlobal: once a child is pushed the container is no longer top
// of stack, but its interval clock still has to tick.
type IntervalAdvance struct {
	block.Base
	unregister func()
}

func NewIntervalAdvance() *IntervalAdvance {
	return &IntervalAdvance{Base: block.Base{BehaviorName: "IntervalAdvance"}}
}

func (a *IntervalAdvance) OnMount(ctx *block.Context) ([]types.Action, error) {
	_, unregister := ctx.Bus.Register(types.EventTick, func(ev types.Event) []types.Action {
		h := ctx.Memory()
		ts, ok := h.GetTimer()
		if !ok || ts.DurationMs == nil || len(ts.Spans) == 0 {
			return nil
		}
		// Measure elapsed within the current interval only — the
		// trailing span, open since the last interval boundary (or since
		// mount) — rather than the cumulative total across every span,
		// so the boundary fires exactly once per interval instead of on
		// every tick once the first interval has elapsed.
		current := ts.Spans[len(ts.Spans)-1]
		if !current.IsOpen() || current.ElapsedAt(ev.Timestamp) < *ts.DurationMs {
			return nil
		}
		ts.Spans[len(ts.Spans)-1] = current.Close(ev.Timestamp)
		ts.Spans = append(ts.Spans, types.OpenSpan(ev.Timestamp))
		h.Set(types.TagTimer, ts)
		return ctx.Bus.Dispatch(types.Event{Name: types.EventIntervalElapsed, Timestamp: ev.Timestamp})
	}, ctx.Block.Key, types.ScopeGlobal)
	a.unregister = unregister
	return nil, nil
}

func (a *IntervalAdvance) OnUnmount(ctx *block.Context) ([]types.Action, error) {
	if a.unregister != nil {
		a.unregister()
	}
	closeOpenSpan(ctx)
	return nil, nil
}
