package behavior

import (
	"forge/block"
	"forge/types"
)

// childIndexState is the value stored under types.TagChildIndex.
// Index holds the position of the child currently running (or, right
// after a lap wraps, the sentinel -1 meaning "about to push child 0 of
// a new lap").
type childIndexState struct {
	Index int
	Len   int
}

// ChildLoop detects a lap boundary — the child that just completed was
// the last one in the group — and, if so, resets the shared index to
// the "new lap" sentinel and dispatches rounds:advance so RoundAdvance
// / RoundCompletion / RoundDisplay / RoundOutput react to it before
// ChildRunner decides what to push next (ordering rule 1).
type ChildLoop struct{ block.Base }

func NewChildLoop() ChildLoop {
	return ChildLoop{Base: block.Base{BehaviorName: "ChildLoop"}}
}

func (c ChildLoop) OnNext(ctx *block.Context) ([]types.Action, error) {
	h := ctx.Memory()
	raw, ok := h.Get(types.TagChildIndex)
	if !ok {
		return nil, nil
	}
	state, ok := raw.(childIndexState)
	if !ok || state.Len == 0 || state.Index+1 < state.Len {
		return nil, nil
	}
	state.Index = -1
	h.Set(types.TagChildIndex, state)
	return ctx.Bus.Dispatch(types.Event{Name: types.EventRoundsAdvance, Timestamp: ctx.NowMs}), nil
}

// RestBlockGuard skips children the compiler flagged as rest positions,
// advancing past every consecutive rest index in one call so ChildRunner
// always lands on the next real (or the post-loop sentinel) index.
type RestBlockGuard struct {
	block.Base
	IsRest func(childIndex int) bool
}

func NewRestBlockGuard(isRest func(int) bool) RestBlockGuard {
	return RestBlockGuard{Base: block.Base{BehaviorName: "RestBlockGuard"}, IsRest: isRest}
}

func (g RestBlockGuard) OnNext(ctx *block.Context) ([]types.Action, error) {
	if g.IsRest == nil {
		return nil, nil
	}
	h := ctx.Memory()
	raw, ok := h.Get(types.TagChildIndex)
	if !ok {
		return nil, nil
	}
	state, ok := raw.(childIndexState)
	if !ok {
		return nil, nil
	}
	for state.Index+1 < state.Len && g.IsRest(state.Index+1) {
		state.Index++
	}
	h.Set(types.TagChildIndex, state)
	return nil, nil
}

// ChildRunner drives a block's compiled children in sequence: it pushes
// the first child on mount and, on every subsequent onNext (invoked
// after a child pops), pushes the next one. In a round container
// ChildLoop runs immediately before this behavior and, at the end of a
// lap, dispatches rounds:advance and resets the index so the next lap
// starts over. When the list is exhausted with no such reset, or when
// there are no children at all, this behavior marks the block complete
// with rounds-complete itself.
type ChildRunner struct {
	block.Base
	Children []*block.Block
}

func NewChildRunner(children []*block.Block) ChildRunner {
	return ChildRunner{Base: block.Base{BehaviorName: "ChildRunner"}, Children: children}
}

func (c ChildRunner) OnMount(ctx *block.Context) ([]types.Action, error) {
	ctx.Memory().Allocate(types.TagChildIndex, childIndexState{Index: 0, Len: len(c.Children)}, types.VisibilityPrivate)
	if len(c.Children) == 0 {
		ctx.Block.MarkComplete(types.ReasonRoundsComplete)
		return nil, nil
	}
	return []types.Action{types.NewPushAction(c.Children[0])}, nil
}

func (c ChildRunner) OnNext(ctx *block.Context) ([]types.Action, error) {
	if ctx.Block.IsComplete() {
		return nil, nil
	}
	h := ctx.Memory()
	raw, ok := h.Get(types.TagChildIndex)
	if !ok {
		return nil, nil
	}
	state, ok := raw.(childIndexState)
	if !ok || state.Len == 0 {
		return nil, nil
	}
	next := state.Index + 1
	if next >= state.Len {
		// RestBlockGuard/ChildLoop already tried to find a next slot and
		// couldn't — every remaining position (if any) was a rest, or we
		// are genuinely exhausted with no round container above to loop.
		ctx.Block.MarkComplete(types.ReasonRoundsComplete)
		return nil, nil
	}
	state.Index = next
	h.Set(types.TagChildIndex, state)
	return []types.Action{types.NewPushAction(c.Children[next])}, nil
}
