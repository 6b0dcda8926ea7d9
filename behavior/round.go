package behavior

import (
	"fmt"

	"forge/block"
	"forge/types"
)

// RoundInit allocates `round` memory with the starting round and total
// (types.UnboundedRounds for an open-ended container such as AMRAP).
type RoundInit struct {
	block.Base
	StartRound int
	Total      int
}

func NewRoundInit(startRound, total int) RoundInit {
	return RoundInit{Base: block.Base{BehaviorName: "RoundInit"}, StartRound: startRound, Total: total}
}

func (r RoundInit) OnMount(ctx *block.Context) ([]types.Action, error) {
	ctx.Memory().Allocate(types.TagRound, types.RoundState{Current: r.StartRound, Total: r.Total}, types.VisibilityPrivate)
	return nil, nil
}

// RoundAdvance increments round.current on every rounds:advance event —
// dispatched by ChildLoop at each lap boundary, never on every onNext
// (spec.md §4.3 lists rounds:advance as a standard event for exactly
// this purpose).
type RoundAdvance struct {
	block.Base
	unregister func()
}

func NewRoundAdvance() *RoundAdvance {
	return &RoundAdvance{Base: block.Base{BehaviorName: "RoundAdvance"}}
}

func (r *RoundAdvance) OnMount(ctx *block.Context) ([]types.Action, error) {
	_, unregister := ctx.Bus.Register(types.EventRoundsAdvance, func(types.Event) []types.Action {
		h := ctx.Memory()
		rs, ok := h.GetRound()
		if !ok {
			return nil
		}
		rs.Current++
		h.Set(types.TagRound, rs)
		return nil
	}, ctx.Block.Key, types.ScopeActive)
	r.unregister = unregister
	return nil, nil
}

func (r *RoundAdvance) OnUnmount(ctx *block.Context) ([]types.Action, error) {
	if r.unregister != nil {
		r.unregister()
	}
	return nil, nil
}

// RoundCompletion registers after RoundAdvance (declaration order), so
// it observes the post-increment round.current on the same
// rounds:advance dispatch, and marks the container complete once a
// bounded total is exceeded.
type RoundCompletion struct {
	block.Base
	unregister func()
}

func NewRoundCompletion() *RoundCompletion {
	return &RoundCompletion{Base: block.Base{BehaviorName: "RoundCompletion"}}
}

func (r *RoundCompletion) OnMount(ctx *block.Context) ([]types.Action, error) {
	_, unregister := ctx.Bus.Register(types.EventRoundsAdvance, func(types.Event) []types.Action {
		h := ctx.Memory()
		rs, ok := h.GetRound()
		if !ok || rs.Unbounded() {
			return nil
		}
		if rs.Current > rs.Total {
			ctx.Block.MarkComplete(types.ReasonRoundsComplete)
		}
		return nil
	}, ctx.Block.Key, types.ScopeActive)
	r.unregister = unregister
	return nil, nil
}

func (r *RoundCompletion) OnUnmount(ctx *block.Context) ([]types.Action, error) {
	if r.unregister != nil {
		r.unregister()
	}
	return nil, nil
}

// RoundDisplay writes the round indicator into `display` memory on
// mount and keeps it current by subscribing to round memory directly,
// rather than duplicating rounds:advance handling.
type RoundDisplay struct {
	block.Base
	unsubscribe func()
}

func NewRoundDisplay() *RoundDisplay {
	return &RoundDisplay{Base: block.Base{BehaviorName: "RoundDisplay"}}
}

func (r *RoundDisplay) OnMount(ctx *block.Context) ([]types.Action, error) {
	h := ctx.Memory()
	write := func(v any) {
		rs, ok := v.(types.RoundState)
		if !ok {
			return
		}
		h.Set(types.TagDisplay, types.DisplayState{Mode: "round", Label: roundLabel(rs)})
	}
	if rs, ok := h.GetRound(); ok {
		write(rs)
	}
	r.unsubscribe = h.Subscribe(types.TagRound, types.RoundState{}, write)
	return nil, nil
}

func (r *RoundDisplay) OnUnmount(ctx *block.Context) ([]types.Action, error) {
	if r.unsubscribe != nil {
		r.unsubscribe()
	}
	return nil, nil
}

func roundLabel(rs types.RoundState) string {
	if rs.Unbounded() {
		return fmt.Sprintf("Round %d", rs.Current)
	}
	return fmt.Sprintf("Round %d/%d", rs.Current, rs.Total)
}

// RoundOutput emits a milestone for the starting round on mount, and
// another whenever onNext observes round.current has moved since the
// last phase — which, by ordering rule 4, runs after ChildLoop has
// already dispatched rounds:advance and RoundAdvance has already
// incremented it in this same call.
type RoundOutput struct {
	block.Base
	lastSeen int
	seen     bool
}

func NewRoundOutput() *RoundOutput {
	return &RoundOutput{Base: block.Base{BehaviorName: "RoundOutput"}}
}

func (r *RoundOutput) OnMount(ctx *block.Context) ([]types.Action, error) {
	rs, ok := ctx.Memory().GetRound()
	if !ok {
		return nil, nil
	}
	r.lastSeen = rs.Current
	r.seen = true
	return []types.Action{ctx.EmitOutput(types.OutputMilestone, nil, nil)}, nil
}

func (r *RoundOutput) OnNext(ctx *block.Context) ([]types.Action, error) {
	rs, ok := ctx.Memory().GetRound()
	if !ok || (r.seen && rs.Current == r.lastSeen) {
		return nil, nil
	}
	if !rs.Unbounded() && rs.Current > rs.Total {
		// Past the last round — this advance completed the container
		// rather than starting a new one; RoundCompletion already marked
		// it and no further round actually begins.
		return nil, nil
	}
	r.lastSeen = rs.Current
	r.seen = true
	return []types.Action{ctx.EmitOutput(types.OutputMilestone, nil, nil)}, nil
}

func (r *RoundOutput) OnUnmount(ctx *block.Context) ([]types.Action, error) {
	cs, ok := ctx.Block.Completion()
	if !ok || cs.Reason != types.ReasonRoundsComplete {
		return nil, nil
	}
	out := ctx.EmitOutput(types.OutputCompletion, nil, nil)
	out.Output.CompletionReason = &cs.Reason
	return []types.Action{out}, nil
}
