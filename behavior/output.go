package behavior

import (
	"forge/block"
	"forge/types"
)

// SegmentOutput emits the block's running `segment` output on mount —
// EmitOutput auto-populates fragments from fragment:display and spans
// from timer memory when present, so this behavior only decides when
// to emit, not what. On unmount it emits the block's terminal
// `completion` output, built from whatever fragments other behaviors
// accumulated into fragment:tracked (e.g. TimerOutput's duration),
// deduplicated by kind so a re-entrant unmount path never double-counts.
//
// A Rounds or Interval container also carries RoundOutput, which emits
// a completion output on unmount when the block ended with
// rounds-complete. fragment:tracked is written only by TimerOutput (on
// Timer and TimeBoundRounds blocks). So when RoundOutput is present and
// there is nothing tracked to report, SegmentOutput skips its own
// completion output rather than emitting a second, empty one; a round
// container that ended for any other reason then emits no completion
// output at all.
type SegmentOutput struct{ block.Base }

func NewSegmentOutput() SegmentOutput {
	return SegmentOutput{Base: block.Base{BehaviorName: "SegmentOutput"}}
}

func (SegmentOutput) OnMount(ctx *block.Context) ([]types.Action, error) {
	return []types.Action{ctx.EmitOutput(types.OutputSegment, nil, nil)}, nil
}

func (SegmentOutput) OnUnmount(ctx *block.Context) ([]types.Action, error) {
	tracked, _ := ctx.Memory().GetTracked()
	deduped := dedupeByKind(tracked)

	if len(deduped) == 0 && hasRoundOutput(ctx.Block) {
		return nil, nil
	}

	action := ctx.EmitOutput(types.OutputCompletion, deduped, nil)
	if cs, ok := ctx.Block.Completion(); ok {
		action.Output.CompletionReason = &cs.Reason
	}
	return []types.Action{action}, nil
}

// hasRoundOutput reports whether b also carries a RoundOutput behavior.
func hasRoundOutput(b *block.Block) bool {
	for _, beh := range b.Behaviors {
		if _, ok := beh.(*RoundOutput); ok {
			return true
		}
	}
	return false
}

// dedupeByKind keeps the last fragment seen for each FragmentKind,
// preserving first-seen order of the kinds themselves.
func dedupeByKind(fragments []types.Fragment) []types.Fragment {
	if len(fragments) == 0 {
		return nil
	}
	order := make([]types.FragmentKind, 0, len(fragments))
	last := make(map[types.FragmentKind]types.Fragment, len(fragments))
	for _, f := range fragments {
		if _, seen := last[f.Kind]; !seen {
			order = append(order, f.Kind)
		}
		last[f.Kind] = f
	}
	out := make([]types.Fragment, 0, len(order))
	for _, k := range order {
		out = append(out, last[k])
	}
	return out
}
