package behavior

import (
	"forge/block"
	"forge/types"
)

// HistoryRecord dispatches a history:record event carrying the block's
// final tracked fragments when it unmounts, so a global listener (e.g.
// a workout-log behavior on the root) can persist a summary without
// every leaf block knowing how history storage works.
type HistoryRecord struct{ block.Base }

func NewHistoryRecord() HistoryRecord {
	return HistoryRecord{Base: block.Base{BehaviorName: "HistoryRecord"}}
}

func (HistoryRecord) OnUnmount(ctx *block.Context) ([]types.Action, error) {
	tracked, _ := ctx.Memory().GetTracked()
	ev := types.Event{
		Name:      types.EventHistoryRecord,
		Timestamp: ctx.NowMs,
		Data: HistoryEntry{
			BlockKey:  ctx.Block.Key,
			BlockType: ctx.Block.BlockType,
			Label:     ctx.Block.Label,
			Fragments: dedupeByKind(tracked),
		},
	}
	return []types.Action{types.NewDispatchAction(ev)}, nil
}

// HistoryEntry is the payload carried on a history:record event.
type HistoryEntry struct {
	BlockKey  types.BlockKey
	BlockType string
	Label     string
	Fragments []types.Fragment
}
