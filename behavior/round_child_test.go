package behavior

import (
	"testing"

	"forge/block"
	"forge/event"
	"forge/memory"
	"forge/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newEffort builds a minimal PopOnNext-driven leaf block, standing in
// for a compiled effort statement ("10 Pushups").
func newEffort(store *memory.Store, label string) *block.Block {
	b := block.NewBuilder(store, "Effort", nil, label)
	b.AddBehavior(NewDisplayInit("effort", label))
	b.AddBehavior(NewPopOnNext())
	return b.Build()
}

// TestThreeRoundsOfTwoEffortsReachesBoundedCompletion drives the
// "3 Rounds: 10 Pushups / 20 Squats" scenario by hand: mount the
// container, then repeatedly simulate "the current child completed" —
// unmount it, dispatch a next to the container, and push whatever
// ChildRunner returns — until the container itself completes.
func TestThreeRoundsOfTwoEffortsReachesBoundedCompletion(t *testing.T) {
	store := memory.NewStore()
	bus := event.NewBus(store, nil)

	children := []*block.Block{
		newEffort(store, "Pushups"),
		newEffort(store, "Squats"),
	}

	cb := block.NewBuilder(store, "Rounds", nil, "3 Rounds")
	cb.AddBehavior(NewRoundInit(1, 3))
	cb.AddBehavior(NewRoundAdvance())
	cb.AddBehavior(NewRoundCompletion())
	cb.AddBehavior(NewRoundDisplay())
	cb.AddBehavior(NewChildLoop())
	cb.AddBehavior(NewChildRunner(children))
	cb.AddBehavior(NewRoundOutput())
	container := cb.Build()

	active := &stackTop{key: container.Key}
	bus.SetActiveChecker(active)

	actions, errs := container.Mount(&block.Context{NowMs: 0, Block: container, Store: store, Bus: bus})
	require.Empty(t, errs)
	require.Len(t, actions, 2) // RoundOutput milestone + ChildRunner push(Pushups)

	completedChildren := 0
	for i := 0; i < 100 && !container.IsComplete(); i++ {
		// find the pending push action, "run" that child to completion.
		var pushed *block.Block
		for _, a := range actions {
			if a.Kind == types.ActionPush {
				pushed = a.Block.(*block.Block)
			}
		}
		require.NotNil(t, pushed, "iteration %d: expected a push action", i)

		childCtx := &block.Context{NowMs: int64(i * 1000), Block: pushed, Store: store, Bus: bus}
		_, errs := pushed.Mount(childCtx)
		require.Empty(t, errs)
		_, errs = pushed.Next(childCtx) // PopOnNext marks it complete
		require.Empty(t, errs)
		_, errs = pushed.Unmount(childCtx)
		require.Empty(t, errs)
		pushed.Dispose()
		completedChildren++

		actions, errs = container.Next(&block.Context{NowMs: int64(i * 1000), Block: container, Store: store, Bus: bus})
		require.Empty(t, errs)
	}

	require.True(t, container.IsComplete())
	cs, ok := container.Completion()
	require.True(t, ok)
	assert.Equal(t, types.ReasonRoundsComplete, cs.Reason)
	assert.Equal(t, 6, completedChildren)

	refs := store.Search(memory.Criteria{OwnerKey: &container.Key, Tag: tagPtr(types.TagRound)})
	require.Len(t, refs, 1)
	v, _ := store.Get(refs[0])
	roundState := v.(types.RoundState)
	assert.Equal(t, 4, roundState.Current)
}

type stackTop struct{ key types.BlockKey }

func (s *stackTop) IsActive(k types.BlockKey) bool { return s.key.Equal(k) }

func tagPtr(t types.MemoryTag) *types.MemoryTag { return &t }
