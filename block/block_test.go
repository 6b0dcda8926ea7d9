package block

import (
	"errors"
	"testing"

	"forge/memory"
	"forge/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingBehavior struct {
	Base
	record      *[]string
	failOnMount bool
	panicOnNext bool
}

func (r recordingBehavior) OnMount(ctx *Context) ([]types.Action, error) {
	*r.record = append(*r.record, r.BehaviorName+":mount")
	if r.failOnMount {
		return nil, errors.New("boom")
	}
	return nil, nil
}

func (r recordingBehavior) OnNext(ctx *Context) ([]types.Action, error) {
	if r.panicOnNext {
		panic("kaboom")
	}
	*r.record = append(*r.record, r.BehaviorName+":next")
	return []types.Action{types.NewEmitOutputAction(types.OutputStatement{})}, nil
}

func newBlock(store *memory.Store, behaviors ...Behavior) *Block {
	b := NewBuilder(store, "test", nil, "label")
	for _, beh := range behaviors {
		b.AddBehavior(beh)
	}
	return b.Build()
}

func TestMountRunsBehaviorsInOrderAndContinuesAfterError(t *testing.T) {
	store := memory.NewStore()
	var order []string
	a := recordingBehavior{Base: Base{"a"}, record: &order, failOnMount: true}
	b := recordingBehavior{Base: Base{"b"}, record: &order}
	blk := newBlock(store, a, b)

	_, errs := blk.Mount(&Context{Store: store, Block: blk})

	assert.Equal(t, []string{"a:mount", "b:mount"}, order)
	require.Len(t, errs, 1)
	assert.Equal(t, types.ErrorBehavior, errs[0].Kind)
}

func TestNextSurvivesAPanickingBehavior(t *testing.T) {
	store := memory.NewStore()
	var order []string
	a := recordingBehavior{Base: Base{"a"}, record: &order, panicOnNext: true}
	b := recordingBehavior{Base: Base{"b"}, record: &order}
	blk := newBlock(store, a, b)

	actions, errs := blk.Next(&Context{Store: store, Block: blk})

	assert.Equal(t, []string{"b:next"}, order)
	require.Len(t, errs, 1)
	require.Len(t, actions, 1)
	assert.Equal(t, types.ActionEmitOutput, actions[0].Kind)
}

func TestMarkCompleteFirstReasonWins(t *testing.T) {
	store := memory.NewStore()
	blk := newBlock(store, recordingBehavior{Base: Base{"a"}, record: &[]string{}})

	blk.MarkComplete(types.ReasonTimerExpired)
	blk.MarkComplete(types.ReasonUserAdvance)

	cs, ok := blk.Completion()
	require.True(t, ok)
	assert.True(t, cs.IsComplete)
	assert.Equal(t, types.ReasonTimerExpired, cs.Reason)
}

func TestDisposeReleasesMemoryAndIsIdempotent(t *testing.T) {
	store := memory.NewStore()
	blk := newBlock(store, recordingBehavior{Base: Base{"a"}, record: &[]string{}})

	blk.Store.Allocate(blk.Key, types.TagDisplay, types.DisplayState{Label: "x"}, types.VisibilityPrivate)

	notified := 0
	refs := store.Search(memory.Criteria{OwnerKey: &blk.Key})
	require.Len(t, refs, 1)
	store.Subscribe(refs[0], func(any) { notified++ })

	blk.Dispose()
	blk.Dispose()

	assert.Equal(t, 1, notified)
	assert.Empty(t, store.Search(memory.Criteria{OwnerKey: &blk.Key}))
}

func TestBuildPanicsWithNoBehaviors(t *testing.T) {
	assert.Panics(t, func() {
		NewBuilder(memory.NewStore(), "test", nil, "label").Build()
	})
}
