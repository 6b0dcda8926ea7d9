package compiler

import (
	"testing"

	"forge/behavior"
	"forge/block"
	"forge/event"
	"forge/memory"
	"forge/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func behaviorNames(blk *block.Block) []string {
	names := make([]string, len(blk.Behaviors))
	for i, b := range blk.Behaviors {
		names[i] = b.Name()
	}
	return names
}

func findChildRunner(blk *block.Block) (behavior.ChildRunner, bool) {
	for _, b := range blk.Behaviors {
		if cr, ok := b.(behavior.ChildRunner); ok {
			return cr, true
		}
	}
	return behavior.ChildRunner{}, false
}

func fragmentDisplayOf(store *memory.Store, key types.BlockKey) []types.Fragment {
	tag := types.TagFragmentDisplay
	refs := store.Search(memory.Criteria{OwnerKey: &key, Tag: &tag})
	if len(refs) == 0 {
		return nil
	}
	v, _ := store.Get(refs[0])
	fs, _ := v.([]types.Fragment)
	return fs
}

func TestEffortStrategyIsFallback(t *testing.T) {
	store := memory.NewStore()
	stmt := types.CodeStatement{ID: 1, Fragments: []types.Fragment{{Kind: types.FragmentEffort, Label: "Burpees"}}}
	c := New(store, []types.CodeStatement{stmt})

	blk := c.Compile(1, nil)
	require.NotNil(t, blk)
	assert.Empty(t, c.Errors)
	assert.Equal(t, "Effort", blk.BlockType)
	assert.Equal(t, []string{"DisplayInit", "PopOnNext", "HistoryRecord", "SegmentOutput"}, behaviorNames(blk))
}

func TestTimerStrategyZeroDurationCompletesOnMount(t *testing.T) {
	store := memory.NewStore()
	bus := event.NewBus(store, nil)
	stmt := types.CodeStatement{ID: 1, Fragments: []types.Fragment{
		{Kind: types.FragmentTimer, Direction: types.DirectionDown},
		{Kind: types.FragmentDuration, DurationMs: 0},
	}}
	c := New(store, []types.CodeStatement{stmt})

	blk := c.Compile(1, nil)
	require.NotNil(t, blk)
	assert.Equal(t, "Timer", blk.BlockType)

	active := &constActive{key: blk.Key}
	bus.SetActiveChecker(active)
	actions, errs := blk.Mount(&block.Context{NowMs: 0, Block: blk, Store: store, Bus: bus})
	require.Empty(t, errs)
	assert.True(t, blk.IsComplete())
	assert.NotEmpty(t, actions)
}

func TestStrategyPrecedenceTimerRoundsIsTimeBound(t *testing.T) {
	store := memory.NewStore()
	stmt := types.CodeStatement{ID: 1, Fragments: []types.Fragment{
		{Kind: types.FragmentTimer, Direction: types.DirectionDown},
		{Kind: types.FragmentDuration, DurationMs: 20 * 60 * 1000},
		{Kind: types.FragmentRounds, Bounded: false},
	}}
	c := New(store, []types.CodeStatement{stmt})

	blk := c.Compile(1, nil)
	require.NotNil(t, blk)
	assert.Equal(t, "TimeBoundRounds", blk.BlockType)
}

func TestStrategyPrecedenceTimerEmomIsInterval(t *testing.T) {
	store := memory.NewStore()
	stmt := types.CodeStatement{
		ID: 1,
		Fragments: []types.Fragment{
			{Kind: types.FragmentTimer, Direction: types.DirectionDown},
			{Kind: types.FragmentDuration, DurationMs: 60_000},
			{Kind: types.FragmentAction, Label: "EMOM"},
		},
		Children: [][]int{{2}},
	}
	child := types.CodeStatement{ID: 2, Fragments: []types.Fragment{{Kind: types.FragmentEffort, Label: "Burpees"}}}
	c := New(store, []types.CodeStatement{stmt, child})

	blk := c.Compile(1, nil)
	require.NotNil(t, blk)
	assert.Equal(t, "Interval", blk.BlockType)
}

func TestGroupStrategyCompilesLeafChildrenAsEffort(t *testing.T) {
	store := memory.NewStore()
	stmt := types.CodeStatement{ID: 1, Children: [][]int{{2, 3}}}
	a := types.CodeStatement{ID: 2, Fragments: []types.Fragment{{Kind: types.FragmentEffort, Label: "Row"}}}
	b := types.CodeStatement{ID: 3, Fragments: []types.Fragment{{Kind: types.FragmentEffort, Label: "Bike"}}}
	c := New(store, []types.CodeStatement{stmt, a, b})

	blk := c.Compile(1, nil)
	require.NotNil(t, blk)
	assert.Equal(t, "Group", blk.BlockType)

	cr, ok := findChildRunner(blk)
	require.True(t, ok)
	require.Len(t, cr.Children, 2)
	assert.Equal(t, "Effort", cr.Children[0].BlockType)
	assert.Equal(t, "Effort", cr.Children[1].BlockType)
}

func TestRepSchemeInheritsPerGroup(t *testing.T) {
	store := memory.NewStore()
	root := types.CodeStatement{
		ID: 1,
		Fragments: []types.Fragment{
			{Kind: types.FragmentRep, Count: 21},
			{Kind: types.FragmentRep, Count: 15},
			{Kind: types.FragmentRep, Count: 9},
		},
		Children: [][]int{{2}, {3}, {4}},
	}
	leaf := func(id int) types.CodeStatement {
		return types.CodeStatement{ID: id, Fragments: []types.Fragment{{Kind: types.FragmentEffort, Label: "Thrusters"}}}
	}
	c := New(store, []types.CodeStatement{root, leaf(2), leaf(3), leaf(4)})

	blk := c.Compile(1, nil)
	require.NotNil(t, blk)

	cr, ok := findChildRunner(blk)
	require.True(t, ok)
	require.Len(t, cr.Children, 3)

	want := []int{21, 15, 9}
	for i, child := range cr.Children {
		fragments := fragmentDisplayOf(store, child.Key)
		var gotRep *types.Fragment
		for j := range fragments {
			if fragments[j].Kind == types.FragmentRep {
				gotRep = &fragments[j]
			}
		}
		require.NotNilf(t, gotRep, "child %d missing inherited rep fragment", i)
		assert.Equal(t, want[i], gotRep.Count)
	}
}

func TestRoundsStrategyEndToEndThreeRoundsOfTwoEfforts(t *testing.T) {
	store := memory.NewStore()
	bus := event.NewBus(store, nil)

	root := types.CodeStatement{
		ID:        1,
		Fragments: []types.Fragment{{Kind: types.FragmentRounds, Count: 3, Bounded: true}},
		Children:  [][]int{{2, 3}},
	}
	pushups := types.CodeStatement{ID: 2, Fragments: []types.Fragment{{Kind: types.FragmentEffort, Label: "Pushups"}}}
	squats := types.CodeStatement{ID: 3, Fragments: []types.Fragment{{Kind: types.FragmentEffort, Label: "Squats"}}}
	c := New(store, []types.CodeStatement{root, pushups, squats})

	container := c.Compile(1, nil)
	require.NotNil(t, container)
	require.Empty(t, c.Errors)
	assert.Equal(t, "Rounds", container.BlockType)

	active := &constActive{key: container.Key}
	bus.SetActiveChecker(active)

	actions, errs := container.Mount(&block.Context{NowMs: 0, Block: container, Store: store, Bus: bus})
	require.Empty(t, errs)
	require.NotEmpty(t, actions)

	completed := 0
	for i := 0; i < 100 && !container.IsComplete(); i++ {
		var pushed *block.Block
		for _, a := range actions {
			if a.Kind == types.ActionPush {
				pushed = a.Block.(*block.Block)
			}
		}
		require.NotNilf(t, pushed, "iteration %d: expected a push action", i)

		childCtx := &block.Context{NowMs: int64(i * 1000), Block: pushed, Store: store, Bus: bus}
		_, errs := pushed.Mount(childCtx)
		require.Empty(t, errs)
		_, errs = pushed.Next(childCtx)
		require.Empty(t, errs)
		_, errs = pushed.Unmount(childCtx)
		require.Empty(t, errs)
		pushed.Dispose()
		completed++

		actions, errs = container.Next(&block.Context{NowMs: int64(i * 1000), Block: container, Store: store, Bus: bus})
		require.Empty(t, errs)
	}

	require.True(t, container.IsComplete())
	cs, ok := container.Completion()
	require.True(t, ok)
	assert.Equal(t, types.ReasonRoundsComplete, cs.Reason)
	assert.Equal(t, 6, completed)
}

type constActive struct{ key types.BlockKey }

func (c *constActive) IsActive(k types.BlockKey) bool { return c.key.Equal(k) }
