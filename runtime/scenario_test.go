package runtime

import (
	"testing"

	"forge/clock"
	"forge/memory"
	"forge/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSingleEffortUserAdvance exercises spec.md §8 scenario 4: a single
// Effort block driven to completion by dispatching a "next" event,
// popped and disposed by the time the handle() call returns.
func TestSingleEffortUserAdvance(t *testing.T) {
	statements := []types.CodeStatement{
		{ID: 1, Fragments: []types.Fragment{{Kind: types.FragmentEffort, Label: "Burpees"}}},
	}
	rt := New(statements, 1, clock.NewMock(0))

	startErrs := rt.Start()
	require.Empty(t, startErrs)
	require.Equal(t, 1, rt.Depth())

	errs := rt.Handle(types.Event{Name: types.EventNext})
	require.Empty(t, errs)
	assert.Equal(t, 0, rt.Depth())

	outs := rt.Outputs()
	require.NotEmpty(t, outs)

	var sawPush, sawPop, sawNext bool
	for _, o := range outs {
		if o.OutputType != types.OutputSystem {
			continue
		}
		for _, f := range o.Fragments {
			switch f.SystemKind {
			case "push":
				sawPush = true
			case "pop":
				sawPop = true
			case "next":
				sawNext = true
			}
		}
	}
	assert.True(t, sawPush, "expected a system push output")
	assert.True(t, sawPop, "expected a system pop output")
	assert.True(t, sawNext, "expected a system next output")
}

// TestTimerZeroDurationAutoCompletes covers a zero-duration countdown
// timer (spec.md §8): it completes on mount, without any external event,
// and the runtime should cascade the pop on Start itself.
func TestTimerZeroDurationAutoCompletes(t *testing.T) {
	statements := []types.CodeStatement{
		{ID: 1, Fragments: []types.Fragment{
			{Kind: types.FragmentTimer, Direction: types.DirectionDown},
			{Kind: types.FragmentDuration, DurationMs: 0},
		}},
	}
	rt := New(statements, 1, clock.NewMock(0))

	errs := rt.Start()
	require.Empty(t, errs)
	assert.Equal(t, 0, rt.Depth())
}

// TestThreeRoundsOfTwoEffortsViaNext drives spec.md §8's "3 rounds of 2
// efforts" scenario end to end through the public Runtime façade: six
// user "next" events should exhaust every child across every round and
// leave the stack empty with the container popped.
func TestThreeRoundsOfTwoEffortsViaNext(t *testing.T) {
	statements := []types.CodeStatement{
		{
			ID:        1,
			Fragments: []types.Fragment{{Kind: types.FragmentRounds, Count: 3, Bounded: true}},
			Children:  [][]int{{2, 3}},
		},
		{ID: 2, Fragments: []types.Fragment{{Kind: types.FragmentEffort, Label: "Pushups"}}},
		{ID: 3, Fragments: []types.Fragment{{Kind: types.FragmentEffort, Label: "Squats"}}},
	}
	rt := New(statements, 1, clock.NewMock(0))

	startErrs := rt.Start()
	require.Empty(t, startErrs)
	require.Equal(t, 2, rt.Depth(), "container + first child mounted")

	for i := 0; i < 6; i++ {
		errs := rt.Handle(types.Event{Name: types.EventNext})
		require.Emptyf(t, errs, "next #%d", i)
	}

	assert.Equal(t, 0, rt.Depth())
	assert.Empty(t, rt.Errors)
}

// TestCompilerErrorOnUnknownRootSurfacesFromStart ensures a bad root id
// is reported through Runtime.Start rather than panicking.
func TestCompilerErrorOnUnknownRootSurfacesFromStart(t *testing.T) {
	rt := New(nil, 999, clock.NewMock(0))
	errs := rt.Start()
	require.NotEmpty(t, errs)
	assert.Equal(t, 0, rt.Depth())
}

// TestIntervalStrategyEmomFiresOncePerInterval drives an EMOM (interval)
// container end to end through the public Runtime façade, ticking the
// clock forward explicitly: the interval boundary must force-pop the
// active child exactly once per period, never on every tick after the
// first period has elapsed.
func TestIntervalStrategyEmomFiresOncePerInterval(t *testing.T) {
	statements := []types.CodeStatement{
		{
			ID: 1,
			Fragments: []types.Fragment{
				{Kind: types.FragmentTimer, Direction: types.DirectionDown},
				{Kind: types.FragmentDuration, DurationMs: 1000},
				{Kind: types.FragmentAction, Label: "EMOM"},
			},
			Children: [][]int{{2, 3}},
		},
		{ID: 2, Fragments: []types.Fragment{{Kind: types.FragmentEffort, Label: "Burpees"}}},
		{ID: 3, Fragments: []types.Fragment{{Kind: types.FragmentEffort, Label: "Mountain Climbers"}}},
	}
	clk := clock.NewMock(0)
	rt := New(statements, 1, clk)

	require.Empty(t, rt.Start())
	require.Equal(t, 2, rt.Depth(), "container + first child mounted")
	require.Equal(t, "Burpees", rt.Current().Label)

	// Ticks before the interval boundary must not force a pop.
	for ms := int64(200); ms < 1000; ms += 200 {
		clk.Set(ms)
		require.Empty(t, rt.Handle(types.Event{Name: types.EventTick, Timestamp: ms}))
	}
	require.Equal(t, 2, rt.Depth())
	assert.Equal(t, "Burpees", rt.Current().Label, "first child still active before interval elapses")

	// Crossing the first interval boundary force-pops Burpees and
	// advances to the second child exactly once.
	clk.Set(1000)
	require.Empty(t, rt.Handle(types.Event{Name: types.EventTick, Timestamp: 1000}))
	require.Equal(t, 2, rt.Depth())
	assert.Equal(t, "Mountain Climbers", rt.Current().Label)

	// Subsequent ticks within the same (now second) interval must not
	// re-fire interval:elapsed — the bug this guards against was a
	// cumulative elapsed check that kept matching >= duration on every
	// later tick once the first interval had passed.
	for ms := int64(1200); ms < 2000; ms += 200 {
		clk.Set(ms)
		require.Empty(t, rt.Handle(types.Event{Name: types.EventTick, Timestamp: ms}))
	}
	assert.Equal(t, "Mountain Climbers", rt.Current().Label, "second child still active mid-interval")

	// Crossing the second boundary force-pops Mountain Climbers; with no
	// Rounds fragment bounding the container, ChildLoop/ChildRunner loop
	// back to the first child.
	clk.Set(2000)
	require.Empty(t, rt.Handle(types.Event{Name: types.EventTick, Timestamp: 2000}))
	assert.Equal(t, "Burpees", rt.Current().Label)
}

// sanity check that compiler.New + runtime.New share one store instance,
// otherwise fragment:display memory seeded by the compiler would be
// invisible to the runtime's own Store.
func TestCompilerAndRuntimeShareStore(t *testing.T) {
	statements := []types.CodeStatement{
		{ID: 1, Fragments: []types.Fragment{{Kind: types.FragmentEffort, Label: "Row"}}},
	}
	rt := New(statements, 1, clock.NewMock(0))
	require.Empty(t, rt.Start())

	cur := rt.Current()
	require.NotNil(t, cur)
	tag := types.TagFragmentDisplay
	key := cur.Key
	refs := rt.SearchMemory(memory.Criteria{OwnerKey: &key, Tag: &tag})
	assert.NotEmpty(t, refs)
}
