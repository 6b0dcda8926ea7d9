package event

import (
	"testing"

	"forge/memory"
	"forge/types"

	"github.com/stretchr/testify/assert"
)

type fakeActive struct{ key types.BlockKey }

func (f fakeActive) IsActive(k types.BlockKey) bool { return f.key.Equal(k) }

func TestDispatchOrderingMatchesRegistrationOrder(t *testing.T) {
	store := memory.NewStore()
	bus := NewBus(store, nil)
	owner := types.NewBlockKey()

	var order []string
	bus.Register("next", func(types.Event) []types.Action {
		order = append(order, "h1")
		return []types.Action{types.NewMarkCompleteAction(owner, types.ReasonUserAdvance)}
	}, owner, types.ScopeGlobal)
	bus.Register("next", func(types.Event) []types.Action {
		order = append(order, "h2")
		return nil
	}, owner, types.ScopeGlobal)

	actions := bus.Dispatch(types.Event{Name: "next"})

	assert.Equal(t, []string{"h1", "h2"}, order)
	assert.Len(t, actions, 1)
}

func TestActiveScopeOnlyFiresForStackTop(t *testing.T) {
	store := memory.NewStore()
	top := types.NewBlockKey()
	other := types.NewBlockKey()
	bus := NewBus(store, fakeActive{key: top})

	fired := false
	bus.Register("tick", func(types.Event) []types.Action {
		fired = true
		return nil
	}, other, types.ScopeActive)

	bus.Dispatch(types.Event{Name: "tick"})
	assert.False(t, fired, "inactive owner's active-scope handler must not fire")

	bus2 := NewBus(store, fakeActive{key: top})
	fired2 := false
	bus2.Register("tick2", func(types.Event) []types.Action {
		fired2 = true
		return nil
	}, top, types.ScopeActive)
	bus2.Dispatch(types.Event{Name: "tick2"})
	assert.True(t, fired2)
}

func TestGlobalScopeAlwaysFires(t *testing.T) {
	store := memory.NewStore()
	other := types.NewBlockKey()
	bus := NewBus(store, fakeActive{key: types.NewBlockKey()})

	fired := false
	bus.Register("stop", func(types.Event) []types.Action {
		fired = true
		return nil
	}, other, types.ScopeGlobal)

	bus.Dispatch(types.Event{Name: "stop"})
	assert.True(t, fired)
}

func TestUnregisterStopsFutureDelivery(t *testing.T) {
	store := memory.NewStore()
	owner := types.NewBlockKey()
	bus := NewBus(store, nil)

	calls := 0
	_, unregister := bus.Register("x", func(types.Event) []types.Action {
		calls++
		return nil
	}, owner, types.ScopeGlobal)

	bus.Dispatch(types.Event{Name: "x"})
	unregister()
	bus.Dispatch(types.Event{Name: "x"})

	assert.Equal(t, 1, calls)
}

func TestUnknownEventNamesPassThroughHarmlessly(t *testing.T) {
	store := memory.NewStore()
	bus := NewBus(store, nil)
	actions := bus.Dispatch(types.Event{Name: "some:unknown:event"})
	assert.Empty(t, actions)
}
