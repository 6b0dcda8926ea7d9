// Package event implements the scoped event->handler dispatch described
// in spec.md §4.3. Handlers are themselves stored as memory entries
// (tag "handler") so a block's dispose automatically unregisters
// everything it owns — there is no separate handler-lifecycle to track.
package event

import (
	"forge/memory"
	"forge/types"
)

// ActiveChecker reports whether a block key is the current top of
// stack, used to filter ScopeActive handlers. runtime.Stack satisfies
// this; the interface lives here (rather than a direct dependency on
// runtime.Stack) so event does not import runtime.
type ActiveChecker interface {
	IsActive(key types.BlockKey) bool
}

// HandlerFunc reacts to an Event and returns the Actions it wants
// enqueued. Handlers never call other handlers directly — see
// spec.md §4.3 "Dispatch is synchronous and reentrant-safe via the
// action queue".
type HandlerFunc func(ev types.Event) []types.Action

type registeredHandler struct {
	name    string
	fn      HandlerFunc
	owner   types.BlockKey
	scope   types.HandlerScope
	seq     int64
}

// Bus dispatches events to handlers registered (as memory entries) by
// any block. It holds a reference to the shared memory.Store rather
// than its own handler table, per spec.md §4.3 ("stored as a handler
// memory entry for lifecycle-coupled cleanup").
type Bus struct {
	store  *memory.Store
	active ActiveChecker
	seq    int64
}

// NewBus creates an event bus backed by store. active may be nil until
// the runtime's Stack exists yet (SetActiveChecker wires it in after).
func NewBus(store *memory.Store, active ActiveChecker) *Bus {
	return &Bus{store: store, active: active}
}

// SetActiveChecker wires in the stack-activity checker once the owning
// runtime's Stack has been constructed.
func (b *Bus) SetActiveChecker(active ActiveChecker) {
	b.active = active
}

// Register stores a handler as a "handler"-tagged memory entry owned
// by ownerKey and returns an unsubscribe function equivalent to
// unregistering it directly. The handlerRef itself (spec.md §3) is the
// memory.Ref backing this entry.
func (b *Bus) Register(eventName string, fn HandlerFunc, ownerKey types.BlockKey, scope types.HandlerScope) (ref memory.Ref, unregister func()) {
	b.seq++
	h := registeredHandler{name: eventName, fn: fn, owner: ownerKey, scope: scope, seq: b.seq}
	ref = b.store.Allocate(ownerKey, types.TagHandler, h, types.VisibilityPrivate)
	// Targeted release of just this handler, independent of the owner's
	// other memory — block.Dispose releases everything at once via
	// memory.Store.ReleaseByOwner, but a behavior may want to unsubscribe
	// mid-lifetime (e.g. TimerTick's onUnmount).
	unregister = func() {
		b.store.ReleaseSingle(ref)
	}
	return ref, unregister
}

// Dispatch collects every handler matching eventName — active handlers
// only when their owner is the current stack top, global handlers
// always — invokes each in registration order, and concatenates the
// actions they return, also in that order (spec.md §8 invariant 7).
func (b *Bus) Dispatch(ev types.Event) []types.Action {
	refs := b.store.Search(memory.Criteria{Tag: tagPtr(types.TagHandler)})

	type entry struct {
		seq int64
		h   registeredHandler
	}
	var matched []entry
	for _, ref := range refs {
		v, ok := b.store.Get(ref)
		if !ok {
			continue
		}
		h, ok := v.(registeredHandler)
		if !ok || h.fn == nil || h.name != ev.Name {
			continue
		}
		if h.scope == types.ScopeActive && (b.active == nil || !b.active.IsActive(h.owner)) {
			continue
		}
		matched = append(matched, entry{seq: h.seq, h: h})
	}

	// Search already returns insertion order; registeredHandler.seq
	// breaks ties deterministically if entries were ever re-ordered.
	for i := 1; i < len(matched); i++ {
		for j := i; j > 0 && matched[j].seq < matched[j-1].seq; j-- {
			matched[j], matched[j-1] = matched[j-1], matched[j]
		}
	}

	var actions []types.Action
	for _, m := range matched {
		actions = append(actions, m.h.fn(ev)...)
	}
	return actions
}

func tagPtr(t types.MemoryTag) *types.MemoryTag { return &t }
