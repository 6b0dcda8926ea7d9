package block

import (
	"forge/memory"
	"forge/types"
)

// Handle is a block-scoped convenience wrapper over memory.Store,
// sparing each behavior from repeating its own owner key and the
// tag-to-type assertions spec.md §3's tagged memory model implies.
type Handle struct {
	store *memory.Store
	owner types.BlockKey
}

func (h Handle) find(tag types.MemoryTag) (memory.Ref, bool) {
	refs := h.store.Search(memory.Criteria{OwnerKey: &h.owner, Tag: &tag})
	if len(refs) == 0 {
		return memory.Ref{}, false
	}
	return refs[0], true
}

// Get returns the owner's raw (tag) value without a type assertion,
// for behaviors that store their own private schema under a tag not
// otherwise modeled by Handle (e.g. childIndex).
func (h Handle) Get(tag types.MemoryTag) (any, bool) {
	ref, ok := h.find(tag)
	if !ok {
		return nil, false
	}
	return h.store.Get(ref)
}

// Allocate creates a new entry owned by this handle's block.
func (h Handle) Allocate(tag types.MemoryTag, value any, visibility types.Visibility) memory.Ref {
	return h.store.Allocate(h.owner, tag, value, visibility)
}

// Set replaces the owner's (tag) entry, allocating it if absent.
func (h Handle) Set(tag types.MemoryTag, value any) {
	h.store.SetByOwnerTag(h.owner, tag, value)
}

// GetTimer returns the owner's timer state, if any.
func (h Handle) GetTimer() (types.TimerState, bool) {
	ref, ok := h.find(types.TagTimer)
	if !ok {
		return types.TimerState{}, false
	}
	v, ok := h.store.Get(ref)
	if !ok {
		return types.TimerState{}, false
	}
	ts, ok := v.(types.TimerState)
	return ts, ok
}

// GetRound returns the owner's round state, if any.
func (h Handle) GetRound() (types.RoundState, bool) {
	ref, ok := h.find(types.TagRound)
	if !ok {
		return types.RoundState{}, false
	}
	v, ok := h.store.Get(ref)
	if !ok {
		return types.RoundState{}, false
	}
	rs, ok := v.(types.RoundState)
	return rs, ok
}

// GetDisplay returns the owner's display state, if any.
func (h Handle) GetDisplay() (types.DisplayState, bool) {
	ref, ok := h.find(types.TagDisplay)
	if !ok {
		return types.DisplayState{}, false
	}
	v, ok := h.store.Get(ref)
	if !ok {
		return types.DisplayState{}, false
	}
	ds, ok := v.(types.DisplayState)
	return ds, ok
}

// GetFragmentDisplay returns the owner's precompiled display fragments.
func (h Handle) GetFragmentDisplay() ([]types.Fragment, bool) {
	ref, ok := h.find(types.TagFragmentDisplay)
	if !ok {
		return nil, false
	}
	v, ok := h.store.Get(ref)
	if !ok {
		return nil, false
	}
	fs, ok := v.([]types.Fragment)
	return fs, ok
}

// GetTracked returns the owner's accumulated tracked fragments (the
// values output behaviors stash during the block's lifetime and read
// back from on unmount, e.g. TimerOutput's elapsed duration).
func (h Handle) GetTracked() ([]types.Fragment, bool) {
	ref, ok := h.find(types.TagFragmentTracked)
	if !ok {
		return nil, false
	}
	v, ok := h.store.Get(ref)
	if !ok {
		return nil, false
	}
	fs, ok := v.([]types.Fragment)
	return fs, ok
}

// GetControls returns the owner's control-button state, if any.
func (h Handle) GetControls() (types.ControlsState, bool) {
	ref, ok := h.find(types.TagControls)
	if !ok {
		return types.ControlsState{}, false
	}
	v, ok := h.store.Get(ref)
	if !ok {
		return types.ControlsState{}, false
	}
	cs, ok := v.(types.ControlsState)
	return cs, ok
}

// Subscribe watches the owner's (tag) entry, allocating it with an
// empty value first if it doesn't exist yet, so behaviors can subscribe
// before the value is ever written.
func (h Handle) Subscribe(tag types.MemoryTag, empty any, cb func(any)) (unsubscribe func()) {
	ref, ok := h.find(tag)
	if !ok {
		ref = h.store.Allocate(h.owner, tag, empty, types.VisibilityPrivate)
	}
	return h.store.Subscribe(ref, cb)
}
