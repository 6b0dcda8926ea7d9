// Package memory implements the block-owned, tagged, subscribable
// memory store described in spec.md §3 and §4.2. A single Store is
// shared by every block in a runtime; entries are partitioned by
// owner key but search spans the whole store, matching the spec's
// "search ordering: insertion order" and "no orphan memory after
// dispose" invariants.
package memory

import (
	"log"
	"sync"

	"forge/types"
)

// Ref is an opaque handle to a MemoryEntry, returned by Allocate and
// consumed by Get/Set/Subscribe/Search results. Entry ids are unique
// within the process for the Store's lifetime.
type Ref struct {
	id int64
}

type subscriber struct {
	id int64
	cb func(value any)
}

type entry struct {
	id          int64
	ownerKey    types.BlockKey
	tag         types.MemoryTag
	visibility  types.Visibility
	value       any
	subscribers []subscriber
	released    bool
}

// Store is the single shared memory arena for a runtime. Entries are
// arena-allocated records keyed by id (spec.md §9 "Design Notes"):
// behaviors hold Refs, not owning pointers, so dispose can deallocate
// without needing back-pointers from entries to their holders.
type Store struct {
	mu          sync.Mutex
	entries     map[int64]*entry
	order       []int64 // insertion order, for Search
	nextEntryID int64
	nextSubID   int64
}

// NewStore creates an empty memory store.
func NewStore() *Store {
	return &Store{entries: make(map[int64]*entry)}
}

// Allocate adds a new owner-scoped entry and returns its Ref. O(1).
func (s *Store) Allocate(ownerKey types.BlockKey, tag types.MemoryTag, value any, visibility types.Visibility) Ref {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextEntryID++
	id := s.nextEntryID
	e := &entry{id: id, ownerKey: ownerKey, tag: tag, visibility: visibility, value: value}
	s.entries[id] = e
	s.order = append(s.order, id)
	return Ref{id: id}
}

// Get returns the current value for ref. The second return is false if
// the entry has been released (disposed).
func (s *Store) Get(ref Ref) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[ref.id]
	if !ok || e.released {
		return nil, false
	}
	return e.value, true
}

// Set replaces the value at ref, then synchronously notifies every
// subscriber in registration order. Per spec.md §4.2, writes are NOT
// equality-filtered: subscribers are notified on every Set regardless
// of whether the value actually changed (SPEC_FULL.md Open Question 2).
// A subscriber callback that panics is caught and logged, and does not
// prevent later subscribers in the list from being notified.
func (s *Store) Set(ref Ref, value any) {
	s.mu.Lock()
	e, ok := s.entries[ref.id]
	if !ok || e.released {
		s.mu.Unlock()
		return
	}
	e.value = value
	subs := make([]subscriber, len(e.subscribers))
	copy(subs, e.subscribers)
	s.mu.Unlock()

	for _, sub := range subs {
		notify(sub.cb, value)
	}
}

// SetByOwnerTag finds the (owner, tag) entry and replaces its value,
// or allocates a fresh private entry if none exists yet. It is the
// convenience path ActionSetMemory uses, since that action carries an
// owner+tag rather than a Ref.
func (s *Store) SetByOwnerTag(ownerKey types.BlockKey, tag types.MemoryTag, value any) {
	refs := s.Search(Criteria{OwnerKey: &ownerKey, Tag: &tag})
	if len(refs) > 0 {
		s.Set(refs[0], value)
		return
	}
	s.Allocate(ownerKey, tag, value, types.VisibilityPrivate)
}

// Subscribe registers cb to be called on every future Set (and on the
// single empty-value notification at dispose). It returns an
// unsubscribe function that is safe to call more than once.
func (s *Store) Subscribe(ref Ref, cb func(value any)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[ref.id]
	if !ok {
		return func() {}
	}
	s.nextSubID++
	subID := s.nextSubID
	e.subscribers = append(e.subscribers, subscriber{id: subID, cb: cb})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		e, ok := s.entries[ref.id]
		if !ok {
			return
		}
		for i, sub := range e.subscribers {
			if sub.id == subID {
				e.subscribers = append(e.subscribers[:i], e.subscribers[i+1:]...)
				return
			}
		}
	}
}

// Criteria filters Search. Nil fields are wildcards.
type Criteria struct {
	OwnerKey   *types.BlockKey
	Tag        *types.MemoryTag
	Visibility *types.Visibility
}

func (c Criteria) matches(e *entry) bool {
	if c.OwnerKey != nil && !e.ownerKey.Equal(*c.OwnerKey) {
		return false
	}
	if c.Tag != nil && e.tag != *c.Tag {
		return false
	}
	if c.Visibility != nil && e.visibility != *c.Visibility {
		return false
	}
	return true
}

// Search returns refs matching criteria, in insertion order.
func (s *Store) Search(c Criteria) []Ref {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Ref
	for _, id := range s.order {
		e, ok := s.entries[id]
		if !ok || e.released {
			continue
		}
		if c.matches(e) {
			out = append(out, Ref{id: id})
		}
	}
	return out
}

// Tag returns the MemoryTag an entry was allocated with.
func (s *Store) Tag(ref Ref) (types.MemoryTag, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[ref.id]
	if !ok {
		return "", false
	}
	return e.tag, true
}

// emptyValueFor returns the empty/reset value notified to subscribers
// at dispose time, keyed to the entry's tag schema (spec.md §3).
func emptyValueFor(tag types.MemoryTag) any {
	switch tag {
	case types.TagTimer:
		return types.TimerState{}
	case types.TagRound:
		return types.RoundState{}
	case types.TagCompletion:
		return types.CompletionState{}
	case types.TagDisplay:
		return types.DisplayState{}
	case types.TagControls:
		return types.ControlsState{}
	case types.TagFragmentDisplay, types.TagFragmentTracked:
		return []types.Fragment(nil)
	default:
		return nil
	}
}

// ReleaseByOwner disposes every entry owned by ownerKey: each
// subscriber is notified exactly once with the tag's empty value, then
// cleared, then the entry itself is removed so later
// Search({OwnerKey: ownerKey}) calls return empty (spec.md §8 invariant 3).
// Idempotent — releasing an owner with no (or already-released)
// entries is a no-op.
func (s *Store) ReleaseByOwner(ownerKey types.BlockKey) {
	s.mu.Lock()
	var toNotify []struct {
		subs []subscriber
		val  any
	}
	for _, id := range s.order {
		e, ok := s.entries[id]
		if !ok || e.released || !e.ownerKey.Equal(ownerKey) {
			continue
		}
		e.released = true
		subs := make([]subscriber, len(e.subscribers))
		copy(subs, e.subscribers)
		e.subscribers = nil
		toNotify = append(toNotify, struct {
			subs []subscriber
			val  any
		}{subs, emptyValueFor(e.tag)})
		delete(s.entries, id)
	}
	s.mu.Unlock()

	for _, n := range toNotify {
		for _, sub := range n.subs {
			notify(sub.cb, n.val)
		}
	}
}

// ReleaseSingle disposes just one entry (not its owner's other
// entries): notifies its subscribers once with the empty value, clears
// them, and removes the entry. Used when a behavior needs to tear down
// one piece of memory (e.g. a handler registration) independent of the
// rest of the block's lifetime.
func (s *Store) ReleaseSingle(ref Ref) {
	s.mu.Lock()
	e, ok := s.entries[ref.id]
	if !ok || e.released {
		s.mu.Unlock()
		return
	}
	e.released = true
	subs := make([]subscriber, len(e.subscribers))
	copy(subs, e.subscribers)
	e.subscribers = nil
	val := emptyValueFor(e.tag)
	delete(s.entries, ref.id)
	s.mu.Unlock()

	for _, sub := range subs {
		notify(sub.cb, val)
	}
}

// notify invokes cb, catching and logging a panic so one broken
// subscriber cannot prevent the rest of the list from being notified
// (spec.md §4.2).
func notify(cb func(value any), value any) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("memory: subscriber panicked: %v", r)
		}
	}()
	cb(value)
}
