// Package output implements the append-only OutputStatement sink
// described in spec.md §3, §4.7. There is exactly one Stream per
// runtime; the runtime's turn loop is its only caller, matching the spec's
// invariant that every OutputStatement passes through one sink.
package output

import (
	"log"
	"sync"

	"forge/types"
)

// Stream is the append-only, subscribable output sequence.
type Stream struct {
	mu          sync.Mutex
	entries     []types.OutputStatement
	nextID      int64
	subscribers []subscriber
	nextSubID   int64
}

type subscriber struct {
	id int64
	cb func(types.OutputStatement)
}

// NewStream creates an empty output stream. Ids begin at
// types.FirstOutputID and increment per emission.
func NewStream() *Stream {
	return &Stream{nextID: types.FirstOutputID}
}

// Add assigns the next id to out, appends it, and notifies every
// subscriber synchronously in registration order (spec.md §8 invariant
// 6: output ids strictly increase in emission order). Ordering within
// a turn is the order Add is called, by construction.
func (s *Stream) Add(out types.OutputStatement) types.OutputStatement {
	s.mu.Lock()
	out.ID = s.nextID
	s.nextID++
	s.entries = append(s.entries, out)
	subs := make([]subscriber, len(s.subscribers))
	copy(subs, s.subscribers)
	s.mu.Unlock()

	for _, sub := range subs {
		notify(sub.cb, out)
	}
	return out
}

// Subscribe registers cb for every future Add. There is no built-in
// filter (spec.md §4.7) — pass a predicate-wrapped cb if the caller
// wants to ignore, e.g., OutputSystem entries (SPEC_FULL.md Open
// Question 1).
func (s *Stream) Subscribe(cb func(types.OutputStatement)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subscribers = append(s.subscribers, subscriber{id: id, cb: cb})
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subscribers {
			if sub.id == id {
				s.subscribers = append(s.subscribers[:i], s.subscribers[i+1:]...)
				return
			}
		}
	}
}

// All returns a copy of every OutputStatement emitted so far, in
// emission order. Content is immutable after emission — this is a
// snapshot, not a live view.
func (s *Stream) All() []types.OutputStatement {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.OutputStatement, len(s.entries))
	copy(out, s.entries)
	return out
}

func notify(cb func(types.OutputStatement), out types.OutputStatement) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("output: subscriber panicked: %v", r)
		}
	}()
	cb(out)
}
