// Package block implements the RuntimeBlock and Behavior composition
// model of spec.md §3, §4.4. A Block is a stack-position node, not a
// tree node: parent/child relationships are expressed by stack order
// (spec.md §3 "parent/child relationship via stack position (not
// pointer)"), and a Behavior is a single trait-object-style interface
// rather than a class hierarchy (spec.md §9 Design Notes).
package block

import (
	"fmt"
	"log"

	"forge/event"
	"forge/memory"
	"forge/types"
)

// Behavior is the single interface every pluggable block unit
// implements. Variants are data (distinct Go types), not subclasses —
// replacing the deep/multiple-inheritance behavior classes the spec's
// source language used (spec.md §9).
//
// A Behavior that has nothing to do for a phase should embed Base and
// only override the methods it needs.
type Behavior interface {
	OnMount(ctx *Context) ([]types.Action, error)
	OnNext(ctx *Context) ([]types.Action, error)
	OnUnmount(ctx *Context) ([]types.Action, error)
	Name() string
}

// Base is a no-op Behavior implementation to embed in concrete
// behaviors that only care about one or two lifecycle phases.
type Base struct{ BehaviorName string }

func (b Base) Name() string                                        { return b.BehaviorName }
func (Base) OnMount(*Context) ([]types.Action, error)                { return nil, nil }
func (Base) OnNext(*Context) ([]types.Action, error)                 { return nil, nil }
func (Base) OnUnmount(*Context) ([]types.Action, error)              { return nil, nil }

// Context is handed to every behavior invocation. NowMs is the turn's
// single frozen clock snapshot (spec.md §4.1, §4.5) — it never changes
// within one ExecutionContext, including across a cascaded
// pop->unmount->next chain.
//
// The runtime builds a fresh *Context for each phase call (mount, next,
// unmount). An event.Bus handler registered in OnMount is a closure that
// keeps the mount-time Context it captured, so its NowMs is the mount
// turn's value; that is why handlers that need "when did this specific
// event fire" read the event's own Timestamp rather than any captured
// NowMs.
type Context struct {
	NowMs      int64
	StackLevel int
	Block      *Block
	Store      *memory.Store
	Bus        *event.Bus
}

// Memory returns a handle scoped to this block's owner key, so
// behaviors never have to pass their own key to every memory call.
func (c *Context) Memory() Handle {
	return Handle{store: c.Store, owner: c.Block.Key}
}

// EmitOutput builds an EmitOutput action with attribution stamped from
// this context: sourceBlockKey, stackLevel, and a per-fragment
// timestamp, per spec.md §4.7 "BehaviorContext.emitOutput". If
// fragments is empty it auto-populates from the block's
// fragment:display memory, and it always copies spans from the block's
// timer memory when present — the two auto-population rules §4.7 calls
// out explicitly.
func (c *Context) EmitOutput(outputType types.OutputType, fragments []types.Fragment, statementID *int) types.Action {
	h := c.Memory()

	if len(fragments) == 0 {
		if disp, ok := h.GetFragmentDisplay(); ok {
			fragments = disp
		}
	}

	stamped := make([]types.Fragment, len(fragments))
	for i, f := range fragments {
		stamped[i] = f.WithAttribution(c.Block.Key, c.NowMs)
	}

	var spans []types.TimeSpan
	var span types.TimeSpan
	if timer, ok := h.GetTimer(); ok {
		spans = timer.Spans
		if len(spans) > 0 {
			span = types.TimeSpan{Started: spans[0].Started, Ended: spans[len(spans)-1].Ended}
		}
	} else {
		now := c.NowMs
		span = types.TimeSpan{Started: now, Ended: &now}
	}

	out := types.OutputStatement{
		OutputType:        outputType,
		TimeSpan:          span,
		Spans:             spans,
		SourceBlockKey:    c.Block.Key,
		SourceStatementID: statementID,
		StackLevel:        c.StackLevel,
		Fragments:         stamped,
	}
	return types.NewEmitOutputAction(out)
}

// Block is a single executable unit on the runtime stack (spec.md §3).
type Block struct {
	Key        types.BlockKey
	BlockType  string
	SourceIDs  []int
	Label      string
	Behaviors  []Behavior
	Store      *memory.Store

	disposed bool
}

// MarkComplete sets the block's completion memory to {true, reason},
// unless it is already complete — "first reason wins" (spec.md §8
// round-trip property). It is safe to call more than once.
func (b *Block) MarkComplete(reason types.CompletionReason) {
	cur, ok := b.Completion()
	if ok && cur.IsComplete {
		return
	}
	b.Store.SetByOwnerTag(b.Key, types.TagCompletion, types.CompletionState{IsComplete: true, Reason: reason})
}

// Completion returns the block's current completion state, if any
// memory has been recorded for it yet.
func (b *Block) Completion() (types.CompletionState, bool) {
	refs := b.Store.Search(memory.Criteria{OwnerKey: &b.Key, Tag: tagPtr(types.TagCompletion)})
	if len(refs) == 0 {
		return types.CompletionState{}, false
	}
	v, ok := b.Store.Get(refs[0])
	if !ok {
		return types.CompletionState{}, false
	}
	cs, ok := v.(types.CompletionState)
	return cs, ok
}

// IsComplete is a convenience for Completion().IsComplete.
func (b *Block) IsComplete() bool {
	cs, ok := b.Completion()
	return ok && cs.IsComplete
}

// Mount runs OnMount for every behavior in declaration order,
// continuing past a failing behavior (spec.md §4.5 Failure semantics).
// A block that was previously disposed (e.g. a loop child reused across
// rounds) is mountable again — Mount clears the disposed flag so the
// next Dispose call actually runs.
func (b *Block) Mount(ctx *Context) ([]types.Action, []types.RuntimeError) {
	b.disposed = false
	return b.runPhase(ctx, "mount", func(beh Behavior, c *Context) ([]types.Action, error) { return beh.OnMount(c) })
}

// Next runs OnNext for every behavior in declaration order.
func (b *Block) Next(ctx *Context) ([]types.Action, []types.RuntimeError) {
	return b.runPhase(ctx, "next", func(beh Behavior, c *Context) ([]types.Action, error) { return beh.OnNext(c) })
}

// Unmount runs OnUnmount for every behavior in declaration order.
func (b *Block) Unmount(ctx *Context) ([]types.Action, []types.RuntimeError) {
	return b.runPhase(ctx, "unmount", func(beh Behavior, c *Context) ([]types.Action, error) { return beh.OnUnmount(c) })
}

func (b *Block) runPhase(ctx *Context, phase string, call func(Behavior, *Context) ([]types.Action, error)) (actions []types.Action, errs []types.RuntimeError) {
	for _, beh := range b.Behaviors {
		phaseActions, err := b.invokeSafely(beh, ctx, call)
		if err != nil {
			log.Printf("block: behavior %s.%s on %s failed: %v", beh.Name(), phase, b.Key, err)
			key := b.Key
			errs = append(errs, types.RuntimeError{
				Kind:     types.ErrorBehavior,
				Message:  fmt.Sprintf("%s.%s: %v", beh.Name(), phase, err),
				BlockKey: &key,
			})
			continue
		}
		actions = append(actions, phaseActions...)
	}
	return actions, errs
}

// invokeSafely recovers a panicking behavior and turns it into an
// error, so one broken behavior never prevents the remaining behaviors
// in the same phase from running (spec.md §4.5).
func (b *Block) invokeSafely(beh Behavior, ctx *Context, call func(Behavior, *Context) ([]types.Action, error)) (actions []types.Action, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return call(beh, ctx)
}

// Dispose releases the block's memory, notifying subscribers and
// unregistering every handler it owns (handlers live as "handler"-
// tagged memory entries, so ReleaseByOwner clears them too). Idempotent
// within one mount cycle — a second call before the next Mount is a
// no-op. The behavior list itself is left intact: a compiled block may
// be mounted, disposed, and mounted again (e.g. a lap template reused
// across rounds), and behaviors are expected to tolerate that by
// resetting their own transient state in OnMount.
func (b *Block) Dispose() {
	if b.disposed {
		return
	}
	b.disposed = true
	func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("block: dispose of %s panicked: %v", b.Key, r)
			}
		}()
		b.Store.ReleaseByOwner(b.Key)
	}()
}

func tagPtr(t types.MemoryTag) *types.MemoryTag { return &t }
