package runtime

import (
	"fmt"

	"forge/block"
	"forge/trace"
	"forge/types"
)

// DefaultMaxIterationsPerTurn is the iteration bound spec.md §4.5 names
// to catch runaway recursion within a single turn.
const DefaultMaxIterationsPerTurn = 20

type queueItem struct {
	isEvent bool
	event   types.Event
	action  types.Action
}

// turn is one ExecutionContext (spec.md §4.5): created per outer
// handle(event) call or action drain, it snapshots the clock once and
// drains a FIFO of events/actions to completion, then cascades any
// resulting pops. A turn is not reused across calls to Runtime.Handle —
// each gets its own, but shares the runtime's stack/bus/store/output.
type turn struct {
	rt     *Runtime
	nowMs  int64
	id     int64
	queue  []queueItem
	errs   []types.RuntimeError
	iters  int
}

func (t *turn) enqueueEvent(ev types.Event) {
	t.queue = append(t.queue, queueItem{isEvent: true, event: ev})
}

func (t *turn) enqueueAction(a types.Action) {
	t.queue = append(t.queue, queueItem{action: a})
}

func (t *turn) recordErrors(errs []types.RuntimeError) {
	for i := range errs {
		errs[i].TurnID = t.id
		if t.rt.metrics != nil {
			t.rt.metrics.RecordError(string(errs[i].Kind))
		}
		if trace.IsEnabled() {
			key := types.BlockKey{}
			if errs[i].BlockKey != nil {
				key = *errs[i].BlockKey
			}
			trace.BehaviorError(key, "", string(errs[i].Kind), fmt.Errorf("%s", errs[i].Message))
		}
	}
	t.errs = append(t.errs, errs...)
}

func (t *turn) recordError(kind types.ErrorKind, message string) {
	t.errs = append(t.errs, types.RuntimeError{Kind: kind, Message: message, TurnID: t.id})
}

// contextFor builds the *block.Context for invoking b's lifecycle
// methods within this turn: NowMs is the turn's single frozen snapshot
// (spec.md §4.1), shared across every block reached during the turn,
// including a cascaded pop->unmount->next chain.
func (t *turn) contextFor(b *block.Block) *block.Context {
	return &block.Context{
		NowMs:      t.nowMs,
		StackLevel: t.rt.stack.Depth(),
		Block:      b,
		Store:      t.rt.store,
		Bus:        t.rt.bus,
	}
}

// run drains the initial item, then cascades pops until the stack
// settles — the whole of one ExecutionContext's lifetime (spec.md §4.5).
func (t *turn) run(initial queueItem) {
	t.queue = append(t.queue, initial)
	t.drain()
	t.cascadePops()
	trace.Turn(t.id, initial.event.Name, t.iters)
	if t.rt.metrics != nil {
		t.rt.metrics.RecordTurn(t.iters)
		t.rt.metrics.SetStackDepth(t.rt.stack.Depth())
	}
}

func (t *turn) drain() {
	for len(t.queue) > 0 {
		if t.iters >= t.rt.maxIterationsPerTurn {
			t.recordError(types.ErrorMaxIterations,
				fmt.Sprintf("turn exceeded %d iterations", t.rt.maxIterationsPerTurn))
			t.queue = nil
			return
		}
		item := t.queue[0]
		t.queue = t.queue[1:]
		if item.isEvent {
			actions := t.rt.bus.Dispatch(item.event)
			for _, a := range actions {
				t.enqueueAction(a)
			}
			// "next" (user advance) has no registered bus handler of its
			// own — spec.md §4.5's "Dispatching event {name: 'next'}
			// causes onNext to run" is the ExecutionContext calling the
			// current top's next() lifecycle method directly, the same
			// way it does after a cascaded pop.
			if item.event.Name == types.EventNext {
				t.runNextOnCurrent()
			}
			continue
		}
		t.doAction(item.action)
		t.iters++
	}
}

// cascadePops implements spec.md §4.5's after-drain step: while the
// current top is complete, emit the system pop output, unmount and
// dispose it, then run the new top's onNext and drain whatever actions
// that produces — repeating in case the newly-advanced top is itself
// already complete (e.g. an empty container).
func (t *turn) cascadePops() {
	for {
		cur := t.rt.stack.Current()
		if cur == nil {
			return
		}
		cs, ok := cur.Completion()
		if !ok || !cs.IsComplete {
			return
		}

		t.emitSystemOutput("pop", cur, &cs.Reason)
		trace.Pop(cur.Key, cur.BlockType, cs.Reason)
		popped := t.rt.stack.Pop()
		actions, errs := popped.Unmount(t.contextFor(popped))
		t.recordErrors(errs)
		for _, a := range actions {
			t.enqueueAction(a)
		}
		popped.Dispose()

		if t.rt.stack.Current() == nil {
			t.drain()
			return
		}
		t.runNextOnCurrent()
		t.drain()
	}
}

// runNextOnCurrent invokes next() on the current top of stack and
// emits its system output — the single call site shared by a
// user-dispatched "next" event and a post-pop cascade advancing the
// new top (spec.md §4.5).
func (t *turn) runNextOnCurrent() {
	cur := t.rt.stack.Current()
	if cur == nil {
		return
	}
	actions, errs := cur.Next(t.contextFor(cur))
	t.recordErrors(errs)
	t.emitSystemOutput("next", cur, nil)
	trace.Next(cur.Key, cur.BlockType, len(actions))
	for _, a := range actions {
		t.enqueueAction(a)
	}
}

// doAction performs one Action's side effect against the runtime, per
// the types.ActionKind contract (spec.md §3). Unknown/malformed
// payloads are silently ignored rather than erroring the turn — a
// strategy-authored action mismatched to its own Kind is a programming
// error in this codebase, not a runtime-user-facing one.
func (t *turn) doAction(a types.Action) {
	if t.rt.metrics != nil {
		t.rt.metrics.RecordAction(string(a.Kind))
	}
	switch a.Kind {
	case types.ActionPush:
		b, ok := a.Block.(*block.Block)
		if !ok || b == nil {
			return
		}
		if err := t.rt.stack.Push(b); err != nil {
			t.recordError(types.ErrorInvariant, err.Error())
			return
		}
		t.emitSystemOutput("push", b, nil)
		trace.Push(b.Key, b.BlockType, t.rt.stack.Depth())
		actions, errs := b.Mount(t.contextFor(b))
		t.recordErrors(errs)
		for _, na := range actions {
			t.enqueueAction(na)
		}

	case types.ActionEmitOutput:
		t.rt.output.Add(a.Output)
		if t.rt.metrics != nil {
			t.rt.metrics.RecordOutput(string(a.Output.OutputType))
		}

	case types.ActionDispatch:
		// Appends to the current turn, not a new one, preserving the
		// frozen clock (spec.md §4.5).
		t.enqueueEvent(a.Event)

	case types.ActionSetMemory:
		t.rt.store.SetByOwnerTag(a.OwnerKey, a.Tag, a.Value)

	case types.ActionMarkComplete:
		if b := t.rt.stack.Find(a.BlockKey); b != nil {
			b.MarkComplete(a.Reason)
		}

	case types.ActionPop:
		// NewPopAction carries no BlockKey (spec.md §3): it always
		// targets the current top of stack, the block whose onNext
		// produced this action in the first place.
		if b := t.rt.stack.Current(); b != nil {
			b.MarkComplete(a.Reason)
		}

	case types.ActionCustom:
		if fn, ok := a.Do.(func(*Runtime) []types.Action); ok {
			for _, na := range fn(t.rt) {
				t.enqueueAction(na)
			}
		}
	}
}

// emitSystemOutput builds the zero-duration system OutputStatement
// spec.md §4.5 requires for push/pop/next transitions: these bypass
// behavior composition entirely (emitted directly by the runtime) and
// carry no attribution beyond the affected block's key.
func (t *turn) emitSystemOutput(transition string, b *block.Block, reason *types.CompletionReason) {
	now := t.nowMs
	out := types.OutputStatement{
		OutputType:     types.OutputSystem,
		TimeSpan:       types.TimeSpan{Started: now, Ended: &now},
		SourceBlockKey: b.Key,
		StackLevel:     t.rt.stack.Depth(),
		Fragments: []types.Fragment{{
			Kind:          types.FragmentSystem,
			SystemKind:    transition,
			Label:         b.BlockType,
			Origin:        types.OriginRuntime,
			SourceBlockKey: &b.Key,
			Timestamp:     now,
		}},
		CompletionReason: reason,
	}
	t.rt.output.Add(out)
	if t.rt.metrics != nil {
		t.rt.metrics.RecordOutput(string(types.OutputSystem))
	}
}
