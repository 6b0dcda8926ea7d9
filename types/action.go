package types

// ActionKind tags the operation an Action performs (spec.md §3).
type ActionKind string

const (
	ActionPush        ActionKind = "push"
	ActionPop         ActionKind = "pop"
	ActionEmitOutput  ActionKind = "emit_output"
	ActionSetMemory   ActionKind = "set_memory"
	ActionDispatch    ActionKind = "dispatch"
	ActionMarkComplete ActionKind = "mark_complete"
	ActionCustom      ActionKind = "custom"
)

// Action is a deferred unit of work enqueued onto a turn's FIFO queue.
// Block and Do are carried as `any` rather than typed references to
// *block.Block / *runtime.Runtime: types is the lowest package in the
// dependency graph (block and runtime both import it), so a concrete
// reference here would create an import cycle. The runtime package is
// the only place that type-asserts these fields back to their concrete
// types — the same "store as interface{}, cast where it's safe to do
// so" trick the teacher uses for TaskContext.Task and ForkInfo.Body to
// avoid the vm/task import cycle.
type Action struct {
	Kind ActionKind

	// ActionPush
	Block any // *block.Block

	// ActionMarkComplete (BlockKey); ActionPop / ActionMarkComplete (Reason)
	BlockKey BlockKey
	Reason   CompletionReason

	// ActionEmitOutput
	Output OutputStatement

	// ActionSetMemory
	OwnerKey BlockKey
	Tag      MemoryTag
	Value    any

	// ActionDispatch
	Event Event

	// ActionCustom — asserted by the runtime package as
	// func(*runtime.Runtime) []Action
	Do any
}

// NewPushAction enqueues a block push.
func NewPushAction(block any) Action {
	return Action{Kind: ActionPush, Block: block}
}

// NewPopAction enqueues a pop of the current top with the given reason.
func NewPopAction(reason CompletionReason) Action {
	return Action{Kind: ActionPop, Reason: reason}
}

// NewEmitOutputAction enqueues an output emission.
func NewEmitOutputAction(out OutputStatement) Action {
	return Action{Kind: ActionEmitOutput, Output: out}
}

// NewSetMemoryAction enqueues a memory write.
func NewSetMemoryAction(owner BlockKey, tag MemoryTag, value any) Action {
	return Action{Kind: ActionSetMemory, OwnerKey: owner, Tag: tag, Value: value}
}

// NewDispatchAction enqueues a nested event dispatch.
func NewDispatchAction(ev Event) Action {
	return Action{Kind: ActionDispatch, Event: ev}
}

// NewMarkCompleteAction enqueues a completion mark for the named block.
func NewMarkCompleteAction(key BlockKey, reason CompletionReason) Action {
	return Action{Kind: ActionMarkComplete, BlockKey: key, Reason: reason}
}
