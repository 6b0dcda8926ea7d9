package runtime

import (
	"sync"

	"forge/block"
	"forge/clock"
	"forge/compiler"
	"forge/event"
	"forge/memory"
	"forge/metrics"
	"forge/output"
	"forge/types"
)

// Runtime is the façade spec.md §6.2 describes: it owns the shared
// memory store, event bus, stack, output stream, and compiler, and is
// the only thing an embedder talks to. All mutation happens inside a
// turn, on whatever goroutine calls Handle/Start/Stop; those calls take
// rt.mu, so turns from more than one source of external input (e.g. a
// TickDriver and a UI) run one at a time.
type Runtime struct {
	mu sync.Mutex

	store    *memory.Store
	bus      *event.Bus
	stack    *Stack
	output   *output.Stream
	compiler *compiler.Compiler
	clock    clock.Clock

	rootID               int
	maxIterationsPerTurn int
	nextTurnID           int64

	metrics *metrics.RuntimeMetrics

	Errors []types.RuntimeError
}

// SetMetrics attaches a RuntimeMetrics instance; every subsequent turn
// reports to it. Passing nil (the default) disables metrics entirely —
// every call site nil-checks before recording.
func (rt *Runtime) SetMetrics(m *metrics.RuntimeMetrics) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.metrics = m
}

// New constructs a Runtime over a parsed script, ready to compile and
// run the statement identified by rootID (spec.md §6.2
// "new Runtime(script, compiler)" — compilation is wired internally
// here since Go's compiler.New needs the same store the runtime owns).
func New(statements []types.CodeStatement, rootID int, clk clock.Clock) *Runtime {
	store := memory.NewStore()
	bus := event.NewBus(store, nil)
	stack := NewStack()
	bus.SetActiveChecker(stack)

	rt := &Runtime{
		store:                store,
		bus:                  bus,
		stack:                stack,
		output:               output.NewStream(),
		compiler:             compiler.New(store, statements),
		clock:                clk,
		rootID:               rootID,
		maxIterationsPerTurn: DefaultMaxIterationsPerTurn,
	}
	return rt
}

// SetMaxIterationsPerTurn overrides the per-turn iteration bound
// (config.Config.MaxIterationsPerTurn wires into this).
func (rt *Runtime) SetMaxIterationsPerTurn(n int) {
	if n > 0 {
		rt.maxIterationsPerTurn = n
	}
}

func (rt *Runtime) newTurn() *turn {
	rt.nextTurnID++
	return &turn{rt: rt, nowMs: rt.clock.NowMs(), id: rt.nextTurnID}
}

func (rt *Runtime) recordError(kind types.ErrorKind, message string) {
	rt.Errors = append(rt.Errors, types.RuntimeError{Kind: kind, Message: message})
}

// Start compiles the root statement and pushes+mounts it — the only
// point the runtime transitions from idle to running (spec.md §4.5
// "Initial push (StartWorkoutAction)").
func (rt *Runtime) Start() []types.RuntimeError {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	root := rt.compiler.Compile(rt.rootID, nil)
	rt.Errors = append(rt.Errors, rt.compiler.Errors...)
	if root == nil {
		rt.recordError(types.ErrorCompile, "root statement did not compile")
		return rt.Errors
	}

	t := rt.newTurn()
	t.run(queueItem{action: types.NewPushAction(root)})
	rt.Errors = append(rt.Errors, t.errs...)
	return rt.Errors
}

// Stop dispatches a stop event in a fresh turn, like Handle. A block
// completes on it only through a handler it registered for
// types.EventStop; no built-in compiler strategy registers one, so for
// compiled blocks the stack stays as it is and nothing is unmounted.
func (rt *Runtime) Stop() []types.RuntimeError {
	return rt.Handle(types.Event{Name: types.EventStop, Timestamp: rt.clock.NowMs()})
}

// Handle enqueues an event into a fresh turn (spec.md §6.2 "handle(event)").
func (rt *Runtime) Handle(ev types.Event) []types.RuntimeError {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	t := rt.newTurn()
	if ev.Timestamp == 0 {
		ev.Timestamp = t.nowMs
	}
	t.run(queueItem{isEvent: true, event: ev})
	rt.Errors = append(rt.Errors, t.errs...)
	return t.errs
}

// OnOutput subscribes cb to every future OutputStatement (spec.md §6.2
// "onOutput(cb) -> unsubscribe").
func (rt *Runtime) OnOutput(cb func(types.OutputStatement)) (unsubscribe func()) {
	return rt.output.Subscribe(cb)
}

// Outputs returns every OutputStatement emitted so far.
func (rt *Runtime) Outputs() []types.OutputStatement {
	return rt.output.All()
}

// SearchMemory exposes the shared store's search for UI subscriptions
// (spec.md §6.2 "searchMemory(criteria) -> refs", §6.3).
func (rt *Runtime) SearchMemory(c memory.Criteria) []memory.Ref {
	return rt.store.Search(c)
}

// GetMemory resolves a ref returned by SearchMemory to its value.
func (rt *Runtime) GetMemory(ref memory.Ref) (any, bool) {
	return rt.store.Get(ref)
}

// SubscribeMemory watches a ref for value changes.
func (rt *Runtime) SubscribeMemory(ref memory.Ref, cb func(any)) (unsubscribe func()) {
	return rt.store.Subscribe(ref, cb)
}

// Current returns the block currently on top of the stack, or nil if
// the runtime has not started (or has fully unwound). Locked, like
// Start/Handle/Depth, since a TickDriver goroutine may be calling
// Handle concurrently (spec.md §5); the output and memory accessors do
// not take rt.mu.
func (rt *Runtime) Current() *block.Block {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.stack.Current()
}

// Depth reports the current stack depth.
func (rt *Runtime) Depth() int {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.stack.Depth()
}
