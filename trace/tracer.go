// Package trace provides execution tracing for debugging a running
// workout: block lifecycle transitions and turn boundaries, filtered by
// block type the way the teacher's tracer filters verb calls by name.
package trace

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"forge/types"
)

// Tracer provides execution tracing for debugging.
type Tracer struct {
	enabled bool
	filters []string
	writer  io.Writer
	mu      sync.Mutex
}

// Global tracer instance
var globalTracer *Tracer

// Init initializes the global tracer.
func Init(enabled bool, filters []string, writer io.Writer) {
	if writer == nil {
		writer = os.Stderr
	}
	globalTracer = &Tracer{
		enabled: enabled,
		filters: filters,
		writer:  writer,
	}
}

// IsEnabled returns whether tracing is enabled.
func IsEnabled() bool {
	if globalTracer == nil {
		return false
	}
	return globalTracer.enabled
}

// matchesFilter checks if a block type matches any of the filter
// patterns (glob syntax, e.g. "Timer*").
func (t *Tracer) matchesFilter(blockType string) bool {
	if len(t.filters) == 0 {
		return true // No filters = trace everything
	}

	for _, pattern := range t.filters {
		if matched, _ := filepath.Match(pattern, blockType); matched {
			return true
		}
	}
	return false
}

// Push logs a block being pushed onto the stack and mounted.
func (t *Tracer) Push(key types.BlockKey, blockType string, stackLevel int) {
	if !t.enabled || !t.matchesFilter(blockType) {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.writer, "[TRACE] PUSH %s %s depth=%d\n", shortKey(key), blockType, stackLevel)
}

// Next logs a block's next() lifecycle call and the actions it produced.
func (t *Tracer) Next(key types.BlockKey, blockType string, actionCount int) {
	if !t.enabled || !t.matchesFilter(blockType) {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.writer, "[TRACE] NEXT %s %s actions=%d\n", shortKey(key), blockType, actionCount)
}

// Pop logs a block being popped and disposed, with its completion reason.
func (t *Tracer) Pop(key types.BlockKey, blockType string, reason types.CompletionReason) {
	if !t.enabled || !t.matchesFilter(blockType) {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.writer, "[TRACE] POP  %s %s reason=%s\n", shortKey(key), blockType, reason)
}

// BehaviorError logs a behavior exception caught during a lifecycle
// phase — the error that would otherwise only be visible in
// runtime.Errors.
func (t *Tracer) BehaviorError(key types.BlockKey, blockType, phase string, err error) {
	if !t.enabled || !t.matchesFilter(blockType) {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.writer, "[TRACE] ERROR %s %s phase=%s: %v\n", shortKey(key), blockType, phase, err)
}

// Turn logs a turn boundary: its id, the triggering event (if any), and
// how many iterations it consumed.
func (t *Tracer) Turn(turnID int64, eventName string, iterations int) {
	if !t.enabled {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if eventName == "" {
		fmt.Fprintf(t.writer, "[TRACE] TURN #%d iterations=%d\n", turnID, iterations)
		return
	}
	fmt.Fprintf(t.writer, "[TRACE] TURN #%d event=%s iterations=%d\n", turnID, eventName, iterations)
}

func shortKey(k types.BlockKey) string {
	s := k.String()
	if len(s) > 8 {
		return s[:8]
	}
	return s
}

// Global convenience functions, mirroring the methods above against
// globalTracer; every call is a no-op until Init has been called.

func Push(key types.BlockKey, blockType string, stackLevel int) {
	if globalTracer != nil {
		globalTracer.Push(key, blockType, stackLevel)
	}
}

func Next(key types.BlockKey, blockType string, actionCount int) {
	if globalTracer != nil {
		globalTracer.Next(key, blockType, actionCount)
	}
}

func Pop(key types.BlockKey, blockType string, reason types.CompletionReason) {
	if globalTracer != nil {
		globalTracer.Pop(key, blockType, reason)
	}
}

func BehaviorError(key types.BlockKey, blockType, phase string, err error) {
	if globalTracer != nil {
		globalTracer.BehaviorError(key, blockType, phase, err)
	}
}

func Turn(turnID int64, eventName string, iterations int) {
	if globalTracer != nil {
		globalTracer.Turn(turnID, eventName, iterations)
	}
}
