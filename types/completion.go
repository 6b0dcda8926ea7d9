package types

// CompletionReason is the enumerated cause a block terminated
// (spec.md §6.5 — stable external contract).
type CompletionReason string

const (
	ReasonUserAdvance   CompletionReason = "user-advance"
	ReasonForcedPop     CompletionReason = "forced-pop"
	ReasonTimerExpired  CompletionReason = "timer-expired"
	ReasonRoundsComplete CompletionReason = "rounds-complete"
	ReasonExternal      CompletionReason = "external"
)

// CompletionState is the value stored under MemoryTag "completion".
type CompletionState struct {
	IsComplete bool
	Reason     CompletionReason
}
