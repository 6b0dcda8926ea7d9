package types

import "strings"

// MemoryTag names the schema of a MemoryEntry's value (spec.md §6.6).
// Values beginning with "anchor:" or "custom:" carry a caller-chosen
// suffix; use NewAnchorTag/NewCustomTag to build one.
type MemoryTag string

const (
	TagTimer            MemoryTag = "timer"
	TagRound            MemoryTag = "round"
	TagCompletion       MemoryTag = "completion"
	TagDisplay          MemoryTag = "display"
	TagControls         MemoryTag = "controls"
	TagFragmentDisplay  MemoryTag = "fragment:display"
	TagFragmentTracked  MemoryTag = "fragment:tracked"
	TagHandler          MemoryTag = "handler"
	TagChildIndex       MemoryTag = "childIndex"
)

// NewAnchorTag builds the "anchor:<id>" tag for a given anchor id.
func NewAnchorTag(id string) MemoryTag {
	return MemoryTag("anchor:" + id)
}

// NewCustomTag builds the "custom:<string>" tag for caller-defined state.
func NewCustomTag(name string) MemoryTag {
	return MemoryTag("custom:" + name)
}

// IsAnchor reports whether the tag is an "anchor:<id>" tag.
func (t MemoryTag) IsAnchor() bool {
	return strings.HasPrefix(string(t), "anchor:")
}

// IsCustom reports whether the tag is a "custom:<string>" tag.
func (t MemoryTag) IsCustom() bool {
	return strings.HasPrefix(string(t), "custom:")
}

// Visibility is an advisory access label on a MemoryEntry. The runtime
// does not enforce isolation across blocks based on it — see
// SPEC_FULL.md Open Question 3.
type Visibility string

const (
	VisibilityPrivate Visibility = "private"
	VisibilityPublic  Visibility = "public"
)

// TimerState is the value stored under MemoryTag "timer".
type TimerState struct {
	Direction  TimerDirection
	DurationMs *int64
	Spans      []TimeSpan
	Label      string
	Role       TimerRole
}

// TimerRole distinguishes the primary timer on a block from a
// secondary one (e.g. an outer AMRAP cap alongside an inner round timer).
type TimerRole string

const (
	RolePrimary   TimerRole = "primary"
	RoleSecondary TimerRole = "secondary"
)

// Elapsed returns the pause-aware elapsed time for the timer at nowMs.
func (t TimerState) Elapsed(nowMs int64) int64 {
	return SumElapsed(t.Spans, nowMs)
}

// Total returns lastEnd - firstStart (including paused gaps) at nowMs.
func (t TimerState) Total(nowMs int64) int64 {
	return SumTotal(t.Spans, nowMs)
}

// Remaining returns DurationMs - Elapsed, or 0 if unbounded or expired.
func (t TimerState) Remaining(nowMs int64) int64 {
	if t.DurationMs == nil {
		return 0
	}
	rem := *t.DurationMs - t.Elapsed(nowMs)
	if rem < 0 {
		rem = 0
	}
	return rem
}

// UnboundedRounds is the sentinel RoundState.Total value meaning
// "never auto-complete on round count".
const UnboundedRounds = -1

// RoundState is the value stored under MemoryTag "round".
type RoundState struct {
	Current int
	Total   int // UnboundedRounds for unbounded
}

// Unbounded reports whether this round state has no fixed total.
func (r RoundState) Unbounded() bool {
	return r.Total == UnboundedRounds
}

// DisplayState is the value stored under MemoryTag "display".
type DisplayState struct {
	Mode  string
	Label string
}

// ControlButton describes one button in a ControlsState's button list.
type ControlButton struct {
	ID    string
	Label string
	Event string
}

// ControlsState is the value stored under MemoryTag "controls".
type ControlsState struct {
	Buttons []ControlButton
}
