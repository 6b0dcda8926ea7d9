package types

// OutputType classifies an OutputStatement (spec.md §3).
type OutputType string

const (
	OutputSegment    OutputType = "segment"
	OutputCompletion OutputType = "completion"
	OutputMilestone  OutputType = "milestone"
	OutputLabel      OutputType = "label"
	OutputMetric     OutputType = "metric"
	OutputSystem     OutputType = "system"
)

// FirstOutputID is the first id assigned to an emitted OutputStatement;
// ids increase monotonically from here (spec.md §3, §4.7).
const FirstOutputID int64 = 1_000_000

// OutputStatement is an immutable, append-only record emitted during
// execution. Once appended to the output.Stream its fields are never
// mutated again.
type OutputStatement struct {
	ID                int64
	OutputType        OutputType
	TimeSpan          TimeSpan
	Spans             []TimeSpan
	SourceBlockKey     BlockKey
	SourceStatementID *int
	StackLevel        int
	Fragments         []Fragment
	CompletionReason  *CompletionReason
}
