package types

// FragmentKind tags the variant of a Fragment. A single envelope struct
// is used for all kinds (rather than one Go type per kind) because most
// fields are shared or absent across kinds — the same tradeoff the
// teacher makes for OutputStatement-shaped data rather than building a
// seventeen-member interface hierarchy for it.
type FragmentKind string

const (
	FragmentDuration   FragmentKind = "duration"
	FragmentRep        FragmentKind = "rep"
	FragmentRounds     FragmentKind = "rounds"
	FragmentEffort     FragmentKind = "effort"
	FragmentResistance FragmentKind = "resistance"
	FragmentDistance   FragmentKind = "distance"
	FragmentAction     FragmentKind = "action"
	FragmentIncrement  FragmentKind = "increment"
	FragmentText       FragmentKind = "text"
	FragmentLap        FragmentKind = "lap"
	FragmentSound      FragmentKind = "sound"
	FragmentTimer      FragmentKind = "timer"
	FragmentSpans      FragmentKind = "spans"
	FragmentElapsed    FragmentKind = "elapsed"
	FragmentTotal      FragmentKind = "total"
	FragmentSystemTime FragmentKind = "system_time"
	FragmentSystem     FragmentKind = "system"
)

// Origin records who produced a fragment.
type Origin string

const (
	OriginParser   Origin = "parser"
	OriginCompiler Origin = "compiler"
	OriginRuntime  Origin = "runtime"
	OriginUser     Origin = "user"
)

// TimerDirection is the counting direction of a Timer/TimerState.
type TimerDirection string

const (
	DirectionUp   TimerDirection = "up"
	DirectionDown TimerDirection = "down"
)

// Fragment is a tagged, typed value carried by CodeStatements and
// OutputStatements. Only the fields relevant to Kind are populated; the
// rest are zero.
type Fragment struct {
	Kind FragmentKind

	// Duration / Timer / Elapsed / Total / SystemTime (milliseconds)
	DurationMs int64

	// Rep / Rounds counts. Bounded == false means "unbounded".
	Count   int
	Bounded bool

	// Effort / Action / Text / Sound-trigger labels
	Label string

	// Resistance / Distance
	Value float64
	Unit  string

	// Action pin flag
	Pinned bool

	// Increment sign: +1 or -1
	Sign int

	// Text rendering mode (e.g. "markdown", "plain")
	Mode string

	// Lap separator glyph
	Separator string

	// Sound
	SoundSeconds *int

	// Timer
	Direction TimerDirection

	// Spans
	Spans []TimeSpan

	// System fragment kind/payload (escape hatch for engine-internal signals)
	SystemKind    string
	SystemPayload any

	// Attribution, stamped by BehaviorContext.EmitOutput / the compiler.
	Origin         Origin
	SourceBlockKey *BlockKey
	Timestamp      int64
}

// WithAttribution returns a copy of f stamped with the emitting block's
// key and the turn's frozen clock value. Used by output emission so
// fragments carry provenance without behaviors having to know about it.
func (f Fragment) WithAttribution(key BlockKey, timestampMs int64) Fragment {
	f.SourceBlockKey = &key
	f.Timestamp = timestampMs
	return f
}
