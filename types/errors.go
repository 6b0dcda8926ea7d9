package types

import "fmt"

// ErrorKind is the taxonomy from spec.md §7.
type ErrorKind string

const (
	ErrorParse          ErrorKind = "parse"
	ErrorCompile        ErrorKind = "compile"
	ErrorBehavior       ErrorKind = "behavior"
	ErrorDispose        ErrorKind = "dispose"
	ErrorMaxIterations  ErrorKind = "max_iterations"
	ErrorInvariant      ErrorKind = "invariant"
)

// RuntimeError is a recorded, non-throwing error (spec.md §7: "the
// runtime exposes errors for inspection but never throws out of its
// public API"). Only ErrorInvariant is classed as fatal (see Fatal);
// the runtime records it like every other kind and execution
// continues.
type RuntimeError struct {
	Kind      ErrorKind
	Message   string
	BlockKey  *BlockKey
	StatementID *int
	TurnID    int64
	Cause     error
}

func (e RuntimeError) Error() string {
	if e.BlockKey != nil {
		return fmt.Sprintf("%s: %s (block %s)", e.Kind, e.Message, e.BlockKey.String())
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Fatal reports whether this error kind is classed as fatal
// (ErrorInvariant). The runtime does not check it and does not halt on
// such an error.
func (e RuntimeError) Fatal() bool {
	return e.Kind == ErrorInvariant
}
