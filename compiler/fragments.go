package compiler

import "forge/types"

// displayCompiler turns one source fragment into a display fragment,
// or reports false when that kind contributes no visible metric
// (spec.md §4.6 "trivial compilers for structural fragments return no
// metric").
type displayCompiler func(f types.Fragment, cc *CompilationContext) (types.Fragment, bool)

// displayCompilers holds one entry per types.FragmentKind (spec.md
// §4.6 "fragment compilers (one per fragment kind)"). Kinds absent from
// this table are purely structural inputs to strategy matching
// (Timer, Rounds, Action, Lap) or are themselves compiler/runtime
// output-only kinds (Elapsed, Total, SystemTime, Spans) that never
// originate as a display fragment from a parsed statement.
var displayCompilers = map[types.FragmentKind]displayCompiler{
	types.FragmentDuration:   passthroughDisplay,
	types.FragmentRep:        compileRepDisplay,
	types.FragmentEffort:     passthroughDisplay,
	types.FragmentResistance: passthroughDisplay,
	types.FragmentDistance:   passthroughDisplay,
	types.FragmentText:       passthroughDisplay,
	types.FragmentSound:      passthroughDisplay,
}

// passthroughDisplay re-stamps a fragment with compiler origin and
// carries it straight into fragment:display, unchanged otherwise — the
// common case for kinds that are already display-shaped as parsed.
func passthroughDisplay(f types.Fragment, _ *CompilationContext) (types.Fragment, bool) {
	f.Origin = types.OriginCompiler
	return f, true
}

// compileRepDisplay resolves a Rep fragment's count, preferring a
// locally stated count but otherwise deferring entirely to
// compileDisplayFragments's own context-inheritance pass (see there);
// this compiler only normalizes origin for a fragment that was stated
// locally.
func compileRepDisplay(f types.Fragment, _ *CompilationContext) (types.Fragment, bool) {
	f.Origin = types.OriginCompiler
	return f, true
}

// compileDisplayFragments builds the ordered fragment:display value for
// a statement: every source fragment that has a display compiler runs
// through it, and if the statement carries no Rep fragment of its own
// but cc inherited one from its parent (spec.md §4.6 rep-scheme
// inheritance), a synthetic Rep display fragment is appended so a child
// like "Pullups" under "21-15-9" still displays its round's rep count.
func compileDisplayFragments(stmt types.CodeStatement, cc *CompilationContext) []types.Fragment {
	var out []types.Fragment
	hasLocalRep := false
	for _, f := range stmt.Fragments {
		compile, ok := displayCompilers[f.Kind]
		if !ok {
			continue
		}
		if f.Kind == types.FragmentRep {
			hasLocalRep = true
		}
		if df, ok := compile(f, cc); ok {
			out = append(out, df)
		}
	}
	if !hasLocalRep && cc.HasReps {
		out = append(out, types.Fragment{Kind: types.FragmentRep, Count: cc.Reps, Bounded: true, Origin: types.OriginCompiler})
	}
	out = append(out, cc.InheritedMetrics...)
	return out
}
