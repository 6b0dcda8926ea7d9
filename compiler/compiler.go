package compiler

import (
	"fmt"

	"forge/block"
	"forge/memory"
	"forge/types"
)

// Strategy is the matcher/builder pair spec.md §4.6 names. Strategies
// are tried in registration order; the first Match wins. Compile never
// returns an error — a strategy that cannot build a valid block should
// not have matched.
type Strategy interface {
	Name() string
	Match(stmt types.CodeStatement, c *Compiler) bool
	Compile(stmt types.CodeStatement, c *Compiler, cc *CompilationContext) *block.Block
}

// Compiler walks a flat table of parsed statements (keyed by id,
// spec.md §3 "CodeStatement.children: ordered list of lists of ids")
// and recursively compiles the tree rooted at a given id, trying each
// registered Strategy in order at every node.
type Compiler struct {
	store      *memory.Store
	statements map[int]types.CodeStatement
	strategies []Strategy
	Errors     []types.RuntimeError
}

// New builds a Compiler over statements, registered against store, with
// the six built-in strategies in spec.md §4.6's precedence order.
func New(store *memory.Store, statements []types.CodeStatement) *Compiler {
	c := &Compiler{
		store:      store,
		statements: make(map[int]types.CodeStatement, len(statements)),
	}
	for _, s := range statements {
		c.statements[s.ID] = s
	}
	c.strategies = []Strategy{
		TimerStrategy{},
		RoundsStrategy{},
		IntervalStrategy{},
		TimeBoundRoundsStrategy{},
		GroupStrategy{},
		EffortStrategy{}, // fallback, must stay last
	}
	return c
}

// Statement looks up a statement by id, as children reference ids
// rather than embedding each other (spec.md §3).
func (c *Compiler) Statement(id int) (types.CodeStatement, bool) {
	s, ok := c.statements[id]
	return s, ok
}

// Store returns the memory store blocks are built against.
func (c *Compiler) Store() *memory.Store { return c.store }

// Compile compiles the statement identified by id into a fully
// initialized *block.Block (spec.md §4.6 "Block construction"),
// recording and skipping unmappable statements (spec.md §4.5 "Parser
// errors: compiler skips unmappable statements and records errors").
// Returns nil if id is unknown or no strategy matches.
func (c *Compiler) Compile(id int, cc *CompilationContext) *block.Block {
	stmt, ok := c.statements[id]
	if !ok {
		c.recordError(id, "unknown statement id")
		return nil
	}
	if cc == nil {
		cc = RootContext()
	}
	for _, strat := range c.strategies {
		if strat.Match(stmt, c) {
			blk := strat.Compile(stmt, c, cc)
			if blk == nil {
				c.recordError(id, fmt.Sprintf("strategy %s matched but produced no block", strat.Name()))
			}
			return blk
		}
	}
	c.recordError(id, "no strategy matched statement")
	return nil
}

// flattenChildren concatenates every lap-grouped sibling-id list on a
// statement into one ordered list — the single pass a container's
// ChildRunner repeats once per round (spec.md §3 calls Children
// "ordered list of lists of ids"; a container's body is one flattened
// pass through all of them, repeated across rounds by ChildLoop).
func flattenChildren(stmt types.CodeStatement) []int {
	var out []int
	for _, group := range stmt.Children {
		out = append(out, group...)
	}
	return out
}

// restChecker builds the IsRest predicate a RestBlockGuard needs,
// indexed the same way compileChildren orders its result, or nil if no
// child statement is flagged rest (the common case, where no
// RestBlockGuard needs to be attached at all).
func (c *Compiler) restChecker(stmt types.CodeStatement) func(int) bool {
	ids := flattenChildren(stmt)
	flags := make([]bool, len(ids))
	any := false
	for i, id := range ids {
		childStmt, ok := c.Statement(id)
		if ok && isRestChild(childStmt) {
			flags[i] = true
			any = true
		}
	}
	if !any {
		return nil
	}
	return func(idx int) bool {
		if idx < 0 || idx >= len(flags) {
			return false
		}
		return flags[idx]
	}
}

// build seeds the block's fragment:display memory from stmt's compiled
// display fragments (spec.md §4.6 "Block construction" step 4) and
// finalizes it. This is the only place a Strategy should call
// Builder.Build, so every strategy ends up with fragment:display
// populated the same way.
func (c *Compiler) build(b *block.Builder, stmt types.CodeStatement, cc *CompilationContext) *block.Block {
	fragments := compileDisplayFragments(stmt, cc)
	c.store.Allocate(b.Key(), types.TagFragmentDisplay, fragments, types.VisibilityPublic)
	return b.Build()
}

func (c *Compiler) recordError(statementID int, message string) {
	id := statementID
	c.Errors = append(c.Errors, types.RuntimeError{
		Kind:        types.ErrorCompile,
		Message:     message,
		StatementID: &id,
	})
}

// compileChildren compiles every lap-grouped child of stmt once, under
// a per-group CompilationContext derived from cc — used by every
// container strategy (Rounds/Interval/TimeBoundRounds/Group) so the
// behavior is identical no matter what produced the parent container.
// repScheme, when non-empty, assigns scheme[groupIndex] as the
// inherited rep count for every child in that group (the "21-15-9"
// case; a single group gets scheme[0]); with an empty repScheme every
// child just gets cc's own Reps unchanged.
func (c *Compiler) compileChildren(stmt types.CodeStatement, cc *CompilationContext, repScheme []int) []*block.Block {
	var children []*block.Block
	for groupIdx, group := range stmt.Children {
		rep, hasRep := repForGroup(repScheme, groupIdx+1)
		childCC := cc.childContext(groupIdx+1, rep, hasRep)
		for _, id := range group {
			if blk := c.Compile(id, childCC); blk != nil {
				children = append(children, blk)
			}
		}
	}
	return children
}
