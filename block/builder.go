package block

import (
	"forge/memory"
	"forge/types"
)

// Builder assembles a Block one behavior at a time. It exists so block
// construction is a single controlled path — a compiler Strategy never
// hand-assembles a Block struct literal. Each compiler Strategy appends
// behaviors through it in its own fixed order, and that order is the
// block's behavior order (spec.md §9 Design Notes, "Builder pattern for
// blocks (non-optional)... kept").
type Builder struct {
	key       types.BlockKey
	blockType string
	sourceIDs []int
	label     string
	store     *memory.Store
	behaviors []Behavior
}

// NewBuilder starts building a block of blockType, owned by store, with
// the given source statement ids and label. A fresh BlockKey is minted
// immediately.
func NewBuilder(store *memory.Store, blockType string, sourceIDs []int, label string) *Builder {
	return &Builder{
		key:       types.NewBlockKey(),
		blockType: blockType,
		sourceIDs: sourceIDs,
		label:     label,
		store:     store,
	}
}

// Key returns the block key this builder will produce, useful when a
// behavior needs to reference its own future block before Build runs
// (e.g. a ChildRunner needing to record its parent's key on children).
func (b *Builder) Key() types.BlockKey { return b.key }

// AddBehavior appends beh to the block's behavior list, in the order
// called. Order is significant (spec.md §4.4) and is never resorted.
func (b *Builder) AddBehavior(beh Behavior) *Builder {
	b.behaviors = append(b.behaviors, beh)
	return b
}

// Build finalizes the Block. A block with zero behaviors is invalid —
// every block contributes at least a display or output behavior — so
// Build panics rather than returning a useless empty block; this is a
// construction-time programmer error, not a runtime condition.
func (b *Builder) Build() *Block {
	if len(b.behaviors) == 0 {
		panic("block: Build called with no behaviors attached")
	}
	return &Block{
		Key:       b.key,
		BlockType: b.blockType,
		SourceIDs: b.sourceIDs,
		Label:     b.label,
		Behaviors: b.behaviors,
		Store:     b.store,
	}
}
