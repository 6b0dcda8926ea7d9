package runtime

import (
	"testing"

	"forge/block"
	"forge/memory"
	"forge/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBlock(blockType string) *block.Block {
	store := memory.NewStore()
	return block.NewBuilder(store, blockType, nil, blockType).AddBehavior(block.Base{BehaviorName: blockType}).Build()
}

func TestStackPushPopCurrentDepth(t *testing.T) {
	s := NewStack()
	assert.Equal(t, 0, s.Depth())
	assert.Nil(t, s.Current())
	assert.Nil(t, s.Pop())

	a := newTestBlock("A")
	b := newTestBlock("B")

	require.NoError(t, s.Push(a))
	require.NoError(t, s.Push(b))
	assert.Equal(t, 2, s.Depth())
	assert.Same(t, b, s.Current())

	popped := s.Pop()
	assert.Same(t, b, popped)
	assert.Equal(t, 1, s.Depth())
	assert.Same(t, a, s.Current())
}

func TestStackMaxDepthExceeded(t *testing.T) {
	s := NewStack()
	for i := 0; i < MaxStackDepth; i++ {
		require.NoError(t, s.Push(newTestBlock("X")))
	}
	err := s.Push(newTestBlock("overflow"))
	assert.Error(t, err)
	assert.Equal(t, MaxStackDepth, s.Depth())
}

func TestStackIsActiveOnlyMatchesTop(t *testing.T) {
	s := NewStack()
	a := newTestBlock("A")
	b := newTestBlock("B")
	require.NoError(t, s.Push(a))
	require.NoError(t, s.Push(b))

	assert.True(t, s.IsActive(b.Key))
	assert.False(t, s.IsActive(a.Key))
	assert.False(t, s.IsActive(types.NewBlockKey()))
}

func TestStackFindScansWholeStack(t *testing.T) {
	s := NewStack()
	a := newTestBlock("A")
	b := newTestBlock("B")
	require.NoError(t, s.Push(a))
	require.NoError(t, s.Push(b))

	assert.Same(t, a, s.Find(a.Key))
	assert.Same(t, b, s.Find(b.Key))
	assert.Nil(t, s.Find(types.NewBlockKey()))
}
