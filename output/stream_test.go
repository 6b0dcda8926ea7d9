package output

import (
	"testing"

	"forge/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDsStartAtOneMillionAndIncrement(t *testing.T) {
	s := NewStream()
	a := s.Add(types.OutputStatement{OutputType: types.OutputSegment})
	b := s.Add(types.OutputStatement{OutputType: types.OutputMilestone})

	assert.Equal(t, types.FirstOutputID, a.ID)
	assert.Equal(t, types.FirstOutputID+1, b.ID)
}

func TestSubscribersSeeStableInsertionOrder(t *testing.T) {
	s := NewStream()
	var seen []types.OutputType
	s.Subscribe(func(o types.OutputStatement) { seen = append(seen, o.OutputType) })

	s.Add(types.OutputStatement{OutputType: types.OutputSegment})
	s.Add(types.OutputStatement{OutputType: types.OutputCompletion})
	s.Add(types.OutputStatement{OutputType: types.OutputMilestone})

	assert.Equal(t, []types.OutputType{types.OutputSegment, types.OutputCompletion, types.OutputMilestone}, seen)
}

func TestAllReturnsImmutableSnapshot(t *testing.T) {
	s := NewStream()
	s.Add(types.OutputStatement{OutputType: types.OutputSegment})

	snap := s.All()
	require.Len(t, snap, 1)
	snap[0].OutputType = types.OutputSystem

	again := s.All()
	assert.Equal(t, types.OutputSegment, again[0].OutputType, "mutating a snapshot must not affect the stream")
}

func TestUnsubscribeStopsNotifications(t *testing.T) {
	s := NewStream()
	calls := 0
	unsub := s.Subscribe(func(types.OutputStatement) { calls++ })
	s.Add(types.OutputStatement{})
	unsub()
	s.Add(types.OutputStatement{})
	assert.Equal(t, 1, calls)
}
