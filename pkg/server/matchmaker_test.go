package server

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testPlayer(id string) *Player {
	return &Player{ID: id, Name: "Player " + id}
}

func TestJoinPairsInStrictArrivalOrder(t *testing.T) {
	m := NewMatchmaker(zap.NewNop())

	first := testPlayer("p1")
	second := testPlayer("p2")
	third := testPlayer("p3")
	fourth := testPlayer("p4")

	require.Nil(t, m.Join(first, "chess"))
	require.Nil(t, m.Join(second, "chess"))

	// The third joiner pairs with the oldest waiter; the second keeps
	// waiting for the fourth.
	s1 := m.Join(third, "chess")
	require.NotNil(t, s1)
	assert.Equal(t, "p1", s1.White.ID)
	assert.Equal(t, "p3", s1.Black.ID)

	s2 := m.Join(fourth, "chess")
	require.NotNil(t, s2)
	assert.Equal(t, "p2", s2.White.ID)
	assert.Equal(t, "p4", s2.Black.ID)

	assert.Equal(t, 0, m.WaitingCount("chess"))
}

func TestJoinNeverPairsPlayerWithItself(t *testing.T) {
	m := NewMatchmaker(zap.NewNop())
	p := testPlayer("p1")

	require.Nil(t, m.Join(p, "chess"))
	require.Nil(t, m.Join(p, "chess"))

	// Repeat joins keep a single queue slot.
	assert.Equal(t, 1, m.WaitingCount("chess"))

	s := m.Join(testPlayer("p2"), "chess")
	require.NotNil(t, s)
	assert.Equal(t, "p1", s.White.ID)
	assert.Equal(t, "p2", s.Black.ID)
	assert.Equal(t, 0, m.WaitingCount("chess"))
}

func TestQueuesAreSeparatePerGameType(t *testing.T) {
	m := NewMatchmaker(zap.NewNop())

	require.Nil(t, m.Join(testPlayer("p1"), "chess"))
	require.Nil(t, m.Join(testPlayer("p2"), "go"))

	assert.Equal(t, 1, m.WaitingCount("chess"))
	assert.Equal(t, 1, m.WaitingCount("go"))

	s := m.Join(testPlayer("p3"), "go")
	require.NotNil(t, s)
	assert.Equal(t, "p2", s.White.ID)
	assert.Equal(t, "go", s.GameType)
	assert.Equal(t, 1, m.WaitingCount("chess"))
}

func TestRemoveDropsWaitingPlayer(t *testing.T) {
	m := NewMatchmaker(zap.NewNop())

	require.Nil(t, m.Join(testPlayer("p1"), "chess"))
	m.Remove("p1")
	assert.Equal(t, 0, m.WaitingCount("chess"))

	// Removing an unqueued player is harmless.
	m.Remove("ghost")
}

func TestRemoveClearsEveryQueue(t *testing.T) {
	m := NewMatchmaker(zap.NewNop())
	p := testPlayer("p1")

	require.Nil(t, m.Join(p, "chess"))
	require.Nil(t, m.Join(p, "go"))

	m.Remove("p1")
	assert.Equal(t, 0, m.WaitingCount("chess"))
	assert.Equal(t, 0, m.WaitingCount("go"))
}

func TestPairingClearsOtherQueueEntries(t *testing.T) {
	m := NewMatchmaker(zap.NewNop())
	p := testPlayer("p1")

	require.Nil(t, m.Join(p, "chess"))
	require.Nil(t, m.Join(p, "go"))

	// Pairing in chess must end the wait in go as well, otherwise a later
	// go joiner would hand p1 a second concurrent session.
	s := m.Join(testPlayer("p2"), "chess")
	require.NotNil(t, s)
	assert.Equal(t, "p1", s.White.ID)

	assert.Equal(t, 0, m.WaitingCount("chess"))
	assert.Equal(t, 0, m.WaitingCount("go"))

	require.Nil(t, m.Join(testPlayer("p3"), "go"))
	assert.Equal(t, 1, m.WaitingCount("go"))
}

func TestFIFOOverManyPlayers(t *testing.T) {
	m := NewMatchmaker(zap.NewNop())

	for i := 0; i < 6; i++ {
		require.Nil(t, m.Join(testPlayer(fmt.Sprintf("w%d", i)), "gomoku"))
	}

	for i := 0; i < 6; i++ {
		s := m.Join(testPlayer(fmt.Sprintf("j%d", i)), "gomoku")
		require.NotNil(t, s)
		assert.Equal(t, fmt.Sprintf("w%d", i), s.White.ID)
	}
}
