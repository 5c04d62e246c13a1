package game

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestSession() *Session {
	return NewSession("chess",
		Participant{ID: "w1", Name: "Alice"},
		Participant{ID: "b1", Name: "Bob"},
	)
}

func TestNewSessionStartsWithWhiteToMove(t *testing.T) {
	s := newTestSession()

	assert.Equal(t, StatusActive, s.State())
	assert.Equal(t, "w1", s.CurrentTurn())
	assert.True(t, s.HasParticipant("w1"))
	assert.True(t, s.HasParticipant("b1"))
	assert.False(t, s.HasParticipant("nobody"))
}

func TestSubmitMoveRejectsOutOfTurn(t *testing.T) {
	s := newTestSession()

	_, err := s.SubmitMove("b1", json.RawMessage(`"e7e5"`))
	require.ErrorIs(t, err, ErrNotYourTurn)

	// A rejected move changes nothing.
	assert.Equal(t, "w1", s.CurrentTurn())
	assert.Equal(t, 0, s.MoveCount())
}

func TestSubmitMoveAlternatesTurnStrictly(t *testing.T) {
	s := newTestSession()
	order := []string{"w1", "b1", "w1", "b1", "w1"}

	for i, mover := range order {
		assert.Equal(t, mover, s.CurrentTurn(), "before move %d", i)
		opponent, err := s.SubmitMove(mover, json.RawMessage(`"m"`))
		require.NoError(t, err)
		assert.Equal(t, opponent.ID, s.CurrentTurn())
	}

	assert.Equal(t, len(order), s.MoveCount())
}

func TestSubmitMoveAfterTerminalStateFails(t *testing.T) {
	s := newTestSession()
	_, err := s.Finish("w1", ResultWin)
	require.NoError(t, err)

	_, err = s.SubmitMove("w1", json.RawMessage(`"m"`))
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestFinishComputesWinnerRelativeToReporter(t *testing.T) {
	tests := []struct {
		name     string
		reporter string
		result   Result
		winner   string
	}{
		{"reporter wins", "w1", ResultWin, "w1"},
		{"reporter loses", "w1", ResultLoss, "b1"},
		{"opponent reports win", "b1", ResultWin, "b1"},
		{"draw has no winner", "b1", ResultDraw, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSession()
			rec, err := s.Finish(tt.reporter, tt.result)
			require.NoError(t, err)

			assert.Equal(t, tt.winner, rec.WinnerID)
			assert.Equal(t, StatusFinished, rec.Status)
			assert.Equal(t, StatusFinished, s.State())
		})
	}
}

func TestFinishIsEffectiveAtMostOnce(t *testing.T) {
	s := newTestSession()

	rec, err := s.Finish("w1", ResultWin)
	require.NoError(t, err)
	require.NotNil(t, rec)

	rec, err = s.Finish("b1", ResultWin)
	assert.ErrorIs(t, err, ErrInvalidSession)
	assert.Nil(t, rec)

	rec, err = s.Abandon()
	assert.ErrorIs(t, err, ErrInvalidSession)
	assert.Nil(t, rec)
}

func TestAbandonLeavesWinnerUnset(t *testing.T) {
	s := newTestSession()
	_, err := s.SubmitMove("w1", json.RawMessage(`"e2e4"`))
	require.NoError(t, err)

	rec, err := s.Abandon()
	require.NoError(t, err)

	assert.Equal(t, StatusAbandoned, rec.Status)
	assert.Empty(t, rec.WinnerID)
	assert.Len(t, rec.Moves, 1)
	assert.Equal(t, StatusAbandoned, s.State())

	// Second abandon is a no-op.
	rec, err = s.Abandon()
	assert.ErrorIs(t, err, ErrInvalidSession)
	assert.Nil(t, rec)
}

func TestRecordFreezesMoveLog(t *testing.T) {
	s := newTestSession()
	_, err := s.SubmitMove("w1", json.RawMessage(`"e2e4"`))
	require.NoError(t, err)
	_, err = s.SubmitMove("b1", json.RawMessage(`"e7e5"`))
	require.NoError(t, err)

	rec, err := s.Finish("w1", ResultDraw)
	require.NoError(t, err)

	require.Len(t, rec.Moves, 2)
	assert.Equal(t, "w1", rec.Moves[0].PlayerID)
	assert.Equal(t, "b1", rec.Moves[1].PlayerID)
	assert.JSONEq(t, `"e2e4"`, string(rec.Moves[0].Payload))
	assert.False(t, rec.FinishedAt.Before(rec.StartedAt))
	assert.Equal(t, "chess", rec.GameType)
}

func TestManagerRemovesFinalizedSessions(t *testing.T) {
	m := NewManager(zap.NewNop())

	s := newTestSession()
	m.Add(s)

	got, ok := m.Get(s.ID)
	require.True(t, ok)
	assert.Same(t, s, got)
	assert.Equal(t, 1, m.ActiveCount())

	m.Remove(s.ID)
	_, ok = m.Get(s.ID)
	assert.False(t, ok)
	assert.Equal(t, 0, m.ActiveCount())
}
