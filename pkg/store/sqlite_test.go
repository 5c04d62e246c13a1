package store

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"matchhub/pkg/game"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func finishedGame(id, gameType, winnerID string, white, black game.Participant) *game.Record {
	started := time.Now().Add(-2 * time.Minute)
	return &game.Record{
		GameID:   id,
		GameType: gameType,
		White:    white,
		Black:    black,
		WinnerID: winnerID,
		Status:   game.StatusFinished,
		Moves: []game.Move{
			{PlayerID: white.ID, Payload: json.RawMessage(`"e2e4"`), At: started.Add(time.Second)},
			{PlayerID: black.ID, Payload: json.RawMessage(`"e7e5"`), At: started.Add(2 * time.Second)},
		},
		StartedAt:  started,
		FinishedAt: time.Now(),
	}
}

func TestUpsertPlayerCreatesThenRefreshes(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rec, err := s.UpsertPlayer(ctx, "p1", "Alice")
	require.NoError(t, err)
	assert.Equal(t, "Alice", rec.PlayerName)
	assert.Equal(t, 1000, rec.Rating)
	assert.Zero(t, rec.TotalGames)

	again, err := s.UpsertPlayer(ctx, "p1", "Alice")
	require.NoError(t, err)
	assert.Equal(t, rec.FirstSeen, again.FirstSeen)
	assert.False(t, again.LastSeen.Before(rec.LastSeen))
}

func TestRecordGameFirstWin(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	alice := game.Participant{ID: "p1", Name: "Alice"}
	bob := game.Participant{ID: "p2", Name: "Bob"}
	_, err := s.UpsertPlayer(ctx, alice.ID, alice.Name)
	require.NoError(t, err)
	_, err = s.UpsertPlayer(ctx, bob.ID, bob.Name)
	require.NoError(t, err)

	require.NoError(t, s.RecordGame(ctx, finishedGame("g1", "chess", alice.ID, alice, bob)))

	board, err := s.GameTypeLeaderboard(ctx, "chess", 10)
	require.NoError(t, err)
	require.Len(t, board, 2)

	assert.Equal(t, alice.ID, board[0].PlayerID)
	assert.Equal(t, 1, board[0].GamesPlayed)
	assert.Equal(t, 1, board[0].Wins)
	assert.Equal(t, 100.0, board[0].WinRate)
	assert.Equal(t, 1, board[1].Losses)
	assert.Equal(t, 0.0, board[1].WinRate)

	standings, err := s.LeagueTable(ctx, 10)
	require.NoError(t, err)
	require.Len(t, standings, 2)
	assert.Equal(t, alice.ID, standings[0].PlayerID)
	assert.Equal(t, 3, standings[0].Points)
	assert.Equal(t, 0, standings[1].Points)

	summary, err := s.PlayerSummary(ctx, alice.ID)
	require.NoError(t, err)
	require.NotNil(t, summary)
	assert.Equal(t, 1, summary.TotalGames)
	assert.Equal(t, 1, summary.TotalWins)
	require.Len(t, summary.RecentGames, 1)
	assert.Equal(t, "g1", summary.RecentGames[0].GameID)
	assert.Equal(t, alice.ID, summary.RecentGames[0].WinnerID)
	assert.Equal(t, 2, summary.RecentGames[0].MoveCount)
}

func TestCountersStayConsistentAcrossOutcomes(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	alice := game.Participant{ID: "p1", Name: "Alice"}
	bob := game.Participant{ID: "p2", Name: "Bob"}
	_, err := s.UpsertPlayer(ctx, alice.ID, alice.Name)
	require.NoError(t, err)
	_, err = s.UpsertPlayer(ctx, bob.ID, bob.Name)
	require.NoError(t, err)

	outcomes := []string{alice.ID, bob.ID, "", alice.ID, ""}
	for i, winner := range outcomes {
		rec := finishedGame(fmt.Sprintf("g%d", i), "chess", winner, alice, bob)
		require.NoError(t, s.RecordGame(ctx, rec))

		// games_played == wins+losses+draws after every write, for both.
		board, err := s.GameTypeLeaderboard(ctx, "chess", 10)
		require.NoError(t, err)
		for _, row := range board {
			assert.Equal(t, row.GamesPlayed, row.Wins+row.Losses+row.Draws,
				"player %s after game %d", row.PlayerID, i)
		}
	}

	standings, err := s.LeagueTable(ctx, 10)
	require.NoError(t, err)
	require.Len(t, standings, 2)

	// Alice: 2 wins, 1 loss, 2 draws -> 8 points.
	assert.Equal(t, alice.ID, standings[0].PlayerID)
	assert.Equal(t, 5, standings[0].TotalGames)
	assert.Equal(t, 8, standings[0].Points)
	// Bob: 1 win, 2 losses, 2 draws -> 5 points.
	assert.Equal(t, 5, standings[1].Points)
}

func TestRecordGameRejectsDuplicateGameID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	alice := game.Participant{ID: "p1", Name: "Alice"}
	bob := game.Participant{ID: "p2", Name: "Bob"}
	_, err := s.UpsertPlayer(ctx, alice.ID, alice.Name)
	require.NoError(t, err)
	_, err = s.UpsertPlayer(ctx, bob.ID, bob.Name)
	require.NoError(t, err)

	rec := finishedGame("g1", "chess", alice.ID, alice, bob)
	require.NoError(t, s.RecordGame(ctx, rec))
	assert.Error(t, s.RecordGame(ctx, rec))

	// The failed replay must not have touched the aggregates.
	board, err := s.GameTypeLeaderboard(ctx, "chess", 10)
	require.NoError(t, err)
	for _, row := range board {
		assert.Equal(t, 1, row.GamesPlayed)
	}
}

func TestAbandonedGamePersistsWithoutWinner(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	alice := game.Participant{ID: "p1", Name: "Alice"}
	bob := game.Participant{ID: "p2", Name: "Bob"}
	_, err := s.UpsertPlayer(ctx, alice.ID, alice.Name)
	require.NoError(t, err)
	_, err = s.UpsertPlayer(ctx, bob.ID, bob.Name)
	require.NoError(t, err)

	rec := finishedGame("g1", "chess", "", alice, bob)
	rec.Status = game.StatusAbandoned
	require.NoError(t, s.RecordGame(ctx, rec))

	summary, err := s.PlayerSummary(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, summary.RecentGames, 1)
	assert.Equal(t, string(game.StatusAbandoned), summary.RecentGames[0].Status)
	assert.Empty(t, summary.RecentGames[0].WinnerID)
}

func TestLeagueTableOrderingAndLimit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Three contenders beat a fourth player 3, 2 and 1 times: 9, 6 and 3
	// points respectively.
	sink := game.Participant{ID: "sink", Name: "Sink"}
	_, err := s.UpsertPlayer(ctx, sink.ID, sink.Name)
	require.NoError(t, err)
	contenders := []struct {
		p    game.Participant
		wins int
	}{
		{game.Participant{ID: "c3", Name: "Three"}, 3},
		{game.Participant{ID: "c1", Name: "One"}, 1},
		{game.Participant{ID: "c2", Name: "Two"}, 2},
	}

	n := 0
	for _, c := range contenders {
		_, err := s.UpsertPlayer(ctx, c.p.ID, c.p.Name)
		require.NoError(t, err)
		for i := 0; i < c.wins; i++ {
			n++
			rec := finishedGame(fmt.Sprintf("g%d", n), "chess", c.p.ID, c.p, sink)
			require.NoError(t, s.RecordGame(ctx, rec))
		}
	}

	top, err := s.LeagueTable(ctx, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "c3", top[0].PlayerID)
	assert.Equal(t, 9, top[0].Points)
	assert.Equal(t, "c2", top[1].PlayerID)
	assert.Equal(t, 6, top[1].Points)
}

func TestPlayerSummaryUnknownPlayer(t *testing.T) {
	s := newTestStore(t)

	summary, err := s.PlayerSummary(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Nil(t, summary)
}
