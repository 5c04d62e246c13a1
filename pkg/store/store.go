// Package store is the durable statistics layer: player profiles, game
// history, per-game-type statistics and league standings.
package store

import (
	"context"
	"time"

	"matchhub/pkg/game"
)

// PlayerRecord is a persistent player profile. Created on first
// registration of an identity, never deleted.
type PlayerRecord struct {
	PlayerID    string    `json:"player_id"`
	PlayerName  string    `json:"player_name"`
	FirstSeen   time.Time `json:"first_seen"`
	LastSeen    time.Time `json:"last_seen"`
	TotalGames  int       `json:"total_games"`
	TotalWins   int       `json:"total_wins"`
	TotalLosses int       `json:"total_losses"`
	TotalDraws  int       `json:"total_draws"`
	Rating      int       `json:"rating"`
}

// GameRecord is one finalized game. Written exactly once, at finalization.
type GameRecord struct {
	GameID          string    `json:"game_id"`
	GameType        string    `json:"game_type"`
	WhiteID         string    `json:"white_id"`
	BlackID         string    `json:"black_id"`
	WhiteName       string    `json:"white_name"`
	BlackName       string    `json:"black_name"`
	WinnerID        string    `json:"winner_id,omitempty"`
	Status          string    `json:"status"`
	MoveCount       int       `json:"move_count"`
	StartedAt       time.Time `json:"started_at"`
	FinishedAt      time.Time `json:"finished_at"`
	DurationSeconds int       `json:"duration_seconds"`
}

// TypeStats is a player's aggregate row for one game type.
type TypeStats struct {
	PlayerID    string    `json:"player_id"`
	PlayerName  string    `json:"player_name,omitempty"`
	GameType    string    `json:"game_type"`
	GamesPlayed int       `json:"games_played"`
	Wins        int       `json:"wins"`
	Losses      int       `json:"losses"`
	Draws       int       `json:"draws"`
	WinRate     float64   `json:"win_rate"`
	LastPlayed  time.Time `json:"last_played"`
}

// Standing is a player's cumulative league row across all game types.
// Points are 3 per win and 1 per draw.
type Standing struct {
	PlayerID    string    `json:"player_id"`
	PlayerName  string    `json:"player_name"`
	TotalGames  int       `json:"total_games"`
	Wins        int       `json:"wins"`
	Losses      int       `json:"losses"`
	Draws       int       `json:"draws"`
	WinRate     float64   `json:"win_rate"`
	Rating      int       `json:"rating"`
	Points      int       `json:"points"`
	LastUpdated time.Time `json:"last_updated"`
}

// PlayerSummary bundles everything the stats API returns for one player.
type PlayerSummary struct {
	PlayerRecord
	GameStats   []TypeStats  `json:"game_stats"`
	RecentGames []GameRecord `json:"recent_games"`
}

// Store is the persistence contract consumed by the coordinator and the
// stats API.
type Store interface {
	// UpsertPlayer creates the profile on first sight (rating 1000) or
	// refreshes last-seen on a returning identity.
	UpsertPlayer(ctx context.Context, playerID, name string) (*PlayerRecord, error)

	// RecordGame applies one finalization record in a single transaction:
	// game row, move log, both per-type stat rows, both league rows and
	// both lifetime totals. The caller guarantees each record is passed
	// at most once; the game_id primary key rejects accidental replays.
	RecordGame(ctx context.Context, rec *game.Record) error

	PlayerSummary(ctx context.Context, playerID string) (*PlayerSummary, error)
	LeagueTable(ctx context.Context, limit int) ([]Standing, error)
	GameTypeLeaderboard(ctx context.Context, gameType string, limit int) ([]TypeStats, error)

	Close() error
}
