package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"matchhub/pkg/game"
)

//go:embed schema.sql
var schema string

// timeLayout is the SQLite-compatible UTC ISO8601 layout used for every
// timestamp column. The Z suffix makes parsing round-trip as UTC.
const timeLayout = "2006-01-02T15:04:05Z"

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTimestamp(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// SQLiteStore implements Store on a single SQLite file. SQLite supports one
// writer at a time, so the pool is capped at a single connection; that also
// serializes concurrent RecordGame calls that share a participant.
type SQLiteStore struct {
	db     *sql.DB
	logger *zap.Logger
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens (or creates) the database at path and applies the
// schema.
func NewSQLiteStore(path string, logger *zap.Logger) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON; PRAGMA journal_mode = WAL; PRAGMA busy_timeout = 5000;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting pragmas: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}

	logger.Info("statistics store ready", zap.String("path", path))
	return &SQLiteStore{db: db, logger: logger}, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// UpsertPlayer creates the profile on first sight or refreshes last-seen.
func (s *SQLiteStore) UpsertPlayer(ctx context.Context, playerID, name string) (*PlayerRecord, error) {
	now := time.Now()

	rec, err := s.playerByID(ctx, playerID)
	if err == nil {
		if _, err := s.db.ExecContext(ctx,
			`UPDATE players SET last_seen = ? WHERE player_id = ?`,
			formatTimestamp(now), playerID,
		); err != nil {
			return nil, fmt.Errorf("refreshing player: %w", err)
		}
		rec.LastSeen = now.UTC().Truncate(time.Second)
		return rec, nil
	}
	if err != sql.ErrNoRows {
		return nil, err
	}

	ts := formatTimestamp(now)
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO players (player_id, player_name, first_seen, last_seen, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		playerID, name, ts, ts, ts,
	); err != nil {
		return nil, fmt.Errorf("creating player: %w", err)
	}

	// Seed the league row so a standings lookup never misses.
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO league_standings (player_id, player_name, last_updated)
		 VALUES (?, ?, ?)`,
		playerID, name, ts,
	); err != nil {
		return nil, fmt.Errorf("seeding league standing: %w", err)
	}

	return &PlayerRecord{
		PlayerID:   playerID,
		PlayerName: name,
		FirstSeen:  parseTimestamp(ts),
		LastSeen:   parseTimestamp(ts),
		Rating:     1000,
	}, nil
}

func (s *SQLiteStore) playerByID(ctx context.Context, playerID string) (*PlayerRecord, error) {
	var (
		rec                 PlayerRecord
		firstSeen, lastSeen string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT player_id, player_name, first_seen, last_seen,
		        total_games, total_wins, total_losses, total_draws, rating
		 FROM players WHERE player_id = ?`, playerID,
	).Scan(&rec.PlayerID, &rec.PlayerName, &firstSeen, &lastSeen,
		&rec.TotalGames, &rec.TotalWins, &rec.TotalLosses, &rec.TotalDraws, &rec.Rating)
	if err != nil {
		return nil, err
	}
	rec.FirstSeen = parseTimestamp(firstSeen)
	rec.LastSeen = parseTimestamp(lastSeen)
	return &rec, nil
}

// RecordGame applies one finalization record in a single transaction.
func (s *SQLiteStore) RecordGame(ctx context.Context, rec *game.Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	duration := int(rec.FinishedAt.Sub(rec.StartedAt).Seconds())
	if duration < 0 {
		duration = 0
	}

	var winner interface{}
	if rec.WinnerID != "" {
		winner = rec.WinnerID
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO games
		 (game_id, game_type, white_id, black_id, white_name, black_name,
		  winner_id, status, move_count, started_at, finished_at, duration_seconds)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.GameID, rec.GameType, rec.White.ID, rec.Black.ID, rec.White.Name, rec.Black.Name,
		winner, string(rec.Status), len(rec.Moves),
		formatTimestamp(rec.StartedAt), formatTimestamp(rec.FinishedAt), duration,
	); err != nil {
		return fmt.Errorf("inserting game: %w", err)
	}

	for i, mv := range rec.Moves {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO game_moves (game_id, move_number, player_id, move_data, timestamp)
			 VALUES (?, ?, ?, ?, ?)`,
			rec.GameID, i+1, mv.PlayerID, string(mv.Payload), formatTimestamp(mv.At),
		); err != nil {
			return fmt.Errorf("inserting move %d: %w", i+1, err)
		}
	}

	// A game without a winner counts as a draw for both aggregates; that
	// keeps games_played == wins+losses+draws on every path, abandonment
	// included.
	for _, side := range []struct {
		p   game.Participant
		opp game.Participant
	}{
		{rec.White, rec.Black},
		{rec.Black, rec.White},
	} {
		won := rec.WinnerID == side.p.ID
		lost := rec.WinnerID == side.opp.ID
		draw := rec.WinnerID == ""

		if err := upsertTypeStats(ctx, tx, side.p.ID, rec.GameType, won, lost, draw); err != nil {
			return err
		}
		if err := upsertStanding(ctx, tx, side.p.ID, side.p.Name, won, lost, draw); err != nil {
			return err
		}
		if err := bumpLifetimeTotals(ctx, tx, side.p.ID, won, lost, draw); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing game record: %w", err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func upsertTypeStats(ctx context.Context, tx *sql.Tx, playerID, gameType string, won, lost, draw bool) error {
	var games, wins, losses, draws int
	err := tx.QueryRowContext(ctx,
		`SELECT games_played, wins, losses, draws FROM player_statistics
		 WHERE player_id = ? AND game_type = ?`, playerID, gameType,
	).Scan(&games, &wins, &losses, &draws)

	now := formatTimestamp(time.Now())

	switch err {
	case nil:
		games++
		wins += boolToInt(won)
		losses += boolToInt(lost)
		draws += boolToInt(draw)
		_, err = tx.ExecContext(ctx,
			`UPDATE player_statistics
			 SET games_played = ?, wins = ?, losses = ?, draws = ?, win_rate = ?, last_played = ?
			 WHERE player_id = ? AND game_type = ?`,
			games, wins, losses, draws, winRate(wins, games), now, playerID, gameType)
	case sql.ErrNoRows:
		games = 1
		wins = boolToInt(won)
		losses = boolToInt(lost)
		draws = boolToInt(draw)
		_, err = tx.ExecContext(ctx,
			`INSERT INTO player_statistics
			 (player_id, game_type, games_played, wins, losses, draws, win_rate, last_played)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			playerID, gameType, games, wins, losses, draws, winRate(wins, games), now)
	}
	if err != nil {
		return fmt.Errorf("updating type stats for %s: %w", playerID, err)
	}
	return nil
}

func upsertStanding(ctx context.Context, tx *sql.Tx, playerID, name string, won, lost, draw bool) error {
	var games, wins, losses, draws int
	err := tx.QueryRowContext(ctx,
		`SELECT total_games, wins, losses, draws FROM league_standings
		 WHERE player_id = ?`, playerID,
	).Scan(&games, &wins, &losses, &draws)

	now := formatTimestamp(time.Now())

	switch err {
	case nil:
		games++
		wins += boolToInt(won)
		losses += boolToInt(lost)
		draws += boolToInt(draw)
		_, err = tx.ExecContext(ctx,
			`UPDATE league_standings
			 SET total_games = ?, wins = ?, losses = ?, draws = ?,
			     win_rate = ?, points = ?, last_updated = ?
			 WHERE player_id = ?`,
			games, wins, losses, draws, winRate(wins, games), points(wins, draws), now, playerID)
	case sql.ErrNoRows:
		games = 1
		wins = boolToInt(won)
		losses = boolToInt(lost)
		draws = boolToInt(draw)
		_, err = tx.ExecContext(ctx,
			`INSERT INTO league_standings
			 (player_id, player_name, total_games, wins, losses, draws, win_rate, points, last_updated)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			playerID, name, games, wins, losses, draws, winRate(wins, games), points(wins, draws), now)
	}
	if err != nil {
		return fmt.Errorf("updating league standing for %s: %w", playerID, err)
	}
	return nil
}

func bumpLifetimeTotals(ctx context.Context, tx *sql.Tx, playerID string, won, lost, draw bool) error {
	if _, err := tx.ExecContext(ctx,
		`UPDATE players
		 SET total_games = total_games + 1,
		     total_wins = total_wins + ?,
		     total_losses = total_losses + ?,
		     total_draws = total_draws + ?
		 WHERE player_id = ?`,
		boolToInt(won), boolToInt(lost), boolToInt(draw), playerID,
	); err != nil {
		return fmt.Errorf("updating lifetime totals for %s: %w", playerID, err)
	}
	return nil
}

func winRate(wins, games int) float64 {
	if games == 0 {
		return 0
	}
	return float64(wins) / float64(games) * 100
}

// points is the league scoring rule: 3 per win, 1 per draw.
func points(wins, draws int) int {
	return wins*3 + draws
}

// PlayerSummary returns the lifetime record, per-type stats and the ten most
// recent games for one player.
func (s *SQLiteStore) PlayerSummary(ctx context.Context, playerID string) (*PlayerSummary, error) {
	rec, err := s.playerByID(ctx, playerID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading player: %w", err)
	}

	summary := &PlayerSummary{PlayerRecord: *rec}

	rows, err := s.db.QueryContext(ctx,
		`SELECT player_id, game_type, games_played, wins, losses, draws, win_rate,
		        COALESCE(last_played, '')
		 FROM player_statistics WHERE player_id = ?
		 ORDER BY games_played DESC`, playerID)
	if err != nil {
		return nil, fmt.Errorf("loading type stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			st         TypeStats
			lastPlayed string
		)
		if err := rows.Scan(&st.PlayerID, &st.GameType, &st.GamesPlayed,
			&st.Wins, &st.Losses, &st.Draws, &st.WinRate, &lastPlayed); err != nil {
			return nil, fmt.Errorf("scanning type stats: %w", err)
		}
		st.LastPlayed = parseTimestamp(lastPlayed)
		summary.GameStats = append(summary.GameStats, st)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	games, err := s.recentGames(ctx, playerID, 10)
	if err != nil {
		return nil, err
	}
	summary.RecentGames = games

	return summary, nil
}

func (s *SQLiteStore) recentGames(ctx context.Context, playerID string, limit int) ([]GameRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT game_id, game_type, white_id, black_id, white_name, black_name,
		        winner_id, status, move_count, started_at, COALESCE(finished_at, ''),
		        COALESCE(duration_seconds, 0)
		 FROM games
		 WHERE white_id = ? OR black_id = ?
		 ORDER BY finished_at DESC
		 LIMIT ?`, playerID, playerID, limit)
	if err != nil {
		return nil, fmt.Errorf("loading recent games: %w", err)
	}
	defer rows.Close()

	var games []GameRecord
	for rows.Next() {
		var (
			g                     GameRecord
			winner                sql.NullString
			startedAt, finishedAt string
		)
		if err := rows.Scan(&g.GameID, &g.GameType, &g.WhiteID, &g.BlackID,
			&g.WhiteName, &g.BlackName, &winner, &g.Status, &g.MoveCount,
			&startedAt, &finishedAt, &g.DurationSeconds); err != nil {
			return nil, fmt.Errorf("scanning game: %w", err)
		}
		g.WinnerID = winner.String
		g.StartedAt = parseTimestamp(startedAt)
		g.FinishedAt = parseTimestamp(finishedAt)
		games = append(games, g)
	}
	return games, rows.Err()
}

// LeagueTable returns the global standings, best first. Only players with at
// least one recorded game appear.
func (s *SQLiteStore) LeagueTable(ctx context.Context, limit int) ([]Standing, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT player_id, player_name, total_games, wins, losses, draws,
		        win_rate, rating, points, last_updated
		 FROM league_standings
		 WHERE total_games > 0
		 ORDER BY points DESC, win_rate DESC, total_games DESC
		 LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("loading league table: %w", err)
	}
	defer rows.Close()

	var standings []Standing
	for rows.Next() {
		var (
			st          Standing
			lastUpdated string
		)
		if err := rows.Scan(&st.PlayerID, &st.PlayerName, &st.TotalGames,
			&st.Wins, &st.Losses, &st.Draws, &st.WinRate, &st.Rating,
			&st.Points, &lastUpdated); err != nil {
			return nil, fmt.Errorf("scanning standing: %w", err)
		}
		st.LastUpdated = parseTimestamp(lastUpdated)
		standings = append(standings, st)
	}
	return standings, rows.Err()
}

// GameTypeLeaderboard returns the per-type rows ordered by win rate, then
// games played.
func (s *SQLiteStore) GameTypeLeaderboard(ctx context.Context, gameType string, limit int) ([]TypeStats, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT ps.player_id, p.player_name, ps.game_type, ps.games_played,
		        ps.wins, ps.losses, ps.draws, ps.win_rate, COALESCE(ps.last_played, '')
		 FROM player_statistics ps
		 JOIN players p ON ps.player_id = p.player_id
		 WHERE ps.game_type = ? AND ps.games_played > 0
		 ORDER BY ps.win_rate DESC, ps.games_played DESC
		 LIMIT ?`, gameType, limit)
	if err != nil {
		return nil, fmt.Errorf("loading leaderboard: %w", err)
	}
	defer rows.Close()

	var board []TypeStats
	for rows.Next() {
		var (
			st         TypeStats
			lastPlayed string
		)
		if err := rows.Scan(&st.PlayerID, &st.PlayerName, &st.GameType,
			&st.GamesPlayed, &st.Wins, &st.Losses, &st.Draws, &st.WinRate,
			&lastPlayed); err != nil {
			return nil, fmt.Errorf("scanning leaderboard row: %w", err)
		}
		st.LastPlayed = parseTimestamp(lastPlayed)
		board = append(board, st)
	}
	return board, rows.Err()
}
