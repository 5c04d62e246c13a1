// Package config holds the runtime configuration of the server
package config

import (
	"os"
	"strconv"
	"strings"
)

// defaultGameTypes lists the game types the matchmaker accepts when
// GAME_TYPES is not configured.
var defaultGameTypes = []string{"chess", "checkers", "go", "gomoku", "shogi"}

// Config carries every runtime setting. Flags take precedence for debug and
// port; everything else comes from the environment (a .env file is loaded by
// main before Load runs).
type Config struct {
	Debug bool
	Port  string

	// DatabasePath is the SQLite file backing the statistics store.
	DatabasePath string

	// EngineURL is the base URL of the external move-suggestion backend.
	// Empty means the engine proxy stays in its unavailable state.
	EngineURL string

	// GameTypes are the accepted values for a join request.
	GameTypes []string

	// APIKeys guard the statistics endpoints. Empty means open access.
	APIKeys []string

	// QueryLimit caps league table and leaderboard result counts.
	QueryLimit int
}

// Load builds a Config from the environment on top of the given flag values.
func Load(debug bool, port string) *Config {
	cfg := &Config{
		Debug:        debug,
		Port:         port,
		DatabasePath: "data/matchhub.db",
		GameTypes:    defaultGameTypes,
		QueryLimit:   50,
	}

	if v := strings.TrimSpace(os.Getenv("DATABASE_PATH")); v != "" {
		cfg.DatabasePath = v
	}
	cfg.EngineURL = strings.TrimSpace(os.Getenv("ENGINE_URL"))

	if v := strings.TrimSpace(os.Getenv("GAME_TYPES")); v != "" {
		cfg.GameTypes = splitList(v)
	}
	if v := strings.TrimSpace(os.Getenv("API_KEYS")); v != "" {
		cfg.APIKeys = splitList(v)
	}
	if v := strings.TrimSpace(os.Getenv("QUERY_LIMIT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.QueryLimit = n
		}
	}

	return cfg
}

// KnownGameType reports whether the matchmaker accepts the given game type.
func (c *Config) KnownGameType(gameType string) bool {
	for _, t := range c.GameTypes {
		if t == gameType {
			return true
		}
	}
	return false
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
