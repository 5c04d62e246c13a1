package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load(false, "8080")

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "data/matchhub.db", cfg.DatabasePath)
	assert.Equal(t, 50, cfg.QueryLimit)
	assert.Contains(t, cfg.GameTypes, "chess")
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("DATABASE_PATH", "/tmp/test.db")
	t.Setenv("ENGINE_URL", "http://localhost:5001")
	t.Setenv("GAME_TYPES", "chess, go ,,shogi")
	t.Setenv("API_KEYS", "k1,k2")
	t.Setenv("QUERY_LIMIT", "25")

	cfg := Load(true, "9000")

	assert.True(t, cfg.Debug)
	assert.Equal(t, "/tmp/test.db", cfg.DatabasePath)
	assert.Equal(t, "http://localhost:5001", cfg.EngineURL)
	assert.Equal(t, []string{"chess", "go", "shogi"}, cfg.GameTypes)
	assert.Equal(t, []string{"k1", "k2"}, cfg.APIKeys)
	assert.Equal(t, 25, cfg.QueryLimit)
}

func TestLoadIgnoresBadQueryLimit(t *testing.T) {
	t.Setenv("QUERY_LIMIT", "not-a-number")
	assert.Equal(t, 50, Load(false, "8080").QueryLimit)

	t.Setenv("QUERY_LIMIT", "-3")
	assert.Equal(t, 50, Load(false, "8080").QueryLimit)
}

func TestKnownGameType(t *testing.T) {
	cfg := &Config{GameTypes: []string{"chess", "go"}}

	assert.True(t, cfg.KnownGameType("chess"))
	assert.False(t, cfg.KnownGameType("poker"))
	assert.False(t, cfg.KnownGameType(""))
}
