package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitConfigDefaults(t *testing.T) {
	cfg, err := InitConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "openai", cfg.Narrator.Backend)
	assert.Equal(t, 500*time.Millisecond, cfg.Narrator.MockDelay)
	assert.Equal(t, 10, cfg.Stockfish.Depth)
}

func TestInitConfigFromEnv(t *testing.T) {
	t.Setenv("NARRATOR_MOCK", "true")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("STOCKFISH_PATH", "/usr/bin/stockfish")
	t.Setenv("STOCKFISH_ARGS", "-q,--nnue")
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,https://chronicle.example")

	cfg, err := InitConfig()
	require.NoError(t, err)

	assert.True(t, cfg.Narrator.UseMock)
	assert.Equal(t, "sk-test", cfg.Narrator.APIKey)
	assert.Equal(t, "/usr/bin/stockfish", cfg.Stockfish.Path)
	assert.Equal(t, []string{"-q", "--nnue"}, cfg.Stockfish.Args)
	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, []string{"http://localhost:3000", "https://chronicle.example"}, cfg.Server.AllowedOrigins)
}
