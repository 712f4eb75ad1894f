package app

import (
	"context"
	"testing"

	"github.com/gmkornilov/chess-chronicle-backend/internal/config"
	"github.com/gmkornilov/chess-chronicle-backend/pkg/narrate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNarratorFactory(t *testing.T) {
	var cfg config.Configuration
	cfg.Narrator.UseMock = true
	cfg.Narrator.MockDelay = 1

	newNarrator, err := NarratorFactory(&cfg, zap.NewNop())
	require.NoError(t, err)

	a, b := newNarrator(), newNarrator()
	assert.NotSame(t, a.Registry(), b.Registry())
	assert.True(t, a.Generator().Mock())
	assert.Equal(t, narrate.MockTag+" x", a.Narrate(context.Background(), "x"))
}

func TestNarratorFactoryUnknownBackend(t *testing.T) {
	var cfg config.Configuration
	cfg.Narrator.Backend = "telepathy"

	_, err := NarratorFactory(&cfg, zap.NewNop())
	assert.Error(t, err)
}

func TestOptionalPieces(t *testing.T) {
	var cfg config.Configuration

	e, err := Engine(&cfg, zap.NewNop())
	require.NoError(t, err)
	assert.Nil(t, e)

	repo, closeFn, err := Archive(&cfg, zap.NewNop())
	require.NoError(t, err)
	assert.Nil(t, repo)
	assert.NotPanics(t, closeFn)
}
