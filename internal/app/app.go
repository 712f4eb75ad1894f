// Package app wires configuration into the pieces the commands share.
package app

import (
	"github.com/gmkornilov/chess-chronicle-backend/internal/config"
	"github.com/gmkornilov/chess-chronicle-backend/internal/dao"
	"github.com/gmkornilov/chess-chronicle-backend/internal/db"
	"github.com/gmkornilov/chess-chronicle-backend/internal/engine"
	"github.com/gmkornilov/chess-chronicle-backend/internal/llm"
	"github.com/gmkornilov/chess-chronicle-backend/internal/logger"
	"github.com/gmkornilov/chess-chronicle-backend/pkg/narrate"
	"go.uber.org/zap"
)

func Logger(cfg *config.Configuration) (*zap.Logger, error) {
	return logger.New(logger.Config{
		Level:    cfg.Log.Level,
		Encoding: cfg.Log.Encoding,
	})
}

// NarratorFactory returns a constructor of narrators, one per game. Every
// narrator owns its registry and history.
func NarratorFactory(cfg *config.Configuration, log *zap.Logger) (func() *narrate.Narrator, error) {
	newBackend, err := llm.NewFactory(llm.Config{
		Backend: cfg.Narrator.Backend,
		BaseURL: cfg.Narrator.BaseURL,
		Model:   cfg.Narrator.Model,
		Timeout: cfg.Narrator.Timeout,
	}, log)
	if err != nil {
		return nil, err
	}

	genCfg := narrate.GeneratorConfig{
		UseMock:       cfg.Narrator.UseMock,
		APICredential: cfg.Narrator.APIKey,
		MockDelay:     cfg.Narrator.MockDelay,
	}
	if genCfg.UseMock && genCfg.MockDelay == 0 {
		genCfg.MockDelay = narrate.DefaultMockDelay
	}
	return func() *narrate.Narrator {
		return narrate.NewNarrator(narrate.NewGenerator(genCfg, newBackend, log), log)
	}, nil
}

// Engine starts Stockfish when a path is configured. A nil engine means moves
// can only be played by hand.
func Engine(cfg *config.Configuration, log *zap.Logger) (*engine.Engine, error) {
	if cfg.Stockfish.Path == "" {
		log.Info("no stockfish configured, engine moves disabled")
		return nil, nil
	}
	depth := cfg.Stockfish.Depth
	if depth <= 0 {
		depth = engine.DefaultDepth
	}
	e, err := engine.New(cfg.Stockfish.Path, depth, cfg.Stockfish.Args...)
	if err != nil {
		return nil, err
	}
	log.Info("stockfish started", zap.String("path", cfg.Stockfish.Path), zap.Int("depth", depth))
	return e, nil
}

// Archive connects to MongoDB when an address is configured. The returned
// close func is never nil.
func Archive(cfg *config.Configuration, log *zap.Logger) (dao.ChronicleRepository, func(), error) {
	if cfg.Database.Address == "" {
		log.Info("no mongo configured, chronicles will not be archived")
		return nil, func() {}, nil
	}
	client, err := db.NewDbClient(cfg)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if err := client.Close(); err != nil {
			log.Warn("cannot close mongo client", zap.Error(err))
		}
	}
	return dao.NewChronicleRepository(client), closeFn, nil
}
