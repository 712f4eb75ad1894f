package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gmkornilov/chess-chronicle-backend/internal/app"
	"github.com/gmkornilov/chess-chronicle-backend/internal/config"
	"github.com/gmkornilov/chess-chronicle-backend/internal/dao"
	"github.com/gmkornilov/chess-chronicle-backend/internal/feed"
	"github.com/gmkornilov/chess-chronicle-backend/internal/game"
	"github.com/gmkornilov/chess-chronicle-backend/internal/session"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.InitConfig()
	if err != nil {
		panic(err)
	}
	log, err := app.Logger(cfg)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	newNarrator, err := app.NarratorFactory(cfg, log)
	if err != nil {
		log.Fatal("cannot set up narrator", zap.Error(err))
	}
	archive, closeArchive, err := app.Archive(cfg, log)
	if err != nil {
		log.Fatal("cannot connect to mongo", zap.Error(err))
	}
	defer closeArchive()

	newSession := func(start feed.GameStart) (*session.Session, error) {
		g, err := game.FromFEN(start.Fen)
		if err != nil {
			return nil, err
		}
		fmt.Printf("\n=== %s vs %s ===\n%s\n", start.White(), start.Black(), session.OpeningLine)
		return session.New(start.Id, newNarrator(),
			session.WithGame(g),
			session.WithLogger(log),
			session.WithListener(func(passage string) { fmt.Println(passage) }),
		), nil
	}
	onFinish := func(s *session.Session) {
		if archive == nil {
			return
		}
		if err := archive.InsertChronicle(context.Background(), dao.FromSession(s)); err != nil {
			log.Error("cannot archive game", zap.String("game_id", s.ID), zap.Error(err))
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = feed.NewLiveFeed(feed.LichessTVFeed, newSession, onFinish, log).Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Error("live feed stopped", zap.Error(err))
	}
}
