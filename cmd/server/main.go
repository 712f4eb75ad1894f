package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gmkornilov/chess-chronicle-backend/internal/api"
	"github.com/gmkornilov/chess-chronicle-backend/internal/app"
	"github.com/gmkornilov/chess-chronicle-backend/internal/config"
	"github.com/gmkornilov/chess-chronicle-backend/internal/feed"
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

	eng, err := app.Engine(cfg, log)
	if err != nil {
		log.Fatal("cannot start stockfish", zap.Error(err))
	}
	var searcher session.Searcher
	if eng != nil {
		defer eng.Close()
		searcher = eng
	}

	archive, closeArchive, err := app.Archive(cfg, log)
	if err != nil {
		log.Fatal("cannot connect to mongo", zap.Error(err))
	}
	defer closeArchive()

	games := api.NewGameApi(func(id string, opts ...session.Option) *session.Session {
		opts = append(opts, session.WithLogger(log))
		if searcher != nil {
			opts = append(opts, session.WithSearcher(searcher))
		}
		return session.New(id, newNarrator(), opts...)
	}, archive, log)
	defer games.Close()

	replays := api.NewReplayApi(feed.NewUserGamesReplayFactory(newNarrator, log))

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:           api.NewRouter(games, replays, cfg.Server.AllowedOrigins, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server shutdown failed", zap.Error(err))
	}
}
