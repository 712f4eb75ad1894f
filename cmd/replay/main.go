package main

import (
	"context"
	"fmt"
	"os"

	"github.com/gmkornilov/chess-chronicle-backend/internal/app"
	"github.com/gmkornilov/chess-chronicle-backend/internal/config"
	"github.com/gmkornilov/chess-chronicle-backend/pkg/narrate"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: replay <games.pgn>")
		os.Exit(2)
	}
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

	reader, err := os.Open(os.Args[1])
	if err != nil {
		log.Fatal("cannot open pgn", zap.Error(err))
	}
	defer reader.Close()

	chronicles, err := narrate.ReplayPGN(context.Background(), newNarrator, reader)
	if err != nil {
		log.Fatal("cannot replay pgn", zap.Error(err))
	}
	for _, c := range chronicles {
		fmt.Printf("%s\n", c)
	}
}
