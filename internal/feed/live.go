package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gmkornilov/chess-chronicle-backend/internal/game"
	"github.com/gmkornilov/chess-chronicle-backend/internal/session"
	"go.uber.org/zap"
)

const (
	LichessTVFeed  = "https://lichess.org/api/tv/feed"
	reconnectDelay = 5 * time.Second
)

// SessionFactory starts a narrated session for a featured game.
type SessionFactory func(start GameStart) (*session.Session, error)

// LiveFeed narrates whatever game Lichess TV is featuring. Every featured game
// gets its own session; the previous one is handed to onFinish.
type LiveFeed struct {
	url        string
	client     *http.Client
	newSession SessionFactory
	onFinish   func(*session.Session)
	log        *zap.Logger

	current *session.Session
}

func NewLiveFeed(url string, newSession SessionFactory, onFinish func(*session.Session), log *zap.Logger) *LiveFeed {
	if url == "" {
		url = LichessTVFeed
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &LiveFeed{
		url:        url,
		client:     &http.Client{},
		newSession: newSession,
		onFinish:   onFinish,
		log:        log,
	}
}

// Run follows the feed until ctx is done, reconnecting when the stream ends.
func (l *LiveFeed) Run(ctx context.Context) error {
	defer l.finish()
	for {
		err := l.Follow(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			l.log.Warn("tv feed interrupted", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(reconnectDelay):
		}
	}
}

// Follow reads one connection of the feed until it ends.
func (l *LiveFeed) Follow(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url, nil)
	if err != nil {
		return err
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("tv feed returned %s", resp.Status)
	}

	d := json.NewDecoder(resp.Body)
	for d.More() {
		var cur LiveMessage
		if err := d.Decode(&cur); err != nil {
			return fmt.Errorf("decode feed message: %w", err)
		}
		if err := l.handle(cur); err != nil {
			return err
		}
	}
	return nil
}

func (l *LiveFeed) handle(msg LiveMessage) error {
	switch msg.Action {
	case actionFeatured:
		var start GameStart
		if err := json.Unmarshal(msg.Data, &start); err != nil {
			return fmt.Errorf("unmarshal featured game: %w", err)
		}
		l.finish()
		s, err := l.newSession(start)
		if err != nil {
			return fmt.Errorf("start session for %s: %w", start.Id, err)
		}
		l.current = s
		l.log.Info("new featured game",
			zap.String("lichess_id", start.Id),
			zap.String("white", start.White()),
			zap.String("black", start.Black()),
			zap.String("fen", start.Fen),
		)

	case actionFen:
		var turn GameTurn
		if err := json.Unmarshal(msg.Data, &turn); err != nil {
			return fmt.Errorf("unmarshal feed position: %w", err)
		}
		if l.current == nil || turn.TurnUciNotation == "" {
			return nil
		}
		played, err := l.current.Play(turn.TurnUciNotation)
		switch {
		case err == nil:
			l.log.Debug("feed move narrated", zap.String("move", played.UCI), zap.String("description", played.Description))
		case errors.Is(err, game.ErrIllegalMove), errors.Is(err, game.ErrGameOver):
			if err := l.current.Resync(turn.Fen); err != nil {
				l.log.Warn("cannot resync from feed position", zap.String("fen", turn.Fen), zap.Error(err))
			}
		default:
			return err
		}

	default:
		l.log.Warn("unknown action type from lichess", zap.String("action", msg.Action))
	}
	return nil
}

func (l *LiveFeed) finish() {
	if l.current == nil {
		return
	}
	l.current.Close()
	if l.onFinish != nil {
		l.onFinish(l.current)
	}
	l.current = nil
}

// Current returns the session of the game being followed, if any.
func (l *LiveFeed) Current() *session.Session {
	return l.current
}
