package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"

	"github.com/gmkornilov/chess-chronicle-backend/pkg/narrate"
	"github.com/notnil/chess"
	"go.uber.org/zap"
)

const LichessURL = "https://lichess.org"

type UserGamesReplayFactory struct {
	BaseURL     string
	NewNarrator func() *narrate.Narrator
	Client      *http.Client
	Log         *zap.Logger
}

func NewUserGamesReplayFactory(newNarrator func() *narrate.Narrator, log *zap.Logger) *UserGamesReplayFactory {
	if log == nil {
		log = zap.NewNop()
	}
	return &UserGamesReplayFactory{
		BaseURL:     LichessURL,
		NewNarrator: newNarrator,
		Client:      &http.Client{},
		Log:         log,
	}
}

func (f *UserGamesReplayFactory) CreateUserGamesReplay(username string, last int) *UserGamesReplay {
	return &UserGamesReplay{
		username:    username,
		last:        last,
		baseURL:     f.BaseURL,
		newNarrator: f.NewNarrator,
		client:      f.Client,
		log:         f.Log.With(zap.String("username", username)),
	}
}

// UserGamesReplay narrates the last games of a Lichess user.
type UserGamesReplay struct {
	mu       sync.Mutex
	games    []narrate.GameChronicle
	err      error
	done     bool
	progress float64

	username    string
	last        int
	baseURL     string
	newNarrator func() *narrate.Narrator
	client      *http.Client
	log         *zap.Logger
}

func (r *UserGamesReplay) Done() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.done
}

func (r *UserGamesReplay) StartWork() {
	go r.Replay(context.Background())
}

func (r *UserGamesReplay) Result() interface{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.games
}

func (r *UserGamesReplay) Progress() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.progress
}

func (r *UserGamesReplay) Error() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

func (r *UserGamesReplay) fail(err error) {
	r.log.Warn("user games replay failed", zap.Error(err))
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
	r.done = true
}

func (r *UserGamesReplay) Replay(ctx context.Context) {
	games, err := r.fetch(ctx)
	if err != nil {
		r.fail(err)
		return
	}

	res := make([]narrate.GameChronicle, 0, len(games))
	for i, game := range games {
		events, err := narrate.ReplayGame(ctx, r.newNarrator(), game)
		if err != nil {
			r.fail(fmt.Errorf("error narrating game %d of %s: %w", i+1, r.username, err))
			return
		}
		res = append(res, narrate.ChronicleOf(game, events))

		r.mu.Lock()
		r.progress = float64(i+1) / float64(len(games))
		r.mu.Unlock()
	}

	r.log.Info("user games replayed", zap.Int("games", len(res)))
	r.mu.Lock()
	defer r.mu.Unlock()
	r.games = res
	r.progress = 1
	r.done = true
}

func (r *UserGamesReplay) fetch(ctx context.Context) ([]*chess.Game, error) {
	u := fmt.Sprintf("%s/api/games/user/%s?max=%s", r.baseURL, url.PathEscape(r.username), strconv.Itoa(r.last))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/x-chess-pgn")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error fetching %s games: %w", r.username, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("user %s doesn't exist on lichess", r.username)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("error fetching %s games: %s", r.username, resp.Status)
	}

	scanner := chess.NewScanner(resp.Body)
	games := make([]*chess.Game, 0, r.last)
	for scanner.Scan() {
		games = append(games, scanner.Next())
	}
	if err := scanner.Err(); err != nil && err != io.EOF {
		return nil, fmt.Errorf("error reading %s games: %w", r.username, err)
	}
	return games, nil
}
