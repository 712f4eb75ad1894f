package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gmkornilov/chess-chronicle-backend/internal/game"
	"github.com/gmkornilov/chess-chronicle-backend/pkg/narrate"
	"github.com/notnil/chess"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// heuristic: a human and an engine will not get this far ahead of the bard
const defaultQueueSize = 100

var (
	ErrNoEngine = errors.New("no engine configured")
	ErrClosed   = errors.New("session is closed")
)

var (
	movesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chronicle_moves_total",
		Help: "Total number of moves applied across sessions.",
	})
	narrationsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chronicle_narrations_dropped_total",
		Help: "Narrations dropped because the session queue was full.",
	})
)

// Searcher picks a move for a position given as FEN, in UCI notation.
type Searcher interface {
	BestMove(fen string) (string, error)
}

type Turn struct {
	Ply         int    `json:"ply"`
	UCI         string `json:"uci"`
	SAN         string `json:"san"`
	Description string `json:"description"`
	Capture     bool   `json:"capture"`
	Check       bool   `json:"check"`
}

type State struct {
	ID                string `json:"id"`
	FEN               string `json:"fen"`
	Turn              string `json:"turn"`
	Outcome           string `json:"outcome"`
	Method            string `json:"method,omitempty"`
	Over              bool   `json:"over"`
	Moves             int    `json:"moves"`
	PendingNarrations int    `json:"pending_narrations"`
	Engine            bool   `json:"engine"`
}

type Option func(*Session)

func WithSearcher(s Searcher) Option {
	return func(sess *Session) {
		sess.searcher = s
	}
}

// WithListener delivers every narrative as it is produced. fn runs on the
// narration goroutine and must hand the text over to whatever owns the display.
func WithListener(fn func(passage string)) Option {
	return func(sess *Session) {
		sess.listener = fn
	}
}

func WithGame(g *game.Game) Option {
	return func(sess *Session) {
		sess.game = g
	}
}

func WithLogger(log *zap.Logger) Option {
	return func(sess *Session) {
		sess.log = log
	}
}

func WithQueueSize(n int) Option {
	return func(sess *Session) {
		sess.queueSize = n
	}
}

// Session is one narrated game. Moves are applied and identities advanced
// synchronously under the session lock; narratives are generated one at a
// time by a background goroutine, so a move never waits for the bard.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu       sync.Mutex
	game     *game.Game
	narrator *narrate.Narrator
	searcher Searcher
	turns    []Turn
	closed   bool

	chronicle *Chronicle
	listener  func(string)
	queueSize int
	queue     chan string
	pending   atomic.Int32
	done      chan struct{}
	log       *zap.Logger
}

func New(id string, narrator *narrate.Narrator, opts ...Option) *Session {
	s := &Session{
		ID:        id,
		CreatedAt: time.Now(),
		narrator:  narrator,
		chronicle: NewChronicle(),
		queueSize: defaultQueueSize,
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.game == nil {
		s.game = game.New()
	}
	s.narrator.StartFrom(s.game.Position())
	if s.log == nil {
		s.log = zap.NewNop()
	}
	s.log = s.log.With(zap.String("game_id", id))
	s.queue = make(chan string, s.queueSize)

	go s.narrate()
	return s
}

// Play applies the move written in UCI notation.
func (s *Session) Play(uci string) (Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return Turn{}, ErrClosed
	}

	move, err := s.game.Resolve(uci)
	if err != nil {
		return Turn{}, err
	}
	return s.apply(move)
}

// EngineMove asks the searcher for a move and plays it.
func (s *Session) EngineMove() (Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return Turn{}, ErrClosed
	}
	if s.searcher == nil {
		return Turn{}, ErrNoEngine
	}
	if s.game.Over() {
		return Turn{}, game.ErrGameOver
	}

	best, err := s.searcher.BestMove(s.game.FEN())
	if err != nil {
		return Turn{}, fmt.Errorf("engine: %w", err)
	}
	move, err := s.game.Resolve(best)
	if err != nil {
		return Turn{}, fmt.Errorf("engine suggested %s: %w", best, err)
	}
	return s.apply(move)
}

func (s *Session) apply(move *chess.Move) (Turn, error) {
	before := s.game.Position()
	if err := s.game.Apply(move); err != nil {
		return Turn{}, err
	}
	c, desc := s.narrator.Describe(before, move)
	movesTotal.Inc()

	turn := Turn{
		Ply:         len(s.turns) + 1,
		UCI:         move.String(),
		SAN:         chess.AlgebraicNotation{}.Encode(before, move),
		Description: desc,
		Capture:     c.IsCapture,
		Check:       c.IsCheck,
	}
	s.turns = append(s.turns, turn)
	s.enqueue(desc)
	return turn, nil
}

func (s *Session) enqueue(desc string) {
	s.pending.Add(1)
	select {
	case s.queue <- desc:
	default:
		s.pending.Add(-1)
		narrationsDropped.Inc()
		s.log.Warn("narration queue full, dropping narration", zap.String("description", desc))
	}
}

func (s *Session) narrate() {
	defer close(s.done)
	for desc := range s.queue {
		passage := s.narrator.Narrate(context.Background(), desc)
		s.chronicle.Append(passage)
		if s.listener != nil {
			s.listener(passage)
		}
		s.pending.Add(-1)
	}
}

// Resync replaces the game with the position in fen, for feeds whose moves
// can no longer be applied to the tracked game. Identities are kept as they
// are and may no longer match the board.
func (s *Session) Resync(fen string) error {
	g, err := game.FromFEN(fen)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.game = g
	s.log.Warn("game resynchronised from feed", zap.String("fen", g.FEN()))
	return nil
}

// Close stops accepting moves and waits for queued narrations to finish.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		<-s.done
		return
	}
	s.closed = true
	close(s.queue)
	s.mu.Unlock()
	<-s.done
}

func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := State{
		ID:                s.ID,
		FEN:               s.game.FEN(),
		Turn:              s.game.Turn().Name(),
		Outcome:           string(s.game.Outcome()),
		Over:              s.game.Over(),
		Moves:             len(s.turns),
		PendingNarrations: int(s.pending.Load()),
		Engine:            s.searcher != nil,
	}
	if st.Over {
		st.Method = methodName(s.game.Method())
	}
	return st
}

func (s *Session) Turns() []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := make([]Turn, len(s.turns))
	copy(res, s.turns)
	return res
}

func (s *Session) PGN() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.game.PGN()
}

func (s *Session) Chronicle() []string {
	return s.chronicle.Passages()
}

func (s *Session) Pending() int {
	return int(s.pending.Load())
}

func methodName(m chess.Method) string {
	switch m {
	case chess.Checkmate:
		return "checkmate"
	case chess.Resignation:
		return "resignation"
	case chess.DrawOffer:
		return "draw offer"
	case chess.Stalemate:
		return "stalemate"
	case chess.ThreefoldRepetition:
		return "threefold repetition"
	case chess.FivefoldRepetition:
		return "fivefold repetition"
	case chess.FiftyMoveRule:
		return "fifty move rule"
	case chess.SeventyFiveMoveRule:
		return "seventy-five move rule"
	case chess.InsufficientMaterial:
		return "insufficient material"
	}
	return ""
}
