package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gmkornilov/chess-chronicle-backend/internal/game"
	"github.com/gmkornilov/chess-chronicle-backend/pkg/narrate"
	"github.com/notnil/chess"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mockNarrator() *narrate.Narrator {
	return narrate.NewNarrator(narrate.NewGenerator(narrate.GeneratorConfig{UseMock: true}, nil, nil), nil)
}

// gatedBackend blocks every call until release is closed and records how
// many calls ran at once.
type gatedBackend struct {
	release  chan struct{}
	inFlight atomic.Int32
	maxSeen  atomic.Int32
}

func (b *gatedBackend) Complete(ctx context.Context, req narrate.Request) (string, error) {
	n := b.inFlight.Add(1)
	defer b.inFlight.Add(-1)
	for {
		seen := b.maxSeen.Load()
		if n <= seen || b.maxSeen.CompareAndSwap(seen, n) {
			break
		}
	}
	<-b.release
	return "verse", nil
}

func liveNarrator(b narrate.Backend) *narrate.Narrator {
	g := narrate.NewGenerator(narrate.GeneratorConfig{APICredential: "key"},
		func(string) (narrate.Backend, error) { return b, nil }, nil)
	return narrate.NewNarrator(g, nil)
}

type fakeSearcher struct {
	move string
	err  error
	fens []string
}

func (f *fakeSearcher) BestMove(fen string) (string, error) {
	f.fens = append(f.fens, fen)
	return f.move, f.err
}

func TestPlay(t *testing.T) {
	s := New("g1", mockNarrator())

	turn, err := s.Play("e2e4")
	require.NoError(t, err)
	assert.Equal(t, 1, turn.Ply)
	assert.Equal(t, "e2e4", turn.UCI)
	assert.Equal(t, "e4", turn.SAN)
	assert.Equal(t, "Squire Elric moves to e4.", turn.Description)
	assert.False(t, turn.Capture)
	assert.False(t, turn.Check)

	s.Close()
	assert.Equal(t, []string{OpeningLine, narrate.MockTag + " Squire Elric moves to e4."}, s.Chronicle())

	st := s.Snapshot()
	assert.Equal(t, "g1", st.ID)
	assert.Equal(t, 1, st.Moves)
	assert.Equal(t, "Black", st.Turn)
	assert.Equal(t, 0, st.PendingNarrations)
	assert.False(t, st.Over)
	assert.False(t, st.Engine)
}

func TestPlayIllegalMoveLeavesIdentities(t *testing.T) {
	n := mockNarrator()
	s := New("g1", n)
	defer s.Close()

	_, err := s.Play("e2e5")
	assert.ErrorIs(t, err, game.ErrIllegalMove)
	assert.Empty(t, s.Turns())

	name, ok := n.Registry().Lookup(chess.E2)
	assert.True(t, ok)
	assert.Equal(t, "Squire Elric", name)
}

func TestPlayCaptureAndCheck(t *testing.T) {
	s := New("g1", mockNarrator())
	defer s.Close()

	for _, uci := range []string{"e2e4", "d7d5", "e4d5", "d8d5", "b1c3"} {
		_, err := s.Play(uci)
		require.NoError(t, err)
	}
	turns := s.Turns()
	require.Len(t, turns, 5)
	assert.True(t, turns[2].Capture)
	assert.Equal(t, "Squire Elric CHARGES and SLAUGHTERS Shadow Stalker!", turns[2].Description)
	assert.Equal(t, "Empress Morgana CHARGES and SLAUGHTERS Squire Elric!", turns[3].Description)
	assert.Equal(t, "Sir Valerius (Cavalier) moves to c3. "+
		"Sir Valerius (Cavalier) is now pointing a weapon directly at Empress Morgana!", turns[4].Description)
}

func TestPlayAfterCheckmate(t *testing.T) {
	s := New("g1", mockNarrator())
	defer s.Close()

	for _, uci := range []string{"f2f3", "e7e5", "g2g4", "d8h4"} {
		_, err := s.Play(uci)
		require.NoError(t, err)
	}
	st := s.Snapshot()
	assert.True(t, st.Over)
	assert.Equal(t, "0-1", st.Outcome)
	assert.Equal(t, "checkmate", st.Method)

	_, err := s.Play("e2e4")
	assert.ErrorIs(t, err, game.ErrGameOver)
}

func TestEngineMove(t *testing.T) {
	t.Run("no engine", func(t *testing.T) {
		s := New("g1", mockNarrator())
		defer s.Close()

		_, err := s.EngineMove()
		assert.ErrorIs(t, err, ErrNoEngine)
	})

	t.Run("plays the engine move", func(t *testing.T) {
		searcher := &fakeSearcher{move: "e7e5"}
		s := New("g1", mockNarrator(), WithSearcher(searcher))
		defer s.Close()

		_, err := s.Play("e2e4")
		require.NoError(t, err)
		turn, err := s.EngineMove()
		require.NoError(t, err)
		assert.Equal(t, "Void Walker moves to e5.", turn.Description)
		require.Len(t, searcher.fens, 1)
		assert.Contains(t, searcher.fens[0], " b ")
		assert.True(t, s.Snapshot().Engine)
	})

	t.Run("engine failure", func(t *testing.T) {
		s := New("g1", mockNarrator(), WithSearcher(&fakeSearcher{err: errors.New("crashed")}))
		defer s.Close()

		_, err := s.EngineMove()
		assert.Error(t, err)
		assert.Empty(t, s.Turns())
	})

	t.Run("illegal engine move", func(t *testing.T) {
		s := New("g1", mockNarrator(), WithSearcher(&fakeSearcher{move: "e2e5"}))
		defer s.Close()

		_, err := s.EngineMove()
		assert.ErrorIs(t, err, game.ErrIllegalMove)
	})
}

func TestMovesDoNotWaitForNarration(t *testing.T) {
	backend := &gatedBackend{release: make(chan struct{})}
	s := New("g1", liveNarrator(backend))

	done := make(chan struct{})
	go func() {
		defer close(done)
		for _, uci := range []string{"e2e4", "e7e5", "g1f3"} {
			_, err := s.Play(uci)
			assert.NoError(t, err)
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("moves blocked on narration")
	}
	assert.Equal(t, 3, s.Pending())

	close(backend.release)
	s.Close()
	assert.Equal(t, 0, s.Pending())
	assert.Equal(t, int32(1), backend.maxSeen.Load())
	assert.Len(t, s.Chronicle(), 4)
}

func TestListener(t *testing.T) {
	var mu sync.Mutex
	var got []string
	s := New("g1", mockNarrator(), WithListener(func(p string) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, p)
	}))

	_, err := s.Play("e2e4")
	require.NoError(t, err)
	s.Close()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{narrate.MockTag + " Squire Elric moves to e4."}, got)
}

func TestFullQueueDropsNarration(t *testing.T) {
	backend := &gatedBackend{release: make(chan struct{})}
	s := New("g1", liveNarrator(backend), WithQueueSize(1))

	for _, uci := range []string{"e2e4", "e7e5", "g1f3", "b8c6"} {
		_, err := s.Play(uci)
		require.NoError(t, err)
	}
	assert.Len(t, s.Turns(), 4)
	assert.LessOrEqual(t, s.Pending(), 2)

	close(backend.release)
	s.Close()
	assert.Less(t, len(s.Chronicle()), 5)
}

func TestClosedSession(t *testing.T) {
	s := New("g1", mockNarrator())
	s.Close()
	s.Close()

	_, err := s.Play("e2e4")
	assert.ErrorIs(t, err, ErrClosed)
}

func TestResync(t *testing.T) {
	s := New("g1", mockNarrator())
	defer s.Close()

	_, err := s.Play("e2e4")
	require.NoError(t, err)
	require.NoError(t, s.Resync("rnbqkbnr/pppp1ppp/8/4p3/4P3/8/PPPP1PPP/RNBQKBNR w"))

	assert.Equal(t, "rnbqkbnr/pppp1ppp/8/4p3/4P3/8/PPPP1PPP/RNBQKBNR w - - 0 1", s.Snapshot().FEN)
	turn, err := s.Play("g1f3")
	require.NoError(t, err)
	assert.Contains(t, turn.Description, "Sir Galahad (Cavalier) moves to f3.")

	assert.Error(t, s.Resync("not a fen"))
}

func TestPlayFromFENNamesOnlyMatchingPieces(t *testing.T) {
	g, err := game.FromFEN("r1bqkbnr/pppppppp/8/8/8/8/PPnPPPPP/RNBQKBNR w KQkq - 0 1")
	require.NoError(t, err)
	n := mockNarrator()
	s := New("g1", n, WithGame(g))
	defer s.Close()

	turn, err := s.Play("d1c2")
	require.NoError(t, err)
	assert.True(t, turn.Capture)
	assert.Equal(t, "Queen Aurelia moves to c2. "+
		"Queen Aurelia is now pointing a weapon directly at Goblin Spy!", turn.Description)

	name, ok := n.Registry().Lookup(chess.C2)
	assert.True(t, ok)
	assert.Equal(t, "Queen Aurelia", name)
}
