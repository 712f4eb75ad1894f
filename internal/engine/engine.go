package engine

import (
	"errors"
	"sync"

	"github.com/freeeve/uci"
)

const (
	DefaultDepth = 10
	hashSize     = 128
)

// ErrNoMove is returned when the engine has no move for the position.
var ErrNoMove = errors.New("engine returned no move")

// Engine is a Stockfish process driven over UCI. Calls are serialised; one
// engine can back several sessions.
type Engine struct {
	mu    sync.Mutex
	e     *uci.Engine
	depth int
}

func New(path string, depth int, arg ...string) (*Engine, error) {
	e, err := uci.NewEngine(path, arg...)
	if err != nil {
		return nil, err
	}

	err = e.SetOptions(uci.Options{
		MultiPV: 1,
		Hash:    hashSize,
		Ponder:  false,
		OwnBook: true,
	})
	if err != nil {
		e.Close()
		return nil, err
	}
	if depth <= 0 {
		depth = DefaultDepth
	}
	return &Engine{e: e, depth: depth}, nil
}

// BestMove returns the engine's choice for fen in UCI notation.
func (e *Engine) BestMove(fen string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.e.SetFEN(fen); err != nil {
		return "", err
	}
	result, err := e.e.GoDepth(e.depth)
	if err != nil {
		return "", err
	}
	if result.BestMove == "" || result.BestMove == "(none)" {
		return "", ErrNoMove
	}
	return result.BestMove, nil
}

func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.e.Close()
}
