package game

import (
	"errors"
	"fmt"
	"strings"

	"github.com/notnil/chess"
)

var (
	ErrIllegalMove = errors.New("illegal move")
	ErrGameOver    = errors.New("game is over")
)

// Game is the authoritative state of one game. It decides legality; nothing
// else in the repository does.
type Game struct {
	g *chess.Game
}

func New() *Game {
	return &Game{g: chess.NewGame()}
}

// FromFEN starts a game from fen. Feeds that only send piece placement and
// side to move are padded with empty castling/en passant fields.
func FromFEN(fen string) (*Game, error) {
	fenFunc, err := chess.FEN(NormalizeFEN(fen))
	if err != nil {
		return nil, err
	}
	return &Game{g: chess.NewGame(fenFunc)}, nil
}

func NormalizeFEN(fen string) string {
	fields := strings.Fields(fen)
	defaults := []string{"", "w", "-", "-", "0", "1"}
	for len(fields) < len(defaults) && len(fields) > 0 {
		fields = append(fields, defaults[len(fields)])
	}
	return strings.Join(fields, " ")
}

func (g *Game) Position() *chess.Position {
	return g.g.Position()
}

func (g *Game) FEN() string {
	return g.g.FEN()
}

func (g *Game) Turn() chess.Color {
	return g.g.Position().Turn()
}

func (g *Game) Over() bool {
	return g.g.Outcome() != chess.NoOutcome
}

func (g *Game) Outcome() chess.Outcome {
	return g.g.Outcome()
}

func (g *Game) Method() chess.Method {
	return g.g.Method()
}

// PGN renders the moves played so far.
func (g *Game) PGN() string {
	return g.g.String()
}

func (g *Game) Moves() []*chess.Move {
	return g.g.Moves()
}

// Resolve finds the legal move written as uci. A pawn reaching the last rank
// without a promotion letter is promoted to a queen.
func (g *Game) Resolve(uci string) (*chess.Move, error) {
	if g.Over() {
		return nil, ErrGameOver
	}
	uci = strings.ToLower(strings.TrimSpace(uci))
	if len(uci) < 4 || len(uci) > 5 {
		return nil, fmt.Errorf("%w: %q is not a UCI move", ErrIllegalMove, uci)
	}

	var queened *chess.Move
	for _, m := range g.g.ValidMoves() {
		s := m.String()
		if s == uci {
			return m, nil
		}
		if len(uci) == 4 && s == uci+"q" {
			queened = m
		}
	}
	if queened != nil {
		return queened, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrIllegalMove, uci)
}

// Apply plays a move returned by Resolve.
func (g *Game) Apply(m *chess.Move) error {
	if err := g.g.Move(m); err != nil {
		return fmt.Errorf("%w: %v", ErrIllegalMove, err)
	}
	return nil
}
