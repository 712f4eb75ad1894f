package narrate

import (
	"context"
	"fmt"
	"io"

	"github.com/notnil/chess"
)

// ReplayGame narrates every move of g in order with a fresh narrator. Games
// set up from a FEN only name the pieces still on their starting squares.
func ReplayGame(ctx context.Context, n *Narrator, g *chess.Game) ([]Event, error) {
	moves := g.Moves()
	positions := g.Positions()
	if len(positions) < len(moves) {
		return nil, fmt.Errorf("game has %d moves but only %d positions", len(moves), len(positions))
	}

	if len(positions) > 0 {
		n.StartFrom(positions[0])
	}

	res := make([]Event, 0, len(moves))
	for i, move := range moves {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		before := positions[i]
		_, desc := n.Describe(before, move)
		res = append(res, Event{
			Ply:         i + 1,
			UCI:         chess.UCINotation{}.Encode(before, move),
			SAN:         chess.AlgebraicNotation{}.Encode(before, move),
			Description: desc,
			Narrative:   n.Narrate(ctx, desc),
		})
	}
	return res, nil
}

// ReplayPGN narrates every game of a PGN stream. newNarrator is called once
// per game so identities never leak between games.
func ReplayPGN(ctx context.Context, newNarrator func() *Narrator, r io.Reader) ([]GameChronicle, error) {
	scanner := chess.NewScanner(r)

	res := make([]GameChronicle, 0)
	for scanner.Scan() {
		game := scanner.Next()
		events, err := ReplayGame(ctx, newNarrator(), game)
		if err != nil {
			return nil, err
		}
		res = append(res, ChronicleOf(game, events))
	}
	if err := scanner.Err(); err != nil && err != io.EOF {
		return nil, err
	}
	return res, nil
}

// ChronicleOf attaches the game's headers to its narrated events.
func ChronicleOf(game *chess.Game, events []Event) GameChronicle {
	tag := func(key string) string {
		if pair := game.GetTagPair(key); pair != nil {
			return pair.Value
		}
		return ""
	}
	return GameChronicle{
		White:  tag("White"),
		Black:  tag("Black"),
		Date:   tag("Date"),
		Result: string(game.Outcome()),
		Events: events,
	}
}
