package narrate

import (
	"strings"

	"github.com/notnil/chess"
)

// Classification is the per-move analysis that narration is composed from.
type Classification struct {
	Actor       string
	Victim      string // empty when the destination had no known identity
	Destination chess.Square
	IsCapture   bool
	IsCheck     bool
	// Threatened lists the enemy identities attacked by the moved piece, in
	// attacked-square order.
	Threatened []string
	// Threat is the first threatened identity that is not low value, if any.
	Threat string
}

// Classify analyses move against the position it is played from. before is
// not modified; the resulting position is derived with Update. The registry
// must still describe before, so Classify runs ahead of Registry.Advance.
func Classify(before *chess.Position, move *chess.Move, reg *Registry) Classification {
	from, to := move.S1(), move.S2()
	mover := before.Board().Piece(from).Color()

	c := Classification{
		Actor:       reg.LookupOr(from, UnknownActor),
		Destination: to,
	}
	c.Victim, _ = reg.Lookup(to)

	target := before.Board().Piece(to)
	c.IsCapture = (target != chess.NoPiece && target.Color() != mover) || move.HasTag(chess.EnPassant)

	after := before.Update(move).Board()
	c.IsCheck = kingAttacked(after, mover)

	for _, sq := range attackedSquares(after, to) {
		p := after.Piece(sq)
		if p == chess.NoPiece || p.Color() == mover {
			continue
		}
		if name, ok := reg.Lookup(sq); ok {
			c.Threatened = append(c.Threatened, name)
		}
	}
	for _, name := range c.Threatened {
		if !isLowValue(name) {
			c.Threat = name
			break
		}
	}
	return c
}

func isLowValue(name string) bool {
	for _, marker := range lowValueMarkers {
		if strings.Contains(name, marker) {
			return true
		}
	}
	return false
}
