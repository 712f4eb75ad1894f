package narrate

import "github.com/notnil/chess"

// Registry maps board squares to the character identities standing on them.
// It mirrors the board but does not own it: entries can fall out of sync with
// the real occupancy and lookups are best-effort.
type Registry struct {
	names map[chess.Square]string
}

func NewRegistry() *Registry {
	names := make(map[chess.Square]string, len(startingIdentities))
	for _, id := range startingIdentities {
		names[id.square] = id.name
	}
	return &Registry{names: names}
}

// NewRegistryFor names only the pieces of pos that still stand on their
// starting square. From the standard position this equals NewRegistry.
func NewRegistryFor(pos *chess.Position) *Registry {
	board := pos.Board()
	names := make(map[chess.Square]string, len(startingIdentities))
	for _, id := range startingIdentities {
		if board.Piece(id.square) == id.piece {
			names[id.square] = id.name
		}
	}
	return &Registry{names: names}
}

func (r *Registry) Lookup(sq chess.Square) (string, bool) {
	name, ok := r.names[sq]
	return name, ok
}

// LookupOr returns the identity on sq or fallback when the square is unnamed.
func (r *Registry) LookupOr(sq chess.Square, fallback string) string {
	if name, ok := r.names[sq]; ok {
		return name
	}
	return fallback
}

func (r *Registry) Len() int {
	return len(r.names)
}

// Relocate moves the identity on from to to in one step, overwriting whatever
// identity stood on to. An unnamed source relocates fallback instead.
func (r *Registry) Relocate(from, to chess.Square, fallback string) {
	name := r.LookupOr(from, fallback)
	delete(r.names, from)
	r.names[to] = name
}

// Advance applies a move that has already been accepted as legal. Castling
// moves the rook's identity along with the king's.
func (r *Registry) Advance(m *chess.Move) {
	from, to := m.S1(), m.S2()
	r.Relocate(from, to, UnknownSoldier)
	for _, c := range castleRooks {
		if from == c.king && to == c.kingTo {
			r.Relocate(c.rook, c.rookTo, UnknownRook)
			return
		}
	}
}

// Snapshot returns a copy of the current square to identity mapping.
func (r *Registry) Snapshot() map[chess.Square]string {
	res := make(map[chess.Square]string, len(r.names))
	for sq, name := range r.names {
		res[sq] = name
	}
	return res
}
