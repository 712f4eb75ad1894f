package narrate

import "github.com/notnil/chess"

var (
	knightSteps = [][2]int{{1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}, {-2, 1}, {-1, 2}}
	kingSteps   = [][2]int{{1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}, {0, -1}, {1, -1}}
	rookRays    = [][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	bishopRays  = [][2]int{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
)

func squareAt(file, rank int) (chess.Square, bool) {
	if file < 0 || file > 7 || rank < 0 || rank > 7 {
		return chess.NoSquare, false
	}
	return chess.Square(rank*8 + file), true
}

func fileRank(sq chess.Square) (int, int) {
	return int(sq) % 8, int(sq) / 8
}

// attackedSquares lists the squares the piece on sq attacks on b, ordered by
// file and then rank (a1, a2, ..., a8, b1, ...). Sliding attacks stop at, and
// include, the first occupied square. An empty square attacks nothing.
func attackedSquares(b *chess.Board, sq chess.Square) []chess.Square {
	p := b.Piece(sq)
	if p == chess.NoPiece {
		return nil
	}
	file, rank := fileRank(sq)
	var hit [64]bool

	step := func(steps [][2]int) {
		for _, s := range steps {
			if to, ok := squareAt(file+s[0], rank+s[1]); ok {
				hit[to] = true
			}
		}
	}
	slide := func(rays [][2]int) {
		for _, ray := range rays {
			f, r := file+ray[0], rank+ray[1]
			for {
				to, ok := squareAt(f, r)
				if !ok {
					break
				}
				hit[to] = true
				if b.Piece(to) != chess.NoPiece {
					break
				}
				f, r = f+ray[0], r+ray[1]
			}
		}
	}

	switch p.Type() {
	case chess.Pawn:
		dir := 1
		if p.Color() == chess.Black {
			dir = -1
		}
		step([][2]int{{-1, dir}, {1, dir}})
	case chess.Knight:
		step(knightSteps)
	case chess.King:
		step(kingSteps)
	case chess.Bishop:
		slide(bishopRays)
	case chess.Rook:
		slide(rookRays)
	case chess.Queen:
		slide(rookRays)
		slide(bishopRays)
	}

	res := make([]chess.Square, 0, 8)
	for f := 0; f < 8; f++ {
		for r := 0; r < 8; r++ {
			to, _ := squareAt(f, r)
			if hit[to] {
				res = append(res, to)
			}
		}
	}
	return res
}

// kingAttacked reports whether any piece of color by attacks the opposing king.
func kingAttacked(b *chess.Board, by chess.Color) bool {
	king := chess.NoSquare
	for sq := chess.Square(0); sq < 64; sq++ {
		p := b.Piece(sq)
		if p.Type() == chess.King && p.Color() == by.Other() {
			king = sq
			break
		}
	}
	if king == chess.NoSquare {
		return false
	}
	for sq := chess.Square(0); sq < 64; sq++ {
		p := b.Piece(sq)
		if p == chess.NoPiece || p.Color() != by {
			continue
		}
		for _, to := range attackedSquares(b, sq) {
			if to == king {
				return true
			}
		}
	}
	return false
}
