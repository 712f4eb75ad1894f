package narrate

import "github.com/notnil/chess"

const (
	// UnknownActor is used by Describe when no identity stands on the source square.
	UnknownActor = "A nameless shadow"
	// UnknownSoldier is written to the destination when Advance moves an unnamed unit.
	UnknownSoldier = "Unknown Soldier"
	// UnknownRook is written to the rook's castle square when its corner was empty.
	UnknownRook = "Rook"
)

// lowValueMarkers mark pawn-equivalent identities that are not worth narrating as threats.
var lowValueMarkers = []string{"Squire", "Minion"}

type startingIdentity struct {
	square chess.Square
	piece  chess.Piece
	name   string
}

// startingIdentities is the fixed name table. It is copied into every new registry
// and never written to.
var startingIdentities = [...]startingIdentity{
	// The Kingdom of Light
	{chess.A1, chess.WhiteRook, "The Tower of Dawn"},
	{chess.B1, chess.WhiteKnight, "Sir Valerius (Cavalier)"},
	{chess.C1, chess.WhiteBishop, "Bishop Eldrin"},
	{chess.D1, chess.WhiteQueen, "Queen Aurelia"},
	{chess.E1, chess.WhiteKing, "King Theoden"},
	{chess.F1, chess.WhiteBishop, "Bishop Caelum"},
	{chess.G1, chess.WhiteKnight, "Sir Galahad (Cavalier)"},
	{chess.H1, chess.WhiteRook, "The Tower of Dusk"},
	{chess.A2, chess.WhitePawn, "Squire Alaric"},
	{chess.B2, chess.WhitePawn, "Squire Baldric"},
	{chess.C2, chess.WhitePawn, "Squire Cedric"},
	{chess.D2, chess.WhitePawn, "Squire Darius"},
	{chess.E2, chess.WhitePawn, "Squire Elric"},
	{chess.F2, chess.WhitePawn, "Squire Finn"},
	{chess.G2, chess.WhitePawn, "Squire Garrick"},
	{chess.H2, chess.WhitePawn, "Squire Henry"},

	// The Shadow Empire
	{chess.A8, chess.BlackRook, "The Spire of Agony"},
	{chess.B8, chess.BlackKnight, "Dark Rider Vane"},
	{chess.C8, chess.BlackBishop, "Sorcerer Malgor"},
	{chess.D8, chess.BlackQueen, "Empress Morgana"},
	{chess.E8, chess.BlackKing, "Lord Malakar"},
	{chess.F8, chess.BlackBishop, "Sorcerer Zog"},
	{chess.G8, chess.BlackKnight, "Dark Rider Kael"},
	{chess.H8, chess.BlackRook, "The Spire of Ruin"},
	{chess.A7, chess.BlackPawn, "Minion Grunt"},
	{chess.B7, chess.BlackPawn, "Orc Berserker"},
	{chess.C7, chess.BlackPawn, "Goblin Spy"},
	{chess.D7, chess.BlackPawn, "Shadow Stalker"},
	{chess.E7, chess.BlackPawn, "Void Walker"},
	{chess.F7, chess.BlackPawn, "Dark Acolyte"},
	{chess.G7, chess.BlackPawn, "Blood Reaver"},
	{chess.H7, chess.BlackPawn, "Bone Crusher"},
}

type castleRook struct {
	king, kingTo chess.Square
	rook, rookTo chess.Square
}

var castleRooks = [...]castleRook{
	{chess.E1, chess.G1, chess.H1, chess.F1},
	{chess.E1, chess.C1, chess.A1, chess.D1},
	{chess.E8, chess.G8, chess.H8, chess.F8},
	{chess.E8, chess.C8, chess.A8, chess.D8},
}
