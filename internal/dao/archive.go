package dao

import (
	"time"

	"github.com/gmkornilov/chess-chronicle-backend/internal/session"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FromSession builds the archive record of s. Narrations still queued are
// not included, so close the session first when the full chronicle matters.
func FromSession(s *session.Session) Chronicle {
	st := s.Snapshot()
	turns := s.Turns()

	moves := make([]string, 0, len(turns))
	for _, t := range turns {
		moves = append(moves, t.UCI)
	}
	return Chronicle{
		GameID:     s.ID,
		PGN:        s.PGN(),
		FinalFEN:   st.FEN,
		Outcome:    st.Outcome,
		Method:     st.Method,
		Moves:      moves,
		Passages:   s.Chronicle(),
		StartedAt:  primitive.NewDateTimeFromTime(s.CreatedAt),
		ArchivedAt: primitive.NewDateTimeFromTime(time.Now()),
	}
}
