package narrate

import (
	"context"

	"github.com/notnil/chess"
	"go.uber.org/zap"
)

// Narrator is the per-game narration pipeline. Describe must be called once
// per accepted move, in move order, by the owner of the game; Narrate may run
// on another goroutine.
type Narrator struct {
	registry  *Registry
	generator *Generator
	log       *zap.Logger
}

func NewNarrator(generator *Generator, log *zap.Logger) *Narrator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Narrator{
		registry:  NewRegistry(),
		generator: generator,
		log:       log,
	}
}

// Describe classifies move against before, composes the event description and
// advances the identities. move must be legal in before.
func (n *Narrator) Describe(before *chess.Position, move *chess.Move) (Classification, string) {
	c := Classify(before, move, n.registry)
	desc := Compose(c)
	n.registry.Advance(move)
	n.log.Debug("move described",
		zap.String("move", move.String()),
		zap.String("actor", c.Actor),
		zap.Bool("capture", c.IsCapture),
		zap.Bool("check", c.IsCheck),
		zap.Strings("threatened", c.Threatened),
	)
	return c, desc
}

// StartFrom reseeds the identities for a game that begins at pos. It must be
// called before the first Describe.
func (n *Narrator) StartFrom(pos *chess.Position) {
	n.registry = NewRegistryFor(pos)
}

func (n *Narrator) Narrate(ctx context.Context, description string) string {
	return n.generator.Generate(ctx, description)
}

func (n *Narrator) Registry() *Registry {
	return n.registry
}

func (n *Narrator) Generator() *Generator {
	return n.generator
}
