// Package llm holds the text generation backends behind narrate.Backend.
package llm

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gmkornilov/chess-chronicle-backend/pkg/narrate"
	"go.uber.org/zap"
)

var ErrMissingCredential = errors.New("missing API key for the text backend")

type Config struct {
	Backend string // openai or ollama
	BaseURL string
	Model   string
	Timeout time.Duration
}

// NewFactory returns the narrate.BackendFactory for cfg.Backend. The
// credential is only required by the OpenAI backend.
func NewFactory(cfg Config, log *zap.Logger) (narrate.BackendFactory, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", "openai":
		return func(credential string) (narrate.Backend, error) {
			return NewOpenAI(cfg, credential, log)
		}, nil
	case "ollama":
		return func(string) (narrate.Backend, error) {
			return NewOllama(cfg, log)
		}, nil
	default:
		return nil, fmt.Errorf("unknown text backend %q", cfg.Backend)
	}
}
