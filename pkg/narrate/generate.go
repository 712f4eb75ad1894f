package narrate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	MockTag       = "[MOCK POET]"
	SilentBard    = "The Bard is silent: "
	SystemPrompt  = "You are a bard recording history."
	MaxTokens     = 120
	Temperature   = 0.9
	contextWindow = 2

	DefaultMockDelay = 500 * time.Millisecond
)

// ErrGenerationFailed wraps every live generation failure.
var ErrGenerationFailed = errors.New("narrative generation failed")

// Request is one call to a text generation backend.
type Request struct {
	System      string
	User        string
	MaxTokens   int
	Temperature float32
}

// Backend generates text for a prompt.
type Backend interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// BackendFactory builds the live backend from the configured credential.
type BackendFactory func(credential string) (Backend, error)

type GeneratorConfig struct {
	UseMock       bool
	APICredential string
	// MockDelay simulates backend latency in mock mode.
	MockDelay time.Duration
}

// Generator expands event descriptions into short verse and keeps the rolling
// history of successful passages. It is safe for concurrent use.
type Generator struct {
	useMock   bool
	mockDelay time.Duration
	backend   Backend
	// unavailable is the reason every live call fails when no backend could be built.
	unavailable error
	log         *zap.Logger

	mu      sync.Mutex
	history []string
}

// NewGenerator never fails: a live generator whose backend cannot be built
// answers every call with the failure placeholder.
func NewGenerator(cfg GeneratorConfig, newBackend BackendFactory, log *zap.Logger) *Generator {
	if log == nil {
		log = zap.NewNop()
	}
	g := &Generator{
		useMock:   cfg.UseMock,
		mockDelay: cfg.MockDelay,
		log:       log,
	}
	if g.useMock {
		return g
	}
	switch {
	case newBackend == nil:
		g.unavailable = errors.New("no text backend configured")
	default:
		backend, err := newBackend(cfg.APICredential)
		if err != nil {
			g.unavailable = err
		} else if backend == nil {
			g.unavailable = errors.New("no text backend configured")
		} else {
			g.backend = backend
		}
	}
	if g.unavailable != nil {
		log.Warn("narrative generator has no live backend", zap.Error(g.unavailable))
	}
	return g
}

func (g *Generator) Mock() bool {
	return g.useMock
}

// Generate returns the narrative for event. It never fails: backend errors are
// rendered as a placeholder that is not remembered as context.
func (g *Generator) Generate(ctx context.Context, event string) string {
	if g.useMock {
		time.Sleep(g.mockDelay)
		return MockTag + " " + event
	}

	text, err := g.complete(ctx, event)
	if err != nil {
		g.log.Warn("narrative generation failed", zap.String("event", event), zap.Error(err))
		return SilentBard + err.Error()
	}

	g.mu.Lock()
	g.history = append(g.history, text)
	g.mu.Unlock()
	return text
}

func (g *Generator) complete(ctx context.Context, event string) (string, error) {
	if g.unavailable != nil {
		return "", fmt.Errorf("%w: %v", ErrGenerationFailed, g.unavailable)
	}
	text, err := g.backend.Complete(ctx, Request{
		System:      SystemPrompt,
		User:        buildPrompt(g.recent(), event),
		MaxTokens:   MaxTokens,
		Temperature: Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%w: empty response", ErrGenerationFailed)
	}
	return text, nil
}

func (g *Generator) recent() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	start := len(g.history) - contextWindow
	if start < 0 {
		start = 0
	}
	res := make([]string, len(g.history)-start)
	copy(res, g.history[start:])
	return res
}

// History returns a copy of every passage generated so far.
func (g *Generator) History() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	res := make([]string, len(g.history))
	copy(res, g.history)
	return res
}

func buildPrompt(history []string, event string) string {
	var sb strings.Builder
	sb.WriteString("Context:\n")
	sb.WriteString(strings.Join(history, "\n"))
	sb.WriteString("\n\nEvent:\n")
	sb.WriteString(event)
	sb.WriteString(`

Task: Write a 4-line stanza of rhyming poetry (AABB or ABAB).

Strict Rules:
1. USE THE SPECIFIC NAMES provided in the Event (e.g. "Squire Cedric", "Lord Malakar").
2. Do NOT invent new names.
3. Describe the specific action (Killing, Threatening, or Moving).
4. Tone: High Fantasy.

Example Output:
"Sir Galahad rides with a heart so bold,
To capture the Goblin and steal his gold,
His lance strikes true with a holy sound,
And leaves the beast rotting on the ground."`)
	return sb.String()
}
