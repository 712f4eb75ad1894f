package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gmkornilov/chess-chronicle-backend/pkg/narrate"
	"github.com/ollama/ollama/api"
	"go.uber.org/zap"
)

const (
	backendOllama      = "ollama"
	defaultOllamaURL   = "http://localhost:11434"
	defaultOllamaModel = "llama3"
)

// Ollama talks to a local Ollama server through its native chat API.
type Ollama struct {
	client *api.Client
	model  string
	log    *zap.Logger
}

func NewOllama(cfg Config, log *zap.Logger) (*Ollama, error) {
	if log == nil {
		log = zap.NewNop()
	}
	base := cfg.BaseURL
	if base == "" {
		base = defaultOllamaURL
	}
	// the native API lives next to, not under, the OpenAI-compatible /v1
	base = strings.TrimSuffix(strings.TrimSuffix(base, "/"), "/v1")
	parsed, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parse ollama url %q: %w", base, err)
	}
	model := cfg.Model
	if model == "" || strings.HasPrefix(model, "gpt-") {
		model = defaultOllamaModel
	}
	log.Info("ollama backend created", zap.String("base_url", base), zap.String("model", model))
	return &Ollama{
		client: api.NewClient(parsed, &http.Client{Timeout: cfg.Timeout}),
		model:  model,
		log:    log,
	}, nil
}

func (c *Ollama) Complete(ctx context.Context, req narrate.Request) (string, error) {
	stream := false
	start := time.Now()

	var content strings.Builder
	err := c.client.Chat(ctx, &api.ChatRequest{
		Model: c.model,
		Messages: []api.Message{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.User},
		},
		Stream: &stream,
		Options: map[string]interface{}{
			"temperature": req.Temperature,
			"num_predict": req.MaxTokens,
		},
	}, func(r api.ChatResponse) error {
		content.WriteString(r.Message.Content)
		return nil
	})
	requestDuration.WithLabelValues(backendOllama, c.model).Observe(time.Since(start).Seconds())
	if err != nil {
		requestsTotal.WithLabelValues(backendOllama, c.model, "error").Inc()
		c.log.Warn("ollama request failed", zap.Duration("latency", time.Since(start)), zap.Error(err))
		return "", err
	}
	if content.Len() == 0 {
		requestsTotal.WithLabelValues(backendOllama, c.model, "error_empty_response").Inc()
		return "", errors.New("empty response")
	}
	requestsTotal.WithLabelValues(backendOllama, c.model, "success").Inc()
	return content.String(), nil
}
