package llm

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gmkornilov/chess-chronicle-backend/pkg/narrate"
	"github.com/prometheus/client_golang/prometheus"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const backendOpenAI = "openai"

// OpenAI talks to any OpenAI-compatible chat completion API.
type OpenAI struct {
	client *openai.Client
	model  string
	log    *zap.Logger
}

func NewOpenAI(cfg Config, apiKey string, log *zap.Logger) (*OpenAI, error) {
	if apiKey == "" {
		return nil, ErrMissingCredential
	}
	if log == nil {
		log = zap.NewNop()
	}
	clientCfg := openai.DefaultConfig(apiKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if cfg.Timeout > 0 {
		clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	model := cfg.Model
	if model == "" {
		model = openai.GPT3Dot5Turbo
	}
	log.Info("openai backend created", zap.String("base_url", clientCfg.BaseURL), zap.String("model", model))
	return &OpenAI{
		client: openai.NewClientWithConfig(clientCfg),
		model:  model,
		log:    log,
	}, nil
}

func (c *OpenAI) Complete(ctx context.Context, req narrate.Request) (string, error) {
	labels := prometheus.Labels{"backend": backendOpenAI, "model": c.model}
	start := time.Now()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.System},
			{Role: openai.ChatMessageRoleUser, Content: req.User},
		},
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	requestDuration.With(labels).Observe(time.Since(start).Seconds())
	if err != nil {
		requestsTotal.WithLabelValues(backendOpenAI, c.model, "error").Inc()
		c.log.Warn("openai request failed", zap.Duration("latency", time.Since(start)), zap.Error(err))
		return "", err
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		requestsTotal.WithLabelValues(backendOpenAI, c.model, "error_empty_response").Inc()
		return "", errors.New("empty response")
	}

	requestsTotal.WithLabelValues(backendOpenAI, c.model, "success").Inc()
	if resp.Usage.CompletionTokens > 0 {
		completionTokens.With(labels).Observe(float64(resp.Usage.CompletionTokens))
	}
	c.log.Debug("openai request done",
		zap.Duration("latency", time.Since(start)),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
	)
	return resp.Choices[0].Message.Content, nil
}
