package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gmkornilov/chess-chronicle-backend/pkg/narrate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chatRequest struct {
	Model       string  `json:"model"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float32 `json:"temperature"`
	Messages    []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func newOpenAIServer(t *testing.T, status int, content string, got *chatRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(got))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"error":{"message":"quota exceeded","type":"insufficient_quota"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id":     "chatcmpl-1",
			"object": "chat.completion",
			"model":  got.Model,
			"choices": []map[string]interface{}{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]string{"role": "assistant", "content": content},
			}},
			"usage": map[string]int{"prompt_tokens": 50, "completion_tokens": 40, "total_tokens": 90},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestOpenAIComplete(t *testing.T) {
	var got chatRequest
	srv := newOpenAIServer(t, http.StatusOK, "A squire strides to e4", &got)

	backend, err := NewOpenAI(Config{BaseURL: srv.URL + "/v1"}, "sk-test", nil)
	require.NoError(t, err)

	text, err := backend.Complete(context.Background(), narrate.Request{
		System: narrate.SystemPrompt, User: "Squire Elric moves to e4.",
		MaxTokens: narrate.MaxTokens, Temperature: narrate.Temperature,
	})
	require.NoError(t, err)
	assert.Equal(t, "A squire strides to e4", text)

	assert.Equal(t, "gpt-3.5-turbo", got.Model)
	assert.Equal(t, 120, got.MaxTokens)
	assert.InDelta(t, 0.9, got.Temperature, 1e-6)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, narrate.SystemPrompt, got.Messages[0].Content)
	assert.Equal(t, "user", got.Messages[1].Role)
}

func TestOpenAICompleteError(t *testing.T) {
	var got chatRequest
	srv := newOpenAIServer(t, http.StatusTooManyRequests, "", &got)

	backend, err := NewOpenAI(Config{BaseURL: srv.URL + "/v1"}, "sk-test", nil)
	require.NoError(t, err)

	_, err = backend.Complete(context.Background(), narrate.Request{System: "s", User: "u"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestNewOpenAIRequiresKey(t *testing.T) {
	_, err := NewOpenAI(Config{}, "", nil)
	assert.ErrorIs(t, err, ErrMissingCredential)
}

func TestGeneratorOverOpenAI(t *testing.T) {
	var got chatRequest
	srv := newOpenAIServer(t, http.StatusOK, "  The squire marches on,\nbefore the break of dawn.  ", &got)

	factory, err := NewFactory(Config{Backend: "openai", BaseURL: srv.URL + "/v1"}, nil)
	require.NoError(t, err)
	g := narrate.NewGenerator(narrate.GeneratorConfig{APICredential: "sk-test"}, factory, nil)

	text := g.Generate(context.Background(), "Squire Elric moves to e4.")
	assert.Equal(t, "The squire marches on,\nbefore the break of dawn.", text)
	assert.Equal(t, []string{text}, g.History())
}

func TestGeneratorWithoutKey(t *testing.T) {
	factory, err := NewFactory(Config{Backend: "openai"}, nil)
	require.NoError(t, err)
	g := narrate.NewGenerator(narrate.GeneratorConfig{}, factory, nil)

	text := g.Generate(context.Background(), "Squire Elric moves to e4.")
	assert.Contains(t, text, narrate.SilentBard)
	assert.Empty(t, g.History())
}

func TestNewFactoryUnknownBackend(t *testing.T) {
	_, err := NewFactory(Config{Backend: "carrier-pigeon"}, nil)
	assert.Error(t, err)
}
