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

type ollamaChatRequest struct {
	Model    string                 `json:"model"`
	Stream   *bool                  `json:"stream"`
	Options  map[string]interface{} `json:"options"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func newOllamaServer(t *testing.T, status int, content string, got *ollamaChatRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(got))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"error":"model \"llama3\" not found"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"model":   got.Model,
			"message": map[string]string{"role": "assistant", "content": content},
			"done":    true,
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestOllamaComplete(t *testing.T) {
	var got ollamaChatRequest
	srv := newOllamaServer(t, http.StatusOK, "The shadow creeps to e5", &got)

	backend, err := NewOllama(Config{BaseURL: srv.URL + "/v1", Model: "gpt-3.5-turbo"}, nil)
	require.NoError(t, err)

	text, err := backend.Complete(context.Background(), narrate.Request{
		System: narrate.SystemPrompt, User: "Void Walker moves to e5.",
		MaxTokens: narrate.MaxTokens, Temperature: narrate.Temperature,
	})
	require.NoError(t, err)
	assert.Equal(t, "The shadow creeps to e5", text)

	assert.Equal(t, defaultOllamaModel, got.Model)
	require.NotNil(t, got.Stream)
	assert.False(t, *got.Stream)
	assert.InDelta(t, 0.9, got.Options["temperature"], 1e-6)
	assert.EqualValues(t, 120, got.Options["num_predict"])
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, narrate.SystemPrompt, got.Messages[0].Content)
	assert.Equal(t, "user", got.Messages[1].Role)
	assert.Equal(t, "Void Walker moves to e5.", got.Messages[1].Content)
}

func TestOllamaCompleteEmpty(t *testing.T) {
	var got ollamaChatRequest
	srv := newOllamaServer(t, http.StatusOK, "", &got)

	backend, err := NewOllama(Config{BaseURL: srv.URL}, nil)
	require.NoError(t, err)

	_, err = backend.Complete(context.Background(), narrate.Request{System: "s", User: "u"})
	assert.Error(t, err)
}

func TestGeneratorOverOllama(t *testing.T) {
	var got ollamaChatRequest
	srv := newOllamaServer(t, http.StatusOK, "  Void Walker glides forth.  ", &got)

	factory, err := NewFactory(Config{Backend: "ollama", BaseURL: srv.URL, Model: "mistral"}, nil)
	require.NoError(t, err)
	g := narrate.NewGenerator(narrate.GeneratorConfig{}, factory, nil)

	text := g.Generate(context.Background(), "Void Walker moves to e5.")
	assert.Equal(t, "Void Walker glides forth.", text)
	assert.Equal(t, []string{text}, g.History())
	assert.Equal(t, "mistral", got.Model)
}

func TestGeneratorOverOllamaFailure(t *testing.T) {
	var got ollamaChatRequest
	srv := newOllamaServer(t, http.StatusNotFound, "", &got)

	factory, err := NewFactory(Config{Backend: "ollama", BaseURL: srv.URL}, nil)
	require.NoError(t, err)
	g := narrate.NewGenerator(narrate.GeneratorConfig{}, factory, nil)

	text := g.Generate(context.Background(), "Void Walker moves to e5.")
	assert.True(t, len(text) > len(narrate.SilentBard))
	assert.Equal(t, narrate.SilentBard, text[:len(narrate.SilentBard)])
	assert.Contains(t, text, "not found")
	assert.Empty(t, g.History())
}
