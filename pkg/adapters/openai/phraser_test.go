package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/formflow/pkg/ports"
)

func fakeAPI(t *testing.T, reply string, got *openai.ChatCompletionRequest) *Phraser {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(got))

		w.Header().Set("Content-Type", "application/json")
		choices := []map[string]any{}
		if reply != "" {
			choices = append(choices, map[string]any{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": reply},
				"finish_reason": "stop",
			})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"model":   got.Model,
			"choices": choices,
		})
	}))
	t.Cleanup(srv.Close)

	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = srv.URL + "/v1"
	return NewFromConfig(cfg, WithModel("gpt-test"))
}

func TestPhraser_Phrase(t *testing.T) {
	var got openai.ChatCompletionRequest
	p := fakeAPI(t, "  Great! How old are you?  ", &got)

	out, err := p.Phrase(context.Background(), ports.PhraseRequest{
		FormName:         "Survey",
		Question:         "How old are you?",
		PreviousQuestion: "What's your name?",
		PreviousAnswer:   "Ada",
	})
	require.NoError(t, err)
	assert.Equal(t, "Great! How old are you?", out)

	assert.Equal(t, "gpt-test", got.Model)
	assert.Equal(t, 60, got.MaxTokens)
	assert.InDelta(t, 0.2, got.Temperature, 0.001)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, got.Messages[0].Role)
	assert.Contains(t, got.Messages[1].Content, `Previous answer: "Ada"`)
	assert.Contains(t, got.Messages[1].Content, "Create a brief transition to: How old are you?")
}

func TestPhraser_NoChoices(t *testing.T) {
	var got openai.ChatCompletionRequest
	p := fakeAPI(t, "", &got)

	_, err := p.Phrase(context.Background(), ports.PhraseRequest{Question: "Q?"})
	assert.ErrorIs(t, err, ErrNoChoices)
}

func TestNewFromEnv(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	_, err := NewFromEnv()
	assert.Error(t, err)

	t.Setenv("OPENAI_API_KEY", "k")
	t.Setenv("OPENAI_MODEL", "gpt-4o")
	p, err := NewFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", p.Model())

	t.Setenv("OPENAI_MODEL", "")
	p, err = NewFromEnv(WithModel("custom"))
	require.NoError(t, err)
	assert.Equal(t, "custom", p.Model())
}
