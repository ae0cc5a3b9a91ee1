package completion

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func staticKey(k string) KeySource { return func() string { return k } }

func TestOpenAIProviderComplete(t *testing.T) {
	var got openAIRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"model":"llama-3.3-70b-versatile","choices":[{"message":{"role":"assistant","content":"Hi there"}}],"usage":{"prompt_tokens":3,"completion_tokens":2,"total_tokens":5}}`))
	}))
	defer srv.Close()

	p := NewOpenAIProvider(srv.URL+"/", staticKey("secret"), 5*time.Second)
	res, err := p.Complete(context.Background(), Params{
		Model:       "llama-3.3-70b-versatile",
		Messages:    []Message{{Role: "user", Content: "hi"}},
		Temperature: 0.7,
		MaxTokens:   1024,
		TopP:        1,
		Stream:      true,
	})
	require.NoError(t, err)
	assert.Equal(t, "Hi there", res.Text)
	assert.Equal(t, 5, res.Usage.TotalTokens)
	assert.Equal(t, 1024, got.MaxTokens)
	assert.False(t, got.Stream)
}

func TestOpenAIProviderMissingKey(t *testing.T) {
	p := NewOpenAIProvider("http://127.0.0.1:1", staticKey(""), time.Second)
	_, err := p.Complete(context.Background(), Params{})
	assert.True(t, errors.Is(err, ErrMissingAPIKey))
}

func TestOpenAIProviderStatusMapping(t *testing.T) {
	status := http.StatusTooManyRequests
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"error":{"message":"nope"}}`))
	}))
	defer srv.Close()
	p := NewOpenAIProvider(srv.URL, staticKey("k"), time.Second)

	_, err := p.Complete(context.Background(), Params{})
	assert.Equal(t, CodeRateLimit, Classify(err).Code)

	status = http.StatusUnauthorized
	_, err = p.Complete(context.Background(), Params{})
	assert.Equal(t, CodeConfig, Classify(err).Code)

	status = http.StatusBadGateway
	_, err = p.Complete(context.Background(), Params{})
	assert.Equal(t, CodeServer, Classify(err).Code)
}

func TestGeminiContentsSplitsSystem(t *testing.T) {
	system, contents := geminiContents([]Message{
		{Role: "system", Content: "rules"},
		{Role: "user", Content: "hi"},
		{Role: "assistant", Content: "hello"},
	})
	assert.Equal(t, "rules", system)
	require.Len(t, contents, 2)
	assert.Equal(t, "user", contents[0].Role)
	assert.Equal(t, "model", contents[1].Role)
	assert.Equal(t, "hello", contents[1].Parts[0].Text)
}
