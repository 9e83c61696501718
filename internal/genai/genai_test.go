package genai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"civiguard-backend-go/internal/config"
)

func TestGeminiGenerate(t *testing.T) {
	var captured geminiRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/test-model:generateContent", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("x-goog-api-key"))
		assert.Empty(t, r.URL.RawQuery)
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &captured))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"candidates":[{"content":{"parts":[{"text":"  Deep pothole "},{"text":"on Elm Street\n"}]}}]}`)
	}))
	defer srv.Close()

	client := NewGeminiClient(GeminiConfig{APIKey: "secret", Model: "test-model", BaseURL: srv.URL})
	out, err := client.Generate(context.Background(), Request{System: "be brief", Prompt: "rewrite", JSON: true})
	require.NoError(t, err)

	assert.Equal(t, "Deep pothole on Elm Street", out)
	require.NotNil(t, captured.SystemInstruction)
	assert.Equal(t, "be brief", captured.SystemInstruction.Parts[0].Text)
	assert.Equal(t, "rewrite", captured.Contents[0].Parts[0].Text)
	require.NotNil(t, captured.GenerationConfig)
	assert.Equal(t, "application/json", captured.GenerationConfig.ResponseMimeType)
}

func TestGeminiErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "rate limited status", status: http.StatusTooManyRequests, body: `{}`, wantErr: ErrRateLimited},
		{name: "rate limited body", status: http.StatusOK, body: `{"error":{"code":429,"message":"slow down"}}`, wantErr: ErrRateLimited},
		{name: "no candidates", status: http.StatusOK, body: `{"candidates":[]}`, wantErr: ErrEmptyResponse},
		{name: "blank text", status: http.StatusOK, body: `{"candidates":[{"content":{"parts":[{"text":"   "}]}}]}`, wantErr: ErrEmptyResponse},
		{name: "server error", status: http.StatusInternalServerError, body: `boom`},
		{name: "malformed", status: http.StatusOK, body: `not json`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			_, err := NewGeminiClient(GeminiConfig{APIKey: "k", BaseURL: srv.URL}).Generate(context.Background(), Request{Prompt: "x"})
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestGeminiTransportErrorOmitsKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	baseURL := srv.URL
	srv.Close()

	_, err := NewGeminiClient(GeminiConfig{APIKey: "SECRET-KEY-123", BaseURL: baseURL}).Generate(context.Background(), Request{Prompt: "x"})
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "SECRET-KEY-123")
}

func TestTruncateKeepsRunes(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	// each Telugu letter is three bytes; a cut at 4 falls inside the second one
	got := truncate("గుంతలు", 4)
	assert.Equal(t, "గ...", got)
	assert.True(t, utf8.ValidString(got))
}

func TestOpenAIGenerate(t *testing.T) {
	var captured map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &captured))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"cmpl-1","object":"chat.completion","model":"gpt-4o","choices":[{"index":0,"message":{"role":"assistant","content":" {\"ok\":true} "},"finish_reason":"stop"}]}`)
	}))
	defer srv.Close()

	client := NewOpenAIClient(OpenAIConfig{APIKey: "sk-test", BaseURL: srv.URL})
	out, err := client.Generate(context.Background(), Request{System: "sys", Prompt: "user", JSON: true})
	require.NoError(t, err)

	assert.Equal(t, `{"ok":true}`, out)
	assert.Equal(t, "gpt-4o", captured["model"])
	messages := captured["messages"].([]interface{})
	require.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].(map[string]interface{})["role"])
	assert.Equal(t, map[string]interface{}{"type": "json_object"}, captured["response_format"])
}

func TestOpenAIRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = io.WriteString(w, `{"error":{"message":"rate limit","type":"requests"}}`)
	}))
	defer srv.Close()

	_, err := NewOpenAIClient(OpenAIConfig{APIKey: "sk", BaseURL: srv.URL}).Generate(context.Background(), Request{Prompt: "x"})
	assert.ErrorIs(t, err, ErrRateLimited)
}

func TestNewSelectsProvider(t *testing.T) {
	gen, err := New(&config.Config{AIProvider: config.AIProviderNone})
	require.NoError(t, err)
	assert.Nil(t, gen)

	gen, err = New(&config.Config{AIProvider: config.AIProviderGemini, GeminiAPIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, "gemini", gen.Name())

	gen, err = New(&config.Config{AIProvider: config.AIProviderOpenAI, OpenAIAPIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, "openai", gen.Name())

	_, err = New(&config.Config{AIProvider: "claude"})
	assert.Error(t, err)
}
