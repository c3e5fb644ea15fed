package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOllamaChatJSONReturnsMessageContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/chat", r.URL.Path)
		var req ollamaChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		json.NewEncoder(w).Encode(ollamaChatResponse{
			Message: ollamaMessage{Role: "assistant", Content: `{"total": 80}`},
		})
	}))
	defer srv.Close()

	client := NewOllamaClient(srv.URL, "test-model", nil)
	out, err := client.ChatJSON(context.Background(), "system", "user", "", 256)
	require.NoError(t, err)
	assert.Equal(t, `{"total": 80}`, out)
}

func TestOllamaChatJSONFallsBackToGenerate(t *testing.T) {
	var generateHit bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/chat":
			json.NewEncoder(w).Encode(ollamaChatResponse{})
		case "/api/generate":
			generateHit = true
			var req ollamaGenerateRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Contains(t, req.Prompt, "system")
			assert.Contains(t, req.Prompt, "user")
			assert.Equal(t, "json", req.Format)
			json.NewEncoder(w).Encode(ollamaGenerateResponse{Response: `{"total": 40}`})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	client := NewOllamaClient(srv.URL, "test-model", nil)
	out, err := client.ChatJSON(context.Background(), "system", "user", "", 256)
	require.NoError(t, err)
	assert.True(t, generateHit)
	assert.Equal(t, `{"total": 40}`, out)
}

func TestOllamaChatJSONServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewOllamaClient(srv.URL, "test-model", nil)
	_, err := client.ChatJSON(context.Background(), "system", "user", "", 256)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}
