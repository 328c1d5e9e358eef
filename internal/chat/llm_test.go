package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeChatAPI(t *testing.T, content string, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		if status != http.StatusOK {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"error":{"message":"slow down","type":"rate_limit"}}`))
			return
		}
		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Messages) != 2 || req.Messages[0].Role != "system" {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id":     "chatcmpl-1",
			"object": "chat.completion",
			"model":  req.Model,
			"choices": []map[string]interface{}{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]string{"role": "assistant", "content": content},
			}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestOpenAICompleter_Complete(t *testing.T) {
	srv := fakeChatAPI(t, "  Ryan leads AI governance.  ", http.StatusOK)
	c := NewOpenAICompleter("sk-test", srv.URL+"/v1", "gpt-4o-mini", 0.3, 400)
	got, err := c.Complete(context.Background(), "system", "user")
	require.NoError(t, err)
	assert.Equal(t, "Ryan leads AI governance.", got)
}

func TestOpenAICompleter_Empty(t *testing.T) {
	srv := fakeChatAPI(t, "   ", http.StatusOK)
	c := NewOpenAICompleter("sk-test", srv.URL+"/v1", "gpt-4o-mini", 0.3, 400)
	_, err := c.Complete(context.Background(), "system", "user")
	assert.ErrorIs(t, err, ErrEmptyAnswer)
}

func TestOpenAICompleter_APIError(t *testing.T) {
	srv := fakeChatAPI(t, "", http.StatusTooManyRequests)
	c := NewOpenAICompleter("sk-test", srv.URL+"/v1", "gpt-4o-mini", 0.3, 400)
	_, err := c.Complete(context.Background(), "system", "user")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat completion")
}
