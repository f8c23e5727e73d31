package service

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"formalyze/internal/config"
)

func newTestLLM(url string, retries int) *LLMClient {
	c := NewLLMClient(config.LLMConfig{
		APIKey:     "test-key",
		BaseURL:    url,
		Model:      "test-model",
		Timeout:    5 * time.Second,
		MaxRetries: retries,
	})
	c.backoffBase = time.Millisecond
	return c
}

const chatReply = `{"choices":[{"message":{"role":"assistant","content":"[\"Why?\"]"}}]}`

func TestLLMClient_Complete(t *testing.T) {
	t.Run("Should send the prompt and return the reply", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/chat/completions", r.URL.Path)
			assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
			body, _ := io.ReadAll(r.Body)
			assert.Equal(t, "test-model", gjson.GetBytes(body, "model").String())
			assert.Equal(t, "hello", gjson.GetBytes(body, "messages.0.content").String())
			_, _ = w.Write([]byte(chatReply))
		}))
		defer srv.Close()

		reply, err := newTestLLM(srv.URL, 0).Complete(context.Background(), "hello")

		require.NoError(t, err)
		assert.Equal(t, `["Why?"]`, reply)
	})

	t.Run("Should retry rate limited requests", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			if calls.Add(1) < 3 {
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			_, _ = w.Write([]byte(chatReply))
		}))
		defer srv.Close()

		reply, err := newTestLLM(srv.URL, 3).Complete(context.Background(), "hi")

		require.NoError(t, err)
		assert.Equal(t, `["Why?"]`, reply)
		assert.Equal(t, int32(3), calls.Load())
	})

	t.Run("Should not retry client errors", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer srv.Close()

		_, err := newTestLLM(srv.URL, 3).Complete(context.Background(), "hi")

		assert.Error(t, err)
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("Should refuse to call without an API key", func(t *testing.T) {
		c := NewLLMClient(config.DefaultLLMConfig())

		assert.False(t, c.IsEnabled())
		_, err := c.Complete(context.Background(), "hi")
		assert.ErrorIs(t, err, ErrLLMDisabled)
	})
}

func TestExtractJSONArray(t *testing.T) {
	t.Run("Should find an array inside prose and code fences", func(t *testing.T) {
		got, ok := ExtractJSONArray("Sure!\n```json\n[{\"a\": 1}]\n```")
		require.True(t, ok)
		assert.Equal(t, `[{"a": 1}]`, got)
	})

	t.Run("Should fail without an array", func(t *testing.T) {
		_, ok := ExtractJSONArray("no questions today")
		assert.False(t, ok)

		_, ok = ExtractJSONArray("[broken")
		assert.False(t, ok)
	})
}
