package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brainbin/internal/config"
)

func newTestClient(baseURL string) *Client {
	cfg := &config.Config{}
	cfg.LLM.BaseURL = baseURL
	cfg.LLM.APIKey = "test-key"
	cfg.LLM.Model = "test-model"
	cfg.LLM.Temperature = 0.1
	cfg.LLM.MaxTokens = 256
	cfg.LLM.TimeoutSeconds = 5
	cfg.LLM.MaxRetries = 2
	return NewClient(cfg)
}

func completionJSON(content string) string {
	resp := map[string]interface{}{
		"choices": []map[string]interface{}{
			{"message": map[string]string{"role": "assistant", "content": content}},
		},
	}
	b, _ := json.Marshal(resp)
	return string(b)
}

func TestClientAnswer(t *testing.T) {
	t.Run("successful completion", func(t *testing.T) {
		var gotReq chatRequest
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/chat/completions", r.URL.Path)
			assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
			w.Write([]byte(completionJSON("The refund window is 30 days.")))
		}))
		defer srv.Close()

		c := newTestClient(srv.URL)
		answer, err := c.Answer(context.Background(), AnswerRequest{
			Question: "What is the refund window?",
			Context:  "[Source: policy.pdf]\nRefunds are accepted within 30 days.",
			Conversation: []Exchange{
				{Question: "hi", Answer: "hello"},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, "The refund window is 30 days.", answer)

		// system + 2 conversation turns + final user message
		require.Len(t, gotReq.Messages, 4)
		assert.Equal(t, "system", gotReq.Messages[0].Role)
		assert.Equal(t, "test-model", gotReq.Model)
	})

	t.Run("retries on 429 then succeeds", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) == 1 {
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			w.Write([]byte(completionJSON("ok")))
		}))
		defer srv.Close()

		c := newTestClient(srv.URL)
		answer, err := c.Answer(context.Background(), AnswerRequest{Question: "q", Context: "c"})
		require.NoError(t, err)
		assert.Equal(t, "ok", answer)
		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("persistent 429 surfaces rate limit error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer srv.Close()

		c := newTestClient(srv.URL)
		_, err := c.Answer(context.Background(), AnswerRequest{Question: "q", Context: "c"})
		assert.ErrorIs(t, err, ErrRateLimited)
	})

	t.Run("client errors are not retried", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":{"message":"bad request"}}`))
		}))
		defer srv.Close()

		c := newTestClient(srv.URL)
		_, err := c.Answer(context.Background(), AnswerRequest{Question: "q", Context: "c"})
		assert.Error(t, err)
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("empty choices rejected", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"choices":[]}`))
		}))
		defer srv.Close()

		c := newTestClient(srv.URL)
		_, err := c.Answer(context.Background(), AnswerRequest{Question: "q", Context: "c"})
		assert.Error(t, err)
	})
}

func TestExtractiveAnswerer(t *testing.T) {
	e := NewExtractiveAnswerer()
	ctx := context.Background()

	t.Run("picks matching sentences", func(t *testing.T) {
		answer, err := e.Answer(ctx, AnswerRequest{
			Question: "What is the refund policy?",
			Context:  "Shipping takes five days. The refund policy allows returns within 30 days. Offices close at noon.",
		})
		require.NoError(t, err)
		assert.Contains(t, answer, "refund policy allows returns")
		assert.NotContains(t, answer, "Offices close")
	})

	t.Run("no match yields knowledge base miss", func(t *testing.T) {
		answer, err := e.Answer(ctx, AnswerRequest{
			Question: "quantum entanglement",
			Context:  "Shipping takes five days.",
		})
		require.NoError(t, err)
		assert.Contains(t, answer, "don't have information")
	})

	t.Run("deterministic", func(t *testing.T) {
		req := AnswerRequest{
			Question: "refund policy",
			Context:  "The refund policy is simple. Refunds process in a week. Unrelated line here.",
		}
		a1, err := e.Answer(ctx, req)
		require.NoError(t, err)
		a2, err := e.Answer(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, a1, a2)
	})
}
