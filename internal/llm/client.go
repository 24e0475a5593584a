// Package llm generates answers over retrieved context. The primary path
// is an OpenAI-compatible chat-completions endpoint with retry on rate
// limits and timeouts; without an API key the service falls back to a
// deterministic extractive answerer so the pipeline stays usable offline.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"brainbin/internal/config"
	"brainbin/internal/logger"
)

// ErrRateLimited marks upstream 429 responses that survived all retries.
var ErrRateLimited = errors.New("completion provider rate limit exceeded")

// Answerer produces an answer from a question and retrieved context.
type Answerer interface {
	Answer(ctx context.Context, req AnswerRequest) (string, error)
}

// AnswerRequest carries everything the prompt is built from.
type AnswerRequest struct {
	Question     string
	Context      string
	Conversation []Exchange
}

// Exchange is one past question/answer pair used as conversational
// context.
type Exchange struct {
	Question string
	Answer   string
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Client talks to an OpenAI-compatible chat-completions API.
type Client struct {
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	maxTokens   int
	maxRetries  int
	httpClient  *http.Client
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		baseURL:     strings.TrimRight(cfg.LLM.BaseURL, "/"),
		apiKey:      cfg.LLM.APIKey,
		model:       cfg.LLM.Model,
		temperature: cfg.LLM.Temperature,
		maxTokens:   cfg.LLM.MaxTokens,
		maxRetries:  cfg.LLM.MaxRetries,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.LLM.TimeoutSeconds) * time.Second,
		},
	}
}

const systemPrompt = `You are an expert document analysis assistant. Answer ONLY using information from the provided context.

IMPORTANT:
1. If information is not in the context, say "I don't have information about this in my knowledge base."
2. Provide detailed answers with specific examples from the source material.
3. Always cite your sources with document names.`

// Answer calls the completion endpoint, retrying with exponential
// backoff on rate limits and timeouts.
func (c *Client) Answer(ctx context.Context, req AnswerRequest) (string, error) {
	messages := buildMessages(req)

	retryDelay := time.Second
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		answer, err := c.complete(ctx, messages)
		if err == nil {
			return answer, nil
		}
		lastErr = err

		if !isRetryable(err) {
			return "", err
		}

		logger.CtxWarn(ctx, "Completion attempt failed, retrying",
			"attempt", attempt+1, "delay", retryDelay.String(), "error", err)

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(retryDelay):
		}
		retryDelay *= 2
	}

	if errors.Is(lastErr, ErrRateLimited) {
		return "", ErrRateLimited
	}
	return "", fmt.Errorf("completion failed after %d attempts: %w", c.maxRetries+1, lastErr)
}

func (c *Client) complete(ctx context.Context, messages []chatMessage) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("completion provider returned status %d: %s", resp.StatusCode, truncate(string(respBody), 200))
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse completion response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("completion provider error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("completion response has no choices")
	}

	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}

func buildMessages(req AnswerRequest) []chatMessage {
	messages := []chatMessage{{Role: "system", Content: systemPrompt}}

	for _, ex := range req.Conversation {
		messages = append(messages,
			chatMessage{Role: "user", Content: ex.Question},
			chatMessage{Role: "assistant", Content: ex.Answer},
		)
	}

	messages = append(messages, chatMessage{
		Role: "user",
		Content: fmt.Sprintf("CONTEXT INFORMATION:\n%s\n\nQUESTION: %s\n\nProvide a thorough, well-structured answer with source references.",
			req.Context, req.Question),
	})
	return messages
}

func isRetryable(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "timeout") || strings.Contains(msg, "too many requests")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
