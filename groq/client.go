// Package groq provides a streaming client for the Groq chat completion API
// (OpenAI-compatible wire format).
package groq

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Event types and status states emitted by Stream.
const (
	EventToken  = "token"
	EventStatus = "status"

	StateThinking = "thinking"
	StateComplete = "complete"
	StateError    = "error"
)

// Event is one element of a streamed completion. The JSON shape is forwarded
// to clients verbatim.
type Event struct {
	Type    string         `json:"type"`
	State   string         `json:"state,omitempty"`
	Content string         `json:"content,omitempty"`
	Message string         `json:"message,omitempty"`
	Metrics *StreamMetrics `json:"metrics,omitempty"`
}

// StreamMetrics carries the measurements attached to a complete event.
type StreamMetrics struct {
	Latency      float64 `json:"latency"`
	Tokens       int     `json:"tokens"`
	TokensPerSec float64 `json:"tokens_per_sec"`
	Model        string  `json:"model"`
}

// StreamOptions are per-request overrides. Nil fields fall back to the
// configured defaults; an unknown model key falls back to the default model.
type StreamOptions struct {
	ModelKey    string
	Temperature *float64
	MaxTokens   *int
	TopP        *float64
}

// Config configures a Client.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration

	Models       map[string]string
	DefaultModel string

	Temperature float64
	MaxTokens   int
	TopP        float64
}

// Client is the Groq API client.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client

	models       map[string]string
	defaultModel string

	temperature float64
	maxTokens   int
	topP        float64
}

// NewClient creates a new Groq client.
func NewClient(cfg Config) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		models:       cfg.Models,
		defaultModel: cfg.DefaultModel,
		temperature:  cfg.Temperature,
		maxTokens:    cfg.MaxTokens,
		topP:         cfg.TopP,
	}
}

// ModelName resolves a model key from the table, falling back to the default
// model for empty or unknown keys.
func (c *Client) ModelName(key string) string {
	if name, ok := c.models[key]; ok {
		return name
	}
	return c.models[c.defaultModel]
}

// Models returns the configured model table.
func (c *Client) Models() map[string]string {
	out := make(map[string]string, len(c.models))
	for k, v := range c.models {
		out[k] = v
	}
	return out
}

// DefaultModelKey returns the configured default model key.
func (c *Client) DefaultModelKey() string {
	return c.defaultModel
}

// ChatMessage is a single message in the upstream request.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatCompletionRequest is the OpenAI-compatible request body.
type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
	TopP        float64       `json:"top_p"`
	Stream      bool          `json:"stream"`
}

// streamChunk is a single SSE chunk from the upstream stream.
type streamChunk struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Created int64  `json:"created"`
	Model   string `json:"model"`
	Choices []struct {
		Index int `json:"index"`
		Delta struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason string `json:"finish_reason,omitempty"`
	} `json:"choices"`
}

// errorResponse is the upstream API error body.
type errorResponse struct {
	Error *apiError `json:"error"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code,omitempty"`
}

// Stream issues a streaming completion request and returns the events as they
// arrive. The channel is unbuffered, so consumption drives the underlying
// network read, and it is closed after exactly one terminal event: a complete
// status carrying metrics, or an error status with a human-readable message.
func (c *Client) Stream(ctx context.Context, messages []ChatMessage, opts StreamOptions) <-chan Event {
	events := make(chan Event)
	go func() {
		defer close(events)
		c.stream(ctx, messages, opts, events)
	}()
	return events
}

func (c *Client) stream(ctx context.Context, messages []ChatMessage, opts StreamOptions, events chan<- Event) {
	model := c.ModelName(opts.ModelKey)

	req := chatCompletionRequest{
		Model:       model,
		Messages:    messages,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
		TopP:        c.topP,
		Stream:      true,
	}
	if opts.Temperature != nil {
		req.Temperature = *opts.Temperature
	}
	if opts.MaxTokens != nil {
		req.MaxTokens = *opts.MaxTokens
	}
	if opts.TopP != nil {
		req.TopP = *opts.TopP
	}

	start := time.Now()

	events <- Event{
		Type:    EventStatus,
		State:   StateThinking,
		Message: fmt.Sprintf("Groq model %s inference started", model),
	}

	tokenCount, err := c.streamTokens(ctx, &req, events)
	if err != nil {
		events <- Event{
			Type:    EventStatus,
			State:   StateError,
			Message: fmt.Sprintf("Groq API error: %v", err),
		}
		return
	}

	elapsed := time.Since(start).Seconds()
	tokensPerSec := 0.0
	if elapsed > 0 {
		tokensPerSec = float64(tokenCount) / elapsed
	}

	events <- Event{
		Type:    EventStatus,
		State:   StateComplete,
		Message: fmt.Sprintf("Generated %d tokens in %.2fs (%.1f tokens/s)", tokenCount, elapsed, tokensPerSec),
		Metrics: &StreamMetrics{
			Latency:      elapsed,
			Tokens:       tokenCount,
			TokensPerSec: tokensPerSec,
			Model:        model,
		},
	}
}

// streamTokens performs the HTTP call and emits one token event per content
// delta, returning the number of tokens emitted.
func (c *Client) streamTokens(ctx context.Context, req *chatCompletionRequest, events chan<- Event) (int, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return 0, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		var errResp errorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error != nil {
			return 0, fmt.Errorf("[%d] %s (type: %s)", resp.StatusCode, errResp.Error.Message, errResp.Error.Type)
		}
		return 0, fmt.Errorf("[%d] %s", resp.StatusCode, string(respBody))
	}

	reader := bufio.NewReader(resp.Body)
	tokenCount := 0

	for {
		select {
		case <-ctx.Done():
			return tokenCount, ctx.Err()
		default:
		}

		line, err := reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				return tokenCount, nil
			}
			return tokenCount, fmt.Errorf("failed to read stream: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" || !strings.HasPrefix(line, "data: ") {
			continue
		}

		data := strings.TrimPrefix(line, "data: ")
		if data == "[DONE]" {
			return tokenCount, nil
		}

		var chunk streamChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			// Skip malformed chunks
			continue
		}

		if len(chunk.Choices) > 0 && chunk.Choices[0].Delta.Content != "" {
			tokenCount++
			events <- Event{
				Type:    EventToken,
				Content: chunk.Choices[0].Delta.Content,
			}
		}
	}
}
