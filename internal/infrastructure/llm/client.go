package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/sparradar/backend/internal/domain"
	"golang.org/x/time/rate"
)

// Wire types for the OpenAI-compatible chat completions API.

type chatRequest struct {
	Model      string        `json:"model"`
	Messages   []wireMessage `json:"messages"`
	Tools      []wireTool    `json:"tools,omitempty"`
	ToolChoice string        `json:"tool_choice,omitempty"`
}

type wireMessage struct {
	Role       string         `json:"role"`
	Content    string         `json:"content,omitempty"`
	ToolCalls  []wireToolCall `json:"tool_calls,omitempty"`
	ToolCallID string         `json:"tool_call_id,omitempty"`
}

type wireTool struct {
	Type     string       `json:"type"`
	Function wireFunction `json:"function"`
}

type wireFunction struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Parameters  any    `json:"parameters"`
}

type wireToolCall struct {
	ID       string           `json:"id"`
	Type     string           `json:"type"`
	Function wireCallFunction `json:"function"`
}

type wireCallFunction struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

type chatResponse struct {
	ID      string       `json:"id"`
	Choices []chatChoice `json:"choices"`
	Error   *apiError    `json:"error,omitempty"`
}

type chatChoice struct {
	Index        int         `json:"index"`
	Message      wireMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

type apiError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Client talks to an OpenAI-compatible chat completions endpoint with
// function calling. Tool use is forced on every request; the resolution
// loop relies on that to keep the model inside the capability contract.
// Safe for concurrent use.
type Client struct {
	httpClient  *http.Client
	apiKey      string
	baseURL     string
	model       string
	rateLimiter *rate.Limiter
	debug       bool
}

// NewClient creates a new model API client. requestsPerMinute caps the
// outbound request rate across all concurrent resolution runs.
func NewClient(apiKey, baseURL, model string, requestsPerMinute int) *Client {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 60
	}
	limiter := rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), 5)

	return &Client{
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		apiKey:      apiKey,
		baseURL:     baseURL,
		model:       model,
		rateLimiter: limiter,
	}
}

// SetDebug enables verbose request/response logging
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// exponentialBackoff returns the wait time for a retry attempt
func exponentialBackoff(attempt int) time.Duration {
	return time.Duration(500*(1<<(attempt-1))) * time.Millisecond
}

// ChatWithTools sends one chat completion request with tool definitions
// and returns the model's tool calls for that step. Transient failures
// (network errors, 429, 5xx) are retried up to 3 times with backoff;
// anything else fails the call.
func (c *Client) ChatWithTools(ctx context.Context, messages []domain.ChatMessage, tools []domain.ToolDef) (*domain.ChatResult, error) {
	reqPayload := chatRequest{
		Model:      c.model,
		Messages:   toWireMessages(messages),
		Tools:      toWireTools(tools),
		ToolChoice: "required",
	}

	reqBody, err := json.Marshal(reqPayload)
	if err != nil {
		return nil, fmt.Errorf("llm: marshaling request: %w", err)
	}

	if c.debug {
		log.Printf("[LLM] Request: %s", string(reqBody))
	}

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("llm: rate limiter: %w", err)
		}

		body, retryable, err := c.doRequest(ctx, reqBody)
		if err != nil {
			lastErr = err
			if !retryable {
				return nil, err
			}
			log.Printf("[LLM] Request error (attempt %d): %v", attempt, err)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(exponentialBackoff(attempt)):
			}
			continue
		}

		return parseChatResponse(body, c.debug)
	}

	return nil, fmt.Errorf("%w: %v", domain.ErrLLMAPIFailure, lastErr)
}

// doRequest executes one HTTP round trip. The bool reports whether the
// failure is worth retrying.
func (c *Client) doRequest(ctx context.Context, reqBody []byte) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/chat/completions", bytes.NewReader(reqBody))
	if err != nil {
		return nil, false, fmt.Errorf("llm: creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("User-Agent", "SparRadar/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("%w: %v", domain.ErrLLMAPIFailure, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("llm: reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		retryable := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return nil, retryable, fmt.Errorf("%w: status %d: %s", domain.ErrLLMAPIFailure, resp.StatusCode, truncate(string(body), 300))
	}

	return body, false, nil
}

func parseChatResponse(body []byte, debug bool) (*domain.ChatResult, error) {
	if debug {
		log.Printf("[LLM] Response: %s", truncate(string(body), 2000))
	}

	var apiResp chatResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("llm: parsing response: %w", err)
	}

	if apiResp.Error != nil {
		return nil, fmt.Errorf("%w: %s - %s", domain.ErrLLMAPIFailure, apiResp.Error.Type, apiResp.Error.Message)
	}

	if len(apiResp.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices returned", domain.ErrLLMAPIFailure)
	}

	choice := apiResp.Choices[0]
	result := &domain.ChatResult{Content: choice.Message.Content}

	for _, tc := range choice.Message.ToolCalls {
		result.ToolCalls = append(result.ToolCalls, domain.ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: json.RawMessage(tc.Function.Arguments),
		})
	}

	return result, nil
}

func toWireMessages(messages []domain.ChatMessage) []wireMessage {
	wire := make([]wireMessage, 0, len(messages))
	for _, msg := range messages {
		wm := wireMessage{
			Role:    msg.Role,
			Content: msg.Content,
		}

		if msg.Role == "tool" && msg.ToolCallID != "" {
			wm.ToolCallID = msg.ToolCallID
		}

		for _, tc := range msg.ToolCalls {
			wm.ToolCalls = append(wm.ToolCalls, wireToolCall{
				ID:   tc.ID,
				Type: "function",
				Function: wireCallFunction{
					Name:      tc.Name,
					Arguments: string(tc.Arguments),
				},
			})
		}

		wire = append(wire, wm)
	}
	return wire
}

func toWireTools(tools []domain.ToolDef) []wireTool {
	wire := make([]wireTool, 0, len(tools))
	for _, td := range tools {
		wire = append(wire, wireTool{
			Type: "function",
			Function: wireFunction{
				Name:        td.Function.Name,
				Description: td.Function.Description,
				Parameters:  td.Function.Parameters,
			},
		})
	}
	return wire
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
