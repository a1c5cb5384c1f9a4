package openai

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

	"nexus/internal/domain"
)

const defaultBaseURL = "https://api.openai.com/v1"

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatRequest is the minimal request shape for the Chat Completions endpoint.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature *float64      `json:"temperature,omitempty"`
	TopP        *float64      `json:"top_p,omitempty"`
}

// chatResponse is the minimal response shape returned by the Chat Completions endpoint.
type chatResponse struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Created int64  `json:"created"`
	Choices []struct {
		Index   int         `json:"index"`
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// HTTPStatusError captures non-2xx upstream responses with status-aware context.
type HTTPStatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("openai: unexpected status %d from %s: %s", e.StatusCode, e.URL, e.Body)
}

func (e *HTTPStatusError) HTTPStatusCode() int {
	return e.StatusCode
}

// Client is a focused OpenAI-compatible client for single-turn chat completions.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

type Option func(*Client)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSpace(baseURL)
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// resolvedHTTPClient returns the configured HTTP client, or a default with a
// 60s timeout if none was set.
func (c *Client) resolvedHTTPClient() *http.Client {
	if c.httpClient != nil {
		return c.httpClient
	}
	return &http.Client{Timeout: 60 * time.Second}
}

func chatURL(baseURL string) string {
	base := strings.TrimRight(baseURL, "/")
	if base == "" {
		base = defaultBaseURL
	}
	if strings.HasSuffix(base, "/v1") {
		return base + "/chat/completions"
	}
	return base + "/v1/chat/completions"
}

// GenerateContent sends the system instruction and prompt as a two-message
// completion and returns the first choice.
func (c *Client) GenerateContent(ctx context.Context, apiKey string, req domain.GenerationRequest) (string, error) {
	if req.Model == "" {
		return "", errors.New("openai: model must not be empty")
	}
	if strings.TrimSpace(apiKey) == "" {
		return "", errors.New("openai: api key must not be empty")
	}

	messages := make([]chatMessage, 0, 2)
	if s := strings.TrimSpace(req.SystemInstruction); s != "" {
		messages = append(messages, chatMessage{Role: "system", Content: s})
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.Prompt})

	temperature, topP := req.Temperature, req.TopP
	body, err := json.Marshal(chatRequest{
		Model:       req.Model,
		Messages:    messages,
		Temperature: &temperature,
		TopP:        &topP,
	})
	if err != nil {
		return "", fmt.Errorf("openai: marshal request: %w", err)
	}

	url := chatURL(c.baseURL)

	httpReq, reqErr := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if reqErr != nil {
		return "", fmt.Errorf("openai: create request: %w", reqErr)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)

	raw, err := c.doJSONRequest(httpReq, url)
	if err != nil {
		return "", fmt.Errorf("openai: request failed: %w", err)
	}

	var payload chatResponse
	if decErr := json.Unmarshal(raw, &payload); decErr != nil {
		return "", fmt.Errorf("openai: decode response: %w", decErr)
	}
	if len(payload.Choices) == 0 {
		return "", errors.New("openai: no choices in response")
	}
	return payload.Choices[0].Message.Content, nil
}

func (c *Client) doJSONRequest(req *http.Request, url string) ([]byte, error) {
	res, doErr := c.resolvedHTTPClient().Do(req)
	if doErr != nil {
		return nil, doErr
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		buf, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return nil, &HTTPStatusError{
			StatusCode: res.StatusCode,
			URL:        url,
			Body:       string(buf),
		}
	}

	buf, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return buf, nil
}
