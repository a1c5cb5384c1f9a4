// Package anthropic adapts the Anthropic Messages API to the single-turn
// generation call the response gateway makes.
package anthropic

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"nexus/internal/domain"
)

const defaultMaxTokens = 1024

// StatusError carries the upstream status of a failed Messages call.
type StatusError struct {
	StatusCode int
	Err        error
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("anthropic: unexpected status %d: %v", e.StatusCode, e.Err)
}

func (e *StatusError) Unwrap() error { return e.Err }

func (e *StatusError) HTTPStatusCode() int { return e.StatusCode }

type Client struct {
	baseURL    string
	httpClient *http.Client
	maxTokens  int64
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

func WithMaxTokens(n int64) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxTokens = n
		}
	}
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		maxTokens:  defaultMaxTokens,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GenerateContent sends req.Prompt as a single user turn and joins the text
// blocks of the reply. Only req.Temperature is forwarded: current Claude models
// reject requests that set both temperature and top_p.
func (c *Client) GenerateContent(ctx context.Context, apiKey string, req domain.GenerationRequest) (string, error) {
	if req.Model == "" {
		return "", errors.New("anthropic: model must not be empty")
	}
	if strings.TrimSpace(apiKey) == "" {
		return "", errors.New("anthropic: api key must not be empty")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if c.httpClient != nil {
		opts = append(opts, option.WithHTTPClient(c.httpClient))
	}
	if c.baseURL != "" {
		opts = append(opts, option.WithBaseURL(c.baseURL))
	}
	client := anthropic.NewClient(opts...)

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(req.Model),
		MaxTokens:   c.maxTokens,
		Messages:    []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt))},
		Temperature: anthropic.Float(req.Temperature),
	}
	if s := strings.TrimSpace(req.SystemInstruction); s != "" {
		params.System = []anthropic.TextBlockParam{{Text: s}}
	}

	msg, err := client.Messages.New(ctx, params)
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return "", &StatusError{StatusCode: apiErr.StatusCode, Err: err}
		}
		return "", fmt.Errorf("anthropic: create message: %w", err)
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if tb, ok := block.AsAny().(anthropic.TextBlock); ok {
			b.WriteString(tb.Text)
		}
	}
	return b.String(), nil
}
