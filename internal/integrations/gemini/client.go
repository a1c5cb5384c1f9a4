// Package gemini adapts the Google GenAI SDK to the single-turn generation
// call the response gateway makes.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"google.golang.org/genai"

	"nexus/internal/domain"
)

// StatusError carries the upstream status of a failed GenerateContent call.
type StatusError struct {
	StatusCode int
	Status     string
	Message    string
	Err        error
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("gemini: unexpected status %d (%s): %s", e.StatusCode, e.Status, e.Message)
}

func (e *StatusError) Unwrap() error { return e.Err }

func (e *StatusError) HTTPStatusCode() int { return e.StatusCode }

// Client keeps one SDK client per API key. The key only changes when the
// credential source rotates it.
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu     sync.Mutex
	sdk    *genai.Client
	sdkKey string
}

type Option func(*Client)

// WithBaseURL points the client at a different Generative Language endpoint.
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
	c := &Client{httpClient: &http.Client{Timeout: 60 * time.Second}}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GenerateContent sends one prompt with the system instruction and sampling
// settings from req and returns the concatenated text parts of the first
// candidate.
func (c *Client) GenerateContent(ctx context.Context, apiKey string, req domain.GenerationRequest) (string, error) {
	if req.Model == "" {
		return "", errors.New("gemini: model must not be empty")
	}
	if strings.TrimSpace(apiKey) == "" {
		return "", errors.New("gemini: api key must not be empty")
	}

	client, err := c.clientFor(ctx, apiKey)
	if err != nil {
		return "", err
	}

	genCfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(req.Temperature)),
		TopP:        genai.Ptr(float32(req.TopP)),
	}
	if s := strings.TrimSpace(req.SystemInstruction); s != "" {
		genCfg.SystemInstruction = genai.NewContentFromText(s, genai.RoleUser)
	}

	resp, err := client.Models.GenerateContent(ctx, req.Model, genai.Text(req.Prompt), genCfg)
	if err != nil {
		return "", wrapError(err)
	}
	return resp.Text(), nil
}

func (c *Client) clientFor(ctx context.Context, apiKey string) (*genai.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sdk != nil && c.sdkKey == apiKey {
		return c.sdk, nil
	}

	cfg := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: c.httpClient,
	}
	if c.baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: c.baseURL}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	c.sdk, c.sdkKey = client, apiKey
	return client, nil
}

func wrapError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &StatusError{StatusCode: apiErr.Code, Status: apiErr.Status, Message: apiErr.Message, Err: err}
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return &StatusError{StatusCode: apiErrPtr.Code, Status: apiErrPtr.Status, Message: apiErrPtr.Message, Err: err}
	}
	return fmt.Errorf("gemini: generate content: %w", err)
}
