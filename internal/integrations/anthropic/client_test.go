package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"nexus/internal/domain"
)

type messagesBody struct {
	Model     string `json:"model"`
	MaxTokens int64  `json:"max_tokens"`
	System    []struct {
		Text string `json:"text"`
	} `json:"system"`
	Messages []struct {
		Role    string `json:"role"`
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	} `json:"messages"`
	Temperature float64 `json:"temperature"`
}

func testRequest() domain.GenerationRequest {
	return domain.GenerationRequest{
		Model:             "claude-mock",
		SystemInstruction: "You are Nexus AI.",
		Prompt:            "Status?",
		Temperature:       0.7,
		TopP:              0.95,
	}
}

func newTestClient(srv *httptest.Server, opts ...Option) *Client {
	base := []Option{WithBaseURL(srv.URL), WithHTTPClient(&http.Client{Timeout: 2 * time.Second})}
	return NewClient(append(base, opts...)...)
}

func TestClient_GenerateContent_HappyPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/messages", r.URL.Path)
		require.Equal(t, "sk-ant", r.Header.Get("X-Api-Key"))

		var body messagesBody
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "claude-mock", body.Model)
		require.EqualValues(t, 256, body.MaxTokens)
		require.Len(t, body.System, 1)
		require.Equal(t, "You are Nexus AI.", body.System[0].Text)
		require.Len(t, body.Messages, 1)
		require.Equal(t, "user", body.Messages[0].Role)
		require.Equal(t, "Status?", body.Messages[0].Content[0].Text)
		require.InDelta(t, 0.7, body.Temperature, 1e-9)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "msg_1",
			"type": "message",
			"role": "assistant",
			"model": "claude-mock",
			"content": [{"type": "text", "text": "All systems "}, {"type": "text", "text": "nominal."}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 10, "output_tokens": 4}
		}`))
	}))
	defer srv.Close()

	out, err := newTestClient(srv, WithMaxTokens(256)).GenerateContent(context.Background(), "sk-ant", testRequest())
	require.NoError(t, err)
	require.Equal(t, "All systems nominal.", out)
}

func TestClient_GenerateContent_SendsTemperatureWithoutTopP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]json.RawMessage
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Contains(t, body, "temperature")
		require.NotContains(t, body, "top_p")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"msg_2","type":"message","role":"assistant","model":"claude-mock","content":[{"type":"text","text":"ok"}],"stop_reason":"end_turn","usage":{"input_tokens":1,"output_tokens":1}}`))
	}))
	defer srv.Close()

	out, err := newTestClient(srv).GenerateContent(context.Background(), "sk-ant", testRequest())
	require.NoError(t, err)
	require.Equal(t, "ok", out)
}

func TestClient_GenerateContent_StatusErrorNotRetried(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"type": "error", "error": {"type": "rate_limit_error", "message": "slow down"}}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv).GenerateContent(context.Background(), "sk-ant", testRequest())
	require.Error(t, err)
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	require.Equal(t, http.StatusTooManyRequests, statusErr.HTTPStatusCode())
	require.EqualValues(t, 1, hits.Load())
}

func TestClient_GenerateContent_Validates(t *testing.T) {
	c := NewClient()

	req := testRequest()
	req.Model = ""
	_, err := c.GenerateContent(context.Background(), "sk-ant", req)
	require.ErrorContains(t, err, "model")

	_, err = c.GenerateContent(context.Background(), "", testRequest())
	require.ErrorContains(t, err, "api key")
}

func TestWithMaxTokens_IgnoresNonPositive(t *testing.T) {
	c := NewClient(WithMaxTokens(0))
	require.EqualValues(t, defaultMaxTokens, c.maxTokens)
}
