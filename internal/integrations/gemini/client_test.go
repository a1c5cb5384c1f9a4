package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"nexus/internal/domain"
)

type generateBody struct {
	Contents []struct {
		Role  string `json:"role"`
		Parts []struct {
			Text string `json:"text"`
		} `json:"parts"`
	} `json:"contents"`
	SystemInstruction *struct {
		Parts []struct {
			Text string `json:"text"`
		} `json:"parts"`
	} `json:"systemInstruction"`
	GenerationConfig struct {
		Temperature *float64 `json:"temperature"`
		TopP        *float64 `json:"topP"`
	} `json:"generationConfig"`
}

func testRequest() domain.GenerationRequest {
	return domain.GenerationRequest{
		Model:             "gemini-mock",
		SystemInstruction: "You are Nexus AI.",
		Prompt:            "Status?",
		Temperature:       0.7,
		TopP:              0.95,
	}
}

func newTestClient(srv *httptest.Server) *Client {
	return NewClient(WithBaseURL(srv.URL), WithHTTPClient(&http.Client{Timeout: 2 * time.Second}))
}

func TestClient_GenerateContent_HappyPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1beta/models/gemini-mock:generateContent", r.URL.Path)
		require.Equal(t, "key-123", r.Header.Get("x-goog-api-key"))

		var body generateBody
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Len(t, body.Contents, 1)
		require.Equal(t, "Status?", body.Contents[0].Parts[0].Text)
		require.NotNil(t, body.SystemInstruction)
		require.Equal(t, "You are Nexus AI.", body.SystemInstruction.Parts[0].Text)
		require.InDelta(t, 0.7, *body.GenerationConfig.Temperature, 1e-6)
		require.InDelta(t, 0.95, *body.GenerationConfig.TopP, 1e-6)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"candidates": [{
				"content": {"role": "model", "parts": [{"text": "All systems "}, {"text": "nominal."}]},
				"finishReason": "STOP"
			}]
		}`))
	}))
	defer srv.Close()

	out, err := newTestClient(srv).GenerateContent(context.Background(), "key-123", testRequest())
	require.NoError(t, err)
	require.Equal(t, "All systems nominal.", out)
}

func TestClient_GenerateContent_NoCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates": []}`))
	}))
	defer srv.Close()

	out, err := newTestClient(srv).GenerateContent(context.Background(), "key-123", testRequest())
	require.NoError(t, err)
	require.Empty(t, out)
}

func TestClient_GenerateContent_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": {"code": 400, "message": "API key not valid", "status": "INVALID_ARGUMENT"}}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv).GenerateContent(context.Background(), "bad-key", testRequest())
	require.Error(t, err)
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	require.Equal(t, http.StatusBadRequest, statusErr.HTTPStatusCode())
	require.Contains(t, err.Error(), "API key not valid")
}

func TestClient_GenerateContent_Validates(t *testing.T) {
	c := NewClient()

	req := testRequest()
	req.Model = ""
	_, err := c.GenerateContent(context.Background(), "key", req)
	require.ErrorContains(t, err, "model")

	_, err = c.GenerateContent(context.Background(), "", testRequest())
	require.ErrorContains(t, err, "api key")
}

func TestWrapError_PlainError(t *testing.T) {
	base := errors.New("dial tcp: connection refused")
	err := wrapError(base)
	require.ErrorIs(t, err, base)
	var statusErr *StatusError
	require.False(t, errors.As(err, &statusErr))
}

func TestClient_ReusesSDKClientPerKey(t *testing.T) {
	var keys []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		keys = append(keys, r.Header.Get("x-goog-api-key"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"ok"}]}}]}`))
	}))
	defer srv.Close()

	c := newTestClient(srv)
	ctx := context.Background()

	_, err := c.GenerateContent(ctx, "key-a", testRequest())
	require.NoError(t, err)
	first := c.sdk
	require.NotNil(t, first)

	_, err = c.GenerateContent(ctx, "key-a", testRequest())
	require.NoError(t, err)
	require.Same(t, first, c.sdk)

	_, err = c.GenerateContent(ctx, "key-b", testRequest())
	require.NoError(t, err)
	require.NotSame(t, first, c.sdk)
	require.Equal(t, []string{"key-a", "key-a", "key-b"}, keys)
}
