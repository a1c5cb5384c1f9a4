package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"nexus/internal/httpapi"
)

const correlationHeader = "X-Correlation-Id"

// Handler serves the chat and dashboard routes behind API Gateway. POST
// requests always wait for the reply, since the invocation ends with the
// response.
type Handler struct {
	chat      httpapi.ChatService
	dashboard httpapi.DashboardSource
	logger    *zap.Logger
}

func NewHandler(chat httpapi.ChatService, dashboard httpapi.DashboardSource, logger *zap.Logger) (*Handler, error) {
	if chat == nil {
		return nil, errors.New("handler: chat service must not be nil")
	}
	if dashboard == nil {
		return nil, errors.New("handler: dashboard source must not be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{chat: chat, dashboard: dashboard, logger: logger}, nil
}

func (h *Handler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	correlationID := headerValue(req.Headers, correlationHeader)
	if correlationID == "" {
		correlationID = uuid.NewString()
	}
	logger := h.logger.With(zap.String("correlation_id", correlationID))

	path := strings.TrimRight(req.Path, "/")
	switch {
	case req.HTTPMethod == http.MethodGet && path == "/health":
		return jsonResponse(http.StatusOK, map[string]string{"status": "ok"}, correlationID), nil
	case req.HTTPMethod == http.MethodGet && path == "/v1/dashboard":
		return jsonResponse(http.StatusOK, h.dashboard.View(), correlationID), nil
	case req.HTTPMethod == http.MethodGet && path == "/v1/chat":
		return jsonResponse(http.StatusOK, h.chat.Snapshot(), correlationID), nil
	case req.HTTPMethod == http.MethodPost && path == "/v1/chat/messages":
		return h.submit(ctx, req, correlationID, logger), nil
	default:
		return jsonResponse(http.StatusNotFound, httpapi.ErrorResponse{Error: httpapi.ErrorNotFound}, correlationID), nil
	}
}

func (h *Handler) submit(ctx context.Context, req events.APIGatewayProxyRequest, correlationID string, logger *zap.Logger) events.APIGatewayProxyResponse {
	var in httpapi.SubmitRequest
	if err := json.Unmarshal([]byte(req.Body), &in); err != nil {
		logger.Info("invalid request body", zap.Error(err))
		return jsonResponse(http.StatusBadRequest, httpapi.ErrorResponse{Error: httpapi.ErrorInvalidInput}, correlationID)
	}

	rc, err := h.chat.Submit(in.Text)
	if err != nil {
		status, code := httpapi.ErrorStatus(err)
		logger.Warn("submit rejected", zap.Error(err), zap.Int("status", status))
		return jsonResponse(status, httpapi.ErrorResponse{Error: code}, correlationID)
	}
	if !rc.Accepted {
		return jsonResponse(http.StatusOK, httpapi.SubmitResponse{Snapshot: h.chat.Snapshot()}, correlationID)
	}

	select {
	case <-rc.Done:
	case <-ctx.Done():
		logger.Warn("invocation ended before reply", zap.Error(ctx.Err()))
		return jsonResponse(http.StatusGatewayTimeout, httpapi.ErrorResponse{Error: httpapi.ErrorUnavailable}, correlationID)
	}

	msg := rc.Message
	return jsonResponse(http.StatusOK, httpapi.SubmitResponse{
		Accepted: true,
		Message:  &msg,
		Snapshot: h.chat.Snapshot(),
	}, correlationID)
}

func jsonResponse(status int, payload any, correlationID string) events.APIGatewayProxyResponse {
	body, err := json.Marshal(payload)
	if err != nil {
		status = http.StatusInternalServerError
		body = []byte(`{"error":"INTERNAL_ERROR"}`)
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers: map[string]string{
			"Content-Type":    "application/json",
			correlationHeader: correlationID,
		},
		Body: string(body),
	}
}

// headerValue looks up a header case-insensitively; API Gateway forwards
// header names as the client sent them.
func headerValue(headers map[string]string, name string) string {
	if v, ok := headers[name]; ok {
		return strings.TrimSpace(v)
	}
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
