package httpapi

import (
	"errors"
	"net/http"

	"nexus/internal/usecase"
)

type ErrorCode string

const (
	ErrorInvalidInput  ErrorCode = "INVALID_INPUT"
	ErrorAwaitingReply ErrorCode = "AWAITING_REPLY"
	ErrorQueueFull     ErrorCode = "QUEUE_FULL"
	ErrorUnavailable   ErrorCode = "UNAVAILABLE"
	ErrorNotFound      ErrorCode = "NOT_FOUND"
	ErrorInternal      ErrorCode = "INTERNAL_ERROR"
)

type ErrorResponse struct {
	Error ErrorCode `json:"error"`
}

// ErrorStatus maps a conversation error to its HTTP status and error code.
func ErrorStatus(err error) (int, ErrorCode) {
	switch {
	case errors.Is(err, usecase.ErrAwaitingReply):
		return http.StatusConflict, ErrorAwaitingReply
	case errors.Is(err, usecase.ErrQueueFull):
		return http.StatusTooManyRequests, ErrorQueueFull
	case errors.Is(err, usecase.ErrClosed):
		return http.StatusServiceUnavailable, ErrorUnavailable
	default:
		return http.StatusInternalServerError, ErrorInternal
	}
}
