package usecase

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	ErrorConfiguration ErrorKind = "CONFIGURATION_ERROR"
	ErrorProvider      ErrorKind = "PROVIDER_ERROR"
)

// Error is returned by ResponseGateway.Generate. It never reaches the
// conversation: Reply turns it into the fallback text.
type Error struct {
	Kind   ErrorKind
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("usecase: %s (%s)", e.Kind, e.Reason)
	}
	return fmt.Sprintf("usecase: %s (%s): %v", e.Kind, e.Reason, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func newError(kind ErrorKind, reason string, err error) *Error {
	return &Error{Kind: kind, Reason: reason, Err: err}
}

// IsKind reports whether err carries a usecase Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var ue *Error
	return errors.As(err, &ue) && ue.Kind == kind
}

var (
	ErrAwaitingReply = errors.New("usecase: a reply is still pending")
	ErrQueueFull     = errors.New("usecase: submission queue is full")
	ErrClosed        = errors.New("usecase: conversation is closed")
)
