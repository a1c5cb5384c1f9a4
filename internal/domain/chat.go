package domain

import (
	"fmt"
	"time"
)

// Role identifies the author of a conversation entry.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

func (r *Role) UnmarshalText(b []byte) error {
	role := Role(b)
	if !role.Valid() {
		return fmt.Errorf("domain: unknown role %q", string(b))
	}
	*r = role
	return nil
}

// Message is a single immutable conversation entry.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Snapshot is a read-only copy of the conversation state handed to views.
// Version increases on every change.
type Snapshot struct {
	Messages []Message `json:"messages"`
	Pending  bool      `json:"pending"`
	Version  uint64    `json:"version"`
}

// Last returns the newest message, if any.
func (s Snapshot) Last() (Message, bool) {
	if len(s.Messages) == 0 {
		return Message{}, false
	}
	return s.Messages[len(s.Messages)-1], true
}

// GenerationRequest is the provider-agnostic single-turn request shape.
type GenerationRequest struct {
	Model             string
	SystemInstruction string
	Prompt            string
	Temperature       float64
	TopP              float64
}
