package models

import (
	"time"

	"github.com/google/uuid"
)

// Role represents the role of a message sender
type Role string

const (
	// RoleUser represents a question typed by the user
	RoleUser Role = "user"
	// RoleAssistant represents an answer returned by the webhook
	RoleAssistant Role = "assistant"
)

// Message is one entry of a transcript. Messages are never modified after creation.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// NewMessage creates a message with a fresh ID
func NewMessage(role Role, text string) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      role,
		Text:      text,
		Timestamp: time.Now(),
	}
}
