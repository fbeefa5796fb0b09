// Package domain contains core domain types for the chat system.
package domain

import (
	"time"
)

// Role identifies who produced a message.
type Role string

const (
	// RoleUser marks a turn spoken by the active speaker.
	RoleUser Role = "user"
	// RoleAssistant marks a turn produced by the assistant.
	RoleAssistant Role = "assistant"
)

// Message is one turn in a speaker's conversation log. Messages are immutable
// once written; their order within the log is the append order.
type Message struct {
	ID        string    `json:"id,omitempty"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}
