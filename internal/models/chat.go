package models

import "time"

// Role tags the author of a chat message.
type Role string

const (
	// RoleVisitor is a message written by the site visitor.
	RoleVisitor Role = "visitor"
	// RoleAssistant is a reply produced by the assistant.
	RoleAssistant Role = "assistant"
)

// ChatMessage is one entry in a session's ordered history.
type ChatMessage struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}
