// Package session owns per-visitor conversation state: message history,
// activity clock, quota counters, lifecycle transitions, and transcript
// dispatch.
package session

import (
	"sync"
	"time"

	"github.com/hyperjump/hanashi/internal/models"
)

// State is a session lifecycle state.
type State string

const (
	// StateActive accepts messages under normal quota and idle checks.
	StateActive State = "active"
	// StateWarned has had the idle warning issued; a new message returns
	// it to StateActive.
	StateWarned State = "warned"
	// StateClosed is terminal: read and export only.
	StateClosed State = "closed"
)

// CloseReason records why a session was closed.
type CloseReason string

const (
	CloseIdleTimeout   CloseReason = "idle-timeout"
	CloseMessageLimit  CloseReason = "message-limit"
	CloseTimeLimit     CloseReason = "time-limit"
	CloseUserRequested CloseReason = "user-requested"
)

// session is one visitor conversation, exclusively owned by the Engine and
// serialized by its own mutex.
type session struct {
	mu sync.Mutex

	id           string
	createdAt    time.Time
	lastActivity time.Time
	history      []models.ChatMessage
	messageCount int
	visitorEmail string
	state        State
	warningSent  bool
	closeReason  CloseReason
	closedAt     time.Time
	dispatched   bool
}

// Snapshot is an immutable copy of a session, safe to hand to exporters.
type Snapshot struct {
	ID           string               `json:"id"`
	CreatedAt    time.Time            `json:"created_at"`
	LastActivity time.Time            `json:"last_activity"`
	History      []models.ChatMessage `json:"history"`
	MessageCount int                  `json:"message_count"`
	VisitorEmail string               `json:"visitor_email,omitempty"`
	State        State                `json:"state"`
	CloseReason  CloseReason          `json:"close_reason,omitempty"`
}

// snapshotLocked copies the session. Caller holds s.mu.
func (s *session) snapshotLocked() Snapshot {
	return Snapshot{
		ID:           s.id,
		CreatedAt:    s.createdAt,
		LastActivity: s.lastActivity,
		History:      append([]models.ChatMessage(nil), s.history...),
		MessageCount: s.messageCount,
		VisitorEmail: s.visitorEmail,
		State:        s.state,
		CloseReason:  s.closeReason,
	}
}
