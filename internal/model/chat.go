package model

import (
	"time"

	"github.com/google/uuid"
)

// ChatRole identifies who produced a chat turn.
type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

// ChatTurn is an append-only chat log entry; turns are never updated or
// deleted.
type ChatTurn struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	SessionID string    `db:"session_id" json:"session_id"`
	Role      ChatRole  `db:"role" json:"role"`
	Text      string    `db:"text" json:"text"`
	Language  string    `db:"language" json:"language"`
	Timestamp time.Time `db:"timestamp" json:"timestamp"`
}

type ChatRequest struct {
	Message   string `json:"message" binding:"required"`
	SessionID string `json:"session_id" binding:"required"`
	Language  string `json:"language"`
}

type ChatResponse struct {
	Response   string  `json:"response"`
	SessionID  string  `json:"session_id"`
	Confidence float64 `json:"confidence"`
}
