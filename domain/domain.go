// Package domain defines the core domain models for the chat backend.
package domain

import "time"

// Message roles as sent to the upstream completion API.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Session represents a conversation session.
type Session struct {
	ID           string    `json:"session_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	MessageCount int       `json:"message_count"`
	Language     string    `json:"language,omitempty"`
	Model        string    `json:"model,omitempty"`
}

// Message is a single turn stored in a session. Messages are immutable once
// written and ordered by Timestamp ascending within their session.
type Message struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"session_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ChatMessage is the role/content projection sent to the completion API.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// MetricSample is one recorded request outcome.
type MetricSample struct {
	Timestamp    time.Time `json:"timestamp"`
	Latency      float64   `json:"latency"`
	Tokens       int       `json:"tokens"`
	TokensPerSec float64   `json:"tokens_per_sec"`
	Model        string    `json:"model"`
	Success      bool      `json:"success"`
}
