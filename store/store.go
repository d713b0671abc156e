// Package store persists chat sessions and their messages.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/baatcheet/server/domain"
)

// ErrSessionNotFound is returned when an operation references a session id
// that does not exist.
var ErrSessionNotFound = errors.New("session not found")

// Store is the session persistence interface.
type Store interface {
	// CreateSession inserts a new session and returns its id. Language and
	// model are optional hints and are not validated.
	CreateSession(ctx context.Context, language, model string) (string, error)

	// GetSession returns the session, or (nil, nil) when it does not exist.
	GetSession(ctx context.Context, sessionID string) (*domain.Session, error)

	// AppendMessage inserts a message and bumps the session's updated_at and
	// message_count in a single transaction. Returns ErrSessionNotFound
	// without mutating anything if the session does not exist.
	AppendMessage(ctx context.Context, sessionID, role, content string) error

	// ListMessages returns the session's messages in timestamp order. An
	// empty session yields an empty slice, not an error.
	ListMessages(ctx context.Context, sessionID string) ([]domain.Message, error)

	// History returns the role/content projection of ListMessages, in the
	// same order, for re-submission to the completion API.
	History(ctx context.Context, sessionID string) ([]domain.ChatMessage, error)

	// SweepExpired deletes sessions whose updated_at is older than
	// now-timeout, messages first, and returns the number of sessions
	// deleted. Calling it with nothing expired is a no-op.
	SweepExpired(ctx context.Context, timeout time.Duration) (int64, error)

	Close() error
}
