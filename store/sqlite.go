package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"

	"github.com/baatcheet/server/domain"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the database at dsn and runs
// migrations.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// migrate runs database migrations.
func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			session_id TEXT PRIMARY KEY,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			message_count INTEGER NOT NULL DEFAULT 0,
			language TEXT,
			model TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS messages (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			timestamp DATETIME NOT NULL,
			FOREIGN KEY (session_id) REFERENCES sessions(session_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_session ON messages(session_id, timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_updated ON sessions(updated_at)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\n%s", err, m)
		}
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateSession creates a new session with a fresh UUID.
func (s *SQLiteStore) CreateSession(ctx context.Context, language, model string) (string, error) {
	sessionID := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (session_id, created_at, updated_at, message_count, language, model)
		 VALUES (?, ?, ?, 0, ?, ?)`,
		sessionID, now, now, nullable(language), nullable(model))
	if err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}

	log.Debug().Str("session_id", sessionID).Msg("session created")
	return sessionID, nil
}

// GetSession retrieves a session by ID, returning (nil, nil) when absent.
func (s *SQLiteStore) GetSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	var session domain.Session
	var language, model sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT session_id, created_at, updated_at, message_count, language, model
		 FROM sessions WHERE session_id = ?`,
		sessionID).Scan(&session.ID, &session.CreatedAt, &session.UpdatedAt, &session.MessageCount, &language, &model)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	session.Language = language.String
	session.Model = model.String
	return &session, nil
}

// AppendMessage inserts a message and bumps the session counters atomically.
func (s *SQLiteStore) AppendMessage(ctx context.Context, sessionID, role, content string) error {
	now := time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Bump the session first: zero rows means the session does not exist and
	// nothing has been written yet.
	res, err := tx.ExecContext(ctx,
		`UPDATE sessions SET updated_at = ?, message_count = message_count + 1 WHERE session_id = ?`,
		now, sessionID)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrSessionNotFound
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO messages (session_id, role, content, timestamp) VALUES (?, ?, ?, ?)`,
		sessionID, role, content, now); err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}

	return tx.Commit()
}

// ListMessages retrieves a session's messages in timestamp order.
func (s *SQLiteStore) ListMessages(ctx context.Context, sessionID string) ([]domain.Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, role, content, timestamp
		 FROM messages WHERE session_id = ? ORDER BY timestamp ASC, id ASC`,
		sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := []domain.Message{}
	for rows.Next() {
		var msg domain.Message
		if err := rows.Scan(&msg.ID, &msg.SessionID, &msg.Role, &msg.Content, &msg.Timestamp); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// History returns messages projected to the fields the completion API needs.
func (s *SQLiteStore) History(ctx context.Context, sessionID string) ([]domain.ChatMessage, error) {
	messages, err := s.ListMessages(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	history := make([]domain.ChatMessage, 0, len(messages))
	for _, msg := range messages {
		history = append(history, domain.ChatMessage{Role: msg.Role, Content: msg.Content})
	}
	return history, nil
}

// SweepExpired deletes sessions idle longer than timeout, and their messages.
func (s *SQLiteStore) SweepExpired(ctx context.Context, timeout time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-timeout)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Messages first so no message ever references a deleted session.
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM messages WHERE session_id IN (SELECT session_id FROM sessions WHERE updated_at < ?)`,
		cutoff); err != nil {
		return 0, fmt.Errorf("failed to delete expired messages: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE updated_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}

	if deleted > 0 {
		log.Info().Int64("deleted", deleted).Msg("cleaned up expired sessions")
	}
	return deleted, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
