package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sandevgo/recall/pkg/log"
)

type SessionsRepo struct {
	db *sql.DB
}

func NewSessionsRepo(db *sql.DB) *SessionsRepo {
	return &SessionsRepo{db: db}
}

// GetOrCreateSession resolves a chat-surface conversation id to a durable
// session id, minting one on first contact.
func (r *SessionsRepo) GetOrCreateSession(ctx context.Context, chatID string) (string, error) {
	var sessionID string
	err := r.db.QueryRowContext(ctx,
		`SELECT session_id FROM sessions WHERE chat_id = ?`, chatID).Scan(&sessionID)
	if err == nil {
		return sessionID, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("failed to query session: %w", err)
	}

	sessionID = uuid.NewString()
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO sessions (chat_id, session_id) VALUES (?, ?)`, chatID, sessionID)
	if err != nil {
		// Concurrent first message for the same chat: somebody else won the
		// insert, read their row back.
		var existing string
		if selErr := r.db.QueryRowContext(ctx,
			`SELECT session_id FROM sessions WHERE chat_id = ?`, chatID).Scan(&existing); selErr == nil {
			return existing, nil
		}
		return "", fmt.Errorf("failed to insert session: %w", err)
	}

	log.FromCtx(ctx).Debug().Str("chat_id", chatID).Str("session_id", sessionID).Msg("created session")
	return sessionID, nil
}
