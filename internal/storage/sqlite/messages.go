package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sandevgo/recall/internal/core"
	"github.com/sandevgo/recall/pkg/log"
)

type MessagesRepo struct {
	db *sql.DB
}

func NewMessagesRepo(db *sql.DB) *MessagesRepo {
	return &MessagesRepo{db: db}
}

func (r *MessagesRepo) AddMessage(ctx context.Context, sessionID string, msg core.Message) error {
	createdAt := msg.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	query := `INSERT INTO messages (session_id, role, content, sender_id, created_at) VALUES (?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, sessionID, msg.Role, msg.Content, msg.SenderID, createdAt)
	if err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}
	return nil
}

func (r *MessagesRepo) GetMessages(ctx context.Context, sessionID string, limit int) ([]core.Message, error) {
	// Fetch the LAST 'limit' messages by ordering DESC
	query := `SELECT id, session_id, role, content, sender_id, created_at
		FROM messages WHERE session_id = ? ORDER BY id DESC LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	messages, err := scanMessages(rows)
	if err != nil {
		return nil, err
	}

	// The query returned messages newest first; reverse back to
	// chronological order.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	log.FromCtx(ctx).Debug().Int("count", len(messages)).Msg("loaded history messages")
	return messages, nil
}

func (r *MessagesRepo) GetMessagesAfter(ctx context.Context, sessionID string, after time.Time) ([]core.Message, error) {
	query := `SELECT id, session_id, role, content, sender_id, created_at
		FROM messages WHERE session_id = ? AND created_at > ? ORDER BY created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, sessionID, after)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages after %s: %w", after, err)
	}
	defer rows.Close()

	return scanMessages(rows)
}

func (r *MessagesRepo) GetMessagesInRange(ctx context.Context, sessionID string, from, to time.Time) ([]core.Message, error) {
	query := `SELECT id, session_id, role, content, sender_id, created_at
		FROM messages WHERE session_id = ? AND created_at >= ? AND created_at <= ? ORDER BY created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, sessionID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages in range: %w", err)
	}
	defer rows.Close()

	return scanMessages(rows)
}

func (r *MessagesRepo) ActiveSessions(ctx context.Context, since time.Time) ([]string, error) {
	query := `SELECT DISTINCT session_id FROM messages WHERE created_at > ?`

	rows, err := r.db.QueryContext(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query active sessions: %w", err)
	}
	defer rows.Close()

	var sessions []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan session id: %w", err)
		}
		sessions = append(sessions, id)
	}
	return sessions, rows.Err()
}

func scanMessages(rows *sql.Rows) ([]core.Message, error) {
	var messages []core.Message
	for rows.Next() {
		var msg core.Message
		var senderID sql.NullString

		if err := rows.Scan(&msg.ID, &msg.SessionID, &msg.Role, &msg.Content, &senderID, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		msg.SenderID = senderID.String
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}
