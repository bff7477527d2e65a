package core

import (
	"context"
	"time"
)

type MessagesRepository interface {
	AddMessage(ctx context.Context, sessionID string, msg Message) error
	GetMessages(ctx context.Context, sessionID string, limit int) ([]Message, error)
	GetMessagesAfter(ctx context.Context, sessionID string, after time.Time) ([]Message, error)
	GetMessagesInRange(ctx context.Context, sessionID string, from, to time.Time) ([]Message, error)
	ActiveSessions(ctx context.Context, since time.Time) ([]string, error)
}

type SummariesRepository interface {
	AddSummary(ctx context.Context, summary Summary) error
	GetSummaries(ctx context.Context, sessionID string) ([]Summary, error)
	GetLatestSummary(ctx context.Context, sessionID string) (*Summary, error)
}

// SessionRepository binds a chat-surface conversation id to a durable
// session id, creating one on first sight.
type SessionRepository interface {
	GetOrCreateSession(ctx context.Context, chatID string) (string, error)
}
