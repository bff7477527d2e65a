package core

import "time"

const (
	RecallName    = "Recall"
	RecallVersion = "0.1.0"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Message is a single conversation turn. Records are append-only and
// ordered by CreatedAt within a session.
type Message struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"session_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	SenderID  string    `json:"sender_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Summary compresses every message whose CreatedAt falls inside
// [CoversFrom, CoversTo]. Spans within a session must not overlap.
type Summary struct {
	ID         int64     `json:"id"`
	SessionID  string    `json:"session_id"`
	Content    string    `json:"content"`
	CoversFrom time.Time `json:"covers_from"`
	CoversTo   time.Time `json:"covers_to"`
	CreatedAt  time.Time `json:"created_at"`
}

// Fact is externally supplied derived knowledge, read-only here.
type Fact struct {
	Text       string  `json:"fact"`
	Confidence float64 `json:"confidence"`
}

// ChatMessage is the wire shape handed to the completion provider.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
