package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sandevgo/recall/internal/config"
	"github.com/sandevgo/recall/internal/core"
	"github.com/sandevgo/recall/pkg/log"
)

const respondSystemPrompt = "You are a helpful assistant. Use the provided conversation context to give informed and coherent responses."

// FallbackReply is returned to the caller when the completion provider
// fails after retries. The real error is logged, never shown.
const FallbackReply = "Sorry, I'm having trouble thinking right now."

// Pipeline is the inbound surface of the memory subsystem. All public
// operations key on a conversation id from the chat surface; the pipeline
// resolves it to a durable session id before touching storage.
type Pipeline struct {
	ctxCfg     *config.ContextConfig
	sessions   core.SessionRepository
	messages   core.MessagesRepository
	summaries  core.SummariesRepository
	composer   *Composer
	summarizer *Summarizer
	trigger    *Trigger
	completer  core.Completer

	locks  sessionLocks
	recent *promptRing
}

func NewPipeline(
	ctxCfg *config.ContextConfig,
	sessions core.SessionRepository,
	messages core.MessagesRepository,
	summaries core.SummariesRepository,
	composer *Composer,
	summarizer *Summarizer,
	trigger *Trigger,
	completer core.Completer,
) *Pipeline {
	return &Pipeline{
		ctxCfg:     ctxCfg,
		sessions:   sessions,
		messages:   messages,
		summaries:  summaries,
		composer:   composer,
		summarizer: summarizer,
		trigger:    trigger,
		completer:  completer,
		recent:     newPromptRing(recentPromptCap),
	}
}

// RecordMessage appends one turn to the conversation's durable history.
func (p *Pipeline) RecordMessage(ctx context.Context, conversationID, role, senderID, content string, at time.Time) error {
	sessionID, err := p.sessions.GetOrCreateSession(ctx, conversationID)
	if err != nil {
		return fmt.Errorf("resolve session: %w", err)
	}

	msg := core.Message{
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		SenderID:  senderID,
		CreatedAt: at,
	}
	if err := p.messages.AddMessage(ctx, sessionID, msg); err != nil {
		return fmt.Errorf("append message: %w", err)
	}
	return nil
}

// BuildContext assembles the context block for a query. A non-positive
// maxTokens falls back to the configured ceiling.
func (p *Pipeline) BuildContext(ctx context.Context, conversationID, query string, maxTokens int) (string, error) {
	sessionID, err := p.sessions.GetOrCreateSession(ctx, conversationID)
	if err != nil {
		return "", fmt.Errorf("resolve session: %w", err)
	}
	if maxTokens <= 0 {
		maxTokens = p.ctxCfg.MaxContextTokens
	}
	return p.composer.BuildContext(ctx, sessionID, query, maxTokens), nil
}

// Respond records the user turn, assembles context, asks the completion
// provider and records the reply. Provider failure yields FallbackReply
// with a nil error; the turn stays recorded so history is not lost.
func (p *Pipeline) Respond(ctx context.Context, conversationID, senderID, query string) (string, error) {
	logger := log.FromCtx(ctx)

	if err := p.RecordMessage(ctx, conversationID, core.RoleUser, senderID, query, time.Now().UTC()); err != nil {
		return "", err
	}

	contextBlock, err := p.BuildContext(ctx, conversationID, query, p.ctxCfg.MaxContextTokens)
	if err != nil {
		return "", err
	}
	p.recent.add(PromptRecord{Query: query, Context: contextBlock, At: time.Now().UTC()})

	reply, err := p.completer.Complete(ctx, []core.ChatMessage{
		{Role: core.RoleSystem, Content: respondSystemPrompt},
		{Role: core.RoleSystem, Content: contextBlock},
		{Role: core.RoleUser, Content: query},
	})
	if err != nil {
		logger.Error().Err(err).Str("conversation_id", conversationID).Msg("completion failed")
		return FallbackReply, nil
	}

	if err := p.RecordMessage(ctx, conversationID, core.RoleAssistant, "", reply, time.Now().UTC()); err != nil {
		logger.Error().Err(err).Msg("failed to record assistant reply")
	}
	return reply, nil
}

// MaybeSummarize evaluates the summarization thresholds for one
// conversation and compresses the unsummarized span when any fires.
func (p *Pipeline) MaybeSummarize(ctx context.Context, conversationID string) error {
	sessionID, err := p.sessions.GetOrCreateSession(ctx, conversationID)
	if err != nil {
		return fmt.Errorf("resolve session: %w", err)
	}
	return p.maybeSummarizeSession(ctx, sessionID)
}

// SummarizeDue evaluates every session active since the given time.
// Per-session failures are logged and do not stop the sweep.
func (p *Pipeline) SummarizeDue(ctx context.Context, since time.Time) error {
	sessions, err := p.messages.ActiveSessions(ctx, since)
	if err != nil {
		return fmt.Errorf("list active sessions: %w", err)
	}

	for _, sessionID := range sessions {
		if err := p.maybeSummarizeSession(ctx, sessionID); err != nil {
			log.FromCtx(ctx).Error().Err(err).Str("session_id", sessionID).Msg("summarization failed")
		}
	}
	return nil
}

// RecentPrompts returns the last few assembled prompts, oldest first.
func (p *Pipeline) RecentPrompts() []PromptRecord {
	return p.recent.records()
}

func (p *Pipeline) maybeSummarizeSession(ctx context.Context, sessionID string) error {
	// One summarization at a time per session; concurrent triggers would
	// produce overlapping spans.
	unlock := p.locks.lock(sessionID)
	defer unlock()

	last, err := p.summaries.GetLatestSummary(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("load latest summary: %w", err)
	}

	after := time.Time{}
	if last != nil {
		after = last.CoversTo
	}
	unsummarized, err := p.messages.GetMessagesAfter(ctx, sessionID, after)
	if err != nil {
		return fmt.Errorf("load unsummarized messages: %w", err)
	}

	if !p.trigger.ShouldSummarize(unsummarized, last, time.Now()) {
		return nil
	}

	summary, err := p.summarizer.Summarize(ctx, unsummarized)
	if err != nil {
		return fmt.Errorf("summarize session %s: %w", sessionID, err)
	}
	if err := p.summaries.AddSummary(ctx, summary); err != nil {
		return fmt.Errorf("store summary: %w", err)
	}

	log.FromCtx(ctx).Info().
		Str("session_id", sessionID).
		Int("messages", len(unsummarized)).
		Msg("summarized conversation span")
	return nil
}

// sessionLocks hands out one mutex per session id.
type sessionLocks struct {
	mu sync.Mutex
	m  map[string]*sync.Mutex
}

func (l *sessionLocks) lock(id string) func() {
	l.mu.Lock()
	if l.m == nil {
		l.m = make(map[string]*sync.Mutex)
	}
	sm, ok := l.m[id]
	if !ok {
		sm = &sync.Mutex{}
		l.m[id] = sm
	}
	l.mu.Unlock()

	sm.Lock()
	return sm.Unlock
}
