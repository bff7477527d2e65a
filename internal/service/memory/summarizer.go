package memory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sandevgo/recall/internal/config"
	"github.com/sandevgo/recall/internal/core"
)

const summarySystemPrompt = "You are a summarization assistant."

// Summarizer compresses a span of messages into a short natural-language
// summary. The word limit is advisory: it is stated in the instruction,
// not enforced on the returned text.
type Summarizer struct {
	completer core.Completer
	cfg       *config.SummaryConfig
}

func NewSummarizer(completer core.Completer, cfg *config.SummaryConfig) *Summarizer {
	return &Summarizer{
		completer: completer,
		cfg:       cfg,
	}
}

// Summarize produces a Summary covering the first through last input
// message. On completion failure the error surfaces and the span stays
// unsummarized; the next trigger evaluation retries it.
func (s *Summarizer) Summarize(ctx context.Context, messages []core.Message) (core.Summary, error) {
	if len(messages) == 0 {
		return core.Summary{}, fmt.Errorf("no messages to summarize")
	}

	reply, err := s.completer.Complete(ctx, []core.ChatMessage{
		{Role: core.RoleSystem, Content: summarySystemPrompt},
		{Role: core.RoleUser, Content: s.buildPrompt(messages)},
	})
	if err != nil {
		return core.Summary{}, fmt.Errorf("summarize span: %w", err)
	}

	return core.Summary{
		SessionID:  messages[0].SessionID,
		Content:    reply,
		CoversFrom: messages[0].CreatedAt,
		CoversTo:   messages[len(messages)-1].CreatedAt,
		CreatedAt:  time.Now().UTC(),
	}, nil
}

func (s *Summarizer) buildPrompt(messages []core.Message) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Summarize the following conversation in %d words or less. ", s.cfg.WordLimit)
	fmt.Fprintf(&b, "Style: %s. Focus: %s. ", s.cfg.Style, s.cfg.Focus)
	if s.cfg.IncludeSentiment {
		b.WriteString("Include overall sentiment. ")
	}
	if s.cfg.IncludeEntities {
		b.WriteString("Highlight key entities or names. ")
	}
	b.WriteString("Conversation:\n")

	for i, m := range messages {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(m.Role)
		b.WriteString(": ")
		b.WriteString(m.Content)
	}
	return b.String()
}
