package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/recall/internal/core"
)

func TestSummarizer_Summarize(t *testing.T) {
	from := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	to := from.Add(2 * time.Hour)

	var gotPrompt string
	completer := &mockCompleter{
		completeFunc: func(ctx context.Context, messages []core.ChatMessage) (string, error) {
			require.Len(t, messages, 2)
			assert.Equal(t, core.RoleSystem, messages[0].Role)
			assert.Equal(t, "You are a summarization assistant.", messages[0].Content)
			gotPrompt = messages[1].Content
			return "they planned a trip", nil
		},
	}

	cfg := testSummaryConfig()
	cfg.IncludeEntities = true
	s := NewSummarizer(completer, cfg)

	summary, err := s.Summarize(context.Background(), []core.Message{
		{SessionID: "s1", Role: core.RoleUser, Content: "let's plan a trip", CreatedAt: from},
		{SessionID: "s1", Role: core.RoleAssistant, Content: "where to?", CreatedAt: from.Add(time.Hour)},
		{SessionID: "s1", Role: core.RoleUser, Content: "Lisbon", CreatedAt: to},
	})
	require.NoError(t, err)

	assert.Equal(t, "s1", summary.SessionID)
	assert.Equal(t, "they planned a trip", summary.Content)
	assert.Equal(t, from, summary.CoversFrom)
	assert.Equal(t, to, summary.CoversTo)

	assert.Contains(t, gotPrompt, "in 200 words or less")
	assert.Contains(t, gotPrompt, "Style: concise.")
	assert.Contains(t, gotPrompt, "Focus: key decisions and topics.")
	assert.Contains(t, gotPrompt, "Highlight key entities or names.")
	assert.NotContains(t, gotPrompt, "Include overall sentiment.")
	assert.Contains(t, gotPrompt, "Conversation:\nuser: let's plan a trip\nassistant: where to?\nuser: Lisbon")
}

func TestSummarizer_Summarize_EmptyInput(t *testing.T) {
	s := NewSummarizer(&mockCompleter{}, testSummaryConfig())

	_, err := s.Summarize(context.Background(), nil)
	require.Error(t, err)
}

func TestSummarizer_Summarize_CompleterError(t *testing.T) {
	completer := &mockCompleter{
		completeFunc: func(ctx context.Context, messages []core.ChatMessage) (string, error) {
			return "", errors.New("model overloaded")
		},
	}
	s := NewSummarizer(completer, testSummaryConfig())

	_, err := s.Summarize(context.Background(), []core.Message{
		{SessionID: "s1", Role: core.RoleUser, Content: "hi", CreatedAt: time.Now()},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model overloaded")
}

func TestSummarizer_Summarize_SentimentFlag(t *testing.T) {
	var gotPrompt string
	completer := &mockCompleter{
		completeFunc: func(ctx context.Context, messages []core.ChatMessage) (string, error) {
			gotPrompt = messages[1].Content
			return "ok", nil
		},
	}

	cfg := testSummaryConfig()
	cfg.IncludeSentiment = true
	s := NewSummarizer(completer, cfg)

	_, err := s.Summarize(context.Background(), []core.Message{
		{Role: core.RoleUser, Content: "hi", CreatedAt: time.Now()},
	})
	require.NoError(t, err)
	assert.Contains(t, gotPrompt, "Include overall sentiment.")
}
