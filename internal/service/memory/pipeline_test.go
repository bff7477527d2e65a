package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/recall/internal/core"
)

func passthroughSessions() *mockSessions {
	return &mockSessions{
		getOrCreateFunc: func(ctx context.Context, chatID string) (string, error) {
			return "session-" + chatID, nil
		},
	}
}

func newTestPipeline(messages *mockMessages, summaries *mockSummaries, completer *mockCompleter) *Pipeline {
	cfg := testContextConfig()
	composer := NewComposer(cfg, identityEmbedder(nil), nil, nil, messages, summaries, WordCounter{})
	summarizer := NewSummarizer(completer, testSummaryConfig())
	return NewPipeline(
		cfg,
		passthroughSessions(),
		messages,
		summaries,
		composer,
		summarizer,
		NewTrigger(testSummaryConfig()),
		completer,
	)
}

func TestPipeline_Respond(t *testing.T) {
	var recorded []core.Message
	messages := emptyMessages()
	messages.addFunc = func(ctx context.Context, sessionID string, msg core.Message) error {
		assert.Equal(t, "session-chat42", sessionID)
		recorded = append(recorded, msg)
		return nil
	}

	completer := &mockCompleter{
		completeFunc: func(ctx context.Context, msgs []core.ChatMessage) (string, error) {
			require.Len(t, msgs, 3)
			assert.Equal(t, core.RoleSystem, msgs[0].Role)
			assert.Contains(t, msgs[1].Content, "Message Context:")
			assert.Equal(t, core.RoleUser, msgs[2].Role)
			assert.Equal(t, "what did we decide?", msgs[2].Content)
			return "we picked Lisbon", nil
		},
	}

	p := newTestPipeline(messages, emptySummaries(), completer)

	reply, err := p.Respond(context.Background(), "chat42", "u1", "what did we decide?")
	require.NoError(t, err)
	assert.Equal(t, "we picked Lisbon", reply)

	require.Len(t, recorded, 2)
	assert.Equal(t, core.RoleUser, recorded[0].Role)
	assert.Equal(t, "u1", recorded[0].SenderID)
	assert.Equal(t, core.RoleAssistant, recorded[1].Role)
	assert.Equal(t, "we picked Lisbon", recorded[1].Content)
}

func TestPipeline_Respond_FallbackOnCompletionFailure(t *testing.T) {
	var recorded []core.Message
	messages := emptyMessages()
	messages.addFunc = func(ctx context.Context, sessionID string, msg core.Message) error {
		recorded = append(recorded, msg)
		return nil
	}

	completer := &mockCompleter{
		completeFunc: func(ctx context.Context, msgs []core.ChatMessage) (string, error) {
			return "", errors.New("rate limited")
		},
	}

	p := newTestPipeline(messages, emptySummaries(), completer)

	reply, err := p.Respond(context.Background(), "chat42", "u1", "hello")
	require.NoError(t, err)
	assert.Equal(t, FallbackReply, reply)

	// The user turn is kept; the fallback is not written to history.
	require.Len(t, recorded, 1)
	assert.Equal(t, core.RoleUser, recorded[0].Role)
}

func TestPipeline_RecentPrompts_Bounded(t *testing.T) {
	completer := &mockCompleter{
		completeFunc: func(ctx context.Context, msgs []core.ChatMessage) (string, error) {
			return "ok", nil
		},
	}
	p := newTestPipeline(emptyMessages(), emptySummaries(), completer)

	for i := 0; i < 8; i++ {
		_, err := p.Respond(context.Background(), "chat42", "u1", fmt.Sprintf("query %d", i))
		require.NoError(t, err)
	}

	recent := p.RecentPrompts()
	require.Len(t, recent, 5)
	assert.Equal(t, "query 3", recent[0].Query)
	assert.Equal(t, "query 7", recent[4].Query)
	assert.Contains(t, recent[0].Context, "Message Context:")
}

func TestPipeline_MaybeSummarize_TriggerFires(t *testing.T) {
	now := time.Now().UTC()

	messages := emptyMessages()
	messages.afterFunc = func(ctx context.Context, sessionID string, after time.Time) ([]core.Message, error) {
		assert.True(t, after.IsZero())
		msgs := make([]core.Message, 80)
		for i := range msgs {
			msgs[i] = core.Message{
				SessionID: sessionID,
				Role:      core.RoleUser,
				Content:   "hello",
				CreatedAt: now.Add(time.Duration(i) * time.Minute),
			}
		}
		return msgs, nil
	}

	var stored *core.Summary
	summaries := emptySummaries()
	summaries.addFunc = func(ctx context.Context, summary core.Summary) error {
		stored = &summary
		return nil
	}

	completer := &mockCompleter{
		completeFunc: func(ctx context.Context, msgs []core.ChatMessage) (string, error) {
			return "a long chat", nil
		},
	}

	p := newTestPipeline(messages, summaries, completer)

	require.NoError(t, p.MaybeSummarize(context.Background(), "chat42"))

	require.NotNil(t, stored)
	assert.Equal(t, "a long chat", stored.Content)
	assert.Equal(t, now, stored.CoversFrom)
	assert.Equal(t, now.Add(79*time.Minute), stored.CoversTo)
}

func TestPipeline_MaybeSummarize_BelowThresholds(t *testing.T) {
	messages := emptyMessages()
	messages.afterFunc = func(ctx context.Context, sessionID string, after time.Time) ([]core.Message, error) {
		return []core.Message{{Role: core.RoleUser, Content: "hi", CreatedAt: time.Now()}}, nil
	}

	summaries := emptySummaries()
	summaries.addFunc = func(ctx context.Context, summary core.Summary) error {
		t.Fatal("no summary should be stored below thresholds")
		return nil
	}

	p := newTestPipeline(messages, summaries, &mockCompleter{})

	require.NoError(t, p.MaybeSummarize(context.Background(), "chat42"))
}

func TestPipeline_MaybeSummarize_ResumesAfterLatestSummary(t *testing.T) {
	coversTo := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)

	summaries := emptySummaries()
	summaries.latestFunc = func(ctx context.Context, sessionID string) (*core.Summary, error) {
		return &core.Summary{CoversTo: coversTo, CreatedAt: time.Now()}, nil
	}

	var gotAfter time.Time
	messages := emptyMessages()
	messages.afterFunc = func(ctx context.Context, sessionID string, after time.Time) ([]core.Message, error) {
		gotAfter = after
		return nil, nil
	}

	p := newTestPipeline(messages, summaries, &mockCompleter{})

	require.NoError(t, p.MaybeSummarize(context.Background(), "chat42"))
	assert.Equal(t, coversTo, gotAfter)
}

func TestPipeline_MaybeSummarize_SerializedPerConversation(t *testing.T) {
	now := time.Now().UTC()

	messages := emptyMessages()
	messages.afterFunc = func(ctx context.Context, sessionID string, after time.Time) ([]core.Message, error) {
		msgs := make([]core.Message, 80)
		for i := range msgs {
			msgs[i] = core.Message{Role: core.RoleUser, Content: "hello", CreatedAt: now}
		}
		return msgs, nil
	}

	var inFlight, maxInFlight int32
	completer := &mockCompleter{
		completeFunc: func(ctx context.Context, msgs []core.ChatMessage) (string, error) {
			n := atomic.AddInt32(&inFlight, 1)
			for {
				cur := atomic.LoadInt32(&maxInFlight)
				if n <= cur || atomic.CompareAndSwapInt32(&maxInFlight, cur, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			atomic.AddInt32(&inFlight, -1)
			return "summary", nil
		},
	}

	p := newTestPipeline(messages, emptySummaries(), completer)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, p.MaybeSummarize(context.Background(), "chat42"))
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&maxInFlight))
}

func TestPipeline_SummarizeDue_SweepsSessions(t *testing.T) {
	var evaluated []string
	messages := emptyMessages()
	messages.sessionsFun = func(ctx context.Context, since time.Time) ([]string, error) {
		return []string{"s1", "s2"}, nil
	}
	messages.afterFunc = func(ctx context.Context, sessionID string, after time.Time) ([]core.Message, error) {
		evaluated = append(evaluated, sessionID)
		return nil, nil
	}

	p := newTestPipeline(messages, emptySummaries(), &mockCompleter{})

	require.NoError(t, p.SummarizeDue(context.Background(), time.Now().Add(-time.Hour)))
	assert.Equal(t, []string{"s1", "s2"}, evaluated)
}

func TestPipeline_BuildContext_DefaultCeiling(t *testing.T) {
	p := newTestPipeline(emptyMessages(), emptySummaries(), &mockCompleter{})

	out, err := p.BuildContext(context.Background(), "chat42", "q", 0)
	require.NoError(t, err)
	assert.Contains(t, out, "Graph Context:")
}
