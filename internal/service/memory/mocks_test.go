package memory

import (
	"context"
	"time"

	"github.com/sandevgo/recall/internal/core"
)

type mockEmbedder struct {
	embedFunc func(ctx context.Context, text string) ([]float32, error)
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return m.embedFunc(ctx, text)
}

type mockCompleter struct {
	completeFunc func(ctx context.Context, messages []core.ChatMessage) (string, error)
}

func (m *mockCompleter) Complete(ctx context.Context, messages []core.ChatMessage) (string, error) {
	return m.completeFunc(ctx, messages)
}

type mockFactProvider struct {
	getFactsFunc func(ctx context.Context, sessionID string) ([]core.Fact, error)
}

func (m *mockFactProvider) GetFacts(ctx context.Context, sessionID string) ([]core.Fact, error) {
	return m.getFactsFunc(ctx, sessionID)
}

type mockGraphProvider struct {
	identifyFunc func(ctx context.Context, text string) ([]string, error)
	infoFunc     func(ctx context.Context, entity string) (string, error)
	relatedFunc  func(ctx context.Context, entity string, depth int) ([]string, error)
}

func (m *mockGraphProvider) IdentifyEntities(ctx context.Context, text string) ([]string, error) {
	return m.identifyFunc(ctx, text)
}

func (m *mockGraphProvider) GetEntityInfo(ctx context.Context, entity string) (string, error) {
	return m.infoFunc(ctx, entity)
}

func (m *mockGraphProvider) GetRelatedEntities(ctx context.Context, entity string, depth int) ([]string, error) {
	return m.relatedFunc(ctx, entity, depth)
}

type mockMessages struct {
	addFunc     func(ctx context.Context, sessionID string, msg core.Message) error
	getFunc     func(ctx context.Context, sessionID string, limit int) ([]core.Message, error)
	afterFunc   func(ctx context.Context, sessionID string, after time.Time) ([]core.Message, error)
	rangeFunc   func(ctx context.Context, sessionID string, from, to time.Time) ([]core.Message, error)
	sessionsFun func(ctx context.Context, since time.Time) ([]string, error)
}

func (m *mockMessages) AddMessage(ctx context.Context, sessionID string, msg core.Message) error {
	return m.addFunc(ctx, sessionID, msg)
}

func (m *mockMessages) GetMessages(ctx context.Context, sessionID string, limit int) ([]core.Message, error) {
	return m.getFunc(ctx, sessionID, limit)
}

func (m *mockMessages) GetMessagesAfter(ctx context.Context, sessionID string, after time.Time) ([]core.Message, error) {
	return m.afterFunc(ctx, sessionID, after)
}

func (m *mockMessages) GetMessagesInRange(ctx context.Context, sessionID string, from, to time.Time) ([]core.Message, error) {
	return m.rangeFunc(ctx, sessionID, from, to)
}

func (m *mockMessages) ActiveSessions(ctx context.Context, since time.Time) ([]string, error) {
	return m.sessionsFun(ctx, since)
}

type mockSummaries struct {
	addFunc    func(ctx context.Context, summary core.Summary) error
	getFunc    func(ctx context.Context, sessionID string) ([]core.Summary, error)
	latestFunc func(ctx context.Context, sessionID string) (*core.Summary, error)
}

func (m *mockSummaries) AddSummary(ctx context.Context, summary core.Summary) error {
	return m.addFunc(ctx, summary)
}

func (m *mockSummaries) GetSummaries(ctx context.Context, sessionID string) ([]core.Summary, error) {
	return m.getFunc(ctx, sessionID)
}

func (m *mockSummaries) GetLatestSummary(ctx context.Context, sessionID string) (*core.Summary, error) {
	return m.latestFunc(ctx, sessionID)
}

type mockSessions struct {
	getOrCreateFunc func(ctx context.Context, chatID string) (string, error)
}

func (m *mockSessions) GetOrCreateSession(ctx context.Context, chatID string) (string, error) {
	return m.getOrCreateFunc(ctx, chatID)
}

// emptyMessages is a mockMessages that returns nothing everywhere.
func emptyMessages() *mockMessages {
	return &mockMessages{
		addFunc: func(ctx context.Context, sessionID string, msg core.Message) error { return nil },
		getFunc: func(ctx context.Context, sessionID string, limit int) ([]core.Message, error) {
			return nil, nil
		},
		afterFunc: func(ctx context.Context, sessionID string, after time.Time) ([]core.Message, error) {
			return nil, nil
		},
		rangeFunc: func(ctx context.Context, sessionID string, from, to time.Time) ([]core.Message, error) {
			return nil, nil
		},
		sessionsFun: func(ctx context.Context, since time.Time) ([]string, error) { return nil, nil },
	}
}

func emptySummaries() *mockSummaries {
	return &mockSummaries{
		addFunc: func(ctx context.Context, summary core.Summary) error { return nil },
		getFunc: func(ctx context.Context, sessionID string) ([]core.Summary, error) { return nil, nil },
		latestFunc: func(ctx context.Context, sessionID string) (*core.Summary, error) {
			return nil, nil
		},
	}
}

func identityEmbedder(vectors map[string][]float32) *mockEmbedder {
	return &mockEmbedder{
		embedFunc: func(ctx context.Context, text string) ([]float32, error) {
			if v, ok := vectors[text]; ok {
				return v, nil
			}
			return []float32{1, 0, 0}, nil
		},
	}
}
