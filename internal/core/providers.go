package core

import "context"

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type Completer interface {
	Complete(ctx context.Context, messages []ChatMessage) (string, error)
}

type FactProvider interface {
	GetFacts(ctx context.Context, sessionID string) ([]Fact, error)
}

type GraphProvider interface {
	IdentifyEntities(ctx context.Context, text string) ([]string, error)
	GetEntityInfo(ctx context.Context, entity string) (string, error)
	GetRelatedEntities(ctx context.Context, entity string, depth int) ([]string, error)
}
