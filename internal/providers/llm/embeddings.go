package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/sandevgo/recall/internal/config"
	"github.com/sandevgo/recall/pkg/retry"
)

// Embedder calls an OpenAI-compatible embeddings endpoint.
type Embedder struct {
	baseProvider
	retrier *retry.Retrier
}

func NewEmbedder(cfg *config.OpenAIConfig) *Embedder {
	retryCfg := retry.NewDefaultConfig()
	retryCfg.Attempts = cfg.RetryAttempts

	return &Embedder{
		baseProvider: newBaseProvider(cfg.BaseURL, cfg.APIKey, cfg.EmbeddingModel),
		retrier:      retry.NewRetrier(retryCfg),
	}
}

func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	payload := map[string]any{
		"model": e.model,
		"input": text,
	}

	var vector []float32
	err := e.retrier.Do(ctx, func() error {
		resp, err := e.doRequest(ctx, http.MethodPost, "/v1/embeddings", payload, e.authHeaders())
		if err != nil {
			return err
		}

		data, err := readResponse(resp)
		if err != nil {
			return err
		}

		var result struct {
			Data []struct {
				Embedding []float32 `json:"embedding"`
			} `json:"data"`
		}
		if err := json.Unmarshal(data, &result); err != nil {
			return fmt.Errorf("decode: %w", err)
		}
		if len(result.Data) == 0 {
			return fmt.Errorf("empty embedding data: %s", string(data))
		}

		vector = result.Data[0].Embedding
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("embedding: %w", err)
	}
	return vector, nil
}
