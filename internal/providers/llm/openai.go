package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/sandevgo/recall/internal/config"
	"github.com/sandevgo/recall/internal/core"
	"github.com/sandevgo/recall/pkg/retry"
)

// Completer calls an OpenAI-compatible chat completions endpoint. Transient
// failures are retried with backoff before the error surfaces to the caller.
type Completer struct {
	baseProvider
	retrier *retry.Retrier
}

func NewCompleter(cfg *config.OpenAIConfig) *Completer {
	retryCfg := retry.NewDefaultConfig()
	retryCfg.Attempts = cfg.RetryAttempts

	return &Completer{
		baseProvider: newBaseProvider(cfg.BaseURL, cfg.APIKey, cfg.ChatModel),
		retrier:      retry.NewRetrier(retryCfg),
	}
}

func (c *Completer) Complete(ctx context.Context, messages []core.ChatMessage) (string, error) {
	payload := map[string]any{
		"model":    c.model,
		"messages": messages,
	}

	var content string
	err := c.retrier.Do(ctx, func() error {
		resp, err := c.doRequest(ctx, http.MethodPost, "/v1/chat/completions", payload, c.authHeaders())
		if err != nil {
			return err
		}

		data, err := readResponse(resp)
		if err != nil {
			return err
		}

		var result struct {
			Choices []struct {
				Message core.ChatMessage `json:"message"`
			} `json:"choices"`
		}
		if err := json.Unmarshal(data, &result); err != nil {
			return fmt.Errorf("decode: %w", err)
		}
		if len(result.Choices) == 0 {
			return fmt.Errorf("empty choices: %s", string(data))
		}

		content = result.Choices[0].Message.Content
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	return content, nil
}
