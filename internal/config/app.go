package config

import (
	"context"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/recall/pkg/log"
)

type AppConfig struct {
	RuntimePath string `env:"RECALL_RUNTIME_PATH" envDefault:".recall"`

	// EnableWorker starts the background summarization worker in serve mode.
	EnableWorker bool `env:"ENABLE_SUMMARY_WORKER" envDefault:"true"`

	// TokenCounter selects the token counting strategy: "words" for the
	// whitespace approximation, "tiktoken" for model-accurate counts.
	TokenCounter string `env:"TOKEN_COUNTER" envDefault:"words"`
}

func NewAppConfig(ctx context.Context) *AppConfig {
	c := &AppConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse App config")
	}
	return c
}

func (c AppConfig) GetDatabasePath() string {
	return filepath.Join(c.RuntimePath, "recall.db")
}
