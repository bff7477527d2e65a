package config

import (
	"context"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/recall/pkg/log"
)

// SummaryConfig holds summarization trigger thresholds and the directives
// embedded in the summarization prompt.
type SummaryConfig struct {
	MaxMessages int           `env:"MAX_MESSAGES_BEFORE_SUMMARY" envDefault:"75"`
	MaxChars    int           `env:"MAX_CHARS_BEFORE_SUMMARY" envDefault:"12000"`
	MaxAge      time.Duration `env:"SUMMARY_MAX_AGE" envDefault:"24h"`

	WordLimit        int    `env:"SUMMARY_WORD_LIMIT" envDefault:"200"`
	Style            string `env:"SUMMARY_STYLE" envDefault:"concise"`
	Focus            string `env:"SUMMARY_FOCUS" envDefault:"key decisions and topics"`
	IncludeSentiment bool   `env:"SUMMARY_SENTIMENT" envDefault:"false"`
	IncludeEntities  bool   `env:"SUMMARY_ENTITIES" envDefault:"true"`

	// CheckInterval is the background worker's evaluation cadence.
	CheckInterval time.Duration `env:"SUMMARY_CHECK_INTERVAL" envDefault:"1m"`
}

func NewSummaryConfig(ctx context.Context) *SummaryConfig {
	c := &SummaryConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Summary config")
	}
	return c
}
