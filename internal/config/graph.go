package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/recall/pkg/log"
)

// GraphConfig points at the fact/knowledge-graph service. An empty BaseURL
// disables graph and fact context; composition degrades to empty sections.
type GraphConfig struct {
	BaseURL string `env:"GRAPH_API_URL"`
	APIKey  string `env:"GRAPH_API_KEY"`
}

func NewGraphConfig(ctx context.Context) *GraphConfig {
	c := &GraphConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Graph config")
	}
	return c
}

func (c GraphConfig) Enabled() bool {
	return c.BaseURL != ""
}
