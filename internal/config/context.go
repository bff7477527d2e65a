package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/recall/pkg/log"
)

// ContextConfig holds the knobs of the context-assembly pipeline: overall
// token ceiling, per-section sub-budgets, relevance floor and ranking.
type ContextConfig struct {
	MaxContextTokens   int     `env:"MAX_CONTEXT_TOKENS" envDefault:"3000"`
	RelevanceThreshold float64 `env:"RELEVANCE_THRESHOLD" envDefault:"0.5"`

	// Sub-budget fractions of MaxContextTokens.
	GraphContextPercentage   float64 `env:"GRAPH_CONTEXT_PERCENTAGE" envDefault:"0.1"`
	FactsContextPercentage   float64 `env:"FACTS_CONTEXT_PERCENTAGE" envDefault:"0.1"`
	SummaryContextPercentage float64 `env:"SUMMARY_CONTEXT_PERCENTAGE" envDefault:"0.7"`

	// Per-summary message admission schedule.
	InitialSummaryPercentage   float64 `env:"INITIAL_SUMMARY_PERCENTAGE" envDefault:"0.9"`
	SummaryPercentageReduction float64 `env:"SUMMARY_PERCENTAGE_REDUCTION" envDefault:"0.1"`
	MinSummaryPercentage       float64 `env:"MIN_SUMMARY_PERCENTAGE" envDefault:"0.5"`

	FactsConfidenceThreshold float64 `env:"FACTS_CONFIDENCE_THRESHOLD" envDefault:"0.7"`
	MaxFacts                 int     `env:"MAX_FACTS" envDefault:"10"`
	MaxGraphEntities         int     `env:"MAX_GRAPH_ENTITIES" envDefault:"5"`
	GraphRelationDepth       int     `env:"GRAPH_RELATION_DEPTH" envDefault:"1"`

	VectorNormalization bool `env:"VECTOR_NORMALIZATION" envDefault:"true"`

	// MMRLambda trades fact relevance for diversity. 1.0 is pure relevance
	// ordering; lower values penalize near-duplicate facts.
	MMRLambda float64 `env:"MMR_LAMBDA" envDefault:"1.0"`

	// SearchResultLimit caps how many leftover messages are considered per
	// composition request.
	SearchResultLimit int `env:"SEARCH_RESULT_LIMIT" envDefault:"30"`
}

func NewContextConfig(ctx context.Context) *ContextConfig {
	c := &ContextConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Context config")
	}
	return c
}
