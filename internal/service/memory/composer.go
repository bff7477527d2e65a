package memory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sandevgo/recall/internal/config"
	"github.com/sandevgo/recall/internal/core"
	"github.com/sandevgo/recall/pkg/log"
)

// Composer assembles the prompt context block for one query: graph
// knowledge, facts, summaries and raw messages, each under its own slice
// of the token ceiling. Every section degrades to empty on provider
// failure; composition itself never fails.
type Composer struct {
	cfg       *config.ContextConfig
	embedder  core.Embedder
	facts     core.FactProvider
	graph     core.GraphProvider
	messages  core.MessagesRepository
	summaries core.SummariesRepository
	ranker    *Ranker
	budgeter  *Budgeter
	counter   TokenCounter
}

// NewComposer wires the composer. The facts and graph providers may be nil
// when no graph service is configured; their sections then stay empty.
func NewComposer(
	cfg *config.ContextConfig,
	embedder core.Embedder,
	facts core.FactProvider,
	graph core.GraphProvider,
	messages core.MessagesRepository,
	summaries core.SummariesRepository,
	counter TokenCounter,
) *Composer {
	return &Composer{
		cfg:       cfg,
		embedder:  embedder,
		facts:     facts,
		graph:     graph,
		messages:  messages,
		summaries: summaries,
		ranker:    NewRanker(cfg.VectorNormalization),
		budgeter:  NewBudgeter(counter),
		counter:   counter,
	}
}

// BuildContext returns the merged context block for a query. The output
// always carries all four section headers, in fixed order, even when every
// section body is empty.
func (c *Composer) BuildContext(ctx context.Context, sessionID, query string, maxTokens int) string {
	logger := log.FromCtx(ctx)

	queryVec, err := c.embedder.Embed(ctx, query)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to embed query, ranked sections degrade to empty")
		queryVec = nil
	}

	graphText, graphTokens := c.graphContext(ctx, query, c.subBudget(maxTokens, c.cfg.GraphContextPercentage))

	var factsText, summaryText, messageText string
	var factsTokens, summaryTokens int

	if queryVec != nil {
		factsText, factsTokens = c.factsContext(ctx, sessionID, queryVec, c.subBudget(maxTokens, c.cfg.FactsContextPercentage))

		var admitted []Scored
		var spans []core.Summary
		summaryText, summaryTokens, admitted, spans = c.summaryContext(ctx, sessionID, queryVec, c.subBudget(maxTokens, c.cfg.SummaryContextPercentage))

		remaining := maxTokens - graphTokens - factsTokens - summaryTokens
		messageText = c.messageContext(ctx, sessionID, queryVec, admitted, spans, remaining)
	}

	logger.Debug().
		Str("session_id", sessionID).
		Int("graph_tokens", graphTokens).
		Int("facts_tokens", factsTokens).
		Int("summary_tokens", summaryTokens).
		Msg("context assembled")

	return fmt.Sprintf("Graph Context:\n%s\n\nFacts:\n%s\n\nSummary Context:\n%s\n\nMessage Context:\n%s",
		graphText, factsText, summaryText, messageText)
}

// graphContext walks entities extracted from the query and accumulates
// entity blocks in extraction order until the sub-budget runs out. Graph
// items are not relevance-ranked; the extractor already scoped them to the
// query.
func (c *Composer) graphContext(ctx context.Context, query string, maxTokens int) (string, int) {
	if c.graph == nil {
		return "", 0
	}
	logger := log.FromCtx(ctx)

	entities, err := c.graph.IdentifyEntities(ctx, query)
	if err != nil {
		logger.Warn().Err(err).Msg("entity extraction failed, graph context degraded")
		return "", 0
	}
	if len(entities) > c.cfg.MaxGraphEntities {
		entities = entities[:c.cfg.MaxGraphEntities]
	}

	var parts []string
	used := 0

	for _, entity := range entities {
		info, err := c.graph.GetEntityInfo(ctx, entity)
		if err != nil {
			logger.Warn().Err(err).Str("entity", entity).Msg("entity lookup failed, skipping")
			continue
		}
		related, err := c.graph.GetRelatedEntities(ctx, entity, c.cfg.GraphRelationDepth)
		if err != nil {
			logger.Warn().Err(err).Str("entity", entity).Msg("related entity lookup failed")
			related = nil
		}

		block := fmt.Sprintf("Entity: %s\nInfo: %s\nRelated: %s", entity, info, strings.Join(related, ", "))
		tokens := c.counter.Count(block)
		if used+tokens > maxTokens {
			break
		}
		parts = append(parts, block)
		used += tokens
	}
	return strings.Join(parts, "\n"), used
}

// factsContext filters facts by confidence, ranks the survivors against
// the query and admits them with no relevance floor: a weakly related fact
// still beats an empty section.
func (c *Composer) factsContext(ctx context.Context, sessionID string, queryVec []float32, maxTokens int) (string, int) {
	if c.facts == nil {
		return "", 0
	}
	logger := log.FromCtx(ctx)

	facts, err := c.facts.GetFacts(ctx, sessionID)
	if err != nil {
		logger.Warn().Err(err).Msg("fact lookup failed, facts context degraded")
		return "", 0
	}

	var cands []Candidate
	for _, f := range facts {
		if f.Confidence < c.cfg.FactsConfidenceThreshold {
			continue
		}
		cands = append(cands, Candidate{
			Text:      fmt.Sprintf("Fact: %s (Confidence: %.2f)", f.Text, f.Confidence),
			Embedding: c.embed(ctx, f.Text),
		})
	}
	if len(cands) == 0 {
		return "", 0
	}

	// Facts are often near-duplicates of each other; MMR ordering keeps
	// the section varied when the lambda is below 1.
	ranked := c.ranker.RankMMR(queryVec, cands, c.cfg.MMRLambda)
	if len(ranked) > c.cfg.MaxFacts {
		ranked = ranked[:c.cfg.MaxFacts]
	}
	selected, used := c.budgeter.Select(ranked, maxTokens, 0)
	return joinScored(selected), used
}

// summaryContext ranks stored summaries against the query and admits them
// under the summary sub-budget. It also returns the admitted items and the
// full summary list so the message section can expand the admitted spans.
func (c *Composer) summaryContext(ctx context.Context, sessionID string, queryVec []float32, maxTokens int) (string, int, []Scored, []core.Summary) {
	logger := log.FromCtx(ctx)

	summaries, err := c.summaries.GetSummaries(ctx, sessionID)
	if err != nil {
		logger.Warn().Err(err).Msg("summary lookup failed, summary context degraded")
		return "", 0, nil, nil
	}
	if len(summaries) == 0 {
		return "", 0, nil, nil
	}

	cands := make([]Candidate, len(summaries))
	for i, s := range summaries {
		cands[i] = Candidate{Text: s.Content, Embedding: c.embed(ctx, s.Content)}
	}

	ranked := c.ranker.Rank(queryVec, cands)
	selected, used := c.budgeter.Select(ranked, maxTokens, c.cfg.RelevanceThreshold)
	return joinScored(selected), used, selected, summaries
}

// messageContext fills the remainder of the ceiling with raw messages:
// first messages from inside each admitted summary span, thinned by a
// schedule that trusts later-ranked summaries less, then recent messages
// outside any admitted span.
func (c *Composer) messageContext(ctx context.Context, sessionID string, queryVec []float32, admitted []Scored, summaries []core.Summary, maxTokens int) string {
	logger := log.FromCtx(ctx)

	var parts []string
	used := 0

	spans := make([]core.Summary, len(admitted))
	for i, item := range admitted {
		spans[i] = summaries[item.Index]
	}

	for i, span := range spans {
		if used >= maxTokens {
			break
		}
		msgs, err := c.messages.GetMessagesInRange(ctx, sessionID, span.CoversFrom, span.CoversTo)
		if err != nil {
			logger.Warn().Err(err).Msg("span message lookup failed, skipping span")
			continue
		}
		if len(msgs) == 0 {
			continue
		}

		ranked := c.rankMessages(ctx, queryVec, msgs)
		keep := int(float64(len(ranked)) * c.spanPercentage(i))
		if keep < 1 {
			keep = 1
		}
		selected, tokens := c.budgeter.Select(ranked[:keep], maxTokens-used, c.cfg.RelevanceThreshold)
		for _, item := range selected {
			parts = append(parts, item.Text)
		}
		used += tokens
	}

	if used < maxTokens {
		recent, err := c.messages.GetMessages(ctx, sessionID, c.cfg.SearchResultLimit)
		if err != nil {
			logger.Warn().Err(err).Msg("recent message lookup failed")
			recent = nil
		}

		var leftover []core.Message
		for _, m := range recent {
			if !inAnySpan(m.CreatedAt, spans) {
				leftover = append(leftover, m)
			}
		}
		if len(leftover) > 0 {
			ranked := c.rankMessages(ctx, queryVec, leftover)
			selected, _ := c.budgeter.Select(ranked, maxTokens-used, c.cfg.RelevanceThreshold)
			for _, item := range selected {
				parts = append(parts, item.Text)
			}
		}
	}
	return strings.Join(parts, "\n")
}

func (c *Composer) rankMessages(ctx context.Context, queryVec []float32, msgs []core.Message) []Scored {
	cands := make([]Candidate, len(msgs))
	for i, m := range msgs {
		cands[i] = Candidate{
			Text:      m.Role + ": " + m.Content,
			Embedding: c.embed(ctx, m.Content),
		}
	}
	return c.ranker.Rank(queryVec, cands)
}

// spanPercentage yields the fraction of a span's ranked messages that is
// eligible for admission. The fraction decays with the span's rank
// position and never drops below the configured minimum.
func (c *Composer) spanPercentage(index int) float64 {
	pct := c.cfg.InitialSummaryPercentage - float64(index)*c.cfg.SummaryPercentageReduction
	if pct < c.cfg.MinSummaryPercentage {
		pct = c.cfg.MinSummaryPercentage
	}
	return pct
}

func (c *Composer) embed(ctx context.Context, text string) []float32 {
	vec, err := c.embedder.Embed(ctx, text)
	if err != nil {
		log.FromCtx(ctx).Warn().Err(err).Msg("embedding failed, candidate scored 0")
		return nil
	}
	return vec
}

func (c *Composer) subBudget(maxTokens int, pct float64) int {
	return int(float64(maxTokens) * pct)
}

func joinScored(items []Scored) string {
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = item.Text
	}
	return strings.Join(parts, "\n")
}

func inAnySpan(at time.Time, spans []core.Summary) bool {
	for _, s := range spans {
		if !at.Before(s.CoversFrom) && !at.After(s.CoversTo) {
			return true
		}
	}
	return false
}
