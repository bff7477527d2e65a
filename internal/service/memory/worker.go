package memory

import (
	"context"
	"time"

	"github.com/sandevgo/recall/internal/config"
	"github.com/sandevgo/recall/pkg/log"
)

// SummaryWorker periodically sweeps recently active sessions and
// summarizes the ones whose thresholds fired. The lookback window covers
// the full summary max age so age-triggered sessions are not missed.
type SummaryWorker struct {
	pipeline *Pipeline
	interval time.Duration
	lookback time.Duration
}

func NewSummaryWorker(pipeline *Pipeline, cfg *config.SummaryConfig) *SummaryWorker {
	return &SummaryWorker{
		pipeline: pipeline,
		interval: cfg.CheckInterval,
		lookback: cfg.MaxAge + cfg.CheckInterval,
	}
}

func (w *SummaryWorker) Start(ctx context.Context) error {
	logger := log.FromCtx(ctx).With().Str("component", "summary_worker").Logger()
	logger.Info().Dur("interval", w.interval).Msg("starting summary worker")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("shutting down summary worker")
			return nil
		case <-ticker.C:
			since := time.Now().Add(-w.lookback)
			if err := w.pipeline.SummarizeDue(ctx, since); err != nil {
				logger.Error().Err(err).Msg("summarization sweep failed")
			}
		}
	}
}

func (w *SummaryWorker) Shutdown(ctx context.Context) error {
	return nil
}
