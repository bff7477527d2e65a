package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/sandevgo/recall/internal/config"
	"github.com/sandevgo/recall/internal/core"
	"github.com/sandevgo/recall/internal/providers/graph"
	"github.com/sandevgo/recall/internal/providers/llm"
	"github.com/sandevgo/recall/internal/service/memory"
	"github.com/sandevgo/recall/internal/storage/sqlite"
	"github.com/sandevgo/recall/pkg/log"
	"github.com/sandevgo/recall/pkg/srv"
)

// App bundles the wired pipeline with the services that carry a lifecycle.
type App struct {
	Config   *config.AppConfig
	Pipeline *memory.Pipeline
	Services []srv.Service
}

func NewApp(ctx context.Context) *App {
	logger := log.FromCtx(ctx)

	// init env
	if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
		logger.Fatal().Err(err).Msg("failed to init env")
	}

	// 1. Configuration
	appCfg := config.NewAppConfig(ctx)
	ctxCfg := config.NewContextConfig(ctx)
	sumCfg := config.NewSummaryConfig(ctx)
	aiCfg := config.NewOpenAIConfig(ctx)
	graphCfg := config.NewGraphConfig(ctx)

	services := make([]srv.Service, 0)

	// 2. Storage
	db, err := sqlite.NewDB(ctx, appCfg.GetDatabasePath())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize storage")
	}
	services = append(services, srv.NewCleanup(db.Close))

	messagesRepo := sqlite.NewMessagesRepo(db)
	summariesRepo := sqlite.NewSummariesRepo(db)
	sessionsRepo := sqlite.NewSessionsRepo(db)

	// 3. AI Providers
	completer := llm.NewCompleter(aiCfg)
	embedder := llm.NewEmbedder(aiCfg)

	// 4. Graph service (optional)
	var factProvider core.FactProvider
	var graphProvider core.GraphProvider
	if graphCfg.Enabled() {
		client := graph.NewClient(graphCfg)
		factProvider = client
		graphProvider = client
	} else {
		logger.Info().Msg("graph service not configured, graph and fact context disabled")
	}

	// 5. Memory Pipeline
	counter := newTokenCounter(ctx, appCfg)
	composer := memory.NewComposer(ctxCfg, embedder, factProvider, graphProvider, messagesRepo, summariesRepo, counter)
	summarizer := memory.NewSummarizer(completer, sumCfg)
	trigger := memory.NewTrigger(sumCfg)

	pipeline := memory.NewPipeline(ctxCfg, sessionsRepo, messagesRepo, summariesRepo, composer, summarizer, trigger, completer)

	// 6. Background Worker
	if appCfg.EnableWorker {
		services = append(services, memory.NewSummaryWorker(pipeline, sumCfg))
	}

	return &App{
		Config:   appCfg,
		Pipeline: pipeline,
		Services: services,
	}
}

func newTokenCounter(ctx context.Context, cfg *config.AppConfig) memory.TokenCounter {
	if cfg.TokenCounter == "tiktoken" {
		counter, err := memory.NewTiktokenCounter()
		if err != nil {
			log.FromCtx(ctx).Warn().Err(err).Msg("tiktoken unavailable, falling back to word counting")
			return memory.WordCounter{}
		}
		return counter
	}
	return memory.WordCounter{}
}

func initEnv(ctx context.Context, runtimePath string) error {
	logger := log.FromCtx(ctx)
	envFile := filepath.Join(runtimePath, ".env")

	if _, err := os.Stat(envFile); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := godotenv.Load(envFile); err != nil {
		logger.Warn().Err(err).Str("path", envFile).Msg("failed to load .env file")
		return err
	}

	logger.Debug().Str("path", envFile).Msg("loaded .env file")
	return nil
}
