package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"deepsent/internal/collector"
	"deepsent/internal/collector/alphavantage"
	"deepsent/internal/collector/collectorobs"
	"deepsent/internal/collector/headlines"
	collectornoop "deepsent/internal/collector/noop"
	"deepsent/internal/interfaces"
	"deepsent/internal/llm"
	"deepsent/internal/llm/claude"
	"deepsent/internal/llm/llmobs"
	"deepsent/internal/llm/noop"
	"deepsent/internal/llm/openai"
	"deepsent/internal/llm/rag"
	"deepsent/internal/logger"
	"deepsent/internal/market"
	"deepsent/internal/metrics"
	"deepsent/internal/store"
	"deepsent/internal/trace"
)

// initializeSystem initializes environment, logger, tracer and metrics
func initializeSystem() error {
	// Load environment variables
	_ = godotenv.Load()

	// Initialize logger
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	// Initialize tracer
	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}

	metrics.Init()
	return nil
}

// loadConfig loads the configuration and the provider secrets
func loadConfig(ctx context.Context, path string) (*store.Config, *store.Secrets, error) {
	cfg, err := store.LoadConfig(path)
	if errors.Is(err, os.ErrNotExist) {
		logger.Warn(ctx, "Config file not found - using defaults", "path", path)
		cfg, err = store.Default(), nil
	}
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err)
		return nil, nil, err
	}

	secrets, err := store.LoadSecrets()
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load secrets", err)
		return nil, nil, err
	}
	return cfg, secrets, nil
}

// initializeEmbedder returns the embedder used for evidence selection
func initializeEmbedder(ctx context.Context, cfg *store.Config, secrets *store.Secrets) interfaces.Embedder {
	var (
		embedder interfaces.Embedder
		err      error
	)

	switch strings.ToUpper(cfg.LLM.Provider) {
	case "OPENAI":
		embedder, err = openai.NewEmbedder(secrets.OpenAIAPIKey, cfg.LLM.EmbeddingModel)
	case "AZURE":
		embedder, err = openai.NewAzureEmbedder(secrets)
	}
	if err != nil {
		logger.Warn(ctx, "Embeddings unavailable - evidence ranked by sentiment polarity", "error", err.Error())
		embedder = nil
	}
	if embedder == nil {
		embedder = noop.NewNoopEmbedder()
	}

	// Wrap with observability middleware
	return llmobs.WrapEmbedder(embedder)
}

// initializeGenerator initializes the report generator with retry, throttle
// and observability. A provider that cannot be built degrades to noop.
func initializeGenerator(ctx context.Context, cfg *store.Config, secrets *store.Secrets, embedder interfaces.Embedder) interfaces.Generator {
	prompts := llm.NewPromptBuilder(llm.PromptConfig{
		System:            cfg.LLM.System,
		AnomalyThreshold:  cfg.Sentiment.AnomalyThreshold,
		MinDailyCount:     cfg.Sentiment.MinDailyCount,
		MinArticlesPerDay: cfg.Sentiment.MinArticlesPerDay,
		EvidenceTopK:      cfg.LLM.EvidenceTopK,
	}, rag.NewSelector(embedder))

	var (
		generator interfaces.Generator
		err       error
	)
	provider := strings.ToUpper(cfg.LLM.Provider)
	switch provider {
	case "OPENAI":
		generator, err = openai.NewGenerator(cfg, secrets.OpenAIAPIKey, prompts)
	case "AZURE":
		generator, err = openai.NewAzureGenerator(cfg, secrets, prompts)
	case "CLAUDE":
		generator, err = claude.NewGenerator(cfg, secrets.AnthropicAPIKey, prompts)
	}
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to initialize report generator", err, "provider", provider)
		generator = nil
	}

	if generator == nil {
		logger.Warn(ctx, "No LLM provider configured - using Noop generator (placeholder reports)")
		return llmobs.Wrap(noop.NewNoopGenerator())
	}

	policy := llm.RetryPolicy{
		MaxAttempts: cfg.LLM.Retry.MaxAttempts,
		BaseDelay:   seconds(cfg.LLM.Retry.BaseDelaySeconds),
		Multiplier:  cfg.LLM.Retry.Multiplier,
	}
	generator = llm.WithThrottle(generator, seconds(cfg.LLM.ThrottleSeconds))
	generator = llm.WithRetry(generator, policy)

	logger.Info(ctx, "Report generator ready",
		"provider", provider,
		"model", cfg.LLM.Model,
		"max_attempts", policy.MaxAttempts,
	)

	// Wrap with observability middleware
	return llmobs.Wrap(generator)
}

// initializeCollector initializes the post collector with observability
func initializeCollector(ctx context.Context, cfg *store.Config, secrets *store.Secrets) interfaces.Collector {
	var source collector.Source

	switch strings.ToUpper(cfg.Collector.Source) {
	case "ALPHAVANTAGE":
		if secrets.AlphaVantageAPIKey == "" {
			logger.Warn(ctx, "ALPHAVANTAGE_API_KEY not set - falling back to headline scraping")
			source = headlines.NewSource(headlines.SitesFromURLs(cfg.Collector.HeadlineURLs), 30*time.Second)
		} else {
			source = alphavantage.NewSource(secrets.AlphaVantageAPIKey, cfg.Collector.BaseURL)
		}
	case "HEADLINES":
		source = headlines.NewSource(headlines.SitesFromURLs(cfg.Collector.HeadlineURLs), 30*time.Second)
	default:
		source = collectornoop.NewNoopSource()
		logger.Warn(ctx, "No news source configured - using Noop source (empty collections)")
	}

	svc := collector.NewService(source, &collector.Config{
		MaxArticles: cfg.Collector.MaxArticles,
		ChartDir:    cfg.Collector.ChartDir,
	})

	logger.Info(ctx, "Collector ready", "source", source.Name(), "max_articles", cfg.Collector.MaxArticles)

	// Wrap with observability middleware
	return collectorobs.Wrap(svc)
}

// initializeMarket returns the market data client
func initializeMarket(cfg *store.Config, secrets *store.Secrets) *market.Client {
	return market.NewClient(
		market.WithUniverseURL(cfg.Market.UniverseURL),
		market.WithHistoryBaseURL(cfg.Market.HistoryBaseURL),
		market.WithOverview(secrets.AlphaVantageAPIKey, cfg.Collector.BaseURL),
	)
}

// startMetricsServer serves Prometheus metrics until ctx is done
func startMetricsServer(ctx context.Context, addr string) {
	if addr == "" {
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		logger.Info(ctx, "Serving metrics", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.ErrorWithErr(ctx, "Metrics server stopped", err)
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
