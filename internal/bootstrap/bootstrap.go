package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/JesseAnalyzes/Pegasus-hack-ai-thon/internal/config"
	"github.com/JesseAnalyzes/Pegasus-hack-ai-thon/internal/core/ports"
	"github.com/JesseAnalyzes/Pegasus-hack-ai-thon/internal/core/usecase"
	"github.com/JesseAnalyzes/Pegasus-hack-ai-thon/internal/infrastructure/cache"
	"github.com/JesseAnalyzes/Pegasus-hack-ai-thon/internal/infrastructure/llm/anthropic"
	"github.com/JesseAnalyzes/Pegasus-hack-ai-thon/internal/infrastructure/llm/embedding"
	"github.com/JesseAnalyzes/Pegasus-hack-ai-thon/internal/infrastructure/llm/gemini"
	"github.com/JesseAnalyzes/Pegasus-hack-ai-thon/internal/infrastructure/llm/ollama"
	"github.com/JesseAnalyzes/Pegasus-hack-ai-thon/internal/infrastructure/repository/postgres"
	"github.com/JesseAnalyzes/Pegasus-hack-ai-thon/internal/infrastructure/resilience"
	"github.com/JesseAnalyzes/Pegasus-hack-ai-thon/internal/observability/metrics"
)

type App struct {
	Config  config.Config
	Metrics *metrics.HTTPServerMetrics

	AnalyticsUC ports.ReviewAnalytics
	ChatUC      ports.ReviewChat
	AssistUC    ports.ReviewAssistant

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	db, err := postgres.OpenDB(ctx, cfg.PostgresDSN, postgres.PoolOptions{
		MaxOpenConns:   cfg.DBMaxOpenConns,
		MaxIdleConns:   cfg.DBMaxIdleConns,
		ConnMaxIdle:    time.Duration(cfg.DBConnMaxIdleSeconds) * time.Second,
		ConnectTimeout: time.Duration(cfg.DBConnectTimeoutSecs) * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewReviewRepository(db, cfg.ReviewsTable)

	httpMetrics := metrics.NewHTTPServerMetrics(cfg.ServiceName)
	closers := []func(){func() { _ = db.Close() }}

	var responseCache ports.ResponseCache
	if cfg.RedisAddr != "" {
		redisCache, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			slog.Warn("response_cache_disabled", "error", err)
		} else {
			responseCache = redisCache
			closers = append(closers, func() { _ = redisCache.Close() })
		}
	}

	executor := resilience.NewExecutor(resilience.Config{
		BreakerEnabled:          cfg.BreakerEnabled,
		BreakerMinRequests:      uint32(max(cfg.BreakerMinRequests, 0)),
		BreakerFailureRatio:     cfg.BreakerFailureRatio,
		BreakerOpenTimeout:      time.Duration(cfg.BreakerOpenTimeoutSecs) * time.Second,
		BreakerHalfOpenMaxCalls: uint32(max(cfg.BreakerHalfOpenMaxCalls, 0)),
	})

	generator, err := newGenerator(ctx, cfg, executor)
	if err != nil {
		closeAll(closers)
		return nil, err
	}

	// embedder must stay an untyped nil when the service is not configured.
	var embedder ports.Embedder
	if cfg.EmbeddingEnabled() {
		embedder = embedding.New(cfg.EmbeddingAPIURL, cfg.EmbeddingAPIKey, cfg.EmbeddingModel, llmTimeout(cfg), executor)
	} else {
		slog.Info("semantic_search_disabled", "reason", "EMBEDDING_API_KEY not set")
	}

	chatCfg := usecase.DefaultChatConfig()
	chatCfg.EmbeddingModel = cfg.ReviewEmbedModel
	chatCfg.ContextLimit = cfg.ChatContextLimit
	chatCfg.SourceLimit = cfg.ChatSourceLimit
	chatCfg.MaxTokens = cfg.LLMMaxTokens

	return &App{
		Config:  cfg,
		Metrics: httpMetrics,

		AnalyticsUC: usecase.NewAnalyticsUseCase(repo, responseCache, time.Duration(cfg.CacheTTLSeconds)*time.Second, httpMetrics),
		ChatUC:      usecase.NewChatUseCase(repo, embedder, generator, httpMetrics, chatCfg),
		AssistUC:    usecase.NewReviewAssistUseCase(repo, generator),

		closeFn: func() { closeAll(closers) },
	}, nil
}

func newGenerator(ctx context.Context, cfg config.Config, executor *resilience.Executor) (ports.TextGenerator, error) {
	switch cfg.LLMProvider {
	case "anthropic", "":
		if cfg.AnthropicAPIKey == "" {
			slog.Warn("anthropic_api_key_missing")
		}
		return anthropic.New(cfg.AnthropicURL, cfg.AnthropicAPIKey, cfg.AnthropicModel, llmTimeout(cfg), executor), nil
	case "ollama":
		return ollama.New(cfg.OllamaURL, cfg.OllamaGenModel, llmTimeout(cfg), executor), nil
	case "gemini":
		gen, err := gemini.New(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, executor)
		if err != nil {
			return nil, fmt.Errorf("init gemini: %w", err)
		}
		return gen, nil
	default:
		return nil, fmt.Errorf("unsupported LLM_PROVIDER %q", cfg.LLMProvider)
	}
}

func llmTimeout(cfg config.Config) time.Duration {
	return time.Duration(cfg.LLMTimeoutSecs) * time.Second
}

func closeAll(closers []func()) {
	for i := len(closers) - 1; i >= 0; i-- {
		closers[i]()
	}
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
