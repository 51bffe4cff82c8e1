package ports

import (
	"context"
	"time"

	"github.com/JesseAnalyzes/Pegasus-hack-ai-thon/internal/core/domain"
)

// ReviewRepository reads the enriched reviews table.
type ReviewRepository interface {
	Summary(ctx context.Context, filter domain.ReviewFilter) (*domain.SummaryStats, error)
	TimeSeries(ctx context.Context, filter domain.ReviewFilter, granularity domain.Granularity, metric domain.TrendMetric) ([]domain.TimeSeriesPoint, error)
	Breakdown(ctx context.Context, filter domain.ReviewFilter, dimension domain.BreakdownDimension) ([]domain.BreakdownItem, error)
	List(ctx context.Context, filter domain.ReviewFilter, page domain.PageRequest) (*domain.ReviewPage, error)
	GetByID(ctx context.Context, id int64) (*domain.Review, error)
	Similar(ctx context.Context, queryVector []float32, embeddingModel string, filter domain.ReviewFilter, limit int) ([]domain.Review, error)
}

// Embedder builds query vectors for similarity search.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// TextGenerator performs one LLM call and returns the concatenated text.
type TextGenerator interface {
	Generate(ctx context.Context, req domain.GenerationRequest) (string, error)
}

// ResponseCache stores serialized read-model responses.
type ResponseCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// ChatObserver receives per-request chat telemetry.
type ChatObserver interface {
	ObserveChat(mode domain.RetrievalMode, retrieved int, duration time.Duration)
}

// CacheObserver receives cache hit/miss telemetry.
type CacheObserver interface {
	ObserveCache(view string, hit bool)
}
