package ports

import (
	"context"

	"github.com/JesseAnalyzes/Pegasus-hack-ai-thon/internal/core/domain"
)

// ReviewAnalytics is the inbound contract for dashboard read models.
type ReviewAnalytics interface {
	Summary(ctx context.Context, filter domain.ReviewFilter) (*domain.SummaryStats, error)
	Trends(ctx context.Context, filter domain.ReviewFilter, granularity domain.Granularity, metric domain.TrendMetric) ([]domain.TimeSeriesPoint, error)
	Breakdown(ctx context.Context, filter domain.ReviewFilter, dimension domain.BreakdownDimension) ([]domain.BreakdownItem, error)
	ListReviews(ctx context.Context, filter domain.ReviewFilter, page domain.PageRequest) (*domain.ReviewPage, error)
	GetReview(ctx context.Context, id int64) (*domain.Review, error)
}

// ReviewChat is the inbound contract for retrieval-augmented chat.
type ReviewChat interface {
	Chat(ctx context.Context, req domain.ChatRequest) (*domain.ChatResponse, error)
}

// ReviewAssistant answers ad hoc questions about a single review.
type ReviewAssistant interface {
	Summarize(ctx context.Context, id int64, reviewText string) (string, error)
	Answer(ctx context.Context, id int64, reviewText, question string) (string, error)
}
