package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/JesseAnalyzes/Pegasus-hack-ai-thon/internal/core/domain"
	"github.com/JesseAnalyzes/Pegasus-hack-ai-thon/internal/core/ports"
)

const MaxPageSize = 100

type AnalyticsUseCase struct {
	repo     ports.ReviewRepository
	cache    ports.ResponseCache
	cacheTTL time.Duration
	observer ports.CacheObserver
}

// NewAnalyticsUseCase wires the dashboard read models. cache and observer
// may be nil; aggregates are then always read from the repository.
func NewAnalyticsUseCase(
	repo ports.ReviewRepository,
	cache ports.ResponseCache,
	cacheTTL time.Duration,
	observer ports.CacheObserver,
) *AnalyticsUseCase {
	return &AnalyticsUseCase{
		repo:     repo,
		cache:    cache,
		cacheTTL: cacheTTL,
		observer: observer,
	}
}

func (uc *AnalyticsUseCase) Summary(ctx context.Context, filter domain.ReviewFilter) (*domain.SummaryStats, error) {
	return cached(ctx, uc, "summary", filter, func() (*domain.SummaryStats, error) {
		stats, err := uc.repo.Summary(ctx, filter)
		if err != nil {
			return nil, fmt.Errorf("load summary: %w", err)
		}
		return stats, nil
	})
}

func (uc *AnalyticsUseCase) Trends(
	ctx context.Context,
	filter domain.ReviewFilter,
	granularity domain.Granularity,
	metric domain.TrendMetric,
) ([]domain.TimeSeriesPoint, error) {
	key := struct {
		Filter      domain.ReviewFilter `json:"f"`
		Granularity domain.Granularity  `json:"g"`
		Metric      domain.TrendMetric  `json:"m"`
	}{filter, granularity, metric}

	return cached(ctx, uc, "trends", key, func() ([]domain.TimeSeriesPoint, error) {
		points, err := uc.repo.TimeSeries(ctx, filter, granularity, metric)
		if err != nil {
			return nil, fmt.Errorf("load trends: %w", err)
		}
		return points, nil
	})
}

func (uc *AnalyticsUseCase) Breakdown(
	ctx context.Context,
	filter domain.ReviewFilter,
	dimension domain.BreakdownDimension,
) ([]domain.BreakdownItem, error) {
	key := struct {
		Filter    domain.ReviewFilter       `json:"f"`
		Dimension domain.BreakdownDimension `json:"d"`
	}{filter, dimension}

	return cached(ctx, uc, "breakdown", key, func() ([]domain.BreakdownItem, error) {
		items, err := uc.repo.Breakdown(ctx, filter, dimension)
		if err != nil {
			return nil, fmt.Errorf("load breakdown: %w", err)
		}
		return items, nil
	})
}

func (uc *AnalyticsUseCase) ListReviews(ctx context.Context, filter domain.ReviewFilter, page domain.PageRequest) (*domain.ReviewPage, error) {
	page = page.Normalize()
	if page.PageSize > MaxPageSize {
		return nil, domain.NewValidationError(domain.FieldError{
			Field:   "pageSize",
			Message: fmt.Sprintf("must be at most %d", MaxPageSize),
		})
	}
	result, err := uc.repo.List(ctx, filter, page)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return result, nil
}

func (uc *AnalyticsUseCase) GetReview(ctx context.Context, id int64) (*domain.Review, error) {
	if id <= 0 {
		return nil, domain.NewValidationError(domain.FieldError{Field: "id", Message: "must be a positive integer"})
	}
	review, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get review: %w", err)
	}
	return review, nil
}

// cached serves a view from the response cache when one is configured.
// Cache failures are logged and bypassed.
func cached[T any](ctx context.Context, uc *AnalyticsUseCase, view string, keyParts any, load func() (T, error)) (T, error) {
	if uc.cache == nil || uc.cacheTTL <= 0 {
		return load()
	}

	key, err := cacheKey(view, keyParts)
	if err != nil {
		return load()
	}

	raw, err := uc.cache.Get(ctx, key)
	switch {
	case err == nil:
		var out T
		if jsonErr := json.Unmarshal(raw, &out); jsonErr == nil {
			uc.observe(view, true)
			return out, nil
		}
		slog.WarnContext(ctx, "cache_decode_failed", "view", view)
	case errors.Is(err, domain.ErrCacheMiss):
	default:
		slog.WarnContext(ctx, "cache_get_failed", "view", view, "error", err)
	}
	uc.observe(view, false)

	out, err := load()
	if err != nil {
		return out, err
	}
	if encoded, err := json.Marshal(out); err == nil {
		if err := uc.cache.Set(ctx, key, encoded, uc.cacheTTL); err != nil {
			slog.WarnContext(ctx, "cache_set_failed", "view", view, "error", err)
		}
	}
	return out, nil
}

func (uc *AnalyticsUseCase) observe(view string, hit bool) {
	if uc.observer != nil {
		uc.observer.ObserveCache(view, hit)
	}
}

func cacheKey(view string, parts any) (string, error) {
	raw, err := json.Marshal(parts)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(raw)
	return view + ":" + hex.EncodeToString(sum[:]), nil
}
