package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/JesseAnalyzes/Pegasus-hack-ai-thon/internal/core/domain"
)

type reviewRepoFake struct {
	mu sync.Mutex

	reviews []domain.Review

	summaryCalls int
	summaryErr   error
	listErr      error
	similarErr   error
	similar      []domain.Review

	lastPage        domain.PageRequest
	lastSimilarArgs struct {
		model string
		limit int
	}
}

func (f *reviewRepoFake) Summary(context.Context, domain.ReviewFilter) (*domain.SummaryStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.summaryCalls++
	if f.summaryErr != nil {
		return nil, f.summaryErr
	}
	return &domain.SummaryStats{TotalReviews: int64(len(f.reviews))}, nil
}

func (f *reviewRepoFake) TimeSeries(context.Context, domain.ReviewFilter, domain.Granularity, domain.TrendMetric) ([]domain.TimeSeriesPoint, error) {
	return []domain.TimeSeriesPoint{{Date: "2024-01-01", Value: 1, Count: 1}}, nil
}

func (f *reviewRepoFake) Breakdown(context.Context, domain.ReviewFilter, domain.BreakdownDimension) ([]domain.BreakdownItem, error) {
	return []domain.BreakdownItem{{Group: "Google", Count: 1}}, nil
}

func (f *reviewRepoFake) List(_ context.Context, _ domain.ReviewFilter, page domain.PageRequest) (*domain.ReviewPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastPage = page
	if f.listErr != nil {
		return nil, f.listErr
	}
	page = page.Normalize()
	start := page.Offset()
	items := make([]domain.Review, 0, page.PageSize)
	for i := start; i < len(f.reviews) && len(items) < page.PageSize; i++ {
		items = append(items, f.reviews[i])
	}
	return &domain.ReviewPage{
		Items:      items,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalItems: int64(len(f.reviews)),
		TotalPages: domain.TotalPages(int64(len(f.reviews)), page.PageSize),
	}, nil
}

func (f *reviewRepoFake) GetByID(_ context.Context, id int64) (*domain.Review, error) {
	for _, r := range f.reviews {
		if r.ID == id {
			r := r
			return &r, nil
		}
	}
	return nil, domain.WrapError(domain.ErrReviewNotFound, "get review", fmt.Errorf("id %d", id))
}

func (f *reviewRepoFake) Similar(_ context.Context, _ []float32, model string, _ domain.ReviewFilter, limit int) ([]domain.Review, error) {
	f.lastSimilarArgs.model = model
	f.lastSimilarArgs.limit = limit
	if f.similarErr != nil {
		return nil, f.similarErr
	}
	return f.similar, nil
}

type embedderFake struct {
	err   error
	calls int
}

func (f *embedderFake) EmbedQuery(context.Context, string) ([]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

type generatorFake struct {
	answer string
	err    error
	last   domain.GenerationRequest
	calls  int
}

func (f *generatorFake) Generate(_ context.Context, req domain.GenerationRequest) (string, error) {
	f.calls++
	f.last = req
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

type cacheFake struct {
	mu      sync.Mutex
	entries map[string][]byte
	getErr  error
	setErr  error
	ttl     time.Duration
}

func newCacheFake() *cacheFake {
	return &cacheFake{entries: map[string][]byte{}}
}

func (f *cacheFake) Get(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	v, ok := f.entries[key]
	if !ok {
		return nil, domain.ErrCacheMiss
	}
	return v, nil
}

func (f *cacheFake) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return f.setErr
	}
	f.entries[key] = value
	f.ttl = ttl
	return nil
}

type observerFake struct {
	chatModes []domain.RetrievalMode
	retrieved []int
	cacheHits map[string]int
	cacheMiss map[string]int
}

func newObserverFake() *observerFake {
	return &observerFake{cacheHits: map[string]int{}, cacheMiss: map[string]int{}}
}

func (f *observerFake) ObserveChat(mode domain.RetrievalMode, retrieved int, _ time.Duration) {
	f.chatModes = append(f.chatModes, mode)
	f.retrieved = append(f.retrieved, retrieved)
}

func (f *observerFake) ObserveCache(view string, hit bool) {
	if hit {
		f.cacheHits[view]++
		return
	}
	f.cacheMiss[view]++
}

func strPtr(s string) *string { return &s }

func sampleReviews(n int) []domain.Review {
	out := make([]domain.Review, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, domain.Review{
			ID:              int64(i),
			Platform:        "Google",
			ReviewDate:      domain.NewDate(time.Date(2024, 1, i, 0, 0, 0, 0, time.UTC)),
			Rating:          i%5 + 1,
			ReviewText:      fmt.Sprintf("review body %d", i),
			State:           strPtr("TX"),
			ChurnRisk:       strPtr("high"),
			PrimaryCategory: strPtr("billing"),
		})
	}
	return out
}
