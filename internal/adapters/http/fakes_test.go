package httpadapter

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/JesseAnalyzes/Pegasus-hack-ai-thon/internal/config"
	"github.com/JesseAnalyzes/Pegasus-hack-ai-thon/internal/core/domain"
)

type analyticsFake struct {
	reviews []domain.Review
	err     error

	lastFilter    domain.ReviewFilter
	lastPage      domain.PageRequest
	lastDimension domain.BreakdownDimension
	lastMetric    domain.TrendMetric
	lastGran      domain.Granularity
}

func (f *analyticsFake) Summary(_ context.Context, filter domain.ReviewFilter) (*domain.SummaryStats, error) {
	f.lastFilter = filter
	if f.err != nil {
		return nil, f.err
	}
	return &domain.SummaryStats{TotalReviews: int64(len(f.reviews))}, nil
}

func (f *analyticsFake) Trends(_ context.Context, filter domain.ReviewFilter, g domain.Granularity, m domain.TrendMetric) ([]domain.TimeSeriesPoint, error) {
	f.lastFilter, f.lastGran, f.lastMetric = filter, g, m
	if f.err != nil {
		return nil, f.err
	}
	return nil, nil
}

func (f *analyticsFake) Breakdown(_ context.Context, filter domain.ReviewFilter, d domain.BreakdownDimension) ([]domain.BreakdownItem, error) {
	f.lastFilter, f.lastDimension = filter, d
	if f.err != nil {
		return nil, f.err
	}
	return []domain.BreakdownItem{{Group: "Google", Count: int64(len(f.reviews))}}, nil
}

func (f *analyticsFake) ListReviews(_ context.Context, filter domain.ReviewFilter, page domain.PageRequest) (*domain.ReviewPage, error) {
	f.lastFilter, f.lastPage = filter, page
	if f.err != nil {
		return nil, f.err
	}
	page = page.Normalize()
	items := make([]domain.Review, 0, page.PageSize)
	for i := page.Offset(); i < len(f.reviews) && len(items) < page.PageSize; i++ {
		items = append(items, f.reviews[i])
	}
	total := int64(len(f.reviews))
	return &domain.ReviewPage{
		Items:      items,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalItems: total,
		TotalPages: domain.TotalPages(total, page.PageSize),
	}, nil
}

func (f *analyticsFake) GetReview(_ context.Context, id int64) (*domain.Review, error) {
	for _, r := range f.reviews {
		if r.ID == id {
			r := r
			return &r, nil
		}
	}
	return nil, domain.WrapError(domain.ErrReviewNotFound, "get review", fmt.Errorf("id %d", id))
}

type chatFake struct {
	calls int
	last  domain.ChatRequest
	err   error
}

func (f *chatFake) Chat(_ context.Context, req domain.ChatRequest) (*domain.ChatResponse, error) {
	f.calls++
	f.last = req
	if f.err != nil {
		return nil, f.err
	}
	return &domain.ChatResponse{
		Answer:        "answer",
		UsedReviewIDs: []int64{},
		Sources:       []domain.ChatSource{},
		RetrievalMode: domain.RetrievalNone,
	}, nil
}

type assistantFake struct {
	err          error
	lastID       int64
	lastText     string
	lastQuestion string
}

func (f *assistantFake) Summarize(_ context.Context, id int64, text string) (string, error) {
	f.lastID, f.lastText = id, text
	if f.err != nil {
		return "", f.err
	}
	return "short summary", nil
}

func (f *assistantFake) Answer(_ context.Context, id int64, text, question string) (string, error) {
	f.lastID, f.lastText, f.lastQuestion = id, text, question
	if f.err != nil {
		return "", f.err
	}
	return "short answer", nil
}

type testDeps struct {
	analytics *analyticsFake
	chat      *chatFake
	assistant *assistantFake
}

func newTestHandler(cfg config.Config) (http.Handler, *testDeps) {
	deps := &testDeps{
		analytics: &analyticsFake{reviews: sampleReviews(12)},
		chat:      &chatFake{},
		assistant: &assistantFake{},
	}
	return NewRouter(cfg, deps.analytics, deps.chat, deps.assistant, nil).Handler(), deps
}

func sampleReviews(n int) []domain.Review {
	out := make([]domain.Review, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, domain.Review{
			ID:         int64(i),
			Platform:   "Google",
			Rating:     i%5 + 1,
			ReviewDate: domain.NewDate(time.Date(2024, 2, i, 0, 0, 0, 0, time.UTC)),
			ReviewText: fmt.Sprintf("review %d", i),
		})
	}
	return out
}
