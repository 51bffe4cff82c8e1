package domain

import (
	"math"
	"strings"
	"time"
)

// ReviewFilter is the optional filter set shared by every read operation.
// A field takes part in filtering only when present: non-nil pointer,
// non-empty slice or non-blank search text.
type ReviewFilter struct {
	DateFrom          *time.Time `json:"dateFrom,omitempty"`
	DateTo            *time.Time `json:"dateTo,omitempty"`
	Platforms         []string   `json:"platforms,omitempty"`
	Regions           []string   `json:"regions,omitempty"`
	States            []string   `json:"states,omitempty"`
	Cities            []string   `json:"cities,omitempty"`
	AreaTypes         []string   `json:"areaTypes,omitempty"`
	ChurnRisk         []string   `json:"churnRisk,omitempty"`
	OverallSentiment  []string   `json:"overallSentiment,omitempty"`
	PrimaryCategories []string   `json:"primaryCategories,omitempty"`
	NPSIndicator      []string   `json:"npsIndicator,omitempty"`
	MinRating         *int       `json:"minRating,omitempty"`
	MaxRating         *int       `json:"maxRating,omitempty"`
	MinSentimentScore *float64   `json:"minSentimentScore,omitempty"`
	MaxSentimentScore *float64   `json:"maxSentimentScore,omitempty"`
	Search            string     `json:"search,omitempty"`
}

func (f ReviewFilter) HasSearch() bool {
	return strings.TrimSpace(f.Search) != ""
}

type SortField string

const (
	SortByReviewDate       SortField = "review_date"
	SortByRating           SortField = "rating"
	SortBySentimentScore   SortField = "sentiment_score"
	SortByChurnProbability SortField = "churn_probability_score"
	SortByHelpfulCount     SortField = "helpful_count"
)

type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

type PageRequest struct {
	Page          int
	PageSize      int
	SortBy        SortField
	SortDirection SortDirection
}

func (p PageRequest) Normalize() PageRequest {
	out := p
	if out.Page <= 0 {
		out.Page = 1
	}
	if out.PageSize <= 0 {
		out.PageSize = 20
	}
	if out.SortBy == "" {
		out.SortBy = SortByReviewDate
	}
	if out.SortDirection == "" {
		out.SortDirection = SortDesc
	}
	return out
}

// Offset saturates at math.MaxInt so a page far past the end stays an empty
// page instead of a negative OFFSET.
func (p PageRequest) Offset() int {
	if p.Page <= 1 || p.PageSize <= 0 {
		return 0
	}
	if p.Page-1 > math.MaxInt/p.PageSize {
		return math.MaxInt
	}
	return (p.Page - 1) * p.PageSize
}
