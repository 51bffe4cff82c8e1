package domain

type Granularity string

const (
	GranularityDay     Granularity = "day"
	GranularityWeek    Granularity = "week"
	GranularityMonth   Granularity = "month"
	GranularityQuarter Granularity = "quarter"
)

type TrendMetric string

const (
	MetricCount        TrendMetric = "count"
	MetricAvgRating    TrendMetric = "avg_rating"
	MetricAvgSentiment TrendMetric = "avg_sentiment"
	MetricChurnRisk    TrendMetric = "churn_risk"
)

type BreakdownDimension string

const (
	DimensionPlatform        BreakdownDimension = "platform"
	DimensionRegion          BreakdownDimension = "region"
	DimensionState           BreakdownDimension = "state"
	DimensionPrimaryCategory BreakdownDimension = "primary_category"
	DimensionAreaType        BreakdownDimension = "area_type"
)

type SentimentShare struct {
	Sentiment  *string `json:"sentiment"`
	Count      int64   `json:"count"`
	Percentage float64 `json:"percentage"`
}

type ChurnShare struct {
	Risk       *string `json:"risk"`
	Count      int64   `json:"count"`
	Percentage float64 `json:"percentage"`
}

type NPSShare struct {
	Indicator  *string `json:"indicator"`
	Count      int64   `json:"count"`
	Percentage float64 `json:"percentage"`
}

type PlatformCount struct {
	Platform string `json:"platform"`
	Count    int64  `json:"count"`
}

type RegionCount struct {
	Region string `json:"region"`
	Count  int64  `json:"count"`
}

type StateCount struct {
	State string `json:"state"`
	Count int64  `json:"count"`
}

type CategoryCount struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

type SummaryStats struct {
	TotalReviews        int64            `json:"total_reviews"`
	AvgRating           float64          `json:"avg_rating"`
	AvgSentimentScore   float64          `json:"avg_sentiment_score"`
	HighChurnCount      int64            `json:"high_churn_count"`
	HighChurnPercentage float64          `json:"high_churn_percentage"`
	SentimentBreakdown  []SentimentShare `json:"sentiment_breakdown"`
	ChurnRiskBreakdown  []ChurnShare     `json:"churn_risk_breakdown"`
	NPSBreakdown        []NPSShare       `json:"nps_breakdown"`
	PlatformCounts      []PlatformCount  `json:"platform_counts"`
	RegionCounts        []RegionCount    `json:"region_counts"`
	StateCounts         []StateCount     `json:"state_counts"`
	CategoryCounts      []CategoryCount  `json:"category_counts"`
}

type TimeSeriesPoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
	Count int64   `json:"count"`
}

type BreakdownItem struct {
	Group               string  `json:"group"`
	Count               int64   `json:"count"`
	AvgRating           float64 `json:"avg_rating"`
	AvgSentimentScore   float64 `json:"avg_sentiment_score"`
	HighChurnCount      int64   `json:"high_churn_count"`
	HighChurnPercentage float64 `json:"high_churn_percentage"`
}

type ReviewPage struct {
	Items      []Review `json:"items"`
	Page       int      `json:"page"`
	PageSize   int      `json:"pageSize"`
	TotalItems int64    `json:"totalItems"`
	TotalPages int      `json:"totalPages"`
}

// TotalPages is ceil(totalItems / pageSize); zero when pageSize is not positive.
func TotalPages(totalItems int64, pageSize int) int {
	if pageSize <= 0 || totalItems <= 0 {
		return 0
	}
	size := int64(pageSize)
	return int((totalItems + size - 1) / size)
}

// Percentage returns part/total*100, or 0 for an empty total.
func Percentage(part, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}
