package domain

import (
	"database/sql/driver"
	"fmt"
	"time"
)

type OverallSentiment string

const (
	SentimentVeryNegative OverallSentiment = "very_negative"
	SentimentNegative     OverallSentiment = "negative"
	SentimentNeutral      OverallSentiment = "neutral"
	SentimentPositive     OverallSentiment = "positive"
	SentimentVeryPositive OverallSentiment = "very_positive"
)

type ChurnRisk string

const (
	ChurnRiskLow      ChurnRisk = "low"
	ChurnRiskMedium   ChurnRisk = "medium"
	ChurnRiskHigh     ChurnRisk = "high"
	ChurnRiskCritical ChurnRisk = "critical"
)

type NPSIndicator string

const (
	NPSDetractor NPSIndicator = "detractor"
	NPSPassive   NPSIndicator = "passive"
	NPSPromoter  NPSIndicator = "promoter"
)

type AreaType string

const (
	AreaUrban    AreaType = "urban"
	AreaSuburban AreaType = "suburban"
	AreaRural    AreaType = "rural"
)

type ProcessingStatus string

const (
	ProcessingPending         ProcessingStatus = "pending"
	ProcessingClaudeProcessed ProcessingStatus = "claude_processed"
	ProcessingVectorProcessed ProcessingStatus = "vector_processed"
	ProcessingCompleted       ProcessingStatus = "completed"
	ProcessingErrored         ProcessingStatus = "errored"
)

// Review is one enriched row of the reviews table. Enrichment fields stay
// nil until the external pipeline fills them in.
type Review struct {
	ID                    int64            `json:"id"`
	ReviewID              int64            `json:"review_id"`
	Platform              string           `json:"platform"`
	ReviewDate            Date             `json:"review_date"`
	Rating                int              `json:"rating"`
	ReviewerName          string           `json:"reviewer_name"`
	Location              *string          `json:"location"`
	ReviewText            string           `json:"review_text"`
	HelpfulCount          int              `json:"helpful_count"`
	ReviewURL             string           `json:"review_url"`
	Title                 *string          `json:"title"`
	VerifiedReviewer      *bool            `json:"verified_reviewer"`
	VerifiedCustomer      *bool            `json:"verified_customer"`
	LocalGuide            *bool            `json:"local_guide"`
	City                  *string          `json:"city"`
	State                 *string          `json:"state"`
	Region                *string          `json:"region"`
	AreaType              *string          `json:"area_type"`
	Year                  *int             `json:"year"`
	Month                 *int             `json:"month"`
	Quarter               *string          `json:"quarter"`
	WeekOfYear            *int             `json:"week_of_year"`
	DaysAgo               *int             `json:"days_ago"`
	ProcessingStatus      ProcessingStatus `json:"processing_status"`
	SentimentScore        *float64         `json:"sentiment_score"`
	OverallSentiment      *string          `json:"overall_sentiment"`
	UrgencyLevel          *string          `json:"urgency_level"`
	ChurnRisk             *string          `json:"churn_risk"`
	ChurnProbabilityScore *float64         `json:"churn_probability_score"`
	PrimaryCategory       *string          `json:"primary_category"`
	NPSIndicator          *string          `json:"nps_indicator"`
	ReputationRisk        *string          `json:"reputation_risk"`
	IssueSeverity         *string          `json:"issue_severity"`
	ResolutionStatus      *string          `json:"resolution_status"`
	AIAttributes          map[string]any   `json:"ai_attributes"`
	ReviewSummary         *string          `json:"review_summary"`
	EmbeddingModel        *string          `json:"embedding_model"`
	HasEmbedding          bool             `json:"has_embedding"`
	CreatedAt             time.Time        `json:"created_at"`
	UpdatedAt             time.Time        `json:"updated_at"`
}

// Location label used in prompts: state, then city, then "Unknown".
func (r Review) LocationLabel() string {
	if r.State != nil && *r.State != "" {
		return *r.State
	}
	if r.City != nil && *r.City != "" {
		return *r.City
	}
	return "Unknown"
}

// Date is a calendar day serialized as YYYY-MM-DD.
type Date struct {
	time.Time
}

const DateLayout = "2006-01-02"

func NewDate(t time.Time) Date {
	return Date{Time: t}
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.Format(DateLayout) + `"`), nil
}

func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		d.Time = time.Time{}
		return nil
	case time.Time:
		d.Time = v
		return nil
	case string:
		return d.parse(v)
	case []byte:
		return d.parse(string(v))
	default:
		return fmt.Errorf("scan date: unsupported type %T", src)
	}
}

func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.Time, nil
}

func (d *Date) parse(raw string) error {
	if len(raw) > len(DateLayout) {
		raw = raw[:len(DateLayout)]
	}
	t, err := time.Parse(DateLayout, raw)
	if err != nil {
		return fmt.Errorf("scan date: %w", err)
	}
	d.Time = t
	return nil
}
