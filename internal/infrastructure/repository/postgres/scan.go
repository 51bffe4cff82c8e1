package postgres

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/JesseAnalyzes/Pegasus-hack-ai-thon/internal/core/domain"
)

// reviewColumns is the projection shared by every record query. The raw
// vector stays in the database; only its presence is selected.
var reviewColumns = []string{
	"id",
	"review_id",
	"platform",
	"review_date",
	"rating",
	"COALESCE(reviewer_name, '')",
	"location",
	"review_text",
	"COALESCE(helpful_count, 0)",
	"COALESCE(review_url, '')",
	"title",
	"verified_reviewer",
	"verified_customer",
	"local_guide",
	"city",
	"state",
	"region",
	"area_type",
	"year",
	"month",
	"quarter",
	"week_of_year",
	"days_ago",
	"processing_status",
	"sentiment_score",
	"overall_sentiment",
	"urgency_level",
	"churn_risk",
	"churn_probability_score",
	"primary_category",
	"nps_indicator",
	"reputation_risk",
	"issue_severity",
	"resolution_status",
	"ai_attributes",
	"review_summary",
	"embedding_model",
	"(gte_embedding IS NOT NULL) AS has_embedding",
	"created_at",
	"updated_at",
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReview(row rowScanner) (domain.Review, error) {
	var (
		r          domain.Review
		status     string
		attrsRaw   []byte
		location   sql.NullString
		title      sql.NullString
		city       sql.NullString
		state      sql.NullString
		region     sql.NullString
		areaType   sql.NullString
		quarter    sql.NullString
		sentiment  sql.NullString
		urgency    sql.NullString
		churnRisk  sql.NullString
		category   sql.NullString
		nps        sql.NullString
		reputation sql.NullString
		severity   sql.NullString
		resolution sql.NullString
		summary    sql.NullString
		embedModel sql.NullString
		verifiedR  sql.NullBool
		verifiedC  sql.NullBool
		localGuide sql.NullBool
		year       sql.NullInt64
		month      sql.NullInt64
		week       sql.NullInt64
		daysAgo    sql.NullInt64
		score      sql.NullFloat64
		churnProb  sql.NullFloat64
	)

	err := row.Scan(
		&r.ID, &r.ReviewID, &r.Platform, &r.ReviewDate, &r.Rating, &r.ReviewerName, &location,
		&r.ReviewText, &r.HelpfulCount, &r.ReviewURL, &title, &verifiedR, &verifiedC, &localGuide,
		&city, &state, &region, &areaType, &year, &month, &quarter, &week, &daysAgo,
		&status, &score, &sentiment, &urgency, &churnRisk, &churnProb, &category, &nps,
		&reputation, &severity, &resolution, &attrsRaw, &summary, &embedModel, &r.HasEmbedding,
		&r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return domain.Review{}, err
	}

	r.ProcessingStatus = domain.ProcessingStatus(status)
	r.Location = nullString(location)
	r.Title = nullString(title)
	r.City = nullString(city)
	r.State = nullString(state)
	r.Region = nullString(region)
	r.AreaType = nullString(areaType)
	r.Quarter = nullString(quarter)
	r.OverallSentiment = nullString(sentiment)
	r.UrgencyLevel = nullString(urgency)
	r.ChurnRisk = nullString(churnRisk)
	r.PrimaryCategory = nullString(category)
	r.NPSIndicator = nullString(nps)
	r.ReputationRisk = nullString(reputation)
	r.IssueSeverity = nullString(severity)
	r.ResolutionStatus = nullString(resolution)
	r.ReviewSummary = nullString(summary)
	r.EmbeddingModel = nullString(embedModel)
	r.VerifiedReviewer = nullBool(verifiedR)
	r.VerifiedCustomer = nullBool(verifiedC)
	r.LocalGuide = nullBool(localGuide)
	r.Year = nullInt(year)
	r.Month = nullInt(month)
	r.WeekOfYear = nullInt(week)
	r.DaysAgo = nullInt(daysAgo)
	r.SentimentScore = nullFloat(score)
	r.ChurnProbabilityScore = nullFloat(churnProb)

	if len(attrsRaw) > 0 {
		if err := json.Unmarshal(attrsRaw, &r.AIAttributes); err != nil {
			return domain.Review{}, fmt.Errorf("unmarshal ai_attributes: %w", err)
		}
	}
	return r, nil
}

func nullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func nullBool(v sql.NullBool) *bool {
	if !v.Valid {
		return nil
	}
	b := v.Bool
	return &b
}

func nullInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
