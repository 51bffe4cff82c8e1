package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/pgvector/pgvector-go"
	"golang.org/x/sync/errgroup"

	"github.com/JesseAnalyzes/Pegasus-hack-ai-thon/internal/core/domain"
)

const (
	DefaultReviewsTable = "team_pegasus.frontier_reviews_processed"
	breakdownLimit      = 50

	highChurnFilter = "churn_risk IN ('high', 'critical')"
	shareExpr       = "COALESCE(ROUND(100.0 * COUNT(*) / NULLIF(SUM(COUNT(*)) OVER (), 0), 2), 0) AS percentage"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type ReviewRepository struct {
	db    *sql.DB
	table string
}

func NewReviewRepository(db *sql.DB, table string) *ReviewRepository {
	if strings.TrimSpace(table) == "" {
		table = DefaultReviewsTable
	}
	return &ReviewRepository{db: db, table: table}
}

type labelCount struct {
	label      *string
	count      int64
	percentage float64
}

func (r *ReviewRepository) Summary(ctx context.Context, filter domain.ReviewFilter) (*domain.SummaryStats, error) {
	pred := BuildPredicate(filter)
	stats := &domain.SummaryStats{}

	var (
		sentiment, churn, nps             []labelCount
		platforms, regions, states, cats []labelCount
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		q := pred.where(psql.Select(
			"COUNT(*)",
			"COALESCE(AVG(rating), 0)",
			"COALESCE(AVG(sentiment_score), 0)",
			"COUNT(*) FILTER (WHERE "+highChurnFilter+")",
		).From(r.table))
		query, args, err := q.ToSql()
		if err != nil {
			return fmt.Errorf("build summary totals: %w", err)
		}
		err = r.db.QueryRowContext(gctx, query, args...).Scan(
			&stats.TotalReviews, &stats.AvgRating, &stats.AvgSentimentScore, &stats.HighChurnCount,
		)
		if err != nil {
			return fmt.Errorf("query summary totals: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		sentiment, err = r.shares(gctx, pred, "overall_sentiment",
			[]string{"very_negative", "negative", "neutral", "positive", "very_positive"})
		return err
	})
	g.Go(func() (err error) {
		churn, err = r.shares(gctx, pred, "churn_risk", []string{"low", "medium", "high", "critical"})
		return err
	})
	g.Go(func() (err error) {
		nps, err = r.shares(gctx, pred, "nps_indicator", []string{"detractor", "passive", "promoter"})
		return err
	})
	g.Go(func() (err error) {
		platforms, err = r.counts(gctx, pred, "platform")
		return err
	})
	g.Go(func() (err error) {
		regions, err = r.counts(gctx, pred, "region")
		return err
	})
	g.Go(func() (err error) {
		states, err = r.counts(gctx, pred, "state")
		return err
	})
	g.Go(func() (err error) {
		cats, err = r.counts(gctx, pred, "primary_category")
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats.AvgRating = round2(stats.AvgRating)
	stats.AvgSentimentScore = round2(stats.AvgSentimentScore)
	stats.HighChurnPercentage = round2(domain.Percentage(stats.HighChurnCount, stats.TotalReviews))

	stats.SentimentBreakdown = make([]domain.SentimentShare, 0, len(sentiment))
	for _, lc := range sentiment {
		stats.SentimentBreakdown = append(stats.SentimentBreakdown, domain.SentimentShare{
			Sentiment: lc.label, Count: lc.count, Percentage: lc.percentage,
		})
	}
	stats.ChurnRiskBreakdown = make([]domain.ChurnShare, 0, len(churn))
	for _, lc := range churn {
		stats.ChurnRiskBreakdown = append(stats.ChurnRiskBreakdown, domain.ChurnShare{
			Risk: lc.label, Count: lc.count, Percentage: lc.percentage,
		})
	}
	stats.NPSBreakdown = make([]domain.NPSShare, 0, len(nps))
	for _, lc := range nps {
		stats.NPSBreakdown = append(stats.NPSBreakdown, domain.NPSShare{
			Indicator: lc.label, Count: lc.count, Percentage: lc.percentage,
		})
	}
	stats.PlatformCounts = make([]domain.PlatformCount, 0, len(platforms))
	for _, lc := range platforms {
		stats.PlatformCounts = append(stats.PlatformCounts, domain.PlatformCount{Platform: deref(lc.label), Count: lc.count})
	}
	stats.RegionCounts = make([]domain.RegionCount, 0, len(regions))
	for _, lc := range regions {
		stats.RegionCounts = append(stats.RegionCounts, domain.RegionCount{Region: deref(lc.label), Count: lc.count})
	}
	stats.StateCounts = make([]domain.StateCount, 0, len(states))
	for _, lc := range states {
		stats.StateCounts = append(stats.StateCounts, domain.StateCount{State: deref(lc.label), Count: lc.count})
	}
	stats.CategoryCounts = make([]domain.CategoryCount, 0, len(cats))
	for _, lc := range cats {
		stats.CategoryCounts = append(stats.CategoryCounts, domain.CategoryCount{Category: deref(lc.label), Count: lc.count})
	}
	return stats, nil
}

// shares groups by a categorical column including its null group, so the
// percentages of all groups add up to ~100.
func (r *ReviewRepository) shares(ctx context.Context, pred Predicate, column string, order []string) ([]labelCount, error) {
	var rank strings.Builder
	rank.WriteString("CASE " + column)
	for i, label := range order {
		fmt.Fprintf(&rank, " WHEN '%s' THEN %d", label, i+1)
	}
	fmt.Fprintf(&rank, " ELSE %d END", len(order)+1)

	q := pred.where(psql.Select(column, "COUNT(*) AS count", shareExpr).From(r.table)).
		GroupBy(column).
		OrderBy(rank.String())
	return r.queryLabels(ctx, q, column, true)
}

// counts groups by a column excluding nulls, largest group first.
func (r *ReviewRepository) counts(ctx context.Context, pred Predicate, column string) ([]labelCount, error) {
	q := pred.where(psql.Select(column, "COUNT(*) AS count").From(r.table)).
		Where(column + " IS NOT NULL").
		GroupBy(column).
		OrderBy("count DESC", column)
	return r.queryLabels(ctx, q, column, false)
}

func (r *ReviewRepository) queryLabels(ctx context.Context, q sq.SelectBuilder, column string, withShare bool) ([]labelCount, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build %s groups: %w", column, err)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s groups: %w", column, err)
	}
	defer rows.Close()

	out := make([]labelCount, 0, 8)
	for rows.Next() {
		var label sql.NullString
		var lc labelCount
		if withShare {
			err = rows.Scan(&label, &lc.count, &lc.percentage)
		} else {
			err = rows.Scan(&label, &lc.count)
		}
		if err != nil {
			return nil, fmt.Errorf("scan %s group: %w", column, err)
		}
		lc.label = nullString(label)
		out = append(out, lc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s groups: %w", column, err)
	}
	return out, nil
}

func (r *ReviewRepository) TimeSeries(
	ctx context.Context,
	filter domain.ReviewFilter,
	granularity domain.Granularity,
	metric domain.TrendMetric,
) ([]domain.TimeSeriesPoint, error) {
	unit, ok := truncUnits[granularity]
	if !ok {
		return nil, domain.WrapError(domain.ErrInvalidInput, "time series", fmt.Errorf("unsupported granularity %q", granularity))
	}
	valueExpr, ok := metricExprs[metric]
	if !ok {
		return nil, domain.WrapError(domain.ErrInvalidInput, "time series", fmt.Errorf("unsupported metric %q", metric))
	}

	q := BuildPredicate(filter).where(psql.Select(
		"DATE_TRUNC('"+unit+"', review_date)::date AS bucket",
		valueExpr+" AS value",
		"COUNT(*) AS count",
	).From(r.table)).
		GroupBy("bucket").
		OrderBy("bucket ASC")

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build time series: %w", err)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query time series: %w", err)
	}
	defer rows.Close()

	points := make([]domain.TimeSeriesPoint, 0, 32)
	for rows.Next() {
		var bucket domain.Date
		var p domain.TimeSeriesPoint
		if err := rows.Scan(&bucket, &p.Value, &p.Count); err != nil {
			return nil, fmt.Errorf("scan time series point: %w", err)
		}
		p.Date = bucket.String()
		p.Value = round2(p.Value)
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate time series: %w", err)
	}
	return points, nil
}

var truncUnits = map[domain.Granularity]string{
	domain.GranularityDay:     "day",
	domain.GranularityWeek:    "week",
	domain.GranularityMonth:   "month",
	domain.GranularityQuarter: "quarter",
}

var metricExprs = map[domain.TrendMetric]string{
	domain.MetricCount:        "COUNT(*)::float8",
	domain.MetricAvgRating:    "COALESCE(AVG(rating), 0)::float8",
	domain.MetricAvgSentiment: "COALESCE(AVG(sentiment_score), 0)::float8",
	domain.MetricChurnRisk:    "(COUNT(*) FILTER (WHERE " + highChurnFilter + "))::float8",
}

var breakdownColumns = map[domain.BreakdownDimension]string{
	domain.DimensionPlatform:        "platform",
	domain.DimensionRegion:          "region",
	domain.DimensionState:           "state",
	domain.DimensionPrimaryCategory: "primary_category",
	domain.DimensionAreaType:        "area_type",
}

func (r *ReviewRepository) Breakdown(ctx context.Context, filter domain.ReviewFilter, dimension domain.BreakdownDimension) ([]domain.BreakdownItem, error) {
	column, ok := breakdownColumns[dimension]
	if !ok {
		return nil, domain.WrapError(domain.ErrInvalidInput, "breakdown", fmt.Errorf("unsupported dimension %q", dimension))
	}

	q := BuildPredicate(filter).where(psql.Select(
		column+" AS grp",
		"COUNT(*) AS count",
		"COALESCE(AVG(rating), 0)",
		"COALESCE(AVG(sentiment_score), 0)",
		"COUNT(*) FILTER (WHERE "+highChurnFilter+")",
	).From(r.table)).
		Where(column + " IS NOT NULL").
		GroupBy(column).
		OrderBy("count DESC", column).
		Suffix(fmt.Sprintf("LIMIT %d", breakdownLimit))

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build breakdown: %w", err)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query breakdown: %w", err)
	}
	defer rows.Close()

	items := make([]domain.BreakdownItem, 0, 16)
	for rows.Next() {
		var it domain.BreakdownItem
		if err := rows.Scan(&it.Group, &it.Count, &it.AvgRating, &it.AvgSentimentScore, &it.HighChurnCount); err != nil {
			return nil, fmt.Errorf("scan breakdown item: %w", err)
		}
		it.AvgRating = round2(it.AvgRating)
		it.AvgSentimentScore = round2(it.AvgSentimentScore)
		it.HighChurnPercentage = round2(domain.Percentage(it.HighChurnCount, it.Count))
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate breakdown: %w", err)
	}
	return items, nil
}

var sortColumns = map[domain.SortField]string{
	domain.SortByReviewDate:       "review_date",
	domain.SortByRating:           "rating",
	domain.SortBySentimentScore:   "sentiment_score",
	domain.SortByChurnProbability: "churn_probability_score",
	domain.SortByHelpfulCount:     "helpful_count",
}

func (r *ReviewRepository) List(ctx context.Context, filter domain.ReviewFilter, page domain.PageRequest) (*domain.ReviewPage, error) {
	page = page.Normalize()
	column, ok := sortColumns[page.SortBy]
	if !ok {
		return nil, domain.WrapError(domain.ErrInvalidInput, "list reviews", fmt.Errorf("unsupported sort field %q", page.SortBy))
	}
	dir := "DESC"
	switch page.SortDirection {
	case domain.SortAsc:
		dir = "ASC"
	case domain.SortDesc:
	default:
		return nil, domain.WrapError(domain.ErrInvalidInput, "list reviews", fmt.Errorf("unsupported sort direction %q", page.SortDirection))
	}

	pred := BuildPredicate(filter)
	result := &domain.ReviewPage{Page: page.Page, PageSize: page.PageSize}
	items := make([]domain.Review, 0, page.PageSize)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		query, args, err := pred.where(psql.Select("COUNT(*)").From(r.table)).ToSql()
		if err != nil {
			return fmt.Errorf("build review count: %w", err)
		}
		if err := r.db.QueryRowContext(gctx, query, args...).Scan(&result.TotalItems); err != nil {
			return fmt.Errorf("count reviews: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		q := pred.where(psql.Select(reviewColumns...).From(r.table)).
			OrderBy(column+" "+dir+" NULLS LAST", "id "+dir).
			Suffix("LIMIT ? OFFSET ?", page.PageSize, page.Offset())
		query, args, err := q.ToSql()
		if err != nil {
			return fmt.Errorf("build review page: %w", err)
		}
		rows, err := r.db.QueryContext(gctx, query, args...)
		if err != nil {
			return fmt.Errorf("query review page: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			review, err := scanReview(rows)
			if err != nil {
				return fmt.Errorf("scan review: %w", err)
			}
			items = append(items, review)
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("iterate review page: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result.Items = items
	result.TotalPages = domain.TotalPages(result.TotalItems, page.PageSize)
	return result, nil
}

func (r *ReviewRepository) GetByID(ctx context.Context, id int64) (*domain.Review, error) {
	query, args, err := psql.Select(reviewColumns...).From(r.table).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build review lookup: %w", err)
	}
	review, err := scanReview(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrReviewNotFound, "get review", fmt.Errorf("id %d", id))
		}
		return nil, fmt.Errorf("scan review: %w", err)
	}
	return &review, nil
}

// Similar returns the reviews nearest to the query vector among rows embedded
// with the same model, narrowed by the filter.
func (r *ReviewRepository) Similar(
	ctx context.Context,
	queryVector []float32,
	embeddingModel string,
	filter domain.ReviewFilter,
	limit int,
) ([]domain.Review, error) {
	if len(queryVector) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "similar reviews", errors.New("empty query vector"))
	}
	if limit <= 0 {
		limit = 20
	}

	q := BuildPredicate(filter).where(psql.Select(reviewColumns...).From(r.table).
		Where("gte_embedding IS NOT NULL").
		Where(sq.Eq{"embedding_model": embeddingModel})).
		OrderByClause("gte_embedding <-> ?::vector", pgvector.NewVector(queryVector)).
		Suffix("LIMIT ?", limit)

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build similarity query: %w", err)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query similar reviews: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Review, 0, limit)
	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("scan similar review: %w", err)
		}
		out = append(out, review)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate similar reviews: %w", err)
	}
	return out, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
