package postgres

import (
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/JesseAnalyzes/Pegasus-hack-ai-thon/internal/core/domain"
)

// Predicate is the AND of every present filter field. It renders with "?"
// placeholders so squirrel can renumber it inside a larger statement.
type Predicate struct {
	conds sq.And
}

// BuildPredicate turns a filter into a parameterized predicate. Column names
// are fixed here; filter values only ever travel as binds.
func BuildPredicate(f domain.ReviewFilter) Predicate {
	var conds sq.And

	if f.DateFrom != nil {
		conds = append(conds, sq.Expr("review_date >= ?", *f.DateFrom))
	}
	if f.DateTo != nil {
		conds = append(conds, sq.Expr("review_date <= ?", *f.DateTo))
	}

	conds = appendAny(conds, "platform", f.Platforms)
	conds = appendAny(conds, "region", f.Regions)
	conds = appendAny(conds, "state", f.States)
	conds = appendAny(conds, "city", f.Cities)
	conds = appendAny(conds, "area_type", f.AreaTypes)
	conds = appendAny(conds, "churn_risk", f.ChurnRisk)
	conds = appendAny(conds, "overall_sentiment", f.OverallSentiment)
	conds = appendAny(conds, "primary_category", f.PrimaryCategories)
	conds = appendAny(conds, "nps_indicator", f.NPSIndicator)

	if f.MinRating != nil {
		conds = append(conds, sq.Expr("rating >= ?", *f.MinRating))
	}
	if f.MaxRating != nil {
		conds = append(conds, sq.Expr("rating <= ?", *f.MaxRating))
	}
	if f.MinSentimentScore != nil {
		conds = append(conds, sq.Expr("sentiment_score >= ?", *f.MinSentimentScore))
	}
	if f.MaxSentimentScore != nil {
		conds = append(conds, sq.Expr("sentiment_score <= ?", *f.MaxSentimentScore))
	}

	if f.HasSearch() {
		pattern := "%" + escapeLike(strings.TrimSpace(f.Search)) + "%"
		conds = append(conds, sq.Expr("(review_text ILIKE ? OR title ILIKE ?)", pattern, pattern))
	}

	return Predicate{conds: conds}
}

func appendAny(conds sq.And, column string, values []string) sq.And {
	if len(values) == 0 {
		return conds
	}
	return append(conds, sq.Expr(column+" = ANY(?)", pq.Array(values)))
}

// escapeLike makes %, _ and the escape character itself match literally.
func escapeLike(term string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(term)
}

func (p Predicate) Empty() bool {
	return len(p.conds) == 0
}

// Conditions is the number of AND-ed conditions.
func (p Predicate) Conditions() int {
	return len(p.conds)
}

// ToSql implements squirrel.Sqlizer. An empty predicate renders as an empty string.
func (p Predicate) ToSql() (string, []interface{}, error) {
	if p.Empty() {
		return "", nil, nil
	}
	return p.conds.ToSql()
}

// Dollar renders the predicate on its own with $1..$n placeholders.
func (p Predicate) Dollar() (string, []any, error) {
	query, args, err := p.ToSql()
	if err != nil || query == "" {
		return query, args, err
	}
	query, err = sq.Dollar.ReplacePlaceholders(query)
	if err != nil {
		return "", nil, err
	}
	return query, args, nil
}

// where applies the predicate to a select builder, skipping the WHERE clause when empty.
func (p Predicate) where(b sq.SelectBuilder) sq.SelectBuilder {
	if p.Empty() {
		return b
	}
	return b.Where(p)
}
