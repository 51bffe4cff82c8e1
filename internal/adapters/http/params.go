package httpadapter

import (
	"errors"
	"math"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/JesseAnalyzes/Pegasus-hack-ai-thon/internal/core/domain"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// filterInput is the wire form of domain.ReviewFilter, shared by query
// strings and the chat body.
type filterInput struct {
	DateFrom          string   `json:"dateFrom" validate:"omitempty,datetime=2006-01-02"`
	DateTo            string   `json:"dateTo" validate:"omitempty,datetime=2006-01-02"`
	Platforms         []string `json:"platforms" validate:"max=50,dive,max=255"`
	Regions           []string `json:"regions" validate:"max=50,dive,max=255"`
	States            []string `json:"states" validate:"max=50,dive,max=255"`
	Cities            []string `json:"cities" validate:"max=50,dive,max=255"`
	AreaTypes         []string `json:"areaTypes" validate:"max=50,dive,oneof=urban suburban rural"`
	ChurnRisk         []string `json:"churnRisk" validate:"max=50,dive,oneof=low medium high critical"`
	OverallSentiment  []string `json:"overallSentiment" validate:"max=50,dive,oneof=very_negative negative neutral positive very_positive"`
	PrimaryCategories []string `json:"primaryCategories" validate:"max=50,dive,max=255"`
	NPSIndicator      []string `json:"npsIndicator" validate:"max=50,dive,oneof=detractor passive promoter"`
	MinRating         *int     `json:"minRating" validate:"omitempty,min=1,max=5"`
	MaxRating         *int     `json:"maxRating" validate:"omitempty,min=1,max=5"`
	MinSentimentScore *float64 `json:"minSentimentScore" validate:"omitempty,min=-1,max=1"`
	MaxSentimentScore *float64 `json:"maxSentimentScore" validate:"omitempty,min=-1,max=1"`
	Search            string   `json:"search" validate:"max=500"`
}

type listInput struct {
	Page          int    `json:"page" validate:"min=1"`
	PageSize      int    `json:"pageSize" validate:"min=1,max=100"`
	SortBy        string `json:"sortBy" validate:"omitempty,oneof=review_date rating sentiment_score churn_probability_score helpful_count"`
	SortDirection string `json:"sortDirection" validate:"omitempty,oneof=asc desc"`
}

type trendsInput struct {
	Granularity string `json:"granularity" validate:"oneof=day week month quarter"`
	Metric      string `json:"metric" validate:"oneof=count avg_rating avg_sentiment churn_risk"`
}

type breakdownInput struct {
	GroupBy string `json:"groupBy" validate:"oneof=platform region state primary_category area_type"`
}

type chatRequestBody struct {
	Message string            `json:"message" validate:"required,max=5000"`
	Filters *filterInput      `json:"filters" validate:"-"`
	History []chatHistoryTurn `json:"history" validate:"max=20,dive"`
}

type chatHistoryTurn struct {
	Role    string `json:"role" validate:"required,oneof=user assistant"`
	Content string `json:"content" validate:"max=5000"`
}

type reviewSummaryBody struct {
	ReviewText string `json:"reviewText" validate:"max=20000"`
}

type reviewQuestionBody struct {
	ReviewText string `json:"reviewText" validate:"max=20000"`
	Question   string `json:"question" validate:"required,max=5000"`
}

// parseFilterQuery reads comma-separated lists and numeric bounds from the
// query string. Type errors are reported per field; range and enum checks
// happen in buildFilter.
func parseFilterQuery(q url.Values) (filterInput, []domain.FieldError) {
	var fieldErrs []domain.FieldError
	in := filterInput{
		DateFrom:          strings.TrimSpace(q.Get("dateFrom")),
		DateTo:            strings.TrimSpace(q.Get("dateTo")),
		Platforms:         splitList(q.Get("platforms")),
		Regions:           splitList(q.Get("regions")),
		States:            splitList(q.Get("states")),
		Cities:            splitList(q.Get("cities")),
		AreaTypes:         splitList(q.Get("areaTypes")),
		ChurnRisk:         splitList(q.Get("churnRisk")),
		OverallSentiment:  splitList(q.Get("overallSentiment")),
		PrimaryCategories: splitList(q.Get("primaryCategories")),
		NPSIndicator:      splitList(q.Get("npsIndicator")),
		Search:            q.Get("search"),
	}

	var err *domain.FieldError
	if in.MinRating, err = queryInt(q, "minRating"); err != nil {
		fieldErrs = append(fieldErrs, *err)
	}
	if in.MaxRating, err = queryInt(q, "maxRating"); err != nil {
		fieldErrs = append(fieldErrs, *err)
	}
	if in.MinSentimentScore, err = queryFloat(q, "minSentimentScore"); err != nil {
		fieldErrs = append(fieldErrs, *err)
	}
	if in.MaxSentimentScore, err = queryFloat(q, "maxSentimentScore"); err != nil {
		fieldErrs = append(fieldErrs, *err)
	}
	return in, fieldErrs
}

func parseListQuery(q url.Values) (listInput, []domain.FieldError) {
	var fieldErrs []domain.FieldError
	in := listInput{
		Page:          1,
		PageSize:      20,
		SortBy:        strings.TrimSpace(q.Get("sortBy")),
		SortDirection: strings.TrimSpace(q.Get("sortDirection")),
	}
	if v, err := queryInt(q, "page"); err != nil {
		fieldErrs = append(fieldErrs, *err)
	} else if v != nil {
		in.Page = *v
	}
	if v, err := queryInt(q, "pageSize"); err != nil {
		fieldErrs = append(fieldErrs, *err)
	} else if v != nil {
		in.PageSize = *v
	}
	return in, fieldErrs
}

// buildFilter validates the wire filter and converts it. prefix is prepended
// to cross-field error names, e.g. "filters." for the chat body.
func buildFilter(in filterInput, prefix string) (domain.ReviewFilter, []domain.FieldError) {
	in.Platforms = cleanList(in.Platforms)
	in.Regions = cleanList(in.Regions)
	in.States = cleanList(in.States)
	in.Cities = cleanList(in.Cities)
	in.AreaTypes = cleanList(in.AreaTypes)
	in.ChurnRisk = cleanList(in.ChurnRisk)
	in.OverallSentiment = cleanList(in.OverallSentiment)
	in.PrimaryCategories = cleanList(in.PrimaryCategories)
	in.NPSIndicator = cleanList(in.NPSIndicator)
	in.Search = strings.TrimSpace(in.Search)

	if fieldErrs := validateStruct(in, prefix); len(fieldErrs) > 0 {
		return domain.ReviewFilter{}, fieldErrs
	}

	filter := domain.ReviewFilter{
		Platforms:         in.Platforms,
		Regions:           in.Regions,
		States:            in.States,
		Cities:            in.Cities,
		AreaTypes:         in.AreaTypes,
		ChurnRisk:         in.ChurnRisk,
		OverallSentiment:  in.OverallSentiment,
		PrimaryCategories: in.PrimaryCategories,
		NPSIndicator:      in.NPSIndicator,
		MinRating:         in.MinRating,
		MaxRating:         in.MaxRating,
		MinSentimentScore: in.MinSentimentScore,
		MaxSentimentScore: in.MaxSentimentScore,
		Search:            in.Search,
	}
	if in.DateFrom != "" {
		t, _ := time.Parse(domain.DateLayout, in.DateFrom)
		filter.DateFrom = &t
	}
	if in.DateTo != "" {
		t, _ := time.Parse(domain.DateLayout, in.DateTo)
		filter.DateTo = &t
	}

	var fieldErrs []domain.FieldError
	if filter.DateFrom != nil && filter.DateTo != nil && filter.DateFrom.After(*filter.DateTo) {
		fieldErrs = append(fieldErrs, domain.FieldError{Field: prefix + "dateFrom", Message: "must not be after dateTo"})
	}
	if filter.MinRating != nil && filter.MaxRating != nil && *filter.MinRating > *filter.MaxRating {
		fieldErrs = append(fieldErrs, domain.FieldError{Field: prefix + "minRating", Message: "must not exceed maxRating"})
	}
	if filter.MinSentimentScore != nil && filter.MaxSentimentScore != nil && *filter.MinSentimentScore > *filter.MaxSentimentScore {
		fieldErrs = append(fieldErrs, domain.FieldError{Field: prefix + "minSentimentScore", Message: "must not exceed maxSentimentScore"})
	}
	if len(fieldErrs) > 0 {
		return domain.ReviewFilter{}, fieldErrs
	}
	return filter, nil
}

func toPageRequest(in listInput) domain.PageRequest {
	return domain.PageRequest{
		Page:          in.Page,
		PageSize:      in.PageSize,
		SortBy:        domain.SortField(in.SortBy),
		SortDirection: domain.SortDirection(in.SortDirection),
	}
}

func parseReviewID(raw string) (int64, *domain.FieldError) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, &domain.FieldError{Field: "id", Message: "must be a positive integer"}
	}
	return id, nil
}

// validateStruct runs the struct tags and renders failures with JSON field
// paths relative to the request root.
func validateStruct(v any, prefix string) []domain.FieldError {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []domain.FieldError{{Field: strings.TrimSuffix(prefix, "."), Message: "is invalid"}}
	}
	out := make([]domain.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, domain.FieldError{
			Field:   prefix + fieldPath(fe.Namespace()),
			Message: describeFieldError(fe),
		})
	}
	return out
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(namespace string) string {
	if _, rest, ok := strings.Cut(namespace, "."); ok {
		return rest
	}
	return namespace
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "datetime":
		return "must be a date in YYYY-MM-DD format"
	case "max":
		switch fe.Kind() {
		case reflect.Slice:
			return "must contain at most " + fe.Param() + " items"
		case reflect.String:
			return "must be at most " + fe.Param() + " characters"
		default:
			return "must be at most " + fe.Param()
		}
	case "min":
		if fe.Kind() == reflect.String {
			return "must be at least " + fe.Param() + " characters"
		}
		return "must be at least " + fe.Param()
	default:
		return "is invalid"
	}
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return cleanList(strings.Split(raw, ","))
}

func cleanList(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func queryInt(q url.Values, key string) (*int, *domain.FieldError) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, &domain.FieldError{Field: key, Message: "must be an integer"}
	}
	return &v, nil
}

func queryFloat(q url.Values, key string) (*float64, *domain.FieldError) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, &domain.FieldError{Field: key, Message: "must be a number"}
	}
	return &v, nil
}
