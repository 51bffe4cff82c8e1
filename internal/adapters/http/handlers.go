package httpadapter

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JesseAnalyzes/Pegasus-hack-ai-thon/internal/core/domain"
)

const (
	msgInvalidQuery = "Invalid query parameters"
	msgInvalidBody  = "Invalid request body"
	msgInternal     = "Internal server error"
)

func (rt *Router) getSummary(w http.ResponseWriter, r *http.Request) {
	filter, ok := rt.filterFromQuery(w, r, nil)
	if !ok {
		return
	}
	stats, err := rt.analytics.Summary(r.Context(), filter)
	if err != nil {
		respondError(w, r, err, msgInternal)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (rt *Router) getTrends(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	in := trendsInput{
		Granularity: queryOr(q.Get("granularity"), string(domain.GranularityDay)),
		Metric:      queryOr(q.Get("metric"), string(domain.MetricCount)),
	}
	filter, ok := rt.filterFromQuery(w, r, validateStruct(in, ""))
	if !ok {
		return
	}

	points, err := rt.analytics.Trends(r.Context(), filter, domain.Granularity(in.Granularity), domain.TrendMetric(in.Metric))
	if err != nil {
		respondError(w, r, err, msgInternal)
		return
	}
	if points == nil {
		points = []domain.TimeSeriesPoint{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"trends": points})
}

func (rt *Router) getBreakdowns(w http.ResponseWriter, r *http.Request) {
	in := breakdownInput{GroupBy: queryOr(r.URL.Query().Get("groupBy"), string(domain.DimensionPlatform))}
	filter, ok := rt.filterFromQuery(w, r, validateStruct(in, ""))
	if !ok {
		return
	}

	items, err := rt.analytics.Breakdown(r.Context(), filter, domain.BreakdownDimension(in.GroupBy))
	if err != nil {
		respondError(w, r, err, msgInternal)
		return
	}
	if items == nil {
		items = []domain.BreakdownItem{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"breakdown": items})
}

func (rt *Router) listReviews(w http.ResponseWriter, r *http.Request) {
	in, fieldErrs := parseListQuery(r.URL.Query())
	if len(fieldErrs) == 0 {
		fieldErrs = validateStruct(in, "")
	}
	filter, ok := rt.filterFromQuery(w, r, fieldErrs)
	if !ok {
		return
	}

	page, err := rt.analytics.ListReviews(r.Context(), filter, toPageRequest(in))
	if err != nil {
		respondError(w, r, err, msgInternal)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (rt *Router) getReview(w http.ResponseWriter, r *http.Request) {
	id, fieldErr := parseReviewID(chi.URLParam(r, "id"))
	if fieldErr != nil {
		writeError(w, r, http.StatusBadRequest, "Invalid review ID", []domain.FieldError{*fieldErr})
		return
	}
	review, err := rt.analytics.GetReview(r.Context(), id)
	if err != nil {
		respondError(w, r, err, msgInternal)
		return
	}
	writeJSON(w, http.StatusOK, review)
}

func (rt *Router) summarizeReview(w http.ResponseWriter, r *http.Request) {
	id, fieldErr := parseReviewID(chi.URLParam(r, "id"))
	if fieldErr != nil {
		writeError(w, r, http.StatusBadRequest, "Invalid review ID", []domain.FieldError{*fieldErr})
		return
	}
	var body reviewSummaryBody
	if !decodeJSONBody(w, r, &body, true) {
		return
	}
	if fieldErrs := validateStruct(body, ""); len(fieldErrs) > 0 {
		writeError(w, r, http.StatusBadRequest, msgInvalidBody, fieldErrs)
		return
	}

	summary, err := rt.assistant.Summarize(r.Context(), id, body.ReviewText)
	if err != nil {
		respondError(w, r, err, "Failed to generate summary")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"summary": summary})
}

func (rt *Router) answerReviewQuestion(w http.ResponseWriter, r *http.Request) {
	id, fieldErr := parseReviewID(chi.URLParam(r, "id"))
	if fieldErr != nil {
		writeError(w, r, http.StatusBadRequest, "Invalid review ID", []domain.FieldError{*fieldErr})
		return
	}
	var body reviewQuestionBody
	if !decodeJSONBody(w, r, &body, false) {
		return
	}
	if fieldErrs := validateStruct(body, ""); len(fieldErrs) > 0 {
		writeError(w, r, http.StatusBadRequest, msgInvalidBody, fieldErrs)
		return
	}

	answer, err := rt.assistant.Answer(r.Context(), id, body.ReviewText, body.Question)
	if err != nil {
		respondError(w, r, err, "Failed to answer question")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"answer": answer})
}

func (rt *Router) postChat(w http.ResponseWriter, r *http.Request) {
	var body chatRequestBody
	if !decodeJSONBody(w, r, &body, false) {
		return
	}

	fieldErrs := validateStruct(body, "")
	var filter domain.ReviewFilter
	if body.Filters != nil {
		var filterErrs []domain.FieldError
		filter, filterErrs = buildFilter(*body.Filters, "filters.")
		fieldErrs = append(fieldErrs, filterErrs...)
	}
	if len(fieldErrs) > 0 {
		writeError(w, r, http.StatusBadRequest, msgInvalidBody, fieldErrs)
		return
	}

	history := make([]domain.ChatMessage, 0, len(body.History))
	for _, turn := range body.History {
		history = append(history, domain.ChatMessage{Role: turn.Role, Content: turn.Content})
	}

	resp, err := rt.chat.Chat(r.Context(), domain.ChatRequest{
		Message: body.Message,
		Filter:  filter,
		History: history,
	})
	if err != nil {
		respondError(w, r, err, msgInternal)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// filterFromQuery parses the shared filter query parameters. Earlier field
// errors are merged so one response lists every problem.
func (rt *Router) filterFromQuery(w http.ResponseWriter, r *http.Request, fieldErrs []domain.FieldError) (domain.ReviewFilter, bool) {
	in, parseErrs := parseFilterQuery(r.URL.Query())
	fieldErrs = append(fieldErrs, parseErrs...)

	var filter domain.ReviewFilter
	if len(parseErrs) == 0 {
		var filterErrs []domain.FieldError
		filter, filterErrs = buildFilter(in, "")
		fieldErrs = append(fieldErrs, filterErrs...)
	}
	if len(fieldErrs) > 0 {
		writeError(w, r, http.StatusBadRequest, msgInvalidQuery, fieldErrs)
		return domain.ReviewFilter{}, false
	}
	return filter, true
}

// decodeJSONBody writes the error response itself and reports whether the
// handler may continue. An empty body is accepted when optional is set.
func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst any, optional bool) bool {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil {
		return true
	}

	var maxErr *http.MaxBytesError
	var typeErr *json.UnmarshalTypeError
	switch {
	case optional && errors.Is(err, io.EOF):
		return true
	case errors.As(err, &maxErr):
		writeError(w, r, http.StatusRequestEntityTooLarge, "Request body too large", nil)
	case errors.As(err, &typeErr):
		writeError(w, r, http.StatusBadRequest, msgInvalidBody, []domain.FieldError{{
			Field:   typeErr.Field,
			Message: "must be of type " + typeErr.Type.String(),
		}})
	default:
		writeError(w, r, http.StatusBadRequest, "Invalid JSON in request body", nil)
	}
	return false
}

func queryOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
