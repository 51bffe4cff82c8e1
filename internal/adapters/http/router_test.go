package httpadapter

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JesseAnalyzes/Pegasus-hack-ai-thon/internal/config"
	"github.com/JesseAnalyzes/Pegasus-hack-ai-thon/internal/core/domain"
	"github.com/JesseAnalyzes/Pegasus-hack-ai-thon/internal/observability/metrics"
)

func doRequest(t *testing.T, handler http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch v := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(v))
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	return res
}

func decodeError(t *testing.T, res *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var out errorResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	return out
}

func hasDetail(details []domain.FieldError, field string) bool {
	for _, d := range details {
		if d.Field == field {
			return true
		}
	}
	return false
}

func TestAPIInfo(t *testing.T) {
	handler, _ := newTestHandler(config.Config{})
	res := doRequest(t, handler, http.MethodGet, "/api", nil)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	var body map[string]string
	_ = json.NewDecoder(res.Body).Decode(&body)
	if body["status"] != "ok" || body["service"] != "Nimbus API" || body["version"] != "1.0.0" {
		t.Fatalf("unexpected body %v", body)
	}
	if res.Header().Get("X-Content-Type-Options") != "nosniff" || res.Header().Get("X-Frame-Options") != "DENY" {
		t.Fatalf("expected security headers, got %v", res.Header())
	}
}

func TestRequestIDIsEchoedAndGenerated(t *testing.T) {
	handler, _ := newTestHandler(config.Config{})

	req := httptest.NewRequest(http.MethodGet, "/api/reviews/999", nil)
	req.Header.Set(requestIDHeader, "req-123")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Header().Get(requestIDHeader) != "req-123" {
		t.Fatalf("expected request id to be echoed")
	}
	if body := decodeError(t, res); body.RequestID != "req-123" {
		t.Fatalf("expected request id in error body, got %+v", body)
	}

	res = doRequest(t, handler, http.MethodGet, "/healthz", nil)
	if res.Header().Get(requestIDHeader) == "" {
		t.Fatalf("expected generated request id")
	}
}

func TestSummaryParsesFilters(t *testing.T) {
	handler, deps := newTestHandler(config.Config{})
	res := doRequest(t, handler, http.MethodGet,
		"/api/summary?minRating=4&overallSentiment=positive&platforms=Google,%20Yelp,,&dateFrom=2024-01-01&search=%20outage%20", nil)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}

	f := deps.analytics.lastFilter
	if f.MinRating == nil || *f.MinRating != 4 {
		t.Fatalf("expected minRating 4, got %v", f.MinRating)
	}
	if len(f.OverallSentiment) != 1 || f.OverallSentiment[0] != "positive" {
		t.Fatalf("unexpected sentiment filter %v", f.OverallSentiment)
	}
	if len(f.Platforms) != 2 || f.Platforms[1] != "Yelp" {
		t.Fatalf("expected trimmed platform list, got %q", f.Platforms)
	}
	if f.DateFrom == nil || f.DateFrom.Format("2006-01-02") != "2024-01-01" {
		t.Fatalf("unexpected dateFrom %v", f.DateFrom)
	}
	if f.Search != "outage" || f.DateTo != nil || f.Regions != nil {
		t.Fatalf("unexpected filter %+v", f)
	}
}

func TestSummaryRejectsInvalidFilters(t *testing.T) {
	handler, _ := newTestHandler(config.Config{})
	cases := []struct {
		query string
		field string
	}{
		{"areaTypes=urban,downtown", "areaTypes[1]"},
		{"minRating=6", "minRating"},
		{"minRating=abc", "minRating"},
		{"minRating=4&maxRating=2", "minRating"},
		{"minSentimentScore=-1.5", "minSentimentScore"},
		{"minSentimentScore=NaN", "minSentimentScore"},
		{"dateFrom=01/02/2024", "dateFrom"},
		{"dateFrom=2024-03-01&dateTo=2024-02-01", "dateFrom"},
		{"churnRisk=extreme", "churnRisk[0]"},
		{"search=" + strings.Repeat("a", 501), "search"},
	}
	for _, tc := range cases {
		res := doRequest(t, handler, http.MethodGet, "/api/summary?"+tc.query, nil)
		if res.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", tc.query, res.Code)
		}
		body := decodeError(t, res)
		if body.Error != "Invalid query parameters" || !hasDetail(body.Details, tc.field) {
			t.Fatalf("%s: expected detail for %s, got %+v", tc.query, tc.field, body)
		}
	}
}

func TestTrendsAndBreakdownDefaults(t *testing.T) {
	handler, deps := newTestHandler(config.Config{})

	res := doRequest(t, handler, http.MethodGet, "/api/trends", nil)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if deps.analytics.lastGran != domain.GranularityDay || deps.analytics.lastMetric != domain.MetricCount {
		t.Fatalf("unexpected defaults %s/%s", deps.analytics.lastGran, deps.analytics.lastMetric)
	}
	if !strings.Contains(res.Body.String(), `"trends":[]`) {
		t.Fatalf("expected empty trends array, got %s", res.Body.String())
	}

	res = doRequest(t, handler, http.MethodGet, "/api/breakdowns?groupBy=area_type", nil)
	if res.Code != http.StatusOK || deps.analytics.lastDimension != domain.DimensionAreaType {
		t.Fatalf("unexpected breakdown call: %d %s", res.Code, deps.analytics.lastDimension)
	}

	res = doRequest(t, handler, http.MethodGet, "/api/trends?granularity=year", nil)
	if res.Code != http.StatusBadRequest || !hasDetail(decodeError(t, res).Details, "granularity") {
		t.Fatalf("expected granularity validation error, got %d", res.Code)
	}
}

func TestListReviewsPagination(t *testing.T) {
	handler, _ := newTestHandler(config.Config{})
	res := doRequest(t, handler, http.MethodGet, "/api/reviews?page=2&pageSize=5", nil)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	var page domain.ReviewPage
	if err := json.NewDecoder(res.Body).Decode(&page); err != nil {
		t.Fatalf("decode page: %v", err)
	}
	if len(page.Items) != 5 || page.TotalItems != 12 || page.TotalPages != 3 || page.Items[0].ID != 6 {
		t.Fatalf("unexpected page: items=%d total=%d pages=%d", len(page.Items), page.TotalItems, page.TotalPages)
	}
}

func TestListReviewsHugePageIsEmpty(t *testing.T) {
	handler, deps := newTestHandler(config.Config{})
	res := doRequest(t, handler, http.MethodGet, "/api/reviews?page=100000000000000000&pageSize=100", nil)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
	var page domain.ReviewPage
	if err := json.NewDecoder(res.Body).Decode(&page); err != nil {
		t.Fatalf("decode page: %v", err)
	}
	if len(page.Items) != 0 || page.TotalItems != 12 || page.Page != 100_000_000_000_000_000 {
		t.Fatalf("unexpected page: items=%d total=%d page=%d", len(page.Items), page.TotalItems, page.Page)
	}
	if deps.analytics.lastPage.Page != 100_000_000_000_000_000 {
		t.Fatalf("page not forwarded: %+v", deps.analytics.lastPage)
	}
}

func TestListReviewsValidation(t *testing.T) {
	handler, deps := newTestHandler(config.Config{})
	for _, query := range []string{"pageSize=101", "page=0", "sortBy=title", "sortDirection=up", "page=x"} {
		res := doRequest(t, handler, http.MethodGet, "/api/reviews?"+query, nil)
		if res.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", query, res.Code)
		}
	}
	if deps.analytics.lastPage != (domain.PageRequest{}) {
		t.Fatalf("use case must not run for invalid input")
	}
}

func TestGetReview(t *testing.T) {
	handler, _ := newTestHandler(config.Config{})

	res := doRequest(t, handler, http.MethodGet, "/api/reviews/3", nil)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if strings.Contains(res.Body.String(), "gte_embedding") {
		t.Fatalf("raw embedding must not be serialized")
	}

	res = doRequest(t, handler, http.MethodGet, "/api/reviews/999", nil)
	if res.Code != http.StatusNotFound || decodeError(t, res).Error != "Review not found" {
		t.Fatalf("expected 404, got %d", res.Code)
	}

	res = doRequest(t, handler, http.MethodGet, "/api/reviews/abc", nil)
	if res.Code != http.StatusBadRequest || decodeError(t, res).Error != "Invalid review ID" {
		t.Fatalf("expected 400 for non-numeric id, got %d", res.Code)
	}
}

func TestChatRejectsOversizedMessageBeforeOrchestrator(t *testing.T) {
	handler, deps := newTestHandler(config.Config{})
	res := doRequest(t, handler, http.MethodPost, "/api/chat", map[string]any{"message": strings.Repeat("a", 6000)})
	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
	if !hasDetail(decodeError(t, res).Details, "message") {
		t.Fatalf("expected message detail")
	}
	if deps.chat.calls != 0 {
		t.Fatalf("orchestrator must not run")
	}
}

func TestChatValidatesHistoryAndFilters(t *testing.T) {
	handler, deps := newTestHandler(config.Config{})

	history := make([]map[string]string, 21)
	for i := range history {
		history[i] = map[string]string{"role": "user", "content": "hi"}
	}
	cases := []struct {
		body  any
		field string
	}{
		{map[string]any{"message": "q", "history": history}, "history"},
		{map[string]any{"message": "q", "history": []map[string]string{{"role": "system", "content": "x"}}}, "history[0].role"},
		{map[string]any{"message": "q", "filters": map[string]any{"minRating": 0}}, "filters.minRating"},
		{map[string]any{"message": "q", "filters": map[string]any{"npsIndicator": []string{"fan"}}}, "filters.npsIndicator[0]"},
		{map[string]any{"message": "q", "filters": map[string]any{"minRating": 4.5}}, "filters.minRating"},
		{map[string]any{"message": ""}, "message"},
	}
	for _, tc := range cases {
		res := doRequest(t, handler, http.MethodPost, "/api/chat", tc.body)
		if res.Code != http.StatusBadRequest {
			t.Fatalf("%v: expected 400, got %d", tc.body, res.Code)
		}
		if body := decodeError(t, res); !hasDetail(body.Details, tc.field) {
			t.Fatalf("%v: expected detail %s, got %+v", tc.body, tc.field, body)
		}
	}
	if deps.chat.calls != 0 {
		t.Fatalf("orchestrator must not run for invalid input")
	}
}

func TestChatForwardsRequest(t *testing.T) {
	handler, deps := newTestHandler(config.Config{})
	res := doRequest(t, handler, http.MethodPost, "/api/chat", map[string]any{
		"message": "why are people leaving?",
		"filters": map[string]any{"states": []string{"TX"}, "minRating": 1, "maxRating": 2},
		"history": []map[string]string{{"role": "user", "content": "hi"}, {"role": "assistant", "content": "hello"}},
	})
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
	got := deps.chat.last
	if got.Message != "why are people leaving?" || len(got.History) != 2 || got.History[1].Role != domain.RoleAssistant {
		t.Fatalf("unexpected chat request %+v", got)
	}
	if len(got.Filter.States) != 1 || got.Filter.MaxRating == nil || *got.Filter.MaxRating != 2 {
		t.Fatalf("unexpected chat filter %+v", got.Filter)
	}
	if !strings.Contains(res.Body.String(), `"retrievalMode":"none"`) {
		t.Fatalf("unexpected body %s", res.Body.String())
	}
}

func TestChatMalformedJSON(t *testing.T) {
	handler, _ := newTestHandler(config.Config{})
	res := doRequest(t, handler, http.MethodPost, "/api/chat", "{not json")
	if res.Code != http.StatusBadRequest || decodeError(t, res).Error != "Invalid JSON in request body" {
		t.Fatalf("expected malformed JSON 400, got %d", res.Code)
	}
}

func TestChatFailuresMapToStatus(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{errors.New("llm exploded: secret detail"), http.StatusInternalServerError},
		{domain.WrapError(domain.ErrTemporary, "anthropic", errors.New("circuit open")), http.StatusInternalServerError},
		{domain.NewValidationError(domain.FieldError{Field: "message", Message: "is required"}), http.StatusBadRequest},
	}
	for _, tc := range cases {
		handler, deps := newTestHandler(config.Config{})
		deps.chat.err = tc.err
		res := doRequest(t, handler, http.MethodPost, "/api/chat", map[string]any{"message": "q"})
		if res.Code != tc.status {
			t.Fatalf("%v: expected %d, got %d", tc.err, tc.status, res.Code)
		}
		if strings.Contains(res.Body.String(), "secret detail") {
			t.Fatalf("internal error details must not leak: %s", res.Body.String())
		}
	}
}

func TestReviewAssistEndpoints(t *testing.T) {
	handler, deps := newTestHandler(config.Config{})

	res := doRequest(t, handler, http.MethodPost, "/api/reviews/7/summary", nil)
	if res.Code != http.StatusOK || deps.assistant.lastID != 7 || deps.assistant.lastText != "" {
		t.Fatalf("expected summary with empty body to load by id, got %d", res.Code)
	}

	res = doRequest(t, handler, http.MethodPost, "/api/reviews/7/question", map[string]string{"reviewText": "slow", "question": "why?"})
	if res.Code != http.StatusOK || !strings.Contains(res.Body.String(), `"answer":"short answer"`) {
		t.Fatalf("unexpected answer response %d %s", res.Code, res.Body.String())
	}
	if deps.assistant.lastQuestion != "why?" || deps.assistant.lastText != "slow" {
		t.Fatalf("unexpected assistant args %+v", deps.assistant)
	}

	res = doRequest(t, handler, http.MethodPost, "/api/reviews/7/question", map[string]string{"reviewText": "slow"})
	if res.Code != http.StatusBadRequest || !hasDetail(decodeError(t, res).Details, "question") {
		t.Fatalf("expected missing question 400, got %d", res.Code)
	}

	deps.assistant.err = errors.New("upstream 500")
	res = doRequest(t, handler, http.MethodPost, "/api/reviews/7/summary", map[string]string{"reviewText": "x"})
	if res.Code != http.StatusInternalServerError || decodeError(t, res).Error != "Failed to generate summary" {
		t.Fatalf("expected summary failure message, got %d", res.Code)
	}
	res = doRequest(t, handler, http.MethodPost, "/api/reviews/7/question", map[string]string{"question": "q"})
	if res.Code != http.StatusInternalServerError || decodeError(t, res).Error != "Failed to answer question" {
		t.Fatalf("expected question failure message, got %d", res.Code)
	}
}

func TestUnknownRouteAndMethod(t *testing.T) {
	handler, _ := newTestHandler(config.Config{})

	res := doRequest(t, handler, http.MethodGet, "/api/unknown", nil)
	if res.Code != http.StatusNotFound || decodeError(t, res).Error != "Not found" {
		t.Fatalf("expected JSON 404, got %d", res.Code)
	}
	res = doRequest(t, handler, http.MethodDelete, "/api/chat", nil)
	if res.Code != http.StatusMethodNotAllowed || decodeError(t, res).Error != "Method not allowed" {
		t.Fatalf("expected JSON 405, got %d", res.Code)
	}
}

func TestMetricsEndpointExposedWhenConfigured(t *testing.T) {
	deps := &testDeps{analytics: &analyticsFake{}, chat: &chatFake{}, assistant: &assistantFake{}}
	handler := NewRouter(config.Config{}, deps.analytics, deps.chat, deps.assistant, metrics.NewHTTPServerMetrics("nimbus-api")).Handler()

	_ = doRequest(t, handler, http.MethodGet, "/api", nil)
	res := doRequest(t, handler, http.MethodGet, "/metrics", nil)
	if res.Code != http.StatusOK || !strings.Contains(res.Body.String(), "nimbus_http_requests_total") {
		t.Fatalf("expected metrics exposition, got %d", res.Code)
	}
}
