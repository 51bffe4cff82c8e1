package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JesseAnalyzes/Pegasus-hack-ai-thon/internal/core/domain"
)

type HTTPServerMetrics struct {
	registry *prometheus.Registry
	service  string

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	chatRequestsTotal  *prometheus.CounterVec
	chatNoContextTotal *prometheus.CounterVec
	chatRetrieved      *prometheus.HistogramVec
	chatDuration       *prometheus.HistogramVec
	cacheLookupsTotal  *prometheus.CounterVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nimbus",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "nimbus",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "nimbus",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	chatRequestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nimbus",
			Subsystem: "chat",
			Name:      "requests_total",
			Help:      "Total answered chat requests by retrieval mode.",
		},
		[]string{"service", "mode"},
	)
	chatNoContextTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nimbus",
			Subsystem: "chat",
			Name:      "no_context_total",
			Help:      "Total chat requests answered without retrieved reviews.",
		},
		[]string{"service"},
	)
	chatRetrieved := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "nimbus",
			Subsystem: "chat",
			Name:      "retrieved_reviews",
			Help:      "Distribution of reviews placed in the chat context.",
			Buckets:   []float64{0, 1, 2, 5, 10, 15, 20},
		},
		[]string{"service", "mode"},
	)
	chatDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "nimbus",
			Subsystem: "chat",
			Name:      "duration_seconds",
			Help:      "Chat execution duration in seconds.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 80},
		},
		[]string{"service"},
	)
	cacheLookupsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nimbus",
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Response cache lookups by view and result.",
		},
		[]string{"service", "view", "result"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		chatRequestsTotal,
		chatNoContextTotal,
		chatRetrieved,
		chatDuration,
		cacheLookupsTotal,
	)

	return &HTTPServerMetrics{
		registry:           registry,
		service:            service,
		requestTotal:       requestTotal,
		requestDuration:    requestDuration,
		requestInFlight:    requestInFlight,
		chatRequestsTotal:  chatRequestsTotal,
		chatNoContextTotal: chatNoContextTotal,
		chatRetrieved:      chatRetrieved,
		chatDuration:       chatDuration,
		cacheLookupsTotal:  cacheLookupsTotal,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records request metrics labelled by the matched chi route
// pattern, so path parameters do not explode label cardinality.
func (m *HTTPServerMetrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		path := routePattern(r)
		m.requestTotal.WithLabelValues(
			m.service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(m.service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

func routePattern(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return "unmatched"
	}
	if pattern := rctx.RoutePattern(); pattern != "" {
		return pattern
	}
	return "unmatched"
}

func (m *HTTPServerMetrics) ObserveChat(mode domain.RetrievalMode, retrieved int, duration time.Duration) {
	label := string(mode)
	if label == "" {
		label = "unknown"
	}
	m.chatRequestsTotal.WithLabelValues(m.service, label).Inc()
	m.chatRetrieved.WithLabelValues(m.service, label).Observe(float64(retrieved))
	m.chatDuration.WithLabelValues(m.service).Observe(duration.Seconds())
	if retrieved == 0 {
		m.chatNoContextTotal.WithLabelValues(m.service).Inc()
	}
}

func (m *HTTPServerMetrics) ObserveCache(view string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookupsTotal.WithLabelValues(m.service, view, result).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
