package httpadapter

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/JesseAnalyzes/Pegasus-hack-ai-thon/internal/config"
	"github.com/JesseAnalyzes/Pegasus-hack-ai-thon/internal/core/ports"
	"github.com/JesseAnalyzes/Pegasus-hack-ai-thon/internal/observability/metrics"
)

const defaultMaxBodyBytes int64 = 2 << 20

type Router struct {
	cfg       config.Config
	analytics ports.ReviewAnalytics
	chat      ports.ReviewChat
	assistant ports.ReviewAssistant
	metrics   *metrics.HTTPServerMetrics
}

// NewRouter builds the HTTP surface. httpMetrics may be nil, in which case
// /metrics is not exposed.
func NewRouter(
	cfg config.Config,
	analytics ports.ReviewAnalytics,
	chat ports.ReviewChat,
	assistant ports.ReviewAssistant,
	httpMetrics *metrics.HTTPServerMetrics,
) *Router {
	return &Router{
		cfg:       cfg,
		analytics: analytics,
		chat:      chat,
		assistant: assistant,
		metrics:   httpMetrics,
	}
}

func (rt *Router) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(requestIDMiddleware)
	r.Use(accessLogMiddleware)
	if rt.metrics != nil {
		r.Use(rt.metrics.Middleware)
	}
	r.Use(securityHeadersMiddleware)
	if origins := rt.cfg.CORSOrigins(); len(origins) > 0 {
		r.Use(cors.New(cors.Options{
			AllowedOrigins: origins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Content-Type", requestIDHeader},
			ExposedHeaders: []string{requestIDHeader},
			MaxAge:         300,
		}).Handler)
	}
	if rt.cfg.APIRateLimitRPS > 0 {
		r.Use(rateLimitMiddleware(rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst))
	}
	if rt.cfg.APIMaxInFlight > 0 {
		wait := time.Duration(rt.cfg.APIBackpressureWaitMS) * time.Millisecond
		r.Use(func(next http.Handler) http.Handler {
			return backpressureMiddleware(next, rt.cfg.APIMaxInFlight, wait)
		})
	}
	maxBody := rt.cfg.APIMaxBodyBytes
	if maxBody <= 0 {
		maxBody = defaultMaxBodyBytes
	}
	r.Use(bodyLimitMiddleware(maxBody))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "Not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusMethodNotAllowed, "Method not allowed", nil)
	})

	r.Get("/healthz", rt.healthz)
	if rt.metrics != nil {
		r.Method(http.MethodGet, "/metrics", rt.metrics.Handler())
	}

	r.Get("/api", rt.apiInfo)
	r.Get("/api/summary", rt.getSummary)
	r.Get("/api/trends", rt.getTrends)
	r.Get("/api/breakdowns", rt.getBreakdowns)
	r.Get("/api/reviews", rt.listReviews)
	r.Get("/api/reviews/{id}", rt.getReview)
	r.Post("/api/reviews/{id}/summary", rt.summarizeReview)
	r.Post("/api/reviews/{id}/question", rt.answerReviewQuestion)
	r.Post("/api/chat", rt.postChat)

	return r
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) apiInfo(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "Nimbus API",
		"version": "1.0.0",
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
