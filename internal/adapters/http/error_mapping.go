package httpadapter

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/JesseAnalyzes/Pegasus-hack-ai-thon/internal/core/domain"
	"github.com/JesseAnalyzes/Pegasus-hack-ai-thon/internal/observability/logging"
)

type errorResponse struct {
	Error     string              `json:"error"`
	Details   []domain.FieldError `json:"details,omitempty"`
	RequestID string              `json:"requestId,omitempty"`
}

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrReviewNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// respondError maps a use case error to its status. Internal and upstream
// failures are logged in full and answered with failureMessage and 500.
func respondError(w http.ResponseWriter, r *http.Request, err error, failureMessage string) {
	status := mapErrorToHTTPStatus(err)
	switch status {
	case http.StatusBadRequest:
		var verr *domain.ValidationError
		var details []domain.FieldError
		if errors.As(err, &verr) {
			details = verr.Fields
		}
		writeError(w, r, status, "Invalid request", details)
	case http.StatusNotFound:
		writeError(w, r, status, "Review not found", nil)
	default:
		if domain.IsKind(err, domain.ErrTemporary) {
			slog.WarnContext(r.Context(), "upstream_unavailable", "path", r.URL.Path, "error", err)
			writeError(w, r, status, failureMessage, nil)
			return
		}
		slog.ErrorContext(r.Context(), "request_failed", "path", r.URL.Path, "error", err)
		writeError(w, r, status, failureMessage, nil)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string, details []domain.FieldError) {
	writeJSON(w, status, errorResponse{
		Error:     message,
		Details:   details,
		RequestID: logging.RequestID(r.Context()),
	})
}
