package llmhttp

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/JesseAnalyzes/Pegasus-hack-ai-thon/internal/core/domain"
	"github.com/JesseAnalyzes/Pegasus-hack-ai-thon/internal/infrastructure/resilience"
)

// Classify decides how an upstream failure feeds the circuit breaker.
// Caller cancellation and 4xx responses other than 408/429 do not count.
func Classify(err error) resilience.ErrorClassification {
	if err == nil {
		return resilience.ErrorClassification{}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.ErrorClassification{}
	}
	if resilience.IsCircuitOpen(err) {
		return resilience.ErrorClassification{Temporary: true, RecordFailure: true}
	}

	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		if IsTemporaryStatus(statusErr.StatusCode) {
			return resilience.ErrorClassification{Temporary: true, RecordFailure: true}
		}
		return resilience.ErrorClassification{}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return resilience.ErrorClassification{Temporary: true, RecordFailure: true}
	}

	return resilience.ErrorClassification{RecordFailure: true}
}

// WrapTemporaryIfNeeded tags temporary upstream failures with domain.ErrTemporary.
func WrapTemporaryIfNeeded(operation string, err error) error {
	if err == nil {
		return nil
	}
	if domain.IsKind(err, domain.ErrTemporary) {
		return err
	}
	if Classify(err).Temporary {
		return domain.WrapError(domain.ErrTemporary, operation, err)
	}
	return err
}

func IsTemporaryStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusRequestTimeout, http.StatusTooManyRequests, http.StatusInternalServerError,
		http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout, 529:
		return true
	default:
		return false
	}
}
