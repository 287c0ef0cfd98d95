package httpserver

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/supakit/pkg/logger"
)

// Check checks one dependency for readiness.
type Check func(ctx context.Context) error

// HealthHandler answers liveness checks with "ALIVE" when no checks are given
// and readiness checks with "READY" or a 503 "NOT_READY" otherwise.
func HealthHandler(log *slog.Logger, checks ...Check) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		if len(checks) == 0 {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ALIVE"))
			return
		}

		for _, check := range checks {
			if err := check(r.Context()); err != nil {
				log.ErrorContext(r.Context(), "readiness check failed", logger.Error(err))
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte("NOT_READY"))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("READY"))
	}
}
