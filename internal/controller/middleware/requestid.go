package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"shieldhive/internal/logger"
)

// RequestID tags every request with a correlation id and logs the access.
func RequestID(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := r.Header.Get("X-Request-ID")
			if reqID == "" {
				reqID = uuid.NewString()
			}

			ctx := logger.WithRequestID(r.Context(), reqID)
			w.Header().Set("X-Request-ID", reqID)

			start := time.Now()
			next.ServeHTTP(w, r.WithContext(ctx))

			logger.FromContext(ctx, base).Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"duration_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}
