package slogx

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/meshauth/pkg/idx"
)

// statusRecorder captures the response status for access logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// HTTPMiddleware attaches a request-scoped logger (with a per-request id)
// to the context and emits one access log line per request. Bearer tokens
// and other header contents are deliberately never logged.
func HTTPMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			start := time.Now()

			l := logger.With(
				slog.String("request_id", idx.New().String()),
				slog.String("method", req.Method),
				slog.String("path", req.URL.Path),
			)
			ctx := WithContext(req.Context(), l)

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, req.WithContext(ctx))

			l.Info("request",
				slog.Int("status", rec.status),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}
