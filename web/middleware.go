package web

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/metersplit/metersplit/adapters/metrics"
)

// NewLoggingMiddleware creates middleware that logs HTTP requests.
func NewLoggingMiddleware(logger zerolog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			// Skip logging for health checks and metrics
			if r.URL.Path == "/healthz" || r.URL.Path == "/metrics" {
				return
			}

			logger.Debug().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", time.Since(start)).
				Str("request_id", middleware.GetReqID(r.Context())).
				Msg("http request")
		})
	}
}

// NewMetricsMiddleware creates middleware that records request metrics.
func NewMetricsMiddleware(m *metrics.Collector) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Skip metrics for internal endpoints
			if r.URL.Path == "/healthz" || r.URL.Path == "/metrics" ||
				strings.HasPrefix(r.URL.Path, "/docs") {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			path := normalizePath(r.URL.Path)
			status := statusLabel(ww.Status())

			m.RequestsTotal.WithLabelValues(r.Method, path, status).Inc()
			m.RequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
		})
	}
}

// AuthMiddleware validates the admin API key on mutating endpoints.
// When no key hash is stored, auth is disabled and all requests pass.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		stored, err := h.settings.Get(r.Context(), adminKeyHashSetting)
		if err != nil || stored == "" {
			next.ServeHTTP(w, r)
			return
		}

		key := r.Header.Get("X-API-Key")
		if key == "" {
			if auth := r.Header.Get("Authorization"); auth != "" {
				key = strings.TrimPrefix(auth, "Bearer ")
			}
		}

		if key == "" || !h.hasher.Compare([]byte(stored), key) {
			writeError(w, http.StatusUnauthorized, "unauthorized", "Valid API key required")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// normalizePath collapses ID path segments so metric labels stay bounded.
func normalizePath(path string) string {
	parts := strings.Split(path, "/")
	for i, p := range parts {
		if i < 4 {
			continue
		}
		// Everything past /api/v1/<resource> is treated as an identifier
		// unless it is a known static leaf.
		switch p {
		case "", "readings", "replay", "preview", "main":
		default:
			parts[i] = "{id}"
		}
	}
	return strings.Join(parts, "/")
}

func statusLabel(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	default:
		return "other"
	}
}
