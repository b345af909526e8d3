package api

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/felixge/httpsnoop"
	"github.com/go-chi/chi/v5/middleware"
)

// requestLogger logs one line per request with its status and duration.
func requestLogger(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			m := httpsnoop.CaptureMetrics(next, w, r)
			logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", m.Code,
				"bytes", m.Written,
				"duration", m.Duration,
				"request_id", middleware.GetReqID(r.Context()))
		})
	}
}
