package middleware

import (
	"net/http"
	"time"

	"probook/pkg/metrics"
)

func HTTPMetrics() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wrapped, r)
			metrics.ObserveHTTPRequest(r.Method, wrapped.statusCode, time.Since(start))
		})
	}
}
