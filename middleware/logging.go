package middleware

import (
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
)

// LogMiddleware logs one line per request.
func LogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &responseWriter{w, http.StatusOK}

		next.ServeHTTP(ww, r)

		entry := log.WithFields(log.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   ww.statusCode,
			"duration": time.Since(start).String(),
			"remote":   clientIP(r),
		})
		switch {
		case ww.statusCode >= http.StatusInternalServerError:
			entry.Error("request failed")
		case ww.statusCode >= http.StatusBadRequest:
			entry.Warn("request rejected")
		default:
			entry.Info("request handled")
		}
	})
}
