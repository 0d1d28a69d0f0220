package http

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
)

// statusRecorder remembers the first status code written.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(status int) {
	if rec.status == 0 {
		rec.status = status
		rec.ResponseWriter.WriteHeader(status)
	}
}

func (rec *statusRecorder) Write(b []byte) (int, error) {
	if rec.status == 0 {
		rec.WriteHeader(http.StatusOK)
	}
	return rec.ResponseWriter.Write(b)
}

// routeLabel is the matched route template, so run IDs do not explode the
// metric cardinality.
func routeLabel(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tmpl, err := route.GetPathTemplate(); err == nil {
			return tmpl
		}
	}
	return "unmatched"
}

// LoggingMiddleware logs each request and records its duration and status.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}

		next.ServeHTTP(rec, r)

		if rec.status == 0 {
			rec.status = http.StatusOK
		}
		duration := time.Since(start)
		status := strconv.Itoa(rec.status)
		route := routeLabel(r)

		log.Printf("[HTTP] %s %s -> %d in %v", r.Method, r.RequestURI, rec.status, duration)

		HTTPRequestDuration.WithLabelValues(r.Method, route, status).Observe(duration.Seconds())
		HTTPRequestsTotal.WithLabelValues(r.Method, route, status).Inc()
	})
}
