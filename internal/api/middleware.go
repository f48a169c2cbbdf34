package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

// metricsMiddleware records one HTTP metric per request, labelled with the
// route template rather than the raw path.
func (s *Server) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		srw := &statusResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(srw, r)

		s.metrics.RecordHTTPRequest(routeName(r), r.Method, srw.statusCode, time.Since(start))
	})
}

// statusResponseWriter captures the status code.
type statusResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusResponseWriter) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func routeName(r *http.Request) string {
	route := mux.CurrentRoute(r)
	if route == nil {
		return r.URL.Path
	}
	tmpl, err := route.GetPathTemplate()
	if err != nil {
		return r.URL.Path
	}
	return tmpl
}
