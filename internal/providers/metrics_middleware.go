package providers

import (
	"net/http"
	"time"
)

// statusWriter records the status code written by the wrapped handler so
// the middleware can label the request counter after the handler returns.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// MetricsMiddleware instruments every request with a counter and a duration
// histogram. Only paths from the registered route table become endpoint
// labels; anything else is folded into "other" so arbitrary request URLs
// cannot blow up label cardinality.
func MetricsMiddleware(metrics MetricsProviderInterface, endpoints []string, next http.Handler) http.Handler {
	known := make(map[string]struct{}, len(endpoints))
	for _, e := range endpoints {
		known[e] = struct{}{}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		endpoint := r.URL.Path
		if _, ok := known[endpoint]; !ok {
			endpoint = "other"
		}
		metrics.IncRequestsTotal(endpoint, sw.status)
		metrics.ObserveRequestDuration(endpoint, time.Since(start))
	})
}
