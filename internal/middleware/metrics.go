package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/second-brain/internal/metrics"
)

// unmatchedRoute labels requests no route matched, so arbitrary paths
// cannot blow up label cardinality.
const unmatchedRoute = "unmatched"

// Metrics records request count, latency and in-flight requests.
//
// The route label is chi's route pattern ("/api/v1/brain/{shareHash}"),
// not the raw path, so each share hash does not become its own series.
func Metrics(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			m.HTTPInFlight.Inc()
			defer m.HTTPInFlight.Dec()

			wrapped := wrap(w)
			next.ServeHTTP(wrapped, r)

			route := routePattern(r)
			m.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(wrapped.statusCode)).Inc()
			m.HTTPDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
		})
	}
}

// routePattern returns the matched chi pattern. It is only complete after
// the router has dispatched, i.e. after next.ServeHTTP returns.
func routePattern(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return unmatchedRoute
	}
	if pattern := rctx.RoutePattern(); pattern != "" {
		return pattern
	}
	return unmatchedRoute
}
