package middleware

import (
	"encoding/json"
	"log/slog"
	"net"
	"net/http"

	"github.com/sakif/second-brain/internal/metrics"
)

// Limiter decides whether a request for key may proceed.
type Limiter interface {
	Allow(key string) bool
}

// RateLimit rejects requests beyond the limiter's budget with 429.
//
// The key is the client IP taken from r.RemoteAddr. chi's RealIP middleware
// runs earlier in the chain and rewrites RemoteAddr from X-Forwarded-For /
// X-Real-IP when the server sits behind a proxy. m may be nil.
func RateLimit(limiter Limiter, m *metrics.Metrics, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientIP(r)

			if !limiter.Allow(key) {
				logger.Warn("rate limit exceeded",
					slog.String("ip", key),
					slog.String("path", r.URL.Path),
				)
				if m != nil {
					m.RateLimited.WithLabelValues(routePattern(r)).Inc()
				}

				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", "1")
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(map[string]string{
					"error":   "rate_limited",
					"message": "too many requests, please try again later",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP strips the port from RemoteAddr. RealIP may already have
// replaced it with a bare address, in which case it is returned as is.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
