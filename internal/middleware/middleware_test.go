package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/second-brain/internal/metrics"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// =========================================================================
// LOGGER
// =========================================================================

func TestLogger_RecordsStatusAndRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	h := chimw.RequestID(Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("short and stout"))
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/pot", nil))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "request completed", line["msg"])
	assert.Equal(t, "WARN", line["level"])
	assert.Equal(t, "/pot", line["path"])
	assert.EqualValues(t, http.StatusTeapot, line["status"])
	assert.EqualValues(t, len("short and stout"), line["bytes"])
	assert.NotEmpty(t, line["requestID"])
}

func TestLogger_ImplicitOK(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	h := Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "INFO", line["level"])
	assert.EqualValues(t, http.StatusOK, line["status"])
}

func TestResponseWriter_FirstStatusWins(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := wrap(rec)
	rw.WriteHeader(http.StatusCreated)
	rw.WriteHeader(http.StatusInternalServerError)

	assert.Equal(t, http.StatusCreated, rw.statusCode)
	assert.Same(t, rw, wrap(rw), "wrapping twice should reuse the writer")
}

// =========================================================================
// METRICS
// =========================================================================

func TestMetrics_UsesRoutePattern(t *testing.T) {
	m := metrics.New()

	r := chi.NewRouter()
	r.Use(Metrics(m))
	r.Get("/brain/{shareHash}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	for _, hash := range []string{"aaaaaaaaaa", "bbbbbbbbbb"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/brain/"+hash, nil))
	}

	got := testutil.ToFloat64(m.HTTPRequests.WithLabelValues(http.MethodGet, "/brain/{shareHash}", "200"))
	assert.Equal(t, 2.0, got)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.HTTPInFlight))
}

func TestMetrics_UnmatchedRoute(t *testing.T) {
	m := metrics.New()

	r := chi.NewRouter()
	r.Use(Metrics(m))
	r.Get("/known", func(w http.ResponseWriter, r *http.Request) {})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/unknown/path", nil))

	got := testutil.ToFloat64(m.HTTPRequests.WithLabelValues(http.MethodGet, unmatchedRoute, "404"))
	assert.Equal(t, 1.0, got)
}

// =========================================================================
// RATE LIMIT
// =========================================================================

// budget allows the first n calls per key.
type budget struct {
	n    int
	seen map[string]int
}

func (b *budget) Allow(key string) bool {
	if b.seen == nil {
		b.seen = make(map[string]int)
	}
	b.seen[key]++
	return b.seen[key] <= b.n
}

func TestRateLimit_RejectsOverBudget(t *testing.T) {
	m := metrics.New()
	limiter := &budget{n: 1}

	r := chi.NewRouter()
	r.With(RateLimit(limiter, m, discardLogger())).Post("/signin", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	send := func(remote string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/signin", nil)
		req.RemoteAddr = remote
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, send("10.0.0.1:5000").Code)

	rec := send("10.0.0.1:5001")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))

	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "rate_limited", body["error"])

	// A different client has its own budget.
	assert.Equal(t, http.StatusOK, send("10.0.0.2:5000").Code)

	// Ports are ignored: both requests from 10.0.0.1 counted against one key.
	assert.Equal(t, 2, limiter.seen["10.0.0.1"])
}

func TestRateLimit_NilMetrics(t *testing.T) {
	h := RateLimit(&budget{n: 0}, nil, discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		remote string
		want   string
	}{
		{"192.0.2.1:1234", "192.0.2.1"},
		{"[2001:db8::1]:443", "2001:db8::1"},
		{"192.0.2.7", "192.0.2.7"},
	}

	for _, tt := range tests {
		t.Run(tt.remote, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			assert.Equal(t, tt.want, clientIP(req))
		})
	}
}

func TestRateLimit_MessageMentionsRetry(t *testing.T) {
	h := RateLimit(&budget{n: 0}, nil, discardLogger())(http.NotFoundHandler())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.True(t, strings.Contains(rec.Body.String(), "try again"))
}
