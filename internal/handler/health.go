package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// pingTimeout bounds the store check so a hung database can't hang the
// health endpoint too.
const pingTimeout = 2 * time.Second

// HealthHandler reports liveness and store reachability.
//
// The keep-alive pinger calls this endpoint, so it must stay cheap and
// unauthenticated.
type HealthHandler struct {
	store   Pinger
	started time.Time
	logger  *slog.Logger
}

// NewHealthHandler creates a HealthHandler. started is the process start
// time used for the uptime figure.
func NewHealthHandler(store Pinger, started time.Time, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{store: store, started: started, logger: logger}
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    string  `json:"status"`
	Timestamp string  `json:"timestamp"`
	Uptime    float64 `json:"uptime"` // seconds
	Message   string  `json:"message"`
	Database  string  `json:"database"`
}

// HandleHealth answers 200 when the store responds and 503 when it does not.
//
// HTTP: GET /health
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	resp := HealthResponse{
		Status:    "OK",
		Timestamp: now.UTC().Format(time.RFC3339Nano),
		Uptime:    now.Sub(h.started).Seconds(),
		Message:   "Server is running and healthy",
		Database:  "ok",
	}

	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		h.logger.Warn("health check: store unreachable", slog.String("error", err.Error()))
		resp.Status = "DEGRADED"
		resp.Message = "database unreachable"
		resp.Database = "unreachable"
		writeJSON(w, http.StatusServiceUnavailable, resp)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
