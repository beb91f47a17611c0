package http

import (
	"context"
	"net/http"
	"time"

	"github.com/redmonkez12/taskdesk/internal/httputil"
	"github.com/redmonkez12/taskdesk/internal/logging"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthResponse is the body of GET /api/health.
type HealthResponse struct {
	Status    string  `json:"status"`
	Timestamp string  `json:"timestamp"`
	Uptime    float64 `json:"uptime"` // seconds
	Env       string  `json:"env"`
	Database  string  `json:"database"`
}

type healthHandler struct {
	db        Pinger
	env       string
	startedAt time.Time
}

// ServeHTTP reports liveness and store reachability
// @Summary      Health check
// @Description  Reports uptime and whether the database answers a ping.
// @Tags         health
// @Produce      json
// @Success      200 {object} HealthResponse
// @Failure      503 {object} HealthResponse "Database unreachable"
// @Router       /health [get]
func (h *healthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Uptime:    time.Since(h.startedAt).Seconds(),
		Env:       h.env,
		Database:  "connected",
	}
	status := http.StatusOK

	if err := h.db.Ping(ctx); err != nil {
		logging.GetLoggerFromContext(r.Context()).Error("health check: database ping failed", "error", err.Error())
		resp.Status = "degraded"
		resp.Database = "disconnected"
		status = http.StatusServiceUnavailable
	}

	httputil.RespondJSON(w, resp, status)
}
