package handler

import (
	"log/slog"
	"net/http"

	"github.com/yourorg/staffdesk/internal/infrastructure/redis"
	"github.com/yourorg/staffdesk/pkg/database"
)

// HealthHandler exposes liveness and readiness probes
type HealthHandler struct {
	pool   *database.ConnectionPool
	cache  *redis.Client
	logger *slog.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(pool *database.ConnectionPool, cache *redis.Client, logger *slog.Logger) *HealthHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &HealthHandler{pool: pool, cache: cache, logger: logger}
}

// Root handles GET / with a plain liveness string
func (h *HealthHandler) Root(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Employee management backend is running"))
}

// Live handles GET /healthz
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready handles GET /readyz, checking downstream dependencies
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{"database": "ok", "cache": "ok"}
	status := http.StatusOK

	if err := h.pool.Health(r.Context()); err != nil {
		h.logger.Error("database health check failed", "error", err)
		checks["database"] = "unavailable"
		status = http.StatusServiceUnavailable
	}

	if h.cache == nil {
		checks["cache"] = "disabled"
	} else if err := h.cache.Ping(r.Context()); err != nil {
		h.logger.Warn("cache health check failed", "error", err)
		checks["cache"] = "unavailable"
	}

	writeJSON(w, status, checks)
}
