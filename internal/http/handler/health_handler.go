package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/straye-as/crm-core/internal/cache"
	"go.uber.org/zap"
)

const readinessTimeout = 2 * time.Second

// HealthCheck probes one dependency
type HealthCheck func(ctx context.Context) error

type HealthHandler struct {
	checks map[string]HealthCheck
	logger *zap.Logger
}

// NewHealthHandler builds the readiness probe from the database ping and the cache ping
func NewHealthHandler(dbCheck HealthCheck, c cache.Cache, logger *zap.Logger) *HealthHandler {
	checks := map[string]HealthCheck{"database": dbCheck}
	if c != nil {
		checks["cache"] = c.Ping
	}
	return &HealthHandler{checks: checks, logger: logger}
}

// Live is the liveness probe
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// Ready reports every dependency and answers 503 when any of them is down
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	checks := make(map[string]interface{}, len(h.checks))
	allHealthy := true
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			h.logger.Error("health check failed", zap.String("dependency", name), zap.Error(err))
			checks[name] = map[string]interface{}{
				"status": "unhealthy",
				"error":  err.Error(),
			}
			allHealthy = false
			continue
		}
		checks[name] = map[string]interface{}{"status": "healthy"}
	}

	status, code := "healthy", http.StatusOK
	if !allHealthy {
		status, code = "unhealthy", http.StatusServiceUnavailable
	}
	respondJSON(w, code, map[string]interface{}{
		"status": status,
		"checks": checks,
	})
}
