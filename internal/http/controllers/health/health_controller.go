// Package health contiene el controller para health checks.
package health

import (
	"net/http"

	"github.com/dropDatabas3/multilogin/internal/http/helpers"
	svc "github.com/dropDatabas3/multilogin/internal/http/services/health"
	"github.com/dropDatabas3/multilogin/internal/observability/logger"
)

// HealthController maneja /healthz y /readyz.
type HealthController struct {
	service svc.HealthService
}

// NewHealthController crea el controller.
func NewHealthController(service svc.HealthService) *HealthController {
	return &HealthController{service: service}
}

// Healthz es el liveness probe: el proceso responde.
func (c *HealthController) Healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

// Readyz maneja GET /readyz.
func (c *HealthController) Readyz(w http.ResponseWriter, r *http.Request) {
	resp := c.service.Check(r.Context())

	status := http.StatusOK
	if resp.Status == "unavailable" {
		status = http.StatusServiceUnavailable
	}
	if resp.Version != "" {
		w.Header().Set("X-Service-Version", resp.Version)
	}
	logger.From(r.Context()).Debug("health check completed",
		logger.String("status", resp.Status),
		logger.Count(len(resp.Components)),
	)
	helpers.WriteJSON(w, status, resp)
}
