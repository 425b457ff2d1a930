// Package health contiene el service para health checks.
package health

import (
	"context"
	"time"

	dto "github.com/dropDatabas3/multilogin/internal/http/dto/health"
	"github.com/dropDatabas3/multilogin/internal/observability/logger"
)

// HealthService define las operaciones de health check.
type HealthService interface {
	Check(ctx context.Context) dto.HealthResponse
}

// Check es un probe de un componente.
type Check func(ctx context.Context) error

// Deps contiene los probes. Storage es crítico; Cache y Limiter degradan.
type Deps struct {
	Storage Check
	Cache   Check
	Limiter Check
	Version string
	Timeout time.Duration
}

type healthService struct {
	deps Deps
}

// NewHealthService crea el service.
func NewHealthService(deps Deps) HealthService {
	if deps.Timeout <= 0 {
		deps.Timeout = 2 * time.Second
	}
	return &healthService{deps: deps}
}

func (s *healthService) Check(ctx context.Context) dto.HealthResponse {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Component("health"))

	resp := dto.HealthResponse{
		Status:     "ready",
		Components: map[string]dto.HealthStatus{},
		Version:    s.deps.Version,
		Timestamp:  time.Now().UTC(),
	}

	probe := func(name string, c Check, critical bool) {
		if c == nil {
			return
		}
		cctx, cancel := context.WithTimeout(ctx, s.deps.Timeout)
		defer cancel()
		if err := c(cctx); err != nil {
			log.Warn("component unhealthy", logger.String("component", name), logger.Err(err))
			resp.Components[name] = dto.HealthStatus{Status: "error", Message: err.Error()}
			if critical {
				resp.Status = "unavailable"
			} else if resp.Status == "ready" {
				resp.Status = "degraded"
			}
			return
		}
		resp.Components[name] = dto.HealthStatus{Status: "ok"}
	}

	probe("storage", s.deps.Storage, true)
	probe("cache", s.deps.Cache, false)
	probe("rate_limiter", s.deps.Limiter, false)
	return resp
}
