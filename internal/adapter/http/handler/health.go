package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/hamza-safwan/mini-ride-booking/pkg/logger"
	wrap "github.com/hamza-safwan/mini-ride-booking/pkg/logger/wrapper"
)

const healthCheckTimeout = 2 * time.Second

// Check pings one backend the service depends on.
type Check struct {
	Name string
	Ping func(ctx context.Context) error
}

type Health struct {
	serviceName string
	startedAt   time.Time
	checks      []Check
	log         logger.Logger
}

func NewHealth(serviceName string, checks []Check, log logger.Logger) *Health {
	return &Health{
		serviceName: serviceName,
		startedAt:   time.Now(),
		checks:      checks,
		log:         log,
	}
}

// HealthCheck godoc
// @Summary      Health Check
// @Description  Reports service status and the reachability of configured backends
// @Tags         Health
// @Produce      json
// @Success      200  {object}  map[string]any
// @Failure      503  {object}  map[string]any
// @Router       /health [get]
func (a *Health) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "health_check")

	pingCtx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	status, code := "available", http.StatusOK
	results := make(map[string]string, len(a.checks))
	for _, c := range a.checks {
		if err := c.Ping(pingCtx); err != nil {
			a.log.Warn(ctx, "health check failed", "backend", c.Name, "error", err.Error())
			results[c.Name] = err.Error()
			status, code = "degraded", http.StatusServiceUnavailable
			continue
		}
		results[c.Name] = "ok"
	}

	response := envelope{
		"status": status,
		"system_info": map[string]string{
			"service_name": a.serviceName,
			"uptime":       time.Since(a.startedAt).Round(time.Second).String(),
		},
		"checks": results,
	}

	if err := writeJSON(w, code, response, nil); err != nil {
		a.log.Error(ctx, "failed to write health response", err)
	}
}
