package dirsearch

import (
	"context"
	"time"

	healthuc "github.com/kailas-cloud/dirsearch/internal/usecase/health"
)

// HealthStatus represents the backend health.
type HealthStatus struct {
	Status string            `json:"status"` // "ok" or "degraded"
	Checks map[string]string `json:"checks"` // component → "ok"/"error"
}

// OK reports whether every check passed.
func (h HealthStatus) OK() bool {
	return h.Status == string(healthuc.Healthy)
}

// Health probes the backend, bounded by the configured health timeout.
func (c *Client) Health(ctx context.Context) HealthStatus {
	start := time.Now()
	report := c.healthSvc.Check(ctx)

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	status := HealthStatus{
		Status: string(report.Status),
		Checks: checks,
	}

	var err error
	if !status.OK() {
		err = errUnhealthy
	}
	c.obs.finish("health", time.Since(start), err)
	return status
}
