package health

import (
	"context"
	"time"

	"github.com/answerdesk/triage/backend/internal/database"
	"github.com/sirupsen/logrus"
)

var startTime = time.Now()

// HealthChecker probes the storage backends the service depends on.
type HealthChecker struct {
	dbManager *database.Manager
	logger    *logrus.Logger
}

func NewHealthChecker(dbManager *database.Manager, logger *logrus.Logger) *HealthChecker {
	return &HealthChecker{
		dbManager: dbManager,
		logger:    logger,
	}
}

// ServiceHealth is the result of probing one backend.
type ServiceHealth struct {
	Name         string `json:"name"`
	Status       string `json:"status"`
	ResponseTime int    `json:"response_time_ms"`
	Error        string `json:"error,omitempty"`
	LastChecked  string `json:"last_checked"`
}

// OverallHealth rolls the individual probes up; unhealthy if any
// backend is.
type OverallHealth struct {
	Status   string          `json:"status"`
	Services []ServiceHealth `json:"services"`
	Uptime   string          `json:"uptime"`
}

func (h *HealthChecker) probe(name string, ping func() error) ServiceHealth {
	start := time.Now()
	err := ping()

	result := ServiceHealth{
		Name:         name,
		Status:       "healthy",
		ResponseTime: int(time.Since(start).Milliseconds()),
		LastChecked:  time.Now().Format(time.RFC3339),
	}

	if err != nil {
		result.Status = "unhealthy"
		result.Error = err.Error()
		h.logger.WithError(err).WithField("service", name).Error("Health check failed")
	}

	return result
}

// CheckPostgreSQL probes the primary store.
func (h *HealthChecker) CheckPostgreSQL() ServiceHealth {
	return h.probe("postgresql", h.dbManager.PingDatabase)
}

// CheckRedis probes the cache and session store.
func (h *HealthChecker) CheckRedis() ServiceHealth {
	return h.probe("redis", h.dbManager.PingRedis)
}

// CheckAll probes every backend and rolls the results up.
func (h *HealthChecker) CheckAll() OverallHealth {
	services := []ServiceHealth{
		h.CheckPostgreSQL(),
		h.CheckRedis(),
	}

	overall := OverallHealth{
		Status:   "healthy",
		Services: services,
		Uptime:   time.Since(startTime).String(),
	}
	for _, service := range services {
		if service.Status != "healthy" {
			overall.Status = "unhealthy"
			break
		}
	}

	return overall
}

// PeriodicHealthCheck runs health checks until the context is
// cancelled, logging degradations as they happen.
func (h *HealthChecker) PeriodicHealthCheck(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			overall := h.CheckAll()
			if overall.Status != "healthy" {
				h.logger.WithField("status", overall.Status).Warn("Periodic health check found degraded services")
			} else {
				h.logger.WithField("status", overall.Status).Debug("Periodic health check completed")
			}
		}
	}
}
