// backend/internal/api/handlers/health.go
package handlers

import (
	"net/http"

	"github.com/answerdesk/triage/backend/internal/health"
	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	checker *health.HealthChecker
}

func NewHealthHandler(checker *health.HealthChecker) *HealthHandler {
	return &HealthHandler{checker: checker}
}

// HandleHealth reports storage backend health. Mounted outside the
// auth middleware so load balancers can probe it.
func (h *HealthHandler) HandleHealth(c *gin.Context) {
	overall := h.checker.CheckAll()

	code := http.StatusOK
	if overall.Status != "healthy" {
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, overall)
}
