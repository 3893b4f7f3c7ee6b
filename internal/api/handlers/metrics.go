// backend/internal/api/handlers/metrics.go
package handlers

import (
	"net/http"

	"github.com/answerdesk/triage/backend/internal/services"
	"github.com/answerdesk/triage/backend/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type MetricsHandler struct {
	metricsService *services.MetricsService
	logger         *logrus.Logger
}

func NewMetricsHandler(metricsService *services.MetricsService, logger *logrus.Logger) *MetricsHandler {
	return &MetricsHandler{
		metricsService: metricsService,
		logger:         logger,
	}
}

// HandleReport returns windowed quality metrics. An unusable ?range=
// value falls back to the configured default window.
func (h *MetricsHandler) HandleReport(c *gin.Context) {
	rangeDays := h.metricsService.ParseRange(c.Query("range"))

	report, err := h.metricsService.Report(c.Request.Context(), rangeDays)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Metrics computed", report)
}
