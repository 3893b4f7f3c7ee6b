// backend/internal/api/handlers/escalations.go
package handlers

import (
	"net/http"

	"github.com/answerdesk/triage/backend/internal/models"
	"github.com/answerdesk/triage/backend/internal/services"
	"github.com/answerdesk/triage/backend/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type EscalationHandler struct {
	escalationService *services.EscalationService
	logger            *logrus.Logger
}

func NewEscalationHandler(escalationService *services.EscalationService, logger *logrus.Logger) *EscalationHandler {
	return &EscalationHandler{
		escalationService: escalationService,
		logger:            logger,
	}
}

// HandleCreate routes problematic feedback to a team
func (h *EscalationHandler) HandleCreate(c *gin.Context) {
	var req models.EscalationCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	escalation, err := h.escalationService.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "Escalation created", escalation)
}

// HandleList returns escalations filtered by team/priority/status,
// sorted most urgent and longest-waiting first
func (h *EscalationHandler) HandleList(c *gin.Context) {
	filter := services.ParseEscalationFilter(
		c.Query("team"),
		c.Query("priority"),
		c.Query("status"),
	)

	escalations, err := h.escalationService.List(filter)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Escalations retrieved", escalations)
}

// HandleGet returns a single escalation with its parent feedback
func (h *EscalationHandler) HandleGet(c *gin.Context) {
	escalation, err := h.escalationService.Get(c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Escalation retrieved", escalation)
}

// HandleUpdate applies a status / resolution-notes patch
func (h *EscalationHandler) HandleUpdate(c *gin.Context) {
	var req models.EscalationUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	escalation, err := h.escalationService.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Escalation updated", escalation)
}
