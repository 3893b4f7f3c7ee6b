// backend/internal/api/handlers/feedback.go
package handlers

import (
	"net/http"

	"github.com/answerdesk/triage/backend/internal/models"
	"github.com/answerdesk/triage/backend/internal/services"
	"github.com/answerdesk/triage/backend/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type FeedbackHandler struct {
	feedbackService *services.FeedbackService
	logger          *logrus.Logger
}

func NewFeedbackHandler(feedbackService *services.FeedbackService, logger *logrus.Logger) *FeedbackHandler {
	return &FeedbackHandler{
		feedbackService: feedbackService,
		logger:          logger,
	}
}

// HandleList returns one page of feedback, newest first
func (h *FeedbackHandler) HandleList(c *gin.Context) {
	filter := services.ParseFeedbackFilter(
		c.Query("rating"),
		c.Query("status"),
		c.Query("search"),
		c.Query("page"),
	)

	page, err := h.feedbackService.List(filter)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Feedback retrieved", page)
}

// HandleGet returns a single feedback record
func (h *FeedbackHandler) HandleGet(c *gin.Context) {
	feedback, err := h.feedbackService.Get(c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Feedback retrieved", feedback)
}

// HandleUpdate applies a tag / pm_notes / status patch
func (h *FeedbackHandler) HandleUpdate(c *gin.Context) {
	var req models.FeedbackUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	feedback, err := h.feedbackService.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Feedback updated", feedback)
}
