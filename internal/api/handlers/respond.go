package handlers

import (
	"errors"
	"net/http"

	"github.com/answerdesk/triage/backend/internal/errs"
	"github.com/answerdesk/triage/backend/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// respondError translates the error taxonomy into HTTP responses.
// Persistence detail is logged but never sent to the caller.
func respondError(c *gin.Context, logger *logrus.Logger, err error) {
	var validationErr *errs.ValidationError
	var notFoundErr *errs.NotFoundError
	var persistenceErr *errs.PersistenceError

	switch {
	case errors.As(err, &validationErr):
		utils.ErrorResponse(c, http.StatusBadRequest, "Validation failed", validationErr)
	case errors.As(err, &notFoundErr):
		utils.ErrorResponse(c, http.StatusNotFound, notFoundErr.Error(), nil)
	case errors.As(err, &persistenceErr):
		logger.WithError(persistenceErr).Error("Persistence failure")
		utils.ErrorResponse(c, http.StatusInternalServerError, "Internal server error", nil)
	default:
		logger.WithError(err).Error("Unexpected error")
		utils.ErrorResponse(c, http.StatusInternalServerError, "Internal server error", nil)
	}
}
