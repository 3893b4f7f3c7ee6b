// backend/internal/middleware/auth.go
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/answerdesk/triage/backend/internal/errs"
	"github.com/answerdesk/triage/backend/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// SessionValidator checks a presented token against the session store.
// Sessions are issued by the external auth collaborator; this side only
// verifies existence.
type SessionValidator interface {
	SessionExists(ctx context.Context, token string) (bool, error)
}

// Auth rejects requests without a valid session before any other
// processing. The token comes from Authorization: Bearer or
// X-Session-Token.
func Auth(sessions SessionValidator, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" || !utils.ValidateSessionToken(token) {
			unauthorized(c)
			return
		}

		ok, err := sessions.SessionExists(c.Request.Context(), token)
		if err != nil {
			logger.WithError(err).Error("Session lookup failed")
			unauthorized(c)
			return
		}

		if !ok {
			unauthorized(c)
			return
		}

		c.Set("session_token", token)
		c.Next()
	}
}

func unauthorized(c *gin.Context) {
	utils.ErrorResponse(c, http.StatusUnauthorized, "Authentication required", errs.ErrUnauthenticated)
	c.Abort()
}

func extractToken(c *gin.Context) string {
	if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return c.GetHeader("X-Session-Token")
}
