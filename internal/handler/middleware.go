package handler

import (
	"net/http"

	"immortal-stories/internal/models"

	"github.com/gin-gonic/gin"
)

// requireSession rejects requests made without a held credential before any
// remote work happens.
func (h *Handler) requireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !h.session.IsAuthenticated() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{
				Code:    models.ErrCodeUnauthenticated,
				Message: "Not authenticated. Please login with GitHub.",
			})
			return
		}
		c.Next()
	}
}
