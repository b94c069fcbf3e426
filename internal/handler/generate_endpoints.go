package handler

import (
	"net/http"

	"immortal-stories/internal/models"

	"github.com/gin-gonic/gin"
)

// generateBackstory is the direct generation endpoint: given world, character
// name and origin it returns a generated backstory.
func (h *Handler) generateBackstory(c *gin.Context) {
	if h.generator == nil {
		handleServiceError(c, models.ErrGenerationUnavailable)
		return
	}

	var req generateBackstoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Code: models.ErrCodeBadRequest, Message: "Missing required fields"})
		return
	}

	backstory, err := h.generator.Backstory(c.Request.Context(), req.World, req.CharacterName, req.Origin)
	if err != nil {
		generationsTotal.WithLabelValues("backstory", "error").Inc()
		handleServiceError(c, models.ErrGenerationUnavailable)
		return
	}

	generationsTotal.WithLabelValues("backstory", "ok").Inc()
	c.JSON(http.StatusOK, gin.H{"backstory": backstory})
}
