package handler

import (
	"net/http"

	"immortal-stories/internal/models"

	"github.com/gin-gonic/gin"
)

func (h *Handler) listWorlds(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"worlds": models.Worlds})
}

func (h *Handler) createStory(c *gin.Context) {
	var req createStoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Code: models.ErrCodeBadRequest, Message: "Invalid request data: " + err.Error()})
		return
	}

	result, err := h.stories.CreateStory(c.Request.Context(), req.World, req.CharacterName, req.Origin, req.Backstory, req.GenerateBackstory)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	storiesCreatedTotal.Inc()
	gistSyncsTotal.WithLabelValues(string(result.SyncStatus)).Inc()

	c.JSON(http.StatusCreated, gin.H{
		"story":       result.Story,
		"sync_status": result.SyncStatus,
		"sync_error":  result.SyncError,
	})
}

func (h *Handler) listStories(c *gin.Context) {
	stories, err := h.stories.ListStories(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stories": stories})
}

func (h *Handler) getStory(c *gin.Context) {
	st, err := h.stories.GetStory(c.Request.Context(), c.Param("name"), c.Param("world"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"story": st})
}

func (h *Handler) appendAction(c *gin.Context) {
	var req appendActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Code: models.ErrCodeBadRequest, Message: "Action text required"})
		return
	}

	result, err := h.stories.AppendAction(c.Request.Context(), c.Param("name"), c.Param("world"), req.Text, req.Narrate)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	actionsAppendedTotal.Inc()
	gistSyncsTotal.WithLabelValues(string(result.SyncStatus)).Inc()

	c.JSON(http.StatusOK, gin.H{
		"story":       result.Story,
		"sync_status": result.SyncStatus,
		"sync_error":  result.SyncError,
	})
}

func (h *Handler) deleteStory(c *gin.Context) {
	if err := h.stories.DeleteStory(c.Request.Context(), c.Param("name"), c.Param("world")); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
