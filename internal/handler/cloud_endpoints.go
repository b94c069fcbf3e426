package handler

import (
	"net/http"
	"strconv"

	"immortal-stories/internal/cloud"
	"immortal-stories/internal/models"

	"github.com/gin-gonic/gin"
)

// cloudUserID derives the Supabase row owner from the session profile.
func (h *Handler) cloudUserID(c *gin.Context) (string, bool) {
	user := h.session.User()
	if user == nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{
			Code:    models.ErrCodeUnauthenticated,
			Message: "Session has no profile; cloud sync requires one",
		})
		return "", false
	}
	return strconv.FormatInt(user.ID, 10), true
}

func (h *Handler) cloudSaveStory(c *gin.Context) {
	if h.cloud == nil {
		handleServiceError(c, models.ErrCloudDisabled)
		return
	}
	userID, ok := h.cloudUserID(c)
	if !ok {
		return
	}

	st, err := h.stories.GetStory(c.Request.Context(), c.Param("name"), c.Param("world"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	if err := h.cloud.SaveStory(c.Request.Context(), userID, st); err != nil {
		c.AbortWithStatusJSON(http.StatusBadGateway, models.ErrorResponse{Code: models.ErrCodeUpstream, Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "saved"})
}

func (h *Handler) cloudListStories(c *gin.Context) {
	if h.cloud == nil {
		handleServiceError(c, models.ErrCloudDisabled)
		return
	}
	userID, ok := h.cloudUserID(c)
	if !ok {
		return
	}

	stories, err := h.cloud.ListStories(c.Request.Context(), userID)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadGateway, models.ErrorResponse{Code: models.ErrCodeUpstream, Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"stories": stories})
}

func (h *Handler) cloudPublishStory(c *gin.Context) {
	if h.cloud == nil {
		handleServiceError(c, models.ErrCloudDisabled)
		return
	}
	userID, ok := h.cloudUserID(c)
	if !ok {
		return
	}

	st, err := h.stories.GetStory(c.Request.Context(), c.Param("name"), c.Param("world"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	if err := h.cloud.Publish(c.Request.Context(), userID, st); err != nil {
		c.AbortWithStatusJSON(http.StatusBadGateway, models.ErrorResponse{Code: models.ErrCodeUpstream, Message: err.Error()})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": cloud.StatusPending})
}

func (h *Handler) listPublicStories(c *gin.Context) {
	if h.cloud == nil {
		handleServiceError(c, models.ErrCloudDisabled)
		return
	}

	stories, err := h.cloud.ListPublic(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadGateway, models.ErrorResponse{Code: models.ErrCodeUpstream, Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"stories": stories})
}
