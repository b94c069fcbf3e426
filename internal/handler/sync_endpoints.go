package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// syncStory pushes one local story to the gist mirror on demand.
func (h *Handler) syncStory(c *gin.Context) {
	result, err := h.stories.SyncStory(c.Request.Context(), c.Param("name"), c.Param("world"))
	if err != nil {
		gistSyncsTotal.WithLabelValues("error").Inc()
		handleServiceError(c, err)
		return
	}

	gistSyncsTotal.WithLabelValues("synced").Inc()
	c.JSON(http.StatusOK, gin.H{"gist_id": result.Story.RemoteID, "sync_status": result.SyncStatus})
}

// listRemoteStories lists the tagged gists of the current credential holder.
// Unparseable documents are skipped; their count is reported, not fatal.
func (h *Handler) listRemoteStories(c *gin.Context) {
	stories, skipped, err := h.gists.List(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stories": stories, "skipped": skipped})
}

func (h *Handler) deleteRemoteStory(c *gin.Context) {
	if err := h.gists.Delete(c.Request.Context(), c.Param("id")); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// shareRemoteStory flips the gist public and returns its shareable URL.
func (h *Handler) shareRemoteStory(c *gin.Context) {
	url, err := h.gists.MakePublic(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}
