// Package handler exposes the application over HTTP.
package handler

import (
	"github.com/gin-gonic/gin"

	"immortal-stories/internal/cloud"
	"immortal-stories/internal/generator"
	"immortal-stories/internal/gist"
	"immortal-stories/internal/github"
	"immortal-stories/internal/service"
	"immortal-stories/internal/session"
)

// Handler carries the dependencies of all HTTP endpoints. The cloud and
// generation clients are nil when not configured; their endpoints answer
// with a disabled/unavailable condition instead.
type Handler struct {
	stories   *service.StoryService
	session   *session.Manager
	oauth     *github.OAuthClient
	gists     *gist.Client
	cloud     *cloud.Client
	generator *generator.Client
}

// New creates the HTTP handler set.
func New(stories *service.StoryService, sess *session.Manager, oauth *github.OAuthClient, gists *gist.Client, cloudClient *cloud.Client, gen *generator.Client) *Handler {
	return &Handler{
		stories:   stories,
		session:   sess,
		oauth:     oauth,
		gists:     gists,
		cloud:     cloudClient,
		generator: gen,
	}
}

// RegisterRoutes mounts the API under /api.
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api")

	api.POST("/auth/github", h.githubAuth)
	api.POST("/auth/logout", h.logout)
	api.GET("/auth/me", h.requireSession(), h.me)

	api.GET("/worlds", h.listWorlds)

	api.POST("/stories", h.createStory)
	api.GET("/stories", h.listStories)
	api.GET("/stories/:world/:name", h.getStory)
	api.POST("/stories/:world/:name/actions", h.appendAction)
	api.DELETE("/stories/:world/:name", h.deleteStory)

	api.POST("/generate/backstory", h.generateBackstory)

	sync := api.Group("/sync", h.requireSession())
	sync.POST("/stories/:world/:name", h.syncStory)
	sync.GET("/stories", h.listRemoteStories)
	sync.DELETE("/gists/:id", h.deleteRemoteStory)
	sync.POST("/gists/:id/share", h.shareRemoteStory)

	cloudGroup := api.Group("/cloud", h.requireSession())
	cloudGroup.POST("/stories/:world/:name", h.cloudSaveStory)
	cloudGroup.GET("/stories", h.cloudListStories)
	cloudGroup.POST("/stories/:world/:name/publish", h.cloudPublishStory)

	api.GET("/public/stories", h.listPublicStories)
}
