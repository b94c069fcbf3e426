package handler

import (
	"net/http"

	"immortal-stories/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// githubAuth exchanges an OAuth authorization code for an access token, logs
// the session in and returns the token plus the user profile.
func (h *Handler) githubAuth(c *gin.Context) {
	var req githubAuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Code: models.ErrCodeBadRequest, Message: "Authorization code required"})
		return
	}

	token, user, err := h.oauth.Exchange(c.Request.Context(), req.Code)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadGateway, models.ErrorResponse{Code: models.ErrCodeUpstream, Message: err.Error()})
		return
	}

	if err := h.session.Login(c.Request.Context(), token, user); err != nil {
		// The credential is held in memory even if persisting it failed;
		// the login still succeeds from the caller's point of view.
		zap.L().Warn("Failed to persist session after login", zap.Error(err))
	}

	loginsTotal.Inc()

	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"user":         user,
	})
}

func (h *Handler) logout(c *gin.Context) {
	if err := h.session.Logout(c.Request.Context()); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "logged out"})
}

func (h *Handler) me(c *gin.Context) {
	user := h.session.User()
	if user == nil {
		c.JSON(http.StatusOK, gin.H{"authenticated": true, "user": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"authenticated": true, "user": user})
}
