package handler

import (
	"errors"
	"net/http"

	"immortal-stories/internal/gist"
	"immortal-stories/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func handleServiceError(c *gin.Context, err error) {
	var statusCode int
	var errResp models.ErrorResponse

	var syncErr *gist.SyncError

	switch {
	case errors.Is(err, models.ErrNotAuthenticated):
		statusCode = http.StatusUnauthorized
		errResp = models.ErrorResponse{Code: models.ErrCodeUnauthenticated, Message: "Not authenticated. Please login with GitHub."}
	case errors.Is(err, models.ErrStoryNotFound), errors.Is(err, models.ErrRemoteNotFound):
		statusCode = http.StatusNotFound
		errResp = models.ErrorResponse{Code: models.ErrCodeNotFound, Message: "Story not found"}
	case errors.Is(err, models.ErrSyncInFlight):
		statusCode = http.StatusConflict
		errResp = models.ErrorResponse{Code: models.ErrCodeSyncInFlight, Message: "A sync for this story is already in flight"}
	case errors.Is(err, models.ErrEmptyAction):
		statusCode = http.StatusBadRequest
		errResp = models.ErrorResponse{Code: models.ErrCodeBadRequest, Message: "Action text must not be empty"}
	case errors.Is(err, models.ErrUnknownWorld):
		statusCode = http.StatusBadRequest
		errResp = models.ErrorResponse{Code: models.ErrCodeBadRequest, Message: "Unknown world"}
	case errors.Is(err, models.ErrCloudDisabled):
		statusCode = http.StatusServiceUnavailable
		errResp = models.ErrorResponse{Code: models.ErrCodeCloudDisabled, Message: "Cloud sync is not configured"}
	case errors.Is(err, models.ErrGenerationUnavailable):
		statusCode = http.StatusServiceUnavailable
		errResp = models.ErrorResponse{Code: models.ErrCodeUpstream, Message: "Generation is unavailable right now"}
	case errors.As(err, &syncErr):
		statusCode = http.StatusBadGateway
		errResp = models.ErrorResponse{Code: models.ErrCodeUpstream, Message: err.Error()}
	default:
		zap.L().Error("Unhandled internal error in handleServiceError", zap.Error(err))
		statusCode = http.StatusInternalServerError
		errResp = models.ErrorResponse{Code: models.ErrCodeInternal, Message: "An unexpected internal error occurred"}
	}

	c.AbortWithStatusJSON(statusCode, errResp)
}
