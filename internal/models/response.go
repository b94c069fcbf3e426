package models

// Error codes returned by the HTTP surface.
const (
	ErrCodeBadRequest      = "BAD_REQUEST"
	ErrCodeUnauthenticated = "UNAUTHENTICATED"
	ErrCodeNotFound        = "NOT_FOUND"
	ErrCodeSyncInFlight    = "SYNC_IN_FLIGHT"
	ErrCodeCloudDisabled   = "CLOUD_DISABLED"
	ErrCodeUpstream        = "UPSTREAM_ERROR"
	ErrCodeInternal        = "INTERNAL_ERROR"
)

// ErrorResponse is the standard JSON error body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
