package models

import "errors"

// Sentinel errors shared across the storage, sync and session layers.
var (
	// ErrStoryNotFound is returned when no story matches a (characterName, world) key.
	ErrStoryNotFound = errors.New("story not found")
	// ErrRemoteNotFound is returned when a remote document id does not resolve
	// or the document has no parseable body.
	ErrRemoteNotFound = errors.New("remote story not found")
	// ErrNotAuthenticated is returned by remote operations attempted without a credential.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrSyncInFlight is returned when a remote save is already running for the same story.
	ErrSyncInFlight = errors.New("sync already in flight for this story")
	// ErrEmptyAction is returned when an appended action is empty after trimming.
	ErrEmptyAction = errors.New("action text is empty")
	// ErrGenerationUnavailable is returned when the LLM collaborator produced
	// no usable completion. Callers treat it as "generation unavailable", not fatal.
	ErrGenerationUnavailable = errors.New("generation unavailable")
	// ErrCloudDisabled is returned when the Supabase mirror is not configured.
	ErrCloudDisabled = errors.New("cloud sync is not configured")
	// ErrUnknownWorld is returned when a story references a world outside the fixed set.
	ErrUnknownWorld = errors.New("unknown world")
)
