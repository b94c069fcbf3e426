// Package service orchestrates the save/sync flow: the local store is
// authoritative and always written; remote mirrors are best-effort and never
// fail a local save.
package service

import (
	"context"
	"errors"

	"immortal-stories/internal/models"
	"immortal-stories/internal/session"
	"immortal-stories/internal/storage"
	"immortal-stories/internal/story"

	"go.uber.org/zap"
)

// SyncStatus reflects the outcome of the best-effort remote mirror after a
// local save.
type SyncStatus string

const (
	SyncIdle    SyncStatus = "idle"    // no credential, nothing attempted
	SyncSyncing SyncStatus = "syncing" // another sync for this story is already in flight
	SyncSynced  SyncStatus = "synced"
	SyncError   SyncStatus = "error"
)

// GistSyncer is the remote mirror consumed by the save flow.
type GistSyncer interface {
	Save(ctx context.Context, s *models.Story) (string, error)
}

// Narrator produces backstories and scenario continuations. It is nil when
// generation is not configured.
type Narrator interface {
	Backstory(ctx context.Context, world, characterName, origin string) (string, error)
	Continue(ctx context.Context, s *models.Story, action string) (string, error)
}

// SaveResult is a saved story plus the status of its remote mirror attempt.
type SaveResult struct {
	Story      *models.Story
	SyncStatus SyncStatus
	SyncError  string
}

// StoryService drives the story lifecycle over the local store, the session
// and the remote mirror.
type StoryService struct {
	store    storage.StoryStore
	gists    GistSyncer
	session  *session.Manager
	narrator Narrator
	logger   *zap.Logger
}

// NewStoryService creates the orchestration service. narrator may be nil.
func NewStoryService(store storage.StoryStore, gists GistSyncer, sess *session.Manager, narrator Narrator, logger *zap.Logger) *StoryService {
	return &StoryService{
		store:    store,
		gists:    gists,
		session:  sess,
		narrator: narrator,
		logger:   logger.Named("StoryService"),
	}
}

// CreateStory starts (or resumes) the story for a character in a world. The
// backstory is generated when requested and a narrator is configured; a
// generation failure degrades to an empty backstory instead of failing the
// creation.
func (s *StoryService) CreateStory(ctx context.Context, world, characterName, origin, backstory string, generate bool) (*SaveResult, error) {
	if !models.IsKnownWorld(world) {
		return nil, models.ErrUnknownWorld
	}

	if existing, err := s.store.GetStory(ctx, characterName, world); err == nil {
		// The (characterName, world) key already has a story; resume it.
		story.Seed(existing)
		return s.saveAndSync(ctx, existing), nil
	} else if !errors.Is(err, models.ErrStoryNotFound) {
		return nil, err
	}

	if generate && s.narrator != nil {
		generated, err := s.narrator.Backstory(ctx, world, characterName, origin)
		if err != nil {
			s.logger.Warn("Backstory generation unavailable, continuing without it",
				zap.Error(err),
				zap.String("characterName", characterName),
				zap.String("world", world),
			)
		} else {
			backstory = generated
		}
	}

	st := story.New(world, characterName, origin, backstory)
	story.Seed(st)
	return s.saveAndSync(ctx, st), nil
}

// GetStory returns the story for the key, seeding the opening scenario when
// the entry log is empty.
func (s *StoryService) GetStory(ctx context.Context, characterName, world string) (*models.Story, error) {
	st, err := s.store.GetStory(ctx, characterName, world)
	if err != nil {
		return nil, err
	}
	if len(st.Entries) == 0 {
		story.Seed(st)
		s.saveLocal(ctx, st)
	}
	return st, nil
}

// ListStories returns the full local collection.
func (s *StoryService) ListStories(ctx context.Context) ([]models.Story, error) {
	return s.store.GetAllStories(ctx)
}

// DeleteStory removes the story from the local store. The remote mirror is
// left alone: local deletion is not propagated.
func (s *StoryService) DeleteStory(ctx context.Context, characterName, world string) error {
	return s.store.DeleteStory(ctx, characterName, world)
}

// AppendAction appends the player's action and optionally narrates the next
// scenario beat, then saves locally and mirrors best-effort.
func (s *StoryService) AppendAction(ctx context.Context, characterName, world, text string, narrate bool) (*SaveResult, error) {
	st, err := s.store.GetStory(ctx, characterName, world)
	if err != nil {
		return nil, err
	}

	if _, err := story.AppendAction(st, text); err != nil {
		return nil, err
	}

	if narrate && s.narrator != nil {
		scene, err := s.narrator.Continue(ctx, st, text)
		if err != nil {
			// Generation is best-effort: the action still lands.
			s.logger.Warn("Narration unavailable for action", zap.Error(err), zap.String("story", st.Key()))
		} else if _, err := story.AppendScenario(st, scene); err != nil {
			s.logger.Warn("Discarding empty narration", zap.Error(err), zap.String("story", st.Key()))
		}
	}

	return s.saveAndSync(ctx, st), nil
}

// SyncStory pushes one story to the remote mirror on demand. Unlike the
// implicit sync after a save, errors here propagate to the caller.
func (s *StoryService) SyncStory(ctx context.Context, characterName, world string) (*SaveResult, error) {
	st, err := s.store.GetStory(ctx, characterName, world)
	if err != nil {
		return nil, err
	}

	hadRemoteID := st.RemoteID != ""
	remoteID, err := s.gists.Save(ctx, st)
	if err != nil {
		return nil, err
	}

	if !hadRemoteID {
		st.RemoteID = remoteID
		s.saveLocal(ctx, st)
	}
	return &SaveResult{Story: st, SyncStatus: SyncSynced}, nil
}

// saveLocal persists the story, applying the local policy: persistence
// errors are logged and swallowed, data loss is accepted.
func (s *StoryService) saveLocal(ctx context.Context, st *models.Story) {
	if err := s.store.SaveStory(ctx, st); err != nil {
		s.logger.Error("Failed to save story locally, continuing", zap.Error(err), zap.String("story", st.Key()))
	}
}

// saveAndSync persists locally, then mirrors to the remote store when a
// credential is held. On the first successful mirror the assigned remote id
// is written back to the local copy.
func (s *StoryService) saveAndSync(ctx context.Context, st *models.Story) *SaveResult {
	s.saveLocal(ctx, st)

	if !s.session.IsAuthenticated() {
		return &SaveResult{Story: st, SyncStatus: SyncIdle}
	}

	hadRemoteID := st.RemoteID != ""
	remoteID, err := s.gists.Save(ctx, st)
	if err != nil {
		if errors.Is(err, models.ErrSyncInFlight) {
			return &SaveResult{Story: st, SyncStatus: SyncSyncing}
		}
		s.logger.Warn("Remote sync failed", zap.Error(err), zap.String("story", st.Key()))
		return &SaveResult{Story: st, SyncStatus: SyncError, SyncError: err.Error()}
	}

	if !hadRemoteID {
		st.RemoteID = remoteID
		s.saveLocal(ctx, st)
	}
	return &SaveResult{Story: st, SyncStatus: SyncSynced}
}
