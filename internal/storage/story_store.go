package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"immortal-stories/internal/models"

	"go.uber.org/zap"
)

// storiesKey is the fixed blob key the whole story collection lives under.
const storiesKey = "immortal_stories_data"

// StoryStore persists the user's story collection, keyed by
// (characterName, world). The collection is small by design (single-digit to
// low-hundreds of stories), so every save rewrites the whole blob.
type StoryStore interface {
	// SaveStory upserts the story by its natural key. LastUpdated is
	// recomputed to the current time, overwriting any caller-supplied value.
	SaveStory(ctx context.Context, story *models.Story) error
	// GetAllStories returns the full collection. Absent or corrupt storage
	// reads as an empty collection, never as an error.
	GetAllStories(ctx context.Context) ([]models.Story, error)
	// GetStory returns the story matching the key, or models.ErrStoryNotFound.
	GetStory(ctx context.Context, characterName, world string) (*models.Story, error)
	// DeleteStory removes all stories matching the key. Deleting an absent
	// key is a no-op.
	DeleteStory(ctx context.Context, characterName, world string) error
	// ClearAll removes the entire collection.
	ClearAll(ctx context.Context) error
}

// Compile-time check to ensure blobStoryStore implements StoryStore
var _ StoryStore = (*blobStoryStore)(nil)

type blobStoryStore struct {
	blobs  Blobstore
	logger *zap.Logger
}

// NewStoryStore creates a StoryStore over the given Blobstore.
func NewStoryStore(blobs Blobstore, logger *zap.Logger) StoryStore {
	return &blobStoryStore{
		blobs:  blobs,
		logger: logger.Named("StoryStore"),
	}
}

func (s *blobStoryStore) SaveStory(ctx context.Context, story *models.Story) error {
	stories, err := s.GetAllStories(ctx)
	if err != nil {
		return err
	}

	story.LastUpdated = time.Now().UTC()

	replaced := false
	for i := range stories {
		if stories[i].CharacterName == story.CharacterName && stories[i].World == story.World {
			stories[i] = *story
			replaced = true
			break
		}
	}
	if !replaced {
		stories = append(stories, *story)
	}

	data, err := json.Marshal(stories)
	if err != nil {
		s.logger.Error("Failed to marshal story collection", zap.Error(err))
		return fmt.Errorf("failed to marshal story collection: %w", err)
	}
	if err := s.blobs.Set(ctx, storiesKey, data); err != nil {
		return fmt.Errorf("failed to persist story collection: %w", err)
	}

	s.logger.Debug("Story saved",
		zap.String("characterName", story.CharacterName),
		zap.String("world", story.World),
		zap.Int("entries", len(story.Entries)),
		zap.Int("collectionSize", len(stories)),
	)
	return nil
}

func (s *blobStoryStore) GetAllStories(ctx context.Context) ([]models.Story, error) {
	data, err := s.blobs.Get(ctx, storiesKey)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return []models.Story{}, nil
		}
		return nil, err
	}

	var stories []models.Story
	if err := json.Unmarshal(data, &stories); err != nil {
		// Corrupt storage is treated as empty, not as an error.
		s.logger.Warn("Story collection blob is corrupt, treating as empty", zap.Error(err))
		return []models.Story{}, nil
	}
	return stories, nil
}

func (s *blobStoryStore) GetStory(ctx context.Context, characterName, world string) (*models.Story, error) {
	stories, err := s.GetAllStories(ctx)
	if err != nil {
		return nil, err
	}
	for i := range stories {
		if stories[i].CharacterName == characterName && stories[i].World == world {
			return &stories[i], nil
		}
	}
	return nil, models.ErrStoryNotFound
}

func (s *blobStoryStore) DeleteStory(ctx context.Context, characterName, world string) error {
	stories, err := s.GetAllStories(ctx)
	if err != nil {
		return err
	}

	filtered := stories[:0]
	for _, st := range stories {
		if !(st.CharacterName == characterName && st.World == world) {
			filtered = append(filtered, st)
		}
	}
	if len(filtered) == len(stories) {
		// Nothing matched; the delete is idempotent.
		return nil
	}

	data, err := json.Marshal(filtered)
	if err != nil {
		return fmt.Errorf("failed to marshal story collection: %w", err)
	}
	if err := s.blobs.Set(ctx, storiesKey, data); err != nil {
		return fmt.Errorf("failed to persist story collection: %w", err)
	}

	s.logger.Info("Story deleted",
		zap.String("characterName", characterName),
		zap.String("world", world),
	)
	return nil
}

func (s *blobStoryStore) ClearAll(ctx context.Context) error {
	if err := s.blobs.Delete(ctx, storiesKey); err != nil {
		return fmt.Errorf("failed to clear story collection: %w", err)
	}
	s.logger.Info("Story collection cleared")
	return nil
}
