// Package story holds the in-memory story model: an ordered, append-only
// sequence of scenario and action entries.
package story

import (
	"fmt"
	"strings"
	"time"

	"immortal-stories/internal/models"

	"github.com/google/uuid"
)

// New creates a story with no entries. The first entry is seeded on first
// display via Seed.
func New(world, characterName, origin, backstory string) *models.Story {
	return &models.Story{
		World:         world,
		CharacterName: characterName,
		Origin:        origin,
		Backstory:     backstory,
		Entries:       []models.StoryEntry{},
	}
}

// Seed synthesizes the opening scenario entry for a story with no entries.
// The seed is not special once stored: it is an ordinary entry. Stories that
// already have entries are left untouched.
func Seed(s *models.Story) {
	if len(s.Entries) > 0 {
		return
	}
	s.Entries = append(s.Entries, models.StoryEntry{
		ID:        uuid.NewString(),
		Kind:      models.EntryKindScenario,
		Content:   fmt.Sprintf("Welcome to your adventure, %s! You find yourself at the beginning of an epic journey. What will you do first?", s.CharacterName),
		Timestamp: time.Now().UTC(),
	})
}

// AppendAction appends a user-authored action entry. Text that is empty after
// trimming returns models.ErrEmptyAction and leaves the story unchanged.
// Prior entries are never mutated or removed.
func AppendAction(s *models.Story, text string) (*models.StoryEntry, error) {
	if strings.TrimSpace(text) == "" {
		return nil, models.ErrEmptyAction
	}
	s.Entries = append(s.Entries, models.StoryEntry{
		ID:        uuid.NewString(),
		Kind:      models.EntryKindAction,
		Content:   text,
		Timestamp: time.Now().UTC(),
	})
	return &s.Entries[len(s.Entries)-1], nil
}

// AppendScenario appends a narrated scenario entry, typically produced by the
// generation collaborator.
func AppendScenario(s *models.Story, text string) (*models.StoryEntry, error) {
	if strings.TrimSpace(text) == "" {
		return nil, models.ErrEmptyAction
	}
	s.Entries = append(s.Entries, models.StoryEntry{
		ID:        uuid.NewString(),
		Kind:      models.EntryKindScenario,
		Content:   text,
		Timestamp: time.Now().UTC(),
	})
	return &s.Entries[len(s.Entries)-1], nil
}
