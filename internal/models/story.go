package models

import (
	"fmt"
	"time"
)

// EntryKind distinguishes narrated story beats from player-authored actions.
type EntryKind string

const (
	EntryKindScenario EntryKind = "scenario"
	EntryKindAction   EntryKind = "action"
)

// StoryEntry is a single element of a story's append-only log.
// Entries are ordered by creation and never reordered or deduplicated.
type StoryEntry struct {
	ID        string    `json:"id"`
	Kind      EntryKind `json:"type"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Story is one character's evolving narrative. The pair
// (CharacterName, World) is the natural key for local lookups.
type Story struct {
	World         string       `json:"world"`
	CharacterName string       `json:"characterName"`
	Origin        string       `json:"origin"`
	Backstory     string       `json:"backstory"`
	Entries       []StoryEntry `json:"entries"`
	LastUpdated   time.Time    `json:"lastUpdated"`
	// RemoteID is the gist id assigned on the first successful remote save.
	// Once set it is reused so subsequent saves update instead of create.
	RemoteID string `json:"gistId,omitempty"`
}

// Key returns the natural key of the story for logging and in-flight tracking.
func (s *Story) Key() string {
	return StoryKey(s.CharacterName, s.World)
}

// StoryKey builds the natural key for a (characterName, world) pair.
func StoryKey(characterName, world string) string {
	return fmt.Sprintf("%s/%s", characterName, world)
}

// World describes one of the fixed narrative themes a player picks from.
type World struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Worlds is the fixed enumerated set of narrative themes. The persistence
// layer treats the world id as an opaque string.
var Worlds = []World{
	{ID: "fantasy", Name: "Realm of Eldoria", Description: "High fantasy lands of magic, dragons and ancient ruins."},
	{ID: "cyberpunk", Name: "Neon Sprawl", Description: "Rain-slick megacity streets ruled by corporations and code."},
	{ID: "space", Name: "The Outer Reach", Description: "Frontier colonies at the cold edge of charted space."},
	{ID: "wild-west", Name: "Dustbound Territories", Description: "Lawless frontier towns, six-shooters and long horizons."},
	{ID: "post-apocalyptic", Name: "The Ashlands", Description: "What is left of the world, and those who still walk it."},
}

// IsKnownWorld reports whether the id belongs to the fixed world set.
func IsKnownWorld(id string) bool {
	for _, w := range Worlds {
		if w.ID == id {
			return true
		}
	}
	return false
}
