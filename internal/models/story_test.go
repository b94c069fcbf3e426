package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoryKey(t *testing.T) {
	s := &Story{World: "fantasy", CharacterName: "Kaelen"}
	assert.Equal(t, "Kaelen/fantasy", s.Key())
	assert.Equal(t, s.Key(), StoryKey("Kaelen", "fantasy"))
}

func TestIsKnownWorld(t *testing.T) {
	for _, w := range Worlds {
		assert.True(t, IsKnownWorld(w.ID), w.ID)
	}
	assert.False(t, IsKnownWorld("steampunk"))
	assert.False(t, IsKnownWorld(""))
}

func TestStoryJSONFieldNames(t *testing.T) {
	s := &Story{
		World:         "fantasy",
		CharacterName: "Kaelen",
		RemoteID:      "gist-1",
		Entries: []StoryEntry{
			{ID: "1", Kind: EntryKindAction, Content: "Open the door"},
		},
	}

	data, err := json.Marshal(s)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Contains(t, raw, "characterName")
	assert.Contains(t, raw, "gistId")
	entry := raw["entries"].([]any)[0].(map[string]any)
	assert.Equal(t, "action", entry["type"])
}

func TestStoryJSON_RemoteIDOmittedWhenUnset(t *testing.T) {
	data, err := json.Marshal(&Story{World: "fantasy", CharacterName: "Kaelen"})
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.NotContains(t, raw, "gistId")
}
