package story

import (
	"testing"

	"immortal-stories/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeed_AddsOpeningScenarioOnce(t *testing.T) {
	s := New("fantasy", "Kaelen", "wanderer", "")

	Seed(s)
	require.Len(t, s.Entries, 1)
	assert.Equal(t, models.EntryKindScenario, s.Entries[0].Kind)
	assert.Contains(t, s.Entries[0].Content, "Kaelen")
	assert.NotEmpty(t, s.Entries[0].ID)

	// Seeding again must not duplicate the opening entry.
	Seed(s)
	assert.Len(t, s.Entries, 1)
}

func TestAppendAction_AppendsAtEnd(t *testing.T) {
	s := New("fantasy", "Kaelen", "wanderer", "")
	Seed(s)

	entry, err := AppendAction(s, "Open the door")
	require.NoError(t, err)
	require.Len(t, s.Entries, 2)
	assert.Equal(t, models.EntryKindAction, entry.Kind)
	assert.Equal(t, "Open the door", entry.Content)
	assert.Equal(t, entry.ID, s.Entries[1].ID, "new entry must land at the end")
	assert.Equal(t, models.EntryKindScenario, s.Entries[0].Kind, "prior entries are never mutated")
}

func TestAppendAction_EmptyTextLeavesStoryUnchanged(t *testing.T) {
	s := New("fantasy", "Kaelen", "wanderer", "")
	Seed(s)

	for _, text := range []string{"", "   ", "\n\t "} {
		_, err := AppendAction(s, text)
		assert.ErrorIs(t, err, models.ErrEmptyAction)
		assert.Len(t, s.Entries, 1)
	}
}

func TestAppendAction_UniqueIDs(t *testing.T) {
	s := New("space", "Vex", "pilot", "")

	first, err := AppendAction(s, "Check the airlock")
	require.NoError(t, err)
	second, err := AppendAction(s, "Seal the hatch")
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Len(t, s.Entries, 2)
}

func TestAppendScenario(t *testing.T) {
	s := New("fantasy", "Kaelen", "wanderer", "")

	entry, err := AppendScenario(s, "The gate creaks open.")
	require.NoError(t, err)
	assert.Equal(t, models.EntryKindScenario, entry.Kind)

	_, err = AppendScenario(s, "  ")
	assert.ErrorIs(t, err, models.ErrEmptyAction)
}
