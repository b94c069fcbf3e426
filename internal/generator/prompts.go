package generator

import (
	"fmt"
	"strings"

	"immortal-stories/internal/models"
)

const backstorySystemPrompt = "You are a creative writer specializing in character development. " +
	"Create rich, compelling backstories that inspire players to tell their own stories. Keep it 2-3 paragraphs."

const continueSystemPrompt = "You are the narrator of an interactive story. Continue the scene in 1-2 vivid " +
	"paragraphs that react to the player's action, stay true to the world, and end on an open moment the player can act on. " +
	"Never speak for the player."

// historyWindow bounds how many trailing entries feed the continuation prompt.
const historyWindow = 6

func backstoryPrompt(world, characterName, origin string) string {
	return fmt.Sprintf(`Create a compelling character backstory for an interactive RPG.

Character Name: %s
World: %s
Origin: %s

Write a rich, 2-3 paragraph backstory that:
1. Explains their past and how they became who they are
2. Includes a defining moment or challenge they overcame
3. Hints at their motivations and goals
4. Fits the %s theme perfectly

Make it personal, emotional, and inspiring for storytelling.`, characterName, world, origin, world)
}

func continuePrompt(s *models.Story, action string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "World: %s\nCharacter: %s\nOrigin: %s\nBackstory: %s\n\nRecent story:\n", s.World, s.CharacterName, s.Origin, s.Backstory)

	entries := s.Entries
	if len(entries) > historyWindow {
		entries = entries[len(entries)-historyWindow:]
	}
	for _, e := range entries {
		label := "Narration"
		if e.Kind == models.EntryKindAction {
			label = "Player"
		}
		fmt.Fprintf(&b, "[%s] %s\n", label, e.Content)
	}

	fmt.Fprintf(&b, "\nThe player now does: %s\n\nContinue the story.", action)
	return b.String()
}
