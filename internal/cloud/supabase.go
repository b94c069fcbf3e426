// Package cloud mirrors stories to a Supabase project: a stories table keyed
// by (user_id, character_name, world) and a public_stories table gated by a
// moderation status.
package cloud

import (
	"context"
	"fmt"
	"sort"
	"time"

	"immortal-stories/internal/models"

	supa "github.com/supabase-community/supabase-go"
	"go.uber.org/zap"
)

// Moderation statuses of the public_stories table.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Client wraps the Supabase REST API. It is only constructed when a project
// URL and key are configured; handlers report cloud sync as disabled
// otherwise.
type Client struct {
	supaClient *supa.Client
	logger     *zap.Logger
}

// NewClient connects to the Supabase project.
func NewClient(url, anonKey string, logger *zap.Logger) (*Client, error) {
	supaClient, err := supa.NewClient(url, anonKey, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create supabase client: %w", err)
	}
	return &Client{
		supaClient: supaClient,
		logger:     logger.Named("SupabaseClient"),
	}, nil
}

// storyRow matches the stories table.
type storyRow struct {
	ID            string              `json:"id,omitempty"`
	UserID        string              `json:"user_id"`
	CharacterName string              `json:"character_name"`
	World         string              `json:"world"`
	Origin        string              `json:"origin"`
	Backstory     string              `json:"backstory"`
	Entries       []models.StoryEntry `json:"entries"`
	UpdatedAt     string              `json:"updated_at,omitempty"`
}

// publicStoryRow matches the public_stories table.
type publicStoryRow struct {
	ID            string              `json:"id,omitempty"`
	UserID        string              `json:"user_id"`
	CharacterName string              `json:"character_name"`
	World         string              `json:"world"`
	Origin        string              `json:"origin"`
	Backstory     string              `json:"backstory"`
	Entries       []models.StoryEntry `json:"entries"`
	Status        string              `json:"status"`
}

func rowFromStory(userID string, story *models.Story) storyRow {
	return storyRow{
		UserID:        userID,
		CharacterName: story.CharacterName,
		World:         story.World,
		Origin:        story.Origin,
		Backstory:     story.Backstory,
		Entries:       story.Entries,
		UpdatedAt:     time.Now().UTC().Format(time.RFC3339),
	}
}

func storyFromRow(row storyRow) models.Story {
	return models.Story{
		World:         row.World,
		CharacterName: row.CharacterName,
		Origin:        row.Origin,
		Backstory:     row.Backstory,
		Entries:       row.Entries,
	}
}

// SaveStory upserts the story row keyed by (user_id, character_name, world):
// update when a row exists, insert otherwise.
func (c *Client) SaveStory(ctx context.Context, userID string, story *models.Story) error {
	var existing []storyRow
	_, err := c.supaClient.From("stories").
		Select("id", "exact", false).
		Eq("user_id", userID).
		Eq("character_name", story.CharacterName).
		Eq("world", story.World).
		Limit(1, "").
		ExecuteTo(&existing)
	if err != nil {
		c.logger.Error("Failed to look up cloud story", zap.Error(err), zap.String("story", story.Key()))
		return fmt.Errorf("failed to look up cloud story: %w", err)
	}

	row := rowFromStory(userID, story)

	if len(existing) > 0 {
		var updated []storyRow
		_, err = c.supaClient.From("stories").
			Update(row, "", "").
			Eq("id", existing[0].ID).
			ExecuteTo(&updated)
		if err != nil {
			c.logger.Error("Failed to update cloud story", zap.Error(err), zap.String("story", story.Key()))
			return fmt.Errorf("failed to update cloud story: %w", err)
		}
		c.logger.Debug("Cloud story updated", zap.String("story", story.Key()), zap.String("rowID", existing[0].ID))
		return nil
	}

	var inserted []storyRow
	_, err = c.supaClient.From("stories").
		Insert(row, false, "", "", "").
		ExecuteTo(&inserted)
	if err != nil {
		c.logger.Error("Failed to insert cloud story", zap.Error(err), zap.String("story", story.Key()))
		return fmt.Errorf("failed to insert cloud story: %w", err)
	}
	c.logger.Debug("Cloud story inserted", zap.String("story", story.Key()))
	return nil
}

// ListStories returns the user's cloud stories, most recently updated first.
func (c *Client) ListStories(ctx context.Context, userID string) ([]models.Story, error) {
	var rows []storyRow
	_, err := c.supaClient.From("stories").
		Select("*", "exact", false).
		Eq("user_id", userID).
		ExecuteTo(&rows)
	if err != nil {
		c.logger.Error("Failed to list cloud stories", zap.Error(err), zap.String("userID", userID))
		return nil, fmt.Errorf("failed to list cloud stories: %w", err)
	}

	sort.Slice(rows, func(i, j int) bool {
		return rows[i].UpdatedAt > rows[j].UpdatedAt
	})

	stories := make([]models.Story, 0, len(rows))
	for _, row := range rows {
		stories = append(stories, storyFromRow(row))
	}
	return stories, nil
}

// Publish submits the story to the public gallery. New submissions start in
// the pending moderation state.
func (c *Client) Publish(ctx context.Context, userID string, story *models.Story) error {
	row := publicStoryRow{
		UserID:        userID,
		CharacterName: story.CharacterName,
		World:         story.World,
		Origin:        story.Origin,
		Backstory:     story.Backstory,
		Entries:       story.Entries,
		Status:        StatusPending,
	}

	var inserted []publicStoryRow
	_, err := c.supaClient.From("public_stories").
		Insert(row, false, "", "", "").
		ExecuteTo(&inserted)
	if err != nil {
		c.logger.Error("Failed to publish story", zap.Error(err), zap.String("story", story.Key()))
		return fmt.Errorf("failed to publish story: %w", err)
	}
	c.logger.Info("Story submitted for moderation", zap.String("story", story.Key()))
	return nil
}

// ListPublic returns approved public stories.
func (c *Client) ListPublic(ctx context.Context) ([]models.Story, error) {
	var rows []publicStoryRow
	_, err := c.supaClient.From("public_stories").
		Select("*", "exact", false).
		Eq("status", StatusApproved).
		ExecuteTo(&rows)
	if err != nil {
		c.logger.Error("Failed to list public stories", zap.Error(err))
		return nil, fmt.Errorf("failed to list public stories: %w", err)
	}

	stories := make([]models.Story, 0, len(rows))
	for _, row := range rows {
		stories = append(stories, models.Story{
			World:         row.World,
			CharacterName: row.CharacterName,
			Origin:        row.Origin,
			Backstory:     row.Backstory,
			Entries:       row.Entries,
		})
	}
	return stories, nil
}
