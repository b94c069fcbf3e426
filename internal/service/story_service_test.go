package service

import (
	"context"
	"errors"
	"testing"

	"immortal-stories/internal/models"
	"immortal-stories/internal/session"
	"immortal-stories/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSyncer struct {
	saves  int
	nextID string
	err    error
}

func (f *fakeSyncer) Save(ctx context.Context, s *models.Story) (string, error) {
	f.saves++
	if f.err != nil {
		return "", f.err
	}
	if s.RemoteID != "" {
		return s.RemoteID, nil
	}
	return f.nextID, nil
}

type fakeNarrator struct {
	backstory    string
	scenario     string
	backstoryErr error
	continueErr  error
}

func (f *fakeNarrator) Backstory(ctx context.Context, world, characterName, origin string) (string, error) {
	return f.backstory, f.backstoryErr
}

func (f *fakeNarrator) Continue(ctx context.Context, s *models.Story, action string) (string, error) {
	return f.scenario, f.continueErr
}

type fixture struct {
	svc    *StoryService
	store  storage.StoryStore
	sess   *session.Manager
	syncer *fakeSyncer
}

func newFixture(t *testing.T, narrator Narrator) *fixture {
	t.Helper()
	blobs := storage.NewMemoryBlobstore()
	store := storage.NewStoryStore(blobs, zap.NewNop())
	sess := session.NewManager(blobs, zap.NewNop())
	syncer := &fakeSyncer{nextID: "gist-1"}
	return &fixture{
		svc:    NewStoryService(store, syncer, sess, narrator, zap.NewNop()),
		store:  store,
		sess:   sess,
		syncer: syncer,
	}
}

func (f *fixture) login(t *testing.T) {
	t.Helper()
	require.NoError(t, f.sess.Login(context.Background(), "gho_token", nil))
}

func TestCreateStory_SeedsAndSavesLocally(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	result, err := f.svc.CreateStory(ctx, "fantasy", "Kaelen", "wanderer", "", false)
	require.NoError(t, err)
	assert.Equal(t, SyncIdle, result.SyncStatus, "no credential means no sync attempt")
	require.Len(t, result.Story.Entries, 1)
	assert.Equal(t, models.EntryKindScenario, result.Story.Entries[0].Kind)

	saved, err := f.store.GetStory(ctx, "Kaelen", "fantasy")
	require.NoError(t, err)
	assert.Len(t, saved.Entries, 1)
	assert.Zero(t, f.syncer.saves)
}

func TestCreateStory_UnknownWorld(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.svc.CreateStory(context.Background(), "steampunk", "Kaelen", "", "", false)
	assert.ErrorIs(t, err, models.ErrUnknownWorld)
}

func TestCreateStory_ResumesExisting(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	first, err := f.svc.CreateStory(ctx, "fantasy", "Kaelen", "wanderer", "", false)
	require.NoError(t, err)
	_, err = f.svc.AppendAction(ctx, "Kaelen", "fantasy", "Open the door", false)
	require.NoError(t, err)

	resumed, err := f.svc.CreateStory(ctx, "fantasy", "Kaelen", "wanderer", "", false)
	require.NoError(t, err)
	assert.Len(t, resumed.Story.Entries, 2, "resuming must keep the existing entry log")
	assert.Equal(t, first.Story.Entries[0].ID, resumed.Story.Entries[0].ID)
}

func TestCreateStory_GeneratedBackstory(t *testing.T) {
	f := newFixture(t, &fakeNarrator{backstory: "Raised by cartographers."})

	result, err := f.svc.CreateStory(context.Background(), "fantasy", "Kaelen", "wanderer", "", true)
	require.NoError(t, err)
	assert.Equal(t, "Raised by cartographers.", result.Story.Backstory)
}

func TestCreateStory_BackstoryFailureDegrades(t *testing.T) {
	f := newFixture(t, &fakeNarrator{backstoryErr: errors.New("model offline")})

	result, err := f.svc.CreateStory(context.Background(), "fantasy", "Kaelen", "wanderer", "provided", true)
	require.NoError(t, err, "a generation failure must not fail the creation")
	assert.Equal(t, "provided", result.Story.Backstory)
}

func TestAppendAction_SyncStatusWhenAuthenticated(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.svc.CreateStory(ctx, "fantasy", "Kaelen", "wanderer", "", false)
	require.NoError(t, err)
	f.login(t)

	result, err := f.svc.AppendAction(ctx, "Kaelen", "fantasy", "Open the door", false)
	require.NoError(t, err)
	assert.Equal(t, SyncSynced, result.SyncStatus)
	assert.Equal(t, "gist-1", result.Story.RemoteID, "first successful sync writes the remote id back")

	// The write-back must be persisted, not only in-memory.
	saved, err := f.store.GetStory(ctx, "Kaelen", "fantasy")
	require.NoError(t, err)
	assert.Equal(t, "gist-1", saved.RemoteID)
}

func TestAppendAction_RemoteIDAssignedOnlyOnce(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.svc.CreateStory(ctx, "fantasy", "Kaelen", "wanderer", "", false)
	require.NoError(t, err)
	f.login(t)

	first, err := f.svc.AppendAction(ctx, "Kaelen", "fantasy", "Open the door", false)
	require.NoError(t, err)

	f.syncer.nextID = "gist-2"
	second, err := f.svc.AppendAction(ctx, "Kaelen", "fantasy", "Step inside", false)
	require.NoError(t, err)
	assert.Equal(t, first.Story.RemoteID, second.Story.RemoteID)
}

func TestAppendAction_SyncFailureDoesNotLoseLocalSave(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.svc.CreateStory(ctx, "fantasy", "Kaelen", "wanderer", "", false)
	require.NoError(t, err)
	f.login(t)
	f.syncer.err = errors.New("api unreachable")

	result, err := f.svc.AppendAction(ctx, "Kaelen", "fantasy", "Open the door", false)
	require.NoError(t, err)
	assert.Equal(t, SyncError, result.SyncStatus)
	assert.Contains(t, result.SyncError, "api unreachable")

	saved, err := f.store.GetStory(ctx, "Kaelen", "fantasy")
	require.NoError(t, err)
	assert.Len(t, saved.Entries, 2, "the local save must land even when the mirror fails")
}

func TestAppendAction_InFlightSyncReportsSyncing(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.svc.CreateStory(ctx, "fantasy", "Kaelen", "wanderer", "", false)
	require.NoError(t, err)
	f.login(t)
	f.syncer.err = models.ErrSyncInFlight

	result, err := f.svc.AppendAction(ctx, "Kaelen", "fantasy", "Open the door", false)
	require.NoError(t, err)
	assert.Equal(t, SyncSyncing, result.SyncStatus)
	assert.Empty(t, result.SyncError)
}

func TestAppendAction_EmptyText(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.svc.CreateStory(ctx, "fantasy", "Kaelen", "wanderer", "", false)
	require.NoError(t, err)

	_, err = f.svc.AppendAction(ctx, "Kaelen", "fantasy", "   ", false)
	assert.ErrorIs(t, err, models.ErrEmptyAction)
}

func TestAppendAction_NarrationAppendsScenario(t *testing.T) {
	f := newFixture(t, &fakeNarrator{scenario: "The hall beyond is dark."})
	ctx := context.Background()

	_, err := f.svc.CreateStory(ctx, "fantasy", "Kaelen", "wanderer", "", false)
	require.NoError(t, err)

	result, err := f.svc.AppendAction(ctx, "Kaelen", "fantasy", "Open the door", true)
	require.NoError(t, err)
	require.Len(t, result.Story.Entries, 3)
	assert.Equal(t, models.EntryKindAction, result.Story.Entries[1].Kind)
	assert.Equal(t, models.EntryKindScenario, result.Story.Entries[2].Kind)
	assert.Equal(t, "The hall beyond is dark.", result.Story.Entries[2].Content)
}

func TestAppendAction_NarrationFailureStillLandsAction(t *testing.T) {
	f := newFixture(t, &fakeNarrator{continueErr: models.ErrGenerationUnavailable})
	ctx := context.Background()

	_, err := f.svc.CreateStory(ctx, "fantasy", "Kaelen", "wanderer", "", false)
	require.NoError(t, err)

	result, err := f.svc.AppendAction(ctx, "Kaelen", "fantasy", "Open the door", true)
	require.NoError(t, err)
	assert.Len(t, result.Story.Entries, 2)
}

func TestGetStory_SeedsEmptyEntryLog(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	bare := &models.Story{World: "fantasy", CharacterName: "Kaelen"}
	require.NoError(t, f.store.SaveStory(ctx, bare))

	got, err := f.svc.GetStory(ctx, "Kaelen", "fantasy")
	require.NoError(t, err)
	require.Len(t, got.Entries, 1)
	assert.Equal(t, models.EntryKindScenario, got.Entries[0].Kind)
}

func TestGetStory_NotFound(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.svc.GetStory(context.Background(), "Nobody", "fantasy")
	assert.ErrorIs(t, err, models.ErrStoryNotFound)
}

func TestSyncStory_PropagatesErrors(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.svc.CreateStory(ctx, "fantasy", "Kaelen", "wanderer", "", false)
	require.NoError(t, err)
	f.syncer.err = models.ErrNotAuthenticated

	_, err = f.svc.SyncStory(ctx, "Kaelen", "fantasy")
	assert.ErrorIs(t, err, models.ErrNotAuthenticated)
}

func TestSyncStory_WritesBackRemoteID(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.svc.CreateStory(ctx, "fantasy", "Kaelen", "wanderer", "", false)
	require.NoError(t, err)

	result, err := f.svc.SyncStory(ctx, "Kaelen", "fantasy")
	require.NoError(t, err)
	assert.Equal(t, SyncSynced, result.SyncStatus)
	assert.Equal(t, "gist-1", result.Story.RemoteID)

	saved, err := f.store.GetStory(ctx, "Kaelen", "fantasy")
	require.NoError(t, err)
	assert.Equal(t, "gist-1", saved.RemoteID)
}

func TestDeleteStory_LocalOnly(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.svc.CreateStory(ctx, "fantasy", "Kaelen", "wanderer", "", false)
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteStory(ctx, "Kaelen", "fantasy"))
	_, err = f.store.GetStory(ctx, "Kaelen", "fantasy")
	assert.ErrorIs(t, err, models.ErrStoryNotFound)
	assert.Zero(t, f.syncer.saves, "local deletion must not touch the remote mirror")
}
