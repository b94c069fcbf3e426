package gist

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"immortal-stories/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type staticCreds struct {
	token string
}

func (s staticCreds) Credential() (string, bool) {
	return s.token, s.token != ""
}

// fakeGistAPI is a minimal in-memory stand-in for the gist endpoints the
// client touches.
type fakeGistAPI struct {
	mu       sync.Mutex
	gists    map[string]gistDocument
	nextID   int
	requests int
}

func newFakeGistAPI() *fakeGistAPI {
	return &fakeGistAPI{gists: make(map[string]gistDocument), nextID: 1}
}

func (f *fakeGistAPI) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.requests++

		if r.Header.Get("Authorization") == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/gists":
			var doc gistDocument
			_ = json.NewDecoder(r.Body).Decode(&doc)
			doc.ID = fmt.Sprintf("gist-%d", f.nextID)
			f.nextID++
			doc.HTMLURL = "https://gist.example/" + doc.ID
			f.gists[doc.ID] = doc
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(doc)

		case r.Method == http.MethodGet && r.URL.Path == "/gists":
			list := make([]gistDocument, 0, len(f.gists))
			for _, doc := range f.gists {
				list = append(list, doc)
			}
			_ = json.NewEncoder(w).Encode(list)

		case strings.HasPrefix(r.URL.Path, "/gists/"):
			id := strings.TrimPrefix(r.URL.Path, "/gists/")
			existing, ok := f.gists[id]
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			switch r.Method {
			case http.MethodGet:
				_ = json.NewEncoder(w).Encode(existing)
			case http.MethodPatch:
				var doc gistDocument
				_ = json.NewDecoder(r.Body).Decode(&doc)
				if doc.Files != nil {
					existing.Files = doc.Files
				}
				if doc.Description != "" {
					existing.Description = doc.Description
				}
				if doc.Public != nil {
					existing.Public = doc.Public
				}
				f.gists[id] = existing
				_ = json.NewEncoder(w).Encode(existing)
			case http.MethodDelete:
				delete(f.gists, id)
				w.WriteHeader(http.StatusNoContent)
			default:
				w.WriteHeader(http.StatusMethodNotAllowed)
			}

		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
}

func newTestClient(t *testing.T, api *fakeGistAPI, creds CredentialSource) *Client {
	t.Helper()
	srv := httptest.NewServer(api.handler())
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, creds, zap.NewNop())
}

func sampleStory() *models.Story {
	return &models.Story{
		World:         "fantasy",
		CharacterName: "Kaelen",
		Entries: []models.StoryEntry{
			{ID: "1", Kind: models.EntryKindScenario, Content: "It begins."},
		},
	}
}

func TestSave_CreateThenUpdateKeepsOneGist(t *testing.T) {
	api := newFakeGistAPI()
	client := newTestClient(t, api, staticCreds{token: "tok"})
	ctx := context.Background()

	story := sampleStory()
	id, err := client.Save(ctx, story)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	// Second save with the returned id must update in place, not create.
	story.RemoteID = id
	story.Entries = append(story.Entries, models.StoryEntry{ID: "2", Kind: models.EntryKindAction, Content: "Open the door"})
	id2, err := client.Save(ctx, story)
	require.NoError(t, err)
	assert.Equal(t, id, id2)
	assert.Len(t, api.gists, 1)
}

func TestSave_CreatesPrivateGist(t *testing.T) {
	api := newFakeGistAPI()
	client := newTestClient(t, api, staticCreds{token: "tok"})

	id, err := client.Save(context.Background(), sampleStory())
	require.NoError(t, err)

	doc := api.gists[id]
	require.NotNil(t, doc.Public)
	assert.False(t, *doc.Public)
	assert.True(t, strings.HasPrefix(doc.Description, DescriptionTag))
	assert.Contains(t, doc.Files, "Kaelen_fantasy.json")
}

func TestSave_UnauthenticatedFailsBeforeAnyRequest(t *testing.T) {
	api := newFakeGistAPI()
	client := newTestClient(t, api, staticCreds{})

	_, err := client.Save(context.Background(), sampleStory())
	assert.ErrorIs(t, err, models.ErrNotAuthenticated)
	assert.Zero(t, api.requests, "a logged-out save must not touch the network")
}

func TestSave_SecondConcurrentSaveForSameStoryIsRejected(t *testing.T) {
	client := NewClient("http://unused.invalid", staticCreds{token: "tok"}, zap.NewNop())

	story := sampleStory()
	require.True(t, client.begin(story.Key()))
	defer client.end(story.Key())

	_, err := client.Save(context.Background(), story)
	assert.ErrorIs(t, err, models.ErrSyncInFlight)
}

func TestSave_InFlightGuardReleasedAfterFailure(t *testing.T) {
	// No server behind this URL, so the save fails with a transport error.
	client := NewClient("http://127.0.0.1:0", staticCreds{token: "tok"}, zap.NewNop())
	story := sampleStory()

	_, err := client.Save(context.Background(), story)
	var syncErr *SyncError
	require.ErrorAs(t, err, &syncErr)
	assert.Equal(t, "save", syncErr.Op)

	// The key must be free again for the next attempt.
	assert.True(t, client.begin(story.Key()))
	client.end(story.Key())
}

func TestList_FiltersByDescriptionTagAndCountsSkipped(t *testing.T) {
	api := newFakeGistAPI()
	client := newTestClient(t, api, staticCreds{token: "tok"})
	ctx := context.Background()

	id, err := client.Save(ctx, sampleStory())
	require.NoError(t, err)

	// An unrelated gist and an unparseable tagged gist, planted directly.
	api.gists["other"] = gistDocument{
		ID:          "other",
		Description: "dotfiles",
		Files:       map[string]gistFile{"vimrc": {Content: "set nocompatible"}},
	}
	api.gists["broken"] = gistDocument{
		ID:          "broken",
		Description: DescriptionTag + " corrupted",
		Files:       map[string]gistFile{"x.json": {Content: "{not json"}},
	}

	stories, skipped, err := client.List(ctx)
	require.NoError(t, err)
	require.Len(t, stories, 1)
	assert.Equal(t, 1, skipped)
	assert.Equal(t, "Kaelen", stories[0].CharacterName)
	assert.Equal(t, id, stories[0].RemoteID)
}

func TestList_RefetchesWhenListPayloadHasNoContent(t *testing.T) {
	api := newFakeGistAPI()
	client := newTestClient(t, api, staticCreds{token: "tok"})
	ctx := context.Background()

	id, err := client.Save(ctx, sampleStory())
	require.NoError(t, err)

	// The real list endpoint omits file content; simulate that by wrapping the
	// handler so /gists returns documents with empty files.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet && r.URL.Path == "/gists" {
			doc := api.gists[id]
			stripped := gistDocument{ID: doc.ID, Description: doc.Description}
			_ = json.NewEncoder(w).Encode([]gistDocument{stripped})
			return
		}
		api.handler().ServeHTTP(w, r)
	}))
	defer srv.Close()

	thin := NewClient(srv.URL, staticCreds{token: "tok"}, zap.NewNop())
	stories, skipped, err := thin.List(ctx)
	require.NoError(t, err)
	require.Len(t, stories, 1)
	assert.Zero(t, skipped)
	assert.Equal(t, "Kaelen", stories[0].CharacterName)
}

func TestGet_UnknownIDReturnsNotFound(t *testing.T) {
	api := newFakeGistAPI()
	client := newTestClient(t, api, staticCreds{token: "tok"})

	_, err := client.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, models.ErrRemoteNotFound)
}

func TestDelete_RemovesGistAndPropagatesNotFound(t *testing.T) {
	api := newFakeGistAPI()
	client := newTestClient(t, api, staticCreds{token: "tok"})
	ctx := context.Background()

	id, err := client.Save(ctx, sampleStory())
	require.NoError(t, err)

	require.NoError(t, client.Delete(ctx, id))
	assert.Empty(t, api.gists)

	err = client.Delete(ctx, id)
	assert.ErrorIs(t, err, models.ErrRemoteNotFound)
}

func TestMakePublic_ReturnsShareableURL(t *testing.T) {
	api := newFakeGistAPI()
	client := newTestClient(t, api, staticCreds{token: "tok"})
	ctx := context.Background()

	id, err := client.Save(ctx, sampleStory())
	require.NoError(t, err)

	url, err := client.MakePublic(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "https://gist.example/"+id, url)

	doc := api.gists[id]
	require.NotNil(t, doc.Public)
	assert.True(t, *doc.Public)
}
