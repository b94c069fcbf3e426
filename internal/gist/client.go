// Package gist mirrors stories to the GitHub Gist API: one story maps to one
// gist holding a single JSON file, discovered by a fixed description prefix.
package gist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"immortal-stories/internal/models"

	"go.uber.org/zap"
)

// DescriptionTag marks this application's gists among everything else the
// account owns. The description is the only discovery mechanism; there is no
// structured metadata field on a gist.
const DescriptionTag = "Immortal Stories:"

const defaultTimeout = 30 * time.Second

// CredentialSource provides the bearer credential that gates every remote
// call. The session manager implements it.
type CredentialSource interface {
	Credential() (string, bool)
}

// SyncError wraps a failed remote operation with its underlying cause.
// There is no automatic retry: every call is at most one attempt.
type SyncError struct {
	Op  string
	Err error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("gist %s failed: %v", e.Op, e.Err)
}

func (e *SyncError) Unwrap() error {
	return e.Err
}

// Client talks to the gist API. A keyed in-flight set guarantees at most one
// concurrent remote write per story; a second Save for the same story while
// one is running returns models.ErrSyncInFlight instead of issuing a
// duplicate write.
type Client struct {
	baseURL    string
	httpClient *http.Client
	creds      CredentialSource
	logger     *zap.Logger

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// NewClient creates a gist sync client. baseURL is the API root
// (e.g. "https://api.github.com").
func NewClient(baseURL string, creds CredentialSource, logger *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		creds:    creds,
		logger:   logger.Named("GistClient"),
		inFlight: make(map[string]struct{}),
	}
}

// gistFile and gistDocument mirror the wire shape of the gist API.
type gistFile struct {
	Content string `json:"content"`
}

type gistDocument struct {
	ID          string              `json:"id,omitempty"`
	Description string              `json:"description,omitempty"`
	Public      *bool               `json:"public,omitempty"`
	HTMLURL     string              `json:"html_url,omitempty"`
	Files       map[string]gistFile `json:"files,omitempty"`
}

func description(story *models.Story) string {
	return fmt.Sprintf("%s %s in %s", DescriptionTag, story.CharacterName, story.World)
}

func filename(story *models.Story) string {
	return fmt.Sprintf("%s_%s.json", story.CharacterName, story.World)
}

func (c *Client) begin(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, running := c.inFlight[key]; running {
		return false
	}
	c.inFlight[key] = struct{}{}
	return true
}

func (c *Client) end(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inFlight, key)
}

// Save pushes the story to the remote store. When the story has no RemoteID a
// new private gist is created; otherwise the existing gist is updated. The
// returned id is reused by the caller for all subsequent saves.
func (c *Client) Save(ctx context.Context, story *models.Story) (string, error) {
	token, ok := c.creds.Credential()
	if !ok {
		return "", models.ErrNotAuthenticated
	}

	key := story.Key()
	if !c.begin(key) {
		return "", models.ErrSyncInFlight
	}
	defer c.end(key)

	content, err := json.MarshalIndent(story, "", "  ")
	if err != nil {
		return "", &SyncError{Op: "save", Err: fmt.Errorf("failed to encode story: %w", err)}
	}

	private := false
	body := gistDocument{
		Description: description(story),
		Public:      &private,
		Files: map[string]gistFile{
			filename(story): {Content: string(content)},
		},
	}

	var result gistDocument
	if story.RemoteID == "" {
		err = c.do(ctx, token, http.MethodPost, "/gists", &body, &result)
	} else {
		err = c.do(ctx, token, http.MethodPatch, "/gists/"+story.RemoteID, &body, &result)
	}
	if err != nil {
		c.logger.Warn("Gist save failed",
			zap.Error(err),
			zap.String("story", key),
			zap.String("remoteID", story.RemoteID),
		)
		return "", &SyncError{Op: "save", Err: err}
	}

	c.logger.Debug("Story synced to gist",
		zap.String("story", key),
		zap.String("gistID", result.ID),
		zap.Bool("created", story.RemoteID == ""),
	)
	return result.ID, nil
}

// List fetches the caller's gists, keeps only those carrying the recognized
// description tag, and parses each body back into a story with its gist id
// attached. Documents that fail to fetch or parse are skipped, not surfaced
// as a partial error; the skipped count is returned so the caller can log it.
func (c *Client) List(ctx context.Context) ([]models.Story, int, error) {
	token, ok := c.creds.Credential()
	if !ok {
		return nil, 0, models.ErrNotAuthenticated
	}

	var docs []gistDocument
	if err := c.do(ctx, token, http.MethodGet, "/gists", nil, &docs); err != nil {
		return nil, 0, &SyncError{Op: "list", Err: err}
	}

	stories := make([]models.Story, 0, len(docs))
	skipped := 0
	for _, doc := range docs {
		if !strings.HasPrefix(doc.Description, DescriptionTag) {
			continue
		}
		story, err := c.fetchStory(ctx, token, doc)
		if err != nil {
			skipped++
			c.logger.Warn("Skipping unparseable gist during list",
				zap.Error(err),
				zap.String("gistID", doc.ID),
			)
			continue
		}
		stories = append(stories, *story)
	}

	if skipped > 0 {
		c.logger.Info("Gist list completed with skipped documents",
			zap.Int("returned", len(stories)),
			zap.Int("skipped", skipped),
		)
	}
	return stories, skipped, nil
}

// fetchStory extracts the story body from a gist document, re-fetching the
// gist by id when the list payload carries no file content.
func (c *Client) fetchStory(ctx context.Context, token string, doc gistDocument) (*models.Story, error) {
	var content string
	for _, f := range doc.Files {
		if f.Content != "" {
			content = f.Content
			break
		}
	}
	if content == "" {
		var full gistDocument
		if err := c.do(ctx, token, http.MethodGet, "/gists/"+doc.ID, nil, &full); err != nil {
			return nil, err
		}
		for _, f := range full.Files {
			if f.Content != "" {
				content = f.Content
				break
			}
		}
	}
	if content == "" {
		return nil, fmt.Errorf("gist %s has no file content", doc.ID)
	}

	var story models.Story
	if err := json.Unmarshal([]byte(content), &story); err != nil {
		return nil, fmt.Errorf("failed to parse story body of gist %s: %w", doc.ID, err)
	}
	story.RemoteID = doc.ID
	return &story, nil
}

// Get fetches one story by its gist id. A missing id or an unparseable body
// returns models.ErrRemoteNotFound.
func (c *Client) Get(ctx context.Context, remoteID string) (*models.Story, error) {
	token, ok := c.creds.Credential()
	if !ok {
		return nil, models.ErrNotAuthenticated
	}

	var doc gistDocument
	if err := c.do(ctx, token, http.MethodGet, "/gists/"+remoteID, nil, &doc); err != nil {
		if errors.Is(err, models.ErrRemoteNotFound) {
			return nil, models.ErrRemoteNotFound
		}
		return nil, &SyncError{Op: "get", Err: err}
	}

	var content string
	for _, f := range doc.Files {
		if f.Content != "" {
			content = f.Content
			break
		}
	}
	if content == "" {
		return nil, models.ErrRemoteNotFound
	}

	var story models.Story
	if err := json.Unmarshal([]byte(content), &story); err != nil {
		c.logger.Warn("Gist body is not a parseable story", zap.Error(err), zap.String("gistID", remoteID))
		return nil, models.ErrRemoteNotFound
	}
	story.RemoteID = doc.ID
	return &story, nil
}

// Delete removes the remote document. Unlike local saves, errors propagate to
// the caller.
func (c *Client) Delete(ctx context.Context, remoteID string) error {
	token, ok := c.creds.Credential()
	if !ok {
		return models.ErrNotAuthenticated
	}
	if err := c.do(ctx, token, http.MethodDelete, "/gists/"+remoteID, nil, nil); err != nil {
		if errors.Is(err, models.ErrRemoteNotFound) {
			return models.ErrRemoteNotFound
		}
		return &SyncError{Op: "delete", Err: err}
	}
	c.logger.Info("Gist deleted", zap.String("gistID", remoteID))
	return nil
}

// MakePublic flips the gist to public visibility and returns its shareable URL.
func (c *Client) MakePublic(ctx context.Context, remoteID string) (string, error) {
	token, ok := c.creds.Credential()
	if !ok {
		return "", models.ErrNotAuthenticated
	}

	public := true
	body := gistDocument{Public: &public}
	var result gistDocument
	if err := c.do(ctx, token, http.MethodPatch, "/gists/"+remoteID, &body, &result); err != nil {
		if errors.Is(err, models.ErrRemoteNotFound) {
			return "", models.ErrRemoteNotFound
		}
		return "", &SyncError{Op: "makePublic", Err: err}
	}

	c.logger.Info("Gist made public", zap.String("gistID", remoteID), zap.String("url", result.HTMLURL))
	return result.HTMLURL, nil
}

// do performs a single request against the gist API. One attempt per call,
// no retry and no backoff beyond the transport timeout.
func (c *Client) do(ctx context.Context, token, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", method, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request to gist API failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return models.ErrRemoteNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("gist API returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(payload)))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode gist API response: %w", err)
		}
	}
	return nil
}
