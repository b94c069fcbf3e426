package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"immortal-stories/internal/models"
	"immortal-stories/internal/storage"

	"go.uber.org/zap"
)

// Blob keys the credential and profile are persisted under.
const (
	tokenKey = "github_access_token"
	userKey  = "github_user"
)

// Manager holds the access credential and user profile for the lifetime of
// the process. It is constructed explicitly and injected into every component
// that gates on authentication; there is no package-level singleton.
//
// Invariant: the profile is never present without the credential. Logout
// clears both together.
type Manager struct {
	blobs  storage.Blobstore
	logger *zap.Logger

	mu    sync.RWMutex
	token string
	user  *models.User
}

// NewManager creates a logged-out session manager. Call Load once at startup
// to restore a persisted session.
func NewManager(blobs storage.Blobstore, logger *zap.Logger) *Manager {
	return &Manager{
		blobs:  blobs,
		logger: logger.Named("Session"),
	}
}

// Load restores the credential and profile from storage. Absent or corrupt
// state reads as logged-out; it never fails the caller.
func (m *Manager) Load(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tokenData, err := m.blobs.Get(ctx, tokenKey)
	if err != nil {
		if !errors.Is(err, storage.ErrKeyNotFound) {
			m.logger.Warn("Failed to load session token, starting logged out", zap.Error(err))
		}
		return
	}
	m.token = string(tokenData)

	userData, err := m.blobs.Get(ctx, userKey)
	if err != nil {
		if !errors.Is(err, storage.ErrKeyNotFound) {
			m.logger.Warn("Failed to load session profile", zap.Error(err))
		}
		m.logger.Info("Session restored without profile")
		return
	}

	var user models.User
	if err := json.Unmarshal(userData, &user); err != nil {
		m.logger.Warn("Stored session profile is corrupt, dropping it", zap.Error(err))
		return
	}
	m.user = &user
	m.logger.Info("Session restored", zap.String("login", user.Login))
}

// IsAuthenticated reports whether a credential is currently held.
func (m *Manager) IsAuthenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token != ""
}

// Credential returns the held access token, and whether one is present.
func (m *Manager) Credential() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token, m.token != ""
}

// User returns the held profile. It is nil when logged out and may be nil
// while logged in if the profile fetch failed.
func (m *Manager) User() *models.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.user
}

// Login stores the credential and, best-effort, the profile. The credential
// is authoritative: a failure to persist the profile does not fail the login.
func (m *Manager) Login(ctx context.Context, token string, user *models.User) error {
	if token == "" {
		return fmt.Errorf("login requires a non-empty access token")
	}

	m.mu.Lock()
	m.token = token
	m.user = user
	m.mu.Unlock()

	if err := m.blobs.Set(ctx, tokenKey, []byte(token)); err != nil {
		return fmt.Errorf("failed to persist session token: %w", err)
	}

	if user != nil {
		data, err := json.Marshal(user)
		if err == nil {
			err = m.blobs.Set(ctx, userKey, data)
		}
		if err != nil {
			m.logger.Warn("Failed to persist session profile", zap.Error(err), zap.String("login", user.Login))
		}
	}

	m.logger.Info("Session logged in", zap.Bool("hasProfile", user != nil))
	return nil
}

// Logout clears the credential and profile from memory and storage. Memory
// state is cleared first so the session observably drops both together even
// if a storage delete fails.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	m.token = ""
	m.user = nil
	m.mu.Unlock()

	tokenErr := m.blobs.Delete(ctx, tokenKey)
	userErr := m.blobs.Delete(ctx, userKey)
	if tokenErr != nil || userErr != nil {
		return fmt.Errorf("failed to clear persisted session: %w", errors.Join(tokenErr, userErr))
	}

	m.logger.Info("Session logged out")
	return nil
}
