// Package github exchanges OAuth authorization codes for access tokens and
// fetches the minimal user profile tied to a token.
package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"immortal-stories/internal/models"

	"go.uber.org/zap"
)

const defaultTimeout = 15 * time.Second

// OAuthClient performs the server-side half of the GitHub OAuth flow. The
// browser redirect happens outside this service; it only sees the code.
type OAuthClient struct {
	oauthBaseURL string
	apiBaseURL   string
	clientID     string
	clientSecret string
	httpClient   *http.Client
	logger       *zap.Logger
}

// NewOAuthClient creates an OAuth exchange client. oauthBaseURL is the OAuth
// host ("https://github.com"), apiBaseURL the REST API host
// ("https://api.github.com").
func NewOAuthClient(oauthBaseURL, apiBaseURL, clientID, clientSecret string, logger *zap.Logger) *OAuthClient {
	return &OAuthClient{
		oauthBaseURL: strings.TrimSuffix(oauthBaseURL, "/"),
		apiBaseURL:   strings.TrimSuffix(apiBaseURL, "/"),
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger: logger.Named("GitHubOAuth"),
	}
}

type tokenResponse struct {
	AccessToken      string `json:"access_token"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// Exchange trades an authorization code for an access token and fetches the
// user profile behind it. The profile fetch is best-effort: its failure does
// not invalidate the token.
func (c *OAuthClient) Exchange(ctx context.Context, code string) (string, *models.User, error) {
	if code == "" {
		return "", nil, fmt.Errorf("authorization code is required")
	}

	payload, err := json.Marshal(map[string]string{
		"client_id":     c.clientID,
		"client_secret": c.clientSecret,
		"code":          code,
	})
	if err != nil {
		return "", nil, fmt.Errorf("failed to marshal token request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.oauthBaseURL+"/login/oauth/access_token", bytes.NewReader(payload))
	if err != nil {
		return "", nil, fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Token exchange request failed", zap.Error(err))
		return "", nil, fmt.Errorf("token exchange request failed: %w", err)
	}
	defer resp.Body.Close()

	var tokenResp tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", nil, fmt.Errorf("failed to decode token response: %w", err)
	}
	if tokenResp.Error != "" {
		msg := tokenResp.ErrorDescription
		if msg == "" {
			msg = tokenResp.Error
		}
		c.logger.Warn("Token exchange rejected", zap.String("error", tokenResp.Error))
		return "", nil, fmt.Errorf("token exchange rejected: %s", msg)
	}
	if tokenResp.AccessToken == "" {
		return "", nil, fmt.Errorf("token exchange returned no access token (status %d)", resp.StatusCode)
	}

	user, err := c.FetchUser(ctx, tokenResp.AccessToken)
	if err != nil {
		c.logger.Warn("Profile fetch after token exchange failed, keeping credential", zap.Error(err))
		return tokenResp.AccessToken, nil, nil
	}
	return tokenResp.AccessToken, user, nil
}

// FetchUser returns the profile of the token's owner.
func (c *OAuthClient) FetchUser(ctx context.Context, token string) (*models.User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiBaseURL+"/user", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create user request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("user request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("user endpoint returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(payload)))
	}

	var user models.User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("failed to decode user response: %w", err)
	}
	return &user, nil
}
