// Package discord provides clients for the Discord OAuth2 token endpoint
// and the Discord user API.
package discord

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"orghub/internal/config"
)

// Sentinel errors for the two outbound calls. Callers treat either as
// terminal for the login flow; authorization codes are single-use and
// must never be retried.
var (
	ErrExchangeFailed     = errors.New("discord token exchange failed")
	ErrProfileFetchFailed = errors.New("discord profile fetch failed")
)

const defaultHTTPTimeout = 10 * time.Second

// TokenResponse is the result of exchanging an authorization code.
type TokenResponse struct {
	AccessToken  string
	TokenType    string
	RefreshToken string // empty when Discord did not return one
	Scope        string // empty when Discord did not return one
	ExpiresIn    int64  // seconds until expiry; zero means non-expiring
}

// Profile is the remote Discord user profile.
type Profile struct {
	ID         string // stable Discord-assigned id
	Username   string
	GlobalName string // preferred display name, may be empty
	AvatarHash string // may be empty
}

// DisplayName returns the global name when present, falling back to the username.
func (p Profile) DisplayName() string {
	if p.GlobalName != "" {
		return p.GlobalName
	}
	return p.Username
}

// AvatarURL builds the CDN avatar URL, or "" when the profile has no avatar.
// No placeholder is fabricated for avatar-less users.
func (p Profile) AvatarURL(cdnBaseURL string) string {
	if p.AvatarHash == "" {
		return ""
	}
	return fmt.Sprintf("%s/avatars/%s/%s.png", cdnBaseURL, p.ID, p.AvatarHash)
}

// Client talks to Discord's OAuth2 and user endpoints.
type Client struct {
	cfg        config.DiscordConfig
	oauth      *oauth2.Config
	httpClient *http.Client
}

// NewClient creates a Discord client from the application configuration.
func NewClient(cfg config.DiscordConfig) *Client {
	return &Client{
		cfg: cfg,
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Endpoint: oauth2.Endpoint{
				TokenURL:  cfg.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
	}
}

// ExchangeCode exchanges an authorization code for a token pair.
// Returns ErrExchangeFailed when Discord rejects the code or the response
// body cannot be parsed.
func (c *Client) ExchangeCode(ctx context.Context, code string) (*TokenResponse, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)

	tok, err := c.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExchangeFailed, err)
	}
	if tok.AccessToken == "" {
		return nil, fmt.Errorf("%w: no access token in response", ErrExchangeFailed)
	}

	resp := &TokenResponse{
		AccessToken:  tok.AccessToken,
		TokenType:    tok.TokenType,
		RefreshToken: tok.RefreshToken,
	}
	if scope, ok := tok.Extra("scope").(string); ok {
		resp.Scope = scope
	}
	if expiresIn, ok := tok.Extra("expires_in").(float64); ok {
		resp.ExpiresIn = int64(expiresIn)
	}

	return resp, nil
}

// FetchUser retrieves the current user's profile with a bearer access token.
// Returns ErrProfileFetchFailed on a non-success status or malformed body.
func (c *Client) FetchUser(ctx context.Context, accessToken string) (*Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.APIBaseURL+"/users/@me", nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProfileFetchFailed, err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProfileFetchFailed, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d", ErrProfileFetchFailed, resp.StatusCode)
	}

	var body struct {
		ID         string  `json:"id"`
		Username   string  `json:"username"`
		GlobalName *string `json:"global_name"`
		Avatar     *string `json:"avatar"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProfileFetchFailed, err)
	}
	if body.ID == "" {
		return nil, fmt.Errorf("%w: no user id in response", ErrProfileFetchFailed)
	}

	profile := &Profile{
		ID:       body.ID,
		Username: body.Username,
	}
	if body.GlobalName != nil {
		profile.GlobalName = *body.GlobalName
	}
	if body.Avatar != nil {
		profile.AvatarHash = *body.Avatar
	}

	return profile, nil
}
