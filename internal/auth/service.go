// Package auth orchestrates the Discord OAuth2 callback flow:
// code exchange, profile fetch, identity upsert, and token storage.
package auth

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"orghub/internal/discord"
	"orghub/internal/token"
	"orghub/internal/user"
)

// Reason is a coarse-grained failure code, safe to expose in a redirect.
// Raw provider error bodies never leave this package.
type Reason string

const (
	ReasonExchangeFailed     Reason = "exchange_failed"
	ReasonProfileFetchFailed Reason = "profile_fetch_failed"
	ReasonUpsertFailed       Reason = "upsert_failed"
	ReasonTokenStoreFailed   Reason = "token_store_failed"

	// Reasons assigned by the HTTP layer before the flow starts.
	ReasonOAuthFailed Reason = "oauth_failed"
	ReasonMissingCode Reason = "missing_code"
)

// FlowError is a step failure carrying its redirect reason code.
type FlowError struct {
	Reason Reason
	Err    error
}

func (e *FlowError) Error() string {
	return fmt.Sprintf("callback flow failed (%s): %v", e.Reason, e.Err)
}

func (e *FlowError) Unwrap() error {
	return e.Err
}

// ReasonOf extracts the redirect reason from a flow error.
func ReasonOf(err error) Reason {
	if fe, ok := err.(*FlowError); ok {
		return fe.Reason
	}
	return ReasonOAuthFailed
}

// DiscordClient is the outbound surface the flow depends on.
type DiscordClient interface {
	ExchangeCode(ctx context.Context, code string) (*discord.TokenResponse, error)
	FetchUser(ctx context.Context, accessToken string) (*discord.Profile, error)
}

// Result is the terminal outcome of a successful callback.
type Result struct {
	UserID uuid.UUID
}

// Service sequences the callback flow for one inbound request.
type Service struct {
	discord    DiscordClient
	users      *user.Manager
	tokens     *token.Manager
	cdnBaseURL string
}

// NewService creates a callback flow service.
func NewService(dc DiscordClient, users *user.Manager, tokens *token.Manager, cdnBaseURL string) *Service {
	return &Service{
		discord:    dc,
		users:      users,
		tokens:     tokens,
		cdnBaseURL: cdnBaseURL,
	}
}

// HandleCallback runs the flow for one authorization code:
// exchange, fetch profile, upsert user, store token.
//
// Any step error terminates the flow with a *FlowError; no compensating
// rollback is performed, since nothing is persisted before the upsert.
// Authorization codes are single-use, so no step is ever retried.
func (s *Service) HandleCallback(ctx context.Context, code string) (*Result, error) {
	exchanged, err := s.discord.ExchangeCode(ctx, code)
	if err != nil {
		return nil, &FlowError{Reason: ReasonExchangeFailed, Err: err}
	}

	profile, err := s.discord.FetchUser(ctx, exchanged.AccessToken)
	if err != nil {
		return nil, &FlowError{Reason: ReasonProfileFetchFailed, Err: err}
	}

	u, err := s.users.UpsertFromDiscord(ctx, s.toUserProfile(profile))
	if err != nil {
		return nil, &FlowError{Reason: ReasonUpsertFailed, Err: err}
	}

	pair := token.Pair{
		AccessToken: exchanged.AccessToken,
		TokenType:   exchanged.TokenType,
		ExpiresIn:   exchanged.ExpiresIn,
	}
	if exchanged.RefreshToken != "" {
		pair.RefreshToken = &exchanged.RefreshToken
	}
	if exchanged.Scope != "" {
		pair.Scope = &exchanged.Scope
	}

	if _, err := s.tokens.Put(ctx, u.ID, pair); err != nil {
		return nil, &FlowError{Reason: ReasonTokenStoreFailed, Err: err}
	}

	return &Result{UserID: u.ID}, nil
}

func (s *Service) toUserProfile(p *discord.Profile) user.Profile {
	profile := user.Profile{
		DiscordID:   p.ID,
		DisplayName: p.DisplayName(),
	}
	if url := p.AvatarURL(s.cdnBaseURL); url != "" {
		profile.AvatarURL = &url
	}
	return profile
}
