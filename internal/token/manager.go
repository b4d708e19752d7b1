package token

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Domain errors returned by the Manager.
var (
	ErrNotFound     = errors.New("no token found for user")
	ErrInvalidToken = errors.New("access token is required")
	ErrStore        = errors.New("failed to store token")
)

// Manager handles business logic for the Discord token store.
type Manager struct {
	ds *Datastore
}

// NewManager creates a new token manager.
func NewManager(ds *Datastore) *Manager {
	return &Manager{ds: ds}
}

// Put stores a token pair for a user, overwriting any existing row.
// The absolute expiry is computed from the exchange's relative expires-in;
// a zero or negative expires-in means the token never expires.
func (m *Manager) Put(ctx context.Context, userID uuid.UUID, pair Pair) (*Token, error) {
	if pair.AccessToken == "" {
		return nil, ErrInvalidToken
	}

	tokenType := pair.TokenType
	if tokenType == "" {
		tokenType = "Bearer"
	}

	var expiresAt *time.Time
	if pair.ExpiresIn > 0 {
		t := time.Now().Add(time.Duration(pair.ExpiresIn) * time.Second)
		expiresAt = &t
	}

	tok := &Token{
		UserID:       userID,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    tokenType,
		Scope:        pair.Scope,
		ExpiresAt:    expiresAt,
	}

	if err := m.ds.Upsert(ctx, tok); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStore, err)
	}
	return tok, nil
}

// Get retrieves the stored token for a user.
func (m *Manager) Get(ctx context.Context, userID uuid.UUID) (*Token, error) {
	tok, err := m.ds.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get token: %w", err)
	}
	return tok, nil
}

// Verify checks token validity locally, without contacting Discord.
// A token is valid when a row exists and its expiry is absent or in the future.
func (m *Manager) Verify(ctx context.Context, userID uuid.UUID) (*Verification, error) {
	tok, err := m.ds.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &Verification{UserID: userID}, nil
		}
		return nil, fmt.Errorf("failed to verify token: %w", err)
	}

	expired := tok.ExpiresAt != nil && !tok.ExpiresAt.After(time.Now())
	return &Verification{
		UserID:    userID,
		HasToken:  true,
		IsExpired: expired,
		ExpiresAt: tok.ExpiresAt,
	}, nil
}

// Update applies a partial update to a user's stored token.
func (m *Manager) Update(ctx context.Context, userID uuid.UUID, params UpdateParams) (*Token, error) {
	tok, err := m.ds.Update(ctx, userID, params)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update token: %w", err)
	}
	return tok, nil
}

// Delete removes the stored token for a user.
func (m *Manager) Delete(ctx context.Context, userID uuid.UUID) error {
	rowsAffected, err := m.ds.DeleteByUserID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Cleanup deletes every token whose expiry is in the past and returns the
// count removed. Idempotent: a second sweep with nothing expired removes zero.
func (m *Manager) Cleanup(ctx context.Context) (int64, error) {
	deleted, err := m.ds.DeleteExpired(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup expired tokens: %w", err)
	}
	return deleted, nil
}
