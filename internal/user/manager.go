package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// Domain errors returned by the Manager.
var (
	ErrNotFound         = errors.New("user not found")
	ErrInvalidProfile   = errors.New("discord profile is missing required fields")
	ErrDuplicateDiscord = errors.New("user with this discord id already exists")
	ErrUpsert           = errors.New("failed to upsert user from discord profile")
)

const pgUniqueViolation = "23505"

// Manager handles business logic for users.
// It coordinates operations and translates datastore errors to domain errors.
type Manager struct {
	ds *Datastore
}

// NewManager creates a new user manager.
func NewManager(ds *Datastore) *Manager {
	return &Manager{ds: ds}
}

// UpsertFromDiscord reconciles a fetched Discord profile with the local
// users table and returns the surviving record.
//
// The lookup-then-insert is racy for simultaneous first-time logins by the
// same Discord account; the unique constraint on discord_id arbitrates.
// A unique violation on the insert means another request created the row,
// so the losing insert is retried as an update exactly once. Any further
// failure surfaces as ErrUpsert.
func (m *Manager) UpsertFromDiscord(ctx context.Context, profile Profile) (*User, error) {
	if strings.TrimSpace(profile.DiscordID) == "" || strings.TrimSpace(profile.DisplayName) == "" {
		return nil, ErrInvalidProfile
	}

	existing, err := m.ds.GetByDiscordID(ctx, profile.DiscordID)
	if err == nil {
		return m.refreshProfile(ctx, existing, profile)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %v", ErrUpsert, err)
	}

	u := &User{
		DiscordID:   profile.DiscordID,
		DisplayName: profile.DisplayName,
		AvatarURL:   profile.AvatarURL,
	}
	err = m.ds.Create(ctx, u)
	if err == nil {
		return u, nil
	}

	if !isUniqueViolation(err) {
		return nil, fmt.Errorf("%w: %v", ErrUpsert, err)
	}

	// A concurrent login won the insert; fall back to updating its row.
	existing, err = m.ds.GetByDiscordID(ctx, profile.DiscordID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpsert, err)
	}
	return m.refreshProfile(ctx, existing, profile)
}

func (m *Manager) refreshProfile(ctx context.Context, existing *User, profile Profile) (*User, error) {
	rowsAffected, err := m.ds.UpdateProfile(ctx, existing.ID, profile.DisplayName, profile.AvatarURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpsert, err)
	}
	if rowsAffected == 0 {
		return nil, fmt.Errorf("%w: user row disappeared during update", ErrUpsert)
	}

	existing.DisplayName = profile.DisplayName
	existing.AvatarURL = profile.AvatarURL
	return existing, nil
}

// Create creates a user directly (CRUD surface, not the login flow).
func (m *Manager) Create(ctx context.Context, u *User) error {
	if strings.TrimSpace(u.DiscordID) == "" || strings.TrimSpace(u.DisplayName) == "" {
		return ErrInvalidProfile
	}

	if err := m.ds.Create(ctx, u); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateDiscord
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by local id.
func (m *Manager) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	u, err := m.ds.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

// GetByDiscordID retrieves a user by Discord id.
func (m *Manager) GetByDiscordID(ctx context.Context, discordID string) (*User, error) {
	u, err := m.ds.GetByDiscordID(ctx, discordID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

// Update applies a partial update to a user.
func (m *Manager) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*User, error) {
	u, err := m.ds.Update(ctx, id, params)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return u, nil
}

// Delete removes a user and, by cascade, its token and memberships.
func (m *Manager) Delete(ctx context.Context, id uuid.UUID) error {
	rowsAffected, err := m.ds.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// List retrieves users with pagination. Limit is capped at 100.
func (m *Manager) List(ctx context.Context, limit, offset int) ([]*User, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	users, err := m.ds.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// Stats returns aggregate counts for the users table.
func (m *Manager) Stats(ctx context.Context) (*Stats, error) {
	stats, err := m.ds.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get user stats: %w", err)
	}
	return stats, nil
}

// isUniqueViolation reports whether err is a PostgreSQL unique-constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
