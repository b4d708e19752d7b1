package user

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Datastore handles persistence operations for users.
// It performs only database operations and returns raw errors.
// Business logic and error translation belong in the Manager.
type Datastore struct {
	db *sql.DB
}

// NewDatastore creates a new user datastore.
func NewDatastore(db *sql.DB) *Datastore {
	return &Datastore{db: db}
}

const userColumns = "id, discord_id, display_name, avatar_url, bio, created_at, updated_at"

// Create inserts a new user. A fresh id is generated when none is set.
// A duplicate discord_id surfaces as a unique-constraint violation.
func (ds *Datastore) Create(ctx context.Context, u *User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	now := time.Now()

	query := `
		INSERT INTO users (id, discord_id, display_name, avatar_url, bio, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`

	return ds.db.QueryRowContext(ctx, query,
		u.ID, u.DiscordID, u.DisplayName, u.AvatarURL, u.Bio, now, now,
	).Scan(&u.CreatedAt, &u.UpdatedAt)
}

// GetByID retrieves a user by local id. Returns sql.ErrNoRows if not found.
func (ds *Datastore) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return ds.scanUser(ds.db.QueryRowContext(ctx, query, id))
}

// GetByDiscordID retrieves a user by Discord id. Returns sql.ErrNoRows if not found.
func (ds *Datastore) GetByDiscordID(ctx context.Context, discordID string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE discord_id = $1`
	return ds.scanUser(ds.db.QueryRowContext(ctx, query, discordID))
}

// UpdateProfile refreshes display name and avatar from a fetched Discord
// profile. Bio and discord_id are left untouched.
func (ds *Datastore) UpdateProfile(ctx context.Context, id uuid.UUID, displayName string, avatarURL *string) (int64, error) {
	query := `
		UPDATE users
		SET display_name = $2, avatar_url = $3, updated_at = NOW()
		WHERE id = $1`

	result, err := ds.db.ExecContext(ctx, query, id, displayName, avatarURL)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// Update applies a partial update; nil params keep the stored values.
func (ds *Datastore) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*User, error) {
	query := `
		UPDATE users
		SET
			display_name = COALESCE($2, display_name),
			avatar_url = COALESCE($3, avatar_url),
			bio = COALESCE($4, bio),
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns

	return ds.scanUser(ds.db.QueryRowContext(ctx, query,
		id, params.DisplayName, params.AvatarURL, params.Bio,
	))
}

// Delete removes a user. Tokens and memberships cascade in the database.
func (ds *Datastore) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	result, err := ds.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// List retrieves users ordered by creation time, newest first.
func (ds *Datastore) List(ctx context.Context, limit, offset int) ([]*User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	rows, err := ds.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	var users []*User
	for rows.Next() {
		u := &User{}
		if err := rows.Scan(
			&u.ID, &u.DiscordID, &u.DisplayName, &u.AvatarURL, &u.Bio, &u.CreatedAt, &u.UpdatedAt,
		); err != nil {
			return nil, err
		}
		users = append(users, u)
	}

	return users, rows.Err()
}

// Stats counts users and how many filled in a bio or have an avatar.
func (ds *Datastore) Stats(ctx context.Context) (*Stats, error) {
	query := `SELECT COUNT(*), COUNT(bio), COUNT(avatar_url) FROM users`

	stats := &Stats{}
	err := ds.db.QueryRowContext(ctx, query).Scan(
		&stats.TotalUsers, &stats.UsersWithBio, &stats.UsersWithAvatar,
	)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func (ds *Datastore) scanUser(row *sql.Row) (*User, error) {
	u := &User{}
	err := row.Scan(
		&u.ID, &u.DiscordID, &u.DisplayName, &u.AvatarURL, &u.Bio, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return u, nil
}
