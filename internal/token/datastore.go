package token

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Datastore handles persistence operations for Discord tokens.
// It performs only database operations and returns raw errors.
type Datastore struct {
	db *sql.DB
}

// NewDatastore creates a new token datastore.
func NewDatastore(db *sql.DB) *Datastore {
	return &Datastore{db: db}
}

const tokenColumns = "id, user_id, access_token, refresh_token, token_type, scope, expires_at, created_at, updated_at"

// Upsert stores a token for a user, replacing any existing row.
// The per-user uniqueness constraint makes this last-writer-wins.
func (ds *Datastore) Upsert(ctx context.Context, tok *Token) error {
	if tok.ID == uuid.Nil {
		tok.ID = uuid.New()
	}
	now := time.Now()

	query := `
		INSERT INTO discord_tokens (id, user_id, access_token, refresh_token, token_type, scope, expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (user_id)
		DO UPDATE SET
			access_token = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			token_type = EXCLUDED.token_type,
			scope = EXCLUDED.scope,
			expires_at = EXCLUDED.expires_at,
			updated_at = NOW()
		RETURNING id, created_at, updated_at`

	return ds.db.QueryRowContext(ctx, query,
		tok.ID, tok.UserID, tok.AccessToken, tok.RefreshToken,
		tok.TokenType, tok.Scope, tok.ExpiresAt, now, now,
	).Scan(&tok.ID, &tok.CreatedAt, &tok.UpdatedAt)
}

// GetByUserID retrieves the token for a user. Returns sql.ErrNoRows if absent.
func (ds *Datastore) GetByUserID(ctx context.Context, userID uuid.UUID) (*Token, error) {
	query := `SELECT ` + tokenColumns + ` FROM discord_tokens WHERE user_id = $1`
	return ds.scanToken(ds.db.QueryRowContext(ctx, query, userID))
}

// Update applies a partial update; nil params keep the stored values.
func (ds *Datastore) Update(ctx context.Context, userID uuid.UUID, params UpdateParams) (*Token, error) {
	query := `
		UPDATE discord_tokens
		SET
			access_token = COALESCE($2, access_token),
			refresh_token = COALESCE($3, refresh_token),
			token_type = COALESCE($4, token_type),
			scope = COALESCE($5, scope),
			expires_at = COALESCE($6, expires_at),
			updated_at = NOW()
		WHERE user_id = $1
		RETURNING ` + tokenColumns

	return ds.scanToken(ds.db.QueryRowContext(ctx, query,
		userID, params.AccessToken, params.RefreshToken, params.TokenType, params.Scope, params.ExpiresAt,
	))
}

// DeleteByUserID removes the token row for a user.
func (ds *Datastore) DeleteByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	result, err := ds.db.ExecContext(ctx, `DELETE FROM discord_tokens WHERE user_id = $1`, userID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// DeleteExpired removes every token whose expiry is strictly in the past.
// Rows without an expiry are never touched.
func (ds *Datastore) DeleteExpired(ctx context.Context) (int64, error) {
	query := `DELETE FROM discord_tokens WHERE expires_at IS NOT NULL AND expires_at < NOW()`

	result, err := ds.db.ExecContext(ctx, query)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (ds *Datastore) scanToken(row *sql.Row) (*Token, error) {
	tok := &Token{}
	err := row.Scan(
		&tok.ID, &tok.UserID, &tok.AccessToken, &tok.RefreshToken,
		&tok.TokenType, &tok.Scope, &tok.ExpiresAt, &tok.CreatedAt, &tok.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return tok, nil
}
