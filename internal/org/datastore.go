package org

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Datastore handles persistence operations for organizations.
// It performs only database operations and returns raw errors.
// Business logic and error translation belong in the Manager.
type Datastore struct {
	db *sql.DB
}

// NewDatastore creates a new organization datastore.
func NewDatastore(db *sql.DB) *Datastore {
	return &Datastore{db: db}
}

const orgColumns = "id, owner_id, name, avatar_url, description, created_at, updated_at"

// Create inserts a new organization into the database.
func (ds *Datastore) Create(ctx context.Context, o *Org) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	now := time.Now()

	query := `
		INSERT INTO organizations (id, owner_id, name, avatar_url, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`

	return ds.db.QueryRowContext(ctx, query,
		o.ID, o.OwnerID, o.Name, o.AvatarURL, o.Description, now, now,
	).Scan(&o.CreatedAt, &o.UpdatedAt)
}

// GetByID retrieves an organization by its ID. Returns sql.ErrNoRows if not found.
func (ds *Datastore) GetByID(ctx context.Context, id uuid.UUID) (*Org, error) {
	query := `SELECT ` + orgColumns + ` FROM organizations WHERE id = $1`

	o := &Org{}
	err := ds.db.QueryRowContext(ctx, query, id).Scan(
		&o.ID, &o.OwnerID, &o.Name, &o.AvatarURL, &o.Description, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return o, nil
}

// ListByOwner retrieves the organizations owned by a user, newest first.
func (ds *Datastore) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*Org, error) {
	query := `SELECT ` + orgColumns + ` FROM organizations WHERE owner_id = $1 ORDER BY created_at DESC`
	return ds.queryOrgs(ctx, query, ownerID)
}

// List retrieves all organizations with pagination, newest first.
func (ds *Datastore) List(ctx context.Context, limit, offset int) ([]*Org, error) {
	query := `SELECT ` + orgColumns + ` FROM organizations ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	return ds.queryOrgs(ctx, query, limit, offset)
}

// Update applies a partial update; nil params keep the stored values.
func (ds *Datastore) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*Org, error) {
	query := `
		UPDATE organizations
		SET
			name = COALESCE($2, name),
			avatar_url = COALESCE($3, avatar_url),
			description = COALESCE($4, description),
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + orgColumns

	o := &Org{}
	err := ds.db.QueryRowContext(ctx, query,
		id, params.Name, params.AvatarURL, params.Description,
	).Scan(
		&o.ID, &o.OwnerID, &o.Name, &o.AvatarURL, &o.Description, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return o, nil
}

// Delete removes an organization. Member rows cascade in the database.
func (ds *Datastore) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	result, err := ds.db.ExecContext(ctx, `DELETE FROM organizations WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (ds *Datastore) queryOrgs(ctx context.Context, query string, args ...any) ([]*Org, error) {
	rows, err := ds.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	var orgs []*Org
	for rows.Next() {
		o := &Org{}
		if err := rows.Scan(
			&o.ID, &o.OwnerID, &o.Name, &o.AvatarURL, &o.Description, &o.CreatedAt, &o.UpdatedAt,
		); err != nil {
			return nil, err
		}
		orgs = append(orgs, o)
	}

	return orgs, rows.Err()
}
