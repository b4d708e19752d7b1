package org

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
	ErrNotFound     = errors.New("organization not found")
	ErrInvalidName  = errors.New("organization name is required")
	ErrOwnerMissing = errors.New("organization owner does not exist")
)

const pgForeignKeyViolation = "23503"

// Manager handles business logic for organizations.
// It coordinates operations and translates datastore errors to domain errors.
type Manager struct {
	ds *Datastore
}

// NewManager creates a new organization manager.
func NewManager(ds *Datastore) *Manager {
	return &Manager{ds: ds}
}

// Create creates a new organization owned by an existing user.
func (m *Manager) Create(ctx context.Context, o *Org) error {
	o.Name = strings.TrimSpace(o.Name)
	if o.Name == "" {
		return ErrInvalidName
	}

	if err := m.ds.Create(ctx, o); err != nil {
		if isForeignKeyViolation(err) {
			return ErrOwnerMissing
		}
		return fmt.Errorf("failed to create organization: %w", err)
	}
	return nil
}

// GetByID retrieves an organization by ID.
func (m *Manager) GetByID(ctx context.Context, id uuid.UUID) (*Org, error) {
	o, err := m.ds.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}
	return o, nil
}

// ListByOwner retrieves the organizations owned by a user.
func (m *Manager) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*Org, error) {
	orgs, err := m.ds.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}
	return orgs, nil
}

// List retrieves organizations with pagination. Limit is capped at 100.
func (m *Manager) List(ctx context.Context, limit, offset int) ([]*Org, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	orgs, err := m.ds.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}
	return orgs, nil
}

// Update applies a partial update to an organization.
func (m *Manager) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*Org, error) {
	if params.Name != nil && strings.TrimSpace(*params.Name) == "" {
		return nil, ErrInvalidName
	}

	o, err := m.ds.Update(ctx, id, params)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update organization: %w", err)
	}
	return o, nil
}

// Delete removes an organization and, by cascade, its memberships.
func (m *Manager) Delete(ctx context.Context, id uuid.UUID) error {
	rowsAffected, err := m.ds.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete organization: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// isForeignKeyViolation reports whether err is a PostgreSQL foreign-key
// violation (SQLSTATE 23503).
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation
}
